package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// RelationService maintains and queries typed directed edges between
// requirements within a solution.
type RelationService struct {
	db ports.RelationalDB
}

// NewRelationService creates a new RelationService.
func NewRelationService(db ports.RelationalDB) *RelationService {
	return &RelationService{db: db}
}

// Link creates a typed edge from left to right. Both endpoints must exist,
// belong to the same solution, and satisfy the relation kind's
// endpoint-type constraints.
func (s *RelationService) Link(ctx context.Context, leftID, rightID string, relType entities.RelationType, actor string) (*entities.Relation, error) {
	if leftID == rightID {
		return nil, &entities.ValidationError{Field: "right", Reason: "a requirement cannot relate to itself"}
	}

	left, err := s.db.FindRequirementByID(ctx, leftID)
	if err != nil {
		return nil, fmt.Errorf("finding left requirement: %w", err)
	}
	if left == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: leftID}
	}
	right, err := s.db.FindRequirementByID(ctx, rightID)
	if err != nil {
		return nil, fmt.Errorf("finding right requirement: %w", err)
	}
	if right == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: rightID}
	}

	if left.SolutionID != right.SolutionID {
		return nil, &entities.CrossSolutionError{LeftID: leftID, RightID: rightID}
	}
	if err := relType.CheckEndpoints(left.ReqType, right.ReqType); err != nil {
		return nil, err
	}

	existing, err := s.db.FindRelationBetween(ctx, leftID, rightID, relType)
	if err != nil {
		return nil, fmt.Errorf("checking existing relation: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("relation already exists between these requirements (id: %s)", existing.ID)
	}

	rel := &entities.Relation{
		ID:         uuid.New().String(),
		SolutionID: left.SolutionID,
		LeftID:     leftID,
		RightID:    rightID,
		Type:       relType,
		CreatedAt:  timeNow(),
	}
	if err := s.db.SaveRelation(ctx, rel); err != nil {
		return nil, fmt.Errorf("saving relation: %w", err)
	}
	if err := s.db.LogAction(ctx, "relation.linked", leftID, actor, map[string]any{
		"right": rightID,
		"type":  string(relType),
	}); err != nil {
		return nil, fmt.Errorf("logging relation: %w", err)
	}
	return rel, nil
}

// Unlink removes a relation by ID.
func (s *RelationService) Unlink(ctx context.Context, relationID, actor string) error {
	rel, err := s.db.FindRelationByID(ctx, relationID)
	if err != nil {
		return fmt.Errorf("finding relation: %w", err)
	}
	if rel == nil {
		return &entities.NotFoundError{Kind: "relation", ID: relationID}
	}
	if err := s.db.DeleteRelation(ctx, relationID); err != nil {
		return fmt.Errorf("deleting relation: %w", err)
	}
	if err := s.db.LogAction(ctx, "relation.unlinked", rel.LeftID, actor, map[string]any{
		"right": rel.RightID,
		"type":  string(rel.Type),
	}); err != nil {
		return fmt.Errorf("logging unlink: %w", err)
	}
	return nil
}

// List returns relations where the requirement is an endpoint, optionally
// filtered by relation type.
func (s *RelationService) List(ctx context.Context, requirementID string, relType entities.RelationType) ([]entities.Relation, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	return s.db.FindRelationsByRequirement(ctx, requirementID, relType)
}

// Count returns the total number of relations in a solution.
func (s *RelationService) Count(ctx context.Context, solutionID string) (int, error) {
	return s.db.CountRelations(ctx, solutionID)
}
