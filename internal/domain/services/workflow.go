package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// WorkflowService governs the lifecycle of requirement versions. Every
// transition appends a new version row through the VersionService; no row
// is ever mutated in place.
type WorkflowService struct {
	versions *VersionService
	db       ports.RelationalDB
	vectorDB ports.VectorDB
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(versions *VersionService, db ports.RelationalDB, vectorDB ports.VectorDB) *WorkflowService {
	return &WorkflowService{
		versions: versions,
		db:       db,
		vectorDB: vectorDB,
	}
}

// transition validates the move against the state table and appends a new
// version carrying the target state. Invalid transitions fail before any
// row is written.
func (s *WorkflowService) transition(ctx context.Context, requirementID string, to entities.WorkflowState, actor string) (*entities.RequirementVersion, error) {
	current, err := s.versions.Current(ctx, requirementID, time.Time{})
	if err != nil {
		return nil, err
	}
	if !current.WorkflowState.CanTransition(to) {
		return nil, &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          current.WorkflowState,
			To:            to,
		}
	}
	next, err := s.versions.Append(ctx, requirementID, entities.VersionPatch{}, to, actor, current.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	if err := s.db.LogAction(ctx, "workflow.transition", requirementID, actor, map[string]any{
		"from": string(current.WorkflowState),
		"to":   string(to),
	}); err != nil {
		return nil, fmt.Errorf("logging transition: %w", err)
	}
	return next, nil
}

// Submit moves a proposed requirement into review.
func (s *WorkflowService) Submit(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error) {
	return s.transition(ctx, requirementID, entities.WorkflowReview, actor)
}

// Accept promotes an auto-ingested (parsed) candidate into Proposed.
func (s *WorkflowService) Accept(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error) {
	return s.transition(ctx, requirementID, entities.WorkflowProposed, actor)
}

// Remove appends a tombstone version and drops the requirement from the
// search index. Legal from every non-removed state.
func (s *WorkflowService) Remove(ctx context.Context, requirementID, actor string) error {
	current, err := s.versions.Current(ctx, requirementID, time.Time{})
	if err != nil {
		return err
	}
	if !current.WorkflowState.CanTransition(entities.WorkflowRemoved) {
		return &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          current.WorkflowState,
			To:            entities.WorkflowRemoved,
		}
	}
	if _, err := s.versions.SoftDelete(ctx, requirementID, actor); err != nil {
		return err
	}
	if err := s.vectorDB.Delete(ctx, requirementID); err != nil {
		return fmt.Errorf("removing search document: %w", err)
	}
	if err := s.db.LogAction(ctx, "workflow.removed", requirementID, actor, map[string]any{
		"from": string(current.WorkflowState),
	}); err != nil {
		return fmt.Errorf("logging removal: %w", err)
	}
	return nil
}

// Restore brings a removed requirement back as Proposed, reviving the last
// content the tombstone preserved. Silence requirements are permanently
// rejected and cannot be restored.
func (s *WorkflowService) Restore(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	if req.ReqType == entities.TypeSilence {
		return nil, &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          entities.WorkflowRemoved,
			To:            entities.WorkflowProposed,
		}
	}

	versions, err := s.db.FindVersions(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	last := versions[len(versions)-1]
	if !last.IsDeleted {
		return nil, &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          last.WorkflowState,
			To:            entities.WorkflowProposed,
		}
	}

	restored := last
	restored.EffectiveFrom = timeNow()
	restored.ModifiedBy = actor
	restored.WorkflowState = entities.WorkflowProposed
	restored.IsDeleted = false
	if err := s.db.SaveVersion(ctx, &restored); err != nil {
		return nil, fmt.Errorf("appending restored version: %w", err)
	}
	if err := s.db.LogAction(ctx, "workflow.restored", requirementID, actor, nil); err != nil {
		return nil, fmt.Errorf("logging restore: %w", err)
	}
	return &restored, nil
}
