package handlers

import (
	"context"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/services"
	"github.com/cathedral-app/cathedral/internal/infrastructure/logger"
	"github.com/cathedral-app/cathedral/internal/infrastructure/metrics"
)

// RelationHandler handles relation operations.
type RelationHandler struct {
	relations    *services.RelationService
	requirements *services.RequirementService
	log          *logger.Logger
	metrics      *metrics.Metrics
}

// NewRelationHandler creates a new RelationHandler.
func NewRelationHandler(relations *services.RelationService, requirements *services.RequirementService, log *logger.Logger, m *metrics.Metrics) *RelationHandler {
	return &RelationHandler{
		relations:    relations,
		requirements: requirements,
		log:          log,
		metrics:      m,
	}
}

// RelationInfo contains a relation with its endpoint views.
type RelationInfo struct {
	Relation entities.Relation          `json:"relation"`
	Left     *services.RequirementView  `json:"left,omitempty"`
	Right    *services.RequirementView  `json:"right,omitempty"`
}

// RelationListResult contains the result of listing relations.
type RelationListResult struct {
	Relations []RelationInfo `json:"relations"`
}

// HandleLink creates a typed relation between two requirements.
func (h *RelationHandler) HandleLink(ctx context.Context, leftID, typeStr, rightID, actor string) (*entities.Relation, error) {
	relType, err := ParseRelationType(typeStr)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rel, err := h.relations.Link(ctx, leftID, rightID, relType, actor)
	h.log.LogOperation("relation.link", time.Since(start), err)
	h.metrics.RecordOperation("relation.link", statusOf(err), time.Since(start))
	return rel, err
}

// HandleUnlink removes a relation by ID.
func (h *RelationHandler) HandleUnlink(ctx context.Context, relationID, actor string) error {
	start := time.Now()
	err := h.relations.Unlink(ctx, relationID, actor)
	h.log.LogOperation("relation.unlink", time.Since(start), err)
	h.metrics.RecordOperation("relation.unlink", statusOf(err), time.Since(start))
	return err
}

// HandleList returns the relations touching a requirement, with the
// current view of each endpoint. An empty typeStr lists all types.
func (h *RelationHandler) HandleList(ctx context.Context, requirementID, typeStr string) (*RelationListResult, error) {
	var relType entities.RelationType
	if typeStr != "" {
		t, err := ParseRelationType(typeStr)
		if err != nil {
			return nil, err
		}
		relType = t
	}

	rels, err := h.relations.List(ctx, requirementID, relType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &RelationListResult{Relations: make([]RelationInfo, 0, len(rels))}
	for i := range rels {
		info := RelationInfo{Relation: rels[i]}
		// Endpoint views are best-effort; a removed endpoint leaves nil.
		if left, err := h.requirements.Get(ctx, rels[i].LeftID, now); err == nil {
			info.Left = left
		}
		if right, err := h.requirements.Get(ctx, rels[i].RightID, now); err == nil {
			info.Right = right
		}
		result.Relations = append(result.Relations, info)
	}
	return result, nil
}

// HandleCount returns the number of relations within a solution.
func (h *RelationHandler) HandleCount(ctx context.Context, solutionID string) (int, error) {
	return h.relations.Count(ctx, solutionID)
}
