package handlers

import (
	"context"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/services"
	"github.com/cathedral-app/cathedral/internal/infrastructure/logger"
	"github.com/cathedral-app/cathedral/internal/infrastructure/metrics"
	"github.com/cathedral-app/cathedral/internal/infrastructure/parsers"
)

// RequirementHandler handles requirement operations at the application layer.
type RequirementHandler struct {
	service *services.RequirementService
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewRequirementHandler creates a new RequirementHandler.
func NewRequirementHandler(service *services.RequirementService, log *logger.Logger, m *metrics.Metrics) *RequirementHandler {
	return &RequirementHandler{
		service: service,
		log:     log,
		metrics: m,
	}
}

// RequirementInput carries the flat, string-typed content fields of a
// requirement as they arrive from CLI flags or import rows.
type RequirementInput struct {
	Name      string
	Statement string

	Priority            string
	ConstraintCategory  string
	PrimaryActor        string
	Outcome             string
	Precondition        string
	MainSuccessScenario string
	Email               string
	Segmentation        string
	Interest            *int
	Influence           *int
}

func (in RequirementInput) toRaw(reqType entities.RequirementType) parsers.RawRequirement {
	return parsers.RawRequirement{
		ReqType:             string(reqType),
		Name:                in.Name,
		Statement:           in.Statement,
		Priority:            in.Priority,
		ConstraintCategory:  in.ConstraintCategory,
		PrimaryActor:        in.PrimaryActor,
		Outcome:             in.Outcome,
		Precondition:        in.Precondition,
		MainSuccessScenario: in.MainSuccessScenario,
		Email:               in.Email,
		Segmentation:        in.Segmentation,
		Interest:            in.Interest,
		Influence:           in.Influence,
	}
}

// ListResult contains the result of listing requirements.
type ListResult struct {
	Requirements []services.RequirementView `json:"requirements"`
	Total        int                        `json:"total"`
}

// HandleCreate creates a new requirement of the given type.
func (h *RequirementHandler) HandleCreate(ctx context.Context, solutionID, typeStr string, input RequirementInput, createdBy string) (*services.RequirementView, error) {
	start := time.Now()

	reqType, err := ParseRequirementType(typeStr)
	if err != nil {
		return nil, err
	}

	raw := input.toRaw(reqType)
	patch, err := services.PatchFromRaw(reqType, &raw)
	if err != nil {
		return nil, err
	}

	view, err := h.service.Create(ctx, solutionID, reqType, patch, createdBy)
	h.log.LogOperation("requirement.create", time.Since(start), err)
	h.metrics.RecordOperation("requirement.create", statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	h.metrics.RecordRequirementCreated()
	return view, nil
}

// HandleGet returns a requirement's current view, or a historical one when
// asOf is non-zero.
func (h *RequirementHandler) HandleGet(ctx context.Context, requirementID string, asOf time.Time) (*services.RequirementView, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return h.service.Get(ctx, requirementID, asOf)
}

// HandleGetByReqID returns a requirement's current view by its
// human-facing reqId within a solution.
func (h *RequirementHandler) HandleGetByReqID(ctx context.Context, solutionID, reqID string) (*services.RequirementView, error) {
	return h.service.GetByReqID(ctx, solutionID, reqID)
}

// EditInput carries the optional fields of an edit. Nil fields keep the
// current value; Base must carry the effective-from of the version the
// caller read, for conflict detection.
type EditInput struct {
	Name      *string
	Statement *string
	Base      time.Time
}

// HandleEdit appends a new version with the given changes.
func (h *RequirementHandler) HandleEdit(ctx context.Context, requirementID string, input EditInput, modifiedBy string) (*services.RequirementView, error) {
	start := time.Now()

	patch := entities.VersionPatch{Name: input.Name, Statement: input.Statement}
	view, err := h.service.Edit(ctx, requirementID, patch, modifiedBy, input.Base)
	h.log.LogOperation("requirement.edit", time.Since(start), err)
	h.metrics.RecordOperation("requirement.edit", statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	h.metrics.RecordVersionAppended()
	return view, nil
}

// HandleList returns a solution's current requirements with pagination.
// An empty typeStr lists all types.
func (h *RequirementHandler) HandleList(ctx context.Context, solutionID, typeStr string, limit, offset int) (*ListResult, error) {
	var reqType entities.RequirementType
	if typeStr != "" {
		t, err := ParseRequirementType(typeStr)
		if err != nil {
			return nil, err
		}
		reqType = t
	}

	views, err := h.service.List(ctx, solutionID, reqType, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := h.service.Count(ctx, solutionID, reqType)
	if err != nil {
		return nil, err
	}

	return &ListResult{Requirements: views, Total: total}, nil
}

// HandleHistory returns the full version history of a requirement.
func (h *RequirementHandler) HandleHistory(ctx context.Context, requirementID string) ([]entities.RequirementVersion, error) {
	return h.service.History(ctx, requirementID)
}

// HandleAuditLog returns the audit trail of a requirement.
func (h *RequirementHandler) HandleAuditLog(ctx context.Context, requirementID string) ([]entities.AuditEntry, error) {
	return h.service.AuditLog(ctx, requirementID)
}

// HandleSearch performs a semantic search within a solution. An empty
// typeStr searches all types.
func (h *RequirementHandler) HandleSearch(ctx context.Context, solutionID, query, typeStr string, limit int) ([]entities.SearchHit, error) {
	start := time.Now()

	var reqType entities.RequirementType
	if typeStr != "" {
		t, err := ParseRequirementType(typeStr)
		if err != nil {
			return nil, err
		}
		reqType = t
	}

	hits, err := h.service.Search(ctx, solutionID, query, reqType, limit)
	h.log.LogOperation("requirement.search", time.Since(start), err)
	h.metrics.RecordOperation("requirement.search", statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	h.metrics.RecordSearchQuery()
	return hits, nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
