package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// DefaultSearchLimit is the default number of search results to return.
const DefaultSearchLimit = 10

// RequirementView pairs an identity with one of its versions.
type RequirementView struct {
	Requirement entities.Requirement        `json:"requirement"`
	Version     entities.RequirementVersion `json:"version"`
}

// RequirementService manages requirement identities and their content,
// keeping the relational store and the search index in step.
type RequirementService struct {
	versions *VersionService
	db       ports.RelationalDB
	vectorDB ports.VectorDB
	embedder ports.Embedder
}

// NewRequirementService creates a new RequirementService.
func NewRequirementService(versions *VersionService, db ports.RelationalDB, vectorDB ports.VectorDB, embedder ports.Embedder) *RequirementService {
	return &RequirementService{
		versions: versions,
		db:       db,
		vectorDB: vectorDB,
		embedder: embedder,
	}
}

// Create mints a new requirement identity with its initial version. The
// human-facing reqId is assigned from the per-type sequence of the
// solution. Silence requirements are born permanently rejected; everything
// else starts as Proposed.
func (s *RequirementService) Create(ctx context.Context, solutionID string, reqType entities.RequirementType, patch entities.VersionPatch, createdBy string) (*RequirementView, error) {
	if !reqType.IsValid() {
		return nil, &entities.ValidationError{Field: "req_type", Reason: fmt.Sprintf("unknown requirement type %q", reqType)}
	}
	sol, err := s.db.FindSolutionByID(ctx, solutionID)
	if err != nil {
		return nil, fmt.Errorf("finding solution: %w", err)
	}
	if sol == nil {
		return nil, &entities.NotFoundError{Kind: "solution", ID: solutionID}
	}

	spec, _ := entities.SpecFor(reqType)
	seq, err := s.db.NextReqSequence(ctx, solutionID, spec.Prefix)
	if err != nil {
		return nil, fmt.Errorf("assigning reqId: %w", err)
	}

	req := &entities.Requirement{
		ID:           uuid.New().String(),
		SolutionID:   solutionID,
		ReqType:      reqType,
		ReqID:        entities.FormatReqID(reqType, seq),
		CreatedBy:    createdBy,
		CreationDate: timeNow(),
	}

	state := entities.WorkflowProposed
	if reqType == entities.TypeSilence {
		state = entities.WorkflowRejected
	}

	// Validate content before persisting the identity.
	draft := patch.Apply(nil)
	if err := draft.ValidateForType(reqType); err != nil {
		return nil, err
	}

	if err := s.db.SaveRequirement(ctx, req); err != nil {
		return nil, fmt.Errorf("saving requirement: %w", err)
	}
	version, err := s.versions.AppendFirst(ctx, req, patch, state, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.index(ctx, req, version); err != nil {
		return nil, err
	}
	if err := s.db.LogAction(ctx, "requirement.created", req.ID, createdBy, map[string]any{
		"req_id":   req.ReqID,
		"req_type": string(req.ReqType),
	}); err != nil {
		return nil, fmt.Errorf("logging creation: %w", err)
	}
	return &RequirementView{Requirement: *req, Version: *version}, nil
}

// Get returns the requirement and its current version as of the given
// time; a zero asOf means now.
func (s *RequirementService) Get(ctx context.Context, requirementID string, asOf time.Time) (*RequirementView, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	version, err := s.versions.Current(ctx, requirementID, asOf)
	if err != nil {
		return nil, err
	}
	return &RequirementView{Requirement: *req, Version: *version}, nil
}

// GetByReqID resolves a requirement by its human-facing identifier, e.g.
// "G.3.7".
func (s *RequirementService) GetByReqID(ctx context.Context, solutionID, reqID string) (*RequirementView, error) {
	req, err := s.db.FindRequirementByReqID(ctx, solutionID, reqID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: reqID}
	}
	return s.Get(ctx, req.ID, time.Time{})
}

// Edit appends a revised version. Revising an active requirement sends it
// back through review with its endorsements reset; other states keep their
// workflow position. base is the optimistic lock from the version the
// caller read (zero to skip the check).
func (s *RequirementService) Edit(ctx context.Context, requirementID string, patch entities.VersionPatch, modifiedBy string, base time.Time) (*RequirementView, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	current, err := s.versions.Current(ctx, requirementID, time.Time{})
	if err != nil {
		return nil, err
	}

	state := KeepState
	if current.WorkflowState == entities.WorkflowActive {
		state = entities.WorkflowReview
	}

	version, err := s.versions.Append(ctx, requirementID, patch, state, modifiedBy, base)
	if err != nil {
		return nil, err
	}
	if err := s.index(ctx, req, version); err != nil {
		return nil, err
	}
	if err := s.db.LogAction(ctx, "requirement.edited", requirementID, modifiedBy, map[string]any{
		"req_id": req.ReqID,
	}); err != nil {
		return nil, fmt.Errorf("logging edit: %w", err)
	}
	return &RequirementView{Requirement: *req, Version: *version}, nil
}

// List returns current views for a solution's requirements, optionally
// filtered by type. Removed requirements are skipped.
func (s *RequirementService) List(ctx context.Context, solutionID string, reqType entities.RequirementType, limit, offset int) ([]RequirementView, error) {
	reqs, err := s.db.ListRequirements(ctx, solutionID, reqType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing requirements: %w", err)
	}
	now := timeNow()
	views := make([]RequirementView, 0, len(reqs))
	for i := range reqs {
		versions, err := s.db.FindVersions(ctx, reqs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading versions for %s: %w", reqs[i].ReqID, err)
		}
		current := entities.ResolveCurrent(versions, now)
		if current == nil {
			continue
		}
		views = append(views, RequirementView{Requirement: reqs[i], Version: *current})
	}
	return views, nil
}

// Count counts a solution's requirement identities, optionally by type.
// Removed requirements are included; identities never disappear.
func (s *RequirementService) Count(ctx context.Context, solutionID string, reqType entities.RequirementType) (int, error) {
	return s.db.CountRequirements(ctx, solutionID, reqType)
}

// History returns a requirement's full version sequence.
func (s *RequirementService) History(ctx context.Context, requirementID string) ([]entities.RequirementVersion, error) {
	return s.versions.History(ctx, requirementID)
}

// AuditLog returns the audit trail of a requirement.
func (s *RequirementService) AuditLog(ctx context.Context, requirementID string) ([]entities.AuditEntry, error) {
	return s.db.FindAuditLog(ctx, requirementID)
}

// Search finds requirements semantically similar to the query within a
// solution, optionally filtered by type. Used for duplicate detection
// before authoring a new requirement.
func (s *RequirementService) Search(ctx context.Context, solutionID, query string, reqType entities.RequirementType, limit int) ([]entities.SearchHit, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}
	if reqType != "" {
		return s.vectorDB.SearchByType(ctx, solutionID, embedding, reqType, limit)
	}
	return s.vectorDB.Search(ctx, solutionID, embedding, limit)
}

// index refreshes the search document for a requirement's version.
func (s *RequirementService) index(ctx context.Context, req *entities.Requirement, version *entities.RequirementVersion) error {
	text := version.Name
	if version.Statement != "" {
		text += "\n" + version.Statement
	}
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}
	doc := entities.RequirementDoc{
		ID:         req.ID,
		SolutionID: req.SolutionID,
		ReqType:    req.ReqType,
		ReqID:      req.ReqID,
		Name:       version.Name,
		Statement:  version.Statement,
		Embedding:  embedding,
	}
	if err := s.vectorDB.Save(ctx, doc); err != nil {
		return fmt.Errorf("indexing requirement: %w", err)
	}
	return nil
}
