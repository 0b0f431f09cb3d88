// Package services contains domain business logic.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// timeNow returns the current time (can be overridden in tests).
var timeNow = time.Now

// KeepState passed as the target state to Append keeps the base version's
// workflow state.
const KeepState = entities.WorkflowState("")

// VersionService is the versioned entity store: it resolves current content
// as of a point in time and appends new versions without losing history.
type VersionService struct {
	db ports.RelationalDB
}

// NewVersionService creates a new VersionService.
func NewVersionService(db ports.RelationalDB) *VersionService {
	return &VersionService{db: db}
}

// Current resolves the requirement's current version as of the given time.
// A zero asOf means now. Returns *entities.NotFoundError if the identity is
// unknown, no version is effective yet, or the winning version is a
// tombstone.
func (s *VersionService) Current(ctx context.Context, requirementID string, asOf time.Time) (*entities.RequirementVersion, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	if asOf.IsZero() {
		asOf = timeNow()
	}

	versions, err := s.db.FindVersions(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	current := entities.ResolveCurrent(versions, asOf)
	if current == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	return current, nil
}

// History returns the requirement's full version sequence, tombstones
// included, ordered by effective-from ascending.
func (s *VersionService) History(ctx context.Context, requirementID string) ([]entities.RequirementVersion, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	return s.db.FindVersions(ctx, requirementID)
}

// Append constructs the next version from the current one and a partial
// patch, then persists it. Fields not present in the patch are copied
// forward. The target state replaces the base version's workflow state;
// pass KeepState to preserve it.
//
// If base is non-zero it is an optimistic lock: the caller asserts the
// current version's effective-from is exactly base, and a mismatch fails
// with *entities.ConflictError. Prior version rows are never altered.
func (s *VersionService) Append(
	ctx context.Context,
	requirementID string,
	patch entities.VersionPatch,
	state entities.WorkflowState,
	modifiedBy string,
	base time.Time,
) (*entities.RequirementVersion, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}

	versions, err := s.db.FindVersions(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	now := timeNow()
	current := entities.ResolveCurrent(versions, now)
	if len(versions) > 0 && current == nil {
		// Tombstoned; restore is the only way forward.
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	if !base.IsZero() && (current == nil || !current.EffectiveFrom.Equal(base)) {
		return nil, &entities.ConflictError{RequirementID: requirementID, EffectiveFrom: base}
	}

	next := patch.Apply(current)
	next.RequirementID = requirementID
	next.EffectiveFrom = now
	next.ModifiedBy = modifiedBy
	if state != KeepState {
		next.WorkflowState = state
	}
	if err := next.ValidateForType(req.ReqType); err != nil {
		return nil, err
	}

	if err := s.db.SaveVersion(ctx, &next); err != nil {
		return nil, fmt.Errorf("appending version: %w", err)
	}
	return &next, nil
}

// AppendFirst persists the initial version of a freshly created identity.
func (s *VersionService) AppendFirst(
	ctx context.Context,
	req *entities.Requirement,
	patch entities.VersionPatch,
	state entities.WorkflowState,
	modifiedBy string,
) (*entities.RequirementVersion, error) {
	next := patch.Apply(nil)
	next.RequirementID = req.ID
	next.EffectiveFrom = timeNow()
	next.ModifiedBy = modifiedBy
	next.WorkflowState = state
	if err := next.ValidateForType(req.ReqType); err != nil {
		return nil, err
	}
	if err := s.db.SaveVersion(ctx, &next); err != nil {
		return nil, fmt.Errorf("appending first version: %w", err)
	}
	return &next, nil
}

// SoftDelete appends a tombstone version. The last known content fields
// are preserved for audit purposes.
func (s *VersionService) SoftDelete(ctx context.Context, requirementID, modifiedBy string) (*entities.RequirementVersion, error) {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}

	versions, err := s.db.FindVersions(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	now := timeNow()
	current := entities.ResolveCurrent(versions, now)
	if current == nil {
		return nil, &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}

	tombstone := *current
	tombstone.EffectiveFrom = now
	tombstone.ModifiedBy = modifiedBy
	tombstone.WorkflowState = entities.WorkflowRemoved
	tombstone.IsDeleted = true

	if err := s.db.SaveVersion(ctx, &tombstone); err != nil {
		return nil, fmt.Errorf("appending tombstone: %w", err)
	}
	return &tombstone, nil
}
