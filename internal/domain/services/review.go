package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// ReviewService computes aggregate review state from individual
// endorsements and drives the workflow transitions review outcomes imply.
type ReviewService struct {
	versions *VersionService
	db       ports.RelationalDB
}

// NewReviewService creates a new ReviewService.
func NewReviewService(versions *VersionService, db ports.RelationalDB) *ReviewService {
	return &ReviewService{
		versions: versions,
		db:       db,
	}
}

// latestPerCategory keeps only the newest endorsement row per category.
// Input rows are ordered by created_at ascending, so a simple overwrite
// suffices; re-reviews supersede rather than accumulate.
func latestPerCategory(rows []entities.Endorsement) map[entities.ReviewCategory]*entities.Endorsement {
	latest := make(map[entities.ReviewCategory]*entities.Endorsement)
	for i := range rows {
		latest[rows[i].Category] = &rows[i]
	}
	return latest
}

// buildItems maps the fixed categories for a type onto their latest
// endorsements.
func buildItems(reqType entities.RequirementType, rows []entities.Endorsement) []entities.ReviewItem {
	latest := latestPerCategory(rows)
	specs := entities.CategoriesFor(reqType)
	items := make([]entities.ReviewItem, 0, len(specs))
	for _, spec := range specs {
		item := entities.ReviewItem{
			Category:      spec.Category,
			Status:        entities.ReviewNone,
			IsRequired:    spec.Required,
			IsAutomated:   spec.Automated,
			CanUserReview: !spec.Automated,
		}
		if e, ok := latest[spec.Category]; ok {
			item.Status = e.Status
			item.Endorsement = e
		}
		items = append(items, item)
	}
	return items
}

// State returns the aggregate review state for the requirement's current
// version.
func (s *ReviewService) State(ctx context.Context, requirementID string) (*entities.ReviewState, error) {
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
	rows, err := s.db.FindEndorsements(ctx, requirementID, current.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("loading endorsements: %w", err)
	}
	if len(rows) == 0 {
		switch current.WorkflowState {
		case entities.WorkflowActive, entities.WorkflowRejected:
			// The settling transition appended a fresh version; the
			// endorsements that drove it are keyed to the reviewed one.
			rows, err = s.reviewedRows(ctx, requirementID, current.EffectiveFrom)
			if err != nil {
				return nil, err
			}
		}
	}
	items := buildItems(req.ReqType, rows)
	return &entities.ReviewState{
		Overall: entities.AggregateStatus(items),
		Items:   items,
	}, nil
}

// reviewedRows finds the endorsements of the version immediately preceding
// the given one.
func (s *ReviewService) reviewedRows(ctx context.Context, requirementID string, before time.Time) ([]entities.Endorsement, error) {
	versions, err := s.db.FindVersions(ctx, requirementID)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	var prev *entities.RequirementVersion
	for i := range versions {
		v := &versions[i]
		if v.EffectiveFrom.Before(before) && (prev == nil || v.EffectiveFrom.After(prev.EffectiveFrom)) {
			prev = v
		}
	}
	if prev == nil {
		return nil, nil
	}
	rows, err := s.db.FindEndorsements(ctx, requirementID, prev.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("loading endorsements: %w", err)
	}
	return rows, nil
}

// Approve records an approval for one category on the current version and,
// once every required category is approved, activates the requirement.
//
// Approving an already-active requirement whose category is approved is a
// no-op; approvals in any other state outside review are invalid.
func (s *ReviewService) Approve(ctx context.Context, requirementID string, category entities.ReviewCategory, reviewer, comments string) error {
	now := timeNow()
	return s.record(ctx, requirementID, entities.Endorsement{
		Category:   category,
		Status:     entities.ReviewApproved,
		EndorsedBy: reviewer,
		EndorsedAt: &now,
		Comments:   comments,
	})
}

// Reject records a rejection for one category on the current version and
// moves the requirement to Rejected.
func (s *ReviewService) Reject(ctx context.Context, requirementID string, category entities.ReviewCategory, reviewer, comments string) error {
	now := timeNow()
	return s.record(ctx, requirementID, entities.Endorsement{
		Category:   category,
		Status:     entities.ReviewRejected,
		EndorsedBy: reviewer,
		RejectedAt: &now,
		Comments:   comments,
	})
}

// RecordCheck records an automated checker result through the same
// endorsement path as manual reviews. The retry count is bookkeeping from
// the external checker; the core records it without acting on it.
func (s *ReviewService) RecordCheck(ctx context.Context, requirementID string, checkType entities.CheckType, passed bool, details string, retryCount int) error {
	now := timeNow()
	e := entities.Endorsement{
		Category:       entities.ReviewCategory(checkType),
		EndorsedBy:     "checker:" + string(checkType),
		AutomatedCheck: true,
		CheckType:      checkType,
		CheckDetails:   details,
		RetryCount:     retryCount,
	}
	if passed {
		e.Status = entities.ReviewApproved
		e.EndorsedAt = &now
	} else {
		e.Status = entities.ReviewRejected
		e.RejectedAt = &now
	}
	return s.record(ctx, requirementID, e)
}

func (s *ReviewService) record(ctx context.Context, requirementID string, e entities.Endorsement) error {
	req, err := s.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	if !entities.CategoryApplies(req.ReqType, e.Category) {
		return &entities.InvalidCategoryError{Category: e.Category, ReqType: req.ReqType}
	}

	current, err := s.versions.Current(ctx, requirementID, time.Time{})
	if err != nil {
		return err
	}

	switch current.WorkflowState {
	case entities.WorkflowReview:
		// The one state where reviews are recorded.
	case entities.WorkflowActive:
		// Re-approving an active requirement is idempotent, not an error.
		if e.Status == entities.ReviewApproved {
			return nil
		}
		return &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          current.WorkflowState,
			To:            entities.WorkflowRejected,
		}
	default:
		to := entities.WorkflowActive
		if e.Status == entities.ReviewRejected {
			to = entities.WorkflowRejected
		}
		return &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          current.WorkflowState,
			To:            to,
		}
	}

	e.ID = uuid.New().String()
	e.RequirementID = requirementID
	e.EffectiveFrom = current.EffectiveFrom
	e.CreatedAt = timeNow()
	if err := s.db.SaveEndorsement(ctx, &e); err != nil {
		return fmt.Errorf("saving endorsement: %w", err)
	}
	if err := s.db.LogAction(ctx, "review.recorded", requirementID, e.EndorsedBy, map[string]any{
		"category": string(e.Category),
		"status":   string(e.Status),
	}); err != nil {
		return fmt.Errorf("logging review: %w", err)
	}

	return s.applyOutcome(ctx, req, current, e.EndorsedBy)
}

// applyOutcome recomputes the aggregate after a recorded endorsement and
// drives Review -> Active or Review -> Rejected when the aggregate settles.
func (s *ReviewService) applyOutcome(ctx context.Context, req *entities.Requirement, current *entities.RequirementVersion, actor string) error {
	rows, err := s.db.FindEndorsements(ctx, req.ID, current.EffectiveFrom)
	if err != nil {
		return fmt.Errorf("loading endorsements: %w", err)
	}
	items := buildItems(req.ReqType, rows)

	var to entities.WorkflowState
	switch entities.AggregateStatus(items) {
	case entities.ReviewApproved:
		to = entities.WorkflowActive
	case entities.ReviewRejected:
		to = entities.WorkflowRejected
	default:
		return nil
	}

	next, err := s.versions.Append(ctx, req.ID, entities.VersionPatch{}, to, actor, current.EffectiveFrom)
	if err != nil {
		return err
	}
	if err := s.db.LogAction(ctx, "workflow.transition", req.ID, actor, map[string]any{
		"from": string(current.WorkflowState),
		"to":   string(next.WorkflowState),
	}); err != nil {
		return fmt.Errorf("logging transition: %w", err)
	}
	return nil
}
