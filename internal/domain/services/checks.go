package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// DefaultCheckRetries is how many times a transiently failing check is
// retried before its failure is recorded.
const DefaultCheckRetries = 2

// CheckRunner drives the automated quality checks for a requirement under
// review and records their findings through the endorsement path.
type CheckRunner struct {
	llm      ports.LLMClient
	versions *VersionService
	review   *ReviewService
	db       ports.RelationalDB
	retries  int
}

// NewCheckRunner creates a new CheckRunner.
func NewCheckRunner(llm ports.LLMClient, versions *VersionService, review *ReviewService, db ports.RelationalDB) *CheckRunner {
	return &CheckRunner{
		llm:      llm,
		versions: versions,
		review:   review,
		db:       db,
		retries:  DefaultCheckRetries,
	}
}

// Run executes all automated checks applicable to the requirement's type
// against its current version and records one endorsement per check. The
// requirement must be in review.
func (r *CheckRunner) Run(ctx context.Context, requirementID string) error {
	req, err := r.db.FindRequirementByID(ctx, requirementID)
	if err != nil {
		return fmt.Errorf("finding requirement: %w", err)
	}
	if req == nil {
		return &entities.NotFoundError{Kind: "requirement", ID: requirementID}
	}
	current, err := r.versions.Current(ctx, requirementID, time.Time{})
	if err != nil {
		return err
	}
	if current.WorkflowState != entities.WorkflowReview {
		return &entities.InvalidTransitionError{
			RequirementID: requirementID,
			From:          current.WorkflowState,
			To:            entities.WorkflowReview,
		}
	}

	findings, attempts, err := r.checkWithRetry(ctx, req.ReqType, current.Name, current.Statement)
	if err != nil {
		return fmt.Errorf("running checks: %w", err)
	}

	for _, f := range findings {
		if !entities.CategoryApplies(req.ReqType, f.Category) {
			continue
		}
		details, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encoding check details: %w", err)
		}
		if err := r.review.RecordCheck(ctx, requirementID, entities.CheckType(f.Category), f.Passed, string(details), attempts-1); err != nil {
			return err
		}
		// A failed required check settles the review; stop recording
		// against a version that is no longer under review.
		current, err = r.versions.Current(ctx, requirementID, time.Time{})
		if err != nil {
			return err
		}
		if current.WorkflowState != entities.WorkflowReview {
			break
		}
	}
	return nil
}

// checkWithRetry retries transient checker failures, reporting how many
// attempts were made.
func (r *CheckRunner) checkWithRetry(ctx context.Context, reqType entities.RequirementType, name, statement string) ([]ports.CheckFinding, int, error) {
	var lastErr error
	for attempt := 1; attempt <= r.retries+1; attempt++ {
		findings, err := r.llm.CheckStatement(ctx, reqType, name, statement)
		if err == nil {
			return findings, attempt, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, r.retries + 1, lastErr
}
