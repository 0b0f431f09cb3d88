package handlers

import (
	"context"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/services"
	"github.com/cathedral-app/cathedral/internal/infrastructure/logger"
	"github.com/cathedral-app/cathedral/internal/infrastructure/metrics"
)

// ReviewHandler handles workflow transitions and review operations.
type ReviewHandler struct {
	workflow *services.WorkflowService
	review   *services.ReviewService
	checks   *services.CheckRunner
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(workflow *services.WorkflowService, review *services.ReviewService, checks *services.CheckRunner, log *logger.Logger, m *metrics.Metrics) *ReviewHandler {
	return &ReviewHandler{
		workflow: workflow,
		review:   review,
		checks:   checks,
		log:      log,
		metrics:  m,
	}
}

// HandleSubmit moves a requirement into review.
func (h *ReviewHandler) HandleSubmit(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error) {
	return h.transition(ctx, "workflow.submit", func() (*entities.RequirementVersion, error) {
		return h.workflow.Submit(ctx, requirementID, actor)
	})
}

// HandleAccept promotes a parsed requirement to proposed.
func (h *ReviewHandler) HandleAccept(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error) {
	return h.transition(ctx, "workflow.accept", func() (*entities.RequirementVersion, error) {
		return h.workflow.Accept(ctx, requirementID, actor)
	})
}

// HandleRemove soft-deletes a requirement.
func (h *ReviewHandler) HandleRemove(ctx context.Context, requirementID, actor string) error {
	start := time.Now()
	err := h.workflow.Remove(ctx, requirementID, actor)
	h.log.LogOperation("workflow.remove", time.Since(start), err)
	h.metrics.RecordOperation("workflow.remove", statusOf(err), time.Since(start))
	return err
}

// HandleRestore revives a removed requirement as proposed.
func (h *ReviewHandler) HandleRestore(ctx context.Context, requirementID, actor string) (*entities.RequirementVersion, error) {
	return h.transition(ctx, "workflow.restore", func() (*entities.RequirementVersion, error) {
		return h.workflow.Restore(ctx, requirementID, actor)
	})
}

func (h *ReviewHandler) transition(ctx context.Context, operation string, fn func() (*entities.RequirementVersion, error)) (*entities.RequirementVersion, error) {
	start := time.Now()
	version, err := fn()
	h.log.LogOperation(operation, time.Since(start), err)
	h.metrics.RecordOperation(operation, statusOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	h.metrics.RecordVersionAppended()
	return version, nil
}

// HandleStatus returns the aggregate review state of a requirement's
// current version.
func (h *ReviewHandler) HandleStatus(ctx context.Context, requirementID string) (*entities.ReviewState, error) {
	return h.review.State(ctx, requirementID)
}

// HandleApprove records an approval for a review category. When every
// required category is approved the requirement activates.
func (h *ReviewHandler) HandleApprove(ctx context.Context, requirementID, categoryStr, reviewer, comments string) error {
	category, err := ParseReviewCategory(categoryStr)
	if err != nil {
		return err
	}

	start := time.Now()
	err = h.review.Approve(ctx, requirementID, category, reviewer, comments)
	h.log.LogOperation("review.approve", time.Since(start), err)
	h.metrics.RecordOperation("review.approve", statusOf(err), time.Since(start))
	if err == nil {
		h.metrics.RecordReview(string(category), string(entities.ReviewApproved))
	}
	return err
}

// HandleReject records a rejection for a review category. Any rejection
// rejects the requirement.
func (h *ReviewHandler) HandleReject(ctx context.Context, requirementID, categoryStr, reviewer, comments string) error {
	category, err := ParseReviewCategory(categoryStr)
	if err != nil {
		return err
	}

	start := time.Now()
	err = h.review.Reject(ctx, requirementID, category, reviewer, comments)
	h.log.LogOperation("review.reject", time.Since(start), err)
	h.metrics.RecordOperation("review.reject", statusOf(err), time.Since(start))
	if err == nil {
		h.metrics.RecordReview(string(category), string(entities.ReviewRejected))
	}
	return err
}

// HandleRunChecks runs the automated quality checks against a
// requirement's current version and records the findings.
func (h *ReviewHandler) HandleRunChecks(ctx context.Context, requirementID string) error {
	start := time.Now()
	err := h.checks.Run(ctx, requirementID)
	h.log.LogOperation("review.checks", time.Since(start), err)
	h.metrics.RecordOperation("review.checks", statusOf(err), time.Since(start))
	if err == nil {
		h.metrics.RecordCheckRun()
	}
	return err
}
