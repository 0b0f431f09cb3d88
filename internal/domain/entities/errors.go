package entities

import (
	"fmt"
	"time"
)

// NotFoundError indicates an unknown identity, or one whose current version
// is a tombstone.
type NotFoundError struct {
	Kind string // "requirement", "solution", "organization", "relation", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidTransitionError indicates a workflow action not permitted from the
// current state.
type InvalidTransitionError struct {
	RequirementID string
	From          WorkflowState
	To            WorkflowState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid workflow transition for %s: %s -> %s", e.RequirementID, e.From, e.To)
}

// InvalidCategoryError indicates a review category not applicable to the
// requirement's type.
type InvalidCategoryError struct {
	Category ReviewCategory
	ReqType  RequirementType
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("review category %s does not apply to %s requirements", e.Category, e.ReqType)
}

// CrossSolutionError indicates a relation or ownership check across
// solution boundaries.
type CrossSolutionError struct {
	LeftID  string
	RightID string
}

func (e *CrossSolutionError) Error() string {
	return fmt.Sprintf("requirements %s and %s belong to different solutions", e.LeftID, e.RightID)
}

// ConflictError indicates a version append that lost a read-modify-write
// race: either the caller's base version is no longer current, or two
// appends collided on the same effective-from instant.
type ConflictError struct {
	RequirementID string
	EffectiveFrom time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent version append for %s at %s", e.RequirementID, e.EffectiveFrom.Format(time.RFC3339Nano))
}

// ValidationError indicates malformed input content for a version or
// relation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
