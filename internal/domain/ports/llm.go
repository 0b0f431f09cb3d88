// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

// CandidateRequirement is one requirement extracted from free text by the
// LLM, before an identity has been assigned.
type CandidateRequirement struct {
	ReqType    entities.RequirementType `json:"req_type"`
	Name       string                   `json:"name"`
	Statement  string                   `json:"statement"`
	Confidence float64                  `json:"confidence"`
}

// CheckFinding is one issue reported by an automated quality check.
type CheckFinding struct {
	Category    entities.ReviewCategory `json:"category"`
	Passed      bool                    `json:"passed"`
	Description string                  `json:"description,omitempty"`
	Score       float64                 `json:"score,omitempty"`
}

// LLMClient defines the interface for LLM operations.
type LLMClient interface {
	// ExtractRequirements extracts candidate requirements from free text.
	// Unparsable passages come back as Silence candidates.
	ExtractRequirements(ctx context.Context, text string) ([]CandidateRequirement, error)

	// CheckStatement runs the automated quality checks against a
	// requirement statement and returns one finding per check category.
	CheckStatement(ctx context.Context, reqType entities.RequirementType, name, statement string) ([]CheckFinding, error)
}
