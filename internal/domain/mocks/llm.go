package mocks

import (
	"context"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

// LLMClient is a mock implementation of ports.LLMClient.
type LLMClient struct {
	// ExtractRequirements return values
	Candidates []ports.CandidateRequirement
	ExtractErr error

	// CheckStatement return values
	Findings []ports.CheckFinding
	CheckErr error

	// CheckErrCount limits CheckErr to the first N calls; zero means
	// CheckErr applies to every call.
	CheckErrCount int

	ExtractCallCount int
	CheckCallCount   int
}

// ExtractRequirements returns the configured candidates or error.
func (m *LLMClient) ExtractRequirements(ctx context.Context, text string) ([]ports.CandidateRequirement, error) {
	m.ExtractCallCount++
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Candidates, nil
}

// CheckStatement returns the configured findings or error.
func (m *LLMClient) CheckStatement(ctx context.Context, reqType entities.RequirementType, name, statement string) ([]ports.CheckFinding, error) {
	m.CheckCallCount++
	if m.CheckErr != nil {
		if m.CheckErrCount > 0 {
			m.CheckErrCount--
			if m.CheckErrCount == 0 {
				err := m.CheckErr
				m.CheckErr = nil
				return nil, err
			}
		}
		return nil, m.CheckErr
	}
	return m.Findings, nil
}
