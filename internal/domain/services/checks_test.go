package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/mocks"
	"github.com/cathedral-app/cathedral/internal/domain/ports"
)

func allPassingFindings() []ports.CheckFinding {
	return []ports.CheckFinding{
		{Category: entities.CategorySpellingGrammar, Passed: true},
		{Category: entities.CategoryReadability, Passed: true, Score: 0.8},
		{Category: entities.CategoryGlossaryCompliance, Passed: true},
		{Category: entities.CategoryFormalLanguage, Passed: true},
		{Category: entities.CategoryTypeCorrespondence, Passed: true},
	}
}

func newCheckFixture(t *testing.T) (*CheckRunner, *mocks.LLMClient, *ReviewService, *mocks.RelationalDB, *entities.Solution) {
	t.Helper()
	stepClock(t)
	db := mocks.NewRelationalDB()
	llm := &mocks.LLMClient{}
	versions := NewVersionService(db)
	review := NewReviewService(versions, db)
	runner := NewCheckRunner(llm, versions, review, db)
	return runner, llm, review, db, seedSolution(t, db)
}

func TestCheckRunner_Run_AllPass(t *testing.T) {
	runner, llm, _, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")
	llm.Findings = allPassingFindings()

	require.NoError(t, runner.Run(t.Context(), req.ID))

	assert.Len(t, db.Endorsements, 5)
	for _, e := range db.Endorsements {
		assert.True(t, e.AutomatedCheck)
		assert.Equal(t, entities.ReviewApproved, e.Status)
		assert.Zero(t, e.RetryCount)
	}
	// The manual endorsement is still outstanding.
	assert.Equal(t, entities.WorkflowReview, currentState(t, db, req.ID))
}

func TestCheckRunner_Run_ChecksCompleteReview(t *testing.T) {
	runner, llm, review, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")
	llm.Findings = allPassingFindings()

	require.NoError(t, review.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", ""))
	require.NoError(t, runner.Run(t.Context(), req.ID))

	assert.Equal(t, entities.WorkflowActive, currentState(t, db, req.ID))
}

func TestCheckRunner_Run_FailureSettlesEarly(t *testing.T) {
	runner, llm, _, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")
	llm.Findings = []ports.CheckFinding{
		{Category: entities.CategorySpellingGrammar, Passed: false, Description: "three misspellings"},
		{Category: entities.CategoryReadability, Passed: true, Score: 0.8},
		{Category: entities.CategoryGlossaryCompliance, Passed: true},
	}

	require.NoError(t, runner.Run(t.Context(), req.ID))

	assert.Equal(t, entities.WorkflowRejected, currentState(t, db, req.ID))
	assert.Len(t, db.Endorsements, 1, "recording stops once the review settles")
	assert.Contains(t, db.Endorsements[0].CheckDetails, "three misspellings")
}

func TestCheckRunner_Run_RetriesTransientFailure(t *testing.T) {
	runner, llm, _, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")
	llm.Findings = allPassingFindings()
	llm.CheckErr = errors.New("rate limited")
	llm.CheckErrCount = 2

	require.NoError(t, runner.Run(t.Context(), req.ID))

	assert.Equal(t, 3, llm.CheckCallCount)
	require.Len(t, db.Endorsements, 5)
	assert.Equal(t, 2, db.Endorsements[0].RetryCount)
}

func TestCheckRunner_Run_ExhaustedRetries(t *testing.T) {
	runner, llm, _, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")
	llm.CheckErr = errors.New("model offline")

	err := runner.Run(t.Context(), req.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
	assert.Equal(t, DefaultCheckRetries+1, llm.CheckCallCount)
	assert.Empty(t, db.Endorsements)
}

func TestCheckRunner_Run_NotInReview(t *testing.T) {
	runner, _, _, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	err := runner.Run(t.Context(), req.ID)
	var ite *entities.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, entities.WorkflowProposed, ite.From)
}

func TestCheckRunner_Run_SkipsInapplicableFindings(t *testing.T) {
	runner, llm, _, db, sol := newCheckFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypePerson, entities.WorkflowReview, "Jane Doe")
	llm.Findings = []ports.CheckFinding{
		{Category: entities.CategoryReadability, Passed: true},
	}

	require.NoError(t, runner.Run(t.Context(), req.ID))
	assert.Empty(t, db.Endorsements, "persons carry no automated checks")
}
