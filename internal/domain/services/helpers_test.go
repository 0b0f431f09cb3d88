package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/mocks"
)

// stepClock replaces timeNow with a deterministic clock that advances one
// second per call, so consecutive version appends never collide on
// effective-from. Restored automatically when the test ends.
func stepClock(t *testing.T) {
	t.Helper()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { timeNow = time.Now })
}

// seedSolution inserts an organization and a solution into the mock store.
func seedSolution(t *testing.T, db *mocks.RelationalDB) *entities.Solution {
	t.Helper()
	org := &entities.Organization{ID: uuid.New().String(), Slug: "acme", Name: "Acme"}
	require.NoError(t, db.SaveOrganization(t.Context(), org))
	sol := &entities.Solution{ID: uuid.New().String(), OrganizationID: org.ID, Slug: "billing", Name: "Billing"}
	require.NoError(t, db.SaveSolution(t.Context(), sol))
	return sol
}

// seedRequirement inserts a requirement identity with one initial version
// in the given workflow state.
func seedRequirement(t *testing.T, db *mocks.RelationalDB, solutionID string, reqType entities.RequirementType, state entities.WorkflowState, name string) *entities.Requirement {
	t.Helper()
	spec, ok := entities.SpecFor(reqType)
	require.True(t, ok)
	seq, err := db.NextReqSequence(t.Context(), solutionID, spec.Prefix)
	require.NoError(t, err)
	req := &entities.Requirement{
		ID:           uuid.New().String(),
		SolutionID:   solutionID,
		ReqType:      reqType,
		ReqID:        entities.FormatReqID(reqType, seq),
		CreatedBy:    "seeder",
		CreationDate: timeNow(),
	}
	require.NoError(t, db.SaveRequirement(t.Context(), req))

	version := entities.RequirementVersion{
		RequirementID: req.ID,
		EffectiveFrom: timeNow(),
		ModifiedBy:    "seeder",
		Name:          name,
		Statement:     "The system shall " + name + ".",
		WorkflowState: state,
	}
	require.NoError(t, db.SaveVersion(t.Context(), &version))
	return req
}

// currentState reads the workflow state of a requirement's latest version.
func currentState(t *testing.T, db *mocks.RelationalDB, requirementID string) entities.WorkflowState {
	t.Helper()
	versions, err := db.FindVersions(t.Context(), requirementID)
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	return versions[len(versions)-1].WorkflowState
}
