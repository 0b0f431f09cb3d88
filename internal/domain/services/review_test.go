package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/mocks"
)

var allCheckTypes = []entities.CheckType{
	entities.CheckSpellingGrammar,
	entities.CheckReadability,
	entities.CheckGlossaryCompliance,
	entities.CheckFormalLanguage,
	entities.CheckTypeCorrespondence,
}

func newReviewFixture(t *testing.T) (*ReviewService, *mocks.RelationalDB, *entities.Solution) {
	t.Helper()
	stepClock(t)
	db := mocks.NewRelationalDB()
	versions := NewVersionService(db)
	return NewReviewService(versions, db), db, seedSolution(t, db)
}

func TestReviewService_Approve_Partial(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")

	require.NoError(t, svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", "looks good"))

	state, err := svc.State(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewPartial, state.Overall)
	assert.Equal(t, entities.WorkflowReview, currentState(t, db, req.ID), "a partial approval does not activate")

	for _, item := range state.Items {
		if item.Category == entities.CategoryEndorsement {
			assert.Equal(t, entities.ReviewApproved, item.Status)
			require.NotNil(t, item.Endorsement)
			assert.Equal(t, "alice", item.Endorsement.EndorsedBy)
			assert.Equal(t, "looks good", item.Endorsement.Comments)
		} else {
			assert.Equal(t, entities.ReviewNone, item.Status)
		}
	}
}

func TestReviewService_FullApproval_Activates(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")

	require.NoError(t, svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", ""))
	for _, check := range allCheckTypes {
		require.NoError(t, svc.RecordCheck(t.Context(), req.ID, check, true, `{"passed":true}`, 0))
	}

	assert.Equal(t, entities.WorkflowActive, currentState(t, db, req.ID))

	// The settling transition appended a new version; State still reports
	// the endorsements that drove it.
	state, err := svc.State(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewApproved, state.Overall)
}

func TestReviewService_Reject_Settles(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")

	require.NoError(t, svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", ""))
	require.NoError(t, svc.Reject(t.Context(), req.ID, entities.CategoryEndorsement, "bob", "statement is vague"))

	assert.Equal(t, entities.WorkflowRejected, currentState(t, db, req.ID), "one required rejection settles the review")

	state, err := svc.State(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewRejected, state.Overall, "the later row per category wins")
}

func TestReviewService_Approve_ActiveIsIdempotent(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowActive, "Faster support")

	require.NoError(t, svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", ""))
	assert.Empty(t, db.Endorsements, "re-approving an active requirement records nothing")
}

func TestReviewService_Reject_ActiveFails(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowActive, "Faster support")

	err := svc.Reject(t.Context(), req.ID, entities.CategoryEndorsement, "alice", "")
	var ite *entities.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, entities.WorkflowActive, ite.From)
}

func TestReviewService_Approve_OutsideReview(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	err := svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", "")
	var ite *entities.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)
}

func TestReviewService_InvalidCategory(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypePerson, entities.WorkflowReview, "Jane Doe")

	err := svc.Approve(t.Context(), req.ID, entities.CategoryReadability, "alice", "")
	var ice *entities.InvalidCategoryError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, entities.TypePerson, ice.ReqType)
}

func TestReviewService_PersonActivatesOnEndorsement(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypePerson, entities.WorkflowReview, "Jane Doe")

	require.NoError(t, svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", ""))
	assert.Equal(t, entities.WorkflowActive, currentState(t, db, req.ID), "persons need only the manual endorsement")
}

func TestReviewService_ReReviewSupersedes(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")

	require.NoError(t, svc.RecordCheck(t.Context(), req.ID, entities.CheckReadability, false, `{"score":0.2}`, 0))
	assert.Equal(t, entities.WorkflowRejected, currentState(t, db, req.ID))

	state, err := svc.State(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewRejected, state.Overall)

	// Rows accumulate rather than mutate.
	assert.Len(t, db.Endorsements, 1)
	assert.True(t, db.Endorsements[0].AutomatedCheck)
	assert.Equal(t, entities.CheckReadability, db.Endorsements[0].CheckType)
	require.NotNil(t, db.Endorsements[0].RejectedAt)
}

func TestReviewService_State_NoActivity(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")

	state, err := svc.State(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewNone, state.Overall)
	assert.Len(t, state.Items, 6)
	for _, item := range state.Items {
		assert.Equal(t, entities.ReviewNone, item.Status)
		assert.Nil(t, item.Endorsement)
	}
}

func TestReviewService_EndorsementsKeyedToVersion(t *testing.T) {
	svc, db, sol := newReviewFixture(t)
	versions := NewVersionService(db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowReview, "Faster support")

	require.NoError(t, svc.Approve(t.Context(), req.ID, entities.CategoryEndorsement, "alice", ""))

	// An edit during review resets the slate: the new version has no
	// endorsements of its own.
	statement := "Average response time drops below two hours."
	_, err := versions.Append(t.Context(), req.ID, entities.VersionPatch{Statement: &statement}, KeepState, "carol", time.Time{})
	require.NoError(t, err)

	state, err := svc.State(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewNone, state.Overall)
}
