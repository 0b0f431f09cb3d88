package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/domain/mocks"
)

func TestVersionService_Current(t *testing.T) {
	stepClock(t)
	db := mocks.NewRelationalDB()
	svc := NewVersionService(db)
	sol := seedSolution(t, db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	t.Run("zero asOf resolves now", func(t *testing.T) {
		current, err := svc.Current(t.Context(), req.ID, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, "Faster support", current.Name)
	})

	t.Run("unknown requirement", func(t *testing.T) {
		_, err := svc.Current(t.Context(), "nope", time.Time{})
		var nfe *entities.NotFoundError
		assert.ErrorAs(t, err, &nfe)
	})

	t.Run("asOf before first version", func(t *testing.T) {
		_, err := svc.Current(t.Context(), req.ID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
		var nfe *entities.NotFoundError
		assert.ErrorAs(t, err, &nfe)
	})
}

func TestVersionService_Append_CarriesForward(t *testing.T) {
	stepClock(t)
	db := mocks.NewRelationalDB()
	svc := NewVersionService(db)
	sol := seedSolution(t, db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	statement := "Average response time drops below two hours."
	next, err := svc.Append(t.Context(), req.ID, entities.VersionPatch{Statement: &statement}, KeepState, "alice", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "Faster support", next.Name, "name carries forward")
	assert.Equal(t, statement, next.Statement)
	assert.Equal(t, entities.WorkflowProposed, next.WorkflowState, "KeepState preserves the base state")
	assert.Equal(t, "alice", next.ModifiedBy)

	versions, err := svc.History(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2, "prior rows are never altered")
}

func TestVersionService_Append_OptimisticLock(t *testing.T) {
	stepClock(t)
	db := mocks.NewRelationalDB()
	svc := NewVersionService(db)
	sol := seedSolution(t, db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	current, err := svc.Current(t.Context(), req.ID, time.Time{})
	require.NoError(t, err)

	// A second writer appends after the first read.
	name := "Faster support for premium tiers"
	_, err = svc.Append(t.Context(), req.ID, entities.VersionPatch{Name: &name}, KeepState, "bob", time.Time{})
	require.NoError(t, err)

	// The stale base must now be rejected.
	name2 := "Faster support everywhere"
	_, err = svc.Append(t.Context(), req.ID, entities.VersionPatch{Name: &name2}, KeepState, "alice", current.EffectiveFrom)
	var conflict *entities.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, req.ID, conflict.RequirementID)

	versions, err := svc.History(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2, "the losing append writes nothing")
}

func TestVersionService_Append_TombstonedRequirement(t *testing.T) {
	stepClock(t)
	db := mocks.NewRelationalDB()
	svc := NewVersionService(db)
	sol := seedSolution(t, db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	_, err := svc.SoftDelete(t.Context(), req.ID, "alice")
	require.NoError(t, err)

	name := "revived"
	_, err = svc.Append(t.Context(), req.ID, entities.VersionPatch{Name: &name}, KeepState, "alice", time.Time{})
	var nfe *entities.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestVersionService_Append_ValidatesContent(t *testing.T) {
	stepClock(t)
	db := mocks.NewRelationalDB()
	svc := NewVersionService(db)
	sol := seedSolution(t, db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	empty := ""
	_, err := svc.Append(t.Context(), req.ID, entities.VersionPatch{Name: &empty}, KeepState, "alice", time.Time{})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestVersionService_SoftDelete(t *testing.T) {
	stepClock(t)
	db := mocks.NewRelationalDB()
	svc := NewVersionService(db)
	sol := seedSolution(t, db)
	req := seedRequirement(t, db, sol.ID, entities.TypeGoal, entities.WorkflowProposed, "Faster support")

	tombstone, err := svc.SoftDelete(t.Context(), req.ID, "alice")
	require.NoError(t, err)
	assert.True(t, tombstone.IsDeleted)
	assert.Equal(t, entities.WorkflowRemoved, tombstone.WorkflowState)
	assert.Equal(t, "Faster support", tombstone.Name, "content is preserved for audit")

	_, err = svc.Current(t.Context(), req.ID, time.Time{})
	var nfe *entities.NotFoundError
	assert.ErrorAs(t, err, &nfe)

	// History still shows everything.
	versions, err := svc.History(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	// A second delete fails: nothing is current anymore.
	_, err = svc.SoftDelete(t.Context(), req.ID, "alice")
	assert.ErrorAs(t, err, &nfe)
}
