package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(t.Context()))
	// EnsureSchema is idempotent.
	require.NoError(t, repo.EnsureSchema(t.Context()))
	return repo
}

func seedOrg(t *testing.T, repo *Repository) *entities.Organization {
	t.Helper()
	org := &entities.Organization{ID: "org-1", Slug: "acme", Name: "Acme", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveOrganization(t.Context(), org))
	return org
}

func seedSol(t *testing.T, repo *Repository, orgID string) *entities.Solution {
	t.Helper()
	sol := &entities.Solution{ID: "sol-1", OrganizationID: orgID, Slug: "billing", Name: "Billing", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveSolution(t.Context(), sol))
	return sol
}

func seedReq(t *testing.T, repo *Repository, solutionID, id, reqID string, reqType entities.RequirementType) *entities.Requirement {
	t.Helper()
	req := &entities.Requirement{
		ID:           id,
		SolutionID:   solutionID,
		ReqType:      reqType,
		ReqID:        reqID,
		CreatedBy:    "alice",
		CreationDate: time.Now().UTC(),
	}
	require.NoError(t, repo.SaveRequirement(t.Context(), req))
	return req
}

func TestRepository_RequiresPath(t *testing.T) {
	_, err := NewRepository(config.SQLiteConfig{})
	assert.Error(t, err)
}

func TestRepository_Organizations(t *testing.T) {
	repo := newTestRepo(t)
	seedOrg(t, repo)

	found, err := repo.FindOrganizationBySlug(t.Context(), "acme")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Acme", found.Name)

	missing, err := repo.FindOrganizationBySlug(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing, "not-found is nil, not an error")

	err = repo.SaveOrganization(t.Context(), &entities.Organization{ID: "org-2", Slug: "acme", Name: "Dup"})
	assert.Error(t, err, "slugs are unique")

	require.NoError(t, repo.SaveOrganization(t.Context(), &entities.Organization{ID: "org-3", Slug: "zeta", Name: "Zeta"}))
	orgs, err := repo.ListOrganizations(t.Context())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, "acme", orgs[0].Slug)
	assert.Equal(t, "zeta", orgs[1].Slug)
}

func TestRepository_Solutions(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)

	found, err := repo.FindSolutionBySlug(t.Context(), org.ID, "billing")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, sol.ID, found.ID)

	byID, err := repo.FindSolutionByID(t.Context(), sol.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	// Same slug under a different organization is fine.
	require.NoError(t, repo.SaveOrganization(t.Context(), &entities.Organization{ID: "org-2", Slug: "other", Name: "Other"}))
	require.NoError(t, repo.SaveSolution(t.Context(), &entities.Solution{ID: "sol-2", OrganizationID: "org-2", Slug: "billing", Name: "Billing"}))

	// Duplicate within the same organization is not.
	err = repo.SaveSolution(t.Context(), &entities.Solution{ID: "sol-3", OrganizationID: org.ID, Slug: "billing", Name: "Dup"})
	assert.Error(t, err)
}

func TestRepository_Requirements(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	req := seedReq(t, repo, sol.ID, "req-1", "G.1.1", entities.TypeGoal)
	seedReq(t, repo, sol.ID, "req-2", "G.3.1", entities.TypeOutcome)
	seedReq(t, repo, sol.ID, "req-3", "G.3.2", entities.TypeOutcome)

	found, err := repo.FindRequirementByID(t.Context(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entities.TypeGoal, found.ReqType)
	assert.Equal(t, "alice", found.CreatedBy)

	byReqID, err := repo.FindRequirementByReqID(t.Context(), sol.ID, "G.3.1")
	require.NoError(t, err)
	require.NotNil(t, byReqID)
	assert.Equal(t, "req-2", byReqID.ID)

	all, err := repo.ListRequirements(t.Context(), sol.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	outcomes, err := repo.ListRequirements(t.Context(), sol.ID, entities.TypeOutcome, 0, 0)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)

	paged, err := repo.ListRequirements(t.Context(), sol.ID, "", 2, 1)
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "G.3.1", paged[0].ReqID)

	count, err := repo.CountRequirements(t.Context(), sol.ID, entities.TypeOutcome)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRepository_ListRequirements_NumericOrder(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	seedReq(t, repo, sol.ID, "req-1", "G.1.10", entities.TypeGoal)
	seedReq(t, repo, sol.ID, "req-2", "G.1.2", entities.TypeGoal)
	seedReq(t, repo, sol.ID, "req-3", "G.1.1", entities.TypeGoal)
	seedReq(t, repo, sol.ID, "req-4", "E.3.5", entities.TypeConstraint)

	all, err := repo.ListRequirements(t.Context(), sol.ID, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)

	got := make([]string, len(all))
	for i, r := range all {
		got[i] = r.ReqID
	}
	assert.Equal(t, []string{"E.3.5", "G.1.1", "G.1.2", "G.1.10"}, got,
		"the sequence sorts numerically, not lexicographically")
}

func TestRepository_NextReqSequence(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	require.NoError(t, repo.SaveSolution(t.Context(), &entities.Solution{ID: "sol-2", OrganizationID: org.ID, Slug: "auth", Name: "Auth"}))

	for want := 1; want <= 3; want++ {
		seq, err := repo.NextReqSequence(t.Context(), sol.ID, "G.3")
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	// Sequences are independent per prefix and per solution.
	seq, err := repo.NextReqSequence(t.Context(), sol.ID, "G.1")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	seq, err = repo.NextReqSequence(t.Context(), "sol-2", "G.3")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestRepository_Versions(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	req := seedReq(t, repo, sol.ID, "req-1", "S.2.1", entities.TypeFunctionalBehavior)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v1 := entities.RequirementVersion{
		RequirementID: req.ID,
		EffectiveFrom: base,
		ModifiedBy:    "alice",
		Name:          "Login",
		Statement:     "Users log in with email and password.",
		WorkflowState: entities.WorkflowProposed,
		Behavior:      &entities.BehaviorDetails{Priority: entities.PriorityMust},
	}
	require.NoError(t, repo.SaveVersion(t.Context(), &v1))

	v2 := v1
	v2.EffectiveFrom = base.Add(time.Hour)
	v2.WorkflowState = entities.WorkflowReview
	require.NoError(t, repo.SaveVersion(t.Context(), &v2))

	versions, err := repo.FindVersions(t.Context(), req.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].EffectiveFrom.Equal(base), "ordered ascending")
	assert.Equal(t, entities.WorkflowReview, versions[1].WorkflowState)
	require.NotNil(t, versions[0].Behavior, "the details payload survives the round trip")
	assert.Equal(t, entities.PriorityMust, versions[0].Behavior.Priority)
	assert.Nil(t, versions[0].Scenario)

	count, err := repo.CountVersions(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRepository_SaveVersion_Conflict(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	req := seedReq(t, repo, sol.ID, "req-1", "G.1.1", entities.TypeGoal)

	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := entities.RequirementVersion{
		RequirementID: req.ID,
		EffectiveFrom: from,
		ModifiedBy:    "alice",
		Name:          "Faster support",
		WorkflowState: entities.WorkflowProposed,
	}
	require.NoError(t, repo.SaveVersion(t.Context(), &v))

	err := repo.SaveVersion(t.Context(), &v)
	var conflict *entities.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, req.ID, conflict.RequirementID)
}

func TestRepository_Endorsements(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	req := seedReq(t, repo, sol.ID, "req-1", "G.1.1", entities.TypeGoal)

	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	endorsedAt := from.Add(time.Minute)
	manual := entities.Endorsement{
		ID:            "end-1",
		RequirementID: req.ID,
		EffectiveFrom: from,
		EndorsedBy:    "alice",
		Category:      entities.CategoryEndorsement,
		Status:        entities.ReviewApproved,
		EndorsedAt:    &endorsedAt,
		Comments:      "looks good",
		CreatedAt:     from.Add(time.Minute),
	}
	require.NoError(t, repo.SaveEndorsement(t.Context(), &manual))

	check := entities.Endorsement{
		ID:             "end-2",
		RequirementID:  req.ID,
		EffectiveFrom:  from,
		EndorsedBy:     "checker:readability_score",
		Category:       entities.CategoryReadability,
		Status:         entities.ReviewRejected,
		AutomatedCheck: true,
		CheckType:      entities.CheckReadability,
		CheckDetails:   `{"score":0.3}`,
		RetryCount:     1,
		CreatedAt:      from.Add(2 * time.Minute),
	}
	require.NoError(t, repo.SaveEndorsement(t.Context(), &check))

	// Rows keyed to another version are invisible.
	other := manual
	other.ID = "end-3"
	other.EffectiveFrom = from.Add(time.Hour)
	require.NoError(t, repo.SaveEndorsement(t.Context(), &other))

	rows, err := repo.FindEndorsements(t.Context(), req.ID, from)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "end-1", rows[0].ID, "ordered by created_at")
	require.NotNil(t, rows[0].EndorsedAt)
	assert.True(t, rows[0].EndorsedAt.Equal(endorsedAt))
	assert.Equal(t, "looks good", rows[0].Comments)

	assert.True(t, rows[1].AutomatedCheck)
	assert.Equal(t, entities.CheckReadability, rows[1].CheckType)
	assert.Equal(t, `{"score":0.3}`, rows[1].CheckDetails)
	assert.Equal(t, 1, rows[1].RetryCount)
	assert.Nil(t, rows[1].EndorsedAt)
}

func TestRepository_Relations(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	seedReq(t, repo, sol.ID, "req-1", "G.1.1", entities.TypeGoal)
	seedReq(t, repo, sol.ID, "req-2", "G.3.1", entities.TypeOutcome)
	seedReq(t, repo, sol.ID, "req-3", "G.3.2", entities.TypeOutcome)

	rel := &entities.Relation{
		ID: "rel-1", SolutionID: sol.ID, LeftID: "req-2", RightID: "req-1",
		Type: entities.RelationBelongs, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.SaveRelation(t.Context(), rel))
	require.NoError(t, repo.SaveRelation(t.Context(), &entities.Relation{
		ID: "rel-2", SolutionID: sol.ID, LeftID: "req-3", RightID: "req-1",
		Type: entities.RelationExplains, CreatedAt: time.Now().UTC(),
	}))

	touching, err := repo.FindRelationsByRequirement(t.Context(), "req-1", "")
	require.NoError(t, err)
	assert.Len(t, touching, 2)

	belongs, err := repo.FindRelationsByRequirement(t.Context(), "req-1", entities.RelationBelongs)
	require.NoError(t, err)
	require.Len(t, belongs, 1)
	assert.Equal(t, "rel-1", belongs[0].ID)

	between, err := repo.FindRelationBetween(t.Context(), "req-2", "req-1", entities.RelationBelongs)
	require.NoError(t, err)
	require.NotNil(t, between)

	none, err := repo.FindRelationBetween(t.Context(), "req-1", "req-2", entities.RelationBelongs)
	require.NoError(t, err)
	assert.Nil(t, none, "relations are directed")

	count, err := repo.CountRelations(t.Context(), sol.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.DeleteRelation(t.Context(), "rel-1"))
	gone, err := repo.FindRelationByID(t.Context(), "rel-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRepository_DeleteSolution_Cascades(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	req := seedReq(t, repo, sol.ID, "req-1", "G.1.1", entities.TypeGoal)

	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveVersion(t.Context(), &entities.RequirementVersion{
		RequirementID: req.ID, EffectiveFrom: from, ModifiedBy: "alice",
		Name: "Faster support", WorkflowState: entities.WorkflowProposed,
	}))
	require.NoError(t, repo.SaveEndorsement(t.Context(), &entities.Endorsement{
		ID: "end-1", RequirementID: req.ID, EffectiveFrom: from,
		EndorsedBy: "alice", Category: entities.CategoryEndorsement,
		Status: entities.ReviewApproved, CreatedAt: from,
	}))
	_, err := repo.NextReqSequence(t.Context(), sol.ID, "G.1")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSolution(t.Context(), sol.ID))

	gone, err := repo.FindRequirementByID(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	versions, err := repo.FindVersions(t.Context(), req.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	rows, err := repo.FindEndorsements(t.Context(), req.ID, from)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The sequence starts over for a recreated solution.
	require.NoError(t, repo.SaveSolution(t.Context(), &entities.Solution{ID: sol.ID, OrganizationID: org.ID, Slug: "billing", Name: "Billing"}))
	seq, err := repo.NextReqSequence(t.Context(), sol.ID, "G.1")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestRepository_ParsedBatches(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveParsedBatch(t.Context(), &entities.ParsedBatch{
		ID: "batch-1", SolutionID: sol.ID, SourceFile: "old.md", SubmittedBy: "alice", CreatedAt: base,
	}))
	require.NoError(t, repo.SaveParsedBatch(t.Context(), &entities.ParsedBatch{
		ID: "batch-2", SolutionID: sol.ID, SourceFile: "new.md", SubmittedBy: "bob", CreatedAt: base.Add(time.Hour),
	}))

	batch, err := repo.FindParsedBatch(t.Context(), "batch-1")
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, "old.md", batch.SourceFile)

	batches, err := repo.ListParsedBatches(t.Context(), sol.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "batch-2", batches[0].ID, "newest first")
}

func TestRepository_AuditLog(t *testing.T) {
	repo := newTestRepo(t)
	org := seedOrg(t, repo)
	sol := seedSol(t, repo, org.ID)
	req := seedReq(t, repo, sol.ID, "req-1", "G.1.1", entities.TypeGoal)

	require.NoError(t, repo.LogAction(t.Context(), "requirement.created", req.ID, "alice", map[string]any{"req_id": "G.1.1"}))
	require.NoError(t, repo.LogAction(t.Context(), "workflow.transition", req.ID, "alice", map[string]any{"from": "proposed", "to": "review"}))
	require.NoError(t, repo.LogAction(t.Context(), "workflow.transition", "req-other", "bob", nil))

	entries, err := repo.FindAuditLog(t.Context(), req.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "requirement.created", entries[0].Action)
	assert.Equal(t, "G.1.1", entries[0].Details["req_id"])
	assert.Equal(t, "review", entries[1].Details["to"])

	byAction, err := repo.FindAuditLogByAction(t.Context(), "workflow.transition", 1)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, "req-other", byAction[0].RequirementID, "newest first when filtering by action")
}
