// Package mocks provides hand-rolled test doubles for the domain ports.
package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

// RelationalDB is an in-memory mock implementation of ports.RelationalDB.
// Setting Err makes every method fail with it.
type RelationalDB struct {
	Err error

	Organizations map[string]*entities.Organization
	Solutions     map[string]*entities.Solution
	Requirements  map[string]*entities.Requirement
	Versions      map[string][]entities.RequirementVersion // by requirement ID
	Endorsements  []entities.Endorsement
	Relations     map[string]*entities.Relation
	Batches       map[string]*entities.ParsedBatch
	Audit         []entities.AuditEntry

	sequences map[string]int // solutionID + "/" + prefix
	nextAudit int64
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Organizations: make(map[string]*entities.Organization),
		Solutions:     make(map[string]*entities.Solution),
		Requirements:  make(map[string]*entities.Requirement),
		Versions:      make(map[string][]entities.RequirementVersion),
		Relations:     make(map[string]*entities.Relation),
		Batches:       make(map[string]*entities.ParsedBatch),
		sequences:     make(map[string]int),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error { return m.Err }

// Close closes the database connection.
func (m *RelationalDB) Close() error { return nil }

// Organization methods.

// SaveOrganization inserts or updates an organization.
func (m *RelationalDB) SaveOrganization(_ context.Context, org *entities.Organization) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *org
	m.Organizations[org.ID] = &cp
	return nil
}

// FindOrganizationBySlug finds an organization by slug.
func (m *RelationalDB) FindOrganizationBySlug(_ context.Context, slug string) (*entities.Organization, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, org := range m.Organizations {
		if org.Slug == slug {
			cp := *org
			return &cp, nil
		}
	}
	return nil, nil
}

// ListOrganizations lists all organizations ordered by slug.
func (m *RelationalDB) ListOrganizations(_ context.Context) ([]entities.Organization, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Organization, 0, len(m.Organizations))
	for _, org := range m.Organizations {
		result = append(result, *org)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result, nil
}

// DeleteOrganization removes an organization and everything it owns.
func (m *RelationalDB) DeleteOrganization(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	for solID, sol := range m.Solutions {
		if sol.OrganizationID == id {
			if err := m.DeleteSolution(ctx, solID); err != nil {
				return err
			}
		}
	}
	delete(m.Organizations, id)
	return nil
}

// Solution methods.

// SaveSolution inserts or updates a solution.
func (m *RelationalDB) SaveSolution(_ context.Context, sol *entities.Solution) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *sol
	m.Solutions[sol.ID] = &cp
	return nil
}

// FindSolutionBySlug finds a solution by slug within an organization.
func (m *RelationalDB) FindSolutionBySlug(_ context.Context, orgID, slug string) (*entities.Solution, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, sol := range m.Solutions {
		if sol.OrganizationID == orgID && sol.Slug == slug {
			cp := *sol
			return &cp, nil
		}
	}
	return nil, nil
}

// FindSolutionByID finds a solution by ID.
func (m *RelationalDB) FindSolutionByID(_ context.Context, id string) (*entities.Solution, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	sol, ok := m.Solutions[id]
	if !ok {
		return nil, nil
	}
	cp := *sol
	return &cp, nil
}

// ListSolutions lists an organization's solutions ordered by slug.
func (m *RelationalDB) ListSolutions(_ context.Context, orgID string) ([]entities.Solution, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Solution
	for _, sol := range m.Solutions {
		if sol.OrganizationID == orgID {
			result = append(result, *sol)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result, nil
}

// DeleteSolution removes a solution and all owned rows.
func (m *RelationalDB) DeleteSolution(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	for reqID, req := range m.Requirements {
		if req.SolutionID == id {
			delete(m.Requirements, reqID)
			delete(m.Versions, reqID)
			filtered := m.Endorsements[:0]
			for _, e := range m.Endorsements {
				if e.RequirementID != reqID {
					filtered = append(filtered, e)
				}
			}
			m.Endorsements = filtered
		}
	}
	for relID, rel := range m.Relations {
		if rel.SolutionID == id {
			delete(m.Relations, relID)
		}
	}
	for batchID, batch := range m.Batches {
		if batch.SolutionID == id {
			delete(m.Batches, batchID)
		}
	}
	delete(m.Solutions, id)
	return nil
}

// Requirement identity methods.

// SaveRequirement inserts a requirement identity.
func (m *RelationalDB) SaveRequirement(_ context.Context, req *entities.Requirement) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *req
	m.Requirements[req.ID] = &cp
	return nil
}

// FindRequirementByID finds an identity by ID.
func (m *RelationalDB) FindRequirementByID(_ context.Context, id string) (*entities.Requirement, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	req, ok := m.Requirements[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

// FindRequirementByReqID finds an identity by reqId within a solution.
func (m *RelationalDB) FindRequirementByReqID(_ context.Context, solutionID, reqID string) (*entities.Requirement, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, req := range m.Requirements {
		if req.SolutionID == solutionID && req.ReqID == reqID {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

// ListRequirements lists identities for a solution.
func (m *RelationalDB) ListRequirements(_ context.Context, solutionID string, reqType entities.RequirementType, limit, offset int) ([]entities.Requirement, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Requirement
	for _, req := range m.Requirements {
		if req.SolutionID != solutionID {
			continue
		}
		if reqType != "" && req.ReqType != reqType {
			continue
		}
		result = append(result, *req)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReqID < result[j].ReqID })
	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// CountRequirements counts identities for a solution.
func (m *RelationalDB) CountRequirements(_ context.Context, solutionID string, reqType entities.RequirementType) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, req := range m.Requirements {
		if req.SolutionID != solutionID {
			continue
		}
		if reqType != "" && req.ReqType != reqType {
			continue
		}
		count++
	}
	return count, nil
}

// NextReqSequence reserves the next per-prefix sequence number.
func (m *RelationalDB) NextReqSequence(_ context.Context, solutionID, prefix string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	key := solutionID + "/" + prefix
	m.sequences[key]++
	return m.sequences[key], nil
}

// Version methods.

// SaveVersion appends a version row, enforcing effective-from uniqueness.
func (m *RelationalDB) SaveVersion(_ context.Context, version *entities.RequirementVersion) error {
	if m.Err != nil {
		return m.Err
	}
	for _, v := range m.Versions[version.RequirementID] {
		if v.EffectiveFrom.Equal(version.EffectiveFrom) {
			return &entities.ConflictError{RequirementID: version.RequirementID, EffectiveFrom: version.EffectiveFrom}
		}
	}
	m.Versions[version.RequirementID] = append(m.Versions[version.RequirementID], *version)
	return nil
}

// FindVersions returns all versions ordered by effective-from ascending.
func (m *RelationalDB) FindVersions(_ context.Context, requirementID string) ([]entities.RequirementVersion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	versions := m.Versions[requirementID]
	result := make([]entities.RequirementVersion, len(versions))
	copy(result, versions)
	sort.Slice(result, func(i, j int) bool { return result[i].EffectiveFrom.Before(result[j].EffectiveFrom) })
	return result, nil
}

// CountVersions counts how many versions a requirement has.
func (m *RelationalDB) CountVersions(_ context.Context, requirementID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Versions[requirementID]), nil
}

// Endorsement methods.

// SaveEndorsement appends an endorsement row.
func (m *RelationalDB) SaveEndorsement(_ context.Context, endorsement *entities.Endorsement) error {
	if m.Err != nil {
		return m.Err
	}
	m.Endorsements = append(m.Endorsements, *endorsement)
	return nil
}

// FindEndorsements returns endorsement rows for one requirement version
// ordered by created_at ascending.
func (m *RelationalDB) FindEndorsements(_ context.Context, requirementID string, effectiveFrom time.Time) ([]entities.Endorsement, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Endorsement
	for _, e := range m.Endorsements {
		if e.RequirementID == requirementID && e.EffectiveFrom.Equal(effectiveFrom) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// Relation methods.

// SaveRelation inserts a relation edge.
func (m *RelationalDB) SaveRelation(_ context.Context, rel *entities.Relation) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *rel
	m.Relations[rel.ID] = &cp
	return nil
}

// FindRelationByID finds a relation by ID.
func (m *RelationalDB) FindRelationByID(_ context.Context, id string) (*entities.Relation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	rel, ok := m.Relations[id]
	if !ok {
		return nil, nil
	}
	cp := *rel
	return &cp, nil
}

// FindRelationsByRequirement finds relations touching a requirement.
func (m *RelationalDB) FindRelationsByRequirement(_ context.Context, requirementID string, relType entities.RelationType) ([]entities.Relation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Relation
	for _, rel := range m.Relations {
		if rel.LeftID != requirementID && rel.RightID != requirementID {
			continue
		}
		if relType != "" && rel.Type != relType {
			continue
		}
		result = append(result, *rel)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// FindRelationBetween finds a relation of the given type from left to right.
func (m *RelationalDB) FindRelationBetween(_ context.Context, leftID, rightID string, relType entities.RelationType) (*entities.Relation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rel := range m.Relations {
		if rel.LeftID == leftID && rel.RightID == rightID && rel.Type == relType {
			cp := *rel
			return &cp, nil
		}
	}
	return nil, nil
}

// DeleteRelation deletes a relation by ID.
func (m *RelationalDB) DeleteRelation(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Relations, id)
	return nil
}

// DeleteRelationsByRequirement deletes all relations touching a requirement.
func (m *RelationalDB) DeleteRelationsByRequirement(_ context.Context, requirementID string) error {
	if m.Err != nil {
		return m.Err
	}
	for id, rel := range m.Relations {
		if rel.LeftID == requirementID || rel.RightID == requirementID {
			delete(m.Relations, id)
		}
	}
	return nil
}

// CountRelations counts relations within a solution.
func (m *RelationalDB) CountRelations(_ context.Context, solutionID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, rel := range m.Relations {
		if rel.SolutionID == solutionID {
			count++
		}
	}
	return count, nil
}

// Parsed batch methods.

// SaveParsedBatch inserts an ingestion batch record.
func (m *RelationalDB) SaveParsedBatch(_ context.Context, batch *entities.ParsedBatch) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *batch
	m.Batches[batch.ID] = &cp
	return nil
}

// FindParsedBatch finds a batch by ID.
func (m *RelationalDB) FindParsedBatch(_ context.Context, id string) (*entities.ParsedBatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	batch, ok := m.Batches[id]
	if !ok {
		return nil, nil
	}
	cp := *batch
	return &cp, nil
}

// ListParsedBatches lists a solution's batches, newest first.
func (m *RelationalDB) ListParsedBatches(_ context.Context, solutionID string) ([]entities.ParsedBatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.ParsedBatch
	for _, batch := range m.Batches {
		if batch.SolutionID == solutionID {
			result = append(result, *batch)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Audit methods.

// LogAction logs an action to the audit log.
func (m *RelationalDB) LogAction(_ context.Context, action, requirementID, actor string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.nextAudit++
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:            m.nextAudit,
		Action:        action,
		RequirementID: requirementID,
		Actor:         actor,
		Details:       details,
		CreatedAt:     time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a requirement.
func (m *RelationalDB) FindAuditLog(_ context.Context, requirementID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for _, entry := range m.Audit {
		if entry.RequirementID == requirementID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// FindAuditLogByAction finds audit log entries by action type.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for _, entry := range m.Audit {
		if entry.Action == action {
			result = append(result, entry)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}
