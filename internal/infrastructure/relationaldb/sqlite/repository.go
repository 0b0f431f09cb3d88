// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Organizations (top-level namespaces)
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Solutions (own all requirements and relations under them)
	CREATE TABLE IF NOT EXISTS solutions (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(organization_id, slug)
	);
	CREATE INDEX IF NOT EXISTS idx_solutions_org ON solutions(organization_id);

	-- Requirement identities (immutable once created)
	CREATE TABLE IF NOT EXISTS requirements (
		id TEXT PRIMARY KEY,
		solution_id TEXT NOT NULL REFERENCES solutions(id) ON DELETE CASCADE,
		req_type TEXT NOT NULL,
		req_id TEXT NOT NULL,
		follows_id TEXT,
		created_by TEXT NOT NULL,
		creation_date TIMESTAMP NOT NULL,
		UNIQUE(solution_id, req_id)
	);
	CREATE INDEX IF NOT EXISTS idx_requirements_solution ON requirements(solution_id);
	CREATE INDEX IF NOT EXISTS idx_requirements_type ON requirements(solution_id, req_type);

	-- Version rows (append-only, effective-dated)
	CREATE TABLE IF NOT EXISTS requirement_versions (
		requirement_id TEXT NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
		effective_from TIMESTAMP NOT NULL,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		modified_by TEXT NOT NULL,
		name TEXT NOT NULL,
		statement TEXT,
		workflow_state TEXT NOT NULL,
		details TEXT,
		PRIMARY KEY (requirement_id, effective_from)
	);

	-- Endorsements (append-only review rows keyed to a version)
	CREATE TABLE IF NOT EXISTS endorsements (
		id TEXT PRIMARY KEY,
		requirement_id TEXT NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
		effective_from TIMESTAMP NOT NULL,
		endorsed_by TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		endorsed_at TIMESTAMP,
		rejected_at TIMESTAMP,
		comments TEXT,
		automated_check INTEGER NOT NULL DEFAULT 0,
		check_type TEXT,
		check_details TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_endorsements_version ON endorsements(requirement_id, effective_from);

	-- Relations (typed directed edges between requirements)
	CREATE TABLE IF NOT EXISTS relations (
		id TEXT PRIMARY KEY,
		solution_id TEXT NOT NULL REFERENCES solutions(id) ON DELETE CASCADE,
		left_id TEXT NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
		right_id TEXT NOT NULL REFERENCES requirements(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_relations_left ON relations(left_id);
	CREATE INDEX IF NOT EXISTS idx_relations_right ON relations(right_id);
	CREATE INDEX IF NOT EXISTS idx_relations_solution ON relations(solution_id);

	-- Parsed batches (one row per ingestion run)
	CREATE TABLE IF NOT EXISTS parsed_batches (
		id TEXT PRIMARY KEY,
		solution_id TEXT NOT NULL REFERENCES solutions(id) ON DELETE CASCADE,
		source_file TEXT,
		submitted_by TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_parsed_batches_solution ON parsed_batches(solution_id);

	-- Per-prefix reqId counters
	CREATE TABLE IF NOT EXISTS req_sequences (
		solution_id TEXT NOT NULL,
		prefix TEXT NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (solution_id, prefix)
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		requirement_id TEXT,
		actor TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_requirement ON audit_log(requirement_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveOrganization inserts or updates an organization.
func (r *Repository) SaveOrganization(ctx context.Context, org *entities.Organization) error {
	query := `
		INSERT INTO organizations (id, slug, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`
	_, err := r.db.ExecContext(ctx, query,
		org.ID,
		org.Slug,
		org.Name,
		nullString(org.Description),
		org.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving organization: %w", err)
	}
	return nil
}

// FindOrganizationBySlug finds an organization by slug.
func (r *Repository) FindOrganizationBySlug(ctx context.Context, slug string) (*entities.Organization, error) {
	query := `
		SELECT id, slug, name, description, created_at
		FROM organizations
		WHERE slug = ?
	`
	row := r.db.QueryRowContext(ctx, query, slug)
	return scanOrganization(row)
}

// ListOrganizations lists all organizations ordered by slug.
func (r *Repository) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	query := `
		SELECT id, slug, name, description, created_at
		FROM organizations
		ORDER BY slug ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}
	defer rows.Close()

	var orgs []entities.Organization
	for rows.Next() {
		var org entities.Organization
		var description sql.NullString
		if err := rows.Scan(&org.ID, &org.Slug, &org.Name, &description, &org.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		org.Description = description.String
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// DeleteOrganization removes an organization; foreign keys cascade to its
// solutions and everything they own.
func (r *Repository) DeleteOrganization(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("organization not found: %s", id)
	}
	return nil
}

// SaveSolution inserts or updates a solution.
func (r *Repository) SaveSolution(ctx context.Context, sol *entities.Solution) error {
	query := `
		INSERT INTO solutions (id, organization_id, slug, name, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`
	_, err := r.db.ExecContext(ctx, query,
		sol.ID,
		sol.OrganizationID,
		sol.Slug,
		sol.Name,
		nullString(sol.Description),
		sol.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving solution: %w", err)
	}
	return nil
}

// FindSolutionBySlug finds a solution by slug within an organization.
func (r *Repository) FindSolutionBySlug(ctx context.Context, orgID, slug string) (*entities.Solution, error) {
	query := `
		SELECT id, organization_id, slug, name, description, created_at
		FROM solutions
		WHERE organization_id = ? AND slug = ?
	`
	return scanSolution(r.db.QueryRowContext(ctx, query, orgID, slug))
}

// FindSolutionByID finds a solution by ID.
func (r *Repository) FindSolutionByID(ctx context.Context, id string) (*entities.Solution, error) {
	query := `
		SELECT id, organization_id, slug, name, description, created_at
		FROM solutions
		WHERE id = ?
	`
	return scanSolution(r.db.QueryRowContext(ctx, query, id))
}

// ListSolutions lists an organization's solutions ordered by slug.
func (r *Repository) ListSolutions(ctx context.Context, orgID string) ([]entities.Solution, error) {
	query := `
		SELECT id, organization_id, slug, name, description, created_at
		FROM solutions
		WHERE organization_id = ?
		ORDER BY slug ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("querying solutions: %w", err)
	}
	defer rows.Close()

	var sols []entities.Solution
	for rows.Next() {
		var sol entities.Solution
		var description sql.NullString
		if err := rows.Scan(&sol.ID, &sol.OrganizationID, &sol.Slug, &sol.Name, &description, &sol.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning solution: %w", err)
		}
		sol.Description = description.String
		sols = append(sols, sol)
	}
	return sols, rows.Err()
}

// DeleteSolution removes a solution; foreign keys cascade to its
// requirements, versions, endorsements, relations, batches and sequences.
func (r *Repository) DeleteSolution(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM req_sequences WHERE solution_id = ?`, id); err != nil {
		return fmt.Errorf("deleting sequences: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM solutions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting solution: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("solution not found: %s", id)
	}
	return tx.Commit()
}

// SaveRequirement inserts a requirement identity.
func (r *Repository) SaveRequirement(ctx context.Context, req *entities.Requirement) error {
	query := `
		INSERT INTO requirements (id, solution_id, req_type, req_id, follows_id, created_by, creation_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.SolutionID,
		string(req.ReqType),
		req.ReqID,
		nullString(req.FollowsID),
		req.CreatedBy,
		req.CreationDate,
	)
	if err != nil {
		return fmt.Errorf("saving requirement: %w", err)
	}
	return nil
}

// FindRequirementByID finds an identity by ID.
func (r *Repository) FindRequirementByID(ctx context.Context, id string) (*entities.Requirement, error) {
	query := `
		SELECT id, solution_id, req_type, req_id, follows_id, created_by, creation_date
		FROM requirements
		WHERE id = ?
	`
	return scanRequirement(r.db.QueryRowContext(ctx, query, id))
}

// FindRequirementByReqID finds an identity by its human-facing reqId.
func (r *Repository) FindRequirementByReqID(ctx context.Context, solutionID, reqID string) (*entities.Requirement, error) {
	query := `
		SELECT id, solution_id, req_type, req_id, follows_id, created_by, creation_date
		FROM requirements
		WHERE solution_id = ? AND req_id = ?
	`
	return scanRequirement(r.db.QueryRowContext(ctx, query, solutionID, reqID))
}

// ListRequirements lists identities for a solution with pagination. An
// empty reqType lists all types.
func (r *Repository) ListRequirements(ctx context.Context, solutionID string, reqType entities.RequirementType, limit, offset int) ([]entities.Requirement, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}

	query := `
		SELECT id, solution_id, req_type, req_id, follows_id, created_by, creation_date
		FROM requirements
		WHERE solution_id = ?
	`
	args := []any{solutionID}
	if reqType != "" {
		query += ` AND req_type = ?`
		args = append(args, string(reqType))
	}
	// rtrim strips the numeric sequence, leaving the type prefix
	// ("G.1.10" -> "G.1."); ordering by prefix then numeric sequence keeps
	// "G.1.2" before "G.1.10".
	query += `
		ORDER BY rtrim(req_id, '0123456789') ASC,
			CAST(replace(req_id, rtrim(req_id, '0123456789'), '') AS INTEGER) ASC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying requirements: %w", err)
	}
	defer rows.Close()

	var reqs []entities.Requirement
	for rows.Next() {
		req, err := scanRequirementRows(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

// CountRequirements counts identities for a solution, optionally by type.
func (r *Repository) CountRequirements(ctx context.Context, solutionID string, reqType entities.RequirementType) (int, error) {
	query := `SELECT COUNT(*) FROM requirements WHERE solution_id = ?`
	args := []any{solutionID}
	if reqType != "" {
		query += ` AND req_type = ?`
		args = append(args, string(reqType))
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting requirements: %w", err)
	}
	return count, nil
}

// NextReqSequence atomically reserves the next per-prefix sequence number.
func (r *Repository) NextReqSequence(ctx context.Context, solutionID, prefix string) (int, error) {
	query := `
		INSERT INTO req_sequences (solution_id, prefix, seq)
		VALUES (?, ?, 1)
		ON CONFLICT(solution_id, prefix) DO UPDATE SET seq = seq + 1
		RETURNING seq
	`
	var seq int
	if err := r.db.QueryRowContext(ctx, query, solutionID, prefix).Scan(&seq); err != nil {
		return 0, fmt.Errorf("reserving sequence: %w", err)
	}
	return seq, nil
}

// versionDetails is the JSON shape of the type-specific payload column.
type versionDetails struct {
	Behavior    *entities.BehaviorDetails    `json:"behavior,omitempty"`
	Scenario    *entities.ScenarioDetails    `json:"scenario,omitempty"`
	Constraint  *entities.ConstraintDetails  `json:"constraint,omitempty"`
	Stakeholder *entities.StakeholderDetails `json:"stakeholder,omitempty"`
	Person      *entities.PersonDetails      `json:"person,omitempty"`
}

// SaveVersion appends a version row. A duplicate effective_from for the
// same requirement returns *entities.ConflictError.
func (r *Repository) SaveVersion(ctx context.Context, version *entities.RequirementVersion) error {
	details := versionDetails{
		Behavior:    version.Behavior,
		Scenario:    version.Scenario,
		Constraint:  version.Constraint,
		Stakeholder: version.Stakeholder,
		Person:      version.Person,
	}
	var detailsJSON sql.NullString
	if details != (versionDetails{}) {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling version details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO requirement_versions
			(requirement_id, effective_from, is_deleted, modified_by, name, statement, workflow_state, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		version.RequirementID,
		version.EffectiveFrom,
		version.IsDeleted,
		version.ModifiedBy,
		version.Name,
		nullString(version.Statement),
		string(version.WorkflowState),
		detailsJSON,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &entities.ConflictError{
				RequirementID: version.RequirementID,
				EffectiveFrom: version.EffectiveFrom,
			}
		}
		return fmt.Errorf("saving version: %w", err)
	}
	return nil
}

// FindVersions returns all versions ordered by effective_from ascending.
func (r *Repository) FindVersions(ctx context.Context, requirementID string) ([]entities.RequirementVersion, error) {
	query := `
		SELECT requirement_id, effective_from, is_deleted, modified_by, name, statement, workflow_state, details
		FROM requirement_versions
		WHERE requirement_id = ?
		ORDER BY effective_from ASC
	`
	rows, err := r.db.QueryContext(ctx, query, requirementID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var versions []entities.RequirementVersion
	for rows.Next() {
		var v entities.RequirementVersion
		var statement, detailsJSON sql.NullString
		if err := rows.Scan(
			&v.RequirementID,
			&v.EffectiveFrom,
			&v.IsDeleted,
			&v.ModifiedBy,
			&v.Name,
			&statement,
			&v.WorkflowState,
			&detailsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		v.Statement = statement.String
		if detailsJSON.Valid && detailsJSON.String != "" {
			var details versionDetails
			if err := json.Unmarshal([]byte(detailsJSON.String), &details); err != nil {
				return nil, fmt.Errorf("unmarshaling version details: %w", err)
			}
			v.Behavior = details.Behavior
			v.Scenario = details.Scenario
			v.Constraint = details.Constraint
			v.Stakeholder = details.Stakeholder
			v.Person = details.Person
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// CountVersions counts how many versions a requirement has.
func (r *Repository) CountVersions(ctx context.Context, requirementID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requirement_versions WHERE requirement_id = ?`,
		requirementID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting versions: %w", err)
	}
	return count, nil
}

// SaveEndorsement appends an endorsement row.
func (r *Repository) SaveEndorsement(ctx context.Context, e *entities.Endorsement) error {
	query := `
		INSERT INTO endorsements
			(id, requirement_id, effective_from, endorsed_by, category, status,
			 endorsed_at, rejected_at, comments, automated_check, check_type,
			 check_details, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.RequirementID,
		e.EffectiveFrom,
		e.EndorsedBy,
		string(e.Category),
		string(e.Status),
		nullTime(e.EndorsedAt),
		nullTime(e.RejectedAt),
		nullString(e.Comments),
		e.AutomatedCheck,
		nullString(string(e.CheckType)),
		nullString(e.CheckDetails),
		e.RetryCount,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving endorsement: %w", err)
	}
	return nil
}

// FindEndorsements returns endorsement rows for one requirement version
// ordered by created_at ascending.
func (r *Repository) FindEndorsements(ctx context.Context, requirementID string, effectiveFrom time.Time) ([]entities.Endorsement, error) {
	query := `
		SELECT id, requirement_id, effective_from, endorsed_by, category, status,
		       endorsed_at, rejected_at, comments, automated_check, check_type,
		       check_details, retry_count, created_at
		FROM endorsements
		WHERE requirement_id = ? AND effective_from = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, requirementID, effectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("querying endorsements: %w", err)
	}
	defer rows.Close()

	var result []entities.Endorsement
	for rows.Next() {
		var e entities.Endorsement
		var endorsedAt, rejectedAt sql.NullTime
		var comments, checkType, checkDetails sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.RequirementID,
			&e.EffectiveFrom,
			&e.EndorsedBy,
			&e.Category,
			&e.Status,
			&endorsedAt,
			&rejectedAt,
			&comments,
			&e.AutomatedCheck,
			&checkType,
			&checkDetails,
			&e.RetryCount,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning endorsement: %w", err)
		}
		if endorsedAt.Valid {
			t := endorsedAt.Time
			e.EndorsedAt = &t
		}
		if rejectedAt.Valid {
			t := rejectedAt.Time
			e.RejectedAt = &t
		}
		e.Comments = comments.String
		e.CheckType = entities.CheckType(checkType.String)
		e.CheckDetails = checkDetails.String
		result = append(result, e)
	}
	return result, rows.Err()
}

// SaveRelation inserts a relation edge.
func (r *Repository) SaveRelation(ctx context.Context, rel *entities.Relation) error {
	query := `
		INSERT INTO relations (id, solution_id, left_id, right_id, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID,
		rel.SolutionID,
		rel.LeftID,
		rel.RightID,
		string(rel.Type),
		rel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving relation: %w", err)
	}
	return nil
}

// FindRelationByID finds a relation by ID.
func (r *Repository) FindRelationByID(ctx context.Context, id string) (*entities.Relation, error) {
	query := `
		SELECT id, solution_id, left_id, right_id, type, created_at
		FROM relations
		WHERE id = ?
	`
	return scanRelation(r.db.QueryRowContext(ctx, query, id))
}

// FindRelationsByRequirement finds relations where the requirement is an
// endpoint, optionally filtered by type.
func (r *Repository) FindRelationsByRequirement(ctx context.Context, requirementID string, relType entities.RelationType) ([]entities.Relation, error) {
	query := `
		SELECT id, solution_id, left_id, right_id, type, created_at
		FROM relations
		WHERE (left_id = ? OR right_id = ?)
	`
	args := []any{requirementID, requirementID}
	if relType != "" {
		query += ` AND type = ?`
		args = append(args, string(relType))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	var rels []entities.Relation
	for rows.Next() {
		var rel entities.Relation
		if err := rows.Scan(&rel.ID, &rel.SolutionID, &rel.LeftID, &rel.RightID, &rel.Type, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// FindRelationBetween finds a relation of the given type from left to right.
func (r *Repository) FindRelationBetween(ctx context.Context, leftID, rightID string, relType entities.RelationType) (*entities.Relation, error) {
	query := `
		SELECT id, solution_id, left_id, right_id, type, created_at
		FROM relations
		WHERE left_id = ? AND right_id = ? AND type = ?
	`
	return scanRelation(r.db.QueryRowContext(ctx, query, leftID, rightID, string(relType)))
}

// DeleteRelation deletes a relation by ID.
func (r *Repository) DeleteRelation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM relations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting relation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("relation not found: %s", id)
	}
	return nil
}

// DeleteRelationsByRequirement deletes all relations touching a requirement.
func (r *Repository) DeleteRelationsByRequirement(ctx context.Context, requirementID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM relations WHERE left_id = ? OR right_id = ?`,
		requirementID, requirementID,
	)
	if err != nil {
		return fmt.Errorf("deleting relations: %w", err)
	}
	return nil
}

// CountRelations counts relations within a solution.
func (r *Repository) CountRelations(ctx context.Context, solutionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relations WHERE solution_id = ?`,
		solutionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relations: %w", err)
	}
	return count, nil
}

// SaveParsedBatch inserts an ingestion batch record.
func (r *Repository) SaveParsedBatch(ctx context.Context, batch *entities.ParsedBatch) error {
	query := `
		INSERT INTO parsed_batches (id, solution_id, source_file, submitted_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.SolutionID,
		nullString(batch.SourceFile),
		batch.SubmittedBy,
		batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving parsed batch: %w", err)
	}
	return nil
}

// FindParsedBatch finds a batch by ID.
func (r *Repository) FindParsedBatch(ctx context.Context, id string) (*entities.ParsedBatch, error) {
	query := `
		SELECT id, solution_id, source_file, submitted_by, created_at
		FROM parsed_batches
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var batch entities.ParsedBatch
	var sourceFile sql.NullString
	err := row.Scan(&batch.ID, &batch.SolutionID, &sourceFile, &batch.SubmittedBy, &batch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning parsed batch: %w", err)
	}
	batch.SourceFile = sourceFile.String
	return &batch, nil
}

// ListParsedBatches lists a solution's batches, newest first.
func (r *Repository) ListParsedBatches(ctx context.Context, solutionID string) ([]entities.ParsedBatch, error) {
	query := `
		SELECT id, solution_id, source_file, submitted_by, created_at
		FROM parsed_batches
		WHERE solution_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, solutionID)
	if err != nil {
		return nil, fmt.Errorf("querying parsed batches: %w", err)
	}
	defer rows.Close()

	var batches []entities.ParsedBatch
	for rows.Next() {
		var batch entities.ParsedBatch
		var sourceFile sql.NullString
		if err := rows.Scan(&batch.ID, &batch.SolutionID, &sourceFile, &batch.SubmittedBy, &batch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning parsed batch: %w", err)
		}
		batch.SourceFile = sourceFile.String
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action, requirementID, actor string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (action, requirement_id, actor, details) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, nullString(requirementID), nullString(actor), detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific requirement.
func (r *Repository) FindAuditLog(ctx context.Context, requirementID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, requirement_id, actor, details, created_at
		FROM audit_log
		WHERE requirement_id = ?
		ORDER BY id ASC
	`
	return r.queryAuditLog(ctx, query, requirementID)
}

// FindAuditLogByAction finds audit log entries by action type.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, action, requirement_id, actor, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var requirementID, actor, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&requirementID,
			&actor,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.RequirementID = requirementID.String
		entry.Actor = actor.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row scanner) (*entities.Organization, error) {
	var org entities.Organization
	var description sql.NullString
	err := row.Scan(&org.ID, &org.Slug, &org.Name, &description, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning organization: %w", err)
	}
	org.Description = description.String
	return &org, nil
}

func scanSolution(row scanner) (*entities.Solution, error) {
	var sol entities.Solution
	var description sql.NullString
	err := row.Scan(&sol.ID, &sol.OrganizationID, &sol.Slug, &sol.Name, &description, &sol.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning solution: %w", err)
	}
	sol.Description = description.String
	return &sol, nil
}

func scanRequirement(row scanner) (*entities.Requirement, error) {
	req, err := scanRequirementRows(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return req, err
}

func scanRequirementRows(row scanner) (*entities.Requirement, error) {
	var req entities.Requirement
	var followsID sql.NullString
	err := row.Scan(
		&req.ID,
		&req.SolutionID,
		&req.ReqType,
		&req.ReqID,
		&followsID,
		&req.CreatedBy,
		&req.CreationDate,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning requirement: %w", err)
	}
	req.FollowsID = followsID.String
	return &req, nil
}

func scanRelation(row scanner) (*entities.Relation, error) {
	var rel entities.Relation
	err := row.Scan(&rel.ID, &rel.SolutionID, &rel.LeftID, &rel.RightID, &rel.Type, &rel.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relation: %w", err)
	}
	return &rel, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// isUniqueViolation reports whether the error is a UNIQUE constraint
// failure from the sqlite driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
