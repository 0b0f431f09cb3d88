package ports

import (
	"context"
	"time"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

// RelationalDB defines the interface for relational database operations.
// All requirement identities, version rows, endorsements and relations live
// here; the vector index only carries a searchable projection.
//
// Implementations must keep multi-row mutations (cascading deletes) inside
// one transaction so readers never observe orphaned rows.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Organization operations

	// SaveOrganization inserts or updates an organization.
	SaveOrganization(ctx context.Context, org *entities.Organization) error

	// FindOrganizationBySlug finds an organization by slug, or nil.
	FindOrganizationBySlug(ctx context.Context, slug string) (*entities.Organization, error)

	// ListOrganizations lists all organizations ordered by slug.
	ListOrganizations(ctx context.Context) ([]entities.Organization, error)

	// DeleteOrganization removes an organization and, transactionally, all
	// solutions it owns together with everything those solutions own.
	DeleteOrganization(ctx context.Context, id string) error

	// Solution operations

	// SaveSolution inserts or updates a solution.
	SaveSolution(ctx context.Context, sol *entities.Solution) error

	// FindSolutionBySlug finds a solution by slug within an organization, or nil.
	FindSolutionBySlug(ctx context.Context, orgID, slug string) (*entities.Solution, error)

	// FindSolutionByID finds a solution by ID, or nil.
	FindSolutionByID(ctx context.Context, id string) (*entities.Solution, error)

	// ListSolutions lists an organization's solutions ordered by slug.
	ListSolutions(ctx context.Context, orgID string) ([]entities.Solution, error)

	// DeleteSolution removes a solution and, in one transaction, all owned
	// requirements, versions, relations, endorsements and parsed batches.
	DeleteSolution(ctx context.Context, id string) error

	// Requirement identity operations

	// SaveRequirement inserts a requirement identity. Identities are
	// immutable; saving an existing ID is an error.
	SaveRequirement(ctx context.Context, req *entities.Requirement) error

	// FindRequirementByID finds an identity by ID, or nil.
	FindRequirementByID(ctx context.Context, id string) (*entities.Requirement, error)

	// FindRequirementByReqID finds an identity by its human-facing reqId
	// within a solution, or nil.
	FindRequirementByReqID(ctx context.Context, solutionID, reqID string) (*entities.Requirement, error)

	// ListRequirements lists identities for a solution, optionally filtered
	// by type (empty type means all), with pagination.
	ListRequirements(ctx context.Context, solutionID string, reqType entities.RequirementType, limit, offset int) ([]entities.Requirement, error)

	// CountRequirements counts identities for a solution, optionally by type.
	CountRequirements(ctx context.Context, solutionID string, reqType entities.RequirementType) (int, error)

	// NextReqSequence atomically reserves the next per-prefix sequence
	// number for reqId assignment within a solution.
	NextReqSequence(ctx context.Context, solutionID, prefix string) (int, error)

	// Version operations

	// SaveVersion appends a version row. The (requirement_id,
	// effective_from) pair is unique; a collision returns
	// *entities.ConflictError.
	SaveVersion(ctx context.Context, version *entities.RequirementVersion) error

	// FindVersions returns all versions of a requirement ordered by
	// effective_from ascending.
	FindVersions(ctx context.Context, requirementID string) ([]entities.RequirementVersion, error)

	// CountVersions counts how many versions a requirement has.
	CountVersions(ctx context.Context, requirementID string) (int, error)

	// Endorsement operations

	// SaveEndorsement appends an endorsement row.
	SaveEndorsement(ctx context.Context, endorsement *entities.Endorsement) error

	// FindEndorsements returns all endorsement rows for one requirement
	// version ordered by created_at ascending.
	FindEndorsements(ctx context.Context, requirementID string, effectiveFrom time.Time) ([]entities.Endorsement, error)

	// Relation operations

	// SaveRelation inserts a relation edge.
	SaveRelation(ctx context.Context, rel *entities.Relation) error

	// FindRelationByID finds a relation by ID, or nil.
	FindRelationByID(ctx context.Context, id string) (*entities.Relation, error)

	// FindRelationsByRequirement finds relations where the requirement is an
	// endpoint, optionally filtered by relation type (empty means all).
	FindRelationsByRequirement(ctx context.Context, requirementID string, relType entities.RelationType) ([]entities.Relation, error)

	// FindRelationBetween finds a relation of the given type from left to
	// right, or nil.
	FindRelationBetween(ctx context.Context, leftID, rightID string, relType entities.RelationType) (*entities.Relation, error)

	// DeleteRelation deletes a relation by ID.
	DeleteRelation(ctx context.Context, id string) error

	// DeleteRelationsByRequirement deletes all relations where the
	// requirement is an endpoint.
	DeleteRelationsByRequirement(ctx context.Context, requirementID string) error

	// CountRelations counts relations within a solution.
	CountRelations(ctx context.Context, solutionID string) (int, error)

	// Parsed batch operations

	// SaveParsedBatch inserts an ingestion batch record.
	SaveParsedBatch(ctx context.Context, batch *entities.ParsedBatch) error

	// FindParsedBatch finds a batch by ID, or nil.
	FindParsedBatch(ctx context.Context, id string) (*entities.ParsedBatch, error)

	// ListParsedBatches lists a solution's batches, newest first.
	ListParsedBatches(ctx context.Context, solutionID string) ([]entities.ParsedBatch, error)

	// Audit operations

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action, requirementID, actor string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific requirement.
	FindAuditLog(ctx context.Context, requirementID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
