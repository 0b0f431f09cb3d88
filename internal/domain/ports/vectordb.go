package ports

import (
	"context"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

// VectorDB defines the interface for the semantic requirement index. It
// holds one document per requirement, reflecting the current version.
type VectorDB interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// Save stores a requirement document with its embedding, replacing any
	// previous document for the same requirement.
	Save(ctx context.Context, doc entities.RequirementDoc) error

	// SaveBatch stores multiple requirement documents.
	SaveBatch(ctx context.Context, docs []entities.RequirementDoc) error

	// Search performs a semantic search within a solution.
	Search(ctx context.Context, solutionID string, embedding []float32, limit int) ([]entities.SearchHit, error)

	// SearchByType performs a semantic search within a solution filtered by
	// requirement type.
	SearchByType(ctx context.Context, solutionID string, embedding []float32, reqType entities.RequirementType, limit int) ([]entities.SearchHit, error)

	// Delete removes a requirement document by ID.
	Delete(ctx context.Context, id string) error

	// DeleteBySolution removes all documents belonging to a solution.
	DeleteBySolution(ctx context.Context, solutionID string) error
}
