package mocks

import (
	"context"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	Docs []entities.RequirementDoc
	Err  error

	// Search results returned regardless of the query embedding.
	SearchHits []entities.SearchHit

	// Call tracking
	SaveCallCount      int
	SaveBatchCallCount int
	SaveBatchLastDocs  []entities.RequirementDoc
	SearchCallCount    int
	DeleteCallCount    int
	DeletedIDs         []string
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *VectorDB) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	return m.Err
}

// Save stores a requirement document, replacing any previous one with the
// same ID.
func (m *VectorDB) Save(ctx context.Context, doc entities.RequirementDoc) error {
	m.SaveCallCount++
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Docs {
		if m.Docs[i].ID == doc.ID {
			m.Docs[i] = doc
			return nil
		}
	}
	m.Docs = append(m.Docs, doc)
	return nil
}

// SaveBatch stores multiple requirement documents.
func (m *VectorDB) SaveBatch(ctx context.Context, docs []entities.RequirementDoc) error {
	m.SaveBatchCallCount++
	m.SaveBatchLastDocs = docs
	if m.Err != nil {
		return m.Err
	}
	for _, doc := range docs {
		if err := m.Save(ctx, doc); err != nil {
			return err
		}
	}
	m.SaveCallCount -= len(docs)
	return nil
}

// Search returns the configured hits filtered by solution.
func (m *VectorDB) Search(ctx context.Context, solutionID string, embedding []float32, limit int) ([]entities.SearchHit, error) {
	m.SearchCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	var hits []entities.SearchHit
	for _, hit := range m.SearchHits {
		if hit.Doc.SolutionID == solutionID {
			hits = append(hits, hit)
		}
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

// SearchByType returns the configured hits filtered by solution and type.
func (m *VectorDB) SearchByType(ctx context.Context, solutionID string, embedding []float32, reqType entities.RequirementType, limit int) ([]entities.SearchHit, error) {
	m.SearchCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	var hits []entities.SearchHit
	for _, hit := range m.SearchHits {
		if hit.Doc.SolutionID == solutionID && hit.Doc.ReqType == reqType {
			hits = append(hits, hit)
		}
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

// Delete removes a requirement document by ID.
func (m *VectorDB) Delete(ctx context.Context, id string) error {
	m.DeleteCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.DeletedIDs = append(m.DeletedIDs, id)
	for i := range m.Docs {
		if m.Docs[i].ID == id {
			m.Docs = append(m.Docs[:i], m.Docs[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteBySolution removes all documents belonging to a solution.
func (m *VectorDB) DeleteBySolution(ctx context.Context, solutionID string) error {
	if m.Err != nil {
		return m.Err
	}
	kept := m.Docs[:0]
	for _, doc := range m.Docs {
		if doc.SolutionID != solutionID {
			kept = append(kept, doc)
		}
	}
	m.Docs = kept
	return nil
}
