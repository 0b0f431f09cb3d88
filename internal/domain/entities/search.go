package entities

// RequirementDoc is the flattened projection of a requirement's current
// version kept in the vector index for semantic search and duplicate
// detection.
type RequirementDoc struct {
	ID         string          `json:"id"`
	SolutionID string          `json:"solution_id"`
	ReqType    RequirementType `json:"req_type"`
	ReqID      string          `json:"req_id"`
	Name       string          `json:"name"`
	Statement  string          `json:"statement"`
	Embedding  []float32       `json:"embedding,omitempty"`
}

// SearchHit is one semantic search result.
type SearchHit struct {
	Doc   RequirementDoc `json:"doc"`
	Score float32        `json:"score"`
}
