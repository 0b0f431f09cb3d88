package entities

import "time"

// ParsedBatch groups requirements produced by one ingestion run. Candidate
// requirements reference their batch through Requirement.FollowsID until
// they are accepted or removed.
type ParsedBatch struct {
	ID          string    `json:"id"`
	SolutionID  string    `json:"solution_id"`
	SourceFile  string    `json:"source_file,omitempty"`
	SubmittedBy string    `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
}
