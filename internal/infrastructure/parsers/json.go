package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses requirements from JSON format.
type JSONParser struct{}

// Parse reads a JSON array from the reader and returns parsed requirements.
func (p *JSONParser) Parse(r io.Reader) ([]RawRequirement, error) {
	var reqs []RawRequirement

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&reqs); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Line numbers are array indexes, 1-indexed
	for i := range reqs {
		reqs[i].LineNum = i + 1
	}

	return reqs, nil
}
