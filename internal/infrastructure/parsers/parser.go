// Package parsers provides parsers for importing requirement documents
// from various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawRequirement represents a requirement parsed from an external source
// before validation. Type-specific fields are flat so the CSV form stays
// one row per requirement.
type RawRequirement struct {
	ReqType   string `json:"req_type"`
	Name      string `json:"name"`
	Statement string `json:"statement,omitempty"`

	Priority            string `json:"priority,omitempty"`
	ConstraintCategory  string `json:"constraint_category,omitempty"`
	PrimaryActor        string `json:"primary_actor,omitempty"`
	Outcome             string `json:"outcome,omitempty"`
	Precondition        string `json:"precondition,omitempty"`
	MainSuccessScenario string `json:"main_success_scenario,omitempty"`
	Email               string `json:"email,omitempty"`
	Segmentation        string `json:"segmentation,omitempty"`
	Interest            *int   `json:"interest,omitempty"`
	Influence           *int   `json:"influence,omitempty"`

	LineNum int `json:"-"` // set by the parser
}

// Parser defines the interface for parsing requirements from various
// formats.
type Parser interface {
	Parse(r io.Reader) ([]RawRequirement, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
