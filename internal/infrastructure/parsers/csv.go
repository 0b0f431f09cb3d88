package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVParser parses requirements from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed requirements.
// Required columns: req_type, name. Optional columns: statement, priority,
// constraint_category, primary_actor, outcome, precondition,
// main_success_scenario, email, segmentation, interest, influence.
func (p *CSVParser) Parse(r io.Reader) ([]RawRequirement, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	for _, col := range []string{"req_type", "name"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawRequirements.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawRequirement, error) {
	var reqs []RawRequirement
	line := 1 // header was line 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record: %w", err)
		}
		line++

		get := func(col string) string {
			idx, ok := colIndex[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		req := RawRequirement{
			ReqType:             get("req_type"),
			Name:                get("name"),
			Statement:           get("statement"),
			Priority:            get("priority"),
			ConstraintCategory:  get("constraint_category"),
			PrimaryActor:        get("primary_actor"),
			Outcome:             get("outcome"),
			Precondition:        get("precondition"),
			MainSuccessScenario: get("main_success_scenario"),
			Email:               get("email"),
			Segmentation:        get("segmentation"),
			LineNum:             line,
		}
		if v := get("interest"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid interest %q", line, v)
			}
			req.Interest = &n
		}
		if v := get("influence"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid influence %q", line, v)
			}
			req.Influence = &n
		}

		reqs = append(reqs, req)
	}

	return reqs, nil
}
