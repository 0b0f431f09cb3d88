package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportService writes the current versions of a solution's requirements
// as a portable document, the inverse of ImportService.
type ExportService struct {
	requirements *RequirementService
}

// NewExportService creates a new export service.
func NewExportService(requirements *RequirementService) *ExportService {
	return &ExportService{requirements: requirements}
}

// Export writes all non-removed requirements of a solution to w.
func (s *ExportService) Export(ctx context.Context, w io.Writer, solutionID string, format ExportFormat) (int, error) {
	views, err := s.requirements.List(ctx, solutionID, "", 0, 0)
	if err != nil {
		return 0, err
	}

	switch format {
	case ExportJSON:
		return len(views), s.writeJSON(w, views)
	case ExportCSV:
		return len(views), s.writeCSV(w, views)
	default:
		return 0, fmt.Errorf("unsupported export format: %s", format)
	}
}

func (s *ExportService) writeJSON(w io.Writer, views []RequirementView) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(views); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"req_id", "req_type", "workflow_state", "name", "statement",
	"priority", "constraint_category", "primary_actor", "outcome",
	"precondition", "main_success_scenario", "email", "segmentation",
	"interest", "influence",
}

func (s *ExportService) writeCSV(w io.Writer, views []RequirementView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i := range views {
		req := &views[i].Requirement
		v := &views[i].Version
		record := make([]string, len(csvHeader))
		record[0] = req.ReqID
		record[1] = string(req.ReqType)
		record[2] = string(v.WorkflowState)
		record[3] = v.Name
		record[4] = v.Statement
		if v.Behavior != nil {
			record[5] = string(v.Behavior.Priority)
		}
		if v.Constraint != nil {
			record[6] = string(v.Constraint.Category)
		}
		if v.Scenario != nil {
			record[7] = v.Scenario.PrimaryActor
			record[8] = v.Scenario.Outcome
			record[9] = v.Scenario.Precondition
			record[10] = v.Scenario.MainSuccessScenario
		}
		if v.Person != nil {
			record[11] = v.Person.Email
		}
		if v.Stakeholder != nil {
			record[12] = v.Stakeholder.Segmentation
			record[13] = strconv.Itoa(v.Stakeholder.Interest)
			record[14] = strconv.Itoa(v.Stakeholder.Influence)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
