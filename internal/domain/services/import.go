package services

import (
	"context"
	"fmt"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
	"github.com/cathedral-app/cathedral/internal/infrastructure/parsers"
)

// ImportError represents an error for a specific row during import.
type ImportError struct {
	Line    int    // 1-indexed, 0 if unknown
	Field   string // which field has the error
	Message string
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool // validate without saving
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Created  []RequirementView
	Errors   []ImportError
}

// ImportService creates requirements in bulk from parsed documents. Each
// valid row becomes a fresh Proposed requirement; rows that fail
// validation are reported without aborting the rest.
type ImportService struct {
	requirements *RequirementService
}

// NewImportService creates a new import service.
func NewImportService(requirements *RequirementService) *ImportService {
	return &ImportService{requirements: requirements}
}

// Import validates raw rows and creates requirements for the valid ones.
func (s *ImportService) Import(ctx context.Context, solutionID string, rows []parsers.RawRequirement, createdBy string, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	type valid struct {
		reqType entities.RequirementType
		patch   entities.VersionPatch
	}
	var validRows []valid

	for i := range rows {
		row := &rows[i]
		reqType := entities.RequirementType(row.ReqType)
		patch, err := PatchFromRaw(reqType, row)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{
				Line:    row.LineNum,
				Field:   row.ReqType,
				Message: err.Error(),
			})
			continue
		}
		validRows = append(validRows, valid{reqType: reqType, patch: patch})
	}

	if opts.DryRun {
		result.Imported = len(validRows)
		return result, nil
	}

	for _, row := range validRows {
		view, err := s.requirements.Create(ctx, solutionID, row.reqType, row.patch, createdBy)
		if err != nil {
			return result, fmt.Errorf("creating requirement: %w", err)
		}
		result.Created = append(result.Created, *view)
		result.Imported++
	}
	return result, nil
}

// PatchFromRaw converts a parsed row into a version patch, checking the
// row's content against its declared type. It is shared with the
// application layer, which builds rows from CLI flags.
func PatchFromRaw(reqType entities.RequirementType, row *parsers.RawRequirement) (entities.VersionPatch, error) {
	var zero entities.VersionPatch
	if !reqType.IsValid() {
		return zero, &entities.ValidationError{Field: "req_type", Reason: fmt.Sprintf("unknown requirement type %q", row.ReqType)}
	}

	patch := entities.VersionPatch{Name: &row.Name}
	if row.Statement != "" {
		patch.Statement = &row.Statement
	}

	switch reqType {
	case entities.TypeFunctionalBehavior:
		patch.Behavior = &entities.BehaviorDetails{Priority: entities.MoscowPriority(row.Priority)}
	case entities.TypeUseCase, entities.TypeUserStory, entities.TypeEpic:
		patch.Scenario = &entities.ScenarioDetails{
			PrimaryActor:        row.PrimaryActor,
			Outcome:             row.Outcome,
			Precondition:        row.Precondition,
			MainSuccessScenario: row.MainSuccessScenario,
		}
	case entities.TypeConstraint:
		patch.Constraint = &entities.ConstraintDetails{Category: entities.ConstraintCategory(row.ConstraintCategory)}
	case entities.TypeStakeholder:
		details := &entities.StakeholderDetails{Segmentation: row.Segmentation}
		if row.Interest != nil {
			details.Interest = *row.Interest
		}
		if row.Influence != nil {
			details.Influence = *row.Influence
		}
		patch.Stakeholder = details
	case entities.TypePerson:
		patch.Person = &entities.PersonDetails{Email: row.Email}
	}

	draft := patch.Apply(nil)
	if err := draft.ValidateForType(reqType); err != nil {
		return zero, err
	}
	return patch, nil
}
