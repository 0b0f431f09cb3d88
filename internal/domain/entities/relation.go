package entities

import "time"

// RelationType defines the kind of directed edge between two requirements.
type RelationType string

const (
	RelationBelongs       RelationType = "belongs"
	RelationCharacterizes RelationType = "characterizes"
	RelationConstrains    RelationType = "constrains"
	RelationExcepts       RelationType = "excepts"
	RelationRepeats       RelationType = "repeats"
	RelationExplains      RelationType = "explains"
)

// IsValid checks if a relation type belongs to the closed set.
func (t RelationType) IsValid() bool {
	switch t {
	case RelationBelongs, RelationCharacterizes, RelationConstrains,
		RelationExcepts, RelationRepeats, RelationExplains:
		return true
	}
	return false
}

// Relation is a typed directed edge between two requirements. Both
// endpoints must belong to the same solution.
type Relation struct {
	ID         string       `json:"id"`
	SolutionID string       `json:"solution_id"`
	LeftID     string       `json:"left_id"`
	RightID    string       `json:"right_id"`
	Type       RelationType `json:"type"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CheckEndpoints validates the kind-specific endpoint-type constraints:
// Characterizes.left must be a meta-requirement, Constrains.left must be a
// constraint, Excepts.left must be a behavior, and Repeats requires both
// endpoints to share a type. Belongs and Explains carry no type constraint.
func (t RelationType) CheckEndpoints(left, right RequirementType) error {
	switch t {
	case RelationCharacterizes:
		if !left.IsMeta() {
			return &ValidationError{Field: "left", Reason: "characterizes requires a meta-requirement on the left"}
		}
	case RelationConstrains:
		if left != TypeConstraint {
			return &ValidationError{Field: "left", Reason: "constrains requires a constraint on the left"}
		}
	case RelationExcepts:
		if !left.IsBehavior() {
			return &ValidationError{Field: "left", Reason: "excepts requires a behavior on the left"}
		}
	case RelationRepeats:
		if left != right {
			return &ValidationError{Field: "right", Reason: "repeats requires both requirements to share a type"}
		}
	}
	return nil
}
