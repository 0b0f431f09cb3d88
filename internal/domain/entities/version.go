package entities

import "time"

// MoscowPriority is the MoSCoW priority assigned to behavior requirements.
type MoscowPriority string

const (
	PriorityMust   MoscowPriority = "MUST"
	PriorityShould MoscowPriority = "SHOULD"
	PriorityCould  MoscowPriority = "COULD"
	PriorityWont   MoscowPriority = "WONT"
)

// IsValid checks if a priority is one of the MoSCoW values.
func (p MoscowPriority) IsValid() bool {
	switch p {
	case PriorityMust, PriorityShould, PriorityCould, PriorityWont:
		return true
	}
	return false
}

// ConstraintCategory classifies constraints.
type ConstraintCategory string

const (
	ConstraintBusiness    ConstraintCategory = "business"
	ConstraintEngineering ConstraintCategory = "engineering"
	ConstraintPhysics     ConstraintCategory = "physics"
)

// BehaviorDetails carries fields specific to functional behaviors.
type BehaviorDetails struct {
	Priority MoscowPriority `json:"priority"`
}

// ScenarioDetails carries fields specific to scenario types
// (use case, user story, epic).
type ScenarioDetails struct {
	PrimaryActor        string `json:"primary_actor"`
	Outcome             string `json:"outcome,omitempty"`
	Precondition        string `json:"precondition,omitempty"`
	MainSuccessScenario string `json:"main_success_scenario,omitempty"`
}

// ConstraintDetails carries fields specific to constraints.
type ConstraintDetails struct {
	Category ConstraintCategory `json:"category"`
}

// StakeholderDetails carries fields specific to stakeholders.
type StakeholderDetails struct {
	Segmentation string `json:"segmentation,omitempty"`
	Category     string `json:"category,omitempty"`
	Interest     int    `json:"interest"`  // 0-100
	Influence    int    `json:"influence"` // 0-100
}

// PersonDetails carries fields specific to persons.
type PersonDetails struct {
	Email string `json:"email,omitempty"`
}

// RequirementVersion is one effective-dated snapshot of a requirement's
// content. Versions are appended, never mutated; the pair
// (RequirementID, EffectiveFrom) is unique. Exactly one details payload is
// set, matching the identity's ReqType; types without extra fields carry
// none.
type RequirementVersion struct {
	RequirementID string        `json:"requirement_id"`
	EffectiveFrom time.Time     `json:"effective_from"`
	IsDeleted     bool          `json:"is_deleted"`
	ModifiedBy    string        `json:"modified_by"`
	Name          string        `json:"name"`
	Statement     string        `json:"statement"`
	WorkflowState WorkflowState `json:"workflow_state"`

	Behavior    *BehaviorDetails    `json:"behavior,omitempty"`
	Scenario    *ScenarioDetails    `json:"scenario,omitempty"`
	Constraint  *ConstraintDetails  `json:"constraint,omitempty"`
	Stakeholder *StakeholderDetails `json:"stakeholder,omitempty"`
	Person      *PersonDetails      `json:"person,omitempty"`
}

// ResolveCurrent returns the current version as of the given time: the
// version with the greatest EffectiveFrom <= asOf. Returns nil if no
// version is effective yet, or if the winning version is a tombstone.
// The input order does not matter.
func ResolveCurrent(versions []RequirementVersion, asOf time.Time) *RequirementVersion {
	var current *RequirementVersion
	for i := range versions {
		v := &versions[i]
		if v.EffectiveFrom.After(asOf) {
			continue
		}
		if current == nil || v.EffectiveFrom.After(current.EffectiveFrom) {
			current = v
		}
	}
	if current == nil || current.IsDeleted {
		return nil
	}
	return current
}

// VersionPatch is a partial update applied on top of the current version.
// Nil fields are copied forward from the previous version.
type VersionPatch struct {
	Name      *string
	Statement *string

	Behavior    *BehaviorDetails
	Scenario    *ScenarioDetails
	Constraint  *ConstraintDetails
	Stakeholder *StakeholderDetails
	Person      *PersonDetails
}

// Apply builds the next version from a base version and a patch. The base
// may be nil for the first version of an identity.
func (p VersionPatch) Apply(base *RequirementVersion) RequirementVersion {
	var next RequirementVersion
	if base != nil {
		next = *base
	}
	next.IsDeleted = false
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Statement != nil {
		next.Statement = *p.Statement
	}
	if p.Behavior != nil {
		next.Behavior = p.Behavior
	}
	if p.Scenario != nil {
		next.Scenario = p.Scenario
	}
	if p.Constraint != nil {
		next.Constraint = p.Constraint
	}
	if p.Stakeholder != nil {
		next.Stakeholder = p.Stakeholder
	}
	if p.Person != nil {
		next.Person = p.Person
	}
	return next
}

// ValidateForType checks that a version's payload matches the requirement
// type and that enum-valued fields hold legal values.
func (v *RequirementVersion) ValidateForType(t RequirementType) error {
	if v.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	switch t {
	case TypeFunctionalBehavior:
		if v.Behavior == nil {
			return &ValidationError{Field: "behavior", Reason: "required for functional behaviors"}
		}
		if !v.Behavior.Priority.IsValid() {
			return &ValidationError{Field: "behavior.priority", Reason: "must be MUST, SHOULD, COULD or WONT"}
		}
	case TypeUseCase, TypeUserStory, TypeEpic:
		if v.Scenario == nil || v.Scenario.PrimaryActor == "" {
			return &ValidationError{Field: "scenario.primary_actor", Reason: "required for scenario types"}
		}
	case TypeConstraint:
		if v.Constraint == nil {
			return &ValidationError{Field: "constraint", Reason: "required for constraints"}
		}
		switch v.Constraint.Category {
		case ConstraintBusiness, ConstraintEngineering, ConstraintPhysics:
		default:
			return &ValidationError{Field: "constraint.category", Reason: "must be business, engineering or physics"}
		}
	case TypeStakeholder:
		if v.Stakeholder == nil {
			return &ValidationError{Field: "stakeholder", Reason: "required for stakeholders"}
		}
		if v.Stakeholder.Interest < 0 || v.Stakeholder.Interest > 100 {
			return &ValidationError{Field: "stakeholder.interest", Reason: "must be between 0 and 100"}
		}
		if v.Stakeholder.Influence < 0 || v.Stakeholder.Influence > 100 {
			return &ValidationError{Field: "stakeholder.influence", Reason: "must be between 0 and 100"}
		}
	}
	return nil
}
