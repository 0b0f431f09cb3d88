// Package entities contains core domain data structures.
package entities

import (
	"fmt"
	"time"
)

// RequirementType is the discriminator for the closed set of requirement kinds.
type RequirementType string

// The closed requirement-type set, organized by PEGS section
// (Project / Environment / Goals / System).
const (
	TypePerson             RequirementType = "person"
	TypeSilence            RequirementType = "silence"
	TypeJustification      RequirementType = "justification"
	TypeGlossaryTerm       RequirementType = "glossary_term"
	TypeConstraint         RequirementType = "constraint"
	TypeAssumption         RequirementType = "assumption"
	TypeEffect             RequirementType = "effect"
	TypeInvariant          RequirementType = "invariant"
	TypeGoal               RequirementType = "goal"
	TypeObstacle           RequirementType = "obstacle"
	TypeOutcome            RequirementType = "outcome"
	TypeUserStory          RequirementType = "user_story"
	TypeEpic               RequirementType = "epic"
	TypeLimit              RequirementType = "limit"
	TypeStakeholder        RequirementType = "stakeholder"
	TypeFunctionalBehavior RequirementType = "functional_behavior"
	TypeUseCase            RequirementType = "use_case"
)

// PEGSSection identifies which part of the taxonomy a type belongs to.
type PEGSSection string

const (
	SectionProject     PEGSSection = "P"
	SectionEnvironment PEGSSection = "E"
	SectionGoals       PEGSSection = "G"
	SectionSystem      PEGSSection = "S"
)

// TypeSpec describes a requirement type: its taxonomy section, the prefix
// used for human-facing reqIds (e.g. "G.3" yields "G.3.7"), whether the
// type is a meta-requirement (one that characterizes other requirements),
// and a short description for the CLI.
type TypeSpec struct {
	Type        RequirementType
	Section     PEGSSection
	Prefix      string
	Meta        bool
	Description string
}

// TypeCatalog is the closed requirement-type catalog. Order matters for
// display; prefixes are unique within the catalog.
var TypeCatalog = []TypeSpec{
	{TypePerson, SectionProject, "P.1", false, "People involved in the project"},
	{TypeSilence, SectionProject, "P.2", false, "Placeholder for unparsable input, permanently rejected"},
	{TypeJustification, SectionProject, "P.3", true, "Rationale that characterizes other requirements"},
	{TypeGlossaryTerm, SectionEnvironment, "E.1", true, "Defined term used across requirements"},
	{TypeConstraint, SectionEnvironment, "E.3", false, "Business, engineering or physics constraint"},
	{TypeAssumption, SectionEnvironment, "E.4", false, "Property assumed to hold in the environment"},
	{TypeEffect, SectionEnvironment, "E.5", false, "Effect of the system on its environment"},
	{TypeInvariant, SectionEnvironment, "E.6", false, "Property the environment and system jointly maintain"},
	{TypeGoal, SectionGoals, "G.1", false, "High-level business objective"},
	{TypeObstacle, SectionGoals, "G.2", false, "Situation preventing a goal from being achieved"},
	{TypeOutcome, SectionGoals, "G.3", false, "Result the organization wants to achieve"},
	{TypeUserStory, SectionGoals, "G.4", false, "Role-based statement of desired behavior"},
	{TypeEpic, SectionGoals, "G.5", false, "Large user story decomposable into smaller ones"},
	{TypeLimit, SectionGoals, "G.6", false, "Explicit exclusion from scope"},
	{TypeStakeholder, SectionGoals, "G.7", false, "Person or group with an interest in the system"},
	{TypeFunctionalBehavior, SectionSystem, "S.2", false, "Prioritized functional behavior of the system"},
	{TypeUseCase, SectionSystem, "S.4", false, "Actor-goal interaction scenario"},
}

// typeSpecsByName indexes the catalog for O(1) lookup.
var typeSpecsByName = func() map[RequirementType]TypeSpec {
	m := make(map[RequirementType]TypeSpec, len(TypeCatalog))
	for _, spec := range TypeCatalog {
		m[spec.Type] = spec
	}
	return m
}()

// SpecFor returns the catalog entry for a requirement type.
func SpecFor(t RequirementType) (TypeSpec, bool) {
	spec, ok := typeSpecsByName[t]
	return spec, ok
}

// IsValid checks if a requirement type belongs to the closed set.
func (t RequirementType) IsValid() bool {
	_, ok := typeSpecsByName[t]
	return ok
}

// IsMeta reports whether the type is a meta-requirement.
func (t RequirementType) IsMeta() bool {
	spec, ok := typeSpecsByName[t]
	return ok && spec.Meta
}

// IsBehavior reports whether the type describes system behavior. Behavior
// types carry scenario or priority details and may except one another.
func (t RequirementType) IsBehavior() bool {
	switch t {
	case TypeFunctionalBehavior, TypeUseCase, TypeUserStory, TypeEpic:
		return true
	}
	return false
}

// FormatReqID builds the human-facing sequential identifier for a type,
// e.g. FormatReqID(TypeOutcome, 7) -> "G.3.7".
func FormatReqID(t RequirementType, seq int) string {
	spec, ok := typeSpecsByName[t]
	if !ok {
		return fmt.Sprintf("?.%d", seq)
	}
	return fmt.Sprintf("%s.%d", spec.Prefix, seq)
}

// Requirement is the immutable identity of a requirement. Content lives in
// the ordered version sequence (RequirementVersion); the identity row never
// changes after creation.
type Requirement struct {
	ID           string          `json:"id"`
	SolutionID   string          `json:"solution_id"`
	ReqType      RequirementType `json:"req_type"`
	ReqID        string          `json:"req_id"` // e.g. "G.3.7"
	FollowsID    string          `json:"follows_id,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreationDate time.Time       `json:"creation_date"`
}
