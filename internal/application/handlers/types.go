// Package handlers wires CLI input to the domain services: it parses
// string-typed input into domain enums, times operations, and records
// logs and metrics.
package handlers

import (
	"fmt"
	"strings"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

// ValidRelationTypes lists all valid relation type strings.
var ValidRelationTypes = []string{
	"belongs", "characterizes", "constrains", "excepts", "repeats", "explains",
}

// ValidReviewCategories lists the review categories a human can endorse.
var ValidReviewCategories = []string{"endorsement"}

// ValidCheckTypes lists all automated check type strings.
var ValidCheckTypes = []string{
	"spelling_grammar", "readability_score", "glossary_compliance",
	"formal_language", "type_correspondence",
}

// ParseRequirementType validates and converts a string to RequirementType.
func ParseRequirementType(s string) (entities.RequirementType, error) {
	t := entities.RequirementType(strings.ToLower(s))
	if !t.IsValid() {
		names := make([]string, 0, len(entities.TypeCatalog))
		for _, spec := range entities.TypeCatalog {
			names = append(names, string(spec.Type))
		}
		return "", fmt.Errorf("invalid requirement type: %s (valid: %s)", s, strings.Join(names, ", "))
	}
	return t, nil
}

// ParseRelationType validates and converts a string to RelationType.
func ParseRelationType(s string) (entities.RelationType, error) {
	t := entities.RelationType(strings.ToLower(s))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid relation type: %s (valid: %s)", s, strings.Join(ValidRelationTypes, ", "))
	}
	return t, nil
}

// ParseReviewCategory validates and converts a string to a human-reviewable
// category. Automated categories are written by the checker, not by hand.
func ParseReviewCategory(s string) (entities.ReviewCategory, error) {
	c := entities.ReviewCategory(strings.ToLower(s))
	if c != entities.CategoryEndorsement {
		return "", fmt.Errorf("invalid review category: %s (valid: %s)", s, strings.Join(ValidReviewCategories, ", "))
	}
	return c, nil
}

// ParseCheckType validates and converts a string to CheckType.
func ParseCheckType(s string) (entities.CheckType, error) {
	switch t := entities.CheckType(strings.ToLower(s)); t {
	case entities.CheckSpellingGrammar, entities.CheckReadability,
		entities.CheckGlossaryCompliance, entities.CheckFormalLanguage,
		entities.CheckTypeCorrespondence:
		return t, nil
	}
	return "", fmt.Errorf("invalid check type: %s (valid: %s)", s, strings.Join(ValidCheckTypes, ", "))
}
