package entities

import "time"

// ReviewStatus is the status of a single review item or of the aggregate
// review of a requirement version.
type ReviewStatus string

const (
	ReviewNone     ReviewStatus = "NONE"
	ReviewPending  ReviewStatus = "PENDING"
	ReviewPartial  ReviewStatus = "PARTIAL"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// ReviewCategory identifies one reviewable aspect of a requirement.
type ReviewCategory string

const (
	CategoryEndorsement        ReviewCategory = "endorsement"
	CategorySpellingGrammar    ReviewCategory = "spelling_grammar"
	CategoryReadability        ReviewCategory = "readability_score"
	CategoryGlossaryCompliance ReviewCategory = "glossary_compliance"
	CategoryFormalLanguage     ReviewCategory = "formal_language"
	CategoryTypeCorrespondence ReviewCategory = "type_correspondence"
)

// CheckType names the automated checker that produced an endorsement row.
// Values mirror the automated review categories.
type CheckType string

const (
	CheckSpellingGrammar    CheckType = "spelling_grammar"
	CheckReadability        CheckType = "readability_score"
	CheckGlossaryCompliance CheckType = "glossary_compliance"
	CheckFormalLanguage     CheckType = "formal_language"
	CheckTypeCorrespondence CheckType = "type_correspondence"
)

// CategorySpec describes one review category applicable to a requirement
// type: whether it blocks activation and whether it is produced by an
// automated checker rather than a human reviewer.
type CategorySpec struct {
	Category  ReviewCategory
	Required  bool
	Automated bool
}

// automatedCategories are the checks applied to every statement-bearing
// requirement type.
var automatedCategories = []CategorySpec{
	{CategorySpellingGrammar, true, true},
	{CategoryReadability, true, true},
	{CategoryGlossaryCompliance, true, true},
	{CategoryFormalLanguage, true, true},
	{CategoryTypeCorrespondence, true, true},
}

// CategoriesFor returns the fixed review categories applicable to a
// requirement type. Silence requirements are never reviewable; persons
// carry no statement, so only the manual endorsement applies.
func CategoriesFor(t RequirementType) []CategorySpec {
	switch t {
	case TypeSilence:
		return nil
	case TypePerson:
		return []CategorySpec{{CategoryEndorsement, true, false}}
	}
	specs := make([]CategorySpec, 0, len(automatedCategories)+1)
	specs = append(specs, CategorySpec{CategoryEndorsement, true, false})
	specs = append(specs, automatedCategories...)
	return specs
}

// IsAutomatedCategory reports whether a category is produced by an
// automated checker.
func IsAutomatedCategory(c ReviewCategory) bool {
	for _, spec := range automatedCategories {
		if spec.Category == c {
			return true
		}
	}
	return false
}

// CategoryApplies reports whether a category is applicable to a type.
func CategoryApplies(t RequirementType, c ReviewCategory) bool {
	for _, spec := range CategoriesFor(t) {
		if spec.Category == c {
			return true
		}
	}
	return false
}

// Endorsement is one reviewer's recorded decision for one category on one
// requirement version. Re-reviews append new rows; the latest row per
// (version, reviewer, category) wins.
type Endorsement struct {
	ID            string         `json:"id"`
	RequirementID string         `json:"requirement_id"`
	EffectiveFrom time.Time      `json:"effective_from"` // version key
	EndorsedBy    string         `json:"endorsed_by"`
	Category      ReviewCategory `json:"category"`
	Status        ReviewStatus   `json:"status"`
	EndorsedAt    *time.Time     `json:"endorsed_at,omitempty"`
	RejectedAt    *time.Time     `json:"rejected_at,omitempty"`
	Comments      string         `json:"comments,omitempty"`

	AutomatedCheck bool      `json:"automated_check,omitempty"`
	CheckType      CheckType `json:"check_type,omitempty"`
	CheckDetails   string    `json:"check_details,omitempty"` // structured JSON from the checker
	RetryCount     int       `json:"retry_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReviewItem is the resolved status of one category for a version.
type ReviewItem struct {
	Category      ReviewCategory `json:"category"`
	Status        ReviewStatus   `json:"status"`
	IsRequired    bool           `json:"is_required"`
	IsAutomated   bool           `json:"is_automated"`
	CanUserReview bool           `json:"can_user_review"`
	Endorsement   *Endorsement   `json:"endorsement,omitempty"`
}

// ReviewState is the aggregate review of a requirement version.
type ReviewState struct {
	Overall ReviewStatus `json:"overall"`
	Items   []ReviewItem `json:"items"`
}

// AggregateStatus folds per-category review items into an overall status:
// REJECTED if any required item is rejected, APPROVED if all required items
// are approved, PARTIAL if at least one required item is approved while
// others wait, PENDING if any activity exists, NONE otherwise.
func AggregateStatus(items []ReviewItem) ReviewStatus {
	var required, approved, rejected, active int
	for _, item := range items {
		if item.Status != ReviewNone {
			active++
		}
		if !item.IsRequired {
			continue
		}
		required++
		switch item.Status {
		case ReviewApproved:
			approved++
		case ReviewRejected:
			rejected++
		}
	}
	switch {
	case rejected > 0:
		return ReviewRejected
	case required > 0 && approved == required:
		return ReviewApproved
	case approved > 0:
		return ReviewPartial
	case active > 0:
		return ReviewPending
	default:
		return ReviewNone
	}
}
