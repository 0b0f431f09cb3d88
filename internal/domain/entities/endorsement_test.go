package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateStatus(t *testing.T) {
	req := func(status ReviewStatus) ReviewItem {
		return ReviewItem{Category: CategoryEndorsement, Status: status, IsRequired: true}
	}
	opt := func(status ReviewStatus) ReviewItem {
		return ReviewItem{Category: CategoryReadability, Status: status}
	}

	tests := []struct {
		name  string
		items []ReviewItem
		want  ReviewStatus
	}{
		{"no items", nil, ReviewNone},
		{"all untouched", []ReviewItem{req(ReviewNone), req(ReviewNone)}, ReviewNone},
		{"pending activity only", []ReviewItem{req(ReviewPending), req(ReviewNone)}, ReviewPending},
		{"one approved of two", []ReviewItem{req(ReviewApproved), req(ReviewNone)}, ReviewPartial},
		{"all required approved", []ReviewItem{req(ReviewApproved), req(ReviewApproved)}, ReviewApproved},
		{"any rejection dominates", []ReviewItem{req(ReviewApproved), req(ReviewRejected)}, ReviewRejected},
		{"optional rejection does not dominate", []ReviewItem{req(ReviewApproved), opt(ReviewRejected)}, ReviewApproved},
		{"optional activity alone is pending", []ReviewItem{req(ReviewNone), opt(ReviewApproved)}, ReviewPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateStatus(tt.items))
		})
	}
}

func TestCategoriesFor(t *testing.T) {
	t.Run("silence is never reviewable", func(t *testing.T) {
		assert.Empty(t, CategoriesFor(TypeSilence))
	})

	t.Run("person gets only the manual endorsement", func(t *testing.T) {
		specs := CategoriesFor(TypePerson)
		assert.Len(t, specs, 1)
		assert.Equal(t, CategoryEndorsement, specs[0].Category)
		assert.False(t, specs[0].Automated)
	})

	t.Run("statement-bearing types get endorsement plus automated checks", func(t *testing.T) {
		specs := CategoriesFor(TypeFunctionalBehavior)
		assert.Len(t, specs, 6)
		assert.Equal(t, CategoryEndorsement, specs[0].Category)
		for _, spec := range specs[1:] {
			assert.True(t, spec.Automated)
			assert.True(t, spec.Required)
		}
	})
}

func TestCategoryApplies(t *testing.T) {
	assert.True(t, CategoryApplies(TypeGoal, CategoryEndorsement))
	assert.True(t, CategoryApplies(TypeGoal, CategorySpellingGrammar))
	assert.False(t, CategoryApplies(TypePerson, CategoryReadability))
	assert.False(t, CategoryApplies(TypeSilence, CategoryEndorsement))
}

func TestIsAutomatedCategory(t *testing.T) {
	assert.False(t, IsAutomatedCategory(CategoryEndorsement))
	assert.True(t, IsAutomatedCategory(CategorySpellingGrammar))
	assert.True(t, IsAutomatedCategory(CategoryTypeCorrespondence))
	assert.False(t, IsAutomatedCategory(ReviewCategory("style")))
}
