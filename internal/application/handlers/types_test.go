package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cathedral-app/cathedral/internal/domain/entities"
)

func TestParseRequirementType(t *testing.T) {
	tests := []struct {
		input   string
		want    entities.RequirementType
		wantErr bool
	}{
		{"goal", entities.TypeGoal, false},
		{"GOAL", entities.TypeGoal, false},
		{"functional_behavior", entities.TypeFunctionalBehavior, false},
		{"wish", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRequirementType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid:", "the error lists the catalog")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRelationType(t *testing.T) {
	got, err := ParseRelationType("Belongs")
	require.NoError(t, err)
	assert.Equal(t, entities.RelationBelongs, got)

	_, err = ParseRelationType("references")
	assert.Error(t, err)
}

func TestParseReviewCategory(t *testing.T) {
	got, err := ParseReviewCategory("endorsement")
	require.NoError(t, err)
	assert.Equal(t, entities.CategoryEndorsement, got)

	// Automated categories are written by the checker, never by hand.
	_, err = ParseReviewCategory("readability_score")
	assert.Error(t, err)

	_, err = ParseReviewCategory("style")
	assert.Error(t, err)
}

func TestParseCheckType(t *testing.T) {
	for _, s := range ValidCheckTypes {
		got, err := ParseCheckType(s)
		require.NoError(t, err)
		assert.Equal(t, entities.CheckType(s), got)
	}

	_, err := ParseCheckType("endorsement")
	assert.Error(t, err)
}
