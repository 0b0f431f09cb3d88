package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReqID(t *testing.T) {
	tests := []struct {
		reqType RequirementType
		seq     int
		want    string
	}{
		{TypeOutcome, 7, "G.3.7"},
		{TypePerson, 1, "P.1.1"},
		{TypeFunctionalBehavior, 12, "S.2.12"},
		{RequirementType("bogus"), 3, "?.3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatReqID(tt.reqType, tt.seq))
	}
}

func TestTypeCatalog_PrefixesUnique(t *testing.T) {
	seen := make(map[string]RequirementType, len(TypeCatalog))
	for _, spec := range TypeCatalog {
		prev, dup := seen[spec.Prefix]
		require.False(t, dup, "prefix %s shared by %s and %s", spec.Prefix, prev, spec.Type)
		seen[spec.Prefix] = spec.Type
	}
}

func TestRequirementType_IsMeta(t *testing.T) {
	assert.True(t, TypeJustification.IsMeta())
	assert.True(t, TypeGlossaryTerm.IsMeta())
	assert.False(t, TypeGoal.IsMeta())
	assert.False(t, RequirementType("bogus").IsMeta())
}

func TestRequirementType_IsBehavior(t *testing.T) {
	assert.True(t, TypeFunctionalBehavior.IsBehavior())
	assert.True(t, TypeUseCase.IsBehavior())
	assert.False(t, TypeConstraint.IsBehavior())
}

func TestRelationType_CheckEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		relType RelationType
		left    RequirementType
		right   RequirementType
		wantErr bool
	}{
		{"belongs has no type constraint", RelationBelongs, TypeGoal, TypeOutcome, false},
		{"explains has no type constraint", RelationExplains, TypeGoal, TypeConstraint, false},
		{"characterizes needs meta left", RelationCharacterizes, TypeJustification, TypeGoal, false},
		{"characterizes rejects non-meta left", RelationCharacterizes, TypeGoal, TypeJustification, true},
		{"constrains needs constraint left", RelationConstrains, TypeConstraint, TypeUseCase, false},
		{"constrains rejects non-constraint left", RelationConstrains, TypeUseCase, TypeConstraint, true},
		{"excepts needs behavior left", RelationExcepts, TypeFunctionalBehavior, TypeUseCase, false},
		{"excepts rejects non-behavior left", RelationExcepts, TypeGoal, TypeUseCase, true},
		{"repeats needs matching types", RelationRepeats, TypeGoal, TypeGoal, false},
		{"repeats rejects mismatched types", RelationRepeats, TypeGoal, TypeOutcome, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.relType.CheckEndpoints(tt.left, tt.right)
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"  Spaced   Out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"MixedCase", "mixedcase"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in))
	}
}
