package flagprune

import (
	"context"
	"testing"

	"github.com/flagprune/flagprune/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagReference_EffectiveValue(t *testing.T) {
	cases := []struct {
		resolved, negated, want bool
	}{
		{resolved: true, negated: false, want: true},
		{resolved: true, negated: true, want: false},
		{resolved: false, negated: false, want: false},
		{resolved: false, negated: true, want: true},
	}
	for _, c := range cases {
		ref := FlagReference{ResolvedValue: c.resolved, IsNegated: c.negated}
		assert.Equal(t, c.want, ref.EffectiveValue())
	}
}

func TestControlFlow_HasElse(t *testing.T) {
	var noElse ControlFlow
	assert.False(t, noElse.HasElse())

	unit, err := source.Parse(context.Background(), []byte("const x = 1;"))
	require.NoError(t, err)
	defer unit.Close()

	withElse := ControlFlow{Else: unit.Root()}
	assert.True(t, withElse.HasElse())
}

func TestDecision_String(t *testing.T) {
	cases := map[Decision]string{
		DecisionKeepBoth:           "keep_both",
		DecisionKeepThenRemoveElse: "keep_then_remove_else",
		DecisionRemoveThenKeepElse: "remove_then_keep_else",
		DecisionRemoveAll:          "remove_all",
		DecisionSimplifyCondition:  "simplify_condition",
		Decision(99):               "unknown",
	}
	for d, want := range cases {
		assert.Equal(t, want, d.String())
	}
}

func TestEdit_End(t *testing.T) {
	e := Edit{Offset: 10, Length: 5}
	assert.Equal(t, 15, e.End())
}

func TestTransformationResult_Summary(t *testing.T) {
	r := TransformationResult{
		RemovedFlagNames:  map[string]bool{"a": true, "b": true},
		RemovedImportURIs: map[string]bool{"x": true},
		LinesRemoved:      1,
	}
	assert.Equal(t, "2 flags removed, 1 import removed, 1 line removed", r.Summary())
}

func TestTransformationResult_Summary_Zero(t *testing.T) {
	r := TransformationResult{
		RemovedFlagNames:  map[string]bool{},
		RemovedImportURIs: map[string]bool{},
	}
	assert.Equal(t, "0 flags removed, 0 imports removed, 0 lines removed", r.Summary())
}
