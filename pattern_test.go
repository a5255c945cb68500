package flagprune

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePattern_ClassMethod(t *testing.T) {
	p := parsePattern("FeatureFlags.isEnabled")
	assert.Equal(t, patternClassMethod, p.kind)
	assert.Equal(t, "FeatureFlags", p.class)
	assert.Equal(t, "isEnabled", p.method)
}

func TestParsePattern_AnyReceiver(t *testing.T) {
	p := parsePattern("*.isEnabled")
	assert.Equal(t, patternAnyReceiver, p.kind)
	assert.Equal(t, "isEnabled", p.method)
}

func TestParsePattern_BareMethod(t *testing.T) {
	p := parsePattern("isEnabled")
	assert.Equal(t, patternBareMethod, p.kind)
	assert.Equal(t, "isEnabled", p.method)
}

func TestParsePattern_NestedCall(t *testing.T) {
	p := parsePattern("Flags.client(isEnabled")
	assert.Equal(t, patternNestedCall, p.kind)
	assert.Equal(t, "Flags", p.class)
	assert.Equal(t, "client", p.method)
	assert.Equal(t, "isEnabled", p.innerMethod)
}

func TestMatchCall_ClassMethod(t *testing.T) {
	unit := mustParse(t, `FeatureFlags.isEnabled("new-checkout")`)
	call := findFirstCall(t, unit)
	patterns := parsePatterns([]string{"FeatureFlags.isEnabled"})

	m := matchCall(call, patterns)
	assert.True(t, m.Matched)
}

func TestMatchCall_NoMatch(t *testing.T) {
	unit := mustParse(t, `OtherThing.isEnabled("new-checkout")`)
	call := findFirstCall(t, unit)
	patterns := parsePatterns([]string{"FeatureFlags.isEnabled"})

	m := matchCall(call, patterns)
	assert.False(t, m.Matched)
}

func TestMatchCall_BareMethodAnyReceiver(t *testing.T) {
	unit := mustParse(t, `flags.isEnabled("x")`)
	call := findFirstCall(t, unit)
	patterns := parsePatterns([]string{"isEnabled"})

	m := matchCall(call, patterns)
	assert.True(t, m.Matched)
}

func TestExtractFlagKey_StringLiteral(t *testing.T) {
	unit := mustParse(t, `isEnabled("new-checkout")`)
	call := findFirstCall(t, unit)
	key, ok := extractFlagKey(call)
	assert.True(t, ok)
	assert.Equal(t, "new-checkout", key)
}

func TestExtractFlagKey_TemplateStringSinglePart(t *testing.T) {
	unit := mustParse(t, "isEnabled(`new-checkout`)")
	call := findFirstCall(t, unit)
	key, ok := extractFlagKey(call)
	assert.True(t, ok)
	assert.Equal(t, "new-checkout", key)
}

func TestExtractFlagKey_TemplateStringWithSubstitution(t *testing.T) {
	unit := mustParse(t, "isEnabled(`flag-${suffix}`)")
	call := findFirstCall(t, unit)
	_, ok := extractFlagKey(call)
	assert.False(t, ok)
}
