package flagprune

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTransform(t *testing.T, src string, cfg FlagConfig) TransformationResult {
	t.Helper()
	result, err := Transform(context.Background(), zerolog.Nop(), "test.ts", []byte(src), cfg, NoopFormatter{})
	require.NoError(t, err)
	return result
}

// normalized collapses all whitespace runs to single spaces so scenario
// expectations don't depend on promotion's exact indentation choices.
func normalized(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestTransform_Scenarios(t *testing.T) {
	cases := []struct {
		name  string
		cfg   FlagConfig
		input string
		want  string
	}{
		{
			name:  "simple if, flag true",
			cfg:   testConfig(map[string]bool{"new_feature": true}),
			input: `if (FeatureFlagService.isEnabled('new_feature')) { doNew(); } else { doOld(); }`,
			want:  `doNew();`,
		},
		{
			name:  "simple if, flag false, no else",
			cfg:   testConfig(map[string]bool{"experimental": false}),
			input: `if (flags.isEnabled('experimental')) { runX(); }`,
			want:  ``,
		},
		{
			name:  "negation with false flag",
			cfg:   testConfig(map[string]bool{"experimental": false}),
			input: `if (!flags.isEnabled('experimental')) { useStable(); } else { useExp(); }`,
			want:  `useStable();`,
		},
		{
			name:  "AND with true flag",
			cfg:   testConfig(map[string]bool{"improved": true}),
			input: `if (flags.isEnabled('improved') && userCondition()) { opt(); }`,
			want:  `if (userCondition()) { opt(); }`,
		},
		{
			name:  "ternary with false flag",
			cfg:   testConfig(map[string]bool{"legacy": false}),
			input: `const x = flags.isEnabled('legacy') ? old() : modern();`,
			want:  `const x = modern();`,
		},
		{
			name:  "OR with true flag",
			cfg:   testConfig(map[string]bool{"ui_new": true}),
			input: `if (flags.isEnabled('ui_new') || fallback()) { run(); }`,
			want:  `run();`,
		},
		{
			name:  "double negation folds back",
			cfg:   testConfig(map[string]bool{"beta": true}),
			input: `if (!!flags.isEnabled('beta')) { yes(); } else { no(); }`,
			want:  `yes();`,
		},
		{
			name:  "free call collapses to literal",
			cfg:   testConfig(map[string]bool{"beta": true}),
			input: `report(flags.isEnabled('beta'));`,
			want:  `report(true);`,
		},
		{
			name:  "negated free call collapses to effective literal",
			cfg:   testConfig(map[string]bool{"beta": true}),
			input: `report(!flags.isEnabled('beta'));`,
			want:  `report(false);`,
		},
		{
			name:  "complex condition left untouched",
			cfg:   testConfig(map[string]bool{"beta": true}),
			input: `if (flags.isEnabled('beta') === other()) { a(); }`,
			want:  `if (flags.isEnabled('beta') === other()) { a(); }`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := runTransform(t, tc.input, tc.cfg)
			assert.Equal(t, normalized(tc.want), normalized(result.TransformedSource))
		})
	}
}

func TestTransform_VariableBoundFlagPropagates(t *testing.T) {
	cfg := FlagConfig{
		Patterns: Patterns{Methods: []string{"registry.read(releaseFlag"}},
		Flags: map[string]FlagDefinition{
			"release": {
				Name:             "release",
				Value:            true,
				RemoveDefinition: true,
				Aliases:          map[string]bool{"releaseFlag": true},
			},
		},
	}
	input := "const isRelease = registry.read(releaseFlag());\n" +
		"if (isRelease) { prod(); } else { dev(); }\n"

	result := runTransform(t, input, cfg)
	assert.Equal(t, "prod();", normalized(result.TransformedSource))
	assert.Contains(t, result.RemovedFlagNames, "release")
	assert.True(t, result.HasChanges)
}

func TestTransform_MultilineBlockPromotion(t *testing.T) {
	cfg := testConfig(map[string]bool{"wide": true})
	input := "function f() {\n" +
		"  if (flags.isEnabled('wide')) {\n" +
		"    first();\n" +
		"    second();\n" +
		"  } else {\n" +
		"    old();\n" +
		"  }\n" +
		"}\n"

	result := runTransform(t, input, cfg)
	assert.Contains(t, result.TransformedSource, "  first();")
	assert.Contains(t, result.TransformedSource, "  second();")
	assert.NotContains(t, result.TransformedSource, "old();")
}

func TestTransform_NestedConstructsReachFixpoint(t *testing.T) {
	cfg := testConfig(map[string]bool{"outer": true, "inner": false})
	input := "if (flags.isEnabled('outer')) {\n" +
		"  if (flags.isEnabled('inner')) {\n" +
		"    gone();\n" +
		"  }\n" +
		"  kept();\n" +
		"} else {\n" +
		"  alsoGone();\n" +
		"}\n"

	result := runTransform(t, input, cfg)
	assert.Equal(t, "kept();", normalized(result.TransformedSource))

	again := runTransform(t, result.TransformedSource, cfg)
	assert.Equal(t, result.TransformedSource, again.TransformedSource)
}

func TestTransform_MultipleFlagsInOneConditionKeepBoth(t *testing.T) {
	cfg := testConfig(map[string]bool{"a": true, "b": false})
	input := `if (flags.isEnabled('a') && flags.isEnabled('b')) { both(); }`

	result := runTransform(t, input, cfg)
	assert.Equal(t, input, result.TransformedSource)
	assert.False(t, result.HasChanges)
}

func TestTransform_TopLevelDefinitionRemoved(t *testing.T) {
	cfg := testConfig(map[string]bool{"newCheckout": true})
	input := "const newCheckout = true;\n" +
		"if (flags.isEnabled('newCheckout')) { checkout(); } else { legacy(); }\n"

	result := runTransform(t, input, cfg)
	assert.Equal(t, "checkout();", normalized(result.TransformedSource))
	assert.Contains(t, result.RemovedFlagNames, "newCheckout")
}

func TestTransform_DeadFlagImportRemoved(t *testing.T) {
	cfg := testConfig(map[string]bool{"x": true})
	input := "import { flags } from 'feature-flags/client';\n" +
		"if (flags.isEnabled('x')) { a(); } else { b(); }\n"

	result := runTransform(t, input, cfg)
	assert.Equal(t, "a();", normalized(result.TransformedSource))
	assert.Contains(t, result.RemovedImportURIs, "feature-flags/client")
}

func TestTransform_LiveFlagImportRetained(t *testing.T) {
	cfg := testConfig(map[string]bool{"x": true})
	input := "import { flags } from 'feature-flags/client';\n" +
		"if (flags.isEnabled('x')) { a(); } else { b(); }\n" +
		"flags.track();\n"

	result := runTransform(t, input, cfg)
	assert.Contains(t, result.TransformedSource, "import { flags } from 'feature-flags/client';")
	assert.Empty(t, result.RemovedImportURIs)
}

func TestTransform_UnmatchedInputIsIdentity(t *testing.T) {
	cfg := testConfig(map[string]bool{"never-used": true})
	input := "import { helper } from 'utils/helper';\n" +
		"if (helper.check()) {\n" +
		"  helper.run();\n" +
		"}\n"

	result := runTransform(t, input, cfg)
	assert.Equal(t, input, result.TransformedSource)
	assert.False(t, result.HasChanges)
	assert.Empty(t, result.Warnings)
}

func TestTransform_Idempotent(t *testing.T) {
	cfg := testConfig(map[string]bool{"a": true, "b": false})
	input := "const a = true;\n" +
		"if (flags.isEnabled('a')) {\n" +
		"  keep();\n" +
		"} else {\n" +
		"  drop();\n" +
		"}\n" +
		"if (flags.isEnabled('b') && guard()) {\n" +
		"  other();\n" +
		"}\n"

	once := runTransform(t, input, cfg)
	twice := runTransform(t, once.TransformedSource, cfg)
	assert.Equal(t, once.TransformedSource, twice.TransformedSource)
	assert.False(t, twice.HasChanges)
}

func TestTransform_ParseFailureReturnsWarnings(t *testing.T) {
	cfg := testConfig(map[string]bool{"a": true})
	input := `if (flags.isEnabled('a') {`

	result := runTransform(t, input, cfg)
	assert.Equal(t, input, result.TransformedSource)
	assert.False(t, result.HasChanges)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "parse failed")
}

func TestTransform_LinesRemovedCounted(t *testing.T) {
	cfg := testConfig(map[string]bool{"gone": false})
	input := "before();\n" +
		"if (flags.isEnabled('gone')) {\n" +
		"  a();\n" +
		"  b();\n" +
		"}\n" +
		"after();\n"

	result := runTransform(t, input, cfg)
	assert.True(t, result.LinesRemoved >= 3, "got %d lines removed", result.LinesRemoved)
}
