package flagprune

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Minimal(t *testing.T) {
	cfg, warnings, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"new-checkout": map[string]any{
				"value": true,
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	def, ok := cfg.FindDefinition("new-checkout")
	require.True(t, ok)
	assert.True(t, def.Value)
	assert.True(t, def.RemoveDefinition)
}

func TestLoadConfig_NoFlags(t *testing.T) {
	_, _, err := LoadConfig(map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadConfig_EmptyFlagName(t *testing.T) {
	_, _, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"": map[string]any{"value": true},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadConfig_MissingValue(t *testing.T) {
	_, _, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"f": map[string]any{"description": "no value field"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadConfig_AliasCollidesWithAnotherFlagName(t *testing.T) {
	_, _, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"a": map[string]any{"value": true, "aliases": []any{"b"}},
			"b": map[string]any{"value": false},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadConfig_AliasCollidesWithAnotherAlias(t *testing.T) {
	_, _, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"a": map[string]any{"value": true, "aliases": []any{"shared"}},
			"b": map[string]any{"value": false, "aliases": []any{"shared"}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadConfig_ExpiredFlagWarnsOnly(t *testing.T) {
	cfg, warnings, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"old-flag": map[string]any{"value": true, "expire": "2000-01-01"},
		},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "old-flag")

	def, ok := cfg.FindDefinition("old-flag")
	require.True(t, ok)
	future, err := time.Parse("2006-01-02", "2099-01-01")
	require.NoError(t, err)
	assert.True(t, def.IsExpired(future))
}

func TestLoadConfig_InvalidExpireDate(t *testing.T) {
	_, _, err := LoadConfig(map[string]any{
		"flags": map[string]any{
			"f": map[string]any{"value": true, "expire": "not-a-date"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestFlagConfig_MethodPatterns_Default(t *testing.T) {
	var cfg FlagConfig
	assert.Equal(t, defaultMethodPatterns, cfg.MethodPatterns())
}

func TestFlagConfig_MethodPatterns_Configured(t *testing.T) {
	cfg := FlagConfig{Patterns: Patterns{Methods: []string{"custom.check"}}}
	assert.Equal(t, []string{"custom.check"}, cfg.MethodPatterns())
}

func TestFlagDefinition_MatchesAlias(t *testing.T) {
	def := FlagDefinition{Name: "canonical", Aliases: map[string]bool{"alt": true}}
	assert.True(t, def.Matches("canonical"))
	assert.True(t, def.Matches("alt"))
	assert.False(t, def.Matches("other"))
}

