package flagprune

import (
	"fmt"
	"sort"
	"time"
)

// Settings holds the per-run toggles a flag configuration carries.
type Settings struct {
	PreserveComments  bool
	RemoveEmptyBlocks bool
	FormatOutput      bool
	StrictImports     bool // require an explicit patterns.classes match, disabling the substring import-name fallback
}

// Patterns holds the configured call-pattern and flag-service-class strings
// used to recognize flag queries and flag-service imports.
type Patterns struct {
	Methods []string
	Classes []string
}

// FlagDefinition is one named flag's pinned value and removal settings.
type FlagDefinition struct {
	Name             string
	Value            bool
	RemoveDefinition bool
	Aliases          map[string]bool
	Description      string
	Ticket           string
	Owner            string
	Expire           *time.Time
}

// Matches reports whether name is this definition's canonical name or one of
// its aliases.
func (d FlagDefinition) Matches(name string) bool {
	if name == d.Name {
		return true
	}
	return d.Aliases[name]
}

// IsExpired reports whether now is after d.Expire. A definition with no
// expiration date is never expired.
func (d FlagDefinition) IsExpired(now time.Time) bool {
	return d.Expire != nil && now.After(*d.Expire)
}

// FlagConfig is immutable after LoadConfig returns it.
type FlagConfig struct {
	Version  string
	Patterns Patterns
	Flags    map[string]FlagDefinition
	Settings Settings
}

// defaultMethodPatterns is used when patterns.methods is empty: any bare
// method call named isEnabled, check, or isFeatureEnabled is treated as a
// flag query.
var defaultMethodPatterns = []string{"isEnabled", "check", "isFeatureEnabled"}

// FindDefinition resolves name (canonical or alias) to its FlagDefinition.
func (c FlagConfig) FindDefinition(name string) (FlagDefinition, bool) {
	if d, ok := c.Flags[name]; ok {
		return d, true
	}
	for _, d := range c.Flags {
		if d.Matches(name) {
			return d, true
		}
	}
	return FlagDefinition{}, false
}

// MethodPatterns returns the configured method patterns, or the default set
// when none are configured.
func (c FlagConfig) MethodPatterns() []string {
	if len(c.Patterns.Methods) == 0 {
		return defaultMethodPatterns
	}
	return c.Patterns.Methods
}

// LoadConfig validates a parsed configuration mapping and builds an
// immutable FlagConfig. The mapping itself is produced by an external
// collaborator (cmd/flagprune/config) that accepts either of two surface
// syntaxes; this function never reads a file itself.
//
// Validation performed: at least one flag, no empty flag names, aliases
// disjoint across flags, expired flags emit warnings but never fail.
func LoadConfig(data map[string]any) (FlagConfig, []string, error) {
	var warnings []string

	cfg := FlagConfig{
		Flags: make(map[string]FlagDefinition),
	}

	if v, ok := data["version"].(string); ok {
		cfg.Version = v
	}

	if patterns, ok := asMap(data["patterns"]); ok {
		cfg.Patterns.Methods = asStringSlice(patterns["methods"])
		cfg.Patterns.Classes = asStringSlice(patterns["classes"])
	}

	if settings, ok := asMap(data["settings"]); ok {
		cfg.Settings.PreserveComments = asBool(settings["preserve_comments"])
		cfg.Settings.RemoveEmptyBlocks = asBool(settings["remove_empty_blocks"])
		cfg.Settings.FormatOutput = asBool(settings["format_output"])
		cfg.Settings.StrictImports = asBool(settings["strict_imports"])
	}

	flagsRaw, ok := asMap(data["flags"])
	if !ok || len(flagsRaw) == 0 {
		return FlagConfig{}, nil, NewConfigInvalidError("config must define at least one flag")
	}

	// Track every canonical name and alias seen so far, across all flags, so
	// no name or alias is ever claimed by more than one flag.
	claimed := make(map[string]string) // name/alias -> owning flag's canonical name

	// Sort keys for deterministic error/warning ordering.
	names := make([]string, 0, len(flagsRaw))
	for name := range flagsRaw {
		names = append(names, name)
	}
	sort.Strings(names)

	now := time.Now()

	for _, name := range names {
		if name == "" {
			return FlagConfig{}, nil, NewConfigInvalidError("flag name must not be empty")
		}

		body, ok := asMap(flagsRaw[name])
		if !ok {
			return FlagConfig{}, nil, NewConfigInvalidError(fmt.Sprintf("flag %q: definition must be a mapping", name))
		}

		value, hasValue := body["value"].(bool)
		if !hasValue {
			return FlagConfig{}, nil, NewConfigInvalidError(fmt.Sprintf("flag %q: value is required and must be a boolean", name))
		}

		def := FlagDefinition{
			Name:             name,
			Value:            value,
			RemoveDefinition: true,
			Aliases:          make(map[string]bool),
		}
		if rd, ok := body["remove_definition"].(bool); ok {
			def.RemoveDefinition = rd
		}
		if desc, ok := body["description"].(string); ok {
			def.Description = desc
		}
		if ticket, ok := body["ticket"].(string); ok {
			def.Ticket = ticket
		}
		if owner, ok := body["owner"].(string); ok {
			def.Owner = owner
		}
		if expireStr, ok := body["expire"].(string); ok && expireStr != "" {
			t, err := time.Parse("2006-01-02", expireStr)
			if err != nil {
				return FlagConfig{}, nil, NewConfigInvalidError(fmt.Sprintf("flag %q: expire must be an ISO date: %v", name, err))
			}
			def.Expire = &t
		}

		for _, alias := range asStringSlice(body["aliases"]) {
			def.Aliases[alias] = true
		}

		if owner, exists := claimed[name]; exists {
			return FlagConfig{}, nil, NewConfigInvalidError(fmt.Sprintf("name %q is claimed by both %q and %q", name, owner, name))
		}
		claimed[name] = name

		aliasNames := make([]string, 0, len(def.Aliases))
		for a := range def.Aliases {
			aliasNames = append(aliasNames, a)
		}
		sort.Strings(aliasNames)
		for _, alias := range aliasNames {
			if owner, exists := claimed[alias]; exists {
				return FlagConfig{}, nil, NewConfigInvalidError(fmt.Sprintf("alias %q of flag %q is already claimed by %q", alias, name, owner))
			}
			claimed[alias] = name
		}

		if def.Expire != nil && def.IsExpired(now) {
			warnings = append(warnings, fmt.Sprintf("flag %q expired on %s", name, def.Expire.Format("2006-01-02")))
		}

		cfg.Flags[name] = def
	}

	return cfg, warnings, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
