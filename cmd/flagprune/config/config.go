// Package config loads a flag configuration file in either of two surface
// syntaxes - strict JSON or the HCL mapping dialect - via viper, and hands
// the parsed mapping to flagprune.LoadConfig for validation. The surface
// syntax is a convenience; the validated struct is what the engine actually
// runs on.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flagprune/flagprune"
	"github.com/spf13/viper"
)

// Load reads path, auto-detecting JSON vs HCL from its extension, and
// returns a validated FlagConfig plus any non-fatal warnings (e.g. expired
// flags). An unrecognized extension tries both syntaxes, JSON first; the
// error when both fail is fatal to the run.
func Load(path string) (flagprune.FlagConfig, []string, error) {
	var types []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		types = []string{"hcl"}
	case ".json":
		types = []string{"json"}
	default:
		types = []string{"json", "hcl"}
	}

	var lastErr error
	for _, typ := range types {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType(typ)
		if err := v.ReadInConfig(); err != nil {
			lastErr = err
			continue
		}
		return flagprune.LoadConfig(v.AllSettings())
	}

	return flagprune.FlagConfig{}, nil, flagprune.NewConfigInvalidError(fmt.Sprintf("read %s: %v", path, lastErr))
}
