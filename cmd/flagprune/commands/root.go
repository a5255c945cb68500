package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	coreCommands = &cobra.Group{
		Title: "Core Commands",
		ID:    "core",
	}
)

func init() {
	rootCmd.AddGroup(coreCommands)
}

var rootCmd = &cobra.Command{
	Use:           "flagprune",
	Short:         "flagprune removes stale feature flags from source trees",
	Long:          "flagprune reads a flag configuration describing which feature flags have a fixed, known value and rewrites a source tree so that every branch the flag can no longer reach is removed.",
	Version:       Version,
	SilenceErrors: true,
}

// Version is set by the build via -ldflags.
var Version = "dev"

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
