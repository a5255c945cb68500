// Package cliflags holds CLI flag variables referenced by more than one
// command.
package cliflags

var (
	// ConfigFile is the path to the flag configuration file (JSON or HCL),
	// bound to -c/--config.
	ConfigFile string

	// Target is the file or directory to transform, bound to -t/--target.
	Target string

	// Exclude is a comma-separated list of doublestar glob patterns of
	// paths to skip, bound to -e/--exclude.
	Exclude []string

	// CacheFile is the path to the incremental run cache.
	CacheFile string

	// BDryRun, when set, suppresses writes and prefixes each change notice
	// with "Would modify", bound to -d/--dry-run.
	BDryRun bool

	// BVerbose prints a per-file summary even when a file has no changes,
	// bound to -v/--verbose.
	BVerbose bool

	// BNoCache disables the incremental run cache for this invocation.
	BNoCache bool

	// BStrictImports forces the stricter, class-pattern-only import
	// classifier instead of the default loose substring heuristic.
	BStrictImports bool
)
