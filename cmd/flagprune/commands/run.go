package commands

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/flagprune/flagprune"
	"github.com/flagprune/flagprune/cmd/flagprune/cache"
	"github.com/flagprune/flagprune/cmd/flagprune/cliflags"
	"github.com/flagprune/flagprune/cmd/flagprune/cmdio"
	"github.com/flagprune/flagprune/cmd/flagprune/config"
	"github.com/flagprune/flagprune/cmd/flagprune/discover"
	"github.com/flagprune/flagprune/cmd/flagprune/format"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// fileOutcome is one file's computed Transform result, carried back from the
// worker pool to the single goroutine that prints and writes in path order.
type fileOutcome struct {
	path         string
	src          []byte
	sourceDigest string
	result       flagprune.TransformationResult
	transformErr error
	readErr      error
	skipped      bool
}

func init() {
	runCmd.PersistentFlags().StringVarP(&cliflags.ConfigFile, "config", "c", "", "Path to the flag configuration file (required)")
	_ = runCmd.MarkPersistentFlagRequired("config")
	runCmd.PersistentFlags().StringVarP(&cliflags.Target, "target", "t", ".", "File or directory to transform")
	runCmd.PersistentFlags().StringSliceVarP(&cliflags.Exclude, "exclude", "e", nil, "Comma-separated glob patterns of paths to skip")
	runCmd.PersistentFlags().StringVar(&cliflags.CacheFile, "cache-file", ".flagprune-cache.json", "Path to the incremental run cache")
	runCmd.PersistentFlags().BoolVar(&cliflags.BNoCache, "no-cache", false, "Disable the incremental run cache for this invocation")
	runCmd.PersistentFlags().BoolVarP(&cliflags.BDryRun, "dry-run", "d", false, "Report what would change without writing any file")
	runCmd.PersistentFlags().BoolVarP(&cliflags.BVerbose, "verbose", "v", false, "Print a per-file summary even when a file has no changes")
	runCmd.PersistentFlags().BoolVar(&cliflags.BStrictImports, "strict-imports", false, "Only classify an import as flag-related via an explicit patterns.classes match")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: "core",
	Short:   "Remove stale feature flags from every source file under --target",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		io := cmdio.From(cmd)

		dir := cliflags.Target

		cfg, warnings, err := config.Load(cliflags.ConfigFile)
		if err != nil {
			return err
		}
		if cliflags.BStrictImports {
			cfg.Settings.StrictImports = true
		}
		for _, w := range warnings {
			io.PrintErrln("warning:", w)
		}

		configDigest := cache.Digest([]byte(fmt.Sprintf("%+v", cfg)))

		var runCache *cache.Cache
		if !cliflags.BNoCache {
			runCache, err = cache.Load(cliflags.CacheFile)
			if err != nil {
				return err
			}
		} else {
			runCache = cache.New()
		}

		paths, err := discover.Files(dir, cliflags.Exclude)
		if err != nil {
			return err
		}

		log := zerolog.New(io.Err).With().Timestamp().Logger()
		log = log.Level(zerolog.WarnLevel)
		if cliflags.BVerbose {
			log = log.Level(zerolog.InfoLevel)
		}

		formatter := flagprune.Formatter(format.Blank{MaxBlankLines: 1})
		if !cfg.Settings.FormatOutput {
			formatter = flagprune.NoopFormatter{}
		}

		ctx := context.Background()
		totalFlags, totalImports, totalLines, changedFiles := 0, 0, 0, 0

		// Per-file pipelines are pure functions of (path, source, config) and
		// share nothing, so a bounded worker pool fans them out across the
		// machine's cores; only the result ordering and the cache/summary
		// bookkeeping below need to stay single-threaded.
		outcomes := make([]fileOutcome, len(paths))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.NumCPU())
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				src, err := os.ReadFile(path)
				if err != nil {
					outcomes[i] = fileOutcome{path: path, readErr: err}
					return nil
				}

				sourceDigest := cache.Digest(src)
				if runCache.Unchanged(path, sourceDigest, configDigest) {
					outcomes[i] = fileOutcome{path: path, src: src, sourceDigest: sourceDigest, skipped: true}
					return nil
				}

				result, err := flagprune.Transform(gctx, log, path, src, cfg, formatter)
				outcomes[i] = fileOutcome{path: path, src: src, sourceDigest: sourceDigest, result: result, transformErr: err}
				return nil
			})
		}
		_ = g.Wait()

		for _, o := range outcomes {
			if o.readErr != nil {
				io.PrintErrln(flagprune.NewIOError(o.path, o.readErr))
				continue
			}
			if o.skipped {
				continue
			}
			if o.transformErr != nil {
				io.PrintErrln(fmt.Sprintf("%s: %v", o.path, o.transformErr))
				continue
			}

			result := o.result
			for _, w := range result.Warnings {
				io.PrintErrln(fmt.Sprintf("%s: %s", o.path, w))
			}

			if !result.HasChanges {
				// A file with warnings (e.g. a parse failure) is not cached,
				// so the warnings resurface on the next run.
				if len(result.Warnings) == 0 {
					runCache.Record(o.path, o.sourceDigest, configDigest)
				}
				if cliflags.BVerbose {
					io.Printf("%s: %s\n", o.path, result.Summary())
				}
				continue
			}

			changedFiles++
			totalFlags += len(result.RemovedFlagNames)
			totalImports += len(result.RemovedImportURIs)
			totalLines += result.LinesRemoved

			if cliflags.BDryRun {
				io.Printf("Would modify %s: %s\n", o.path, result.Summary())
				continue
			}

			io.Printf("%s: %s\n", o.path, result.Summary())

			if err := os.WriteFile(o.path, []byte(result.TransformedSource), 0644); err != nil {
				io.PrintErrln(flagprune.NewIOError(o.path, err))
				continue
			}
			runCache.Record(o.path, cache.Digest([]byte(result.TransformedSource)), configDigest)
		}

		if !cliflags.BNoCache && !cliflags.BDryRun {
			if err := cache.Save(cliflags.CacheFile, runCache); err != nil {
				return err
			}
		}

		io.Printf("%s changed: %s, %s, %s\n",
			io.CountOf(changedFiles, "file"),
			io.CountOf(totalFlags, "flag"),
			io.CountOf(totalImports, "import"),
			io.CountOf(totalLines, "line"))

		return nil
	},
}
