// Package discover walks a directory tree to find the source files flagprune
// should consider, honoring doublestar glob exclude patterns the same way
// the rest of the example pack's tooling matches paths.
package discover

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultExtensions are the file suffixes considered source files for this
// engine's target grammar.
var defaultExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
}

// skipDirs are directory names never descended into, regardless of exclude
// patterns.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Files walks root and returns every regular file with a recognized
// extension whose relative path does not match any of the exclude glob
// patterns.
func Files(root string, exclude []string) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !defaultExtensions[filepath.Ext(path)] {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		excluded, matchErr := matchesAny(rel, exclude)
		if matchErr != nil {
			return matchErr
		}
		if excluded {
			return nil
		}

		out = append(out, path)
		return nil
	})

	return out, err
}

func matchesAny(rel string, patterns []string) (bool, error) {
	slashed := filepath.ToSlash(rel)
	for _, p := range patterns {
		ok, err := doublestar.Match(p, slashed)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
