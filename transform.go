package flagprune

import (
	"context"

	"github.com/flagprune/flagprune/internal/source"
	"github.com/rs/zerolog"
)

// Transform runs the full per-file pipeline: parse, scan, decide the fate of
// each flag-gated construct, eliminate dead branches, re-parse and remove
// eligible definitions, re-parse again and drop now-dead flag-service
// imports, then optionally format. path is used only for diagnostics;
// Transform never touches the filesystem itself (that's cmd/flagprune's
// job).
//
// A file that fails to parse is returned unchanged with the parse error
// recorded as a warning. The only error return is an internal planner fault
// (overlapping or out-of-range edits), in which case the file is aborted
// with its original source intact.
func Transform(ctx context.Context, log zerolog.Logger, path string, src []byte, cfg FlagConfig, formatter Formatter) (TransformationResult, error) {
	original := string(src)
	result := TransformationResult{
		OriginalSource:    original,
		TransformedSource: original,
		RemovedFlagNames:  make(map[string]bool),
		RemovedImportURIs: make(map[string]bool),
	}

	unit, err := source.Parse(ctx, src)
	if err != nil {
		log.Warn().Str("file", path).Err(err).Msg("skipping unparseable file")
		result.Warnings = append(result.Warnings, NewParseFailedError(path, err).Error())
		return result, nil
	}
	defer unit.Close()

	parsed := &ParsedUnit{Path: path, Unit: unit}

	scan := ScanFlagUsage(parsed, cfg)
	decisions := AnalyzeReferences(scan.References)
	definitions := ScanDefinitions(parsed, cfg, scan.Bindings)
	log.Debug().Str("file", path).
		Int("references", len(scan.References)).
		Int("definitions", len(definitions)).
		Msg("scanned flag usage")

	// Stage 1: eliminate dead branches and collapse free flag calls. A
	// promoted branch can itself contain flag-gated constructs that were
	// nested inside the one just rewritten, so elimination repeats on the
	// rewritten source until a pass changes nothing.
	cur := original
	branchEdits := PlanEdits(src, decisions, nil, nil, cfg.Settings)
	if len(branchEdits) > 0 {
		cur, err = ApplyEdits(cur, branchEdits)
		if err != nil {
			return result, err
		}
		markRemovedFlags(decisions, &result)

		for pass := 0; pass < maxEliminationPasses; pass++ {
			next, changed, perr := eliminateOnce(ctx, log, path, cur, cfg, &result)
			if perr != nil {
				return result, perr
			}
			if !changed {
				break
			}
			cur = next
		}
	}

	// Stage 2: remove flag definitions. The re-parse is not optional: branch
	// elimination shifted every offset after the first edit, so definition
	// locations from the original tree can no longer be trusted.
	if len(definitions) > 0 {
		cur = removeDefinitions(ctx, log, path, cur, cfg, &result)
	}

	// Stage 3: drop flag-service imports whose every usage site fell inside a
	// removed range - equivalently, imports with no usage site surviving in
	// the transformed source. Skipped when nothing changed, so a file with a
	// stray flag-ish import but no configured flag stays byte-identical.
	if cur != original {
		cur = removeDeadImports(ctx, log, path, cur, cfg, &result)
	}

	// Stage 4: hand the result to the external formatter, if configured. A
	// formatter failure keeps the unformatted text.
	if cur != original && cfg.Settings.FormatOutput && formatter != nil {
		formatted, ferr := formatter.Format(cur)
		if ferr != nil {
			log.Warn().Str("file", path).Err(ferr).Msg("formatter failed, keeping unformatted output")
			result.Warnings = append(result.Warnings, NewFormatFailedError(ferr).Error())
		} else {
			cur = formatted
		}
	}

	result.TransformedSource = cur
	result.LinesRemoved = countRemovedLines(original, cur)
	result.HasChanges = cur != original

	return result, nil
}

// maxEliminationPasses bounds the elimination fixpoint loop. Each pass costs
// a parse and strictly reduces the number of flag-gated constructs, so the
// bound exists only to stop a planner fault from looping forever.
const maxEliminationPasses = 32

// markRemovedFlags records which flags produced a rewrite this pass: every
// free reference is literal-collapsed unconditionally, and every conditioned
// reference whose decision was anything but keep_both had its construct
// rewritten.
func markRemovedFlags(decisions []ReferenceDecision, result *TransformationResult) {
	for _, rd := range decisions {
		if rd.Reference.ParentControl == nil || rd.Decision != DecisionKeepBoth {
			result.RemovedFlagNames[rd.Reference.FlagName] = true
		}
	}
}

// eliminateOnce re-parses cur and runs one scan/decide/rewrite pass over it,
// reporting whether anything changed.
func eliminateOnce(ctx context.Context, log zerolog.Logger, path, cur string, cfg FlagConfig, result *TransformationResult) (string, bool, error) {
	unit, err := source.Parse(ctx, []byte(cur))
	if err != nil {
		log.Warn().Str("file", path).Err(err).Msg("re-parse failed, stopping branch elimination")
		result.Warnings = append(result.Warnings, "branch elimination stopped early: "+err.Error())
		return cur, false, nil
	}
	defer unit.Close()

	parsed := &ParsedUnit{Path: path, Unit: unit}
	scan := ScanFlagUsage(parsed, cfg)
	decisions := AnalyzeReferences(scan.References)

	edits := PlanEdits([]byte(cur), decisions, nil, nil, cfg.Settings)
	if len(edits) == 0 {
		return cur, false, nil
	}

	next, err := ApplyEdits(cur, edits)
	if err != nil {
		return cur, false, err
	}
	markRemovedFlags(decisions, result)
	return next, true, nil
}

// removeDefinitions re-parses the branch-eliminated source and strips every
// definition the fresh tree still holds for a flag with remove_definition
// set. A re-parse failure skips the stage with a warning rather than
// discarding the branch elimination already done.
func removeDefinitions(ctx context.Context, log zerolog.Logger, path, cur string, cfg FlagConfig, result *TransformationResult) string {
	unit, err := source.Parse(ctx, []byte(cur))
	if err != nil {
		log.Warn().Str("file", path).Err(err).Msg("re-parse failed, skipping definition removal")
		result.Warnings = append(result.Warnings, "definition removal skipped: "+err.Error())
		return cur
	}
	defer unit.Close()

	parsed := &ParsedUnit{Path: path, Unit: unit}
	scan := ScanFlagUsage(parsed, cfg)
	definitions := ScanDefinitions(parsed, cfg, scan.Bindings)
	if len(definitions) == 0 {
		return cur
	}

	edits := PlanEdits([]byte(cur), nil, definitions, nil, cfg.Settings)
	next, err := ApplyEdits(cur, edits)
	if err != nil {
		log.Warn().Str("file", path).Err(err).Msg("definition removal produced bad edits, skipping")
		result.Warnings = append(result.Warnings, "definition removal skipped: "+err.Error())
		return cur
	}

	for _, d := range definitions {
		result.RemovedFlagNames[d.FlagName] = true
	}
	return next
}

// removeDeadImports re-parses the current source and deletes every
// flag-service import directive with no remaining usage site.
func removeDeadImports(ctx context.Context, log zerolog.Logger, path, cur string, cfg FlagConfig, result *TransformationResult) string {
	unit, err := source.Parse(ctx, []byte(cur))
	if err != nil {
		log.Warn().Str("file", path).Err(err).Msg("re-parse failed, skipping import cleanup")
		result.Warnings = append(result.Warnings, "import cleanup skipped: "+err.Error())
		return cur
	}
	defer unit.Close()

	parsed := &ParsedUnit{Path: path, Unit: unit}
	imports := ScanImports(parsed, cfg)

	edits := PlanEdits([]byte(cur), nil, nil, imports, cfg.Settings)
	if len(edits) == 0 {
		return cur
	}

	next, err := ApplyEdits(cur, edits)
	if err != nil {
		log.Warn().Str("file", path).Err(err).Msg("import cleanup produced bad edits, skipping")
		result.Warnings = append(result.Warnings, "import cleanup skipped: "+err.Error())
		return cur
	}

	for _, rec := range imports {
		if rec.IsFlagImport && len(rec.UsageSites) == 0 {
			result.RemovedImportURIs[rec.URI] = true
		}
	}
	return next
}

// countRemovedLines is a coarse diagnostic count, not a diff: the number of
// newline-delimited lines the source had minus the number the rewritten text
// has. The summary line only needs an approximate figure.
func countRemovedLines(before, after string) int {
	b := countLines(before)
	a := countLines(after)
	if b <= a {
		return 0
	}
	return b - a
}

func countLines(s string) int {
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

// Formatter is the output-formatting seam: a concrete implementation (see
// cmd/flagprune/format) collapses the blank-line runs removal leaves behind;
// tests use a no-op.
type Formatter interface {
	Format(src string) (string, error)
}

// NoopFormatter returns its input unchanged. Used when settings.format_output
// is false or in tests that don't want formatting noise.
type NoopFormatter struct{}

func (NoopFormatter) Format(src string) (string, error) { return src, nil }
