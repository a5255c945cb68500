package flagprune

import (
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/flagprune/flagprune/internal/source"
)

// PlanEdits is the rewrite planner (C8). It turns one file's reachability
// decisions, the free (unconditioned) flag references among them, and the
// definition/import cleanup candidates into the final non-overlapping Edit
// list the edit buffer (C2) applies.
func PlanEdits(src []byte, decisions []ReferenceDecision, definitions []DefinitionLocation, imports []ImportRecord, settings Settings) []Edit {
	var edits []Edit

	// Decisions arrive in document order, so an outer construct's edit lands
	// before any construct nested inside it. A nested construct's edit is
	// skipped here: the outer rewrite subsumes its range, and whatever of it
	// survives promotion is picked up by the orchestrator's next elimination
	// pass.
	for _, rd := range decisions {
		if rd.Reference.ParentControl == nil {
			if e := freeCallEdit(rd.Reference); !overlapsAny(e, edits) {
				edits = append(edits, e)
			}
			continue
		}
		if e, ok := constructEdit(rd, src, settings); ok && !overlapsAny(e, edits) {
			edits = append(edits, e)
		}
	}

	for _, d := range definitions {
		e := Edit{Offset: d.Offset, Length: d.Length, Replacement: ""}
		if !overlapsAny(e, edits) {
			edits = append(edits, e)
		}
	}

	var removals []Edit
	for _, e := range edits {
		if e.Replacement == "" {
			removals = append(removals, e)
		}
	}

	for _, rec := range imports {
		if rec.IsFlagImport && TrulyUnused(rec, removals) {
			e := Edit{Offset: rec.Node.Offset(), Length: rec.Node.Length(), Replacement: ""}
			if !overlapsAny(e, edits) {
				edits = append(edits, e)
			}
		}
	}

	return edits
}

// overlapsAny reports whether candidate's range intersects any edit already
// planned - a definition or import directive that falls entirely inside a
// construct already slated for removal needs no edit of its own.
func overlapsAny(candidate Edit, planned []Edit) bool {
	for _, e := range planned {
		if overlaps(candidate, e) {
			return true
		}
	}
	return false
}

// freeCallEdit replaces a flag call with no enclosing condition with its
// boolean literal: a "free" flag reference collapses to its effective value,
// not to a removed construct. The replaced span is the effective node, so
// any prefix-! wrappers already folded into the value disappear with it.
func freeCallEdit(ref FlagReference) Edit {
	node := ref.EffectiveNode
	if node == nil {
		node = ref.Node
	}
	lit := "false"
	if ref.EffectiveValue() {
		lit = "true"
	}
	return Edit{Offset: node.Offset(), Length: node.Length(), Replacement: lit}
}

// constructEdit turns one ReferenceDecision into the Edit that rewrites its
// enclosing if/ternary. Returns ok=false for DecisionKeepBoth, which needs no
// edit at all.
func constructEdit(rd ReferenceDecision, src []byte, settings Settings) (Edit, bool) {
	cf := rd.Reference.ParentControl
	switch rd.Decision {
	case DecisionKeepBoth:
		return Edit{}, false

	case DecisionRemoveAll:
		return Edit{Offset: cf.Node.Offset(), Length: cf.Node.Length(), Replacement: ""}, true

	case DecisionKeepThenRemoveElse:
		return promoteBranch(cf, cf.Then, src, settings), true

	case DecisionRemoveThenKeepElse:
		return promoteBranch(cf, cf.Else, src, settings), true

	case DecisionSimplifyCondition:
		if rd.Simplified == nil {
			return Edit{}, false
		}
		return Edit{
			Offset:      cf.Condition.Offset(),
			Length:      cf.Condition.Length(),
			Replacement: rd.Simplified.Text(),
		}, true

	default:
		return Edit{}, false
	}
}

// promoteBranch replaces the whole construct with the surviving branch's
// content, de-indented and re-wrapped if it was a braced statement_block
// ("block promotion"), or with the branch's own expression text for a
// ternary. An empty resulting block degrades to a full removal: the
// construct is replaced with empty text whatever settings.remove_empty_blocks
// says.
func promoteBranch(cf *ControlFlow, branch *source.Node, src []byte, settings Settings) Edit {
	if branch == nil {
		return Edit{Offset: cf.Node.Offset(), Length: cf.Node.Length(), Replacement: ""}
	}

	if cf.Kind == ControlFlowTernary {
		return Edit{Offset: cf.Node.Offset(), Length: cf.Node.Length(), Replacement: branch.Text()}
	}

	indent := leadingIndent(src, cf.Node.Offset())
	body := promotedBlockText(branch, indent)

	if strings.TrimSpace(body) == "" && settings.RemoveEmptyBlocks {
		return Edit{Offset: cf.Node.Offset(), Length: cf.Node.Length(), Replacement: ""}
	}

	return Edit{Offset: cf.Node.Offset(), Length: cf.Node.Length(), Replacement: body}
}

// promotedBlockText extracts a statement_block's inner statements (or a
// single bare statement) and re-indents them to match indent, the column
// the surrounding if construct itself starts at: each line is left-aligned
// from the block's own indent to the parent's. The first line carries no
// indent at all, since the edit splices in at the construct's offset, which
// already sits past the line's leading whitespace.
func promotedBlockText(branch *source.Node, indent string) string {
	inner := branch.Text()
	if branch.Kind() == "statement_block" {
		inner = trimBraces(inner)
	}
	inner = strings.Trim(inner, "\n")

	lines := strings.Split(inner, "\n")
	lines = stripCommonIndent(lines)
	body := strings.TrimSpace(strings.Join(lines, "\n"))
	if body == "" || indent == "" {
		return body
	}

	indented := rosed.Edit(body).
		IndentOpts(1, rosed.Options{IndentStr: indent, NoTrailingLineSeparators: true}).
		String()
	return strings.TrimPrefix(indented, indent)
}

// stripCommonIndent removes the longest horizontal-whitespace prefix shared
// by every non-blank line.
func stripCommonIndent(lines []string) []string {
	common := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ws := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			common = ws
			first = false
			continue
		}
		for !strings.HasPrefix(ws, common) {
			common = common[:len(common)-1]
		}
	}
	if common == "" {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimPrefix(line, common)
	}
	return out
}

// trimBraces strips exactly one leading "{" and one trailing "}" from a
// statement_block's raw text.
func trimBraces(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}

// leadingIndent returns the leading horizontal whitespace of the line that
// contains offset, stopping at the line's first other character or at
// offset, whichever comes first.
func leadingIndent(src []byte, offset int) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	i := start
	for i < offset && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return string(src[start:i])
}
