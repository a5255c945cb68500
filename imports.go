package flagprune

import (
	"strings"

	"github.com/flagprune/flagprune/internal/source"
)

// defaultFlagImportSubstrings are the loose name fragments that mark an
// import as a flag-service import when settings.strict_imports is off.
var defaultFlagImportSubstrings = []string{"flag", "feature"}

// ScanImports is the import tracker (C6). It records every import directive
// and the identifier-reference usage sites that resolve to one of its
// imported names, so the rewrite planner (C8) can tell whether an import is
// truly unused once flag-gated code has been stripped out.
func ScanImports(unit *ParsedUnit, cfg FlagConfig) []ImportRecord {
	var records []ImportRecord
	bySymbol := make(map[string]int) // imported name -> index into records

	source.Walk(unit.Root(), func(n *source.Node, ancestors []*source.Node) bool {
		if n.Kind() != "import_statement" {
			return true
		}
		rec := parseImportStatement(n)
		rec.IsFlagImport = classifyFlagImport(rec, cfg)
		records = append(records, rec)
		idx := len(records) - 1
		for _, name := range rec.ShownNames {
			bySymbol[name] = idx
		}
		if rec.Prefix != "" {
			bySymbol[rec.Prefix] = idx
		}
		return true
	})

	if len(records) == 0 {
		return records
	}

	source.Walk(unit.Root(), func(n *source.Node, ancestors []*source.Node) bool {
		if n.Kind() != "identifier" {
			return true
		}
		if isWithinImportStatement(ancestors) {
			return true
		}
		idx, ok := bySymbol[n.Text()]
		if !ok {
			return true
		}
		records[idx].UsageSites = append(records[idx].UsageSites, ImportUsageSite{
			Offset:     n.Offset(),
			Length:     n.Length(),
			SymbolName: n.Text(),
		})
		return true
	})

	return records
}

func isWithinImportStatement(ancestors []*source.Node) bool {
	for _, anc := range ancestors {
		if anc.Kind() == "import_statement" {
			return true
		}
	}
	return false
}

// parseImportStatement extracts the imported URI, any namespace prefix, and
// the set of named bindings from an import_statement node. The grammar's
// exact shape for named imports varies; this walks the subtree looking for
// the source string and any import_specifier/namespace_import nodes rather
// than assuming a fixed field layout, since import syntax has the widest
// surface variance of any construct this engine parses.
func parseImportStatement(n *source.Node) ImportRecord {
	rec := ImportRecord{Node: n}

	source.Walk(n, func(node *source.Node, _ []*source.Node) bool {
		switch node.Kind() {
		case "string":
			if rec.URI == "" {
				rec.URI = stringLiteralValue(node)
			}
		case "namespace_import":
			if node.NamedChildCount() > 0 {
				rec.Prefix = node.NamedChild(node.NamedChildCount() - 1).Text()
			}
		case "import_specifier":
			name := node.Field("name")
			alias := node.Field("alias")
			if alias != nil {
				rec.ShownNames = append(rec.ShownNames, alias.Text())
				if name != nil {
					rec.HiddenNames = append(rec.HiddenNames, name.Text())
				}
			} else if name != nil {
				rec.ShownNames = append(rec.ShownNames, name.Text())
			}
		case "identifier":
			// a default import binding: `import Foo from 'uri'`
			if node.Parent() != nil && node.Parent().Kind() == "import_clause" {
				rec.ShownNames = append(rec.ShownNames, node.Text())
			}
		}
		return true
	})

	return rec
}

// classifyFlagImport decides whether an import directive is itself a
// flag-service import, whose removal is considered once every flag call it
// serves has been stripped. With settings.strict_imports set, only an
// explicit match against patterns.classes is accepted; otherwise a loose
// substring match against the import URI also counts. The strict
// mode is a deliberate, opt-in escape hatch from the classifier's default
// heuristic, which can false-positive on any import whose path happens to
// mention "flag" or "feature".
func classifyFlagImport(rec ImportRecord, cfg FlagConfig) bool {
	for _, class := range cfg.Patterns.Classes {
		if rec.Prefix == class || strings.Contains(rec.URI, class) {
			return true
		}
		for _, name := range rec.ShownNames {
			if name == class {
				return true
			}
		}
	}

	if cfg.Settings.StrictImports {
		return false
	}

	lowered := strings.ToLower(rec.URI)
	for _, frag := range defaultFlagImportSubstrings {
		if strings.Contains(lowered, frag) {
			return true
		}
	}
	return false
}

// TrulyUnused reports whether every usage site of rec falls inside one of
// the given removed byte ranges - the condition required before an import
// directive itself may be deleted.
func TrulyUnused(rec ImportRecord, removed []Edit) bool {
	if len(rec.UsageSites) == 0 {
		return true
	}
	for _, site := range rec.UsageSites {
		if !coveredByAny(site, removed) {
			return false
		}
	}
	return true
}

func coveredByAny(site ImportUsageSite, removed []Edit) bool {
	for _, e := range removed {
		if e.Offset <= site.Offset && site.Offset+site.Length <= e.End() {
			return true
		}
	}
	return false
}
