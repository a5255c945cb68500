package flagprune

import "github.com/flagprune/flagprune/internal/source"

// ScanDefinitions is the definition scanner (C5). It finds declarations
// removable once a flag is gone: top-level constants, class fields, enum
// members, and the local variable bindings the flag-usage scanner (C4)
// already found (turned into DefinitionLocations here so the rewrite
// planner treats them uniformly).
func ScanDefinitions(unit *ParsedUnit, cfg FlagConfig, bindings map[string]FlagVariableBinding) []DefinitionLocation {
	var out []DefinitionLocation

	source.Walk(unit.Root(), func(n *source.Node, ancestors []*source.Node) bool {
		switch n.Kind() {
		case "lexical_declaration", "variable_declaration":
			if !topLevel(ancestors) {
				return true
			}
			out = append(out, scanConstDeclaration(n, cfg)...)
			return true
		case "public_field_definition", "field_definition":
			if loc, ok := scanClassField(n, cfg); ok {
				out = append(out, loc)
			}
			return true
		case "enum_assignment", "property_signature":
			if loc, ok := scanEnumMember(n, cfg); ok {
				out = append(out, loc)
			}
			return true
		}
		return true
	})

	for _, b := range bindings {
		def, ok := cfg.FindDefinition(b.FlagName)
		if !ok || !def.RemoveDefinition {
			continue
		}
		if stmt := b.DeclarationNode; stmt != nil {
			out = append(out, DefinitionLocation{
				FlagName: b.FlagName,
				Node:     stmt,
				Offset:   stmt.Offset(),
				Length:   stmt.Length(),
				Kind:     DefinitionVariable,
			})
		}
	}

	return out
}

// topLevel reports whether a node's ancestors never pass through a
// function/method/arrow body - i.e. it's declared at module or class-body
// scope.
func topLevel(ancestors []*source.Node) bool {
	for _, anc := range ancestors {
		switch anc.Kind() {
		case "statement_block", "function_declaration", "method_definition", "arrow_function":
			return false
		}
	}
	return true
}

// scanConstDeclaration finds `const NAME = flagDefault(...)`-style top-level
// declarations whose RemoveDefinition is set in config, matching on the
// declarator name against the flag config's declared names only when the
// flag config explicitly says the definition itself should be removed -
// a constant's name need not match the flag name its value encodes, so
// removal is always opt-in.
func scanConstDeclaration(n *source.Node, cfg FlagConfig) []DefinitionLocation {
	var out []DefinitionLocation
	for i := 0; i < n.NamedChildCount(); i++ {
		decl := n.NamedChild(i)
		if decl.Kind() != "variable_declarator" {
			continue
		}
		name := decl.Field("name")
		if name == nil {
			continue
		}
		def, ok := cfg.FindDefinition(name.Text())
		if !ok || !def.RemoveDefinition {
			continue
		}
		out = append(out, DefinitionLocation{
			FlagName: def.Name,
			Node:     n,
			Offset:   n.Offset(),
			Length:   n.Length(),
			Kind:     DefinitionConstant,
		})
	}
	return out
}

// scanClassField matches a class field declaration whose name is a
// configured flag with RemoveDefinition set.
func scanClassField(n *source.Node, cfg FlagConfig) (DefinitionLocation, bool) {
	name := n.Field("name")
	if name == nil {
		return DefinitionLocation{}, false
	}
	def, ok := cfg.FindDefinition(name.Text())
	if !ok || !def.RemoveDefinition {
		return DefinitionLocation{}, false
	}
	return DefinitionLocation{
		FlagName: def.Name,
		Node:     n,
		Offset:   n.Offset(),
		Length:   n.Length(),
		Kind:     DefinitionClassField,
	}, true
}

// scanEnumMember matches an enum member whose name is a configured flag with
// RemoveDefinition set.
func scanEnumMember(n *source.Node, cfg FlagConfig) (DefinitionLocation, bool) {
	name := n.Field("name")
	if name == nil {
		return DefinitionLocation{}, false
	}
	def, ok := cfg.FindDefinition(name.Text())
	if !ok || !def.RemoveDefinition {
		return DefinitionLocation{}, false
	}
	return DefinitionLocation{
		FlagName: def.Name,
		Node:     n,
		Offset:   n.Offset(),
		Length:   n.Length(),
		Kind:     DefinitionEnumValue,
	}, true
}
