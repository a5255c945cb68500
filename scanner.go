package flagprune

import (
	"github.com/flagprune/flagprune/internal/source"
)

// ScanResult is the output of one flag-usage scan (C4): the references
// found, and the table of local variables bound to flag queries.
type ScanResult struct {
	References []FlagReference
	Bindings   map[string]FlagVariableBinding
}

// ScanFlagUsage performs the single recursive traversal of C4: it tracks
// flag-variable bindings and emits a FlagReference for every other matched
// call or bound-variable use that flows into a condition.
func ScanFlagUsage(unit *ParsedUnit, cfg FlagConfig) ScanResult {
	patterns := parsePatterns(cfg.MethodPatterns())
	result := ScanResult{Bindings: make(map[string]FlagVariableBinding)}

	boundCallOffsets := make(map[int]bool) // call_expression offsets consumed by a binding

	source.Walk(unit.Root(), func(n *source.Node, ancestors []*source.Node) bool {
		if n.Kind() == "lexical_declaration" || n.Kind() == "variable_declaration" {
			for i := 0; i < n.NamedChildCount(); i++ {
				decl := n.NamedChild(i)
				if decl.Kind() != "variable_declarator" {
					continue
				}
				name := decl.Field("name")
				value := decl.Field("value")
				if name == nil || value == nil {
					continue
				}
				call := unwrapParens(value)
				if call == nil || call.Kind() != "call_expression" {
					continue
				}
				m := matchCall(call, patterns)
				if !m.Matched {
					continue
				}
				flagName, ok := extractFlagKey(m.FlagNameNode)
				if !ok {
					continue
				}
				def, ok := cfg.FindDefinition(flagName)
				if !ok {
					continue
				}
				result.Bindings[name.Text()] = FlagVariableBinding{
					VariableName:    name.Text(),
					FlagName:        def.Name,
					ResolvedValue:   def.Value,
					DeclarationNode: n,
				}
				boundCallOffsets[call.Offset()] = true
			}
			return true
		}

		if n.Kind() == "call_expression" {
			if boundCallOffsets[n.Offset()] {
				return true
			}
			m := matchCall(n, patterns)
			if !m.Matched {
				return true
			}
			flagName, ok := extractFlagKey(m.FlagNameNode)
			if !ok {
				return true
			}
			def, ok := cfg.FindDefinition(flagName)
			if !ok {
				return true
			}

			negated, effective := foldNegation(n, ancestors)
			ref := FlagReference{
				FlagName:      def.Name,
				ResolvedValue: def.Value,
				Node:          n,
				Offset:        n.Offset(),
				Length:        n.Length(),
				IsNegated:     negated,
				EffectiveNode: effective,
			}
			if inCond, cf := inCondition(n, ancestors); inCond {
				ref.ParentControl = cf
			}
			result.References = append(result.References, ref)
			return true
		}

		if n.Kind() == "identifier" {
			binding, ok := result.Bindings[n.Text()]
			if !ok {
				return true
			}
			// skip the declaration's own name identifier
			parent := n.Parent()
			if parent != nil && parent.Kind() == "variable_declarator" && sameNode(parent.Field("name"), n) {
				return true
			}
			inCond, cf := inCondition(n, ancestors)
			if !inCond {
				return true
			}
			negated, effective := foldNegation(n, ancestors)
			ref := FlagReference{
				FlagName:      binding.FlagName,
				ResolvedValue: binding.ResolvedValue,
				Node:          n,
				Offset:        n.Offset(),
				Length:        n.Length(),
				IsNegated:     negated,
				EffectiveNode: effective,
				VariableName:  binding.VariableName,
				ParentControl: cf,
			}
			result.References = append(result.References, ref)
			return true
		}

		return true
	})

	return result
}

// inCondition reports whether n lies inside the condition expression of the
// nearest enclosing if_statement/ternary_expression ancestor. Lying inside
// that construct's body instead short-circuits to "not in a condition",
// even if an outer construct's condition contains this one structurally.
func inCondition(n *source.Node, ancestors []*source.Node) (bool, *ControlFlow) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		anc := ancestors[i]
		switch anc.Kind() {
		case "if_statement":
			cf := controlFlowFromIf(anc)
			if cf.Condition != nil && cf.Condition.Contains(n) {
				return true, cf
			}
			return false, nil
		case "ternary_expression":
			cf := controlFlowFromTernary(anc)
			if cf.Condition != nil && cf.Condition.Contains(n) {
				return true, cf
			}
			return false, nil
		}
	}
	return false, nil
}

func controlFlowFromIf(n *source.Node) *ControlFlow {
	cond := unwrapParens(n.Field("condition"))
	return &ControlFlow{
		Kind:      ControlFlowIf,
		Node:      n,
		Condition: cond,
		Then:      n.Field("consequence"),
		Else:      elseBody(n.Field("alternative")),
	}
}

// elseBody unwraps an if_statement's "alternative" field: in the grammar
// this is an else_clause wrapping either a statement_block or a nested
// if_statement (an "else if"). The else_clause's direct body is returned in
// both cases, so a nested if_statement is the else branch and is promoted
// as a single statement when the else branch survives.
func elseBody(alt *source.Node) *source.Node {
	if alt == nil {
		return nil
	}
	if alt.Kind() == "else_clause" && alt.NamedChildCount() > 0 {
		return alt.NamedChild(0)
	}
	return alt
}

func controlFlowFromTernary(n *source.Node) *ControlFlow {
	return &ControlFlow{
		Kind:      ControlFlowTernary,
		Node:      n,
		Condition: unwrapParens(n.Field("condition")),
		Then:      n.Field("consequence"),
		Else:      n.Field("alternative"),
	}
}

// unwrapParens strips any chain of parenthesized_expression wrappers.
func unwrapParens(n *source.Node) *source.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		if n.NamedChildCount() == 0 {
			return n
		}
		n = n.NamedChild(0)
	}
	return n
}

// foldNegation walks outward from node through ancestors, toggling negated
// for each immediate prefix-! wrapper (transparent through parentheses),
// stopping at the first ancestor that is neither. Each ! toggles
// individually; double negation is not canonicalized here. It also returns
// the outermost node reached - the "effective" expression this flag
// reference contributes to its enclosing condition, used by the
// reachability analyzer (C7) to locate where the reference sits within the
// condition and by the rewrite planner (C8) as the span a free flag call's
// literal replacement must cover.
func foldNegation(node *source.Node, ancestors []*source.Node) (negated bool, effective *source.Node) {
	negated = false
	cur := node
	for i := len(ancestors) - 1; i >= 0; i-- {
		anc := ancestors[i]
		switch anc.Kind() {
		case "parenthesized_expression":
			cur = anc
		case "unary_expression":
			if !sameNode(operandOf(anc), cur) || unaryOperator(anc) != "!" {
				return negated, cur
			}
			negated = !negated
			cur = anc
		default:
			return negated, cur
		}
	}
	return negated, cur
}

func operandOf(unary *source.Node) *source.Node {
	return unary.Field("argument")
}

// sameNode reports whether a and b denote the same source span. Node
// wrappers are recreated on every traversal step, so identity must be
// compared structurally rather than by pointer.
func sameNode(a, b *source.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Offset() == b.Offset() && a.End() == b.End()
}

// unaryOperator returns the operator token text of a unary_expression, e.g.
// "!", "-", "+", "~".
func unaryOperator(unary *source.Node) string {
	op := unary.Field("operator")
	if op != nil {
		return op.Text()
	}
	// fall back to scanning children for the leading operator token
	for i := 0; i < unary.ChildCount(); i++ {
		c := unary.Child(i)
		if c.Kind() == "!" {
			return "!"
		}
	}
	return ""
}
