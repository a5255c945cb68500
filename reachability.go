package flagprune

import "github.com/flagprune/flagprune/internal/source"

// Analyze is the reachability analyzer (C7). It decides the fate of a
// FlagReference's enclosing if/ternary against a closed set of condition
// shapes: the whole condition, one operand of a top-level && or ||, or
// anything more complex (left alone). A reference with no ParentControl (a
// "free" flag call) gets keep_both here; the rewrite planner (C8) collapses
// such calls to their literal value itself.
func Analyze(ref FlagReference) ReferenceDecision {
	cf := ref.ParentControl
	v := ref.EffectiveValue()

	if cf == nil {
		return ReferenceDecision{Reference: ref, Decision: DecisionKeepBoth}
	}

	cond := cf.Condition
	if cond == nil {
		return ReferenceDecision{Reference: ref, Decision: DecisionKeepBoth}
	}

	// Node spans are compared with parentheses stripped on both sides, so a
	// reference wrapped as ((flag)) still counts as the whole condition or as
	// a whole operand.
	x := unwrapParens(ref.EffectiveNode)
	if x == nil {
		x = ref.Node
	}

	// Rule 1: X == C, the whole condition is the flag.
	if sameNode(x, cond) {
		return decideWholeCondition(ref, cf, v)
	}

	// Rules 2 & 3: C is a top-level && or || and X is one operand. The
	// surviving operand keeps its raw node, parentheses included, so the
	// simplified condition is a verbatim slice of the original source.
	if cond.Kind() == "binary_expression" {
		op := binaryOperator(cond)
		left := cond.Field("left")
		right := cond.Field("right")

		var other *source.Node
		switch {
		case sameNode(x, unwrapParens(left)):
			other = right
		case sameNode(x, unwrapParens(right)):
			other = left
		default:
			other = nil
		}

		if other != nil {
			switch op {
			case "&&":
				if v {
					return ReferenceDecision{Reference: ref, Decision: DecisionSimplifyCondition, Simplified: other}
				}
				if cf.HasElse() {
					return ReferenceDecision{Reference: ref, Decision: DecisionRemoveThenKeepElse}
				}
				return ReferenceDecision{Reference: ref, Decision: DecisionRemoveAll}
			case "||":
				if v {
					return ReferenceDecision{Reference: ref, Decision: DecisionKeepThenRemoveElse}
				}
				return ReferenceDecision{Reference: ref, Decision: DecisionSimplifyCondition, Simplified: other}
			}
		}
	}

	// Rule 5: anything more complex. Be conservative.
	return ReferenceDecision{Reference: ref, Decision: DecisionKeepBoth}
}

// AnalyzeReferences runs Analyze over one file's references, collapsing
// references that share an enclosing construct into a single decision. A
// construct whose condition holds more than one flag reference is never
// rewritten: proving equivalence there would need multi-flag reasoning the
// analyzer does not attempt, so the construct's one decision is keep_both.
// Free references (no enclosing construct) each get their own decision.
func AnalyzeReferences(refs []FlagReference) []ReferenceDecision {
	type span struct{ offset, end int }

	counts := make(map[span]int)
	for _, r := range refs {
		if r.ParentControl != nil {
			counts[span{r.ParentControl.Node.Offset(), r.ParentControl.Node.End()}]++
		}
	}

	seen := make(map[span]bool)
	out := make([]ReferenceDecision, 0, len(refs))
	for _, r := range refs {
		if r.ParentControl == nil {
			out = append(out, Analyze(r))
			continue
		}
		s := span{r.ParentControl.Node.Offset(), r.ParentControl.Node.End()}
		if seen[s] {
			continue
		}
		seen[s] = true
		if counts[s] > 1 {
			out = append(out, ReferenceDecision{Reference: r, Decision: DecisionKeepBoth})
			continue
		}
		out = append(out, Analyze(r))
	}
	return out
}

// decideWholeCondition handles the case where the flag reference is the
// entire condition expression, not just one operand of it.
func decideWholeCondition(ref FlagReference, cf *ControlFlow, v bool) ReferenceDecision {
	switch cf.Kind {
	case ControlFlowTernary:
		if v {
			return ReferenceDecision{Reference: ref, Decision: DecisionKeepThenRemoveElse}
		}
		return ReferenceDecision{Reference: ref, Decision: DecisionRemoveThenKeepElse}
	case ControlFlowIf:
		if cf.HasElse() {
			if v {
				return ReferenceDecision{Reference: ref, Decision: DecisionKeepThenRemoveElse}
			}
			return ReferenceDecision{Reference: ref, Decision: DecisionRemoveThenKeepElse}
		}
		// if without else
		if v {
			return ReferenceDecision{Reference: ref, Decision: DecisionKeepThenRemoveElse}
		}
		return ReferenceDecision{Reference: ref, Decision: DecisionRemoveAll}
	default:
		return ReferenceDecision{Reference: ref, Decision: DecisionKeepBoth}
	}
}

// binaryOperator returns a binary_expression's operator token text, e.g.
// "&&", "||", "==".
func binaryOperator(n *source.Node) string {
	op := n.Field("operator")
	if op != nil {
		return op.Text()
	}
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "&&", "||":
			return c.Kind()
		}
	}
	return ""
}
