package flagprune

import (
	"strings"

	"github.com/flagprune/flagprune/internal/source"
)

// patternKind is the closed set of call-pattern shapes a configured pattern
// string can describe, modeled as a tagged variant parsed once from the
// configured pattern strings rather than a string comparison repeated per
// call-expression node.
type patternKind int

const (
	patternClassMethod patternKind = iota // "Class.method"
	patternAnyReceiver                    // "*.method"
	patternBareMethod                     // "method"
	patternNestedCall                     // "Outer.outerMethod(innerMethod"
)

// pattern is one parsed, ready-to-match call pattern.
type pattern struct {
	kind        patternKind
	class       string // set for patternClassMethod
	method      string // the outer method name for all kinds
	innerMethod string // set for patternNestedCall
}

// parsePatterns parses the configured method pattern strings into the
// closed tagged-variant form, in order; first match wins.
func parsePatterns(raw []string) []pattern {
	out := make([]pattern, 0, len(raw))
	for _, s := range raw {
		out = append(out, parsePattern(s))
	}
	return out
}

func parsePattern(s string) pattern {
	if idx := strings.Index(s, "("); idx >= 0 {
		// "Outer.outerMethod(innerMethod"
		outer := s[:idx]
		inner := s[idx+1:]
		class, method := splitReceiver(outer)
		return pattern{kind: patternNestedCall, class: class, method: method, innerMethod: inner}
	}

	class, method := splitReceiver(s)
	switch {
	case class == "":
		return pattern{kind: patternBareMethod, method: method}
	case class == "*":
		return pattern{kind: patternAnyReceiver, method: method}
	default:
		return pattern{kind: patternClassMethod, class: class, method: method}
	}
}

func splitReceiver(s string) (class, method string) {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return "", s
}

// matchResult is the outcome of matching one call_expression node against
// the configured patterns.
type matchResult struct {
	Matched       bool
	FlagNameNode  *source.Node // the node whose first argument carries the flag key
}

// matchCall decides whether call (a call_expression node) matches one of
// the configured patterns, trying each in order and returning on first
// match.
func matchCall(call *source.Node, patterns []pattern) matchResult {
	if call == nil || call.Kind() != "call_expression" {
		return matchResult{}
	}

	for _, p := range patterns {
		switch p.kind {
		case patternClassMethod:
			if receiverIs(call, p.class) && methodNameIs(call, p.method) {
				return matchResult{Matched: true, FlagNameNode: call}
			}
		case patternAnyReceiver:
			if methodNameIs(call, p.method) {
				return matchResult{Matched: true, FlagNameNode: call}
			}
		case patternBareMethod:
			if bareMethodNameIs(call, p.method) {
				return matchResult{Matched: true, FlagNameNode: call}
			}
		case patternNestedCall:
			if receiverIs(call, p.class) && methodNameIs(call, p.method) {
				inner := firstArgCall(call)
				if inner != nil && bareMethodNameIs(inner, p.innerMethod) {
					return matchResult{Matched: true, FlagNameNode: inner}
				}
			}
		}
	}

	return matchResult{}
}

// functionNode returns the call's callee expression (a member_expression
// for "a.b(...)" calls, an identifier for bare "f(...)" calls).
func functionNode(call *source.Node) *source.Node {
	return call.Field("function")
}

// methodNameIs reports whether call's callee is a member access whose
// property name equals name (the "*.method" / "Class.method" shape).
func methodNameIs(call *source.Node, name string) bool {
	fn := functionNode(call)
	if fn == nil || fn.Kind() != "member_expression" {
		return false
	}
	prop := fn.Field("property")
	return prop != nil && prop.Text() == name
}

// bareMethodNameIs reports whether call's callee is a bare identifier equal
// to name (the "method" shape, any receiver - including none at all).
func bareMethodNameIs(call *source.Node, name string) bool {
	fn := functionNode(call)
	if fn == nil {
		return false
	}
	if fn.Kind() == "identifier" {
		return fn.Text() == name
	}
	// also allow any receiver - "method" matches regardless of whether the
	// call has a receiver at all.
	return methodNameIs(call, name)
}

// receiverIs reports whether call's callee's object/receiver is the bare
// identifier class. An instance whose static type is named class would
// also count, but without cross-file type information this engine matches
// on the receiver identifier's spelling only.
func receiverIs(call *source.Node, class string) bool {
	fn := functionNode(call)
	if fn == nil || fn.Kind() != "member_expression" {
		return false
	}
	obj := fn.Field("object")
	return obj != nil && obj.Kind() == "identifier" && obj.Text() == class
}

// firstArgCall returns call's first argument if it is itself a
// call_expression, else nil.
func firstArgCall(call *source.Node) *source.Node {
	args := call.Field("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child.Kind() == "call_expression" {
			return child
		}
		// only the first named child counts as "the first argument"; if it
		// isn't a call, this is not a nested-call match.
		return nil
	}
	return nil
}

// extractFlagKey extracts the flag key from node's first argument: simple
// string literals and single-part interpolated strings are accepted
// (returning the literal text); a bare identifier is accepted only as its
// spelling. An argumentless node - the inner call of a container-style
// lookup like registry.read(releaseFlag()) - names the flag by its own
// callee, again as a spelling only.
func extractFlagKey(node *source.Node) (string, bool) {
	args := node.Field("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return calleeName(node)
	}
	first := args.NamedChild(0)

	switch first.Kind() {
	case "string":
		return stringLiteralValue(first), true
	case "template_string":
		return templateStringLiteralValue(first)
	case "identifier":
		return first.Text(), true
	default:
		return "", false
	}
}

// calleeName returns the spelling of a call's callee: the identifier itself
// for bare calls, the property name for member calls.
func calleeName(call *source.Node) (string, bool) {
	fn := functionNode(call)
	if fn == nil {
		return "", false
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Text(), true
	case "member_expression":
		if prop := fn.Field("property"); prop != nil {
			return prop.Text(), true
		}
	}
	return "", false
}

// stringLiteralValue strips the surrounding quote characters from a
// "string" node's text.
func stringLiteralValue(n *source.Node) string {
	t := n.Text()
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if (first == '"' || first == '\'') && first == last {
			return t[1 : len(t)-1]
		}
	}
	return t
}

// templateStringLiteralValue accepts a template string only when it has
// exactly one part: a literal run of text with no substitutions.
func templateStringLiteralValue(n *source.Node) (string, bool) {
	for i := 0; i < n.NamedChildCount(); i++ {
		// literal text arrives as string_fragment/escape_sequence children;
		// a template_substitution (`${...}`) means it is not single-part.
		if n.NamedChild(i).Kind() == "template_substitution" {
			return "", false
		}
	}
	t := n.Text()
	if len(t) >= 2 && t[0] == '`' && t[len(t)-1] == '`' {
		return t[1 : len(t)-1], true
	}
	return t, true
}
