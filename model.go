package flagprune

import (
	"github.com/flagprune/flagprune/internal/source"
)

// ParsedUnit is the syntax tree plus source text for one file. It owns byte
// offsets for every node by virtue of wrapping a *source.Unit (see
// internal/source for the parser adapter, C1).
type ParsedUnit struct {
	Path string
	Unit *source.Unit
}

// Root returns the root node of the parsed unit's tree.
func (p *ParsedUnit) Root() *source.Node {
	return p.Unit.Root()
}

// Source returns the raw bytes the unit was parsed from.
func (p *ParsedUnit) Source() []byte {
	return p.Unit.Source
}

// FlagReference is a candidate flag use site.
type FlagReference struct {
	FlagName       string
	ResolvedValue  bool
	Node           *source.Node
	Offset         int
	Length         int
	ParentControl  *ControlFlow // nil if the reference is a "free" flag call
	IsNegated      bool
	VariableName   string       // set when this reference is a use of a bound flag variable
	EffectiveNode  *source.Node // the outermost expression this reference contributes to its condition, after folding negations (see foldNegation)
}

// EffectiveValue folds IsNegated into ResolvedValue: the boolean the
// reference actually contributes to its condition is ResolvedValue XOR
// IsNegated.
func (r FlagReference) EffectiveValue() bool {
	return r.IsNegated != r.ResolvedValue
}

// ControlFlowKind distinguishes the two control-flow shapes the reachability
// analyzer reasons about.
type ControlFlowKind int

const (
	ControlFlowIf ControlFlowKind = iota
	ControlFlowTernary
)

// ControlFlow is the enclosing if-statement or ternary-expression whose
// condition transitively contains a FlagReference's node.
type ControlFlow struct {
	Kind      ControlFlowKind
	Node      *source.Node // the whole if_statement or ternary_expression
	Condition *source.Node // the condition expression
	Then      *source.Node // the then-branch (statement_block, single statement, or ternary consequent)
	Else      *source.Node // the else-branch, or nil if there is none
}

// HasElse reports whether this construct has an else branch.
func (c *ControlFlow) HasElse() bool {
	return c.Else != nil
}

// FlagVariableBinding records a local variable whose initializer is itself a
// matched flag-query call.
type FlagVariableBinding struct {
	VariableName    string
	FlagName        string
	ResolvedValue   bool
	DeclarationNode *source.Node // the statement node that declares the variable
}

// DefinitionKind distinguishes the four removable declaration shapes: a
// top-level constant, a class field, an enum value, or a flag-bound local
// variable.
type DefinitionKind int

const (
	DefinitionConstant DefinitionKind = iota
	DefinitionClassField
	DefinitionEnumValue
	DefinitionVariable
)

// DefinitionLocation is a declaration eligible for removal.
type DefinitionLocation struct {
	FlagName string
	Node     *source.Node
	Offset   int
	Length   int
	Kind     DefinitionKind
}

// ImportUsageSite is one identifier reference resolved to a name an import
// brought into scope.
type ImportUsageSite struct {
	Offset     int
	Length     int
	SymbolName string
}

// ImportRecord is one import directive plus every site that uses one of its
// imported names.
type ImportRecord struct {
	Node         *source.Node
	URI          string
	Prefix       string   // set for `import * as prefix from 'uri'`-style imports
	ShownNames   []string // named imports, e.g. {a, b} from 'uri'
	HiddenNames  []string // names imported but never directly referenced by a bare identifier (aliases etc.)
	UsageSites   []ImportUsageSite
	IsFlagImport bool
}

// Decision is the closed set of outcomes the reachability analyzer (C7) can
// reach for one FlagReference's enclosing control-flow construct.
type Decision int

const (
	DecisionKeepBoth Decision = iota
	DecisionKeepThenRemoveElse
	DecisionRemoveThenKeepElse
	DecisionRemoveAll
	DecisionSimplifyCondition
)

func (d Decision) String() string {
	switch d {
	case DecisionKeepBoth:
		return "keep_both"
	case DecisionKeepThenRemoveElse:
		return "keep_then_remove_else"
	case DecisionRemoveThenKeepElse:
		return "remove_then_keep_else"
	case DecisionRemoveAll:
		return "remove_all"
	case DecisionSimplifyCondition:
		return "simplify_condition"
	default:
		return "unknown"
	}
}

// ReferenceDecision pairs one FlagReference with the Decision the
// reachability analyzer reached for its enclosing construct, and (for
// DecisionSimplifyCondition) the surviving sub-expression.
type ReferenceDecision struct {
	Reference  FlagReference
	Decision   Decision
	Simplified *source.Node // set only for DecisionSimplifyCondition
}

// Edit is a single byte-range replacement.
type Edit struct {
	Offset      int
	Length      int
	Replacement string
}

// End returns Offset + Length.
func (e Edit) End() int { return e.Offset + e.Length }

// TransformationResult is the outcome of one transform(file) invocation.
type TransformationResult struct {
	OriginalSource    string
	TransformedSource string
	RemovedFlagNames  map[string]bool
	RemovedImportURIs map[string]bool
	LinesRemoved      int
	Warnings          []string
	HasChanges        bool
}

// Summary renders the one-line user-visible summary: "N flag(s) removed,
// M import(s) removed, K line(s) removed".
func (r TransformationResult) Summary() string {
	return pluralizedSummary(len(r.RemovedFlagNames), len(r.RemovedImportURIs), r.LinesRemoved)
}
