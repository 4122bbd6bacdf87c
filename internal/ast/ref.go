package ast

import "github.com/zclconf/go-cty/cty"

// Binding discriminates the two reserved, non-entity shorthands. The linker
// sets it exactly once during resolution; no later phase may re-inspect the
// raw text to recover this meaning.
type Binding int

const (
	BindNone     Binding = iota
	BindActor            // "actor": whoever currently acts
	BindLocation         // "here": the actor's current location
)

// Resolved is the annotation reference resolution writes onto a Ref or
// JumpRef. Kind and ID name the symbol by its compiled identifier. A reserved
// binding carries Binding instead of a symbol identity.
type Resolved struct {
	Kind    string // "type", "entity", "location", "section", "exit", "phase"
	ID      string
	Binding Binding
}

// Ref is a by-name reference to a declared construct. Res stays nil until
// resolution runs; nil afterwards means the reference did not resolve and a
// diagnostic was recorded.
type Ref struct {
	Raw  string
	Span Span
	Res  *Resolved
}

// IsResolved reports whether resolution succeeded for this reference.
func (r *Ref) IsResolved() bool {
	return r != nil && r.Res != nil
}

// JumpKind is the requested form of a jump target.
type JumpKind int

const (
	JumpAuto    JumpKind = iota // bare name: try section, then exit
	JumpSection                 // explicit "section:" prefix
	JumpExit                    // explicit "exit:" prefix
)

// JumpRef is a jump target from a choice or a section continuation.
type JumpRef struct {
	Kind JumpKind
	Raw  string
	Span Span
	Res  *Resolved
}

// IsResolved reports whether resolution succeeded for this jump.
func (j *JumpRef) IsResolved() bool {
	return j != nil && j.Res != nil
}

// CompareOp is a condition comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// String returns the surface spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Condition is one parsed comparison: subject.property op literal. The front
// end owns the string micro-grammar; nothing downstream re-parses text.
type Condition struct {
	Subject  *Ref
	Property string
	Op       CompareOp
	Value    cty.Value
	Span     Span
}

// ConditionSet is either an ordered AND list (All) or a single explicit OR
// alternative (Any). The two shapes are never mixed in one field; the front
// end rejects sources that set both.
type ConditionSet struct {
	All  []*Condition
	Any  []*Condition
	Span Span
}

// Conditions returns every condition in the set regardless of shape.
func (cs *ConditionSet) Conditions() []*Condition {
	if cs == nil {
		return nil
	}
	if len(cs.Any) > 0 {
		return cs.Any
	}
	return cs.All
}

// EffectOp enumerates the closed set of structured effect operations.
type EffectOp int

const (
	EffectAssign EffectOp = iota
	EffectRelocate
	EffectUnhide
	EffectRemove
	EffectCreate
)

// String returns the stable external name of the operation.
func (op EffectOp) String() string {
	switch op {
	case EffectAssign:
		return "assign"
	case EffectRelocate:
		return "relocate"
	case EffectUnhide:
		return "unhide"
	case EffectRemove:
		return "remove"
	case EffectCreate:
		return "create"
	default:
		return "unknown"
	}
}

// Effect is one structured world mutation.
//
// assign sets Target.Property either to the literal Value or to the result of
// the arithmetic expression Expr (exactly one of the two is present; the
// expression is evaluated by the runtime, never precomputed here). relocate
// moves Target to To. unhide and remove toggle Target. create spawns a new
// entity Name of type TypeRef at To.
type Effect struct {
	Op       EffectOp
	Target   *Ref
	Property string
	Value    cty.Value
	Expr     string
	To       *Ref
	TypeRef  *Ref
	Name     string
	Span     Span
}
