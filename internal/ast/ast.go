package ast

import "github.com/zclconf/go-cty/cty"

// Span is a source location. Line and Column are 1-based.
type Span struct {
	File   string
	Line   int
	Column int
}

// File is the syntax tree of one world source file.
type File struct {
	Path string // path as resolved by the loader
	Stem string // base name without extensions; namespace key for sections

	Imports []Import

	World     *World
	Types     []*TypeDecl
	Entities  []*EntityDecl
	Locations []*LocationDecl
	Sections  []*SectionDecl
	Actions   []*ActionDecl
	Rules     []*RuleDecl
	Sequences []*SequenceDecl
}

// Import is one explicit, relative, non-transitive import declaration.
type Import struct {
	Path string
	Span Span
}

// World is the unit-wide metadata block. Exactly one per compilation unit,
// declared in the entry file.
type World struct {
	Title   string
	Author  string
	Version string
	Start   *Ref // start location
	Entry   *Ref // optional entry dialogue section
	Span    Span
}

// TypeDecl declares an entity type: a property schema plus capabilities.
type TypeDecl struct {
	Name         string
	Capabilities []string
	Properties   []*PropertyDecl
	Span         Span
}

// Property looks up a declared property by name.
func (t *TypeDecl) Property(name string) *PropertyDecl {
	for _, p := range t.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PropertyDecl is one property schema inside a type declaration.
type PropertyDecl struct {
	Name    string
	Type    string      // "string", "number" or "bool"
	Default cty.Value   // cty.NilVal when absent
	Values  []cty.Value // enum domain; empty means unconstrained
	Min     *int64      // numeric lower bound, nil means unbounded
	Max     *int64
	Span    Span
}

// EntityDecl declares a world object.
type EntityDecl struct {
	Name     string
	Type     *Ref
	Location *Ref
	Hidden   bool
	Props    []PropertyValue
	Span     Span

	// Implicit marks the actor entity synthesized by the linker when no
	// explicit declaration exists. Capabilities is only populated on it;
	// declared entities inherit capabilities from their type.
	Implicit     bool
	Capabilities []string
}

// PropertyValue is one initial property assignment on an entity.
type PropertyValue struct {
	Name  string
	Value cty.Value
	Span  Span
}

// LocationDecl declares a place. Its compiled identifier is the slug of the
// heading text.
type LocationDecl struct {
	Heading     string
	Description string
	Exits       []*ExitDecl
	Span        Span
}

// ExitDecl is a named edge out of a location. When is singular: zero or one
// condition, never a list.
type ExitDecl struct {
	Name string
	To   *Ref
	When *Condition
	Span Span
}

// SectionDecl is a dialogue section. Its compiled identifier is
// "{file-stem}/{name}".
type SectionDecl struct {
	Name     string
	Location *Ref // optional anchor; required for exit jumps from choices
	Text     []string
	Choices  []*ChoiceDecl
	Next     *JumpRef // optional explicit continuation
	Span     Span
}

// ChoiceDecl is one selectable option inside a section, possibly nested.
type ChoiceDecl struct {
	Label   string
	When    *ConditionSet
	Effects []*Effect
	Goto    *JumpRef
	Choices []*ChoiceDecl
	Span    Span
}

// ActionDecl declares a verb the actor can perform. Entity and EntityType
// are mutually exclusive targets; both absent means an untargeted action.
type ActionDecl struct {
	Name       string
	Entity     *Ref
	EntityType *Ref
	When       *ConditionSet
	Effects    []*Effect
	Span       Span
}

// RuleDecl declares a world rule, optionally bound to a story phase.
type RuleDecl struct {
	Name    string
	Phase   *Ref
	Select  *SelectDecl
	Effects []*Effect
	Span    Span
}

// SelectDecl filters a candidate entity set by type and conditions; the
// runtime chooses uniformly at random among the survivors.
type SelectDecl struct {
	FromType *Ref
	Where    *ConditionSet
	Span     Span
}

// SequenceDecl declares an ordered story sequence of phases.
type SequenceDecl struct {
	Name   string
	Phases []*PhaseDecl
	Span   Span
}

// PhaseDecl is one phase of a sequence. Advance is singular by design: the
// phase-advance grammar cannot represent an AND list.
type PhaseDecl struct {
	Name    string
	Advance *Condition
	Span    Span
}
