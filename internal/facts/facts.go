// Package facts is the flat relational projection of a resolved world: six
// immutable tuple families plus a derived property-dependency index.
//
// This package deliberately imports neither the syntax tree nor the compiled
// document. Query and analysis consumers depend on facts alone, which
// enforces the rule that a successfully built FactSet is self-describing:
// every structural relationship must be reconstructible from the tuples,
// with no fallback to other representations.
package facts

// FormatVersion identifies the stable external shape of a serialized
// FactSet, versioned independently of the compiler revision.
const FormatVersion = "facts/1"

// Span is a source location carried on every fact.
type Span struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// SiteKind tags which construct owns a property read or write.
type SiteKind string

const (
	SiteChoice SiteKind = "choice"
	SiteExit   SiteKind = "exit"
	SiteRule   SiteKind = "rule"
)

// Site identifies the owning construct of a fact by compiled identifier.
type Site struct {
	Kind SiteKind `json:"kind"`
	ID   string   `json:"id"`
}

// ExitEdge is one traversable edge between locations.
type ExitEdge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Name    string `json:"name"`
	Guarded bool   `json:"guarded"`
	Span    Span   `json:"span"`
}

// SectionJump is one dialogue edge: a section continuation or a choice
// jumping to another section. Choice is empty for section-level
// continuations.
type SectionJump struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Choice string `json:"choice,omitempty"`
	Span   Span   `json:"span"`
}

// Choice is one selectable dialogue option.
type Choice struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Label   string `json:"label"`
	Guarded bool   `json:"guarded"`
	Span    Span   `json:"span"`
}

// Rule is one declared world rule.
type Rule struct {
	ID         string `json:"id"`
	Phase      string `json:"phase,omitempty"`
	TargetType string `json:"target_type,omitempty"`
	Selective  bool   `json:"selective"`
	Span       Span   `json:"span"`
}

// PropertyRead is one site that reads a property, keyed by the declared
// type that owns the property schema.
type PropertyRead struct {
	Type     string `json:"type"`
	Property string `json:"property"`
	Site     Site   `json:"site"`
	Span     Span   `json:"span"`
}

// PropertyWrite is one site that writes a property.
type PropertyWrite struct {
	Type     string `json:"type"`
	Property string `json:"property"`
	Site     Site   `json:"site"`
	Span     Span   `json:"span"`
}

// Set is a complete FactSet. Built once per compilation and never mutated;
// consumers must treat every slice as read-only.
type Set struct {
	Version      string         `json:"version"`
	ExitEdges    []ExitEdge     `json:"exit_edges,omitempty"`
	SectionJumps []SectionJump  `json:"section_jumps,omitempty"`
	Choices      []Choice       `json:"choices,omitempty"`
	Rules        []Rule         `json:"rules,omitempty"`
	Reads        []PropertyRead  `json:"property_reads,omitempty"`
	Writes       []PropertyWrite `json:"property_writes,omitempty"`
}
