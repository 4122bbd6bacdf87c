package document

import (
	"bytes"
	"encoding/json"
)

// FormatVersion identifies the document shape. Bump on any breaking change
// to the JSON layout.
const FormatVersion = "world/1"

// World is the complete compiled document. Section order is fixed; empty
// optional sections are omitted entirely.
type World struct {
	Meta      Meta       `json:"meta"`
	Types     []Type     `json:"types,omitempty"`
	Entities  []Entity   `json:"entities,omitempty"`
	Locations []Location `json:"locations,omitempty"`
	Sections  []Section  `json:"sections,omitempty"`
	Actions   []Action   `json:"actions,omitempty"`
	Rules     []Rule     `json:"rules,omitempty"`
	Sequences []Sequence `json:"sequences,omitempty"`
}

// Meta carries the world block plus the format version.
type Meta struct {
	Format  string `json:"format"`
	Title   string `json:"title"`
	Author  string `json:"author,omitempty"`
	Version string `json:"version,omitempty"`
	Start   string `json:"start"`
	Entry   string `json:"entry,omitempty"`
}

// Type is a compiled entity type schema.
type Type struct {
	Name         string     `json:"name"`
	Capabilities []string   `json:"capabilities,omitempty"`
	Properties   []Property `json:"properties,omitempty"`
}

// Property is one schema entry. Default, Values and the bounds mirror the
// declaration; literal values are string, bool or json.Number.
type Property struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
	Values  []any  `json:"values,omitempty"`
	Min     *int64 `json:"min,omitempty"`
	Max     *int64 `json:"max,omitempty"`
}

// Entity is a compiled world object. Capabilities is only set on the
// synthesized actor; declared entities take theirs from the type.
type Entity struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Location     string       `json:"location,omitempty"`
	Hidden       bool         `json:"hidden,omitempty"`
	Capabilities []string     `json:"capabilities,omitempty"`
	Properties   []NamedValue `json:"properties,omitempty"`
}

// NamedValue is one initial property assignment.
type NamedValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Location is a compiled place, identified by the slug of its heading.
type Location struct {
	ID          string `json:"id"`
	Heading     string `json:"heading"`
	Description string `json:"description,omitempty"`
	Exits       []Exit `json:"exits,omitempty"`
}

// Exit is one outgoing edge. When is the canonical guard string, empty
// when unguarded.
type Exit struct {
	Name string `json:"name"`
	To   string `json:"to"`
	When string `json:"when,omitempty"`
}

// Section is a compiled dialogue section.
type Section struct {
	ID       string   `json:"id"`
	Location string   `json:"location,omitempty"`
	Text     []string `json:"text,omitempty"`
	Choices  []Choice `json:"choices,omitempty"`
	Next     *Jump    `json:"next,omitempty"`
}

// Choice is one selectable option, possibly nested.
type Choice struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	When    *ConditionSet `json:"when,omitempty"`
	Effects []Effect      `json:"effects,omitempty"`
	Goto    *Jump         `json:"goto,omitempty"`
	Choices []Choice      `json:"choices,omitempty"`
}

// Jump is a resolved dialogue transition.
type Jump struct {
	Kind string `json:"kind"` // "section" or "exit"
	To   string `json:"to"`
}

// Action is a compiled verb.
type Action struct {
	ID         string        `json:"id"`
	Entity     string        `json:"entity,omitempty"`
	EntityType string        `json:"entity_type,omitempty"`
	When       *ConditionSet `json:"when,omitempty"`
	Effects    []Effect      `json:"effects,omitempty"`
}

// Effect is one compiled effect in the closed operation set.
type Effect struct {
	Op       string `json:"op"`
	Target   string `json:"target,omitempty"`
	Property string `json:"property,omitempty"`
	Value    any    `json:"value,omitempty"`
	Expr     string `json:"expr,omitempty"`
	To       string `json:"to,omitempty"`
	Type     string `json:"type,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Rule is a compiled world rule.
type Rule struct {
	ID      string   `json:"id"`
	Phase   string   `json:"phase,omitempty"`
	Select  *Select  `json:"select,omitempty"`
	Effects []Effect `json:"effects,omitempty"`
}

// Select is a compiled candidate filter.
type Select struct {
	FromType string        `json:"from_type"`
	Where    *ConditionSet `json:"where,omitempty"`
}

// Sequence is a compiled story sequence.
type Sequence struct {
	ID     string  `json:"id"`
	Phases []Phase `json:"phases,omitempty"`
}

// Phase is one compiled phase. Advance is the whitespace-free canonical
// condition, empty for a terminal phase.
type Phase struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Advance string `json:"advance,omitempty"`
}

// ConditionSet holds canonical condition strings. All and Any are mutually
// exclusive; the zero value marshals as an empty AND list.
type ConditionSet struct {
	All []string
	Any []string
}

// MarshalJSON emits an ordered array for an AND list and
// {"anyOf": [...]} for an OR list, never a mix.
func (cs ConditionSet) MarshalJSON() ([]byte, error) {
	if len(cs.Any) > 0 {
		return marshalPlain(struct {
			AnyOf []string `json:"anyOf"`
		}{AnyOf: cs.Any})
	}
	all := cs.All
	if all == nil {
		all = []string{}
	}
	return marshalPlain(all)
}

// marshalPlain serializes without HTML escaping: canonical condition strings
// contain < and > and must survive verbatim.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON accepts both shapes produced by MarshalJSON.
func (cs *ConditionSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrap struct {
			AnyOf []string `json:"anyOf"`
		}
		if err := json.Unmarshal(trimmed, &wrap); err != nil {
			return err
		}
		cs.All = nil
		cs.Any = wrap.AnyOf
		return nil
	}
	cs.Any = nil
	return json.Unmarshal(trimmed, &cs.All)
}

// Encode serializes the document with stable two-space indentation and a
// trailing newline. HTML escaping is off so conditions like
// "door.weight < 10" are emitted verbatim.
func Encode(w *World) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
