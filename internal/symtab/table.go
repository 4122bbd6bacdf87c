package symtab

import (
	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/depgraph"
)

// ActorName is the well-known identifier of the actor entity. When no file
// declares it, the linker synthesizes one; an explicit declaration replaces
// the implicit entity wholesale, with no field merging.
const ActorName = "player"

// Capabilities of the synthesized implicit actor.
var implicitActorCapabilities = []string{"container", "mobile"}

// Table is the global symbol table of one compilation unit. It is owned
// exclusively by the compilation run that built it and must be treated as
// immutable once Link returns.
type Table struct {
	Unit *depgraph.Unit

	// World metadata from the entry file; StartID and EntryID hold the
	// resolved compiled identifiers after the resolution pass.
	World   *worldMeta
	StartID string
	EntryID string

	Types     *Namespace
	Entities  *Namespace
	Locations *Namespace
	Sections  *Namespace
	Choices   *Namespace
	Exits     *Namespace
	Actions   *Namespace
	Rules     *Namespace
	Sequences *Namespace
	Phases    *Namespace

	// ImplicitActor is true when the linker synthesized the actor entity.
	ImplicitActor bool
}

type worldMeta struct {
	Title   string
	Author  string
	Version string
}

// Title returns the world title, or "" when the entry file had no world
// block (which is itself an error diagnostic).
func (t *Table) Title() string {
	if t.World == nil {
		return ""
	}
	return t.World.Title
}

// Author returns the declared world author.
func (t *Table) Author() string {
	if t.World == nil {
		return ""
	}
	return t.World.Author
}

// Version returns the declared world version.
func (t *Table) Version() string {
	if t.World == nil {
		return ""
	}
	return t.World.Version
}

func newTable(unit *depgraph.Unit) *Table {
	return &Table{
		Unit:      unit,
		Types:     newNamespace(KindType),
		Entities:  newNamespace(KindEntity),
		Locations: newNamespace(KindLocation),
		Sections:  newNamespace(KindSection),
		Choices:   newNamespace(KindChoice),
		Exits:     newNamespace(KindExit),
		Actions:   newNamespace(KindAction),
		Rules:     newNamespace(KindRule),
		Sequences: newNamespace(KindSequence),
		Phases:    newNamespace(KindPhase),
	}
}

// namespaceFor maps a kind to its sub-table.
func (t *Table) namespaceFor(kind Kind) *Namespace {
	switch kind {
	case KindType:
		return t.Types
	case KindEntity:
		return t.Entities
	case KindLocation:
		return t.Locations
	case KindSection:
		return t.Sections
	case KindChoice:
		return t.Choices
	case KindExit:
		return t.Exits
	case KindAction:
		return t.Actions
	case KindRule:
		return t.Rules
	case KindSequence:
		return t.Sequences
	case KindPhase:
		return t.Phases
	default:
		return nil
	}
}

// SubjectType returns the declared type of a resolved condition subject or
// effect target, or nil when it cannot be known statically (the "here"
// binding, an untyped actor, an unresolved reference).
func (t *Table) SubjectType(ref *ast.Ref) *ast.TypeDecl {
	if ref == nil || ref.Res == nil {
		return nil
	}
	res := ref.Res
	switch {
	case res.Binding == ast.BindActor:
		if sym, ok := t.Entities.Lookup(ActorName); ok {
			return t.EntityType(sym.Entity)
		}
		return nil
	case res.Binding == ast.BindLocation:
		return nil
	case res.Kind == string(KindType):
		if sym, ok := t.Types.Lookup(res.ID); ok {
			return sym.Type
		}
		return nil
	case res.Kind == string(KindEntity):
		if sym, ok := t.Entities.Lookup(res.ID); ok {
			return t.EntityType(sym.Entity)
		}
		return nil
	default:
		return nil
	}
}

// EntityType returns the declared type of an entity, or nil for untyped
// entities such as the implicit actor.
func (t *Table) EntityType(e *ast.EntityDecl) *ast.TypeDecl {
	if e == nil || e.Type == nil {
		return nil
	}
	if sym, ok := t.Types.Lookup(e.Type.Raw); ok {
		return sym.Type
	}
	return nil
}

// allNamespaces returns the sub-tables in a fixed order for collision
// reporting.
func (t *Table) allNamespaces() []*Namespace {
	return []*Namespace{
		t.Types, t.Entities, t.Locations, t.Sections, t.Choices,
		t.Exits, t.Actions, t.Rules, t.Sequences, t.Phases,
	}
}
