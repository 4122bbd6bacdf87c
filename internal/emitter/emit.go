package emitter

import (
	"context"
	"log/slog"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/document"
	"github.com/vk/fablec/internal/symtab"
)

// Emit lowers the table into a document. The returned diagnostics are
// internal-defect reports only; with a clean table the list is empty.
func Emit(ctx context.Context, tab *symtab.Table) (*document.World, diag.List) {
	e := &emitter{tab: tab, logger: ctxlog.FromContext(ctx)}

	w := &document.World{
		Meta: document.Meta{
			Format:  document.FormatVersion,
			Title:   tab.Title(),
			Author:  tab.Author(),
			Version: tab.Version(),
			Start:   tab.StartID,
			Entry:   tab.EntryID,
		},
	}
	e.emitTypes(w)
	e.emitEntities(w)
	e.emitLocations(w)
	e.emitSections(w)
	e.emitActions(w)
	e.emitRules(w)
	e.emitSequences(w)

	e.logger.Debug("document emitted",
		"types", len(w.Types),
		"entities", len(w.Entities),
		"locations", len(w.Locations),
		"sections", len(w.Sections),
	)
	return w, e.diags
}

type emitter struct {
	tab    *symtab.Table
	logger *slog.Logger
	diags  diag.List
}

func (e *emitter) emitTypes(w *document.World) {
	for _, sym := range e.tab.Types.All() {
		t := sym.Type
		out := document.Type{Name: t.Name, Capabilities: t.Capabilities}
		for _, p := range t.Properties {
			prop := document.Property{
				Name: p.Name,
				Type: p.Type,
				Min:  p.Min,
				Max:  p.Max,
			}
			if p.Default != cty.NilVal {
				prop.Default = literalValue(p.Default)
			}
			for _, v := range p.Values {
				prop.Values = append(prop.Values, literalValue(v))
			}
			out.Properties = append(out.Properties, prop)
		}
		w.Types = append(w.Types, out)
	}
}

func (e *emitter) emitEntities(w *document.World) {
	for _, sym := range e.tab.Entities.All() {
		ent := sym.Entity
		out := document.Entity{
			Name:         sym.ID,
			Hidden:       ent.Hidden,
			Capabilities: ent.Capabilities,
		}
		if ent.Type != nil {
			id, ok := e.resolvedID(ent.Type, "entity type")
			if !ok {
				continue
			}
			out.Type = id
		}
		if ent.Location != nil {
			id, ok := e.resolvedID(ent.Location, "entity location")
			if !ok {
				continue
			}
			out.Location = id
		}
		for _, pv := range ent.Props {
			out.Properties = append(out.Properties, document.NamedValue{
				Name:  pv.Name,
				Value: literalValue(pv.Value),
			})
		}
		w.Entities = append(w.Entities, out)
	}
}

func (e *emitter) emitLocations(w *document.World) {
	for _, sym := range e.tab.Locations.All() {
		loc := sym.Location
		out := document.Location{
			ID:          sym.ID,
			Heading:     loc.Heading,
			Description: loc.Description,
		}
		for _, ex := range loc.Exits {
			to, ok := e.resolvedID(ex.To, "exit target")
			if !ok {
				continue
			}
			exit := document.Exit{Name: ex.Name, To: to}
			if ex.When != nil {
				exit.When = e.renderCondition(ex.When, false)
			}
			out.Exits = append(out.Exits, exit)
		}
		w.Locations = append(w.Locations, out)
	}
}

func (e *emitter) emitSections(w *document.World) {
	for _, sym := range e.tab.Sections.All() {
		s := sym.Section
		out := document.Section{
			ID:   sym.ID,
			Text: s.Text,
		}
		if s.Location != nil {
			if id, ok := e.resolvedID(s.Location, "section anchor"); ok {
				out.Location = id
			}
		}
		out.Choices = e.emitChoices(sym.ID, s.Choices)
		out.Next = e.emitJump(s.Next)
		w.Sections = append(w.Sections, out)
	}
}

func (e *emitter) emitChoices(sectionID string, choices []*ast.ChoiceDecl) []document.Choice {
	var out []document.Choice
	for _, c := range choices {
		dc := document.Choice{
			ID:      sectionID + "/" + symtab.Slug(c.Label),
			Label:   c.Label,
			When:    e.renderConditionSet(c.When),
			Effects: e.emitEffects(c.Effects),
			Goto:    e.emitJump(c.Goto),
			Choices: e.emitChoices(sectionID, c.Choices),
		}
		out = append(out, dc)
	}
	return out
}

func (e *emitter) emitJump(j *ast.JumpRef) *document.Jump {
	if j == nil {
		return nil
	}
	if j.Res == nil {
		e.reportUnresolved(j.Raw, "jump target", j.Span)
		return nil
	}
	return &document.Jump{Kind: j.Res.Kind, To: j.Res.ID}
}

func (e *emitter) emitActions(w *document.World) {
	for _, sym := range e.tab.Actions.All() {
		a := sym.Action
		out := document.Action{
			ID:      sym.ID,
			When:    e.renderConditionSet(a.When),
			Effects: e.emitEffects(a.Effects),
		}
		if a.Entity != nil {
			if id, ok := e.resolvedID(a.Entity, "action target"); ok {
				out.Entity = id
			}
		}
		if a.EntityType != nil {
			if id, ok := e.resolvedID(a.EntityType, "action target type"); ok {
				out.EntityType = id
			}
		}
		w.Actions = append(w.Actions, out)
	}
}

func (e *emitter) emitRules(w *document.World) {
	for _, sym := range e.tab.Rules.All() {
		r := sym.Rule
		out := document.Rule{
			ID:      sym.ID,
			Effects: e.emitEffects(r.Effects),
		}
		if r.Phase != nil {
			if id, ok := e.resolvedID(r.Phase, "rule phase"); ok {
				out.Phase = id
			}
		}
		if r.Select != nil {
			if from, ok := e.resolvedID(r.Select.FromType, "select type"); ok {
				out.Select = &document.Select{
					FromType: from,
					Where:    e.renderConditionSet(r.Select.Where),
				}
			}
		}
		w.Rules = append(w.Rules, out)
	}
}

func (e *emitter) emitSequences(w *document.World) {
	for _, sym := range e.tab.Sequences.All() {
		seq := sym.Sequence
		out := document.Sequence{ID: sym.ID}
		for _, p := range seq.Phases {
			phase := document.Phase{
				ID:   sym.ID + "/" + p.Name,
				Name: p.Name,
			}
			if p.Advance != nil {
				phase.Advance = e.renderCondition(p.Advance, true)
			}
			out.Phases = append(out.Phases, phase)
		}
		w.Sequences = append(w.Sequences, out)
	}
}

func (e *emitter) emitEffects(effects []*ast.Effect) []document.Effect {
	var out []document.Effect
	for _, eff := range effects {
		de := document.Effect{Op: eff.Op.String()}
		if eff.Target != nil {
			text, ok := e.refText(eff.Target, "effect target")
			if !ok {
				continue
			}
			de.Target = text
		}
		switch eff.Op {
		case ast.EffectAssign:
			de.Property = eff.Property
			if eff.Expr != "" {
				de.Expr = eff.Expr
			} else {
				de.Value = literalValue(eff.Value)
			}
		case ast.EffectRelocate:
			to, ok := e.refText(eff.To, "relocation target")
			if !ok {
				continue
			}
			de.To = to
		case ast.EffectCreate:
			typeID, ok := e.resolvedID(eff.TypeRef, "created entity type")
			if !ok {
				continue
			}
			de.Type = typeID
			de.Name = eff.Name
			if eff.To != nil {
				if to, ok := e.refText(eff.To, "creation location"); ok {
					de.To = to
				}
			}
		}
		out = append(out, de)
	}
	return out
}

// resolvedID returns the compiled identifier behind a reference, reporting
// a defect when the annotation is missing.
func (e *emitter) resolvedID(ref *ast.Ref, what string) (string, bool) {
	if ref == nil || ref.Res == nil {
		raw := ""
		sp := ast.Span{}
		if ref != nil {
			raw, sp = ref.Raw, ref.Span
		}
		e.reportUnresolved(raw, what, sp)
		return "", false
	}
	return ref.Res.ID, true
}

func (e *emitter) reportUnresolved(raw, what string, sp ast.Span) {
	e.logger.Error("unresolved reference survived to emission",
		"ref", raw,
		"context", what,
		"file", sp.File,
		"line", sp.Line,
	)
	e.diags.Add(diag.CodeInternalUnresolved, diag.Pos{File: sp.File, Line: sp.Line, Column: sp.Column},
		"internal: %s %q reached emission unresolved; construct skipped", what, raw)
}
