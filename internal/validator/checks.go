package validator

import (
	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/facts"
)

// checkReachability verifies every location can be reached from the start
// location by traversing exit edges, guards deliberately ignored: a guarded
// exit may open at runtime, while a location with no inbound path at all is
// almost certainly a mistake.
func (v *validator) checkReachability() {
	if v.set == nil || v.tab.StartID == "" {
		return
	}
	adjacent := make(map[string][]string)
	for _, e := range v.set.ExitEdges {
		adjacent[e.From] = append(adjacent[e.From], e.To)
	}
	reached := map[string]bool{v.tab.StartID: true}
	queue := []string{v.tab.StartID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[cur] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, sym := range v.tab.Locations.All() {
		if !reached[sym.ID] {
			v.diags.Add(diag.CodeUnreachable, posOf(sym.Span),
				"location %q cannot be reached from the start location %q", sym.ID, v.tab.StartID)
		}
	}
}

// checkDeadEnds flags dialogue sections that can only ever terminate: no
// choice and no explicit continuation.
func (v *validator) checkDeadEnds() {
	for _, sym := range v.tab.Sections.All() {
		s := sym.Section
		if len(s.Choices) == 0 && s.Next == nil {
			v.diags.Add(diag.CodeDeadEndSection, posOf(sym.Span),
				"section %q has no choices and no continuation; dialogue always ends here", sym.ID)
		}
	}
}

// checkSectionExitShadow flags a section whose bare name collides with an
// exit on its own anchor location. Bare jumps near it would need the
// explicit section:/exit: forms, which is worth surfacing even before
// anyone writes such a jump.
func (v *validator) checkSectionExitShadow() {
	for _, sym := range v.tab.Sections.All() {
		loc := sym.Section.Location
		if !loc.IsResolved() {
			continue
		}
		exitID := loc.Res.ID + "/" + sym.Name
		if _, ok := v.tab.Exits.Lookup(exitID); ok {
			v.diags.AddWithSuggestion(diag.CodeSectionExitShadow, posOf(sym.Span),
				"use the explicit \"section:\" and \"exit:\" jump forms",
				"section name %q shadows exit %q", sym.Name, exitID)
		}
	}
}

// checkReadNeverWritten reports properties that some site reads but nothing
// ever writes. By construction the reported set is exactly the index's
// ReadNeverWritten difference.
func (v *validator) checkReadNeverWritten() {
	if v.idx == nil {
		return
	}
	for _, key := range v.idx.ReadNeverWritten() {
		v.diags.Add(diag.CodeReadNeverWritten, v.firstReadPos(key),
			"property %s.%s is read but never written; its value can never change", key.Type, key.Property)
	}
}

// checkWrittenNeverRead is the inverse: writes nothing observes.
func (v *validator) checkWrittenNeverRead() {
	if v.idx == nil {
		return
	}
	for _, key := range v.idx.WrittenNeverRead() {
		v.diags.Add(diag.CodeWrittenNeverRead, v.firstWritePos(key),
			"property %s.%s is written but never read", key.Type, key.Property)
	}
}

// checkOrphanSections flags sections nothing ever jumps into. The declared
// entry section is exempt; it is entered from outside the dialogue graph.
func (v *validator) checkOrphanSections() {
	if v.set == nil {
		return
	}
	entered := make(map[string]bool)
	for _, j := range v.set.SectionJumps {
		entered[j.To] = true
	}
	for _, sym := range v.tab.Sections.All() {
		if sym.ID == v.tab.EntryID || entered[sym.ID] {
			continue
		}
		v.diags.Add(diag.CodeOrphanSection, posOf(sym.Span),
			"section %q is never jumped to", sym.ID)
	}
}

// checkStuckPhases flags a phase whose advance condition reads a property
// no site ever writes: the phase can never advance.
func (v *validator) checkStuckPhases() {
	if v.idx == nil {
		return
	}
	for _, sym := range v.tab.Phases.All() {
		c := sym.Phase.Advance
		if c == nil {
			continue
		}
		t := v.tab.SubjectType(c.Subject)
		if t == nil || t.Property(c.Property) == nil {
			continue
		}
		if len(v.idx.Writes(t.Name, c.Property)) == 0 {
			v.diags.Add(diag.CodeStuckPhase, posOf(sym.Span),
				"phase %q advances on %s.%s, which nothing ever writes", sym.ID, t.Name, c.Property)
		}
	}
}

// checkEmptySelects flags a rule whose select block targets a type with no
// entities at all: zero candidates can ever match, so the rule never fires
// (and, per the selection contract, never consumes randomness). Types that
// are only ever populated by create effects count as populated; whether the
// create has run by the time the rule fires is a runtime question.
func (v *validator) checkEmptySelects() {
	counts := make(map[string]int)
	for _, sym := range v.tab.Entities.All() {
		if t := v.tab.EntityType(sym.Entity); t != nil {
			counts[t.Name]++
		}
	}
	v.eachEffect(func(eff *ast.Effect, _ site) {
		if eff.Op == ast.EffectCreate && eff.TypeRef.IsResolved() {
			counts[eff.TypeRef.Res.ID]++
		}
	})
	for _, sym := range v.tab.Rules.All() {
		sel := sym.Rule.Select
		if sel == nil || sel.FromType == nil || !sel.FromType.IsResolved() {
			continue
		}
		if counts[sel.FromType.Res.ID] == 0 {
			v.diags.Add(diag.CodeEmptySelect, posOf(sym.Span),
				"rule %q selects from type %q, but no entity of that type is ever declared or created", sym.ID, sel.FromType.Res.ID)
		}
	}
}

func (v *validator) firstReadPos(key facts.PropertyKey) diag.Pos {
	for _, r := range v.set.Reads {
		if r.Type == key.Type && r.Property == key.Property {
			return diag.Pos{File: r.Span.File, Line: r.Span.Line, Column: r.Span.Column}
		}
	}
	return diag.Pos{}
}

func (v *validator) firstWritePos(key facts.PropertyKey) diag.Pos {
	for _, w := range v.set.Writes {
		if w.Type == key.Type && w.Property == key.Property {
			return diag.Pos{File: w.Span.File, Line: w.Span.Line, Column: w.Span.Column}
		}
	}
	return diag.Pos{}
}
