// Package factext projects a completed symbol table into the relational
// FactSet. It is the only writer of facts.Set values; keeping the builder
// out of package facts is what lets analysis consumers depend on the tuples
// without being able to reach the syntax tree.
package factext

import (
	"context"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/facts"
	"github.com/vk/fablec/internal/symtab"
)

// Build runs the single deterministic extraction pass. Construction is
// transactional: a fact whose resolved annotation points at a symbol missing
// from the table is a compiler defect that fails the whole build, so a
// returned non-nil Set is fully self-describing. References the linker
// already reported as unresolved contribute no facts and no new diagnostics.
func Build(ctx context.Context, tab *symtab.Table) (*facts.Set, diag.List) {
	logger := ctxlog.FromContext(ctx)
	b := &builder{tab: tab, set: &facts.Set{Version: facts.FormatVersion}}

	b.exitEdges()
	b.sections()
	b.rules()

	if b.diags.HasErrors() {
		logger.Error("fact extraction found an inconsistent symbol table; discarding facts",
			"diagnostics", len(b.diags))
		return nil, b.diags
	}
	logger.Debug("fact extraction complete",
		"exit_edges", len(b.set.ExitEdges),
		"section_jumps", len(b.set.SectionJumps),
		"choices", len(b.set.Choices),
		"rules", len(b.set.Rules),
		"reads", len(b.set.Reads),
		"writes", len(b.set.Writes),
	)
	return b.set, b.diags
}

type builder struct {
	tab   *symtab.Table
	set   *facts.Set
	diags diag.List
}

func (b *builder) exitEdges() {
	for _, sym := range b.tab.Exits.All() {
		exit := sym.Exit
		if !exit.To.IsResolved() {
			continue
		}
		if !b.requireLocation(exit.To.Res.ID, sym.Span) {
			continue
		}
		b.set.ExitEdges = append(b.set.ExitEdges, facts.ExitEdge{
			From:    sym.OwnerID,
			To:      exit.To.Res.ID,
			Name:    sym.Name,
			Guarded: exit.When != nil,
			Span:    spanOf(sym.Span),
		})
		site := facts.Site{Kind: facts.SiteExit, ID: sym.ID}
		b.conditionReads(site, exit.When)
	}
}

func (b *builder) sections() {
	for _, sym := range b.tab.Sections.All() {
		if j := sym.Section.Next; j.IsResolved() && j.Res.Kind == string(symtab.KindSection) {
			if b.requireSection(j.Res.ID, sym.Span) {
				b.set.SectionJumps = append(b.set.SectionJumps, facts.SectionJump{
					From: sym.ID,
					To:   j.Res.ID,
					Span: spanOf(j.Span),
				})
			}
		}
	}
	for _, sym := range b.tab.Choices.All() {
		c := sym.Choice
		b.set.Choices = append(b.set.Choices, facts.Choice{
			ID:      sym.ID,
			Section: sym.OwnerID,
			Label:   sym.Name,
			Guarded: c.When != nil,
			Span:    spanOf(sym.Span),
		})
		if j := c.Goto; j.IsResolved() && j.Res.Kind == string(symtab.KindSection) {
			if b.requireSection(j.Res.ID, sym.Span) {
				b.set.SectionJumps = append(b.set.SectionJumps, facts.SectionJump{
					From:   sym.OwnerID,
					To:     j.Res.ID,
					Choice: sym.ID,
					Span:   spanOf(j.Span),
				})
			}
		}
		site := facts.Site{Kind: facts.SiteChoice, ID: sym.ID}
		if c.When != nil {
			for _, cond := range c.When.Conditions() {
				b.conditionReads(site, cond)
			}
		}
		b.effectWrites(site, c.Effects)
	}
}

func (b *builder) rules() {
	for _, sym := range b.tab.Rules.All() {
		rule := sym.Rule
		fact := facts.Rule{
			ID:        sym.ID,
			Selective: rule.Select != nil,
			Span:      spanOf(sym.Span),
		}
		if rule.Phase.IsResolved() {
			fact.Phase = rule.Phase.Res.ID
		}
		site := facts.Site{Kind: facts.SiteRule, ID: sym.ID}
		if rule.Select != nil {
			if rule.Select.FromType.IsResolved() {
				fact.TargetType = rule.Select.FromType.Res.ID
			}
			if rule.Select.Where != nil {
				for _, cond := range rule.Select.Where.Conditions() {
					b.conditionReads(site, cond)
				}
			}
		}
		b.set.Rules = append(b.set.Rules, fact)
		b.effectWrites(site, rule.Effects)
	}
}

// conditionReads records a property-read fact for one condition when the
// subject's declared type is statically known.
func (b *builder) conditionReads(site facts.Site, cond *ast.Condition) {
	if cond == nil {
		return
	}
	t := b.tab.SubjectType(cond.Subject)
	if t == nil || t.Property(cond.Property) == nil {
		return
	}
	b.set.Reads = append(b.set.Reads, facts.PropertyRead{
		Type:     t.Name,
		Property: cond.Property,
		Site:     site,
		Span:     spanOf(cond.Span),
	})
}

// effectWrites records property-write facts for assignment effects.
func (b *builder) effectWrites(site facts.Site, effects []*ast.Effect) {
	for _, eff := range effects {
		if eff.Op != ast.EffectAssign {
			continue
		}
		t := b.tab.SubjectType(eff.Target)
		if t == nil || t.Property(eff.Property) == nil {
			continue
		}
		b.set.Writes = append(b.set.Writes, facts.PropertyWrite{
			Type:     t.Name,
			Property: eff.Property,
			Site:     site,
			Span:     spanOf(eff.Span),
		})
	}
}

// requireLocation and requireSection enforce referential integrity at
// construction time. A resolved annotation naming a missing symbol means the
// linker and the table disagree; that is a defect, not a user error.
func (b *builder) requireLocation(id string, sp ast.Span) bool {
	if _, ok := b.tab.Locations.Lookup(id); ok {
		return true
	}
	b.diags.Add(diag.CodeFactIntegrity, posOf(sp),
		"internal: resolved location %q is missing from the symbol table", id)
	return false
}

func (b *builder) requireSection(id string, sp ast.Span) bool {
	if _, ok := b.tab.Sections.Lookup(id); ok {
		return true
	}
	b.diags.Add(diag.CodeFactIntegrity, posOf(sp),
		"internal: resolved section %q is missing from the symbol table", id)
	return false
}

func spanOf(sp ast.Span) facts.Span {
	return facts.Span{File: sp.File, Line: sp.Line, Column: sp.Column}
}

func posOf(sp ast.Span) diag.Pos {
	return diag.Pos{File: sp.File, Line: sp.Line, Column: sp.Column}
}
