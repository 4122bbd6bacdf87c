package symtab

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/depgraph"
	"github.com/vk/fablec/internal/diag"
)

// Link runs both linking passes over a built unit and returns the completed
// symbol table. Diagnostics may contain errors; the table is still complete
// for everything that did resolve, so downstream analysis keeps working
// (maximal diagnostics per run).
func Link(ctx context.Context, unit *depgraph.Unit) (*Table, diag.List) {
	logger := ctxlog.FromContext(ctx)
	tab := newTable(unit)
	var diags diag.List

	collect(ctx, unit, tab, &diags)
	newResolver(tab, &diags).run()

	logger.Debug("linking complete", "diagnostics", len(diags))
	return tab, diags
}

// reserved binding names, matched here once and nowhere else.
const (
	bindActorName    = "actor"
	bindLocationName = "here"
)

type resolver struct {
	tab   *Table
	diags *diag.List
}

func newResolver(tab *Table, diags *diag.List) *resolver {
	return &resolver{tab: tab, diags: diags}
}

// run is the second linking pass. It iterates namespaces in their insertion
// order, so resolution diagnostics come out in a deterministic order too.
func (r *resolver) run() {
	r.resolveWorld()

	for _, sym := range r.tab.Entities.All() {
		e := sym.Entity
		r.resolveRef(e.Type, KindType, sym.FileStem)
		r.resolveRef(e.Location, KindLocation, sym.FileStem)
	}
	for _, sym := range r.tab.Exits.All() {
		r.resolveRef(sym.Exit.To, KindLocation, sym.FileStem)
		r.resolveCondition(sym.Exit.When, sym.FileStem, false)
	}
	for _, sym := range r.tab.Sections.All() {
		s := sym.Section
		r.resolveRef(s.Location, KindLocation, sym.FileStem)
		r.resolveJump(s.Next, sym.FileStem, r.sectionAnchor(sym))
	}
	for _, sym := range r.tab.Choices.All() {
		c := sym.Choice
		anchor := ""
		if owner, ok := r.tab.Sections.Lookup(sym.OwnerID); ok {
			anchor = r.sectionAnchor(owner)
		}
		r.resolveConditionSet(c.When, sym.FileStem, false)
		r.resolveEffects(c.Effects, sym.FileStem, false)
		r.resolveJump(c.Goto, sym.FileStem, anchor)
	}
	for _, sym := range r.tab.Actions.All() {
		a := sym.Action
		r.resolveRef(a.Entity, KindEntity, sym.FileStem)
		r.resolveRef(a.EntityType, KindType, sym.FileStem)
		r.resolveConditionSet(a.When, sym.FileStem, false)
		r.resolveEffects(a.Effects, sym.FileStem, false)
	}
	for _, sym := range r.tab.Rules.All() {
		rl := sym.Rule
		r.resolvePhaseRef(rl.Phase, sym.FileStem)
		if rl.Select != nil {
			r.resolveRef(rl.Select.FromType, KindType, sym.FileStem)
			r.resolveConditionSet(rl.Select.Where, sym.FileStem, true)
		}
		r.resolveEffects(rl.Effects, sym.FileStem, true)
	}
	for _, sym := range r.tab.Phases.All() {
		r.resolveCondition(sym.Phase.Advance, sym.FileStem, false)
	}
}

// resolveWorld resolves the start location and optional entry section from
// the entry file's world block.
func (r *resolver) resolveWorld() {
	w := entryWorld(r.tab)
	if w == nil {
		return
	}
	stem := r.tab.Unit.EntryStem
	if r.resolveRef(w.Start, KindLocation, stem) {
		r.tab.StartID = w.Start.Res.ID
	}
	if w.Entry != nil {
		r.resolveSectionName(w.Entry, stem)
		if w.Entry.Res != nil {
			r.tab.EntryID = w.Entry.Res.ID
		}
	}
	// The implicit actor borrowed the start reference; share its resolution.
	if r.tab.ImplicitActor {
		if sym, ok := r.tab.Entities.Lookup(ActorName); ok && sym.Entity.Location != nil && w.Start != nil {
			sym.Entity.Location.Res = w.Start.Res
		}
	}
}

// resolveRef resolves a plain by-name reference into one namespace. Returns
// true when resolution succeeded; on failure the ref stays annotated as
// unresolved and a diagnostic is recorded.
func (r *resolver) resolveRef(ref *ast.Ref, kind Kind, fromStem string) bool {
	if ref == nil {
		return false
	}
	id := ref.Raw
	if kind == KindLocation {
		// Locations may be referenced by heading or by slug; both
		// canonicalize to the same compiled identifier.
		id = Slug(ref.Raw)
	}
	sym, ok := r.tab.namespaceFor(kind).Lookup(id)
	if !ok {
		r.diags.Add(diag.CodeUnresolved, posOf(ref.Span), "unknown %s %q", kind, ref.Raw)
		return false
	}
	if !r.visible(fromStem, sym) {
		r.reportNotImported(ref, kind, sym)
		return false
	}
	ref.Res = &ast.Resolved{Kind: string(kind), ID: id}
	return true
}

// visible applies the strict, non-transitive import rule.
func (r *resolver) visible(fromStem string, sym *Symbol) bool {
	return r.tab.Unit.Visible(fromStem, sym.FileStem)
}

func (r *resolver) reportNotImported(ref *ast.Ref, kind Kind, sym *Symbol) {
	suggestion := ""
	if f := r.tab.Unit.ByStem(sym.FileStem); f != nil {
		suggestion = fmt.Sprintf("add %q to imports", f.Path)
	}
	r.diags.AddWithSuggestion(diag.CodeNotImported, posOf(ref.Span), suggestion,
		"%s %q is declared in %s, which this file does not import", kind, ref.Raw, sym.FileStem)
}

// resolveSubject resolves a condition subject or effect target: one of the
// two reserved bindings, a type (only inside rule/select scope), or an
// entity. Binding resolution happens exactly here; every later phase reads
// the discriminator off the annotation instead of matching strings.
func (r *resolver) resolveSubject(ref *ast.Ref, fromStem string, typeScope bool) {
	if ref == nil {
		return
	}
	switch ref.Raw {
	case bindActorName:
		ref.Res = &ast.Resolved{Binding: ast.BindActor}
		return
	case bindLocationName:
		ref.Res = &ast.Resolved{Binding: ast.BindLocation}
		return
	}
	if typeScope {
		if _, ok := r.tab.Types.Lookup(ref.Raw); ok {
			ref.Res = &ast.Resolved{Kind: string(KindType), ID: ref.Raw}
			return
		}
	}
	r.resolveRef(ref, KindEntity, fromStem)
}

func (r *resolver) resolveConditionSet(cs *ast.ConditionSet, fromStem string, typeScope bool) {
	if cs == nil {
		return
	}
	for _, c := range cs.Conditions() {
		r.resolveCondition(c, fromStem, typeScope)
	}
}

// resolveCondition resolves the subject and validates the property access
// against the subject's declared type.
func (r *resolver) resolveCondition(c *ast.Condition, fromStem string, typeScope bool) {
	if c == nil {
		return
	}
	r.resolveSubject(c.Subject, fromStem, typeScope)
	r.checkProperty(c.Subject, c.Property, c.Span)
}

// checkProperty verifies that the subject's declared type has the named
// property. Subjects with no statically known type (the "here" binding, an
// untyped actor) are left to the runtime.
func (r *resolver) checkProperty(subject *ast.Ref, property string, sp ast.Span) {
	t := r.tab.SubjectType(subject)
	if t == nil {
		return
	}
	if t.Property(property) == nil {
		r.diags.Add(diag.CodeUnknownProperty, posOf(sp),
			"type %q declares no property %q", t.Name, property)
	}
}

// resolveEffects resolves the refs inside each structured effect and checks
// assigned properties against the target's type.
func (r *resolver) resolveEffects(effects []*ast.Effect, fromStem string, typeScope bool) {
	for _, eff := range effects {
		switch eff.Op {
		case ast.EffectAssign:
			r.resolveSubject(eff.Target, fromStem, typeScope)
			r.checkProperty(eff.Target, eff.Property, eff.Span)
		case ast.EffectRelocate:
			r.resolveSubject(eff.Target, fromStem, typeScope)
			r.resolveRef(eff.To, KindLocation, fromStem)
		case ast.EffectUnhide, ast.EffectRemove:
			r.resolveSubject(eff.Target, fromStem, typeScope)
		case ast.EffectCreate:
			r.resolveRef(eff.TypeRef, KindType, fromStem)
			r.resolveRef(eff.To, KindLocation, fromStem)
		}
	}
}

// resolvePhaseRef accepts either a full "{sequence}/{phase}" identifier or a
// bare phase name when that name is unique across sequences.
func (r *resolver) resolvePhaseRef(ref *ast.Ref, fromStem string) {
	if ref == nil {
		return
	}
	if sym, ok := r.tab.Phases.Lookup(ref.Raw); ok {
		if r.visible(fromStem, sym) {
			ref.Res = &ast.Resolved{Kind: string(KindPhase), ID: ref.Raw}
		} else {
			r.reportNotImported(ref, KindPhase, sym)
		}
		return
	}
	var matches []*Symbol
	for _, sym := range r.tab.Phases.All() {
		if sym.Name == ref.Raw && r.visible(fromStem, sym) {
			matches = append(matches, sym)
		}
	}
	switch len(matches) {
	case 0:
		r.diags.Add(diag.CodeUnresolved, posOf(ref.Span), "unknown phase %q", ref.Raw)
	case 1:
		ref.Res = &ast.Resolved{Kind: string(KindPhase), ID: matches[0].ID}
	default:
		r.diags.AddWithSuggestion(diag.CodeAmbiguousReference, posOf(ref.Span),
			fmt.Sprintf("use %q", matches[0].ID),
			"phase name %q appears in %d sequences", ref.Raw, len(matches))
	}
}

// resolveSectionName resolves a section reference. A fully qualified
// "{stem}/{name}" identifier resolves directly, so the ambiguity
// suggestions are themselves valid input; a bare name searches the
// referencing file's own namespace first, then its direct imports.
func (r *resolver) resolveSectionName(ref *ast.Ref, fromStem string) {
	if sym, ok := r.tab.Sections.Lookup(ref.Raw); ok {
		if r.visible(fromStem, sym) {
			ref.Res = &ast.Resolved{Kind: string(KindSection), ID: ref.Raw}
		} else {
			r.reportNotImported(ref, KindSection, sym)
		}
		return
	}
	matches := r.sectionMatches(ref.Raw, fromStem)
	switch len(matches) {
	case 0:
		r.reportUnknownSection(ref.Raw, ref.Span, fromStem)
	case 1:
		ref.Res = &ast.Resolved{Kind: string(KindSection), ID: matches[0]}
	default:
		r.diags.AddWithSuggestion(diag.CodeAmbiguousReference, posOf(ref.Span),
			fmt.Sprintf("use %q", matches[0]),
			"section name %q is declared by %d imported files", ref.Raw, len(matches))
	}
}

// sectionMatches finds the visible sections a bare name could mean. A match
// in the file's own namespace shadows imported ones; multiple imported
// matches are ambiguous and reported by the caller.
func (r *resolver) sectionMatches(name, fromStem string) []string {
	if _, ok := r.tab.Sections.Lookup(fromStem + "/" + name); ok {
		return []string{fromStem + "/" + name}
	}
	imports := append([]string(nil), r.tab.Unit.DirectImports(fromStem)...)
	sort.Strings(imports)
	var matches []string
	for _, imp := range imports {
		if _, ok := r.tab.Sections.Lookup(imp + "/" + name); ok {
			matches = append(matches, imp+"/"+name)
		}
	}
	return matches
}

func (r *resolver) reportUnknownSection(name string, sp ast.Span, fromStem string) {
	// Point at a non-imported declaration when one exists; it is nearly
	// always the fix the author wants.
	for _, sym := range r.tab.Sections.All() {
		if sym.Name == name {
			if f := r.tab.Unit.ByStem(sym.FileStem); f != nil {
				r.diags.AddWithSuggestion(diag.CodeNotImported, posOf(sp),
					fmt.Sprintf("add %q to imports", f.Path),
					"section %q is declared in %s, which this file does not import", name, sym.FileStem)
				return
			}
		}
	}
	r.diags.Add(diag.CodeUnresolved, posOf(sp), "unknown section %q", name)
}

// resolveJump resolves a jump target. Bare names try sections first, then
// the exits of the anchored location; a name matching both requires the
// explicit section: or exit: form.
func (r *resolver) resolveJump(j *ast.JumpRef, fromStem, anchorLoc string) {
	if j == nil {
		return
	}
	switch j.Kind {
	case ast.JumpSection:
		ref := &ast.Ref{Raw: j.Raw, Span: j.Span}
		r.resolveSectionName(ref, fromStem)
		j.Res = ref.Res
	case ast.JumpExit:
		j.Res = r.exitTarget(j, anchorLoc)
	case ast.JumpAuto:
		sections := r.sectionMatches(j.Raw, fromStem)
		exitID, hasExit := r.lookupExit(j.Raw, anchorLoc)
		switch {
		case len(sections) > 0 && hasExit:
			r.diags.AddWithSuggestion(diag.CodeAmbiguousJump, posOf(j.Span),
				fmt.Sprintf("use \"section:%s\" or \"exit:%s\"", j.Raw, j.Raw),
				"%q names both a section and an exit; disambiguate explicitly", j.Raw)
		case len(sections) > 1:
			r.diags.AddWithSuggestion(diag.CodeAmbiguousReference, posOf(j.Span),
				fmt.Sprintf("use %q", "section:"+sections[0]),
				"section name %q is declared by %d imported files", j.Raw, len(sections))
		case len(sections) == 1:
			j.Res = &ast.Resolved{Kind: string(KindSection), ID: sections[0]}
		case hasExit:
			j.Res = &ast.Resolved{Kind: string(KindExit), ID: exitID}
		default:
			r.reportUnknownSection(j.Raw, j.Span, fromStem)
		}
	}
}

func (r *resolver) exitTarget(j *ast.JumpRef, anchorLoc string) *ast.Resolved {
	id, ok := r.lookupExit(j.Raw, anchorLoc)
	if !ok {
		if anchorLoc == "" {
			r.diags.Add(diag.CodeUnresolved, posOf(j.Span),
				"exit jump %q requires the section to declare a location", j.Raw)
		} else {
			r.diags.Add(diag.CodeUnresolved, posOf(j.Span),
				"location %q declares no exit %q", anchorLoc, j.Raw)
		}
		return nil
	}
	return &ast.Resolved{Kind: string(KindExit), ID: id}
}

func (r *resolver) lookupExit(name, anchorLoc string) (string, bool) {
	if anchorLoc == "" {
		return "", false
	}
	id := anchorLoc + "/" + name
	_, ok := r.tab.Exits.Lookup(id)
	return id, ok
}

// sectionAnchor returns the compiled identifier of the location a section is
// anchored to, or "" when it has none.
func (r *resolver) sectionAnchor(sym *Symbol) string {
	loc := sym.Section.Location
	if loc.IsResolved() {
		return loc.Res.ID
	}
	return ""
}
