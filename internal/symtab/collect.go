package symtab

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/depgraph"
	"github.com/vk/fablec/internal/diag"
)

// collect is the first linking pass: register every declaration across all
// files. Harvesting a single file is independent of every other file, so
// files are scanned in parallel; the merge below runs in topological file
// order, which keeps namespace insertion order deterministic.
func collect(ctx context.Context, unit *depgraph.Unit, tab *Table, diags *diag.List) {
	logger := ctxlog.FromContext(ctx)

	harvested := make([][]*Symbol, len(unit.Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range unit.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			harvested[i] = harvestFile(file)
			return nil
		})
	}
	// Harvest cannot fail; the group exists for the parallelism and for
	// context cancellation between files.
	if err := g.Wait(); err != nil {
		logger.Debug("collection pass cancelled", "error", err)
		return
	}

	for _, symbols := range harvested {
		for _, s := range symbols {
			tab.namespaceFor(s.Kind).insert(s)
		}
	}

	collectWorld(unit, tab, diags)
	synthesizeActor(tab)
	reportCollisions(tab, diags)

	logger.Debug("collection pass complete",
		"types", tab.Types.Len(),
		"entities", tab.Entities.Len(),
		"locations", tab.Locations.Len(),
		"sections", tab.Sections.Len(),
	)
}

// harvestFile derives the compiled identifier of every declaration in one
// file. Pure function of the file; safe to run concurrently.
func harvestFile(file *ast.File) []*Symbol {
	var out []*Symbol

	for _, t := range file.Types {
		out = append(out, &Symbol{Kind: KindType, ID: t.Name, Name: t.Name, FileStem: file.Stem, Span: t.Span, Type: t})
	}
	for _, e := range file.Entities {
		out = append(out, &Symbol{Kind: KindEntity, ID: e.Name, Name: e.Name, FileStem: file.Stem, Span: e.Span, Entity: e})
	}
	for _, l := range file.Locations {
		locID := Slug(l.Heading)
		out = append(out, &Symbol{Kind: KindLocation, ID: locID, Name: l.Heading, FileStem: file.Stem, Span: l.Span, Location: l})
		for _, ex := range l.Exits {
			out = append(out, &Symbol{
				Kind: KindExit, ID: locID + "/" + ex.Name, Name: ex.Name,
				FileStem: file.Stem, Span: ex.Span, OwnerID: locID, Exit: ex,
			})
		}
	}
	for _, s := range file.Sections {
		secID := file.Stem + "/" + s.Name
		out = append(out, &Symbol{Kind: KindSection, ID: secID, Name: s.Name, FileStem: file.Stem, Span: s.Span, Section: s})
		out = append(out, harvestChoices(file.Stem, secID, s.Choices)...)
	}
	for _, a := range file.Actions {
		out = append(out, &Symbol{Kind: KindAction, ID: a.Name, Name: a.Name, FileStem: file.Stem, Span: a.Span, Action: a})
	}
	for _, r := range file.Rules {
		out = append(out, &Symbol{Kind: KindRule, ID: r.Name, Name: r.Name, FileStem: file.Stem, Span: r.Span, Rule: r})
	}
	for _, seq := range file.Sequences {
		out = append(out, &Symbol{Kind: KindSequence, ID: seq.Name, Name: seq.Name, FileStem: file.Stem, Span: seq.Span, Sequence: seq})
		for _, p := range seq.Phases {
			out = append(out, &Symbol{
				Kind: KindPhase, ID: seq.Name + "/" + p.Name, Name: p.Name,
				FileStem: file.Stem, Span: p.Span, OwnerID: seq.Name, Phase: p,
			})
		}
	}
	return out
}

// harvestChoices flattens a choice tree. The compiled identifier is always
// "{section-id}/{slug-of-label}" regardless of nesting depth, so two choices
// with the same label anywhere in one section collide.
func harvestChoices(stem, sectionID string, choices []*ast.ChoiceDecl) []*Symbol {
	var out []*Symbol
	// Explicit work stack rather than recursion: nesting depth is
	// author-controlled input.
	type frame struct{ choices []*ast.ChoiceDecl }
	stack := []frame{{choices}}
	for len(stack) > 0 {
		f := stack[0]
		stack = stack[1:]
		for _, c := range f.choices {
			out = append(out, &Symbol{
				Kind: KindChoice, ID: sectionID + "/" + Slug(c.Label), Name: c.Label,
				FileStem: stem, Span: c.Span, OwnerID: sectionID, Choice: c,
			})
			if len(c.Choices) > 0 {
				stack = append(stack, frame{c.Choices})
			}
		}
	}
	return out
}

// collectWorld checks that the entry file carries the single world block.
func collectWorld(unit *depgraph.Unit, tab *Table, diags *diag.List) {
	for _, file := range unit.Files {
		if file.World == nil {
			continue
		}
		if file.Stem != unit.EntryStem {
			diags.Add(diag.CodeDuplicateWorld, posOf(file.World.Span),
				"world block must appear only in the entry file %s", unit.EntryPath)
			continue
		}
		tab.World = &worldMeta{
			Title:   file.World.Title,
			Author:  file.World.Author,
			Version: file.World.Version,
		}
	}
	if tab.World == nil {
		diags.Add(diag.CodeMissingWorld, diag.Pos{File: unit.EntryPath, Line: 1, Column: 1},
			"entry file declares no world block")
	}
}

// synthesizeActor creates the implicit actor entity when no file declares
// one. The synthesized entity lives at the world start location with
// container and mobile capability. An explicit declaration fully replaces
// it; this function simply does nothing in that case.
func synthesizeActor(tab *Table) {
	if _, declared := tab.Entities.Lookup(ActorName); declared {
		return
	}
	entry := entryWorld(tab)
	decl := &ast.EntityDecl{
		Name:         ActorName,
		Implicit:     true,
		Capabilities: append([]string(nil), implicitActorCapabilities...),
	}
	if entry != nil && entry.Start != nil {
		decl.Location = &ast.Ref{Raw: entry.Start.Raw, Span: entry.Start.Span}
	}
	tab.Entities.insert(&Symbol{
		Kind: KindEntity, ID: ActorName, Name: ActorName,
		FileStem: tab.Unit.EntryStem, Entity: decl,
	})
	tab.ImplicitActor = true
}

func entryWorld(tab *Table) *ast.World {
	if f := tab.Unit.ByStem(tab.Unit.EntryStem); f != nil {
		return f.World
	}
	return nil
}

// reportCollisions emits one diagnostic per colliding compiled identifier,
// listing every conflicting declaration site rather than just the first.
func reportCollisions(tab *Table, diags *diag.List) {
	for _, ns := range tab.allNamespaces() {
		for _, sites := range ns.collisions() {
			first := sites[0]
			locs := make([]string, 0, len(sites))
			for _, s := range sites {
				locs = append(locs, fmt.Sprintf("%s:%d", s.Span.File, s.Span.Line))
			}
			diags.Add(diag.CodeDuplicateID, posOf(first.Span),
				"duplicate %s identifier %q declared at %s", ns.kind, first.ID, strings.Join(locs, ", "))
		}
	}
}

func posOf(sp ast.Span) diag.Pos {
	return diag.Pos{File: sp.File, Line: sp.Line, Column: sp.Column}
}
