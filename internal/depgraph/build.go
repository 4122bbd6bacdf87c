package depgraph

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/diag"
)

// Source provides per-file syntax trees. All file I/O sits behind this
// boundary; the graph builder itself never touches the filesystem.
type Source interface {
	Load(ctx context.Context, path string) (*ast.File, diag.List, error)
}

// Resource-exhaustion guards, not correctness requirements.
const (
	MaxDepth = 64
	MaxFiles = 512
)

// Unit is a fully built compilation unit: every reachable file in
// topological order (dependencies first, alphabetical tie-break among
// unrelated files). This total order is load-bearing for deterministic
// output.
type Unit struct {
	EntryPath string
	EntryStem string
	Files     []*ast.File

	byStem  map[string]*ast.File
	imports map[string][]string // stem -> directly imported stems
}

// ByStem returns the file with the given stem, or nil.
func (u *Unit) ByStem(stem string) *ast.File {
	return u.byStem[stem]
}

// DirectImports returns the stems a file directly imports. Visibility is
// exactly this set plus the file itself; imports are never transitive.
func (u *Unit) DirectImports(stem string) []string {
	return u.imports[stem]
}

// Visible reports whether a declaration in target's file is visible from
// the file with stem from.
func (u *Unit) Visible(from, target string) bool {
	if from == target {
		return true
	}
	for _, s := range u.imports[from] {
		if s == target {
			return true
		}
	}
	return false
}

type builder struct {
	src     Source
	diags   diag.List
	loaded  map[string]*ast.File // canonical path -> tree, nil while in progress
	skipped map[string]bool      // rejected paths; never reload, never re-report
	stems   map[string]string    // stem -> first canonical path
	unit    *Unit
	stack   []string // DFS path stack for cycle reporting
}

// Build loads the entry file and every transitively imported file, checks
// the graph invariants and returns the unit in topological order. The unit
// may be partial when diagnostics contain errors.
func Build(ctx context.Context, entry string, src Source) (*Unit, diag.List) {
	logger := ctxlog.FromContext(ctx)

	b := &builder{
		src:     src,
		loaded:  make(map[string]*ast.File),
		skipped: make(map[string]bool),
		stems:   make(map[string]string),
		unit: &Unit{
			EntryPath: entry,
			byStem:    make(map[string]*ast.File),
			imports:   make(map[string][]string),
		},
	}
	b.walk(ctx, filepath.Clean(entry), diag.Pos{File: entry}, 0)

	if f := b.loaded[filepath.Clean(entry)]; f != nil {
		b.unit.EntryStem = f.Stem
	}
	logger.Debug("dependency graph built",
		"files", len(b.unit.Files),
		"diagnostics", len(b.diags),
	)
	return b.unit, b.diags
}

// walk is the depth-first traversal. Files append to the unit in post-order,
// which places every dependency before its importer.
func (b *builder) walk(ctx context.Context, path string, at diag.Pos, depth int) {
	if depth > MaxDepth {
		b.diags.Add(diag.CodeDepthExceeded, at, "import depth exceeds limit of %d", MaxDepth)
		return
	}
	if f, seen := b.loaded[path]; seen {
		if f == nil {
			b.reportCycle(path, at)
		}
		return
	}
	if b.skipped[path] {
		return
	}
	if len(b.loaded) >= MaxFiles {
		b.diags.Add(diag.CodeFileCountExceeded, at, "compilation unit exceeds limit of %d files", MaxFiles)
		return
	}

	file, fileDiags, err := b.src.Load(ctx, path)
	b.diags.Extend(fileDiags)
	if err != nil {
		b.diags.Add(diag.CodeImportUnreadable, at, "cannot load %s: %v", path, err)
		return
	}
	if file == nil {
		return
	}

	if first, clash := b.stems[file.Stem]; clash && first != path {
		b.diags.Add(diag.CodeStemCollision, diag.Pos{File: path, Line: 1, Column: 1},
			"file stem %q collides with %s; stems are namespace keys and must be unique", file.Stem, first)
		b.skipped[path] = true // later imports of this path stay silent
		return
	}
	b.stems[file.Stem] = path

	b.loaded[path] = nil // in progress; a revisit through here is a cycle
	b.stack = append(b.stack, path)

	for _, imp := range sortedImports(path, file.Imports) {
		b.walk(ctx, imp.resolved, posOf(imp.decl.Span), depth+1)
		if child := b.loaded[imp.resolved]; child != nil {
			b.unit.imports[file.Stem] = append(b.unit.imports[file.Stem], child.Stem)
		}
	}

	b.stack = b.stack[:len(b.stack)-1]
	b.loaded[path] = file
	b.unit.Files = append(b.unit.Files, file)
	b.unit.byStem[file.Stem] = file
}

// reportCycle emits the complete cycle path, e.g. a -> b -> c -> a. The
// repeated edge alone would not tell the author which imports to break.
func (b *builder) reportCycle(back string, at diag.Pos) {
	start := 0
	for i, p := range b.stack {
		if p == back {
			start = i
			break
		}
	}
	names := make([]string, 0, len(b.stack)-start+1)
	for _, p := range b.stack[start:] {
		names = append(names, filepath.Base(p))
	}
	names = append(names, filepath.Base(back))
	b.diags.Add(diag.CodeImportCycle, at, "import cycle: %s", strings.Join(names, " -> "))
}

type resolvedImport struct {
	decl     ast.Import
	resolved string
}

// sortedImports resolves import paths relative to the importing file and
// orders them alphabetically. The sorted visit order is what gives files
// with no dependency relation their alphabetical tie-break.
func sortedImports(importer string, imports []ast.Import) []resolvedImport {
	dir := filepath.Dir(importer)
	out := make([]resolvedImport, 0, len(imports))
	for _, imp := range imports {
		out = append(out, resolvedImport{
			decl:     imp,
			resolved: filepath.Clean(filepath.Join(dir, imp.Path)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].resolved < out[j].resolved })
	return out
}

func posOf(sp ast.Span) diag.Pos {
	return diag.Pos{File: sp.File, Line: sp.Line, Column: sp.Column}
}
