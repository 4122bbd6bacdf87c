package hcladapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/diag"
)

// Ext is the world source file extension.
const Ext = ".fable.hcl"

// Loader parses world source files from disk. It holds no state between
// calls, so one Loader can serve repeated compiles of edited sources.
type Loader struct{}

// NewLoader creates a new world source loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a single source file. An unreadable file is an
// environmental error; malformed content is reported through diagnostics and
// yields a partial (possibly empty) tree.
func (l *Loader) Load(ctx context.Context, path string) (*ast.File, diag.List, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("parsing source file", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return l.Parse(ctx, path, src)
}

// Parse decodes in-memory source. Exposed separately so tests and editors
// can compile unsaved buffers. Each call gets a fresh hclparse.Parser:
// the parser caches by filename and would otherwise hand back the stale
// tree when the same path is re-parsed with new content.
func (l *Loader) Parse(ctx context.Context, path string, src []byte) (*ast.File, diag.List, error) {
	var diags diag.List

	hclFile, hclDiags := hclparse.NewParser().ParseHCL(src, path)
	appendHCLDiags(&diags, hclDiags)
	if hclFile == nil || hclFile.Body == nil {
		return nil, diags, nil
	}

	file := &ast.File{
		Path: path,
		Stem: Stem(path),
	}
	decodeFile(hclFile.Body, file, &diags)
	return file, diags, nil
}

// Stem returns the namespace key of a source path: the base name with the
// full extension stripped.
func Stem(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, Ext) {
		return strings.TrimSuffix(base, Ext)
	}
	// Tolerate plain .hcl during tests and migration.
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// appendHCLDiags converts the front end library's own diagnostics into the
// compiler's diagnostic shape under the front-end code range.
func appendHCLDiags(diags *diag.List, hclDiags hcl.Diagnostics) {
	for _, d := range hclDiags {
		pos := diag.Pos{}
		if d.Subject != nil {
			pos = diag.Pos{File: d.Subject.Filename, Line: d.Subject.Start.Line, Column: d.Subject.Start.Column}
		}
		msg := d.Summary
		if d.Detail != "" {
			msg = d.Summary + ": " + d.Detail
		}
		diags.Add(diag.CodeSyntax, pos, "%s", msg)
	}
}

func spanOf(r hcl.Range) ast.Span {
	return ast.Span{File: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

func posOf(sp ast.Span) diag.Pos {
	return diag.Pos{File: sp.File, Line: sp.Line, Column: sp.Column}
}
