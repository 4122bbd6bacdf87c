package testutil

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/hcladapter"
)

// MemSource is an in-memory file source. Paths are cleaned on lookup, so
// relative import resolution behaves exactly like the disk loader.
type MemSource struct {
	files  map[string]string
	parser *hcladapter.Loader
}

// NewMemSource builds a source over the given path-to-content map.
func NewMemSource(files map[string]string) *MemSource {
	normalized := make(map[string]string, len(files))
	for name, content := range files {
		normalized[filepath.Clean(name)] = content
	}
	return &MemSource{files: normalized, parser: hcladapter.NewLoader()}
}

// Put replaces one file's content, modeling an in-editor edit between
// compiles.
func (m *MemSource) Put(path, content string) {
	m.files[filepath.Clean(path)] = content
}

// Load parses the named in-memory file.
func (m *MemSource) Load(ctx context.Context, path string) (*ast.File, diag.List, error) {
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, nil, fmt.Errorf("no such file: %s", path)
	}
	return m.parser.Parse(ctx, path, []byte(content))
}
