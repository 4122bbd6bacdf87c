// Package testutil provides shared helpers for compiling in-memory world
// sources in tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/fablec/internal/compiler"
	"github.com/vk/fablec/internal/ctxlog"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Ctx returns a background context with a discard logger, which every
// pipeline stage requires.
func Ctx() context.Context {
	return ctxlog.Discard(context.Background())
}

// Compile compiles an in-memory world. files maps source paths to content;
// entry names the entry path within files.
func Compile(t *testing.T, entry string, files map[string]string) compiler.Result {
	t.Helper()
	return compiler.Compile(Ctx(), entry, compiler.WithSource(NewMemSource(files)))
}

// WriteWorld materializes the sources into a temporary directory and
// returns the absolute path of the entry file. For tests that exercise the
// real disk loader.
func WriteWorld(t *testing.T, entry string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return filepath.Join(dir, entry)
}
