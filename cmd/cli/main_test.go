package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fablec/internal/app"
	"github.com/vk/fablec/internal/cli"
	"github.com/vk/fablec/internal/testutil"
)

const tinyWorld = `
world {
  title = "Tiny"
  start = "Room"
}

location "Room" {}
`

func TestRun_WritesDocumentToStdout(t *testing.T) {
	entry := testutil.WriteWorld(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": tinyWorld,
	})

	var out, errBuf testutil.SafeBuffer
	require.NoError(t, run(&out, &errBuf, []string{entry}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &doc))
	meta, ok := doc["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Tiny", meta["title"])
	assert.Equal(t, "room", meta["start"])
}

func TestRun_OutFlagWritesFile(t *testing.T) {
	entry := testutil.WriteWorld(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": tinyWorld,
	})
	outPath := filepath.Join(t.TempDir(), "world.json")

	var out, errBuf testutil.SafeBuffer
	require.NoError(t, run(&out, &errBuf, []string{"-out", outPath, entry}))

	assert.Empty(t, out.String(), "nothing on stdout when -out is set")
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"))
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestRun_CheckMode(t *testing.T) {
	entry := testutil.WriteWorld(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": tinyWorld,
	})

	var out, errBuf testutil.SafeBuffer
	require.NoError(t, run(&out, &errBuf, []string{"-check", entry}))
	assert.Empty(t, out.String(), "check mode writes no document")
}

func TestRun_FactsDBExport(t *testing.T) {
	entry := testutil.WriteWorld(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": tinyWorld,
	})
	dbPath := filepath.Join(t.TempDir(), "facts.db")

	var out, errBuf testutil.SafeBuffer
	require.NoError(t, run(&out, &errBuf, []string{"-check", "-facts-db", dbPath, entry}))

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRun_CompilationFailure(t *testing.T) {
	entry := testutil.WriteWorld(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": `
world {
  title = "Broken"
  start = "Nowhere"
}
`,
	})

	var out, errBuf testutil.SafeBuffer
	err := run(&out, &errBuf, []string{entry})
	require.ErrorIs(t, err, app.ErrCompilationFailed)

	assert.Empty(t, out.String())
	assert.Contains(t, errBuf.String(), "FAB", "diagnostics are rendered on stderr")
	assert.Contains(t, errBuf.String(), "error:")
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var out, errBuf testutil.SafeBuffer
	require.NoError(t, run(&out, &errBuf, nil))
	assert.Contains(t, errBuf.String(), "Usage:")
}

func TestRun_BadArguments(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--nope", "main.fable.hcl"}},
		{name: "two entry paths", args: []string{"a.fable.hcl", "b.fable.hcl"}},
		{name: "bad log level", args: []string{"-log-level", "loud", "main.fable.hcl"}},
		{name: "bad log format", args: []string{"-log-format", "xml", "main.fable.hcl"}},
		{name: "check conflicts with out", args: []string{"-check", "-out", "x.json", "main.fable.hcl"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out, errBuf testutil.SafeBuffer
			err := run(&out, &errBuf, tc.args)
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
