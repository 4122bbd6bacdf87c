package factdb_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vk/fablec/internal/factdb"
	"github.com/vk/fablec/internal/facts"
)

func sampleSet() *facts.Set {
	return &facts.Set{
		Version: facts.FormatVersion,
		ExitEdges: []facts.ExitEdge{
			{From: "hall", To: "study", Name: "north", Guarded: true,
				Span: facts.Span{File: "main.fable.hcl", Line: 10}},
			{From: "study", To: "hall", Name: "back",
				Span: facts.Span{File: "main.fable.hcl", Line: 18}},
		},
		SectionJumps: []facts.SectionJump{
			{From: "main/intro", To: "main/ending", Choice: "main/intro/leave",
				Span: facts.Span{File: "main.fable.hcl", Line: 30}},
		},
		Choices: []facts.Choice{
			{ID: "main/intro/leave", Section: "main/intro", Label: "Leave", Guarded: true,
				Span: facts.Span{File: "main.fable.hcl", Line: 30}},
		},
		Rules: []facts.Rule{
			{ID: "settle", Phase: "story/opening", TargetType: "door", Selective: true,
				Span: facts.Span{File: "main.fable.hcl", Line: 44}},
		},
		Reads: []facts.PropertyRead{
			{Type: "door", Property: "open",
				Site: facts.Site{Kind: facts.SiteExit, ID: "hall/north"},
				Span: facts.Span{File: "main.fable.hcl", Line: 10}},
		},
		Writes: []facts.PropertyWrite{
			{Type: "door", Property: "open",
				Site: facts.Site{Kind: facts.SiteChoice, ID: "main/intro/leave"},
				Span: facts.Span{File: "main.fable.hcl", Line: 31}},
		},
	}
}

func rowCount(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.db")
	require.NoError(t, factdb.Export(context.Background(), path, sampleSet()))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 2, rowCount(t, db, "exit_edges"))
	assert.Equal(t, 1, rowCount(t, db, "section_jumps"))
	assert.Equal(t, 1, rowCount(t, db, "choices"))
	assert.Equal(t, 1, rowCount(t, db, "rules"))
	assert.Equal(t, 1, rowCount(t, db, "property_reads"))
	assert.Equal(t, 1, rowCount(t, db, "property_writes"))

	var format string
	require.NoError(t, db.QueryRow("SELECT value FROM meta WHERE key = 'format'").Scan(&format))
	assert.Equal(t, facts.FormatVersion, format)

	var to string
	var guarded bool
	require.NoError(t, db.QueryRow(
		"SELECT to_location, guarded FROM exit_edges WHERE from_location = 'hall'").Scan(&to, &guarded))
	assert.Equal(t, "study", to)
	assert.True(t, guarded)
}

func TestExport_ReplacesPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.db")
	ctx := context.Background()

	require.NoError(t, factdb.Export(ctx, path, sampleSet()))

	smaller := &facts.Set{
		Version: facts.FormatVersion,
		ExitEdges: []facts.ExitEdge{
			{From: "hall", To: "hall", Name: "loop",
				Span: facts.Span{File: "main.fable.hcl", Line: 5}},
		},
	}
	require.NoError(t, factdb.Export(ctx, path, smaller))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, rowCount(t, db, "exit_edges"))
	assert.Equal(t, 0, rowCount(t, db, "choices"))
	assert.Equal(t, 0, rowCount(t, db, "rules"))
	assert.Equal(t, 1, rowCount(t, db, "meta"))
}
