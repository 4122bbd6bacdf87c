package compiler_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fablec/internal/compiler"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/testutil"
)

const goodWorld = `
world {
  title = "Passage"
  start = "Cave"
  entry = "wake"
}

type "lamp" {
  property "lit" {
    type    = "bool"
    default = false
  }
}

entity "old-lamp" {
  type     = "lamp"
  location = "Cave"
}

location "Cave" {
  exit "up" {
    to   = "Ledge"
    when = "old-lamp.lit == true"
  }
}

location "Ledge" {
  exit "down" {
    to = "Cave"
  }
}

section "wake" {
  location = "Cave"
  text     = ["Darkness."]

  choice "Light the lamp" {
    when = ["old-lamp.lit == false"]

    set {
      target   = "old-lamp"
      property = "lit"
      value    = true
    }
  }
}
`

func TestCompile_Success(t *testing.T) {
	res := testutil.Compile(t, "main.fable.hcl", map[string]string{"main.fable.hcl": goodWorld})

	require.True(t, res.Success, "diags: %v", res.Diagnostics)
	require.NotNil(t, res.Document)
	require.NotNil(t, res.Facts)
	require.NotNil(t, res.Index)
	assert.False(t, res.Diagnostics.HasErrors())
	assert.Equal(t, "Passage", res.Document.Meta.Title)
}

func TestCompile_ValidationErrorKeepsFacts(t *testing.T) {
	broken := goodWorld + `
entity "spare-lamp" {
  type = "lamp"

  properties {
    lit = "very"
  }
}
`
	res := testutil.Compile(t, "main.fable.hcl", map[string]string{"main.fable.hcl": broken})

	assert.False(t, res.Success)
	assert.Nil(t, res.Document, "an error anywhere suppresses the document")
	assert.True(t, res.Diagnostics.HasErrors())
	require.NotEmpty(t, res.Diagnostics.ByCode(diag.CodeTypeMismatch))

	// Fact extraction ran before validation and still serves analysis.
	require.NotNil(t, res.Facts)
	require.NotNil(t, res.Index)
	assert.NotEmpty(t, res.Facts.ExitEdges)
}

func TestCompile_GraphErrorStopsPipeline(t *testing.T) {
	res := testutil.Compile(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": `
imports = ["./missing.fable.hcl"]

world {
  title = "Nope"
  start = "Void"
}
`,
	})

	assert.False(t, res.Success)
	assert.Nil(t, res.Document)
	assert.Nil(t, res.Facts)
	assert.Nil(t, res.Index)
	require.NotEmpty(t, res.Diagnostics.ByCode(diag.CodeImportUnreadable))
}

func TestCompile_DiagnosticsSorted(t *testing.T) {
	// Two unknown references declared out of position order; the result
	// must still come back sorted by file, line, column.
	res := testutil.Compile(t, "main.fable.hcl", map[string]string{
		"main.fable.hcl": `
world {
  title = "Sorted"
  start = "Room"
}

location "Room" {
  exit "a" {
    to = "Nowhere"
  }

  exit "b" {
    to = "Elsewhere"
  }
}
`,
	})

	require.False(t, res.Success)
	diags := res.Diagnostics
	require.GreaterOrEqual(t, len(diags), 2)
	assert.True(t, sort.SliceIsSorted(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	}))
}

func TestSession_RetainsLastGood(t *testing.T) {
	src := testutil.NewMemSource(map[string]string{"main.fable.hcl": goodWorld})
	sess := compiler.NewSession(compiler.WithSource(src))
	ctx := testutil.Ctx()

	_, ok := sess.LastGood()
	assert.False(t, ok, "no result before the first compile")

	first := sess.Compile(ctx, "main.fable.hcl")
	require.True(t, first.Success, "diags: %v", first.Diagnostics)

	// The author breaks the world mid-edit.
	src.Put("main.fable.hcl", `
world {
  title = "Broken"
  start = "Gone"
}
`)
	second := sess.Compile(ctx, "main.fable.hcl")
	assert.False(t, second.Success)

	held, ok := sess.LastGood()
	require.True(t, ok)
	assert.True(t, held.Success)
	assert.Equal(t, "Passage", held.Document.Meta.Title)

	// A fixed world replaces the held result.
	src.Put("main.fable.hcl", goodWorld)
	third := sess.Compile(ctx, "main.fable.hcl")
	require.True(t, third.Success)
	held, ok = sess.LastGood()
	require.True(t, ok)
	assert.Equal(t, third.Document, held.Document)
}
