package factext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fablec/internal/depgraph"
	"github.com/vk/fablec/internal/factext"
	"github.com/vk/fablec/internal/facts"
	"github.com/vk/fablec/internal/symtab"
	"github.com/vk/fablec/internal/testutil"
)

const factWorld = `
world {
  title = "Facts"
  start = "Hall"
}

type "door" {
  property "open" {
    type    = "bool"
    default = false
  }
}

entity "front-door" {
  type = "door"
}

location "Hall" {
  exit "north" {
    to   = "Study"
    when = "front-door.open == true"
  }

  exit "south" {
    to = "Hall"
  }
}

location "Study" {}

section "intro" {
  next = "debate"

  choice "Open the door" {
    set {
      target   = "front-door"
      property = "open"
      value    = true
    }
  }

  choice "Peek" {
    when = ["front-door.open == false"]
    goto = "debate"
  }
}

section "debate" {}

rule "draft" {
  select {
    from_type = "door"
    when      = ["door.open == true"]
  }

  set {
    target   = "door"
    property = "open"
    value    = false
  }
}
`

func extract(t *testing.T) *facts.Set {
	t.Helper()
	ctx := testutil.Ctx()
	unit, diags := depgraph.Build(ctx, "main.fable.hcl", testutil.NewMemSource(map[string]string{
		"main.fable.hcl": factWorld,
	}))
	require.False(t, diags.HasErrors(), "graph: %v", diags)
	tab, diags := symtab.Link(ctx, unit)
	require.False(t, diags.HasErrors(), "link: %v", diags)

	set, diags := factext.Build(ctx, tab)
	require.False(t, diags.HasErrors(), "extract: %v", diags)
	require.NotNil(t, set)
	return set
}

func TestBuild_ExitEdges(t *testing.T) {
	set := extract(t)

	require.Len(t, set.ExitEdges, 2)
	north := set.ExitEdges[0]
	assert.Equal(t, "hall", north.From)
	assert.Equal(t, "study", north.To)
	assert.Equal(t, "north", north.Name)
	assert.True(t, north.Guarded)

	south := set.ExitEdges[1]
	assert.Equal(t, "hall", south.To, "self loop is a valid edge")
	assert.False(t, south.Guarded)
}

func TestBuild_SectionJumps(t *testing.T) {
	set := extract(t)

	require.Len(t, set.SectionJumps, 2)
	next := set.SectionJumps[0]
	assert.Equal(t, "main/intro", next.From)
	assert.Equal(t, "main/debate", next.To)
	assert.Empty(t, next.Choice, "section continuation carries no choice")

	viaChoice := set.SectionJumps[1]
	assert.Equal(t, "main/intro", viaChoice.From)
	assert.Equal(t, "main/debate", viaChoice.To)
	assert.Equal(t, "main/intro/peek", viaChoice.Choice)
}

func TestBuild_Choices(t *testing.T) {
	set := extract(t)

	require.Len(t, set.Choices, 2)
	assert.Equal(t, "main/intro/open-the-door", set.Choices[0].ID)
	assert.False(t, set.Choices[0].Guarded)
	assert.Equal(t, "main/intro/peek", set.Choices[1].ID)
	assert.True(t, set.Choices[1].Guarded)
}

func TestBuild_Rules(t *testing.T) {
	set := extract(t)

	require.Len(t, set.Rules, 1)
	rule := set.Rules[0]
	assert.Equal(t, "draft", rule.ID)
	assert.True(t, rule.Selective)
	assert.Equal(t, "door", rule.TargetType)
	assert.Empty(t, rule.Phase)
}

func TestBuild_ReadsAndWrites(t *testing.T) {
	set := extract(t)

	// Reads: exit guard, choice guard, select filter.
	require.Len(t, set.Reads, 3)
	assert.Equal(t, facts.SiteExit, set.Reads[0].Site.Kind)
	assert.Equal(t, "hall/north", set.Reads[0].Site.ID)
	assert.Equal(t, facts.SiteChoice, set.Reads[1].Site.Kind)
	assert.Equal(t, facts.SiteRule, set.Reads[2].Site.Kind)
	for _, r := range set.Reads {
		assert.Equal(t, "door", r.Type, "reads key on the declared type, not the entity")
		assert.Equal(t, "open", r.Property)
	}

	// Writes: choice assignment, rule assignment.
	require.Len(t, set.Writes, 2)
	assert.Equal(t, facts.SiteChoice, set.Writes[0].Site.Kind)
	assert.Equal(t, "main/intro/open-the-door", set.Writes[0].Site.ID)
	assert.Equal(t, facts.SiteRule, set.Writes[1].Site.Kind)
}

func TestBuild_IndexAgreesWithSet(t *testing.T) {
	set := extract(t)
	idx := facts.NewPropertyDependencyIndex(set)

	assert.Len(t, idx.Reads("door", "open"), 3)
	assert.Len(t, idx.Writes("door", "open"), 2)
	assert.Empty(t, idx.ReadNeverWritten())
	assert.Empty(t, idx.WrittenNeverRead())
}
