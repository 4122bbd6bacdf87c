package validator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/fablec/internal/depgraph"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/factext"
	"github.com/vk/fablec/internal/facts"
	"github.com/vk/fablec/internal/symtab"
	"github.com/vk/fablec/internal/testutil"
	"github.com/vk/fablec/internal/validator"
)

// validate runs the pipeline up to and including validation on a single
// in-memory file.
func validate(t *testing.T, src string) diag.List {
	t.Helper()
	ctx := testutil.Ctx()
	unit, diags := depgraph.Build(ctx, "main.fable.hcl", testutil.NewMemSource(map[string]string{
		"main.fable.hcl": src,
	}))
	require.False(t, diags.HasErrors(), "graph: %v", diags)
	tab, linkDiags := symtab.Link(ctx, unit)
	require.False(t, linkDiags.HasErrors(), "link: %v", linkDiags)

	set, factDiags := factext.Build(ctx, tab)
	require.False(t, factDiags.HasErrors(), "facts: %v", factDiags)
	var idx *facts.PropertyDependencyIndex
	if set != nil {
		idx = facts.NewPropertyDependencyIndex(set)
	}
	return validator.Validate(ctx, tab, set, idx)
}

const valHeader = `
world {
  title = "Validation"
  start = "Hall"
}

location "Hall" {}
`

func TestValidate_SchemaChecks(t *testing.T) {
	t.Run("unknown schema type", func(t *testing.T) {
		diags := validate(t, valHeader+`
type "thing" {
  property "weird" {
    type = "complex"
  }
}
`)
		require.Len(t, diags.ByCode(diag.CodeUnknownSchemaType), 1)
	})

	t.Run("default violates enum", func(t *testing.T) {
		diags := validate(t, valHeader+`
type "door" {
  property "material" {
    type    = "string"
    values  = ["wood", "iron"]
    default = "glass"
  }
}
`)
		require.Len(t, diags.ByCode(diag.CodeEnumViolation), 1)
	})

	t.Run("default outside range", func(t *testing.T) {
		diags := validate(t, valHeader+`
type "door" {
  property "weight" {
    type    = "number"
    min     = 1
    max     = 10
    default = 11
  }
}
`)
		require.Len(t, diags.ByCode(diag.CodeRangeViolation), 1)
	})
}

func TestValidate_EntityInitialValues(t *testing.T) {
	diags := validate(t, valHeader+`
type "door" {
  property "open" {
    type = "bool"
  }
}

entity "front-door" {
  type = "door"

  properties {
    open = "very"
  }
}
`)
	require.Len(t, diags.ByCode(diag.CodeTypeMismatch), 1)
}

func TestValidate_ConditionTypes(t *testing.T) {
	t.Run("literal type mismatch", func(t *testing.T) {
		diags := validate(t, valHeader+`
type "door" {
  property "open" {
    type = "bool"
  }
}

entity "front-door" {
  type = "door"
}

action "check" {
  when = ["front-door.open == 'yes'"]
}
`)
		require.Len(t, diags.ByCode(diag.CodeTypeMismatch), 1)
	})

	t.Run("ordering needs a number", func(t *testing.T) {
		diags := validate(t, valHeader+`
type "door" {
  property "material" {
    type = "string"
  }
}

entity "front-door" {
  type = "door"
}

action "check" {
  when = ["front-door.material > 'wood'"]
}
`)
		require.NotEmpty(t, diags.ByCode(diag.CodeTypeMismatch))
	})
}

func TestValidate_TargetConflict(t *testing.T) {
	diags := validate(t, valHeader+`
type "door" {}

entity "front-door" {
  type = "door"
}

action "broken" {
  entity      = "front-door"
  entity_type = "door"
}
`)
	require.Len(t, diags.ByCode(diag.CodeTargetConflict), 1)
}

// nestedChoices builds a section with a single chain of choices depth deep.
func nestedChoices(depth int) string {
	var b strings.Builder
	b.WriteString("section \"deep\" {\n")
	for i := 0; i < depth; i++ {
		fmt.Fprintf(&b, "%schoice \"Level %d\" {\n", strings.Repeat("  ", i+1), i)
	}
	for i := depth - 1; i >= 0; i-- {
		b.WriteString(strings.Repeat("  ", i+1) + "}\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func TestValidate_NestingThresholds(t *testing.T) {
	t.Run("depth 3 is fine", func(t *testing.T) {
		diags := validate(t, valHeader+nestedChoices(3))
		assert.Empty(t, diags.ByCode(diag.CodeNestingDeep))
		assert.Empty(t, diags.ByCode(diag.CodeNestingTooDeep))
	})

	t.Run("depth 4 warns", func(t *testing.T) {
		diags := validate(t, valHeader+nestedChoices(4))
		assert.Len(t, diags.ByCode(diag.CodeNestingDeep), 1)
		assert.Empty(t, diags.ByCode(diag.CodeNestingTooDeep))
	})

	t.Run("depth 7 errors", func(t *testing.T) {
		diags := validate(t, valHeader+nestedChoices(7))
		assert.Len(t, diags.ByCode(diag.CodeNestingTooDeep), 1)
		assert.True(t, diags.HasErrors())
	})
}

func TestValidate_Reachability(t *testing.T) {
	diags := validate(t, `
world {
  title = "Islands"
  start = "Hall"
}

location "Hall" {
  exit "north" {
    to = "Study"
  }
}

location "Study" {}

location "Oubliette" {}
`)
	unreachable := diags.ByCode(diag.CodeUnreachable)
	require.Len(t, unreachable, 1)
	assert.Contains(t, unreachable[0].Message, "oubliette")
}

func TestValidate_ReachabilityIgnoresGuards(t *testing.T) {
	diags := validate(t, `
world {
  title = "Guarded"
  start = "Hall"
}

type "door" {
  property "open" {
    type = "bool"
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
}

location "Study" {}

action "open" {
  set {
    target   = "front-door"
    property = "open"
    value    = true
  }
}
`)
	assert.Empty(t, diags.ByCode(diag.CodeUnreachable), "a guarded exit still counts as an edge")
}

func TestValidate_ImpossibleGuards(t *testing.T) {
	typeAndEntity := `
type "door" {
  property "material" {
    type   = "string"
    values = ["wood", "iron"]
  }

  property "weight" {
    type = "number"
    min  = 0
    max  = 100
  }
}

entity "front-door" {
  type = "door"
}
`

	t.Run("enum value outside domain", func(t *testing.T) {
		diags := validate(t, valHeader+typeAndEntity+`
action "a" {
  when = ["front-door.material == 'glass'"]
}
`)
		require.Len(t, diags.ByCode(diag.CodeImpossibleGuard), 1)
	})

	t.Run("comparison outside declared range", func(t *testing.T) {
		diags := validate(t, valHeader+typeAndEntity+`
action "a" {
  when = ["front-door.weight > 100"]
}
`)
		require.Len(t, diags.ByCode(diag.CodeImpossibleGuard), 1)
	})

	t.Run("contradictory equalities in an AND list", func(t *testing.T) {
		diags := validate(t, valHeader+typeAndEntity+`
action "a" {
  when = ["front-door.material == 'wood'", "front-door.material == 'iron'"]
}
`)
		require.Len(t, diags.ByCode(diag.CodeImpossibleGuard), 1)
	})

	t.Run("or list needs every alternative impossible", func(t *testing.T) {
		diags := validate(t, valHeader+typeAndEntity+`
action "possible" {
  when_any = ["front-door.material == 'glass'", "front-door.material == 'wood'"]
}
`)
		assert.Empty(t, diags.ByCode(diag.CodeImpossibleGuard))
	})

	t.Run("or list with all alternatives impossible", func(t *testing.T) {
		diags := validate(t, valHeader+typeAndEntity+`
action "impossible" {
  when_any = ["front-door.material == 'glass'", "front-door.weight > 200"]
}
`)
		require.Len(t, diags.ByCode(diag.CodeImpossibleGuard), 1)
	})

	t.Run("satisfiable guard is quiet", func(t *testing.T) {
		diags := validate(t, valHeader+typeAndEntity+`
action "fine" {
  when = ["front-door.material == 'wood'", "front-door.weight < 50"]
}
`)
		assert.Empty(t, diags.ByCode(diag.CodeImpossibleGuard))
	})
}

func TestValidate_DeadEndSection(t *testing.T) {
	diags := validate(t, valHeader+`
section "terminal" {
  text = ["It ends here."]
}

section "alive" {
  next = "terminal"
}
`)
	deadEnds := diags.ByCode(diag.CodeDeadEndSection)
	require.Len(t, deadEnds, 1, "alive has a continuation; terminal does not")
	assert.Contains(t, deadEnds[0].Message, "main/terminal")
}

func TestValidate_SectionExitShadow(t *testing.T) {
	diags := validate(t, `
world {
  title = "Shadow"
  start = "Hall"
}

location "Hall" {
  exit "garden" {
    to = "Hall"
  }
}

section "garden" {
  location = "Hall"

  choice "Stay" {
    goto = "section:garden"
  }
}
`)
	require.Len(t, diags.ByCode(diag.CodeSectionExitShadow), 1)
}

func TestValidate_ReadWriteBalance(t *testing.T) {
	src := `
world {
  title = "Balance"
  start = "Hall"
}

type "door" {
  property "open" {
    type = "bool"
  }

  property "locked" {
    type = "bool"
  }
}

entity "front-door" {
  type = "door"
}

location "Hall" {
  exit "north" {
    to   = "Hall"
    when = "front-door.open == true"
  }
}

rule "autolock" {
  set {
    target   = "front-door"
    property = "locked"
    value    = true
  }
}
`
	diags := validate(t, src)

	readNever := diags.ByCode(diag.CodeReadNeverWritten)
	require.Len(t, readNever, 1)
	assert.Contains(t, readNever[0].Message, "door.open")

	writtenNever := diags.ByCode(diag.CodeWrittenNeverRead)
	require.Len(t, writtenNever, 1)
	assert.Contains(t, writtenNever[0].Message, "door.locked")
}

func TestValidate_OrphanSection(t *testing.T) {
	diags := validate(t, `
world {
  title = "Orphans"
  start = "Hall"
  entry = "intro"
}

location "Hall" {}

section "intro" {
  next = "visited"
}

section "visited" {
  next = "intro"
}

section "island" {
  next = "intro"
}
`)
	orphans := diags.ByCode(diag.CodeOrphanSection)
	require.Len(t, orphans, 1, "entry is exempt, visited is jumped to")
	assert.Contains(t, orphans[0].Message, "main/island")
}

func TestValidate_StuckPhase(t *testing.T) {
	diags := validate(t, valHeader+`
type "door" {
  property "open" {
    type = "bool"
  }
}

entity "front-door" {
  type = "door"
}

sequence "story" {
  phase "waiting" {
    advance = "front-door.open==true"
  }
}
`)
	stuck := diags.ByCode(diag.CodeStuckPhase)
	require.Len(t, stuck, 1)
	assert.Contains(t, stuck[0].Message, "story/waiting")
}

func TestValidate_EmptySelect(t *testing.T) {
	diags := validate(t, valHeader+`
type "ghost" {}

rule "haunt" {
  select {
    from_type = "ghost"
  }
}
`)
	empty := diags.ByCode(diag.CodeEmptySelect)
	require.Len(t, empty, 1)
	assert.Contains(t, empty[0].Message, `"ghost"`)
}

func TestValidate_CreateEffectPopulatesSelect(t *testing.T) {
	diags := validate(t, valHeader+`
type "ghost" {}

section "seance" {
  choice "Summon a spirit" {
    create {
      name = "spirit"
      type = "ghost"
      at   = "Hall"
    }
  }
}

rule "haunt" {
  select {
    from_type = "ghost"
  }
}
`)
	assert.Empty(t, diags.ByCode(diag.CodeEmptySelect),
		"a type populated only by create effects still has candidates")
}
