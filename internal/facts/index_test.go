package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet() *Set {
	return &Set{
		Version: FormatVersion,
		Reads: []PropertyRead{
			{Type: "door", Property: "open", Site: Site{Kind: SiteExit, ID: "hall/north"}},
			{Type: "door", Property: "open", Site: Site{Kind: SiteChoice, ID: "main/intro/peek"}},
			{Type: "lamp", Property: "lit", Site: Site{Kind: SiteRule, ID: "flicker"}},
		},
		Writes: []PropertyWrite{
			{Type: "door", Property: "open", Site: Site{Kind: SiteChoice, ID: "main/intro/open-it"}},
			{Type: "door", Property: "locked", Site: Site{Kind: SiteRule, ID: "autolock"}},
		},
	}
}

func TestIndex_DirectLookups(t *testing.T) {
	idx := NewPropertyDependencyIndex(testSet())

	reads := idx.Reads("door", "open")
	require.Len(t, reads, 2)
	assert.Equal(t, SiteExit, reads[0].Kind)
	assert.Equal(t, "hall/north", reads[0].ID)

	writes := idx.Writes("door", "open")
	require.Len(t, writes, 1)
	assert.Equal(t, "main/intro/open-it", writes[0].ID)

	assert.Empty(t, idx.Reads("door", "locked"))
	assert.Empty(t, idx.Writes("ghost", "nothing"))
}

func TestIndex_SetDifferences(t *testing.T) {
	idx := NewPropertyDependencyIndex(testSet())

	assert.Equal(t,
		[]PropertyKey{{Type: "lamp", Property: "lit"}},
		idx.ReadNeverWritten())
	assert.Equal(t,
		[]PropertyKey{{Type: "door", Property: "locked"}},
		idx.WrittenNeverRead())
}

func TestIndex_KeysAreSorted(t *testing.T) {
	idx := NewPropertyDependencyIndex(testSet())

	assert.Equal(t, []PropertyKey{
		{Type: "door", Property: "locked"},
		{Type: "door", Property: "open"},
		{Type: "lamp", Property: "lit"},
	}, idx.Keys())
}

func TestIndex_EmptySet(t *testing.T) {
	idx := NewPropertyDependencyIndex(&Set{Version: FormatVersion})

	assert.Empty(t, idx.Keys())
	assert.Empty(t, idx.ReadNeverWritten())
	assert.Empty(t, idx.WrittenNeverRead())
}
