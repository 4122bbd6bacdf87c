package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionSet_MarshalShapes(t *testing.T) {
	testCases := []struct {
		name     string
		set      ConditionSet
		expected string
	}{
		{
			name:     "and list is a plain array",
			set:      ConditionSet{All: []string{"door.open == true", "door.locked == false"}},
			expected: `["door.open == true","door.locked == false"]`,
		},
		{
			name:     "or list wraps in anyOf",
			set:      ConditionSet{Any: []string{"key.cut == true", "door.weight < 10"}},
			expected: `{"anyOf":["key.cut == true","door.weight < 10"]}`,
		},
		{
			name:     "zero value is an empty array",
			set:      ConditionSet{},
			expected: `[]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := json.Marshal(tc.set)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))
		})
	}
}

func TestConditionSet_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		in   ConditionSet
	}{
		{name: "all", in: ConditionSet{All: []string{"a.b == true"}}},
		{name: "any", in: ConditionSet{Any: []string{"a.b == true", "a.c != 'x'"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.in)
			require.NoError(t, err)

			var back ConditionSet
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tc.in.All, back.All)
			assert.Equal(t, tc.in.Any, back.Any)
		})
	}
}

func TestEncode(t *testing.T) {
	w := &World{
		Meta: Meta{Format: FormatVersion, Title: "T", Start: "room"},
		Locations: []Location{
			{ID: "room", Heading: "Room", Exits: []Exit{
				{Name: "out", To: "room", When: "door.weight < 10"},
			}},
		},
	}

	out, err := Encode(w)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasSuffix(s, "}\n"), "exactly one trailing newline")
	assert.False(t, strings.HasSuffix(s, "\n\n"))
	assert.Contains(t, s, "  \"meta\": {")
	assert.Contains(t, s, `"format": "world/1"`)
	assert.Contains(t, s, `"when": "door.weight < 10"`, "no HTML escaping of condition operators")

	// Omitted sections leave no key behind.
	assert.NotContains(t, s, `"entities"`)
	assert.NotContains(t, s, `"sections"`)

	// Encode is deterministic byte for byte.
	again, err := Encode(w)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
