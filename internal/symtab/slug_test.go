package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"The Dusty Cellar", "the-dusty-cellar"},
		{"Front Porch", "front-porch"},
		{"  padded  ", "padded"},
		{"Already-Slugged", "already-slugged"},
		{"Punctuation, everywhere!", "punctuation-everywhere"},
		{"Room 101", "room-101"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slug(tc.in))
		})
	}
}
