package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_String(t *testing.T) {
	testCases := []struct {
		code     Code
		expected string
	}{
		{CodeSyntax, "FAB011"},
		{CodeImportCycle, "FAB102"},
		{CodeDuplicateID, "FAB201"},
		{CodeTypeMismatch, "FAB301"},
		{CodeInternalUnresolved, "FAB401"},
		{CodeFactIntegrity, "FAB501"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.code.String())
		})
	}
}

func TestCode_SeverityIsFixed(t *testing.T) {
	assert.Equal(t, SeverityError, CodeImportCycle.Severity())
	assert.Equal(t, SeverityWarning, CodeNestingDeep.Severity())
	assert.Equal(t, SeverityError, CodeNestingTooDeep.Severity())
	assert.Equal(t, SeverityWarning, CodeWrittenNeverRead.Severity())
}

func TestCode_UnregisteredSeverityPanics(t *testing.T) {
	assert.Panics(t, func() { Code(999).Severity() })
}

func TestList_AddDerivesSeverity(t *testing.T) {
	var l List
	l.Add(CodeUnresolved, Pos{File: "a.fable.hcl", Line: 3, Column: 1}, "unknown name %q", "door")
	l.Add(CodeOrphanSection, Pos{File: "a.fable.hcl", Line: 9, Column: 1}, "never entered")

	require.Len(t, l, 2)
	assert.Equal(t, SeverityError, l[0].Severity)
	assert.Equal(t, `unknown name "door"`, l[0].Message)
	assert.Equal(t, SeverityWarning, l[1].Severity)

	assert.True(t, l.HasErrors())
	assert.Len(t, l.Errors(), 1)
}

func TestList_ByCode(t *testing.T) {
	var l List
	l.Add(CodeUnresolved, Pos{}, "one")
	l.Add(CodeDuplicateID, Pos{}, "two")
	l.Add(CodeUnresolved, Pos{}, "three")

	assert.Len(t, l.ByCode(CodeUnresolved), 2)
	assert.Len(t, l.ByCode(CodeDuplicateID), 1)
	assert.Empty(t, l.ByCode(CodeImportCycle))
}

func TestList_SortOrdersByPosition(t *testing.T) {
	var l List
	l.Add(CodeUnresolved, Pos{File: "b.fable.hcl", Line: 1, Column: 1}, "later file")
	l.Add(CodeUnresolved, Pos{File: "a.fable.hcl", Line: 7, Column: 2}, "same file later line")
	l.Add(CodeUnresolved, Pos{File: "a.fable.hcl", Line: 2, Column: 5}, "first")

	l.Sort()

	require.Len(t, l, 3)
	assert.Equal(t, "first", l[0].Message)
	assert.Equal(t, "same file later line", l[1].Message)
	assert.Equal(t, "later file", l[2].Message)
}

func TestDiagnostic_String(t *testing.T) {
	var l List
	l.AddWithSuggestion(CodeNotImported, Pos{File: "cellar.fable.hcl", Line: 4, Column: 2},
		`add "./keys.fable.hcl" to imports`, "entity %q is not visible here", "brass-key")

	s := l[0].String()
	assert.Contains(t, s, "cellar.fable.hcl:4:2")
	assert.Contains(t, s, "FAB203")
	assert.Contains(t, s, `entity "brass-key" is not visible here`)
}
