package diag

import "fmt"

// Code is a stable numeric diagnostic identifier. Each compilation phase owns
// a disjoint range and a code's meaning is never reassigned:
//
//	001-099  front end (surface parse, condition micro-grammar)
//	100-199  dependency graph
//	200-299  linker
//	300-399  validator
//	400-499  emitter
//	500-599  fact extractor
type Code int

const (
	// Front end.
	CodeSyntax            Code = 11 // malformed source file
	CodeBadCondition      Code = 12 // condition string does not match the micro-grammar
	CodeBadEffect         Code = 13 // effect block with missing or conflicting fields
	CodeConditionConflict Code = 14 // when and when_any on the same construct
	CodeBadAttribute      Code = 15 // attribute present but of the wrong shape

	// Dependency graph.
	CodeImportUnreadable  Code = 101
	CodeImportCycle       Code = 102
	CodeStemCollision     Code = 103
	CodeDepthExceeded     Code = 104
	CodeFileCountExceeded Code = 105

	// Linker.
	CodeDuplicateID        Code = 201
	CodeUnresolved         Code = 202
	CodeNotImported        Code = 203
	CodeAmbiguousJump      Code = 204
	CodeUnknownProperty    Code = 205
	CodeMissingWorld       Code = 206
	CodeDuplicateWorld     Code = 207
	CodeAmbiguousReference Code = 208

	// Validator.
	CodeTypeMismatch       Code = 301
	CodeEnumViolation      Code = 302
	CodeRangeViolation     Code = 303
	CodeUnknownSchemaType  Code = 304
	CodeTargetConflict     Code = 305
	CodeNestingDeep        Code = 306
	CodeNestingTooDeep     Code = 307
	CodeUnreachable        Code = 308
	CodeImpossibleGuard    Code = 309
	CodeDeadEndSection     Code = 310
	CodeSectionExitShadow  Code = 311
	CodeReadNeverWritten   Code = 312
	CodeWrittenNeverRead   Code = 313
	CodeOrphanSection      Code = 314
	CodeStuckPhase         Code = 315
	CodeEmptySelect        Code = 316

	// Emitter.
	CodeInternalUnresolved Code = 401

	// Fact extractor.
	CodeFactIntegrity Code = 501
)

// severities fixes the severity of every code. A code absent from this table
// is a programming error caught by Severity's panic.
var severities = map[Code]Severity{
	CodeSyntax:            SeverityError,
	CodeBadCondition:      SeverityError,
	CodeBadEffect:         SeverityError,
	CodeConditionConflict: SeverityError,
	CodeBadAttribute:      SeverityError,

	CodeImportUnreadable:  SeverityError,
	CodeImportCycle:       SeverityError,
	CodeStemCollision:     SeverityError,
	CodeDepthExceeded:     SeverityError,
	CodeFileCountExceeded: SeverityError,

	CodeDuplicateID:        SeverityError,
	CodeUnresolved:         SeverityError,
	CodeNotImported:        SeverityError,
	CodeAmbiguousJump:      SeverityError,
	CodeUnknownProperty:    SeverityError,
	CodeMissingWorld:       SeverityError,
	CodeDuplicateWorld:     SeverityError,
	CodeAmbiguousReference: SeverityError,

	CodeTypeMismatch:      SeverityError,
	CodeEnumViolation:     SeverityError,
	CodeRangeViolation:    SeverityError,
	CodeUnknownSchemaType: SeverityError,
	CodeTargetConflict:    SeverityError,
	CodeNestingDeep:       SeverityWarning,
	CodeNestingTooDeep:    SeverityError,
	CodeUnreachable:       SeverityWarning,
	CodeImpossibleGuard:   SeverityWarning,
	CodeDeadEndSection:    SeverityWarning,
	CodeSectionExitShadow: SeverityWarning,
	CodeReadNeverWritten:  SeverityWarning,
	CodeWrittenNeverRead:  SeverityWarning,
	CodeOrphanSection:     SeverityWarning,
	CodeStuckPhase:        SeverityWarning,
	CodeEmptySelect:       SeverityWarning,

	CodeInternalUnresolved: SeverityWarning,

	CodeFactIntegrity: SeverityError,
}

// Severity returns the fixed severity of the code.
func (c Code) Severity() Severity {
	s, ok := severities[c]
	if !ok {
		panic(fmt.Sprintf("diag: code %d has no registered severity", int(c)))
	}
	return s
}

// String renders the code in its external FAB-prefixed form, e.g. FAB202.
func (c Code) String() string {
	return fmt.Sprintf("FAB%03d", int(c))
}

// MarshalText serializes the code in its external form.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
