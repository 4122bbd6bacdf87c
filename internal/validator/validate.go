package validator

import (
	"context"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/facts"
	"github.com/vk/fablec/internal/symtab"
)

// Choice nesting thresholds. The warning fires strictly below the error so
// authors get a nudge before the hard stop.
const (
	nestingWarnDepth  = 3
	nestingErrorDepth = 6
)

// Validate runs every check against the linked table and extracted facts.
// set and idx may be nil when fact extraction was skipped or failed; the
// fact-based checks degrade to no-ops in that case and everything else
// still runs.
func Validate(ctx context.Context, tab *symtab.Table, set *facts.Set, idx *facts.PropertyDependencyIndex) diag.List {
	logger := ctxlog.FromContext(ctx)
	v := &validator{tab: tab, set: set, idx: idx}

	v.checkSchemas()
	v.checkEntities()
	v.checkConditionTypes()
	v.checkEffectValues()
	v.checkTargets()
	v.checkNesting()

	// Structural static-analysis checks; each stands alone.
	v.checkReachability()
	v.checkImpossibleGuards()
	v.checkDeadEnds()
	v.checkSectionExitShadow()
	v.checkReadNeverWritten()
	v.checkWrittenNeverRead()
	v.checkOrphanSections()
	v.checkStuckPhases()
	v.checkEmptySelects()

	logger.Debug("validation complete",
		"diagnostics", len(v.diags),
		"errors", len(v.diags.Errors()),
	)
	return v.diags
}

type validator struct {
	tab   *symtab.Table
	set   *facts.Set
	idx   *facts.PropertyDependencyIndex
	diags diag.List
}

// checkTargets enforces the specific-entity XOR type-class rule on actions.
// Neither being set is a meaningful default (an untargeted action), not an
// error.
func (v *validator) checkTargets() {
	for _, sym := range v.tab.Actions.All() {
		a := sym.Action
		if a.Entity != nil && a.EntityType != nil {
			v.diags.Add(diag.CodeTargetConflict, posOf(sym.Span),
				"action %q targets both an entity and an entity type; pick one", sym.Name)
		}
	}
}

// checkNesting walks each section's choice tree with an explicit
// depth-counted stack, so the thresholds apply deterministically no matter
// how the call stack behaves.
func (v *validator) checkNesting() {
	type frame struct {
		choice *ast.ChoiceDecl
		depth  int
	}
	for _, sym := range v.tab.Sections.All() {
		var stack []frame
		for _, c := range sym.Section.Choices {
			stack = append(stack, frame{c, 1})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch {
			case f.depth > nestingErrorDepth:
				v.diags.Add(diag.CodeNestingTooDeep, posOf(f.choice.Span),
					"choice nesting depth %d exceeds the limit of %d", f.depth, nestingErrorDepth)
			case f.depth > nestingWarnDepth:
				v.diags.Add(diag.CodeNestingDeep, posOf(f.choice.Span),
					"choice nesting depth %d; deeper than %d is hard to follow", f.depth, nestingWarnDepth)
			}
			for _, child := range f.choice.Choices {
				stack = append(stack, frame{child, f.depth + 1})
			}
		}
	}
}

func posOf(sp ast.Span) diag.Pos {
	return diag.Pos{File: sp.File, Line: sp.Line, Column: sp.Column}
}
