package validator

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
)

// checkImpossibleGuards flags guards that can never hold, judged purely
// against the declared property schemas:
//
//   - an equality against an enum property whose literal is outside the
//     enum domain,
//   - a numeric comparison that no value inside the declared min/max range
//     can satisfy,
//   - two equalities on the same property with different literals inside
//     one AND list.
//
// An OR list is impossible only when every alternative is.
func (v *validator) checkImpossibleGuards() {
	for _, sym := range v.tab.Exits.All() {
		if c := sym.Exit.When; c != nil {
			if reason := v.condImpossible(c); reason != "" {
				v.reportImpossible(c.Span, "exit", sym.ID, reason)
			}
		}
	}
	for _, sym := range v.tab.Choices.All() {
		v.checkGuardSet(sym.Choice.When, "choice", sym.ID)
	}
	for _, sym := range v.tab.Actions.All() {
		v.checkGuardSet(sym.Action.When, "action", sym.ID)
	}
	for _, sym := range v.tab.Rules.All() {
		if sel := sym.Rule.Select; sel != nil {
			v.checkGuardSet(sel.Where, "select filter of rule", sym.ID)
		}
	}
	for _, sym := range v.tab.Phases.All() {
		if c := sym.Phase.Advance; c != nil {
			if reason := v.condImpossible(c); reason != "" {
				v.reportImpossible(c.Span, "phase advance", sym.ID, reason)
			}
		}
	}
}

func (v *validator) checkGuardSet(cs *ast.ConditionSet, what, id string) {
	if cs == nil {
		return
	}
	if len(cs.Any) > 0 {
		// Every alternative must be individually impossible before the
		// whole disjunction is.
		var last string
		for _, c := range cs.Any {
			last = v.condImpossible(c)
			if last == "" {
				return
			}
		}
		v.reportImpossible(cs.Span, what, id, last)
		return
	}
	eq := make(map[string]*ast.Condition)
	for _, c := range cs.All {
		if reason := v.condImpossible(c); reason != "" {
			v.reportImpossible(c.Span, what, id, reason)
			return
		}
		if c.Op != ast.OpEq {
			continue
		}
		key := c.Subject.Raw + "." + c.Property
		if prev, ok := eq[key]; ok && !sameLiteral(prev.Value, c.Value) {
			v.reportImpossible(c.Span, what, id,
				fmt.Sprintf("%s is required to equal two different values at once", key))
			return
		}
		eq[key] = c
	}
}

// condImpossible returns a non-empty reason when the single condition can
// never hold against the property's declared schema.
func (v *validator) condImpossible(c *ast.Condition) string {
	decl := v.propertyDecl(c)
	if decl == nil {
		return ""
	}
	want, ok := schemaType(decl.Type)
	if !ok || !convertible(c.Value, want) {
		return "" // already reported by the type checks
	}
	val, err := convert.Convert(c.Value, want)
	if err != nil {
		return ""
	}
	if c.Op == ast.OpEq && len(decl.Values) > 0 && !inEnum(val, decl.Values, want) {
		return fmt.Sprintf("%s is not one of the allowed values of %s.%s",
			renderLiteralForMessage(val), subjectName(v, c), c.Property)
	}
	if want != cty.Number {
		return ""
	}
	lit := val.AsBigFloat()
	if decl.Min != nil {
		min := bigInt(*decl.Min)
		switch c.Op {
		case ast.OpLt:
			if lit.Cmp(min) <= 0 {
				return fmt.Sprintf("%s.%s can never be below its minimum of %d", subjectName(v, c), c.Property, *decl.Min)
			}
		case ast.OpLe:
			if lit.Cmp(min) < 0 {
				return fmt.Sprintf("%s.%s can never be below its minimum of %d", subjectName(v, c), c.Property, *decl.Min)
			}
		case ast.OpEq:
			if lit.Cmp(min) < 0 {
				return fmt.Sprintf("%s is below the minimum of %s.%s", lit.Text('g', -1), subjectName(v, c), c.Property)
			}
		}
	}
	if decl.Max != nil {
		max := bigInt(*decl.Max)
		switch c.Op {
		case ast.OpGt:
			if lit.Cmp(max) >= 0 {
				return fmt.Sprintf("%s.%s can never exceed its maximum of %d", subjectName(v, c), c.Property, *decl.Max)
			}
		case ast.OpGe:
			if lit.Cmp(max) > 0 {
				return fmt.Sprintf("%s.%s can never exceed its maximum of %d", subjectName(v, c), c.Property, *decl.Max)
			}
		case ast.OpEq:
			if lit.Cmp(max) > 0 {
				return fmt.Sprintf("%s is above the maximum of %s.%s", lit.Text('g', -1), subjectName(v, c), c.Property)
			}
		}
	}
	return ""
}

func (v *validator) reportImpossible(sp ast.Span, what, id, reason string) {
	v.diags.Add(diag.CodeImpossibleGuard, posOf(sp),
		"guard on %s %q can never hold: %s", what, id, reason)
}

func sameLiteral(a, b cty.Value) bool {
	if a == cty.NilVal || b == cty.NilVal {
		return false
	}
	return a.RawEquals(b)
}

func subjectName(v *validator, c *ast.Condition) string {
	if t := v.tab.SubjectType(c.Subject); t != nil {
		return t.Name
	}
	return c.Subject.Raw
}

func renderLiteralForMessage(val cty.Value) string {
	switch val.Type() {
	case cty.String:
		return fmt.Sprintf("%q", val.AsString())
	case cty.Bool:
		if val.True() {
			return "true"
		}
		return "false"
	case cty.Number:
		return val.AsBigFloat().Text('g', -1)
	}
	return val.GoString()
}
