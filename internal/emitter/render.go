package emitter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/document"
)

// renderCondition canonicalizes one condition to its string form. Normal
// fields use single spaces around the operator ("door.open == true");
// compact is the phase-advance embedding, which strips all whitespace
// ("door.open==true").
func (e *emitter) renderCondition(c *ast.Condition, compact bool) string {
	subject, ok := e.refText(c.Subject, "condition subject")
	if !ok {
		return ""
	}
	sep := " "
	if compact {
		sep = ""
	}
	return subject + "." + c.Property + sep + c.Op.String() + sep + renderLiteral(c.Value)
}

// renderConditionSet lowers a guard to its document shape, nil for an
// absent guard. Any survives as the explicit anyOf form.
func (e *emitter) renderConditionSet(cs *ast.ConditionSet) *document.ConditionSet {
	if cs == nil || (len(cs.All) == 0 && len(cs.Any) == 0) {
		return nil
	}
	out := &document.ConditionSet{}
	for _, c := range cs.All {
		if s := e.renderCondition(c, false); s != "" {
			out.All = append(out.All, s)
		}
	}
	for _, c := range cs.Any {
		if s := e.renderCondition(c, false); s != "" {
			out.Any = append(out.Any, s)
		}
	}
	if len(out.All) == 0 && len(out.Any) == 0 {
		return nil
	}
	return out
}

// refText expands a reference for a subject or target position: reserved
// bindings become $actor / $here from the discriminator, everything else
// its compiled identifier.
func (e *emitter) refText(ref *ast.Ref, what string) (string, bool) {
	if ref == nil || ref.Res == nil {
		raw := ""
		sp := ast.Span{}
		if ref != nil {
			raw, sp = ref.Raw, ref.Span
		}
		e.reportUnresolved(raw, what, sp)
		return "", false
	}
	switch ref.Res.Binding {
	case ast.BindActor:
		return "$actor", true
	case ast.BindLocation:
		return "$here", true
	}
	return ref.Res.ID, true
}

// renderLiteral formats a literal for the condition micro-grammar: bare
// booleans, minimally-formatted numbers, single-quoted strings.
func renderLiteral(v cty.Value) string {
	switch v.Type() {
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case cty.String:
		return "'" + strings.ReplaceAll(v.AsString(), "'", "\\'") + "'"
	}
	return fmt.Sprintf("%v", v)
}

// literalValue converts a literal to its JSON-facing Go value.
func literalValue(v cty.Value) any {
	switch v.Type() {
	case cty.Bool:
		return v.True()
	case cty.Number:
		f := v.AsBigFloat()
		if i, acc := f.Int64(); acc == big.Exact {
			return i
		}
		out, _ := f.Float64()
		return out
	case cty.String:
		return v.AsString()
	}
	return nil
}
