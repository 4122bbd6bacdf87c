package hcladapter

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
)

// attrValue evaluates an attribute to a cty value. World sources are static:
// no variables, no functions, so evaluation uses a nil EvalContext.
func attrValue(attrs hcl.Attributes, name string, diags *diag.List) (cty.Value, ast.Span, bool) {
	attr, ok := attrs[name]
	if !ok {
		return cty.NilVal, ast.Span{}, false
	}
	sp := spanOf(attr.Expr.Range())
	v, hclDiags := attr.Expr.Value(nil)
	if hclDiags.HasErrors() {
		appendHCLDiags(diags, hclDiags)
		return cty.NilVal, sp, false
	}
	return v, sp, true
}

func attrString(attrs hcl.Attributes, name string, diags *diag.List) (string, ast.Span, bool) {
	v, sp, ok := attrValue(attrs, name, diags)
	if !ok {
		return "", sp, false
	}
	conv, err := convert.Convert(v, cty.String)
	if err != nil || conv.IsNull() {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "attribute %q must be a string", name)
		return "", sp, false
	}
	return conv.AsString(), sp, true
}

func attrBool(attrs hcl.Attributes, name string, diags *diag.List) (bool, bool) {
	v, sp, ok := attrValue(attrs, name, diags)
	if !ok {
		return false, false
	}
	conv, err := convert.Convert(v, cty.Bool)
	if err != nil || conv.IsNull() {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "attribute %q must be a bool", name)
		return false, false
	}
	return conv.True(), true
}

func attrInt64(attrs hcl.Attributes, name string, diags *diag.List) (*int64, bool) {
	v, sp, ok := attrValue(attrs, name, diags)
	if !ok {
		return nil, false
	}
	conv, err := convert.Convert(v, cty.Number)
	if err != nil || conv.IsNull() {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "attribute %q must be a number", name)
		return nil, false
	}
	i, acc := conv.AsBigFloat().Int64()
	if acc != 0 {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "attribute %q must be an integer", name)
		return nil, false
	}
	return &i, true
}

// attrStringList accepts a list or tuple of strings.
func attrStringList(attrs hcl.Attributes, name string, diags *diag.List) ([]string, ast.Span, bool) {
	v, sp, ok := attrValue(attrs, name, diags)
	if !ok {
		return nil, sp, false
	}
	if v.IsNull() || !v.CanIterateElements() {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "attribute %q must be a list of strings", name)
		return nil, sp, false
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		conv, err := convert.Convert(ev, cty.String)
		if err != nil || conv.IsNull() {
			diags.Add(diag.CodeBadAttribute, posOf(sp), "attribute %q must contain only strings", name)
			return nil, sp, false
		}
		out = append(out, conv.AsString())
	}
	return out, sp, true
}

// attrRef reads an attribute as a by-name reference.
func attrRef(attrs hcl.Attributes, name string, diags *diag.List) *ast.Ref {
	s, sp, ok := attrString(attrs, name, diags)
	if !ok {
		return nil
	}
	return &ast.Ref{Raw: s, Span: sp}
}

// requireString reports a missing required attribute against the block span.
func requireString(attrs hcl.Attributes, name string, block ast.Span, what string, diags *diag.List) (string, bool) {
	if _, ok := attrs[name]; !ok {
		diags.Add(diag.CodeBadAttribute, posOf(block), "%s requires attribute %q", what, name)
		return "", false
	}
	s, _, ok := attrString(attrs, name, diags)
	return s, ok
}

// sortedAttrs returns a body's attributes ordered by source position, so that
// free-form property blocks keep their declaration order downstream.
func sortedAttrs(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Range, out[j].Range
		if ri.Start.Line != rj.Start.Line {
			return ri.Start.Line < rj.Start.Line
		}
		return ri.Start.Column < rj.Start.Column
	})
	return out
}
