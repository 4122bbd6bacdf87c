package hcladapter

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
)

// decodeEffect maps the effect block types onto the closed operation set.
// Returns nil when the block is too malformed to represent.
func decodeEffect(block *hcl.Block, diags *diag.List) *ast.Effect {
	sp := spanOf(block.DefRange)
	attrs, hclDiags := block.Body.JustAttributes()
	appendHCLDiags(diags, hclDiags)

	switch block.Type {
	case "set":
		return decodeSet(attrs, sp, diags)
	case "move":
		eff := &ast.Effect{Op: ast.EffectRelocate, Span: sp}
		eff.Target = requireRef(attrs, "target", sp, "move", diags)
		eff.To = requireRef(attrs, "to", sp, "move", diags)
		return eff
	case "unhide":
		return &ast.Effect{Op: ast.EffectUnhide, Span: sp, Target: requireRef(attrs, "target", sp, "unhide", diags)}
	case "remove":
		return &ast.Effect{Op: ast.EffectRemove, Span: sp, Target: requireRef(attrs, "target", sp, "remove", diags)}
	case "create":
		eff := &ast.Effect{Op: ast.EffectCreate, Span: sp}
		eff.Name, _ = requireString(attrs, "name", sp, "create block", diags)
		eff.TypeRef = requireRef(attrs, "type", sp, "create", diags)
		eff.To = requireRef(attrs, "at", sp, "create", diags)
		return eff
	default:
		return nil
	}
}

// decodeSet handles assignment: a literal value or an arithmetic expression,
// exactly one of the two. The expression is carried as text for the runtime
// to evaluate; the compiler never precomputes it.
func decodeSet(attrs hcl.Attributes, sp ast.Span, diags *diag.List) *ast.Effect {
	eff := &ast.Effect{Op: ast.EffectAssign, Span: sp}
	eff.Target = requireRef(attrs, "target", sp, "set", diags)
	eff.Property, _ = requireString(attrs, "property", sp, "set block", diags)

	_, hasValue := attrs["value"]
	_, hasExpr := attrs["expr"]
	switch {
	case hasValue && hasExpr:
		diags.Add(diag.CodeBadEffect, posOf(sp), "set block takes value or expr, not both")
		return nil
	case hasValue:
		eff.Value, _, _ = attrValue(attrs, "value", diags)
	case hasExpr:
		eff.Expr, _, _ = attrString(attrs, "expr", diags)
	default:
		diags.Add(diag.CodeBadEffect, posOf(sp), "set block requires value or expr")
		return nil
	}
	return eff
}

func requireRef(attrs hcl.Attributes, name string, block ast.Span, what string, diags *diag.List) *ast.Ref {
	if _, ok := attrs[name]; !ok {
		diags.Add(diag.CodeBadEffect, posOf(block), "%s block requires attribute %q", what, name)
		return nil
	}
	return attrRef(attrs, name, diags)
}
