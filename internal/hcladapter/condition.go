package hcladapter

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
)

// Condition micro-grammar, owned entirely by the front end:
//
//	condition = subject "." property op literal
//	subject   = ident            (entity name, "actor" or "here")
//	op        = "==" | "!=" | "<=" | ">=" | "<" | ">"
//	literal   = "true" | "false" | number | "'" text "'"
//
// Whitespace between tokens is insignificant here; canonical spacing is the
// emitter's concern.

// ops is ordered so two-character operators match before their prefixes.
var ops = []struct {
	text string
	op   ast.CompareOp
}{
	{"==", ast.OpEq},
	{"!=", ast.OpNe},
	{"<=", ast.OpLe},
	{">=", ast.OpGe},
	{"<", ast.OpLt},
	{">", ast.OpGt},
}

// findOp locates the comparison operator: the first occurrence outside a
// quoted literal, longest match at that position. Operator text inside
// single quotes belongs to the literal, never to the grammar.
func findOp(raw string) (int, ast.CompareOp, bool) {
	quoted := false
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\'' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		for _, cand := range ops {
			if strings.HasPrefix(raw[i:], cand.text) {
				return i, cand.op, true
			}
		}
	}
	return -1, ast.OpEq, false
}

// parseCondition parses one condition string. On failure it records a
// diagnostic and returns nil.
func parseCondition(raw string, sp ast.Span, diags *diag.List) *ast.Condition {
	idx, opr, found := findOp(raw)
	if !found {
		diags.Add(diag.CodeBadCondition, posOf(sp), "condition %q has no comparison operator", raw)
		return nil
	}

	lhs := strings.TrimSpace(raw[:idx])
	rhs := strings.TrimSpace(raw[idx+len(opText(opr)):])

	dot := strings.Index(lhs, ".")
	if dot <= 0 || dot == len(lhs)-1 {
		diags.Add(diag.CodeBadCondition, posOf(sp), "condition %q must name subject.property before the operator", raw)
		return nil
	}
	subject := lhs[:dot]
	property := lhs[dot+1:]
	if !isIdent(subject) || !isIdent(property) {
		diags.Add(diag.CodeBadCondition, posOf(sp), "condition %q has a malformed subject or property name", raw)
		return nil
	}

	value, ok := parseLiteral(rhs)
	if !ok {
		diags.Add(diag.CodeBadCondition, posOf(sp), "condition %q has a malformed literal %q", raw, rhs)
		return nil
	}

	return &ast.Condition{
		Subject:  &ast.Ref{Raw: subject, Span: sp},
		Property: property,
		Op:       opr,
		Value:    value,
		Span:     sp,
	}
}

func opText(op ast.CompareOp) string {
	for _, cand := range ops {
		if cand.op == op {
			return cand.text
		}
	}
	return "?"
}

// parseLiteral recognizes bools, numbers and single-quoted strings.
func parseLiteral(s string) (cty.Value, bool) {
	switch s {
	case "":
		return cty.NilVal, false
	case "true":
		return cty.True, true
	case "false":
		return cty.False, true
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return cty.StringVal(s[1 : len(s)-1]), true
	}
	v, err := cty.ParseNumberVal(s)
	if err != nil {
		return cty.NilVal, false
	}
	return v, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// decodeConditionSet reads the paired when / when_any attributes. The two
// shapes are exclusive: an ordered AND list or a single OR alternative.
func decodeConditionSet(attrs hcl.Attributes, diags *diag.List) *ast.ConditionSet {
	all, allSpan, hasAll := conditionList(attrs, "when", diags)
	any, anySpan, hasAny := conditionList(attrs, "when_any", diags)

	if hasAll && hasAny {
		diags.Add(diag.CodeConditionConflict, posOf(anySpan), "when and when_any cannot both be set; pick one shape")
		return nil
	}
	switch {
	case hasAll:
		return &ast.ConditionSet{All: all, Span: allSpan}
	case hasAny:
		return &ast.ConditionSet{Any: any, Span: anySpan}
	default:
		return nil
	}
}

func conditionList(attrs hcl.Attributes, name string, diags *diag.List) ([]*ast.Condition, ast.Span, bool) {
	if _, ok := attrs[name]; !ok {
		return nil, ast.Span{}, false
	}
	raws, sp, ok := attrStringList(attrs, name, diags)
	if !ok {
		return nil, sp, false
	}
	var out []*ast.Condition
	for _, raw := range raws {
		if c := parseCondition(raw, sp, diags); c != nil {
			out = append(out, c)
		}
	}
	return out, sp, true
}

// decodeSingularCondition reads a condition attribute that admits exactly
// zero or one expression (exit guards, phase advance). This shape cannot
// represent an AND list by design.
func decodeSingularCondition(attrs hcl.Attributes, name string, diags *diag.List) *ast.Condition {
	raw, sp, ok := attrString(attrs, name, diags)
	if !ok {
		return nil
	}
	return parseCondition(raw, sp, diags)
}

// parseJump splits an optional "section:" or "exit:" disambiguation prefix
// off a jump target.
func parseJump(raw string, sp ast.Span) *ast.JumpRef {
	switch {
	case strings.HasPrefix(raw, "section:"):
		return &ast.JumpRef{Kind: ast.JumpSection, Raw: strings.TrimPrefix(raw, "section:"), Span: sp}
	case strings.HasPrefix(raw, "exit:"):
		return &ast.JumpRef{Kind: ast.JumpExit, Raw: strings.TrimPrefix(raw, "exit:"), Span: sp}
	default:
		return &ast.JumpRef{Kind: ast.JumpAuto, Raw: raw, Span: sp}
	}
}
