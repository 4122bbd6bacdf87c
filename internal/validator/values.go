package validator

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
)

// schemaType maps the three declared property type names onto cty types.
func schemaType(name string) (cty.Type, bool) {
	switch name {
	case "string":
		return cty.String, true
	case "number":
		return cty.Number, true
	case "bool":
		return cty.Bool, true
	default:
		return cty.NilType, false
	}
}

// checkSchemas validates every type declaration: known property types,
// defaults and enum values inside their own schema, coherent ranges.
func (v *validator) checkSchemas() {
	for _, sym := range v.tab.Types.All() {
		for _, p := range sym.Type.Properties {
			want, known := schemaType(p.Type)
			if !known {
				v.diags.Add(diag.CodeUnknownSchemaType, posOf(p.Span),
					"property %q has unknown type %q; expected string, number or bool", p.Name, p.Type)
				continue
			}
			if p.Default != cty.NilVal {
				v.checkAgainstSchema(p, p.Default, p.Span, "default of property "+p.Name)
			}
			for _, ev := range p.Values {
				if !convertible(ev, want) {
					v.diags.Add(diag.CodeTypeMismatch, posOf(p.Span),
						"enum value of property %q does not match its type %q", p.Name, p.Type)
				}
			}
			if (p.Min != nil || p.Max != nil) && want != cty.Number {
				v.diags.Add(diag.CodeTypeMismatch, posOf(p.Span),
					"min/max bounds apply only to number properties, not %q", p.Type)
			}
			if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
				v.diags.Add(diag.CodeRangeViolation, posOf(p.Span),
					"property %q declares min %d greater than max %d", p.Name, *p.Min, *p.Max)
			}
		}
	}
}

// checkEntities validates each entity's initial property values against its
// declared type's schema.
func (v *validator) checkEntities() {
	for _, sym := range v.tab.Entities.All() {
		t := v.tab.EntityType(sym.Entity)
		if t == nil {
			continue
		}
		for _, pv := range sym.Entity.Props {
			decl := t.Property(pv.Name)
			if decl == nil {
				// The linker reports unknown properties on references; an
				// initial value for an undeclared property is the same
				// mistake caught at declaration time.
				v.diags.Add(diag.CodeTypeMismatch, posOf(pv.Span),
					"entity %q sets property %q, which type %q does not declare", sym.Name, pv.Name, t.Name)
				continue
			}
			v.checkAgainstSchema(decl, pv.Value, pv.Span, "property "+pv.Name+" of entity "+sym.Name)
		}
	}
}

// checkAgainstSchema enforces type, enum membership and numeric range for
// one concrete value.
func (v *validator) checkAgainstSchema(decl *ast.PropertyDecl, val cty.Value, sp ast.Span, what string) {
	want, known := schemaType(decl.Type)
	if !known {
		return // already reported by checkSchemas
	}
	conv, err := convert.Convert(val, want)
	if err != nil || conv.IsNull() {
		v.diags.Add(diag.CodeTypeMismatch, posOf(sp),
			"%s must be of type %q", what, decl.Type)
		return
	}
	if len(decl.Values) > 0 && !inEnum(conv, decl.Values, want) {
		v.diags.Add(diag.CodeEnumViolation, posOf(sp),
			"%s is not one of the declared values", what)
		return
	}
	if want == cty.Number {
		f := conv.AsBigFloat()
		if decl.Min != nil && f.Cmp(bigInt(*decl.Min)) < 0 {
			v.diags.Add(diag.CodeRangeViolation, posOf(sp),
				"%s is below the declared minimum %d", what, *decl.Min)
		}
		if decl.Max != nil && f.Cmp(bigInt(*decl.Max)) > 0 {
			v.diags.Add(diag.CodeRangeViolation, posOf(sp),
				"%s is above the declared maximum %d", what, *decl.Max)
		}
	}
}

// checkConditionTypes verifies every condition literal against the
// property's declared type, and that ordering comparisons apply only to
// numbers. Enum and range conflicts inside guards are the impossible-guard
// check's concern, not a type error.
func (v *validator) checkConditionTypes() {
	v.eachCondition(func(c *ast.Condition, _ site) {
		decl := v.propertyDecl(c)
		if decl == nil {
			return
		}
		want, known := schemaType(decl.Type)
		if !known {
			return
		}
		if !convertible(c.Value, want) {
			v.diags.Add(diag.CodeTypeMismatch, posOf(c.Span),
				"condition compares property %q of type %q against a %s literal",
				c.Property, decl.Type, ctyTypeName(c.Value.Type()))
			return
		}
		if isOrdering(c.Op) && want != cty.Number {
			v.diags.Add(diag.CodeTypeMismatch, posOf(c.Span),
				"ordering comparison %s applies only to number properties", c.Op)
		}
	})
}

// checkEffectValues verifies assignment literals against the target
// property's schema.
func (v *validator) checkEffectValues() {
	v.eachEffect(func(eff *ast.Effect, _ site) {
		if eff.Op != ast.EffectAssign || eff.Expr != "" {
			return
		}
		t := v.tab.SubjectType(eff.Target)
		if t == nil {
			return
		}
		decl := t.Property(eff.Property)
		if decl == nil {
			return // linker reported it
		}
		v.checkAgainstSchema(decl, eff.Value, eff.Span, "assignment to "+eff.Property)
	})
}

// propertyDecl resolves the schema of a condition's property, or nil when
// it cannot be known statically.
func (v *validator) propertyDecl(c *ast.Condition) *ast.PropertyDecl {
	t := v.tab.SubjectType(c.Subject)
	if t == nil {
		return nil
	}
	return t.Property(c.Property)
}

func convertible(val cty.Value, want cty.Type) bool {
	conv, err := convert.Convert(val, want)
	return err == nil && !conv.IsNull()
}

func inEnum(val cty.Value, enum []cty.Value, want cty.Type) bool {
	for _, ev := range enum {
		conv, err := convert.Convert(ev, want)
		if err != nil {
			continue
		}
		if val.Equals(conv).True() {
			return true
		}
	}
	return false
}

func isOrdering(op ast.CompareOp) bool {
	switch op {
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return true
	default:
		return false
	}
}

func ctyTypeName(t cty.Type) string {
	switch t {
	case cty.String:
		return "string"
	case cty.Number:
		return "number"
	case cty.Bool:
		return "bool"
	default:
		return t.FriendlyName()
	}
}
