package validator

import (
	"math/big"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/symtab"
)

// site names the construct a condition or effect belongs to, for checks
// that need attribution.
type site struct {
	kind symtab.Kind
	id   string
}

// eachCondition visits every condition in the world in symbol table order:
// exit guards, choice guards, action guards, select filters and phase
// advance expressions.
func (v *validator) eachCondition(fn func(*ast.Condition, site)) {
	for _, sym := range v.tab.Exits.All() {
		if c := sym.Exit.When; c != nil {
			fn(c, site{symtab.KindExit, sym.ID})
		}
	}
	for _, sym := range v.tab.Choices.All() {
		for _, c := range sym.Choice.When.Conditions() {
			fn(c, site{symtab.KindChoice, sym.ID})
		}
	}
	for _, sym := range v.tab.Actions.All() {
		for _, c := range sym.Action.When.Conditions() {
			fn(c, site{symtab.KindAction, sym.ID})
		}
	}
	for _, sym := range v.tab.Rules.All() {
		if sel := sym.Rule.Select; sel != nil {
			for _, c := range sel.Where.Conditions() {
				fn(c, site{symtab.KindRule, sym.ID})
			}
		}
	}
	for _, sym := range v.tab.Phases.All() {
		if c := sym.Phase.Advance; c != nil {
			fn(c, site{symtab.KindPhase, sym.ID})
		}
	}
}

// eachEffect visits every effect in symbol table order.
func (v *validator) eachEffect(fn func(*ast.Effect, site)) {
	for _, sym := range v.tab.Choices.All() {
		for _, eff := range sym.Choice.Effects {
			fn(eff, site{symtab.KindChoice, sym.ID})
		}
	}
	for _, sym := range v.tab.Actions.All() {
		for _, eff := range sym.Action.Effects {
			fn(eff, site{symtab.KindAction, sym.ID})
		}
	}
	for _, sym := range v.tab.Rules.All() {
		for _, eff := range sym.Rule.Effects {
			fn(eff, site{symtab.KindRule, sym.ID})
		}
	}
}

func bigInt(i int64) *big.Float {
	return new(big.Float).SetInt64(i)
}
