package rules

import (
	"strings"

	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
)

// SpendableResources are the cost keys checked against current attributes.
var SpendableResources = []string{
	ability.ResourceHP,
	ability.ResourceMP,
	ability.ResourceVim,
	ability.ResourceHero,
}

// CanUse reports whether a can be activated right now. additional is merged
// into a's cost first: amounts are summed, an unset entry takes the
// additional amount, and a set flag is left as is.
//
// Toggled (Active) abilities, passive cost maps, and activation text
// mentioning "passive" are never usable. Otherwise every spendable resource
// with a truthy cost must not exceed its current value. Resources the
// character does not track are not checked.
func CanUse(a *ability.Ability, attrs character.AttributeMap, additional map[string]float64) bool {
	f := a.Fields()
	cost := mergeCost(f.Cost, additional)
	if a.Active || cost.Passive() || strings.Contains(strings.ToLower(f.Activation), ability.ResourcePassive) {
		return false
	}
	for _, r := range SpendableResources {
		stat, tracked := attrs[r]
		if !tracked {
			continue
		}
		if c := cost[r]; c.Truthy() && c.Number() > stat.Val {
			return false
		}
	}
	return true
}

func mergeCost(base ability.CostMap, additional map[string]float64) ability.CostMap {
	merged := base.Clone()
	if len(additional) == 0 {
		return merged
	}
	if merged == nil {
		merged = make(ability.CostMap, len(additional))
	}
	for r, amount := range additional {
		cur, ok := merged[r]
		switch {
		case !ok || !cur.Truthy():
			merged[r] = ability.Amount(amount)
		case cur.IsFlag:
		default:
			merged[r] = ability.Amount(cur.Amount + amount)
		}
	}
	return merged
}
