package rules

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
)

// DefaultXPCost returns the unadjusted XP purchase cost of a: the leading
// integer of its purchase string. Abilities with no purchase string, an SP
// purchase, a non-numeric purchase, or a name on the free list cost 0.
func (e *Engine) DefaultXPCost(a *ability.Ability) int {
	purchase := a.Purchase()
	if purchase == "" || strings.Contains(purchase, "sp") {
		return 0
	}
	if _, free := e.free[a.Name]; free {
		return 0
	}
	n, ok := parseInt(purchase)
	if !ok {
		return 0
	}
	return int(n)
}

// DefaultXPCost returns the unadjusted XP cost of a under the default Engine.
func DefaultXPCost(a *ability.Ability) int {
	return defaultEngine.DefaultXPCost(a)
}

// ActualXPCost returns what entity would pay in XP for a. The default cost is
// halved once when either of the entity's gifts appears in a's expedited
// list, then every cost adjustment granted by the entity's owned abilities
// is added. The result may be fractional or negative.
//
// A nil entity yields DefaultXPCost unchanged.
func (e *Engine) ActualXPCost(a *ability.Ability, attrs character.AttributeMap, entity *character.CollectedEntity) float64 {
	cost := float64(e.DefaultXPCost(a))
	if entity == nil {
		return cost
	}
	if expedited(a, entity) {
		cost /= 2
	}
	return cost + e.CostAdjustment(a, attrs, entity)
}

// ActualXPCost returns what entity would pay for a under the default Engine.
func ActualXPCost(a *ability.Ability, attrs character.AttributeMap, entity *character.CollectedEntity) float64 {
	return defaultEngine.ActualXPCost(a, attrs, entity)
}

func expedited(a *ability.Ability, entity *character.CollectedEntity) bool {
	list := a.Fields().Expedited
	for _, gift := range entity.Gifts() {
		if slices.Contains(list, gift) {
			return true
		}
	}
	return false
}

// CostAdjustment sums the cost deltas entity's owned abilities grant to
// target: every flat adjust_ability_cost, plus each criteria benefit whose
// criteria hold with target as the evaluated ability and the owning ability
// as the key source.
func (e *Engine) CostAdjustment(target *ability.Ability, attrs character.AttributeMap, entity *character.CollectedEntity) float64 {
	if entity == nil {
		return 0
	}
	var total float64
	for i := range entity.Abilities {
		granting := &entity.Abilities[i]
		if !granting.Uses.GrantsCostAdjustment() {
			continue
		}
		if adj := granting.Uses.AdjustAbilityCost; adj != nil {
			total += adj.AdjustCost
		}
		for _, benefit := range granting.Uses.CriteriaBenefits {
			if benefit.AdjustAbilityCost == nil {
				continue
			}
			if e.Evaluate(target, benefit.Criteria.Criteria, granting, attrs) {
				total += benefit.AdjustAbilityCost.AdjustCost
			}
		}
	}
	if total != 0 {
		e.logger.Debug("cost adjusted",
			zap.String("ability", target.Name),
			zap.Float64("adjustment", total),
		)
	}
	return total
}
