package rules

import (
	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
)

// Update pairs an owned ability with its refreshed catalog version.
type Update struct {
	Owned   ability.Ability
	Updated ability.Ability
	// Changed names the fields that drifted, as reported by ChangedFields.
	Changed []string
}

// UsableAbilities returns entity's abilities in display order, keeping only
// those CanUse accepts with no additional cost.
//
// Postcondition: Returns a non-nil slice.
func UsableAbilities(entity *character.CollectedEntity, attrs character.AttributeMap) []ability.Ability {
	out := []ability.Ability{}
	if entity == nil {
		return out
	}
	for _, a := range SortAbilities(entity.Abilities) {
		if CanUse(&a, attrs, nil) {
			out = append(out, a)
		}
	}
	return out
}

// PendingUpdates returns one Update for every owned ability whose catalog
// definition has drifted, in owned order.
func PendingUpdates(entity *character.CollectedEntity, catalog *ability.Catalog) []Update {
	if entity == nil {
		return nil
	}
	var out []Update
	for i := range entity.Abilities {
		owned := &entity.Abilities[i]
		updated, ok := FindNewVersion(owned, catalog)
		if !ok {
			continue
		}
		found, _ := catalog.Find(owned.Name)
		out = append(out, Update{Owned: *owned, Updated: updated, Changed: ChangedFields(owned, found)})
	}
	return out
}

// Entry is one row of a character's ability report.
type Entry struct {
	Ability    ability.Ability
	XPCost     float64
	Usable     bool
	Activation string
}

// Report returns entity's abilities in display order with each one's
// effective XP cost, current usability, and activation text. Activation
// falls back to text generated from the cost map.
func (e *Engine) Report(entity *character.CollectedEntity, attrs character.AttributeMap) []Entry {
	if entity == nil {
		return nil
	}
	sorted := SortAbilities(entity.Abilities)
	out := make([]Entry, 0, len(sorted))
	for i := range sorted {
		a := &sorted[i]
		activation := a.Fields().Activation
		if activation == "" {
			activation = ability.GenerateActivation(a.Fields().Cost)
		}
		out = append(out, Entry{
			Ability:    *a,
			XPCost:     e.ActualXPCost(a, attrs, entity),
			Usable:     CanUse(a, attrs, nil),
			Activation: activation,
		})
	}
	return out
}
