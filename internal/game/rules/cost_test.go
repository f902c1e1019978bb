package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
	"github.com/cory-johannsen/vennt/internal/game/rules"
)

func TestDefaultXPCost(t *testing.T) {
	cases := []struct {
		name string
		a    ability.Ability
		want int
	}{
		{"numeric", purchasable("Bolt", "10"), 10},
		{"trailing text", purchasable("Bolt", "25 XP"), 25},
		{"sp purchase", purchasable("Bolt", "100sp"), 0},
		{"non numeric", purchasable("Bolt", "see GM"), 0},
		{"no purchase", ability.Ability{Name: "Bolt"}, 0},
		{"free ability", purchasable("Alchemist's Training", "50"), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rules.DefaultXPCost(&tc.a))
		})
	}
}

func TestDefaultXPCost_ConfiguredFreeList(t *testing.T) {
	e := rules.NewEngine(rules.Config{FreeAbilities: []string{"Basic Training"}}, nil)
	a := purchasable("Basic Training", "10")
	assert.Equal(t, 0, e.DefaultXPCost(&a))

	alch := purchasable("Alchemist's Training", "50")
	assert.Equal(t, 50, e.DefaultXPCost(&alch))
}

func giftedEntity(gift, second string, owned ...ability.Ability) *character.CollectedEntity {
	return &character.CollectedEntity{
		Entity: character.Entity{
			Name:        "Ayla",
			Type:        character.TypeCharacter,
			OtherFields: character.OtherFields{Gift: gift, SecondGift: second},
		},
		Abilities: owned,
	}
}

func TestActualXPCost_NoEntityIsDefault(t *testing.T) {
	a := purchasable("Bolt", "15")
	a.CustomFields.Expedited = []string{"Magic"}
	assert.Equal(t, 15.0, rules.ActualXPCost(&a, nil, nil))
}

func TestActualXPCost_GiftHalvesOnce(t *testing.T) {
	a := purchasable("Bolt", "15")
	a.CustomFields.Expedited = []string{"Magic", "Mind"}

	assert.Equal(t, 7.5, rules.ActualXPCost(&a, nil, giftedEntity("Magic", "")))
	assert.Equal(t, 7.5, rules.ActualXPCost(&a, nil, giftedEntity("Magic", "Mind")))
	assert.Equal(t, 15.0, rules.ActualXPCost(&a, nil, giftedEntity("Rage", "None")))
}

func TestActualXPCost_NoneNeverMatches(t *testing.T) {
	a := purchasable("Bolt", "20")
	a.CustomFields.Expedited = []string{character.GiftNone}
	assert.Equal(t, 20.0, rules.ActualXPCost(&a, nil, giftedEntity(character.GiftNone, character.GiftNone)))
}

func TestActualXPCost_AggregatesAdjustments(t *testing.T) {
	flat := ability.Ability{Name: "Discount", Uses: &ability.Uses{
		AdjustAbilityCost: &ability.AdjustAbilityCost{AdjustCost: -2},
	}}
	fireSchool := ability.Ability{
		Name:         "Fire Affinity",
		CustomFields: &ability.CustomFields{Keys: map[string]string{"path": "Path of Fire"}},
		Uses: &ability.Uses{CriteriaBenefits: []ability.CriteriaBenefit{
			{
				Criteria: node(ability.FieldCriteria{
					Key: "path", Path: []string{"custom_fields", "path"}, Operator: ability.OpEquals,
				}),
				AdjustAbilityCost: &ability.AdjustAbilityCost{AdjustCost: -3},
			},
			{
				Criteria: node(ability.AttrCriteria{Attr: "int", Operator: ability.OpGTE, Value: "100"}),
				AdjustAbilityCost: &ability.AdjustAbilityCost{AdjustCost: -50},
			},
			{Criteria: node(ability.BaseCriteria{Operator: ability.Every})},
		}},
	}
	entity := giftedEntity("", "", flat, fireSchool)
	attrs := character.AttributeMap{"int": {Val: 4}}

	onPath := purchasable("Flame Lash", "20")
	onPath.CustomFields.Path = "Path of Fire"
	assert.Equal(t, 15.0, rules.ActualXPCost(&onPath, attrs, entity))

	offPath := purchasable("Ice Lance", "20")
	offPath.CustomFields.Path = "Path of Ice"
	assert.Equal(t, 18.0, rules.ActualXPCost(&offPath, attrs, entity))
}

func TestCostAdjustment_NilEntity(t *testing.T) {
	a := purchasable("Bolt", "10")
	assert.Zero(t, rules.Default().CostAdjustment(&a, nil, nil))
}

func TestProperty_DefaultXPCostZeroWithoutPurchaseOrWithSP(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[A-Za-z ]{1,12}`).Draw(rt, "name")
		n := rapid.IntRange(0, 10000).Draw(rt, "n")
		suffix := rapid.SampledFrom([]string{"sp", " sp", "sp total"}).Draw(rt, "suffix")

		bare := ability.Ability{Name: name}
		assert.Zero(rt, rules.DefaultXPCost(&bare))

		sp := purchasable(name, itoa(n)+suffix)
		assert.Zero(rt, rules.DefaultXPCost(&sp))
	})
}

func TestProperty_ActualXPCostWithoutEntityIsDefault(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		purchase := rapid.StringMatching(`[0-9]{0,4}[a-z ]{0,3}`).Draw(rt, "purchase")
		a := purchasable("Thing", purchase)
		assert.Equal(rt, float64(rules.DefaultXPCost(&a)), rules.ActualXPCost(&a, character.AttributeMap{}, nil))
	})
}

func TestProperty_GiftHalvingAtMostOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 1000).Draw(rt, "n")
		first := rapid.SampledFrom(character.Gifts).Draw(rt, "gift")
		second := rapid.SampledFrom(character.Gifts).Draw(rt, "second")
		a := purchasable("Thing", itoa(n))
		a.CustomFields.Expedited = []string{first, second}

		got := rules.ActualXPCost(&a, nil, giftedEntity(first, second))
		if first == character.GiftNone && second == character.GiftNone {
			assert.Equal(rt, float64(n), got)
			return
		}
		assert.Equal(rt, float64(n)/2, got)
	})
}
