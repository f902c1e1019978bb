package rules_test

import (
	"strconv"

	"github.com/cory-johannsen/vennt/internal/game/ability"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func purchasable(name, purchase string) ability.Ability {
	return ability.Ability{Name: name, CustomFields: &ability.CustomFields{Purchase: purchase}}
}
