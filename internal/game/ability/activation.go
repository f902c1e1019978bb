package ability

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// activationOrder fixes the position of the spendable resources; any other
// cost entries follow alphabetically.
var activationOrder = []string{ResourceHP, ResourceMP, ResourceVim, ResourceHero}

// GenerateActivation renders a cost map as activation text, e.g.
// {mp: 3, passive: true} -> "3 Mp, Passive". Numeric entries render as
// "<amount> <Title>", set flags as "<Title>"; unset flags are omitted.
func GenerateActivation(cost CostMap) string {
	caser := cases.Title(language.English)
	parts := make([]string, 0, len(cost))
	for _, key := range orderedCostKeys(cost) {
		v := cost[key]
		title := caser.String(strings.ReplaceAll(key, "_", " "))
		if v.IsFlag {
			if v.Flag {
				parts = append(parts, title)
			}
			continue
		}
		parts = append(parts, strconv.FormatFloat(v.Amount, 'f', -1, 64)+" "+title)
	}
	return strings.Join(parts, ", ")
}

func orderedCostKeys(cost CostMap) []string {
	keys := make([]string, 0, len(cost))
	for _, k := range activationOrder {
		if _, ok := cost[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range cost {
		if !slices.Contains(activationOrder, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}
