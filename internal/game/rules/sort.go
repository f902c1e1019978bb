package rules

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cory-johannsen/vennt/internal/game/ability"
)

// UncostedPathCost is the ordering weight of a path none of whose abilities
// has a numeric purchase.
const UncostedPathCost = 5000

// SortPaths returns the distinct paths of the named abilities ordered by
// their cheapest numeric purchase, ascending. Ties order by path name, so the
// result depends only on the set of abilities, not their order.
func SortPaths(abilities []ability.Ability) []string {
	costs := make(map[string]float64)
	var order []string
	for i := range abilities {
		a := &abilities[i]
		path := a.Path()
		if a.Name == "" || path == "" {
			continue
		}
		cost := float64(UncostedPathCost)
		if n, ok := parseInt(a.Purchase()); ok {
			cost = n
		}
		if cur, seen := costs[path]; seen {
			costs[path] = min(cur, cost)
			continue
		}
		costs[path] = cost
		order = append(order, path)
	}
	slices.SortFunc(order, func(p, q string) int {
		if c := cmp.Compare(costs[p], costs[q]); c != 0 {
			return c
		}
		return strings.Compare(p, q)
	})
	return order
}

type sortKey struct {
	passive  bool
	spFunded bool
	pathRank int
	cost     float64
}

func (k sortKey) compare(o sortKey) int {
	if c := compareBool(k.passive, o.passive); c != 0 {
		return c
	}
	if c := compareBool(k.spFunded, o.spFunded); c != 0 {
		return c
	}
	if c := cmp.Compare(k.pathRank, o.pathRank); c != 0 {
		return c
	}
	return cmp.Compare(k.cost, o.cost)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// SortAbilities returns the named abilities in display order:
//
//  1. non-passive before passive;
//  2. among passives, XP purchases before SP purchases;
//  3. by path rank from SortPaths, pathless abilities last;
//  4. by numeric purchase, ascending, non-numeric as 0.
//
// Abilities with no name are dropped. Equal abilities keep input order, and
// sorting a sorted list returns it unchanged. The returned elements share
// field storage with the input.
func SortAbilities(abilities []ability.Ability) []ability.Ability {
	paths := SortPaths(abilities)
	rank := make(map[string]int, len(paths))
	for i, p := range paths {
		rank[p] = i
	}

	type keyed struct {
		key sortKey
		a   ability.Ability
	}
	items := make([]keyed, 0, len(abilities))
	for i := range abilities {
		a := &abilities[i]
		if a.Name == "" {
			continue
		}
		items = append(items, keyed{key: keyOf(a, rank, len(paths)), a: *a})
	}
	slices.SortStableFunc(items, func(x, y keyed) int {
		return x.key.compare(y.key)
	})

	out := make([]ability.Ability, len(items))
	for i, it := range items {
		out[i] = it.a
	}
	return out
}

func keyOf(a *ability.Ability, rank map[string]int, pathless int) sortKey {
	f := a.Fields()
	k := sortKey{
		passive:  f.Cost.Passive() || strings.EqualFold(f.Activation, ability.ResourcePassive),
		pathRank: pathless,
	}
	k.spFunded = k.passive && a.SPFunded()
	if r, ok := rank[f.Path]; ok {
		k.pathRank = r
	}
	if n, ok := parseInt(f.Purchase); ok {
		k.cost = n
	}
	return k
}
