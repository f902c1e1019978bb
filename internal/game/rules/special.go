package rules

import (
	"encoding/json"
	"strings"

	"github.com/cory-johannsen/vennt/internal/game/ability"
)

// isSpell reports whether an ability is a spell: it declares a casting
// difficulty ladder or an MP cost schedule, or it sits on a path containing
// one of markers and costs MP.
func isSpell(markers []string) SpecialFunc {
	return func(a *ability.Ability) bool {
		f := a.Fields()
		if len(f.CastDL) > 0 || len(f.MPCost) > 0 {
			return true
		}
		if f.Path == "" {
			return false
		}
		for _, m := range markers {
			if strings.Contains(f.Path, m) {
				return f.Cost[ability.ResourceMP].Truthy()
			}
		}
		return false
	}
}

// PredicateSource supplies named predicates evaluated outside the engine,
// such as Lua scripts.
type PredicateSource interface {
	// Predicates returns the names of every available predicate.
	Predicates() []string
	// CallPredicate evaluates the named predicate against arg.
	CallPredicate(name string, arg map[string]any) bool
}

// ScriptedSpecials adapts every predicate in src into a SpecialFunc. Each
// predicate receives the decoded JSON snapshot of the target ability.
//
// Precondition: src must not be nil.
// Postcondition: Returns a non-nil map keyed by predicate name.
func ScriptedSpecials(src PredicateSource) map[string]SpecialFunc {
	if src == nil {
		panic("rules.ScriptedSpecials: precondition violated: src must not be nil")
	}
	out := make(map[string]SpecialFunc)
	for _, name := range src.Predicates() {
		name := name // per-iteration copy (go < 1.22 loop semantics)
		out[name] = func(a *ability.Ability) bool {
			var snap map[string]any
			if err := json.Unmarshal(a.Snapshot(), &snap); err != nil {
				return false
			}
			return src.CallPredicate(name, snap)
		}
	}
	return out
}
