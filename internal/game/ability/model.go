// Package ability defines the ability data model, the use-criteria grammar,
// and the ability catalog loaded from YAML content files.
package ability

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Resource names used as CostMap keys.
const (
	ResourceHP      = "hp"
	ResourceMP      = "mp"
	ResourceVim     = "vim"
	ResourceHero    = "hero"
	ResourcePassive = "passive"
)

// CostValue is one CostMap entry: either a numeric amount or a boolean flag.
type CostValue struct {
	Amount float64
	IsFlag bool
	Flag   bool
}

// Amount returns a numeric CostValue.
func Amount(n float64) CostValue {
	return CostValue{Amount: n}
}

// Flag returns a boolean CostValue.
func Flag(b bool) CostValue {
	return CostValue{IsFlag: true, Flag: b}
}

// Number returns the numeric weight of the entry. A set flag counts as 1.
func (v CostValue) Number() float64 {
	if v.IsFlag {
		if v.Flag {
			return 1
		}
		return 0
	}
	return v.Amount
}

// Truthy reports whether the entry is a set flag or a nonzero amount.
func (v CostValue) Truthy() bool {
	return v.Number() != 0
}

// MarshalJSON encodes flags as JSON booleans and amounts as numbers.
func (v CostValue) MarshalJSON() ([]byte, error) {
	if v.IsFlag {
		return json.Marshal(v.Flag)
	}
	return json.Marshal(v.Amount)
}

// UnmarshalJSON accepts a JSON boolean or number.
func (v *CostValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Flag(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cost value must be a number or boolean, got %s", string(data))
	}
	*v = Amount(n)
	return nil
}

// MarshalYAML encodes flags as YAML booleans and amounts as numbers.
func (v CostValue) MarshalYAML() (any, error) {
	if v.IsFlag {
		return v.Flag, nil
	}
	return v.Amount, nil
}

// UnmarshalYAML accepts a YAML boolean or number scalar.
func (v *CostValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cost value must be a scalar", node.Line)
	}
	if node.ShortTag() == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Flag(b)
		return nil
	}
	var n float64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("line %d: cost value must be a number or boolean: %w", node.Line, err)
	}
	*v = Amount(n)
	return nil
}

// CostMap maps a resource name (hp, mp, vim, hero, passive, ...) to its cost.
type CostMap map[string]CostValue

// Passive reports whether the cost map carries a truthy passive entry.
func (c CostMap) Passive() bool {
	return c[ResourcePassive].Truthy()
}

// Clone returns an independent copy of c. A nil map clones to nil.
func (c CostMap) Clone() CostMap {
	return maps.Clone(c)
}

// CustomFields is the descriptive and rules-bearing field bag of an ability.
// JSON names match the catalog format; criteria field paths address them by
// these names.
type CustomFields struct {
	Activation     string            `json:"activation,omitempty" yaml:"activation,omitempty"`
	BuildDC        int               `json:"build_dc,omitempty" yaml:"build_dc,omitempty"`
	BuildTime      string            `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	CastDL         []int             `json:"cast_dl,omitempty" yaml:"cast_dl,omitempty"`
	Cost           CostMap           `json:"cost,omitempty" yaml:"cost,omitempty"`
	DC             string            `json:"dc,omitempty" yaml:"dc,omitempty"`
	Expedited      []string          `json:"expedited,omitempty" yaml:"expedited,omitempty"`
	Flavor         string            `json:"flavor,omitempty" yaml:"flavor,omitempty"`
	Info           string            `json:"info,omitempty" yaml:"info,omitempty"`
	Keys           map[string]string `json:"keys,omitempty" yaml:"keys,omitempty"`
	MPCost         []int             `json:"mp_cost,omitempty" yaml:"mp_cost,omitempty"`
	NotReq         bool              `json:"not_req,omitempty" yaml:"not_req,omitempty"`
	PartialUnlocks string            `json:"partial_unlocks,omitempty" yaml:"partial_unlocks,omitempty"`
	Path           string            `json:"path,omitempty" yaml:"path,omitempty"`
	Prereq         string            `json:"prereq,omitempty" yaml:"prereq,omitempty"`
	Purchase       string            `json:"purchase,omitempty" yaml:"purchase,omitempty"`
	Range          string            `json:"range,omitempty" yaml:"range,omitempty"`
	Req            string            `json:"req,omitempty" yaml:"req,omitempty"`
	TimesTaken     int               `json:"times_taken,omitempty" yaml:"times_taken,omitempty"`
	Unlocks        string            `json:"unlocks,omitempty" yaml:"unlocks,omitempty"`
}

// Fields lists every known CustomFields name, in catalog order.
var Fields = []string{
	"activation",
	"build_dc",
	"build_time",
	"cast_dl",
	"cost",
	"dc",
	"expedited",
	"flavor",
	"info",
	"keys",
	"mp_cost",
	"not_req",
	"partial_unlocks",
	"path",
	"prereq",
	"purchase",
	"range",
	"req",
	"times_taken",
	"unlocks",
}

// Clone returns a deep copy of f. A nil receiver clones to nil.
func (f *CustomFields) Clone() *CustomFields {
	if f == nil {
		return nil
	}
	out := *f
	out.CastDL = slices.Clone(f.CastDL)
	out.Cost = f.Cost.Clone()
	out.Expedited = slices.Clone(f.Expedited)
	out.Keys = maps.Clone(f.Keys)
	out.MPCost = slices.Clone(f.MPCost)
	return &out
}

// AdjustAbilityCost is a flat delta applied to the purchase cost of other
// abilities.
type AdjustAbilityCost struct {
	AdjustCost float64 `json:"adjust_cost" yaml:"adjust_cost"`
}

// CriteriaBenefit is a bonus an ability grants to other abilities whose
// evaluation of Criteria succeeds.
type CriteriaBenefit struct {
	Criteria          Node               `json:"criteria" yaml:"criteria"`
	AdjustAbilityCost *AdjustAbilityCost `json:"adjust_ability_cost,omitempty" yaml:"adjust_ability_cost,omitempty"`
}

// Uses describes the side effects an owned ability grants.
type Uses struct {
	AdjustAbilityCost *AdjustAbilityCost `json:"adjust_ability_cost,omitempty" yaml:"adjust_ability_cost,omitempty"`
	CriteriaBenefits  []CriteriaBenefit  `json:"criteria_benefits,omitempty" yaml:"criteria_benefits,omitempty"`
}

// GrantsCostAdjustment reports whether u carries a flat or criteria-gated
// cost adjustment.
func (u *Uses) GrantsCostAdjustment() bool {
	return u != nil && (u.AdjustAbilityCost != nil || len(u.CriteriaBenefits) > 0)
}

// Clone returns a deep copy of u. A nil receiver clones to nil.
func (u *Uses) Clone() *Uses {
	if u == nil {
		return nil
	}
	out := &Uses{}
	if u.AdjustAbilityCost != nil {
		adj := *u.AdjustAbilityCost
		out.AdjustAbilityCost = &adj
	}
	if u.CriteriaBenefits != nil {
		out.CriteriaBenefits = make([]CriteriaBenefit, len(u.CriteriaBenefits))
		for i, b := range u.CriteriaBenefits {
			out.CriteriaBenefits[i] = CriteriaBenefit{Criteria: b.Criteria.Clone()}
			if b.AdjustAbilityCost != nil {
				adj := *b.AdjustAbilityCost
				out.CriteriaBenefits[i].AdjustAbilityCost = &adj
			}
		}
	}
	return out
}

// Ability is a purchasable or usable skill or spell.
//
// ID is empty for catalog definitions and set for abilities owned by a
// character.
type Ability struct {
	ID           string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string        `json:"name" yaml:"name"`
	Effect       string        `json:"effect,omitempty" yaml:"effect,omitempty"`
	Active       bool          `json:"active,omitempty" yaml:"active,omitempty"`
	Comment      string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	CustomFields *CustomFields `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
	Uses         *Uses         `json:"uses,omitempty" yaml:"uses,omitempty"`
}

// Fields returns the ability's custom field bag, or an empty bag when unset.
//
// Postcondition: Returns a non-nil pointer; callers must not mutate it.
func (a *Ability) Fields() *CustomFields {
	if a == nil || a.CustomFields == nil {
		return &CustomFields{}
	}
	return a.CustomFields
}

// Keys returns the ability's named lookup values, or nil when unset.
func (a *Ability) Keys() map[string]string {
	return a.Fields().Keys
}

// Purchase returns the raw purchase string, or "" when unset.
func (a *Ability) Purchase() string {
	return a.Fields().Purchase
}

// Path returns the path grouping name, or "" when unset.
func (a *Ability) Path() string {
	return a.Fields().Path
}

// SPFunded reports whether the purchase string encodes an SP cost.
func (a *Ability) SPFunded() bool {
	return strings.Contains(a.Purchase(), "sp")
}

// Clone returns a deep copy of a.
func (a *Ability) Clone() Ability {
	out := *a
	out.CustomFields = a.CustomFields.Clone()
	out.Uses = a.Uses.Clone()
	return out
}

// Snapshot returns the JSON encoding of a, the form criteria field paths and
// Lua predicates observe.
//
// Postcondition: Returns valid JSON; encoding failures yield "{}".
func (a *Ability) Snapshot() []byte {
	data, err := json.Marshal(a)
	if err != nil {
		return []byte("{}")
	}
	return data
}
