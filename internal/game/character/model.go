// Package character defines the collected character entity and the
// attribute snapshot the rules engine evaluates against.
package character

import (
	"slices"
	"strings"

	"github.com/cory-johannsen/vennt/internal/game/ability"
)

// Entity types.
const (
	TypeCharacter = "CHARACTER"
	TypeCog       = "COG"
)

// GiftNone is the sentinel gift meaning "no gift chosen".
const GiftNone = "None"

// Gifts lists every selectable gift, GiftNone included.
var Gifts = []string{
	"Alertness",
	"Craft",
	"Alacrity",
	"Finesse",
	"Mind",
	"Magic",
	"Rage",
	"Science",
	"Charm",
	GiftNone,
}

// ValidGift reports whether g is empty (unset) or one of Gifts.
func ValidGift(g string) bool {
	return g == "" || slices.Contains(Gifts, g)
}

// Attribute is the current value of a stat and its derived maximum.
// Max is zero for stats without a max_ counterpart.
type Attribute struct {
	Val float64 `json:"val" yaml:"val"`
	Max float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// AttributeMap is an immutable per-evaluation snapshot of attributes keyed
// by name (str, hp, mp, ...).
type AttributeMap map[string]Attribute

// OtherFields holds the non-numeric character selections the rules read.
type OtherFields struct {
	Gift       string `json:"gift,omitempty" yaml:"gift,omitempty"`
	SecondGift string `json:"second_gift,omitempty" yaml:"second_gift,omitempty"`
}

// Entity is the base record of a character or cog.
type Entity struct {
	ID          string             `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string             `json:"name" yaml:"name"`
	Type        string             `json:"type" yaml:"type"`
	Owner       string             `json:"owner,omitempty" yaml:"owner,omitempty"`
	Public      bool               `json:"public,omitempty" yaml:"public,omitempty"`
	Attributes  map[string]float64 `json:"attributes" yaml:"attributes"`
	OtherFields OtherFields        `json:"other_fields" yaml:"other_fields"`
}

// AttributeMap derives the attribute snapshot from the flat attribute
// record: every "x" paired with "max_x" becomes {Val: x, Max: max_x}.
// Entries prefixed with "max_" are not attributes on their own.
//
// Postcondition: Returns a non-nil map.
func (e *Entity) AttributeMap() AttributeMap {
	out := make(AttributeMap, len(e.Attributes))
	for name, val := range e.Attributes {
		if strings.HasPrefix(name, "max_") {
			continue
		}
		attr := Attribute{Val: val}
		if maxVal, ok := e.Attributes["max_"+name]; ok {
			attr.Max = maxVal
		}
		out[name] = attr
	}
	return out
}

// Item is an owned inventory entry.
type Item struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Desc   string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Bulk   int    `json:"bulk,omitempty" yaml:"bulk,omitempty"`
	Active bool   `json:"active,omitempty" yaml:"active,omitempty"`
}

// Text is a keyed prose block (DESC, BACKSTORY, NOTES, ...).
type Text struct {
	Key    string `json:"key" yaml:"key"`
	Text   string `json:"text" yaml:"text"`
	Public bool   `json:"public,omitempty" yaml:"public,omitempty"`
}

// Flux is a quest or journal entry.
type Flux struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

// CollectedEntity is a full character: the base entity plus everything it owns.
type CollectedEntity struct {
	Entity    Entity            `json:"entity" yaml:"entity"`
	Abilities []ability.Ability `json:"abilities" yaml:"abilities"`
	Items     []Item            `json:"items,omitempty" yaml:"items,omitempty"`
	Text      []Text            `json:"text,omitempty" yaml:"text,omitempty"`
	Flux      []Flux            `json:"flux,omitempty" yaml:"flux,omitempty"`
}

// Gifts returns the primary and secondary gift selections, skipping unset
// slots and GiftNone.
func (c *CollectedEntity) Gifts() []string {
	var out []string
	for _, g := range []string{c.Entity.OtherFields.Gift, c.Entity.OtherFields.SecondGift} {
		if g != "" && g != GiftNone {
			out = append(out, g)
		}
	}
	return out
}
