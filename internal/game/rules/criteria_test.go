package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
	"github.com/cory-johannsen/vennt/internal/game/rules"
)

func keyed(keys map[string]string) *ability.Ability {
	return &ability.Ability{Name: "Granter", CustomFields: &ability.CustomFields{Keys: keys}}
}

func node(c ability.Criteria) ability.Node {
	return ability.Node{Criteria: c}
}

func TestEvaluate_AttrGTE(t *testing.T) {
	c := ability.AttrCriteria{Attr: "str", Operator: ability.OpGTE, Value: "10"}
	assert.True(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"str": {Val: 12}}))
	assert.True(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"str": {Val: 10}}))
	assert.False(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"str": {Val: 8}}))
}

func TestEvaluate_AttrMissingFails(t *testing.T) {
	c := ability.AttrCriteria{Attr: "str", Operator: ability.OpGTE, Value: "0"}
	assert.False(t, rules.Evaluate(nil, c, nil, character.AttributeMap{}))
}

func TestEvaluate_AttrEqualsUsesIntegerText(t *testing.T) {
	c := ability.AttrCriteria{Attr: "agi", Operator: ability.OpEquals, Value: "3"}
	assert.True(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"agi": {Val: 3}}))
	c.Value = "3.0"
	assert.False(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"agi": {Val: 3}}))
}

func TestEvaluate_GTEParsesLeadingDigits(t *testing.T) {
	c := ability.AttrCriteria{Attr: "wis", Operator: ability.OpGTE, Value: " 4 points"}
	assert.True(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"wis": {Val: 4}}))
	c.Value = "-2"
	assert.True(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"wis": {Val: -1}}))
	c.Value = "many"
	assert.False(t, rules.Evaluate(nil, c, nil, character.AttributeMap{"wis": {Val: 4}}))
}

func TestEvaluate_Key(t *testing.T) {
	granting := keyed(map[string]string{"school": "Fire"})
	c := ability.KeyCriteria{Key: "school", Operator: ability.OpEquals, Value: "Fire"}
	assert.True(t, rules.Evaluate(nil, c, granting, nil))

	c.Value = "Ice"
	assert.False(t, rules.Evaluate(nil, c, granting, nil))

	c.Key = "missing"
	assert.False(t, rules.Evaluate(nil, c, granting, nil))
	assert.False(t, rules.Evaluate(nil, c, nil, nil))
}

func TestEvaluate_FieldMatchesTargetPath(t *testing.T) {
	granting := keyed(map[string]string{"path": "Path of the Wizard"})
	target := &ability.Ability{Name: "Fireball", CustomFields: &ability.CustomFields{Path: "Path of the Wizard"}}
	c := ability.FieldCriteria{Key: "path", Path: []string{"custom_fields", "path"}, Operator: ability.OpEquals}

	assert.True(t, rules.Evaluate(target, c, granting, nil))

	other := &ability.Ability{Name: "Slash", CustomFields: &ability.CustomFields{Path: "Path of the Blade"}}
	assert.False(t, rules.Evaluate(other, c, granting, nil))
}

func TestEvaluate_FieldNilTargetHolds(t *testing.T) {
	c := ability.FieldCriteria{Key: "absent", Path: []string{"name"}, Operator: ability.OpEquals}
	assert.True(t, rules.Evaluate(nil, c, nil, nil))
}

func TestEvaluate_FieldNonStringFails(t *testing.T) {
	granting := keyed(map[string]string{"dl": "1"})
	target := &ability.Ability{Name: "Bolt", CustomFields: &ability.CustomFields{CastDL: []int{1, 2}}}

	arr := ability.FieldCriteria{Key: "dl", Path: []string{"custom_fields", "cast_dl"}, Operator: ability.OpEquals}
	assert.False(t, rules.Evaluate(target, arr, granting, nil))

	through := ability.FieldCriteria{Key: "dl", Path: []string{"name", "length"}, Operator: ability.OpEquals}
	assert.False(t, rules.Evaluate(target, through, granting, nil))

	missing := ability.FieldCriteria{Key: "dl", Path: []string{"custom_fields", "nope"}, Operator: ability.OpEquals}
	assert.False(t, rules.Evaluate(target, missing, granting, nil))
}

func TestEvaluate_FieldPathSyntaxIsLiteral(t *testing.T) {
	granting := keyed(map[string]string{"k": "v"})
	target := &ability.Ability{Name: "v", CustomFields: &ability.CustomFields{Keys: map[string]string{"a.b": "v", "*": "v"}}}

	dotted := ability.FieldCriteria{Key: "k", Path: []string{"custom_fields", "keys", "a.b"}, Operator: ability.OpEquals}
	assert.True(t, rules.Evaluate(target, dotted, granting, nil))

	star := ability.FieldCriteria{Key: "k", Path: []string{"custom_fields", "keys", "*"}, Operator: ability.OpEquals}
	assert.True(t, rules.Evaluate(target, star, granting, nil))

	wild := ability.FieldCriteria{Key: "k", Path: []string{"na*"}, Operator: ability.OpEquals}
	assert.False(t, rules.Evaluate(target, wild, granting, nil))
}

func TestEvaluate_BaseEveryAndSome(t *testing.T) {
	attrs := character.AttributeMap{"str": {Val: 5}}
	pass := node(ability.AttrCriteria{Attr: "str", Operator: ability.OpGTE, Value: "1"})
	fail := node(ability.AttrCriteria{Attr: "str", Operator: ability.OpGTE, Value: "9"})

	assert.True(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: ability.Every, Tests: []ability.Node{pass, pass}}, nil, attrs))
	assert.False(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: ability.Every, Tests: []ability.Node{pass, fail}}, nil, attrs))
	assert.True(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: ability.Some, Tests: []ability.Node{fail, pass}}, nil, attrs))
	assert.False(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: ability.Some, Tests: []ability.Node{fail}}, nil, attrs))
}

func TestEvaluate_BaseEmptyTests(t *testing.T) {
	assert.True(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: ability.Every}, nil, nil))
	assert.False(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: ability.Some}, nil, nil))
}

func TestEvaluate_NestedBase(t *testing.T) {
	granting := keyed(map[string]string{"school": "Fire"})
	attrs := character.AttributeMap{"int": {Val: 3}}
	c := ability.BaseCriteria{Operator: ability.Every, Tests: []ability.Node{
		node(ability.KeyCriteria{Key: "school", Operator: ability.OpEquals, Value: "Fire"}),
		node(ability.BaseCriteria{Operator: ability.Some, Tests: []ability.Node{
			node(ability.AttrCriteria{Attr: "int", Operator: ability.OpGTE, Value: "5"}),
			node(ability.AttrCriteria{Attr: "int", Operator: ability.OpEquals, Value: "3"}),
		}}),
	}}
	assert.True(t, rules.Evaluate(nil, c, granting, attrs))
}

func TestEvaluate_FailClosed(t *testing.T) {
	attrs := character.AttributeMap{"str": {Val: 5}}
	assert.False(t, rules.Evaluate(nil, ability.UnknownCriteria{Kind: "mystery"}, nil, attrs))
	assert.False(t, rules.Evaluate(nil, nil, nil, attrs))
	assert.False(t, rules.Evaluate(nil, ability.AttrCriteria{Attr: "str", Operator: "lt", Value: "9"}, nil, attrs))
	assert.False(t, rules.Evaluate(nil, ability.BaseCriteria{Operator: "none"}, nil, attrs))

	target := &ability.Ability{Name: "x"}
	assert.False(t, rules.Evaluate(target, ability.SpecialCriteria{Name: "isCantrip"}, nil, attrs))
}

func TestEvaluate_FailClosedLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := rules.NewEngine(rules.DefaultConfig(), zap.New(core))

	assert.False(t, e.Evaluate(nil, ability.UnknownCriteria{Kind: "mystery"}, nil, nil))
	entries := logs.FilterMessage("unknown criteria type").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "mystery", entries[0].ContextMap()["type"])
	}
}

func TestEvaluate_SpecialNilTargetHolds(t *testing.T) {
	assert.True(t, rules.Evaluate(nil, ability.SpecialCriteria{Name: "unknown"}, nil, nil))
}

func TestEvaluate_IsSpell(t *testing.T) {
	isSpell := ability.SpecialCriteria{Name: rules.SpecialIsSpell}
	cases := []struct {
		name string
		cf   *ability.CustomFields
		want bool
	}{
		{"cast dl", &ability.CustomFields{CastDL: []int{1}}, true},
		{"mp schedule", &ability.CustomFields{MPCost: []int{2, 4}}, true},
		{"magic path with mp", &ability.CustomFields{Path: "Path of the Arcana", Cost: ability.CostMap{"mp": ability.Amount(2)}}, true},
		{"magic path zero mp", &ability.CustomFields{Path: "Wizard Path", Cost: ability.CostMap{"mp": ability.Amount(0)}}, false},
		{"magic path no mp", &ability.CustomFields{Path: "Spellcaster Path", Cost: ability.CostMap{"vim": ability.Amount(2)}}, false},
		{"mundane path with mp", &ability.CustomFields{Path: "Path of the Blade", Cost: ability.CostMap{"mp": ability.Amount(2)}}, false},
		{"no fields", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &ability.Ability{Name: "a", CustomFields: tc.cf}
			assert.Equal(t, tc.want, rules.Evaluate(a, isSpell, nil, nil))
		})
	}
}

func TestEvaluate_CustomMagicMarkers(t *testing.T) {
	e := rules.NewEngine(rules.Config{MagicPathMarkers: []string{"Hex"}}, nil)
	a := &ability.Ability{Name: "Curse", CustomFields: &ability.CustomFields{Path: "Hexblade", Cost: ability.CostMap{"mp": ability.Amount(1)}}}
	assert.True(t, e.Evaluate(a, ability.SpecialCriteria{Name: rules.SpecialIsSpell}, nil, nil))
	assert.False(t, rules.Evaluate(a, ability.SpecialCriteria{Name: rules.SpecialIsSpell}, nil, nil))
}

func TestEvaluate_RegisteredSpecial(t *testing.T) {
	e := rules.NewEngine(rules.Config{Specials: map[string]rules.SpecialFunc{
		"isFree": func(a *ability.Ability) bool { return a.Purchase() == "" },
	}}, nil)
	assert.True(t, e.Evaluate(&ability.Ability{Name: "x"}, ability.SpecialCriteria{Name: "isFree"}, nil, nil))
	assert.Equal(t, []string{"isFree", rules.SpecialIsSpell}, e.Specials())
}

func TestNewEngine_BuiltinSpecialNotReplaced(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := rules.NewEngine(rules.Config{Specials: map[string]rules.SpecialFunc{
		rules.SpecialIsSpell: func(*ability.Ability) bool { return true },
	}}, zap.New(core))

	assert.False(t, e.Evaluate(&ability.Ability{Name: "x"}, ability.SpecialCriteria{Name: rules.SpecialIsSpell}, nil, nil))
	assert.Equal(t, 1, logs.Len())
}

func TestNewEngine_PanicsOnNilSpecial(t *testing.T) {
	assert.Panics(t, func() {
		rules.NewEngine(rules.Config{Specials: map[string]rules.SpecialFunc{"broken": nil}}, nil)
	})
}

func TestProperty_EvaluateDoesNotMutate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		val := rapid.Float64Range(-50, 50).Draw(rt, "val")
		want := rapid.StringMatching(`-?[0-9]{1,3}`).Draw(rt, "want")
		attrs := character.AttributeMap{"str": {Val: val, Max: 20}}
		granting := keyed(map[string]string{"k": want})
		c := ability.BaseCriteria{Operator: ability.Some, Tests: []ability.Node{
			node(ability.AttrCriteria{Attr: "str", Operator: ability.OpGTE, Value: want}),
			node(ability.KeyCriteria{Key: "k", Operator: ability.OpEquals, Value: want}),
		}}
		before := granting.Clone()

		assert.True(rt, rules.Evaluate(nil, c, granting, attrs))
		assert.Equal(rt, character.AttributeMap{"str": {Val: val, Max: 20}}, attrs)
		assert.Equal(rt, before, *granting)
	})
}

func TestProperty_AttrGTEMatchesIntegerOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		have := rapid.IntRange(-1000, 1000).Draw(rt, "have")
		need := rapid.IntRange(-1000, 1000).Draw(rt, "need")
		c := ability.AttrCriteria{Attr: "x", Operator: ability.OpGTE, Value: itoa(need)}
		got := rules.Evaluate(nil, c, nil, character.AttributeMap{"x": {Val: float64(have)}})
		assert.Equal(rt, have >= need, got)
	})
}
