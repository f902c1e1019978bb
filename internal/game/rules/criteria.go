package rules

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
)

// Evaluate reports whether criteria c holds.
//
// target is the ability being judged (nil when there is no specific target;
// field and special nodes then hold vacuously). granting is the ability that
// owns the criteria; its custom_fields.keys supply lookup values. attrs is
// the character's attribute snapshot.
//
// Unrecognised node types, operators and special names evaluate false.
// Evaluate never mutates its inputs.
func (e *Engine) Evaluate(target *ability.Ability, c ability.Criteria, granting *ability.Ability, attrs character.AttributeMap) bool {
	switch c := c.(type) {
	case ability.BaseCriteria:
		return e.evaluateBase(target, c, granting, attrs)
	case ability.FieldCriteria:
		return e.evaluateField(target, c, granting)
	case ability.KeyCriteria:
		want, ok := lookupKey(granting, c.Key)
		return ok && e.compare(c.Operator, want, c.Value)
	case ability.AttrCriteria:
		attr, ok := attrs[c.Attr]
		return ok && e.compare(c.Operator, formatNumber(attr.Val), c.Value)
	case ability.SpecialCriteria:
		return e.evaluateSpecial(target, c)
	case ability.UnknownCriteria:
		e.logger.Debug("unknown criteria type", zap.String("type", c.Kind))
		return false
	default:
		return false
	}
}

// Evaluate reports whether c holds under the default Engine.
func Evaluate(target *ability.Ability, c ability.Criteria, granting *ability.Ability, attrs character.AttributeMap) bool {
	return defaultEngine.Evaluate(target, c, granting, attrs)
}

func (e *Engine) evaluateBase(target *ability.Ability, c ability.BaseCriteria, granting *ability.Ability, attrs character.AttributeMap) bool {
	switch c.Operator {
	case ability.Every:
		for _, t := range c.Tests {
			if !e.Evaluate(target, t.Criteria, granting, attrs) {
				return false
			}
		}
		return true
	case ability.Some:
		for _, t := range c.Tests {
			if e.Evaluate(target, t.Criteria, granting, attrs) {
				return true
			}
		}
		return false
	default:
		e.logger.Debug("unknown base operator", zap.String("operator", string(c.Operator)))
		return false
	}
}

func (e *Engine) evaluateField(target *ability.Ability, c ability.FieldCriteria, granting *ability.Ability) bool {
	if target == nil {
		return true
	}
	want, ok := lookupKey(granting, c.Key)
	if !ok || len(c.Path) == 0 {
		return false
	}
	res := gjson.GetBytes(target.Snapshot(), fieldPath(c.Path))
	if res.Type != gjson.String {
		return false
	}
	return e.compare(c.Operator, want, res.Str)
}

func (e *Engine) evaluateSpecial(target *ability.Ability, c ability.SpecialCriteria) bool {
	if target == nil {
		return true
	}
	fn, ok := e.specials[c.Name]
	if !ok {
		e.logger.Debug("unknown special criteria", zap.String("special", c.Name))
		return false
	}
	return fn(target)
}

// lookupKey returns granting's non-empty keys[key].
func lookupKey(granting *ability.Ability, key string) (string, bool) {
	v, ok := granting.Keys()[key]
	return v, ok && v != ""
}

func (e *Engine) compare(op ability.Operator, left, right string) bool {
	switch op {
	case ability.OpEquals:
		return left == right
	case ability.OpGTE:
		l, lok := parseInt(left)
		r, rok := parseInt(right)
		return lok && rok && l >= r
	default:
		e.logger.Debug("unknown criteria operator", zap.String("operator", string(op)))
		return false
	}
}

// parseInt reads an optionally signed run of leading decimal digits after
// any leading whitespace, ignoring trailing text: "10sp" -> 10, "x" -> false.
func parseInt(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return sign * n, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fieldPath joins path components into a gjson path, escaping characters
// gjson treats as syntax.
func fieldPath(path []string) string {
	var b strings.Builder
	for i, comp := range path {
		if i > 0 {
			b.WriteByte('.')
		}
		for _, r := range comp {
			if strings.ContainsRune(`.*?|#@!=<>%\[]{}(),:"`, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
