package rules

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"

	"dario.cat/mergo"
	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/vennt/internal/game/ability"
)

// UpdatableFieldExclusions are the per-character fields never compared or
// overwritten when an owned ability is refreshed from the catalog.
var UpdatableFieldExclusions = []string{"keys", "times_taken"}

// UpdatableFields are the custom fields compared against the catalog.
var UpdatableFields = updatableFields()

func updatableFields() []string {
	out := make([]string, 0, len(ability.Fields))
	for _, f := range ability.Fields {
		if !slices.Contains(UpdatableFieldExclusions, f) {
			out = append(out, f)
		}
	}
	return out
}

// FindNewVersion looks up owned by name in catalog and reports whether the
// catalog definition has drifted from it.
//
// On drift the returned ability keeps owned's identity and owned's custom
// field values, takes effect and uses from the catalog, and gains any
// catalog custom field owned leaves empty. Neither input is mutated.
func FindNewVersion(owned *ability.Ability, catalog *ability.Catalog) (ability.Ability, bool) {
	found, ok := catalog.Find(owned.Name)
	if !ok || len(ChangedFields(owned, found)) == 0 {
		return ability.Ability{}, false
	}
	return mergeVersion(owned, found), true
}

// ChangedFields names what differs between an owned ability and a catalog
// definition: "name", any updatable custom field, and "uses". Fields compare
// by their JSON encoding.
//
// Postcondition: Returns nil when nothing differs.
func ChangedFields(owned, found *ability.Ability) []string {
	var changed []string
	if owned.Name != found.Name {
		changed = append(changed, "name")
	}
	if owned.CustomFields != nil || found.CustomFields != nil {
		oj, fj := encode(owned.CustomFields), encode(found.CustomFields)
		for _, field := range UpdatableFields {
			if gjson.GetBytes(oj, field).Raw != gjson.GetBytes(fj, field).Raw {
				changed = append(changed, field)
			}
		}
	}
	if owned.Uses != nil || found.Uses != nil {
		if !bytes.Equal(encode(owned.Uses), encode(found.Uses)) {
			changed = append(changed, "uses")
		}
	}
	return changed
}

func encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func mergeVersion(owned, found *ability.Ability) ability.Ability {
	out := owned.Clone()
	out.Effect = found.Effect
	out.Uses = found.Uses.Clone()
	out.CustomFields = mergeFields(owned.CustomFields, found.CustomFields)
	return out
}

// mergeFields overlays owned onto catalog: every non-empty owned value wins,
// and maps are taken whole from whichever side has one.
func mergeFields(owned, catalog *ability.CustomFields) *ability.CustomFields {
	merged := owned.Clone()
	if merged == nil {
		merged = &ability.CustomFields{}
	}
	if catalog == nil {
		return merged
	}
	if err := mergo.Merge(merged, catalog.Clone(), mergo.WithTransformers(wholeMaps{})); err != nil {
		// Merge only fails on mismatched types, which two CustomFields never are.
		panic("rules.mergeFields: " + err.Error())
	}
	return merged
}

// wholeMaps stops mergo descending into a map the destination already holds.
type wholeMaps struct{}

func (wholeMaps) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t.Kind() != reflect.Map {
		return nil
	}
	return func(dst, src reflect.Value) error { return nil }
}
