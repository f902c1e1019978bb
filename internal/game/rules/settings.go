package rules

import (
	"slices"

	"github.com/cory-johannsen/vennt/internal/config"
)

// ConfigFromSettings builds an engine Config from the rules config section
// plus any extra special predicates. Empty lists keep the defaults.
func ConfigFromSettings(settings config.RulesConfig, specials map[string]SpecialFunc) Config {
	cfg := DefaultConfig()
	if len(settings.FreeAbilities) > 0 {
		cfg.FreeAbilities = slices.Clone(settings.FreeAbilities)
	}
	if len(settings.MagicPathMarkers) > 0 {
		cfg.MagicPathMarkers = slices.Clone(settings.MagicPathMarkers)
	}
	cfg.Specials = specials
	return cfg
}
