// Package rules evaluates ability use criteria, purchase costs, usability,
// display ordering, and catalog drift for a character's abilities.
//
// Every operation is a pure function of its inputs: nothing is cached and no
// input is mutated. An Engine is immutable after NewEngine and safe for
// concurrent use.
package rules

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/vennt/internal/game/ability"
)

// SpecialIsSpell is the built-in special predicate name.
const SpecialIsSpell = "isSpell"

// FreeAbilities are abilities whose purchase cost is always zero.
// Alchemist's Training comes free with Tinker's Training.
var FreeAbilities = []string{"Alchemist's Training"}

// MagicPathMarkers mark a path as magical for the isSpell predicate.
var MagicPathMarkers = []string{"Arcana", "Spellcaster", "Magician", "Wizard"}

// SpecialFunc is a named special predicate over the evaluated ability.
type SpecialFunc func(a *ability.Ability) bool

// Config holds the overridable rule vocabularies.
type Config struct {
	// FreeAbilities overrides the free-ability allow-list; empty keeps the default.
	FreeAbilities []string
	// MagicPathMarkers overrides the isSpell path markers; empty keeps the default.
	MagicPathMarkers []string
	// Specials adds named special predicates. The built-in isSpell cannot be replaced.
	Specials map[string]SpecialFunc
}

// DefaultConfig returns the fixed vocabularies with no extra specials.
func DefaultConfig() Config {
	return Config{
		FreeAbilities:    slices.Clone(FreeAbilities),
		MagicPathMarkers: slices.Clone(MagicPathMarkers),
	}
}

// Engine evaluates rules under one Config.
type Engine struct {
	free     map[string]struct{}
	specials map[string]SpecialFunc
	logger   *zap.Logger
}

// NewEngine builds an Engine from cfg. A nil logger disables logging.
//
// Precondition: every entry in cfg.Specials must have a non-empty name and a non-nil func.
// Postcondition: Returns a non-nil Engine.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	free := cfg.FreeAbilities
	if len(free) == 0 {
		free = FreeAbilities
	}
	markers := cfg.MagicPathMarkers
	if len(markers) == 0 {
		markers = MagicPathMarkers
	}

	e := &Engine{
		free:     make(map[string]struct{}, len(free)),
		specials: map[string]SpecialFunc{SpecialIsSpell: isSpell(slices.Clone(markers))},
		logger:   logger,
	}
	for _, name := range free {
		e.free[name] = struct{}{}
	}
	for name, fn := range cfg.Specials {
		if name == "" || fn == nil {
			panic("rules.NewEngine: precondition violated: special predicates need a name and a func")
		}
		if _, builtin := e.specials[name]; builtin {
			logger.Warn("ignoring override of built-in special predicate", zap.String("special", name))
			continue
		}
		e.specials[name] = fn
	}
	return e
}

// Specials returns the names of every special predicate the engine knows.
func (e *Engine) Specials() []string {
	names := make([]string, 0, len(e.specials))
	for name := range e.specials {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var defaultEngine = NewEngine(DefaultConfig(), nil)

// Default returns the Engine built from DefaultConfig.
func Default() *Engine {
	return defaultEngine
}
