// Package main provides the abilities binary: it loads the ability catalog
// and a character sheet, then prints the character's abilities in display
// order with effective XP cost, usability, and pending catalog updates.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/cory-johannsen/vennt/internal/config"
	"github.com/cory-johannsen/vennt/internal/game/ability"
	"github.com/cory-johannsen/vennt/internal/game/character"
	"github.com/cory-johannsen/vennt/internal/game/rules"
	"github.com/cory-johannsen/vennt/internal/observability"
	"github.com/cory-johannsen/vennt/internal/scripting"
)

var _ rules.PredicateSource = (*scripting.Manager)(nil)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sheetPath := flag.String("sheet", "", "path to character sheet YAML file")
	abilitiesDir := flag.String("abilities", "", "override content.abilities_dir")
	usableOnly := flag.Bool("usable", false, "list only abilities usable right now")
	flag.Parse()

	if *sheetPath == "" {
		fmt.Fprintln(os.Stderr, "usage: abilities -sheet <file> [-config <file>] [-abilities <dir>] [-usable]")
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *abilitiesDir != "" {
		cfg.Content.AbilitiesDir = *abilitiesDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	shutdown, err := observability.SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("initializing tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Tracing.ShutdownTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}()

	ctx, span := otel.Tracer("github.com/cory-johannsen/vennt/cmd/abilities").Start(ctx, "abilities.report")
	defer span.End()
	logger = observability.WithSpan(ctx, logger)

	catStart := time.Now()
	catalog, err := ability.LoadCatalog(ctx, cfg.Content.AbilitiesDir, cfg.Content.ValidateSchema)
	if err != nil {
		logger.Fatal("loading ability catalog", zap.Error(err))
	}
	logger.Info("ability catalog loaded",
		zap.Int("abilities", catalog.Len()),
		zap.Int("paths", len(catalog.Paths)),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	sheet, err := character.LoadSheet(ctx, *sheetPath)
	if err != nil {
		logger.Fatal("loading character sheet", zap.Error(err))
	}
	logger.Info("character sheet loaded",
		zap.String("character", sheet.Entity.Name),
		zap.Int("abilities", len(sheet.Abilities)),
	)
	span.SetAttributes(attribute.String("character.name", sheet.Entity.Name))

	var specials map[string]rules.SpecialFunc
	if cfg.Scripting.SpecialDir != "" {
		scriptMgr := scripting.NewManager(logger)
		if err := scriptMgr.Load(cfg.Scripting.SpecialDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading special predicate scripts", zap.Error(err))
		}
		defer scriptMgr.Close()
		specials = rules.ScriptedSpecials(scriptMgr)
		logger.Info("scripted specials registered", zap.Strings("specials", scriptMgr.Predicates()))
	}

	engine := rules.NewEngine(rules.ConfigFromSettings(cfg.Rules, specials), logger)
	attrs := sheet.Entity.AttributeMap()

	entries := engine.Report(sheet, attrs)
	if *usableOnly {
		entries = usable(entries)
	}
	updates := rules.PendingUpdates(sheet, catalog)

	fmt.Println(renderReport(sheet.Entity.Name, entries))
	if len(updates) > 0 {
		fmt.Println(renderUpdates(updates))
	}

	logger.Info("report complete",
		zap.Int("entries", len(entries)),
		zap.Int("updates", len(updates)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
