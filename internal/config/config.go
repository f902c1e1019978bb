// Package config provides Viper-based configuration loading for the ability rules tooling.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the ability catalog.
type ContentConfig struct {
	// AbilitiesDir is the directory of catalog YAML files.
	AbilitiesDir string `mapstructure:"abilities_dir"`
	// ValidateSchema enables CUE schema validation of every catalog file.
	ValidateSchema bool `mapstructure:"validate_schema"`
}

// RulesConfig overrides the rule vocabularies. Empty lists keep the built-in
// defaults.
type RulesConfig struct {
	FreeAbilities    []string `mapstructure:"free_abilities"`
	MagicPathMarkers []string `mapstructure:"magic_path_markers"`
}

// ScriptingConfig holds Lua predicate script settings.
type ScriptingConfig struct {
	// SpecialDir is the directory of Lua predicate scripts; empty disables scripting.
	SpecialDir string `mapstructure:"special_dir"`
	// InstructionLimit caps Lua opcodes per load or call; 0 uses the package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// TracingConfig holds OpenTelemetry trace export settings.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318.
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	// ShutdownTimeout bounds the final span flush.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Content   ContentConfig   `mapstructure:"content"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTracing(c.Tracing); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.AbilitiesDir == "" {
		return errors.New("content.abilities_dir must not be empty")
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	for i, name := range r.FreeAbilities {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Sprintf("rules.free_abilities[%d] must not be empty", i))
		}
	}
	for i, marker := range r.MagicPathMarkers {
		if strings.TrimSpace(marker) == "" {
			errs = append(errs, fmt.Sprintf("rules.magic_path_markers[%d] must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateTracing(t TracingConfig) error {
	if !t.Enabled {
		return nil
	}
	var errs []string
	if t.Endpoint == "" {
		errs = append(errs, "tracing.endpoint must not be empty when tracing is enabled")
	}
	if t.ServiceName == "" {
		errs = append(errs, "tracing.service_name must not be empty when tracing is enabled")
	}
	if t.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("tracing.shutdown_timeout must be positive, got %s", t.ShutdownTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with VENNT_ prefix
	v.SetEnvPrefix("VENNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("content.abilities_dir", "content/abilities")
	v.SetDefault("content.validate_schema", true)

	v.SetDefault("scripting.special_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.service_name", "vennt-abilities")
	v.SetDefault("tracing.shutdown_timeout", "5s")
}
