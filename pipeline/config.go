// Package pipeline implements Component G (spec §4.G): the thin
// orchestrator wiring mdxparser -> linter -> irbuilder -> dax/explain
// together, in the teacher's Config/GeneratorConfig split
// (database/database.go) adapted to mdx2dax's own stages.
package pipeline

import (
	"time"

	"github.com/druarnfield/mdx2dax/dax"
	"github.com/druarnfield/mdx2dax/linter"
	"github.com/druarnfield/mdx2dax/mdxparser"
)

func msToDuration(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }
func durationToMs(d time.Duration) int64  { return d.Milliseconds() }

// ParserConfig mirrors mdxparser.Config, yaml-tagged so an embedding CLI
// can unmarshal a file into it (the core never calls yaml.Unmarshal
// itself — spec.md §1 Non-goals excludes a CLI/config-file layer here).
type ParserConfig struct {
	StrictMode        bool  `yaml:"strict_mode"`
	MaxInputSizeChars int   `yaml:"max_input_size_chars"`
	ParseTimeoutMs    int64 `yaml:"parse_timeout_ms"`
}

func (c ParserConfig) toMdxParserConfig() mdxparser.Config {
	cfg := mdxparser.DefaultConfig()
	cfg.StrictMode = c.StrictMode
	if c.MaxInputSizeChars > 0 {
		cfg.MaxInputSizeChars = c.MaxInputSizeChars
	}
	if c.ParseTimeoutMs > 0 {
		cfg.ParseTimeout = msToDuration(c.ParseTimeoutMs)
	}
	return cfg
}

// LinterConfig mirrors linter.Config.
type LinterConfig struct {
	OptimizationLevel     string   `yaml:"optimization_level"`
	DisabledRules         []string `yaml:"disabled_rules"`
	MaxProcessingTimeMs   int64    `yaml:"max_processing_time_ms"`
	ValidateBefore        bool     `yaml:"validate_before"`
	ValidateAfter         bool     `yaml:"validate_after"`
	SkipOnValidationError bool     `yaml:"skip_on_validation_error"`
}

func (c LinterConfig) toLinterConfig() linter.Config {
	cfg := linter.DefaultConfig()
	switch c.OptimizationLevel {
	case "none":
		cfg.OptimizationLevel = linter.LevelNone
	case "conservative":
		cfg.OptimizationLevel = linter.LevelConservative
	case "moderate":
		cfg.OptimizationLevel = linter.LevelModerate
	case "aggressive":
		cfg.OptimizationLevel = linter.LevelAggressive
	}
	cfg.DisabledRules = c.DisabledRules
	if c.MaxProcessingTimeMs > 0 {
		cfg.MaxProcessingTime = msToDuration(c.MaxProcessingTimeMs)
	}
	cfg.ValidateBefore = c.ValidateBefore
	cfg.ValidateAfter = c.ValidateAfter
	cfg.SkipOnValidationError = c.SkipOnValidationError
	return cfg
}

// DaxConfig mirrors dax.Config.
type DaxConfig struct {
	FormatOutput        bool   `yaml:"format_output"`
	IndentSize          int    `yaml:"indent_size"`
	EscapeReservedWords bool   `yaml:"escape_reserved_words"`
	CalcTableName       string `yaml:"calc_table_name"`
}

func (c DaxConfig) toDaxConfig() dax.Config {
	cfg := dax.DefaultConfig()
	cfg.FormatOutput = c.FormatOutput
	if c.IndentSize > 0 {
		cfg.IndentSize = c.IndentSize
	}
	cfg.EscapeReservedWords = c.EscapeReservedWords
	if c.CalcTableName != "" {
		cfg.CalcTableName = c.CalcTableName
	}
	return cfg
}

// Config is the nested value struct composing the per-stage configs
// (spec §6's configuration surface), mirroring the teacher's
// database.Config / database.GeneratorConfig split.
type Config struct {
	Parser ParserConfig `yaml:"parser"`
	Linter LinterConfig `yaml:"linter"`
	Dax    DaxConfig    `yaml:"dax"`

	// EnableCache opts into the driver's result cache (spec §5 "no caches
	// persist across calls unless the driver is explicitly configured
	// with one").
	EnableCache bool `yaml:"enable_cache"`
}

// FastConfig matches §9's "two factory values" note: no linting, no
// cache, defaults everywhere else.
func FastConfig() Config {
	return Config{
		Parser: defaultParserConfig(),
		Linter: linterConfigFrom(linter.FastConfig()),
		Dax:    daxConfigFrom(dax.DefaultConfig()),
	}
}

// ComprehensiveConfig runs the linter at its most aggressive level with
// both validation hooks enabled.
func ComprehensiveConfig() Config {
	return Config{
		Parser:      defaultParserConfig(),
		Linter:      linterConfigFrom(linter.ComprehensiveConfig()),
		Dax:         daxConfigFrom(dax.DefaultConfig()),
		EnableCache: true,
	}
}

// DefaultConfig matches each stage's own DefaultConfig.
func DefaultConfig() Config {
	return Config{
		Parser: defaultParserConfig(),
		Linter: linterConfigFrom(linter.DefaultConfig()),
		Dax:    daxConfigFrom(dax.DefaultConfig()),
	}
}

func defaultParserConfig() ParserConfig {
	c := mdxparser.DefaultConfig()
	return ParserConfig{
		StrictMode:        c.StrictMode,
		MaxInputSizeChars: c.MaxInputSizeChars,
		ParseTimeoutMs:    durationToMs(c.ParseTimeout),
	}
}

func linterConfigFrom(c linter.Config) LinterConfig {
	level := "conservative"
	switch c.OptimizationLevel {
	case linter.LevelNone:
		level = "none"
	case linter.LevelModerate:
		level = "moderate"
	case linter.LevelAggressive:
		level = "aggressive"
	}
	return LinterConfig{
		OptimizationLevel:     level,
		DisabledRules:         c.DisabledRules,
		MaxProcessingTimeMs:   durationToMs(c.MaxProcessingTime),
		ValidateBefore:        c.ValidateBefore,
		ValidateAfter:         c.ValidateAfter,
		SkipOnValidationError: c.SkipOnValidationError,
	}
}

func daxConfigFrom(c dax.Config) DaxConfig {
	return DaxConfig{
		FormatOutput:        c.FormatOutput,
		IndentSize:          c.IndentSize,
		EscapeReservedWords: c.EscapeReservedWords,
		CalcTableName:       c.CalcTableName,
	}
}
