// Package linter implements Component E (spec §4.E): a CST→CST rewriter
// that removes redundancies (excess parentheses, nested crossjoins,
// duplicate set/calc members, vacuous function calls) without changing
// meaning. Every rule is a bottom-up rewrite over cst.Transform (spec §9
// "Rewriting strategy"), grounded algorithmically on
// original_source/src/unmdx/linter/rules/*.py for the exact rewrite
// conditions and on the teacher's schema/normalize.go for the Go-side
// "one function per normalization concern" shape.
package linter

import (
	"time"

	"github.com/druarnfield/mdx2dax/cst"
)

// Level is the optimization level ordering of spec §4.E:
// none < conservative < moderate < aggressive.
type Level int

const (
	LevelNone Level = iota
	LevelConservative
	LevelModerate
	LevelAggressive
)

// Config holds the linter-stage options of spec §6's configuration table.
type Config struct {
	OptimizationLevel     Level
	DisabledRules         []string
	MaxProcessingTime     time.Duration
	ValidateBefore        bool
	ValidateAfter         bool
	SkipOnValidationError bool

	// Validate is an injected hook (spec §9 "treat previously-used caches
	// and loggers as injected values"): when non-nil and ValidateBefore/
	// ValidateAfter is set, Lint calls it around the rewrite pass.
	Validate func(cst.Node) error
}

// DefaultConfig is the "conservative" profile spec §9 names as the default.
func DefaultConfig() Config {
	return Config{OptimizationLevel: LevelConservative}
}

// FastConfig disables all rewriting (spec §9 factory "fast": level=none).
func FastConfig() Config {
	return Config{OptimizationLevel: LevelNone}
}

// ComprehensiveConfig runs every rule (spec §9 factory "comprehensive":
// level=aggressive).
func ComprehensiveConfig() Config {
	return Config{OptimizationLevel: LevelAggressive, ValidateBefore: true, ValidateAfter: true, SkipOnValidationError: true}
}

// Action records one applied rewrite (spec §4.E "The report records each
// applied action").
type Action struct {
	Rule        string
	Description string
	Before      string
	After       string
	NodeKind    cst.Kind
}

// Report summarizes a Lint call.
type Report struct {
	Applied  []Action
	Warnings []string
}

func (r *Report) fired(rule string) bool {
	for _, a := range r.Applied {
		if a.Rule == rule {
			return true
		}
	}
	return false
}

type rule struct {
	name  string
	level Level
	apply func(cst.Node, *Report) cst.Node
}

func rules() []rule {
	return []rule{
		{"parentheses-cleaner", LevelConservative, applyParenCleaner},
		{"crossjoin-simplifier", LevelConservative, applyCrossJoinSimplifier},
		{"duplicate-set-member", LevelConservative, applyDuplicateSetMember},
		{"duplicate-calc-member", LevelConservative, applyDuplicateCalcMember},
		{"vacuous-function-calls", LevelModerate, applyVacuousFunctionCalls},
	}
}

func disabled(name string, cfg Config) bool {
	for _, d := range cfg.DisabledRules {
		if d == name {
			return true
		}
	}
	return false
}

// Lint implements spec §4.E's contract `lint(cst, config) -> (cst, Report)`.
func Lint(root cst.Node, cfg Config) (cst.Node, Report) {
	var report Report

	if cfg.ValidateBefore && cfg.Validate != nil {
		if err := cfg.Validate(root); err != nil {
			report.Warnings = append(report.Warnings, "pre-lint validation failed: "+err.Error())
			if cfg.SkipOnValidationError {
				return root, report
			}
		}
	}

	deadline := time.Time{}
	hasDeadline := cfg.MaxProcessingTime > 0
	if hasDeadline {
		deadline = time.Now().Add(cfg.MaxProcessingTime)
	}

	current := root
	for _, r := range rules() {
		if r.level > cfg.OptimizationLevel || disabled(r.name, cfg) {
			continue
		}
		if hasDeadline && time.Now().After(deadline) {
			report.Warnings = append(report.Warnings, "max_processing_time exceeded; returning partially optimised tree")
			break
		}
		current = r.apply(current, &report)
	}

	if cfg.ValidateAfter && cfg.Validate != nil {
		if err := cfg.Validate(current); err != nil {
			report.Warnings = append(report.Warnings, "post-lint validation failed: "+err.Error())
			if cfg.SkipOnValidationError {
				return root, report
			}
		}
	}

	return current, report
}

func record(report *Report, rule, description string, before, after cst.Node) {
	report.Applied = append(report.Applied, Action{
		Rule:        rule,
		Description: description,
		Before:      cst.Render(before),
		After:       cst.Render(after),
		NodeKind:    before.Kind(),
	})
}
