package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/druarnfield/mdx2dax/cst"
	"github.com/druarnfield/mdx2dax/dax"
	"github.com/druarnfield/mdx2dax/errs"
	"github.com/druarnfield/mdx2dax/explain"
	"github.com/druarnfield/mdx2dax/ir"
	"github.com/druarnfield/mdx2dax/irbuilder"
	"github.com/druarnfield/mdx2dax/linter"
	"github.com/druarnfield/mdx2dax/mdxparser"
	"github.com/druarnfield/mdx2dax/token"
	"github.com/sirupsen/logrus"
)

// Driver is the thin orchestrator of spec §4.G, wiring
// mdxparser -> linter -> irbuilder -> dax/explain in stage order
// (spec §5 "parse → lint → build → generate"). It takes its logging
// sink as a constructor argument (spec §9 Design Notes) rather than
// reaching for a package-level logger, and is safe to reuse across
// concurrent calls: it holds no mutable state of its own beyond the
// optional result cache, which is guarded by its own lock.
type Driver struct {
	log   *logrus.Logger
	cache *resultCache
}

// New builds a Driver with the given logging sink; a nil logger falls
// back to logrus.StandardLogger() (spec §9).
func New(log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{log: log, cache: newResultCache()}
}

// resultCache is the optional single-writer/concurrent-reader cache
// spec §5 describes, keyed on source hash + config hash.
type resultCache struct {
	mu    sync.RWMutex
	items map[string]Result
}

func newResultCache() *resultCache {
	return &resultCache{items: make(map[string]Result)}
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[key]
	return r, ok
}

func (c *resultCache) put(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = r
}

func cacheKey(sourceHash, configHash string) string { return sourceHash + "|" + configHash }

// preflight runs mdxparser.Validate ahead of Parse when
// cfg.Parser.StrictMode is set (spec §6 parser.strict_mode, SPEC_FULL
// supplemented feature 2): a cheap lexer-only structural check whose
// Issues abort the run before a full parse is attempted. Returns the
// "validate" stage timing (nil when strict mode is off, since the stage
// didn't run) and the first validation failure as a *errs.ValidationError,
// if any.
func (d *Driver) preflight(text string, cfg Config) (*StageTiming, error) {
	if !cfg.Parser.StrictMode {
		return nil, nil
	}
	t := startTimer("validate")
	issues := mdxparser.Validate(text)
	timing := t.stop()
	if len(issues) == 0 {
		return &timing, nil
	}
	msgs := make([]string, len(issues))
	for i, iss := range issues {
		msgs[i] = iss.Message
	}
	e := errs.New(errs.Validation, strings.Join(msgs, "; "))
	if issues[0].Pos != (token.Position{}) {
		e = e.WithPos(issues[0].Pos)
	}
	return &timing, e.Typed()
}

type timer struct {
	stage string
	start time.Time
}

func startTimer(stage string) timer { return timer{stage: stage, start: time.Now()} }

func (t timer) stop() StageTiming {
	return StageTiming{Stage: t.stage, DurationMs: time.Since(t.start).Milliseconds()}
}

// MdxToDax implements spec §4.G's `mdx_to_dax(text, config)`: parse ->
// optional lint -> build -> generate.
func (d *Driver) MdxToDax(text string, cfg Config) Result {
	sourceHash := ir.SourceHash(text)
	configHash, _ := ir.ConfigHash(cfg)

	if cfg.EnableCache {
		if cached, ok := d.cache.get(cacheKey(sourceHash, configHash)); ok {
			d.log.WithField("source_hash", sourceHash).Debug("mdx_to_dax cache hit")
			return cached
		}
	}

	var timings []StageTiming
	var warnings []string

	if vt, err := d.preflight(text, cfg); err != nil {
		if vt != nil {
			timings = append(timings, *vt)
		}
		d.log.WithError(err).Warn("mdx_to_dax: strict-mode pre-flight failed")
		return d.fail(err, timings, sourceHash, configHash)
	} else if vt != nil {
		timings = append(timings, *vt)
	}

	d.log.WithField("source_hash", sourceHash).Debug("mdx_to_dax: parse stage starting")
	t := startTimer("parse")
	query, err := mdxparser.Parse(text, cfg.Parser.toMdxParserConfig())
	timings = append(timings, t.stop())
	if err != nil {
		d.log.WithError(err).Warn("mdx_to_dax: parse failed")
		return d.fail(err, timings, sourceHash, configHash)
	}

	root := cst.Node(query)
	if cfg.Linter.OptimizationLevel != "none" {
		t = startTimer("lint")
		lintedRoot, report := linter.Lint(root, cfg.Linter.toLinterConfig())
		timings = append(timings, t.stop())
		root = lintedRoot
		if len(report.Warnings) > 0 {
			d.log.WithField("warnings", report.Warnings).Warn("mdx_to_dax: lint stage warnings")
			warnings = append(warnings, report.Warnings...)
		}
	}

	lintedQuery, ok := root.(*cst.Query)
	if !ok {
		err := errs.New(errs.Build, "linted tree root is not a *cst.Query").Typed()
		return d.fail(err, timings, sourceHash, configHash)
	}

	t = startTimer("build")
	builtQuery, err := irbuilder.Build(lintedQuery)
	timings = append(timings, t.stop())
	if err != nil {
		d.log.WithError(err).Warn("mdx_to_dax: build failed")
		return d.fail(err, timings, sourceHash, configHash)
	}
	if len(builtQuery.Metadata.Warnings) > 0 {
		d.log.WithField("warnings", builtQuery.Metadata.Warnings).Warn("mdx_to_dax: build stage warnings")
		warnings = append(warnings, builtQuery.Metadata.Warnings...)
	}
	builtQuery.Metadata.SourceHash = sourceHash

	t = startTimer("generate")
	genResult, err := dax.Generate(builtQuery, cfg.Dax.toDaxConfig())
	timings = append(timings, t.stop())
	if err != nil {
		d.log.WithError(err).Warn("mdx_to_dax: generate failed")
		return d.fail(err, timings, sourceHash, configHash)
	}
	if len(genResult.Warnings) > 0 {
		d.log.WithField("warnings", genResult.Warnings).Warn("mdx_to_dax: generate stage warnings")
		warnings = append(warnings, genResult.Warnings...)
	}

	result := Result{
		Success:    true,
		Output:     genResult.Text,
		Warnings:   warnings,
		Timings:    timings,
		SourceHash: sourceHash,
		ConfigHash: configHash,
		Complexity: builtQuery.Complexity(),
	}

	if cfg.EnableCache {
		d.cache.put(cacheKey(sourceHash, configHash), result)
	}
	return result
}

// ParseOnly implements spec §4.G's `parse_only(text, config)`: parse ->
// build -> returns the IR as the Result's Output, rendered via
// ir.Query.Dump for a human-inspectable text form.
func (d *Driver) ParseOnly(text string, cfg Config) (*ir.Query, Result) {
	sourceHash := ir.SourceHash(text)
	configHash, _ := ir.ConfigHash(cfg)
	var timings []StageTiming

	if vt, err := d.preflight(text, cfg); vt != nil || err != nil {
		if vt != nil {
			timings = append(timings, *vt)
		}
		if err != nil {
			return nil, d.fail(err, timings, sourceHash, configHash)
		}
	}

	t := startTimer("parse")
	cstQuery, err := mdxparser.Parse(text, cfg.Parser.toMdxParserConfig())
	timings = append(timings, t.stop())
	if err != nil {
		return nil, d.fail(err, timings, sourceHash, configHash)
	}

	t = startTimer("build")
	query, err := irbuilder.Build(cstQuery)
	timings = append(timings, t.stop())
	if err != nil {
		return nil, d.fail(err, timings, sourceHash, configHash)
	}
	query.Metadata.SourceHash = sourceHash

	return query, Result{
		Success:    true,
		Output:     query.Dump(),
		Warnings:   query.Metadata.Warnings,
		Timings:    timings,
		SourceHash: sourceHash,
		ConfigHash: configHash,
		Complexity: query.Complexity(),
	}
}

// Optimise implements spec §4.G's `optimise(text, config)`: parse ->
// lint -> reserialize CST to text (Open Question 1, option (c)).
// Returns the rewritten text, the rule Report, and the Result envelope.
func (d *Driver) Optimise(text string, cfg Config) (string, linter.Report, Result) {
	sourceHash := ir.SourceHash(text)
	configHash, _ := ir.ConfigHash(cfg)
	var timings []StageTiming

	if vt, err := d.preflight(text, cfg); vt != nil || err != nil {
		if vt != nil {
			timings = append(timings, *vt)
		}
		if err != nil {
			return "", linter.Report{}, d.fail(err, timings, sourceHash, configHash)
		}
	}

	t := startTimer("parse")
	query, err := mdxparser.Parse(text, cfg.Parser.toMdxParserConfig())
	timings = append(timings, t.stop())
	if err != nil {
		return "", linter.Report{}, d.fail(err, timings, sourceHash, configHash)
	}

	t = startTimer("lint")
	root, report := linter.Lint(cst.Node(query), cfg.Linter.toLinterConfig())
	timings = append(timings, t.stop())

	out := cst.Render(root)
	return out, report, Result{
		Success:    true,
		Output:     out,
		Warnings:   report.Warnings,
		Timings:    timings,
		SourceHash: sourceHash,
		ConfigHash: configHash,
	}
}

// Explain implements spec §4.G's `explain(text, config)`: parse -> build
// -> hand the IR to explain.Build (SPEC_FULL supplemented feature 1).
func (d *Driver) Explain(text string, cfg Config) (explain.Context, Result) {
	sourceHash := ir.SourceHash(text)
	configHash, _ := ir.ConfigHash(cfg)
	var timings []StageTiming

	if vt, err := d.preflight(text, cfg); vt != nil || err != nil {
		if vt != nil {
			timings = append(timings, *vt)
		}
		if err != nil {
			return explain.Context{}, d.fail(err, timings, sourceHash, configHash)
		}
	}

	t := startTimer("parse")
	cstQuery, err := mdxparser.Parse(text, cfg.Parser.toMdxParserConfig())
	timings = append(timings, t.stop())
	if err != nil {
		return explain.Context{}, d.fail(err, timings, sourceHash, configHash)
	}

	t = startTimer("build")
	query, err := irbuilder.Build(cstQuery)
	timings = append(timings, t.stop())
	if err != nil {
		return explain.Context{}, d.fail(err, timings, sourceHash, configHash)
	}

	ctx := explain.Build(query)
	return ctx, Result{
		Success:    true,
		Output:     ctx.SQLSketch,
		Warnings:   query.Metadata.Warnings,
		Timings:    timings,
		SourceHash: sourceHash,
		ConfigHash: configHash,
		Complexity: query.Complexity(),
	}
}

func (d *Driver) fail(err error, timings []StageTiming, sourceHash, configHash string) Result {
	return Result{
		Success:    false,
		Err:        err,
		Timings:    timings,
		SourceHash: sourceHash,
		ConfigHash: configHash,
	}
}
