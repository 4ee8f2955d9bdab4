package pipeline

// StageTiming records one stage's wall-clock cost (spec §4.G "collects
// per-stage timings"). Durations are recorded in milliseconds rather than
// time.Duration so Result stays a plain, hashable/serializable value.
type StageTiming struct {
	Stage      string
	DurationMs int64
}

// Result is the envelope every Driver operation returns (SPEC_FULL's
// supplemented feature 5, grounded on original_source's
// TranslationResult in results.py): success/failure plus diagnostics
// distinct from ir.Query's own per-query metadata.
//
// Err and Warnings are deliberately separate channels (spec §7): Err
// carries the first fatal stage error — one of errs' named per-stage
// types (ParseError/BuildError/LintError/GenError/ValidationError/
// ResourceError), with its Kind/position/suggestions intact for a caller
// that wants to inspect or errors.As it — while Warnings stays the
// flat, non-fatal diagnostic strings a stage accumulates even on success.
type Result struct {
	Success    bool
	Output     string
	Err        error
	Warnings   []string
	Timings    []StageTiming
	SourceHash string
	ConfigHash string
	Complexity int
}
