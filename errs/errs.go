// Package errs implements the common error taxonomy shared by every stage
// of the pipeline (spec §7): a single shape {kind, message, details,
// suggestions} built via New/Newf, plus six named per-stage types
// (ParseError, BuildError, LintError, GenError, ValidationError,
// ResourceError) that each wrap one and implement error, so a caller can
// errors.As for "specifically a build-stage failure" instead of switching
// on Kind() by hand. Every stage finishes its error-construction chain
// with Typed() to produce the matching named type.
//
// Errors wrap their root cause with github.com/pkg/errors so
// errs.Cause recovers it — aretext and go-mysql-server reach for
// pkg/errors wherever a wrapped error needs to keep a walkable stack, and
// mdx2dax's multi-stage pipeline is exactly that case.
package errs

import (
	"fmt"

	"github.com/druarnfield/mdx2dax/token"
	"github.com/pkg/errors"
)

// Kind is the error taxonomy of spec §7.
type Kind string

const (
	Validation Kind = "Validation"
	Parse      Kind = "Parse"
	Build      Kind = "Build"
	Lint       Kind = "Lint"
	Generation Kind = "Generation"
	Resource   Kind = "Resource"
)

// Error is the common shape held as the Detail field of every stage error
// type.
type Error struct {
	ErrKind     Kind
	Message     string
	Pos         *token.Position
	Suggestions []string
	cause       error
}

// New builds an Error with no position or wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{ErrKind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithPos attaches a source position.
func (e *Error) WithPos(pos token.Position) *Error {
	e.Pos = &pos
	return e
}

// WithSuggestions attaches remediation suggestions.
func (e *Error) WithSuggestions(s ...string) *Error {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

// WithCause wraps a root cause via pkg/errors.WithStack, which records a
// stack trace; Cause(e) recovers the original cause.
func (e *Error) WithCause(cause error) *Error {
	if cause != nil {
		e.cause = errors.WithStack(cause)
	}
	return e
}

func (e *Error) Kind() Kind { return e.ErrKind }

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s error at %d:%d: %s", e.ErrKind, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.ErrKind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Cause recovers the innermost wrapped error, or nil if none was attached.
func Cause(err error) error {
	var e *Error
	if !errors.As(err, &e) || e.cause == nil {
		return nil
	}
	return errors.Cause(e.cause)
}

// Typed wraps e in the named per-stage type matching its Kind, so a caller
// can errors.As(err, &errs.BuildError{}) instead of switching on Kind().
// Every stage constructs its error via New/Newf and finishes the chain
// with Typed() before returning it.
func (e *Error) Typed() error {
	switch e.ErrKind {
	case Parse:
		return &ParseError{Detail: e}
	case Build:
		return &BuildError{Detail: e}
	case Lint:
		return &LintError{Detail: e}
	case Generation:
		return &GenError{Detail: e}
	case Validation:
		return &ValidationError{Detail: e}
	case Resource:
		return &ResourceError{Detail: e}
	default:
		return e
	}
}

// ParseError is returned by mdxparser when the input text can't be
// tokenized/parsed into a CST.
type ParseError struct{ Detail *Error }

func (e *ParseError) Error() string { return e.Detail.Error() }
func (e *ParseError) Unwrap() error { return e.Detail }

// BuildError is returned by irbuilder when a parsed CST can't be lowered
// to IR.
type BuildError struct{ Detail *Error }

func (e *BuildError) Error() string { return e.Detail.Error() }
func (e *BuildError) Unwrap() error { return e.Detail }

// LintError is returned by linter when a rewrite pass fails outright
// (distinct from a Report.Warnings entry, which is non-fatal).
type LintError struct{ Detail *Error }

func (e *LintError) Error() string { return e.Detail.Error() }
func (e *LintError) Unwrap() error { return e.Detail }

// GenError is returned by dax when IR can't be rendered to DAX text.
type GenError struct{ Detail *Error }

func (e *GenError) Error() string { return e.Detail.Error() }
func (e *GenError) Unwrap() error { return e.Detail }

// ValidationError is returned by mdxparser.Validate's caller (the pipeline
// driver's strict-mode pre-flight). Error-severity issues from
// ir.Query.Validate reach callers as a BuildError from irbuilder.
type ValidationError struct{ Detail *Error }

func (e *ValidationError) Error() string { return e.Detail.Error() }
func (e *ValidationError) Unwrap() error { return e.Detail }

// ResourceError is returned when a configured resource limit (parse
// timeout, max input size, linter max processing time) is exceeded.
type ResourceError struct{ Detail *Error }

func (e *ResourceError) Error() string { return e.Detail.Error() }
func (e *ResourceError) Unwrap() error { return e.Detail }
