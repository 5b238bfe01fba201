// Package validate implements the composable validator pipeline (C5),
// generalizing the teacher's internal/config/validator.go (a single
// go-playground/validator call over a whole struct) into a pipeline of
// small per-field validators that can be composed, coerce values, and
// report every field-level diagnostic rather than aborting on the first.
package validate

import (
	"time"

	"github.com/yanizio/confstack/internal/value"
)

// Level threads through Context and gates whether type coercion is
// attempted (lenient) or rejected outright (strict), per spec.md §4.6.
type Level int

const (
	Lenient Level = iota
	Strict
)

// Severity classifies a Diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is one reported issue against a dotted path (spec.md §3).
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Path     string
	Value    any
}

// Outcome is the overall result of running a validator.
type Outcome string

const (
	OK    Outcome = "ok"
	Error Outcome = "error"
)

// Result carries the (possibly-coerced) value plus every diagnostic a
// validator produced. Outcome OK implies zero error-severity diagnostics
// but may still carry warnings.
type Result struct {
	Outcome     Outcome
	Value       value.Value
	Diagnostics []Diagnostic
}

func ok(v value.Value, diags ...Diagnostic) Result {
	return Result{Outcome: OK, Value: v, Diagnostics: diags}
}

func fail(v value.Value, diags ...Diagnostic) Result {
	return Result{Outcome: Error, Value: v, Diagnostics: diags}
}

func (r Result) hasError() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return r.Outcome == Error
}

// Context is immutable and derived via Descend; it carries the dotted
// path to the value under validation, the validation level, a hint about
// which source kind produced the value (diagnostic-only, may be empty),
// and the time validation started (for duration metrics).
type Context struct {
	Path      string
	Level     Level
	Kind      string
	StartedAt time.Time
}

// NewContext begins a validation pass rooted at path ("" for the document
// root).
func NewContext(path string, level Level) Context {
	return Context{Path: path, Level: level, StartedAt: time.Now()}
}

// Descend returns a Context for a child field, preserving level/kind/
// start time but extending the dotted path.
func (c Context) Descend(key string) Context {
	next := c
	if c.Path == "" {
		next.Path = key
	} else {
		next.Path = c.Path + "." + key
	}
	return next
}

// Validator is a pure function (value, context) -> result. Implementations
// must not retain state beyond their own construction-time configuration
// (spec.md §4.6).
type Validator func(v value.Value, ctx Context) Result
