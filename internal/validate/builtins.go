package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/yanizio/confstack/internal/value"
)

// pg is the package-level go-playground/validator instance, the same
// pattern the teacher's internal/config/validator.go used for its
// whole-struct check; here it backs the single-field synthetic struct
// used by Email. The other built-ins are plain Go.
var pg = playground.New()

// Type confirms (strict) or coerces (lenient) v to kind.
func Type(kind value.Kind) Validator {
	return func(v value.Value, ctx Context) Result {
		if v.Kind == kind {
			return ok(v)
		}
		if ctx.Level == Strict {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "type_mismatch",
				Message: fmt.Sprintf("expected %s, got %s", kindName(kind), kindName(v.Kind)),
				Path:    ctx.Path, Value: v.ToAny(),
			})
		}
		coerced, coerceErr := coerce(v, kind)
		if coerceErr != nil {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "type_mismatch",
				Message: fmt.Sprintf("cannot coerce to %s: %v", kindName(kind), coerceErr),
				Path:    ctx.Path, Value: v.ToAny(),
			})
		}
		return ok(coerced)
	}
}

func kindName(k value.Kind) string {
	switch k {
	case value.KindString:
		return "string"
	case value.KindInt:
		return "integer"
	case value.KindFloat:
		return "floating"
	case value.KindBool:
		return "boolean"
	case value.KindMapping:
		return "mapping"
	case value.KindSequence:
		return "sequence"
	default:
		return "null"
	}
}

func coerce(v value.Value, kind value.Kind) (value.Value, error) {
	switch kind {
	case value.KindString:
		switch v.Kind {
		case value.KindInt:
			return value.String(strconv.FormatInt(v.Int, 10)), nil
		case value.KindFloat:
			return value.String(strconv.FormatFloat(v.Flt, 'g', -1, 64)), nil
		case value.KindBool:
			return value.String(strconv.FormatBool(v.Bool)), nil
		}
	case value.KindInt:
		if v.Kind == value.KindString {
			i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
			if err != nil {
				return v, err
			}
			return value.Int(i), nil
		}
		if v.Kind == value.KindFloat {
			return value.Int(int64(v.Flt)), nil
		}
	case value.KindFloat:
		if v.Kind == value.KindString {
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil {
				return v, err
			}
			return value.Float(f), nil
		}
		if v.Kind == value.KindInt {
			return value.Float(float64(v.Int)), nil
		}
	case value.KindBool:
		if v.Kind == value.KindString {
			b, ok := parseBoolLiteral(v.Str)
			if !ok {
				return v, fmt.Errorf("not a boolean literal: %q", v.Str)
			}
			return value.Bool(b), nil
		}
	}
	return v, fmt.Errorf("no coercion from %s to %s", kindName(v.Kind), kindName(kind))
}

func parseBoolLiteral(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// Required fails with code "missing" when v is null.
func Required() Validator {
	return func(v value.Value, ctx Context) Result {
		if v.IsNull() {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "missing",
				Message: "value is required", Path: ctx.Path,
			})
		}
		return ok(v)
	}
}

type rangeInput struct {
	V float64 `validate:"required"`
}

// Range bounds v inclusively between min and max; either may be nil for
// an unbounded side. Applies to int/float values.
func Range(min, max *float64) Validator {
	return func(v value.Value, ctx Context) Result {
		var f float64
		switch v.Kind {
		case value.KindInt:
			f = float64(v.Int)
		case value.KindFloat:
			f = v.Flt
		default:
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "range_invalid_type",
				Message: "range validator requires a numeric value", Path: ctx.Path, Value: v.ToAny(),
			})
		}
		if min != nil && f < *min {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "range_below_min",
				Message: fmt.Sprintf("%v is below minimum %v", f, *min), Path: ctx.Path, Value: v.ToAny(),
			})
		}
		if max != nil && f > *max {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "range_above_max",
				Message: fmt.Sprintf("%v is above maximum %v", f, *max), Path: ctx.Path, Value: v.ToAny(),
			})
		}
		return ok(v)
	}
}

// Length bounds the length of a string or sequence between min and max
// (either may be nil).
func Length(min, max *int) Validator {
	return func(v value.Value, ctx Context) Result {
		var n int
		switch v.Kind {
		case value.KindString:
			n = len(v.Str)
		case value.KindSequence:
			n = len(v.Seq)
		default:
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "length_invalid_type",
				Message: "length validator requires a string or sequence", Path: ctx.Path, Value: v.ToAny(),
			})
		}
		if min != nil && n < *min {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "length_below_min",
				Message: fmt.Sprintf("length %d is below minimum %d", n, *min), Path: ctx.Path,
			})
		}
		if max != nil && n > *max {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "length_above_max",
				Message: fmt.Sprintf("length %d is above maximum %d", n, *max), Path: ctx.Path,
			})
		}
		return ok(v)
	}
}

// Choices requires v to equal one of set, compared via canonical encoding.
func Choices(set []value.Value) Validator {
	canon := make([]string, len(set))
	for i, s := range set {
		canon[i] = value.Canonicalize(s)
	}
	return func(v value.Value, ctx Context) Result {
		got := value.Canonicalize(v)
		for _, c := range canon {
			if c == got {
				return ok(v)
			}
		}
		return fail(v, Diagnostic{
			Severity: SeverityError, Code: "not_in_choices",
			Message: fmt.Sprintf("%v is not one of the allowed choices", v.ToAny()),
			Path:    ctx.Path, Value: v.ToAny(),
		})
	}
}

// Pattern anchors regex against a string value's full span.
func Pattern(expr string) Validator {
	re := regexp.MustCompile(`\A(?:` + expr + `)\z`)
	return func(v value.Value, ctx Context) Result {
		if v.Kind != value.KindString {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "pattern_invalid_type",
				Message: "pattern validator requires a string", Path: ctx.Path, Value: v.ToAny(),
			})
		}
		if !re.MatchString(v.Str) {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "pattern_mismatch",
				Message: fmt.Sprintf("%q does not match required pattern", v.Str), Path: ctx.Path,
			})
		}
		return ok(v)
	}
}

type emailInput struct {
	V string `validate:"email"`
}

// Email is a convenience pattern delegating to go-playground/validator's
// "email" tag, matching the teacher's go-playground/validator usage.
func Email() Validator {
	return func(v value.Value, ctx Context) Result {
		if v.Kind != value.KindString {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "email_invalid_type",
				Message: "email validator requires a string", Path: ctx.Path, Value: v.ToAny(),
			})
		}
		if err := pg.Struct(emailInput{V: v.Str}); err != nil {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "invalid_email",
				Message: fmt.Sprintf("%q is not a valid email address", v.Str), Path: ctx.Path,
			})
		}
		return ok(v)
	}
}

// Composite runs validators in order, feeding the (possibly coerced)
// value of validator i into validator i+1. It short-circuits on the
// first error-severity result but accumulates warnings from every
// validator that did run (spec.md §4.6).
func Composite(validators ...Validator) Validator {
	return func(v value.Value, ctx Context) Result {
		current := v
		var diags []Diagnostic
		for _, validator := range validators {
			res := validator(current, ctx)
			diags = append(diags, res.Diagnostics...)
			if res.hasError() {
				return Result{Outcome: Error, Value: current, Diagnostics: diags}
			}
			current = res.Value
		}
		return Result{Outcome: OK, Value: current, Diagnostics: diags}
	}
}
