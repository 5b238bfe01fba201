package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/confstack/internal/value"
)

func TestTypeLenientCoercesStrings(t *testing.T) {
	res := Type(value.KindInt)(value.String("42"), NewContext("port", Lenient))
	require.Equal(t, OK, res.Outcome)
	assert.Equal(t, int64(42), res.Value.Int)
}

func TestTypeStrictRejectsMismatch(t *testing.T) {
	res := Type(value.KindInt)(value.String("42"), NewContext("port", Strict))
	assert.Equal(t, Error, res.Outcome)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "type_mismatch", res.Diagnostics[0].Code)
}

func TestRequiredFailsOnNull(t *testing.T) {
	res := Required()(value.Null(), NewContext("name", Strict))
	assert.Equal(t, Error, res.Outcome)
	assert.Equal(t, "missing", res.Diagnostics[0].Code)
}

func TestRangeInclusiveBounds(t *testing.T) {
	min, max := 1.0, 65535.0
	v := Range(&min, &max)

	assert.Equal(t, OK, v(value.Int(1), NewContext("port", Strict)).Outcome)
	assert.Equal(t, OK, v(value.Int(65535), NewContext("port", Strict)).Outcome)
	assert.Equal(t, Error, v(value.Int(0), NewContext("port", Strict)).Outcome)
	assert.Equal(t, Error, v(value.Int(70000), NewContext("port", Strict)).Outcome)
}

func TestLengthForStringAndSequence(t *testing.T) {
	min, max := 2, 4
	v := Length(&min, &max)

	assert.Equal(t, Error, v(value.String("a"), NewContext("name", Strict)).Outcome)
	assert.Equal(t, OK, v(value.String("abc"), NewContext("name", Strict)).Outcome)
	assert.Equal(t, Error, v(value.Seq(value.Sequence{value.Int(1), value.Int(2), value.Int(3), value.Int(4), value.Int(5)}), NewContext("xs", Strict)).Outcome)
}

func TestChoicesMatchesCanonicalForm(t *testing.T) {
	v := Choices([]value.Value{value.String("dev"), value.String("prod")})
	assert.Equal(t, OK, v(value.String("prod"), NewContext("env", Strict)).Outcome)
	assert.Equal(t, Error, v(value.String("staging"), NewContext("env", Strict)).Outcome)
}

func TestPatternAnchoredMatch(t *testing.T) {
	v := Pattern(`[a-z]+`)
	assert.Equal(t, OK, v(value.String("abc"), NewContext("k", Strict)).Outcome)
	assert.Equal(t, Error, v(value.String("abc123"), NewContext("k", Strict)).Outcome, "pattern must be anchored across the full value")
}

func TestEmailValidator(t *testing.T) {
	v := Email()
	assert.Equal(t, OK, v(value.String("ops@example.com"), NewContext("contact", Strict)).Outcome)
	assert.Equal(t, Error, v(value.String("not-an-email"), NewContext("contact", Strict)).Outcome)
}

func TestCompositeShortCircuitsOnError(t *testing.T) {
	calls := 0
	tracking := func(v value.Value, ctx Context) Result {
		calls++
		return ok(v)
	}
	failing := func(v value.Value, ctx Context) Result {
		return fail(v, Diagnostic{Severity: SeverityError, Code: "boom", Path: ctx.Path})
	}

	res := Composite(failing, tracking)(value.String("x"), NewContext("k", Strict))
	assert.Equal(t, Error, res.Outcome)
	assert.Equal(t, 0, calls, "composite must short-circuit after the first error")
}

func TestCompositeAccumulatesWarningsFromEveryValidator(t *testing.T) {
	warn := func(code string) Validator {
		return func(v value.Value, ctx Context) Result {
			return ok(v, Diagnostic{Severity: SeverityWarning, Code: code, Path: ctx.Path})
		}
	}
	res := Composite(warn("w1"), warn("w2"))(value.String("x"), NewContext("k", Strict))
	assert.Equal(t, OK, res.Outcome)
	assert.Len(t, res.Diagnostics, 2)
}

func TestSchemaCollectsAllFieldDiagnostics(t *testing.T) {
	schema := NewSchema().
		WithField("host", Field{Kind: value.KindString, Required: true}).
		WithField("port", Field{Kind: value.KindInt, Required: true, Validators: []Validator{
			func() Validator { min, max := 1.0, 65535.0; return Range(&min, &max) }(),
		}})

	root := value.Mapping{
		"port": value.Int(99999),
	}

	res := schema.Validate(root, Strict)
	assert.Equal(t, Error, res.Outcome)

	codes := map[string]bool{}
	for _, d := range res.Diagnostics {
		codes[d.Code] = true
	}
	assert.True(t, codes["missing"], "missing required host must be reported")
	assert.True(t, codes["range_above_max"], "out-of-range port must be reported even though host also failed")
}

func TestSchemaPopulatesDefaultsBeforeValidation(t *testing.T) {
	def := value.Int(8080)
	schema := NewSchema().WithField("port", Field{Kind: value.KindInt, Default: &def})

	res := schema.Validate(value.Mapping{}, Strict)
	require.Equal(t, OK, res.Outcome)
	assert.Equal(t, int64(8080), res.Value.Map["port"].Int)
}

func TestSchemaStrictKeysRejectsUnknown(t *testing.T) {
	schema := NewSchema().WithField("host", Field{Kind: value.KindString}).StrictKeys(true)

	res := schema.Validate(value.Mapping{"host": value.String("x"), "extra": value.Bool(true)}, Strict)
	assert.Equal(t, Error, res.Outcome)

	found := false
	for _, d := range res.Diagnostics {
		if d.Code == "unknown_key" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestJSONDecodedIntegerPassesTypeCheckInStrictMode(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"port": 80}`), &decoded))

	port := value.FromAny(decoded["port"])
	require.Equal(t, value.KindInt, port.Kind, "whole JSON numbers must recover KindInt, not KindFloat")

	min, max := 1024.0, 65535.0
	schema := NewSchema().WithField("port", Field{Kind: value.KindInt, Required: true, Validators: []Validator{Range(&min, &max)}})

	res := schema.Validate(value.Mapping{"port": port}, Strict)
	require.Equal(t, Error, res.Outcome)

	codes := map[string]bool{}
	for _, d := range res.Diagnostics {
		codes[d.Code] = true
	}
	assert.False(t, codes["type_mismatch"], "a whole JSON number must not be rejected as a type mismatch against KindInt")
	assert.True(t, codes["range_below_min"] || codes["range_above_max"], "out-of-range JSON integer must report a range diagnostic")
}
