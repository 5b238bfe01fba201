package validate

import (
	"fmt"

	"github.com/yanizio/confstack/internal/value"
)

// Field declares one schema key: expected kind, default, required flag,
// and an ordered list of user-supplied validators appended after the
// built-in required/type checks (spec.md §4.6).
type Field struct {
	Kind       value.Kind
	Default    *value.Value
	Required   bool
	Validators []Validator
}

// Schema is a recursive declarative description: a set of named Fields
// plus nested Schemas, lowering to a single composite mapping validator
// (spec.md §4.6, generalizing the teacher's whole-struct
// go-playground/validator call to a per-field pipeline).
type Schema struct {
	Fields  map[string]Field
	Nested  map[string]*Schema
	Strict  bool // rejects unknown keys when true
}

// NewSchema returns an empty, non-strict Schema.
func NewSchema() *Schema {
	return &Schema{Fields: make(map[string]Field), Nested: make(map[string]*Schema)}
}

// WithField registers a top-level field and returns the schema for chaining.
func (s *Schema) WithField(name string, f Field) *Schema {
	s.Fields[name] = f
	return s
}

// WithNested registers a nested schema under name.
func (s *Schema) WithNested(name string, nested *Schema) *Schema {
	s.Nested[name] = nested
	return s
}

// StrictKeys toggles rejection of keys not declared in Fields/Nested.
func (s *Schema) StrictKeys(strict bool) *Schema {
	s.Strict = strict
	return s
}

// Compile lowers the schema into a single Validator over a mapping value,
// per spec.md §4.6: missing keys with defaults are populated first;
// required is inserted for required fields; the declared kind becomes a
// type validator; user validators append afterward; unknown keys are
// rejected only when Strict is set. Validation never short-circuits
// across fields — every field's diagnostics are collected.
func (s *Schema) Compile() Validator {
	return func(v value.Value, ctx Context) Result {
		if v.Kind != value.KindMapping {
			return fail(v, Diagnostic{
				Severity: SeverityError, Code: "type_mismatch",
				Message: "schema requires a mapping", Path: ctx.Path, Value: v.ToAny(),
			})
		}

		working := make(value.Mapping, len(v.Map))
		for k, fv := range v.Map {
			working[k] = fv
		}

		var diags []Diagnostic
		hasError := false

		for name, field := range s.Fields {
			fieldCtx := ctx.Descend(name)
			fv, present := working[name]
			if !present || fv.IsNull() {
				if field.Default != nil {
					fv = *field.Default
					working[name] = fv
					present = true
				}
			}
			if !present {
				fv = value.Null()
			}

			fieldValidators := make([]Validator, 0, len(field.Validators)+2)
			if field.Required {
				fieldValidators = append(fieldValidators, Required())
			}
			if !fv.IsNull() {
				fieldValidators = append(fieldValidators, Type(field.Kind))
			}
			fieldValidators = append(fieldValidators, field.Validators...)

			res := Composite(fieldValidators...)(fv, fieldCtx)
			diags = append(diags, res.Diagnostics...)
			if res.hasError() {
				hasError = true
			} else {
				working[name] = res.Value
			}
		}

		for name, nested := range s.Nested {
			fieldCtx := ctx.Descend(name)
			fv, present := working[name]
			if !present {
				fv = value.Map(value.Mapping{})
			}
			res := nested.Compile()(fv, fieldCtx)
			diags = append(diags, res.Diagnostics...)
			if res.hasError() {
				hasError = true
			} else {
				working[name] = res.Value
			}
		}

		if s.Strict {
			for k := range v.Map {
				_, isField := s.Fields[k]
				_, isNested := s.Nested[k]
				if !isField && !isNested {
					diags = append(diags, Diagnostic{
						Severity: SeverityError, Code: "unknown_key",
						Message: fmt.Sprintf("unknown key %q", k), Path: ctx.Descend(k).Path,
					})
					hasError = true
				}
			}
		}

		if hasError {
			return Result{Outcome: Error, Value: value.Map(working), Diagnostics: diags}
		}
		return Result{Outcome: OK, Value: value.Map(working), Diagnostics: diags}
	}
}

// Validate runs the compiled schema over root at level.
func (s *Schema) Validate(root value.Mapping, level Level) Result {
	return s.Compile()(value.Map(root), NewContext("", level))
}
