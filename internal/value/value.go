// Package value implements the composed configuration tree: a recursive
// mapping/sequence/scalar sum type, deep merge, dot-path access, and typed
// accessors. The tree is acyclic and immutable once built; the composer
// (internal/config) swaps whole trees rather than mutating nodes in place.
package value

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the dynamic type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindMapping
	KindSequence
)

// Value is a node in the configuration tree: exactly one of the typed
// fields below is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Str  string
	Int  int64
	Flt  float64
	Bool bool

	Map Mapping
	Seq Sequence
}

// Mapping is a string-keyed node. Iteration order is not semantically
// significant; callers that need stable output (diagnostics, canonical
// encoding) sort keys explicitly.
type Mapping map[string]Value

// Sequence is an ordered node.
type Sequence []Value

// Null is the zero Value representing JSON/YAML null.
func Null() Value { return Value{Kind: KindNull} }

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Flt: f} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Map(m Mapping) Value    { return Value{Kind: KindMapping, Map: m} }
func Seq(s Sequence) Value   { return Value{Kind: KindSequence, Seq: s} }

// IsNull reports whether v is the null scalar.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// SortedKeys returns m's keys in lexical order, for diagnostics and
// canonical encoding.
func (m Mapping) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of v, used by the secrets masking pass (§4.8)
// which must never mutate the live tree.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindMapping:
		m := make(Mapping, len(v.Map))
		for k, child := range v.Map {
			m[k] = child.Clone()
		}
		return Map(m)
	case KindSequence:
		s := make(Sequence, len(v.Seq))
		for i, child := range v.Seq {
			s[i] = child.Clone()
		}
		return Seq(s)
	default:
		return v
	}
}

// FromAny converts a generic decoded value (as produced by encoding/json,
// gopkg.in/yaml.v3, or BurntSushi/toml) into the tree representation.
// Unrecognized types become the null scalar rather than panicking, since
// source loaders must never fail on decode shape surprises (§4.1).
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		// encoding/json decodes every JSON number as float64, so a whole
		// value like 80 arrives indistinguishable from 80.0. Recover
		// KindInt for integral values within int64 range, the same
		// ambiguity coerceINIValue resolves for INI's string-sourced
		// values, so schema Type checks see KindInt the way YAML/TOML
		// sources (which preserve the distinction natively) already do.
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return Int(int64(t))
		}
		return Float(t)
	case map[string]any:
		m := make(Mapping, len(t))
		for k, child := range t {
			m[k] = FromAny(child)
		}
		return Map(m)
	case map[any]any:
		m := make(Mapping, len(t))
		for k, child := range t {
			m[toString(k)] = FromAny(child)
		}
		return Map(m)
	case []any:
		s := make(Sequence, len(t))
		for i, child := range t {
			s[i] = FromAny(child)
		}
		return Seq(s)
	default:
		return Null()
	}
}

func toString(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// ToAny converts the tree back into plain Go values, used by the canonical
// encoder and by Manager.Bind's mapstructure decode step.
func (v Value) ToAny() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Flt
	case KindBool:
		return v.Bool
	case KindMapping:
		m := make(map[string]any, len(v.Map))
		for k, child := range v.Map {
			m[k] = child.ToAny()
		}
		return m
	case KindSequence:
		s := make([]any, len(v.Seq))
		for i, child := range v.Seq {
			s[i] = child.ToAny()
		}
		return s
	default:
		return nil
	}
}

// Canonicalize renders v as a stable, sorted-key string used directly
// (unhashed) in the fingerprints of dynamic sources (§4.4) and for the
// round-trip law in spec.md §8.
func Canonicalize(v Value) string {
	var b strings.Builder
	canonicalize(v, &b)
	return b.String()
}

func canonicalize(v Value, b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindString:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v.Str, `"`, `\"`))
		b.WriteByte('"')
	case KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.Flt, 'g', -1, 64))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case KindMapping:
		b.WriteByte('{')
		keys := v.Map.SortedKeys()
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(k)
			b.WriteString(`":`)
			canonicalize(v.Map[k], b)
		}
		b.WriteByte('}')
	case KindSequence:
		b.WriteByte('[')
		for i, child := range v.Seq {
			if i > 0 {
				b.WriteByte(',')
			}
			canonicalize(child, b)
		}
		b.WriteByte(']')
	}
}
