package value

import (
	"strconv"
	"strings"
)

// Get walks a dot path through mapping nodes only. A missing segment, or an
// intermediate non-mapping value, yields def without coercion. Numeric
// sequence indices are not supported in the dot-path API (spec.md §4.3).
func Get(root Mapping, path string, def Value) Value {
	if path == "" {
		return def
	}
	segments := strings.Split(path, ".")
	cur := Map(root)
	for _, seg := range segments {
		if cur.Kind != KindMapping {
			return def
		}
		next, ok := cur.Map[seg]
		if !ok {
			return def
		}
		cur = next
	}
	return cur
}

// GetInt accepts an int directly, a float (truncated toward zero), or a
// string parseable as an integer; otherwise returns def.
func GetInt(root Mapping, path string, def int64) int64 {
	v := Get(root, path, Null())
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return int64(v.Flt)
	case KindString:
		if n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64); err == nil {
			return n
		}
	}
	return def
}

// GetFloat accepts a float or int directly, or a string parseable as a
// float; otherwise returns def.
func GetFloat(root Mapping, path string, def float64) float64 {
	v := Get(root, path, Null())
	switch v.Kind {
	case KindFloat:
		return v.Flt
	case KindInt:
		return float64(v.Int)
	case KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
			return f
		}
	}
	return def
}

// boolStrings maps the case-insensitive string vocabulary accepted by
// GetBool and by the lenient `type(boolean)` validator coercion (spec.md
// §4.3, §4.6).
var boolStrings = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true,
	"false": false, "no": false, "off": false, "0": false,
}

// GetBool accepts a native bool, or one of the case-insensitive strings
// true/false/yes/no/on/off/1/0; otherwise returns def.
func GetBool(root Mapping, path string, def bool) bool {
	v := Get(root, path, Null())
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindString:
		if b, ok := boolStrings[strings.ToLower(strings.TrimSpace(v.Str))]; ok {
			return b
		}
	}
	return def
}

// GetList accepts a sequence directly, or a comma-separated string (trimmed,
// empty items dropped); otherwise returns def.
func GetList(root Mapping, path string, def []string) []string {
	v := Get(root, path, Null())
	switch v.Kind {
	case KindSequence:
		out := make([]string, 0, len(v.Seq))
		for _, item := range v.Seq {
			out = append(out, scalarToString(item))
		}
		return out
	case KindString:
		parts := strings.Split(v.Str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return def
}

func scalarToString(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// SetPath writes a value at a dot path, creating intermediate mappings as
// needed. Used by source loaders (environment, secret-backed) to build nested trees
// from flat key spaces before they are merged by the composer.
func SetPath(root Mapping, path string, v Value) {
	segments := strings.Split(path, ".")
	cur := root
	for i, seg := range segments {
		if i == len(segments)-1 {
			cur[seg] = v
			return
		}
		existing, ok := cur[seg]
		if !ok || existing.Kind != KindMapping {
			existing = Map(Mapping{})
			cur[seg] = existing
		}
		cur = existing.Map
	}
}
