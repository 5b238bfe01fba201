package source

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	cfvalue "github.com/yanizio/confstack/internal/value"
)

// EnvironmentOptions configures NewEnvironmentSource per spec.md §4.2/§6.
type EnvironmentOptions struct {
	// Prefixes to match; an empty list (or a single empty prefix) matches
	// every environment variable.
	Prefixes []string
	// Separator translates to nested path segments; defaults to "_".
	Separator string
	// FoldCase lowercases the resulting path segments when true. The zero
	// value (false) keeps the variable name's case.
	FoldCase bool
	// ParseValues enables JSON > numeric > boolean > string fallback
	// parsing of the raw string value.
	ParseValues bool
}

// NewEnvironmentSource returns a Source over os.Environ(), splitting the
// stripped variable name on Separator into a dot path, optionally case
// folded, with each value passed through the JSON>numeric>boolean>string
// parsing cascade from spec.md §6.
func NewEnvironmentSource(opts EnvironmentOptions) Source {
	if opts.Separator == "" {
		opts.Separator = "_"
	}

	origin := "env:" + strings.Join(opts.Prefixes, ",")
	b := newBase("environment", origin, nil,
		func(ctx context.Context) bool { return true },
		func(ctx context.Context) string { return origin + ":" + cfvalue.Canonicalize(cfvalue.Map(loadEnviron(opts))) },
	)
	b.doLoad = func(ctx context.Context) (cfvalue.Mapping, error) {
		return loadEnviron(opts), nil
	}
	return b
}

func loadEnviron(opts EnvironmentOptions) cfvalue.Mapping {
	root := cfvalue.Mapping{}
	matchAll := len(opts.Prefixes) == 0 || (len(opts.Prefixes) == 1 && opts.Prefixes[0] == "")

	for _, kv := range os.Environ() {
		idx := strings.IndexByte(kv, '=')
		if idx < 0 {
			continue
		}
		name, raw := kv[:idx], kv[idx+1:]

		stripped, matched := "", matchAll
		if matchAll {
			stripped = name
		} else {
			for _, p := range opts.Prefixes {
				if strings.HasPrefix(name, p) {
					stripped = strings.TrimPrefix(name, p)
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}

		path := strings.ReplaceAll(stripped, opts.Separator, ".")
		if opts.FoldCase {
			path = strings.ToLower(path)
		}
		if path == "" {
			continue
		}

		var v cfvalue.Value
		if opts.ParseValues {
			v = parseEnvValue(raw)
		} else {
			v = cfvalue.String(raw)
		}
		cfvalue.SetPath(root, path, v)
	}
	return root
}

// parseEnvValue implements the JSON > numeric > boolean > string cascade
// from spec.md §6.
func parseEnvValue(raw string) cfvalue.Value {
	var jsonVal any
	if err := json.Unmarshal([]byte(raw), &jsonVal); err == nil {
		switch jsonVal.(type) {
		case map[string]any, []any:
			return cfvalue.FromAny(jsonVal)
		case float64, bool:
			return cfvalue.FromAny(jsonVal)
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return cfvalue.Int(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return cfvalue.Float(f)
	}
	if b, ok := boolLiteral(raw); ok {
		return cfvalue.Bool(b)
	}
	return cfvalue.String(raw)
}

func boolLiteral(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true", "yes", "on":
		return true, true
	case "false", "no", "off":
		return false, true
	}
	return false, false
}
