package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	cfvalue "github.com/yanizio/confstack/internal/value"
)

// NewTOMLSource returns a Source that parses a TOML file with
// BurntSushi/toml (a teacher indirect dependency, promoted to direct use
// here). Arrays of tables decode as BurntSushi does natively into
// []map[string]any, which FromAny turns into a Sequence of Mappings per
// spec.md §4.2 ("arrays of tables preserved as sequences of mappings").
func NewTOMLSource(path string) Source {
	b := newBase("toml", path, nil, fileAvailable(path), fileFingerprint(path))
	b.doLoad = func(ctx context.Context) (cfvalue.Mapping, error) {
		checkExtension(path, "toml")

		data, err := readFileUTF8(path)
		if err != nil {
			return cfvalue.Mapping{}, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return cfvalue.Mapping{}, nil
		}

		var decoded map[string]any
		if _, err := toml.Decode(string(data), &decoded); err != nil {
			zap.S().Errorw("toml config parse failed", "path", path, "err", err)
			return cfvalue.Mapping{}, fmt.Errorf("toml source %s: %w", path, err)
		}

		return cfvalue.FromAny(normalizeTOML(decoded)).Map, nil
	}
	return b
}

// normalizeTOML rewrites the []map[string]interface{} shape BurntSushi uses
// for arrays of tables into []any of map[string]any so value.FromAny's type
// switch recognizes it.
func normalizeTOML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeTOML(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeTOML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeTOML(val)
		}
		return out
	default:
		return t
	}
}
