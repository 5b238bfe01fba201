package source

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	cfvalue "github.com/yanizio/confstack/internal/value"
)

// NewYAMLSource returns a Source that parses a YAML file using the safe
// subset described in spec.md §4.2: gopkg.in/yaml.v3's default Unmarshal
// never invokes language-specific tag constructors, so no further
// sandboxing is needed. Anchors and aliases are resolved by the decoder
// before confstack ever sees the tree. A non-mapping root is rejected with
// an empty mapping and a logged diagnostic.
func NewYAMLSource(path string) Source {
	b := newBase("yaml", path, nil, fileAvailable(path), fileFingerprint(path))
	b.doLoad = func(ctx context.Context) (cfvalue.Mapping, error) {
		checkExtension(path, "yaml", "yml")

		data, err := readFileUTF8(path)
		if err != nil {
			return cfvalue.Mapping{}, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return cfvalue.Mapping{}, nil
		}

		var decoded any
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			zap.S().Errorw("yaml config parse failed", "path", path, "err", err)
			return cfvalue.Mapping{}, err
		}

		root := cfvalue.FromAny(normalizeYAML(decoded))
		if root.Kind != cfvalue.KindMapping {
			zap.S().Errorw("yaml config root is not a mapping", "path", path)
			return cfvalue.Mapping{}, fmt.Errorf("yaml source %s: root is not a mapping", path)
		}
		return root.Map, nil
	}
	return b
}

// normalizeYAML converts the map[string]any / []any shapes yaml.v3 produces
// for top-level content (it already avoids map[any]any, unlike yaml.v2) into
// the form value.FromAny expects; nested scalars pass through untouched.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return t
	}
}
