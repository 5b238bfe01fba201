package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/confstack/internal/value"
)

// NewJSONSource returns a Source that parses a JSON file. Duplicate object
// keys are resolved last-wins by encoding/json's decoder; confstack emits a
// diagnostic-level warning when it detects duplicates by re-scanning with a
// streaming decoder, matching spec.md §4.2's "last-wins, diagnostic
// emitted" contract. A non-object root yields an empty mapping.
func NewJSONSource(path string) Source {
	b := newBase("json", path, nil, fileAvailable(path), fileFingerprint(path))
	b.doLoad = func(ctx context.Context) (value.Mapping, error) {
		checkExtension(path, "json")

		data, err := readFileUTF8(path)
		if err != nil {
			return value.Mapping{}, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return value.Mapping{}, nil
		}

		warnDuplicateKeys(path, data)

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			// Root might be a non-mapping JSON value (array, scalar); the
			// spec treats that as an error diagnostic plus empty mapping,
			// not a hard failure of the whole composition (§4.2, §8).
			zap.S().Errorw("json config root is not a mapping", "path", path, "err", err)
			return value.Mapping{}, fmt.Errorf("json source %s: root is not a mapping: %w", path, err)
		}

		return value.FromAny(decoded).Map, nil
	}
	return b
}

// warnDuplicateKeys performs a lightweight token scan for repeated keys at
// the top level of a JSON object and logs a diagnostic; it never affects
// the parsed result, which already resolved duplicates last-wins via the
// standard decoder.
func warnDuplicateKeys(path string, data []byte) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return
	}

	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return
		}
		key, ok := keyTok.(string)
		if !ok {
			return
		}
		if seen[key] {
			zap.S().Warnw("duplicate json key resolved last-wins", "path", path, "key", key)
		}
		seen[key] = true

		var skip any
		if err := dec.Decode(&skip); err != nil {
			return
		}
	}
}
