package config

import (
	"encoding/json"

	"github.com/yanizio/confstack/internal/value"
)

// encodeCachedTree/decodeCachedTree bridge a loaded mapping to the opaque
// []byte the cache.Backend contract stores (spec.md §4.4 calls the
// on-disk/in-memory entry format "opaque to the caller"); JSON is the
// simplest faithful round trip over value.Value's ToAny/FromAny pair.
func encodeCachedTree(m value.Mapping) ([]byte, error) {
	return json.Marshal(value.Map(m).ToAny())
}

func decodeCachedTree(data []byte) (value.Mapping, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	v := value.FromAny(decoded)
	if v.Kind != value.KindMapping {
		return value.Mapping{}, nil
	}
	return v.Map, nil
}
