package secrets

import (
	"regexp"

	"github.com/yanizio/confstack/internal/value"
)

// DefaultMaskPattern matches key names commonly holding sensitive material,
// matching spec.md §4.8's example vocabulary.
var DefaultMaskPattern = regexp.MustCompile(`(?i)(password|secret|token|api[_-]?key|credential)`)

const maskedPlaceholder = "***MASKED***"

// MaskTree returns a deep copy of tree with every scalar whose key (at any
// depth) matches pattern replaced by a placeholder. The live tree is never
// mutated (spec.md §4.8, P11).
func MaskTree(tree value.Mapping, pattern *regexp.Regexp) value.Mapping {
	if pattern == nil {
		pattern = DefaultMaskPattern
	}
	return maskMapping(tree, pattern)
}

func maskMapping(m value.Mapping, pattern *regexp.Regexp) value.Mapping {
	out := make(value.Mapping, len(m))
	for k, v := range m {
		if pattern.MatchString(k) && isScalar(v) {
			out[k] = value.String(maskedPlaceholder)
			continue
		}
		out[k] = maskValue(v, pattern)
	}
	return out
}

func maskValue(v value.Value, pattern *regexp.Regexp) value.Value {
	switch v.Kind {
	case value.KindMapping:
		return value.Map(maskMapping(v.Map, pattern))
	case value.KindSequence:
		seq := make(value.Sequence, len(v.Seq))
		for i, child := range v.Seq {
			seq[i] = maskValue(child, pattern)
		}
		return value.Seq(seq)
	default:
		return v.Clone()
	}
}

func isScalar(v value.Value) bool {
	return v.Kind != value.KindMapping && v.Kind != value.KindSequence
}
