package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/yanizio/confstack/internal/value"
)

func treeToAny(tree value.Mapping) any {
	return value.Map(tree).ToAny()
}

// structValidator mirrors the teacher's package-level go-playground
// validator singleton (internal/config/validator.go's `v`), reused here
// for Bind's post-decode struct validation.
var structValidator = validator.New()

// Bind decodes the current composed tree into the struct pointed to by
// ptr, using mapstructure the way the teacher's loader used koanf's
// k.Unmarshal("", &cfg), then runs go-playground/validator over the
// result the way validateStruct did (spec.md's ambient addition; C8's
// Bind is not a distinct spec.md operation but generalizes the teacher's
// unmarshal-then-validate step for typed callers).
func (m *Manager) Bind(ptr any) error {
	tree := m.currentTree()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           ptr,
		WeaklyTypedInput: true,
		TagName:          "config",
	})
	if err != nil {
		return fmt.Errorf("config: build decoder: %w", err)
	}

	if err := decoder.Decode(treeToAny(tree)); err != nil {
		return fmt.Errorf("config: decode tree: %w", err)
	}

	if err := structValidator.Struct(ptr); err != nil {
		return fmt.Errorf("config: struct validation: %w", err)
	}
	return nil
}
