// Package seed loads the rating dimension definitions applied at startup.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

//go:embed dimensions.yaml
var defaultDimensions []byte

var validate = validator.New()

type file struct {
	Dimensions []domain.DimensionSpec `yaml:"dimensions" validate:"required,min=1,dive"`
}

// Dimensions returns the dimensions from path, or the built-in set when path
// is empty.
func Dimensions(path string) ([]domain.DimensionSpec, error) {
	data := defaultDimensions
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dimensions file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates a dimensions document. Names must be unique.
func Parse(data []byte) ([]domain.DimensionSpec, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode dimensions: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid dimensions: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Dimensions))
	for _, d := range f.Dimensions {
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("invalid dimensions: duplicate name %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return f.Dimensions, nil
}
