package fields

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/townscout/curator/pkg/errors"
)

// Option configures a Catalog during construction.
type Option func(*Catalog) error

// catalogFile is the YAML shape of a catalog override file.
type catalogFile struct {
	Fields []Descriptor `yaml:"fields"`
}

// WithDescriptors overlays additional descriptors onto the defaults.
// Overrides for existing fields merge non-zero parts.
func WithDescriptors(descriptors ...Descriptor) Option {
	return func(c *Catalog) error {
		for _, d := range descriptors {
			if d.Name == "" {
				return errors.NewValidationError("name", d, "descriptor requires a field name")
			}
			c.add(d)
		}
		return nil
	}
}

// WithFile overlays descriptors loaded from a YAML catalog file.
func WithFile(path string) Option {
	return func(c *Catalog) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapIO("read catalog file", path, err)
		}
		return WithYAML(data)(c)
	}
}

// WithYAML overlays descriptors parsed from YAML catalog data.
func WithYAML(data []byte) Option {
	return func(c *Catalog) error {
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return errors.NewParseError("yaml", "field catalog", err.Error(), err)
		}
		return WithDescriptors(file.Fields...)(c)
	}
}
