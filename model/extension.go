package model

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Extension is opaque named metadata attached to a type or an instance.
// The data model never interprets the extension value.
type Extension struct {
	// Name identifies the extension. Lookups by name are exact and case-sensitive.
	Name string `json:"name" yaml:"name"`

	// Extension is the extension payload as decoded from JSON or YAML.
	Extension any `json:"extension" yaml:"extension"`
}

// NewExtension creates an extension.
func NewExtension(name string, extension any) Extension {
	return Extension{Name: name, Extension: extension}
}

// Decode maps the extension payload onto out, which must be a pointer.
// Struct fields are matched by their json tag.
func (e Extension) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder for extension %q: %w", e.Name, err)
	}
	if err := decoder.Decode(e.Extension); err != nil {
		return fmt.Errorf("failed to decode extension %q: %w", e.Name, err)
	}
	return nil
}

func hasExtension(extensions []Extension, name string) bool {
	_, ok := findExtension(extensions, name)
	return ok
}

func findExtension(extensions []Extension, name string) (Extension, bool) {
	for _, ext := range extensions {
		if ext.Name == name {
			return ext, true
		}
	}
	return Extension{}, false
}
