// Package definition loads type definition bundles from YAML and JSON files.
//
// A bundle lists components, entity types and relation types in their persisted
// DAO form:
//
//	components:
//	  - namespace: core
//	    name: labeled          # legacy alias of type_name
//	    properties:
//	      - name: label
//	        data_type: string
//	entity_types:
//	  - namespace: iot
//	    type_name: sensor
//	    components:
//	      - namespace: core
//	        type_name: labeled
//	relation_types:
//	  - namespace: iot
//	    type_name: reports_to
//	    outbound_type: {namespace: iot, type_name: sensor}
//	    inbound_type: {namespace: iot, type_name: gateway}
//
// Load accepts a single file or a directory, in which case every .yaml, .yml and
// .json file in it is loaded in name order and merged.
package definition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/typeid"
)

var (
	// ErrNoDefinitions indicates that a directory contains no definition files.
	ErrNoDefinitions = errors.New("definition: no definition files found")

	// ErrUnsupportedFormat indicates a file extension other than .yaml, .yml or .json.
	ErrUnsupportedFormat = errors.New("definition: unsupported file format")

	// ErrInvalidDefinition is wrapped by every error reported by Validate.
	ErrInvalidDefinition = errors.New("definition: invalid definition")
)

// Format is the encoding of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the format for a file name based on its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Bundle is a set of type definitions in persisted form.
type Bundle struct {
	Components    []model.ComponentDAO    `json:"components" yaml:"components"`
	EntityTypes   []model.EntityTypeDAO   `json:"entity_types" yaml:"entity_types"`
	RelationTypes []model.RelationTypeDAO `json:"relation_types" yaml:"relation_types"`
}

// Parse decodes a bundle.
func Parse(data []byte, format Format) (*Bundle, error) {
	var bundle Bundle
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &bundle); err != nil {
			return nil, fmt.Errorf("failed to parse yaml definitions: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &bundle); err != nil {
			return nil, fmt.Errorf("failed to parse json definitions: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &bundle, nil
}

// Load reads a bundle from a file or a directory of files.
func Load(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if !info.IsDir() {
		return loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := FormatOf(entry.Name()); err == nil {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDefinitions, path)
	}
	slices.Sort(files)

	bundle := &Bundle{}
	for _, file := range files {
		loaded, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		bundle.Merge(loaded)
	}
	return bundle, nil
}

func loadFile(path string) (*Bundle, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	bundle, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bundle, nil
}

// Merge appends the definitions of other.
func (b *Bundle) Merge(other *Bundle) {
	b.Components = append(b.Components, other.Components...)
	b.EntityTypes = append(b.EntityTypes, other.EntityTypes...)
	b.RelationTypes = append(b.RelationTypes, other.RelationTypes...)
}

// Len returns the total number of definitions.
func (b *Bundle) Len() int {
	return len(b.Components) + len(b.EntityTypes) + len(b.RelationTypes)
}

// Validate checks that every definition has a type name, that no type is defined
// twice and that every referenced component and entity type is defined in the
// bundle or listed in known. All problems are reported together.
func (b *Bundle) Validate(known ...typeid.TypeID) error {
	defined := make(map[typeid.TypeID]bool, b.Len()+len(known))
	for _, ty := range known {
		defined[ty] = true
	}

	var errs []error
	define := func(ty typeid.TypeID) {
		if ty.TypeName == "" {
			errs = append(errs, fmt.Errorf("%w: %s in namespace %q has no type name", ErrInvalidDefinition, ty.Kind, ty.Namespace))
			return
		}
		if defined[ty] {
			errs = append(errs, fmt.Errorf("%w: %s is defined more than once", ErrInvalidDefinition, ty))
			return
		}
		defined[ty] = true
	}

	for _, dao := range b.Components {
		define(typeid.NewComponentTypeID(dao.Namespace, dao.TypeName))
	}
	for _, dao := range b.EntityTypes {
		define(typeid.NewEntityTypeID(dao.Namespace, dao.TypeName))
	}
	for _, dao := range b.RelationTypes {
		define(typeid.NewRelationTypeID(dao.Namespace, dao.TypeName))
	}

	reference := func(owner, ty typeid.TypeID) {
		if !defined[ty] {
			errs = append(errs, fmt.Errorf("%w: %s references unknown %s", ErrInvalidDefinition, owner, ty))
		}
	}

	for _, dao := range b.EntityTypes {
		owner := typeid.NewEntityTypeID(dao.Namespace, dao.TypeName)
		for _, ref := range dao.Components {
			reference(owner, ref.TypeID(typeid.Component))
		}
	}
	for _, dao := range b.RelationTypes {
		owner := typeid.NewRelationTypeID(dao.Namespace, dao.TypeName)
		reference(owner, dao.OutboundType.TypeID(typeid.EntityType))
		reference(owner, dao.InboundType.TypeID(typeid.EntityType))
		for _, ref := range dao.Components {
			reference(owner, ref.TypeID(typeid.Component))
		}
	}

	return errors.Join(errs...)
}

// Register converts every definition and stores it in the registries: components
// first, then entity types, then relation types.
func (b *Bundle) Register(ctx context.Context, regs registry.Registries) error {
	for _, dao := range b.Components {
		c := model.ComponentFromDAO(dao)
		if err := regs.Components.Register(ctx, c); err != nil {
			return fmt.Errorf("failed to register %s: %w", c.Ty, err)
		}
	}
	for _, dao := range b.EntityTypes {
		et := model.EntityTypeFromDAO(dao)
		if err := regs.EntityTypes.Register(ctx, et); err != nil {
			return fmt.Errorf("failed to register %s: %w", et.Ty, err)
		}
	}
	for _, dao := range b.RelationTypes {
		rt := model.RelationTypeFromDAO(dao)
		if err := regs.RelationTypes.Register(ctx, rt); err != nil {
			return fmt.Errorf("failed to register %s: %w", rt.Ty, err)
		}
	}
	return nil
}
