package definition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/typeid"
)

const componentsYAML = `
components:
  - namespace: core
    name: labeled
    description: Has a label
    properties:
      - name: label
        data_type: string
`

const typesYAML = `
entity_types:
  - namespace: iot
    type_name: sensor
    components:
      - namespace: core
        type_name: labeled
    properties:
      - name: value
        data_type: number
  - namespace: iot
    type_name: gateway
relation_types:
  - namespace: iot
    type_name: reports_to
    outbound_type: {namespace: iot, type_name: sensor}
    inbound_type: {namespace: iot, type_name: gateway}
`

const relationsJSON = `{
  "relation_types": [
    {
      "namespace": "iot",
      "name": "backup_of",
      "outbound_type": {"namespace": "iot", "name": "gateway"},
      "inbound_type": {"namespace": "iot", "type_name": "gateway"}
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "components.yaml", componentsYAML)

	bundle, err := Load(path)
	require.NoError(t, err)
	require.Len(t, bundle.Components, 1)

	dao := bundle.Components[0]
	assert.Equal(t, "core", dao.Namespace)
	assert.Equal(t, "labeled", dao.TypeName, "name is accepted as an alias of type_name")
	assert.Equal(t, "Has a label", dao.Description)
	require.Len(t, dao.Properties, 1)
	assert.Equal(t, model.DataTypeString, dao.Properties[0].DataType)
	assert.NotNil(t, dao.Extensions)
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "relations.json", relationsJSON)

	bundle, err := Load(path)
	require.NoError(t, err)
	require.Len(t, bundle.RelationTypes, 1)

	rt := model.RelationTypeFromDAO(bundle.RelationTypes[0])
	assert.Equal(t, typeid.NewRelationTypeID("iot", "backup_of"), rt.Ty)
	assert.Equal(t, typeid.NewEntityTypeID("iot", "gateway"), rt.OutboundType)
	assert.Equal(t, typeid.NewEntityTypeID("iot", "gateway"), rt.InboundType)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-types.yml", typesYAML)
	writeFile(t, dir, "a-components.yaml", componentsYAML)
	writeFile(t, dir, "c-relations.json", relationsJSON)
	writeFile(t, dir, "README.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	bundle, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, bundle.Components, 1)
	assert.Len(t, bundle.EntityTypes, 2)
	require.Len(t, bundle.RelationTypes, 2)
	assert.Equal(t, "reports_to", bundle.RelationTypes[0].TypeName, "files are merged in name order")
	assert.Equal(t, "backup_of", bundle.RelationTypes[1].TypeName)
	assert.Equal(t, 5, bundle.Len())
	assert.NoError(t, bundle.Validate())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat path")
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("empty directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.txt", "nothing here")
		_, err := Load(dir)
		assert.ErrorIs(t, err, ErrNoDefinitions)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "types.toml", "")
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "broken.yaml", "components: [")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.yaml")
		assert.Contains(t, err.Error(), "failed to parse yaml definitions")
	})

	t.Run("malformed file in directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", componentsYAML)
		writeFile(t, dir, "b.json", "{")
		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "b.json")
	})
}

func TestParse(t *testing.T) {
	_, err := Parse([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	bundle, err := Parse([]byte("{}"), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, bundle.Len())
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "a.yaml", want: FormatYAML},
		{path: "a.YML", want: FormatYAML},
		{path: "dir/a.json", want: FormatJSON},
		{path: "a.txt", wantErr: true},
		{path: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("unknown references", func(t *testing.T) {
		bundle, err := Parse([]byte(typesYAML), FormatYAML)
		require.NoError(t, err)

		err = bundle.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDefinition)
		assert.Contains(t, err.Error(), "references unknown component(core__labeled)")

		assert.NoError(t, bundle.Validate(typeid.NewComponentTypeID("core", "labeled")),
			"known types satisfy references")
	})

	t.Run("duplicates and missing names", func(t *testing.T) {
		bundle := &Bundle{
			Components: []model.ComponentDAO{
				{Namespace: "core", TypeName: "labeled"},
				{Namespace: "core", TypeName: "labeled"},
				{Namespace: "core"},
			},
		}
		err := bundle.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "defined more than once")
		assert.Contains(t, err.Error(), "has no type name")
	})

	t.Run("same name in different categories", func(t *testing.T) {
		bundle := &Bundle{
			Components:  []model.ComponentDAO{{Namespace: "core", TypeName: "labeled"}},
			EntityTypes: []model.EntityTypeDAO{{Namespace: "core", TypeName: "labeled"}},
		}
		assert.NoError(t, bundle.Validate())
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "components.yaml", componentsYAML)
	writeFile(t, dir, "types.yaml", typesYAML)

	bundle, err := Load(dir)
	require.NoError(t, err)

	regs := registry.NewMemoryRegistries()
	require.NoError(t, bundle.Register(ctx, regs))

	labeled, err := regs.Components.Get(ctx, typeid.NewComponentTypeID("core", "labeled"))
	require.NoError(t, err)
	assert.True(t, labeled.HasProperty("label"))

	sensor, err := regs.EntityTypes.Get(ctx, typeid.NewEntityTypeID("iot", "sensor"))
	require.NoError(t, err)
	assert.True(t, sensor.HasComponent(labeled.Ty))

	reportsTo, err := regs.RelationTypes.Get(ctx, typeid.NewRelationTypeID("iot", "reports_to"))
	require.NoError(t, err)
	assert.Equal(t, typeid.NewEntityTypeID("iot", "sensor"), reportsTo.OutboundType)
	assert.Equal(t, typeid.NewEntityTypeID("iot", "gateway"), reportsTo.InboundType)
}

func TestRegisterStopsOnError(t *testing.T) {
	ctx := context.Background()
	bundle, err := Parse([]byte(componentsYAML), FormatYAML)
	require.NoError(t, err)

	regs := registry.NewMemoryRegistries()
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err = bundle.Register(cancelled, regs)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "failed to register component(core__labeled)")
}
