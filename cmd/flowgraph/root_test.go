package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/flowgraph/health"
	"github.com/zero-day-ai/flowgraph/typeid"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validBundle = `
components:
  - namespace: core
    name: labeled
entity_types:
  - namespace: iot
    type_name: sensor
    components:
      - {namespace: core, type_name: labeled}
  - namespace: iot
    type_name: gateway
relation_types:
  - namespace: iot
    type_name: reports_to
    outbound_type: {namespace: iot, type_name: sensor}
    inbound_type: {namespace: iot, type_name: gateway}
`

func TestFQICommand(t *testing.T) {
	ty := typeid.NewEntityTypeID("iot", "sensor")

	out, _, err := execute(t, "fqi", "entity_type", "iot", "sensor")
	require.NoError(t, err)
	assert.Equal(t, "entity_type(iot__sensor)\t"+ty.FullyQualifiedIdentifier().String()+"\n", out)

	out, _, err = execute(t, "fqi", "entity_type", "iot", "sensor", "--json")
	require.NoError(t, err)
	var decoded fqiOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, ty, decoded.Type)
	assert.Equal(t, ty.FullyQualifiedIdentifier().String(), decoded.FQI)
}

func TestFQICommandErrors(t *testing.T) {
	_, _, err := execute(t, "fqi", "widget", "iot", "sensor")
	assert.ErrorContains(t, err, `unknown type kind "widget"`)

	_, _, err = execute(t, "fqi", "entity_type", "iot")
	assert.Error(t, err)
}

func TestDefinitionsValidate(t *testing.T) {
	out, _, err := execute(t, "definitions", "validate", writeBundle(t, "types.yaml", validBundle))
	require.NoError(t, err)
	assert.Equal(t, "1 components, 2 entity types, 1 relation types: ok\n", out)

	const broken = `
relation_types:
  - namespace: iot
    type_name: watches
    outbound_type: {namespace: iot, type_name: drone}
    inbound_type: {namespace: iot, type_name: camera}
`
	_, _, err = execute(t, "defs", "validate", writeBundle(t, "broken.yaml", broken))
	assert.ErrorContains(t, err, "entity_type(iot__drone)")
	assert.ErrorContains(t, err, "entity_type(iot__camera)")
}

func TestDefinitionsImport(t *testing.T) {
	t.Setenv("FLOWGRAPH_REGISTRY_ENDPOINTS", "")

	out, stderr, err := execute(t, "definitions", "import", writeBundle(t, "types.json",
		`{"components": [{"namespace": "core", "type_name": "labeled"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "imported 1 definitions\n", out)
	assert.Contains(t, stderr, "discarded on exit")
}

func TestLogLevelFlag(t *testing.T) {
	_, _, err := execute(t, "--log-level", "loud", "fqi", "component", "core", "labeled")
	assert.ErrorContains(t, err, "log level")
}

func TestHealthCommand(t *testing.T) {
	t.Setenv("FLOWGRAPH_REGISTRY_ENDPOINTS", "")
	t.Setenv("FLOWGRAPH_DEFINITIONS", "")

	out, _, err := execute(t, "health")
	require.NoError(t, err)
	var status health.Status
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.IsHealthy(), status.Message)

	t.Setenv("FLOWGRAPH_DEFINITIONS", filepath.Join(t.TempDir(), "missing"))
	out, _, err = execute(t, "health")
	assert.ErrorIs(t, err, errUnhealthy)
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, health.StatusUnhealthy, status.Status)
}
