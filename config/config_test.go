package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/ontology"
	"github.com/geoknoesis/ontomap/rdf"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "_:", cfg.IDs.BlankNodePrefix)
	assert.Equal(t, "jsonld", cfg.Serialize.Format)
	assert.Equal(t, "  ", cfg.Serialize.Indent)
	assert.Equal(t, "local", cfg.Serialize.LocalPrefix)
	assert.Equal(t, "urn:ontomap:local#", cfg.Serialize.LocalNamespace)
	assert.False(t, cfg.Construct.Strict)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, rdf.FormatJSONLD, cfg.OutputFormat())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "ontomap.yaml", `
ids:
  blank_node_prefix: "local:"
serialize:
  format: ttl
  local_namespace: http://example.org/local#
construct:
  strict: true
namespaces:
  ex: http://example.org/
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local:", cfg.IDs.BlankNodePrefix)
	assert.Equal(t, rdf.FormatTurtle, cfg.OutputFormat())
	assert.Equal(t, "http://example.org/local#", cfg.Serialize.LocalNamespace)
	assert.Equal(t, "local", cfg.Serialize.LocalPrefix, "unset keys keep their defaults")
	assert.True(t, cfg.Construct.Strict)
	assert.Equal(t, map[string]string{"ex": "http://example.org/"}, cfg.Namespaces)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "ontomap.toml", `
[context]
ignore_conflicts = true

[log]
json = true
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Context.IgnoreConflicts)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "ontomap.yaml", "serialize:\n  indent: \"    \"\n")
	t.Setenv("ONTOMAP_SERIALIZE_INDENT", "\t")
	t.Setenv("ONTOMAP_CONSTRUCT_STRICT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "\t", cfg.Serialize.Indent)
	assert.True(t, cfg.Construct.Strict)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	for name, content := range map[string]string{
		"prefix":    "ids:\n  blank_node_prefix: nocolon\n",
		"format":    "serialize:\n  format: csv\n",
		"local":     "serialize:\n  local_namespace: relative\n",
		"namespace": "namespaces:\n  ex: example\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "ontomap.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	t.Cleanup(namespace.ResetCatalog)
	before := ontology.CurrentDefaults()

	cfg := Default()
	cfg.IDs.BlankNodePrefix = "gen:"
	cfg.Serialize.LocalNamespace = "http://example.org/local#"
	cfg.Construct.Strict = true
	cfg.Namespaces = map[string]string{"lab": "http://example.org/lab#"}

	restore, err := cfg.Apply()
	require.NoError(t, err)

	assert.Equal(t, "gen:", ontology.DefaultIDPolicy().BlankNodePrefix)
	assert.Equal(t, "http://example.org/local#", ontology.CurrentDefaults().LocalNamespace)
	assert.True(t, ontology.CurrentDefaults().Strict)
	iri, ok := namespace.Lookup("lab")
	assert.True(t, ok)
	assert.Equal(t, "http://example.org/lab#", iri)

	restore()
	assert.Equal(t, before, ontology.CurrentDefaults())
	assert.Equal(t, "_:", ontology.DefaultIDPolicy().BlankNodePrefix)
}

func TestApplyRestoresOnCatalogConflict(t *testing.T) {
	t.Cleanup(namespace.ResetCatalog)
	before := ontology.CurrentDefaults()

	cfg := Default()
	cfg.Construct.Strict = true
	cfg.Namespaces = map[string]string{"foaf": "http://example.org/not-foaf/"}

	_, err := cfg.Apply()
	require.Error(t, err)
	assert.Equal(t, before, ontology.CurrentDefaults())
}
