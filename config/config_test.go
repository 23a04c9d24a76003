package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddb/firelocal/internal/compression"
	"github.com/embeddb/firelocal/internal/rules"
)

func TestLoadWithNoFilesReturnsDefaults(t *testing.T) {
	loaded, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "./firelocal-data", loaded.DataDir)
	assert.NotNil(t, loaded.Options.Logger)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
data_dir: /tmp/mydata
max_document_size: 4096
rules_mode: deny-all
compression: snappy
`), 0o644))

	loaded, err := Load(yamlPath, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mydata", loaded.DataDir)
	assert.Equal(t, 4096, loaded.Options.MaxDocumentSize)
	assert.Equal(t, rules.ModeDenyAll, loaded.Options.RulesMode)
	assert.Equal(t, compression.Snappy, loaded.Options.Compression)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("data_dir: /tmp/from-yaml\n"), 0o644))

	t.Setenv("FIRELOCAL_DATA_DIR", "/tmp/from-env")
	loaded, err := Load(yamlPath, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env", loaded.DataDir)
}

func TestDotEnvFileOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("data_dir: /tmp/from-yaml\n"), 0o644))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("FIRELOCAL_DATA_DIR=/tmp/from-dotenv\n"), 0o644))

	loaded, err := Load(yamlPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv", loaded.DataDir)
}

func TestProcessEnvOutranksDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("FIRELOCAL_DATA_DIR=/tmp/from-dotenv\n"), 0o644))

	t.Setenv("FIRELOCAL_DATA_DIR", "/tmp/from-real-env")
	loaded, err := Load("", envPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-real-env", loaded.DataDir)
}

func TestLoadMissingFilesAreNotErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "nope.env"))
	assert.NoError(t, err)
}

func TestParseRulesMode(t *testing.T) {
	assert.Equal(t, rules.ModeDenyAll, parseRulesMode("deny-all"))
	assert.Equal(t, rules.ModeAllowAll, parseRulesMode("allow-all"))
	assert.Equal(t, rules.ModeAllowAll, parseRulesMode(""))
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, compression.None, parseCompression("none"))
	assert.Equal(t, compression.Snappy, parseCompression("snappy"))
	assert.Equal(t, compression.LZ4, parseCompression("lz4"))
	assert.Equal(t, compression.Zstd, parseCompression("anything-else"))
}
