package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormatEmitsOneJSONObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.InfoLevel, Format: JSON, Output: &buf})
	log.Info().Str("dir", "/tmp/data").Msg("engine opened")

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "engine opened", parsed["message"])
	assert.Equal(t, "/tmp/data", parsed["dir"])
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.WarnLevel, Format: JSON, Output: &buf})
	log.Info().Msg("should be suppressed")
	assert.Empty(t, buf.Bytes())

	log.Warn().Msg("should appear")
	assert.NotEmpty(t, buf.Bytes())
}

func TestComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.InfoLevel, Format: JSON, Output: &buf})
	child := log.Component("wal")
	child.Info().Msg("segment rotated")

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "wal", parsed["component"])
}

func TestDefaultReturnsUsableLogger(t *testing.T) {
	assert.NotNil(t, Default())
}
