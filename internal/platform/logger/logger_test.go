package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", "info")
	log.Debug("hidden")
	log.Info("visible", "national_id", "****3456")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "visible", line["msg"])
	assert.Equal(t, "e-matdaan", line["service"])
	assert.Equal(t, "****3456", line["national_id"])
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "text", "debug").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
