package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestZerologLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(Config{Level: "info", Format: FormatJSON, Out: &buf})

	logger.Info("installed", interfaces.F("path", "/opt/sonar-scanner"), interfaces.F("err", errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "installed", entry["message"])
	assert.Equal(t, "/opt/sonar-scanner", entry["path"])
	assert.Equal(t, "boom", entry["err"])
}

func TestZerologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(Config{Level: "warn", Format: FormatJSON, Out: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestZerologLogger_RunnerDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(Config{Level: "error", Format: FormatJSON, Out: &buf, RunnerDebug: true})

	assert.Equal(t, zerolog.DebugLevel, logger.Level())
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestZerologLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(Config{Format: FormatConsole, Out: &buf})

	logger.Error("download failed", interfaces.F("status", 404))
	out := buf.String()
	assert.Contains(t, out, "download failed")
	assert.Contains(t, out, "404")
}
