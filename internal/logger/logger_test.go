package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler_Production(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(consoleHandler(&buf, false))

	log.Debug("hidden")
	log.Info("briefing submitted", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "briefing submitted", entry["msg"])
	assert.Equal(t, float64(7), entry["id"])
}

func TestConsoleHandler_Development(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(consoleHandler(&buf, true))

	log.Debug("upload progress", "pct", 50)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "pct=50")
}

func TestInit_WithoutSentry(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	Init(Options{Development: true, AppName: "briefing"})

	require.NotNil(t, Log)
	assert.Same(t, Log, slog.Default())
}
