// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", "info")
	logger.Debug("hidden")
	logger.Info("collected", "seed", "espresso machine")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "collected", entry["msg"])
	assert.Equal(t, "keyword-engine", entry["service"])
	assert.Equal(t, "espresso machine", entry["seed"])
}

func TestNewTextDefault(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", "warn").Warn("source degraded", "source", "model")
	assert.Contains(t, buf.String(), "source=model")
}
