package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "text", Output: &buf})

	log.Info(context.Background(), "document rendered", "path", "doc.md")
	out := buf.String()
	assert.Contains(t, out, "document rendered")
	assert.Contains(t, out, "path=doc.md")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Output: &buf})

	log.Warn(context.Background(), "slow render", "ms", 120)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "slow render", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(120), entry["ms"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden too")
	assert.Empty(t, buf.String())

	log.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestError_AppendsErrorField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf})

	log.Error(context.Background(), errors.New("boom"), "render failed")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).WithComponent("server")

	log.Info(context.Background(), "listening")
	assert.Contains(t, buf.String(), "component=server")
}

func TestNop(t *testing.T) {
	// Must not panic or write anywhere.
	log := Nop()
	log.Info(context.Background(), "discarded")
	log.Error(context.Background(), errors.New("x"), "discarded")
}
