package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestErrorCarriesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithSessionID(ctx, "sess-1")
	ctx = log.WithConfigurationID(ctx, "cfg-9")
	ctx = log.WithGroup(ctx, "heating")
	log.Error(ctx, "reconcile.pass_failed", errors.New("connection reset"))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "cfg-9", entry["configuration_id"])
	assert.Equal(t, "heating", entry["group"])
	assert.Equal(t, "connection reset", entry["error"])
	assert.Equal(t, "test", entry["service"])
	assert.Contains(t, entry, "stack")
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{Format: FormatJSON, Output: buf}).Warn(context.Background(), "quiet")
	New(Options{Format: FormatJSON, Output: buf, WarnStack: true}).Warn(context.Background(), "loud")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0], "stack")
	assert.Contains(t, entries[1], "stack")
}

func TestFieldsDoNotLeakIntoParentContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Format: FormatJSON, Output: buf})
	base := log.WithFields(context.Background(), map[string]any{"pass": 1})
	_ = log.WithGroup(base, "heating")

	log.Info(base, "plain")
	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "group")
	assert.EqualValues(t, 1, entries[0]["pass"])
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Format: FormatJSON, Output: buf, Level: zerolog.InfoLevel})
	log.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestConsoleFormatFromEnv(t *testing.T) {
	t.Setenv(envLogFormat, "console")
	buf := &bytes.Buffer{}
	New(Options{Output: buf}).Info(context.Background(), "human")
	assert.Contains(t, buf.String(), "human")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error(log.WithField(context.Background(), "k", "v"), "ignored", nil)
}
