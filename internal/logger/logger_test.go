package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("info", "json", &buf)
	defer Initialize("info", "text")

	WithBooking(42).Info("settled", "outcome", "LATE_RETURN")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "settled", entry["msg"])
	assert.Equal(t, float64(42), entry["booking_id"])
	assert.Equal(t, "LATE_RETURN", entry["outcome"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("warn", "text", &buf)
	defer Initialize("info", "text")

	EnterMethod("bookingService.Quote")
	DatabaseResult("SELECT", 1, nil)
	assert.Empty(t, buf.String())

	DatabaseResult("INSERT", 0, errors.New("boom"))
	assert.Contains(t, buf.String(), "Database call failed")
	assert.Contains(t, buf.String(), "boom")
}
