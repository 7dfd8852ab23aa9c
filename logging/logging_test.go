package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/angas/agilewatch/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected slog.Level
	}{
		{"nil defaults to info", nil, slog.LevelInfo},
		{"debug", strPtr("debug"), slog.LevelDebug},
		{"upper case warn", strPtr("WARN"), slog.LevelWarn},
		{"error", strPtr("Error"), slog.LevelError},
		{"offset", strPtr("info+2"), slog.LevelInfo + 2},
		{"surrounding spaces", strPtr(" error "), slog.LevelError},
		{"unknown defaults to info", strPtr("verbose"), slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelFromString(tt.input))
		})
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)).With("module", "test")

	logger.Debug("resolving slot")
	logger.Warn("fetch failed")

	assert.Contains(t, debugBuf.String(), "resolving slot")
	assert.Contains(t, debugBuf.String(), "fetch failed")
	assert.Contains(t, debugBuf.String(), "module=test")
	assert.NotContains(t, warnBuf.String(), "resolving slot")
	assert.Contains(t, warnBuf.String(), "fetch failed")
}

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("database is locked")
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&buf, nil))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "prices fetched", 0))
	assert.ErrorContains(t, err, "database is locked")
	assert.Contains(t, buf.String(), "prices fetched")
}

func TestFormatAttrs(t *testing.T) {
	attrs := []slog.Attr{slog.String("module", "prices"), slog.Int("skipped", 2)}

	assert.Equal(t, "module=prices; skipped=2", formatAttrs(attrs, LogAttrFormatText))
	assert.Equal(t, `[{"module":"prices"},{"skipped":"2"}]`, formatAttrs(attrs, LogAttrFormatJSON))
	assert.Empty(t, formatAttrs(nil, LogAttrFormatJSON))
}

func TestSQLiteHandlerQualifiesGroups(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	logger := slog.New(NewSQLiteHandler(db, slog.LevelDebug, LogAttrFormatText)).
		With("module", "prices").
		WithGroup("fetch").
		With("provider", "octopus-rest")
	logger.Info("prices fetched",
		slog.Int("slots", 48),
		slog.Group("window", slog.String("from", "10:00")),
		slog.Group("", slog.String("inline", "yes")))

	entries, err := db.GetLogEntries(ctx, slog.LevelDebug, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t,
		"module=prices; fetch.provider=octopus-rest; fetch.slots=48; fetch.window.from=10:00; fetch.inline=yes",
		entries[0].Attrs)
}

func TestQualify(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		attr   slog.Attr
		want   []string
	}{
		{"no prefix", "", slog.String("module", "prices"), []string{"module"}},
		{"prefixed", "fetch", slog.String("provider", "sdk"), []string{"fetch.provider"}},
		{"nested group", "a", slog.Group("b", slog.Int("c", 1)), []string{"a.b.c"}},
		{"empty attr dropped", "a", slog.Attr{}, nil},
		{"empty group dropped", "", slog.Group("g"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			for _, a := range qualify(tt.prefix, tt.attr, nil) {
				keys = append(keys, a.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}
