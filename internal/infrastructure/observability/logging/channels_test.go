package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T) (*ChanneledLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToConsole: true,
		Console:         &buf,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelInfo,
	})
	require.NoError(t, err)
	return logger, &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestChannelsTagRecords(t *testing.T) {
	logger, buf := newBufferLogger(t)

	logger.Engagement().Info("Like toggled", "workId", "tide")
	rec := lastRecord(t, buf)
	assert.Equal(t, "engagement", rec["channel"])
	assert.Equal(t, "tide", rec["workId"])

	logger.Storage().Debug("hidden at info")
	assert.Equal(t, "Like toggled", lastRecord(t, buf)["msg"])
}

func TestSetChannelLevel(t *testing.T) {
	logger, buf := newBufferLogger(t)

	require.NoError(t, logger.SetChannelLevel(ChannelStorage, slog.LevelDebug))
	logger.Storage().Debug("now visible")
	assert.Equal(t, "now visible", lastRecord(t, buf)["msg"])
	assert.Equal(t, "DEBUG", logger.GetChannelLevels()["storage"])
	assert.Equal(t, "INFO", logger.GetChannelLevels()["http"])

	require.Error(t, logger.SetChannelLevel(Channel("nope"), slog.LevelDebug))
}

func TestWithContextMasksVisitor(t *testing.T) {
	logger, buf := newBufferLogger(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, VisitorIDKey, "01HZY3K9QW8V7T6S5R4P3N2M1K")
	logger.WithContext(ChannelHTTP, ctx).Info("handled")

	rec := lastRecord(t, buf)
	assert.Equal(t, "req-1", rec["requestId"])
	assert.Equal(t, "01HZ****2M1K", rec["visitorId"])
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "********", SanitizeVisitorID("short"))
	assert.Equal(t, "abcd****wxyz", SanitizeVisitorID("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "SELECT 1 FROM t", sanitizeQuery("SELECT 1\nFROM\tt"))
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewChanneledLogger(&LoggerConfig{
		OutputToFile: true,
		LogDirectory: dir,
		JSONFormat:   false,
		DefaultLevel: slog.LevelInfo,
	})
	require.NoError(t, err)

	logger.Sitemap().Info("written")
	require.NoError(t, logger.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "sitemap.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "msg=written")
	assert.Contains(t, string(raw), "channel=sitemap")
}

func TestDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.NotPanics(t, func() {
		logger.System().Error("dropped")
		logger.LogError(ChannelHTTP, "op", assert.AnError, map[string]any{"k": "v"})
	})
}
