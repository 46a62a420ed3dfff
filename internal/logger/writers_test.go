package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestSafeCSVWriterWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.csv")
	header := []string{"timestamp", "collection", "side", "price"}

	w, err := NewSafeCSVWriter(path, header, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"t1", "stars1c", "buy", "1000000"}))
	require.NoError(t, w.Close())

	// Reopening the same file must not repeat the header.
	w, err = NewSafeCSVWriter(path, header, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"t2", "stars1c", "sell", "900000"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,collection,side,price", lines[0])
	assert.Contains(t, lines[1], "t1")
	assert.Contains(t, lines[2], "t2")
}

func TestSafeCSVWriterStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.csv")
	w, err := NewSafeCSVWriter(path, nil, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteRecord([]string{"a"}))
	require.NoError(t, w.WriteRecord([]string{"b"}))
	require.NoError(t, w.Flush())

	records, flushes := w.GetStats()
	assert.Equal(t, uint64(2), records)
	assert.Equal(t, uint64(1), flushes)
}

func TestNewLoggerLevels(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(Config{})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "shout"})
	assert.Error(t, err)
}
