package monitor

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/logger"
)

// QuoteHistory keeps a bounded in-memory window of quote updates and logs
// every update to a CSV file.
type QuoteHistory struct {
	mu        sync.RWMutex
	csvWriter *logger.SafeCSVWriter
	updates   []QuoteUpdate
	maxSize   int
	logger    *zap.Logger

	totalUpdates int
}

// NewQuoteHistory creates the history manager, logging under logDir/quotes.
func NewQuoteHistory(logDir string, maxSize int, zapLogger *zap.Logger) (*QuoteHistory, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("history size must be positive")
	}

	filename := fmt.Sprintf("quotes_%s.csv", time.Now().Format("20060102_150405"))
	csvPath := filepath.Join(logDir, "quotes", filename)
	csvWriter, err := logger.NewSafeCSVWriter(csvPath, CSVHeaders(), 30*time.Second, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("create quote log: %w", err)
	}

	zapLogger.Info("quote history initialized",
		zap.String("csv_file", csvPath),
		zap.Int("max_memory_updates", maxSize))

	return &QuoteHistory{
		csvWriter: csvWriter,
		updates:   make([]QuoteUpdate, 0, maxSize),
		maxSize:   maxSize,
		logger:    zapLogger,
	}, nil
}

// Record appends one update, evicting the oldest when the window is full.
func (h *QuoteHistory) Record(update QuoteUpdate) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	if err := h.csvWriter.WriteRecord(update.ToCSV()); err != nil {
		h.logger.Error("failed to log quote update",
			zap.String("collection", update.Collection),
			zap.Error(err))
		return fmt.Errorf("log quote update: %w", err)
	}

	if len(h.updates) >= h.maxSize {
		h.updates = h.updates[1:]
	}
	h.updates = append(h.updates, update)
	h.totalUpdates++
	return nil
}

// Recent returns up to n most recent updates, newest last.
func (h *QuoteHistory) Recent(n int) []QuoteUpdate {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.updates) {
		n = len(h.updates)
	}
	out := make([]QuoteUpdate, n)
	copy(out, h.updates[len(h.updates)-n:])
	return out
}

// Latest returns the most recent update for a collection side.
func (h *QuoteHistory) Latest(collection string, side Side) (QuoteUpdate, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.updates) - 1; i >= 0; i-- {
		u := h.updates[i]
		if u.Collection == collection && u.Side == side {
			return u, true
		}
	}
	return QuoteUpdate{}, false
}

// Total returns how many updates were recorded since start.
func (h *QuoteHistory) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalUpdates
}

// Close flushes and closes the CSV log.
func (h *QuoteHistory) Close() error {
	return h.csvWriter.Close()
}
