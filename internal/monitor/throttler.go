package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// QuoteThrottler rate-limits the quote stream so fast polling loops do not
// overwhelm downstream consumers. Each (collection, side) stream throttles
// independently; within a stream the newest update always wins: a throttled
// update is kept pending and flushed once the interval passes.
type QuoteThrottler struct {
	mu             sync.RWMutex
	updateInterval time.Duration
	lastUpdate     map[sideKey]time.Time
	pending        map[sideKey]QuoteUpdate
	outputCh       chan QuoteUpdate
	logger         *zap.Logger

	droppedUpdates uint64
	sentUpdates    uint64
}

// NewQuoteThrottler creates a throttler writing to outputCh.
func NewQuoteThrottler(updateInterval time.Duration, outputCh chan QuoteUpdate, logger *zap.Logger) *QuoteThrottler {
	return &QuoteThrottler{
		updateInterval: updateInterval,
		lastUpdate:     make(map[sideKey]time.Time),
		pending:        make(map[sideKey]QuoteUpdate),
		outputCh:       outputCh,
		logger:         logger,
	}
}

// Send forwards an update, or holds it as pending when its stream is inside
// the interval or the consumer is behind.
func (qt *QuoteThrottler) Send(update QuoteUpdate) {
	qt.mu.Lock()
	defer qt.mu.Unlock()

	key := sideKey{update.Collection, update.Side}
	now := time.Now()
	if now.Sub(qt.lastUpdate[key]) < qt.updateInterval {
		qt.pending[key] = update
		qt.droppedUpdates++
		return
	}

	select {
	case qt.outputCh <- update:
		qt.lastUpdate[key] = now
		qt.sentUpdates++
		delete(qt.pending, key)
	default:
		qt.pending[key] = update
		qt.droppedUpdates++
		qt.logger.Warn("quote channel full, holding update as pending",
			zap.String("collection", update.Collection),
			zap.String("side", string(update.Side)))
	}
}

// FlushPending sends every held update whose stream interval has passed.
// Call it periodically from the polling loop.
func (qt *QuoteThrottler) FlushPending() {
	qt.mu.Lock()
	defer qt.mu.Unlock()

	now := time.Now()
	for key, update := range qt.pending {
		if now.Sub(qt.lastUpdate[key]) < qt.updateInterval {
			continue
		}
		select {
		case qt.outputCh <- update:
			qt.lastUpdate[key] = now
			qt.sentUpdates++
			delete(qt.pending, key)
		default:
			return
		}
	}
}

// Stats returns sent and dropped counts.
func (qt *QuoteThrottler) Stats() (sent, dropped uint64) {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return qt.sentUpdates, qt.droppedUpdates
}

// HasPending reports whether any update is waiting to be flushed.
func (qt *QuoteThrottler) HasPending() bool {
	qt.mu.RLock()
	defer qt.mu.RUnlock()
	return len(qt.pending) > 0
}
