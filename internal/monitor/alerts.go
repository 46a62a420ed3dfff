package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AlertType represents different types of quote alerts.
type AlertType string

const (
	AlertTypeBuyOpportunity  AlertType = "buy_opportunity"
	AlertTypeSellOpportunity AlertType = "sell_opportunity"
	AlertTypeThinLiquidity   AlertType = "thin_liquidity"
	AlertTypeStaleQuotes     AlertType = "stale_quotes"
)

// Alert is one triggered alert.
type Alert struct {
	ID         string    `json:"id"`
	Type       AlertType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Collection string    `json:"collection"`
	Message    string    `json:"message"`
	Severity   string    `json:"severity"` // info, warning

	QuotePrice string `json:"quote_price,omitempty"`
	PoolID     uint64 `json:"pool_id,omitempty"`
	Depth      int    `json:"depth,omitempty"`
}

// AlertThresholds configures per-collection alert triggers. Zero-valued
// thresholds disable the corresponding alert.
type AlertThresholds struct {
	// BuyBelow fires when the best buy quote drops to or under this price.
	BuyBelow decimal.Decimal
	// SellAbove fires when the best sell quote reaches this price.
	SellAbove decimal.Decimal
	// MinDepth fires when fewer pools than this quote the side.
	MinDepth int
	// StaleAfter fires when a side stops updating for this long.
	StaleAfter time.Duration
}

// AlertManager checks quote updates against thresholds, with a cooldown per
// (collection, type) so a hovering price does not spam.
type AlertManager struct {
	mu         sync.RWMutex
	thresholds map[string]AlertThresholds
	cooldown   time.Duration
	logger     *zap.Logger

	alerts    []Alert
	maxAlerts int
	lastFired map[string]time.Time
	lastSeen  map[sideKey]time.Time
	notifier  Notifier
}

type sideKey struct {
	collection string
	side       Side
}

// NewAlertManager builds an alert manager from per-collection thresholds.
func NewAlertManager(thresholds map[string]AlertThresholds, cooldown time.Duration, maxAlerts int, logger *zap.Logger) *AlertManager {
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}
	if maxAlerts <= 0 {
		maxAlerts = 256
	}
	return &AlertManager{
		thresholds: thresholds,
		cooldown:   cooldown,
		logger:     logger,
		maxAlerts:  maxAlerts,
		lastFired:  make(map[string]time.Time),
		lastSeen:   make(map[sideKey]time.Time),
	}
}

// SetNotifier attaches an external alert sink. Delivery failures are logged,
// never fatal.
func (am *AlertManager) SetNotifier(n Notifier) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.notifier = n
}

// Check evaluates one update and returns any alerts it triggered.
func (am *AlertManager) Check(update QuoteUpdate) []Alert {
	am.mu.Lock()
	defer am.mu.Unlock()

	cfg, ok := am.thresholds[update.Collection]
	if !ok {
		return nil
	}
	am.lastSeen[sideKey{update.Collection, update.Side}] = update.Timestamp

	var fired []Alert
	price, err := update.Best.QuotePrice.Decimal()
	if err != nil {
		am.logger.Warn("unparseable quote price in alert check",
			zap.String("collection", update.Collection),
			zap.Error(err))
		return nil
	}

	if update.Side == SideBuy && cfg.BuyBelow.IsPositive() && price.LessThanOrEqual(cfg.BuyBelow) {
		fired = am.fire(fired, update, AlertTypeBuyOpportunity, "info",
			fmt.Sprintf("best buy quote %s at or under %s", price, cfg.BuyBelow))
	}
	if update.Side == SideSell && cfg.SellAbove.IsPositive() && price.GreaterThanOrEqual(cfg.SellAbove) {
		fired = am.fire(fired, update, AlertTypeSellOpportunity, "info",
			fmt.Sprintf("best sell quote %s at or above %s", price, cfg.SellAbove))
	}
	if cfg.MinDepth > 0 && update.Depth < cfg.MinDepth {
		fired = am.fire(fired, update, AlertTypeThinLiquidity, "warning",
			fmt.Sprintf("%d pools quoting %s side, want %d", update.Depth, update.Side, cfg.MinDepth))
	}
	return fired
}

// CheckStale fires staleness alerts for sides that stopped updating. Call it
// periodically from the polling loop.
func (am *AlertManager) CheckStale(now time.Time) []Alert {
	am.mu.Lock()
	defer am.mu.Unlock()

	var fired []Alert
	for key, seen := range am.lastSeen {
		cfg, ok := am.thresholds[key.collection]
		if !ok || cfg.StaleAfter <= 0 {
			continue
		}
		if now.Sub(seen) >= cfg.StaleAfter {
			update := QuoteUpdate{Collection: key.collection, Side: key.side, Timestamp: now}
			fired = am.fire(fired, update, AlertTypeStaleQuotes, "warning",
				fmt.Sprintf("no %s quote updates for %s on %s",
					key.side, now.Sub(seen).Round(time.Second), key.collection))
		}
	}
	return fired
}

func (am *AlertManager) fire(fired []Alert, update QuoteUpdate, alertType AlertType, severity, message string) []Alert {
	key := update.Collection + "/" + string(alertType)
	now := time.Now()
	if last, ok := am.lastFired[key]; ok && now.Sub(last) < am.cooldown {
		return fired
	}
	am.lastFired[key] = now

	alert := Alert{
		ID:         fmt.Sprintf("%s_%d", alertType, now.UnixNano()),
		Type:       alertType,
		Timestamp:  now,
		Collection: update.Collection,
		Message:    message,
		Severity:   severity,
		QuotePrice: string(update.Best.QuotePrice),
		PoolID:     update.Best.ID,
		Depth:      update.Depth,
	}

	if len(am.alerts) >= am.maxAlerts {
		am.alerts = am.alerts[1:]
	}
	am.alerts = append(am.alerts, alert)

	am.logger.Info("alert triggered",
		zap.String("type", string(alertType)),
		zap.String("collection", update.Collection),
		zap.String("message", message))

	if am.notifier != nil {
		go func(n Notifier, alert Alert) {
			if err := n.Notify(alert); err != nil {
				am.logger.Warn("alert delivery failed", zap.Error(err))
			}
		}(am.notifier, alert)
	}
	return append(fired, alert)
}

// Recent returns up to n most recent alerts, newest last.
func (am *AlertManager) Recent(n int) []Alert {
	am.mu.RLock()
	defer am.mu.RUnlock()

	if n <= 0 || n > len(am.alerts) {
		n = len(am.alerts)
	}
	out := make([]Alert, n)
	copy(out, am.alerts[len(am.alerts)-n:])
	return out
}
