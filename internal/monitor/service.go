package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rmansurov/infinity-bot/internal/dex"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

// ServiceConfig configures the quote polling service.
type ServiceConfig struct {
	Collections      []string
	Interval         time.Duration // poll interval per collection
	QuoteLimit       uint32        // quotes fetched per side, bounds depth
	ThrottleInterval time.Duration // min spacing of emitted updates
	BufferSize       int           // update channel capacity
}

// Service polls both quote books of each configured collection and feeds
// the history, alert and metrics layers. Consumers read Updates().
type Service struct {
	cfg       ServiceConfig
	querier   *dex.PoolQuerier
	history   *QuoteHistory
	alerts    *AlertManager
	throttler *QuoteThrottler
	updates   chan QuoteUpdate
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// NewService builds the monitoring service.
func NewService(cfg ServiceConfig, querier *dex.PoolQuerier, history *QuoteHistory, alerts *AlertManager, logger *zap.Logger, mc *metrics.Collector) (*Service, error) {
	if querier == nil {
		return nil, fmt.Errorf("pool querier cannot be nil")
	}
	if len(cfg.Collections) == 0 {
		return nil, fmt.Errorf("at least one collection must be monitored")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.QuoteLimit == 0 {
		cfg.QuoteLimit = 10
	}
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = 500 * time.Millisecond
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 128
	}

	updates := make(chan QuoteUpdate, cfg.BufferSize)
	return &Service{
		cfg:       cfg,
		querier:   querier,
		history:   history,
		alerts:    alerts,
		throttler: NewQuoteThrottler(cfg.ThrottleInterval, updates, logger),
		updates:   updates,
		logger:    logger,
		metrics:   mc,
	}, nil
}

// Updates returns the throttled quote stream.
func (s *Service) Updates() <-chan QuoteUpdate {
	return s.updates
}

// Run polls until the context is cancelled. One goroutine per collection
// plus a staleness checker.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, collection := range s.cfg.Collections {
		collection := collection
		g.Go(func() error {
			return s.pollLoop(ctx, collection)
		})
	}
	if s.alerts != nil {
		g.Go(func() error {
			return s.staleLoop(ctx)
		})
	}

	err := g.Wait()
	close(s.updates)
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (s *Service) pollLoop(ctx context.Context, collection string) error {
	s.logger.Info("monitoring collection",
		zap.String("collection", collection),
		zap.Duration("interval", s.cfg.Interval))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := s.pollOnce(ctx, collection); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("quote poll failed",
				zap.String("collection", collection),
				zap.Error(err))
		}
		s.throttler.FlushPending()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) pollOnce(ctx context.Context, collection string) error {
	now := time.Now()

	buyQuotes, err := s.querier.BuyQuotes(ctx, collection, s.cfg.QuoteLimit)
	if err != nil {
		return fmt.Errorf("buy quotes: %w", err)
	}
	if len(buyQuotes) > 0 {
		s.publish(QuoteUpdate{
			Collection: collection,
			Side:       SideBuy,
			Best:       buyQuotes[0],
			Depth:      len(buyQuotes),
			Timestamp:  now,
		})
	}

	sellQuotes, err := s.querier.SellQuotes(ctx, collection, s.cfg.QuoteLimit)
	if err != nil {
		return fmt.Errorf("sell quotes: %w", err)
	}
	if len(sellQuotes) > 0 {
		s.publish(QuoteUpdate{
			Collection: collection,
			Side:       SideSell,
			Best:       sellQuotes[0],
			Depth:      len(sellQuotes),
			Timestamp:  now,
		})
	}
	return nil
}

func (s *Service) publish(update QuoteUpdate) {
	if s.history != nil {
		if err := s.history.Record(update); err != nil {
			s.logger.Warn("failed to record quote", zap.Error(err))
		}
	}
	if s.alerts != nil {
		s.alerts.Check(update)
	}
	s.metrics.SetBestQuote(update.Collection, string(update.Side), priceFloat(update.Best.QuotePrice))
	s.throttler.Send(update)
}

func (s *Service) staleLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.alerts.CheckStale(time.Now())
		}
	}
}
