// Package bot wires the chain client, market adapters, monitor and worker
// pool into the running application.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/config"
	"github.com/rmansurov/infinity-bot/internal/dex"
	"github.com/rmansurov/infinity-bot/internal/metrics"
	"github.com/rmansurov/infinity-bot/internal/monitor"
	"github.com/rmansurov/infinity-bot/internal/storage"
	"github.com/rmansurov/infinity-bot/internal/storage/models"
	"github.com/rmansurov/infinity-bot/internal/storage/postgres"
	"github.com/rmansurov/infinity-bot/internal/task"
	"github.com/rmansurov/infinity-bot/internal/wallet"
)

// Runner owns the bot's long-lived components.
type Runner struct {
	cfg         *config.Config
	logger      *zap.Logger
	metrics     *metrics.Collector
	client      *chain.Client
	submitter   chain.Submitter
	registry    *wallet.Registry
	taskManager *task.Manager
	store       storage.Storage
}

// NewRunner builds every component from the config.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	collector := metrics.NewCollector()

	client, err := chain.NewClient(cfg.LCDEndpoints, cfg.Retries, logger, collector)
	if err != nil {
		return nil, fmt.Errorf("build chain client: %w", err)
	}

	submitter, err := chain.NewDaemonSubmitter(chain.DaemonSubmitterConfig{
		Binary:         cfg.SubmitBinary,
		ChainID:        cfg.ChainID,
		Node:           cfg.SubmitNode,
		KeyringBackend: cfg.KeyringBackend,
		GasPrices:      cfg.GasPrices,
		GasAdjustment:  cfg.GasAdjustment,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build submitter: %w", err)
	}

	registry, err := wallet.LoadRegistry(cfg.WalletsFile, cfg.Bech32Prefix)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}

	var store storage.Storage
	if cfg.PostgresURL != "" {
		pg, err := postgres.New(cfg.PostgresURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect storage: %w", err)
		}
		if err := pg.RunMigrations(); err != nil {
			return nil, err
		}
		store = pg
	}

	return &Runner{
		cfg:         cfg,
		logger:      logger,
		metrics:     collector,
		client:      client,
		submitter:   submitter,
		registry:    registry,
		taskManager: task.NewManager(logger),
		store:       store,
	}, nil
}

func (r *Runner) marketDeps() dex.MarketDeps {
	return dex.MarketDeps{
		Client:         r.client,
		Submitter:      r.submitter,
		Resolver:       r.registry,
		PoolContract:   r.cfg.PoolContract,
		RouterContract: r.cfg.RouterContract,
		Denom:          r.cfg.Denom,
		Logger:         r.logger,
		Metrics:        r.metrics,
	}
}

// Run executes the loaded tasks and keeps the monitoring side running until
// the context is cancelled or every component finishes.
func (r *Runner) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if r.cfg.MetricsAddr != "" {
		g.Go(func() error { return r.serveMetrics(ctx) })
	}
	if r.cfg.WebsocketURL != "" && r.cfg.PoolContract != "" {
		g.Go(func() error { return r.watchEvents(ctx) })
	}
	if len(r.cfg.MonitorCollections) > 0 {
		g.Go(func() error { return r.runMonitor(ctx) })
	}

	g.Go(func() error { return r.runTasks(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Warn("failed to close storage", zap.Error(err))
		}
	}
	r.logger.Info("bot stopped")
	return nil
}

func (r *Runner) runTasks(ctx context.Context) error {
	tasks, err := r.taskManager.LoadTasks(r.cfg.TasksFile)
	if err != nil {
		return err
	}
	r.logger.Info("starting task execution",
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", r.cfg.Workers))

	taskCh := make(chan *task.Task, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	pool := NewWorkerPool(ctx, r.marketDeps(), r.store, r.cfg.Retries, taskCh, r.logger)
	pool.Start(r.cfg.Workers)
	pool.Wait()

	r.logger.Info("all tasks processed")
	return nil
}

func (r *Runner) runMonitor(ctx context.Context) error {
	querier, err := dex.NewPoolQuerier(r.client, r.cfg.PoolContract)
	if err != nil {
		return err
	}
	history, err := monitor.NewQuoteHistory(r.cfg.LogDir, 1024, r.logger)
	if err != nil {
		return err
	}
	defer history.Close()

	alerts, err := r.buildAlertManager()
	if err != nil {
		return err
	}

	svc, err := monitor.NewService(monitor.ServiceConfig{
		Collections: r.cfg.MonitorCollections,
		Interval:    r.cfg.MonitorDelay,
		QuoteLimit:  r.cfg.QuoteLimit,
	}, querier, history, alerts, r.logger, r.metrics)
	if err != nil {
		return err
	}

	go r.consumeQuotes(ctx, svc.Updates())
	return svc.Run(ctx)
}

// buildAlertManager translates alert config into thresholds. Returns nil when
// no alerts are configured.
func (r *Runner) buildAlertManager() (*monitor.AlertManager, error) {
	if len(r.cfg.Alerts) == 0 {
		return nil, nil
	}

	thresholds := make(map[string]monitor.AlertThresholds, len(r.cfg.Alerts))
	for _, a := range r.cfg.Alerts {
		if a.Collection == "" {
			return nil, fmt.Errorf("alert entry missing collection")
		}
		t := monitor.AlertThresholds{MinDepth: a.MinDepth}
		var err error
		if a.BuyBelow != "" {
			if t.BuyBelow, err = decimal.NewFromString(a.BuyBelow); err != nil {
				return nil, fmt.Errorf("alert buy_below for %s: %w", a.Collection, err)
			}
		}
		if a.SellAbove != "" {
			if t.SellAbove, err = decimal.NewFromString(a.SellAbove); err != nil {
				return nil, fmt.Errorf("alert sell_above for %s: %w", a.Collection, err)
			}
		}
		if a.StaleAfter != "" {
			if t.StaleAfter, err = time.ParseDuration(a.StaleAfter); err != nil {
				return nil, fmt.Errorf("alert stale_after for %s: %w", a.Collection, err)
			}
		}
		thresholds[a.Collection] = t
	}

	manager := monitor.NewAlertManager(thresholds, 0, 0, r.logger)
	if r.cfg.WebhookURL != "" {
		notifier, err := monitor.NewWebhookNotifier(r.cfg.WebhookURL, r.logger)
		if err != nil {
			return nil, err
		}
		manager.SetNotifier(notifier)
	}
	return manager, nil
}

func (r *Runner) consumeQuotes(ctx context.Context, updates <-chan monitor.QuoteUpdate) {
	for update := range updates {
		r.logger.Debug("quote update",
			zap.String("collection", update.Collection),
			zap.String("side", string(update.Side)),
			zap.String("price", string(update.Best.QuotePrice)),
			zap.Int("depth", update.Depth))

		if r.store == nil {
			continue
		}
		snapshot := &models.QuoteSnapshot{
			Collection: update.Collection,
			Side:       string(update.Side),
			PoolID:     update.Best.ID,
			QuotePrice: string(update.Best.QuotePrice),
			Depth:      update.Depth,
			ObservedAt: update.Timestamp,
		}
		if err := r.store.SaveQuoteSnapshot(ctx, snapshot); err != nil {
			r.logger.Warn("failed to persist quote snapshot", zap.Error(err))
		}
	}
}

func (r *Runner) watchEvents(ctx context.Context) error {
	sub, err := chain.NewSubscriber(r.cfg.WebsocketURL, r.cfg.PoolContract, r.cfg.EventBuffer, r.logger, r.metrics)
	if err != nil {
		return err
	}

	go func() {
		for event := range sub.Events() {
			r.logger.Info("contract event",
				zap.String("type", event.Type),
				zap.String("tx_hash", event.TxHash),
				zap.Int64("height", event.Height),
				zap.String("action", event.Attribute("action")))
		}
	}()
	return sub.Run(ctx)
}

func (r *Runner) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.metrics.Registry(), promhttp.HandlerOpts{}))

	server := &http.Server{Addr: r.cfg.MetricsAddr, Handler: mux}
	r.logger.Info("metrics server listening", zap.String("addr", r.cfg.MetricsAddr))

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
