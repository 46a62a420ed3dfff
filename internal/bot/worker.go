package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/dex"
	"github.com/rmansurov/infinity-bot/internal/storage"
	"github.com/rmansurov/infinity-bot/internal/storage/models"
	"github.com/rmansurov/infinity-bot/internal/task"
)

// WorkerPool drains the task channel with a fixed number of workers.
type WorkerPool struct {
	wg      sync.WaitGroup
	ctx     context.Context
	tasks   <-chan *task.Task
	logger  *zap.Logger
	deps    dex.MarketDeps
	store   storage.Storage // nil disables persistence
	retries uint
}

// NewWorkerPool builds a pool over the shared market dependencies.
func NewWorkerPool(ctx context.Context, deps dex.MarketDeps, store storage.Storage, retries int, tasks <-chan *task.Task, logger *zap.Logger) *WorkerPool {
	if retries <= 0 {
		retries = 1
	}
	return &WorkerPool{
		ctx:     ctx,
		tasks:   tasks,
		logger:  logger,
		deps:    deps,
		store:   store,
		retries: uint(retries),
	}
}

// Start launches n workers.
func (wp *WorkerPool) Start(n int) {
	for i := 0; i < n; i++ {
		wp.wg.Add(1)
		go wp.worker(i + 1)
	}
}

// Wait blocks until every worker has finished.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Info("worker started")

	for {
		select {
		case <-wp.ctx.Done():
			logger.Info("worker shutting down")
			return
		case t, ok := <-wp.tasks:
			if !ok {
				logger.Info("task channel drained")
				return
			}
			wp.handleTask(wp.ctx, t, logger)
		}
	}
}

func (wp *WorkerPool) handleTask(ctx context.Context, t *task.Task, logger *zap.Logger) {
	logger = logger.With(
		zap.String("task", t.TaskName),
		zap.String("module", t.Module),
		zap.String("operation", string(t.Operation)))

	market, err := dex.GetMarketByName(t.Module, wp.deps)
	if err != nil {
		logger.Error("market adapter init failed", zap.Error(err))
		wp.recordRun(ctx, t, time.Now(), false)
		return
	}

	started := time.Now()
	logger.Info("executing task")

	marketTask := t.ToMarketTask()
	receipt, err := backoff.Retry(ctx, func() (*chain.Receipt, error) {
		receipt, err := market.Execute(ctx, marketTask)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return receipt, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(wp.retries))

	if err != nil {
		logger.Error("task failed", zap.Error(err))
		wp.recordSwap(ctx, t, market.Name(), nil, err)
		wp.recordRun(ctx, t, started, false)
		return
	}

	logger.Info("task completed",
		zap.String("tx_hash", receipt.TxHash),
		zap.Duration("elapsed", time.Since(started)))
	wp.recordSwap(ctx, t, market.Name(), receipt, nil)
	wp.recordRun(ctx, t, started, true)
}

// retryable reports whether an execution error is worth another attempt.
// Contract rejections and validation errors are final; transport hiccups
// are not.
func retryable(err error) bool {
	var queryErr *chain.QueryError
	if errors.As(err, &queryErr) {
		return queryErr.StatusCode >= 500
	}
	msg := err.Error()
	if strings.Contains(msg, "cannot be empty") || strings.Contains(msg, "requires") {
		return false
	}
	if strings.Contains(msg, "transaction rejected") {
		return false
	}
	return true
}

func (wp *WorkerPool) recordSwap(ctx context.Context, t *task.Task, market string, receipt *chain.Receipt, execErr error) {
	if wp.store == nil {
		return
	}

	address, err := wp.deps.Resolver.Address(t.WalletName)
	if err != nil {
		address = t.WalletName
	}

	record := &models.SwapRecord{
		TaskName:      t.TaskName,
		Market:        market,
		Operation:     string(t.Operation),
		Collection:    t.Collection,
		PoolID:        t.PoolID,
		WalletAddress: address,
		NftTokenIDs:   strings.Join(t.NftTokenIDs, ","),
		Amount:        t.Amount,
		Denom:         wp.deps.Denom,
		Status:        "confirmed",
	}
	if receipt != nil {
		record.TxHash = receipt.TxHash
		record.Height = receipt.Height
	}
	if execErr != nil {
		record.Status = "failed"
		record.ErrorMessage = execErr.Error()
	}

	if err := wp.store.SaveSwap(ctx, record); err != nil {
		wp.logger.Warn("failed to persist swap record",
			zap.String("task", t.TaskName),
			zap.Error(err))
	}
}

func (wp *WorkerPool) recordRun(ctx context.Context, t *task.Task, started time.Time, success bool) {
	if wp.store == nil {
		return
	}

	completed := time.Now()
	history := &models.TaskHistory{
		TaskName:    t.TaskName,
		Status:      "failed",
		StartedAt:   &started,
		CompletedAt: &completed,
	}
	if success {
		history.Status = "completed"
		history.SuccessCount = 1
	} else {
		history.ErrorCount = 1
	}

	if err := wp.store.SaveTaskHistory(ctx, history); err != nil {
		wp.logger.Warn("failed to persist task history",
			zap.String("task", t.TaskName),
			zap.Error(err))
	}
}
