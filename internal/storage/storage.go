// Package storage persists swap receipts, quote snapshots and task runs.
package storage

import (
	"context"

	"github.com/rmansurov/infinity-bot/internal/storage/models"
)

// Storage is the persistence interface the bot writes through.
type Storage interface {
	// Swaps
	SaveSwap(ctx context.Context, swap *models.SwapRecord) error
	GetSwap(ctx context.Context, txHash string) (*models.SwapRecord, error)
	ListSwaps(ctx context.Context, walletAddress string, limit, offset int) ([]*models.SwapRecord, error)
	UpdateSwapStatus(ctx context.Context, txHash, status, errorMsg string) error

	// Quotes
	SaveQuoteSnapshot(ctx context.Context, snapshot *models.QuoteSnapshot) error
	LatestQuotes(ctx context.Context, collection, side string, limit int) ([]*models.QuoteSnapshot, error)

	// Tasks
	SaveTaskHistory(ctx context.Context, history *models.TaskHistory) error
	GetTaskStats(ctx context.Context, taskName string) (*models.TaskHistory, error)

	RunMigrations() error
	Close() error
}
