// Package postgres is the gorm-backed Storage implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rmansurov/infinity-bot/internal/storage"
	"github.com/rmansurov/infinity-bot/internal/storage/models"
)

// gormLogger adapts zap to gorm's logger.Interface.
type gormLogger struct {
	zapLogger *zap.Logger
	logLevel  logger.LogLevel
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{zapLogger: zapLogger, logLevel: logger.Warn}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.zapLogger.Error("query failed", append(fields, zap.Error(err))...)
		return
	}
	if l.logLevel >= logger.Info {
		l.zapLogger.Debug("query", fields...)
	}
}

// Store implements storage.Storage on PostgreSQL.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ storage.Storage = (*Store)(nil)

// New connects to PostgreSQL with the given DSN.
func New(dsn string, zapLogger *zap.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN cannot be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(zapLogger),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Store{db: db, logger: zapLogger}, nil
}

// RunMigrations creates or updates the schema.
func (s *Store) RunMigrations() error {
	if err := s.db.AutoMigrate(
		&models.SwapRecord{},
		&models.QuoteSnapshot{},
		&models.TaskHistory{},
	); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	s.logger.Info("database migrations applied")
	return nil
}

// SaveSwap persists one swap record.
func (s *Store) SaveSwap(ctx context.Context, swap *models.SwapRecord) error {
	if err := s.db.WithContext(ctx).Create(swap).Error; err != nil {
		return fmt.Errorf("save swap %s: %w", swap.TxHash, err)
	}
	return nil
}

// GetSwap fetches a swap by transaction hash.
func (s *Store) GetSwap(ctx context.Context, txHash string) (*models.SwapRecord, error) {
	var swap models.SwapRecord
	err := s.db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&swap).Error
	if err != nil {
		return nil, fmt.Errorf("get swap %s: %w", txHash, err)
	}
	return &swap, nil
}

// ListSwaps pages a wallet's swaps, newest first.
func (s *Store) ListSwaps(ctx context.Context, walletAddress string, limit, offset int) ([]*models.SwapRecord, error) {
	var swaps []*models.SwapRecord
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&swaps).Error
	if err != nil {
		return nil, fmt.Errorf("list swaps for %s: %w", walletAddress, err)
	}
	return swaps, nil
}

// UpdateSwapStatus sets the status and error message of a swap.
func (s *Store) UpdateSwapStatus(ctx context.Context, txHash, status, errorMsg string) error {
	result := s.db.WithContext(ctx).
		Model(&models.SwapRecord{}).
		Where("tx_hash = ?", txHash).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update swap %s: %w", txHash, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("swap %s not found", txHash)
	}
	return nil
}

// SaveQuoteSnapshot persists one quote observation.
func (s *Store) SaveQuoteSnapshot(ctx context.Context, snapshot *models.QuoteSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("save quote snapshot: %w", err)
	}
	return nil
}

// LatestQuotes returns the newest snapshots for one collection side.
func (s *Store) LatestQuotes(ctx context.Context, collection, side string, limit int) ([]*models.QuoteSnapshot, error) {
	var snapshots []*models.QuoteSnapshot
	err := s.db.WithContext(ctx).
		Where("collection = ? AND side = ?", collection, side).
		Order("observed_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("latest quotes for %s/%s: %w", collection, side, err)
	}
	return snapshots, nil
}

// SaveTaskHistory persists one task run summary.
func (s *Store) SaveTaskHistory(ctx context.Context, history *models.TaskHistory) error {
	if err := s.db.WithContext(ctx).Create(history).Error; err != nil {
		return fmt.Errorf("save task history %s: %w", history.TaskName, err)
	}
	return nil
}

// GetTaskStats fetches the most recent run of a named task.
func (s *Store) GetTaskStats(ctx context.Context, taskName string) (*models.TaskHistory, error) {
	var history models.TaskHistory
	err := s.db.WithContext(ctx).
		Where("task_name = ?", taskName).
		Order("created_at DESC").
		First(&history).Error
	if err != nil {
		return nil, fmt.Errorf("get task stats %s: %w", taskName, err)
	}
	return &history, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return db.Close()
}
