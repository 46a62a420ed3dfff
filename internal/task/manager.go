package task

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rmansurov/infinity-bot/internal/dex"
)

// Manager loads and parses Task definitions.
type Manager struct {
	logger *zap.Logger
}

// TaskConfig is the structure of the tasks YAML file.
type TaskConfig struct {
	Tasks []struct {
		TaskName    string   `yaml:"task_name"`
		Module      string   `yaml:"module"`
		Wallet      string   `yaml:"wallet"`
		Operation   string   `yaml:"operation"`
		Collection  string   `yaml:"collection"`
		PoolID      uint64   `yaml:"pool_id"`
		NftTokenIDs []string `yaml:"nft_token_ids"`
		Quantity    int      `yaml:"quantity"`
		Amount      string   `yaml:"amount"`
		SlippageBps uint64   `yaml:"slippage_bps"`
		Robust      bool     `yaml:"robust"`
		Finder      string   `yaml:"finder"`
		DeadlineTTL string   `yaml:"deadline_ttl"`

		PoolType       string `yaml:"pool_type"`
		BondingCurve   string `yaml:"bonding_curve"`
		SpotPrice      string `yaml:"spot_price"`
		Delta          string `yaml:"delta"`
		SwapFeeBps     uint64 `yaml:"swap_fee_bps"`
		FindersFeeBps  uint64 `yaml:"finders_fee_bps"`
		ReinvestTokens bool   `yaml:"reinvest_tokens"`
		ReinvestNfts   bool   `yaml:"reinvest_nfts"`
		Active         bool   `yaml:"active"`
	} `yaml:"tasks"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// LoadTasks reads tasks from a YAML file, skipping invalid entries with a
// warning. It fails when no valid task remains.
func (m *Manager) LoadTasks(path string) ([]*Task, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	var config TaskConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse tasks YAML: %w", err)
	}
	if len(config.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in %s", cleanPath)
	}

	tasks := make([]*Task, 0, len(config.Tasks))
	for i, data := range config.Tasks {
		var ttl time.Duration
		if data.DeadlineTTL != "" {
			ttl, err = time.ParseDuration(data.DeadlineTTL)
			if err != nil {
				m.logger.Warn("skipping task with bad deadline_ttl",
					zap.String("task_name", data.TaskName),
					zap.Error(err))
				continue
			}
		}

		task := &Task{
			ID:             i,
			TaskName:       data.TaskName,
			Module:         data.Module,
			WalletName:     data.Wallet,
			Operation:      dex.OperationType(data.Operation),
			Collection:     data.Collection,
			PoolID:         data.PoolID,
			NftTokenIDs:    data.NftTokenIDs,
			Quantity:       data.Quantity,
			Amount:         data.Amount,
			SlippageBps:    data.SlippageBps,
			Robust:         data.Robust,
			Finder:         data.Finder,
			DeadlineTTL:    ttl,
			PoolType:       data.PoolType,
			BondingCurve:   data.BondingCurve,
			SpotPrice:      data.SpotPrice,
			Delta:          data.Delta,
			SwapFeeBps:     data.SwapFeeBps,
			FindersFeeBps:  data.FindersFeeBps,
			ReinvestTokens: data.ReinvestTokens,
			ReinvestNfts:   data.ReinvestNfts,
			Active:         data.Active,
			CreatedAt:      time.Now(),
		}

		if err := task.Validate(); err != nil {
			m.logger.Warn("skipping invalid task",
				zap.String("task_name", task.TaskName),
				zap.Error(err))
			continue
		}
		tasks = append(tasks, task)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no valid tasks loaded from %s", cleanPath)
	}

	m.logger.Info("loaded tasks", zap.Int("count", len(tasks)))
	return tasks, nil
}
