// Package task loads trading task definitions from YAML files and converts
// them into market operations.
package task

import (
	"fmt"
	"time"

	"github.com/rmansurov/infinity-bot/internal/dex"
	"github.com/rmansurov/infinity-bot/internal/infinity"
)

const maxSlippageBps = 10000

// Task is one trading task from the tasks file.
type Task struct {
	ID          int
	TaskName    string
	Module      string // market adapter: "pool" or "router"
	WalletName  string // signing key name
	Operation   dex.OperationType
	Collection  string
	PoolID      uint64
	NftTokenIDs []string
	Quantity    int
	Amount      string // uint128 decimal string; empty derives bounds from quotes
	SlippageBps uint64
	Robust      bool
	Finder      string
	DeadlineTTL time.Duration

	// Pool creation / management parameters.
	PoolType       string
	BondingCurve   string
	SpotPrice      string
	Delta          string
	SwapFeeBps     uint64
	FindersFeeBps  uint64
	ReinvestTokens bool
	ReinvestNfts   bool
	Active         bool

	CreatedAt time.Time
}

// Validate checks the fields every operation needs. Operation-specific
// requirements are enforced by the market adapters.
func (t *Task) Validate() error {
	if t.TaskName == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if t.Module == "" {
		return fmt.Errorf("module cannot be empty")
	}
	if t.WalletName == "" {
		return fmt.Errorf("wallet name cannot be empty")
	}
	if t.Collection == "" {
		return fmt.Errorf("collection cannot be empty")
	}
	if !t.Operation.Valid() {
		return fmt.Errorf("invalid operation: %s", t.Operation)
	}
	if t.SlippageBps > maxSlippageBps {
		return fmt.Errorf("slippage must be at most %d bps", maxSlippageBps)
	}
	if t.Amount != "" {
		if err := infinity.Uint128(t.Amount).Validate(); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	return nil
}

// ToMarketTask converts the task into the adapter's task format.
func (t *Task) ToMarketTask() *dex.Task {
	return &dex.Task{
		Operation:      t.Operation,
		Sender:         t.WalletName,
		Collection:     t.Collection,
		PoolID:         t.PoolID,
		NftTokenIDs:    t.NftTokenIDs,
		Quantity:       t.Quantity,
		Amount:         infinity.Uint128(t.Amount),
		SlippageBps:    t.SlippageBps,
		Robust:         t.Robust,
		Finder:         t.Finder,
		DeadlineTTL:    t.DeadlineTTL,
		PoolType:       t.PoolType,
		BondingCurve:   t.BondingCurve,
		SpotPrice:      infinity.Uint128(t.SpotPrice),
		Delta:          infinity.Uint128(t.Delta),
		SwapFeeBps:     t.SwapFeeBps,
		FindersFeeBps:  t.FindersFeeBps,
		ReinvestTokens: t.ReinvestTokens,
		ReinvestNfts:   t.ReinvestNfts,
		Active:         t.Active,
	}
}
