package dex

import (
	"time"

	"github.com/rmansurov/infinity-bot/internal/infinity"
)

// OperationType defines a market operation type.
type OperationType string

const (
	OperationBuySpecific    OperationType = "buy_specific"
	OperationBuyAny         OperationType = "buy_any"
	OperationSell           OperationType = "sell"
	OperationDepositTokens  OperationType = "deposit_tokens"
	OperationDepositNfts    OperationType = "deposit_nfts"
	OperationWithdrawTokens OperationType = "withdraw_tokens"
	OperationWithdrawNfts   OperationType = "withdraw_nfts"
	OperationCreatePool     OperationType = "create_pool"
	OperationUpdatePool     OperationType = "update_pool"
	OperationRemovePool     OperationType = "remove_pool"
	OperationSetActive      OperationType = "set_active"
)

// Valid reports whether the operation is known.
func (o OperationType) Valid() bool {
	switch o {
	case OperationBuySpecific, OperationBuyAny, OperationSell,
		OperationDepositTokens, OperationDepositNfts,
		OperationWithdrawTokens, OperationWithdrawNfts,
		OperationCreatePool, OperationUpdatePool, OperationRemovePool,
		OperationSetActive:
		return true
	}
	return false
}

// Task is one operation request handed to a market adapter.
type Task struct {
	Operation   OperationType
	Sender      string // signing key name
	Collection  string
	PoolID      uint64   // direct pool target; 0 routes across the collection
	NftTokenIDs []string // buy_specific / sell / deposit_nfts / withdraw_nfts
	Quantity    int      // buy_any: number of NFTs to acquire

	// Amount is the price bound per NFT for swaps (max cost when buying,
	// min proceeds when selling; empty derives the bound from a
	// simulation), or the token amount for deposits and withdrawals.
	Amount      infinity.Uint128
	SlippageBps uint64
	Robust      bool // complete what is fillable instead of aborting
	Finder      string
	DeadlineTTL time.Duration

	// Pool creation parameters, create_pool only.
	PoolType       string
	BondingCurve   string
	SpotPrice      infinity.Uint128
	Delta          infinity.Uint128
	SwapFeeBps     uint64
	FindersFeeBps  uint64
	ReinvestTokens bool
	ReinvestNfts   bool

	// Target state for set_active.
	Active bool
}

const defaultDeadlineTTL = 2 * time.Minute

// Deadline returns the swap deadline for a task started now.
func (t *Task) Deadline(now time.Time) infinity.Timestamp {
	ttl := t.DeadlineTTL
	if ttl <= 0 {
		ttl = defaultDeadlineTTL
	}
	return infinity.NewTimestamp(now.Add(ttl))
}
