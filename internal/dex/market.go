package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/infinity"
)

// Market executes tasks against one trading surface.
type Market interface {
	// Name returns the market identifier used in config and metrics.
	Name() string
	// Execute runs one task and returns the broadcast receipt.
	Execute(ctx context.Context, task *Task) (*chain.Receipt, error)
}

// applySlippage shifts amount by bps. Buying widens the bound up, selling
// tightens it down.
func applySlippage(amount infinity.Uint128, bps uint64, buying bool) (infinity.Uint128, error) {
	v, err := amount.BigInt()
	if err != nil {
		return "", fmt.Errorf("slippage base: %w", err)
	}
	delta := new(big.Int).Mul(v, new(big.Int).SetUint64(bps))
	delta.Quo(delta, big.NewInt(10000))
	if buying {
		v.Add(v, delta)
	} else {
		v.Sub(v, delta)
		if v.Sign() < 0 {
			v.SetInt64(0)
		}
	}
	return infinity.NewUint128FromBig(v)
}

// sumFunds totals the per-NFT bounds into the single coin attached to a
// buy-side execute message.
func sumFunds(denom string, bounds []infinity.Uint128) ([]chain.Coin, error) {
	total := new(big.Int)
	for _, b := range bounds {
		v, err := b.BigInt()
		if err != nil {
			return nil, err
		}
		total.Add(total, v)
	}
	return []chain.Coin{{Denom: denom, Amount: total.String()}}, nil
}

func validateSwapTask(task *Task) error {
	if !task.Operation.Valid() {
		return fmt.Errorf("unknown operation %q", task.Operation)
	}
	if task.Sender == "" {
		return fmt.Errorf("task sender cannot be empty")
	}
	if task.Collection == "" {
		return fmt.Errorf("task collection cannot be empty")
	}
	return nil
}
