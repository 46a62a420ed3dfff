package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/infinity"
	"github.com/rmansurov/infinity-bot/internal/infinity/pool"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

// AddressResolver maps a signing key name to its bech32 account address.
type AddressResolver interface {
	Address(name string) (string, error)
}

const poolPageSize = 100

// PoolMarket trades directly against the pool contract: direct and
// collection-wide swaps plus the owner-side liquidity operations.
type PoolMarket struct {
	querier   *PoolQuerier
	submitter chain.Submitter
	denom     string
	resolver  AddressResolver
	logger    *zap.Logger
	metrics   *metrics.Collector

	// now is swapped in tests to pin deadlines.
	now func() time.Time
}

// NewPoolMarket builds the pool market adapter.
func NewPoolMarket(querier *PoolQuerier, submitter chain.Submitter, denom string, resolver AddressResolver, logger *zap.Logger, mc *metrics.Collector) (*PoolMarket, error) {
	if querier == nil {
		return nil, fmt.Errorf("pool querier cannot be nil")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}
	if denom == "" {
		return nil, fmt.Errorf("denom cannot be empty")
	}
	if resolver == nil {
		return nil, fmt.Errorf("address resolver cannot be nil")
	}
	return &PoolMarket{
		querier:   querier,
		submitter: submitter,
		denom:     denom,
		resolver:  resolver,
		logger:    logger,
		metrics:   mc,
		now:       time.Now,
	}, nil
}

// Name implements Market.
func (m *PoolMarket) Name() string { return "pool" }

// Execute implements Market.
func (m *PoolMarket) Execute(ctx context.Context, task *Task) (*chain.Receipt, error) {
	if err := validateSwapTask(task); err != nil {
		return nil, err
	}
	sender, err := m.resolver.Address(task.Sender)
	if err != nil {
		return nil, fmt.Errorf("resolve sender %q: %w", task.Sender, err)
	}

	var (
		msg   pool.ExecuteMsg
		funds []chain.Coin
	)
	switch task.Operation {
	case OperationBuySpecific:
		msg, funds, err = m.buildBuySpecific(ctx, task, sender)
	case OperationBuyAny:
		msg, funds, err = m.buildBuyAny(ctx, task, sender)
	case OperationSell:
		msg, err = m.buildSell(ctx, task, sender)
	case OperationDepositTokens:
		msg, funds, err = m.buildDepositTokens(task)
	case OperationDepositNfts:
		msg, err = m.buildDepositNfts(task)
	case OperationWithdrawTokens:
		msg, err = m.buildWithdrawTokens(task)
	case OperationWithdrawNfts:
		msg, err = m.buildWithdrawNfts(task)
	case OperationCreatePool:
		msg, err = m.buildCreatePool(task)
	case OperationUpdatePool:
		msg, err = m.buildUpdatePool(task)
	case OperationRemovePool:
		msg, err = m.buildRemovePool(task)
	case OperationSetActive:
		msg, err = m.buildSetActive(task)
	default:
		return nil, fmt.Errorf("operation %q is not supported by the pool market", task.Operation)
	}
	if err != nil {
		return nil, err
	}

	return m.submit(ctx, task, sender, msg, funds)
}

func (m *PoolMarket) submit(ctx context.Context, task *Task, sender string, msg pool.ExecuteMsg, funds []chain.Coin) (*chain.Receipt, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode execute msg: %w", err)
	}

	m.logger.Info("executing pool operation",
		zap.String("operation", string(task.Operation)),
		zap.String("collection", task.Collection),
		zap.Uint64("pool_id", task.PoolID))

	start := m.now()
	receipt, err := m.submitter.Submit(ctx, &chain.ExecuteRequest{
		Sender:   task.Sender,
		Contract: m.querier.Contract(),
		Msg:      raw,
		Funds:    funds,
	})
	m.metrics.RecordTransaction(string(task.Operation), m.Name(), m.now().Sub(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", task.Operation, err)
	}

	m.logger.Info("pool operation broadcast",
		zap.String("operation", string(task.Operation)),
		zap.String("tx_hash", receipt.TxHash),
		zap.String("sender", sender))
	return receipt, nil
}

func (m *PoolMarket) swapParams(task *Task) pool.SwapParams {
	params := pool.SwapParams{
		Deadline: task.Deadline(m.now()),
		Robust:   task.Robust,
	}
	if task.Finder != "" {
		params.Finder = infinity.Ptr(task.Finder)
	}
	return params
}

// buyBounds returns one max-input bound per NFT. An explicit task amount
// wins; otherwise the bound comes from the current buy quotes widened by
// the slippage allowance.
func (m *PoolMarket) buyBounds(ctx context.Context, task *Task, n int) ([]infinity.Uint128, error) {
	if task.Amount != "" {
		if err := task.Amount.Validate(); err != nil {
			return nil, fmt.Errorf("task amount: %w", err)
		}
		bounds := make([]infinity.Uint128, n)
		for i := range bounds {
			bounds[i] = task.Amount
		}
		return bounds, nil
	}

	quotes, err := m.querier.BuyQuotes(ctx, task.Collection, uint32(n))
	if err != nil {
		return nil, fmt.Errorf("fetch buy quotes: %w", err)
	}
	if len(quotes) < n {
		return nil, fmt.Errorf("collection %s has %d buy quotes, need %d", task.Collection, len(quotes), n)
	}
	bounds := make([]infinity.Uint128, n)
	for i := 0; i < n; i++ {
		bound, err := applySlippage(quotes[i].QuotePrice, task.SlippageBps, true)
		if err != nil {
			return nil, err
		}
		bounds[i] = bound
	}
	return bounds, nil
}

// sellBound returns the min-output bound applied to every NFT sold.
func (m *PoolMarket) sellBound(ctx context.Context, task *Task) (infinity.Uint128, error) {
	if task.Amount != "" {
		if err := task.Amount.Validate(); err != nil {
			return "", fmt.Errorf("task amount: %w", err)
		}
		return task.Amount, nil
	}

	quotes, err := m.querier.SellQuotes(ctx, task.Collection, 1)
	if err != nil {
		return "", fmt.Errorf("fetch sell quotes: %w", err)
	}
	if len(quotes) == 0 {
		return "", fmt.Errorf("collection %s has no sell quotes", task.Collection)
	}
	return applySlippage(quotes[0].QuotePrice, task.SlippageBps, false)
}

// checkSim verifies a simulation covered the requested trade. Robust tasks
// settle for a partial fill as long as something fills.
func checkSim(swaps []pool.Swap, want int, robust bool) error {
	if len(swaps) == want {
		return nil
	}
	if robust && len(swaps) > 0 {
		return nil
	}
	return fmt.Errorf("simulation filled %d of %d swaps", len(swaps), want)
}

func (m *PoolMarket) buildBuySpecific(ctx context.Context, task *Task, sender string) (pool.ExecuteMsg, []chain.Coin, error) {
	if len(task.NftTokenIDs) == 0 {
		return pool.ExecuteMsg{}, nil, fmt.Errorf("buy_specific requires nft token ids")
	}
	bounds, err := m.buyBounds(ctx, task, len(task.NftTokenIDs))
	if err != nil {
		return pool.ExecuteMsg{}, nil, err
	}
	params := m.swapParams(task)

	nftSwaps := make([]pool.NftSwap, len(task.NftTokenIDs))
	for i, id := range task.NftTokenIDs {
		nftSwaps[i] = pool.NftSwap{NftTokenID: id, TokenAmount: bounds[i]}
	}

	var msg pool.ExecuteMsg
	if task.PoolID > 0 {
		sim := pool.QueryMsg{SimDirectSwapTokensForSpecificNfts: &pool.SimDirectSwapTokensForSpecificNftsQuery{
			PoolID:        task.PoolID,
			NftsToSwapFor: nftSwaps,
			Sender:        sender,
			SwapParams:    params,
		}}
		swaps, err := m.querier.Simulate(ctx, sim)
		if err != nil {
			return pool.ExecuteMsg{}, nil, fmt.Errorf("simulate buy: %w", err)
		}
		if err := checkSim(swaps, len(nftSwaps), task.Robust); err != nil {
			return pool.ExecuteMsg{}, nil, err
		}
		msg.DirectSwapTokensForSpecificNfts = &pool.DirectSwapTokensForSpecificNftsMsg{
			PoolID:        task.PoolID,
			NftsToSwapFor: nftSwaps,
			SwapParams:    params,
		}
	} else {
		grouped, err := m.groupByPool(ctx, task.Collection, nftSwaps)
		if err != nil {
			return pool.ExecuteMsg{}, nil, err
		}
		sim := pool.QueryMsg{SimSwapTokensForSpecificNfts: &pool.SimSwapTokensForSpecificNftsQuery{
			Collection:        task.Collection,
			PoolNftsToSwapFor: grouped,
			Sender:            sender,
			SwapParams:        params,
		}}
		swaps, err := m.querier.Simulate(ctx, sim)
		if err != nil {
			return pool.ExecuteMsg{}, nil, fmt.Errorf("simulate buy: %w", err)
		}
		if err := checkSim(swaps, len(nftSwaps), task.Robust); err != nil {
			return pool.ExecuteMsg{}, nil, err
		}
		msg.SwapTokensForSpecificNfts = &pool.SwapTokensForSpecificNftsMsg{
			Collection:        task.Collection,
			PoolNftsToSwapFor: grouped,
			SwapParams:        params,
		}
	}

	funds, err := sumFunds(m.denom, bounds)
	if err != nil {
		return pool.ExecuteMsg{}, nil, err
	}
	return msg, funds, nil
}

func (m *PoolMarket) buildBuyAny(ctx context.Context, task *Task, sender string) (pool.ExecuteMsg, []chain.Coin, error) {
	if task.Quantity <= 0 {
		return pool.ExecuteMsg{}, nil, fmt.Errorf("buy_any requires a positive quantity")
	}
	bounds, err := m.buyBounds(ctx, task, task.Quantity)
	if err != nil {
		return pool.ExecuteMsg{}, nil, err
	}
	params := m.swapParams(task)

	sim := pool.QueryMsg{SimSwapTokensForAnyNfts: &pool.SimSwapTokensForAnyNftsQuery{
		Collection:            task.Collection,
		MaxExpectedTokenInput: bounds,
		Sender:                sender,
		SwapParams:            params,
	}}
	swaps, err := m.querier.Simulate(ctx, sim)
	if err != nil {
		return pool.ExecuteMsg{}, nil, fmt.Errorf("simulate buy: %w", err)
	}
	if err := checkSim(swaps, task.Quantity, task.Robust); err != nil {
		return pool.ExecuteMsg{}, nil, err
	}

	msg := pool.ExecuteMsg{SwapTokensForAnyNfts: &pool.SwapTokensForAnyNftsMsg{
		Collection:            task.Collection,
		MaxExpectedTokenInput: bounds,
		SwapParams:            params,
	}}
	funds, err := sumFunds(m.denom, bounds)
	if err != nil {
		return pool.ExecuteMsg{}, nil, err
	}
	return msg, funds, nil
}

func (m *PoolMarket) buildSell(ctx context.Context, task *Task, sender string) (pool.ExecuteMsg, error) {
	if len(task.NftTokenIDs) == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("sell requires nft token ids")
	}
	bound, err := m.sellBound(ctx, task)
	if err != nil {
		return pool.ExecuteMsg{}, err
	}
	params := m.swapParams(task)

	nftSwaps := make([]pool.NftSwap, len(task.NftTokenIDs))
	for i, id := range task.NftTokenIDs {
		nftSwaps[i] = pool.NftSwap{NftTokenID: id, TokenAmount: bound}
	}

	var msg pool.ExecuteMsg
	var sim pool.QueryMsg
	if task.PoolID > 0 {
		sim.SimDirectSwapNftsForTokens = &pool.SimDirectSwapNftsForTokensQuery{
			PoolID:     task.PoolID,
			NftsToSwap: nftSwaps,
			Sender:     sender,
			SwapParams: params,
		}
		msg.DirectSwapNftsForTokens = &pool.DirectSwapNftsForTokensMsg{
			PoolID:     task.PoolID,
			NftsToSwap: nftSwaps,
			SwapParams: params,
		}
	} else {
		sim.SimSwapNftsForTokens = &pool.SimSwapNftsForTokensQuery{
			Collection: task.Collection,
			NftsToSwap: nftSwaps,
			Sender:     sender,
			SwapParams: params,
		}
		msg.SwapNftsForTokens = &pool.SwapNftsForTokensMsg{
			Collection: task.Collection,
			NftsToSwap: nftSwaps,
			SwapParams: params,
		}
	}

	swaps, err := m.querier.Simulate(ctx, sim)
	if err != nil {
		return pool.ExecuteMsg{}, fmt.Errorf("simulate sell: %w", err)
	}
	if err := checkSim(swaps, len(nftSwaps), task.Robust); err != nil {
		return pool.ExecuteMsg{}, err
	}
	return msg, nil
}

// groupByPool resolves which pool holds each NFT by paging through the
// collection's pools, then groups the swaps per pool.
func (m *PoolMarket) groupByPool(ctx context.Context, collection string, nftSwaps []pool.NftSwap) ([]pool.PoolNftSwap, error) {
	wanted := make(map[string]int, len(nftSwaps))
	for i, s := range nftSwaps {
		wanted[s.NftTokenID] = i
	}

	byPool := make(map[uint64][]pool.NftSwap)
	var order []uint64
	var startAfter uint64
	for len(wanted) > 0 {
		pools, err := m.querier.Pools(ctx, startAfter, poolPageSize)
		if err != nil {
			return nil, fmt.Errorf("page pools: %w", err)
		}
		if len(pools) == 0 {
			break
		}
		for _, p := range pools {
			startAfter = p.ID
			if p.Collection != collection || !p.IsActive {
				continue
			}
			for _, tokenID := range p.NftTokenIDs {
				idx, ok := wanted[tokenID]
				if !ok {
					continue
				}
				if _, seen := byPool[p.ID]; !seen {
					order = append(order, p.ID)
				}
				byPool[p.ID] = append(byPool[p.ID], nftSwaps[idx])
				delete(wanted, tokenID)
			}
		}
		if len(pools) < poolPageSize {
			break
		}
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for id := range wanted {
			missing = append(missing, id)
		}
		return nil, fmt.Errorf("nfts not held by any active pool: %v", missing)
	}

	grouped := make([]pool.PoolNftSwap, 0, len(order))
	for _, id := range order {
		grouped = append(grouped, pool.PoolNftSwap{PoolID: id, NftSwaps: byPool[id]})
	}
	return grouped, nil
}

func (m *PoolMarket) buildDepositTokens(task *Task) (pool.ExecuteMsg, []chain.Coin, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, nil, fmt.Errorf("deposit_tokens requires a pool id")
	}
	if err := task.Amount.Validate(); err != nil {
		return pool.ExecuteMsg{}, nil, fmt.Errorf("deposit amount: %w", err)
	}
	msg := pool.ExecuteMsg{DepositTokens: &pool.DepositTokensMsg{PoolID: task.PoolID}}
	return msg, []chain.Coin{{Denom: m.denom, Amount: string(task.Amount)}}, nil
}

func (m *PoolMarket) buildDepositNfts(task *Task) (pool.ExecuteMsg, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("deposit_nfts requires a pool id")
	}
	if len(task.NftTokenIDs) == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("deposit_nfts requires nft token ids")
	}
	return pool.ExecuteMsg{DepositNfts: &pool.DepositNftsMsg{
		PoolID:      task.PoolID,
		Collection:  task.Collection,
		NftTokenIDs: task.NftTokenIDs,
	}}, nil
}

func (m *PoolMarket) buildWithdrawTokens(task *Task) (pool.ExecuteMsg, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("withdraw_tokens requires a pool id")
	}
	if task.Amount == "" {
		return pool.ExecuteMsg{WithdrawAllTokens: &pool.WithdrawAllTokensMsg{PoolID: task.PoolID}}, nil
	}
	if err := task.Amount.Validate(); err != nil {
		return pool.ExecuteMsg{}, fmt.Errorf("withdraw amount: %w", err)
	}
	return pool.ExecuteMsg{WithdrawTokens: &pool.WithdrawTokensMsg{
		PoolID: task.PoolID,
		Amount: task.Amount,
	}}, nil
}

func (m *PoolMarket) buildWithdrawNfts(task *Task) (pool.ExecuteMsg, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("withdraw_nfts requires a pool id")
	}
	if len(task.NftTokenIDs) == 0 {
		return pool.ExecuteMsg{WithdrawAllNfts: &pool.WithdrawAllNftsMsg{PoolID: task.PoolID}}, nil
	}
	return pool.ExecuteMsg{WithdrawNfts: &pool.WithdrawNftsMsg{
		PoolID:      task.PoolID,
		NftTokenIDs: task.NftTokenIDs,
	}}, nil
}

func (m *PoolMarket) buildCreatePool(task *Task) (pool.ExecuteMsg, error) {
	poolType := pool.PoolType(task.PoolType)
	if !poolType.Valid() {
		return pool.ExecuteMsg{}, fmt.Errorf("unknown pool type %q", task.PoolType)
	}
	curve := pool.BondingCurve(task.BondingCurve)
	if !curve.Valid() {
		return pool.ExecuteMsg{}, fmt.Errorf("unknown bonding curve %q", task.BondingCurve)
	}
	if err := task.SpotPrice.Validate(); err != nil {
		return pool.ExecuteMsg{}, fmt.Errorf("spot price: %w", err)
	}
	if err := task.Delta.Validate(); err != nil {
		return pool.ExecuteMsg{}, fmt.Errorf("delta: %w", err)
	}
	return pool.ExecuteMsg{CreatePool: &pool.CreatePoolMsg{
		Collection:     task.Collection,
		PoolType:       poolType,
		BondingCurve:   curve,
		SpotPrice:      task.SpotPrice,
		Delta:          task.Delta,
		FindersFeeBps:  task.FindersFeeBps,
		SwapFeeBps:     task.SwapFeeBps,
		ReinvestTokens: task.ReinvestTokens,
		ReinvestNfts:   task.ReinvestNfts,
	}}, nil
}

func (m *PoolMarket) buildUpdatePool(task *Task) (pool.ExecuteMsg, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("update_pool requires a pool id")
	}

	msg := &pool.UpdatePoolConfigMsg{PoolID: task.PoolID}
	updated := false
	if task.SpotPrice != "" {
		if err := task.SpotPrice.Validate(); err != nil {
			return pool.ExecuteMsg{}, fmt.Errorf("spot price: %w", err)
		}
		price := task.SpotPrice
		msg.SpotPrice = &price
		updated = true
	}
	if task.Delta != "" {
		if err := task.Delta.Validate(); err != nil {
			return pool.ExecuteMsg{}, fmt.Errorf("delta: %w", err)
		}
		delta := task.Delta
		msg.Delta = &delta
		updated = true
	}
	if task.SwapFeeBps > 0 {
		fee := task.SwapFeeBps
		msg.SwapFeeBps = &fee
		updated = true
	}
	if task.FindersFeeBps > 0 {
		fee := task.FindersFeeBps
		msg.FindersFeeBps = &fee
		updated = true
	}
	if !updated {
		return pool.ExecuteMsg{}, fmt.Errorf("update_pool requires at least one parameter to change")
	}
	return pool.ExecuteMsg{UpdatePoolConfig: msg}, nil
}

func (m *PoolMarket) buildRemovePool(task *Task) (pool.ExecuteMsg, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("remove_pool requires a pool id")
	}
	return pool.ExecuteMsg{RemovePool: &pool.RemovePoolMsg{PoolID: task.PoolID}}, nil
}

func (m *PoolMarket) buildSetActive(task *Task) (pool.ExecuteMsg, error) {
	if task.PoolID == 0 {
		return pool.ExecuteMsg{}, fmt.Errorf("set_active requires a pool id")
	}
	return pool.ExecuteMsg{SetActivePool: &pool.SetActivePoolMsg{
		PoolID:   task.PoolID,
		IsActive: task.Active,
	}}, nil
}
