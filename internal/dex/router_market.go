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
	"github.com/rmansurov/infinity-bot/internal/infinity/router"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

// RouterMarket trades through the swap router, which picks the best source
// (Infinity pools or the marketplace order book) per NFT.
type RouterMarket struct {
	querier   *RouterQuerier
	submitter chain.Submitter
	denom     string
	logger    *zap.Logger
	metrics   *metrics.Collector

	now func() time.Time
}

// NewRouterMarket builds the router market adapter.
func NewRouterMarket(querier *RouterQuerier, submitter chain.Submitter, denom string, logger *zap.Logger, mc *metrics.Collector) (*RouterMarket, error) {
	if querier == nil {
		return nil, fmt.Errorf("router querier cannot be nil")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}
	if denom == "" {
		return nil, fmt.Errorf("denom cannot be empty")
	}
	return &RouterMarket{
		querier:   querier,
		submitter: submitter,
		denom:     denom,
		logger:    logger,
		metrics:   mc,
		now:       time.Now,
	}, nil
}

// Name implements Market.
func (m *RouterMarket) Name() string { return "router" }

// Execute implements Market. The router only swaps; liquidity operations
// belong to the pool market.
func (m *RouterMarket) Execute(ctx context.Context, task *Task) (*chain.Receipt, error) {
	if err := validateSwapTask(task); err != nil {
		return nil, err
	}

	var (
		msg   router.ExecuteMsg
		funds []chain.Coin
		err   error
	)
	switch task.Operation {
	case OperationSell:
		msg, err = m.buildSell(ctx, task)
	case OperationBuyAny:
		msg, funds, err = m.buildBuy(ctx, task)
	default:
		return nil, fmt.Errorf("operation %q is not supported by the router market", task.Operation)
	}
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode router msg: %w", err)
	}

	m.logger.Info("executing routed swap",
		zap.String("operation", string(task.Operation)),
		zap.String("collection", task.Collection))

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

	m.logger.Info("routed swap broadcast",
		zap.String("operation", string(task.Operation)),
		zap.String("tx_hash", receipt.TxHash))
	return receipt, nil
}

func (m *RouterMarket) swapParams(task *Task) *pool.SwapParams {
	params := &pool.SwapParams{
		Deadline: task.Deadline(m.now()),
		Robust:   task.Robust,
	}
	if task.Finder != "" {
		params.Finder = infinity.Ptr(task.Finder)
	}
	return params
}

func (m *RouterMarket) buildSell(ctx context.Context, task *Task) (router.ExecuteMsg, error) {
	if len(task.NftTokenIDs) == 0 {
		return router.ExecuteMsg{}, fmt.Errorf("sell requires nft token ids")
	}

	quotes, err := m.querier.NftsForTokens(ctx, task.Collection, m.denom, uint32(len(task.NftTokenIDs)), nil)
	if err != nil {
		return router.ExecuteMsg{}, fmt.Errorf("fetch sell routes: %w", err)
	}
	if len(quotes) < len(task.NftTokenIDs) && !task.Robust {
		return router.ExecuteMsg{}, fmt.Errorf("collection %s has %d sell routes, need %d",
			task.Collection, len(quotes), len(task.NftTokenIDs))
	}
	if len(quotes) == 0 {
		return router.ExecuteMsg{}, fmt.Errorf("collection %s has no sell routes", task.Collection)
	}

	orders := make([]router.SellOrder, len(task.NftTokenIDs))
	for i, id := range task.NftTokenIDs {
		bound := task.Amount
		if bound == "" {
			// Quotes arrive best first; the worst quoted route bounds
			// every order so later fills cannot undercut it.
			worst := quotes[len(quotes)-1].Amount
			if bound, err = applySlippage(worst, task.SlippageBps, false); err != nil {
				return router.ExecuteMsg{}, err
			}
		} else if err := bound.Validate(); err != nil {
			return router.ExecuteMsg{}, fmt.Errorf("task amount: %w", err)
		}
		orders[i] = router.SellOrder{InputTokenID: id, MinOutput: bound}
	}

	return router.ExecuteMsg{SwapNftsForTokens: &router.SwapNftsForTokensMsg{
		Collection: task.Collection,
		Denom:      m.denom,
		SellOrders: orders,
		SwapParams: m.swapParams(task),
	}}, nil
}

func (m *RouterMarket) buildBuy(ctx context.Context, task *Task) (router.ExecuteMsg, []chain.Coin, error) {
	if task.Quantity <= 0 {
		return router.ExecuteMsg{}, nil, fmt.Errorf("buy_any requires a positive quantity")
	}

	quotes, err := m.querier.TokensForNfts(ctx, task.Collection, m.denom, uint32(task.Quantity), nil)
	if err != nil {
		return router.ExecuteMsg{}, nil, fmt.Errorf("fetch buy routes: %w", err)
	}
	if len(quotes) < task.Quantity {
		if !task.Robust || len(quotes) == 0 {
			return router.ExecuteMsg{}, nil, fmt.Errorf("collection %s has %d buy routes, need %d",
				task.Collection, len(quotes), task.Quantity)
		}
	}

	n := task.Quantity
	if len(quotes) < n {
		n = len(quotes)
	}
	maxInputs := make([]infinity.Uint128, n)
	for i := 0; i < n; i++ {
		bound := task.Amount
		if bound == "" {
			if bound, err = applySlippage(quotes[i].Amount, task.SlippageBps, true); err != nil {
				return router.ExecuteMsg{}, nil, err
			}
		} else if err := bound.Validate(); err != nil {
			return router.ExecuteMsg{}, nil, fmt.Errorf("task amount: %w", err)
		}
		maxInputs[i] = bound
	}

	msg := router.ExecuteMsg{SwapTokensForNfts: &router.SwapTokensForNftsMsg{
		Collection: task.Collection,
		Denom:      m.denom,
		MaxInputs:  maxInputs,
		SwapParams: m.swapParams(task),
	}}

	funds, err := sumFunds(m.denom, maxInputs)
	if err != nil {
		return router.ExecuteMsg{}, nil, err
	}
	return msg, funds, nil
}
