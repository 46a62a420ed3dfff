package dex

import (
	"context"
	"fmt"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/infinity"
	"github.com/rmansurov/infinity-bot/internal/infinity/pool"
	"github.com/rmansurov/infinity-bot/internal/infinity/router"
)

// PoolQuerier wraps the pool contract's read surface with typed helpers.
type PoolQuerier struct {
	client   *chain.Client
	contract string
}

// NewPoolQuerier binds a querier to one pool contract address.
func NewPoolQuerier(client *chain.Client, contract string) (*PoolQuerier, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client cannot be nil")
	}
	if contract == "" {
		return nil, fmt.Errorf("pool contract address cannot be empty")
	}
	return &PoolQuerier{client: client, contract: contract}, nil
}

// Contract returns the bound contract address.
func (q *PoolQuerier) Contract() string {
	return q.contract
}

// Config fetches the contract configuration.
func (q *PoolQuerier) Config(ctx context.Context) (*pool.Config, error) {
	var resp pool.ConfigResponse
	err := q.client.SmartQuery(ctx, q.contract, pool.QueryMsg{Config: &pool.ConfigQuery{}}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Config, nil
}

// Pools pages through all pools, starting after the given id.
func (q *PoolQuerier) Pools(ctx context.Context, startAfter uint64, limit uint32) ([]pool.Pool, error) {
	msg := pool.QueryMsg{Pools: &pool.PoolsQuery{}}
	opts := &infinity.QueryOptions[uint64]{}
	if startAfter > 0 {
		opts.StartAfter = &startAfter
	}
	if limit > 0 {
		opts.Limit = &limit
	}
	if opts.StartAfter != nil || opts.Limit != nil {
		msg.Pools.QueryOptions = opts
	}
	var resp pool.PoolsResponse
	if err := q.client.SmartQuery(ctx, q.contract, msg, &resp); err != nil {
		return nil, err
	}
	return resp.Pools, nil
}

// PoolsByID fetches specific pools; missing ids come back with a nil pool.
func (q *PoolQuerier) PoolsByID(ctx context.Context, ids []uint64) ([]pool.PoolByID, error) {
	var resp pool.PoolsByIDResponse
	msg := pool.QueryMsg{PoolsByID: &pool.PoolsByIDQuery{PoolIDs: ids}}
	if err := q.client.SmartQuery(ctx, q.contract, msg, &resp); err != nil {
		return nil, err
	}
	return resp.Pools, nil
}

// PoolsByOwner lists pools owned by one address.
func (q *PoolQuerier) PoolsByOwner(ctx context.Context, owner string, startAfter uint64, limit uint32) ([]pool.Pool, error) {
	msg := pool.QueryMsg{PoolsByOwner: &pool.PoolsByOwnerQuery{Owner: owner}}
	opts := &infinity.QueryOptions[uint64]{}
	if startAfter > 0 {
		opts.StartAfter = &startAfter
	}
	if limit > 0 {
		opts.Limit = &limit
	}
	if opts.StartAfter != nil || opts.Limit != nil {
		msg.PoolsByOwner.QueryOptions = opts
	}
	var resp pool.PoolsResponse
	if err := q.client.SmartQuery(ctx, q.contract, msg, &resp); err != nil {
		return nil, err
	}
	return resp.Pools, nil
}

// BuyQuotes lists buy-side quotes for a collection, cheapest first.
func (q *PoolQuerier) BuyQuotes(ctx context.Context, collection string, limit uint32) ([]pool.PoolQuote, error) {
	msg := pool.QueryMsg{PoolQuotesBuy: &pool.PoolQuotesBuyQuery{Collection: collection}}
	if limit > 0 {
		msg.PoolQuotesBuy.QueryOptions = &infinity.QueryOptions[pool.QuoteCursor]{Limit: &limit}
	}
	var resp pool.PoolQuoteResponse
	if err := q.client.SmartQuery(ctx, q.contract, msg, &resp); err != nil {
		return nil, err
	}
	return resp.PoolQuotes, nil
}

// SellQuotes lists sell-side quotes for a collection, best first.
func (q *PoolQuerier) SellQuotes(ctx context.Context, collection string, limit uint32) ([]pool.PoolQuote, error) {
	msg := pool.QueryMsg{PoolQuotesSell: &pool.PoolQuotesSellQuery{Collection: collection}}
	if limit > 0 {
		msg.PoolQuotesSell.QueryOptions = &infinity.QueryOptions[pool.QuoteCursor]{Limit: &limit}
	}
	var resp pool.PoolQuoteResponse
	if err := q.client.SmartQuery(ctx, q.contract, msg, &resp); err != nil {
		return nil, err
	}
	return resp.PoolQuotes, nil
}

// Simulate runs one sim_* query and returns the projected swaps.
func (q *PoolQuerier) Simulate(ctx context.Context, msg pool.QueryMsg) ([]pool.Swap, error) {
	var resp pool.SwapResponse
	if err := q.client.SmartQuery(ctx, q.contract, msg, &resp); err != nil {
		return nil, err
	}
	return resp.Swaps, nil
}

// RouterQuerier wraps the router contract's read surface.
type RouterQuerier struct {
	client   *chain.Client
	contract string
}

// NewRouterQuerier binds a querier to one router contract address.
func NewRouterQuerier(client *chain.Client, contract string) (*RouterQuerier, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client cannot be nil")
	}
	if contract == "" {
		return nil, fmt.Errorf("router contract address cannot be empty")
	}
	return &RouterQuerier{client: client, contract: contract}, nil
}

// Contract returns the bound contract address.
func (q *RouterQuerier) Contract() string {
	return q.contract
}

// NftsForTokens quotes selling `limit` NFTs across all sources.
func (q *RouterQuerier) NftsForTokens(ctx context.Context, collection, denom string, limit uint32, sources []router.NftForTokensSource) ([]router.NftForTokensQuote, error) {
	msg := router.QueryMsg{NftsForTokens: &router.NftsForTokensQuery{
		Collection:    collection,
		Denom:         denom,
		Limit:         limit,
		FilterSources: sources,
	}}
	var quotes []router.NftForTokensQuote
	if err := q.client.SmartQuery(ctx, q.contract, msg, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// TokensForNfts quotes buying `limit` NFTs across all sources.
func (q *RouterQuerier) TokensForNfts(ctx context.Context, collection, denom string, limit uint32, sources []router.TokensForNftSource) ([]router.TokensForNftQuote, error) {
	msg := router.QueryMsg{TokensForNfts: &router.TokensForNftsQuery{
		Collection:    collection,
		Denom:         denom,
		Limit:         limit,
		FilterSources: sources,
	}}
	var quotes []router.TokensForNftQuote
	if err := q.client.SmartQuery(ctx, q.contract, msg, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}
