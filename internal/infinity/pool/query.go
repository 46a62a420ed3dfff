package pool

import (
	"encoding/json"
	"fmt"

	"github.com/rmansurov/infinity-bot/internal/infinity"
)

// ConfigQuery fetches the contract configuration.
type ConfigQuery struct{}

// PoolsQuery lists pools, paginated on pool id.
type PoolsQuery struct {
	QueryOptions *infinity.QueryOptions[uint64] `json:"query_options,omitempty"`
}

// PoolsByIDQuery fetches specific pools; missing ids come back as nulls.
type PoolsByIDQuery struct {
	PoolIDs []uint64 `json:"pool_ids"`
}

// PoolsByOwnerQuery lists pools owned by one address.
type PoolsByOwnerQuery struct {
	Owner        string                         `json:"owner"`
	QueryOptions *infinity.QueryOptions[uint64] `json:"query_options,omitempty"`
}

// PoolQuotesBuyQuery lists buy-side quotes for a collection, cheapest first
// unless descending.
type PoolQuotesBuyQuery struct {
	Collection   string                              `json:"collection"`
	QueryOptions *infinity.QueryOptions[QuoteCursor] `json:"query_options,omitempty"`
}

// PoolQuotesSellQuery lists sell-side quotes for a collection.
type PoolQuotesSellQuery struct {
	Collection   string                              `json:"collection"`
	QueryOptions *infinity.QueryOptions[QuoteCursor] `json:"query_options,omitempty"`
}

// SimDirectSwapNftsForTokensQuery simulates selling NFTs into one pool.
type SimDirectSwapNftsForTokensQuery struct {
	PoolID     uint64     `json:"pool_id"`
	NftsToSwap []NftSwap  `json:"nfts_to_swap"`
	Sender     string     `json:"sender"`
	SwapParams SwapParams `json:"swap_params"`
}

// SimSwapNftsForTokensQuery simulates selling NFTs across a collection.
type SimSwapNftsForTokensQuery struct {
	Collection string     `json:"collection"`
	NftsToSwap []NftSwap  `json:"nfts_to_swap"`
	Sender     string     `json:"sender"`
	SwapParams SwapParams `json:"swap_params"`
}

// SimDirectSwapTokensForSpecificNftsQuery simulates buying specific NFTs
// from one pool.
type SimDirectSwapTokensForSpecificNftsQuery struct {
	PoolID        uint64     `json:"pool_id"`
	NftsToSwapFor []NftSwap  `json:"nfts_to_swap_for"`
	Sender        string     `json:"sender"`
	SwapParams    SwapParams `json:"swap_params"`
}

// SimSwapTokensForSpecificNftsQuery simulates buying specific NFTs across
// several pools.
type SimSwapTokensForSpecificNftsQuery struct {
	Collection        string        `json:"collection"`
	PoolNftsToSwapFor []PoolNftSwap `json:"pool_nfts_to_swap_for"`
	Sender            string        `json:"sender"`
	SwapParams        SwapParams    `json:"swap_params"`
}

// SimSwapTokensForAnyNftsQuery simulates buying any NFTs from the cheapest
// pools.
type SimSwapTokensForAnyNftsQuery struct {
	Collection            string             `json:"collection"`
	MaxExpectedTokenInput []infinity.Uint128 `json:"max_expected_token_input"`
	Sender                string             `json:"sender"`
	SwapParams            SwapParams         `json:"swap_params"`
}

// QueryMsg is the contract's polymorphic query message; exactly one variant
// must be set.
type QueryMsg struct {
	Config                             *ConfigQuery                             `json:"config,omitempty"`
	Pools                              *PoolsQuery                              `json:"pools,omitempty"`
	PoolsByID                          *PoolsByIDQuery                          `json:"pools_by_id,omitempty"`
	PoolsByOwner                       *PoolsByOwnerQuery                       `json:"pools_by_owner,omitempty"`
	PoolQuotesBuy                      *PoolQuotesBuyQuery                      `json:"pool_quotes_buy,omitempty"`
	PoolQuotesSell                     *PoolQuotesSellQuery                     `json:"pool_quotes_sell,omitempty"`
	SimDirectSwapNftsForTokens         *SimDirectSwapNftsForTokensQuery         `json:"sim_direct_swap_nfts_for_tokens,omitempty"`
	SimSwapNftsForTokens               *SimSwapNftsForTokensQuery               `json:"sim_swap_nfts_for_tokens,omitempty"`
	SimDirectSwapTokensForSpecificNfts *SimDirectSwapTokensForSpecificNftsQuery `json:"sim_direct_swap_tokens_for_specific_nfts,omitempty"`
	SimSwapTokensForSpecificNfts       *SimSwapTokensForSpecificNftsQuery       `json:"sim_swap_tokens_for_specific_nfts,omitempty"`
	SimSwapTokensForAnyNfts            *SimSwapTokensForAnyNftsQuery            `json:"sim_swap_tokens_for_any_nfts,omitempty"`
}

// Validate checks that exactly one variant is set.
func (m *QueryMsg) Validate() error {
	n := 0
	for _, set := range []bool{
		m.Config != nil, m.Pools != nil, m.PoolsByID != nil, m.PoolsByOwner != nil,
		m.PoolQuotesBuy != nil, m.PoolQuotesSell != nil,
		m.SimDirectSwapNftsForTokens != nil, m.SimSwapNftsForTokens != nil,
		m.SimDirectSwapTokensForSpecificNfts != nil, m.SimSwapTokensForSpecificNfts != nil,
		m.SimSwapTokensForAnyNfts != nil,
	} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("query msg must set exactly one variant, got %d", n)
	}
	return nil
}

// MarshalJSON emits the single-key union form.
func (m QueryMsg) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	type alias QueryMsg
	return json.Marshal(alias(m))
}

// UnmarshalJSON decodes the union, rejecting unknown variants.
func (m *QueryMsg) UnmarshalJSON(data []byte) error {
	key, raw, err := infinity.UnionKey(data)
	if err != nil {
		return err
	}
	*m = QueryMsg{}
	var dst interface{}
	switch key {
	case "config":
		m.Config = &ConfigQuery{}
		dst = m.Config
	case "pools":
		m.Pools = &PoolsQuery{}
		dst = m.Pools
	case "pools_by_id":
		m.PoolsByID = &PoolsByIDQuery{}
		dst = m.PoolsByID
	case "pools_by_owner":
		m.PoolsByOwner = &PoolsByOwnerQuery{}
		dst = m.PoolsByOwner
	case "pool_quotes_buy":
		m.PoolQuotesBuy = &PoolQuotesBuyQuery{}
		dst = m.PoolQuotesBuy
	case "pool_quotes_sell":
		m.PoolQuotesSell = &PoolQuotesSellQuery{}
		dst = m.PoolQuotesSell
	case "sim_direct_swap_nfts_for_tokens":
		m.SimDirectSwapNftsForTokens = &SimDirectSwapNftsForTokensQuery{}
		dst = m.SimDirectSwapNftsForTokens
	case "sim_swap_nfts_for_tokens":
		m.SimSwapNftsForTokens = &SimSwapNftsForTokensQuery{}
		dst = m.SimSwapNftsForTokens
	case "sim_direct_swap_tokens_for_specific_nfts":
		m.SimDirectSwapTokensForSpecificNfts = &SimDirectSwapTokensForSpecificNftsQuery{}
		dst = m.SimDirectSwapTokensForSpecificNfts
	case "sim_swap_tokens_for_specific_nfts":
		m.SimSwapTokensForSpecificNfts = &SimSwapTokensForSpecificNftsQuery{}
		dst = m.SimSwapTokensForSpecificNfts
	case "sim_swap_tokens_for_any_nfts":
		m.SimSwapTokensForAnyNfts = &SimSwapTokensForAnyNftsQuery{}
		dst = m.SimSwapTokensForAnyNfts
	default:
		return fmt.Errorf("unknown query msg variant %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("query msg %s: %w", key, err)
	}
	return nil
}

// ConfigResponse wraps the contract configuration.
type ConfigResponse struct {
	Config Config `json:"config"`
}

// PoolsResponse is the result of the pools and pools_by_owner queries.
type PoolsResponse struct {
	Pools []Pool `json:"pools"`
}

// PoolByID pairs a requested pool id with its pool, nil when the pool does
// not exist. The wire form is a two-element array [id, pool|null].
type PoolByID struct {
	ID   uint64
	Pool *Pool
}

// MarshalJSON encodes the [id, pool|null] tuple.
func (p PoolByID) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.ID, p.Pool})
}

// UnmarshalJSON decodes the [id, pool|null] tuple.
func (p *PoolByID) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("pool tuple must have 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &p.ID); err != nil {
		return fmt.Errorf("pool tuple id: %w", err)
	}
	if string(parts[1]) == "null" {
		p.Pool = nil
		return nil
	}
	p.Pool = &Pool{}
	if err := json.Unmarshal(parts[1], p.Pool); err != nil {
		return fmt.Errorf("pool tuple value: %w", err)
	}
	return nil
}

// PoolsByIDResponse is the result of the pools_by_id query.
type PoolsByIDResponse struct {
	Pools []PoolByID `json:"pools"`
}

// PoolQuoteResponse is the result of the pool_quotes_buy/sell queries.
type PoolQuoteResponse struct {
	PoolQuotes []PoolQuote `json:"pool_quotes"`
}

// SwapResponse is the result of every sim_* query.
type SwapResponse struct {
	Swaps []Swap `json:"swaps"`
}
