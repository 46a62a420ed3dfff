// Package router contains the typed bindings for the Infinity swap router
// contract, which quotes and executes trades across aggregation sources
// (Infinity pools and the marketplace order book).
package router

import (
	"encoding/json"
	"fmt"

	"github.com/rmansurov/infinity-bot/internal/infinity"
	"github.com/rmansurov/infinity-bot/internal/infinity/pool"
)

// NftForTokensSource discriminates where a sell-side quote came from.
type NftForTokensSource string

const (
	NftForTokensSourceInfinity NftForTokensSource = "infinity"
)

// Valid reports whether the value is a known sell-side source.
func (s NftForTokensSource) Valid() bool {
	return s == NftForTokensSourceInfinity
}

// UnmarshalJSON rejects unknown sources.
func (s *NftForTokensSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := NftForTokensSource(str)
	if !v.Valid() {
		return fmt.Errorf("unknown nft-for-tokens source %q", str)
	}
	*s = v
	return nil
}

// TokensForNftSource discriminates where a buy-side quote came from.
type TokensForNftSource string

const (
	TokensForNftSourceInfinity    TokensForNftSource = "infinity"
	TokensForNftSourceMarketplace TokensForNftSource = "marketplace"
)

// Valid reports whether the value is a known buy-side source.
func (s TokensForNftSource) Valid() bool {
	return s == TokensForNftSourceInfinity || s == TokensForNftSourceMarketplace
}

// UnmarshalJSON rejects unknown sources.
func (s *TokensForNftSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := TokensForNftSource(str)
	if !v.Valid() {
		return fmt.Errorf("unknown tokens-for-nft source %q", str)
	}
	*s = v
	return nil
}

// NftForTokensQuote is a priced sell route: the contract address to trade
// against and the proceeds it offers.
type NftForTokensQuote struct {
	Address string             `json:"address"`
	Amount  infinity.Uint128   `json:"amount"`
	Source  NftForTokensSource `json:"source"`
}

// TokensForNftQuote is a priced buy route.
type TokensForNftQuote struct {
	Address string             `json:"address"`
	Amount  infinity.Uint128   `json:"amount"`
	Source  TokensForNftSource `json:"source"`
}

// SellOrder pairs one NFT with the minimum acceptable proceeds.
type SellOrder struct {
	InputTokenID string           `json:"input_token_id"`
	MinOutput    infinity.Uint128 `json:"min_output"`
}

// InstantiateMsg creates a router instance bound to the marketplace and the
// Infinity pool contract it routes across.
type InstantiateMsg struct {
	Marketplace  string `json:"marketplace"`
	InfinitySwap string `json:"infinity_swap"`
}

// SwapNftsForTokensMsg routes a batch of sell orders to the best sources.
type SwapNftsForTokensMsg struct {
	Collection string           `json:"collection"`
	Denom      string           `json:"denom"`
	SellOrders []SellOrder      `json:"sell_orders"`
	SwapParams *pool.SwapParams `json:"swap_params,omitempty"`
}

// SwapTokensForNftsMsg routes a batch of buys, one per max-input entry.
type SwapTokensForNftsMsg struct {
	Collection string             `json:"collection"`
	Denom      string             `json:"denom"`
	MaxInputs  []infinity.Uint128 `json:"max_inputs"`
	SwapParams *pool.SwapParams   `json:"swap_params,omitempty"`
}

// ExecuteMsg is the router's polymorphic execute message.
type ExecuteMsg struct {
	SwapNftsForTokens *SwapNftsForTokensMsg `json:"swap_nfts_for_tokens,omitempty"`
	SwapTokensForNfts *SwapTokensForNftsMsg `json:"swap_tokens_for_nfts,omitempty"`
}

// Validate checks that exactly one variant is set.
func (m *ExecuteMsg) Validate() error {
	n := 0
	if m.SwapNftsForTokens != nil {
		n++
	}
	if m.SwapTokensForNfts != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("router execute msg must set exactly one variant, got %d", n)
	}
	return nil
}

// MarshalJSON emits the single-key union form.
func (m ExecuteMsg) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	type alias ExecuteMsg
	return json.Marshal(alias(m))
}

// UnmarshalJSON decodes the union, rejecting unknown variants.
func (m *ExecuteMsg) UnmarshalJSON(data []byte) error {
	key, raw, err := infinity.UnionKey(data)
	if err != nil {
		return err
	}
	*m = ExecuteMsg{}
	var dst interface{}
	switch key {
	case "swap_nfts_for_tokens":
		m.SwapNftsForTokens = &SwapNftsForTokensMsg{}
		dst = m.SwapNftsForTokens
	case "swap_tokens_for_nfts":
		m.SwapTokensForNfts = &SwapTokensForNftsMsg{}
		dst = m.SwapTokensForNfts
	default:
		return fmt.Errorf("unknown router execute msg variant %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("router execute msg %s: %w", key, err)
	}
	return nil
}

// NftsForTokensQuery quotes selling `limit` NFTs of a collection.
type NftsForTokensQuery struct {
	Collection    string               `json:"collection"`
	Denom         string               `json:"denom"`
	Limit         uint32               `json:"limit"`
	FilterSources []NftForTokensSource `json:"filter_sources,omitempty"`
}

// TokensForNftsQuery quotes buying `limit` NFTs of a collection.
type TokensForNftsQuery struct {
	Collection    string               `json:"collection"`
	Denom         string               `json:"denom"`
	Limit         uint32               `json:"limit"`
	FilterSources []TokensForNftSource `json:"filter_sources,omitempty"`
}

// QueryMsg is the router's polymorphic query message.
type QueryMsg struct {
	NftsForTokens *NftsForTokensQuery `json:"nfts_for_tokens,omitempty"`
	TokensForNfts *TokensForNftsQuery `json:"tokens_for_nfts,omitempty"`
}

// Validate checks that exactly one variant is set.
func (m *QueryMsg) Validate() error {
	n := 0
	if m.NftsForTokens != nil {
		n++
	}
	if m.TokensForNfts != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("router query msg must set exactly one variant, got %d", n)
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
	case "nfts_for_tokens":
		m.NftsForTokens = &NftsForTokensQuery{}
		dst = m.NftsForTokens
	case "tokens_for_nfts":
		m.TokensForNfts = &TokensForNftsQuery{}
		dst = m.TokensForNfts
	default:
		return fmt.Errorf("unknown router query msg variant %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("router query msg %s: %w", key, err)
	}
	return nil
}
