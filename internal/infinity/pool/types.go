// Package pool contains the typed bindings for the Infinity pool contract:
// instantiate/execute/query messages, their responses and the enumerated
// discriminants. The shapes mirror the contract's JSON schema field for
// field; unknown discriminants and malformed unions are rejected on decode.
package pool

import (
	"encoding/json"
	"fmt"

	"github.com/rmansurov/infinity-bot/internal/infinity"
)

// PoolType classifies what a pool trades: its token side, its NFT side, or
// both (trade pools quote in both directions).
type PoolType string

const (
	PoolTypeToken PoolType = "token"
	PoolTypeNft   PoolType = "nft"
	PoolTypeTrade PoolType = "trade"
)

// Valid reports whether the value is a known pool type.
func (t PoolType) Valid() bool {
	switch t {
	case PoolTypeToken, PoolTypeNft, PoolTypeTrade:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown pool types.
func (t *PoolType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := PoolType(s)
	if !v.Valid() {
		return fmt.Errorf("unknown pool type %q", s)
	}
	*t = v
	return nil
}

// BondingCurve selects the pricing function that moves the spot price as
// assets are bought or sold.
type BondingCurve string

const (
	BondingCurveLinear          BondingCurve = "linear"
	BondingCurveExponential     BondingCurve = "exponential"
	BondingCurveConstantProduct BondingCurve = "constant_product"
)

// Valid reports whether the value is a known bonding curve.
func (c BondingCurve) Valid() bool {
	switch c {
	case BondingCurveLinear, BondingCurveExponential, BondingCurveConstantProduct:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown bonding curves.
func (c *BondingCurve) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := BondingCurve(s)
	if !v.Valid() {
		return fmt.Errorf("unknown bonding curve %q", s)
	}
	*c = v
	return nil
}

// TransactionType is the direction of a swap from the user's perspective:
// "buy" takes NFTs out of a pool, "sell" puts NFTs in.
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Valid reports whether the value is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeBuy || t == TransactionTypeSell
}

// UnmarshalJSON rejects unknown transaction types.
func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := TransactionType(s)
	if !v.Valid() {
		return fmt.Errorf("unknown transaction type %q", s)
	}
	*t = v
	return nil
}

// Pool is an on-chain liquidity position: one collection, one pricing policy.
type Pool struct {
	ID                uint64           `json:"id"`
	Collection        string           `json:"collection"`
	Owner             string           `json:"owner"`
	AssetRecipient    *string          `json:"asset_recipient,omitempty"`
	PoolType          PoolType         `json:"pool_type"`
	BondingCurve      BondingCurve     `json:"bonding_curve"`
	SpotPrice         infinity.Uint128 `json:"spot_price"`
	Delta             infinity.Uint128 `json:"delta"`
	TotalTokens       infinity.Uint128 `json:"total_tokens"`
	NftTokenIDs       []string         `json:"nft_token_ids"`
	FindersFeePercent infinity.Decimal `json:"finders_fee_percent"`
	SwapFeePercent    infinity.Decimal `json:"swap_fee_percent"`
	IsActive          bool             `json:"is_active"`
	ReinvestTokens    bool             `json:"reinvest_tokens"`
	ReinvestNfts      bool             `json:"reinvest_nfts"`
}

// Validate checks the pool's enum and numeric string fields.
func (p *Pool) Validate() error {
	if p.Collection == "" {
		return fmt.Errorf("pool %d: collection cannot be empty", p.ID)
	}
	if p.Owner == "" {
		return fmt.Errorf("pool %d: owner cannot be empty", p.ID)
	}
	if !p.PoolType.Valid() {
		return fmt.Errorf("pool %d: unknown pool type %q", p.ID, p.PoolType)
	}
	if !p.BondingCurve.Valid() {
		return fmt.Errorf("pool %d: unknown bonding curve %q", p.ID, p.BondingCurve)
	}
	for name, v := range map[string]infinity.Uint128{
		"spot_price":   p.SpotPrice,
		"delta":        p.Delta,
		"total_tokens": p.TotalTokens,
	} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("pool %d: %s: %w", p.ID, name, err)
		}
	}
	for name, v := range map[string]infinity.Decimal{
		"finders_fee_percent": p.FindersFeePercent,
		"swap_fee_percent":    p.SwapFeePercent,
	} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("pool %d: %s: %w", p.ID, name, err)
		}
	}
	return nil
}

// SwapParams constrains a swap: abort after the deadline, and either abort
// entirely on the first failed leg or complete partially when robust.
type SwapParams struct {
	Deadline       infinity.Timestamp `json:"deadline"`
	Robust         bool               `json:"robust"`
	AssetRecipient *string            `json:"asset_recipient,omitempty"`
	Finder         *string            `json:"finder,omitempty"`
}

// NftSwap pairs one NFT with its price bound: the minimum acceptable
// proceeds when selling, the maximum acceptable cost when buying.
type NftSwap struct {
	NftTokenID  string           `json:"nft_token_id"`
	TokenAmount infinity.Uint128 `json:"token_amount"`
}

// PoolNftSwap groups NFT swaps against a single pool.
type PoolNftSwap struct {
	PoolID   uint64    `json:"pool_id"`
	NftSwaps []NftSwap `json:"nft_swaps"`
}

// TokenPayment is an (amount, address) leg of a swap settlement.
type TokenPayment struct {
	Amount  infinity.Uint128 `json:"amount"`
	Address string           `json:"address"`
}

// NftPayment is an (nft token id, address) leg of a swap settlement.
type NftPayment struct {
	NftTokenID string `json:"nft_token_id"`
	Address    string `json:"address"`
}

// Swap is one executed (or simulated) trade and its settlement breakdown.
type Swap struct {
	PoolID          uint64           `json:"pool_id"`
	TransactionType TransactionType  `json:"transaction_type"`
	SpotPrice       infinity.Uint128 `json:"spot_price"`
	NetworkFee      infinity.Uint128 `json:"network_fee"`
	NftPayment      *NftPayment      `json:"nft_payment,omitempty"`
	SellerPayment   *TokenPayment    `json:"seller_payment,omitempty"`
	RoyaltyPayment  *TokenPayment    `json:"royalty_payment,omitempty"`
	FinderPayment   *TokenPayment    `json:"finder_payment,omitempty"`
}

// PoolQuote is the current price one pool offers for its collection.
type PoolQuote struct {
	ID         uint64           `json:"id"`
	Collection string           `json:"collection"`
	QuotePrice infinity.Uint128 `json:"quote_price"`
}

// Config is the contract's global configuration.
type Config struct {
	Denom           string  `json:"denom"`
	MarketplaceAddr string  `json:"marketplace_addr"`
	Developer       *string `json:"developer,omitempty"`
}

// QuoteCursor is the pagination cursor for quote queries. The contract
// indexes quotes by (price, pool id) and encodes the cursor as a two-element
// JSON array.
type QuoteCursor struct {
	Price  infinity.Uint128
	PoolID uint64
}

// MarshalJSON encodes the cursor as ["<price>", <pool id>].
func (c QuoteCursor) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{c.Price, c.PoolID})
}

// UnmarshalJSON decodes the two-element array form.
func (c *QuoteCursor) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("quote cursor must have 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &c.Price); err != nil {
		return fmt.Errorf("quote cursor price: %w", err)
	}
	if err := json.Unmarshal(parts[1], &c.PoolID); err != nil {
		return fmt.Errorf("quote cursor pool id: %w", err)
	}
	return nil
}
