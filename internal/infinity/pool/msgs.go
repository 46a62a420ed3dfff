package pool

import (
	"encoding/json"
	"fmt"

	"github.com/rmansurov/infinity-bot/internal/infinity"
)

// InstantiateMsg creates a new pool contract instance.
type InstantiateMsg struct {
	Denom           string  `json:"denom"`
	MarketplaceAddr string  `json:"marketplace_addr"`
	Developer       *string `json:"developer,omitempty"`
}

// CreatePoolMsg creates a new pool. Fees are submitted in basis points; the
// contract stores them as percent decimals.
type CreatePoolMsg struct {
	Collection     string           `json:"collection"`
	AssetRecipient *string          `json:"asset_recipient,omitempty"`
	PoolType       PoolType         `json:"pool_type"`
	BondingCurve   BondingCurve     `json:"bonding_curve"`
	SpotPrice      infinity.Uint128 `json:"spot_price"`
	Delta          infinity.Uint128 `json:"delta"`
	FindersFeeBps  uint64           `json:"finders_fee_bps"`
	SwapFeeBps     uint64           `json:"swap_fee_bps"`
	ReinvestTokens bool             `json:"reinvest_tokens"`
	ReinvestNfts   bool             `json:"reinvest_nfts"`
}

// DepositTokensMsg deposits the attached funds into a pool.
type DepositTokensMsg struct {
	PoolID uint64 `json:"pool_id"`
}

// DepositNftsMsg deposits NFTs into a pool. The sender must own the NFTs
// and have approved the contract for transfer.
type DepositNftsMsg struct {
	PoolID      uint64   `json:"pool_id"`
	Collection  string   `json:"collection"`
	NftTokenIDs []string `json:"nft_token_ids"`
}

// WithdrawTokensMsg withdraws tokens from a pool to the asset recipient,
// or the sender when unset.
type WithdrawTokensMsg struct {
	PoolID         uint64           `json:"pool_id"`
	Amount         infinity.Uint128 `json:"amount"`
	AssetRecipient *string          `json:"asset_recipient,omitempty"`
}

// WithdrawAllTokensMsg withdraws a pool's entire token balance.
type WithdrawAllTokensMsg struct {
	PoolID         uint64  `json:"pool_id"`
	AssetRecipient *string `json:"asset_recipient,omitempty"`
}

// WithdrawNftsMsg withdraws specific NFTs from a pool.
type WithdrawNftsMsg struct {
	PoolID         uint64   `json:"pool_id"`
	NftTokenIDs    []string `json:"nft_token_ids"`
	AssetRecipient *string  `json:"asset_recipient,omitempty"`
}

// WithdrawAllNftsMsg withdraws a pool's NFTs in contract-sized batches.
type WithdrawAllNftsMsg struct {
	PoolID         uint64  `json:"pool_id"`
	AssetRecipient *string `json:"asset_recipient,omitempty"`
}

// UpdatePoolConfigMsg updates pool parameters. Unset fields keep their
// current value.
type UpdatePoolConfigMsg struct {
	PoolID         uint64            `json:"pool_id"`
	AssetRecipient *string           `json:"asset_recipient,omitempty"`
	Delta          *infinity.Uint128 `json:"delta,omitempty"`
	SpotPrice      *infinity.Uint128 `json:"spot_price,omitempty"`
	FindersFeeBps  *uint64           `json:"finders_fee_bps,omitempty"`
	SwapFeeBps     *uint64           `json:"swap_fee_bps,omitempty"`
	ReinvestTokens *bool             `json:"reinvest_tokens,omitempty"`
	ReinvestNfts   *bool             `json:"reinvest_nfts,omitempty"`
}

// SetActivePoolMsg toggles whether a pool accepts trades.
type SetActivePoolMsg struct {
	PoolID   uint64 `json:"pool_id"`
	IsActive bool   `json:"is_active"`
}

// RemovePoolMsg removes an emptied pool and returns its token balance.
type RemovePoolMsg struct {
	PoolID         uint64  `json:"pool_id"`
	AssetRecipient *string `json:"asset_recipient,omitempty"`
}

// DirectSwapNftsForTokensMsg sells NFTs into a single pool.
type DirectSwapNftsForTokensMsg struct {
	PoolID     uint64     `json:"pool_id"`
	NftsToSwap []NftSwap  `json:"nfts_to_swap"`
	SwapParams SwapParams `json:"swap_params"`
}

// SwapNftsForTokensMsg sells NFTs into the best-priced pools of a collection.
type SwapNftsForTokensMsg struct {
	Collection string     `json:"collection"`
	NftsToSwap []NftSwap  `json:"nfts_to_swap"`
	SwapParams SwapParams `json:"swap_params"`
}

// DirectSwapTokensForSpecificNftsMsg buys specific NFTs from a single pool.
type DirectSwapTokensForSpecificNftsMsg struct {
	PoolID        uint64     `json:"pool_id"`
	NftsToSwapFor []NftSwap  `json:"nfts_to_swap_for"`
	SwapParams    SwapParams `json:"swap_params"`
}

// SwapTokensForSpecificNftsMsg buys specific NFTs across several pools.
type SwapTokensForSpecificNftsMsg struct {
	Collection        string        `json:"collection"`
	PoolNftsToSwapFor []PoolNftSwap `json:"pool_nfts_to_swap_for"`
	SwapParams        SwapParams    `json:"swap_params"`
}

// SwapTokensForAnyNftsMsg buys any NFTs from the cheapest pools, one per
// entry in the max input list.
type SwapTokensForAnyNftsMsg struct {
	Collection            string             `json:"collection"`
	MaxExpectedTokenInput []infinity.Uint128 `json:"max_expected_token_input"`
	SwapParams            SwapParams         `json:"swap_params"`
}

// ExecuteMsg is the contract's polymorphic execute message: exactly one
// variant must be set, and the wire form carries that variant's key only.
type ExecuteMsg struct {
	CreatePool                      *CreatePoolMsg                      `json:"create_pool,omitempty"`
	DepositTokens                   *DepositTokensMsg                   `json:"deposit_tokens,omitempty"`
	DepositNfts                     *DepositNftsMsg                     `json:"deposit_nfts,omitempty"`
	WithdrawTokens                  *WithdrawTokensMsg                  `json:"withdraw_tokens,omitempty"`
	WithdrawAllTokens               *WithdrawAllTokensMsg               `json:"withdraw_all_tokens,omitempty"`
	WithdrawNfts                    *WithdrawNftsMsg                    `json:"withdraw_nfts,omitempty"`
	WithdrawAllNfts                 *WithdrawAllNftsMsg                 `json:"withdraw_all_nfts,omitempty"`
	UpdatePoolConfig                *UpdatePoolConfigMsg                `json:"update_pool_config,omitempty"`
	SetActivePool                   *SetActivePoolMsg                   `json:"set_active_pool,omitempty"`
	RemovePool                      *RemovePoolMsg                      `json:"remove_pool,omitempty"`
	DirectSwapNftsForTokens         *DirectSwapNftsForTokensMsg         `json:"direct_swap_nfts_for_tokens,omitempty"`
	SwapNftsForTokens               *SwapNftsForTokensMsg               `json:"swap_nfts_for_tokens,omitempty"`
	DirectSwapTokensForSpecificNfts *DirectSwapTokensForSpecificNftsMsg `json:"direct_swap_tokens_for_specific_nfts,omitempty"`
	SwapTokensForSpecificNfts       *SwapTokensForSpecificNftsMsg       `json:"swap_tokens_for_specific_nfts,omitempty"`
	SwapTokensForAnyNfts            *SwapTokensForAnyNftsMsg            `json:"swap_tokens_for_any_nfts,omitempty"`
}

// Validate checks that exactly one variant is set.
func (m *ExecuteMsg) Validate() error {
	n := 0
	for _, set := range []bool{
		m.CreatePool != nil, m.DepositTokens != nil, m.DepositNfts != nil,
		m.WithdrawTokens != nil, m.WithdrawAllTokens != nil, m.WithdrawNfts != nil,
		m.WithdrawAllNfts != nil, m.UpdatePoolConfig != nil, m.SetActivePool != nil,
		m.RemovePool != nil, m.DirectSwapNftsForTokens != nil, m.SwapNftsForTokens != nil,
		m.DirectSwapTokensForSpecificNfts != nil, m.SwapTokensForSpecificNfts != nil,
		m.SwapTokensForAnyNfts != nil,
	} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("execute msg must set exactly one variant, got %d", n)
	}
	return nil
}

// MarshalJSON emits the single-key union form, failing if the message does
// not hold exactly one variant.
func (m ExecuteMsg) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	type alias ExecuteMsg
	return json.Marshal(alias(m))
}

// UnmarshalJSON decodes the union, rejecting unknown or ambiguous variants.
func (m *ExecuteMsg) UnmarshalJSON(data []byte) error {
	key, raw, err := infinity.UnionKey(data)
	if err != nil {
		return err
	}
	*m = ExecuteMsg{}
	var dst interface{}
	switch key {
	case "create_pool":
		m.CreatePool = &CreatePoolMsg{}
		dst = m.CreatePool
	case "deposit_tokens":
		m.DepositTokens = &DepositTokensMsg{}
		dst = m.DepositTokens
	case "deposit_nfts":
		m.DepositNfts = &DepositNftsMsg{}
		dst = m.DepositNfts
	case "withdraw_tokens":
		m.WithdrawTokens = &WithdrawTokensMsg{}
		dst = m.WithdrawTokens
	case "withdraw_all_tokens":
		m.WithdrawAllTokens = &WithdrawAllTokensMsg{}
		dst = m.WithdrawAllTokens
	case "withdraw_nfts":
		m.WithdrawNfts = &WithdrawNftsMsg{}
		dst = m.WithdrawNfts
	case "withdraw_all_nfts":
		m.WithdrawAllNfts = &WithdrawAllNftsMsg{}
		dst = m.WithdrawAllNfts
	case "update_pool_config":
		m.UpdatePoolConfig = &UpdatePoolConfigMsg{}
		dst = m.UpdatePoolConfig
	case "set_active_pool":
		m.SetActivePool = &SetActivePoolMsg{}
		dst = m.SetActivePool
	case "remove_pool":
		m.RemovePool = &RemovePoolMsg{}
		dst = m.RemovePool
	case "direct_swap_nfts_for_tokens":
		m.DirectSwapNftsForTokens = &DirectSwapNftsForTokensMsg{}
		dst = m.DirectSwapNftsForTokens
	case "swap_nfts_for_tokens":
		m.SwapNftsForTokens = &SwapNftsForTokensMsg{}
		dst = m.SwapNftsForTokens
	case "direct_swap_tokens_for_specific_nfts":
		m.DirectSwapTokensForSpecificNfts = &DirectSwapTokensForSpecificNftsMsg{}
		dst = m.DirectSwapTokensForSpecificNfts
	case "swap_tokens_for_specific_nfts":
		m.SwapTokensForSpecificNfts = &SwapTokensForSpecificNftsMsg{}
		dst = m.SwapTokensForSpecificNfts
	case "swap_tokens_for_any_nfts":
		m.SwapTokensForAnyNfts = &SwapTokensForAnyNftsMsg{}
		dst = m.SwapTokensForAnyNfts
	default:
		return fmt.Errorf("unknown execute msg variant %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("execute msg %s: %w", key, err)
	}
	return nil
}
