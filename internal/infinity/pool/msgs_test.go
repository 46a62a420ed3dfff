package pool

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmansurov/infinity-bot/internal/infinity"
)

func TestExecuteMsgMarshalSingleVariant(t *testing.T) {
	msg := ExecuteMsg{
		DirectSwapNftsForTokens: &DirectSwapNftsForTokensMsg{
			PoolID: 4,
			NftsToSwap: []NftSwap{
				{NftTokenID: "21", TokenAmount: "1400000"},
			},
			SwapParams: SwapParams{
				Deadline: infinity.NewTimestamp(time.Unix(1700000000, 0)),
				Robust:   true,
			},
		},
	}

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"direct_swap_nfts_for_tokens": {
			"pool_id": 4,
			"nfts_to_swap": [{"nft_token_id": "21", "token_amount": "1400000"}],
			"swap_params": {"deadline": "1700000000000000000", "robust": true}
		}
	}`, string(out))
}

func TestExecuteMsgMarshalRejectsAmbiguous(t *testing.T) {
	_, err := json.Marshal(ExecuteMsg{})
	assert.ErrorContains(t, err, "exactly one variant")

	_, err = json.Marshal(ExecuteMsg{
		DepositTokens: &DepositTokensMsg{PoolID: 1},
		SetActivePool: &SetActivePoolMsg{PoolID: 1, IsActive: true},
	})
	assert.ErrorContains(t, err, "exactly one variant")
}

func TestExecuteMsgUnmarshal(t *testing.T) {
	raw := `{"create_pool": {
		"collection": "stars1collection",
		"pool_type": "nft",
		"bonding_curve": "exponential",
		"spot_price": "1000000",
		"delta": "50",
		"finders_fee_bps": 50,
		"swap_fee_bps": 0,
		"reinvest_tokens": false,
		"reinvest_nfts": false
	}}`

	var msg ExecuteMsg
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	require.NotNil(t, msg.CreatePool)
	assert.Equal(t, PoolTypeNft, msg.CreatePool.PoolType)
	assert.Equal(t, uint64(50), msg.CreatePool.FindersFeeBps)
	assert.NoError(t, msg.Validate())
}

func TestExecuteMsgUnmarshalRejectsUnknownVariant(t *testing.T) {
	var msg ExecuteMsg
	err := json.Unmarshal([]byte(`{"flash_loan": {}}`), &msg)
	assert.ErrorContains(t, err, "unknown execute msg variant")
}

func TestExecuteMsgUnmarshalRejectsMultipleKeys(t *testing.T) {
	var msg ExecuteMsg
	err := json.Unmarshal([]byte(`{"deposit_tokens":{"pool_id":1},"remove_pool":{"pool_id":1}}`), &msg)
	assert.ErrorContains(t, err, "exactly one key")
}

func TestExecuteMsgRoundTrip(t *testing.T) {
	msgs := []ExecuteMsg{
		{DepositNfts: &DepositNftsMsg{PoolID: 2, Collection: "stars1c", NftTokenIDs: []string{"9"}}},
		{WithdrawAllTokens: &WithdrawAllTokensMsg{PoolID: 3, AssetRecipient: infinity.Ptr("stars1r")}},
		{UpdatePoolConfig: &UpdatePoolConfigMsg{
			PoolID:     5,
			SpotPrice:  infinity.Ptr(infinity.Uint128("2000000")),
			SwapFeeBps: infinity.Ptr(uint64(150)),
		}},
		{SwapTokensForAnyNfts: &SwapTokensForAnyNftsMsg{
			Collection:            "stars1c",
			MaxExpectedTokenInput: []infinity.Uint128{"1000000", "1100000"},
			SwapParams: SwapParams{
				Deadline: "1700000000000000000",
				Robust:   false,
				Finder:   infinity.Ptr("stars1finder"),
			},
		}},
	}

	for _, msg := range msgs {
		out, err := json.Marshal(msg)
		require.NoError(t, err)

		var back ExecuteMsg
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, msg, back)
	}
}

func TestQueryMsgMarshalPagination(t *testing.T) {
	msg := QueryMsg{
		PoolQuotesBuy: &PoolQuotesBuyQuery{
			Collection: "stars1collection",
			QueryOptions: &infinity.QueryOptions[QuoteCursor]{
				StartAfter: &QuoteCursor{Price: "1500000", PoolID: 7},
				Limit:      infinity.Ptr(uint32(25)),
				Descending: infinity.Ptr(false),
			},
		},
	}

	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pool_quotes_buy": {
			"collection": "stars1collection",
			"query_options": {
				"start_after": ["1500000", 7],
				"limit": 25,
				"descending": false
			}
		}
	}`, string(out))
}

func TestQueryMsgOmitsEmptyOptions(t *testing.T) {
	out, err := json.Marshal(QueryMsg{Pools: &PoolsQuery{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pools": {}}`, string(out))

	out, err = json.Marshal(QueryMsg{Config: &ConfigQuery{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"config": {}}`, string(out))
}

func TestQueryMsgUnmarshalSim(t *testing.T) {
	raw := `{"sim_swap_tokens_for_specific_nfts": {
		"collection": "stars1c",
		"pool_nfts_to_swap_for": [
			{"pool_id": 1, "nft_swaps": [{"nft_token_id": "3", "token_amount": "900000"}]}
		],
		"sender": "stars1sender",
		"swap_params": {"deadline": "1700000000000000000", "robust": false}
	}`

	var msg QueryMsg
	require.NoError(t, json.Unmarshal([]byte(raw+"}"), &msg))
	require.NotNil(t, msg.SimSwapTokensForSpecificNfts)
	assert.Equal(t, "stars1sender", msg.SimSwapTokensForSpecificNfts.Sender)
	require.Len(t, msg.SimSwapTokensForSpecificNfts.PoolNftsToSwapFor, 1)

	err := json.Unmarshal([]byte(`{"sim_everything": {}}`), &msg)
	assert.ErrorContains(t, err, "unknown query msg variant")
}

func TestSwapResponseDecode(t *testing.T) {
	raw := `{"swaps": [{
		"pool_id": 9,
		"transaction_type": "sell",
		"spot_price": "1450000",
		"network_fee": "29000",
		"seller_payment": {"amount": "1391000", "address": "stars1seller"}
	}]}`

	var resp SwapResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Swaps, 1)
	assert.Equal(t, TransactionTypeSell, resp.Swaps[0].TransactionType)
	assert.Nil(t, resp.Swaps[0].NftPayment)
}
