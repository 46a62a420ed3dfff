package pool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmansurov/infinity-bot/internal/infinity"
)

// poolJSON mirrors the shape the contract returns for an active trade pool.
const poolJSON = `{
	"id": 7,
	"collection": "stars1collection",
	"owner": "stars1owner",
	"asset_recipient": null,
	"pool_type": "trade",
	"bonding_curve": "linear",
	"spot_price": "1500000",
	"delta": "100000",
	"total_tokens": "25000000",
	"nft_token_ids": ["101", "102"],
	"finders_fee_percent": "0.5",
	"swap_fee_percent": "2",
	"is_active": true,
	"reinvest_tokens": true,
	"reinvest_nfts": false
}`

func TestPoolDecode(t *testing.T) {
	var p Pool
	require.NoError(t, json.Unmarshal([]byte(poolJSON), &p))

	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, PoolTypeTrade, p.PoolType)
	assert.Equal(t, BondingCurveLinear, p.BondingCurve)
	assert.Equal(t, infinity.Uint128("1500000"), p.SpotPrice)
	assert.Equal(t, []string{"101", "102"}, p.NftTokenIDs)
	assert.Nil(t, p.AssetRecipient)
	assert.NoError(t, p.Validate())
}

func TestPoolDecodeRejectsUnknownEnums(t *testing.T) {
	var p Pool
	err := json.Unmarshal([]byte(`{"id":1,"pool_type":"margin"}`), &p)
	assert.ErrorContains(t, err, "unknown pool type")

	err = json.Unmarshal([]byte(`{"id":1,"bonding_curve":"sigmoid"}`), &p)
	assert.ErrorContains(t, err, "unknown bonding curve")
}

func TestPoolValidate(t *testing.T) {
	var p Pool
	require.NoError(t, json.Unmarshal([]byte(poolJSON), &p))

	p.SpotPrice = "1.5"
	assert.ErrorContains(t, p.Validate(), "spot_price")

	require.NoError(t, json.Unmarshal([]byte(poolJSON), &p))
	p.Owner = ""
	assert.ErrorContains(t, p.Validate(), "owner")
}

func TestTransactionTypeDecode(t *testing.T) {
	var tt TransactionType
	require.NoError(t, json.Unmarshal([]byte(`"sell"`), &tt))
	assert.Equal(t, TransactionTypeSell, tt)

	assert.Error(t, json.Unmarshal([]byte(`"short"`), &tt))
}

func TestSwapDecodeOptionalPayments(t *testing.T) {
	raw := `{
		"pool_id": 3,
		"transaction_type": "buy",
		"spot_price": "2000000",
		"network_fee": "40000",
		"nft_payment": {"nft_token_id": "55", "address": "stars1buyer"},
		"seller_payment": {"amount": "1910000", "address": "stars1owner"},
		"royalty_payment": {"amount": "50000", "address": "stars1artist"}
	}`
	var s Swap
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, TransactionTypeBuy, s.TransactionType)
	require.NotNil(t, s.NftPayment)
	assert.Equal(t, "55", s.NftPayment.NftTokenID)
	require.NotNil(t, s.RoyaltyPayment)
	assert.Equal(t, infinity.Uint128("50000"), s.RoyaltyPayment.Amount)
	assert.Nil(t, s.FinderPayment)
}

func TestQuoteCursorTuple(t *testing.T) {
	c := QuoteCursor{Price: "1500000", PoolID: 7}
	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `["1500000", 7]`, string(out))

	var back QuoteCursor
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, c, back)

	assert.Error(t, json.Unmarshal([]byte(`["1500000"]`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"price":"1"}`), &back))
}

func TestPoolByIDTuple(t *testing.T) {
	raw := `{"pools": [[1, ` + poolJSON + `], [2, null]]}`
	var resp PoolsByIDResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	require.Len(t, resp.Pools, 2)
	assert.Equal(t, uint64(1), resp.Pools[0].ID)
	require.NotNil(t, resp.Pools[0].Pool)
	assert.Equal(t, uint64(7), resp.Pools[0].Pool.ID)
	assert.Equal(t, uint64(2), resp.Pools[1].ID)
	assert.Nil(t, resp.Pools[1].Pool)

	out, err := json.Marshal(resp.Pools[1])
	require.NoError(t, err)
	assert.JSONEq(t, `[2, null]`, string(out))
}
