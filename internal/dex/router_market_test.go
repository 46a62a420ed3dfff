package dex

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/infinity/router"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

// routerContractHandler answers router smart queries from canned quotes.
type routerContractHandler struct {
	sellQuotes []router.NftForTokensQuote
	buyQuotes  []router.TokensForNftQuote
}

func (h *routerContractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/smart/")
	if len(parts) != 2 {
		http.Error(w, "bad path", http.StatusBadRequest)
		return
	}
	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		http.Error(w, "bad base64", http.StatusBadRequest)
		return
	}
	var msg router.QueryMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result interface{}
	switch {
	case msg.NftsForTokens != nil:
		quotes := h.sellQuotes
		if int(msg.NftsForTokens.Limit) < len(quotes) {
			quotes = quotes[:msg.NftsForTokens.Limit]
		}
		result = quotes
	case msg.TokensForNfts != nil:
		quotes := h.buyQuotes
		if int(msg.TokensForNfts.Limit) < len(quotes) {
			quotes = quotes[:msg.TokensForNfts.Limit]
		}
		result = quotes
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": result})
}

func newTestRouterMarket(t *testing.T, handler http.Handler) (*RouterMarket, *fakeSubmitter, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	client, err := chain.NewClient([]string{server.URL}, 1, zaptest.NewLogger(t), metrics.NewCollector())
	require.NoError(t, err)
	querier, err := NewRouterQuerier(client, "stars1router")
	require.NoError(t, err)

	submitter := &fakeSubmitter{}
	market, err := NewRouterMarket(querier, submitter, "ustars", zaptest.NewLogger(t), metrics.NewCollector())
	require.NoError(t, err)
	market.now = func() time.Time { return testNow }

	return market, submitter, server.Close
}

func TestRouterMarketBuy(t *testing.T) {
	handler := &routerContractHandler{
		buyQuotes: []router.TokensForNftQuote{
			{Address: "stars1pool", Amount: "1000000", Source: router.TokensForNftSourceInfinity},
			{Address: "stars1mkt", Amount: "1300000", Source: router.TokensForNftSourceMarketplace},
		},
	}
	market, submitter, done := newTestRouterMarket(t, handler)
	defer done()

	receipt, err := market.Execute(context.Background(), &Task{
		Operation:   OperationBuyAny,
		Sender:      "trader",
		Collection:  "stars1c",
		Quantity:    2,
		SlippageBps: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, "HASH", receipt.TxHash)

	msg := submittedMsg(t, submitter)
	require.Contains(t, msg, "swap_tokens_for_nfts")

	var swap router.SwapTokensForNftsMsg
	require.NoError(t, json.Unmarshal(msg["swap_tokens_for_nfts"], &swap))
	assert.Equal(t, "ustars", swap.Denom)
	require.Len(t, swap.MaxInputs, 2)
	// Quoted routes widened by 2% slippage.
	assert.Equal(t, "1020000", string(swap.MaxInputs[0]))
	assert.Equal(t, "1326000", string(swap.MaxInputs[1]))

	require.Len(t, submitter.requests[0].Funds, 1)
	assert.Equal(t, chain.Coin{Denom: "ustars", Amount: "2346000"}, submitter.requests[0].Funds[0])
}

func TestRouterMarketSell(t *testing.T) {
	handler := &routerContractHandler{
		sellQuotes: []router.NftForTokensQuote{
			{Address: "stars1pool", Amount: "2000000", Source: router.NftForTokensSourceInfinity},
			{Address: "stars1pool", Amount: "1800000", Source: router.NftForTokensSourceInfinity},
		},
	}
	market, submitter, done := newTestRouterMarket(t, handler)
	defer done()

	_, err := market.Execute(context.Background(), &Task{
		Operation:   OperationSell,
		Sender:      "trader",
		Collection:  "stars1c",
		NftTokenIDs: []string{"11", "12"},
		SlippageBps: 1000,
	})
	require.NoError(t, err)

	msg := submittedMsg(t, submitter)
	require.Contains(t, msg, "swap_nfts_for_tokens")

	var swap router.SwapNftsForTokensMsg
	require.NoError(t, json.Unmarshal(msg["swap_nfts_for_tokens"], &swap))
	require.Len(t, swap.SellOrders, 2)
	// The worst quoted route, tightened by 10%, bounds every order.
	for _, order := range swap.SellOrders {
		assert.Equal(t, "1620000", string(order.MinOutput))
	}
	assert.Empty(t, submitter.requests[0].Funds)
}

func TestRouterMarketSellInsufficientRoutes(t *testing.T) {
	handler := &routerContractHandler{
		sellQuotes: []router.NftForTokensQuote{
			{Address: "stars1pool", Amount: "2000000", Source: router.NftForTokensSourceInfinity},
		},
	}
	market, submitter, done := newTestRouterMarket(t, handler)
	defer done()

	_, err := market.Execute(context.Background(), &Task{
		Operation:   OperationSell,
		Sender:      "trader",
		Collection:  "stars1c",
		NftTokenIDs: []string{"11", "12"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sell routes")
	assert.Empty(t, submitter.requests)
}

func TestRouterMarketRejectsLiquidityOps(t *testing.T) {
	market, submitter, done := newTestRouterMarket(t, &routerContractHandler{})
	defer done()

	_, err := market.Execute(context.Background(), &Task{
		Operation:  OperationDepositTokens,
		Sender:     "trader",
		Collection: "stars1c",
		PoolID:     1,
		Amount:     "1000",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
	assert.Empty(t, submitter.requests)
}
