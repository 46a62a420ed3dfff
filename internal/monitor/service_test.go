package monitor

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
	"github.com/rmansurov/infinity-bot/internal/dex"
	"github.com/rmansurov/infinity-bot/internal/infinity/pool"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

func quoteServer(t *testing.T, buy, sell []pool.PoolQuote) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

		var msg pool.QueryMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var quotes []pool.PoolQuote
		switch {
		case msg.PoolQuotesBuy != nil:
			quotes = buy
		case msg.PoolQuotesSell != nil:
			quotes = sell
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": pool.PoolQuoteResponse{PoolQuotes: quotes},
		})
	}))
}

func TestServicePublishesBothSides(t *testing.T) {
	server := quoteServer(t,
		[]pool.PoolQuote{{ID: 1, Collection: "stars1c", QuotePrice: "1200000"}},
		[]pool.PoolQuote{{ID: 2, Collection: "stars1c", QuotePrice: "1000000"}},
	)
	defer server.Close()

	logger := zaptest.NewLogger(t)
	client, err := chain.NewClient([]string{server.URL}, 1, logger, metrics.NewCollector())
	require.NoError(t, err)
	querier, err := dex.NewPoolQuerier(client, "stars1pool")
	require.NoError(t, err)

	history, err := NewQuoteHistory(t.TempDir(), 16, logger)
	require.NoError(t, err)
	defer history.Close()

	svc, err := NewService(ServiceConfig{
		Collections:      []string{"stars1c"},
		Interval:         10 * time.Millisecond,
		ThrottleInterval: time.Nanosecond,
	}, querier, history, nil, logger, metrics.NewCollector())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	var got []QuoteUpdate
	deadline := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case u := <-svc.Updates():
			got = append(got, u)
		case <-deadline:
			t.Fatal("timed out waiting for quote updates")
		}
	}
	cancel()
	require.NoError(t, <-done)

	sides := map[Side]QuoteUpdate{}
	for _, u := range got {
		sides[u.Side] = u
	}
	require.Contains(t, sides, SideBuy)
	require.Contains(t, sides, SideSell)
	assert.Equal(t, uint64(1), sides[SideBuy].Best.ID)
	assert.Equal(t, "1000000", string(sides[SideSell].Best.QuotePrice))
	assert.GreaterOrEqual(t, history.Total(), 2)
}

func TestServiceValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	client, err := chain.NewClient([]string{"http://localhost:1317"}, 1, logger, metrics.NewCollector())
	require.NoError(t, err)
	querier, err := dex.NewPoolQuerier(client, "stars1pool")
	require.NoError(t, err)

	_, err = NewService(ServiceConfig{}, querier, nil, nil, logger, metrics.NewCollector())
	assert.Error(t, err, "no collections")

	_, err = NewService(ServiceConfig{Collections: []string{"stars1c"}}, nil, nil, nil, logger, metrics.NewCollector())
	assert.Error(t, err, "nil querier")
}
