package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWebhookNotifierPostsAlert(t *testing.T) {
	var (
		mu       sync.Mutex
		received Alert
		calls    int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, zaptest.NewLogger(t))
	require.NoError(t, err)

	alert := Alert{
		ID:         "buy_opportunity_1",
		Type:       AlertTypeBuyOpportunity,
		Collection: "stars1c",
		Message:    "best buy quote 900000 at or under 1000000",
		Severity:   "info",
		QuotePrice: "900000",
	}
	require.NoError(t, notifier.Notify(alert))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, alert.ID, received.ID)
	assert.Equal(t, alert.QuotePrice, received.QuotePrice)
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = notifier.Notify(Alert{Type: AlertTypeStaleQuotes})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestWebhookNotifierValidation(t *testing.T) {
	_, err := NewWebhookNotifier("", zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestAlertManagerDeliversThroughNotifier(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, zaptest.NewLogger(t))
	require.NoError(t, err)

	manager := NewAlertManager(map[string]AlertThresholds{
		"stars1c": {MinDepth: 5},
	}, time.Minute, 16, zaptest.NewLogger(t))
	manager.SetNotifier(notifier)

	fired := manager.Check(testUpdate("stars1c", SideBuy, 1, "1000000"))
	require.Len(t, fired, 1)

	// Delivery is asynchronous.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, 2*time.Second, 10*time.Millisecond)
}
