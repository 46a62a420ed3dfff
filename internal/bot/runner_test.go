package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rmansurov/infinity-bot/internal/config"
)

func TestBuildAlertManager(t *testing.T) {
	r := &Runner{
		cfg: &config.Config{
			Alerts: []config.AlertConfig{
				{
					Collection: "stars1c",
					BuyBelow:   "900000",
					SellAbove:  "1200000",
					MinDepth:   2,
					StaleAfter: "2m",
				},
			},
		},
		logger: zaptest.NewLogger(t),
	}

	manager, err := r.buildAlertManager()
	require.NoError(t, err)
	require.NotNil(t, manager)
}

func TestBuildAlertManagerDisabled(t *testing.T) {
	r := &Runner{cfg: &config.Config{}, logger: zaptest.NewLogger(t)}

	manager, err := r.buildAlertManager()
	require.NoError(t, err)
	assert.Nil(t, manager)
}

func TestBuildAlertManagerRejectsBadConfig(t *testing.T) {
	logger := zaptest.NewLogger(t)

	r := &Runner{cfg: &config.Config{
		Alerts: []config.AlertConfig{{BuyBelow: "100"}},
	}, logger: logger}
	_, err := r.buildAlertManager()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")

	r = &Runner{cfg: &config.Config{
		Alerts: []config.AlertConfig{{Collection: "stars1c", BuyBelow: "not-a-price"}},
	}, logger: logger}
	_, err = r.buildAlertManager()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buy_below")

	r = &Runner{cfg: &config.Config{
		Alerts: []config.AlertConfig{{Collection: "stars1c", StaleAfter: "soon"}},
	}, logger: logger}
	_, err = r.buildAlertManager()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale_after")
}

func TestBuildAlertManagerWithWebhook(t *testing.T) {
	r := &Runner{cfg: &config.Config{
		Alerts:     []config.AlertConfig{{Collection: "stars1c", StaleAfter: "90s"}},
		WebhookURL: "http://localhost:9999/hook",
	}, logger: zaptest.NewLogger(t)}

	manager, err := r.buildAlertManager()
	require.NoError(t, err)
	require.NotNil(t, manager)
}
