package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
lcd_endpoints:
  - https://rest.stargaze-apis.com
chain_id: stargaze-1
pool_contract: stars1pool
router_contract: stars1router
websocket_url: wss://rpc.stargaze-apis.com/websocket
monitor_collections:
  - stars1collection
monitor_delay: 2000
workers: 4
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "stargaze-1", cfg.ChainID)
	assert.Equal(t, "stars", cfg.Bech32Prefix)
	assert.Equal(t, "ustars", cfg.Denom)
	assert.Equal(t, "starsd", cfg.SubmitBinary)
	assert.Equal(t, 2*time.Second, cfg.MonitorDelay)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, uint32(10), cfg.QuoteLimit)
	// Broadcast node derived from the websocket URL.
	assert.Equal(t, "https://rpc.stargaze-apis.com", cfg.SubmitNode)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig(writeConfigFile(t, `
chain_id: stargaze-1
pool_contract: stars1pool
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lcd_endpoints")

	_, err = LoadConfig(writeConfigFile(t, `
lcd_endpoints: ["https://rest.example.com"]
pool_contract: stars1pool
websocket_url: wss://rpc.example.com/websocket
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain_id")

	_, err = LoadConfig(writeConfigFile(t, `
lcd_endpoints: ["https://rest.example.com"]
chain_id: stargaze-1
websocket_url: wss://rpc.example.com/websocket
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool_contract")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
