// Package config loads bot settings from a config file with environment
// overrides (INFINITY_BOT_ prefix, dots replaced by underscores).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	// Chain access
	LCDEndpoints []string `mapstructure:"lcd_endpoints"`
	WebsocketURL string   `mapstructure:"websocket_url"`
	ChainID      string   `mapstructure:"chain_id"`
	Bech32Prefix string   `mapstructure:"bech32_prefix"`
	Denom        string   `mapstructure:"denom"`

	// Contracts
	PoolContract   string `mapstructure:"pool_contract"`
	RouterContract string `mapstructure:"router_contract"`

	// Transaction submission
	SubmitBinary   string  `mapstructure:"submit_binary"`
	SubmitNode     string  `mapstructure:"submit_node"`
	KeyringBackend string  `mapstructure:"keyring_backend"`
	GasPrices      string  `mapstructure:"gas_prices"`
	GasAdjustment  float64 `mapstructure:"gas_adjustment"`

	// Files
	TasksFile   string `mapstructure:"tasks_file"`
	WalletsFile string `mapstructure:"wallets_file"`
	LogDir      string `mapstructure:"log_dir"`

	// Persistence; empty disables the database.
	PostgresURL string `mapstructure:"postgres_url"`

	// Logging and metrics
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	// Execution
	Workers int `mapstructure:"workers"`
	Retries int `mapstructure:"retries"`

	// Monitoring
	MonitorCollections []string      `mapstructure:"monitor_collections"`
	MonitorDelay       time.Duration `mapstructure:"-"`
	MonitorDelayMS     int           `mapstructure:"monitor_delay"`
	QuoteLimit         uint32        `mapstructure:"quote_limit"`
	EventBuffer        int           `mapstructure:"event_buffer"`

	// Alerts; empty list disables alerting.
	Alerts     []AlertConfig `mapstructure:"alerts"`
	WebhookURL string        `mapstructure:"webhook_url"`
}

// AlertConfig sets alert thresholds for one collection. Prices are base-denom
// amounts as decimal strings; zero values disable the trigger.
type AlertConfig struct {
	Collection string `mapstructure:"collection"`
	BuyBelow   string `mapstructure:"buy_below"`
	SellAbove  string `mapstructure:"sell_above"`
	MinDepth   int    `mapstructure:"min_depth"`
	StaleAfter string `mapstructure:"stale_after"` // duration, e.g. "2m"
}

// LoadConfig reads configuration from the given file and validates it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("INFINITY_BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("bech32_prefix", "stars")
	v.SetDefault("denom", "ustars")
	v.SetDefault("submit_binary", "starsd")
	v.SetDefault("keyring_backend", "os")
	v.SetDefault("gas_adjustment", 1.5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("monitor_delay", 5000)
	v.SetDefault("quote_limit", 10)
	v.SetDefault("event_buffer", 256)
	v.SetDefault("workers", 1)
	v.SetDefault("retries", 3)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.MonitorDelay = time.Duration(cfg.MonitorDelayMS) * time.Millisecond

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.LCDEndpoints) == 0 {
		return fmt.Errorf("lcd_endpoints must contain at least one endpoint")
	}
	if c.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}
	if c.PoolContract == "" {
		return fmt.Errorf("pool_contract is required")
	}
	if c.SubmitNode == "" && c.WebsocketURL == "" {
		return fmt.Errorf("submit_node or websocket_url is required")
	}
	if c.SubmitNode == "" {
		// Broadcast through the same RPC node events come from.
		c.SubmitNode = strings.Replace(strings.Replace(c.WebsocketURL, "ws://", "http://", 1), "wss://", "https://", 1)
		c.SubmitNode = strings.TrimSuffix(c.SubmitNode, "/websocket")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	return nil
}
