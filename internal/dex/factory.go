package dex

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/chain"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

// MarketDeps carries the shared dependencies market adapters are built from.
type MarketDeps struct {
	Client         *chain.Client
	Submitter      chain.Submitter
	Resolver       AddressResolver
	PoolContract   string
	RouterContract string
	Denom          string
	Logger         *zap.Logger
	Metrics        *metrics.Collector
}

// GetMarketByName returns the adapter for a configured market name.
func GetMarketByName(name string, deps MarketDeps) (Market, error) {
	if deps.Client == nil {
		return nil, fmt.Errorf("chain client cannot be nil")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	switch strings.ToLower(name) {
	case "pool", "infinity":
		querier, err := NewPoolQuerier(deps.Client, deps.PoolContract)
		if err != nil {
			return nil, err
		}
		return NewPoolMarket(querier, deps.Submitter, deps.Denom, deps.Resolver, deps.Logger, deps.Metrics)
	case "router":
		querier, err := NewRouterQuerier(deps.Client, deps.RouterContract)
		if err != nil {
			return nil, err
		}
		return NewRouterMarket(querier, deps.Submitter, deps.Denom, deps.Logger, deps.Metrics)
	default:
		return nil, fmt.Errorf("unknown market %q", name)
	}
}
