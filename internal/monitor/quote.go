// Package monitor polls pool quotes for configured collections, throttles
// the resulting stream, keeps a bounded history with a CSV log, and raises
// threshold alerts.
package monitor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmansurov/infinity-bot/internal/infinity"
	"github.com/rmansurov/infinity-bot/internal/infinity/pool"
)

// Side discriminates the two quote books of a collection.
type Side string

const (
	SideBuy  Side = "buy"  // price to buy an NFT from a pool
	SideSell Side = "sell" // proceeds for selling an NFT into a pool
)

// QuoteUpdate is one observation of a collection's best quotes on one side.
type QuoteUpdate struct {
	Collection string
	Side       Side
	Best       pool.PoolQuote
	Depth      int // number of quoting pools observed
	Timestamp  time.Time
}

// BestPrice returns the best quoted price as a decimal.
func (u *QuoteUpdate) BestPrice() (decimal.Decimal, error) {
	return u.Best.QuotePrice.Decimal()
}

// CSVHeaders returns the column layout of the quote log.
func CSVHeaders() []string {
	return []string{"timestamp", "collection", "side", "pool_id", "quote_price", "depth"}
}

// ToCSV renders the update as one quote log record.
func (u *QuoteUpdate) ToCSV() []string {
	return []string{
		u.Timestamp.UTC().Format(time.RFC3339Nano),
		u.Collection,
		string(u.Side),
		fmt.Sprintf("%d", u.Best.ID),
		string(u.Best.QuotePrice),
		fmt.Sprintf("%d", u.Depth),
	}
}

// priceFloat converts a quote price for gauges; 0 on malformed input.
func priceFloat(v infinity.Uint128) float64 {
	d, err := v.Decimal()
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
