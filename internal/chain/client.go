// Package chain provides access to a CosmWasm chain over its LCD REST API
// and CometBFT websocket: smart queries against contracts, event
// subscriptions and transaction submission. Endpoints are pooled with
// failover; transient failures retry with exponential backoff.
package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/infinity"
	"github.com/rmansurov/infinity-bot/internal/metrics"
)

const defaultRequestTimeout = 10 * time.Second

// QueryError is an error response from the LCD, carrying the gRPC-style
// code. Codes in the contract range are permanent: retrying the same query
// cannot succeed.
type QueryError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed (http %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Client issues LCD requests across an endpoint pool.
type Client struct {
	pool       *EndpointPool
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Collector
	maxTries   uint
}

// NewClient builds a client over the given LCD base URLs.
func NewClient(urls []string, maxTries int, logger *zap.Logger, mc *metrics.Collector) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if mc == nil {
		return nil, fmt.Errorf("metrics collector cannot be nil")
	}
	pool, err := NewEndpointPool(urls, logger)
	if err != nil {
		return nil, err
	}
	if maxTries <= 0 {
		maxTries = 3
	}
	return &Client{
		pool:       pool,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger,
		metrics:    mc,
		maxTries:   uint(maxTries),
	}, nil
}

// smartDataEnvelope is the LCD response wrapper for smart queries.
type smartDataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// SmartQuery runs a contract smart query and decodes the data envelope into
// out. The query message must be one of the binding union types; its variant
// key labels the metrics.
func (c *Client) SmartQuery(ctx context.Context, contractAddr string, queryMsg interface{}, out interface{}) error {
	if contractAddr == "" {
		return fmt.Errorf("contract address cannot be empty")
	}
	payload, err := json.Marshal(queryMsg)
	if err != nil {
		return fmt.Errorf("marshal query msg: %w", err)
	}
	queryName, _, err := infinity.UnionKey(payload)
	if err != nil {
		queryName = "raw"
	}

	encoded := base64.StdEncoding.EncodeToString(payload)
	path := fmt.Sprintf("/cosmwasm/wasm/v1/contract/%s/smart/%s",
		url.PathEscape(contractAddr), url.PathEscape(encoded))

	start := time.Now()
	raw, err := c.getWithFailover(ctx, path)
	c.metrics.RecordQuery(queryName, time.Since(start), err == nil)
	if err != nil {
		return err
	}

	var envelope smartDataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode smart query envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", queryName, err)
	}
	return nil
}

// LatestHeight returns the current block height, used for health checks and
// deadline computation sanity.
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	raw, err := c.getWithFailover(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest")
	if err != nil {
		return 0, err
	}
	var resp struct {
		Block struct {
			Header struct {
				Height string `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("decode latest block: %w", err)
	}
	height, err := strconv.ParseInt(resp.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block height %q: %w", resp.Block.Header.Height, err)
	}
	return height, nil
}

// getWithFailover issues a GET against the pool, rotating endpoints on
// transport errors and retrying with exponential backoff. Contract-level
// rejections (4xx) do not retry.
func (c *Client) getWithFailover(ctx context.Context, path string) ([]byte, error) {
	operation := func() ([]byte, error) {
		endpoint, err := c.pool.Next()
		if err != nil {
			return nil, err
		}

		start := time.Now()
		body, err := c.get(ctx, endpoint.BaseURL+path)
		endpoint.UpdateMetrics(err == nil, time.Since(start))

		if err != nil {
			var qe *QueryError
			if isPermanent(err, &qe) {
				return nil, backoff.Permanent(err)
			}
			c.metrics.RecordEndpointError(endpoint.BaseURL)
			c.pool.MarkDown(endpoint)
			c.logger.Debug("LCD request failed, rotating endpoint",
				zap.String("endpoint", endpoint.BaseURL),
				zap.String("path", path),
				zap.Error(err))
			return nil, err
		}
		return body, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 200 * time.Millisecond

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		qe := &QueryError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, qe); err != nil || qe.Message == "" {
			qe.Message = string(body)
		}
		return nil, qe
	}
	return body, nil
}

// isPermanent reports whether the error is a contract-level rejection that
// must not retry, extracting the QueryError when so.
func isPermanent(err error, out **QueryError) bool {
	qe, ok := err.(*QueryError)
	if !ok {
		return false
	}
	*out = qe
	return qe.StatusCode >= 400 && qe.StatusCode < 500
}
