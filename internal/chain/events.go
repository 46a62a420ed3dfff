package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/metrics"
)

const (
	reconnectDelay = 5 * time.Second
	wsReadLimit    = 1 << 20
)

// EventAttribute is one key/value attribute of a wasm event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ContractEvent is a wasm event emitted by a watched contract.
type ContractEvent struct {
	Contract   string
	Type       string
	Attributes []EventAttribute
	TxHash     string
	Height     int64
}

// Attribute returns the value of the named attribute, or "" when absent.
func (e *ContractEvent) Attribute(key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Subscriber streams wasm events for one contract over the CometBFT
// websocket, reconnecting on failure.
type Subscriber struct {
	wsURL    string
	contract string
	events   chan ContractEvent
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// NewSubscriber builds a subscriber for one contract address.
func NewSubscriber(wsURL, contract string, bufferSize int, logger *zap.Logger, mc *metrics.Collector) (*Subscriber, error) {
	if wsURL == "" {
		return nil, fmt.Errorf("websocket URL cannot be empty")
	}
	if contract == "" {
		return nil, fmt.Errorf("contract address cannot be empty")
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Subscriber{
		wsURL:    wsURL,
		contract: contract,
		events:   make(chan ContractEvent, bufferSize),
		logger:   logger,
		metrics:  mc,
	}, nil
}

// Events returns the event stream. The channel closes when Run returns.
func (s *Subscriber) Events() <-chan ContractEvent {
	return s.events
}

// Run connects and listens until the context is cancelled, reconnecting on
// transport errors. Events that arrive while the consumer is behind are
// dropped rather than blocking the read loop.
func (s *Subscriber) Run(ctx context.Context) error {
	defer close(s.events)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.connectAndListen(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("event subscription dropped, reconnecting",
				zap.String("contract", s.contract),
				zap.Duration("delay", reconnectDelay),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// subscribeRequest is the CometBFT JSON-RPC subscribe call.
type subscribeRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	ID      int               `json:"id"`
	Params  map[string]string `json:"params"`
}

// txEventMessage is the part of the subscription payload the bot consumes.
type txEventMessage struct {
	Result struct {
		Data struct {
			Value struct {
				TxResult struct {
					Height string `json:"height"`
					Result struct {
						Events []struct {
							Type       string           `json:"type"`
							Attributes []EventAttribute `json:"attributes"`
						} `json:"events"`
					} `json:"result"`
				} `json:"TxResult"`
			} `json:"value"`
		} `json:"data"`
		Events map[string][]string `json:"events"`
	} `json:"result"`
}

func (s *Subscriber) connectAndListen(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	sub := subscribeRequest{
		JSONRPC: "2.0",
		Method:  "subscribe",
		ID:      1,
		Params: map[string]string{
			"query": fmt.Sprintf("tm.event='Tx' AND wasm._contract_address='%s'", s.contract),
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	s.metrics.SetWebsocketConnections(1)
	defer s.metrics.SetWebsocketConnections(0)
	s.logger.Info("subscribed to contract events",
		zap.String("contract", s.contract),
		zap.String("url", s.wsURL))

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		s.dispatch(raw)
	}
}

func (s *Subscriber) dispatch(raw []byte) {
	var msg txEventMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Debug("skipping unparseable event message", zap.Error(err))
		return
	}

	var height int64
	if h := msg.Result.Data.Value.TxResult.Height; h != "" {
		var err error
		if height, err = strconv.ParseInt(h, 10, 64); err != nil {
			s.logger.Warn("unparseable tx height in event message",
				zap.String("height", h),
				zap.Error(err))
		}
	}

	txHash := ""
	if hashes := msg.Result.Events["tx.hash"]; len(hashes) > 0 {
		txHash = hashes[0]
	}

	for _, ev := range msg.Result.Data.Value.TxResult.Result.Events {
		if ev.Type != "wasm" && ev.Type != "wasm-swap" {
			continue
		}
		event := ContractEvent{
			Contract:   s.contract,
			Type:       ev.Type,
			Attributes: ev.Attributes,
			TxHash:     txHash,
			Height:     height,
		}
		select {
		case s.events <- event:
		default:
			s.logger.Warn("event buffer full, dropping event",
				zap.String("type", ev.Type),
				zap.String("tx_hash", txHash))
		}
	}
}
