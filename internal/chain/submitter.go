package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Coin is a (denom, amount) pair attached to an execute message.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

// ExecuteRequest is one contract execution to be signed and broadcast.
type ExecuteRequest struct {
	Sender   string
	Contract string
	Msg      json.RawMessage
	Funds    []Coin
}

// Receipt is the outcome of a broadcast transaction.
type Receipt struct {
	TxHash string
	Code   int
	Height int64
	RawLog string
}

// Submitter signs and broadcasts a contract execution. Key custody stays
// behind this interface; the bot itself never holds private keys.
type Submitter interface {
	Submit(ctx context.Context, req *ExecuteRequest) (*Receipt, error)
}

// DaemonSubmitterConfig configures the chain-daemon-backed submitter.
type DaemonSubmitterConfig struct {
	Binary         string // chain daemon binary, e.g. "starsd"
	ChainID        string
	Node           string // CometBFT RPC URL used for broadcast
	KeyringBackend string
	GasPrices      string
	GasAdjustment  float64
}

// DaemonSubmitter shells out to the chain daemon, whose keyring signs the
// transaction. The sender field of the request names the key.
type DaemonSubmitter struct {
	cfg    DaemonSubmitterConfig
	logger *zap.Logger

	// runCommand is swapped in tests.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewDaemonSubmitter validates the config and builds a submitter.
func NewDaemonSubmitter(cfg DaemonSubmitterConfig, logger *zap.Logger) (*DaemonSubmitter, error) {
	if cfg.Binary == "" {
		return nil, fmt.Errorf("submitter binary cannot be empty")
	}
	if cfg.ChainID == "" {
		return nil, fmt.Errorf("chain id cannot be empty")
	}
	if cfg.Node == "" {
		return nil, fmt.Errorf("node URL cannot be empty")
	}
	if cfg.KeyringBackend == "" {
		cfg.KeyringBackend = "os"
	}
	if cfg.GasAdjustment <= 0 {
		cfg.GasAdjustment = 1.5
	}
	return &DaemonSubmitter{
		cfg:    cfg,
		logger: logger,
		runCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			var stdout, stderr bytes.Buffer
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			if err := cmd.Run(); err != nil {
				return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
			}
			return stdout.Bytes(), nil
		},
	}, nil
}

// txResult is the daemon's broadcast output in JSON mode.
type txResult struct {
	TxHash string `json:"txhash"`
	Code   int    `json:"code"`
	Height string `json:"height"`
	RawLog string `json:"raw_log"`
}

// Submit signs and broadcasts the execute message through the daemon.
func (s *DaemonSubmitter) Submit(ctx context.Context, req *ExecuteRequest) (*Receipt, error) {
	if req.Contract == "" {
		return nil, fmt.Errorf("contract address cannot be empty")
	}
	if req.Sender == "" {
		return nil, fmt.Errorf("sender key cannot be empty")
	}
	if len(req.Msg) == 0 {
		return nil, fmt.Errorf("execute msg cannot be empty")
	}

	args := []string{
		"tx", "wasm", "execute", req.Contract, string(req.Msg),
		"--from", req.Sender,
		"--chain-id", s.cfg.ChainID,
		"--node", s.cfg.Node,
		"--keyring-backend", s.cfg.KeyringBackend,
		"--gas", "auto",
		"--gas-adjustment", strconv.FormatFloat(s.cfg.GasAdjustment, 'f', -1, 64),
		"--broadcast-mode", "sync",
		"--output", "json",
		"--yes",
	}
	if s.cfg.GasPrices != "" {
		args = append(args, "--gas-prices", s.cfg.GasPrices)
	}
	if len(req.Funds) > 0 {
		parts := make([]string, 0, len(req.Funds))
		for _, c := range req.Funds {
			parts = append(parts, c.String())
		}
		args = append(args, "--amount", strings.Join(parts, ","))
	}

	s.logger.Debug("submitting transaction",
		zap.String("contract", req.Contract),
		zap.String("sender", req.Sender))

	out, err := s.runCommand(ctx, s.cfg.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("broadcast via %s: %w", s.cfg.Binary, err)
	}

	var result txResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("decode broadcast result: %w", err)
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("transaction rejected (code %d): %s", result.Code, result.RawLog)
	}

	height, _ := strconv.ParseInt(result.Height, 10, 64)
	receipt := &Receipt{
		TxHash: result.TxHash,
		Code:   result.Code,
		Height: height,
		RawLog: result.RawLog,
	}

	s.logger.Info("transaction broadcast",
		zap.String("tx_hash", receipt.TxHash),
		zap.String("contract", req.Contract))
	return receipt, nil
}
