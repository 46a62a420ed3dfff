package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSubmitter(t *testing.T, output []byte, runErr error) (*DaemonSubmitter, *[][]string) {
	t.Helper()
	s, err := NewDaemonSubmitter(DaemonSubmitterConfig{
		Binary:  "starsd",
		ChainID: "stargaze-1",
		Node:    "https://rpc.example.com:443",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var calls [][]string
	s.runCommand = func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		return output, runErr
	}
	return s, &calls
}

func TestDaemonSubmitterArgs(t *testing.T) {
	s, calls := newTestSubmitter(t, []byte(`{"txhash": "ABC123", "code": 0, "height": "42", "raw_log": ""}`), nil)

	msg := json.RawMessage(`{"deposit_tokens":{"pool_id":1}}`)
	receipt, err := s.Submit(context.Background(), &ExecuteRequest{
		Sender:   "trader",
		Contract: "stars1contract",
		Msg:      msg,
		Funds:    []Coin{{Denom: "ustars", Amount: "1000000"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", receipt.TxHash)
	assert.Equal(t, int64(42), receipt.Height)

	require.Len(t, *calls, 1)
	args := (*calls)[0]
	assert.Equal(t, "starsd", args[0])
	assert.Contains(t, args, "stars1contract")
	assert.Contains(t, args, string(msg))
	assert.Contains(t, args, "--from")
	assert.Contains(t, args, "trader")
	assert.Contains(t, args, "--amount")
	assert.Contains(t, args, "1000000ustars")
	assert.Contains(t, args, "--yes")
}

func TestDaemonSubmitterRejectedTx(t *testing.T) {
	s, _ := newTestSubmitter(t, []byte(`{"txhash": "DEF", "code": 5, "raw_log": "insufficient funds"}`), nil)

	_, err := s.Submit(context.Background(), &ExecuteRequest{
		Sender:   "trader",
		Contract: "stars1contract",
		Msg:      json.RawMessage(`{}`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestDaemonSubmitterCommandFailure(t *testing.T) {
	s, _ := newTestSubmitter(t, nil, fmt.Errorf("exit status 1: key not found"))

	_, err := s.Submit(context.Background(), &ExecuteRequest{
		Sender:   "missing",
		Contract: "stars1contract",
		Msg:      json.RawMessage(`{}`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not found")
}

func TestDaemonSubmitterValidation(t *testing.T) {
	_, err := NewDaemonSubmitter(DaemonSubmitterConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)

	s, _ := newTestSubmitter(t, nil, nil)
	_, err = s.Submit(context.Background(), &ExecuteRequest{Sender: "a", Contract: ""})
	assert.Error(t, err)
	_, err = s.Submit(context.Background(), &ExecuteRequest{Sender: "", Contract: "c", Msg: json.RawMessage(`{}`)})
	assert.Error(t, err)
}
