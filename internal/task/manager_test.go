package task

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rmansurov/infinity-bot/internal/dex"
)

func writeTasksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTasks(t *testing.T) {
	path := writeTasksFile(t, `
tasks:
  - task_name: buy-floor
    module: pool
    wallet: trader
    operation: buy_any
    collection: stars1collection
    quantity: 2
    slippage_bps: 150
    robust: true
    deadline_ttl: 90s
  - task_name: exit
    module: router
    wallet: trader
    operation: sell
    collection: stars1collection
    nft_token_ids: ["11", "12"]
    amount: "1500000"
`)

	m := NewManager(zaptest.NewLogger(t))
	tasks, err := m.LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	buy := tasks[0]
	assert.Equal(t, "buy-floor", buy.TaskName)
	assert.Equal(t, dex.OperationBuyAny, buy.Operation)
	assert.Equal(t, 2, buy.Quantity)
	assert.Equal(t, uint64(150), buy.SlippageBps)
	assert.Equal(t, 90*time.Second, buy.DeadlineTTL)
	assert.True(t, buy.Robust)

	sell := tasks[1]
	assert.Equal(t, "router", sell.Module)
	assert.Equal(t, []string{"11", "12"}, sell.NftTokenIDs)
	assert.Equal(t, "1500000", sell.Amount)
}

func TestLoadTasksSkipsInvalid(t *testing.T) {
	path := writeTasksFile(t, `
tasks:
  - task_name: bad-op
    module: pool
    wallet: trader
    operation: arbitrage
    collection: stars1collection
  - task_name: bad-amount
    module: pool
    wallet: trader
    operation: sell
    collection: stars1collection
    amount: "12.5"
  - task_name: good
    module: pool
    wallet: trader
    operation: deposit_tokens
    collection: stars1collection
    pool_id: 3
    amount: "1000000"
`)

	m := NewManager(zaptest.NewLogger(t))
	tasks, err := m.LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "good", tasks[0].TaskName)
}

func TestLoadTasksAllInvalid(t *testing.T) {
	path := writeTasksFile(t, `
tasks:
  - task_name: ""
    module: pool
    wallet: trader
    operation: sell
    collection: stars1collection
`)

	m := NewManager(zaptest.NewLogger(t))
	_, err := m.LoadTasks(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid tasks")
}

func TestLoadTasksMissingFile(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	_, err := m.LoadTasks(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestTaskToMarketTask(t *testing.T) {
	task := &Task{
		TaskName:    "t",
		Module:      "pool",
		WalletName:  "trader",
		Operation:   dex.OperationBuySpecific,
		Collection:  "stars1c",
		PoolID:      4,
		NftTokenIDs: []string{"9"},
		Amount:      "2000000",
		SlippageBps: 50,
		Finder:      "stars1finder",
	}
	require.NoError(t, task.Validate())

	mt := task.ToMarketTask()
	assert.Equal(t, dex.OperationBuySpecific, mt.Operation)
	assert.Equal(t, "trader", mt.Sender)
	assert.Equal(t, uint64(4), mt.PoolID)
	assert.Equal(t, "2000000", string(mt.Amount))
	assert.Equal(t, "stars1finder", mt.Finder)
}
