package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWalletsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeWalletsFile(t, `
wallets:
  - name: trader
    address: stars1xyzabc
  - name: treasury
    address: stars1treasury
  - name: ""
    address: stars1skipped
`)

	r, err := LoadRegistry(path, "stars")
	require.NoError(t, err)

	addr, err := r.Address("trader")
	require.NoError(t, err)
	assert.Equal(t, "stars1xyzabc", addr)

	_, err = r.Address("ghost")
	assert.Error(t, err)

	assert.ElementsMatch(t, []string{"trader", "treasury"}, r.Names())
}

func TestLoadRegistryWrongPrefix(t *testing.T) {
	path := writeWalletsFile(t, `
wallets:
  - name: trader
    address: cosmos1xyzabc
`)
	_, err := LoadRegistry(path, "stars")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix")
}

func TestLoadRegistryDuplicateName(t *testing.T) {
	path := writeWalletsFile(t, `
wallets:
  - name: trader
    address: stars1a
  - name: trader
    address: stars1b
`)
	_, err := LoadRegistry(path, "stars")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadRegistryEmpty(t *testing.T) {
	path := writeWalletsFile(t, "wallets: []\n")
	_, err := LoadRegistry(path, "stars")
	assert.Error(t, err)
}
