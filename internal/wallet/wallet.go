// Package wallet maps signing key names to their on-chain accounts. Private
// keys never enter the process; signing happens in the chain daemon keyring
// and the bot only needs each key's bech32 address.
package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Account is one named signing identity.
type Account struct {
	Name    string // key name in the daemon keyring
	Address string // bech32 account address
}

// Registry holds the configured accounts.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]Account
	prefix   string
}

// walletConfig is the structure of the wallets YAML file.
type walletConfig struct {
	Wallets []struct {
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
	} `yaml:"wallets"`
}

// LoadRegistry reads named accounts from a YAML file. Addresses must carry
// the chain's bech32 prefix, e.g. "stars".
func LoadRegistry(path, prefix string) (*Registry, error) {
	if prefix == "" {
		return nil, fmt.Errorf("bech32 prefix cannot be empty")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read wallets file: %w", err)
	}

	var config walletConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse wallets YAML: %w", err)
	}
	if len(config.Wallets) == 0 {
		return nil, fmt.Errorf("no wallets found in configuration")
	}

	r := &Registry{accounts: make(map[string]Account), prefix: prefix}
	for _, w := range config.Wallets {
		if w.Name == "" || w.Address == "" {
			continue
		}
		if !strings.HasPrefix(w.Address, prefix+"1") {
			return nil, fmt.Errorf("wallet %q address %q does not carry prefix %q", w.Name, w.Address, prefix)
		}
		if _, exists := r.accounts[w.Name]; exists {
			return nil, fmt.Errorf("duplicate wallet name %q", w.Name)
		}
		r.accounts[w.Name] = Account{Name: w.Name, Address: w.Address}
	}
	if len(r.accounts) == 0 {
		return nil, fmt.Errorf("no valid wallets loaded")
	}
	return r, nil
}

// Address resolves a key name to its bech32 address.
func (r *Registry) Address(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[name]
	if !ok {
		return "", fmt.Errorf("unknown wallet %q", name)
	}
	return account.Address, nil
}

// Names returns the configured key names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.accounts))
	for name := range r.accounts {
		names = append(names, name)
	}
	return names
}
