package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yieldstacks/crypto"

	"github.com/BurntSushi/toml"
)

// GenesisAllocation credits an account with an opening balance when the node
// bootstraps a fresh data directory.
type GenesisAllocation struct {
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}

type Config struct {
	RPCAddress      string              `toml:"RPCAddress"`
	MetricsAddress  string              `toml:"MetricsAddress"`
	DataDir         string              `toml:"DataDir"`
	NetworkName     string              `toml:"NetworkName"`
	OwnerKeyPath    string              `toml:"OwnerKeyPath"`
	OwnerAddress    string              `toml:"OwnerAddress"`
	GenesisAccounts []GenesisAllocation `toml:"GenesisAccounts"`
}

// Load loads the configuration from the given path, creating a default file
// (and an operator key) on first run.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := ensureOwnerKey(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "yieldstacks-local"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if cfg.GenesisAccounts == nil {
		cfg.GenesisAccounts = []GenesisAllocation{}
	}

	return cfg, nil
}

// Owner returns the configured owner principal.
func (c *Config) Owner() (crypto.Address, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(c.OwnerAddress))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("config: invalid OwnerAddress: %w", err)
	}
	return addr, nil
}

// ensureOwnerKey backfills a missing owner key or address. The key file holds
// the operator's secp256k1 key as hex and is only ever created, never
// overwritten.
func ensureOwnerKey(configPath string, cfg *Config) error {
	keyPath := cfg.OwnerKeyPath
	if keyPath == "" {
		keyPath = defaultKeyPath(configPath)
	}

	var key *crypto.PrivateKey
	if raw, err := os.ReadFile(keyPath); err == nil {
		decoded, decErr := hex.DecodeString(strings.TrimSpace(string(raw)))
		if decErr != nil {
			return fmt.Errorf("config: malformed owner key file %s: %w", keyPath, decErr)
		}
		key, err = crypto.PrivateKeyFromBytes(decoded)
		if err != nil {
			return err
		}
	} else if os.IsNotExist(err) {
		key, err = crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		if err := writeKeyFile(keyPath, key); err != nil {
			return err
		}
	} else {
		return err
	}

	changed := false
	if cfg.OwnerKeyPath != keyPath {
		cfg.OwnerKeyPath = keyPath
		changed = true
	}
	if strings.TrimSpace(cfg.OwnerAddress) == "" {
		cfg.OwnerAddress = key.PubKey().Address().String()
		changed = true
	}
	if changed {
		return persist(configPath, cfg)
	}
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	keyPath := defaultKeyPath(path)
	if err := writeKeyFile(keyPath, key); err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCAddress:      ":8080",
		MetricsAddress:  ":9090",
		DataDir:         "./yieldstacks-data",
		NetworkName:     "yieldstacks-local",
		OwnerKeyPath:    keyPath,
		OwnerAddress:    key.PubKey().Address().String(),
		GenesisAccounts: []GenesisAllocation{},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeKeyFile(path string, key *crypto.PrivateKey) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	encoded := hex.EncodeToString(key.Bytes())
	return os.WriteFile(path, []byte(encoded+"\n"), 0o600)
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeyPath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." || dir == "" {
		dir = ""
	}
	return filepath.Join(dir, "owner.key")
}
