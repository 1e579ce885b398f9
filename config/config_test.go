package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"yieldstacks/crypto"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8080" {
		t.Fatalf("unexpected rpc address: %s", cfg.RPCAddress)
	}
	if cfg.NetworkName != "yieldstacks-local" {
		t.Fatalf("unexpected network name: %s", cfg.NetworkName)
	}
	if cfg.OwnerAddress == "" {
		t.Fatalf("owner address not generated")
	}
	if _, err := cfg.Owner(); err != nil {
		t.Fatalf("generated owner address does not decode: %v", err)
	}
	if _, err := os.Stat(cfg.OwnerKeyPath); err != nil {
		t.Fatalf("owner key file missing: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not persisted: %v", err)
	}

	// A second load must reuse the same identity.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.OwnerAddress != cfg.OwnerAddress {
		t.Fatalf("owner identity changed across loads")
	}
}

func TestLoadParsesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	keyPath := filepath.Join(dir, "owner.key")
	if err := writeKeyFile(keyPath, key); err != nil {
		t.Fatalf("write key: %v", err)
	}
	owner := key.PubKey().Address().String()

	contents := fmt.Sprintf(`RPCAddress = ":9191"
MetricsAddress = ":9292"
DataDir = "/tmp/ys-test"
NetworkName = "yieldstacks-testnet"
OwnerKeyPath = %q
OwnerAddress = %q

[[GenesisAccounts]]
Address = %q
Amount = "1000000"
`, keyPath, owner, owner)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":9191" || cfg.NetworkName != "yieldstacks-testnet" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.GenesisAccounts) != 1 || cfg.GenesisAccounts[0].Amount != "1000000" {
		t.Fatalf("genesis accounts not parsed: %+v", cfg.GenesisAccounts)
	}
	parsed, err := cfg.Owner()
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if parsed.String() != owner {
		t.Fatalf("owner mismatch: %s != %s", parsed.String(), owner)
	}
}
