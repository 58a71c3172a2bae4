package config

import (
	"os"
	"path/filepath"
	"testing"

	"stakevault/native/staking"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":8080" {
		t.Fatalf("default rpc address: got %q", cfg.RPCAddress)
	}
	if cfg.RewardsPerHour != staking.DefaultRewardsPerHour {
		t.Fatalf("default rate: got %d", cfg.RewardsPerHour)
	}
	if cfg.MaxStakingRewards != staking.DefaultMaxStakingRewards {
		t.Fatalf("default cap: got %d", cfg.MaxStakingRewards)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "RPCAddress = \":9999\"\nRewardsPerHour = 42\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != ":9999" {
		t.Fatalf("rpc address: got %q", cfg.RPCAddress)
	}
	if cfg.RewardsPerHour != 42 {
		t.Fatalf("rate: got %d", cfg.RewardsPerHour)
	}
	if cfg.MaxStakingRewards != staking.DefaultMaxStakingRewards {
		t.Fatalf("cap default missing: got %d", cfg.MaxStakingRewards)
	}
	if cfg.ExplorerDSN == "" {
		t.Fatal("explorer dsn default missing")
	}
}

func TestLoadRejectsBadVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("VaultAddress = \"not-an-address\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected malformed vault address to fail validation")
	}
}

func TestLoadRejectsNegativeRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("RewardsPerHour = -5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected negative rate to fail validation")
	}
}
