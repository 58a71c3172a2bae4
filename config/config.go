package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"stakevault/native/staking"
)

type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	VaultAddress   string `toml:"VaultAddress"`

	RewardsPerHour    int64 `toml:"RewardsPerHour"`
	MaxStakingRewards int64 `toml:"MaxStakingRewards"`

	ExplorerAddress string `toml:"ExplorerAddress"`
	ExplorerDSN     string `toml:"ExplorerDSN"`

	LogFile       string `toml:"LogFile"`
	LogMaxSizeMB  int    `toml:"LogMaxSizeMB"`
	LogMaxBackups int    `toml:"LogMaxBackups"`

	Environment  string `toml:"Environment"`
	OTLPEndpoint string `toml:"OTLPEndpoint"`
	OTLPInsecure bool   `toml:"OTLPInsecure"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./stakevault-data"
	}
	if cfg.RewardsPerHour == 0 {
		cfg.RewardsPerHour = staking.DefaultRewardsPerHour
	}
	if cfg.MaxStakingRewards == 0 {
		cfg.MaxStakingRewards = staking.DefaultMaxStakingRewards
	}
	if strings.TrimSpace(cfg.ExplorerDSN) == "" {
		cfg.ExplorerDSN = filepath.Join(cfg.DataDir, "explorer.db")
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:        ":8080",
		MetricsAddress:    ":9090",
		DataDir:           "./stakevault-data",
		RewardsPerHour:    staking.DefaultRewardsPerHour,
		MaxStakingRewards: staking.DefaultMaxStakingRewards,
	}
	applyDefaults(cfg)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
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
