package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Validate rejects configurations that would put the ledger into an
// unrecoverable posture at boot.
func (c *Config) Validate() error {
	if c.RewardsPerHour < 0 {
		return fmt.Errorf("config: RewardsPerHour must not be negative, got %d", c.RewardsPerHour)
	}
	if c.MaxStakingRewards < 0 {
		return fmt.Errorf("config: MaxStakingRewards must not be negative, got %d", c.MaxStakingRewards)
	}
	if vault := strings.TrimSpace(c.VaultAddress); vault != "" && !common.IsHexAddress(vault) {
		return fmt.Errorf("config: VaultAddress %q is not a hex address", vault)
	}
	return nil
}

// Vault parses the configured vault address; the zero address when unset.
func (c *Config) Vault() common.Address {
	vault := strings.TrimSpace(c.VaultAddress)
	if vault == "" {
		return common.Address{}
	}
	return common.HexToAddress(vault)
}
