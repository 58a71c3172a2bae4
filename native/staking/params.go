package staking

import "math/big"

// SecondsPerHour is the divisor applied when converting elapsed seconds into
// per-hour reward units. Division happens per item so rounding loss stays
// bounded and reproducible.
const SecondsPerHour = 3600

// DefaultRewardsPerHour is the base accrual rate assigned to newly staked
// items while the program total stays below the first throttle threshold.
const DefaultRewardsPerHour = 100_000

// DefaultMaxStakingRewards caps the total rewards the program will ever pay
// out. Once the running total reaches the cap, payouts are pro-rated.
const DefaultMaxStakingRewards = 3_000_000

// Throttle thresholds for the rate tier schedule, in reward base units.
const (
	TierHalfThreshold    = 1_000_000
	TierQuarterThreshold = 1_800_000
	TierEighthThreshold  = 2_400_000
)

// Params bundles the configurable accrual knobs of the ledger.
type Params struct {
	RewardsPerHour    *big.Int
	MaxStakingRewards *big.Int
}

// DefaultParams returns the program defaults.
func DefaultParams() Params {
	return Params{
		RewardsPerHour:    big.NewInt(DefaultRewardsPerHour),
		MaxStakingRewards: big.NewInt(DefaultMaxStakingRewards),
	}
}

// RateForTotal evaluates the tier schedule for a newly staked item given the
// current total staked rewards and the configured base rate. The returned
// value is a fresh big.Int owned by the caller. Already locked-in rates are
// never re-evaluated; the schedule only governs future assignments.
func RateForTotal(total, base, cap *big.Int) *big.Int {
	if base == nil || base.Sign() <= 0 {
		return big.NewInt(0)
	}
	if total == nil {
		return new(big.Int).Set(base)
	}
	if cap != nil && cap.Sign() > 0 && total.Cmp(cap) >= 0 {
		return big.NewInt(0)
	}
	switch {
	case total.Cmp(big.NewInt(TierEighthThreshold)) >= 0:
		return new(big.Int).Quo(base, big.NewInt(8))
	case total.Cmp(big.NewInt(TierQuarterThreshold)) >= 0:
		return new(big.Int).Quo(base, big.NewInt(4))
	case total.Cmp(big.NewInt(TierHalfThreshold)) >= 0:
		return new(big.Int).Quo(base, big.NewInt(2))
	default:
		return new(big.Int).Set(base)
	}
}
