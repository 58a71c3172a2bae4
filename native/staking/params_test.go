package staking

import (
	"math/big"
	"testing"
)

func TestRateForTotalTiers(t *testing.T) {
	base := big.NewInt(DefaultRewardsPerHour)
	cap := big.NewInt(DefaultMaxStakingRewards)

	cases := []struct {
		name  string
		total int64
		want  int64
	}{
		{"zero", 0, 100_000},
		{"below first threshold", 999_999, 100_000},
		{"exactly first threshold", 1_000_000, 50_000},
		{"between half and quarter", 1_799_999, 50_000},
		{"exactly quarter threshold", 1_800_000, 25_000},
		{"between quarter and eighth", 2_399_999, 25_000},
		{"exactly eighth threshold", 2_400_000, 12_500},
		{"just below cap", 2_999_999, 12_500},
		{"at cap", 3_000_000, 0},
		{"above cap", 3_500_000, 0},
	}
	for _, tc := range cases {
		got := RateForTotal(big.NewInt(tc.total), base, cap)
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("%s: got %s want %d", tc.name, got, tc.want)
		}
	}
}

func TestRateForTotalDegenerateInputs(t *testing.T) {
	if got := RateForTotal(nil, big.NewInt(4000), big.NewInt(100)); got.Cmp(big.NewInt(4000)) != 0 {
		t.Fatalf("nil total: got %s want 4000", got)
	}
	if got := RateForTotal(big.NewInt(50), nil, big.NewInt(100)); got.Sign() != 0 {
		t.Fatalf("nil base: got %s want 0", got)
	}
	if got := RateForTotal(big.NewInt(50), big.NewInt(0), big.NewInt(100)); got.Sign() != 0 {
		t.Fatalf("zero base: got %s want 0", got)
	}
	// Zero cap disables the cap short-circuit but not the tier thresholds.
	if got := RateForTotal(big.NewInt(TierHalfThreshold), big.NewInt(4000), big.NewInt(0)); got.Cmp(big.NewInt(2000)) != 0 {
		t.Fatalf("zero cap: got %s want 2000", got)
	}
}
