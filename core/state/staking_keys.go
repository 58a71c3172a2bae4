package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/native/staking"
)

// storedDepositor mirrors the deterministic RLP layout persisted per
// depositor. Timestamps are stored unsigned so the encoding stays canonical.
type storedDepositor struct {
	StakedItems      []uint64
	RewardRates      []*big.Int
	TimeOfLastUpdate uint64
	UnclaimedRewards *big.Int
}

func newStoredDepositor(rec *staking.DepositorRecord) *storedDepositor {
	if rec == nil {
		rec = &staking.DepositorRecord{}
	}
	ts := rec.TimeOfLastUpdate
	if ts < 0 {
		ts = 0
	}
	stored := &storedDepositor{
		StakedItems:      append([]uint64(nil), rec.StakedItems...),
		RewardRates:      make([]*big.Int, len(rec.RewardRates)),
		TimeOfLastUpdate: uint64(ts),
		UnclaimedRewards: big.NewInt(0),
	}
	for i, rate := range rec.RewardRates {
		if rate != nil {
			stored.RewardRates[i] = new(big.Int).Set(rate)
		} else {
			stored.RewardRates[i] = big.NewInt(0)
		}
	}
	if rec.UnclaimedRewards != nil {
		stored.UnclaimedRewards.Set(rec.UnclaimedRewards)
	}
	return stored
}

func (s *storedDepositor) toRecord() *staking.DepositorRecord {
	if s == nil {
		return &staking.DepositorRecord{UnclaimedRewards: big.NewInt(0)}
	}
	rec := &staking.DepositorRecord{
		StakedItems:      append([]uint64(nil), s.StakedItems...),
		RewardRates:      make([]*big.Int, len(s.RewardRates)),
		TimeOfLastUpdate: int64(s.TimeOfLastUpdate),
		UnclaimedRewards: big.NewInt(0),
	}
	for i, rate := range s.RewardRates {
		if rate != nil {
			rec.RewardRates[i] = new(big.Int).Set(rate)
		} else {
			rec.RewardRates[i] = big.NewInt(0)
		}
	}
	if s.UnclaimedRewards != nil {
		rec.UnclaimedRewards.Set(s.UnclaimedRewards)
	}
	return rec
}

// storedProgram mirrors the global accrual parameters and counters.
type storedProgram struct {
	RewardsPerHour    *big.Int
	MaxStakingRewards *big.Int
	AlreadyClaimed    *big.Int
	Paused            bool
}

// storedAddressList keeps address ordering stable across save/load cycles.
type storedAddressList struct {
	Addresses []common.Address
}
