package staking

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LedgerSnapshot is a serializable view of the persisted state surface:
// every depositor record, the active list, and the global accrual counters.
// The reverse indices (item owner, item position, active position) are
// derivable from the records and are rebuilt on restore.
type LedgerSnapshot struct {
	Depositors        map[common.Address]*DepositorRecord
	Active            []common.Address
	RewardsPerHour    *big.Int
	MaxStakingRewards *big.Int
	AlreadyClaimed    *big.Int
	Paused            bool
}

// Snapshot captures a deep copy of the ledger suitable for persistence.
func (l *Ledger) Snapshot() *LedgerSnapshot {
	snap := &LedgerSnapshot{
		Depositors:        make(map[common.Address]*DepositorRecord, len(l.depositors)),
		Active:            append([]common.Address(nil), l.active...),
		RewardsPerHour:    new(big.Int).Set(l.rewardsPerHour),
		MaxStakingRewards: new(big.Int).Set(l.maxStakingRewards),
		AlreadyClaimed:    new(big.Int).Set(l.alreadyClaimed),
		Paused:            l.paused,
	}
	for addr, rec := range l.depositors {
		snap.Depositors[addr] = rec.Clone()
	}
	return snap
}

// LedgerFromSnapshot reconstructs a ledger, rebuilding the reverse indices
// from the depositor records. It fails when the snapshot is internally
// inconsistent (diverging parallel sequences or duplicate item ownership).
func LedgerFromSnapshot(snap *LedgerSnapshot) (*Ledger, error) {
	if snap == nil {
		return nil, fmt.Errorf("staking: nil snapshot")
	}
	l := NewLedger(Params{
		RewardsPerHour:    snap.RewardsPerHour,
		MaxStakingRewards: snap.MaxStakingRewards,
	})
	if snap.AlreadyClaimed != nil {
		l.alreadyClaimed.Set(snap.AlreadyClaimed)
	}
	l.paused = snap.Paused

	for addr, rec := range snap.Depositors {
		if rec == nil {
			continue
		}
		if len(rec.StakedItems) != len(rec.RewardRates) {
			return nil, fmt.Errorf("staking: depositor %s has %d items but %d rates",
				addr.Hex(), len(rec.StakedItems), len(rec.RewardRates))
		}
		l.depositors[addr] = rec.Clone()
		for pos, id := range rec.StakedItems {
			if prev, dup := l.itemOwner[id]; dup {
				return nil, fmt.Errorf("staking: item %d owned by both %s and %s",
					id, prev.Hex(), addr.Hex())
			}
			l.itemOwner[id] = addr
			l.itemIndex[id] = pos
		}
	}
	for _, addr := range snap.Active {
		rec := l.depositors[addr]
		if rec == nil || len(rec.StakedItems) == 0 {
			return nil, fmt.Errorf("staking: active depositor %s has no stake", addr.Hex())
		}
		l.markActive(addr)
	}
	return l, nil
}
