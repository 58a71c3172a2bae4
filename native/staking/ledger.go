package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DepositorRecord tracks one depositor's custody and reward position. The
// StakedItems and RewardRates sequences are parallel: RewardRates[i] is the
// per-hour rate locked in when StakedItems[i] entered custody.
type DepositorRecord struct {
	StakedItems      []uint64
	RewardRates      []*big.Int
	TimeOfLastUpdate int64
	UnclaimedRewards *big.Int
}

// Clone returns a deep copy of the record.
func (r *DepositorRecord) Clone() *DepositorRecord {
	if r == nil {
		return nil
	}
	out := &DepositorRecord{
		StakedItems:      append([]uint64(nil), r.StakedItems...),
		RewardRates:      make([]*big.Int, len(r.RewardRates)),
		TimeOfLastUpdate: r.TimeOfLastUpdate,
		UnclaimedRewards: big.NewInt(0),
	}
	for i, rate := range r.RewardRates {
		if rate != nil {
			out.RewardRates[i] = new(big.Int).Set(rate)
		} else {
			out.RewardRates[i] = big.NewInt(0)
		}
	}
	if r.UnclaimedRewards != nil {
		out.UnclaimedRewards.Set(r.UnclaimedRewards)
	}
	return out
}

// rateSum returns the sum of the locked-in rates across all staked items.
func (r *DepositorRecord) rateSum() *big.Int {
	sum := big.NewInt(0)
	if r == nil {
		return sum
	}
	for _, rate := range r.RewardRates {
		if rate != nil {
			sum.Add(sum, rate)
		}
	}
	return sum
}

// Ledger owns the full mutable state surface of the staking program: one
// record per depositor plus the global indices that make item and depositor
// removal O(1). Nothing here is safe for concurrent use; the node facade
// serializes access.
type Ledger struct {
	depositors map[common.Address]*DepositorRecord

	itemOwner map[uint64]common.Address
	itemIndex map[uint64]int

	active      []common.Address
	activeIndex map[common.Address]int

	rewardsPerHour    *big.Int
	maxStakingRewards *big.Int
	alreadyClaimed    *big.Int
	paused            bool
}

// NewLedger constructs an empty ledger with the provided parameters.
func NewLedger(params Params) *Ledger {
	rate := big.NewInt(0)
	if params.RewardsPerHour != nil {
		rate.Set(params.RewardsPerHour)
	}
	cap := big.NewInt(0)
	if params.MaxStakingRewards != nil {
		cap.Set(params.MaxStakingRewards)
	}
	return &Ledger{
		depositors:        make(map[common.Address]*DepositorRecord),
		itemOwner:         make(map[uint64]common.Address),
		itemIndex:         make(map[uint64]int),
		activeIndex:       make(map[common.Address]int),
		rewardsPerHour:    rate,
		maxStakingRewards: cap,
		alreadyClaimed:    big.NewInt(0),
	}
}

// Clone returns a deep copy of the ledger, used to discard intermediate state
// when an operation aborts.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		depositors:        make(map[common.Address]*DepositorRecord, len(l.depositors)),
		itemOwner:         make(map[uint64]common.Address, len(l.itemOwner)),
		itemIndex:         make(map[uint64]int, len(l.itemIndex)),
		active:            append([]common.Address(nil), l.active...),
		activeIndex:       make(map[common.Address]int, len(l.activeIndex)),
		rewardsPerHour:    new(big.Int).Set(l.rewardsPerHour),
		maxStakingRewards: new(big.Int).Set(l.maxStakingRewards),
		alreadyClaimed:    new(big.Int).Set(l.alreadyClaimed),
		paused:            l.paused,
	}
	for addr, rec := range l.depositors {
		out.depositors[addr] = rec.Clone()
	}
	for id, owner := range l.itemOwner {
		out.itemOwner[id] = owner
	}
	for id, idx := range l.itemIndex {
		out.itemIndex[id] = idx
	}
	for addr, idx := range l.activeIndex {
		out.activeIndex[addr] = idx
	}
	return out
}

// Record returns the depositor record for addr, or nil when the address has
// never staked.
func (l *Ledger) Record(addr common.Address) *DepositorRecord {
	return l.depositors[addr]
}

// ensureRecord returns the record for addr, creating an empty one at the
// provided timestamp on first contact.
func (l *Ledger) ensureRecord(addr common.Address, now int64) *DepositorRecord {
	rec, ok := l.depositors[addr]
	if !ok {
		rec = &DepositorRecord{
			TimeOfLastUpdate: now,
			UnclaimedRewards: big.NewInt(0),
		}
		l.depositors[addr] = rec
	}
	return rec
}

// markActive appends addr to the active depositor list if absent.
func (l *Ledger) markActive(addr common.Address) {
	if _, ok := l.activeIndex[addr]; ok {
		return
	}
	l.activeIndex[addr] = len(l.active)
	l.active = append(l.active, addr)
}

// appendItem records a newly staked item and its locked-in rate for addr.
// The caller must have ensured the record exists.
func (l *Ledger) appendItem(addr common.Address, id uint64, rate *big.Int) {
	rec := l.depositors[addr]
	rec.StakedItems = append(rec.StakedItems, id)
	rec.RewardRates = append(rec.RewardRates, rate)
	l.itemOwner[id] = addr
	l.itemIndex[id] = len(rec.StakedItems) - 1
}

// swapRemove removes index i from s by moving the final element into its
// place and shrinking the slice. The second return reports whether an element
// was relocated into position i (false when i was the last position).
func swapRemove[T any](s []T, i int) ([]T, bool) {
	last := len(s) - 1
	moved := i != last
	if moved {
		s[i] = s[last]
	}
	var zero T
	s[last] = zero
	return s[:last], moved
}

// removeItem drops a staked item from its owner's parallel sequences,
// repairing the moved element's recorded position.
func (l *Ledger) removeItem(addr common.Address, id uint64) {
	rec := l.depositors[addr]
	idx := l.itemIndex[id]

	var moved bool
	rec.StakedItems, moved = swapRemove(rec.StakedItems, idx)
	rec.RewardRates, _ = swapRemove(rec.RewardRates, idx)
	if moved {
		l.itemIndex[rec.StakedItems[idx]] = idx
	}
	delete(l.itemOwner, id)
	delete(l.itemIndex, id)
}

// retireIfEmpty removes addr from the active depositor list once its stake
// count reaches zero. The emptied record itself persists so residual
// unclaimed rewards stay claimable.
func (l *Ledger) retireIfEmpty(addr common.Address) {
	rec := l.depositors[addr]
	if rec == nil || len(rec.StakedItems) > 0 {
		return
	}
	idx, ok := l.activeIndex[addr]
	if !ok {
		return
	}
	var moved bool
	l.active, moved = swapRemove(l.active, idx)
	if moved {
		l.activeIndex[l.active[idx]] = idx
	}
	delete(l.activeIndex, addr)
}

// ActiveDepositors returns a copy of the active depositor list.
func (l *Ledger) ActiveDepositors() []common.Address {
	return append([]common.Address(nil), l.active...)
}

// ItemOwner reports the staking owner of an item, if it is in custody.
func (l *Ledger) ItemOwner(id uint64) (common.Address, bool) {
	owner, ok := l.itemOwner[id]
	return owner, ok
}

// RewardsPerHour returns the configured base rate.
func (l *Ledger) RewardsPerHour() *big.Int {
	return new(big.Int).Set(l.rewardsPerHour)
}

// MaxStakingRewards returns the program reward cap.
func (l *Ledger) MaxStakingRewards() *big.Int {
	return new(big.Int).Set(l.maxStakingRewards)
}

// AlreadyClaimedRewards returns the monotone paid-out counter.
func (l *Ledger) AlreadyClaimedRewards() *big.Int {
	return new(big.Int).Set(l.alreadyClaimed)
}

// Paused reports whether the deposit gate is closed.
func (l *Ledger) Paused() bool {
	return l.paused
}
