package staking

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/core/events"
	"stakevault/core/types"
)

// CollectibleCustody abstracts the external collectible asset. Both calls are
// all-or-nothing: any failure aborts the enclosing ledger operation.
type CollectibleCustody interface {
	OwnerOf(id uint64) (common.Address, error)
	TransferFrom(from, to common.Address, id uint64) error
}

// RewardAsset abstracts the fungible reward token. Transfer either moves the
// full amount or fails; a soft "false return" style failure must surface as
// an error.
type RewardAsset interface {
	Transfer(to common.Address, amount *big.Int) error
}

type stakingEvent struct {
	evt *types.Event
}

func (e stakingEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e stakingEvent) Event() *types.Event { return e.evt }

// Engine wires the staking ledger accounting with the external asset
// collaborators. All mutating entry points run under an operation-in-progress
// guard so a custody or reward transfer callback cannot re-enter and observe
// half-updated state.
type Engine struct {
	ledger      *Ledger
	custody     CollectibleCustody
	rewardAsset RewardAsset
	vault       common.Address
	emitter     events.Emitter
	commitFn    func() error
	nowFn       func() int64
	inProgress  bool
}

// NewEngine creates an engine bound to the provided ledger with a no-op
// emitter. Collaborators are configured via the Set* methods.
func NewEngine(ledger *Ledger) *Engine {
	return &Engine{
		ledger:  ledger,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetCustody configures the collectible custody collaborator.
func (e *Engine) SetCustody(c CollectibleCustody) { e.custody = c }

// SetRewardAsset configures the fungible reward collaborator.
func (e *Engine) SetRewardAsset(a RewardAsset) { e.rewardAsset = a }

// SetVault configures the custody address that holds staked items.
func (e *Engine) SetVault(addr common.Address) { e.vault = addr }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetCommitFunc installs the durability hook. After every ledger mutation the
// engine invokes it before reporting success; a commit failure rolls the
// in-memory ledger back and compensates any custody moves, so callers never
// observe state that did not reach the store.
func (e *Engine) SetCommitFunc(commit func() error) { e.commitFn = commit }

// SetNowFunc overrides the time source. Primarily intended for tests to
// provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Ledger exposes the underlying ledger for persistence snapshots.
func (e *Engine) Ledger() *Ledger { return e.ledger }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(stakingEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) begin() error {
	if e.inProgress {
		return ErrReentrantCall
	}
	e.inProgress = true
	return nil
}

func (e *Engine) end() { e.inProgress = false }

func (e *Engine) commit() error {
	if e.commitFn == nil {
		return nil
	}
	return e.commitFn()
}

func (e *Engine) checkConfigured() error {
	if e == nil || e.ledger == nil || e.custody == nil || e.rewardAsset == nil {
		return ErrNotConfigured
	}
	return nil
}

// liveAccrual computes the reward earned by rec between its last update and
// now. Floor division happens per item, never on the aggregate.
func liveAccrual(rec *DepositorRecord, now int64) *big.Int {
	accrued := big.NewInt(0)
	if rec == nil || now <= rec.TimeOfLastUpdate {
		return accrued
	}
	elapsed := big.NewInt(now - rec.TimeOfLastUpdate)
	hour := big.NewInt(SecondsPerHour)
	for _, rate := range rec.RewardRates {
		if rate == nil || rate.Sign() == 0 {
			continue
		}
		item := new(big.Int).Mul(elapsed, rate)
		item.Quo(item, hour)
		accrued.Add(accrued, item)
	}
	return accrued
}

// settle folds the live accrual into UnclaimedRewards and advances the
// depositor's timestamp. Calling it twice at the same instant adds zero.
func settle(rec *DepositorRecord, now int64) {
	if rec == nil {
		return
	}
	accrued := liveAccrual(rec, now)
	if rec.UnclaimedRewards == nil {
		rec.UnclaimedRewards = big.NewInt(0)
	}
	rec.UnclaimedRewards.Add(rec.UnclaimedRewards, accrued)
	if now > rec.TimeOfLastUpdate {
		rec.TimeOfLastUpdate = now
	}
}

// TotalStakedRewards recomputes the program-wide reward total from scratch:
// everything already paid out plus every active depositor's settled and live
// accrual. Cost is linear in the active depositor count.
func (e *Engine) TotalStakedRewards() *big.Int {
	return e.totalStakedRewardsAt(e.now())
}

func (e *Engine) totalStakedRewardsAt(now int64) *big.Int {
	total := new(big.Int).Set(e.ledger.alreadyClaimed)
	for _, addr := range e.ledger.active {
		rec := e.ledger.depositors[addr]
		if rec == nil {
			continue
		}
		if rec.UnclaimedRewards != nil {
			total.Add(total, rec.UnclaimedRewards)
		}
		total.Add(total, liveAccrual(rec, now))
	}
	return total
}

// totalActiveRateSum sums the locked-in rates across every active depositor.
func (e *Engine) totalActiveRateSum() *big.Int {
	sum := big.NewInt(0)
	for _, addr := range e.ledger.active {
		sum.Add(sum, e.ledger.depositors[addr].rateSum())
	}
	return sum
}

// proRate reduces reward by the claimant's share of the cap overflow. Heavier
// current stakers absorb proportionally more of the throttle because the
// share is weighted by locked-in rate sums, not unclaimed balances. The
// result never goes below zero.
func (e *Engine) proRate(reward *big.Int, rec *DepositorRecord, now int64) (*big.Int, *big.Int) {
	total := e.totalStakedRewardsAt(now)
	cap := e.ledger.maxStakingRewards
	if cap.Sign() <= 0 || total.Cmp(cap) < 0 {
		return new(big.Int).Set(reward), big.NewInt(0)
	}
	rateSum := rec.rateSum()
	totalRates := e.totalActiveRateSum()
	if totalRates.Sign() == 0 {
		return new(big.Int).Set(reward), big.NewInt(0)
	}
	excess := new(big.Int).Sub(total, cap)
	penalty := new(big.Int).Mul(excess, rateSum)
	penalty.Quo(penalty, totalRates)
	reduced := new(big.Int).Sub(reward, penalty)
	if reduced.Sign() < 0 {
		reduced.SetInt64(0)
	}
	forfeited := new(big.Int).Sub(reward, reduced)
	return reduced, forfeited
}

// Stake takes custody of the supplied items and locks in a reward rate for
// each. The whole batch succeeds or the ledger and custody are left exactly
// as they were.
func (e *Engine) Stake(caller common.Address, itemIDs []uint64) ([]*big.Int, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, err
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if len(itemIDs) == 0 {
		return nil, ErrNoItems
	}
	if e.ledger.paused {
		return nil, ErrDepositsPaused
	}
	now := e.now()
	if e.totalStakedRewardsAt(now).Cmp(e.ledger.maxStakingRewards) >= 0 {
		return nil, ErrCapReached
	}
	for _, id := range itemIDs {
		owner, err := e.custody.OwnerOf(id)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrNotItemOwner, id, err)
		}
		if owner != caller {
			return nil, fmt.Errorf("%w: item %d", ErrNotItemOwner, id)
		}
	}

	// Custody moves happen before any ledger mutation so a mid-batch
	// failure only needs the already-moved items returned.
	for i, id := range itemIDs {
		if err := e.custody.TransferFrom(caller, e.vault, id); err != nil {
			for j := 0; j < i; j++ {
				_ = e.custody.TransferFrom(e.vault, caller, itemIDs[j])
			}
			return nil, fmt.Errorf("staking: custody transfer of item %d failed: %w", id, err)
		}
	}

	backup := e.ledger.Clone()
	rec := e.ledger.ensureRecord(caller, now)
	if len(rec.StakedItems) > 0 {
		settle(rec, now)
	} else {
		rec.TimeOfLastUpdate = now
		e.ledger.markActive(caller)
	}

	rates := make([]*big.Int, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, staked := e.ledger.itemOwner[id]; staked {
			e.ledger = backup
			for _, moved := range itemIDs {
				_ = e.custody.TransferFrom(e.vault, caller, moved)
			}
			return nil, fmt.Errorf("staking: item %d already staked", id)
		}
		rate := RateForTotal(e.totalStakedRewardsAt(now), e.ledger.rewardsPerHour, e.ledger.maxStakingRewards)
		e.ledger.appendItem(caller, id, rate)
		// Copies, not the stored pointers, so callers cannot mutate the
		// locked-in rates.
		rates = append(rates, new(big.Int).Set(rate))
	}
	if err := e.commit(); err != nil {
		e.ledger = backup
		for _, moved := range itemIDs {
			_ = e.custody.TransferFrom(e.vault, caller, moved)
		}
		return nil, fmt.Errorf("staking: commit failed: %w", err)
	}

	e.emit(events.ItemsStaked{Depositor: caller, ItemIDs: itemIDs, Rates: rates}.Event())
	return rates, nil
}

// Withdraw releases custody of the supplied items back to the caller. Every
// id must currently be staked by the caller; any violation aborts the call.
func (e *Engine) Withdraw(caller common.Address, itemIDs []uint64) error {
	if err := e.checkConfigured(); err != nil {
		return err
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if len(itemIDs) == 0 {
		return ErrNoItems
	}
	rec := e.ledger.Record(caller)
	if rec == nil || len(rec.StakedItems) == 0 {
		return ErrNoActiveStake
	}
	seen := make(map[uint64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		owner, ok := e.ledger.itemOwner[id]
		if !ok || owner != caller {
			return fmt.Errorf("%w: item %d", ErrItemNotStaked, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate item %d", ErrItemNotStaked, id)
		}
		seen[id] = struct{}{}
	}

	backup := e.ledger.Clone()
	settle(rec, e.now())
	for _, id := range itemIDs {
		e.ledger.removeItem(caller, id)
	}
	e.ledger.retireIfEmpty(caller)
	if err := e.commit(); err != nil {
		e.ledger = backup
		return fmt.Errorf("staking: commit failed: %w", err)
	}

	for i, id := range itemIDs {
		if err := e.custody.TransferFrom(e.vault, caller, id); err != nil {
			for j := 0; j < i; j++ {
				_ = e.custody.TransferFrom(caller, e.vault, itemIDs[j])
			}
			e.ledger = backup
			_ = e.commit()
			return fmt.Errorf("staking: custody return of item %d failed: %w", id, err)
		}
	}

	remaining := len(e.ledger.depositors[caller].StakedItems)
	e.emit(events.ItemsWithdrawn{Depositor: caller, ItemIDs: itemIDs, Remaining: remaining}.Event())
	return nil
}

// ClaimRewards settles and pays out the caller's available rewards. When the
// cap pro-ration throttles the payout, the unpaid remainder is forfeited:
// UnclaimedRewards resets to zero regardless of the amount actually paid.
func (e *Engine) ClaimRewards(caller common.Address) (*big.Int, error) {
	if err := e.checkConfigured(); err != nil {
		return nil, err
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	rec := e.ledger.Record(caller)
	if rec == nil {
		return nil, ErrNothingToClaim
	}
	now := e.now()

	backup := e.ledger.Clone()
	settle(rec, now)
	accrued := new(big.Int).Set(rec.UnclaimedRewards)
	paid, forfeited := e.proRate(accrued, rec, now)
	if paid.Sign() == 0 {
		e.ledger = backup
		return nil, ErrNothingToClaim
	}
	rec.UnclaimedRewards.SetInt64(0)
	rec.TimeOfLastUpdate = now
	e.ledger.alreadyClaimed.Add(e.ledger.alreadyClaimed, paid)

	// The claim is made durable before the payout so a commit failure aborts
	// with nothing transferred, and a transfer failure only has to restore
	// and re-commit the prior state.
	if err := e.commit(); err != nil {
		e.ledger = backup
		return nil, fmt.Errorf("staking: commit failed: %w", err)
	}
	if err := e.rewardAsset.Transfer(caller, paid); err != nil {
		e.ledger = backup
		_ = e.commit()
		return nil, fmt.Errorf("staking: reward transfer failed: %w", err)
	}

	if forfeited.Sign() > 0 {
		e.emit(events.RewardsCapHit{
			Depositor: caller,
			Total:     e.totalStakedRewardsAt(now),
			Cap:       e.ledger.MaxStakingRewards(),
			Forfeited: forfeited,
		}.Event())
	}
	e.emit(events.RewardsClaimed{Depositor: caller, Accrued: accrued, Paid: paid}.Event())
	return paid, nil
}

// UserStakeInfo reports the staked item ids and the rewards currently
// available to addr, including cap pro-ration. It never mutates state.
func (e *Engine) UserStakeInfo(addr common.Address) ([]uint64, *big.Int) {
	rec := e.ledger.Record(addr)
	if rec == nil {
		return nil, big.NewInt(0)
	}
	now := e.now()
	available := big.NewInt(0)
	if rec.UnclaimedRewards != nil {
		available.Set(rec.UnclaimedRewards)
	}
	available.Add(available, liveAccrual(rec, now))
	available, _ = e.proRate(available, rec, now)
	return append([]uint64(nil), rec.StakedItems...), available
}

// SetRewardsPerHour installs a new base rate after forcing a settlement for
// every active depositor, so time already accrued keeps the old schedule.
// Cost is linear in the active depositor count with no partial application.
func (e *Engine) SetRewardsPerHour(rate *big.Int) error {
	if e == nil || e.ledger == nil {
		return ErrNotConfigured
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	if rate == nil || rate.Sign() < 0 {
		return ErrInvalidRate
	}
	now := e.now()
	backup := e.ledger.Clone()
	for _, addr := range e.ledger.active {
		settle(e.ledger.depositors[addr], now)
	}
	old := e.ledger.RewardsPerHour()
	e.ledger.rewardsPerHour.Set(rate)
	if err := e.commit(); err != nil {
		e.ledger = backup
		return fmt.Errorf("staking: commit failed: %w", err)
	}

	e.emit(events.RewardRateUpdated{
		OldRate: old,
		NewRate: new(big.Int).Set(rate),
		Settled: len(e.ledger.active),
	}.Event())
	return nil
}

// Pause closes the deposit gate. Withdrawals and claims stay available so
// depositors can always exit and collect dues.
func (e *Engine) Pause() error {
	if e == nil || e.ledger == nil {
		return ErrNotConfigured
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()
	if !e.ledger.paused {
		e.ledger.paused = true
		if err := e.commit(); err != nil {
			e.ledger.paused = false
			return fmt.Errorf("staking: commit failed: %w", err)
		}
		e.emit(events.DepositsPaused{}.Event())
	}
	return nil
}

// Unpause reopens the deposit gate.
func (e *Engine) Unpause() error {
	if e == nil || e.ledger == nil {
		return ErrNotConfigured
	}
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()
	if e.ledger.paused {
		e.ledger.paused = false
		if err := e.commit(); err != nil {
			e.ledger.paused = true
			return fmt.Errorf("staking: commit failed: %w", err)
		}
		e.emit(events.DepositsResumed{}.Event())
	}
	return nil
}
