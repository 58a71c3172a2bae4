package events

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/core/types"
)

const (
	// TypeItemsStaked captures custody intake of collectible items.
	TypeItemsStaked = "stake.itemsStaked"
	// TypeItemsWithdrawn captures custody release of collectible items.
	TypeItemsWithdrawn = "stake.itemsWithdrawn"
	// TypeRewardsClaimed is emitted when accrued rewards are paid out.
	TypeRewardsClaimed = "stake.rewardsClaimed"
	// TypeRewardsCapHit signals that the program cap throttled a payout.
	TypeRewardsCapHit = "stake.rewardsCapHit"
	// TypeRewardRateUpdated is emitted after a base rate reconfiguration.
	TypeRewardRateUpdated = "stake.rateUpdated"
	// TypeDepositsPaused is emitted when new deposits are gated off.
	TypeDepositsPaused = "stake.depositsPaused"
	// TypeDepositsResumed is emitted when the deposit gate reopens.
	TypeDepositsResumed = "stake.depositsResumed"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatItems(ids []uint64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

// ItemsStaked captures a successful stake batch and the per-item rates that
// were locked in.
type ItemsStaked struct {
	Depositor common.Address
	ItemIDs   []uint64
	Rates     []*big.Int
}

// EventType satisfies the Event interface.
func (ItemsStaked) EventType() string { return TypeItemsStaked }

// Event converts the structured payload into a broadcastable event.
func (e ItemsStaked) Event() *types.Event {
	attrs := map[string]string{
		"addr":  e.Depositor.Hex(),
		"items": formatItems(e.ItemIDs),
		"count": strconv.Itoa(len(e.ItemIDs)),
	}
	if len(e.Rates) > 0 {
		parts := make([]string, len(e.Rates))
		for i, r := range e.Rates {
			parts[i] = formatAmount(r)
		}
		attrs["rates"] = strings.Join(parts, ",")
	}
	return &types.Event{Type: TypeItemsStaked, Attributes: attrs}
}

// ItemsWithdrawn captures a successful withdrawal batch.
type ItemsWithdrawn struct {
	Depositor common.Address
	ItemIDs   []uint64
	Remaining int
}

// EventType satisfies the Event interface.
func (ItemsWithdrawn) EventType() string { return TypeItemsWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e ItemsWithdrawn) Event() *types.Event {
	attrs := map[string]string{
		"addr":      e.Depositor.Hex(),
		"items":     formatItems(e.ItemIDs),
		"count":     strconv.Itoa(len(e.ItemIDs)),
		"remaining": strconv.Itoa(e.Remaining),
	}
	return &types.Event{Type: TypeItemsWithdrawn, Attributes: attrs}
}

// RewardsClaimed captures a reward payout. Paid can be lower than Accrued when
// the cap pro-ration throttled the claim; the difference is forfeited.
type RewardsClaimed struct {
	Depositor common.Address
	Accrued   *big.Int
	Paid      *big.Int
}

// EventType satisfies the Event interface.
func (RewardsClaimed) EventType() string { return TypeRewardsClaimed }

// Event converts the structured payload into a broadcastable event.
func (e RewardsClaimed) Event() *types.Event {
	attrs := map[string]string{
		"addr":    e.Depositor.Hex(),
		"accrued": formatAmount(e.Accrued),
		"paid":    formatAmount(e.Paid),
	}
	return &types.Event{Type: TypeRewardsClaimed, Attributes: attrs}
}

// RewardsCapHit indicates that the program-wide cap limited a reward claim.
type RewardsCapHit struct {
	Depositor common.Address
	Total     *big.Int
	Cap       *big.Int
	Forfeited *big.Int
}

// EventType satisfies the Event interface.
func (RewardsCapHit) EventType() string { return TypeRewardsCapHit }

// Event converts the structured payload into a broadcastable event.
func (e RewardsCapHit) Event() *types.Event {
	attrs := map[string]string{
		"addr":      e.Depositor.Hex(),
		"total":     formatAmount(e.Total),
		"cap":       formatAmount(e.Cap),
		"forfeited": formatAmount(e.Forfeited),
	}
	return &types.Event{Type: TypeRewardsCapHit, Attributes: attrs}
}

// RewardRateUpdated captures a base rate reconfiguration and the number of
// depositors that were settled before the new rate took effect.
type RewardRateUpdated struct {
	OldRate *big.Int
	NewRate *big.Int
	Settled int
}

// EventType satisfies the Event interface.
func (RewardRateUpdated) EventType() string { return TypeRewardRateUpdated }

// Event converts the structured payload into a broadcastable event.
func (e RewardRateUpdated) Event() *types.Event {
	attrs := map[string]string{
		"oldRate": formatAmount(e.OldRate),
		"newRate": formatAmount(e.NewRate),
		"settled": strconv.Itoa(e.Settled),
	}
	return &types.Event{Type: TypeRewardRateUpdated, Attributes: attrs}
}

// DepositsPaused captures the deposit gate closing.
type DepositsPaused struct{}

// EventType satisfies the Event interface.
func (DepositsPaused) EventType() string { return TypeDepositsPaused }

// Event converts the structured payload into a broadcastable event.
func (DepositsPaused) Event() *types.Event {
	return &types.Event{Type: TypeDepositsPaused, Attributes: map[string]string{}}
}

// DepositsResumed captures the deposit gate reopening.
type DepositsResumed struct{}

// EventType satisfies the Event interface.
func (DepositsResumed) EventType() string { return TypeDepositsResumed }

// Event converts the structured payload into a broadcastable event.
func (DepositsResumed) Event() *types.Event {
	return &types.Event{Type: TypeDepositsResumed, Attributes: map[string]string{}}
}
