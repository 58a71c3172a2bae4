package explorer

import "stakevault/core/events"

// EventLabel returns the human-readable explorer label for an event type.
func EventLabel(eventType string) string {
	switch eventType {
	case events.TypeItemsStaked:
		return "Items staked"
	case events.TypeItemsWithdrawn:
		return "Items withdrawn"
	case events.TypeRewardsClaimed:
		return "Rewards claimed"
	case events.TypeRewardsCapHit:
		return "Reward cap reached"
	case events.TypeRewardRateUpdated:
		return "Reward rate updated"
	case events.TypeDepositsPaused:
		return "Deposits paused"
	case events.TypeDepositsResumed:
		return "Deposits resumed"
	default:
		return eventType
	}
}
