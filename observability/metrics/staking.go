package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// StakingMetrics exposes the Prometheus collectors for the staking ledger.
type StakingMetrics struct {
	itemsStaked      prometheus.Counter
	itemsWithdrawn   prometheus.Counter
	claims           prometheus.Counter
	rewardsPaid      prometheus.Counter
	rewardsForfeited prometheus.Counter
	activeDepositors prometheus.Gauge
	stakedItems      prometheus.Gauge
	depositsPaused   prometheus.Gauge
}

var (
	stakingOnce     sync.Once
	stakingRegistry *StakingMetrics
)

// Staking returns the process-wide staking metrics registry.
func Staking() *StakingMetrics {
	stakingOnce.Do(func() {
		stakingRegistry = &StakingMetrics{
			itemsStaked: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_items_staked_total",
				Help: "Count of collectible items taken into custody.",
			}),
			itemsWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_items_withdrawn_total",
				Help: "Count of collectible items returned to depositors.",
			}),
			claims: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_claims_total",
				Help: "Count of successful reward claims.",
			}),
			rewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_rewards_paid_total",
				Help: "Total reward base units paid out to claimants.",
			}),
			rewardsForfeited: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "staking_rewards_forfeited_total",
				Help: "Total reward base units forfeited to cap pro-ration.",
			}),
			activeDepositors: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_active_depositors",
				Help: "Number of depositors with at least one staked item.",
			}),
			stakedItems: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_staked_items",
				Help: "Number of collectible items currently in custody.",
			}),
			depositsPaused: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_deposits_paused",
				Help: "Whether the deposit gate is closed (1) or open (0).",
			}),
		}
		prometheus.MustRegister(
			stakingRegistry.itemsStaked,
			stakingRegistry.itemsWithdrawn,
			stakingRegistry.claims,
			stakingRegistry.rewardsPaid,
			stakingRegistry.rewardsForfeited,
			stakingRegistry.activeDepositors,
			stakingRegistry.stakedItems,
			stakingRegistry.depositsPaused,
		)
	})
	return stakingRegistry
}

// RecordStaked adds staked items to the counters and custody gauge.
func (m *StakingMetrics) RecordStaked(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.itemsStaked.Add(float64(count))
	m.stakedItems.Add(float64(count))
}

// RecordWithdrawn adds withdrawn items to the counters and custody gauge.
func (m *StakingMetrics) RecordWithdrawn(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.itemsWithdrawn.Add(float64(count))
	m.stakedItems.Sub(float64(count))
}

// RecordClaim tracks a successful claim and its paid and forfeited amounts.
func (m *StakingMetrics) RecordClaim(paid, forfeited float64) {
	if m == nil {
		return
	}
	m.claims.Inc()
	if paid > 0 {
		m.rewardsPaid.Add(paid)
	}
	if forfeited > 0 {
		m.rewardsForfeited.Add(forfeited)
	}
}

// SetActiveDepositors updates the active depositor gauge.
func (m *StakingMetrics) SetActiveDepositors(count int) {
	if m == nil {
		return
	}
	m.activeDepositors.Set(float64(count))
}

// SetPaused reflects the deposit gate in the paused gauge.
func (m *StakingMetrics) SetPaused(paused bool) {
	if m == nil {
		return
	}
	if paused {
		m.depositsPaused.Set(1)
	} else {
		m.depositsPaused.Set(0)
	}
}
