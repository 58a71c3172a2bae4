package core

import (
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/core/events"
	"stakevault/core/state"
	"stakevault/core/types"
	"stakevault/native/staking"
	"stakevault/observability/metrics"
	"stakevault/storage"
)

// NodeConfig carries the collaborators a node needs at construction time.
type NodeConfig struct {
	Custody     staking.CollectibleCustody
	RewardAsset staking.RewardAsset
	Vault       common.Address
	Params      staking.Params
	// Emitter receives every staking event after metrics bookkeeping. Nil
	// disables downstream fan-out.
	Emitter events.Emitter
	Logger  *slog.Logger
	// Metrics is optional; nil disables instrument updates entirely, which
	// keeps tests away from the global Prometheus registry.
	Metrics *metrics.StakingMetrics
}

// Node serializes access to the staking engine. Durability is handled by the
// engine's commit hook, which writes a ledger snapshot inside every mutating
// operation and rolls back on write failure, so an acknowledged operation is
// always on disk and a failed one leaves no trace.
type Node struct {
	mu      sync.Mutex
	engine  *staking.Engine
	metrics *metrics.StakingMetrics
	logger  *slog.Logger
}

// NewNode opens (or initializes) the ledger in db and wires the engine.
func NewNode(db storage.Database, cfg NodeConfig) (*Node, error) {
	manager := state.NewManager(db)
	snap, ok, err := manager.LoadLedger()
	if err != nil {
		return nil, fmt.Errorf("core: load ledger: %w", err)
	}
	var ledger *staking.Ledger
	if ok {
		ledger, err = staking.LedgerFromSnapshot(snap)
		if err != nil {
			return nil, fmt.Errorf("core: rebuild ledger: %w", err)
		}
	} else {
		ledger = staking.NewLedger(cfg.Params)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := staking.NewEngine(ledger)
	engine.SetCustody(cfg.Custody)
	engine.SetRewardAsset(cfg.RewardAsset)
	engine.SetVault(cfg.Vault)
	engine.SetEmitter(&meteredEmitter{registry: cfg.Metrics, next: cfg.Emitter})
	engine.SetCommitFunc(func() error {
		return manager.SaveLedger(engine.Ledger().Snapshot())
	})

	node := &Node{
		engine:  engine,
		metrics: cfg.Metrics,
		logger:  logger,
	}
	node.metrics.SetPaused(ledger.Paused())
	node.metrics.SetActiveDepositors(len(ledger.ActiveDepositors()))
	return node, nil
}

// SetNowFunc overrides the engine time source for deterministic tests.
func (n *Node) SetNowFunc(now func() int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetNowFunc(now)
}

func (n *Node) syncGauges() {
	n.metrics.SetActiveDepositors(len(n.engine.Ledger().ActiveDepositors()))
	n.metrics.SetPaused(n.engine.Ledger().Paused())
}

// StakeItems takes custody of itemIDs on behalf of caller and returns the
// locked-in per-item reward rates.
func (n *Node) StakeItems(caller common.Address, itemIDs []uint64) ([]*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	rates, err := n.engine.Stake(caller, itemIDs)
	if err != nil {
		return nil, err
	}
	n.syncGauges()
	n.logger.Info("items staked", "addr", caller.Hex(), "count", len(itemIDs))
	return rates, nil
}

// WithdrawItems returns custody of itemIDs to caller.
func (n *Node) WithdrawItems(caller common.Address, itemIDs []uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.engine.Withdraw(caller, itemIDs); err != nil {
		return err
	}
	n.syncGauges()
	n.logger.Info("items withdrawn", "addr", caller.Hex(), "count", len(itemIDs))
	return nil
}

// ClaimRewards pays out caller's available rewards and returns the paid
// amount.
func (n *Node) ClaimRewards(caller common.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	paid, err := n.engine.ClaimRewards(caller)
	if err != nil {
		return nil, err
	}
	n.logger.Info("rewards claimed", "addr", caller.Hex(), "paid", paid.String())
	return paid, nil
}

// UserStakeInfo reports caller's staked item ids and currently available
// rewards.
func (n *Node) UserStakeInfo(addr common.Address) ([]uint64, *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.UserStakeInfo(addr)
}

// TotalStakedRewards reports the program-wide reward total at this instant.
func (n *Node) TotalStakedRewards() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.TotalStakedRewards()
}

// SetRewardsPerHour reconfigures the base accrual rate.
func (n *Node) SetRewardsPerHour(rate *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.engine.SetRewardsPerHour(rate); err != nil {
		return err
	}
	n.logger.Info("reward rate updated", "rate", rate.String())
	return nil
}

// PauseDeposits closes the deposit gate; withdrawals and claims continue.
func (n *Node) PauseDeposits() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.engine.Pause(); err != nil {
		return err
	}
	n.syncGauges()
	n.logger.Info("deposits paused")
	return nil
}

// ResumeDeposits reopens the deposit gate.
func (n *Node) ResumeDeposits() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.engine.Unpause(); err != nil {
		return err
	}
	n.syncGauges()
	n.logger.Info("deposits resumed")
	return nil
}

// DepositsPaused reports whether new deposits are gated off.
func (n *Node) DepositsPaused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Ledger().Paused()
}

// RewardsPerHour returns the configured base rate.
func (n *Node) RewardsPerHour() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Ledger().RewardsPerHour()
}

// MaxStakingRewards returns the program reward cap.
func (n *Node) MaxStakingRewards() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Ledger().MaxStakingRewards()
}

// meteredEmitter updates the Prometheus instruments from staking events before
// forwarding them downstream. All counter inputs come off event attributes so
// the bookkeeping stays in one place.
type meteredEmitter struct {
	registry *metrics.StakingMetrics
	next     events.Emitter
}

func (m *meteredEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	m.record(evt)
	if m.next != nil {
		m.next.Emit(evt)
	}
}

func (m *meteredEmitter) record(evt events.Event) {
	if m.registry == nil {
		return
	}
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	payload := carrier.Event()
	if payload == nil {
		return
	}
	switch payload.Type {
	case events.TypeItemsStaked:
		m.registry.RecordStaked(attrInt(payload.Attributes, "count"))
	case events.TypeItemsWithdrawn:
		m.registry.RecordWithdrawn(attrInt(payload.Attributes, "count"))
	case events.TypeRewardsClaimed:
		paid := attrAmount(payload.Attributes, "paid")
		accrued := attrAmount(payload.Attributes, "accrued")
		m.registry.RecordClaim(paid, accrued-paid)
	case events.TypeDepositsPaused:
		m.registry.SetPaused(true)
	case events.TypeDepositsResumed:
		m.registry.SetPaused(false)
	}
}

func attrInt(attrs map[string]string, key string) int {
	v, err := strconv.Atoi(attrs[key])
	if err != nil {
		return 0
	}
	return v
}

func attrAmount(attrs map[string]string, key string) float64 {
	v, ok := new(big.Int).SetString(attrs[key], 10)
	if !ok {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
