package core

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/native/assets"
	"stakevault/native/staking"
	"stakevault/storage"
)

var (
	nodeAlice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	nodeVault = common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")
)

type nodeEnv struct {
	db      *storage.MemDB
	custody *assets.Collectible
	token   *assets.RewardToken
	clock   int64
}

func newNodeEnv(t *testing.T) *nodeEnv {
	t.Helper()
	return &nodeEnv{
		db:      storage.NewMemDB(),
		custody: assets.NewCollectible(),
		token:   assets.NewRewardToken(big.NewInt(10_000_000)),
		clock:   1_700_000_000,
	}
}

func (env *nodeEnv) open(t *testing.T) *Node {
	t.Helper()
	node, err := NewNode(env.db, NodeConfig{
		Custody:     env.custody,
		RewardAsset: env.token,
		Vault:       nodeVault,
		Params:      staking.DefaultParams(),
	})
	if err != nil {
		t.Fatalf("open node: %v", err)
	}
	node.SetNowFunc(func() int64 { return env.clock })
	return node
}

func TestNodeStateSurvivesRestart(t *testing.T) {
	env := newNodeEnv(t)
	node := env.open(t)

	for _, id := range []uint64{1, 2} {
		if err := env.custody.Mint(nodeAlice, id); err != nil {
			t.Fatalf("mint %d: %v", id, err)
		}
	}
	if _, err := node.StakeItems(nodeAlice, []uint64{1, 2}); err != nil {
		t.Fatalf("stake: %v", err)
	}
	env.clock += staking.SecondsPerHour

	// Reopen from the same database; accrual must continue from the
	// persisted timestamp as if the process never stopped.
	reopened := env.open(t)
	items, available := reopened.UserStakeInfo(nodeAlice)
	if len(items) != 2 {
		t.Fatalf("items after restart: got %v", items)
	}
	want := big.NewInt(200_000)
	if available.Cmp(want) != 0 {
		t.Fatalf("available after restart: got %s want %s", available, want)
	}

	paid, err := reopened.ClaimRewards(nodeAlice)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if paid.Cmp(want) != 0 {
		t.Fatalf("paid: got %s want %s", paid, want)
	}
	if env.token.BalanceOf(nodeAlice).Cmp(want) != 0 {
		t.Fatalf("token balance: got %s", env.token.BalanceOf(nodeAlice))
	}

	// The claim itself must be durable too.
	final := env.open(t)
	if _, available := final.UserStakeInfo(nodeAlice); available.Sign() != 0 {
		t.Fatalf("claimed balance resurrected: %s", available)
	}
	if got := final.TotalStakedRewards(); got.Cmp(want) != 0 {
		t.Fatalf("total after restart: got %s want %s", got, want)
	}
}

func TestNodePauseSurvivesRestart(t *testing.T) {
	env := newNodeEnv(t)
	node := env.open(t)

	if err := node.PauseDeposits(); err != nil {
		t.Fatalf("pause: %v", err)
	}

	reopened := env.open(t)
	if !reopened.DepositsPaused() {
		t.Fatal("paused flag lost across restart")
	}
	if err := env.custody.Mint(nodeAlice, 9); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := reopened.StakeItems(nodeAlice, []uint64{9}); !errors.Is(err, staking.ErrDepositsPaused) {
		t.Fatalf("stake while paused: got %v", err)
	}
	if err := reopened.ResumeDeposits(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, err := reopened.StakeItems(nodeAlice, []uint64{9}); err != nil {
		t.Fatalf("stake after resume: %v", err)
	}
}

func TestNodeRateChangeSurvivesRestart(t *testing.T) {
	env := newNodeEnv(t)
	node := env.open(t)

	if err := node.SetRewardsPerHour(big.NewInt(40_000)); err != nil {
		t.Fatalf("set rate: %v", err)
	}

	reopened := env.open(t)
	if got := reopened.RewardsPerHour(); got.Cmp(big.NewInt(40_000)) != 0 {
		t.Fatalf("rate after restart: got %s", got)
	}
}

type faultyDB struct {
	*storage.MemDB
	failPuts bool
}

func (db *faultyDB) Put(key []byte, value []byte) error {
	if db.failPuts {
		return errors.New("disk full")
	}
	return db.MemDB.Put(key, value)
}

func TestNodeWriteFailureRollsBackMemoryState(t *testing.T) {
	env := newNodeEnv(t)
	db := &faultyDB{MemDB: env.db}
	node, err := NewNode(db, NodeConfig{
		Custody:     env.custody,
		RewardAsset: env.token,
		Vault:       nodeVault,
		Params:      staking.DefaultParams(),
	})
	if err != nil {
		t.Fatalf("open node: %v", err)
	}
	node.SetNowFunc(func() int64 { return env.clock })

	if err := env.custody.Mint(nodeAlice, 1); err != nil {
		t.Fatalf("mint: %v", err)
	}

	db.failPuts = true
	if _, err := node.StakeItems(nodeAlice, []uint64{1}); err == nil {
		t.Fatal("stake should fail when the ledger write fails")
	}

	// The reported failure must hold: no in-memory stake, custody back with
	// the caller, nothing on disk.
	items, available := node.UserStakeInfo(nodeAlice)
	if len(items) != 0 || available.Sign() != 0 {
		t.Fatalf("failed stake visible in memory: items=%v available=%s", items, available)
	}
	owner, err := env.custody.OwnerOf(1)
	if err != nil || owner != nodeAlice {
		t.Fatalf("custody after failed stake: owner %s err %v", owner.Hex(), err)
	}

	// The store recovers and the same stake goes through.
	db.failPuts = false
	if _, err := node.StakeItems(nodeAlice, []uint64{1}); err != nil {
		t.Fatalf("stake after recovery: %v", err)
	}
	env.clock += staking.SecondsPerHour

	// A claim with a failing write pays nothing and keeps the balance.
	db.failPuts = true
	if _, err := node.ClaimRewards(nodeAlice); err == nil {
		t.Fatal("claim should fail when the ledger write fails")
	}
	if got := env.token.BalanceOf(nodeAlice); got.Sign() != 0 {
		t.Fatalf("payout despite failed write: %s", got)
	}
	if _, available := node.UserStakeInfo(nodeAlice); available.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("available after failed claim: got %s want 100000", available)
	}

	db.failPuts = false
	reopened := env.open(t)
	items, available = reopened.UserStakeInfo(nodeAlice)
	if len(items) != 1 {
		t.Fatalf("durable stake lost: items=%v", items)
	}
	if available.Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("available after restart: got %s want 100000", available)
	}
}

func TestNodeFailedOperationLeavesNoTrace(t *testing.T) {
	env := newNodeEnv(t)
	node := env.open(t)

	if _, err := node.StakeItems(nodeAlice, []uint64{42}); err == nil {
		t.Fatal("expected stake of unknown item to fail")
	}

	reopened := env.open(t)
	items, available := reopened.UserStakeInfo(nodeAlice)
	if len(items) != 0 || available.Sign() != 0 {
		t.Fatalf("failed stake left state: items=%v available=%s", items, available)
	}
}
