package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/native/staking"
	"stakevault/storage"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	mgr := NewManager(db)

	alice := common.HexToAddress("0xA1")
	bob := common.HexToAddress("0xB2")

	snap := &staking.LedgerSnapshot{
		Depositors: map[common.Address]*staking.DepositorRecord{
			alice: {
				StakedItems:      []uint64{3, 7},
				RewardRates:      []*big.Int{big.NewInt(100_000), big.NewInt(50_000)},
				TimeOfLastUpdate: 1_700_000_100,
				UnclaimedRewards: big.NewInt(12_345),
			},
			// Emptied record with a residual balance.
			bob: {
				TimeOfLastUpdate: 1_700_000_200,
				UnclaimedRewards: big.NewInt(777),
			},
		},
		Active:            []common.Address{alice},
		RewardsPerHour:    big.NewInt(100_000),
		MaxStakingRewards: big.NewInt(3_000_000),
		AlreadyClaimed:    big.NewInt(999),
		Paused:            true,
	}
	if err := mgr.SaveLedger(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := mgr.LoadLedger()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a stored snapshot")
	}

	ledger, err := staking.LedgerFromSnapshot(loaded)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	rec := ledger.Record(alice)
	if rec == nil || len(rec.StakedItems) != 2 || rec.StakedItems[1] != 7 {
		t.Fatalf("alice record: got %+v", rec)
	}
	if rec.RewardRates[1].Cmp(big.NewInt(50_000)) != 0 {
		t.Fatalf("alice rate: got %s want 50000", rec.RewardRates[1])
	}
	if rec.TimeOfLastUpdate != 1_700_000_100 {
		t.Fatalf("alice timestamp: got %d", rec.TimeOfLastUpdate)
	}
	if rec.UnclaimedRewards.Cmp(big.NewInt(12_345)) != 0 {
		t.Fatalf("alice unclaimed: got %s", rec.UnclaimedRewards)
	}

	bobRec := ledger.Record(bob)
	if bobRec == nil || bobRec.UnclaimedRewards.Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("bob residual balance lost: %+v", bobRec)
	}
	if len(bobRec.StakedItems) != 0 {
		t.Fatalf("bob should have no items, got %v", bobRec.StakedItems)
	}

	if owner, ok := ledger.ItemOwner(7); !ok || owner != alice {
		t.Fatalf("item index rebuild: owner %s present=%v", owner.Hex(), ok)
	}
	active := ledger.ActiveDepositors()
	if len(active) != 1 || active[0] != alice {
		t.Fatalf("active list: got %v", active)
	}
	if !ledger.Paused() {
		t.Fatal("paused flag lost")
	}
	if ledger.AlreadyClaimedRewards().Cmp(big.NewInt(999)) != 0 {
		t.Fatalf("alreadyClaimed: got %s", ledger.AlreadyClaimedRewards())
	}
	if ledger.RewardsPerHour().Cmp(big.NewInt(100_000)) != 0 {
		t.Fatalf("rate: got %s", ledger.RewardsPerHour())
	}
}

func TestLoadLedgerEmptyDatabase(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	snap, ok, err := mgr.LoadLedger()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || snap != nil {
		t.Fatalf("fresh database should have no snapshot, got ok=%v", ok)
	}
}
