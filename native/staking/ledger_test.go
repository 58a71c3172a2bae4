package staking

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestSwapRemovePositions(t *testing.T) {
	build := func() []uint64 { return []uint64{10, 20, 30, 40} }

	s, moved := swapRemove(build(), 0)
	if !moved {
		t.Fatal("removing first should relocate the last element")
	}
	if len(s) != 3 || s[0] != 40 || s[1] != 20 || s[2] != 30 {
		t.Fatalf("remove first: got %v", s)
	}

	s, moved = swapRemove(build(), 2)
	if !moved {
		t.Fatal("removing middle should relocate the last element")
	}
	if len(s) != 3 || s[2] != 40 {
		t.Fatalf("remove middle: got %v", s)
	}

	s, moved = swapRemove(build(), 3)
	if moved {
		t.Fatal("removing last should not relocate anything")
	}
	if len(s) != 3 || s[0] != 10 || s[1] != 20 || s[2] != 30 {
		t.Fatalf("remove last: got %v", s)
	}

	s, moved = swapRemove([]uint64{99}, 0)
	if moved {
		t.Fatal("removing the only element should not relocate anything")
	}
	if len(s) != 0 {
		t.Fatalf("remove only: got %v", s)
	}
}

func checkIndexIntegrity(t *testing.T, l *Ledger) {
	t.Helper()
	for addr, rec := range l.depositors {
		if len(rec.StakedItems) != len(rec.RewardRates) {
			t.Fatalf("%s: parallel sequences diverge: %d items, %d rates",
				addr.Hex(), len(rec.StakedItems), len(rec.RewardRates))
		}
		for pos, id := range rec.StakedItems {
			if owner := l.itemOwner[id]; owner != addr {
				t.Fatalf("item %d: recorded owner %s, actual %s", id, owner.Hex(), addr.Hex())
			}
			if idx := l.itemIndex[id]; idx != pos {
				t.Fatalf("item %d: recorded index %d, actual %d", id, idx, pos)
			}
		}
	}
	for pos, addr := range l.active {
		if idx, ok := l.activeIndex[addr]; !ok || idx != pos {
			t.Fatalf("active %s: recorded index %d (present=%v), actual %d", addr.Hex(), idx, ok, pos)
		}
	}
	if len(l.active) != len(l.activeIndex) {
		t.Fatalf("active list and index disagree: %d vs %d", len(l.active), len(l.activeIndex))
	}
}

func TestLedgerItemRemovalIntegrity(t *testing.T) {
	l := NewLedger(DefaultParams())
	alice := common.HexToAddress("0xA1")

	l.ensureRecord(alice, 100)
	l.markActive(alice)
	for _, id := range []uint64{1, 2, 3, 4, 5} {
		l.appendItem(alice, id, big.NewInt(1000))
	}
	checkIndexIntegrity(t, l)

	// Remove from the middle, the front, and the back.
	for _, id := range []uint64{3, 1, 5} {
		l.removeItem(alice, id)
		checkIndexIntegrity(t, l)
	}
	rec := l.Record(alice)
	if len(rec.StakedItems) != 2 {
		t.Fatalf("remaining items: got %d want 2", len(rec.StakedItems))
	}
	if _, ok := l.ItemOwner(3); ok {
		t.Fatal("removed item still has an owner mapping")
	}

	l.removeItem(alice, rec.StakedItems[0])
	l.removeItem(alice, rec.StakedItems[0])
	l.retireIfEmpty(alice)
	checkIndexIntegrity(t, l)
	if len(l.active) != 0 {
		t.Fatalf("active list should be empty, got %d", len(l.active))
	}
	if l.Record(alice) == nil {
		t.Fatal("emptied record must persist for residual claims")
	}
}

func TestLedgerActiveCompaction(t *testing.T) {
	l := NewLedger(DefaultParams())
	addrs := []common.Address{
		common.HexToAddress("0xA1"),
		common.HexToAddress("0xB2"),
		common.HexToAddress("0xC3"),
	}
	for i, addr := range addrs {
		l.ensureRecord(addr, 100)
		l.markActive(addr)
		l.appendItem(addr, uint64(i+1), big.NewInt(500))
	}

	// Retiring the first active depositor swaps the last one into its slot.
	l.removeItem(addrs[0], 1)
	l.retireIfEmpty(addrs[0])
	checkIndexIntegrity(t, l)
	if len(l.active) != 2 {
		t.Fatalf("active count: got %d want 2", len(l.active))
	}
	if l.active[0] != addrs[2] {
		t.Fatalf("slot 0: got %s want %s", l.active[0].Hex(), addrs[2].Hex())
	}

	// Re-activating keeps the record and re-appends to the list tail.
	l.markActive(addrs[0])
	l.appendItem(addrs[0], 9, big.NewInt(500))
	checkIndexIntegrity(t, l)
}

func TestLedgerCloneIsDeep(t *testing.T) {
	l := NewLedger(DefaultParams())
	alice := common.HexToAddress("0xA1")
	l.ensureRecord(alice, 100)
	l.markActive(alice)
	l.appendItem(alice, 1, big.NewInt(1000))
	l.alreadyClaimed.SetInt64(42)

	snap := l.Clone()
	l.appendItem(alice, 2, big.NewInt(2000))
	l.alreadyClaimed.SetInt64(99)
	l.Record(alice).UnclaimedRewards.SetInt64(7)

	if got := len(snap.Record(alice).StakedItems); got != 1 {
		t.Fatalf("clone items: got %d want 1", got)
	}
	if snap.alreadyClaimed.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("clone alreadyClaimed: got %s want 42", snap.alreadyClaimed)
	}
	if snap.Record(alice).UnclaimedRewards.Sign() != 0 {
		t.Fatalf("clone unclaimed: got %s want 0", snap.Record(alice).UnclaimedRewards)
	}
	checkIndexIntegrity(t, snap)
}
