package assets

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestCollectibleMintAndTransfer(t *testing.T) {
	reg := NewCollectible()
	alice := common.HexToAddress("0x01")
	bob := common.HexToAddress("0x02")

	if err := reg.Mint(alice, 7); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := reg.Mint(alice, 7); !errors.Is(err, ErrItemExists) {
		t.Fatalf("duplicate mint: got %v want ErrItemExists", err)
	}

	owner, err := reg.OwnerOf(7)
	if err != nil {
		t.Fatalf("ownerOf: %v", err)
	}
	if owner != alice {
		t.Fatalf("owner: got %s want %s", owner, alice)
	}

	if err := reg.TransferFrom(bob, alice, 7); !errors.Is(err, ErrWrongOwner) {
		t.Fatalf("wrong-owner transfer: got %v want ErrWrongOwner", err)
	}
	if err := reg.TransferFrom(alice, bob, 7); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	owner, err = reg.OwnerOf(7)
	if err != nil {
		t.Fatalf("ownerOf after transfer: %v", err)
	}
	if owner != bob {
		t.Fatalf("owner after transfer: got %s want %s", owner, bob)
	}

	if _, err := reg.OwnerOf(99); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown item: got %v want ErrUnknownItem", err)
	}
}

func TestRewardTokenTreasuryLimit(t *testing.T) {
	token := NewRewardToken(big.NewInt(100))
	alice := common.HexToAddress("0x01")

	if err := token.Transfer(alice, big.NewInt(60)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := token.BalanceOf(alice); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("balance: got %s want 60", got)
	}
	if got := token.TreasuryBalance(); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("treasury: got %s want 40", got)
	}

	if err := token.Transfer(alice, big.NewInt(41)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraw: got %v want ErrInsufficientFunds", err)
	}
	// A failed transfer must not move anything.
	if got := token.BalanceOf(alice); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("balance after failed transfer: got %s want 60", got)
	}

	if err := token.Transfer(alice, big.NewInt(0)); err == nil {
		t.Fatal("zero transfer should fail")
	}
}
