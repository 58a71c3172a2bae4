package assets

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnknownItem is returned when an item id has never been minted.
	ErrUnknownItem = errors.New("assets: unknown item")
	// ErrWrongOwner rejects transfers initiated from a non-owner.
	ErrWrongOwner = errors.New("assets: transfer from wrong owner")
	// ErrItemExists rejects minting an id twice.
	ErrItemExists = errors.New("assets: item already minted")
	// ErrInsufficientFunds rejects reward payouts exceeding the treasury.
	ErrInsufficientFunds = errors.New("assets: insufficient treasury funds")
)

// Collectible is an in-process registry of unique items with ownerOf and
// transferFrom semantics. Transfers are all-or-nothing: a wrong-owner call
// fails without side effects, which in turn aborts the enclosing ledger
// operation.
type Collectible struct {
	mu     sync.RWMutex
	owners map[uint64]common.Address
}

// NewCollectible creates an empty registry.
func NewCollectible() *Collectible {
	return &Collectible{owners: make(map[uint64]common.Address)}
}

// Mint assigns a fresh item id to owner.
func (c *Collectible) Mint(owner common.Address, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.owners[id]; ok {
		return fmt.Errorf("%w: %d", ErrItemExists, id)
	}
	c.owners[id] = owner
	return nil
}

// OwnerOf reports the current owner of an item.
func (c *Collectible) OwnerOf(id uint64) (common.Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[id]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	return owner, nil
}

// TransferFrom moves an item between addresses. The from address must be the
// current owner.
func (c *Collectible) TransferFrom(from, to common.Address, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}
	if owner != from {
		return fmt.Errorf("%w: item %d", ErrWrongOwner, id)
	}
	c.owners[id] = to
	return nil
}

// RewardToken is a treasury-funded fungible ledger used to pay out staking
// rewards. A payout larger than the remaining treasury fails hard rather
// than transferring partially.
type RewardToken struct {
	mu       sync.Mutex
	treasury *big.Int
	balances map[common.Address]*big.Int
}

// NewRewardToken creates a token ledger seeded with the given treasury.
func NewRewardToken(treasury *big.Int) *RewardToken {
	t := big.NewInt(0)
	if treasury != nil {
		t.Set(treasury)
	}
	return &RewardToken{
		treasury: t,
		balances: make(map[common.Address]*big.Int),
	}
}

// Transfer pays amount out of the treasury to the recipient.
func (r *RewardToken) Transfer(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.New("assets: transfer amount must be positive")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.treasury.Cmp(amount) < 0 {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, amount, r.treasury)
	}
	r.treasury.Sub(r.treasury, amount)
	bal, ok := r.balances[to]
	if !ok {
		bal = big.NewInt(0)
		r.balances[to] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// BalanceOf reports the rewards paid out to addr so far.
func (r *RewardToken) BalanceOf(addr common.Address) *big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	bal, ok := r.balances[addr]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(bal)
}

// TreasuryBalance reports the remaining undistributed treasury.
func (r *RewardToken) TreasuryBalance() *big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return new(big.Int).Set(r.treasury)
}
