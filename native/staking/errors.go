package staking

import stderrors "errors"

var (
	// ErrDepositsPaused is returned when new stakes arrive while the deposit
	// gate is closed. Withdrawals and claims remain available.
	ErrDepositsPaused = stderrors.New("staking: deposits paused")
	// ErrCapReached rejects new stakes once total staked rewards meet the cap.
	ErrCapReached = stderrors.New("staking: reward cap reached")
	// ErrNoItems rejects empty stake or withdraw batches.
	ErrNoItems = stderrors.New("staking: no items supplied")
	// ErrNotItemOwner is returned when the caller does not own an item it
	// attempts to stake.
	ErrNotItemOwner = stderrors.New("staking: caller does not own item")
	// ErrItemNotStaked is returned when a withdrawal names an item the caller
	// does not currently have staked.
	ErrItemNotStaked = stderrors.New("staking: item not staked by caller")
	// ErrNoActiveStake rejects withdrawals from depositors with no stake.
	ErrNoActiveStake = stderrors.New("staking: no active stake")
	// ErrNothingToClaim is returned when the claimable amount is zero.
	ErrNothingToClaim = stderrors.New("staking: nothing to claim")
	// ErrReentrantCall rejects mutating entry while an operation is running.
	ErrReentrantCall = stderrors.New("staking: operation in progress")
	// ErrInvalidRate rejects nil or negative base rate reconfigurations.
	ErrInvalidRate = stderrors.New("staking: invalid reward rate")
	// ErrNotConfigured is returned when the engine is missing a collaborator.
	ErrNotConfigured = stderrors.New("staking: engine not configured")
)
