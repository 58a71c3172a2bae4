package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"stakevault/native/staking"
	"stakevault/storage"
)

// Manager persists ledger snapshots in deterministic key/value form so a
// restarted node resumes from the exact state surface it last committed.
type Manager struct {
	db storage.Database
}

// NewManager constructs a Manager bound to the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func depositorKey(addr common.Address) []byte {
	return append(append([]byte(nil), stakingDepositorPrefix...), addr.Bytes()...)
}

// SaveLedger writes the full snapshot. Records for every address that has
// ever staked are kept so residual unclaimed balances survive restarts.
func (m *Manager) SaveLedger(snap *staking.LedgerSnapshot) error {
	if snap == nil {
		return fmt.Errorf("state: nil snapshot")
	}
	addresses := make([]common.Address, 0, len(snap.Depositors))
	for addr, rec := range snap.Depositors {
		encoded, err := rlp.EncodeToBytes(newStoredDepositor(rec))
		if err != nil {
			return fmt.Errorf("state: encode depositor %s: %w", addr.Hex(), err)
		}
		if err := m.db.Put(depositorKey(addr), encoded); err != nil {
			return fmt.Errorf("state: store depositor %s: %w", addr.Hex(), err)
		}
		addresses = append(addresses, addr)
	}

	encodedAll, err := rlp.EncodeToBytes(&storedAddressList{Addresses: addresses})
	if err != nil {
		return fmt.Errorf("state: encode address list: %w", err)
	}
	if err := m.db.Put(stakingAddressListKey, encodedAll); err != nil {
		return fmt.Errorf("state: store address list: %w", err)
	}

	encodedActive, err := rlp.EncodeToBytes(&storedAddressList{Addresses: snap.Active})
	if err != nil {
		return fmt.Errorf("state: encode active list: %w", err)
	}
	if err := m.db.Put(stakingActiveListKey, encodedActive); err != nil {
		return fmt.Errorf("state: store active list: %w", err)
	}

	program := &storedProgram{
		RewardsPerHour:    snap.RewardsPerHour,
		MaxStakingRewards: snap.MaxStakingRewards,
		AlreadyClaimed:    snap.AlreadyClaimed,
		Paused:            snap.Paused,
	}
	encodedProgram, err := rlp.EncodeToBytes(program)
	if err != nil {
		return fmt.Errorf("state: encode program: %w", err)
	}
	if err := m.db.Put(stakingProgramKey, encodedProgram); err != nil {
		return fmt.Errorf("state: store program: %w", err)
	}
	return nil
}

// LoadLedger reads the snapshot back. The second return is false when no
// snapshot has ever been committed.
func (m *Manager) LoadLedger() (*staking.LedgerSnapshot, bool, error) {
	rawProgram, err := m.db.Get(stakingProgramKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state: load program: %w", err)
	}
	program := new(storedProgram)
	if err := rlp.DecodeBytes(rawProgram, program); err != nil {
		return nil, false, fmt.Errorf("state: decode program: %w", err)
	}

	snap := &staking.LedgerSnapshot{
		Depositors:        make(map[common.Address]*staking.DepositorRecord),
		RewardsPerHour:    program.RewardsPerHour,
		MaxStakingRewards: program.MaxStakingRewards,
		AlreadyClaimed:    program.AlreadyClaimed,
		Paused:            program.Paused,
	}

	all, err := m.loadAddressList(stakingAddressListKey)
	if err != nil {
		return nil, false, err
	}
	for _, addr := range all {
		raw, err := m.db.Get(depositorKey(addr))
		if err != nil {
			return nil, false, fmt.Errorf("state: load depositor %s: %w", addr.Hex(), err)
		}
		stored := new(storedDepositor)
		if err := rlp.DecodeBytes(raw, stored); err != nil {
			return nil, false, fmt.Errorf("state: decode depositor %s: %w", addr.Hex(), err)
		}
		snap.Depositors[addr] = stored.toRecord()
	}

	snap.Active, err = m.loadAddressList(stakingActiveListKey)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (m *Manager) loadAddressList(key []byte) ([]common.Address, error) {
	raw, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: load address list: %w", err)
	}
	list := new(storedAddressList)
	if err := rlp.DecodeBytes(raw, list); err != nil {
		return nil, fmt.Errorf("state: decode address list: %w", err)
	}
	return list.Addresses, nil
}
