// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/stackedmap"
	"github.com/govstake/govstake/thor"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrInsufficientBalance is returned by Transfer and SubBalance.
var ErrInsufficientBalance = fmt.Errorf("insufficient balance")

type keyKind byte

const (
	kindBalance keyKind = 'b'
	kindStorage keyKind = 's'
)

// entryKey identifies one persisted value. Balances leave slot empty.
type entryKey struct {
	kind keyKind
	addr thor.Address
	slot thor.Bytes32
}

func (k entryKey) encode() []byte {
	b := make([]byte, 0, 1+thor.AddressLength+32)
	b = append(b, byte(k.kind))
	b = append(b, k.addr[:]...)
	if k.kind == kindStorage {
		b = append(b, k.slot[:]...)
	}
	return b
}

// State manages the world state: native balances and contract storage of every address.
// Writes are kept in revisions until Commit.
type State struct {
	stater *Stater
	sm     *stackedmap.StackedMap[entryKey, []byte]
}

func newState(stater *Stater) *State {
	s := &State{stater: stater}
	s.sm = stackedmap.New(func(key entryKey) ([]byte, bool, error) {
		v, err := stater.load(key)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	})
	return s
}

// GetBalance returns native balance for the given address.
func (s *State) GetBalance(addr thor.Address) (*big.Int, error) {
	raw, _, err := s.sm.Get(entryKey{kind: kindBalance, addr: addr})
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).SetBytes(raw), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr thor.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v", balance)}
	}
	s.sm.Put(entryKey{kind: kindBalance, addr: addr}, balance.Bytes())
	return nil
}

// AddBalance adds amount to the balance of addr.
func (s *State) AddBalance(addr thor.Address, amount *big.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	return s.SetBalance(addr, bal.Add(bal, amount))
}

// SubBalance subtracts amount from the balance of addr.
// ErrInsufficientBalance is returned when the balance is lower than amount.
func (s *State) SubBalance(addr thor.Address, amount *big.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return s.SetBalance(addr, bal.Sub(bal, amount))
}

// Transfer moves amount of native coin from one address to another.
func (s *State) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 || from == to {
		// still reject if from can't cover it
		bal, err := s.GetBalance(from)
		if err != nil {
			return err
		}
		if bal.Cmp(amount) < 0 {
			return ErrInsufficientBalance
		}
		return nil
	}
	if err := s.SubBalance(from, amount); err != nil {
		return err
	}
	return s.AddBalance(to, amount)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(entryKey{kind: kindStorage, addr: addr, slot: key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(entryKey{kind: kindStorage, addr: addr, slot: key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// changes returns the final value of every key written since the state was created.
func (s *State) changes() map[entryKey][]byte {
	changes := make(map[entryKey][]byte)
	s.sm.Journal(func(k entryKey, v []byte) bool {
		changes[k] = v
		return true
	})
	return changes
}

// Commit persists all changes into the underlying store.
// The state should not be used after commit.
func (s *State) Commit() error {
	if err := s.stater.commit(s.changes()); err != nil {
		return &Error{err}
	}
	return nil
}
