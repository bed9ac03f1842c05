// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/tangle-network/lst/kv"
	"github.com/tangle-network/lst/stackedmap"
	"github.com/tangle-network/lst/tangle"
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

type storageKey struct {
	addr tangle.Address
	key  tangle.Bytes32
}

func (k storageKey) bytes() []byte {
	return append(k.addr.Bytes()[:tangle.AddressLength:tangle.AddressLength], k.key.Bytes()...)
}

// State is a journaled view of the storage of every module. Writes stay in memory
// until staged and committed, and can be reverted to any checkpoint before that.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object on top of the committed store.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.load)
	return s
}

func (s *State) load(key storageKey) ([]byte, bool, error) {
	raw, err := s.src.Get(key.bytes())
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// GetRawStorage returns the raw value stored under key of addr, nil if absent.
func (s *State) GetRawStorage(addr tangle.Address, key tangle.Bytes32) ([]byte, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return raw, nil
}

// SetRawStorage sets the raw value; an empty value deletes the entry.
func (s *State) SetRawStorage(addr tangle.Address, key tangle.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns the value as a right aligned word.
func (s *State) GetStorage(addr tangle.Address, key tangle.Bytes32) (tangle.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return tangle.Bytes32{}, err
	}
	return tangle.BytesToBytes32(raw), nil
}

// SetStorage stores a word, trimming leading zeros. A zero word deletes the entry.
func (s *State) SetStorage(addr tangle.Address, key, value tangle.Bytes32) {
	b := value.Bytes()
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	s.SetRawStorage(addr, key, b)
}

// EncodeStorage stores the output of enc.
func (s *State) EncodeStorage(addr tangle.Address, key tangle.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage passes the raw value to dec. dec receives an empty slice for absent entries.
func (s *State) DecodeStorage(addr tangle.Address, key tangle.Bytes32, dec func([]byte) error) error {
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

// Stage collects the net changes since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	var order []storageKey
	s.sm.Journal(func(key storageKey, value []byte) bool {
		if _, ok := changes[key]; !ok {
			order = append(order, key)
		}
		changes[key] = value
		return true
	})
	return &Stage{changes: changes, order: order}
}
