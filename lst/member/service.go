// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package member

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/storage/linkedlist"
	"github.com/tangle-network/lst/tangle"
)

var (
	slotMembers        = tangle.BytesToBytes32([]byte("pool-members"))
	slotMemberAccounts = tangle.BytesToBytes32([]byte("pool-member-accounts"))
)

// Service persists pool members, with an ordered account list per pool.
type Service struct {
	sctx    *storage.Context
	members *storage.Mapping[storage.PoolAccount, *Member]
}

func NewService(sctx *storage.Context) *Service {
	return &Service{
		sctx:    sctx,
		members: storage.NewMapping[storage.PoolAccount, *Member](sctx, slotMembers),
	}
}

func (s *Service) accounts(poolID uint32) *linkedlist.LinkedList[tangle.Address] {
	pos := tangle.Blake2b(slotMemberAccounts.Bytes(), binary.BigEndian.AppendUint32(nil, poolID))
	return linkedlist.New[tangle.Address](s.sctx, pos)
}

// Get returns the member, nil if absent.
func (s *Service) Get(poolID uint32, account tangle.Address) (*Member, error) {
	m, err := s.members.Get(storage.PoolAccount{Pool: poolID, Account: account})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member")
	}
	if m != nil && len(m.UnbondingEras) == 0 {
		m.UnbondingEras = nil
	}
	return m, nil
}

// Set stores the member, registering it with its pool on first write. It
// returns true when the member is new.
func (s *Service) Set(m *Member) (bool, error) {
	list := s.accounts(m.PoolID)
	known, err := list.Contains(m.Account)
	if err != nil {
		return false, err
	}
	if err := s.members.Set(storage.PoolAccount{Pool: m.PoolID, Account: m.Account}, m); err != nil {
		return false, errors.Wrap(err, "failed to set member")
	}
	if known {
		return false, nil
	}
	if err := list.Add(m.Account); err != nil {
		return false, errors.Wrap(err, "failed to add member account")
	}
	return true, nil
}

func (s *Service) Remove(poolID uint32, account tangle.Address) error {
	s.members.Delete(storage.PoolAccount{Pool: poolID, Account: account})
	if err := s.accounts(poolID).Remove(account); err != nil {
		return errors.Wrap(err, "failed to remove member account")
	}
	return nil
}

// Count returns the number of members of the pool.
func (s *Service) Count(poolID uint32) (uint32, error) {
	n, err := s.accounts(poolID).Len()
	return uint32(n), err
}

// Accounts returns the members of the pool in joining order.
func (s *Service) Accounts(poolID uint32) ([]tangle.Address, error) {
	return s.accounts(poolID).Keys()
}

// Iter calls fn for every member of the pool. fn may remove the member it is given.
func (s *Service) Iter(poolID uint32, fn func(*Member) error) error {
	return s.accounts(poolID).Iter(func(account tangle.Address) error {
		m, err := s.Get(poolID, account)
		if err != nil {
			return err
		}
		if m == nil {
			return errors.Errorf("member %v of pool %d listed but not stored", account, poolID)
		}
		return fn(m)
	})
}

// RemoveAll deletes every member of the pool.
func (s *Service) RemoveAll(poolID uint32) error {
	return s.Iter(poolID, func(m *Member) error {
		return s.Remove(poolID, m.Account)
	})
}
