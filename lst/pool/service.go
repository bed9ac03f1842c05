// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/storage/linkedlist"
	"github.com/tangle-network/lst/tangle"
)

var (
	slotPools         = tangle.BytesToBytes32([]byte("bonded-pools"))
	slotPoolIDs       = tangle.BytesToBytes32([]byte("bonded-pool-ids"))
	slotLastPoolID    = tangle.BytesToBytes32([]byte("last-pool-id"))
	slotReverseLookup = tangle.BytesToBytes32([]byte("reverse-pool-id-lookup"))
	slotUsedTokenIDs  = tangle.BytesToBytes32([]byte("used-pool-token-ids"))
)

type poolRef struct {
	ID uint32
}

// Service persists bonded pools and their lookups.
type Service struct {
	pools   *storage.Mapping[storage.Uint32, *Pool]
	ids     *linkedlist.LinkedList[storage.Uint32]
	lastID  *storage.Raw[uint32]
	reverse *storage.Mapping[tangle.Address, *poolRef]
	tokens  *storage.Mapping[storage.Uint64, *poolRef]
}

func NewService(sctx *storage.Context) *Service {
	return &Service{
		pools:   storage.NewMapping[storage.Uint32, *Pool](sctx, slotPools),
		ids:     linkedlist.New[storage.Uint32](sctx, slotPoolIDs),
		lastID:  storage.NewRaw[uint32](sctx, slotLastPoolID),
		reverse: storage.NewMapping[tangle.Address, *poolRef](sctx, slotReverseLookup),
		tokens:  storage.NewMapping[storage.Uint64, *poolRef](sctx, slotUsedTokenIDs),
	}
}

// Get returns the pool, nil if it does not exist.
func (s *Service) Get(id uint32) (*Pool, error) {
	p, err := s.pools.Get(storage.Uint32(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if p != nil {
		p.ID = id
	}
	return p, nil
}

func (s *Service) Exists(id uint32) (bool, error) {
	return s.ids.Contains(storage.Uint32(id))
}

// Set stores the pool, registering its id on first write.
func (s *Service) Set(p *Pool) error {
	if err := s.pools.Set(storage.Uint32(p.ID), p); err != nil {
		return errors.Wrap(err, "failed to set pool")
	}
	if err := s.ids.Add(storage.Uint32(p.ID)); err != nil {
		return errors.Wrap(err, "failed to add pool id")
	}
	return nil
}

// Remove deletes the pool record.
func (s *Service) Remove(id uint32) error {
	s.pools.Delete(storage.Uint32(id))
	if err := s.ids.Remove(storage.Uint32(id)); err != nil {
		return errors.Wrap(err, "failed to remove pool id")
	}
	return nil
}

// Count returns the number of pools.
func (s *Service) Count() (uint32, error) {
	n, err := s.ids.Len()
	return uint32(n), err
}

// IDs returns every pool id in creation order.
func (s *Service) IDs() ([]uint32, error) {
	keys, err := s.ids.Keys()
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, uint32(k))
	}
	return ids, nil
}

// LastID returns the most recently allocated pool id.
func (s *Service) LastID() (uint32, error) {
	return s.lastID.Get()
}

// NextID allocates a new pool id.
func (s *Service) NextID() (uint32, error) {
	last, err := s.lastID.Get()
	if err != nil {
		return 0, err
	}
	if last == ^uint32(0) {
		return 0, errors.New("pool id space exhausted")
	}
	last++
	if err := s.lastID.Upsert(last); err != nil {
		return 0, err
	}
	return last, nil
}

// PoolOfAccount returns the pool whose bonded account is account.
func (s *Service) PoolOfAccount(account tangle.Address) (uint32, bool, error) {
	ref, err := s.reverse.Get(account)
	if err != nil || ref == nil {
		return 0, false, err
	}
	return ref.ID, true, nil
}

func (s *Service) SetAccountLookup(account tangle.Address, id uint32) error {
	return s.reverse.Set(account, &poolRef{ID: id})
}

func (s *Service) RemoveAccountLookup(account tangle.Address) {
	s.reverse.Delete(account)
}

// PoolOfToken returns the pool created with the token.
func (s *Service) PoolOfToken(token uint64) (uint32, bool, error) {
	ref, err := s.tokens.Get(storage.Uint64(token))
	if err != nil || ref == nil {
		return 0, false, err
	}
	return ref.ID, true, nil
}

func (s *Service) SetTokenUsed(token uint64, id uint32) error {
	return s.tokens.Set(storage.Uint64(token), &poolRef{ID: id})
}

func (s *Service) RemoveTokenUsed(token uint64) {
	s.tokens.Delete(storage.Uint64(token))
}
