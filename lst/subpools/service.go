// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subpools

import (
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var slotSubPools = tangle.BytesToBytes32([]byte("sub-pools"))

// Service persists the sub-pools of every pool.
type Service struct {
	subPools *storage.Mapping[storage.Uint32, *SubPools]
}

func NewService(sctx *storage.Context) *Service {
	return &Service{
		subPools: storage.NewMapping[storage.Uint32, *SubPools](sctx, slotSubPools),
	}
}

// Get returns the sub-pools of the pool, nil if it has none.
func (s *Service) Get(poolID uint32) (*SubPools, error) {
	sp, err := s.subPools.Get(storage.Uint32(poolID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sub-pools")
	}
	if sp != nil && sp.NoEra == nil {
		sp.NoEra = NewUnbondPool()
	}
	return sp, nil
}

// GetOrDefault returns the sub-pools of the pool, or empty ones.
func (s *Service) GetOrDefault(poolID uint32) (*SubPools, error) {
	sp, err := s.Get(poolID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		sp = New()
	}
	return sp, nil
}

func (s *Service) Set(poolID uint32, sp *SubPools) error {
	if err := s.subPools.Set(storage.Uint32(poolID), sp); err != nil {
		return errors.Wrap(err, "failed to set sub-pools")
	}
	return nil
}

func (s *Service) Remove(poolID uint32) {
	s.subPools.Delete(storage.Uint32(poolID))
}
