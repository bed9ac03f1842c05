// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subpools

import (
	"slices"

	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// EraPool is the bucket of funds unlocking at Era.
type EraPool struct {
	Era  uint32
	Pool *UnbondPool
}

// SubPools holds the unbonding buckets of one pool. WithEra is sorted by era.
type SubPools struct {
	NoEra   *UnbondPool
	WithEra []EraPool
}

// New returns empty sub-pools.
func New() *SubPools {
	return &SubPools{NoEra: NewUnbondPool()}
}

// Bucket returns the bucket of era, or nil.
func (s *SubPools) Bucket(era uint32) *UnbondPool {
	if i, ok := s.find(era); ok {
		return s.WithEra[i].Pool
	}
	return nil
}

func (s *SubPools) find(era uint32) (int, bool) {
	return slices.BinarySearchFunc(s.WithEra, era, func(p EraPool, e uint32) int {
		switch {
		case p.Era < e:
			return -1
		case p.Era > e:
			return 1
		}
		return 0
	})
}

// MaybeMergePools merges every bucket that can no longer be slashed into NoEra.
// Buckets at or below currentEra - window are merged, which bounds WithEra to
// bondingDuration + window entries.
func (s *SubPools) MaybeMergePools(currentEra, window uint32) {
	if currentEra < window {
		return
	}
	cutoff := currentEra - window
	keep := s.WithEra[:0]
	for _, p := range s.WithEra {
		if p.Era <= cutoff {
			s.NoEra.Merge(p.Pool)
			continue
		}
		keep = append(keep, p)
	}
	s.WithEra = keep
}

// Insert returns the bucket of era, creating it if needed. limit bounds the number of buckets.
func (s *SubPools) Insert(era uint32, limit uint32) (*UnbondPool, error) {
	i, ok := s.find(era)
	if ok {
		return s.WithEra[i].Pool, nil
	}
	if uint32(len(s.WithEra)) >= limit {
		return nil, reverts.Defensive(reverts.NotEnoughSpaceInUnbondPool)
	}
	pool := NewUnbondPool()
	s.WithEra = slices.Insert(s.WithEra, i, EraPool{Era: era, Pool: pool})
	return pool, nil
}

// Remove drops the bucket of era.
func (s *SubPools) Remove(era uint32) {
	if i, ok := s.find(era); ok {
		s.WithEra = slices.Delete(s.WithEra, i, i+1)
	}
}

// DissolveFrom dissolves points from the bucket of era, falling back to NoEra
// when the bucket was merged. Buckets left without points are dropped.
func (s *SubPools) DissolveFrom(era uint32, pts *uint256.Int) *uint256.Int {
	if bucket := s.Bucket(era); bucket != nil {
		balance := bucket.Dissolve(pts)
		if bucket.Points.IsZero() {
			s.Remove(era)
		}
		return balance
	}
	return s.NoEra.Dissolve(pts)
}

// TotalBalance sums the balance of every bucket.
func (s *SubPools) TotalBalance() *uint256.Int {
	total := tangle.Clone(s.NoEra.Balance)
	for _, p := range s.WithEra {
		total = tangle.SaturatingAdd(total, p.Pool.Balance)
	}
	return total
}

// TotalPoints sums the points of every bucket.
func (s *SubPools) TotalPoints() *uint256.Int {
	total := tangle.Clone(s.NoEra.Points)
	for _, p := range s.WithEra {
		total = tangle.SaturatingAdd(total, p.Pool.Points)
	}
	return total
}

// Eras lists the eras with a bucket, ascending.
func (s *SubPools) Eras() []uint32 {
	eras := make([]uint32, 0, len(s.WithEra))
	for _, p := range s.WithEra {
		eras = append(eras, p.Era)
	}
	return eras
}

// ApplySlash sets the balance of the buckets named in unlocking, as computed by
// SplitSlash. It returns the eras of buckets whose balance changed.
func (s *SubPools) ApplySlash(unlocking map[uint32]*uint256.Int) []uint32 {
	var changed []uint32
	for i := range s.WithEra {
		p := &s.WithEra[i]
		balance, ok := unlocking[p.Era]
		if !ok || p.Pool.Balance.Eq(balance) {
			continue
		}
		p.Pool.Balance = tangle.Clone(balance)
		changed = append(changed, p.Era)
	}
	return changed
}
