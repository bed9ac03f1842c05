// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package member

import (
	"slices"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// Status is the stage of a member in the bond/unbond/withdraw cycle.
type Status uint8

const (
	Active Status = iota
	PartiallyUnbonding
	FullyUnbonding
	Withdrawable
	Removed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case PartiallyUnbonding:
		return "partially-unbonding"
	case FullyUnbonding:
		return "fully-unbonding"
	case Withdrawable:
		return "withdrawable"
	case Removed:
		return "removed"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st := Active; st <= Removed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return errors.Errorf("unknown member status %q", text)
}

// Unbonding is an amount of points unlocking at Era.
type Unbonding struct {
	Era    uint32
	Points *uint256.Int
}

// Member is the stake of one account in one pool.
type Member struct {
	PoolID        uint32
	Account       tangle.Address
	Points        *uint256.Int // active points
	UnbondingEras []Unbonding  // ascending era
}

func New(poolID uint32, account tangle.Address) *Member {
	return &Member{
		PoolID:  poolID,
		Account: account,
		Points:  new(uint256.Int),
	}
}

// UnbondingPoints sums the points of every unbonding era.
func (m *Member) UnbondingPoints() *uint256.Int {
	sum := new(uint256.Int)
	for _, u := range m.UnbondingEras {
		sum = tangle.SaturatingAdd(sum, u.Points)
	}
	return sum
}

// TotalPoints is the active plus unbonding points.
func (m *Member) TotalPoints() *uint256.Int {
	return tangle.SaturatingAdd(m.Points, m.UnbondingPoints())
}

func (m *Member) Status(currentEra uint32) Status {
	active := !tangle.IsZero(m.Points)
	switch {
	case active && len(m.UnbondingEras) == 0:
		return Active
	case active:
		return PartiallyUnbonding
	case len(m.UnbondingEras) == 0:
		return Removed
	}
	for _, u := range m.UnbondingEras {
		if u.Era > currentEra {
			return FullyUnbonding
		}
	}
	return Withdrawable
}

// UnbondingAt returns the points unlocking at era.
func (m *Member) UnbondingAt(era uint32) *uint256.Int {
	if i, ok := m.find(era); ok {
		return m.UnbondingEras[i].Points
	}
	return new(uint256.Int)
}

func (m *Member) find(era uint32) (int, bool) {
	return slices.BinarySearchFunc(m.UnbondingEras, era, func(u Unbonding, era uint32) int {
		switch {
		case u.Era < era:
			return -1
		case u.Era > era:
			return 1
		}
		return 0
	})
}

// TryUnbond removes pts from the active points and records issued unbonding
// pool points unlocking at era. A new era fails once the member already has
// maxUnbonding entries.
func (m *Member) TryUnbond(pts, issued *uint256.Int, era uint32, maxUnbonding uint32) error {
	if tangle.IsZero(m.Points) {
		return reverts.ErrFullyUnbonding
	}
	if pts.Gt(m.Points) {
		return reverts.ErrNoBalanceToUnbond
	}

	i, found := m.find(era)
	if found {
		m.UnbondingEras[i].Points = tangle.SaturatingAdd(m.UnbondingEras[i].Points, issued)
	} else {
		if len(m.UnbondingEras) >= int(maxUnbonding) {
			return reverts.ErrMaxUnbondingLimit
		}
		m.UnbondingEras = slices.Insert(m.UnbondingEras, i, Unbonding{Era: era, Points: tangle.Clone(issued)})
	}
	m.Points = tangle.SaturatingSub(m.Points, pts)
	return nil
}

// WithdrawUnlocked removes and returns every entry with era <= currentEra.
func (m *Member) WithdrawUnlocked(currentEra uint32) []Unbonding {
	var (
		withdrawn []Unbonding
		kept      = m.UnbondingEras[:0]
	)
	for _, u := range m.UnbondingEras {
		if u.Era > currentEra {
			kept = append(kept, u)
		} else {
			withdrawn = append(withdrawn, u)
		}
	}
	m.UnbondingEras = kept
	if len(m.UnbondingEras) == 0 {
		m.UnbondingEras = nil
	}
	return withdrawn
}

// Copy returns a deep copy of the member.
func (m *Member) Copy() *Member {
	cpy := *m
	cpy.Points = tangle.Clone(m.Points)
	cpy.UnbondingEras = make([]Unbonding, 0, len(m.UnbondingEras))
	for _, u := range m.UnbondingEras {
		cpy.UnbondingEras = append(cpy.UnbondingEras, Unbonding{Era: u.Era, Points: tangle.Clone(u.Points)})
	}
	if len(cpy.UnbondingEras) == 0 {
		cpy.UnbondingEras = nil
	}
	return &cpy
}
