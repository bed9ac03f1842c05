// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subpools

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/points"
	"github.com/tangle-network/lst/tangle"
)

// UnbondPool is a bucket of balance leaving the bonded pool, accounted in its own points.
type UnbondPool struct {
	Points  *uint256.Int
	Balance *uint256.Int
}

// NewUnbondPool returns an empty bucket.
func NewUnbondPool() *UnbondPool {
	return &UnbondPool{Points: new(uint256.Int), Balance: new(uint256.Int)}
}

func (p *UnbondPool) normalize() {
	if p.Points == nil {
		p.Points = new(uint256.Int)
	}
	if p.Balance == nil {
		p.Balance = new(uint256.Int)
	}
}

// IsEmpty returns true when the bucket holds neither points nor balance.
func (p *UnbondPool) IsEmpty() bool {
	return tangle.IsZero(p.Points) && tangle.IsZero(p.Balance)
}

// BalanceToPoint converts funds into bucket points at the current ratio.
func (p *UnbondPool) BalanceToPoint(funds *uint256.Int) *uint256.Int {
	p.normalize()
	return points.BalanceToPoint(p.Balance, p.Points, funds)
}

// PointToBalance converts bucket points into balance at the current ratio.
func (p *UnbondPool) PointToBalance(pts *uint256.Int) *uint256.Int {
	p.normalize()
	return points.PointToBalance(p.Balance, p.Points, pts)
}

// Issue adds funds to the bucket and returns the points issued for them.
func (p *UnbondPool) Issue(funds *uint256.Int) *uint256.Int {
	issued := p.BalanceToPoint(funds)
	p.Points = tangle.SaturatingAdd(p.Points, issued)
	p.Balance = tangle.SaturatingAdd(p.Balance, funds)
	return issued
}

// Dissolve removes points and returns the balance they were worth.
func (p *UnbondPool) Dissolve(pts *uint256.Int) *uint256.Int {
	balance := p.PointToBalance(pts)
	p.Points = tangle.SaturatingSub(p.Points, pts)
	p.Balance = tangle.SaturatingSub(p.Balance, balance)
	return balance
}

// Merge folds other into p, summing points and balance.
func (p *UnbondPool) Merge(other *UnbondPool) {
	p.normalize()
	other.normalize()
	p.Points = tangle.SaturatingAdd(p.Points, other.Points)
	p.Balance = tangle.SaturatingAdd(p.Balance, other.Balance)
}
