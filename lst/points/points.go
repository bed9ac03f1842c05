// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package points converts between pool points and the balance they represent.
// All conversions round down, in favour of the pool.
package points

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/tangle"
)

// InitRatio is the number of points issued per unit of balance into an empty pool.
const InitRatio = 1

// BalanceToPoint returns the points to issue for newFunds joining a pool that
// holds currentBalance against currentPoints.
func BalanceToPoint(currentBalance, currentPoints, newFunds *uint256.Int) *uint256.Int {
	switch {
	case currentPoints.IsZero():
		return tangle.SaturatingMul(newFunds, uint256.NewInt(InitRatio))
	case currentBalance.IsZero():
		// every point was slashed away, issue at the same scale as existing points
		return tangle.SaturatingMul(newFunds, currentPoints)
	default:
		return tangle.MulDiv(currentPoints, newFunds, currentBalance)
	}
}

// PointToBalance returns the balance backing points of a pool that holds
// currentBalance against currentPoints.
func PointToBalance(currentBalance, currentPoints, points *uint256.Int) *uint256.Int {
	if currentBalance.IsZero() || currentPoints.IsZero() || points.IsZero() {
		return new(uint256.Int)
	}
	return tangle.MulDiv(currentBalance, points, currentPoints)
}
