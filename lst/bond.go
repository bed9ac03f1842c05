// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/member"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// BondValue is the amount to bond, or Fill to bond whatever fills the pool.
type BondValue struct {
	Amount *uint256.Int
	Fill   bool
}

func BondAmount(amount *uint256.Int) BondValue {
	return BondValue{Amount: amount}
}

func BondFill() BondValue {
	return BondValue{Fill: true}
}

// Bond adds funds of who to the pool, joining it if who is not a member yet.
func (p *Pools) Bond(who tangle.Address, poolID uint32, value BondValue) error {
	logger.Debug("bonding", "pool", poolID, "member", who, "fill", value.Fill, "amount", value.Amount)

	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	active, err := p.ActiveStake(poolID)
	if err != nil {
		return err
	}

	amount := value.Amount
	if value.Fill {
		amount = bp.PointToBalance(active, bp.RemainingCapacity())
		if amount.IsZero() {
			return reverts.ErrCapacityExceeded
		}
	}
	if amount == nil || amount.IsZero() {
		return reverts.ErrMinimumBondNotMet
	}

	m, err := p.memberService.Get(poolID, who)
	if err != nil {
		return err
	}
	joined := m == nil
	if joined {
		params, err := p.Params()
		if err != nil {
			return err
		}
		if amount.Lt(params.MinJoinBond) {
			return reverts.ErrMinimumBondNotMet
		}
		if err := bp.OkToJoin(active, MaxPointsToBalance); err != nil {
			return err
		}
		m = member.New(poolID, who)
	} else if err := bp.OkToBeOpen(active, MaxPointsToBalance); err != nil {
		return err
	}

	points, err := p.bondFunds(bp, who, amount, false)
	if err != nil {
		return err
	}
	m.Points = tangle.SaturatingAdd(m.Points, points)
	isNew, err := p.memberService.Set(m)
	if err != nil {
		return err
	}
	if isNew {
		bp.MemberCounter++
	}
	if err := p.poolService.Set(bp); err != nil {
		return err
	}

	p.emit(events.Bonded{Member: who, PoolID: poolID, Bonded: tangle.Clone(amount), Joined: joined})
	logger.Info("bonded", "pool", poolID, "member", who, "amount", amount, "points", points)
	return nil
}
