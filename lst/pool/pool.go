// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"slices"

	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/points"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// Pool is the bonded pool record.
type Pool struct {
	ID            uint32
	Points        *uint256.Int
	State         State
	Roles         Roles
	Commission    Commission
	Capacity      *uint256.Int
	BonusCycle    BonusCycle
	TokenID       uint64
	Name          []byte
	BonusesPaid   []uint32 // ascending
	MemberCounter uint32
}

// Floors are the minimum active balances a member must keep after a partial unbond.
type Floors struct {
	Depositor *uint256.Int
	Join      *uint256.Int
}

func New(id uint32, roles Roles, tokenID uint64, capacity *uint256.Int, cycle BonusCycle, name []byte) *Pool {
	return &Pool{
		ID:         id,
		Points:     new(uint256.Int),
		State:      Open,
		Roles:      roles,
		Capacity:   tangle.Clone(capacity),
		BonusCycle: cycle,
		TokenID:    tokenID,
		Name:       slices.Clone(name),
	}
}

// Copy returns a deep copy of the pool.
func (p *Pool) Copy() *Pool {
	cpy := *p
	cpy.Points = tangle.Clone(p.Points)
	cpy.Capacity = tangle.Clone(p.Capacity)
	cpy.Name = slices.Clone(p.Name)
	cpy.BonusesPaid = slices.Clone(p.BonusesPaid)
	return &cpy
}

func (p *Pool) IsRoot(who tangle.Address) bool {
	return is(p.Roles.Root, who)
}

func (p *Pool) IsBouncer(who tangle.Address) bool {
	return is(p.Roles.Bouncer, who)
}

func (p *Pool) CanUpdateRoles(who tangle.Address) bool {
	return p.IsRoot(who)
}

func (p *Pool) CanNominate(who tangle.Address) bool {
	return p.IsRoot(who) || is(p.Roles.Nominator, who)
}

func (p *Pool) CanKick(who tangle.Address) bool {
	return p.State == Blocked && (p.IsRoot(who) || p.IsBouncer(who))
}

func (p *Pool) CanToggleState(who tangle.Address) bool {
	return (p.IsRoot(who) || p.IsBouncer(who)) && !p.IsDestroying()
}

func (p *Pool) CanSetMetadata(who tangle.Address) bool {
	return p.IsRoot(who) || p.IsBouncer(who)
}

func (p *Pool) CanManageCommission(who tangle.Address) bool {
	return p.IsRoot(who)
}

func (p *Pool) IsDestroying() bool {
	return p.State == Destroying
}

// IsDestroyingAndOnlyDepositor returns whether the pool is destroying and the
// depositor holds every point left.
func (p *Pool) IsDestroyingAndOnlyDepositor(depositorPoints *uint256.Int) bool {
	return p.IsDestroying() && p.Points.Eq(depositorPoints)
}

// BalanceToPoint converts funds to points against the bonded stake.
func (p *Pool) BalanceToPoint(activeStake, funds *uint256.Int) *uint256.Int {
	return points.BalanceToPoint(activeStake, p.Points, funds)
}

// PointToBalance converts points to balance against the bonded stake.
func (p *Pool) PointToBalance(activeStake, pts *uint256.Int) *uint256.Int {
	return points.PointToBalance(activeStake, p.Points, pts)
}

// Issue adds the points worth funds and returns them. It must run before the
// funds are bonded.
func (p *Pool) Issue(activeStake, funds *uint256.Int) *uint256.Int {
	issued := p.BalanceToPoint(activeStake, funds)
	p.Points = tangle.SaturatingAdd(p.Points, issued)
	return issued
}

// Dissolve removes pts and returns the balance to unbond. It must run before the
// balance is unbonded.
func (p *Pool) Dissolve(activeStake, pts *uint256.Int) *uint256.Int {
	balance := p.PointToBalance(activeStake, pts)
	p.Points = tangle.SaturatingSub(p.Points, pts)
	return balance
}

// OkToBeOpen returns an error if the pool is unrecoverable and should be destroyed.
// Points may only inflate relative to the stake through slashing, the ratio is
// capped by maxPointsToBalance.
func (p *Pool) OkToBeOpen(activeStake *uint256.Int, maxPointsToBalance uint8) error {
	if p.IsDestroying() {
		return reverts.ErrCanNotChangeState
	}
	if tangle.IsZero(activeStake) {
		return reverts.ErrOverflowRisk
	}
	ratio := new(uint256.Int).Div(p.Points, activeStake)
	if !ratio.Lt(uint256.NewInt(uint64(maxPointsToBalance))) {
		return reverts.ErrOverflowRisk
	}
	return nil
}

// OkToJoin checks the pool can accept new funds.
func (p *Pool) OkToJoin(activeStake *uint256.Int, maxPointsToBalance uint8) error {
	if p.State != Open {
		return reverts.ErrNotOpen
	}
	return p.OkToBeOpen(activeStake, maxPointsToBalance)
}

// CheckCapacity checks the pool can hold newPoints in total.
func (p *Pool) CheckCapacity(newPoints *uint256.Int) error {
	if newPoints.Gt(p.Capacity) {
		return reverts.ErrCapacityExceeded
	}
	return nil
}

// RemainingCapacity is the number of points the pool can still issue.
func (p *Pool) RemainingCapacity() *uint256.Int {
	return tangle.SaturatingSub(p.Capacity, p.Points)
}

// OkToUnbondWith checks caller may unbond `unbonding` of the `active` points held by target.
func (p *Pool) OkToUnbondWith(caller, target tangle.Address, active, unbonding, activeStake *uint256.Int, floors Floors) error {
	permissioned := caller == target
	depositor := target == p.Roles.Depositor
	full := unbonding.Eq(active)

	if !permissioned && !full {
		return reverts.ErrPartialUnbondNotAllowedPermissionlessly
	}

	pointsAfter := tangle.SaturatingSub(active, unbonding)
	if !full {
		floor := floors.Join
		if depositor {
			floor = floors.Depositor
		}
		if p.PointToBalance(activeStake, pointsAfter).Lt(floor) {
			return reverts.ErrMinimumBondNotMet
		}
	}

	switch {
	case permissioned && !depositor:
	case permissioned && depositor:
		// the depositor leaves last, once the pool is destroying
		if !p.IsDestroyingAndOnlyDepositor(active) && full {
			return reverts.ErrMinimumBondNotMet
		}
	case !permissioned && !depositor:
		if !p.CanKick(caller) && !p.IsDestroying() {
			return reverts.ErrNotKickerOrDestroying
		}
	default:
		return reverts.ErrDoesNotHavePermission
	}
	return nil
}

// OkToWithdrawUnbondedWith checks caller may withdraw the unlocked funds of target.
func (p *Pool) OkToWithdrawUnbondedWith(caller, target tangle.Address) error {
	if caller != target && !p.CanKick(caller) && !p.IsDestroying() {
		return reverts.ErrNotKickerOrDestroying
	}
	return nil
}

// RecordBonusPaid records that the bonus of era is being paid. It returns false
// if it was already recorded. The history keeps historyDepth eras.
func (p *Pool) RecordBonusPaid(currentEra, era, historyDepth uint32) (bool, error) {
	var oldest uint32
	if currentEra > historyDepth {
		oldest = currentEra - historyDepth
	}
	// trim early only when out of space
	if historyDepth > 0 && len(p.BonusesPaid) >= int(historyDepth)-1 {
		p.BonusesPaid = slices.DeleteFunc(p.BonusesPaid, func(e uint32) bool { return e <= oldest })
	}

	pos, found := slices.BinarySearch(p.BonusesPaid, era)
	if found {
		return false, nil
	}
	if len(p.BonusesPaid) >= int(historyDepth) {
		return false, reverts.ErrBoundExceeded
	}
	p.BonusesPaid = slices.Insert(p.BonusesPaid, pos, era)
	p.BonusesPaid = slices.DeleteFunc(p.BonusesPaid, func(e uint32) bool { return e < oldest })
	return true, nil
}

// UpdateDurationBounds widens [lo, hi] to include the cycle duration.
func (p *Pool) UpdateDurationBounds(lo, hi *uint32) {
	d := p.BonusCycle.Duration()
	*lo = min(*lo, d)
	*hi = max(*hi, d)
}
