// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// Unbond starts unbonding points of the member. The balance they are worth
// moves into the unbonding bucket of the era it unlocks at.
func (p *Pools) Unbond(caller tangle.Address, poolID uint32, memberAccount tangle.Address, points *uint256.Int) error {
	logger.Debug("unbonding", "pool", poolID, "member", memberAccount, "caller", caller, "points", points)

	m, err := p.memberService.Get(poolID, memberAccount)
	if err != nil {
		return err
	}
	if m == nil {
		return reverts.ErrPoolMemberNotFound
	}
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	currentEra, err := p.staking.CurrentEra()
	if err != nil {
		return err
	}

	// pending rewards are reinvested before the points are valued
	if currentEra > 0 {
		if err := p.maybeEndEra(bp, currentEra, currentEra-1); err != nil {
			return err
		}
	}

	if m.Points.IsZero() {
		return reverts.ErrFullyUnbonding
	}
	if points.IsZero() || points.Gt(m.Points) {
		return reverts.ErrNoBalanceToUnbond
	}

	bonded := p.BondedAccount(poolID)
	active, err := p.staking.ActiveStake(bonded)
	if err != nil {
		return err
	}
	params, err := p.Params()
	if err != nil {
		return err
	}
	depositorMin, err := p.DepositorMinBond()
	if err != nil {
		return err
	}
	floors := pool.Floors{Depositor: depositorMin, Join: params.MinJoinBond}
	if err := bp.OkToUnbondWith(caller, memberAccount, m.Points, points, active, floors); err != nil {
		return err
	}

	unbondEra := currentEra + p.staking.BondingDuration()
	balance := bp.Dissolve(active, points)
	if err := p.staking.Unbond(bonded, balance); err != nil {
		return err
	}

	window := PostUnbondingPoolsWindow.Get()
	sp, err := p.subPoolsService.GetOrDefault(poolID)
	if err != nil {
		return err
	}
	sp.MaybeMergePools(currentEra, window)
	bucket, err := sp.Insert(unbondEra, p.staking.BondingDuration()+window)
	if err != nil {
		return err
	}
	issued := bucket.Issue(balance)

	if err := m.TryUnbond(points, issued, unbondEra, p.cfg.MaxUnbonding); err != nil {
		return err
	}
	if err := p.assets.BurnFrom(poolID, memberAccount, points); err != nil {
		return err
	}

	if err := p.subPoolsService.Set(poolID, sp); err != nil {
		return err
	}
	if _, err := p.memberService.Set(m); err != nil {
		return err
	}
	if err := p.poolService.Set(bp); err != nil {
		return err
	}

	p.emit(events.Unbonded{Member: memberAccount, PoolID: poolID, Balance: balance, Points: issued, Era: unbondEra})
	logger.Info("unbonded", "pool", poolID, "member", memberAccount, "balance", balance, "era", unbondEra)
	return nil
}

// WithdrawUnbonded pays out the unlocked unbonding entries of the member. A
// member left without points is removed, and the pool is dissolved when that
// member is the depositor. Nothing matured yet is a no-op; a member with
// nothing unbonding at all gets ErrCannotWithdrawAny.
func (p *Pools) WithdrawUnbonded(caller tangle.Address, poolID uint32, memberAccount tangle.Address, spans uint32) error {
	logger.Debug("withdrawing unbonded", "pool", poolID, "member", memberAccount, "caller", caller)

	m, err := p.memberService.Get(poolID, memberAccount)
	if err != nil {
		return err
	}
	if m == nil {
		return reverts.ErrPoolMemberNotFound
	}
	bp, err := p.poolService.Get(poolID)
	if err != nil {
		return err
	}
	if bp == nil {
		return reverts.Defensive(reverts.PoolNotFound)
	}
	sp, err := p.subPoolsService.Get(poolID)
	if err != nil {
		return err
	}
	if sp == nil {
		return reverts.ErrSubPoolsNotFound
	}
	if err := bp.OkToWithdrawUnbondedWith(caller, memberAccount); err != nil {
		return err
	}

	currentEra, err := p.staking.CurrentEra()
	if err != nil {
		return err
	}
	if m.UnbondingPoints().IsZero() {
		return reverts.ErrCannotWithdrawAny
	}
	withdrawn := m.WithdrawUnlocked(currentEra)
	if len(withdrawn) == 0 {
		logger.Debug("nothing unlocked yet", "pool", poolID, "member", memberAccount, "era", currentEra)
		return nil
	}

	isDepositor := memberAccount == bp.Roles.Depositor
	bonded := p.BondedAccount(poolID)
	// withdraw first so the transferable balance is up to date
	killed, err := p.staking.WithdrawUnbonded(bonded, spans)
	if err != nil {
		return err
	}
	if killed && !isDepositor {
		return reverts.Defensive(reverts.BondedStashKilledPrematurely)
	}

	var (
		points  = new(uint256.Int)
		balance = new(uint256.Int)
	)
	for _, u := range withdrawn {
		points = tangle.SaturatingAdd(points, u.Points)
		balance = tangle.SaturatingAdd(balance, sp.DissolveFrom(u.Era, u.Points))
	}
	// the buckets may hold more than the stash after it was dusted
	transferable, err := p.currency.TransferableBalance(bonded)
	if err != nil {
		return err
	}
	balance = tangle.Min(balance, transferable)

	recipient := memberAccount
	if isDepositor {
		if recipient, err = p.tokenOwner(bp); err != nil {
			return err
		}
	}
	if err := p.currency.Transfer(bonded, recipient, balance, false); err != nil {
		return err
	}
	if err := p.subTVL(balance); err != nil {
		return err
	}
	p.emit(events.Withdrawn{Member: recipient, PoolID: poolID, Balance: balance, Points: points})

	if !m.TotalPoints().IsZero() {
		if err := p.subPoolsService.Set(poolID, sp); err != nil {
			return err
		}
		if _, err := p.memberService.Set(m); err != nil {
			return err
		}
		logger.Info("withdrawn", "pool", poolID, "member", memberAccount, "balance", balance)
		return nil
	}

	if err := p.memberService.Remove(poolID, memberAccount); err != nil {
		return err
	}
	if bp.MemberCounter > 0 {
		bp.MemberCounter--
	}
	p.emit(events.MemberRemoved{PoolID: poolID, Member: memberAccount})

	if isDepositor {
		logger.Info("depositor withdrawn", "pool", poolID, "balance", balance)
		return p.dissolvePool(bp, recipient)
	}
	if err := p.subPoolsService.Set(poolID, sp); err != nil {
		return err
	}
	if err := p.poolService.Set(bp); err != nil {
		return err
	}
	logger.Info("member removed", "pool", poolID, "member", memberAccount, "balance", balance)
	return nil
}

// PoolWithdrawUnbonded releases the unlocked chunks of the bonded account so
// the funds become transferable for the members.
func (p *Pools) PoolWithdrawUnbonded(poolID uint32, spans uint32) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if bp.IsDestroying() {
		return reverts.ErrNotDestroying
	}
	if _, err := p.staking.WithdrawUnbonded(p.BondedAccount(poolID), spans); err != nil {
		return err
	}
	logger.Debug("pool withdrawn unbonded", "pool", poolID)
	return nil
}
