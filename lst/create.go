// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/member"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// CreateParams describes a new pool.
type CreateParams struct {
	TokenID   uint64
	Deposit   *uint256.Int
	Capacity  *uint256.Int
	Duration  uint32 // bonus cycle length in eras
	Root      tangle.Address
	Nominator tangle.Address
	Bouncer   tangle.Address
	Name      []byte
}

// Create creates a pool backed by the pool token held by who, bonding the
// deposit as its first member. It returns the id of the pool.
func (p *Pools) Create(who tangle.Address, params CreateParams) (uint32, error) {
	if err := p.checkMaxPools(); err != nil {
		return 0, err
	}
	last, err := p.poolService.LastID()
	if err != nil {
		return 0, err
	}
	if last == ^uint32(0) {
		return 0, reverts.ErrInvalidPoolID
	}
	// the id is only taken once the pool exists
	if err := p.create(who, last+1, params); err != nil {
		return 0, err
	}
	return p.poolService.NextID()
}

// CreateWithPoolID creates a pool reusing the id of a destroyed pool.
func (p *Pools) CreateWithPoolID(who tangle.Address, id uint32, params CreateParams) error {
	if err := p.checkMaxPools(); err != nil {
		return err
	}
	exists, err := p.poolService.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		return reverts.ErrPoolIDInUse
	}
	last, err := p.poolService.LastID()
	if err != nil {
		return err
	}
	if id == 0 || id >= last {
		return reverts.ErrInvalidPoolID
	}
	return p.create(who, id, params)
}

func (p *Pools) checkMaxPools() error {
	params, err := p.Params()
	if err != nil {
		return err
	}
	if params.MaxPools == nil {
		return nil
	}
	count, err := p.poolService.Count()
	if err != nil {
		return err
	}
	if count >= *params.MaxPools {
		return reverts.ErrMaxPools
	}
	return nil
}

func (p *Pools) create(who tangle.Address, id uint32, params CreateParams) error {
	logger.Debug("creating pool", "pool", id, "depositor", who, "token", params.TokenID, "deposit", params.Deposit)

	if params.Duration < p.cfg.MinDuration || params.Duration > p.cfg.MaxDuration {
		return reverts.ErrDurationOutOfBounds
	}
	minBond, err := p.DepositorMinBond()
	if err != nil {
		return err
	}
	if params.Deposit.Lt(minBond) {
		return reverts.ErrMinimumBondNotMet
	}
	if uint32(len(params.Name)) > p.cfg.MaxMetadataLen {
		return reverts.ErrMetadataExceedsMaxLen
	}

	owner, ok, err := p.assets.OwnerOf(params.TokenID)
	if err != nil {
		return err
	}
	if !ok || owner != who {
		return reverts.ErrTokenRequired
	}
	if _, used, err := p.poolService.PoolOfToken(params.TokenID); err != nil {
		return err
	} else if used {
		return reverts.ErrPoolTokenAlreadyInUse
	}
	if err := p.checkCapacity(params.TokenID, params.Capacity); err != nil {
		return err
	}

	currentEra, err := p.staking.CurrentEra()
	if err != nil {
		return err
	}
	root, nominator, bouncer := params.Root, params.Nominator, params.Bouncer
	roles := pool.Roles{Depositor: who, Root: &root, Nominator: &nominator, Bouncer: &bouncer}
	bp := pool.New(id, roles, params.TokenID, params.Capacity, pool.NewBonusCycle(currentEra, params.Duration), params.Name)

	points, err := p.bondFunds(bp, who, params.Deposit, true)
	if err != nil {
		return err
	}

	// the reward and bonus accounts are kept alive with the existential deposit
	ed := p.currency.ExistentialDeposit()
	if err := p.currency.Transfer(who, p.RewardAccount(id), ed, false); err != nil {
		return err
	}
	if err := p.currency.Transfer(who, p.BonusAccount(id), ed, false); err != nil {
		return err
	}

	if err := p.poolService.SetAccountLookup(p.BondedAccount(id), id); err != nil {
		return err
	}
	if err := p.poolService.SetTokenUsed(params.TokenID, id); err != nil {
		return err
	}

	m := member.New(id, who)
	m.Points = points
	if _, err := p.memberService.Set(m); err != nil {
		return err
	}
	bp.MemberCounter = 1
	if err := p.poolService.Set(bp); err != nil {
		return err
	}

	p.emit(events.Created{Depositor: who, PoolID: id})
	p.emit(events.Bonded{Member: who, PoolID: id, Bonded: tangle.Clone(params.Deposit), Joined: true})

	logger.Info("pool created", "pool", id, "depositor", who, "points", points)
	return nil
}

// checkCapacity checks capacity against the attribute of the pool token and
// the global maximum.
func (p *Pools) checkCapacity(tokenID uint64, capacity *uint256.Int) error {
	maxCapacity, err := p.maxPoolCapacity(tokenID)
	if err != nil {
		return err
	}
	if maxCapacity.Gt(p.cfg.GlobalMaxCapacity) {
		return reverts.ErrAttributeCapacityExceedsGlobalCapacity
	}
	if capacity.Gt(maxCapacity) {
		return reverts.ErrCapacityExceeded
	}
	return nil
}

func (p *Pools) maxPoolCapacity(tokenID uint64) (*uint256.Int, error) {
	value, ok, err := p.assets.Attribute(tokenID, CapacityAttribute)
	if err != nil {
		return nil, err
	}
	if !ok {
		return tangle.Clone(p.cfg.DefaultPoolCapacity), nil
	}
	capacity, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, reverts.ErrAttributeValueDecodeFailed
	}
	return capacity, nil
}

// bondFunds moves amount from who into the bonded account of the pool, issues
// the points it is worth and mints them as liquid staking tokens.
func (p *Pools) bondFunds(bp *pool.Pool, who tangle.Address, amount *uint256.Int, create bool) (*uint256.Int, error) {
	bonded := p.BondedAccount(bp.ID)
	active, err := p.staking.ActiveStake(bonded)
	if err != nil {
		return nil, err
	}
	points := bp.BalanceToPoint(active, amount)
	if err := bp.CheckCapacity(tangle.SaturatingAdd(bp.Points, points)); err != nil {
		return nil, err
	}

	// the depositor must stay alive to pay the existential deposits
	if err := p.currency.Transfer(who, bonded, amount, create); err != nil {
		return nil, err
	}
	// points are issued before the stake grows
	bp.Issue(active, amount)

	if create {
		err = p.staking.Bond(bonded, amount, p.RewardAccount(bp.ID))
	} else {
		err = p.staking.BondExtra(bonded, amount)
	}
	if err != nil {
		return nil, err
	}
	if err := p.addTVL(amount); err != nil {
		return nil, err
	}
	if err := p.assets.MintInto(bp.ID, who, points); err != nil {
		return nil, err
	}
	return points, nil
}
