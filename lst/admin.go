// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"slices"

	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// SetState changes the state of the pool. Destroying is final. Anyone may
// set a pool that can no longer be open to Destroying.
func (p *Pools) SetState(caller tangle.Address, poolID uint32, state pool.State) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if bp.IsDestroying() {
		return reverts.ErrCanNotChangeState
	}
	if !bp.CanToggleState(caller) {
		active, err := p.ActiveStake(poolID)
		if err != nil {
			return err
		}
		if bp.OkToBeOpen(active, MaxPointsToBalance) == nil || state != pool.Destroying {
			return reverts.ErrCanNotChangeState
		}
	}
	if bp.State == state {
		return nil
	}
	bp.State = state
	if err := p.poolService.Set(bp); err != nil {
		return err
	}
	p.emit(events.StateChanged{PoolID: poolID, NewState: state.String()})
	logger.Info("pool state changed", "pool", poolID, "state", state)
	return nil
}

// SetMetadata sets the name of the pool.
func (p *Pools) SetMetadata(caller tangle.Address, poolID uint32, name []byte) error {
	if uint32(len(name)) > p.cfg.MaxMetadataLen {
		return reverts.ErrMetadataExceedsMaxLen
	}
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if !bp.CanSetMetadata(caller) {
		return reverts.ErrDoesNotHavePermission
	}
	bp.Name = slices.Clone(name)
	if err := p.poolService.Set(bp); err != nil {
		return err
	}
	p.emit(events.MetadataUpdated{PoolID: poolID, PoolName: string(name)})
	return nil
}

// UpdateRoles changes the roles of the pool. The root and the admin may do so.
func (p *Pools) UpdateRoles(caller tangle.Address, poolID uint32, root, nominator, bouncer pool.ConfigOp[tangle.Address]) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if caller != p.cfg.Admin && !bp.CanUpdateRoles(caller) {
		return reverts.ErrDoesNotHavePermission
	}
	root.Apply(&bp.Roles.Root)
	nominator.Apply(&bp.Roles.Nominator)
	bouncer.Apply(&bp.Roles.Bouncer)
	if err := p.poolService.Set(bp); err != nil {
		return err
	}
	p.emit(events.RolesUpdated{
		PoolID:    poolID,
		Root:      bp.Roles.Root,
		Bouncer:   bp.Roles.Bouncer,
		Nominator: bp.Roles.Nominator,
	})
	logger.Info("roles updated", "pool", poolID)
	return nil
}

// Nominate sets the validators backed by the pool.
func (p *Pools) Nominate(caller tangle.Address, poolID uint32, validators []tangle.Address) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if !bp.CanNominate(caller) {
		return reverts.ErrNotNominator
	}
	return p.staking.Nominate(p.BondedAccount(poolID), validators)
}

// Chill stops the pool from nominating.
func (p *Pools) Chill(caller tangle.Address, poolID uint32) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if !bp.CanNominate(caller) {
		return reverts.ErrNotNominator
	}
	return p.staking.Chill(p.BondedAccount(poolID))
}

// SetCommission sets the current commission of the pool, nil removes it.
func (p *Pools) SetCommission(caller tangle.Address, poolID uint32, rate *tangle.Perbill) error {
	return p.manageCommission(caller, poolID, func(bp *pool.Pool) error {
		return p.setCommission(bp, rate)
	})
}

// SetCommissionMax lowers the maximum commission of the pool.
func (p *Pools) SetCommissionMax(caller tangle.Address, poolID uint32, maxRate tangle.Perbill) error {
	return p.manageCommission(caller, poolID, func(bp *pool.Pool) error {
		return p.setCommissionMax(bp, maxRate)
	})
}

// SetCommissionChangeRate restricts how fast the commission of the pool may change.
func (p *Pools) SetCommissionChangeRate(caller tangle.Address, poolID uint32, rate pool.ChangeRate) error {
	return p.manageCommission(caller, poolID, func(bp *pool.Pool) error {
		return p.setCommissionChangeRate(bp, rate)
	})
}

func (p *Pools) manageCommission(caller tangle.Address, poolID uint32, update func(*pool.Pool) error) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if !bp.CanManageCommission(caller) {
		return reverts.ErrDoesNotHavePermission
	}
	if err := update(bp); err != nil {
		return err
	}
	return p.poolService.Set(bp)
}

func (p *Pools) setCommission(bp *pool.Pool, rate *tangle.Perbill) error {
	globalMax, err := p.globalMaxCommission()
	if err != nil {
		return err
	}
	if err := bp.Commission.TryUpdateCurrent(rate, p.block, globalMax); err != nil {
		return err
	}
	p.emit(events.PoolCommissionUpdated{PoolID: bp.ID, Current: bp.Commission.Current})
	return nil
}

func (p *Pools) setCommissionMax(bp *pool.Pool, maxRate tangle.Perbill) error {
	globalMax, err := p.globalMaxCommission()
	if err != nil {
		return err
	}
	lowered, err := bp.Commission.TryUpdateMax(maxRate, p.block, globalMax)
	if err != nil {
		return err
	}
	p.emit(events.PoolMaxCommissionUpdated{PoolID: bp.ID, MaxCommission: maxRate})
	if lowered {
		p.emit(events.PoolCommissionUpdated{PoolID: bp.ID, Current: bp.Commission.Current})
	}
	return nil
}

func (p *Pools) setCommissionChangeRate(bp *pool.Pool, rate pool.ChangeRate) error {
	if err := bp.Commission.TryUpdateChangeRate(rate, p.block); err != nil {
		return err
	}
	p.emit(events.PoolCommissionChangeRateUpdated{PoolID: bp.ID, MaxDelta: rate.MaxDelta, MinDelay: rate.MinDelay})
	return nil
}

// PoolMutation changes several settings of a pool at once. Nil fields are kept.
type PoolMutation struct {
	Duration      *uint32 // applies when the current bonus cycle ends
	Capacity      *uint256.Int
	Name          []byte
	NewCommission pool.ConfigOp[tangle.Perbill]
	MaxCommission *tangle.Perbill
	ChangeRate    *pool.ChangeRate
}

func (m *PoolMutation) isNoop() bool {
	return m.Duration == nil &&
		m.Capacity == nil &&
		m.Name == nil &&
		m.NewCommission.IsNoop() &&
		m.MaxCommission == nil &&
		m.ChangeRate == nil
}

// Mutate applies the mutation. The root and the pool token holder may mutate
// the pool.
func (p *Pools) Mutate(caller tangle.Address, poolID uint32, mutation PoolMutation) error {
	logger.Debug("mutating pool", "pool", poolID, "caller", caller)

	if mutation.isNoop() {
		return reverts.ErrNoopMutation
	}
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	owner, ok, err := p.assets.OwnerOf(bp.TokenID)
	if err != nil {
		return err
	}
	if !bp.IsRoot(caller) && !(ok && owner == caller) {
		return reverts.ErrDoesNotHavePermission
	}

	if mutation.Duration != nil {
		d := *mutation.Duration
		if d < p.cfg.MinDuration || d > p.cfg.MaxDuration {
			return reverts.ErrDurationOutOfBounds
		}
		bp.BonusCycle.PendingDuration = &d
	}

	if mutation.Capacity != nil {
		if err := p.checkCapacityMutation(bp, mutation.Capacity); err != nil {
			return err
		}
		bp.Capacity = tangle.Clone(mutation.Capacity)
	}

	if mutation.Name != nil {
		if uint32(len(mutation.Name)) > p.cfg.MaxMetadataLen {
			return reverts.ErrMetadataExceedsMaxLen
		}
		bp.Name = slices.Clone(mutation.Name)
	}

	if mutation.MaxCommission != nil {
		if err := p.setCommissionMax(bp, *mutation.MaxCommission); err != nil {
			return err
		}
	}
	if mutation.ChangeRate != nil {
		if err := p.setCommissionChangeRate(bp, *mutation.ChangeRate); err != nil {
			return err
		}
	}
	switch mutation.NewCommission.Kind {
	case pool.OpSet:
		rate := mutation.NewCommission.Value
		if err := p.setCommission(bp, &rate); err != nil {
			return err
		}
	case pool.OpRemove:
		if err := p.setCommission(bp, nil); err != nil {
			return err
		}
	}

	if err := p.poolService.Set(bp); err != nil {
		return err
	}
	p.emit(events.PoolMutated{
		PoolID:   poolID,
		Duration: mutation.Duration != nil,
		Capacity: mutation.Capacity != nil,
		Renamed:  mutation.Name != nil,
	})
	logger.Info("pool mutated", "pool", poolID)
	return nil
}

// checkCapacityMutation checks the capacity may change now and still covers
// the issued points and the validator bonds of the nominations.
func (p *Pools) checkCapacityMutation(bp *pool.Pool, capacity *uint256.Int) error {
	currentEra, err := p.staking.CurrentEra()
	if err != nil {
		return err
	}
	if currentEra > bp.BonusCycle.Start+CapacityMutationPeriod.Get() {
		return reverts.ErrCapacityMutationRestricted
	}
	if capacity.Lt(bp.Points) {
		return reverts.ErrCapacityExceeded
	}
	nominations, err := p.staking.Nominations(p.BondedAccount(bp.ID))
	if err != nil {
		return err
	}
	required := tangle.SaturatingMul(p.staking.MinimumValidatorBond(), uint256.NewInt(uint64(len(nominations))))
	if capacity.Lt(required) {
		return reverts.ErrCapacityExceeded
	}
	return p.checkCapacity(bp.TokenID, capacity)
}

// SetConfigs updates the global parameters. Only the admin may call it.
func (p *Pools) SetConfigs(caller tangle.Address, update ParamsUpdate) error {
	if caller != p.cfg.Admin {
		return reverts.ErrDoesNotHavePermission
	}
	params, err := p.Params()
	if err != nil {
		return err
	}
	update.apply(params)
	if err := p.params.Upsert(params); err != nil {
		return err
	}
	logger.Info("global params updated", "minJoinBond", params.MinJoinBond, "minCreateBond", params.MinCreateBond)
	return nil
}
