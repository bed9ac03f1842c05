// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/lst/member"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/tangle"
)

// TryState checks the consistency of every pool and returns the first
// violation found.
func (p *Pools) TryState() error {
	params, err := p.Params()
	if err != nil {
		return err
	}
	ids, err := p.poolService.IDs()
	if err != nil {
		return err
	}
	if params.MaxPools != nil && uint32(len(ids)) > *params.MaxPools {
		return errors.Errorf("%d pools exceed the maximum of %d", len(ids), *params.MaxPools)
	}
	for _, id := range ids {
		bp, err := p.existingPool(id)
		if err != nil {
			return err
		}
		if err := p.tryPoolState(bp); err != nil {
			return errors.Wrapf(err, "pool %d\n%s", id, spew.Sdump(bp))
		}
	}
	return p.tryOrphans(ids)
}

// tryOrphans checks no sub-pools or members are left behind for ids without
// a bonded pool. Every id ever allocated is at most the last id.
func (p *Pools) tryOrphans(ids []uint32) error {
	last, err := p.poolService.LastID()
	if err != nil {
		return err
	}
	exists := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		exists[id] = true
	}
	for id := uint32(1); id != 0 && id <= last; id++ {
		if exists[id] {
			continue
		}
		sp, err := p.subPoolsService.Get(id)
		if err != nil {
			return err
		}
		if sp != nil {
			return errors.Errorf("sub-pools of pool %d without a bonded pool", id)
		}
		count, err := p.memberService.Count(id)
		if err != nil {
			return err
		}
		if count != 0 {
			return errors.Errorf("%d members of pool %d without a bonded pool", count, id)
		}
	}
	return nil
}

func (p *Pools) tryPoolState(bp *pool.Pool) error {
	bonded := p.BondedAccount(bp.ID)
	if id, ok, err := p.poolService.PoolOfAccount(bonded); err != nil {
		return err
	} else if !ok || id != bp.ID {
		return errors.New("bonded account lookup mismatch")
	}
	if id, ok, err := p.poolService.PoolOfToken(bp.TokenID); err != nil {
		return err
	} else if !ok || id != bp.ID {
		return errors.New("pool token lookup mismatch")
	}

	sp, err := p.subPoolsService.GetOrDefault(bp.ID)
	if err != nil {
		return err
	}

	var (
		count     uint32
		active    = new(uint256.Int)
		noEra     = new(uint256.Int)
		withEra   = make(map[uint32]*uint256.Int)
		depositor bool
	)
	if err := p.memberService.Iter(bp.ID, func(m *member.Member) error {
		count++
		if m.Account == bp.Roles.Depositor {
			depositor = true
		}
		active = tangle.SaturatingAdd(active, m.Points)
		lst, err := p.assets.BalanceOf(bp.ID, m.Account)
		if err != nil {
			return err
		}
		if !lst.Eq(m.Points) {
			return errors.Errorf("member %v holds %v lst for %v points", m.Account, lst, m.Points)
		}
		for _, u := range m.UnbondingEras {
			if sp.Bucket(u.Era) == nil {
				noEra = tangle.SaturatingAdd(noEra, u.Points)
				continue
			}
			withEra[u.Era] = tangle.SaturatingAdd(orZero(withEra[u.Era]), u.Points)
		}
		return nil
	}); err != nil {
		return err
	}

	if !depositor {
		return errors.New("depositor is not a member")
	}
	if count != bp.MemberCounter {
		return errors.Errorf("member counter %d, counted %d", bp.MemberCounter, count)
	}
	if !active.Eq(bp.Points) {
		return errors.Errorf("member points %v, pool points %v", active, bp.Points)
	}
	supply, err := p.assets.TotalIssuance(bp.ID)
	if err != nil {
		return err
	}
	if !supply.Eq(bp.Points) {
		return errors.Errorf("lst supply %v, pool points %v", supply, bp.Points)
	}

	if !noEra.Eq(sp.NoEra.Points) {
		return errors.Errorf("no era bucket points %v, member points %v", sp.NoEra.Points, noEra)
	}
	for _, era := range sp.Eras() {
		if got := orZero(withEra[era]); !got.Eq(sp.Bucket(era).Points) {
			return errors.Errorf("era %d bucket points %v, member points %v", era, sp.Bucket(era).Points, got)
		}
	}

	// the buckets and the active stake never exceed what the bonded account holds
	stake, err := p.staking.ActiveStake(bonded)
	if err != nil {
		return err
	}
	free, err := p.currency.FreeBalance(bonded)
	if err != nil {
		return err
	}
	if tangle.SaturatingAdd(stake, sp.TotalBalance()).Gt(free) {
		return errors.Errorf("active %v and unbonding %v exceed the bonded balance %v", stake, sp.TotalBalance(), free)
	}
	return nil
}
