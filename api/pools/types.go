// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/member"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/subpools"
	"github.com/tangle-network/lst/tangle"
)

type Roles struct {
	Depositor tangle.Address  `json:"depositor"`
	Root      *tangle.Address `json:"root"`
	Nominator *tangle.Address `json:"nominator"`
	Bouncer   *tangle.Address `json:"bouncer"`
}

type ChangeRate struct {
	MaxDelta tangle.Perbill `json:"maxDelta"`
	MinDelay uint64         `json:"minDelay"`
}

type Commission struct {
	Current      *tangle.Perbill `json:"current"`
	Max          *tangle.Perbill `json:"max"`
	ChangeRate   *ChangeRate     `json:"changeRate"`
	ThrottleFrom *uint64         `json:"throttleFrom"`
}

type BonusCycle struct {
	Start           uint32  `json:"start"`
	End             uint32  `json:"end"`
	PendingDuration *uint32 `json:"pendingDuration"`
}

type Accounts struct {
	Bonded tangle.Address `json:"bonded"`
	Reward tangle.Address `json:"reward"`
	Bonus  tangle.Address `json:"bonus"`
}

// Summary is a pool as listed by GET /pools.
type Summary struct {
	ID            uint32       `json:"id"`
	Name          string       `json:"name"`
	State         pool.State   `json:"state"`
	Points        *uint256.Int `json:"points"`
	ActiveStake   *uint256.Int `json:"activeStake"`
	Capacity      *uint256.Int `json:"capacity"`
	MemberCounter uint32       `json:"memberCounter"`
}

type Pool struct {
	Summary
	TokenID     uint64     `json:"tokenId"`
	Roles       Roles      `json:"roles"`
	Commission  Commission `json:"commission"`
	BonusCycle  BonusCycle `json:"bonusCycle"`
	BonusesPaid []uint32   `json:"bonusesPaid"`
	Accounts    Accounts   `json:"accounts"`
}

func convertSummary(bp *pool.Pool, active *uint256.Int) Summary {
	return Summary{
		ID:            bp.ID,
		Name:          string(bp.Name),
		State:         bp.State,
		Points:        bp.Points,
		ActiveStake:   active,
		Capacity:      bp.Capacity,
		MemberCounter: bp.MemberCounter,
	}
}

func convertPool(bp *pool.Pool, active *uint256.Int, accounts Accounts) *Pool {
	p := &Pool{
		Summary: convertSummary(bp, active),
		TokenID: bp.TokenID,
		Roles: Roles{
			Depositor: bp.Roles.Depositor,
			Root:      bp.Roles.Root,
			Nominator: bp.Roles.Nominator,
			Bouncer:   bp.Roles.Bouncer,
		},
		Commission: Commission{
			Current:      bp.Commission.Current,
			Max:          bp.Commission.Max,
			ThrottleFrom: bp.Commission.ThrottleFrom,
		},
		BonusCycle: BonusCycle{
			Start:           bp.BonusCycle.Start,
			End:             bp.BonusCycle.End,
			PendingDuration: bp.BonusCycle.PendingDuration,
		},
		BonusesPaid: bp.BonusesPaid,
		Accounts:    accounts,
	}
	if cr := bp.Commission.ChangeRate; cr != nil {
		p.Commission.ChangeRate = &ChangeRate{MaxDelta: cr.MaxDelta, MinDelay: cr.MinDelay}
	}
	if p.BonusesPaid == nil {
		p.BonusesPaid = []uint32{}
	}
	return p
}

type Unbonding struct {
	Era    uint32       `json:"era"`
	Points *uint256.Int `json:"points"`
}

type Member struct {
	PoolID    uint32         `json:"poolId"`
	Account   tangle.Address `json:"account"`
	Status    member.Status  `json:"status"`
	Points    *uint256.Int   `json:"points"`
	Balance   *uint256.Int   `json:"balance"`
	Unbonding []Unbonding    `json:"unbonding"`
}

func convertMember(m *member.Member, balance *uint256.Int, currentEra uint32) *Member {
	unbonding := make([]Unbonding, 0, len(m.UnbondingEras))
	for _, u := range m.UnbondingEras {
		unbonding = append(unbonding, Unbonding{Era: u.Era, Points: u.Points})
	}
	return &Member{
		PoolID:    m.PoolID,
		Account:   m.Account,
		Status:    m.Status(currentEra),
		Points:    m.Points,
		Balance:   balance,
		Unbonding: unbonding,
	}
}

type UnbondPool struct {
	Era     *uint32      `json:"era"`
	Points  *uint256.Int `json:"points"`
	Balance *uint256.Int `json:"balance"`
}

// SubPools lists the unbonding buckets, the merged bucket first.
type SubPools []UnbondPool

func convertSubPools(sp *subpools.SubPools) SubPools {
	res := SubPools{}
	if sp == nil {
		return res
	}
	if sp.NoEra != nil && !sp.NoEra.IsEmpty() {
		res = append(res, UnbondPool{Points: sp.NoEra.Points, Balance: sp.NoEra.Balance})
	}
	for _, ep := range sp.WithEra {
		era := ep.Era
		res = append(res, UnbondPool{Era: &era, Points: ep.Pool.Points, Balance: ep.Pool.Balance})
	}
	return res
}

type Params struct {
	MinJoinBond         *uint256.Int    `json:"minJoinBond"`
	MinCreateBond       *uint256.Int    `json:"minCreateBond"`
	MaxPools            *uint32         `json:"maxPools"`
	GlobalMaxCommission *tangle.Perbill `json:"globalMaxCommission"`
	DepositorMinBond    *uint256.Int    `json:"depositorMinBond"`
	TotalValueLocked    *uint256.Int    `json:"totalValueLocked"`
}
