// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/tangle"
)

// ConfigOp updates an optional setting. Neither field set keeps it.
type ConfigOp[T any] struct {
	Set    *T   `json:"set"`
	Remove bool `json:"remove"`
}

func (o *ConfigOp[T]) convert() pool.ConfigOp[T] {
	switch {
	case o == nil:
		return pool.Noop[T]()
	case o.Remove:
		return pool.Remove[T]()
	case o.Set != nil:
		return pool.Set(*o.Set)
	}
	return pool.Noop[T]()
}

type Create struct {
	Caller    tangle.Address `json:"caller"`
	PoolID    *uint32        `json:"poolId"`
	TokenID   uint64         `json:"tokenId"`
	Deposit   *uint256.Int   `json:"deposit"`
	Capacity  *uint256.Int   `json:"capacity"`
	Duration  uint32         `json:"duration"`
	Root      tangle.Address `json:"root"`
	Nominator tangle.Address `json:"nominator"`
	Bouncer   tangle.Address `json:"bouncer"`
	Name      string         `json:"name"`
}

func (c *Create) params() lst.CreateParams {
	return lst.CreateParams{
		TokenID:   c.TokenID,
		Deposit:   orZero(c.Deposit),
		Capacity:  orZero(c.Capacity),
		Duration:  c.Duration,
		Root:      c.Root,
		Nominator: c.Nominator,
		Bouncer:   c.Bouncer,
		Name:      []byte(c.Name),
	}
}

type Bond struct {
	Caller tangle.Address `json:"caller"`
	PoolID uint32         `json:"poolId"`
	Amount *uint256.Int   `json:"amount"`
	// Fill bonds what is left of the pool capacity.
	Fill bool `json:"fill"`
}

type Unbond struct {
	Caller tangle.Address `json:"caller"`
	PoolID uint32         `json:"poolId"`
	Member tangle.Address `json:"member"`
	Points *uint256.Int   `json:"points"`
}

type Withdraw struct {
	Caller tangle.Address `json:"caller"`
	PoolID uint32         `json:"poolId"`
	Member tangle.Address `json:"member"`
	Spans  uint32         `json:"spans"`
}

type PoolWithdraw struct {
	PoolID uint32 `json:"poolId"`
	Spans  uint32 `json:"spans"`
}

type SetState struct {
	Caller tangle.Address `json:"caller"`
	PoolID uint32         `json:"poolId"`
	State  pool.State     `json:"state"`
}

type SetMetadata struct {
	Caller tangle.Address `json:"caller"`
	PoolID uint32         `json:"poolId"`
	Name   string         `json:"name"`
}

type UpdateRoles struct {
	Caller    tangle.Address            `json:"caller"`
	PoolID    uint32                    `json:"poolId"`
	Root      *ConfigOp[tangle.Address] `json:"root"`
	Nominator *ConfigOp[tangle.Address] `json:"nominator"`
	Bouncer   *ConfigOp[tangle.Address] `json:"bouncer"`
}

type Nominate struct {
	Caller     tangle.Address   `json:"caller"`
	PoolID     uint32           `json:"poolId"`
	Validators []tangle.Address `json:"validators"`
}

type PoolCall struct {
	Caller tangle.Address `json:"caller"`
	PoolID uint32         `json:"poolId"`
}

type SetCommission struct {
	Caller tangle.Address  `json:"caller"`
	PoolID uint32          `json:"poolId"`
	Rate   *tangle.Perbill `json:"rate"`
}

type SetCommissionChangeRate struct {
	Caller   tangle.Address `json:"caller"`
	PoolID   uint32         `json:"poolId"`
	MaxDelta tangle.Perbill `json:"maxDelta"`
	MinDelay uint64         `json:"minDelay"`
}

type Mutate struct {
	Caller        tangle.Address            `json:"caller"`
	PoolID        uint32                    `json:"poolId"`
	Duration      *uint32                   `json:"duration"`
	Capacity      *uint256.Int              `json:"capacity"`
	Name          *string                   `json:"name"`
	NewCommission *ConfigOp[tangle.Perbill] `json:"newCommission"`
	MaxCommission *tangle.Perbill           `json:"maxCommission"`
	ChangeRate    *struct {
		MaxDelta tangle.Perbill `json:"maxDelta"`
		MinDelay uint64         `json:"minDelay"`
	} `json:"changeRate"`
}

func (m *Mutate) mutation() lst.PoolMutation {
	mut := lst.PoolMutation{
		Duration:      m.Duration,
		Capacity:      m.Capacity,
		NewCommission: m.NewCommission.convert(),
		MaxCommission: m.MaxCommission,
	}
	if m.Name != nil {
		mut.Name = []byte(*m.Name)
	}
	if m.ChangeRate != nil {
		mut.ChangeRate = &pool.ChangeRate{MaxDelta: m.ChangeRate.MaxDelta, MinDelay: m.ChangeRate.MinDelay}
	}
	return mut
}

type SetConfigs struct {
	Caller              tangle.Address            `json:"caller"`
	MinJoinBond         *ConfigOp[uint256.Int]    `json:"minJoinBond"`
	MinCreateBond       *ConfigOp[uint256.Int]    `json:"minCreateBond"`
	MaxPools            *ConfigOp[uint32]         `json:"maxPools"`
	GlobalMaxCommission *ConfigOp[tangle.Perbill] `json:"globalMaxCommission"`
}

type PayoutRewards struct {
	Validator tangle.Address `json:"validator"`
	Era       uint32         `json:"era"`
}

type ProcessPayouts struct {
	PoolCount uint32 `json:"poolCount"`
}

type SetEraReward struct {
	Era    uint32       `json:"era"`
	Reward *uint256.Int `json:"reward"`
}

type Slash struct {
	Stash  tangle.Address `json:"stash"`
	Era    uint32         `json:"era"`
	Amount *uint256.Int   `json:"amount"`
}

type Deposit struct {
	Account tangle.Address `json:"account"`
	Amount  *uint256.Int   `json:"amount"`
}

type MintToken struct {
	ID       uint64         `json:"id"`
	Owner    tangle.Address `json:"owner"`
	Capacity *uint256.Int   `json:"capacity"`
}

type Validate struct {
	Stash tangle.Address `json:"stash"`
	Bond  *uint256.Int   `json:"bond"`
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
