// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/assets"
	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/tangle"
)

// Allocation funds an account at genesis.
type Allocation struct {
	Address tangle.Address
	Amount  *uint256.Int
}

// PoolToken is a pool ownership token minted at genesis. A nil Capacity
// leaves the pool capacity to the engine default.
type PoolToken struct {
	ID       uint64
	Owner    tangle.Address
	Capacity *uint256.Int
}

// Validator is bonded and registered at genesis. Its stash must be funded.
type Validator struct {
	Stash tangle.Address
	Bond  *uint256.Int
}

// Genesis is the initial state of a new database.
type Genesis struct {
	Allocations []Allocation
	PoolTokens  []PoolToken
	Validators  []Validator
	// EraReward is set as the reward of era 0.
	EraReward *uint256.Int
}

func (g *Genesis) apply(env *Env) error {
	for _, a := range g.Allocations {
		if err := env.Currency.Deposit(a.Address, a.Amount); err != nil {
			return errors.Wrapf(err, "failed to fund %s", a.Address)
		}
	}
	for _, tok := range g.PoolTokens {
		var attrs []assets.Attribute
		if tok.Capacity != nil {
			attrs = append(attrs, assets.Attribute{Key: lst.CapacityAttribute, Value: tok.Capacity.Dec()})
		}
		if err := env.Assets.MintToken(tok.ID, tok.Owner, attrs...); err != nil {
			return errors.Wrapf(err, "failed to mint pool token %d", tok.ID)
		}
	}
	for _, v := range g.Validators {
		if err := env.Staking.Bond(v.Stash, v.Bond, v.Stash); err != nil {
			return errors.Wrapf(err, "failed to bond validator %s", v.Stash)
		}
		if err := env.Staking.Validate(v.Stash); err != nil {
			return err
		}
	}
	if g.EraReward != nil {
		if err := env.Staking.SetEraReward(0, g.EraReward); err != nil {
			return err
		}
	}
	return nil
}
