// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/tangle"
)

// dissolvePool removes the pool once its depositor has left. The reward account
// remainder goes to leftoverDest and the bonus remainder to the unclaimed
// balance receiver.
func (p *Pools) dissolvePool(bp *pool.Pool, leftoverDest tangle.Address) error {
	var (
		bonded = p.BondedAccount(bp.ID)
		reward = p.RewardAccount(bp.ID)
		bonus  = p.BonusAccount(bp.ID)
	)

	p.poolService.RemoveAccountLookup(bonded)
	p.poolService.RemoveTokenUsed(bp.TokenID)
	p.subPoolsService.Remove(bp.ID)
	if err := p.memberService.RemoveAll(bp.ID); err != nil {
		return err
	}

	// failures here only leave dust which is zeroed below
	if remaining, err := p.currency.FreeBalance(reward); err != nil {
		return err
	} else if err := p.currency.Transfer(reward, leftoverDest, remaining, false); err != nil {
		logger.Debug("failed to drain reward account", "pool", bp.ID, "error", err)
	}
	if remaining, err := p.currency.FreeBalance(bonus); err != nil {
		return err
	} else if err := p.currency.Transfer(bonus, p.cfg.UnclaimedBalanceReceiver, remaining, false); err != nil {
		logger.Debug("failed to drain bonus account", "pool", bp.ID, "error", err)
	}

	zero := new(uint256.Int)
	for _, account := range []tangle.Address{reward, bonded, bonus} {
		if err := p.currency.MakeFreeBalanceBe(account, zero); err != nil {
			return err
		}
	}

	supply, err := p.assets.TotalIssuance(bp.ID)
	if err != nil {
		return err
	}
	if !supply.IsZero() {
		p.assets.BurnSupply(bp.ID)
	}

	if err := p.poolService.Remove(bp.ID); err != nil {
		return err
	}
	p.emit(events.Destroyed{PoolID: bp.ID})
	logger.Info("pool dissolved", "pool", bp.ID)
	return nil
}
