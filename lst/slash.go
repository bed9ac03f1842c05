// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/tangle"
)

var _ staking.SlashListener = (*Pools)(nil)

// OnSlash propagates a slash of a bonded account to the unbonding buckets of
// its pool. The bonded points are untouched, so every member loses the same
// share through the points to balance ratio.
func (p *Pools) OnSlash(stash tangle.Address, slashedBonded *uint256.Int, slashedUnlocking map[uint32]*uint256.Int, totalSlashed *uint256.Int) error {
	poolID, ok, err := p.poolService.PoolOfAccount(stash)
	if err != nil || !ok {
		return err
	}
	logger.Debug("pool slashed", "pool", poolID, "bonded", slashedBonded, "total", totalSlashed)

	if err := p.subTVL(totalSlashed); err != nil {
		return err
	}

	sp, err := p.subPoolsService.Get(poolID)
	if err != nil {
		return err
	}
	if sp != nil {
		changed := sp.ApplySlash(slashedUnlocking)
		for _, era := range changed {
			p.emit(events.UnbondingPoolSlashed{PoolID: poolID, Era: era, Balance: tangle.Clone(sp.Bucket(era).Balance)})
		}
		if len(changed) > 0 {
			if err := p.subPoolsService.Set(poolID, sp); err != nil {
				return err
			}
		}
	}

	p.emit(events.PoolSlashed{PoolID: poolID, Balance: tangle.Clone(slashedBonded)})
	return nil
}
