// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/tangle"
)

// PoolInfo collects the reward of one pool during a validator payout.
type PoolInfo struct {
	PoolID               uint32
	Duration             uint32
	InitialRewardBalance *uint256.Int
	Reward               *uint256.Int // reward kept by the pool, after the bonus cut
	RealWeight           *uint256.Int
	Bonus                *uint256.Int
}

// RealWeight scales reward by where duration sits in [lo, lo+spread]. When every
// pool has the same duration the reward is split evenly over pools.
func RealWeight(duration, lo, spread uint32, pools int, reward *uint256.Int) *uint256.Int {
	if spread == 0 {
		if pools <= 0 {
			return new(uint256.Int)
		}
		return tangle.PerbillFromRationalUint64(1, uint64(pools)).MulFloor(reward)
	}
	var offset uint32
	if duration > lo {
		offset = duration - lo
	}
	return tangle.PerbillFromRationalUint64(uint64(offset), uint64(spread)).MulFloor(reward)
}

// Weigh sets the real weight of every info from its reward.
func Weigh(infos []*PoolInfo, lo, hi uint32) {
	var spread uint32
	if hi > lo {
		spread = hi - lo
	}
	for _, info := range infos {
		info.RealWeight = RealWeight(info.Duration, lo, spread, len(infos), info.Reward)
	}
}

// SplitBonus shares totalBonus between the pools. basePercentage of it is split
// pro rata to the rewards, the rest pro rata to the real weights. Pools are served
// in order and never take more than what is left. The undistributed remainder is
// returned.
func SplitBonus(infos []*PoolInfo, totalBonus *uint256.Int, basePercentage tangle.Perbill) *uint256.Int {
	var (
		totalRewards    = new(uint256.Int)
		totalRealWeight = new(uint256.Int)
	)
	for _, info := range infos {
		totalRewards = tangle.SaturatingAdd(totalRewards, info.Reward)
		totalRealWeight = tangle.SaturatingAdd(totalRealWeight, info.RealWeight)
	}

	base := basePercentage.MulFloor(totalBonus)
	weighted := tangle.SaturatingSub(totalBonus, base)

	baseFactor := tangle.PerbillFromRational(base, totalRewards)
	weightedFactor := tangle.PerbillFromRational(weighted, totalRealWeight)

	for _, info := range infos {
		fromBase := tangle.Min(baseFactor.MulFloor(info.Reward), base)
		base = tangle.SaturatingSub(base, fromBase)

		fromWeighted := tangle.Min(weightedFactor.MulFloor(info.RealWeight), weighted)
		weighted = tangle.SaturatingSub(weighted, fromWeighted)

		info.Bonus = tangle.SaturatingAdd(fromBase, fromWeighted)
	}
	return tangle.SaturatingAdd(base, weighted)
}
