// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	logger = log.WithContext("pkg", "lst")

	// MaxPointsToBalance caps the points per unit of bonded balance of a pool
	// that still accepts members.
	MaxPointsToBalance uint8 = 10

	// CapacityMutationPeriod is the number of eras after the start of a bonus
	// cycle during which the capacity of a pool may change.
	CapacityMutationPeriod = storage.NewConfigVariable("lst-capacity-mutation-period", 14)
	// PostUnbondingPoolsWindow is the number of eras an unbonding bucket is
	// kept apart after it unlocked.
	PostUnbondingPoolsWindow = storage.NewConfigVariable("lst-post-unbonding-pools-window", 4)
)

// CapacityAttribute is the pool token attribute bounding the capacity of the pool.
const CapacityAttribute = "max_pool_capacity"

func SetLogger(l log.Logger) {
	logger = l
}

// unit is one token with 18 decimals.
var unit = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))

// Config holds the constants of the engine.
type Config struct {
	PalletID       tangle.PalletID
	MaxUnbonding   uint32 // unbonding eras per member
	MaxMetadataLen uint32
	MinDuration    uint32 // bonus cycle bounds, in eras
	MaxDuration    uint32

	GlobalMaxCapacity *uint256.Int
	// DefaultPoolCapacity applies to pool tokens without a capacity attribute.
	DefaultPoolCapacity *uint256.Int

	BonusPercentage           tangle.Perbill // share of each reward moved to the bonus pot
	BaseBonusRewardPercentage tangle.Perbill // share of the pot split by reward, the rest by weight

	UnclaimedBalanceReceiver tangle.Address
	RewardRemainderSink      tangle.Address
	// Admin may update roles and global parameters.
	Admin tangle.Address
}

// DefaultConfig returns the mainnet constants.
func DefaultConfig() Config {
	return Config{
		PalletID:                  tangle.DefaultPalletID,
		MaxUnbonding:              8,
		MaxMetadataLen:            256,
		MinDuration:               1,
		MaxDuration:               365,
		GlobalMaxCapacity:         new(uint256.Int).Mul(uint256.NewInt(10_000_000), unit),
		DefaultPoolCapacity:       new(uint256.Int).Mul(uint256.NewInt(500_000), unit),
		BonusPercentage:           tangle.PerbillFromPercent(20),
		BaseBonusRewardPercentage: tangle.PerbillFromPercent(50),
		UnclaimedBalanceReceiver:  tangle.BytesToAddress([]byte("treasury")),
		RewardRemainderSink:       tangle.BytesToAddress([]byte("treasury")),
	}
}
