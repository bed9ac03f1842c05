// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/tangle"
)

// Staking is the staking ledger the pools bond through.
type Staking interface {
	CurrentEra() (uint32, error)
	BondingDuration() uint32
	HistoryDepth() uint32
	MinimumNominatorBond() *uint256.Int
	MinimumValidatorBond() *uint256.Int
	ValidatorCount() uint32
	ValidatorsCount() (uint32, error)

	Ledger(stash tangle.Address) (*staking.Ledger, error)
	ActiveStake(stash tangle.Address) (*uint256.Int, error)
	TotalStake(stash tangle.Address) (*uint256.Int, error)

	Bond(stash tangle.Address, value *uint256.Int, payee tangle.Address) error
	BondExtra(stash tangle.Address, extra *uint256.Int) error
	Unbond(stash tangle.Address, value *uint256.Int) error
	WithdrawUnbonded(stash tangle.Address, spans uint32) (bool, error)
	Nominate(stash tangle.Address, targets []tangle.Address) error
	Chill(stash tangle.Address) error
	Nominations(stash tangle.Address) ([]tangle.Address, error)

	EraReward(era uint32) (*uint256.Int, bool, error)
	ExposedNominators(era uint32, validator tangle.Address) ([]tangle.Address, bool, error)
	PayoutStakers(validator tangle.Address, era uint32) error
}

// Currency is the native token.
type Currency interface {
	ExistentialDeposit() *uint256.Int
	FreeBalance(who tangle.Address) (*uint256.Int, error)
	TransferableBalance(who tangle.Address) (*uint256.Int, error)
	Transfer(from, to tangle.Address, amount *uint256.Int, keepAlive bool) error
	Deposit(who tangle.Address, amount *uint256.Int) error
	Withdraw(who tangle.Address, amount *uint256.Int, keepAlive bool) error
	MakeFreeBalanceBe(who tangle.Address, amount *uint256.Int) error
}

// Assets holds the liquid staking tokens of every pool and the pool token collection.
type Assets interface {
	BalanceOf(poolID uint32, who tangle.Address) (*uint256.Int, error)
	TotalIssuance(poolID uint32) (*uint256.Int, error)
	MintInto(poolID uint32, who tangle.Address, amount *uint256.Int) error
	BurnFrom(poolID uint32, who tangle.Address, amount *uint256.Int) error
	BurnSupply(poolID uint32)

	OwnerOf(tokenID uint64) (tangle.Address, bool, error)
	Attribute(tokenID uint64, key string) (string, bool, error)
}
