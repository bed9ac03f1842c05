// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tangle

import (
	"encoding/binary"
)

type (
	// EraIndex counts staking eras.
	EraIndex = uint32
	// PoolID identifies a pool. The first pool has id 1.
	PoolID = uint32
	// TokenID identifies a pool NFT inside its collection.
	TokenID = uint64
	// BlockNumber is the height used for commission throttling.
	BlockNumber = uint64
)

// AccountType selects one of the accounts derived for a pool.
type AccountType uint8

const (
	AccountBonded AccountType = 1
	AccountReward AccountType = 2
	AccountBonus  AccountType = 3
)

func (t AccountType) String() string {
	switch t {
	case AccountBonded:
		return "bonded"
	case AccountReward:
		return "reward"
	case AccountBonus:
		return "bonus"
	}
	return "unknown"
}

// PalletID namespaces derived module accounts.
type PalletID [8]byte

// DefaultPalletID is the identifier of the liquid staking module.
var DefaultPalletID = PalletID{'p', 'y', '/', 't', 'n', 'l', 's', 't'}

// PoolAccount derives the account of the given kind for a pool.
// The derivation is deterministic and collision free across (kind, id).
func PoolAccount(pallet PalletID, kind AccountType, id PoolID) Address {
	var suffix [5]byte
	suffix[0] = byte(kind)
	binary.BigEndian.PutUint32(suffix[1:], id)
	h := Blake2b([]byte("modl"), pallet[:], suffix[:])
	return BytesToAddress(h[:AddressLength])
}
