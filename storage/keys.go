// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/tangle-network/lst/tangle"
)

// Uint32 is a big endian mapping key.
type Uint32 uint32

func (k Uint32) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(k))
}

// Uint64 is a big endian mapping key.
type Uint64 uint64

func (k Uint64) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// PoolAccount keys per pool account entries such as members.
type PoolAccount struct {
	Pool    uint32
	Account tangle.Address
}

func (k PoolAccount) Bytes() []byte {
	return append(binary.BigEndian.AppendUint32(nil, k.Pool), k.Account.Bytes()...)
}

// Era keys per era entries scoped to an account.
type Era struct {
	Era     uint32
	Account tangle.Address
}

func (k Era) Bytes() []byte {
	return append(binary.BigEndian.AppendUint32(nil, k.Era), k.Account.Bytes()...)
}
