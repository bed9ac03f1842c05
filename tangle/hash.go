// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tangle

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	w := blake2bPool.Get().(hash.Hash)
	defer func() {
		w.Reset()
		blake2bPool.Put(w)
	}()
	for _, b := range data {
		w.Write(b)
	}
	var h Bytes32
	w.Sum(h[:0])
	return h
}

var blake2bPool = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Keccak256 computes the legacy keccak-256 digest of the given data.
func Keccak256(data ...[]byte) (h Bytes32) {
	hasher := keccakPool.Get().(hash.Hash)
	defer func() {
		hasher.Reset()
		keccakPool.Put(hasher)
	}()

	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Sum(h[:0])
	return
}

var keccakPool = sync.Pool{
	New: func() any {
		return sha3.NewLegacyKeccak256()
	},
}
