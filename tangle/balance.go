// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tangle

import (
	"github.com/holiman/uint256"
)

// MaxBalance is 2^256-1, the value saturating arithmetic clamps to.
var MaxBalance = new(uint256.Int).SetAllOne()

// Zero returns a fresh zero balance.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// NewBalance creates a balance from a machine integer.
func NewBalance(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Clone copies x, treating nil as zero.
func Clone(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(x)
}

// IsZero treats nil as zero.
func IsZero(x *uint256.Int) bool {
	return x == nil || x.IsZero()
}

// SaturatingAdd returns a + b clamped to MaxBalance.
func SaturatingAdd(a, b *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return new(uint256.Int).Set(MaxBalance)
	}
	return z
}

// SaturatingSub returns a - b floored at zero.
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) <= 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}

// SaturatingMul returns a * b clamped to MaxBalance.
func SaturatingMul(a, b *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return new(uint256.Int).Set(MaxBalance)
	}
	return z
}

// MulDiv returns floor(a * b / d) computed with a 512 bit intermediate.
// The result saturates when it does not fit in 256 bits; d must not be zero.
func MulDiv(a, b, d *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return new(uint256.Int).Set(MaxBalance)
	}
	return z
}

// Min returns a copy of the smaller value.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) <= 0 {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// Max returns a copy of the larger value.
func Max(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) >= 0 {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}
