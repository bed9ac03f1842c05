// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tangle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// PerbillAccuracy is the denominator of a Perbill.
const PerbillAccuracy uint32 = 1_000_000_000

var accuracy = uint256.NewInt(uint64(PerbillAccuracy))

// Perbill is a fraction in parts per billion, always within [0, 1].
type Perbill uint32

// PerbillFromParts creates a Perbill from raw parts, clamping to one.
func PerbillFromParts(parts uint32) Perbill {
	if parts > PerbillAccuracy {
		return Perbill(PerbillAccuracy)
	}
	return Perbill(parts)
}

// PerbillFromPercent creates a Perbill from a whole percentage, clamping to 100%.
func PerbillFromPercent(percent uint32) Perbill {
	if percent >= 100 {
		return Perbill(PerbillAccuracy)
	}
	return Perbill(percent * (PerbillAccuracy / 100))
}

// PerbillOne is 100%.
func PerbillOne() Perbill {
	return Perbill(PerbillAccuracy)
}

// PerbillFromRational returns n/d rounded down.
// A zero denominator or n >= d yields 100%.
func PerbillFromRational(n, d *uint256.Int) Perbill {
	if d.IsZero() || n.Cmp(d) >= 0 {
		return PerbillOne()
	}
	parts, _ := new(uint256.Int).MulDivOverflow(n, accuracy, d)
	return Perbill(parts.Uint64())
}

// PerbillFromRationalUint64 is PerbillFromRational for machine integers.
func PerbillFromRationalUint64(n, d uint64) Perbill {
	return PerbillFromRational(uint256.NewInt(n), uint256.NewInt(d))
}

// Parts returns the raw parts per billion.
func (p Perbill) Parts() uint32 {
	return uint32(p)
}

// IsZero returns true for 0%.
func (p Perbill) IsZero() bool {
	return p == 0
}

// MulFloor returns floor(x * p).
func (p Perbill) MulFloor(x *uint256.Int) *uint256.Int {
	z, _ := new(uint256.Int).MulDivOverflow(x, uint256.NewInt(uint64(p)), accuracy)
	return z
}

// MulCeil returns ceil(x * p).
func (p Perbill) MulCeil(x *uint256.Int) *uint256.Int {
	parts := uint256.NewInt(uint64(p))
	z, _ := new(uint256.Int).MulDivOverflow(x, parts, accuracy)
	// the remainder is below accuracy, so comparing the wrapped products is exact
	prod := new(uint256.Int).Mul(x, parts)
	if !new(uint256.Int).Mul(z, accuracy).Eq(prod) {
		z.AddUint64(z, 1)
	}
	return z
}

// MulCeilUint64 returns ceil(x * p) for machine integers.
func (p Perbill) MulCeilUint64(x uint64) uint64 {
	return p.MulCeil(uint256.NewInt(x)).Uint64()
}

// SaturatingSub returns p - o, or zero.
func (p Perbill) SaturatingSub(o Perbill) Perbill {
	if o >= p {
		return 0
	}
	return p - o
}

// SaturatingAdd returns p + o, clamped to 100%.
func (p Perbill) SaturatingAdd(o Perbill) Perbill {
	return PerbillFromParts(uint32(p) + uint32(o))
}

// String renders the fraction as a percentage.
func (p Perbill) String() string {
	whole := uint32(p) / (PerbillAccuracy / 100)
	frac := uint32(p) % (PerbillAccuracy / 100)
	if frac == 0 {
		return fmt.Sprintf("%d%%", whole)
	}
	return strings.TrimRight(fmt.Sprintf("%d.%07d", whole, frac), "0") + "%"
}

// ParsePerbill parses either raw parts ("250000000") or a percentage ("25%").
func ParsePerbill(s string) (Perbill, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil || v < 0 || v > 100 {
			return 0, fmt.Errorf("invalid percentage %q", s)
		}
		return PerbillFromParts(uint32(v * float64(PerbillAccuracy/100))), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v > uint64(PerbillAccuracy) {
		return 0, fmt.Errorf("invalid perbill %q", s)
	}
	return Perbill(v), nil
}

func (p Perbill) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Perbill) UnmarshalText(text []byte) error {
	parsed, err := ParsePerbill(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
