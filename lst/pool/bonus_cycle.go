// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// BonusCycle is the recurring window over which the bonus account is paid out.
// A pending duration takes effect when the current cycle ends.
type BonusCycle struct {
	Start           uint32
	End             uint32
	PendingDuration *uint32
	PreviousStart   *uint32
}

type bonusCycleRLP struct {
	Start              uint32
	End                uint32
	PendingDuration    uint32
	HasPendingDuration bool
	PreviousStart      uint32
	HasPreviousStart   bool
}

// NewBonusCycle returns a cycle of duration eras starting at start.
func NewBonusCycle(start, duration uint32) BonusCycle {
	return BonusCycle{Start: start, End: start + duration}
}

func (c *BonusCycle) EncodeRLP(w io.Writer) error {
	enc := bonusCycleRLP{Start: c.Start, End: c.End}
	if c.PendingDuration != nil {
		enc.PendingDuration, enc.HasPendingDuration = *c.PendingDuration, true
	}
	if c.PreviousStart != nil {
		enc.PreviousStart, enc.HasPreviousStart = *c.PreviousStart, true
	}
	return rlp.Encode(w, &enc)
}

func (c *BonusCycle) DecodeRLP(s *rlp.Stream) error {
	var dec bonusCycleRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	*c = BonusCycle{Start: dec.Start, End: dec.End}
	if dec.HasPendingDuration {
		v := dec.PendingDuration
		c.PendingDuration = &v
	}
	if dec.HasPreviousStart {
		v := dec.PreviousStart
		c.PreviousStart = &v
	}
	return nil
}

// Duration is the length of the current cycle in eras.
func (c *BonusCycle) Duration() uint32 {
	if c.End < c.Start {
		return 0
	}
	return c.End - c.Start
}

// MaybeCycleAndCalculateBonus returns the share of bonusBalance to pay for era.
// The remaining balance is spread over the eras left in the cycle, so a constant
// balance pays out increasingly and the last era pays everything.
// When era has reached the end of the cycle a new cycle starts at era+1 and
// nothing is paid.
func (c *BonusCycle) MaybeCycleAndCalculateBonus(era uint32, bonusBalance *uint256.Int) (*uint256.Int, bool) {
	if era < c.Start {
		return new(uint256.Int), false
	}
	if era < c.End {
		left := uint256.NewInt(uint64(c.End - era))
		return new(uint256.Int).Div(bonusBalance, left), false
	}

	duration := c.Duration()
	if c.PendingDuration != nil {
		duration = *c.PendingDuration
	}
	previous := c.Start
	c.PreviousStart = &previous
	c.Start = era + 1
	c.End = c.Start + duration
	c.PendingDuration = nil
	return new(uint256.Int), true
}
