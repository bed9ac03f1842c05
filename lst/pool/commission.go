// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// ChangeRate limits how much and how often the commission may change.
type ChangeRate struct {
	MaxDelta tangle.Perbill
	MinDelay uint64
}

// Commission of a pool. Max can only decrease once set and ChangeRate can only
// become more restrictive.
type Commission struct {
	Current      *tangle.Perbill
	Max          *tangle.Perbill
	ChangeRate   *ChangeRate
	ThrottleFrom *uint64
}

// commissionRLP carries presence flags, a zero rate or block is a valid value.
type commissionRLP struct {
	Current         uint32
	HasCurrent      bool
	Max             uint32
	HasMax          bool
	ChangeRate      *ChangeRate `rlp:"nil"`
	ThrottleFrom    uint64
	HasThrottleFrom bool
}

func (c *Commission) EncodeRLP(w io.Writer) error {
	var enc commissionRLP
	if c.Current != nil {
		enc.Current, enc.HasCurrent = c.Current.Parts(), true
	}
	if c.Max != nil {
		enc.Max, enc.HasMax = c.Max.Parts(), true
	}
	if c.ThrottleFrom != nil {
		enc.ThrottleFrom, enc.HasThrottleFrom = *c.ThrottleFrom, true
	}
	enc.ChangeRate = c.ChangeRate
	return rlp.Encode(w, &enc)
}

func (c *Commission) DecodeRLP(s *rlp.Stream) error {
	var dec commissionRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	*c = Commission{ChangeRate: dec.ChangeRate}
	if dec.HasCurrent {
		v := tangle.PerbillFromParts(dec.Current)
		c.Current = &v
	}
	if dec.HasMax {
		v := tangle.PerbillFromParts(dec.Max)
		c.Max = &v
	}
	if dec.HasThrottleFrom {
		v := dec.ThrottleFrom
		c.ThrottleFrom = &v
	}
	return nil
}

// Throttling returns true if updating the current commission to `to` at block
// now would exceed the change rate.
func (c *Commission) Throttling(to tangle.Perbill, now uint64) bool {
	if c.ChangeRate == nil {
		return false
	}
	current := tangle.PerbillFromParts(0)
	if c.Current != nil {
		current = *c.Current
	}

	if to < current {
		return current.SaturatingSub(to) > c.ChangeRate.MaxDelta
	}
	if to > current {
		return to.SaturatingSub(current) > c.ChangeRate.MaxDelta
	}

	if c.ThrottleFrom == nil {
		// throttle_from is registered together with the change rate
		return true
	}
	if c.ChangeRate.MinDelay == 0 {
		return false
	}
	var passed uint64
	if now > *c.ThrottleFrom {
		passed = now - *c.ThrottleFrom
	}
	return passed < c.ChangeRate.MinDelay
}

// CurrentClamped is the rate applied at payout time, bounded by the global maximum.
func (c *Commission) CurrentClamped(globalMax *tangle.Perbill) tangle.Perbill {
	current := tangle.PerbillFromParts(0)
	if c.Current != nil {
		current = *c.Current
	}
	if globalMax != nil && current > *globalMax {
		return *globalMax
	}
	return current
}

// TryUpdateCurrent sets the current commission. nil or a zero rate removes it.
func (c *Commission) TryUpdateCurrent(rate *tangle.Perbill, now uint64, globalMax *tangle.Perbill) error {
	if rate == nil {
		c.Current = nil
		c.registerUpdate(now)
		return nil
	}
	if globalMax != nil && *rate > *globalMax {
		return reverts.ErrCommissionExceedsGlobalMaximum
	}
	if c.Throttling(*rate, now) {
		return reverts.ErrCommissionChangeThrottled
	}
	if c.Max != nil && *rate > *c.Max {
		return reverts.ErrCommissionExceedsMaximum
	}

	if rate.IsZero() {
		c.Current = nil
	} else {
		v := *rate
		c.Current = &v
	}
	c.registerUpdate(now)
	return nil
}

// TryUpdateMax sets the maximum commission. Once set it may only decrease. The
// current commission is lowered to the new maximum, reported by the returned bool.
func (c *Commission) TryUpdateMax(max tangle.Perbill, now uint64, globalMax *tangle.Perbill) (bool, error) {
	if globalMax != nil && max > *globalMax {
		return false, reverts.ErrCommissionExceedsGlobalMaximum
	}
	if c.Max != nil && max > *c.Max {
		return false, reverts.ErrMaxCommissionRestricted
	}
	c.Max = &max

	if c.Current != nil && *c.Current > max {
		v := max
		c.Current = &v
		c.registerUpdate(now)
		return true, nil
	}
	return false, nil
}

// TryUpdateChangeRate sets the change rate. Once set only more restrictive rates
// are accepted.
func (c *Commission) TryUpdateChangeRate(rate ChangeRate, now uint64) error {
	if c.lessRestrictive(rate) {
		return reverts.ErrCommissionChangeRateNotAllowed
	}
	if c.ChangeRate == nil {
		c.registerUpdate(now)
	}
	c.ChangeRate = &rate
	return nil
}

func (c *Commission) registerUpdate(now uint64) {
	c.ThrottleFrom = &now
}

func (c *Commission) lessRestrictive(rate ChangeRate) bool {
	if c.ChangeRate == nil {
		return false
	}
	return rate.MaxDelta > c.ChangeRate.MaxDelta || rate.MinDelay < c.ChangeRate.MinDelay
}
