// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// EraPayout counts the validator payouts made in an era. The pools can be
// processed once RequiredPaymentsPercent of the validators have been paid.
type EraPayout struct {
	Era                     uint32
	PayoutCount             uint32
	PayoutsProcessed        bool
	RequiredPaymentsPercent tangle.Perbill
}

func DefaultEraPayout() *EraPayout {
	return &EraPayout{RequiredPaymentsPercent: tangle.PerbillFromPercent(100)}
}

// RecordPayout counts a payout made while currentEra is active.
func (e *EraPayout) RecordPayout(currentEra uint32) {
	if e.Era == currentEra {
		e.PayoutCount++
		return
	}
	e.Era = currentEra
	e.PayoutCount = 1
	e.PayoutsProcessed = false
}

// RequiredPayouts is the number of payouts needed out of validators.
func (e *EraPayout) RequiredPayouts(validators uint32) uint32 {
	return uint32(e.RequiredPaymentsPercent.MulCeilUint64(uint64(validators)))
}

// TryProcess marks era as processed.
func (e *EraPayout) TryProcess(era, validators uint32) error {
	if e.Era != era || e.PayoutCount < e.RequiredPayouts(validators) {
		return reverts.ErrMissingPayouts
	}
	if e.PayoutsProcessed {
		return reverts.ErrPayoutsAlreadyProcessed
	}
	e.PayoutsProcessed = true
	return nil
}
