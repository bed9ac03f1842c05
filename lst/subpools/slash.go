// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subpools

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/tangle"
)

// Chunk is an amount of stake unlocking at Era.
type Chunk struct {
	Value *uint256.Int
	Era   uint32
}

// SlashOutcome is the result of spreading a slash over bonded stake and unlocking chunks.
type SlashOutcome struct {
	Active    *uint256.Int            // bonded stake after the slash
	Unlocking map[uint32]*uint256.Int // new balance of every affected chunk, by era
	Slashed   *uint256.Int            // total amount actually removed
}

// SplitSlash spreads amount proportionally over active and every chunk unlocking
// in [slashEra+1, slashEra+bondingDuration]. Shares are rounded down and the
// remainder is taken greedily, bonded stake first then chunks by ascending era.
// No balance goes below zero and the slash is capped at the exposed total.
func SplitSlash(active *uint256.Int, chunks []Chunk, slashEra, bondingDuration uint32, amount *uint256.Int) *SlashOutcome {
	type target struct {
		era     uint32
		balance *uint256.Int
		slash   *uint256.Int
	}

	first, last := uint64(slashEra)+1, uint64(slashEra)+uint64(bondingDuration)
	targets := []*target{{balance: tangle.Clone(active), slash: new(uint256.Int)}}
	for _, c := range chunks {
		if uint64(c.Era) < first || uint64(c.Era) > last {
			continue
		}
		targets = append(targets, &target{era: c.Era, balance: tangle.Clone(c.Value), slash: new(uint256.Int)})
	}

	exposed := new(uint256.Int)
	for _, t := range targets {
		exposed = tangle.SaturatingAdd(exposed, t.balance)
	}
	toSlash := tangle.Min(amount, exposed)

	remaining := tangle.Clone(toSlash)
	if !exposed.IsZero() {
		for _, t := range targets {
			t.slash = tangle.MulDiv(toSlash, t.balance, exposed)
			remaining = tangle.SaturatingSub(remaining, t.slash)
		}
	}
	// chunks are already sorted by era, so the greedy pass is bonded first then ascending era
	for _, t := range targets {
		if remaining.IsZero() {
			break
		}
		room := tangle.SaturatingSub(t.balance, t.slash)
		extra := tangle.Min(room, remaining)
		t.slash = tangle.SaturatingAdd(t.slash, extra)
		remaining = tangle.SaturatingSub(remaining, extra)
	}

	out := &SlashOutcome{
		Unlocking: make(map[uint32]*uint256.Int),
		Slashed:   new(uint256.Int),
	}
	for i, t := range targets {
		after := tangle.SaturatingSub(t.balance, t.slash)
		out.Slashed = tangle.SaturatingAdd(out.Slashed, t.slash)
		if i == 0 {
			out.Active = after
		} else {
			out.Unlocking[t.era] = after
		}
	}
	return out
}
