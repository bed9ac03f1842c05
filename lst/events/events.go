// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the events emitted by the liquid staking engine.
package events

import (
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/tangle"
)

// Event is emitted by a successful operation.
type Event interface {
	Name() string
	Pool() uint32
}

type Created struct {
	Depositor tangle.Address `json:"depositor"`
	PoolID    uint32         `json:"poolId"`
}

type Bonded struct {
	Member tangle.Address `json:"member"`
	PoolID uint32         `json:"poolId"`
	Bonded *uint256.Int   `json:"bonded"`
	Joined bool           `json:"joined"`
}

type Unbonded struct {
	Member  tangle.Address `json:"member"`
	PoolID  uint32         `json:"poolId"`
	Balance *uint256.Int   `json:"balance"`
	Points  *uint256.Int   `json:"points"`
	Era     uint32         `json:"era"`
}

type Withdrawn struct {
	Member  tangle.Address `json:"member"`
	PoolID  uint32         `json:"poolId"`
	Balance *uint256.Int   `json:"balance"`
	Points  *uint256.Int   `json:"points"`
}

type Destroyed struct {
	PoolID uint32 `json:"poolId"`
}

type StateChanged struct {
	PoolID   uint32 `json:"poolId"`
	NewState string `json:"newState"`
}

type MemberRemoved struct {
	PoolID uint32         `json:"poolId"`
	Member tangle.Address `json:"member"`
}

type RolesUpdated struct {
	PoolID    uint32          `json:"poolId"`
	Root      *tangle.Address `json:"root"`
	Bouncer   *tangle.Address `json:"bouncer"`
	Nominator *tangle.Address `json:"nominator"`
}

type PoolSlashed struct {
	PoolID  uint32       `json:"poolId"`
	Balance *uint256.Int `json:"balance"`
}

type UnbondingPoolSlashed struct {
	PoolID  uint32       `json:"poolId"`
	Era     uint32       `json:"era"`
	Balance *uint256.Int `json:"balance"`
}

type PoolCommissionUpdated struct {
	PoolID  uint32          `json:"poolId"`
	Current *tangle.Perbill `json:"current"`
}

type PoolMaxCommissionUpdated struct {
	PoolID        uint32         `json:"poolId"`
	MaxCommission tangle.Perbill `json:"maxCommission"`
}

type PoolCommissionChangeRateUpdated struct {
	PoolID   uint32         `json:"poolId"`
	MaxDelta tangle.Perbill `json:"maxDelta"`
	MinDelay uint64         `json:"minDelay"`
}

type PoolCommissionClaimed struct {
	PoolID      uint32         `json:"poolId"`
	Commission  *uint256.Int   `json:"commission"`
	Beneficiary tangle.Address `json:"beneficiary"`
}

type RewardPaid struct {
	PoolID    uint32         `json:"poolId"`
	Era       uint32         `json:"era"`
	Validator tangle.Address `json:"validator"`
	Reward    *uint256.Int   `json:"reward"`
	Bonus     *uint256.Int   `json:"bonus"`
}

type EraRewardsProcessed struct {
	PoolID          uint32       `json:"poolId"`
	Era             uint32       `json:"era"`
	Commission      *uint256.Int `json:"commission"`
	Bonus           *uint256.Int `json:"bonus"`
	Reinvested      *uint256.Int `json:"reinvested"`
	BonusCycleEnded bool         `json:"bonusCycleEnded"`
}

type PoolMutated struct {
	PoolID   uint32 `json:"poolId"`
	Duration bool   `json:"duration"`
	Capacity bool   `json:"capacity"`
	Renamed  bool   `json:"renamed"`
}

type MetadataUpdated struct {
	PoolID   uint32 `json:"poolId"`
	PoolName string `json:"poolName"`
}

func (Created) Name() string                         { return "Created" }
func (Bonded) Name() string                          { return "Bonded" }
func (Unbonded) Name() string                        { return "Unbonded" }
func (Withdrawn) Name() string                       { return "Withdrawn" }
func (Destroyed) Name() string                       { return "Destroyed" }
func (StateChanged) Name() string                    { return "StateChanged" }
func (MemberRemoved) Name() string                   { return "MemberRemoved" }
func (RolesUpdated) Name() string                    { return "RolesUpdated" }
func (PoolSlashed) Name() string                     { return "PoolSlashed" }
func (UnbondingPoolSlashed) Name() string            { return "UnbondingPoolSlashed" }
func (PoolCommissionUpdated) Name() string           { return "PoolCommissionUpdated" }
func (PoolMaxCommissionUpdated) Name() string        { return "PoolMaxCommissionUpdated" }
func (PoolCommissionChangeRateUpdated) Name() string { return "PoolCommissionChangeRateUpdated" }
func (PoolCommissionClaimed) Name() string           { return "PoolCommissionClaimed" }
func (RewardPaid) Name() string                      { return "RewardPaid" }
func (EraRewardsProcessed) Name() string             { return "EraRewardsProcessed" }
func (PoolMutated) Name() string                     { return "PoolMutated" }
func (MetadataUpdated) Name() string                 { return "MetadataUpdated" }

func (e Created) Pool() uint32                         { return e.PoolID }
func (e Bonded) Pool() uint32                          { return e.PoolID }
func (e Unbonded) Pool() uint32                        { return e.PoolID }
func (e Withdrawn) Pool() uint32                       { return e.PoolID }
func (e Destroyed) Pool() uint32                       { return e.PoolID }
func (e StateChanged) Pool() uint32                    { return e.PoolID }
func (e MemberRemoved) Pool() uint32                   { return e.PoolID }
func (e RolesUpdated) Pool() uint32                    { return e.PoolID }
func (e PoolSlashed) Pool() uint32                     { return e.PoolID }
func (e UnbondingPoolSlashed) Pool() uint32            { return e.PoolID }
func (e PoolCommissionUpdated) Pool() uint32           { return e.PoolID }
func (e PoolMaxCommissionUpdated) Pool() uint32        { return e.PoolID }
func (e PoolCommissionChangeRateUpdated) Pool() uint32 { return e.PoolID }
func (e PoolCommissionClaimed) Pool() uint32           { return e.PoolID }
func (e RewardPaid) Pool() uint32                      { return e.PoolID }
func (e EraRewardsProcessed) Pool() uint32             { return e.PoolID }
func (e PoolMutated) Pool() uint32                     { return e.PoolID }
func (e MetadataUpdated) Pool() uint32                 { return e.PoolID }

// Journal collects the events of the operation in progress.
type Journal struct {
	events []Event
}

func (j *Journal) Emit(ev Event) {
	j.events = append(j.events, ev)
}

// Len is used as a revision to drop the events of a failed operation.
func (j *Journal) Len() int {
	return len(j.events)
}

// RevertTo drops every event emitted after revision.
func (j *Journal) RevertTo(revision int) {
	if revision < len(j.events) {
		j.events = j.events[:revision]
	}
}

// Drain returns the collected events and resets the journal.
func (j *Journal) Drain() []Event {
	evs := j.events
	j.events = nil
	return evs
}
