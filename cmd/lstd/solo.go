// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/tangle-network/lst/tangle"
)

const (
	devAccountCount  = 5
	devBalance       = "1000000000000000000000000" // 1M units
	devValidatorBond = "10000000000000000000000"
	devEraReward     = "1000000000000000000000"
)

// devAccounts are deterministic, so solo chains can be scripted.
func devAccounts() []tangle.Address {
	accounts := make([]tangle.Address, 0, devAccountCount)
	for i := range devAccountCount {
		h := tangle.Keccak256([]byte("lst-dev-account"), []byte{byte(i)})
		accounts = append(accounts, tangle.BytesToAddress(h.Bytes()))
	}
	return accounts
}

// withDevGenesis funds the dev accounts, gives the first three a pool token
// each and makes the last one a validator, unless the config has its own
// genesis.
func withDevGenesis(cfg *Config) {
	g := &cfg.Genesis
	if len(g.Allocations) > 0 || len(g.PoolTokens) > 0 || len(g.Validators) > 0 {
		return
	}
	accounts := devAccounts()
	for _, a := range accounts {
		g.Allocations = append(g.Allocations, AllocationConfig{Address: a.String(), Amount: devBalance})
	}
	for i, a := range accounts[:3] {
		g.PoolTokens = append(g.PoolTokens, PoolTokenConfig{ID: uint64(i + 1), Owner: a.String()})
	}
	g.Validators = append(g.Validators, ValidatorConfig{Stash: accounts[len(accounts)-1].String(), Bond: devValidatorBond})
	if g.EraReward == "" {
		g.EraReward = devEraReward
	}
}
