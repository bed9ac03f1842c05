// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/runtime"
	"github.com/tangle-network/lst/tangle"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, lst.DefaultConfig(), opts.Engine)
	assert.Equal(t, uint32(28), opts.Staking.BondingDuration)
	assert.Equal(t, "10000000000000000", opts.ExistentialDeposit.Dec())

	gene, err := cfg.genesis()
	require.NoError(t, err)
	assert.Nil(t, gene)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lst.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  bonusPercentage: 25%
  maxDuration: 30
staking:
  bondingDuration: 7
genesis:
  allocations:
    - address: "0x0000000000000000000000000000000000000001"
      amount: "1000"
  poolTokens:
    - id: 4
      owner: "0x0000000000000000000000000000000000000001"
      capacity: "500"
  eraReward: "10"
`), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, tangle.PerbillFromPercent(25), opts.Engine.BonusPercentage)
	assert.Equal(t, uint32(30), opts.Engine.MaxDuration)
	// untouched keys keep their defaults
	assert.Equal(t, uint32(8), opts.Engine.MaxUnbonding)
	assert.Equal(t, uint32(7), opts.Staking.BondingDuration)
	assert.Equal(t, uint32(84), opts.Staking.HistoryDepth)

	gene, err := cfg.genesis()
	require.NoError(t, err)
	require.NotNil(t, gene)
	owner := tangle.BytesToAddress([]byte{1})
	assert.Equal(t, []runtime.Allocation{{Address: owner, Amount: uint256.NewInt(1000)}}, gene.Allocations)
	assert.Equal(t, []runtime.PoolToken{{ID: 4, Owner: owner, Capacity: uint256.NewInt(500)}}, gene.PoolTokens)
	assert.Empty(t, gene.Validators)
	assert.Equal(t, uint256.NewInt(10), gene.EraReward)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"unknown key", "engine:\n  maxPools: 3\n", "maxPools"},
		{"bad percentage", "engine:\n  bonusPercentage: 120%\n", "invalid percentage"},
		{"bad amount", "existentialDeposit: ten\n", "existentialDeposit"},
		{"bad address", "engine:\n  admin: 0x01\n", "engine.admin"},
		{"duration bounds", "engine:\n  minDuration: 10\n  maxDuration: 5\n", "exceeds"},
		{"zero bonding duration", "staking:\n  bondingDuration: 0\n", "bondingDuration"},
		{"bad genesis amount", "genesis:\n  allocations:\n    - address: \"0x0000000000000000000000000000000000000001\"\n      amount: \"-1\"\n", "genesis.allocations[0].amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			err := decodeConfig(strings.NewReader(tt.yaml), cfg)
			if err == nil {
				_, err = cfg.options()
			}
			if err == nil {
				_, err = cfg.genesis()
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPrintConfig(t *testing.T) {
	cfg := defaultConfig()
	withDevGenesis(cfg)

	var buf bytes.Buffer
	require.NoError(t, cfg.print(&buf))
	assert.Contains(t, buf.String(), "bonusPercentage: 20%")

	decoded := &Config{}
	require.NoError(t, decodeConfig(&buf, decoded))
	assert.Equal(t, cfg, decoded)
}

func TestDevGenesis(t *testing.T) {
	cfg := defaultConfig()
	withDevGenesis(cfg)

	accounts := devAccounts()
	assert.Len(t, accounts, devAccountCount)
	assert.Equal(t, accounts, devAccounts())

	opts, err := cfg.options()
	require.NoError(t, err)
	gene, err := cfg.genesis()
	require.NoError(t, err)
	require.NotNil(t, gene)
	assert.Len(t, gene.Allocations, devAccountCount)
	assert.Len(t, gene.PoolTokens, 3)
	assert.Equal(t, accounts[devAccountCount-1], gene.Validators[0].Stash)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	eventDB, err := eventdb.NewMem()
	require.NoError(t, err)
	defer eventDB.Close()

	rt, err := runtime.New(db, eventDB, opts, gene)
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.View(func(env *runtime.Env) error {
		owner, ok, err := env.Assets.OwnerOf(2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, accounts[1], owner)

		free, err := env.Currency.FreeBalance(accounts[0])
		require.NoError(t, err)
		assert.Equal(t, devBalance, free.Dec())
		return nil
	}))

	// an explicit genesis is kept
	cfg = defaultConfig()
	cfg.Genesis.Allocations = []AllocationConfig{{Address: accounts[0].String(), Amount: "1"}}
	withDevGenesis(cfg)
	assert.Len(t, cfg.Genesis.Allocations, 1)
	assert.Empty(t, cfg.Genesis.Validators)
}
