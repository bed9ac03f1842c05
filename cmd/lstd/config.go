// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/runtime"
	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/tangle"
)

// Config is the node configuration file. Amounts are decimal strings so
// that they are not limited to 64 bits.
type Config struct {
	Engine             EngineConfig  `yaml:"engine"`
	Staking            StakingConfig `yaml:"staking"`
	ExistentialDeposit string        `yaml:"existentialDeposit"`
	Genesis            GenesisConfig `yaml:"genesis"`
}

type EngineConfig struct {
	MaxUnbonding              uint32         `yaml:"maxUnbonding"`
	MaxMetadataLen            uint32         `yaml:"maxMetadataLen"`
	MinDuration               uint32         `yaml:"minDuration"`
	MaxDuration               uint32         `yaml:"maxDuration"`
	GlobalMaxCapacity         string         `yaml:"globalMaxCapacity"`
	DefaultPoolCapacity       string         `yaml:"defaultPoolCapacity"`
	BonusPercentage           tangle.Perbill `yaml:"bonusPercentage"`
	BaseBonusRewardPercentage tangle.Perbill `yaml:"baseBonusRewardPercentage"`
	UnclaimedBalanceReceiver  string         `yaml:"unclaimedBalanceReceiver"`
	RewardRemainderSink       string         `yaml:"rewardRemainderSink"`
	Admin                     string         `yaml:"admin,omitempty"`
}

type StakingConfig struct {
	BondingDuration  uint32 `yaml:"bondingDuration"`
	HistoryDepth     uint32 `yaml:"historyDepth"`
	MinNominatorBond string `yaml:"minNominatorBond"`
	MinValidatorBond string `yaml:"minValidatorBond"`
	ValidatorCount   uint32 `yaml:"validatorCount"`
	MaxNominations   uint32 `yaml:"maxNominations"`
}

type GenesisConfig struct {
	Allocations []AllocationConfig `yaml:"allocations,omitempty"`
	PoolTokens  []PoolTokenConfig  `yaml:"poolTokens,omitempty"`
	Validators  []ValidatorConfig  `yaml:"validators,omitempty"`
	EraReward   string             `yaml:"eraReward,omitempty"`
}

type AllocationConfig struct {
	Address string `yaml:"address"`
	Amount  string `yaml:"amount"`
}

type PoolTokenConfig struct {
	ID       uint64 `yaml:"id"`
	Owner    string `yaml:"owner"`
	Capacity string `yaml:"capacity,omitempty"`
}

type ValidatorConfig struct {
	Stash string `yaml:"stash"`
	Bond  string `yaml:"bond"`
}

func defaultConfig() *Config {
	engine := lst.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			MaxUnbonding:              engine.MaxUnbonding,
			MaxMetadataLen:            engine.MaxMetadataLen,
			MinDuration:               engine.MinDuration,
			MaxDuration:               engine.MaxDuration,
			GlobalMaxCapacity:         engine.GlobalMaxCapacity.Dec(),
			DefaultPoolCapacity:       engine.DefaultPoolCapacity.Dec(),
			BonusPercentage:           engine.BonusPercentage,
			BaseBonusRewardPercentage: engine.BaseBonusRewardPercentage,
			UnclaimedBalanceReceiver:  engine.UnclaimedBalanceReceiver.String(),
			RewardRemainderSink:       engine.RewardRemainderSink.String(),
		},
		Staking: StakingConfig{
			BondingDuration:  28,
			HistoryDepth:     84,
			MinNominatorBond: "1000000000000000000",
			MinValidatorBond: "10000000000000000000",
			ValidatorCount:   100,
			MaxNominations:   16,
		},
		ExistentialDeposit: "10000000000000000",
	}
}

// loadConfig reads the config file at path on top of the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}
	defer file.Close()

	if err := decodeConfig(file, cfg); err != nil {
		return nil, errors.WithMessagef(err, "decode config file %v", path)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (c *Config) print(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(c)
}

type parser struct {
	err error
}

func (p *parser) amount(name, s string) *uint256.Int {
	if p.err != nil {
		return nil
	}
	if s == "" {
		return new(uint256.Int)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		p.err = errors.WithMessagef(err, "%s: %q", name, s)
	}
	return v
}

func (p *parser) optionalAmount(name, s string) *uint256.Int {
	if s == "" {
		return nil
	}
	return p.amount(name, s)
}

func (p *parser) address(name, s string) tangle.Address {
	if p.err != nil || s == "" {
		return tangle.Address{}
	}
	addr, err := tangle.ParseAddress(s)
	if err != nil {
		p.err = errors.WithMessagef(err, "%s: %q", name, s)
	}
	return addr
}

// options converts the configuration into runtime options.
func (c *Config) options() (runtime.Options, error) {
	var p parser

	engine := lst.DefaultConfig()
	engine.MaxUnbonding = c.Engine.MaxUnbonding
	engine.MaxMetadataLen = c.Engine.MaxMetadataLen
	engine.MinDuration = c.Engine.MinDuration
	engine.MaxDuration = c.Engine.MaxDuration
	engine.GlobalMaxCapacity = p.amount("engine.globalMaxCapacity", c.Engine.GlobalMaxCapacity)
	engine.DefaultPoolCapacity = p.amount("engine.defaultPoolCapacity", c.Engine.DefaultPoolCapacity)
	engine.BonusPercentage = c.Engine.BonusPercentage
	engine.BaseBonusRewardPercentage = c.Engine.BaseBonusRewardPercentage
	engine.UnclaimedBalanceReceiver = p.address("engine.unclaimedBalanceReceiver", c.Engine.UnclaimedBalanceReceiver)
	engine.RewardRemainderSink = p.address("engine.rewardRemainderSink", c.Engine.RewardRemainderSink)
	engine.Admin = p.address("engine.admin", c.Engine.Admin)

	opts := runtime.Options{
		Engine: engine,
		Staking: staking.Config{
			BondingDuration:  c.Staking.BondingDuration,
			HistoryDepth:     c.Staking.HistoryDepth,
			MinNominatorBond: p.amount("staking.minNominatorBond", c.Staking.MinNominatorBond),
			MinValidatorBond: p.amount("staking.minValidatorBond", c.Staking.MinValidatorBond),
			ValidatorCount:   c.Staking.ValidatorCount,
			MaxNominations:   c.Staking.MaxNominations,
		},
		ExistentialDeposit: p.amount("existentialDeposit", c.ExistentialDeposit),
	}
	if p.err != nil {
		return runtime.Options{}, p.err
	}
	if engine.MinDuration > engine.MaxDuration {
		return runtime.Options{}, fmt.Errorf("engine.minDuration %d exceeds engine.maxDuration %d", engine.MinDuration, engine.MaxDuration)
	}
	if opts.Staking.BondingDuration == 0 {
		return runtime.Options{}, errors.New("staking.bondingDuration must be positive")
	}
	return opts, nil
}

// genesis converts the genesis section, nil when it is empty.
func (c *Config) genesis() (*runtime.Genesis, error) {
	g := c.Genesis
	if len(g.Allocations) == 0 && len(g.PoolTokens) == 0 && len(g.Validators) == 0 && g.EraReward == "" {
		return nil, nil
	}

	var (
		p   parser
		gen runtime.Genesis
	)
	for i, a := range g.Allocations {
		gen.Allocations = append(gen.Allocations, runtime.Allocation{
			Address: p.address(fmt.Sprintf("genesis.allocations[%d].address", i), a.Address),
			Amount:  p.amount(fmt.Sprintf("genesis.allocations[%d].amount", i), a.Amount),
		})
	}
	for i, t := range g.PoolTokens {
		gen.PoolTokens = append(gen.PoolTokens, runtime.PoolToken{
			ID:       t.ID,
			Owner:    p.address(fmt.Sprintf("genesis.poolTokens[%d].owner", i), t.Owner),
			Capacity: p.optionalAmount(fmt.Sprintf("genesis.poolTokens[%d].capacity", i), t.Capacity),
		})
	}
	for i, v := range g.Validators {
		gen.Validators = append(gen.Validators, runtime.Validator{
			Stash: p.address(fmt.Sprintf("genesis.validators[%d].stash", i), v.Stash),
			Bond:  p.amount(fmt.Sprintf("genesis.validators[%d].bond", i), v.Bond),
		})
	}
	gen.EraReward = p.optionalAmount("genesis.eraReward", g.EraReward)
	if p.err != nil {
		return nil, p.err
	}
	return &gen, nil
}
