// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/tangle"
)

// ConfigVariable is a module constant which can be overridden from state,
// mainly to shorten periods on dev networks.
type ConfigVariable struct {
	slot        tangle.Bytes32
	name        string
	value       uint32
	initialised bool
}

func NewConfigVariable(name string, defaultValue uint32) *ConfigVariable {
	return &ConfigVariable{
		slot:  tangle.BytesToBytes32([]byte(name)),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Get() uint32 {
	return c.value
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() tangle.Bytes32 {
	return c.slot
}

// Override loads a non zero value stored at the variable's slot, once.
func (c *ConfigVariable) Override(ctx *Context) {
	if c.initialised {
		return
	}
	word, err := ctx.state.GetStorage(ctx.address, c.slot)
	if err != nil {
		log.Warn("failed to read config value", "slot", c.Name(), "error", err)
		return
	}
	num := new(big.Int).SetBytes(word.Bytes())

	c.initialised = true

	if num.Sign() != 0 && num.IsUint64() && num.Uint64() <= 0xFFFFFFFF {
		c.value = uint32(num.Uint64())
		log.Debug("debug override found new config value", "slot", c.Name(), "value", c.Get())
	} else {
		log.Debug("using default config value", "slot", c.Name(), "value", c.Get())
	}
}

// Store persists an override for the variable. It takes effect for variables
// that have not been initialised yet.
func (c *ConfigVariable) Store(ctx *Context, value uint32) {
	ctx.state.SetStorage(ctx.address, c.slot, tangle.BytesToBytes32(big.NewInt(int64(value)).Bytes()))
}
