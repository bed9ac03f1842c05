// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed, RLP encoded storage slots for the engine
// modules. Every module owns an address; values live at blake2b(key, slot).
package storage

import (
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/tangle"
)

// Context binds a module address to the state it reads and writes.
type Context struct {
	address tangle.Address
	state   *state.State
}

func NewContext(address tangle.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() tangle.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
