// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assets

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	alice = tangle.BytesToAddress([]byte("alice"))
	bob   = tangle.BytesToAddress([]byte("bob"))
)

func newAssets(t *testing.T) *Assets {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(tangle.BytesToAddress([]byte("assets")), state.New(db)))
}

func TestFungible(t *testing.T) {
	a := newAssets(t)
	require.NoError(t, a.MintInto(1, alice, uint256.NewInt(10)))
	require.NoError(t, a.MintInto(1, bob, uint256.NewInt(5)))
	require.NoError(t, a.MintInto(2, alice, uint256.NewInt(7)))

	assert.ErrorIs(t, a.BurnFrom(1, bob, uint256.NewInt(6)), ErrBalanceLow)
	require.NoError(t, a.BurnFrom(1, bob, uint256.NewInt(5)))

	supply, err := a.TotalIssuance(1)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(10), supply)
	balance, err := a.BalanceOf(1, bob)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	a.BurnSupply(1)
	supply, err = a.TotalIssuance(1)
	require.NoError(t, err)
	assert.True(t, supply.IsZero())
	supply, err = a.TotalIssuance(2)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(7), supply)
}

func TestTokens(t *testing.T) {
	a := newAssets(t)
	_, ok, err := a.OwnerOf(0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.MintToken(0, alice, Attribute{Key: "max_pool_capacity", Value: "1000"}))
	assert.ErrorIs(t, a.MintToken(0, bob), ErrTokenExists)

	owner, ok, err := a.OwnerOf(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, alice, owner)

	v, ok, err := a.Attribute(0, "max_pool_capacity")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1000", v)
	require.NoError(t, a.SetAttribute(0, "max_pool_capacity", "2000"))
	v, _, _ = a.Attribute(0, "max_pool_capacity")
	assert.Equal(t, "2000", v)

	assert.ErrorIs(t, a.TransferToken(0, bob, alice), ErrNotTokenHolder)
	require.NoError(t, a.TransferToken(0, alice, bob))
	owner, _, _ = a.OwnerOf(0)
	assert.Equal(t, bob, owner)

	a.BurnToken(0)
	_, ok, err = a.OwnerOf(0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, a.TransferToken(0, bob, alice), ErrUnknownToken)
}
