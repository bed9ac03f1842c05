// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

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

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

func newCurrency(t *testing.T) *Currency {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(tangle.BytesToAddress([]byte("balances")), state.New(db)), n(5))
}

func balanceOf(t *testing.T, c *Currency, who tangle.Address) uint64 {
	b, err := c.FreeBalance(who)
	require.NoError(t, err)
	return b.Uint64()
}

func TestTransfer(t *testing.T) {
	c := newCurrency(t)
	require.NoError(t, c.Deposit(alice, n(100)))
	assert.ErrorIs(t, c.Deposit(bob, n(4)), ErrExistentialDeposit)

	assert.ErrorIs(t, c.Transfer(alice, bob, n(3), true), ErrExistentialDeposit)
	assert.ErrorIs(t, c.Transfer(alice, bob, n(101), false), ErrInsufficientBalance)
	assert.ErrorIs(t, c.Transfer(alice, bob, n(96), true), ErrKeepAlive)

	require.NoError(t, c.Transfer(alice, bob, n(50), true))
	assert.Equal(t, uint64(50), balanceOf(t, c, alice))
	assert.Equal(t, uint64(50), balanceOf(t, c, bob))

	// dust below the existential deposit is burned
	require.NoError(t, c.Transfer(alice, bob, n(48), false))
	assert.Equal(t, uint64(0), balanceOf(t, c, alice))
	assert.Equal(t, uint64(98), balanceOf(t, c, bob))

	total, err := c.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, n(98), total)
}

func TestLocks(t *testing.T) {
	c := newCurrency(t)
	require.NoError(t, c.Deposit(alice, n(100)))
	require.NoError(t, c.SetLock(alice, n(80)))
	assert.ErrorIs(t, c.SetLock(alice, n(101)), ErrLiquidityRestricted)

	transferable, err := c.TransferableBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, n(20), transferable)
	assert.ErrorIs(t, c.Transfer(alice, bob, n(21), false), ErrInsufficientBalance)

	// a locked account is never reaped
	require.NoError(t, c.Transfer(alice, bob, n(20), true))
	assert.Equal(t, uint64(80), balanceOf(t, c, alice))

	slashed, err := c.Slash(alice, n(30))
	require.NoError(t, err)
	assert.Equal(t, n(30), slashed)
	assert.Equal(t, uint64(50), balanceOf(t, c, alice))
	require.NoError(t, c.SetLock(alice, n(50)))
	require.NoError(t, c.SetLock(alice, n(0)))
	require.NoError(t, c.Withdraw(alice, n(50), false))
	assert.Equal(t, uint64(0), balanceOf(t, c, alice))
}

func TestMakeFreeBalanceBe(t *testing.T) {
	c := newCurrency(t)
	require.NoError(t, c.MakeFreeBalanceBe(alice, n(100)))
	require.NoError(t, c.MakeFreeBalanceBe(bob, n(10)))
	require.NoError(t, c.MakeFreeBalanceBe(alice, n(40)))

	total, err := c.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, n(50), total)

	require.NoError(t, c.MakeFreeBalanceBe(alice, n(0)))
	require.NoError(t, c.Withdraw(bob, n(6), false))
	total, err = c.TotalIssuance()
	require.NoError(t, err)
	// bob is reaped with the 4 left
	assert.True(t, total.IsZero())
	assert.ErrorIs(t, c.Withdraw(bob, n(1), false), ErrInsufficientBalance)
}

func TestDepositWithdrawIssuance(t *testing.T) {
	c := newCurrency(t)
	issuance := func() *uint256.Int {
		total, err := c.TotalIssuance()
		require.NoError(t, err)
		return total
	}

	require.NoError(t, c.Deposit(alice, n(100)))
	require.NoError(t, c.Deposit(bob, n(20)))
	assert.Equal(t, n(120), issuance())

	require.NoError(t, c.Withdraw(alice, n(30), true))
	assert.Equal(t, uint64(70), balanceOf(t, c, alice))
	assert.Equal(t, n(90), issuance())

	slashed, err := c.Slash(bob, n(5))
	require.NoError(t, err)
	assert.Equal(t, n(5), slashed)
	assert.Equal(t, n(85), issuance())

	require.NoError(t, c.Withdraw(alice, n(70), false))
	require.NoError(t, c.Withdraw(bob, n(15), false))
	assert.True(t, issuance().IsZero())
}
