// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package member

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	alice = tangle.BytesToAddress([]byte("alice"))
	bob   = tangle.BytesToAddress([]byte("bob"))
	carol = tangle.BytesToAddress([]byte("carol"))
)

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestUnbondLifecycle(t *testing.T) {
	m := New(1, alice)
	assert.Equal(t, Removed, m.Status(0))

	m.Points = n(100)
	assert.Equal(t, Active, m.Status(0))

	assert.ErrorIs(t, m.TryUnbond(n(101), n(101), 5, 2), reverts.ErrNoBalanceToUnbond)

	require.NoError(t, m.TryUnbond(n(30), n(30), 5, 2))
	assert.Equal(t, PartiallyUnbonding, m.Status(0))
	// same era merges
	require.NoError(t, m.TryUnbond(n(10), n(10), 5, 2))
	assert.Equal(t, []Unbonding{{Era: 5, Points: n(40)}}, m.UnbondingEras)

	require.NoError(t, m.TryUnbond(n(20), n(20), 3, 2))
	assert.ErrorIs(t, m.TryUnbond(n(20), n(20), 7, 2), reverts.ErrMaxUnbondingLimit)
	assert.Equal(t, n(40), m.Points)

	require.NoError(t, m.TryUnbond(n(40), n(40), 7, 3))
	assert.Equal(t, []uint32{3, 5, 7}, []uint32{m.UnbondingEras[0].Era, m.UnbondingEras[1].Era, m.UnbondingEras[2].Era})
	assert.Equal(t, n(100), m.TotalPoints())
	assert.Equal(t, n(100), m.UnbondingPoints())
	assert.Equal(t, FullyUnbonding, m.Status(6))
	assert.Equal(t, Withdrawable, m.Status(7))
	assert.ErrorIs(t, m.TryUnbond(n(1), n(1), 8, 3), reverts.ErrFullyUnbonding)

	assert.Nil(t, m.WithdrawUnlocked(2))
	withdrawn := m.WithdrawUnlocked(5)
	assert.Equal(t, []Unbonding{{Era: 3, Points: n(20)}, {Era: 5, Points: n(40)}}, withdrawn)
	assert.Equal(t, []Unbonding{{Era: 7, Points: n(40)}}, m.UnbondingEras)
	assert.Equal(t, n(40), m.UnbondingAt(7))
	assert.True(t, m.UnbondingAt(5).IsZero())

	m.WithdrawUnlocked(7)
	assert.Nil(t, m.UnbondingEras)
	assert.Equal(t, Removed, m.Status(7))
}

func TestUnbondIssuedPoints(t *testing.T) {
	m := New(1, alice)
	m.Points = n(60)

	// a slashed bucket issues more points than the member gives up
	require.NoError(t, m.TryUnbond(n(20), n(40), 3, 2))
	assert.Equal(t, n(40), m.Points)
	assert.Equal(t, n(40), m.UnbondingAt(3))
	assert.Equal(t, n(80), m.TotalPoints())
}

func TestCopy(t *testing.T) {
	m := New(1, alice)
	m.Points = n(10)
	require.NoError(t, m.TryUnbond(n(5), n(5), 4, 1))

	cpy := m.Copy()
	assert.Equal(t, m, cpy)
	cpy.UnbondingEras[0].Points.SetUint64(1)
	cpy.Points.SetUint64(1)
	assert.Equal(t, n(5), m.UnbondingEras[0].Points)
	assert.Equal(t, n(5), m.Points)
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	svc := NewService(storage.NewContext(tangle.BytesToAddress([]byte("lst")), state.New(db)))

	got, err := svc.Get(1, alice)
	assert.NoError(t, err)
	assert.Nil(t, got)

	for _, acc := range []tangle.Address{alice, bob, carol} {
		m := New(1, acc)
		m.Points = n(10)
		added, err := svc.Set(m)
		require.NoError(t, err)
		assert.True(t, added)
	}
	other := New(2, alice)
	other.Points = n(1)
	_, err = svc.Set(other)
	require.NoError(t, err)

	m, err := svc.Get(1, bob)
	require.NoError(t, err)
	require.NoError(t, m.TryUnbond(n(4), n(4), 9, 1))
	added, err := svc.Set(m)
	require.NoError(t, err)
	assert.False(t, added)

	got, err = svc.Get(1, bob)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	count, err := svc.Count(1)
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	require.NoError(t, svc.Remove(1, bob))
	accounts, err := svc.Accounts(1)
	assert.NoError(t, err)
	assert.Equal(t, []tangle.Address{alice, carol}, accounts)

	var total uint64
	require.NoError(t, svc.Iter(1, func(m *Member) error {
		total += m.Points.Uint64()
		return nil
	}))
	assert.Equal(t, uint64(20), total)

	require.NoError(t, svc.RemoveAll(1))
	count, err = svc.Count(1)
	assert.NoError(t, err)
	assert.Zero(t, count)
	got, err = svc.Get(1, alice)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Get(2, alice)
	require.NoError(t, err)
	assert.Equal(t, other, got)
}
