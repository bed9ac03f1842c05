// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(storage.NewContext(tangle.BytesToAddress([]byte("lst")), state.New(db)))
}

func TestService(t *testing.T) {
	svc := newService(t)

	got, err := svc.Get(1)
	assert.NoError(t, err)
	assert.Nil(t, got)

	id, err := svc.NextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
	id, err = svc.NextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), id)

	last, err := svc.LastID()
	assert.NoError(t, err)
	assert.Equal(t, uint32(2), last)

	p1, p2 := newPool(), newPool()
	p2.ID = 2
	require.NoError(t, svc.Set(p1))
	require.NoError(t, svc.Set(p2))
	require.NoError(t, svc.Set(p1))

	got, err = svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, p1, got)

	count, err := svc.Count()
	assert.NoError(t, err)
	assert.Equal(t, uint32(2), count)

	ids, err := svc.IDs()
	assert.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, ids)

	require.NoError(t, svc.Remove(1))
	exists, err := svc.Exists(1)
	assert.NoError(t, err)
	assert.False(t, exists)
	got, err = svc.Get(1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestServiceLookups(t *testing.T) {
	svc := newService(t)
	bonded := tangle.PoolAccount(tangle.DefaultPalletID, tangle.AccountBonded, 0)

	_, ok, err := svc.PoolOfAccount(bonded)
	assert.NoError(t, err)
	assert.False(t, ok)

	// pool zero is a valid id
	require.NoError(t, svc.SetAccountLookup(bonded, 0))
	id, ok, err := svc.PoolOfAccount(bonded)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), id)

	svc.RemoveAccountLookup(bonded)
	_, ok, err = svc.PoolOfAccount(bonded)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetTokenUsed(7, 3))
	id, ok, err = svc.PoolOfToken(7)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), id)
	svc.RemoveTokenUsed(7)
	_, ok, err = svc.PoolOfToken(7)
	assert.NoError(t, err)
	assert.False(t, ok)
}
