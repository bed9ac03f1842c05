// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

func newList(t *testing.T) *LinkedList[storage.Uint32] {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := storage.NewContext(tangle.BytesToAddress([]byte("list")), state.New(db))
	return New[storage.Uint32](sctx, tangle.BytesToBytes32([]byte("ids")))
}

func TestLinkedList(t *testing.T) {
	list := newList(t)

	n, err := list.Len()
	assert.NoError(t, err)
	assert.Zero(t, n)

	// zero is an ordinary element
	for _, id := range []storage.Uint32{0, 1, 2, 3} {
		require.NoError(t, list.Add(id))
	}
	require.NoError(t, list.Add(2))

	keys, err := list.Keys()
	assert.NoError(t, err)
	assert.Equal(t, []storage.Uint32{0, 1, 2, 3}, keys)

	n, err = list.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	// middle, head, tail
	require.NoError(t, list.Remove(1))
	require.NoError(t, list.Remove(0))
	require.NoError(t, list.Remove(3))
	require.NoError(t, list.Remove(7))

	keys, err = list.Keys()
	assert.NoError(t, err)
	assert.Equal(t, []storage.Uint32{2}, keys)

	ok, err := list.Contains(2)
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = list.Contains(0)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, list.Remove(2))
	n, err = list.Len()
	assert.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, list.Add(5))
	keys, err = list.Keys()
	assert.NoError(t, err)
	assert.Equal(t, []storage.Uint32{5}, keys)
}

func TestIterRemove(t *testing.T) {
	list := newList(t)
	for id := storage.Uint32(1); id <= 5; id++ {
		require.NoError(t, list.Add(id))
	}

	var seen []storage.Uint32
	require.NoError(t, list.Iter(func(id storage.Uint32) error {
		seen = append(seen, id)
		if id%2 == 1 {
			return list.Remove(id)
		}
		return nil
	}))
	assert.Equal(t, []storage.Uint32{1, 2, 3, 4, 5}, seen)

	keys, err := list.Keys()
	assert.NoError(t, err)
	assert.Equal(t, []storage.Uint32{2, 4}, keys)
}
