// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/tangle"
)

// fill inserts 10 blocks, each with a Bonded event of pool n%3+1 and a
// Created event of pool n+100.
func fill(t *testing.T, db *EventDB) {
	var evs []*Event
	for n := range uint64(10) {
		bonded, err := NewEvent(n, 1000+n*10, 0, events.Bonded{
			Member: tangle.BytesToAddress([]byte("alice")),
			PoolID: uint32(n%3 + 1),
			Bonded: uint256.NewInt(n),
		})
		require.NoError(t, err)
		created, err := NewEvent(n, 1000+n*10, 1, events.Created{PoolID: uint32(n + 100)})
		require.NoError(t, err)
		evs = append(evs, bonded, created)
	}
	require.NoError(t, db.Insert(context.Background(), evs))
}

func TestEventDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, ok, err := db.LastBlock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, db.DriverVersion())

	fill(t, db)

	last, ok, err := db.LastBlock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(9), last)

	all, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)
	assert.Equal(t, "Bonded", all[0].Name)
	assert.Equal(t, "Created", all[1].Name)
	assert.Equal(t, uint32(100), all[1].PoolID)

	var created events.Created
	require.NoError(t, json.Unmarshal(all[1].Data, &created))
	assert.Equal(t, uint32(100), created.PoolID)

	tests := []struct {
		name   string
		filter *Filter
		want   int
	}{
		{"block range", &Filter{Range: &Range{Unit: Block, From: 2, To: 4}}, 6},
		{"open range", &Filter{Range: &Range{Unit: Block, From: 8}}, 4},
		{"time range", &Filter{Range: &Range{Unit: Time, From: 1000, To: 1015}}, 4},
		{"pool", &Filter{PoolIDs: []uint32{1}}, 4},
		{"pools", &Filter{PoolIDs: []uint32{1, 2, 105}}, 8},
		{"name", &Filter{Names: []string{"Created"}}, 10},
		{"name and pool", &Filter{Names: []string{"Created"}, PoolIDs: []uint32{1}}, 0},
		{"limit", &Filter{Options: &Options{Offset: 5, Limit: 3}}, 3},
		{"offset past end", &Filter{Options: &Options{Offset: 19, Limit: 3}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Filter(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	desc, err := db.Filter(ctx, &Filter{Order: DESC, Options: &Options{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, uint64(9), desc[0].BlockNumber)
	assert.Equal(t, uint32(1), desc[0].Index)
	assert.Equal(t, uint32(0), desc[1].Index)
}

func TestInsertReplaces(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	assert.NoError(t, db.Insert(ctx, nil))

	ev, err := NewEvent(1, 10, 0, events.Destroyed{PoolID: 1})
	require.NoError(t, err)
	require.NoError(t, db.Insert(ctx, []*Event{ev}))
	ev, err = NewEvent(1, 10, 0, events.Destroyed{PoolID: 2})
	require.NoError(t, err)
	require.NoError(t, db.Insert(ctx, []*Event{ev}))

	got, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(2), got[0].PoolID)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	fill(t, db)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Filter(context.Background(), &Filter{PoolIDs: []uint32{3}})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
