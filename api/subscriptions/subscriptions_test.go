// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/runtime"
	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/tangle"
)

var (
	alice = tangle.BytesToAddress([]byte("alice"))
	bob   = tangle.BytesToAddress([]byte("bob"))
)

func newRuntime(t *testing.T) *runtime.Runtime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	eventDB, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { eventDB.Close() })

	engine := lst.DefaultConfig()
	engine.GlobalMaxCapacity = uint256.NewInt(1_000_000)
	engine.DefaultPoolCapacity = uint256.NewInt(100_000)

	rt, err := runtime.New(db, eventDB, runtime.Options{
		Engine: engine,
		Staking: staking.Config{
			BondingDuration:  3,
			HistoryDepth:     10,
			MinNominatorBond: uint256.NewInt(10),
			MinValidatorBond: uint256.NewInt(100),
			ValidatorCount:   2,
			MaxNominations:   4,
		},
		ExistentialDeposit: uint256.NewInt(5),
	}, &runtime.Genesis{
		Allocations: []runtime.Allocation{
			{Address: alice, Amount: uint256.NewInt(1000)},
			{Address: bob, Amount: uint256.NewInt(1000)},
		},
		PoolTokens: []runtime.PoolToken{{ID: 1, Owner: alice}},
	})
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt
}

func newServer(t *testing.T, rt *runtime.Runtime, backtraceLimit uint64) (*httptest.Server, *Subscriptions) {
	subs := New(rt, []string{"*"}, backtraceLimit)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
	})
	return ts, subs
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func createPool(t *testing.T, rt *runtime.Runtime) {
	require.NoError(t, rt.Execute("create", func(env *runtime.Env) error {
		_, err := env.Pools.Create(alice, lst.CreateParams{
			TokenID:   1,
			Deposit:   uint256.NewInt(100),
			Capacity:  uint256.NewInt(10_000),
			Duration:  10,
			Root:      alice,
			Nominator: alice,
			Bouncer:   alice,
		})
		return err
	}))
}

func bond(t *testing.T, rt *runtime.Runtime, who tangle.Address, amount uint64) {
	require.NoError(t, rt.Execute("bond", func(env *runtime.Env) error {
		return env.Pools.Bond(who, 1, lst.BondAmount(uint256.NewInt(amount)))
	}))
}

func TestSubscribeBlocks(t *testing.T) {
	rt := newRuntime(t)
	ts, subs := newServer(t, rt, 10)
	defer subs.Close()

	conn := dial(t, ts, "/subscriptions/blocks")

	createPool(t, rt)
	_, err := rt.Seal(context.Background())
	require.NoError(t, err)

	var msg BlockMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(1), msg.Number)
	require.Len(t, msg.Events, 2)
	assert.Equal(t, "Created", msg.Events[0].Name)

	_, err = rt.Seal(context.Background())
	require.NoError(t, err)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(2), msg.Number)
	assert.Empty(t, msg.Events)
}

func TestSubscribeEvents(t *testing.T) {
	rt := newRuntime(t)
	ts, subs := newServer(t, rt, 10)
	defer subs.Close()

	createPool(t, rt)
	_, err := rt.Seal(context.Background())
	require.NoError(t, err)

	// replays block 1 before following new blocks
	conn := dial(t, ts, "/subscriptions/events?pool=1&name=Bonded&pos=0")

	var ev eventdb.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, uint64(1), ev.BlockNumber)
	assert.Equal(t, "Bonded", ev.Name)

	bond(t, rt, bob, 50)
	_, err = rt.Seal(context.Background())
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, uint64(2), ev.BlockNumber)
	assert.Equal(t, "Bonded", ev.Name)
	assert.Equal(t, uint32(1), ev.PoolID)
}

func TestSubscribeEventsBadRequest(t *testing.T) {
	rt := newRuntime(t)
	ts, subs := newServer(t, rt, 0)
	defer subs.Close()

	createPool(t, rt)
	_, err := rt.Seal(context.Background())
	require.NoError(t, err)

	u := "ws" + strings.TrimPrefix(ts.URL, "http")
	for path, status := range map[string]int{
		"/subscriptions/events?pos=0":   http.StatusForbidden,
		"/subscriptions/events?pos=x":   http.StatusBadRequest,
		"/subscriptions/events?pool=-1": http.StatusBadRequest,
	} {
		_, res, err := websocket.DefaultDialer.Dial(u+path, nil)
		assert.ErrorIs(t, err, websocket.ErrBadHandshake, path)
		require.NotNil(t, res, path)
		assert.Equal(t, status, res.StatusCode, path)
		res.Body.Close()
	}
}

func TestClose(t *testing.T) {
	rt := newRuntime(t)
	ts, subs := newServer(t, rt, 10)

	conn := dial(t, ts, "/subscriptions/blocks")

	done := make(chan struct{})
	go func() {
		subs.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscriptions not closed")
	}

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
