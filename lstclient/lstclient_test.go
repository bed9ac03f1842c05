// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lstclient_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/api"
	"github.com/tangle-network/lst/api/tx"
	"github.com/tangle-network/lst/eventdb"
	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/lstclient"
	"github.com/tangle-network/lst/lstclient/common"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/misbehavior"
	"github.com/tangle-network/lst/runtime"
	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/tangle"
)

var (
	alice     = tangle.BytesToAddress([]byte("alice"))
	bob       = tangle.BytesToAddress([]byte("bob"))
	validator = tangle.BytesToAddress([]byte("validator"))
)

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

func newNode(t *testing.T) (*runtime.Runtime, *httptest.Server) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	eventDB, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { eventDB.Close() })

	engine := lst.DefaultConfig()
	engine.GlobalMaxCapacity = n(1_000_000)
	engine.DefaultPoolCapacity = n(100_000)

	rt, err := runtime.New(db, eventDB, runtime.Options{
		Engine: engine,
		Staking: staking.Config{
			BondingDuration:  3,
			HistoryDepth:     10,
			MinNominatorBond: n(10),
			MinValidatorBond: n(100),
			ValidatorCount:   2,
			MaxNominations:   4,
		},
		ExistentialDeposit: n(5),
		CheckInvariants:    true,
	}, &runtime.Genesis{
		Allocations: []runtime.Allocation{
			{Address: alice, Amount: n(1000)},
			{Address: bob, Amount: n(1000)},
			{Address: validator, Amount: n(1000)},
		},
		PoolTokens: []runtime.PoolToken{{ID: 1, Owner: alice}},
		Validators: []runtime.Validator{{Stash: validator, Bond: n(200)}},
		EraReward:  n(100),
	})
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	handler, closeSubs := api.New(rt, api.Options{
		AllowedOrigins: "*",
		BacktraceLimit: 100,
		EventsLimit:    100,
		EnableTx:       true,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		closeSubs()
	})
	return rt, ts
}

func createPool(t *testing.T, c *lstclient.Client) {
	id, err := c.Create(&tx.Create{
		Caller:    alice,
		TokenID:   1,
		Deposit:   n(100),
		Capacity:  n(10_000),
		Duration:  10,
		Root:      alice,
		Nominator: alice,
		Bouncer:   alice,
		Name:      "pool",
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
}

func TestClient(t *testing.T) {
	_, ts := newNode(t)
	c := lstclient.New(ts.URL)

	createPool(t, c)
	require.NoError(t, c.Bond(&tx.Bond{Caller: bob, PoolID: 1, Amount: n(50)}))

	err := c.Bond(&tx.Bond{Caller: bob, PoolID: 9, Amount: n(50)})
	assert.ErrorIs(t, err, common.ErrNot200Status)

	list, err := c.Pools()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n(150), list[0].Points)

	p, err := c.Pool(1)
	require.NoError(t, err)
	assert.Equal(t, "pool", p.Name)
	assert.Equal(t, alice, p.Roles.Depositor)

	_, err = c.Pool(9)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	members, err := c.Members(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []tangle.Address{alice, bob}, members)

	require.NoError(t, c.Unbond(&tx.Unbond{Caller: bob, PoolID: 1, Member: bob, Points: n(20)}))
	m, err := c.Member(1, bob)
	require.NoError(t, err)
	assert.Equal(t, n(30), m.Points)
	require.Len(t, m.Unbonding, 1)
	assert.Equal(t, n(20), m.Unbonding[0].Points)

	sub, err := c.SubPools(1)
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, n(20), sub[0].Balance)

	params, err := c.Params()
	require.NoError(t, err)
	assert.NotNil(t, params.TotalValueLocked)

	era, err := c.CurrentEra()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), era.Era)
	assert.Equal(t, uint32(3), era.BondingDuration)

	next, err := c.AdvanceEra()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next)

	_, err = c.EraPayout()
	require.NoError(t, err)
}

func TestVerify(t *testing.T) {
	_, ts := newNode(t)
	c := lstclient.New(ts.URL)

	verdict, err := c.Verify(&misbehavior.Submission{
		RoleType: misbehavior.RoleTSS,
		Justification: misbehavior.Justification{
			Protocol: misbehavior.ProtocolSigning,
		},
	})
	require.NoError(t, err)
	assert.False(t, verdict.Proven)
	assert.NotEmpty(t, verdict.Reason)
}

func TestSubscriptions(t *testing.T) {
	rt, ts := newNode(t)
	c, err := lstclient.NewWithWS(ts.URL)
	require.NoError(t, err)

	blocks, err := c.SubscribeBlocks()
	require.NoError(t, err)
	defer blocks.Unsubscribe()

	createPool(t, c)
	_, err = rt.Seal(context.Background())
	require.NoError(t, err)

	select {
	case msg := <-blocks.EventChan:
		require.NoError(t, msg.Error)
		assert.Equal(t, uint64(1), msg.Data.Number)
		require.Len(t, msg.Data.Events, 2)
		assert.Equal(t, "Created", msg.Data.Events[0].Name)
	case <-time.After(time.Second):
		t.Fatal("no block received")
	}

	indexed, err := c.FilterEvents(&eventdb.Filter{PoolIDs: []uint32{1}})
	require.NoError(t, err)
	assert.Len(t, indexed, 2)

	pool, pos := uint32(1), uint64(0)
	events, err := c.SubscribeEvents(&pool, []string{"Bonded"}, &pos)
	require.NoError(t, err)

	select {
	case msg := <-events.EventChan:
		require.NoError(t, msg.Error)
		assert.Equal(t, "Bonded", msg.Data.Name)
		assert.Equal(t, uint64(1), msg.Data.BlockNumber)
	case <-time.After(time.Second):
		t.Fatal("no event replayed")
	}

	events.Unsubscribe()
	select {
	case _, ok := <-events.EventChan:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	// websocket calls need a websocket client
	_, err = lstclient.New(ts.URL).SubscribeBlocks()
	assert.Error(t, err)
}
