// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/assets"
	"github.com/tangle-network/lst/currency"
	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/staking"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	admin     = tangle.BytesToAddress([]byte("admin"))
	alice     = tangle.BytesToAddress([]byte("alice"))
	bob       = tangle.BytesToAddress([]byte("bob"))
	carol     = tangle.BytesToAddress([]byte("carol"))
	validator = tangle.BytesToAddress([]byte("validator"))
	treasury  = tangle.BytesToAddress([]byte("treasury"))
	sink      = tangle.BytesToAddress([]byte("sink"))
)

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

func testConfig() Config {
	return Config{
		PalletID:                  tangle.DefaultPalletID,
		MaxUnbonding:              4,
		MaxMetadataLen:            16,
		MinDuration:               1,
		MaxDuration:               30,
		GlobalMaxCapacity:         n(1_000_000),
		DefaultPoolCapacity:       n(100_000),
		BonusPercentage:           tangle.PerbillFromPercent(20),
		BaseBonusRewardPercentage: tangle.PerbillFromPercent(50),
		UnclaimedBalanceReceiver:  treasury,
		RewardRemainderSink:       sink,
		Admin:                     admin,
	}
}

type testEnv struct {
	pools    *Pools
	currency *currency.Currency
	staking  *staking.Staking
	assets   *assets.Assets
}

// newTest returns an engine at era 0 where alice, bob, carol and the validator
// hold 1000 each, alice holds pool token 1 and bob pool token 2. The existential
// deposit is 5.
func newTest(t *testing.T) *testEnv {
	reverts.DebugAssertions = true
	t.Cleanup(func() { reverts.DebugAssertions = false })

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)

	ctx := func(name string) *storage.Context {
		return storage.NewContext(tangle.BytesToAddress([]byte(name)), st)
	}
	cur := currency.New(ctx("balances"), n(5))
	stk := staking.New(ctx("staking"), cur, staking.Config{
		BondingDuration:  3,
		HistoryDepth:     10,
		MinNominatorBond: n(10),
		MinValidatorBond: n(100),
		ValidatorCount:   2,
		MaxNominations:   4,
	})
	ast := assets.New(ctx("assets"))
	pools := New(tangle.BytesToAddress([]byte("lst")), st, stk, cur, ast, testConfig())
	stk.SetSlashListener(pools)

	for _, acc := range []tangle.Address{alice, bob, carol, validator} {
		require.NoError(t, cur.Deposit(acc, n(1000)))
	}
	require.NoError(t, ast.MintToken(1, alice))
	require.NoError(t, ast.MintToken(2, bob))

	return &testEnv{pools: pools, currency: cur, staking: stk, assets: ast}
}

// addValidator bonds 200 of the validator and registers it.
func (e *testEnv) addValidator(t *testing.T) {
	require.NoError(t, e.staking.Bond(validator, n(200), validator))
	require.NoError(t, e.staking.Validate(validator))
}

func (e *testEnv) advanceEras(t *testing.T, count int) uint32 {
	var era uint32
	for range count {
		var err error
		era, err = e.staking.AdvanceEra()
		require.NoError(t, err)
	}
	return era
}

func (e *testEnv) free(t *testing.T, who tangle.Address) *uint256.Int {
	free, err := e.currency.FreeBalance(who)
	require.NoError(t, err)
	return free
}

func (e *testEnv) tvl(t *testing.T) *uint256.Int {
	tvl, err := e.pools.TotalValueLocked()
	require.NoError(t, err)
	return tvl
}

func (e *testEnv) eventNames() []string {
	var names []string
	for _, ev := range e.pools.Journal().Drain() {
		names = append(names, ev.Name())
	}
	return names
}

func createParams(token uint64, deposit uint64, duration uint32, root tangle.Address) CreateParams {
	return CreateParams{
		TokenID:   token,
		Deposit:   n(deposit),
		Capacity:  n(10_000),
		Duration:  duration,
		Root:      root,
		Nominator: root,
		Bouncer:   root,
		Name:      []byte("pool"),
	}
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Create(who tangle.Address, params CreateParams) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		id, err := st.env.pools.Create(who, params)
		if err != nil {
			t.Fatalf("failed to create pool with token %d: %v", params.TokenID, err)
		}
		t.Logf("created pool %d by %s", id, who.String())
	})
}

func (st *TestSequence) Bond(who tangle.Address, poolID uint32, amount uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pools.Bond(who, poolID, BondAmount(n(amount))); err != nil {
			t.Fatalf("failed to bond %d into pool %d: %v", amount, poolID, err)
		}
		t.Logf("%s bonded %d into pool %d", who.String(), amount, poolID)
	})
}

func (st *TestSequence) Unbond(caller tangle.Address, poolID uint32, member tangle.Address, points uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pools.Unbond(caller, poolID, member, n(points)); err != nil {
			t.Fatalf("failed to unbond %d points of %s: %v", points, member.String(), err)
		}
		t.Logf("unbonded %d points of %s", points, member.String())
	})
}

func (st *TestSequence) Withdraw(caller tangle.Address, poolID uint32, member tangle.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pools.WithdrawUnbonded(caller, poolID, member, 0); err != nil {
			t.Fatalf("failed to withdraw for %s: %v", member.String(), err)
		}
		t.Logf("withdrawn for %s", member.String())
	})
}

func (st *TestSequence) SetState(caller tangle.Address, poolID uint32, state pool.State) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pools.SetState(caller, poolID, state); err != nil {
			t.Fatalf("failed to set pool %d %s: %v", poolID, state, err)
		}
	})
}

func (st *TestSequence) AdvanceEras(count int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		era := st.env.advanceEras(t, count)
		t.Logf("advanced to era %d", era)
	})
}

func (st *TestSequence) TryState() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.pools.TryState(); err != nil {
			t.Fatalf("state check failed: %v", err)
		}
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type PoolAssertions struct {
	env *testEnv
	id  uint32

	points      *uint256.Int
	activeStake *uint256.Int
	members     *uint32
	state       *pool.State
}

func AssertPool(env *testEnv, id uint32) *PoolAssertions {
	return &PoolAssertions{env: env, id: id}
}

func (pa *PoolAssertions) Points(expected uint64) *PoolAssertions {
	pa.points = n(expected)
	return pa
}

func (pa *PoolAssertions) ActiveStake(expected uint64) *PoolAssertions {
	pa.activeStake = n(expected)
	return pa
}

func (pa *PoolAssertions) Members(expected uint32) *PoolAssertions {
	pa.members = &expected
	return pa
}

func (pa *PoolAssertions) State(expected pool.State) *PoolAssertions {
	pa.state = &expected
	return pa
}

func (pa *PoolAssertions) Assert(t *testing.T) {
	bp, err := pa.env.pools.Pool(pa.id)
	require.NoError(t, err, "failed to get pool %d", pa.id)
	require.NotNil(t, bp, "pool %d not found", pa.id)

	if pa.points != nil {
		assert.Equal(t, pa.points, bp.Points, "pool %d points mismatch", pa.id)
		supply, err := pa.env.assets.TotalIssuance(pa.id)
		assert.NoError(t, err)
		assert.Equal(t, pa.points, supply, "pool %d token supply mismatch", pa.id)
	}
	if pa.activeStake != nil {
		active, err := pa.env.pools.ActiveStake(pa.id)
		assert.NoError(t, err)
		assert.Equal(t, pa.activeStake, active, "pool %d active stake mismatch", pa.id)
	}
	if pa.members != nil {
		assert.Equal(t, *pa.members, bp.MemberCounter, "pool %d member counter mismatch", pa.id)
	}
	if pa.state != nil {
		assert.Equal(t, *pa.state, bp.State, "pool %d state mismatch", pa.id)
	}
}

type MemberAssertions struct {
	env    *testEnv
	poolID uint32
	who    tangle.Address

	points    *uint256.Int
	unbonding map[uint32]*uint256.Int
}

func AssertMember(env *testEnv, poolID uint32, who tangle.Address) *MemberAssertions {
	return &MemberAssertions{env: env, poolID: poolID, who: who}
}

func (ma *MemberAssertions) Points(expected uint64) *MemberAssertions {
	ma.points = n(expected)
	return ma
}

func (ma *MemberAssertions) Unbonding(era uint32, expected uint64) *MemberAssertions {
	if ma.unbonding == nil {
		ma.unbonding = make(map[uint32]*uint256.Int)
	}
	ma.unbonding[era] = n(expected)
	return ma
}

func (ma *MemberAssertions) Assert(t *testing.T) {
	m, err := ma.env.pools.Member(ma.poolID, ma.who)
	require.NoError(t, err, "failed to get member %s", ma.who.String())
	require.NotNil(t, m, "member %s not found", ma.who.String())

	if ma.points != nil {
		assert.Equal(t, ma.points, m.Points, "member %s points mismatch", ma.who.String())
		lst, err := ma.env.assets.BalanceOf(ma.poolID, ma.who)
		assert.NoError(t, err)
		assert.Equal(t, ma.points, lst, "member %s token balance mismatch", ma.who.String())
	}
	for era, expected := range ma.unbonding {
		assert.Equal(t, expected, m.UnbondingAt(era), "member %s unbonding at era %d mismatch", ma.who.String(), era)
	}
}

// eventsOf returns the drained events of type E.
func eventsOf[E events.Event](env *testEnv) []E {
	var out []E
	for _, ev := range env.pools.Journal().Drain() {
		if e, ok := ev.(E); ok {
			out = append(out, e)
		}
	}
	return out
}
