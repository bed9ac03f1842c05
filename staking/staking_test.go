// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/currency"
	"github.com/tangle-network/lst/lst/subpools"
	"github.com/tangle-network/lst/lvldb"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	validator = tangle.BytesToAddress([]byte("validator"))
	alice     = tangle.BytesToAddress([]byte("alice"))
	bob       = tangle.BytesToAddress([]byte("bob"))
	payee     = tangle.BytesToAddress([]byte("payee"))
)

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

type slashRecord struct {
	stash     tangle.Address
	bonded    *uint256.Int
	unlocking map[uint32]*uint256.Int
	total     *uint256.Int
}

type recorder struct{ records []slashRecord }

func (r *recorder) OnSlash(stash tangle.Address, bonded *uint256.Int, unlocking map[uint32]*uint256.Int, total *uint256.Int) error {
	r.records = append(r.records, slashRecord{stash, bonded, unlocking, total})
	return nil
}

func newStaking(t *testing.T) (*Staking, *currency.Currency) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	cur := currency.New(storage.NewContext(tangle.BytesToAddress([]byte("balances")), st), n(1))
	stk := New(storage.NewContext(tangle.BytesToAddress([]byte("staking")), st), cur, Config{
		BondingDuration:  3,
		HistoryDepth:     4,
		MinNominatorBond: n(10),
		MinValidatorBond: n(100),
		ValidatorCount:   2,
		MaxNominations:   4,
	})
	for _, acc := range []tangle.Address{validator, alice, bob} {
		require.NoError(t, cur.Deposit(acc, n(1000)))
	}
	return stk, cur
}

func TestBondUnbondWithdraw(t *testing.T) {
	stk, cur := newStaking(t)

	assert.ErrorIs(t, stk.Bond(alice, n(2000), payee), currency.ErrInsufficientBalance)
	require.NoError(t, stk.Bond(alice, n(500), payee))
	assert.ErrorIs(t, stk.Bond(alice, n(1), payee), ErrAlreadyBonded)
	require.NoError(t, stk.BondExtra(alice, n(100)))
	assert.ErrorIs(t, stk.BondExtra(alice, n(401)), currency.ErrInsufficientBalance)

	transferable, err := cur.TransferableBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, n(400), transferable)

	require.NoError(t, stk.Unbond(alice, n(200)))
	require.NoError(t, stk.Unbond(alice, n(100)))
	l, err := stk.Ledger(alice)
	require.NoError(t, err)
	assert.Equal(t, []subpools.Chunk{{Value: n(300), Era: 3}}, l.Unlocking)
	assert.Equal(t, n(300), l.Active)
	assert.Equal(t, n(600), l.Total)

	// nothing unlocked yet
	killed, err := stk.WithdrawUnbonded(alice, 0)
	require.NoError(t, err)
	assert.False(t, killed)
	total, _ := stk.TotalStake(alice)
	assert.Equal(t, n(600), total)

	for range 3 {
		_, err := stk.AdvanceEra()
		require.NoError(t, err)
	}
	killed, err = stk.WithdrawUnbonded(alice, 0)
	require.NoError(t, err)
	assert.False(t, killed)
	total, _ = stk.TotalStake(alice)
	assert.Equal(t, n(300), total)

	require.NoError(t, stk.Unbond(alice, n(1000)))
	active, _ := stk.ActiveStake(alice)
	assert.True(t, active.IsZero())
	for range 3 {
		_, err := stk.AdvanceEra()
		require.NoError(t, err)
	}
	killed, err = stk.WithdrawUnbonded(alice, 0)
	require.NoError(t, err)
	assert.True(t, killed)
	l, err = stk.Ledger(alice)
	require.NoError(t, err)
	assert.Nil(t, l)
	transferable, _ = cur.TransferableBalance(alice)
	assert.Equal(t, n(1000), transferable)
}

func TestNominateAndPayout(t *testing.T) {
	stk, cur := newStaking(t)

	require.NoError(t, stk.Bond(validator, n(100), validator))
	require.NoError(t, stk.Bond(alice, n(300), payee))
	require.NoError(t, stk.Bond(bob, n(600), bob))

	assert.ErrorIs(t, stk.Nominate(alice, []tangle.Address{validator}), ErrBadTarget)
	require.NoError(t, stk.Validate(validator))
	assert.ErrorIs(t, stk.Nominate(alice, nil), ErrEmptyTargets)
	require.NoError(t, stk.Nominate(alice, []tangle.Address{validator}))
	require.NoError(t, stk.Nominate(bob, []tangle.Address{validator}))

	era, err := stk.AdvanceEra()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), era)

	exp, err := stk.Exposure(1, validator)
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.Equal(t, n(1000), exp.Total)
	assert.Equal(t, []IndividualExposure{{Who: alice, Value: n(300)}, {Who: bob, Value: n(600)}}, exp.Others)

	assert.ErrorIs(t, stk.PayoutStakers(validator, 1), ErrInvalidEraToReward)
	require.NoError(t, stk.SetEraReward(1, n(50)))
	require.NoError(t, stk.PayoutStakers(validator, 1))
	assert.ErrorIs(t, stk.PayoutStakers(validator, 1), ErrAlreadyClaimed)

	paid, _ := cur.FreeBalance(payee)
	assert.Equal(t, n(15), paid)
	bobBalance, _ := cur.FreeBalance(bob)
	assert.Equal(t, n(1030), bobBalance)

	assert.ErrorIs(t, stk.PayoutStakers(validator, 2), ErrInvalidEraToReward)

	require.NoError(t, stk.Chill(bob))
	targets, err := stk.Nominations(bob)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestSlash(t *testing.T) {
	stk, cur := newStaking(t)
	rec := &recorder{}
	stk.SetSlashListener(rec)

	require.NoError(t, stk.Bond(alice, n(600), payee))
	require.NoError(t, stk.Unbond(alice, n(200)))
	_, err := stk.AdvanceEra()
	require.NoError(t, err)
	require.NoError(t, stk.Unbond(alice, n(200)))

	// chunks unlock at 3 and 4, both exposed to a slash in era 1
	slashed, err := stk.Slash(alice, 1, n(300))
	require.NoError(t, err)
	assert.Equal(t, n(300), slashed)

	l, err := stk.Ledger(alice)
	require.NoError(t, err)
	assert.Equal(t, n(100), l.Active)
	assert.Equal(t, []subpools.Chunk{{Value: n(100), Era: 3}, {Value: n(100), Era: 4}}, l.Unlocking)
	assert.Equal(t, n(300), l.Total)

	free, _ := cur.FreeBalance(alice)
	assert.Equal(t, n(700), free)

	require.Len(t, rec.records, 1)
	assert.Equal(t, alice, rec.records[0].stash)
	assert.Equal(t, n(100), rec.records[0].bonded)
	assert.Equal(t, map[uint32]*uint256.Int{3: n(100), 4: n(100)}, rec.records[0].unlocking)
	assert.Equal(t, n(300), rec.records[0].total)
}
