// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

var (
	depositor = tangle.BytesToAddress([]byte("depositor"))
	root      = tangle.BytesToAddress([]byte("root"))
	bouncer   = tangle.BytesToAddress([]byte("bouncer"))
	nominator = tangle.BytesToAddress([]byte("nominator"))
	alice     = tangle.BytesToAddress([]byte("alice"))
	bob       = tangle.BytesToAddress([]byte("bob"))
)

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

func newPool() *Pool {
	r, b, nom := root, bouncer, nominator
	p := New(1, Roles{Depositor: depositor, Root: &r, Bouncer: &b, Nominator: &nom}, 7, n(1000), NewBonusCycle(0, 10), []byte("pool"))
	p.Points = n(100)
	return p
}

func TestRoles(t *testing.T) {
	p := newPool()

	assert.True(t, p.IsRoot(root))
	assert.False(t, p.IsRoot(depositor))
	assert.True(t, p.CanNominate(root))
	assert.True(t, p.CanNominate(nominator))
	assert.False(t, p.CanNominate(bouncer))
	assert.True(t, p.CanSetMetadata(bouncer))
	assert.True(t, p.CanToggleState(bouncer))
	assert.False(t, p.CanKick(bouncer), "kicking needs a blocked pool")

	p.State = Blocked
	assert.True(t, p.CanKick(bouncer))
	assert.True(t, p.CanKick(root))
	assert.False(t, p.CanKick(nominator))

	p.State = Destroying
	assert.False(t, p.CanToggleState(root))

	Remove[tangle.Address]().Apply(&p.Roles.Root)
	assert.False(t, p.IsRoot(root))
	Set(alice).Apply(&p.Roles.Root)
	assert.True(t, p.IsRoot(alice))
	Noop[tangle.Address]().Apply(&p.Roles.Root)
	assert.True(t, p.IsRoot(alice))
}

func TestOkToBeOpen(t *testing.T) {
	p := newPool()

	assert.NoError(t, p.OkToJoin(n(100), 10))
	assert.ErrorIs(t, p.OkToBeOpen(n(0), 10), reverts.ErrOverflowRisk)
	// 100 points over 10 stake hits the cap
	assert.ErrorIs(t, p.OkToBeOpen(n(10), 10), reverts.ErrOverflowRisk)
	assert.NoError(t, p.OkToBeOpen(n(11), 10))

	p.State = Blocked
	assert.ErrorIs(t, p.OkToJoin(n(100), 10), reverts.ErrNotOpen)
	assert.NoError(t, p.OkToBeOpen(n(100), 10))

	p.State = Destroying
	assert.ErrorIs(t, p.OkToBeOpen(n(100), 10), reverts.ErrCanNotChangeState)
}

func TestCapacity(t *testing.T) {
	p := newPool()
	assert.NoError(t, p.CheckCapacity(n(1000)))
	assert.ErrorIs(t, p.CheckCapacity(n(1001)), reverts.ErrCapacityExceeded)
	assert.Equal(t, n(900), p.RemainingCapacity())
}

func TestIssueDissolve(t *testing.T) {
	p := newPool()
	// stake slashed to half of the points
	issued := p.Issue(n(50), n(10))
	assert.Equal(t, n(20), issued)
	assert.Equal(t, n(120), p.Points)

	balance := p.Dissolve(n(60), n(20))
	assert.Equal(t, n(10), balance)
	assert.Equal(t, n(100), p.Points)
}

func TestOkToUnbondWith(t *testing.T) {
	floors := Floors{Depositor: n(20), Join: n(5)}
	stake := n(100)

	tests := []struct {
		name      string
		state     State
		caller    tangle.Address
		target    tangle.Address
		active    uint64
		unbonding uint64
		err       error
	}{
		{"self partial", Open, alice, alice, 30, 10, nil},
		{"self full", Open, alice, alice, 30, 30, nil},
		{"self below join floor", Open, alice, alice, 30, 26, reverts.ErrMinimumBondNotMet},
		{"other partial", Destroying, bob, alice, 30, 10, reverts.ErrPartialUnbondNotAllowedPermissionlessly},
		{"other full open", Open, bob, alice, 30, 30, reverts.ErrNotKickerOrDestroying},
		{"kick by bouncer", Blocked, bouncer, alice, 30, 30, nil},
		{"kick by root", Blocked, root, alice, 30, 30, nil},
		{"kick by nominator", Blocked, nominator, alice, 30, 30, reverts.ErrNotKickerOrDestroying},
		{"anyone when destroying", Destroying, bob, alice, 30, 30, nil},
		{"depositor partial", Open, depositor, depositor, 50, 30, nil},
		{"depositor below floor", Open, depositor, depositor, 50, 31, reverts.ErrMinimumBondNotMet},
		{"depositor full while open", Open, depositor, depositor, 50, 50, reverts.ErrMinimumBondNotMet},
		{"depositor full with members", Destroying, depositor, depositor, 50, 50, reverts.ErrMinimumBondNotMet},
		{"depositor unbonded by other", Destroying, bob, depositor, 50, 50, reverts.ErrDoesNotHavePermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPool()
			p.State = tt.state
			err := p.OkToUnbondWith(tt.caller, tt.target, n(tt.active), n(tt.unbonding), stake, floors)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}

	// the depositor is the last one
	p := newPool()
	p.State = Destroying
	assert.NoError(t, p.OkToUnbondWith(depositor, depositor, n(100), n(100), stake, floors))
}

func TestOkToWithdrawUnbondedWith(t *testing.T) {
	p := newPool()
	assert.NoError(t, p.OkToWithdrawUnbondedWith(alice, alice))
	assert.ErrorIs(t, p.OkToWithdrawUnbondedWith(bouncer, alice), reverts.ErrNotKickerOrDestroying)
	p.State = Blocked
	assert.NoError(t, p.OkToWithdrawUnbondedWith(bouncer, alice))
	p.State = Destroying
	assert.NoError(t, p.OkToWithdrawUnbondedWith(bob, alice))
}

func TestBonusCycle(t *testing.T) {
	burn := func(c *BonusCycle, balance *uint256.Int, era uint32) uint64 {
		bonus, _ := c.MaybeCycleAndCalculateBonus(era, balance)
		balance.Sub(balance, bonus)
		return bonus.Uint64()
	}

	c := NewBonusCycle(0, 10)
	assert.Equal(t, uint32(10), c.Duration())

	// burning what is paid spreads the balance linearly
	balance := n(100)
	var values []uint64
	for era := uint32(0); era < 10; era++ {
		values = append(values, burn(&c, balance, era))
	}
	assert.Equal(t, []uint64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}, values)

	// a constant balance pays increasingly
	assert.Nil(t, c.PreviousStart)
	values = nil
	for era := uint32(0); era < 10; era++ {
		bonus, cycled := c.MaybeCycleAndCalculateBonus(era, n(100))
		assert.False(t, cycled)
		values = append(values, bonus.Uint64())
	}
	assert.Equal(t, []uint64{10, 11, 12, 14, 16, 20, 25, 33, 50, 100}, values)

	bonus, cycled := c.MaybeCycleAndCalculateBonus(10, n(100))
	assert.True(t, cycled)
	assert.True(t, bonus.IsZero())
	require.NotNil(t, c.PreviousStart)
	assert.Equal(t, uint32(0), *c.PreviousStart)
	assert.Equal(t, uint32(11), c.Start)
	assert.Equal(t, uint32(21), c.End)

	values = nil
	for era := uint32(11); era < 21; era++ {
		bonus, _ := c.MaybeCycleAndCalculateBonus(era, n(100))
		values = append(values, bonus.Uint64())
	}
	assert.Equal(t, []uint64{10, 11, 12, 14, 16, 20, 25, 33, 50, 100}, values)

	// nothing before the cycle starts
	c = BonusCycle{Start: 10, End: 20}
	values = nil
	for era := uint32(5); era < 11; era++ {
		bonus, _ := c.MaybeCycleAndCalculateBonus(era, n(100))
		values = append(values, bonus.Uint64())
	}
	assert.Equal(t, []uint64{0, 0, 0, 0, 0, 10}, values)
}

func TestBonusCyclePendingDuration(t *testing.T) {
	c := NewBonusCycle(0, 30)
	pending := uint32(50)
	c.PendingDuration = &pending

	_, cycled := c.MaybeCycleAndCalculateBonus(30, n(100))
	assert.True(t, cycled)
	assert.Equal(t, uint32(31), c.Start)
	assert.Equal(t, uint32(81), c.End)
	assert.Nil(t, c.PendingDuration)
}

func TestCommission(t *testing.T) {
	var c Commission
	global := tangle.PerbillFromPercent(50)

	assert.ErrorIs(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromPercent(60)), 1, &global), reverts.ErrCommissionExceedsGlobalMaximum)
	require.NoError(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromPercent(20)), 1, &global))
	assert.Equal(t, tangle.PerbillFromPercent(20), *c.Current)
	assert.Equal(t, uint64(1), *c.ThrottleFrom)

	// max may only decrease, and clamps the current rate
	updated, err := c.TryUpdateMax(tangle.PerbillFromPercent(30), 2, &global)
	require.NoError(t, err)
	assert.False(t, updated)
	_, err = c.TryUpdateMax(tangle.PerbillFromPercent(40), 2, &global)
	assert.ErrorIs(t, err, reverts.ErrMaxCommissionRestricted)
	updated, err = c.TryUpdateMax(tangle.PerbillFromPercent(10), 3, &global)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, tangle.PerbillFromPercent(10), *c.Current)
	assert.Equal(t, uint64(3), *c.ThrottleFrom)

	assert.ErrorIs(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromPercent(11)), 4, &global), reverts.ErrCommissionExceedsMaximum)

	// zero clears
	require.NoError(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromParts(0)), 4, nil))
	assert.Nil(t, c.Current)
	require.NoError(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromPercent(5)), 4, nil))
	require.NoError(t, c.TryUpdateCurrent(nil, 4, nil))
	assert.Nil(t, c.Current)
}

func TestCommissionChangeRate(t *testing.T) {
	var c Commission
	require.NoError(t, c.TryUpdateChangeRate(ChangeRate{MaxDelta: tangle.PerbillFromPercent(2), MinDelay: 10}, 0))
	require.NotNil(t, c.ThrottleFrom)
	assert.Equal(t, uint64(0), *c.ThrottleFrom)

	// only more restrictive rates
	assert.ErrorIs(t, c.TryUpdateChangeRate(ChangeRate{MaxDelta: tangle.PerbillFromPercent(3), MinDelay: 10}, 1), reverts.ErrCommissionChangeRateNotAllowed)
	assert.ErrorIs(t, c.TryUpdateChangeRate(ChangeRate{MaxDelta: tangle.PerbillFromPercent(2), MinDelay: 9}, 1), reverts.ErrCommissionChangeRateNotAllowed)

	assert.True(t, c.Throttling(tangle.PerbillFromPercent(3), 100), "above max delta")
	assert.False(t, c.Throttling(tangle.PerbillFromPercent(2), 100))
	require.NoError(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromPercent(2)), 100, nil))

	// unchanged rate is throttled by the delay
	assert.True(t, c.Throttling(tangle.PerbillFromPercent(2), 105))
	assert.False(t, c.Throttling(tangle.PerbillFromPercent(2), 110))

	assert.ErrorIs(t, c.TryUpdateCurrent(ptr(tangle.PerbillFromPercent(5)), 200, nil), reverts.ErrCommissionChangeThrottled)
}

func TestCommissionClamped(t *testing.T) {
	var c Commission
	assert.True(t, c.CurrentClamped(nil).IsZero())

	rate := tangle.PerbillFromPercent(40)
	c.Current = &rate
	global := tangle.PerbillFromPercent(25)
	assert.Equal(t, global, c.CurrentClamped(&global))
	assert.Equal(t, rate, c.CurrentClamped(nil))
}

func TestRecordBonusPaid(t *testing.T) {
	p := newPool()

	ok, err := p.RecordBonusPaid(5, 4, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.RecordBonusPaid(5, 4, 4)
	require.NoError(t, err)
	assert.False(t, ok, "once per era")

	for _, era := range []uint32{2, 3} {
		ok, err = p.RecordBonusPaid(5, era, 4)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, []uint32{2, 3, 4}, p.BonusesPaid)

	// eras fall out of the history as the current era moves on
	ok, err = p.RecordBonusPaid(9, 8, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint32{8}, p.BonusesPaid)
}

func TestPoolRLP(t *testing.T) {
	p := newPool()
	zero := uint32(0)
	p.BonusCycle.PreviousStart = &zero
	var block uint64
	p.Commission.ThrottleFrom = &block
	maxRate := tangle.PerbillFromParts(0)
	p.Commission.Max = &maxRate
	p.Commission.ChangeRate = &ChangeRate{}
	p.BonusesPaid = []uint32{1, 2}

	data, err := rlp.EncodeToBytes(p)
	require.NoError(t, err)

	var dec Pool
	require.NoError(t, rlp.DecodeBytes(data, &dec))
	assert.Equal(t, p, &dec)
}

func ptr[T any](v T) *T { return &v }
