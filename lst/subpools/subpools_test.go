// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subpools

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

func n(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestUnbondPoolIssueDissolve(t *testing.T) {
	p := NewUnbondPool()
	assert.True(t, p.IsEmpty())

	assert.Equal(t, n(100), p.Issue(n(100)))
	assert.Equal(t, n(100), p.Points)
	assert.Equal(t, n(100), p.Balance)

	// slashed by half: new funds get twice the points
	p.Balance = n(50)
	assert.Equal(t, n(20), p.Issue(n(10)))
	assert.Equal(t, n(120), p.Points)
	assert.Equal(t, n(60), p.Balance)

	assert.Equal(t, n(5), p.Dissolve(n(10)))
	assert.Equal(t, n(110), p.Points)
	assert.Equal(t, n(55), p.Balance)

	assert.Equal(t, n(55), p.Dissolve(n(110)))
	assert.True(t, p.IsEmpty())
}

func TestSubPoolsInsertAndMerge(t *testing.T) {
	sp := New()

	for _, era := range []uint32{5, 3, 4} {
		b, err := sp.Insert(era, 3)
		require.NoError(t, err)
		b.Issue(n(uint64(era) * 10))
	}
	assert.Equal(t, []uint32{3, 4, 5}, sp.Eras())

	// existing buckets don't count towards the limit
	b, err := sp.Insert(4, 3)
	require.NoError(t, err)
	assert.Equal(t, n(40), b.Balance)

	_, err = sp.Insert(6, 3)
	assert.True(t, reverts.IsDefensive(err))

	sp.MaybeMergePools(2, 3)
	assert.Equal(t, []uint32{3, 4, 5}, sp.Eras())

	// current 7, window 3: eras <= 4 merged
	sp.MaybeMergePools(7, 3)
	assert.Equal(t, []uint32{5}, sp.Eras())
	assert.Equal(t, n(70), sp.NoEra.Balance)
	assert.Equal(t, n(70), sp.NoEra.Points)
	assert.Equal(t, n(120), sp.TotalBalance())
	assert.Equal(t, n(120), sp.TotalPoints())
}

func TestSubPoolsDissolveFrom(t *testing.T) {
	sp := New()
	b, err := sp.Insert(10, 5)
	require.NoError(t, err)
	b.Issue(n(100))
	sp.NoEra.Issue(n(30))

	assert.Equal(t, n(40), sp.DissolveFrom(10, n(40)))
	assert.Equal(t, []uint32{10}, sp.Eras())
	assert.Equal(t, n(60), sp.DissolveFrom(10, n(60)))
	assert.Empty(t, sp.Eras())

	// merged era falls back to no-era
	assert.Equal(t, n(30), sp.DissolveFrom(10, n(30)))
	assert.True(t, sp.NoEra.IsEmpty())
}

func TestSplitSlash(t *testing.T) {
	chunks := []Chunk{
		{Value: n(100), Era: 3},
		{Value: n(100), Era: 5},
		{Value: n(100), Era: 9},
	}
	// slash era 2, bonding duration 4: chunks of eras 3..6 are exposed
	out := SplitSlash(n(200), chunks, 2, 4, n(100))
	assert.Equal(t, n(100), out.Slashed)
	assert.Equal(t, n(150), out.Active)
	assert.Equal(t, n(75), out.Unlocking[3])
	assert.Equal(t, n(75), out.Unlocking[5])
	_, ok := out.Unlocking[9]
	assert.False(t, ok)
}

func TestSplitSlashRounding(t *testing.T) {
	chunks := []Chunk{{Value: n(1), Era: 1}, {Value: n(1), Era: 2}}
	out := SplitSlash(n(1), chunks, 0, 2, n(2))
	// floor shares are all zero, the remainder goes bonded first then by era
	assert.Equal(t, n(2), out.Slashed)
	assert.Equal(t, n(0), out.Active)
	assert.Equal(t, n(0), out.Unlocking[1])
	assert.Equal(t, n(1), out.Unlocking[2])
}

func TestSplitSlashCapped(t *testing.T) {
	out := SplitSlash(n(10), []Chunk{{Value: n(0), Era: 1}, {Value: n(5), Era: 2}}, 0, 5, n(1000))
	assert.Equal(t, n(15), out.Slashed)
	assert.Equal(t, n(0), out.Active)
	assert.Equal(t, n(0), out.Unlocking[1])
	assert.Equal(t, n(0), out.Unlocking[2])

	out = SplitSlash(n(0), nil, 0, 5, n(10))
	assert.Equal(t, n(0), out.Slashed)
	assert.Equal(t, n(0), out.Active)
}

func TestSlashScenario(t *testing.T) {
	// deposit 40 and join 20 at 1:1, then the pool loses half its stake
	bonded, pts := n(60), n(60)
	out := SplitSlash(bonded, nil, 0, 28, n(30))
	assert.Equal(t, n(30), out.Active)

	sp := New()
	bucket, err := sp.Insert(28, 30)
	require.NoError(t, err)
	balance := tangle.MulDiv(out.Active, n(20), pts)
	bucket.Issue(balance)
	assert.Equal(t, n(10), sp.DissolveFrom(28, bucket.Points))
}

func TestApplySlash(t *testing.T) {
	sp := New()
	for _, era := range []uint32{3, 5} {
		b, err := sp.Insert(era, 5)
		require.NoError(t, err)
		b.Issue(n(100))
	}
	changed := sp.ApplySlash(map[uint32]*uint256.Int{3: n(40), 5: n(100), 7: n(1)})
	assert.Equal(t, []uint32{3}, changed)
	assert.Equal(t, n(40), sp.Bucket(3).Balance)
	assert.Equal(t, n(100), sp.Bucket(3).Points)
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	svc := NewService(storage.NewContext(tangle.BytesToAddress([]byte("lst")), state.New(db)))

	got, err := svc.Get(1)
	assert.NoError(t, err)
	assert.Nil(t, got)

	sp, err := svc.GetOrDefault(1)
	require.NoError(t, err)
	b, err := sp.Insert(4, 5)
	require.NoError(t, err)
	b.Issue(n(10))
	require.NoError(t, svc.Set(1, sp))

	got, err = svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4}, got.Eras())
	assert.Equal(t, n(10), got.Bucket(4).Balance)
	assert.True(t, got.NoEra.IsEmpty())

	svc.Remove(1)
	got, err = svc.Get(1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
