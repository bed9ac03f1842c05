// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tangle

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestSaturatingArithmetic(t *testing.T) {
	assert.Equal(t, MaxBalance, SaturatingAdd(MaxBalance, uint256.NewInt(1)))
	assert.Equal(t, uint64(0), SaturatingSub(uint256.NewInt(1), uint256.NewInt(2)).Uint64())
	assert.Equal(t, uint64(1), SaturatingSub(uint256.NewInt(3), uint256.NewInt(2)).Uint64())
	assert.Equal(t, MaxBalance, SaturatingMul(MaxBalance, uint256.NewInt(2)))

	// the intermediate product exceeds 256 bits but the quotient fits
	assert.Equal(t, MaxBalance, MulDiv(MaxBalance, uint256.NewInt(7), uint256.NewInt(7)))
	assert.Equal(t, MaxBalance, MulDiv(MaxBalance, uint256.NewInt(7), uint256.NewInt(3)))
}

func TestMinMaxClone(t *testing.T) {
	a, b := uint256.NewInt(1), uint256.NewInt(2)
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, b, Max(a, b))

	c := Clone(a)
	c.AddUint64(c, 1)
	assert.Equal(t, uint64(1), a.Uint64())
	assert.True(t, IsZero(nil))
	assert.True(t, Clone(nil).IsZero())
}

func TestPoolAccount(t *testing.T) {
	bonded := PoolAccount(DefaultPalletID, AccountBonded, 1)
	reward := PoolAccount(DefaultPalletID, AccountReward, 1)
	bonus := PoolAccount(DefaultPalletID, AccountBonus, 1)
	other := PoolAccount(DefaultPalletID, AccountBonded, 2)

	assert.NotEqual(t, bonded, reward)
	assert.NotEqual(t, reward, bonus)
	assert.NotEqual(t, bonded, other)
	assert.Equal(t, bonded, PoolAccount(DefaultPalletID, AccountBonded, 1))
	assert.Equal(t, "bonus", AccountBonus.String())
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))
	data, err := addr.MarshalJSON()
	assert.NoError(t, err)

	var decoded Address
	assert.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, addr, decoded)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)
	_, err = ParseAddress("zz" + addr.String()[2:])
	assert.Error(t, err)
}
