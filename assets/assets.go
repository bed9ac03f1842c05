// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package assets implements the per pool liquid staking tokens and the pool
// token collection.
package assets

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	slotBalances = tangle.BytesToBytes32([]byte("lst-balances"))
	slotSupply   = tangle.BytesToBytes32([]byte("lst-supply"))
	slotTokens   = tangle.BytesToBytes32([]byte("pool-tokens"))
)

var (
	ErrBalanceLow     = reverts.New("BalanceLow")
	ErrTokenExists    = reverts.New("TokenExists")
	ErrUnknownToken   = reverts.New("UnknownToken")
	ErrNotTokenHolder = reverts.New("NotTokenHolder")
)

// Attribute is a key/value pair attached to a token.
type Attribute struct {
	Key   string
	Value string
}

// Token is an item of the pool token collection.
type Token struct {
	Owner      tangle.Address
	Attributes []Attribute
}

// Assets holds the fungible liquid staking token of every pool and the pool tokens.
type Assets struct {
	balances *storage.Mapping[storage.PoolAccount, *uint256.Int]
	supply   *storage.Mapping[storage.Uint32, *uint256.Int]
	tokens   *storage.Mapping[storage.Uint64, *Token]
}

func New(sctx *storage.Context) *Assets {
	return &Assets{
		balances: storage.NewMapping[storage.PoolAccount, *uint256.Int](sctx, slotBalances),
		supply:   storage.NewMapping[storage.Uint32, *uint256.Int](sctx, slotSupply),
		tokens:   storage.NewMapping[storage.Uint64, *Token](sctx, slotTokens),
	}
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// BalanceOf returns the liquid staking tokens of who in the pool.
func (a *Assets) BalanceOf(poolID uint32, who tangle.Address) (*uint256.Int, error) {
	b, err := a.balances.Get(storage.PoolAccount{Pool: poolID, Account: who})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get lst balance")
	}
	return orZero(b), nil
}

// TotalIssuance returns the liquid staking token supply of the pool.
func (a *Assets) TotalIssuance(poolID uint32) (*uint256.Int, error) {
	s, err := a.supply.Get(storage.Uint32(poolID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get lst supply")
	}
	return orZero(s), nil
}

func (a *Assets) setBalance(poolID uint32, who tangle.Address, balance *uint256.Int) error {
	key := storage.PoolAccount{Pool: poolID, Account: who}
	if balance.IsZero() {
		a.balances.Delete(key)
		return nil
	}
	return a.balances.Set(key, balance)
}

func (a *Assets) setSupply(poolID uint32, supply *uint256.Int) error {
	if supply.IsZero() {
		a.supply.Delete(storage.Uint32(poolID))
		return nil
	}
	return a.supply.Set(storage.Uint32(poolID), supply)
}

// MintInto issues amount liquid staking tokens of the pool to who.
func (a *Assets) MintInto(poolID uint32, who tangle.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	balance, err := a.BalanceOf(poolID, who)
	if err != nil {
		return err
	}
	supply, err := a.TotalIssuance(poolID)
	if err != nil {
		return err
	}
	if err := a.setBalance(poolID, who, tangle.SaturatingAdd(balance, amount)); err != nil {
		return err
	}
	return a.setSupply(poolID, tangle.SaturatingAdd(supply, amount))
}

// BurnFrom destroys amount liquid staking tokens of the pool held by who.
func (a *Assets) BurnFrom(poolID uint32, who tangle.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	balance, err := a.BalanceOf(poolID, who)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrBalanceLow
	}
	supply, err := a.TotalIssuance(poolID)
	if err != nil {
		return err
	}
	if err := a.setBalance(poolID, who, new(uint256.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return a.setSupply(poolID, tangle.SaturatingSub(supply, amount))
}

// BurnSupply destroys whatever supply of the pool is left. The balances of
// the holders must have been burned before.
func (a *Assets) BurnSupply(poolID uint32) {
	a.supply.Delete(storage.Uint32(poolID))
}

// MintToken creates a pool token owned by owner.
func (a *Assets) MintToken(id uint64, owner tangle.Address, attrs ...Attribute) error {
	exists, err := a.tokens.Exists(storage.Uint64(id))
	if err != nil {
		return err
	}
	if exists {
		return ErrTokenExists
	}
	return a.tokens.Set(storage.Uint64(id), &Token{Owner: owner, Attributes: attrs})
}

// BurnToken destroys a pool token.
func (a *Assets) BurnToken(id uint64) {
	a.tokens.Delete(storage.Uint64(id))
}

// TransferToken changes the owner of a pool token.
func (a *Assets) TransferToken(id uint64, from, to tangle.Address) error {
	tok, err := a.tokens.Get(storage.Uint64(id))
	if err != nil {
		return errors.Wrap(err, "failed to get token")
	}
	if tok == nil {
		return ErrUnknownToken
	}
	if tok.Owner != from {
		return ErrNotTokenHolder
	}
	tok.Owner = to
	return a.tokens.Set(storage.Uint64(id), tok)
}

// OwnerOf returns the owner of the pool token, false if it does not exist.
func (a *Assets) OwnerOf(id uint64) (tangle.Address, bool, error) {
	tok, err := a.tokens.Get(storage.Uint64(id))
	if err != nil {
		return tangle.Address{}, false, errors.Wrap(err, "failed to get token")
	}
	if tok == nil {
		return tangle.Address{}, false, nil
	}
	return tok.Owner, true, nil
}

// Attribute returns the value of the attribute key of the pool token.
func (a *Assets) Attribute(id uint64, key string) (string, bool, error) {
	tok, err := a.tokens.Get(storage.Uint64(id))
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get token")
	}
	if tok == nil {
		return "", false, nil
	}
	for _, attr := range tok.Attributes {
		if attr.Key == key {
			return attr.Value, true, nil
		}
	}
	return "", false, nil
}

// SetAttribute sets the attribute key of the pool token.
func (a *Assets) SetAttribute(id uint64, key, value string) error {
	tok, err := a.tokens.Get(storage.Uint64(id))
	if err != nil {
		return errors.Wrap(err, "failed to get token")
	}
	if tok == nil {
		return ErrUnknownToken
	}
	for i := range tok.Attributes {
		if tok.Attributes[i].Key == key {
			tok.Attributes[i].Value = value
			return a.tokens.Set(storage.Uint64(id), tok)
		}
	}
	tok.Attributes = append(tok.Attributes, Attribute{Key: key, Value: value})
	return a.tokens.Set(storage.Uint64(id), tok)
}
