// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package currency implements native balances with an existential deposit and
// staking locks.
package currency

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var logger = log.WithContext("pkg", "currency")

var (
	slotAccounts      = tangle.BytesToBytes32([]byte("accounts"))
	slotTotalIssuance = tangle.BytesToBytes32([]byte("total-issuance"))
)

var (
	ErrInsufficientBalance = reverts.New("InsufficientBalance")
	ErrExistentialDeposit  = reverts.New("ExistentialDeposit")
	ErrKeepAlive           = reverts.New("KeepAlive")
	ErrLiquidityRestricted = reverts.New("LiquidityRestrictions")
)

// Account is the balance of an address. Locked funds cannot be transferred.
type Account struct {
	Free   *uint256.Int
	Locked *uint256.Int
}

// Transferable is the free balance above the lock.
func (a *Account) Transferable() *uint256.Int {
	return tangle.SaturatingSub(a.Free, a.Locked)
}

// Currency is the native token ledger.
type Currency struct {
	accounts *storage.Mapping[tangle.Address, *Account]
	issuance *storage.Raw[*uint256.Int]
	ed       *uint256.Int
}

func New(sctx *storage.Context, existentialDeposit *uint256.Int) *Currency {
	return &Currency{
		accounts: storage.NewMapping[tangle.Address, *Account](sctx, slotAccounts),
		issuance: storage.NewRaw[*uint256.Int](sctx, slotTotalIssuance),
		ed:       tangle.Clone(existentialDeposit),
	}
}

// ExistentialDeposit is the minimum balance an account must keep to exist.
func (c *Currency) ExistentialDeposit() *uint256.Int {
	return tangle.Clone(c.ed)
}

func (c *Currency) account(who tangle.Address) (*Account, error) {
	acc, err := c.accounts.Get(who)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	if acc == nil {
		acc = &Account{Free: new(uint256.Int), Locked: new(uint256.Int)}
	}
	return acc, nil
}

// setAccount stores the account, reaping it when its balance is gone.
func (c *Currency) setAccount(who tangle.Address, acc *Account) error {
	if acc.Free.IsZero() && acc.Locked.IsZero() {
		c.accounts.Delete(who)
		return nil
	}
	if err := c.accounts.Set(who, acc); err != nil {
		return errors.Wrap(err, "failed to set account")
	}
	return nil
}

func (c *Currency) adjustIssuance(add, sub *uint256.Int) error {
	total, err := c.TotalIssuance()
	if err != nil {
		return err
	}
	// a nil side leaves the issuance unchanged
	if add != nil {
		total = tangle.SaturatingAdd(total, add)
	}
	if sub != nil {
		total = tangle.SaturatingSub(total, sub)
	}
	return c.issuance.Upsert(total)
}

func (c *Currency) FreeBalance(who tangle.Address) (*uint256.Int, error) {
	acc, err := c.account(who)
	if err != nil {
		return nil, err
	}
	return acc.Free, nil
}

// TransferableBalance is the free balance not covered by a lock.
func (c *Currency) TransferableBalance(who tangle.Address) (*uint256.Int, error) {
	acc, err := c.account(who)
	if err != nil {
		return nil, err
	}
	return acc.Transferable(), nil
}

func (c *Currency) TotalIssuance() (*uint256.Int, error) {
	total, err := c.issuance.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total issuance")
	}
	if total == nil {
		total = new(uint256.Int)
	}
	return total, nil
}

// withdrawFrom debits amount from acc. With keepAlive the account must stay
// above the existential deposit; otherwise any dust left below it is returned
// to be burned.
func (c *Currency) withdrawFrom(acc *Account, amount *uint256.Int, keepAlive bool) (*uint256.Int, error) {
	if acc.Transferable().Lt(amount) {
		return nil, ErrInsufficientBalance
	}
	remaining := new(uint256.Int).Sub(acc.Free, amount)
	if remaining.Lt(c.ed) && acc.Locked.IsZero() {
		if keepAlive {
			return nil, ErrKeepAlive
		}
		acc.Free = new(uint256.Int)
		return remaining, nil
	}
	acc.Free = remaining
	return new(uint256.Int), nil
}

// Transfer moves amount from one account to another.
func (c *Currency) Transfer(from, to tangle.Address, amount *uint256.Int, keepAlive bool) error {
	if amount.IsZero() || from == to {
		return nil
	}
	src, err := c.account(from)
	if err != nil {
		return err
	}
	dst, err := c.account(to)
	if err != nil {
		return err
	}
	if dst.Free.IsZero() && amount.Lt(c.ed) {
		return ErrExistentialDeposit
	}
	dust, err := c.withdrawFrom(src, amount, keepAlive)
	if err != nil {
		return err
	}
	dst.Free = tangle.SaturatingAdd(dst.Free, amount)

	if err := c.setAccount(from, src); err != nil {
		return err
	}
	if err := c.setAccount(to, dst); err != nil {
		return err
	}
	if !dust.IsZero() {
		logger.Debug("account reaped", "account", from, "dust", dust)
		return c.adjustIssuance(nil, dust)
	}
	return nil
}

// Deposit mints amount into who.
func (c *Currency) Deposit(who tangle.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	acc, err := c.account(who)
	if err != nil {
		return err
	}
	if acc.Free.IsZero() && amount.Lt(c.ed) {
		return ErrExistentialDeposit
	}
	acc.Free = tangle.SaturatingAdd(acc.Free, amount)
	if err := c.setAccount(who, acc); err != nil {
		return err
	}
	return c.adjustIssuance(amount, nil)
}

// Withdraw burns amount from who.
func (c *Currency) Withdraw(who tangle.Address, amount *uint256.Int, keepAlive bool) error {
	if amount.IsZero() {
		return nil
	}
	acc, err := c.account(who)
	if err != nil {
		return err
	}
	dust, err := c.withdrawFrom(acc, amount, keepAlive)
	if err != nil {
		return err
	}
	if err := c.setAccount(who, acc); err != nil {
		return err
	}
	return c.adjustIssuance(nil, tangle.SaturatingAdd(amount, dust))
}

// MakeFreeBalanceBe sets the free balance of who, minting or burning the difference.
func (c *Currency) MakeFreeBalanceBe(who tangle.Address, amount *uint256.Int) error {
	acc, err := c.account(who)
	if err != nil {
		return err
	}
	prev := acc.Free
	acc.Free = tangle.Clone(amount)
	if err := c.setAccount(who, acc); err != nil {
		return err
	}
	if amount.Gt(prev) {
		return c.adjustIssuance(new(uint256.Int).Sub(amount, prev), nil)
	}
	return c.adjustIssuance(nil, new(uint256.Int).Sub(prev, amount))
}

// Slash burns up to amount from who regardless of locks and returns what was burned.
func (c *Currency) Slash(who tangle.Address, amount *uint256.Int) (*uint256.Int, error) {
	acc, err := c.account(who)
	if err != nil {
		return nil, err
	}
	slashed := tangle.Min(acc.Free, amount)
	acc.Free = new(uint256.Int).Sub(acc.Free, slashed)
	if err := c.setAccount(who, acc); err != nil {
		return nil, err
	}
	return slashed, c.adjustIssuance(nil, slashed)
}

// SetLock locks amount of the balance of who. A zero amount removes the lock.
func (c *Currency) SetLock(who tangle.Address, amount *uint256.Int) error {
	acc, err := c.account(who)
	if err != nil {
		return err
	}
	if amount.Gt(acc.Free) {
		return ErrLiquidityRestricted
	}
	acc.Locked = tangle.Clone(amount)
	return c.setAccount(who, acc)
}
