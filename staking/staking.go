// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking is a nominated proof of stake ledger: bonding, unbonding with
// an era delay, nominations, era exposures, reward payouts and slashing.
package staking

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/currency"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/lst/subpools"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/storage/linkedlist"
	"github.com/tangle-network/lst/tangle"
)

var logger = log.WithContext("pkg", "staking")

var (
	slotLedgers     = tangle.BytesToBytes32([]byte("ledgers"))
	slotNominations = tangle.BytesToBytes32([]byte("nominations"))
	slotNominators  = tangle.BytesToBytes32([]byte("nominators"))
	slotValidators  = tangle.BytesToBytes32([]byte("validators"))
	slotCurrentEra  = tangle.BytesToBytes32([]byte("current-era"))
	slotEras        = tangle.BytesToBytes32([]byte("eras"))
	slotEraRewards  = tangle.BytesToBytes32([]byte("era-validator-reward"))
	slotExposures   = tangle.BytesToBytes32([]byte("era-exposures"))
	slotClaimed     = tangle.BytesToBytes32([]byte("claimed-rewards"))
)

var (
	ErrAlreadyBonded      = reverts.New("AlreadyBonded")
	ErrNotStash           = reverts.New("NotStash")
	ErrInsufficientBond   = reverts.New("InsufficientBond")
	ErrNoMoreChunks       = reverts.New("NoMoreChunks")
	ErrEmptyTargets       = reverts.New("EmptyTargets")
	ErrTooManyTargets     = reverts.New("TooManyTargets")
	ErrBadTarget          = reverts.New("BadTarget")
	ErrAlreadyClaimed     = reverts.New("AlreadyClaimed")
	ErrInvalidEraToReward = reverts.ErrInvalidEraToReward
)

const maxUnlockingChunks = 32

// Config holds the staking parameters.
type Config struct {
	BondingDuration  uint32
	HistoryDepth     uint32
	MinNominatorBond *uint256.Int
	MinValidatorBond *uint256.Int
	ValidatorCount   uint32 // ideal number of validators
	MaxNominations   uint32
}

// Ledger is the bonded stake of a stash.
type Ledger struct {
	Total     *uint256.Int
	Active    *uint256.Int
	Unlocking []subpools.Chunk // ascending era
	Payee     tangle.Address
}

// IndividualExposure is the stake a nominator backs a validator with.
type IndividualExposure struct {
	Who   tangle.Address
	Value *uint256.Int
}

// Exposure is the stake backing a validator during an era.
type Exposure struct {
	Total  *uint256.Int
	Own    *uint256.Int
	Others []IndividualExposure
}

type nominations struct {
	Targets []tangle.Address
}

type eraInfo struct {
	Validators []tangle.Address
}

type marker struct{}

// SlashListener is told how the stake of a slashed stash was reduced.
type SlashListener interface {
	OnSlash(stash tangle.Address, slashedBonded *uint256.Int, slashedUnlocking map[uint32]*uint256.Int, totalSlashed *uint256.Int) error
}

// Staking is the staking ledger.
type Staking struct {
	cfg         Config
	currency    *currency.Currency
	ledgers     *storage.Mapping[tangle.Address, *Ledger]
	nominations *storage.Mapping[tangle.Address, *nominations]
	nominators  *linkedlist.LinkedList[tangle.Address]
	validators  *linkedlist.LinkedList[tangle.Address]
	currentEra  *storage.Raw[uint32]
	eras        *storage.Mapping[storage.Uint32, *eraInfo]
	eraRewards  *storage.Mapping[storage.Uint32, *uint256.Int]
	exposures   *storage.Mapping[storage.Era, *Exposure]
	claimed     *storage.Mapping[storage.Era, *marker]
	listener    SlashListener
}

func New(sctx *storage.Context, cur *currency.Currency, cfg Config) *Staking {
	return &Staking{
		cfg:         cfg,
		currency:    cur,
		ledgers:     storage.NewMapping[tangle.Address, *Ledger](sctx, slotLedgers),
		nominations: storage.NewMapping[tangle.Address, *nominations](sctx, slotNominations),
		nominators:  linkedlist.New[tangle.Address](sctx, slotNominators),
		validators:  linkedlist.New[tangle.Address](sctx, slotValidators),
		currentEra:  storage.NewRaw[uint32](sctx, slotCurrentEra),
		eras:        storage.NewMapping[storage.Uint32, *eraInfo](sctx, slotEras),
		eraRewards:  storage.NewMapping[storage.Uint32, *uint256.Int](sctx, slotEraRewards),
		exposures:   storage.NewMapping[storage.Era, *Exposure](sctx, slotExposures),
		claimed:     storage.NewMapping[storage.Era, *marker](sctx, slotClaimed),
	}
}

// SetSlashListener registers the listener told about every slash.
func (s *Staking) SetSlashListener(l SlashListener) {
	s.listener = l
}

func (s *Staking) CurrentEra() (uint32, error) {
	era, err := s.currentEra.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get current era")
	}
	return era, nil
}

func (s *Staking) BondingDuration() uint32 { return s.cfg.BondingDuration }

func (s *Staking) HistoryDepth() uint32 { return s.cfg.HistoryDepth }

func (s *Staking) MinimumNominatorBond() *uint256.Int { return tangle.Clone(s.cfg.MinNominatorBond) }

func (s *Staking) MinimumValidatorBond() *uint256.Int { return tangle.Clone(s.cfg.MinValidatorBond) }

// ValidatorCount is the ideal number of validators.
func (s *Staking) ValidatorCount() uint32 { return s.cfg.ValidatorCount }

// Ledger returns the ledger of stash, nil if it is not bonded.
func (s *Staking) Ledger(stash tangle.Address) (*Ledger, error) {
	l, err := s.ledgers.Get(stash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ledger")
	}
	return l, nil
}

func (s *Staking) ledger(stash tangle.Address) (*Ledger, error) {
	l, err := s.Ledger(stash)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotStash
	}
	return l, nil
}

func (s *Staking) setLedger(stash tangle.Address, l *Ledger) error {
	if err := s.ledgers.Set(stash, l); err != nil {
		return errors.Wrap(err, "failed to set ledger")
	}
	return s.currency.SetLock(stash, l.Total)
}

// ActiveStake returns the bonded stake of stash that is not unlocking.
func (s *Staking) ActiveStake(stash tangle.Address) (*uint256.Int, error) {
	l, err := s.Ledger(stash)
	if err != nil || l == nil {
		return new(uint256.Int), err
	}
	return l.Active, nil
}

// TotalStake returns the bonded stake of stash including unlocking chunks.
func (s *Staking) TotalStake(stash tangle.Address) (*uint256.Int, error) {
	l, err := s.Ledger(stash)
	if err != nil || l == nil {
		return new(uint256.Int), err
	}
	return l.Total, nil
}

// Bond locks value of the balance of stash. Rewards are paid to payee.
func (s *Staking) Bond(stash tangle.Address, value *uint256.Int, payee tangle.Address) error {
	exists, err := s.ledgers.Exists(stash)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyBonded
	}
	if value.Lt(s.currency.ExistentialDeposit()) {
		return ErrInsufficientBond
	}
	free, err := s.currency.FreeBalance(stash)
	if err != nil {
		return err
	}
	if free.Lt(value) {
		return currency.ErrInsufficientBalance
	}
	logger.Debug("bond", "stash", stash, "value", value)
	return s.setLedger(stash, &Ledger{
		Total:  tangle.Clone(value),
		Active: tangle.Clone(value),
		Payee:  payee,
	})
}

// BondExtra adds extra of the free balance of stash to its bond.
func (s *Staking) BondExtra(stash tangle.Address, extra *uint256.Int) error {
	l, err := s.ledger(stash)
	if err != nil {
		return err
	}
	transferable, err := s.currency.TransferableBalance(stash)
	if err != nil {
		return err
	}
	if transferable.Lt(extra) {
		return currency.ErrInsufficientBalance
	}
	l.Total = tangle.SaturatingAdd(l.Total, extra)
	l.Active = tangle.SaturatingAdd(l.Active, extra)
	return s.setLedger(stash, l)
}

// Unbond schedules value of the active stake to unlock after the bonding duration.
func (s *Staking) Unbond(stash tangle.Address, value *uint256.Int) error {
	l, err := s.ledger(stash)
	if err != nil {
		return err
	}
	value = tangle.Min(value, l.Active)
	if value.IsZero() {
		return nil
	}
	current, err := s.CurrentEra()
	if err != nil {
		return err
	}
	era := current + s.cfg.BondingDuration

	if n := len(l.Unlocking); n > 0 && l.Unlocking[n-1].Era == era {
		l.Unlocking[n-1].Value = tangle.SaturatingAdd(l.Unlocking[n-1].Value, value)
	} else {
		if n >= maxUnlockingChunks {
			return ErrNoMoreChunks
		}
		l.Unlocking = append(l.Unlocking, subpools.Chunk{Value: tangle.Clone(value), Era: era})
	}
	l.Active = new(uint256.Int).Sub(l.Active, value)
	return s.setLedger(stash, l)
}

// WithdrawUnbonded releases the chunks unlocked by the current era. It returns
// true when the ledger was emptied and the stash removed.
func (s *Staking) WithdrawUnbonded(stash tangle.Address, _ uint32) (bool, error) {
	l, err := s.ledger(stash)
	if err != nil {
		return false, err
	}
	current, err := s.CurrentEra()
	if err != nil {
		return false, err
	}

	kept := l.Unlocking[:0]
	for _, c := range l.Unlocking {
		if c.Era > current {
			kept = append(kept, c)
			continue
		}
		l.Total = tangle.SaturatingSub(l.Total, c.Value)
	}
	l.Unlocking = kept

	if len(l.Unlocking) == 0 && l.Active.Lt(s.currency.ExistentialDeposit()) {
		logger.Debug("stash killed", "stash", stash)
		return true, s.kill(stash)
	}
	return false, s.setLedger(stash, l)
}

func (s *Staking) kill(stash tangle.Address) error {
	s.ledgers.Delete(stash)
	if err := s.Chill(stash); err != nil {
		return err
	}
	return s.currency.SetLock(stash, new(uint256.Int))
}

// Nominate sets the validators backed by stash.
func (s *Staking) Nominate(stash tangle.Address, targets []tangle.Address) error {
	if _, err := s.ledger(stash); err != nil {
		return err
	}
	if len(targets) == 0 {
		return ErrEmptyTargets
	}
	if s.cfg.MaxNominations > 0 && len(targets) > int(s.cfg.MaxNominations) {
		return ErrTooManyTargets
	}
	for _, t := range targets {
		ok, err := s.validators.Contains(t)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBadTarget
		}
	}
	if err := s.nominations.Set(stash, &nominations{Targets: targets}); err != nil {
		return errors.Wrap(err, "failed to set nominations")
	}
	return s.nominators.Add(stash)
}

// Chill removes the nominations of stash.
func (s *Staking) Chill(stash tangle.Address) error {
	s.nominations.Delete(stash)
	return s.nominators.Remove(stash)
}

// Nominations returns the validators backed by stash.
func (s *Staking) Nominations(stash tangle.Address) ([]tangle.Address, error) {
	n, err := s.nominations.Get(stash)
	if err != nil || n == nil {
		return nil, err
	}
	return n.Targets, nil
}

// Validate registers stash as a validator. It must be bonded with at least
// the minimum validator bond.
func (s *Staking) Validate(stash tangle.Address) error {
	l, err := s.ledger(stash)
	if err != nil {
		return err
	}
	if l.Active.Lt(s.cfg.MinValidatorBond) {
		return ErrInsufficientBond
	}
	return s.validators.Add(stash)
}

// Validators returns the registered validators.
func (s *Staking) Validators() ([]tangle.Address, error) {
	return s.validators.Keys()
}

// ValidatorsCount is the number of registered validators.
func (s *Staking) ValidatorsCount() (uint32, error) {
	n, err := s.validators.Len()
	return uint32(n), err
}

// SetEraReward sets the total validator reward of era.
func (s *Staking) SetEraReward(era uint32, reward *uint256.Int) error {
	return s.eraRewards.Set(storage.Uint32(era), reward)
}

// EraReward returns the total validator reward of era, false if none was set.
func (s *Staking) EraReward(era uint32) (*uint256.Int, bool, error) {
	reward, err := s.eraRewards.Get(storage.Uint32(era))
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get era reward")
	}
	return reward, reward != nil, nil
}

// Exposure returns the stake backing validator in era, nil if it was not elected.
func (s *Staking) Exposure(era uint32, validator tangle.Address) (*Exposure, error) {
	exp, err := s.exposures.Get(storage.Era{Era: era, Account: validator})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get exposure")
	}
	return exp, nil
}

// ExposedNominators lists the nominators backing validator in era, in exposure
// order. It returns false if validator was not elected in era.
func (s *Staking) ExposedNominators(era uint32, validator tangle.Address) ([]tangle.Address, bool, error) {
	exp, err := s.Exposure(era, validator)
	if err != nil || exp == nil {
		return nil, false, err
	}
	who := make([]tangle.Address, 0, len(exp.Others))
	for _, o := range exp.Others {
		who = append(who, o.Who)
	}
	return who, true, nil
}
