// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/currency"
	"github.com/tangle-network/lst/lst/subpools"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

// AdvanceEra starts the next era and snapshots the exposures of every
// validator. Each nominator backs its targets evenly with its active stake.
func (s *Staking) AdvanceEra() (uint32, error) {
	current, err := s.CurrentEra()
	if err != nil {
		return 0, err
	}
	era := current + 1
	if err := s.currentEra.Upsert(era); err != nil {
		return 0, errors.Wrap(err, "failed to set current era")
	}

	validators, err := s.validators.Keys()
	if err != nil {
		return 0, err
	}
	exposures := make(map[tangle.Address]*Exposure, len(validators))
	for _, v := range validators {
		own, err := s.ActiveStake(v)
		if err != nil {
			return 0, err
		}
		exposures[v] = &Exposure{Total: tangle.Clone(own), Own: tangle.Clone(own)}
	}

	if err := s.nominators.Iter(func(nominator tangle.Address) error {
		targets, err := s.Nominations(nominator)
		if err != nil {
			return err
		}
		var elected []*Exposure
		for _, t := range targets {
			if exp, ok := exposures[t]; ok {
				elected = append(elected, exp)
			}
		}
		if len(elected) == 0 {
			return nil
		}
		active, err := s.ActiveStake(nominator)
		if err != nil {
			return err
		}
		share, rem := new(uint256.Int).DivMod(active, uint256.NewInt(uint64(len(elected))), new(uint256.Int))
		for i, exp := range elected {
			value := tangle.Clone(share)
			if i == 0 {
				value.Add(value, rem)
			}
			if value.IsZero() {
				continue
			}
			exp.Others = append(exp.Others, IndividualExposure{Who: nominator, Value: value})
			exp.Total = tangle.SaturatingAdd(exp.Total, value)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	for _, v := range validators {
		if err := s.exposures.Set(storage.Era{Era: era, Account: v}, exposures[v]); err != nil {
			return 0, errors.Wrap(err, "failed to set exposure")
		}
	}
	if err := s.eras.Set(storage.Uint32(era), &eraInfo{Validators: validators}); err != nil {
		return 0, errors.Wrap(err, "failed to set era info")
	}

	if era > s.cfg.HistoryDepth {
		if err := s.prune(era - s.cfg.HistoryDepth - 1); err != nil {
			return 0, err
		}
	}
	logger.Debug("new era", "era", era, "validators", len(validators))
	return era, nil
}

func (s *Staking) prune(era uint32) error {
	info, err := s.eras.Get(storage.Uint32(era))
	if err != nil || info == nil {
		return err
	}
	for _, v := range info.Validators {
		key := storage.Era{Era: era, Account: v}
		s.exposures.Delete(key)
		s.claimed.Delete(key)
	}
	s.eras.Delete(storage.Uint32(era))
	s.eraRewards.Delete(storage.Uint32(era))
	return nil
}

// PayoutStakers pays the era reward of validator to itself and its nominators,
// pro rata to their exposure. The era reward is shared evenly by the elected
// validators.
func (s *Staking) PayoutStakers(validator tangle.Address, era uint32) error {
	current, err := s.CurrentEra()
	if err != nil {
		return err
	}
	if era > current || (current > s.cfg.HistoryDepth && era < current-s.cfg.HistoryDepth) {
		return ErrInvalidEraToReward
	}
	reward, ok, err := s.EraReward(era)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidEraToReward
	}
	exp, err := s.Exposure(era, validator)
	if err != nil {
		return err
	}
	if exp == nil {
		return ErrNotStash
	}
	key := storage.Era{Era: era, Account: validator}
	claimed, err := s.claimed.Exists(key)
	if err != nil {
		return err
	}
	if claimed {
		return ErrAlreadyClaimed
	}
	if err := s.claimed.Set(key, &marker{}); err != nil {
		return err
	}

	info, err := s.eras.Get(storage.Uint32(era))
	if err != nil {
		return err
	}
	if info == nil || len(info.Validators) == 0 || exp.Total.IsZero() {
		return nil
	}
	validatorReward := new(uint256.Int).Div(reward, uint256.NewInt(uint64(len(info.Validators))))

	pay := func(stash tangle.Address, stake *uint256.Int) error {
		amount := tangle.MulDiv(validatorReward, stake, exp.Total)
		l, err := s.Ledger(stash)
		if err != nil || l == nil {
			return err
		}
		if err := s.currency.Deposit(l.Payee, amount); err != nil && !errors.Is(err, currency.ErrExistentialDeposit) {
			return err
		}
		return nil
	}
	if err := pay(validator, exp.Own); err != nil {
		return err
	}
	for _, o := range exp.Others {
		if err := pay(o.Who, o.Value); err != nil {
			return err
		}
	}
	return nil
}

// Slash removes amount from the stake of stash exposed at slashEra. The bonded
// stake and every chunk still unlocking within the bonding duration share the
// slash.
func (s *Staking) Slash(stash tangle.Address, slashEra uint32, amount *uint256.Int) (*uint256.Int, error) {
	l, err := s.ledger(stash)
	if err != nil {
		return nil, err
	}
	out := subpools.SplitSlash(l.Active, l.Unlocking, slashEra, s.cfg.BondingDuration, amount)
	if out.Slashed.IsZero() {
		return out.Slashed, nil
	}

	l.Active = out.Active
	for i, c := range l.Unlocking {
		if v, ok := out.Unlocking[c.Era]; ok {
			l.Unlocking[i].Value = v
		}
	}
	l.Total = tangle.SaturatingSub(l.Total, out.Slashed)

	if _, err := s.currency.Slash(stash, out.Slashed); err != nil {
		return nil, err
	}
	if err := s.setLedger(stash, l); err != nil {
		return nil, err
	}
	logger.Debug("slashed", "stash", stash, "era", slashEra, "amount", out.Slashed)

	if s.listener != nil {
		if err := s.listener.OnSlash(stash, out.Active, out.Unlocking, out.Slashed); err != nil {
			return nil, err
		}
	}
	return out.Slashed, nil
}
