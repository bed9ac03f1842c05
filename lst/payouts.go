// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/lst/rewards"
	"github.com/tangle-network/lst/tangle"
)

// PayoutRewards pays the reward of validator for era and moves part of what
// the nominating pools earned into a bonus pot. The pot is shared between
// those pools by reward and by bonus cycle duration, longer cycles weighing
// more.
func (p *Pools) PayoutRewards(validator tangle.Address, era uint32) error {
	logger.Debug("paying out rewards", "validator", validator, "era", era)

	currentEra, err := p.staking.CurrentEra()
	if err != nil {
		return err
	}
	depth := p.staking.HistoryDepth()
	if era > currentEra || (currentEra > depth && era < currentEra-depth) {
		return reverts.ErrInvalidEraToReward
	}
	if _, ok, err := p.staking.EraReward(era); err != nil {
		return err
	} else if !ok {
		return reverts.ErrInvalidEraToReward
	}
	nominators, elected, err := p.staking.ExposedNominators(era, validator)
	if err != nil {
		return err
	}
	if !elected {
		return reverts.ErrInvalidEraToReward
	}

	var (
		infos  []*rewards.PoolInfo
		lo, hi = uint32(math.MaxUint32), uint32(0)
	)
	for _, nominator := range nominators {
		poolID, ok, err := p.poolService.PoolOfAccount(nominator)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		bp, err := p.existingPool(poolID)
		if err != nil {
			return err
		}
		bp.UpdateDurationBounds(&lo, &hi)

		// the bonus of the previous era is paid once all of its rewards are in
		if era != 0 {
			if err := p.maybeEndEra(bp, currentEra, era-1); err != nil {
				return err
			}
			if err := p.poolService.Set(bp); err != nil {
				return err
			}
		}

		initial, err := p.currency.FreeBalance(p.RewardAccount(poolID))
		if err != nil {
			return err
		}
		infos = append(infos, &rewards.PoolInfo{
			PoolID:               poolID,
			Duration:             bp.BonusCycle.Duration(),
			InitialRewardBalance: tangle.Clone(initial),
		})
	}

	if err := p.staking.PayoutStakers(validator, era); err != nil {
		return err
	}

	payout, err := p.rewardsService.EraPayout()
	if err != nil {
		return err
	}
	payout.RecordPayout(currentEra)
	if err := p.rewardsService.SetEraPayout(payout); err != nil {
		return err
	}

	totalBonus := new(uint256.Int)
	for _, info := range infos {
		account := p.RewardAccount(info.PoolID)
		balance, err := p.currency.FreeBalance(account)
		if err != nil {
			return err
		}
		reward := tangle.SaturatingSub(balance, info.InitialRewardBalance)
		if !reward.IsZero() {
			toBonus := p.cfg.BonusPercentage.MulFloor(reward)
			if err := p.currency.Withdraw(account, toBonus, true); err != nil {
				return err
			}
			reward = tangle.SaturatingSub(reward, toBonus)
			totalBonus = tangle.SaturatingAdd(totalBonus, toBonus)
		}
		info.Reward = reward
	}

	rewards.Weigh(infos, lo, hi)
	remainder := rewards.SplitBonus(infos, totalBonus, p.cfg.BaseBonusRewardPercentage)

	for _, info := range infos {
		// a bonus the bonus account can not take is burned
		if err := p.currency.Deposit(p.BonusAccount(info.PoolID), info.Bonus); err != nil {
			logger.Debug("bonus dropped", "pool", info.PoolID, "bonus", info.Bonus, "error", err)
		}
		p.emit(events.RewardPaid{
			PoolID:    info.PoolID,
			Era:       era,
			Validator: validator,
			Reward:    info.Reward,
			Bonus:     info.Bonus,
		})
	}
	if err := p.currency.Deposit(p.cfg.RewardRemainderSink, remainder); err != nil {
		logger.Debug("reward remainder dropped", "remainder", remainder, "error", err)
	}

	logger.Info("rewards paid out", "validator", validator, "era", era, "pools", len(infos), "bonus", totalBonus)
	return nil
}

// ProcessPayouts ends the current era for every pool once enough validators
// were paid. poolCount must cover the number of pools.
func (p *Pools) ProcessPayouts(poolCount uint32) error {
	count, err := p.poolService.Count()
	if err != nil {
		return err
	}
	if poolCount < count {
		return reverts.ErrWrongPoolCount
	}
	era, err := p.staking.CurrentEra()
	if err != nil {
		return err
	}
	validators, err := p.staking.ValidatorsCount()
	if err != nil {
		return err
	}
	validators = min(validators, p.staking.ValidatorCount())

	payout, err := p.rewardsService.EraPayout()
	if err != nil {
		return err
	}
	if err := payout.TryProcess(era, validators); err != nil {
		return err
	}
	if err := p.rewardsService.SetEraPayout(payout); err != nil {
		return err
	}

	ids, err := p.poolService.IDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := p.MaybeEndEra(id, era, era); err != nil {
			return err
		}
	}
	logger.Info("payouts processed", "era", era, "pools", len(ids))
	return nil
}

// MaybeEndEra ends era for the pool unless it already was.
func (p *Pools) MaybeEndEra(poolID, currentEra, era uint32) error {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return err
	}
	if err := p.maybeEndEra(bp, currentEra, era); err != nil {
		return err
	}
	return p.poolService.Set(bp)
}

func (p *Pools) maybeEndEra(bp *pool.Pool, currentEra, era uint32) error {
	first, err := bp.RecordBonusPaid(currentEra, era, p.staking.HistoryDepth())
	if err != nil || !first {
		return err
	}
	return p.endEra(bp, era)
}

// endEra pays the bonus share of era into the reward account, pays the
// commission, and bonds whatever the reward account holds above the
// existential deposit.
func (p *Pools) endEra(bp *pool.Pool, era uint32) error {
	var (
		bonded        = p.BondedAccount(bp.ID)
		rewardAccount = p.RewardAccount(bp.ID)
		bonusAccount  = p.BonusAccount(bp.ID)
		ed            = p.currency.ExistentialDeposit()
	)

	bonusBalance, err := p.currency.FreeBalance(bonusAccount)
	if err != nil {
		return err
	}
	bonus, cycled := bp.BonusCycle.MaybeCycleAndCalculateBonus(era, bonusBalance)
	if !bonus.IsZero() {
		if tangle.SaturatingSub(bonusBalance, bonus).Lt(ed) {
			bonus = tangle.SaturatingSub(bonusBalance, ed)
		}
		if err := p.currency.Transfer(bonusAccount, rewardAccount, bonus, true); err != nil {
			return err
		}
	}

	commission, err := p.claimCommission(bp)
	if err != nil {
		return err
	}

	reinvested := new(uint256.Int)
	rewardBalance, err := p.currency.FreeBalance(rewardAccount)
	if err != nil {
		return err
	}
	if rewardBalance.Gt(ed) {
		reinvested = new(uint256.Int).Sub(rewardBalance, ed)
		if err := p.currency.Transfer(rewardAccount, bonded, reinvested, true); err != nil {
			return err
		}
		if err := p.staking.BondExtra(bonded, reinvested); err != nil {
			return err
		}
		if err := p.addTVL(reinvested); err != nil {
			return err
		}
	}

	if !commission.IsZero() || !bonus.IsZero() || !reinvested.IsZero() || cycled {
		p.emit(events.EraRewardsProcessed{
			PoolID:          bp.ID,
			Era:             era,
			Commission:      commission,
			Bonus:           bonus,
			Reinvested:      reinvested,
			BonusCycleEnded: cycled,
		})
	}
	logger.Debug("era ended", "pool", bp.ID, "era", era, "bonus", bonus, "commission", commission, "reinvested", reinvested)
	return nil
}

// claimCommission pays the commission on the reward account to the pool token
// holder, never taking the account below the existential deposit.
func (p *Pools) claimCommission(bp *pool.Pool) (*uint256.Int, error) {
	if bp.Commission.Current == nil {
		return new(uint256.Int), nil
	}
	globalMax, err := p.globalMaxCommission()
	if err != nil {
		return nil, err
	}
	account := p.RewardAccount(bp.ID)
	balance, err := p.currency.FreeBalance(account)
	if err != nil {
		return nil, err
	}
	ed := p.currency.ExistentialDeposit()

	commission := bp.Commission.CurrentClamped(globalMax).MulFloor(balance)
	if tangle.SaturatingSub(balance, commission).Lt(ed) {
		commission = tangle.SaturatingSub(balance, ed)
	}
	if commission.IsZero() {
		return commission, nil
	}

	beneficiary, err := p.tokenOwner(bp)
	if err != nil {
		return nil, err
	}
	if err := p.currency.Transfer(account, beneficiary, commission, true); err != nil {
		return nil, err
	}
	p.emit(events.PoolCommissionClaimed{PoolID: bp.ID, Commission: commission, Beneficiary: beneficiary})
	return commission, nil
}
