// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lst implements pooled staking with liquid staking tokens. Members
// bond into pools which nominate through a single bonded account, and receive
// points tracked 1:1 by the pool's liquid staking token.
package lst

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/lst/events"
	"github.com/tangle-network/lst/lst/member"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/lst/rewards"
	"github.com/tangle-network/lst/lst/subpools"
	"github.com/tangle-network/lst/state"
	"github.com/tangle-network/lst/storage"
	"github.com/tangle-network/lst/tangle"
)

var (
	slotParams = tangle.BytesToBytes32([]byte("global-params"))
	slotTVL    = tangle.BytesToBytes32([]byte("total-value-locked"))
)

// Pools implements the liquid staking operations.
type Pools struct {
	cfg      Config
	staking  Staking
	currency Currency
	assets   Assets

	poolService     *pool.Service
	memberService   *member.Service
	subPoolsService *subpools.Service
	rewardsService  *rewards.Service

	params  *storage.Raw[*Params]
	tvl     *storage.Raw[*uint256.Int]
	journal *events.Journal
	block   uint64
}

// New creates the engine on the storage of addr.
func New(addr tangle.Address, st *state.State, stk Staking, cur Currency, ast Assets, cfg Config) *Pools {
	sctx := storage.NewContext(addr, st)

	// debug overrides for testing
	CapacityMutationPeriod.Override(sctx)
	PostUnbondingPoolsWindow.Override(sctx)

	return &Pools{
		cfg:      cfg,
		staking:  stk,
		currency: cur,
		assets:   ast,

		poolService:     pool.NewService(sctx),
		memberService:   member.NewService(sctx),
		subPoolsService: subpools.NewService(sctx),
		rewardsService:  rewards.NewService(sctx),

		params:  storage.NewRaw[*Params](sctx, slotParams),
		tvl:     storage.NewRaw[*uint256.Int](sctx, slotTVL),
		journal: &events.Journal{},
	}
}

// Journal collects the events of the operations.
func (p *Pools) Journal() *events.Journal {
	return p.journal
}

// SetBlockNumber sets the block used for commission throttling.
func (p *Pools) SetBlockNumber(n uint64) {
	p.block = n
}

func (p *Pools) Config() Config {
	return p.cfg
}

//
// Accounts
//

func (p *Pools) BondedAccount(id uint32) tangle.Address {
	return tangle.PoolAccount(p.cfg.PalletID, tangle.AccountBonded, id)
}

func (p *Pools) RewardAccount(id uint32) tangle.Address {
	return tangle.PoolAccount(p.cfg.PalletID, tangle.AccountReward, id)
}

func (p *Pools) BonusAccount(id uint32) tangle.Address {
	return tangle.PoolAccount(p.cfg.PalletID, tangle.AccountBonus, id)
}

//
// Getters - no state change
//

// Pool returns the pool, nil if it does not exist.
func (p *Pools) Pool(id uint32) (*pool.Pool, error) {
	return p.poolService.Get(id)
}

// PoolIDs lists the pools in creation order.
func (p *Pools) PoolIDs() ([]uint32, error) {
	return p.poolService.IDs()
}

// PoolCount is the number of pools.
func (p *Pools) PoolCount() (uint32, error) {
	return p.poolService.Count()
}

// Member returns the membership of who in the pool, nil if it is not a member.
func (p *Pools) Member(poolID uint32, who tangle.Address) (*member.Member, error) {
	return p.memberService.Get(poolID, who)
}

// MemberAccounts lists the members of the pool.
func (p *Pools) MemberAccounts(poolID uint32) ([]tangle.Address, error) {
	return p.memberService.Accounts(poolID)
}

// SubPools returns the unbonding buckets of the pool, nil if it has none.
func (p *Pools) SubPools(poolID uint32) (*subpools.SubPools, error) {
	return p.subPoolsService.Get(poolID)
}

// EraPayout returns the payout progress of the current era.
func (p *Pools) EraPayout() (*rewards.EraPayout, error) {
	return p.rewardsService.EraPayout()
}

// PoolOfAccount returns the pool owning the bonded account.
func (p *Pools) PoolOfAccount(account tangle.Address) (uint32, bool, error) {
	return p.poolService.PoolOfAccount(account)
}

// Params returns the global parameters.
func (p *Pools) Params() (*Params, error) {
	params, err := p.params.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get params")
	}
	if params == nil {
		params = &Params{MinJoinBond: new(uint256.Int), MinCreateBond: new(uint256.Int)}
	}
	return params, nil
}

// TotalValueLocked is the balance bonded through every pool.
func (p *Pools) TotalValueLocked() (*uint256.Int, error) {
	tvl, err := p.tvl.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total value locked")
	}
	return orZero(tvl), nil
}

// ActiveStake is the bonded balance of the pool that is not unbonding.
func (p *Pools) ActiveStake(poolID uint32) (*uint256.Int, error) {
	return p.staking.ActiveStake(p.BondedAccount(poolID))
}

// MemberBalance values the active points of who in the pool.
func (p *Pools) MemberBalance(poolID uint32, who tangle.Address) (*uint256.Int, error) {
	bp, err := p.existingPool(poolID)
	if err != nil {
		return nil, err
	}
	m, err := p.memberService.Get(poolID, who)
	if err != nil || m == nil {
		return new(uint256.Int), err
	}
	active, err := p.ActiveStake(poolID)
	if err != nil {
		return nil, err
	}
	return bp.PointToBalance(active, m.Points), nil
}

// DepositorMinBond is the least a depositor must bond and keep bonded.
func (p *Pools) DepositorMinBond() (*uint256.Int, error) {
	params, err := p.Params()
	if err != nil {
		return nil, err
	}
	minBond := tangle.Max(p.staking.MinimumNominatorBond(), params.MinCreateBond)
	minBond = tangle.Max(minBond, params.MinJoinBond)
	return tangle.Max(minBond, p.currency.ExistentialDeposit()), nil
}

//
// Helpers
//

func (p *Pools) existingPool(id uint32) (*pool.Pool, error) {
	bp, err := p.poolService.Get(id)
	if err != nil {
		return nil, err
	}
	if bp == nil {
		return nil, reverts.ErrPoolNotFound
	}
	return bp, nil
}

func (p *Pools) addTVL(amount *uint256.Int) error {
	tvl, err := p.TotalValueLocked()
	if err != nil {
		return err
	}
	return p.tvl.Upsert(tangle.SaturatingAdd(tvl, amount))
}

func (p *Pools) subTVL(amount *uint256.Int) error {
	tvl, err := p.TotalValueLocked()
	if err != nil {
		return err
	}
	return p.tvl.Upsert(tangle.SaturatingSub(tvl, amount))
}

func (p *Pools) globalMaxCommission() (*tangle.Perbill, error) {
	params, err := p.Params()
	if err != nil {
		return nil, err
	}
	return params.GlobalMaxCommission, nil
}

// tokenOwner is the holder of the pool token, or the unclaimed balance
// receiver once the token is gone.
func (p *Pools) tokenOwner(bp *pool.Pool) (tangle.Address, error) {
	owner, ok, err := p.assets.OwnerOf(bp.TokenID)
	if err != nil {
		return tangle.Address{}, err
	}
	if !ok {
		return p.cfg.UnclaimedBalanceReceiver, nil
	}
	return owner, nil
}

func (p *Pools) emit(ev events.Event) {
	p.journal.Emit(ev)
}
