// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/api/utils"
	"github.com/tangle-network/lst/cache"
	"github.com/tangle-network/lst/runtime"
)

type cacheKey struct {
	revision uint64
	path     string
}

type Pools struct {
	rt    *runtime.Runtime
	cache *cache.LRU[cacheKey, any]
}

// New creates the pools API. Responses are cached per state revision.
func New(rt *runtime.Runtime, cacheSize int) *Pools {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	c, _ := cache.NewLRU[cacheKey, any](cacheSize)
	return &Pools{rt: rt, cache: c}
}

var errPoolNotFound = utils.NotFound(errors.New("pool not found"))

// load returns the cached response of path, computing it on a miss.
func (p *Pools) load(path string, fn func(env *runtime.Env) (any, error)) (res any, err error) {
	err = p.rt.View(func(env *runtime.Env) error {
		res, err = p.cache.GetOrLoad(cacheKey{env.Revision, path}, func(cacheKey) (any, error) {
			return fn(env)
		})
		return err
	})
	return
}

func (p *Pools) handleGetPools(w http.ResponseWriter, req *http.Request) error {
	res, err := p.load(req.URL.Path, func(env *runtime.Env) (any, error) {
		ids, err := env.Pools.PoolIDs()
		if err != nil {
			return nil, err
		}
		list := make([]Summary, 0, len(ids))
		for _, id := range ids {
			bp, err := env.Pools.Pool(id)
			if err != nil {
				return nil, err
			}
			if bp == nil {
				continue
			}
			active, err := env.Pools.ActiveStake(id)
			if err != nil {
				return nil, err
			}
			list = append(list, convertSummary(bp, active))
		}
		return list, nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParsePoolID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	res, err := p.load(req.URL.Path, func(env *runtime.Env) (any, error) {
		bp, err := env.Pools.Pool(id)
		if err != nil {
			return nil, err
		}
		if bp == nil {
			return nil, errPoolNotFound
		}
		active, err := env.Pools.ActiveStake(id)
		if err != nil {
			return nil, err
		}
		return convertPool(bp, active, Accounts{
			Bonded: env.Pools.BondedAccount(id),
			Reward: env.Pools.RewardAccount(id),
			Bonus:  env.Pools.BonusAccount(id),
		}), nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetSubPools(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParsePoolID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	res, err := p.load(req.URL.Path, func(env *runtime.Env) (any, error) {
		bp, err := env.Pools.Pool(id)
		if err != nil {
			return nil, err
		}
		if bp == nil {
			return nil, errPoolNotFound
		}
		sp, err := env.Pools.SubPools(id)
		if err != nil {
			return nil, err
		}
		return convertSubPools(sp), nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetMembers(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParsePoolID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	res, err := p.load(req.URL.Path, func(env *runtime.Env) (any, error) {
		bp, err := env.Pools.Pool(id)
		if err != nil {
			return nil, err
		}
		if bp == nil {
			return nil, errPoolNotFound
		}
		return env.Pools.MemberAccounts(id)
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetMember(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParsePoolID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	account, err := utils.ParseAddress(mux.Vars(req)["account"], "account")
	if err != nil {
		return err
	}
	res, err := p.load(req.URL.Path, func(env *runtime.Env) (any, error) {
		m, err := env.Pools.Member(id, account)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, utils.NotFound(errors.New("member not found"))
		}
		balance, err := env.Pools.MemberBalance(id, account)
		if err != nil {
			return nil, err
		}
		era, err := env.Staking.CurrentEra()
		if err != nil {
			return nil, err
		}
		return convertMember(m, balance, era), nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetParams(w http.ResponseWriter, req *http.Request) error {
	res, err := p.load(req.URL.Path, func(env *runtime.Env) (any, error) {
		params, err := env.Pools.Params()
		if err != nil {
			return nil, err
		}
		minBond, err := env.Pools.DepositorMinBond()
		if err != nil {
			return nil, err
		}
		tvl, err := env.Pools.TotalValueLocked()
		if err != nil {
			return nil, err
		}
		return &Params{
			MinJoinBond:         params.MinJoinBond,
			MinCreateBond:       params.MinCreateBond,
			MaxPools:            params.MaxPools,
			GlobalMaxCommission: params.GlobalMaxCommission,
			DepositorMinBond:    minBond,
			TotalValueLocked:    tvl,
		}, nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/params").
		Methods(http.MethodGet).
		Name("GET /pools/params").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetParams))
	sub.Path("/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /pools/{id}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id:[0-9]+}/subpools").
		Methods(http.MethodGet).
		Name("GET /pools/{id}/subpools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetSubPools))
	sub.Path("/{id:[0-9]+}/members").
		Methods(http.MethodGet).
		Name("GET /pools/{id}/members").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetMembers))
	sub.Path("/{id:[0-9]+}/members/{account}").
		Methods(http.MethodGet).
		Name("GET /pools/{id}/members/{account}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetMember))
}
