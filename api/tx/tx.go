// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tx executes engine operations over HTTP. It has no authentication
// and is only mounted by development nodes.
package tx

import (
	"io"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/api/utils"
	"github.com/tangle-network/lst/assets"
	"github.com/tangle-network/lst/lst"
	"github.com/tangle-network/lst/lst/pool"
	"github.com/tangle-network/lst/runtime"
)

// exec runs a decoded request on the pending state.
type exec func(env *runtime.Env) (any, error)

// decoder parses the request body of an operation.
type decoder func(body io.Reader) (exec, error)

func op[R any](fn func(env *runtime.Env, req *R) (any, error)) decoder {
	return func(body io.Reader) (exec, error) {
		var req R
		if err := utils.ParseJSON(body, &req); err != nil && err != io.EOF {
			return nil, err
		}
		return func(env *runtime.Env) (any, error) {
			return fn(env, &req)
		}, nil
	}
}

// done wraps operations without a result.
func done(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return utils.M{}, nil
}

var operations = map[string]decoder{
	"create": op(func(env *runtime.Env, req *Create) (any, error) {
		if req.PoolID != nil {
			if err := env.Pools.CreateWithPoolID(req.Caller, *req.PoolID, req.params()); err != nil {
				return nil, err
			}
			return utils.M{"poolId": *req.PoolID}, nil
		}
		id, err := env.Pools.Create(req.Caller, req.params())
		if err != nil {
			return nil, err
		}
		return utils.M{"poolId": id}, nil
	}),
	"bond": op(func(env *runtime.Env, req *Bond) (any, error) {
		value := lst.BondAmount(orZero(req.Amount))
		if req.Fill {
			value = lst.BondFill()
		}
		return done(env.Pools.Bond(req.Caller, req.PoolID, value))
	}),
	"unbond": op(func(env *runtime.Env, req *Unbond) (any, error) {
		return done(env.Pools.Unbond(req.Caller, req.PoolID, req.Member, orZero(req.Points)))
	}),
	"withdraw": op(func(env *runtime.Env, req *Withdraw) (any, error) {
		return done(env.Pools.WithdrawUnbonded(req.Caller, req.PoolID, req.Member, req.Spans))
	}),
	"poolWithdraw": op(func(env *runtime.Env, req *PoolWithdraw) (any, error) {
		return done(env.Pools.PoolWithdrawUnbonded(req.PoolID, req.Spans))
	}),
	"setState": op(func(env *runtime.Env, req *SetState) (any, error) {
		return done(env.Pools.SetState(req.Caller, req.PoolID, req.State))
	}),
	"setMetadata": op(func(env *runtime.Env, req *SetMetadata) (any, error) {
		return done(env.Pools.SetMetadata(req.Caller, req.PoolID, []byte(req.Name)))
	}),
	"updateRoles": op(func(env *runtime.Env, req *UpdateRoles) (any, error) {
		return done(env.Pools.UpdateRoles(req.Caller, req.PoolID, req.Root.convert(), req.Nominator.convert(), req.Bouncer.convert()))
	}),
	"nominate": op(func(env *runtime.Env, req *Nominate) (any, error) {
		return done(env.Pools.Nominate(req.Caller, req.PoolID, req.Validators))
	}),
	"chill": op(func(env *runtime.Env, req *PoolCall) (any, error) {
		return done(env.Pools.Chill(req.Caller, req.PoolID))
	}),
	"setCommission": op(func(env *runtime.Env, req *SetCommission) (any, error) {
		return done(env.Pools.SetCommission(req.Caller, req.PoolID, req.Rate))
	}),
	"setCommissionMax": op(func(env *runtime.Env, req *SetCommission) (any, error) {
		if req.Rate == nil {
			return nil, utils.BadRequest(errors.New("rate: required"))
		}
		return done(env.Pools.SetCommissionMax(req.Caller, req.PoolID, *req.Rate))
	}),
	"setCommissionChangeRate": op(func(env *runtime.Env, req *SetCommissionChangeRate) (any, error) {
		return done(env.Pools.SetCommissionChangeRate(req.Caller, req.PoolID, pool.ChangeRate{MaxDelta: req.MaxDelta, MinDelay: req.MinDelay}))
	}),
	"mutate": op(func(env *runtime.Env, req *Mutate) (any, error) {
		return done(env.Pools.Mutate(req.Caller, req.PoolID, req.mutation()))
	}),
	"setConfigs": op(func(env *runtime.Env, req *SetConfigs) (any, error) {
		return done(env.Pools.SetConfigs(req.Caller, lst.ParamsUpdate{
			MinJoinBond:         req.MinJoinBond.convert(),
			MinCreateBond:       req.MinCreateBond.convert(),
			MaxPools:            req.MaxPools.convert(),
			GlobalMaxCommission: req.GlobalMaxCommission.convert(),
		}))
	}),
	"payoutRewards": op(func(env *runtime.Env, req *PayoutRewards) (any, error) {
		return done(env.Pools.PayoutRewards(req.Validator, req.Era))
	}),
	"processPayouts": op(func(env *runtime.Env, req *ProcessPayouts) (any, error) {
		return done(env.Pools.ProcessPayouts(req.PoolCount))
	}),

	// staking and balances, to drive a development chain
	"advanceEra": op(func(env *runtime.Env, _ *struct{}) (any, error) {
		era, err := env.Staking.AdvanceEra()
		if err != nil {
			return nil, err
		}
		return utils.M{"era": era}, nil
	}),
	"setEraReward": op(func(env *runtime.Env, req *SetEraReward) (any, error) {
		return done(env.Staking.SetEraReward(req.Era, orZero(req.Reward)))
	}),
	"slash": op(func(env *runtime.Env, req *Slash) (any, error) {
		slashed, err := env.Staking.Slash(req.Stash, req.Era, orZero(req.Amount))
		if err != nil {
			return nil, err
		}
		return utils.M{"slashed": slashed}, nil
	}),
	"validate": op(func(env *runtime.Env, req *Validate) (any, error) {
		if err := env.Staking.Bond(req.Stash, orZero(req.Bond), req.Stash); err != nil {
			return nil, err
		}
		return done(env.Staking.Validate(req.Stash))
	}),
	"deposit": op(func(env *runtime.Env, req *Deposit) (any, error) {
		return done(env.Currency.Deposit(req.Account, orZero(req.Amount)))
	}),
	"mintToken": op(func(env *runtime.Env, req *MintToken) (any, error) {
		var attrs []assets.Attribute
		if req.Capacity != nil {
			attrs = append(attrs, assets.Attribute{Key: lst.CapacityAttribute, Value: req.Capacity.Dec()})
		}
		return done(env.Assets.MintToken(req.ID, req.Owner, attrs...))
	}),
}

// Operations lists the operation names.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Tx struct {
	rt *runtime.Runtime
	// executed is notified after each applied operation
	executed func()
}

func New(rt *runtime.Runtime, executed func()) *Tx {
	return &Tx{rt, executed}
}

func (t *Tx) handleExecute(w http.ResponseWriter, req *http.Request) error {
	name := mux.Vars(req)["op"]
	decode, ok := operations[name]
	if !ok {
		return utils.NotFound(errors.Errorf("unknown operation %q", name))
	}
	run, err := decode(req.Body)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	var res any
	if err := t.rt.Execute(name, func(env *runtime.Env) (err error) {
		res, err = run(env)
		return
	}); err != nil {
		return utils.Reverted(err)
	}
	if t.executed != nil {
		t.executed()
	}
	return utils.WriteJSON(w, res)
}

func (t *Tx) handleOperations(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, Operations())
}

func (t *Tx) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /tx").
		HandlerFunc(utils.WrapHandlerFunc(t.handleOperations))
	sub.Path("/{op}").
		Methods(http.MethodPost).
		Name("POST /tx/{op}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleExecute))
}
