// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eras

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"

	"github.com/tangle-network/lst/api/utils"
	"github.com/tangle-network/lst/runtime"
	"github.com/tangle-network/lst/tangle"
)

type Era struct {
	Era             uint32       `json:"era"`
	BondingDuration uint32       `json:"bondingDuration"`
	Validators      uint32       `json:"validators"`
	Reward          *uint256.Int `json:"reward"`
}

type Payout struct {
	Era                     uint32         `json:"era"`
	PayoutCount             uint32         `json:"payoutCount"`
	PayoutsProcessed        bool           `json:"payoutsProcessed"`
	RequiredPaymentsPercent tangle.Perbill `json:"requiredPaymentsPercent"`
	RequiredPayouts         uint32         `json:"requiredPayouts"`
}

type Eras struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Eras {
	return &Eras{rt}
}

func (e *Eras) handleGetCurrent(w http.ResponseWriter, _ *http.Request) error {
	var res Era
	if err := e.rt.View(func(env *runtime.Env) error {
		era, err := env.Staking.CurrentEra()
		if err != nil {
			return err
		}
		validators, err := env.Staking.ValidatorsCount()
		if err != nil {
			return err
		}
		reward, _, err := env.Staking.EraReward(era)
		if err != nil {
			return err
		}
		res = Era{
			Era:             era,
			BondingDuration: env.Staking.BondingDuration(),
			Validators:      validators,
			Reward:          reward,
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &res)
}

func (e *Eras) handleGetPayout(w http.ResponseWriter, _ *http.Request) error {
	var res Payout
	if err := e.rt.View(func(env *runtime.Env) error {
		payout, err := env.Pools.EraPayout()
		if err != nil {
			return err
		}
		validators, err := env.Staking.ValidatorsCount()
		if err != nil {
			return err
		}
		res = Payout{
			Era:                     payout.Era,
			PayoutCount:             payout.PayoutCount,
			PayoutsProcessed:        payout.PayoutsProcessed,
			RequiredPaymentsPercent: payout.RequiredPaymentsPercent,
			RequiredPayouts:         payout.RequiredPayouts(validators),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &res)
}

func (e *Eras) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/current").
		Methods(http.MethodGet).
		Name("GET /eras/current").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetCurrent))
	sub.Path("/payout").
		Methods(http.MethodGet).
		Name("GET /eras/payout").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetPayout))
}
