// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/api/utils"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/misbehavior"
)

type Misbehavior struct {
	verifier *misbehavior.Verifier
}

func New(verifier *misbehavior.Verifier) *Misbehavior {
	return &Misbehavior{verifier}
}

// Verdict tells whether a submission proves the offense.
type Verdict struct {
	Proven bool   `json:"proven"`
	Reason string `json:"reason,omitempty"`
}

func (m *Misbehavior) handleVerify(w http.ResponseWriter, req *http.Request) error {
	var sub misbehavior.Submission
	if err := utils.ParseJSON(req.Body, &sub); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	err := m.verifier.Verify(&sub)
	switch {
	case err == nil:
		return utils.WriteJSON(w, &Verdict{Proven: true})
	case reverts.IsRevertErr(err):
		return utils.WriteJSON(w, &Verdict{Reason: err.Error()})
	default:
		return err
	}
}

func (m *Misbehavior) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/verify").
		Methods(http.MethodPost).
		Name("POST /misbehavior/verify").
		HandlerFunc(utils.WrapHandlerFunc(m.handleVerify))
}
