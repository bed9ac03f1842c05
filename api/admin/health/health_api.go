// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tangle-network/lst/api/utils"
)

type API struct {
	health *Health
}

func NewAPI(health *Health) *API {
	return &API{health}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	var maxTimeBetweenBlocks time.Duration
	if s := r.URL.Query().Get("maxTimeBetweenBlocks"); s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "maxTimeBetweenBlocks"))
		}
		maxTimeBetweenBlocks = parsed
	}

	status := h.health.Status(maxTimeBetweenBlocks)
	w.Header().Set("Content-Type", utils.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	return utils.WriteJSON(w, status)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
