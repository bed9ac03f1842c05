// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/tangle-network/lst/api/doc"
	"github.com/tangle-network/lst/api/eras"
	"github.com/tangle-network/lst/api/events"
	"github.com/tangle-network/lst/api/middleware"
	"github.com/tangle-network/lst/api/misbehavior"
	"github.com/tangle-network/lst/api/pools"
	"github.com/tangle-network/lst/api/subscriptions"
	"github.com/tangle-network/lst/api/tx"
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	BacktraceLimit uint64
	EventsLimit    uint64
	CacheSize      int
	PprofOn        bool
	EnableMetrics  bool
	// EnableReqLogger logs every request while set.
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	// EnableTx mounts the operations endpoint, which is unauthenticated.
	EnableTx bool
	// OnExecuted is called after each operation applied through the API.
	OnExecuted func()
}

// New return api router
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/lst.yaml", http.StatusTemporaryRedirect)
		})

	pools.New(rt, opts.CacheSize).
		Mount(router, "/pools")
	eras.New(rt).
		Mount(router, "/eras")
	if db := rt.EventDB(); db != nil {
		events.New(db, opts.EventsLimit).
			Mount(router, "/events")
	}
	misbehavior.New(rt.Verifier()).
		Mount(router, "/misbehavior")
	if opts.EnableTx {
		tx.New(rt, opts.OnExecuted).
			Mount(router, "/tx")
	}
	subs := subscriptions.New(rt, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{"x-lst-ver"}),
	)(handler)
	handler = versionHeader(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}

func versionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-lst-ver", doc.Version())
		next.ServeHTTP(w, r)
	})
}
