// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/govstake/govstake/api/accounts"
	"github.com/govstake/govstake/api/blocks"
	"github.com/govstake/govstake/api/calls"
	"github.com/govstake/govstake/api/events"
	"github.com/govstake/govstake/api/governance"
	"github.com/govstake/govstake/api/middleware"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/solo"
	"github.com/govstake/govstake/state"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger *atomic.Bool
	SlowQueries     time.Duration
	Log5xxErrors    bool
	EnableMetrics   bool
	LogsLimit       uint64
	SkipLogs        bool
}

// New returns the api router.
func New(
	repo *chain.Repository,
	stater *state.Stater,
	pool *solo.CallPool,
	engine *solo.Engine,
	logDB *logdb.LogDB,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	accounts.New(stater).
		Mount(router, "/accounts")
	blocks.New(repo).
		Mount(router, "/blocks")
	calls.New(repo, pool, engine).
		Mount(router, "/calls")
	governance.New(repo, stater).
		Mount(router)
	if !opts.SkipLogs {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueries, opts.Log5xxErrors))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP
}
