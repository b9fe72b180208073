// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/log"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		body    string
		status  int
		level   slog.Level
		errPart string
	}{
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, log.LevelDebug, ""},
		{"set trace", http.MethodPost, `{"level":"trace"}`, http.StatusOK, log.LevelTrace, ""},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, log.LevelCrit, ""},
		{"unknown level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, log.LevelInfo, `unknown level "loud"`},
		{"unknown field", http.MethodPost, `{"verbosity":"debug"}`, http.StatusBadRequest, log.LevelInfo, "body"},
		{"read", http.MethodGet, "", http.StatusOK, log.LevelInfo, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var level slog.LevelVar
			level.Set(log.LevelInfo)

			router := mux.NewRouter()
			New(&level).Mount(router, "/admin/loglevel")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/loglevel", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.level, level.Level())
			if tt.errPart != "" {
				assert.Contains(t, rr.Body.String(), tt.errPart)
				return
			}
			var res Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
			assert.Equal(t, log.LevelString(tt.level), res.CurrentLevel)
		})
	}
}
