// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/api/admin/health"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/test/testchain"
)

func TestAdminRoutes(t *testing.T) {
	c, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	defer c.Close()

	var (
		level   slog.LevelVar
		apiLogs atomic.Bool
	)
	level.Set(log.LevelInfo)
	handler := New(&level, &apiLogs, health.New(c.Repo(), 0))

	tests := []struct {
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{http.MethodGet, "/admin/loglevel", "", http.StatusOK, `"currentLevel":"info"`},
		{http.MethodPost, "/admin/loglevel", `{"level":"warn"}`, http.StatusOK, `"currentLevel":"warn"`},
		{http.MethodPost, "/admin/apilogs", `{"enabled":true}`, http.StatusOK, `"enabled":true`},
		{http.MethodGet, "/admin/health", "", http.StatusOK, `"healthy":true`},
		{http.MethodGet, "/admin/unknown", "", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
		assert.Equal(t, tt.status, rr.Code, tt.path)
		assert.Contains(t, rr.Body.String(), tt.want, tt.path)
	}
	assert.Equal(t, log.LevelWarn, level.Level())
	assert.True(t, apiLogs.Load())
}
