// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/metrics"
	"github.com/govstake/govstake/test/testchain"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func newTestAPI(t *testing.T, opts Options) http.HandlerFunc {
	c, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return New(c.Repo(), c.Stater(), c.Pool(), c.Engine(), c.LogDB(), opts)
}

func serve(h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutes(t *testing.T) {
	h := newTestAPI(t, Options{AllowedOrigins: "*", LogsLimit: 100})
	alice := genesis.DevAccounts()[1].Address.String()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/accounts/" + alice, http.StatusOK},
		{http.MethodGet, "/blocks/best", http.StatusOK},
		{http.MethodGet, "/governor", http.StatusOK},
		{http.MethodGet, "/staking", http.StatusOK},
		{http.MethodGet, "/timelock", http.StatusOK},
		{http.MethodGet, "/votes/" + alice, http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, serve(h, tt.method, tt.path, nil).Code, tt.path)
	}
}

func TestSkipLogs(t *testing.T) {
	h := newTestAPI(t, Options{SkipLogs: true})
	rr := serve(h, http.MethodPost, "/logs/event", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	h := newTestAPI(t, Options{AllowedOrigins: "http://localhost:3000, http://example.com"})

	rr := serve(h, http.MethodGet, "/blocks/best", http.Header{"Origin": {"http://example.com"}})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = serve(h, http.MethodGet, "/blocks/best", http.Header{"Origin": {"http://other.org"}})
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware(t *testing.T) {
	var reqLogs atomic.Bool
	reqLogs.Store(true)
	h := newTestAPI(t, Options{EnableMetrics: true, EnableReqLogger: &reqLogs})

	serve(h, http.MethodGet, "/accounts/0x", nil)
	serve(h, http.MethodGet, "/accounts/"+genesis.DevAccounts()[0].Address.String(), nil)
	serve(h, http.MethodGet, "/accounts/"+genesis.DevAccounts()[1].Address.String(), nil)
	serve(h, http.MethodGet, "/not/routed", nil)

	rr := serve(metrics.HTTPHandler(), http.MethodGet, "/metrics", nil)
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, m := range families["govstake_metrics_api_request_count"].GetMetric() {
		labels := make(map[string]string)
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		assert.Equal(t, http.MethodGet, labels["method"])
		counts[labels["name"]+" "+labels["code"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"GET /accounts/{address} 200": 2,
		"GET /accounts/{address} 400": 1,
	}, counts)
}
