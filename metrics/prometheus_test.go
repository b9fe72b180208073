// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.Nil(t, m.GetOrCreateHandler())
	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateCountVecMeter("cv", []string{"a"}).AddWithLabel(1, map[string]string{"a": "b"})
	m.GetOrCreateGaugeMeter("g").Set(1)
	m.GetOrCreateHistogramVecMeter("h", []string{"a"}, nil).ObserveWithLabels(1, map[string]string{"a": "b"})
}

func TestPrometheusMetrics(t *testing.T) {
	m := newPrometheusMetrics()

	counter := m.GetOrCreateCountMeter("calls_count")
	counter.Add(2)
	assert.Same(t, counter, m.GetOrCreateCountMeter("calls_count"))

	m.GetOrCreateCountVecMeter("reverts_count", []string{"kind"}).
		AddWithLabel(1, map[string]string{"kind": "authorization"})
	m.GetOrCreateGaugeMeter("best_block").Set(42)
	m.GetOrCreateHistogramVecMeter("pack_duration_ms", []string{"mode"}, BucketBlockPacking).
		ObserveWithLabels(3, map[string]string{"mode": "interval"})

	srv := httptest.NewServer(m.GetOrCreateHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	for _, want := range []string{
		"govstake_metrics_calls_count 2",
		`govstake_metrics_reverts_count{kind="authorization"} 1`,
		"govstake_metrics_best_block 42",
		"govstake_metrics_pack_duration_ms_bucket",
	} {
		assert.True(t, strings.Contains(text, want), want)
	}
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
}
