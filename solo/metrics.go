// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import "github.com/govstake/govstake/metrics"

var (
	metricPoolSize     = metrics.LazyLoadGauge("solo_pool_size")
	metricPackDuration = metrics.LazyLoadHistogramVec("solo_pack_duration_ms", []string{"mode"}, []int64{0, 1, 5, 10, 50, 100, 500, 1000, 5000})
	metricPackedCalls  = metrics.LazyLoadCounterVec("solo_packed_calls_count", []string{"reverted"})
)
