// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"time"

	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/thor"
)

type BlockIngestion struct {
	ID        thor.Bytes32 `json:"id"`
	Number    uint32       `json:"number"`
	Timestamp time.Time    `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
}

// Health reports whether blocks are produced in time.
type Health struct {
	repo     *chain.Repository
	maxDelay time.Duration
	now      func() time.Time
}

// New creates a Health tolerating maxDelay since the best block, zero tolerates any delay.
func New(repo *chain.Repository, maxDelay time.Duration) *Health {
	return &Health{
		repo:     repo,
		maxDelay: maxDelay,
		now:      time.Now,
	}
}

func (h *Health) Status() *Status {
	best := h.repo.BestBlock()
	ts := time.Unix(int64(best.Timestamp()), 0)

	return &Status{
		Healthy: h.maxDelay == 0 || h.now().Sub(ts) <= h.maxDelay,
		BlockIngestion: &BlockIngestion{
			ID:        best.ID(),
			Number:    best.Number(),
			Timestamp: ts,
		},
	}
}
