// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/runtime"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// Engine packs calls into blocks on top of the best block.
type Engine struct {
	repo    *chain.Repository
	stater  *state.Stater
	logDB   *logdb.LogDB
	handler *builtin.Handler
	options Options

	mu sync.Mutex
}

// NewEngine creates an engine. logDB may be nil when logs are skipped.
func NewEngine(repo *chain.Repository, stater *state.Stater, logDB *logdb.LogDB, options Options) *Engine {
	if options.Clock == nil {
		options.Clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Engine{
		repo:    repo,
		stater:  stater,
		logDB:   logDB,
		handler: builtin.NewHandler(nil),
		options: options,
	}
}

// Pack executes calls in a new block and makes it the best block.
// Reverted calls are packed too, their receipts tell why.
func (e *Engine) Pack(calls tx.Calls, onDemand bool) (*block.Block, tx.Receipts, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	startTime := time.Now()
	parent := e.repo.BestBlock()

	timestamp := e.options.Clock()
	if timestamp <= parent.Timestamp() {
		timestamp = parent.Timestamp() + 1
	}

	st := e.stater.NewState()
	rt := runtime.New(st, e.handler, parent.Number()+1, timestamp)
	receipts, err := rt.ExecuteCalls(calls)
	if err != nil {
		return nil, nil, errors.Wrap(err, "execute calls")
	}

	builder := new(block.Builder).
		ParentID(parent.ID()).
		Timestamp(timestamp).
		ReceiptsRoot(block.RootHash(receipts))
	for _, c := range calls {
		builder.Call(c)
	}
	blk := builder.Build()

	if err := st.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "commit state")
	}
	if err := e.repo.AddBlock(blk, receipts); err != nil {
		return nil, nil, errors.Wrap(err, "add block")
	}
	if !e.options.SkipLogs && e.logDB != nil {
		if err := e.logDB.Write(blk, receipts); err != nil {
			return nil, nil, errors.Wrap(err, "write logs")
		}
	}

	mode := "interval"
	if onDemand {
		mode = "on-demand"
	}
	metricPackDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"mode": mode})
	for _, r := range receipts {
		metricPackedCalls().AddWithLabel(1, map[string]string{"reverted": strconv.FormatBool(r.Reverted)})
	}
	logger.Info("📦 new block packed",
		"number", blk.Header().Number(),
		"id", blk.Header().ID().AbbrevString(),
		"calls", len(calls),
		"elapsed", time.Since(startTime),
	)
	return blk, receipts, nil
}

// Inspect executes a call on top of the best block without keeping any change.
func (e *Engine) Inspect(call *tx.Call) (*tx.Receipt, error) {
	interval := e.options.BlockInterval
	if interval == 0 {
		interval = thor.DefaultBlockInterval
	}
	best := e.repo.BestBlock()
	rt := runtime.New(e.stater.NewState(), e.handler, best.Number()+1, best.Timestamp()+interval)
	return rt.Execute(call)
}
