// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solo runs a standalone node, packing submitted calls into blocks.
package solo

import (
	"context"
	"time"

	"github.com/govstake/govstake/co"
	"github.com/govstake/govstake/log"
)

var logger = log.WithContext("pkg", "solo")

type Options struct {
	SkipLogs      bool
	OnDemand      bool
	BlockInterval uint64 // seconds
	// Clock returns the unix time of the next block, the wall clock when nil.
	Clock func() uint64
}

// Solo mode is the standalone client without p2p server
type Solo struct {
	pool    *CallPool
	engine  *Engine
	options Options
}

// New returns Solo instance
func New(pool *CallPool, engine *Engine, options Options) *Solo {
	return &Solo{
		pool:    pool,
		engine:  engine,
		options: options,
	}
}

// Run runs the packer until ctx is done.
func (s *Solo) Run(ctx context.Context) error {
	var goes co.Goes
	defer goes.Wait()

	if s.options.OnDemand {
		logger.Info("prepared to pack block on demand")
		goes.Go(func() { s.onDemandLoop(ctx) })
	} else {
		logger.Info("prepared to pack block", "interval", s.options.BlockInterval)
		goes.Go(func() { s.loop(ctx) })
	}
	<-ctx.Done()
	return nil
}

func (s *Solo) loop(ctx context.Context) {
	interval := s.options.BlockInterval
	if interval == 0 {
		interval = 1
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping interval packing service......")
			return
		case <-time.After(time.Second):
			if left := uint64(time.Now().Unix()) % interval; left == 0 {
				s.pack(false)
			}
		}
	}
}

func (s *Solo) onDemandLoop(ctx context.Context) {
	ch := make(chan *CallEvent, 128)
	sub := s.pool.SubscribeCallEvent(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping on-demand packing service......")
			return
		case <-ch:
			s.pack(true)
		case err := <-sub.Err():
			if err != nil {
				logger.Warn("call subscription failed", "err", err)
			}
			return
		}
	}
}

func (s *Solo) pack(onDemand bool) {
	calls := s.pool.Executables()
	if onDemand && len(calls) == 0 {
		return
	}
	if _, _, err := s.engine.Pack(calls, onDemand); err != nil {
		logger.Error("failed to pack block", "err", err)
		return
	}
	s.pool.Remove(calls)
}
