// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// MaxCallDataSize bounds the input of a submitted call.
const MaxCallDataSize = 64 * 1024

var (
	// ErrKnownCall is returned when a call with the same id is pending or packed.
	ErrKnownCall = errors.New("known call")
	// ErrPoolFull is returned when too many calls are pending.
	ErrPoolFull = errors.New("call pool is full")
)

// CallEvent is fired when a call is added to the pool.
type CallEvent struct {
	Call *tx.Call
}

// CallPool holds submitted calls until they are packed, in arrival order.
type CallPool struct {
	limit int

	mu      sync.Mutex
	pending []*tx.Call
	byID    map[thor.Bytes32]*tx.Call
	known   func(id thor.Bytes32) bool

	feed  event.Feed
	scope event.SubscriptionScope
}

// NewCallPool creates a pool holding up to limit calls. known reports whether a call is
// already packed, it may be nil.
func NewCallPool(limit int, known func(id thor.Bytes32) bool) *CallPool {
	return &CallPool{
		limit: limit,
		byID:  make(map[thor.Bytes32]*tx.Call),
		known: known,
	}
}

// Add adds a call to the pool.
func (p *CallPool) Add(call *tx.Call) error {
	if len(call.Data) > MaxCallDataSize {
		return errors.New("call data too large")
	}
	if call.Value != nil && call.Value.Sign() < 0 {
		return errors.New("negative value")
	}
	id := call.ID()

	p.mu.Lock()
	if _, ok := p.byID[id]; ok {
		p.mu.Unlock()
		return ErrKnownCall
	}
	if p.known != nil && p.known(id) {
		p.mu.Unlock()
		return ErrKnownCall
	}
	if p.limit > 0 && len(p.pending) >= p.limit {
		p.mu.Unlock()
		return ErrPoolFull
	}
	p.pending = append(p.pending, call)
	p.byID[id] = call
	p.mu.Unlock()

	metricPoolSize().Set(int64(p.Len()))
	p.feed.Send(&CallEvent{Call: call})
	return nil
}

// Get returns the pending call of id.
func (p *CallPool) Get(id thor.Bytes32) *tx.Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.byID[id]
}

// Executables returns pending calls in arrival order.
func (p *CallPool) Executables() tx.Calls {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append(tx.Calls(nil), p.pending...)
}

// Remove drops packed calls.
func (p *CallPool) Remove(calls tx.Calls) {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := make(map[thor.Bytes32]bool, len(calls))
	for _, c := range calls {
		id := c.ID()
		removed[id] = true
		delete(p.byID, id)
	}
	kept := p.pending[:0]
	for _, c := range p.pending {
		if !removed[c.ID()] {
			kept = append(kept, c)
		}
	}
	p.pending = kept
	metricPoolSize().Set(int64(len(p.pending)))
}

// Len returns the count of pending calls.
func (p *CallPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.pending)
}

// SubscribeCallEvent receives an event for each added call.
func (p *CallPool) SubscribeCallEvent(ch chan *CallEvent) event.Subscription {
	return p.scope.Track(p.feed.Subscribe(ch))
}

// Close closes all subscriptions.
func (p *CallPool) Close() {
	p.scope.Close()
}
