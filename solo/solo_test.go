// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

type testNode struct {
	repo   *chain.Repository
	stater *state.Stater
	logDB  *logdb.LogDB
	pool   *CallPool
	engine *Engine
}

func newTestNode(t *testing.T, onDemand bool) *testNode {
	db := kv.NewMem()
	stater := state.NewStater(db)
	gene := genesis.NewDevnet()
	b0, err := gene.Init(stater)
	require.NoError(t, err)
	repo, err := chain.NewRepository(db, b0)
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	var clock atomic.Uint64
	clock.Store(b0.Header().Timestamp())
	opts := Options{
		OnDemand:      onDemand,
		BlockInterval: thor.DefaultBlockInterval,
		Clock:         func() uint64 { return clock.Add(thor.DefaultBlockInterval) },
	}
	pool := NewCallPool(16, func(id thor.Bytes32) bool {
		_, err := repo.GetCallMeta(id)
		return err == nil
	})
	return &testNode{repo, stater, logDB, pool, NewEngine(repo, stater, logDB, opts)}
}

func depositCall(t *testing.T, amount *big.Int, nonce uint64) *tx.Call {
	alice := genesis.DevAccounts()[1].Address
	method, _ := builtin.Staking.ABI.MethodByName("deposit")
	data, err := method.EncodeInput(amount, true, common.Address(alice))
	require.NoError(t, err)
	return &tx.Call{Origin: alice, To: builtin.Staking.Address, Value: new(big.Int), Data: data, Nonce: nonce}
}

func TestPack(t *testing.T) {
	node := newTestNode(t, false)

	blk, receipts, err := node.engine.Pack(nil, false)
	require.NoError(t, err)
	assert.Empty(t, receipts)
	assert.Equal(t, uint32(1), blk.Header().Number())
	assert.Equal(t, blk.Header().ID(), node.repo.BestBlock().ID())

	ok := depositCall(t, big.NewInt(100), 1)
	bad := depositCall(t, big.NewInt(0), 2)
	blk, receipts, err = node.engine.Pack(tx.Calls{ok, bad}, false)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.False(t, receipts[0].Reverted)
	assert.Equal(t, "Staking::deposit: cannot stake 0", receipts[1].RevertReason)
	assert.Equal(t, uint32(2), blk.Header().Number())

	// the state is committed
	alice := genesis.DevAccounts()[1].Address
	locked, err := builtin.Staking.WithState(node.stater.NewState()).LockedOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), locked)

	// events of succeeded calls are indexed
	events, err := node.logDB.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, len(receipts[0].Events))
	assert.Equal(t, ok.ID(), events[0].CallID)

	_, receipt, meta, err := node.repo.GetCall(bad.ID())
	require.NoError(t, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, uint64(1), meta.Index)

	// inspect changes nothing
	receipt, err = node.engine.Inspect(depositCall(t, big.NewInt(5), 3))
	require.NoError(t, err)
	assert.False(t, receipt.Reverted)
	locked, err = builtin.Staking.WithState(node.stater.NewState()).LockedOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), locked)
}

func TestCallPool(t *testing.T) {
	node := newTestNode(t, false)
	pool := node.pool

	ch := make(chan *CallEvent, 1)
	sub := pool.SubscribeCallEvent(ch)
	defer sub.Unsubscribe()

	c1 := depositCall(t, big.NewInt(1), 1)
	require.NoError(t, pool.Add(c1))
	assert.Equal(t, c1, (<-ch).Call)
	assert.ErrorIs(t, pool.Add(c1), ErrKnownCall)

	c2 := depositCall(t, big.NewInt(1), 2)
	require.NoError(t, pool.Add(c2))
	<-ch
	assert.Equal(t, tx.Calls{c1, c2}, pool.Executables())
	assert.Equal(t, c2, pool.Get(c2.ID()))

	_, _, err := node.engine.Pack(tx.Calls{c1}, false)
	require.NoError(t, err)
	pool.Remove(tx.Calls{c1})
	assert.Equal(t, 1, pool.Len())
	// packed calls are known
	assert.ErrorIs(t, pool.Add(c1), ErrKnownCall)

	oversized := &tx.Call{Data: make([]byte, MaxCallDataSize+1)}
	assert.Error(t, pool.Add(oversized))

	full := NewCallPool(1, nil)
	require.NoError(t, full.Add(c1))
	assert.ErrorIs(t, full.Add(c2), ErrPoolFull)
}

func TestOnDemand(t *testing.T) {
	node := newTestNode(t, true)
	s := New(node.pool, node.engine, Options{OnDemand: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	ticker := node.repo.NewTicker()
	call := depositCall(t, big.NewInt(10), 1)
	require.NoError(t, node.pool.Add(call))
	// the loop subscribes asynchronously, keep feeding until a block is packed
	nonce := uint64(1)
	require.Eventually(t, func() bool {
		nonce++
		if err := node.pool.Add(depositCall(t, big.NewInt(10), nonce)); err != nil {
			return false
		}
		select {
		case <-ticker.C():
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return node.pool.Len() == 0 }, time.Second, 10*time.Millisecond)
	_, receipt, _, err := node.repo.GetCall(call.ID())
	require.NoError(t, err)
	assert.False(t, receipt.Reverted)

	cancel()
	assert.NoError(t, <-done)
}
