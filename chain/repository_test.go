// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

func M(a ...any) []any {
	return a
}

func newGenesis(ts uint64) *block.Block {
	return new(block.Builder).ParentID(block.GenesisParentID).Timestamp(ts).Build()
}

func newBlock(parent *block.Header, calls ...*tx.Call) (*block.Block, tx.Receipts) {
	b := new(block.Builder).ParentID(parent.ID()).Timestamp(parent.Timestamp() + thor.DefaultBlockInterval)
	receipts := make(tx.Receipts, 0, len(calls))
	for _, c := range calls {
		b.Call(c)
		receipts = append(receipts, &tx.Receipt{CallID: c.ID(), Origin: c.Origin, Output: []byte{1}})
	}
	return b.ReceiptsRoot(block.RootHash(receipts)).Build(), receipts
}

func newCall(nonce uint64) *tx.Call {
	return &tx.Call{
		Origin: thor.BytesToAddress([]byte("alice")),
		To:     thor.VotesAddress,
		Value:  new(big.Int),
		Data:   []byte{0xde, 0xad},
		Nonce:  nonce,
	}
}

func TestRepository(t *testing.T) {
	db := kv.NewMem()
	genesis := newGenesis(1000)

	repo, err := NewRepository(db, genesis)
	require.NoError(t, err)
	assert.Equal(t, genesis.Header().ID(), repo.BestBlock().ID())
	assert.Equal(t, genesis, repo.GenesisBlock())
	assert.Equal(t, M(genesis.Header().ID(), nil), M(repo.GetBlockID(0)))

	call := newCall(1)
	b1, receipts := newBlock(genesis.Header(), call, newCall(2))
	require.NoError(t, repo.AddBlock(b1, receipts))
	assert.Equal(t, b1.Header().ID(), repo.BestBlock().ID())

	loaded, err := repo.GetBlock(b1.Header().ID())
	require.NoError(t, err)
	assert.Equal(t, b1.Header().ID(), loaded.Header().ID())
	assert.Len(t, loaded.Calls(), 2)

	gotReceipts, err := repo.GetBlockReceipts(b1.Header().ID())
	require.NoError(t, err)
	assert.Equal(t, receipts, gotReceipts)

	assert.Equal(t, M(b1.Header().ID(), nil), M(repo.GetBlockID(1)))

	gotCall, receipt, meta, err := repo.GetCall(call.ID())
	require.NoError(t, err)
	assert.Equal(t, call.ID(), gotCall.ID())
	assert.Equal(t, call.ID(), receipt.CallID)
	assert.Equal(t, &CallMeta{b1.Header().ID(), 0}, meta)

	_, _, _, err = repo.GetCall(thor.Bytes32{1})
	assert.True(t, repo.IsNotFound(err))

	_, err = repo.GetBlockHeader(thor.Bytes32{1})
	assert.True(t, repo.IsNotFound(err))

	// reopen
	repo, err = NewRepository(db, genesis)
	require.NoError(t, err)
	assert.Equal(t, b1.Header().ID(), repo.BestBlock().ID())

	_, err = NewRepository(db, newGenesis(2000))
	assert.EqualError(t, err, "genesis mismatch")
}

func TestAddBlockValidation(t *testing.T) {
	genesis := newGenesis(1000)
	repo, err := NewRepository(kv.NewMem(), genesis)
	require.NoError(t, err)

	b1, receipts := newBlock(genesis.Header(), newCall(1))
	assert.EqualError(t, repo.AddBlock(b1, nil), "receipts count mismatch")

	orphan, _ := newBlock(b1.Header())
	assert.Error(t, repo.AddBlock(orphan, nil))

	require.NoError(t, repo.AddBlock(b1, receipts))
	// a sibling of b1 no longer extends the best block
	sibling, _ := newBlock(genesis.Header())
	assert.Error(t, repo.AddBlock(sibling, nil))

	_, err = NewRepository(kv.NewMem(), b1)
	assert.EqualError(t, err, "genesis number != 0")
}

func TestTicker(t *testing.T) {
	genesis := newGenesis(1000)
	repo, err := NewRepository(kv.NewMem(), genesis)
	require.NoError(t, err)

	ticker := repo.NewTicker()
	b1, _ := newBlock(genesis.Header())
	require.NoError(t, repo.AddBlock(b1, nil))

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("no tick after adding block")
	}
}
