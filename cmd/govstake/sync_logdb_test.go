// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/test/testchain"
)

func newChainWithEvents(t *testing.T, blocks int) *testchain.Chain {
	c, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	dev := genesis.DevAccounts()
	for range blocks {
		call, err := c.Call(dev[0].Address, builtin.Votes.Address, builtin.Votes.ABI, "transfer", dev[1].Address, big.NewInt(1))
		require.NoError(t, err)
		_, err = c.MintBlock(call)
		require.NoError(t, err)
	}
	return c
}

func TestSyncLogDB(t *testing.T) {
	c := newChainWithEvents(t, 6)
	ctx := context.Background()

	want, err := c.LogDB().FilterEvents(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, want)

	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	pos, err := seekLogDBSyncPosition(c.Repo(), db)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), pos)

	require.NoError(t, syncLogDB(ctx, c.Repo(), db, false, io.Discard))
	got, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, len(want), len(got))

	newest, err := db.NewestBlockID()
	require.NoError(t, err)
	assert.Equal(t, c.Repo().BestBlock().ID(), newest)

	pos, err = seekLogDBSyncPosition(c.Repo(), db)
	require.NoError(t, err)
	assert.Equal(t, c.Repo().BestBlock().Number()+1, pos)

	// a partial db is resumed and verified
	partial, err := logdb.NewMem()
	require.NoError(t, err)
	defer partial.Close()
	for n := uint32(1); n <= 3; n++ {
		id, err := c.Repo().GetBlockID(n)
		require.NoError(t, err)
		b, err := c.Repo().GetBlock(id)
		require.NoError(t, err)
		receipts, err := c.Repo().GetBlockReceipts(id)
		require.NoError(t, err)
		require.NoError(t, partial.Write(b, receipts))
	}
	pos, err = seekLogDBSyncPosition(c.Repo(), partial)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), pos)
	require.NoError(t, syncLogDB(ctx, c.Repo(), partial, true, io.Discard))

	got, err = partial.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, len(want), len(got))
}

func TestVerifyLogDBPerBlock(t *testing.T) {
	c := newChainWithEvents(t, 1)
	ctx := context.Background()

	id, err := c.Repo().GetBlockID(1)
	require.NoError(t, err)
	b, err := c.Repo().GetBlock(id)
	require.NoError(t, err)
	receipts, err := c.Repo().GetBlockReceipts(id)
	require.NoError(t, err)
	events, err := c.LogDB().FilterEvents(ctx, &logdb.EventFilter{Range: &logdb.Range{From: 1, To: 1}})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	var out bytes.Buffer
	assert.NoError(t, verifyLogDBPerBlock(&out, b, receipts, events))
	assert.Empty(t, out.String())

	assert.Error(t, verifyLogDBPerBlock(&out, b, receipts, events[1:]))
	assert.Contains(t, out.String(), "Expected")
}
