// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

func TestBlock(t *testing.T) {
	genesis := new(Builder).ParentID(GenesisParentID).Timestamp(1000).Build()
	assert.Equal(t, uint32(0), genesis.Header().Number())

	call := &tx.Call{
		Origin: thor.BytesToAddress([]byte("alice")),
		To:     thor.StakingAddress,
		Value:  big.NewInt(1),
		Data:   []byte{1, 2, 3, 4},
	}
	blk := new(Builder).
		ParentID(genesis.Header().ID()).
		Timestamp(1010).
		ReceiptsRoot(thor.Bytes32{1}).
		Call(call).
		Build()

	h := blk.Header()
	assert.Equal(t, uint32(1), h.Number())
	assert.Equal(t, uint32(1), Number(h.ID()))
	assert.Equal(t, genesis.Header().ID(), h.ParentID())
	assert.Equal(t, uint64(1010), h.Timestamp())
	assert.Equal(t, RootHash(tx.Calls{call}), h.CallsRoot())
	assert.NotEqual(t, genesis.Header().ID(), h.ID())

	data, err := rlp.EncodeToBytes(blk)
	require.NoError(t, err)

	var decoded Block
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, h.ID(), decoded.Header().ID())
	require.Len(t, decoded.Calls(), 1)
	assert.Equal(t, call.ID(), decoded.Calls()[0].ID())
}
