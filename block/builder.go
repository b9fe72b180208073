// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// Builder to make it easy to build a block object.
type Builder struct {
	headerBody headerBody
	calls      tx.Calls
}

// ParentID set parent id.
func (b *Builder) ParentID(id thor.Bytes32) *Builder {
	b.headerBody.ParentID = id
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.headerBody.Timestamp = ts
	return b
}

// ReceiptsRoot set receipts root.
func (b *Builder) ReceiptsRoot(hash thor.Bytes32) *Builder {
	b.headerBody.ReceiptsRoot = hash
	return b
}

// Call add a call.
func (b *Builder) Call(call *tx.Call) *Builder {
	b.calls = append(b.calls, call)
	return b
}

// Build build a block object.
func (b *Builder) Build() *Block {
	header := Header{body: b.headerBody}
	header.body.CallsRoot = RootHash(b.calls)

	return &Block{
		&header,
		b.calls,
	}
}

// RootHash hashes the rlp encoding of a list, calls or receipts.
func RootHash(list any) thor.Bytes32 {
	data, err := rlp.EncodeToBytes(list)
	if err != nil {
		panic(err)
	}
	return thor.Blake2b(data)
}

// GenesisParentID is the parent id of a genesis block, it makes the genesis number 0.
var GenesisParentID = thor.Bytes32{0xff, 0xff, 0xff, 0xff}
