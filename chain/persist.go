// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

const (
	callsInfix    = byte(0)
	receiptsInfix = byte(1)
)

// CallMeta locates a packed call.
type CallMeta struct {
	BlockID thor.Bytes32
	Index   uint64
}

// the key for the calls or receipts of a block.
// it consists of: ( block id | infix )
func makeBodyKey(blockID thor.Bytes32, infix byte) []byte {
	return append(blockID.Bytes(), infix)
}

func numberKey(num uint32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], num)
	return k[:]
}

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val any) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

func saveHeader(w kv.Putter, header *block.Header) error {
	return saveRLP(w, header.ID().Bytes(), header)
}

func loadHeader(r kv.Getter, id thor.Bytes32) (*block.Header, error) {
	var header block.Header
	if err := loadRLP(r, id.Bytes(), &header); err != nil {
		return nil, err
	}
	return &header, nil
}

func saveCalls(w kv.Putter, blockID thor.Bytes32, calls tx.Calls) error {
	return saveRLP(w, makeBodyKey(blockID, callsInfix), calls)
}

func loadCalls(r kv.Getter, blockID thor.Bytes32) (tx.Calls, error) {
	var calls tx.Calls
	if err := loadRLP(r, makeBodyKey(blockID, callsInfix), &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func saveReceipts(w kv.Putter, blockID thor.Bytes32, receipts tx.Receipts) error {
	return saveRLP(w, makeBodyKey(blockID, receiptsInfix), receipts)
}

func loadReceipts(r kv.Getter, blockID thor.Bytes32) (tx.Receipts, error) {
	var receipts tx.Receipts
	if err := loadRLP(r, makeBodyKey(blockID, receiptsInfix), &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}
