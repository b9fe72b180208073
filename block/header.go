// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/thor"
)

// Header is the immutable part of a block committing to its calls and their receipts.
type Header struct {
	body headerBody
	id   atomic.Pointer[thor.Bytes32]
}

type headerBody struct {
	ParentID     thor.Bytes32
	Timestamp    uint64
	CallsRoot    thor.Bytes32
	ReceiptsRoot thor.Bytes32
}

func (h *Header) ParentID() thor.Bytes32     { return h.body.ParentID }
func (h *Header) Timestamp() uint64          { return h.body.Timestamp }
func (h *Header) CallsRoot() thor.Bytes32    { return h.body.CallsRoot }
func (h *Header) ReceiptsRoot() thor.Bytes32 { return h.body.ReceiptsRoot }

// Number is one above the number encoded in the parent id.
func (h *Header) Number() uint32 {
	return Number(h.body.ParentID) + 1
}

// ID is the blake2b hash of the header with its first 4 bytes replaced by the block number.
func (h *Header) ID() thor.Bytes32 {
	if id := h.id.Load(); id != nil {
		return *id
	}
	data, err := rlp.EncodeToBytes(&h.body)
	if err != nil {
		panic(err)
	}
	id := thor.Blake2b(data)
	binary.BigEndian.PutUint32(id[:], h.Number())
	h.id.Store(&id)
	return id
}

func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	h.body = body
	h.id.Store(nil)
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf("Header(%v) number=%v parent=%v timestamp=%v callsRoot=%v receiptsRoot=%v",
		h.ID(), h.Number(), h.body.ParentID, h.body.Timestamp, h.body.CallsRoot, h.body.ReceiptsRoot)
}

// Number extracts the block number from a block id.
func Number(blockID thor.Bytes32) uint32 {
	return binary.BigEndian.Uint32(blockID[:])
}
