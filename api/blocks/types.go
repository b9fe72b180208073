// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/thor"
)

type JSONBlock struct {
	Number       uint32         `json:"number"`
	ID           thor.Bytes32   `json:"id"`
	ParentID     thor.Bytes32   `json:"parentID"`
	Timestamp    uint64         `json:"timestamp"`
	CallsRoot    thor.Bytes32   `json:"callsRoot"`
	ReceiptsRoot thor.Bytes32   `json:"receiptsRoot"`
	Calls        []thor.Bytes32 `json:"calls"`
}

func buildJSONBlock(blk *block.Block) *JSONBlock {
	header := blk.Header()
	calls := make([]thor.Bytes32, 0, len(blk.Calls()))
	for _, c := range blk.Calls() {
		calls = append(calls, c.ID())
	}
	return &JSONBlock{
		Number:       header.Number(),
		ID:           header.ID(),
		ParentID:     header.ParentID(),
		Timestamp:    header.Timestamp(),
		CallsRoot:    header.CallsRoot(),
		ReceiptsRoot: header.ReceiptsRoot(),
		Calls:        calls,
	}
}
