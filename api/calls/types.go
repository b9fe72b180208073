// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// CallRequest is the body of a submitted or inspected call.
type CallRequest struct {
	Origin thor.Address          `json:"origin"`
	To     thor.Address          `json:"to"`
	Value  *math.HexOrDecimal256 `json:"value"`
	Data   string                `json:"data"`
	Nonce  uint64                `json:"nonce"`
}

func (r *CallRequest) decode() (*tx.Call, error) {
	value := new(big.Int)
	if r.Value != nil {
		value = (*big.Int)(r.Value)
	}
	var data []byte
	if r.Data != "" {
		var err error
		if data, err = hexutil.Decode(r.Data); err != nil {
			return nil, errors.WithMessage(err, "data")
		}
	}
	return &tx.Call{
		Origin: r.Origin,
		To:     r.To,
		Value:  value,
		Data:   data,
		Nonce:  r.Nonce,
	}, nil
}

// Meta locates a packed call.
type Meta struct {
	BlockID        thor.Bytes32 `json:"blockID"`
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	Index          uint64       `json:"index"`
}

func newMeta(header *block.Header, index uint64) *Meta {
	return &Meta{
		BlockID:        header.ID(),
		BlockNumber:    header.Number(),
		BlockTimestamp: header.Timestamp(),
		Index:          index,
	}
}

// Call is a call in JSON, Meta is nil while the call is pending.
type Call struct {
	ID     thor.Bytes32          `json:"id"`
	Origin thor.Address          `json:"origin"`
	To     thor.Address          `json:"to"`
	Value  *math.HexOrDecimal256 `json:"value"`
	Data   string                `json:"data"`
	Nonce  uint64                `json:"nonce"`
	Meta   *Meta                 `json:"meta"`
}

func convertCall(c *tx.Call, meta *Meta) *Call {
	value := c.Value
	if value == nil {
		value = new(big.Int)
	}
	return &Call{
		ID:     c.ID(),
		Origin: c.Origin,
		To:     c.To,
		Value:  (*math.HexOrDecimal256)(value),
		Data:   hexutil.Encode(c.Data),
		Nonce:  c.Nonce,
		Meta:   meta,
	}
}

// Event is an emitted event, Name is set for events of builtin contracts.
type Event struct {
	Address thor.Address   `json:"address"`
	Name    string         `json:"name,omitempty"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    string         `json:"data"`
}

func convertEvents(events tx.Events) []*Event {
	jes := make([]*Event, 0, len(events))
	for _, e := range events {
		je := &Event{
			Address: e.Address,
			Topics:  e.Topics,
			Data:    hexutil.Encode(e.Data),
		}
		if len(e.Topics) > 0 {
			je.Name, _ = builtin.EventName(e.Address, e.Topics[0])
		}
		jes = append(jes, je)
	}
	return jes
}

// Receipt is the outcome of a call.
type Receipt struct {
	CallID       thor.Bytes32 `json:"callID"`
	Origin       thor.Address `json:"origin"`
	Reverted     bool         `json:"reverted"`
	RevertReason string       `json:"revertReason,omitempty"`
	Output       string       `json:"output"`
	Events       []*Event     `json:"events"`
	Meta         *Meta        `json:"meta,omitempty"`
}

func convertReceipt(r *tx.Receipt, meta *Meta) *Receipt {
	return &Receipt{
		CallID:       r.CallID,
		Origin:       r.Origin,
		Reverted:     r.Reverted,
		RevertReason: r.RevertReason,
		Output:       hexutil.Encode(r.Output),
		Events:       convertEvents(r.Events),
		Meta:         meta,
	}
}
