// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	BlockID     thor.Bytes32
	Index       uint32
	BlockNumber uint32
	BlockTime   uint64
	CallID      thor.Bytes32
	CallOrigin  thor.Address
	Address     thor.Address // always a contract address
	Topics      [5]*thor.Bytes32
	Data        []byte
}

// newEvent converts tx.Event to Event.
func newEvent(header *block.Header, index uint32, callID thor.Bytes32, origin thor.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		BlockID:     header.ID(),
		Index:       index,
		BlockNumber: header.Number(),
		BlockTime:   header.Timestamp(),
		CallID:      callID,
		CallOrigin:  origin,
		Address:     txEvent.Address,
		Data:        txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

// BlockEvents lists the events emitted by the succeeded calls of b, in index order.
func BlockEvents(b *block.Block, receipts tx.Receipts) []*Event {
	header := b.Header()
	var events []*Event
	for _, r := range receipts {
		if r.Reverted {
			continue
		}
		for _, ev := range r.Events {
			events = append(events, newEvent(header, uint32(len(events)), r.CallID, r.Origin, ev))
		}
	}
	return events
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive block number range. To less than From means unbounded.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address
	Topics  [5]*thor.Bytes32
}

// EventFilter selects events matching any of the criteria, within the range.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
