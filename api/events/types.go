// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/thor"
)

type LogMeta struct {
	BlockID        thor.Bytes32 `json:"blockID"`
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	CallID         thor.Bytes32 `json:"callID"`
	CallOrigin     thor.Address `json:"callOrigin"`
	EventIndex     uint32       `json:"eventIndex"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address thor.Address    `json:"address"`
	Name    string          `json:"name,omitempty"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Meta    LogMeta         `json:"meta"`
}

// Convert a logdb.Event into a json format Event
func convertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: LogMeta{
			BlockID:        event.BlockID,
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			CallID:         event.CallID,
			CallOrigin:     event.CallOrigin,
			EventIndex:     event.Index,
		},
	}
	fe.Topics = make([]*thor.Bytes32, 0)
	for i := range 5 {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
		}
	}
	if event.Topics[0] != nil {
		fe.Name, _ = builtin.EventName(event.Address, *event.Topics[0])
	}
	return fe
}

type TopicSet struct {
	Topic0 *thor.Bytes32 `json:"topic0"`
	Topic1 *thor.Bytes32 `json:"topic1"`
	Topic2 *thor.Bytes32 `json:"topic2"`
	Topic3 *thor.Bytes32 `json:"topic3"`
	Topic4 *thor.Bytes32 `json:"topic4"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	// Event selects topic0 by the event name of a builtin contract, Address is required.
	Event string `json:"event,omitempty"`
	TopicSet
}

type Options struct {
	Offset uint64 `json:"offset,omitempty"`
	Limit  uint64 `json:"limit,omitempty"`
}

type Range struct {
	From *uint32 `json:"from,omitempty"`
	To   *uint32 `json:"to,omitempty"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

func convertCriteria(c *EventCriteria) (*logdb.EventCriteria, error) {
	topics := [5]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3, c.Topic4}
	if c.Event != "" {
		if c.Address == nil {
			return nil, fmt.Errorf("event %s: address required", c.Event)
		}
		contract, ok := builtin.ABIOf(*c.Address)
		if !ok {
			return nil, fmt.Errorf("event %s: %v is not a builtin contract", c.Event, c.Address)
		}
		ev, ok := contract.EventByName(c.Event)
		if !ok {
			return nil, fmt.Errorf("event %s: not found", c.Event)
		}
		id := ev.ID()
		topics[0] = &id
	}
	return &logdb.EventCriteria{
		Address: c.Address,
		Topics:  topics,
	}, nil
}

func convertEventFilter(filter *EventFilter) (*logdb.EventFilter, error) {
	f := &logdb.EventFilter{
		Options: &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  filter.Options.Limit,
		},
		Order: filter.Order,
	}
	if r := filter.Range; r != nil {
		f.Range = &logdb.Range{To: math.MaxUint32}
		if r.From != nil {
			f.Range.From = *r.From
		}
		if r.To != nil {
			f.Range.To = *r.To
		}
	}
	for i, criterion := range filter.CriteriaSet {
		c, err := convertCriteria(criterion)
		if err != nil {
			return nil, fmt.Errorf("criteriaSet[%d]: %w", i, err)
		}
		f.CriteriaSet = append(f.CriteriaSet, c)
	}
	return f, nil
}
