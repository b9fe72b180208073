// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/govstake/govstake/thor"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 thor.Bytes32
	event              *ethabi.Event
	argsWithoutIndexed ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var argsWithoutIndexed ethabi.Arguments
	for _, arg := range event.Inputs {
		if !arg.Indexed {
			argsWithoutIndexed = append(argsWithoutIndexed, arg)
		}
	}
	return &Event{
		thor.Bytes32(event.ID),
		event,
		argsWithoutIndexed,
	}
}

// ID returns event id.
func (e *Event) ID() thor.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Encode encodes args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.argsWithoutIndexed.Pack(args...)
}

// Decode decodes the non indexed part of an event into a map keyed by argument name.
// Indexed arguments are restored from topics, which exclude the event id.
func (e *Event) Decode(topics []thor.Bytes32, data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if err := e.argsWithoutIndexed.UnpackIntoMap(out, data); err != nil {
		return nil, err
	}
	i := 0
	for _, arg := range e.event.Inputs {
		if !arg.Indexed {
			continue
		}
		if i >= len(topics) {
			return nil, errors.New("topics missing indexed argument")
		}
		switch arg.Type.T {
		case ethabi.AddressTy:
			out[arg.Name] = thor.BytesToAddress(topics[i][:])
		default:
			out[arg.Name] = topics[i]
		}
		i++
	}
	return out, nil
}
