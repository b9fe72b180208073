// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/govstake/govstake/thor"
)

// Event is a log emitted by a builtin contract. Topics[0] is the event id.
type Event struct {
	Address thor.Address
	Topics  []thor.Bytes32
	Data    []byte
}

// Events a list of events.
type Events []*Event
