// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/govstake/govstake/thor"
)

// Receipt is the outcome of an executed call.
type Receipt struct {
	CallID       thor.Bytes32
	Origin       thor.Address
	Reverted     bool
	RevertReason string
	Output       []byte
	Events       Events
}

// Receipts a list of receipts.
type Receipts []*Receipt
