// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/thor"
)

// Call is an externally triggered call, executed atomically.
type Call struct {
	Origin thor.Address
	To     thor.Address
	Value  *big.Int
	Data   []byte
	// Nonce makes otherwise identical calls distinct.
	Nonce uint64
}

// ID returns the identity of the call.
func (c *Call) ID() thor.Bytes32 {
	data, _ := rlp.EncodeToBytes(c)
	return thor.Blake2b(data)
}

// Calls a list of calls.
type Calls []*Call
