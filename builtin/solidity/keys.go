// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/govstake/govstake/thor"
)

// Uint64Key keys a mapping by an integer, like an id or an index.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// PairKey keys a nested mapping, like mapping(uint => mapping(address => T)).
type PairKey struct {
	Outer Key
	Inner Key
}

func (k PairKey) Bytes() []byte {
	outer := k.Outer.Bytes()
	inner := k.Inner.Bytes()
	// length prefixed to keep (ab, c) and (a, bc) apart
	b := binary.BigEndian.AppendUint32(nil, uint32(len(outer)))
	b = append(b, outer...)
	return append(b, inner...)
}

// AddressIndexKey keys an item of a per account list.
func AddressIndexKey(addr thor.Address, index uint64) PairKey {
	return PairKey{Outer: addr, Inner: Uint64Key(index)}
}
