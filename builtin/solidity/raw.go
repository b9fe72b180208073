// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/govstake/govstake/thor"
)

// Raw is a rlp encoded value of any type in one slot.
type Raw[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewRaw[V any](context *Context, pos thor.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		return decode(raw, &value)
	})
	return
}

func (r *Raw[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return encode(value)
	})
}

// decode decodes raw into value. Empty raw leaves value zero, nil for pointer types.
func decode[V any](raw []byte, value *V) error {
	if len(raw) == 0 {
		return nil
	}
	if t := reflect.TypeOf(value).Elem(); t.Kind() == reflect.Ptr {
		ptr := reflect.New(t.Elem())
		if err := rlp.DecodeBytes(raw, ptr.Interface()); err != nil {
			return err
		}
		*value = ptr.Interface().(V)
		return nil
	}
	return rlp.DecodeBytes(raw, value)
}

// encode encodes value, zero values are stored as empty so the slot is freed.
func encode[V any](value V) ([]byte, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil()) || rv.IsZero() {
		return nil, nil
	}
	return rlp.EncodeToBytes(value)
}
