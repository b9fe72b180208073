// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"bytes"
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/govstake/govstake/thor"
)

// MethodID method id, the first 4 bytes of the keccak of its signature.
type MethodID [4]byte

// SelectorOf computes the method id of a canonical signature like "setDelay(uint256)".
func SelectorOf(signature string) (id MethodID) {
	h := thor.Keccak256([]byte(signature))
	copy(id[:], h[:4])
	return
}

// Method see abi.Method in go-ethereum.
type Method struct {
	id     MethodID
	method *ethabi.Method
}

func newMethod(m *ethabi.Method) *Method {
	var id MethodID
	copy(id[:], m.ID)
	return &Method{id, m}
}

// ID returns method id.
func (m *Method) ID() MethodID {
	return m.id
}

// Name returns method name.
func (m *Method) Name() string {
	return m.method.Name
}

// Sig returns the canonical signature.
func (m *Method) Sig() string {
	return m.method.Sig
}

// Const returns if the method is constant (view or pure).
func (m *Method) Const() bool {
	return m.method.IsConstant()
}

// Payable returns if the method accepts value.
func (m *Method) Payable() bool {
	return m.method.IsPayable()
}

// EncodeInput encode args to data, and the data is prefixed with method id.
func (m *Method) EncodeInput(args ...any) ([]byte, error) {
	data, err := m.method.Inputs.Pack(args...)
	if err != nil {
		return nil, err
	}
	return append(m.id[:], data...), nil
}

// DecodeInput decode input data into args. v is a pointer for single argument, or a
// pointer to struct whose fields match argument names.
func (m *Method) DecodeInput(input []byte, v any) error {
	if !bytes.HasPrefix(input, m.id[:]) {
		return errors.New("input has incorrect prefix")
	}
	values, err := m.method.Inputs.Unpack(input[4:])
	if err != nil {
		return err
	}
	return m.method.Inputs.Copy(v, values)
}

// EncodeOutput encode output args to data.
func (m *Method) EncodeOutput(args ...any) ([]byte, error) {
	return m.method.Outputs.Pack(args...)
}

// DecodeOutput decode output data.
func (m *Method) DecodeOutput(output []byte, v any) error {
	if len(output)%32 != 0 {
		return errors.New("output has incorrect length")
	}
	values, err := m.method.Outputs.Unpack(output)
	if err != nil {
		return err
	}
	return m.method.Outputs.Copy(v, values)
}

// ExtractMethodID extract method id from input data.
func ExtractMethodID(input []byte) (id MethodID, err error) {
	if len(input) < len(id) {
		err = errors.New("input data too short")
		return
	}
	copy(id[:], input)
	return
}
