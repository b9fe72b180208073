// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the rejections a builtin contract call can end with.
// A revert always discards every state change of the call.
package reverts

import (
	"encoding/binary"
	"errors"
)

// Kind classifies a revert.
type Kind int

const (
	// Authorization the caller is not admin/guardian/proposer/pendingAdmin/minter.
	Authorization Kind = iota + 1
	// Validation malformed arguments or out of bound parameter writes.
	Validation
	// TemporalGate too early or too late.
	TemporalGate
	// StateConflict the current state does not allow the operation.
	StateConflict
	// Underflow insufficient balance, votes or stake.
	Underflow
)

func (k Kind) String() string {
	switch k {
	case Authorization:
		return "authorization"
	case Validation:
		return "validation"
	case TemporalGate:
		return "temporal-gate"
	case StateConflict:
		return "state-conflict"
	case Underflow:
		return "underflow"
	}
	return "unknown"
}

// Error is a revert raised by a builtin contract.
// The message is stable, "<Component>::<operation>: <reason>".
type Error struct {
	Kind   Kind
	Scope  string
	Reason string
}

// New creates a revert error.
func New(kind Kind, scope, reason string) *Error {
	return &Error{Kind: kind, Scope: scope, Reason: reason}
}

func (e *Error) Error() string {
	return e.Scope + ": " + e.Reason
}

// Is reports whether target is a revert with the same message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Scope == e.Scope && t.Reason == e.Reason
}

// Bytes returns the ABI encoded Error(string) payload.
func (e *Error) Bytes() []byte {
	if e == nil {
		return nil
	}
	msg := []byte(e.Error())
	padded := (len(msg) + 31) / 32 * 32

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 4+32+32+padded)
	copy(encoded, errorSelector[:])
	binary.BigEndian.PutUint64(encoded[4+24:], 32)
	binary.BigEndian.PutUint64(encoded[4+32+24:], uint64(len(msg)))
	copy(encoded[4+64:], msg)
	return encoded
}

// keccak256("Error(string)")[:4]
var errorSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}

// IsRevertErr returns whether err is or wraps a revert.
func IsRevertErr(err any) bool {
	e, ok := err.(error)
	if !ok || e == nil {
		return false
	}
	var re *Error
	return errors.As(e, &re)
}

// KindOf returns the kind of the revert wrapped in err.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// Decode extracts the message from an ABI encoded Error(string) payload.
func Decode(data []byte) (string, bool) {
	if len(data) < 4+64 || [4]byte(data[:4]) != errorSelector {
		return "", false
	}
	size := binary.BigEndian.Uint64(data[4+32+24 : 4+64])
	if uint64(len(data)-4-64) < size {
		return "", false
	}
	return string(data[4+64 : 4+64+size]), true
}
