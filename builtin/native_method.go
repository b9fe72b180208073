// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math"
	"math/big"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/xenv"
)

// nativeMethod describes a native call.
type nativeMethod struct {
	contract *contract
	method   *abi.Method
	run      func(env *env) ([]any, error)
}

func (n *nativeMethod) scope() string {
	return n.contract.name + "::" + n.method.Name()
}

type argsError struct {
	cause error
}

// Call runs the method in the frame described by xenv.
func (n *nativeMethod) Call(xenv *xenv.Environment, recoverer signed.Recoverer, input []byte) (output []byte, err error) {
	if !n.method.Payable() && xenv.Value().Sign() > 0 {
		return nil, reverts.New(reverts.Validation, n.scope(), "method is not payable")
	}

	defer func() {
		// handle panic in env.ParseArgs
		if e := recover(); e != nil {
			ae, ok := e.(*argsError)
			if !ok {
				panic(e)
			}
			logger.Debug("malformed native input", "method", n.scope(), "err", ae.cause)
			err = reverts.New(reverts.Validation, n.scope(), "malformed input")
		}
	}()

	out, err := n.run(&env{
		xenv,
		recoverer,
		input,
		n.method,
	})
	if err != nil {
		return nil, err
	}
	return n.method.EncodeOutput(out...)
}

// env env of native call invocation.
type env struct {
	*xenv.Environment
	recoverer signed.Recoverer

	input  []byte
	method *abi.Method
}

// ParseArgs unpacks input into args.
func (e *env) ParseArgs(v any) {
	if err := e.method.DecodeInput(e.input, v); err != nil {
		// nativeMethod.Call will handle it
		panic(&argsError{err})
	}
}

// Now returns the block time.
func (e *env) Now() uint64 {
	return e.BlockContext().Time
}

// clamp narrows v into uint64, saturating at the maximum.
func clamp(v *big.Int) uint64 {
	if v.Sign() < 0 {
		return 0
	}
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

func u64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
