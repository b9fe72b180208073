// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// Arguments builds packable arguments from type names, e.g. Arguments("address", "uint256").
// It panics on unknown types, so it's meant for package level constants.
func Arguments(types ...string) ethabi.Arguments {
	args := make(ethabi.Arguments, 0, len(types))
	for _, t := range types {
		typ, err := ethabi.NewType(strings.TrimSpace(t), "", nil)
		if err != nil {
			panic(err)
		}
		args = append(args, ethabi.Argument{Type: typ})
	}
	return args
}

// Encode is the plain abi.encode(...) of values against the given arguments.
func Encode(args ethabi.Arguments, values ...any) ([]byte, error) {
	return args.Pack(values...)
}
