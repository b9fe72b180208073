// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gen embeds the ABI definitions of the builtin contracts.
package gen

import (
	"embed"
	"path"

	"github.com/govstake/govstake/abi"
)

//go:embed compiled/*.abi
var compiled embed.FS

// ABI returns the json ABI of the named builtin contract, e.g. "Governor".
func ABI(name string) ([]byte, error) {
	return compiled.ReadFile(path.Join("compiled", name+".abi"))
}

// MustABI is like ABI but panics if the contract is unknown.
func MustABI(name string) []byte {
	data, err := ABI(name)
	if err != nil {
		panic(err)
	}
	return data
}

// MustLoadABI parses the ABI of the named builtin contract.
func MustLoadABI(name string) *abi.ABI {
	contract, err := abi.New(MustABI(name))
	if err != nil {
		panic(err)
	}
	return contract
}

// MustEvent returns the named event of contract.
func MustEvent(contract *abi.ABI, name string) *abi.Event {
	ev, ok := contract.EventByName(name)
	if !ok {
		panic("builtin: unknown event " + name)
	}
	return ev
}
