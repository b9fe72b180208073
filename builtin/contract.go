// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/builtin/gen"
	"github.com/govstake/govstake/thor"
)

type contract struct {
	name    string
	Address thor.Address
	ABI     *abi.ABI
}

func mustLoadContract(name string, addr thor.Address) *contract {
	return &contract{
		name,
		addr,
		gen.MustLoadABI(name),
	}
}

// Name returns the contract name, used as the scope of its reverts.
func (c *contract) Name() string {
	return c.name
}

// impl binds run to the named ABI method.
func (c *contract) impl(name string, run func(env *env) ([]any, error)) *nativeMethod {
	method, found := c.ABI.MethodByName(name)
	if !found {
		panic(fmt.Errorf("builtin: method %s.%s not found", c.name, name))
	}
	return &nativeMethod{c, method, run}
}
