// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
)

type echoInvoker struct {
	frames []*Environment
}

func (e *echoInvoker) Invoke(env *Environment, data []byte) ([]byte, error) {
	e.frames = append(e.frames, env)
	if len(data) > 0 && data[0] == 1 {
		return env.Call(env.To(), nil, data)
	}
	return data, nil
}

const testABI = `[{"type":"event","name":"Ping","anonymous":false,"inputs":[
	{"name":"who","type":"address","indexed":true},
	{"name":"amount","type":"uint256","indexed":false}]}]`

func newEnv(inv Invoker) *Environment {
	st := state.NewStater(kv.NewMem()).NewState()
	return New(&BlockContext{Number: 10, Time: 1000}, st, inv, thor.Address{1}, thor.Address{2}, nil)
}

func TestCallFrames(t *testing.T) {
	inv := &echoInvoker{}
	env := newEnv(inv)
	assert.Equal(t, 0, env.Value().Sign())

	out, err := env.Call(thor.Address{3}, big.NewInt(5), []byte{0, 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 9}, out)

	frame := inv.frames[0]
	assert.Equal(t, thor.Address{2}, frame.Caller())
	assert.Equal(t, thor.Address{3}, frame.To())
	assert.Equal(t, big.NewInt(5), frame.Value())
	assert.Equal(t, 1, frame.Depth())
	assert.Equal(t, uint32(10), frame.BlockContext().Number)

	native := env.Enter(thor.Address{4})
	assert.Equal(t, thor.Address{2}, native.Caller())
	assert.Equal(t, thor.Address{4}, native.To())
}

func TestCallDepth(t *testing.T) {
	env := newEnv(&echoInvoker{})
	_, err := env.Call(thor.Address{3}, nil, []byte{1})
	assert.ErrorIs(t, err, ErrCallDepth)
}

func TestLogAndRevert(t *testing.T) {
	contract, err := abi.New([]byte(testABI))
	require.NoError(t, err)
	ping, _ := contract.EventByName("Ping")

	env := newEnv(&echoInvoker{})
	require.NoError(t, env.Log(ping, []thor.Bytes32{AddressTopic(thor.Address{9})}, big.NewInt(1)))

	chk := env.Checkpoint()
	require.NoError(t, env.State().SetBalance(thor.Address{1}, big.NewInt(1)))
	require.NoError(t, env.Enter(thor.Address{5}).Log(ping, []thor.Bytes32{AddressTopic(thor.Address{9})}, big.NewInt(2)))
	assert.Len(t, env.Events(), 2)
	assert.Equal(t, thor.Address{5}, env.Events()[1].Address)

	env.Revert(chk)
	assert.Len(t, env.Events(), 1)
	bal, _ := env.State().GetBalance(thor.Address{1})
	assert.Equal(t, 0, bal.Sign())

	ev := env.Events()[0]
	assert.Equal(t, ping.ID(), ev.Topics[0])
	decoded, err := ping.Decode(ev.Topics[1:], ev.Data)
	require.NoError(t, err)
	assert.Equal(t, thor.Address{9}, decoded["who"])
	assert.Equal(t, big.NewInt(1), decoded["amount"])
}
