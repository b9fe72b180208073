// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xenv is the execution environment handed to builtin contracts.
package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// MaxCallDepth bounds nested calls, e.g. a timelock executing a call to itself.
const MaxCallDepth = 16

// ErrCallDepth is returned when nested calls go too deep.
var ErrCallDepth = errors.New("max call depth exceeded")

// BlockContext is the block a call is executed in.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// Invoker executes a nested call in a fresh frame.
type Invoker interface {
	Invoke(env *Environment, data []byte) ([]byte, error)
}

// Environment is one call frame.
type Environment struct {
	blockCtx *BlockContext
	state    *state.State
	invoker  Invoker
	events   *tx.Events

	caller thor.Address
	to     thor.Address
	value  *big.Int
	depth  int
}

// New creates the top level frame of a call from caller to to.
func New(blockCtx *BlockContext, state *state.State, invoker Invoker, caller, to thor.Address, value *big.Int) *Environment {
	if value == nil {
		value = new(big.Int)
	}
	return &Environment{
		blockCtx: blockCtx,
		state:    state,
		invoker:  invoker,
		events:   &tx.Events{},
		caller:   caller,
		to:       to,
		value:    value,
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() thor.Address        { return env.caller }
func (env *Environment) To() thor.Address            { return env.to }
func (env *Environment) Value() *big.Int             { return env.value }
func (env *Environment) Depth() int                  { return env.depth }
func (env *Environment) Events() tx.Events           { return *env.events }

// Enter returns the frame of a native call from the current contract to another builtin
// contract at `to`, which sees the current contract as its caller.
func (env *Environment) Enter(to thor.Address) *Environment {
	cpy := *env
	cpy.caller = env.to
	cpy.to = to
	cpy.value = new(big.Int)
	cpy.depth = env.depth + 1
	return &cpy
}

// Call invokes data at to with value, on behalf of the current contract.
// The nested call reverts on its own, the caller decides how to handle the error.
func (env *Environment) Call(to thor.Address, value *big.Int, data []byte) ([]byte, error) {
	if env.depth+1 > MaxCallDepth {
		return nil, ErrCallDepth
	}
	if value == nil {
		value = new(big.Int)
	}
	frame := &Environment{
		blockCtx: env.blockCtx,
		state:    env.state,
		invoker:  env.invoker,
		events:   env.events,
		caller:   env.to,
		to:       to,
		value:    value,
		depth:    env.depth + 1,
	}
	return env.invoker.Invoke(frame, data)
}

// Checkpoint marks the current state and event log, to be restored by Revert.
type Checkpoint struct {
	revision int
	events   int
}

// Checkpoint makes a checkpoint.
func (env *Environment) Checkpoint() Checkpoint {
	return Checkpoint{env.state.NewCheckpoint(), len(*env.events)}
}

// Revert discards state changes and events made after chk.
func (env *Environment) Revert(chk Checkpoint) {
	env.state.RevertTo(chk.revision)
	*env.events = (*env.events)[:chk.events]
}

// Log emits an event from the current contract.
func (env *Environment) Log(event *abi.Event, topics []thor.Bytes32, args ...any) error {
	data, err := event.Encode(args...)
	if err != nil {
		return errors.WithMessage(err, "encode native event")
	}
	all := make([]thor.Bytes32, 0, len(topics)+1)
	all = append(all, event.ID())
	all = append(all, topics...)
	*env.events = append(*env.events, &tx.Event{
		Address: env.to,
		Topics:  all,
		Data:    data,
	})
	return nil
}

// AddressTopic converts an indexed address argument into a topic.
func AddressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

// Uint256Topic converts an indexed integer argument into a topic.
func Uint256Topic(v *big.Int) thor.Bytes32 {
	return thor.BytesToBytes32(v.Bytes())
}
