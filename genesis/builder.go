// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/runtime"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
	"github.com/govstake/govstake/xenv"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64

	stateProcs []func(env *xenv.Environment) error
	calls      tx.Calls
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process. The environment is a frame of the zero address.
func (b *Builder) State(proc func(env *xenv.Environment) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a contract call, executed after all state processes.
func (b *Builder) Call(call *tx.Call) *Builder {
	b.calls = append(b.calls, call)
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (thor.Bytes32, error) {
	blk, _, err := b.Build(state.NewStater(kv.NewMem()))
	if err != nil {
		return thor.Bytes32{}, err
	}
	return blk.Header().ID(), nil
}

// Build build genesis block according to presets, and commits the genesis state.
func (b *Builder) Build(stater *state.Stater) (blk *block.Block, events tx.Events, err error) {
	st := stater.NewState()

	env := xenv.New(&xenv.BlockContext{Time: b.timestamp}, st, nil, thor.Address{}, thor.Address{}, nil)
	for _, proc := range b.stateProcs {
		if err := proc(env); err != nil {
			return nil, nil, errors.Wrap(err, "state process")
		}
	}
	events = append(events, env.Events()...)

	rt := runtime.New(st, builtin.NewHandler(nil), 0, b.timestamp)
	for _, call := range b.calls {
		receipt, err := rt.Execute(call)
		if err != nil {
			return nil, nil, errors.Wrap(err, "execute")
		}
		if receipt.Reverted {
			return nil, nil, errors.Errorf("call to %v reverted: %s", call.To, receipt.RevertReason)
		}
		events = append(events, receipt.Events...)
	}

	if err := st.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "commit state")
	}

	return b.block(), events, nil
}

func (b *Builder) block() *block.Block {
	return new(block.Builder).
		ParentID(block.GenesisParentID).
		Timestamp(b.timestamp).
		ReceiptsRoot(block.RootHash(tx.Receipts(nil))).
		Build()
}
