// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/metrics"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
	"github.com/govstake/govstake/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricCallCount = metrics.LazyLoadCounterVec("call_count", []string{"result"})

	errInsufficientBalance = reverts.New(reverts.Underflow, "Runtime::transfer", "insufficient balance")
)

// Runtime is to support call execution.
type Runtime struct {
	state    *state.State
	handler  *builtin.Handler
	blockCtx *xenv.BlockContext
}

// New create a Runtime object.
func New(state *state.State, handler *builtin.Handler, blockNumber uint32, blockTime uint64) *Runtime {
	return &Runtime{
		state:    state,
		handler:  handler,
		blockCtx: &xenv.BlockContext{Number: blockNumber, Time: blockTime},
	}
}

func (rt *Runtime) State() *state.State { return rt.state }
func (rt *Runtime) BlockNumber() uint32  { return rt.blockCtx.Number }
func (rt *Runtime) BlockTime() uint64    { return rt.blockCtx.Time }

// Invoke runs one call frame: it moves the value to the callee and executes
// the callee's method. Changes made in the frame are reverted if it fails.
func (rt *Runtime) Invoke(env *xenv.Environment, data []byte) ([]byte, error) {
	chk := env.Checkpoint()
	output, err := rt.invoke(env, data)
	if err != nil {
		env.Revert(chk)
		return nil, err
	}
	return output, nil
}

func (rt *Runtime) invoke(env *xenv.Environment, data []byte) ([]byte, error) {
	if value := env.Value(); value.Sign() > 0 {
		if err := rt.state.Transfer(env.Caller(), env.To(), value); err != nil {
			if errors.Is(err, state.ErrInsufficientBalance) {
				return nil, errInsufficientBalance
			}
			return nil, err
		}
	}
	output, handled, err := rt.handler.Handle(env, data)
	if !handled {
		// an account without code accepts anything
		return nil, nil
	}
	return output, err
}

// Execute executes a call at the top level.
// A reverted call still yields a receipt, err is only returned when the state is unusable.
func (rt *Runtime) Execute(call *tx.Call) (*tx.Receipt, error) {
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	env := xenv.New(rt.blockCtx, rt.state, rt, call.Origin, call.To, value)
	output, err := rt.Invoke(env, call.Data)

	receipt := &tx.Receipt{
		CallID: call.ID(),
		Origin: call.Origin,
	}
	if err != nil {
		var stateErr *state.Error
		if errors.As(err, &stateErr) {
			return nil, err
		}
		receipt.Reverted = true
		receipt.RevertReason = err.Error()
		var re *reverts.Error
		if errors.As(err, &re) {
			receipt.Output = re.Bytes()
			metricCallCount().AddWithLabel(1, map[string]string{"result": re.Kind.String()})
		} else {
			metricCallCount().AddWithLabel(1, map[string]string{"result": "reverted"})
		}
		logger.Debug("call reverted", "id", receipt.CallID, "to", call.To, "err", err)
		return receipt, nil
	}
	receipt.Output = output
	receipt.Events = env.Events()
	metricCallCount().AddWithLabel(1, map[string]string{"result": "ok"})
	return receipt, nil
}

// ExecuteCalls executes calls in order, returning one receipt per call.
func (rt *Runtime) ExecuteCalls(calls tx.Calls) (tx.Receipts, error) {
	receipts := make(tx.Receipts, 0, len(calls))
	for _, call := range calls {
		receipt, err := rt.Execute(call)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// Call executes a call without keeping its changes, for reading contract views.
func (rt *Runtime) Call(origin, to thor.Address, data []byte) (*tx.Receipt, error) {
	chk := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(chk)
	return rt.Execute(&tx.Call{Origin: origin, To: to, Data: data})
}
