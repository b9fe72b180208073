// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package timelock implements the admin gated queue of delayed calls.
package timelock

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/builtin/gen"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/solidity"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

var logger = log.WithContext("pkg", "timelock")

var (
	slotAdmin        = thor.BytesToBytes32([]byte("admin"))
	slotPendingAdmin = thor.BytesToBytes32([]byte("pending-admin"))
	slotDelay        = thor.BytesToBytes32([]byte("delay"))
	slotQueued       = thor.BytesToBytes32([]byte("queued"))
)

var (
	contractABI             = gen.MustLoadABI("Timelock")
	eventNewAdmin           = gen.MustEvent(contractABI, "NewAdmin")
	eventNewPendingAdmin    = gen.MustEvent(contractABI, "NewPendingAdmin")
	eventNewDelay           = gen.MustEvent(contractABI, "NewDelay")
	eventQueueTransaction   = gen.MustEvent(contractABI, "QueueTransaction")
	eventCancelTransaction  = gen.MustEvent(contractABI, "CancelTransaction")
	eventExecuteTransaction = gen.MustEvent(contractABI, "ExecuteTransaction")

	txHashArgs = abi.Arguments("address", "uint256", "string", "bytes", "uint256")
)

// Transaction is a delayed call, identified by its hash.
type Transaction struct {
	Target    thor.Address
	Value     *big.Int
	Signature string
	Data      []byte
	Eta       uint64
}

// Hash returns keccak256(abi.encode(target, value, signature, data, eta)).
func (tx *Transaction) Hash() thor.Bytes32 {
	enc, err := abi.Encode(txHashArgs, tx.Target, tx.value(), tx.Signature, tx.Data, new(big.Int).SetUint64(tx.Eta))
	if err != nil {
		panic(err)
	}
	return thor.Keccak256(enc)
}

func (tx *Transaction) value() *big.Int {
	if tx.Value == nil {
		return new(big.Int)
	}
	return tx.Value
}

// CallData is data when no signature is given, otherwise the selector of signature followed by data.
func (tx *Transaction) CallData() []byte {
	if tx.Signature == "" {
		return tx.Data
	}
	selector := abi.SelectorOf(tx.Signature)
	return append(selector[:], tx.Data...)
}

func (tx *Transaction) log(env *xenv.Environment, event *abi.Event, hash thor.Bytes32) error {
	return env.Log(event,
		[]thor.Bytes32{hash, xenv.AddressTopic(tx.Target)},
		tx.value(), tx.Signature, tx.Data, new(big.Int).SetUint64(tx.Eta),
	)
}

// Timelock implements native methods of the `Timelock` contract.
type Timelock struct {
	addr  thor.Address
	state *state.State

	admin        *solidity.Address
	pendingAdmin *solidity.Address
	delay        *solidity.Raw[uint64]
	queued       *solidity.Mapping[thor.Bytes32, bool]
}

// New creates a timelock bound to the contract deployed at addr.
func New(addr thor.Address, state *state.State) *Timelock {
	sctx := solidity.NewContext(addr, state)
	return &Timelock{
		addr:         addr,
		state:        state,
		admin:        solidity.NewAddress(sctx, slotAdmin),
		pendingAdmin: solidity.NewAddress(sctx, slotPendingAdmin),
		delay:        solidity.NewRaw[uint64](sctx, slotDelay),
		queued:       solidity.NewMapping[thor.Bytes32, bool](sctx, slotQueued),
	}
}

func (t *Timelock) Address() thor.Address { return t.addr }

func revert(kind reverts.Kind, op, reason string) error {
	return reverts.New(kind, "Timelock::"+op, reason)
}

func checkDelay(op string, delay uint64) error {
	if delay < thor.MinimumDelay {
		return revert(reverts.Validation, op, "Delay must exceed minimum delay.")
	}
	if delay > thor.MaximumDelay {
		return revert(reverts.Validation, op, "Delay must not exceed maximum delay.")
	}
	return nil
}

// Initialize sets the first admin and the delay.
func (t *Timelock) Initialize(admin thor.Address, delay uint64) error {
	current, err := t.delay.Get()
	if err != nil {
		return err
	}
	if current != 0 {
		return revert(reverts.StateConflict, "constructor", "already initialized")
	}
	if err := checkDelay("constructor", delay); err != nil {
		return err
	}
	t.admin.Set(admin)
	return t.delay.Set(delay)
}

func (t *Timelock) Admin() (thor.Address, error)        { return t.admin.Get() }
func (t *Timelock) PendingAdmin() (thor.Address, error) { return t.pendingAdmin.Get() }
func (t *Timelock) Delay() (uint64, error)              { return t.delay.Get() }

// QueuedTransactions reports whether the transaction hash is queued.
func (t *Timelock) QueuedTransactions(hash thor.Bytes32) (bool, error) {
	return t.queued.Get(hash)
}

// SetDelay changes the delay, only through a call of the timelock to itself.
func (t *Timelock) SetDelay(env *xenv.Environment, delay uint64) error {
	if env.Caller() != t.addr {
		return revert(reverts.Authorization, "setDelay", "Call must come from Timelock.")
	}
	if err := checkDelay("setDelay", delay); err != nil {
		return err
	}
	if err := t.delay.Set(delay); err != nil {
		return err
	}
	return env.Log(eventNewDelay, []thor.Bytes32{xenv.Uint256Topic(new(big.Int).SetUint64(delay))})
}

// AcceptAdmin promotes the pending admin, who must be the caller.
func (t *Timelock) AcceptAdmin(env *xenv.Environment) error {
	pending, err := t.pendingAdmin.Get()
	if err != nil {
		return err
	}
	if env.Caller() != pending {
		return revert(reverts.Authorization, "acceptAdmin", "Call must come from pendingAdmin.")
	}
	t.admin.Set(pending)
	t.pendingAdmin.Set(thor.Address{})
	logger.Debug("admin accepted", "admin", pending)
	return env.Log(eventNewAdmin, []thor.Bytes32{xenv.AddressTopic(pending)})
}

// SetPendingAdmin nominates the next admin, only through a call of the timelock to itself.
func (t *Timelock) SetPendingAdmin(env *xenv.Environment, pendingAdmin thor.Address) error {
	if env.Caller() != t.addr {
		return revert(reverts.Authorization, "setPendingAdmin", "Call must come from Timelock.")
	}
	t.pendingAdmin.Set(pendingAdmin)
	return env.Log(eventNewPendingAdmin, []thor.Bytes32{xenv.AddressTopic(pendingAdmin)})
}

func (t *Timelock) requireAdmin(env *xenv.Environment, op string) error {
	admin, err := t.admin.Get()
	if err != nil {
		return err
	}
	if env.Caller() != admin {
		return revert(reverts.Authorization, op, "Call must come from admin.")
	}
	return nil
}

// QueueTransaction queues tx, its eta must be at least delay ahead of the current time.
func (t *Timelock) QueueTransaction(env *xenv.Environment, tx *Transaction) (thor.Bytes32, error) {
	if err := t.requireAdmin(env, "queueTransaction"); err != nil {
		return thor.Bytes32{}, err
	}
	delay, err := t.delay.Get()
	if err != nil {
		return thor.Bytes32{}, err
	}
	if tx.Eta < env.BlockContext().Time+delay {
		return thor.Bytes32{}, revert(reverts.TemporalGate, "queueTransaction", "Estimated execution block must satisfy delay.")
	}

	hash := tx.Hash()
	if err := t.queued.Set(hash, true); err != nil {
		return thor.Bytes32{}, err
	}
	logger.Debug("transaction queued", "hash", hash, "target", tx.Target, "eta", tx.Eta)
	return hash, tx.log(env, eventQueueTransaction, hash)
}

// CancelTransaction removes tx from the queue, absent transactions are not an error.
func (t *Timelock) CancelTransaction(env *xenv.Environment, tx *Transaction) error {
	if err := t.requireAdmin(env, "cancelTransaction"); err != nil {
		return err
	}
	hash := tx.Hash()
	t.queued.Delete(hash)
	logger.Debug("transaction canceled", "hash", hash)
	return tx.log(env, eventCancelTransaction, hash)
}

// ExecuteTransaction calls tx once its eta is reached and before it goes stale.
// The hash is removed before the target is called.
func (t *Timelock) ExecuteTransaction(env *xenv.Environment, tx *Transaction) ([]byte, error) {
	if err := t.requireAdmin(env, "executeTransaction"); err != nil {
		return nil, err
	}
	hash := tx.Hash()
	queued, err := t.queued.Get(hash)
	if err != nil {
		return nil, err
	}
	if !queued {
		return nil, revert(reverts.StateConflict, "executeTransaction", "Transaction hasn't been queued.")
	}
	now := env.BlockContext().Time
	if now < tx.Eta {
		return nil, revert(reverts.TemporalGate, "executeTransaction", "Transaction hasn't surpassed time lock.")
	}
	if now > tx.Eta+thor.GracePeriod {
		return nil, revert(reverts.TemporalGate, "executeTransaction", "Transaction is stale.")
	}

	t.queued.Delete(hash)

	ret, err := env.Call(tx.Target, tx.value(), tx.CallData())
	if err != nil {
		if !reverts.IsRevertErr(err) && !errors.Is(err, xenv.ErrCallDepth) {
			return nil, err
		}
		logger.Debug("transaction execution reverted", "hash", hash, "err", err)
		return nil, revert(reverts.StateConflict, "executeTransaction", "Transaction execution reverted.")
	}
	logger.Debug("transaction executed", "hash", hash, "target", tx.Target)
	return ret, tx.log(env, eventExecuteTransaction, hash)
}
