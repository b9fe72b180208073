// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package votes implements the checkpointed voting token.
package votes

import (
	"math/big"

	"github.com/govstake/govstake/builtin/gen"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/builtin/solidity"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

var logger = log.WithContext("pkg", "votes")

// Decimals of every voting token.
const Decimals uint8 = 18

var (
	slotName           = thor.BytesToBytes32([]byte("name"))
	slotSymbol         = thor.BytesToBytes32([]byte("symbol"))
	slotChainID        = thor.BytesToBytes32([]byte("chain-id"))
	slotTotalSupply    = thor.BytesToBytes32([]byte("total-supply"))
	slotMinter         = thor.BytesToBytes32([]byte("minter"))
	slotCapabilities   = thor.BytesToBytes32([]byte("capabilities"))
	slotBalances       = thor.BytesToBytes32([]byte("balances"))
	slotDelegates      = thor.BytesToBytes32([]byte("delegates"))
	slotNumCheckpoints = thor.BytesToBytes32([]byte("num-checkpoints"))
	slotCheckpoints    = thor.BytesToBytes32([]byte("checkpoints"))
	slotNonces         = thor.BytesToBytes32([]byte("nonces"))
)

var (
	contractABI               = gen.MustLoadABI("Votes")
	eventTransfer             = gen.MustEvent(contractABI, "Transfer")
	eventDelegateChanged      = gen.MustEvent(contractABI, "DelegateChanged")
	eventDelegateVotesChanged = gen.MustEvent(contractABI, "DelegateVotesChanged")
	eventMinterChanged        = gen.MustEvent(contractABI, "MinterChanged")
)

// Capabilities is the set of balance operations a ledger allows.
type Capabilities uint8

const (
	Mint Capabilities = 1 << iota
	Burn
	Transfer

	AllCapabilities = Mint | Burn | Transfer
)

// Has reports whether all of c are enabled.
func (caps Capabilities) Has(c Capabilities) bool {
	return caps&c == c
}

// Checkpoint marks the number of votes of an account from a given block.
type Checkpoint struct {
	FromBlock uint32
	Votes     *big.Int
}

// Allocation is a genesis balance.
type Allocation struct {
	Account      thor.Address
	Amount       *big.Int
	SelfDelegate bool
}

// Config initializes a ledger.
type Config struct {
	Name         string
	Symbol       string
	ChainID      *big.Int
	Minter       thor.Address
	Capabilities Capabilities
	Allocations  []Allocation
}

// Ledger implements native methods of the `Votes` contract.
type Ledger struct {
	addr  thor.Address
	state *state.State

	name           *solidity.Raw[string]
	symbol         *solidity.Raw[string]
	chainID        *solidity.Uint256
	totalSupply    *solidity.Uint256
	minter         *solidity.Address
	capabilities   *solidity.Raw[uint8]
	balances       *solidity.Mapping[thor.Address, *big.Int]
	delegates      *solidity.Mapping[thor.Address, thor.Address]
	numCheckpoints *solidity.Mapping[thor.Address, uint32]
	checkpoints    *solidity.Mapping[solidity.PairKey, *Checkpoint]
	nonces         *solidity.Mapping[thor.Address, *big.Int]
}

// New creates a ledger bound to the contract deployed at addr.
func New(addr thor.Address, state *state.State) *Ledger {
	sctx := solidity.NewContext(addr, state)
	return &Ledger{
		addr:           addr,
		state:          state,
		name:           solidity.NewRaw[string](sctx, slotName),
		symbol:         solidity.NewRaw[string](sctx, slotSymbol),
		chainID:        solidity.NewUint256(sctx, slotChainID),
		totalSupply:    solidity.NewUint256(sctx, slotTotalSupply),
		minter:         solidity.NewAddress(sctx, slotMinter),
		capabilities:   solidity.NewRaw[uint8](sctx, slotCapabilities),
		balances:       solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		delegates:      solidity.NewMapping[thor.Address, thor.Address](sctx, slotDelegates),
		numCheckpoints: solidity.NewMapping[thor.Address, uint32](sctx, slotNumCheckpoints),
		checkpoints:    solidity.NewMapping[solidity.PairKey, *Checkpoint](sctx, slotCheckpoints),
		nonces:         solidity.NewMapping[thor.Address, *big.Int](sctx, slotNonces),
	}
}

func (l *Ledger) Address() thor.Address { return l.addr }

func revert(kind reverts.Kind, op, reason string) error {
	return reverts.New(kind, "Votes::"+op, reason)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// Initialize sets up the ledger and credits the genesis allocations.
func (l *Ledger) Initialize(env *xenv.Environment, cfg *Config) error {
	name, err := l.name.Get()
	if err != nil {
		return err
	}
	if name != "" {
		return revert(reverts.StateConflict, "initialize", "already initialized")
	}
	if cfg.Name == "" {
		return revert(reverts.Validation, "initialize", "empty name")
	}
	if err := l.name.Set(cfg.Name); err != nil {
		return err
	}
	if err := l.symbol.Set(cfg.Symbol); err != nil {
		return err
	}
	if err := l.capabilities.Set(uint8(cfg.Capabilities)); err != nil {
		return err
	}
	l.chainID.Set(orZero(cfg.ChainID))
	l.minter.Set(cfg.Minter)

	for _, alloc := range cfg.Allocations {
		if err := l.mint(env, alloc.Account, alloc.Amount); err != nil {
			return err
		}
		if alloc.SelfDelegate {
			if err := l.delegate(env, alloc.Account, alloc.Account); err != nil {
				return err
			}
		}
	}
	logger.Debug("initialized", "address", l.addr, "name", cfg.Name, "allocations", len(cfg.Allocations))
	return nil
}

func (l *Ledger) Name() (string, error)   { return l.name.Get() }
func (l *Ledger) Symbol() (string, error) { return l.symbol.Get() }

func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.totalSupply.Get()
}

func (l *Ledger) BalanceOf(account thor.Address) (*big.Int, error) {
	balance, err := l.balances.Get(account)
	return orZero(balance), err
}

func (l *Ledger) Minter() (thor.Address, error) {
	return l.minter.Get()
}

func (l *Ledger) Capabilities() (Capabilities, error) {
	caps, err := l.capabilities.Get()
	return Capabilities(caps), err
}

// Delegates returns the delegate of account, zero for none.
func (l *Ledger) Delegates(account thor.Address) (thor.Address, error) {
	return l.delegates.Get(account)
}

func (l *Ledger) Nonces(account thor.Address) (*big.Int, error) {
	nonce, err := l.nonces.Get(account)
	return orZero(nonce), err
}

// DomainSeparator returns the domain signed delegations are bound to.
func (l *Ledger) DomainSeparator() (thor.Bytes32, error) {
	name, err := l.name.Get()
	if err != nil {
		return thor.Bytes32{}, err
	}
	chainID, err := l.chainID.Get()
	if err != nil {
		return thor.Bytes32{}, err
	}
	return signed.DomainSeparator(name, chainID, l.addr), nil
}

func (l *Ledger) requireCapability(op string, c Capabilities) error {
	caps, err := l.Capabilities()
	if err != nil {
		return err
	}
	if !caps.Has(c) {
		return revert(reverts.Authorization, op, "capability disabled")
	}
	return nil
}

func (l *Ledger) requireMinter(env *xenv.Environment, op, reason string) error {
	minter, err := l.minter.Get()
	if err != nil {
		return err
	}
	if env.Caller() != minter {
		return revert(reverts.Authorization, op, reason)
	}
	return nil
}

// Transfer moves amount from the caller to `to`.
func (l *Ledger) Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	if err := l.requireCapability("transfer", Transfer); err != nil {
		return err
	}
	from := env.Caller()
	if to.IsZero() {
		return revert(reverts.Validation, "transfer", "cannot transfer to the zero address")
	}
	fromBalance, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return revert(reverts.Underflow, "transfer", "amount exceeds balance")
	}
	if err := l.balances.Set(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, new(big.Int).Add(toBalance, amount)); err != nil {
		return err
	}
	if err := env.Log(eventTransfer, []thor.Bytes32{xenv.AddressTopic(from), xenv.AddressTopic(to)}, amount); err != nil {
		return err
	}

	fromDelegate, err := l.delegates.Get(from)
	if err != nil {
		return err
	}
	toDelegate, err := l.delegates.Get(to)
	if err != nil {
		return err
	}
	return l.moveVotes(env, fromDelegate, toDelegate, amount)
}

// Mint creates amount tokens for `to`, the caller must be the minter.
func (l *Ledger) Mint(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	if err := l.requireCapability("mint", Mint); err != nil {
		return err
	}
	if err := l.requireMinter(env, "mint", "only the minter can mint"); err != nil {
		return err
	}
	return l.mint(env, to, amount)
}

func (l *Ledger) mint(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	if to.IsZero() {
		return revert(reverts.Validation, "mint", "cannot mint to the zero address")
	}
	if err := l.totalSupply.Add(amount); err != nil {
		return err
	}
	balance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	if err := env.Log(eventTransfer, []thor.Bytes32{xenv.AddressTopic(thor.Address{}), xenv.AddressTopic(to)}, amount); err != nil {
		return err
	}
	delegatee, err := l.delegates.Get(to)
	if err != nil {
		return err
	}
	return l.moveVotes(env, thor.Address{}, delegatee, amount)
}

// Burn destroys amount tokens of `from`, the caller must be the minter.
func (l *Ledger) Burn(env *xenv.Environment, from thor.Address, amount *big.Int) error {
	if err := l.requireCapability("burn", Burn); err != nil {
		return err
	}
	if err := l.requireMinter(env, "burn", "only the minter can burn"); err != nil {
		return err
	}
	balance, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return revert(reverts.Underflow, "burn", "amount exceeds balance")
	}
	if err := l.balances.Set(from, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	if err := l.totalSupply.Sub(amount); err != nil {
		return err
	}
	if err := env.Log(eventTransfer, []thor.Bytes32{xenv.AddressTopic(from), xenv.AddressTopic(thor.Address{})}, amount); err != nil {
		return err
	}
	delegatee, err := l.delegates.Get(from)
	if err != nil {
		return err
	}
	return l.moveVotes(env, delegatee, thor.Address{}, amount)
}

// SetMinter hands the minter role over, the caller must be the current minter.
func (l *Ledger) SetMinter(env *xenv.Environment, newMinter thor.Address) error {
	if err := l.requireMinter(env, "setMinter", "only the minter can change the minter address"); err != nil {
		return err
	}
	l.minter.Set(newMinter)
	return env.Log(eventMinterChanged, nil, env.Caller(), newMinter)
}

// Delegate delegates the votes of the caller to delegatee, zero to undelegate.
func (l *Ledger) Delegate(env *xenv.Environment, delegatee thor.Address) error {
	return l.delegate(env, env.Caller(), delegatee)
}

// DelegateBySig delegates the votes of the signer of a delegation.
func (l *Ledger) DelegateBySig(env *xenv.Environment, recoverer signed.Recoverer, d *signed.Delegation, sig []byte) error {
	domain, err := l.DomainSeparator()
	if err != nil {
		return err
	}
	signer, err := d.Verify(recoverer, domain, sig, l.Nonces, env.BlockContext().Time)
	switch err {
	case nil:
	case signed.ErrInvalidSignature, signed.ErrInvalidNonce:
		return revert(reverts.Validation, "delegateBySig", err.Error())
	case signed.ErrExpired:
		return revert(reverts.TemporalGate, "delegateBySig", err.Error())
	default:
		return err
	}
	if err := l.nonces.Set(signer, new(big.Int).Add(d.Nonce, big.NewInt(1))); err != nil {
		return err
	}
	return l.delegate(env, signer, d.Delegatee)
}

func (l *Ledger) delegate(env *xenv.Environment, delegator, delegatee thor.Address) error {
	current, err := l.delegates.Get(delegator)
	if err != nil {
		return err
	}
	balance, err := l.BalanceOf(delegator)
	if err != nil {
		return err
	}
	if err := l.delegates.Set(delegator, delegatee); err != nil {
		return err
	}

	topics := []thor.Bytes32{xenv.AddressTopic(delegator), xenv.AddressTopic(current), xenv.AddressTopic(delegatee)}
	if err := env.Log(eventDelegateChanged, topics); err != nil {
		return err
	}
	logger.Debug("delegate changed", "delegator", delegator, "from", current, "to", delegatee)
	return l.moveVotes(env, current, delegatee, balance)
}
