// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package governor implements the proposal lifecycle over the voting ledger and the timelock.
package governor

import (
	"math/big"

	"github.com/govstake/govstake/builtin/gen"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/builtin/solidity"
	"github.com/govstake/govstake/builtin/timelock"
	"github.com/govstake/govstake/builtin/votes"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

var logger = log.WithContext("pkg", "governor")

var (
	slotName              = thor.BytesToBytes32([]byte("name"))
	slotChainID           = thor.BytesToBytes32([]byte("chain-id"))
	slotTimelock          = thor.BytesToBytes32([]byte("timelock"))
	slotToken             = thor.BytesToBytes32([]byte("token"))
	slotGuardian          = thor.BytesToBytes32([]byte("guardian"))
	slotQuorumVotes       = thor.BytesToBytes32([]byte("quorum-votes"))
	slotProposalThreshold = thor.BytesToBytes32([]byte("proposal-threshold"))
	slotVotingDelay       = thor.BytesToBytes32([]byte("voting-delay"))
	slotVotingPeriod      = thor.BytesToBytes32([]byte("voting-period"))
	slotBounds            = thor.BytesToBytes32([]byte("bounds"))
	slotProposalCount     = thor.BytesToBytes32([]byte("proposal-count"))
	slotProposals         = thor.BytesToBytes32([]byte("proposals"))
	slotReceipts          = thor.BytesToBytes32([]byte("receipts"))
	slotLatestProposalIDs = thor.BytesToBytes32([]byte("latest-proposal-ids"))
)

var (
	contractABI           = gen.MustLoadABI("Governor")
	eventProposalCreated  = gen.MustEvent(contractABI, "ProposalCreated")
	eventVoteCast         = gen.MustEvent(contractABI, "VoteCast")
	eventProposalCanceled = gen.MustEvent(contractABI, "ProposalCanceled")
	eventProposalQueued   = gen.MustEvent(contractABI, "ProposalQueued")
	eventProposalExecuted = gen.MustEvent(contractABI, "ProposalExecuted")
	eventGuardianChanged  = gen.MustEvent(contractABI, "GuardianChanged")
	eventParameterChanged = gen.MustEvent(contractABI, "ParameterChanged")
)

// Governor implements native methods of the `Governor` contract.
type Governor struct {
	addr  thor.Address
	state *state.State

	name              *solidity.Raw[string]
	chainID           *solidity.Uint256
	timelock          *solidity.Address
	token             *solidity.Address
	guardian          *solidity.Address
	quorumVotes       *solidity.Uint256
	proposalThreshold *solidity.Uint256
	votingDelay       *solidity.Raw[uint32]
	votingPeriod      *solidity.Raw[uint32]
	bounds            *solidity.Raw[*Bounds]
	proposalCount     *solidity.Raw[uint64]
	proposals         *solidity.Mapping[solidity.Uint64Key, *Proposal]
	receipts          *solidity.Mapping[solidity.PairKey, *Receipt]
	latestProposalIDs *solidity.Mapping[thor.Address, uint64]
}

// New creates a governor bound to the contract deployed at addr.
func New(addr thor.Address, state *state.State) *Governor {
	sctx := solidity.NewContext(addr, state)
	return &Governor{
		addr:              addr,
		state:             state,
		name:              solidity.NewRaw[string](sctx, slotName),
		chainID:           solidity.NewUint256(sctx, slotChainID),
		timelock:          solidity.NewAddress(sctx, slotTimelock),
		token:             solidity.NewAddress(sctx, slotToken),
		guardian:          solidity.NewAddress(sctx, slotGuardian),
		quorumVotes:       solidity.NewUint256(sctx, slotQuorumVotes),
		proposalThreshold: solidity.NewUint256(sctx, slotProposalThreshold),
		votingDelay:       solidity.NewRaw[uint32](sctx, slotVotingDelay),
		votingPeriod:      solidity.NewRaw[uint32](sctx, slotVotingPeriod),
		bounds:            solidity.NewRaw[*Bounds](sctx, slotBounds),
		proposalCount:     solidity.NewRaw[uint64](sctx, slotProposalCount),
		proposals:         solidity.NewMapping[solidity.Uint64Key, *Proposal](sctx, slotProposals),
		receipts:          solidity.NewMapping[solidity.PairKey, *Receipt](sctx, slotReceipts),
		latestProposalIDs: solidity.NewMapping[thor.Address, uint64](sctx, slotLatestProposalIDs),
	}
}

func (g *Governor) Address() thor.Address { return g.addr }

func revert(kind reverts.Kind, op, reason string) error {
	return reverts.New(kind, "Governor::"+op, reason)
}

// Initialize sets up the governor parameters, which must satisfy their bounds.
func (g *Governor) Initialize(cfg *Config) error {
	name, err := g.name.Get()
	if err != nil {
		return err
	}
	if name != "" {
		return revert(reverts.StateConflict, "initialize", "already initialized")
	}
	if cfg.Name == "" {
		return revert(reverts.Validation, "initialize", "empty name")
	}
	if cfg.QuorumVotes == nil || cfg.ProposalThreshold == nil {
		return revert(reverts.Validation, "initialize", "missing quorum votes or proposal threshold")
	}
	b := cfg.Bounds
	if !inRange(cfg.ProposalThreshold, b.MinProposalThreshold, b.MaxProposalThreshold) {
		return revert(reverts.Validation, "initialize", "invalid proposal threshold")
	}
	if !inRange(cfg.QuorumVotes, b.MinQuorumVotes, b.MaxQuorumVotes) {
		return revert(reverts.Validation, "initialize", "invalid quorum votes")
	}
	if cfg.VotingDelay < thor.MinVotingDelay || cfg.VotingDelay > thor.MaxVotingDelay {
		return revert(reverts.Validation, "initialize", "invalid voting delay")
	}
	if cfg.VotingPeriod < thor.MinVotingPeriod || cfg.VotingPeriod > thor.MaxVotingPeriod {
		return revert(reverts.Validation, "initialize", "invalid voting period")
	}

	if err := g.name.Set(cfg.Name); err != nil {
		return err
	}
	chainID := cfg.ChainID
	if chainID == nil {
		chainID = new(big.Int)
	}
	g.chainID.Set(chainID)
	g.timelock.Set(cfg.Timelock)
	g.token.Set(cfg.Token)
	g.guardian.Set(cfg.Guardian)
	g.quorumVotes.Set(cfg.QuorumVotes)
	g.proposalThreshold.Set(cfg.ProposalThreshold)
	if err := g.votingDelay.Set(cfg.VotingDelay); err != nil {
		return err
	}
	if err := g.votingPeriod.Set(cfg.VotingPeriod); err != nil {
		return err
	}
	logger.Debug("initialized", "address", g.addr, "timelock", cfg.Timelock, "token", cfg.Token)
	return g.bounds.Set(&b)
}

func (g *Governor) Name() (string, error)               { return g.name.Get() }
func (g *Governor) Timelock() (thor.Address, error)     { return g.timelock.Get() }
func (g *Governor) Token() (thor.Address, error)        { return g.token.Get() }
func (g *Governor) Guardian() (thor.Address, error)     { return g.guardian.Get() }
func (g *Governor) QuorumVotes() (*big.Int, error)      { return g.quorumVotes.Get() }
func (g *Governor) ProposalThreshold() (*big.Int, error) { return g.proposalThreshold.Get() }
func (g *Governor) VotingDelay() (uint32, error)        { return g.votingDelay.Get() }
func (g *Governor) VotingPeriod() (uint32, error)       { return g.votingPeriod.Get() }
func (g *Governor) ProposalCount() (uint64, error)      { return g.proposalCount.Get() }

func (g *Governor) LatestProposalIDs(proposer thor.Address) (uint64, error) {
	return g.latestProposalIDs.Get(proposer)
}

// Bounds returns the sanity bounds of the guardian parameters.
func (g *Governor) Bounds() (*Bounds, error) {
	b, err := g.bounds.Get()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &Bounds{}, nil
	}
	return b, nil
}

// DomainSeparator returns the domain signed ballots are bound to.
func (g *Governor) DomainSeparator() (thor.Bytes32, error) {
	name, err := g.name.Get()
	if err != nil {
		return thor.Bytes32{}, err
	}
	chainID, err := g.chainID.Get()
	if err != nil {
		return thor.Bytes32{}, err
	}
	return signed.DomainSeparator(name, chainID, g.addr), nil
}

func (g *Governor) tokenLedger() (*votes.Ledger, error) {
	addr, err := g.token.Get()
	if err != nil {
		return nil, err
	}
	return votes.New(addr, g.state), nil
}

func (g *Governor) timelockQueue() (*timelock.Timelock, error) {
	addr, err := g.timelock.Get()
	if err != nil {
		return nil, err
	}
	return timelock.New(addr, g.state), nil
}

func (g *Governor) requireGuardian(env *xenv.Environment, op, reason string) error {
	guardian, err := g.guardian.Get()
	if err != nil {
		return err
	}
	if env.Caller() != guardian || guardian.IsZero() {
		return revert(reverts.Authorization, op, reason)
	}
	return nil
}

func (g *Governor) setUint256(env *xenv.Environment, op, param string, slot *solidity.Uint256, value *big.Int, valid func(b *Bounds) bool) error {
	if err := g.requireGuardian(env, op, "caller must be guardian"); err != nil {
		return err
	}
	b, err := g.Bounds()
	if err != nil {
		return err
	}
	if !valid(b) {
		return revert(reverts.Validation, op, "invalid "+param)
	}
	old, err := slot.Get()
	if err != nil {
		return err
	}
	slot.Set(value)
	return env.Log(eventParameterChanged, nil, param, old, value)
}

// SetProposalThreshold changes the votes needed to propose.
func (g *Governor) SetProposalThreshold(env *xenv.Environment, value *big.Int) error {
	return g.setUint256(env, "setProposalThreshold", "proposalThreshold", g.proposalThreshold, value, func(b *Bounds) bool {
		return inRange(value, b.MinProposalThreshold, b.MaxProposalThreshold)
	})
}

// SetQuorumVotes changes the votes in support needed for a proposal to pass.
func (g *Governor) SetQuorumVotes(env *xenv.Environment, value *big.Int) error {
	return g.setUint256(env, "setQuorumVotes", "quorumVotes", g.quorumVotes, value, func(b *Bounds) bool {
		return inRange(value, b.MinQuorumVotes, b.MaxQuorumVotes)
	})
}

func (g *Governor) setUint32(env *xenv.Environment, op, param string, slot *solidity.Raw[uint32], value uint64, min, max uint32) error {
	if err := g.requireGuardian(env, op, "caller must be guardian"); err != nil {
		return err
	}
	if value < uint64(min) || value > uint64(max) {
		return revert(reverts.Validation, op, "invalid "+param)
	}
	old, err := slot.Get()
	if err != nil {
		return err
	}
	if err := slot.Set(uint32(value)); err != nil {
		return err
	}
	return env.Log(eventParameterChanged, nil, param, new(big.Int).SetUint64(uint64(old)), new(big.Int).SetUint64(value))
}

// SetVotingDelay changes the blocks between proposing and voting, applies to new proposals.
func (g *Governor) SetVotingDelay(env *xenv.Environment, value uint64) error {
	return g.setUint32(env, "setVotingDelay", "votingDelay", g.votingDelay, value, thor.MinVotingDelay, thor.MaxVotingDelay)
}

// SetVotingPeriod changes the length of the voting window, applies to new proposals.
func (g *Governor) SetVotingPeriod(env *xenv.Environment, value uint64) error {
	return g.setUint32(env, "setVotingPeriod", "votingPeriod", g.votingPeriod, value, thor.MinVotingPeriod, thor.MaxVotingPeriod)
}

// SetGuardian hands the guardian role over.
func (g *Governor) SetGuardian(env *xenv.Environment, guardian thor.Address) error {
	if err := g.requireGuardian(env, "setGuardian", "caller must be guardian"); err != nil {
		return err
	}
	return g.changeGuardian(env, guardian)
}

// Abdicate removes the guardian for good.
func (g *Governor) Abdicate(env *xenv.Environment) error {
	if err := g.requireGuardian(env, "__abdicate", "sender must be gov guardian"); err != nil {
		return err
	}
	return g.changeGuardian(env, thor.Address{})
}

func (g *Governor) changeGuardian(env *xenv.Environment, guardian thor.Address) error {
	old, err := g.guardian.Get()
	if err != nil {
		return err
	}
	g.guardian.Set(guardian)
	logger.Debug("guardian changed", "old", old, "new", guardian)
	return env.Log(eventGuardianChanged, nil, old, guardian)
}

// AcceptAdmin makes the governor accept the admin role of its timelock.
func (g *Governor) AcceptAdmin(env *xenv.Environment) error {
	if err := g.requireGuardian(env, "__acceptAdmin", "sender must be gov guardian"); err != nil {
		return err
	}
	tl, err := g.timelockQueue()
	if err != nil {
		return err
	}
	return tl.AcceptAdmin(env.Enter(tl.Address()))
}

func (g *Governor) setPendingAdminTx(newPendingAdmin thor.Address, eta uint64) (*timelock.Timelock, *timelock.Transaction, error) {
	tl, err := g.timelockQueue()
	if err != nil {
		return nil, nil, err
	}
	var data [32]byte
	copy(data[12:], newPendingAdmin[:])
	return tl, &timelock.Transaction{
		Target:    tl.Address(),
		Value:     new(big.Int),
		Signature: "setPendingAdmin(address)",
		Data:      data[:],
		Eta:       eta,
	}, nil
}

// QueueSetTimelockPendingAdmin queues the nomination of a new timelock admin.
func (g *Governor) QueueSetTimelockPendingAdmin(env *xenv.Environment, newPendingAdmin thor.Address, eta uint64) error {
	if err := g.requireGuardian(env, "__queueSetTimelockPendingAdmin", "sender must be gov guardian"); err != nil {
		return err
	}
	tl, tx, err := g.setPendingAdminTx(newPendingAdmin, eta)
	if err != nil {
		return err
	}
	_, err = tl.QueueTransaction(env.Enter(tl.Address()), tx)
	return err
}

// ExecuteSetTimelockPendingAdmin executes a nomination queued by QueueSetTimelockPendingAdmin.
func (g *Governor) ExecuteSetTimelockPendingAdmin(env *xenv.Environment, newPendingAdmin thor.Address, eta uint64) error {
	if err := g.requireGuardian(env, "__executeSetTimelockPendingAdmin", "sender must be gov guardian"); err != nil {
		return err
	}
	tl, tx, err := g.setPendingAdminTx(newPendingAdmin, eta)
	if err != nil {
		return err
	}
	_, err = tl.ExecuteTransaction(env.Enter(tl.Address()), tx)
	return err
}
