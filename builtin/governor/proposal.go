// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governor

import (
	"math/big"

	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/builtin/solidity"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

// Proposal returns the proposal with id, nil if absent.
func (g *Governor) Proposal(id uint64) (*Proposal, error) {
	p, err := g.proposals.Get(solidity.Uint64Key(id))
	if err != nil || p == nil {
		return nil, err
	}
	if p.ForVotes == nil {
		p.ForVotes = new(big.Int)
	}
	if p.AgainstVotes == nil {
		p.AgainstVotes = new(big.Int)
	}
	return p, nil
}

func (g *Governor) mustProposal(op string, id uint64) (*Proposal, error) {
	p, err := g.Proposal(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, revert(reverts.Validation, op, "invalid proposal id")
	}
	return p, nil
}

// Receipt returns the ballot of voter, zero valued if voter has not voted.
func (g *Governor) Receipt(id uint64, voter thor.Address) (*Receipt, error) {
	r, err := g.receipts.Get(receiptKey(id, voter))
	if err != nil {
		return nil, err
	}
	if r == nil {
		return &Receipt{Votes: new(big.Int)}, nil
	}
	if r.Votes == nil {
		r.Votes = new(big.Int)
	}
	return r, nil
}

func receiptKey(id uint64, voter thor.Address) solidity.PairKey {
	return solidity.PairKey{Outer: solidity.Uint64Key(id), Inner: voter}
}

// State derives the state of proposal id at the given block.
func (g *Governor) State(id uint64, blockCtx *xenv.BlockContext) (ProposalState, error) {
	p, err := g.mustProposal("state", id)
	if err != nil {
		return 0, err
	}
	quorum, err := g.quorumVotes.Get()
	if err != nil {
		return 0, err
	}
	return deriveState(p, quorum, blockCtx), nil
}

func deriveState(p *Proposal, quorum *big.Int, blockCtx *xenv.BlockContext) ProposalState {
	switch {
	case p.Canceled:
		return Canceled
	case p.Executed:
		return Executed
	case blockCtx.Number < p.StartBlock:
		return Pending
	case blockCtx.Number <= p.EndBlock:
		return Active
	case p.ForVotes.Cmp(p.AgainstVotes) <= 0 || p.ForVotes.Cmp(quorum) < 0:
		return Defeated
	case p.Eta == 0:
		return Succeeded
	case blockCtx.Time > p.Eta+thor.GracePeriod:
		return Expired
	default:
		return Queued
	}
}

func (g *Governor) priorVotes(account thor.Address, blockCtx *xenv.BlockContext) (*big.Int, error) {
	token, err := g.tokenLedger()
	if err != nil {
		return nil, err
	}
	return token.GetPriorVotes(account, uint64(blockCtx.Number)-1, blockCtx.Number)
}

// Propose creates a proposal of the caller, whose votes as of the previous block must reach
// the proposal threshold.
func (g *Governor) Propose(env *xenv.Environment, actions []Action, description string) (uint64, error) {
	switch {
	case len(actions) == 0:
		return 0, revert(reverts.Validation, "propose", "must provide actions")
	case len(actions) > thor.MaxOperations:
		return 0, revert(reverts.Validation, "propose", "too many actions")
	}

	proposer := env.Caller()
	blockCtx := env.BlockContext()
	threshold, err := g.proposalThreshold.Get()
	if err != nil {
		return 0, err
	}
	prior, err := g.priorVotes(proposer, blockCtx)
	if err != nil {
		return 0, err
	}
	if prior.Cmp(threshold) < 0 {
		return 0, revert(reverts.Validation, "propose", "proposer votes below proposal threshold")
	}

	latestID, err := g.latestProposalIDs.Get(proposer)
	if err != nil {
		return 0, err
	}
	if latestID != 0 {
		state, err := g.State(latestID, blockCtx)
		if err != nil {
			return 0, err
		}
		switch state {
		case Active:
			return 0, revert(reverts.StateConflict, "propose", "one live proposal per proposer, found an already active proposal")
		case Pending:
			return 0, revert(reverts.StateConflict, "propose", "one live proposal per proposer, found an already pending proposal")
		}
	}

	delay, err := g.votingDelay.Get()
	if err != nil {
		return 0, err
	}
	period, err := g.votingPeriod.Get()
	if err != nil {
		return 0, err
	}
	count, err := g.proposalCount.Get()
	if err != nil {
		return 0, err
	}

	p := &Proposal{
		ID:           count + 1,
		Proposer:     proposer,
		Actions:      actions,
		StartBlock:   blockCtx.Number + delay,
		EndBlock:     blockCtx.Number + delay + period,
		ForVotes:     new(big.Int),
		AgainstVotes: new(big.Int),
		Description:  description,
	}
	if err := g.proposalCount.Set(p.ID); err != nil {
		return 0, err
	}
	if err := g.proposals.Set(solidity.Uint64Key(p.ID), p); err != nil {
		return 0, err
	}
	if err := g.latestProposalIDs.Set(proposer, p.ID); err != nil {
		return 0, err
	}

	targets, values, signatures, calldatas := splitActions(actions)
	if err := env.Log(eventProposalCreated, nil,
		new(big.Int).SetUint64(p.ID), proposer, targets, values, signatures, calldatas,
		big.NewInt(int64(p.StartBlock)), big.NewInt(int64(p.EndBlock)), description,
	); err != nil {
		return 0, err
	}
	logger.Debug("proposal created", "id", p.ID, "proposer", proposer, "start", p.StartBlock, "end", p.EndBlock)
	return p.ID, nil
}

// ZipActions builds actions out of the four parallel lists taken by propose.
func ZipActions(targets []thor.Address, values []*big.Int, signatures []string, calldatas [][]byte) ([]Action, error) {
	n := len(targets)
	if len(values) != n || len(signatures) != n || len(calldatas) != n {
		return nil, revert(reverts.Validation, "propose", "proposal function information arity mismatch")
	}
	actions := make([]Action, n)
	for i := range actions {
		actions[i] = Action{Target: targets[i], Value: values[i], Signature: signatures[i], Calldata: calldatas[i]}
		if actions[i].Value == nil {
			actions[i].Value = new(big.Int)
		}
	}
	return actions, nil
}

func splitActions(actions []Action) (targets []thor.Address, values []*big.Int, signatures []string, calldatas [][]byte) {
	for _, a := range actions {
		targets = append(targets, a.Target)
		values = append(values, a.Value)
		signatures = append(signatures, a.Signature)
		calldatas = append(calldatas, a.Calldata)
	}
	return
}

// GetActions returns the actions of a proposal as the four parallel lists.
func (g *Governor) GetActions(id uint64) ([]thor.Address, []*big.Int, []string, [][]byte, error) {
	p, err := g.Proposal(id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if p == nil {
		return []thor.Address{}, []*big.Int{}, []string{}, [][]byte{}, nil
	}
	targets, values, signatures, calldatas := splitActions(p.Actions)
	return targets, values, signatures, calldatas, nil
}

// CastVote casts the caller's vote.
func (g *Governor) CastVote(env *xenv.Environment, id uint64, support bool) error {
	return g.castVote(env, env.Caller(), id, support)
}

// CastVoteBySig casts the vote of the signer of a ballot.
func (g *Governor) CastVoteBySig(env *xenv.Environment, recoverer signed.Recoverer, ballot *signed.Ballot, sig []byte) error {
	domain, err := g.DomainSeparator()
	if err != nil {
		return err
	}
	signer, err := ballot.Verify(recoverer, domain, sig)
	if err != nil {
		return revert(reverts.Validation, "castVoteBySig", err.Error())
	}
	if !ballot.ProposalID.IsUint64() {
		return revert(reverts.Validation, "castVoteBySig", "invalid proposal id")
	}
	return g.castVote(env, signer, ballot.ProposalID.Uint64(), ballot.Support)
}

func (g *Governor) castVote(env *xenv.Environment, voter thor.Address, id uint64, support bool) error {
	state, err := g.State(id, env.BlockContext())
	if err != nil {
		return err
	}
	if state != Active {
		return revert(reverts.TemporalGate, "_castVote", "voting is closed")
	}
	receipt, err := g.Receipt(id, voter)
	if err != nil {
		return err
	}
	if receipt.HasVoted {
		return revert(reverts.StateConflict, "_castVote", "voter already voted")
	}

	p, err := g.Proposal(id)
	if err != nil {
		return err
	}
	token, err := g.tokenLedger()
	if err != nil {
		return err
	}
	weight, err := token.GetPriorVotes(voter, uint64(p.StartBlock), env.BlockContext().Number)
	if err != nil {
		return err
	}

	if support {
		p.ForVotes = new(big.Int).Add(p.ForVotes, weight)
	} else {
		p.AgainstVotes = new(big.Int).Add(p.AgainstVotes, weight)
	}
	if err := g.proposals.Set(solidity.Uint64Key(id), p); err != nil {
		return err
	}
	if err := g.receipts.Set(receiptKey(id, voter), &Receipt{HasVoted: true, Support: support, Votes: weight}); err != nil {
		return err
	}
	logger.Debug("vote cast", "id", id, "voter", voter, "support", support, "votes", weight)
	return env.Log(eventVoteCast, nil, voter, new(big.Int).SetUint64(id), support, weight)
}

// Queue queues every action of a succeeded proposal in the timelock.
func (g *Governor) Queue(env *xenv.Environment, id uint64) error {
	state, err := g.State(id, env.BlockContext())
	if err != nil {
		return err
	}
	if state != Succeeded {
		return revert(reverts.StateConflict, "queue", "proposal can only be queued if it is succeeded")
	}
	p, err := g.Proposal(id)
	if err != nil {
		return err
	}
	tl, err := g.timelockQueue()
	if err != nil {
		return err
	}
	delay, err := tl.Delay()
	if err != nil {
		return err
	}
	p.Eta = env.BlockContext().Time + delay

	frame := env.Enter(tl.Address())
	for i := range p.Actions {
		tx := p.transaction(i)
		queued, err := tl.QueuedTransactions(tx.Hash())
		if err != nil {
			return err
		}
		if queued {
			return revert(reverts.StateConflict, "_queueOrRevert", "proposal action already queued at eta")
		}
		if _, err := tl.QueueTransaction(frame, tx); err != nil {
			return err
		}
	}
	if err := g.proposals.Set(solidity.Uint64Key(id), p); err != nil {
		return err
	}
	logger.Debug("proposal queued", "id", id, "eta", p.Eta)
	return env.Log(eventProposalQueued, nil, new(big.Int).SetUint64(id), new(big.Int).SetUint64(p.Eta))
}

// Execute executes every action of a queued proposal, all of them or none.
func (g *Governor) Execute(env *xenv.Environment, id uint64) error {
	state, err := g.State(id, env.BlockContext())
	if err != nil {
		return err
	}
	if state != Queued {
		return revert(reverts.StateConflict, "execute", "proposal can only be executed if it is queued")
	}
	p, err := g.Proposal(id)
	if err != nil {
		return err
	}
	p.Executed = true
	if err := g.proposals.Set(solidity.Uint64Key(id), p); err != nil {
		return err
	}

	tl, err := g.timelockQueue()
	if err != nil {
		return err
	}
	frame := env.Enter(tl.Address())
	for i := range p.Actions {
		if _, err := tl.ExecuteTransaction(frame, p.transaction(i)); err != nil {
			return err
		}
	}
	logger.Debug("proposal executed", "id", id)
	return env.Log(eventProposalExecuted, nil, new(big.Int).SetUint64(id))
}

// Cancel cancels a proposal that is not executed. The caller must be the proposer or
// the guardian, anyone may cancel once the proposer's votes fall below the threshold.
func (g *Governor) Cancel(env *xenv.Environment, id uint64) error {
	state, err := g.State(id, env.BlockContext())
	if err != nil {
		return err
	}
	if state == Executed {
		return revert(reverts.StateConflict, "cancel", "cannot cancel executed proposal")
	}
	p, err := g.Proposal(id)
	if err != nil {
		return err
	}

	caller := env.Caller()
	guardian, err := g.guardian.Get()
	if err != nil {
		return err
	}
	if caller != p.Proposer && (guardian.IsZero() || caller != guardian) {
		threshold, err := g.proposalThreshold.Get()
		if err != nil {
			return err
		}
		prior, err := g.priorVotes(p.Proposer, env.BlockContext())
		if err != nil {
			return err
		}
		if prior.Cmp(threshold) >= 0 {
			return revert(reverts.Authorization, "cancel", "proposer above threshold")
		}
	}

	p.Canceled = true
	if err := g.proposals.Set(solidity.Uint64Key(id), p); err != nil {
		return err
	}
	if p.Eta != 0 {
		tl, err := g.timelockQueue()
		if err != nil {
			return err
		}
		frame := env.Enter(tl.Address())
		for i := range p.Actions {
			if err := tl.CancelTransaction(frame, p.transaction(i)); err != nil {
				return err
			}
		}
	}
	logger.Debug("proposal canceled", "id", id, "by", caller)
	return env.Log(eventProposalCanceled, nil, new(big.Int).SetUint64(id))
}
