// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governor

import (
	"math/big"

	"github.com/govstake/govstake/builtin/timelock"
	"github.com/govstake/govstake/thor"
)

// ProposalState is derived on every query from the proposal and the current block.
type ProposalState uint8

const (
	Pending ProposalState = iota
	Active
	Canceled
	Defeated
	Succeeded
	Queued
	Expired
	Executed
)

func (s ProposalState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Canceled:
		return "canceled"
	case Defeated:
		return "defeated"
	case Succeeded:
		return "succeeded"
	case Queued:
		return "queued"
	case Expired:
		return "expired"
	case Executed:
		return "executed"
	}
	return "unknown"
}

// Action is one call a proposal makes through the timelock.
type Action struct {
	Target    thor.Address
	Value     *big.Int
	Signature string
	Calldata  []byte
}

// Proposal is the stored record of a proposal.
type Proposal struct {
	ID           uint64
	Proposer     thor.Address
	Eta          uint64
	Actions      []Action
	StartBlock   uint32
	EndBlock     uint32
	ForVotes     *big.Int
	AgainstVotes *big.Int
	Canceled     bool
	Executed     bool
	Description  string
}

func (p *Proposal) transaction(i int) *timelock.Transaction {
	a := p.Actions[i]
	return &timelock.Transaction{
		Target:    a.Target,
		Value:     a.Value,
		Signature: a.Signature,
		Data:      a.Calldata,
		Eta:       p.Eta,
	}
}

// Receipt is the ballot of one voter on one proposal.
type Receipt struct {
	HasVoted bool
	Support  bool
	Votes    *big.Int
}

// Bounds are the sanity bounds of the guardian parameters.
// A nil bound is unbounded.
type Bounds struct {
	MinProposalThreshold *big.Int `rlp:"nil"`
	MaxProposalThreshold *big.Int `rlp:"nil"`
	MinQuorumVotes       *big.Int `rlp:"nil"`
	MaxQuorumVotes       *big.Int `rlp:"nil"`
}

func inRange(v, min, max *big.Int) bool {
	return (min == nil || v.Cmp(min) >= 0) && (max == nil || v.Cmp(max) <= 0)
}

// Config initializes a governor.
type Config struct {
	Name              string
	ChainID           *big.Int
	Timelock          thor.Address
	Token             thor.Address
	Guardian          thor.Address
	QuorumVotes       *big.Int
	ProposalThreshold *big.Int
	VotingDelay       uint32
	VotingPeriod      uint32
	Bounds            Bounds
}
