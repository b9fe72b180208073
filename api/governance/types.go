// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governance

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/govstake/govstake/builtin/governor"
	"github.com/govstake/govstake/builtin/staking"
	"github.com/govstake/govstake/thor"
)

type Governor struct {
	Name              string                `json:"name"`
	Timelock          thor.Address          `json:"timelock"`
	Token             thor.Address          `json:"token"`
	Guardian          thor.Address          `json:"guardian"`
	QuorumVotes       *math.HexOrDecimal256 `json:"quorumVotes"`
	ProposalThreshold *math.HexOrDecimal256 `json:"proposalThreshold"`
	VotingDelay       uint32                `json:"votingDelay"`
	VotingPeriod      uint32                `json:"votingPeriod"`
	ProposalCount     uint64                `json:"proposalCount"`
}

type Action struct {
	Target    thor.Address          `json:"target"`
	Value     *math.HexOrDecimal256 `json:"value"`
	Signature string                `json:"signature"`
	Calldata  string                `json:"calldata"`
}

type Proposal struct {
	ID           uint64                `json:"id"`
	Proposer     thor.Address          `json:"proposer"`
	State        string                `json:"state"`
	Eta          uint64                `json:"eta"`
	StartBlock   uint32                `json:"startBlock"`
	EndBlock     uint32                `json:"endBlock"`
	ForVotes     *math.HexOrDecimal256 `json:"forVotes"`
	AgainstVotes *math.HexOrDecimal256 `json:"againstVotes"`
	Canceled     bool                  `json:"canceled"`
	Executed     bool                  `json:"executed"`
	Description  string                `json:"description"`
	Actions      []*Action             `json:"actions"`
}

func convertProposal(p *governor.Proposal, state governor.ProposalState) *Proposal {
	actions := make([]*Action, 0, len(p.Actions))
	for _, a := range p.Actions {
		actions = append(actions, &Action{
			Target:    a.Target,
			Value:     (*math.HexOrDecimal256)(a.Value),
			Signature: a.Signature,
			Calldata:  hexutil.Encode(a.Calldata),
		})
	}
	return &Proposal{
		ID:           p.ID,
		Proposer:     p.Proposer,
		State:        state.String(),
		Eta:          p.Eta,
		StartBlock:   p.StartBlock,
		EndBlock:     p.EndBlock,
		ForVotes:     (*math.HexOrDecimal256)(p.ForVotes),
		AgainstVotes: (*math.HexOrDecimal256)(p.AgainstVotes),
		Canceled:     p.Canceled,
		Executed:     p.Executed,
		Description:  p.Description,
		Actions:      actions,
	}
}

type Receipt struct {
	HasVoted bool                  `json:"hasVoted"`
	Support  bool                  `json:"support"`
	Votes    *math.HexOrDecimal256 `json:"votes"`
}

type Votes struct {
	Balance        *math.HexOrDecimal256 `json:"balance"`
	Delegate       thor.Address          `json:"delegate"`
	CurrentVotes   *math.HexOrDecimal256 `json:"currentVotes"`
	NumCheckpoints uint32                `json:"numCheckpoints"`
	Nonce          *math.HexOrDecimal256 `json:"nonce"`
}

type PriorVotes struct {
	BlockNumber uint32                `json:"blockNumber"`
	Votes       *math.HexOrDecimal256 `json:"votes"`
}

type Tranche struct {
	Amount     *math.HexOrDecimal256 `json:"amount"`
	UnlockTime uint64                `json:"unlockTime"`
}

type Position struct {
	Unlocked   *math.HexOrDecimal256 `json:"unlocked"`
	Locked     []*Tranche            `json:"locked"`
	Unlockable *math.HexOrDecimal256 `json:"unlockable"`
	Receipt    *math.HexOrDecimal256 `json:"receipt"`
	Earned     *math.HexOrDecimal256 `json:"earned"`
}

func convertTranches(locked []staking.Tranche) []*Tranche {
	ts := make([]*Tranche, 0, len(locked))
	for _, t := range locked {
		ts = append(ts, &Tranche{
			Amount:     (*math.HexOrDecimal256)(t.Amount),
			UnlockTime: t.UnlockTime,
		})
	}
	return ts
}

type Staking struct {
	Owner           thor.Address          `json:"owner"`
	ReceiptToken    thor.Address          `json:"receiptToken"`
	TotalSupply     *math.HexOrDecimal256 `json:"totalSupply"`
	RewardRate      *math.HexOrDecimal256 `json:"rewardRate"`
	RewardsDuration uint64                `json:"rewardsDuration"`
	PeriodFinish    uint64                `json:"periodFinish"`
}

type Timelock struct {
	Admin        thor.Address `json:"admin"`
	PendingAdmin thor.Address `json:"pendingAdmin"`
	Delay        uint64       `json:"delay"`
}
