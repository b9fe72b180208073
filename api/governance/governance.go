// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package governance serves read-only views of the governance and staking contracts
// at the best block.
package governance

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/api/utils"
	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

type Governance struct {
	repo   *chain.Repository
	stater *state.Stater
}

func New(repo *chain.Repository, stater *state.Stater) *Governance {
	return &Governance{
		repo,
		stater,
	}
}

func (g *Governance) blockContext() *xenv.BlockContext {
	best := g.repo.BestBlock()
	return &xenv.BlockContext{Number: best.Number(), Time: best.Timestamp()}
}

// viewError maps reverts of view methods to bad requests.
func viewError(err error) error {
	if reverts.IsRevertErr(err) {
		return utils.BadRequest(err)
	}
	return err
}

func parseAddress(req *http.Request) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return thor.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func parseProposalID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 0, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (g *Governance) handleGetGovernor(w http.ResponseWriter, _ *http.Request) error {
	gov := builtin.Governor.WithState(g.stater.NewState())
	var (
		res Governor
		err error
	)
	if res.Name, err = gov.Name(); err != nil {
		return err
	}
	if res.Timelock, err = gov.Timelock(); err != nil {
		return err
	}
	if res.Token, err = gov.Token(); err != nil {
		return err
	}
	if res.Guardian, err = gov.Guardian(); err != nil {
		return err
	}
	if res.VotingDelay, err = gov.VotingDelay(); err != nil {
		return err
	}
	if res.VotingPeriod, err = gov.VotingPeriod(); err != nil {
		return err
	}
	if res.ProposalCount, err = gov.ProposalCount(); err != nil {
		return err
	}
	quorum, err := gov.QuorumVotes()
	if err != nil {
		return err
	}
	threshold, err := gov.ProposalThreshold()
	if err != nil {
		return err
	}
	res.QuorumVotes = (*math.HexOrDecimal256)(quorum)
	res.ProposalThreshold = (*math.HexOrDecimal256)(threshold)
	return utils.WriteJSON(w, &res)
}

func (g *Governance) handleGetProposal(w http.ResponseWriter, req *http.Request) error {
	id, err := parseProposalID(req)
	if err != nil {
		return err
	}
	gov := builtin.Governor.WithState(g.stater.NewState())
	p, err := gov.Proposal(id)
	if err != nil {
		return err
	}
	if p == nil {
		return utils.WriteJSON(w, nil)
	}
	st, err := gov.State(id, g.blockContext())
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, convertProposal(p, st))
}

func (g *Governance) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, err := parseProposalID(req)
	if err != nil {
		return err
	}
	voter, err := parseAddress(req)
	if err != nil {
		return err
	}
	r, err := builtin.Governor.WithState(g.stater.NewState()).Receipt(id, voter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{
		HasVoted: r.HasVoted,
		Support:  r.Support,
		Votes:    (*math.HexOrDecimal256)(r.Votes),
	})
}

func (g *Governance) handleGetVotes(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	ledger := builtin.Votes.WithState(g.stater.NewState())
	balance, err := ledger.BalanceOf(addr)
	if err != nil {
		return err
	}
	delegate, err := ledger.Delegates(addr)
	if err != nil {
		return err
	}
	current, err := ledger.GetCurrentVotes(addr)
	if err != nil {
		return err
	}
	n, err := ledger.NumCheckpoints(addr)
	if err != nil {
		return err
	}
	nonce, err := ledger.Nonces(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Votes{
		Balance:        (*math.HexOrDecimal256)(balance),
		Delegate:       delegate,
		CurrentVotes:   (*math.HexOrDecimal256)(current),
		NumCheckpoints: n,
		Nonce:          (*math.HexOrDecimal256)(nonce),
	})
}

func (g *Governance) handleGetPriorVotes(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	num, err := strconv.ParseUint(mux.Vars(req)["block"], 0, 32)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "block"))
	}
	// checkpoints up to the best block are final
	current := g.repo.BestBlock().Number() + 1
	votes, err := builtin.Votes.WithState(g.stater.NewState()).GetPriorVotes(addr, num, current)
	if err != nil {
		return viewError(err)
	}
	return utils.WriteJSON(w, &PriorVotes{
		BlockNumber: uint32(num),
		Votes:       (*math.HexOrDecimal256)(votes),
	})
}

func (g *Governance) handleGetStaking(w http.ResponseWriter, _ *http.Request) error {
	s := builtin.Staking.WithState(g.stater.NewState())
	var (
		res Staking
		err error
	)
	if res.Owner, err = s.Owner(); err != nil {
		return err
	}
	if res.ReceiptToken, err = s.ReceiptToken(); err != nil {
		return err
	}
	if res.RewardsDuration, err = s.RewardsDuration(); err != nil {
		return err
	}
	if res.PeriodFinish, err = s.PeriodFinish(); err != nil {
		return err
	}
	total, err := s.TotalSupply()
	if err != nil {
		return err
	}
	rate, err := s.RewardRate()
	if err != nil {
		return err
	}
	res.TotalSupply = (*math.HexOrDecimal256)(total)
	res.RewardRate = (*math.HexOrDecimal256)(rate)
	return utils.WriteJSON(w, &res)
}

func (g *Governance) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	now := g.repo.BestBlock().Timestamp()
	s := builtin.Staking.WithState(g.stater.NewState())
	pos, err := s.Position(addr)
	if err != nil {
		return err
	}
	earned, err := s.Earned(addr, now)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Position{
		Unlocked:   (*math.HexOrDecimal256)(pos.Unlocked),
		Locked:     convertTranches(pos.Locked),
		Unlockable: (*math.HexOrDecimal256)(pos.Unlockable(now)),
		Receipt:    (*math.HexOrDecimal256)(pos.Receipt),
		Earned:     (*math.HexOrDecimal256)(earned),
	})
}

func (g *Governance) handleGetTimelock(w http.ResponseWriter, _ *http.Request) error {
	tl := builtin.Timelock.WithState(g.stater.NewState())
	var (
		res Timelock
		err error
	)
	if res.Admin, err = tl.Admin(); err != nil {
		return err
	}
	if res.PendingAdmin, err = tl.PendingAdmin(); err != nil {
		return err
	}
	if res.Delay, err = tl.Delay(); err != nil {
		return err
	}
	return utils.WriteJSON(w, &res)
}

func (g *Governance) handleGetQueued(w http.ResponseWriter, req *http.Request) error {
	hash, err := thor.ParseBytes32(mux.Vars(req)["hash"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "hash"))
	}
	queued, err := builtin.Timelock.WithState(g.stater.NewState()).QueuedTransactions(hash)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]bool{"queued": queued})
}

// Mount registers the governor, votes, staking and timelock views under root.
func (g *Governance) Mount(root *mux.Router) {
	gov := root.PathPrefix("/governor").Subrouter()
	gov.Path("").
		Methods(http.MethodGet).
		Name("GET /governor").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetGovernor))
	gov.Path("/proposals/{id}").
		Methods(http.MethodGet).
		Name("GET /governor/proposals/{id}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetProposal))
	gov.Path("/proposals/{id}/receipts/{address}").
		Methods(http.MethodGet).
		Name("GET /governor/proposals/{id}/receipts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetReceipt))

	votes := root.PathPrefix("/votes").Subrouter()
	votes.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /votes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetVotes))
	votes.Path("/{address}/prior/{block}").
		Methods(http.MethodGet).
		Name("GET /votes/{address}/prior/{block}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetPriorVotes))

	stake := root.PathPrefix("/staking").Subrouter()
	stake.Path("").
		Methods(http.MethodGet).
		Name("GET /staking").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetStaking))
	stake.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/{address}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetPosition))

	tl := root.PathPrefix("/timelock").Subrouter()
	tl.Path("").
		Methods(http.MethodGet).
		Name("GET /timelock").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetTimelock))
	tl.Path("/queued/{hash}").
		Methods(http.MethodGet).
		Name("GET /timelock/queued/{hash}").
		HandlerFunc(utils.WrapHandlerFunc(g.handleGetQueued))
}
