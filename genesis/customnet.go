// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/builtin/governor"
	"github.com/govstake/govstake/builtin/staking"
	"github.com/govstake/govstake/builtin/votes"
	"github.com/govstake/govstake/tx"
	"github.com/govstake/govstake/xenv"
)

// NewCustomNet create custom network genesis.
func NewCustomNet(cfg *Config) (*Genesis, error) {
	return newGenesis(cfg, "customnet")
}

func newGenesis(cfg *Config, name string) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	caps, _ := cfg.Votes.capabilities()
	chainID := new(big.Int).SetUint64(cfg.ChainID)

	allocations := make([]votes.Allocation, 0, len(cfg.Votes.Allocations))
	for _, a := range cfg.Votes.Allocations {
		allocations = append(allocations, votes.Allocation{
			Account:      a.Account,
			Amount:       a.Amount.big(),
			SelfDelegate: a.SelfDelegate,
		})
	}

	builder := new(Builder).
		Timestamp(cfg.LaunchTime).
		State(func(env *xenv.Environment) error {
			st := env.State()
			for _, a := range cfg.Accounts {
				if err := st.AddBalance(a.Address, a.Balance.big()); err != nil {
					return err
				}
			}
			if reward := cfg.Staking.InitialReward.big(); reward != nil {
				if err := st.AddBalance(builtin.Staking.Address, reward); err != nil {
					return err
				}
			}
			return nil
		}).
		State(func(env *xenv.Environment) error {
			// staking mints and burns receipts, which carry the voting power
			return builtin.Votes.WithState(env.State()).Initialize(env.Enter(builtin.Votes.Address), &votes.Config{
				Name:         cfg.Votes.Name,
				Symbol:       cfg.Votes.Symbol,
				ChainID:      chainID,
				Minter:       builtin.Staking.Address,
				Capabilities: caps,
				Allocations:  allocations,
			})
		}).
		State(func(env *xenv.Environment) error {
			// the governor administrates the timelock
			return builtin.Timelock.WithState(env.State()).Initialize(builtin.Governor.Address, cfg.Timelock.Delay)
		}).
		State(func(env *xenv.Environment) error {
			g := cfg.Governor
			return builtin.Governor.WithState(env.State()).Initialize(&governor.Config{
				Name:              g.Name,
				ChainID:           chainID,
				Timelock:          builtin.Timelock.Address,
				Token:             builtin.Votes.Address,
				Guardian:          g.Guardian,
				QuorumVotes:       g.QuorumVotes.big(),
				ProposalThreshold: g.ProposalThreshold.big(),
				VotingDelay:       g.VotingDelay,
				VotingPeriod:      g.VotingPeriod,
				Bounds: governor.Bounds{
					MinProposalThreshold: g.MinProposalThreshold.big(),
					MaxProposalThreshold: g.MaxProposalThreshold.big(),
					MinQuorumVotes:       g.MinQuorumVotes.big(),
					MaxQuorumVotes:       g.MaxQuorumVotes.big(),
				},
			})
		}).
		State(func(env *xenv.Environment) error {
			return builtin.Staking.WithState(env.State()).Initialize(&staking.Config{
				Owner:           cfg.Staking.Owner,
				ReceiptToken:    builtin.Votes.Address,
				RewardsDuration: cfg.Staking.RewardsDuration,
				ExchangeRate:    cfg.Staking.exchangeRate(),
			})
		})

	if reward := cfg.Staking.InitialReward.big(); reward != nil && reward.Sign() > 0 {
		method, _ := builtin.Staking.ABI.MethodByName("notifyRewardAmount")
		data, err := method.EncodeInput(reward)
		if err != nil {
			return nil, errors.Wrap(err, "encode notifyRewardAmount")
		}
		builder.Call(&tx.Call{
			Origin: cfg.Staking.Owner,
			To:     builtin.Staking.Address,
			Value:  new(big.Int),
			Data:   data,
		})
	}

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, name}, nil
}
