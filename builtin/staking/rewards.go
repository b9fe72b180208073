// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

var precision = thor.Ether

// LastTimeRewardApplicable returns min(now, periodFinish).
func (s *Staking) LastTimeRewardApplicable(now uint64) (uint64, error) {
	finish, err := s.periodFinish.Get()
	if err != nil {
		return 0, err
	}
	return min(now, finish), nil
}

// RewardPerToken returns the accumulated reward per staked unit, scaled by 1e18.
func (s *Staking) RewardPerToken(now uint64) (*big.Int, error) {
	stored, err := s.rewardPerTokenStored.Get()
	if err != nil {
		return nil, err
	}
	supply, err := s.totalSupply.Get()
	if err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return stored, nil
	}
	applicable, err := s.LastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	last, err := s.lastUpdateTime.Get()
	if err != nil {
		return nil, err
	}
	if applicable <= last {
		return stored, nil
	}
	rate, err := s.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).SetUint64(applicable - last)
	delta.Mul(delta, rate)
	delta.Mul(delta, precision)
	delta.Quo(delta, supply)
	return stored.Add(stored, delta), nil
}

func earnedBy(pos *Position, rewardPerToken *big.Int) *big.Int {
	v := new(big.Int).Sub(rewardPerToken, pos.RewardPerTokenPaid)
	v.Mul(v, pos.Principal())
	v.Quo(v, precision)
	return v.Add(v, pos.Rewards)
}

// Earned returns the reward account could claim at now.
func (s *Staking) Earned(account thor.Address, now uint64) (*big.Int, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	rpt, err := s.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	return earnedBy(pos, rpt), nil
}

// GetRewardForDuration returns the reward paid over a full period at the current rate.
func (s *Staking) GetRewardForDuration() (*big.Int, error) {
	rate, err := s.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	duration, err := s.rewardsDuration.Get()
	if err != nil {
		return nil, err
	}
	return rate.Mul(rate, new(big.Int).SetUint64(duration)), nil
}

// updateReward settles the accumulator at now and, when account is given, the
// account's earned reward. The returned position is the settled one.
func (s *Staking) updateReward(account *thor.Address, now uint64) (*Position, error) {
	rpt, err := s.RewardPerToken(now)
	if err != nil {
		return nil, err
	}
	s.rewardPerTokenStored.Set(rpt)
	applicable, err := s.LastTimeRewardApplicable(now)
	if err != nil {
		return nil, err
	}
	if err := s.lastUpdateTime.Set(applicable); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, nil
	}
	pos, err := s.Position(*account)
	if err != nil {
		return nil, err
	}
	pos.Rewards = earnedBy(pos, rpt)
	pos.RewardPerTokenPaid = rpt
	return pos, nil
}

// NotifyRewardAmount starts a new reward period funded with reward, folding in
// whatever the running period has not paid yet.
func (s *Staking) NotifyRewardAmount(env *xenv.Environment, reward *big.Int) error {
	if err := s.requireOwner(env, "notifyRewardAmount"); err != nil {
		return err
	}
	now := env.BlockContext().Time
	if _, err := s.updateReward(nil, now); err != nil {
		return err
	}
	duration, err := s.rewardsDuration.Get()
	if err != nil {
		return err
	}
	finish, err := s.periodFinish.Get()
	if err != nil {
		return err
	}
	d := new(big.Int).SetUint64(duration)
	rate := new(big.Int).Set(reward)
	if now < finish {
		current, err := s.rewardRate.Get()
		if err != nil {
			return err
		}
		leftover := current.Mul(current, new(big.Int).SetUint64(finish-now))
		rate.Add(rate, leftover)
	}
	rate.Quo(rate, d)

	balance, err := s.state.GetBalance(s.addr)
	if err != nil {
		return err
	}
	supply, err := s.totalSupply.Get()
	if err != nil {
		return err
	}
	available := balance.Sub(balance, supply)
	if new(big.Int).Mul(rate, d).Cmp(available) > 0 {
		return revert(reverts.Underflow, "notifyRewardAmount", "provided reward too high")
	}

	s.rewardRate.Set(rate)
	if err := s.lastUpdateTime.Set(now); err != nil {
		return err
	}
	if err := s.periodFinish.Set(now + duration); err != nil {
		return err
	}
	logger.Debug("reward period started", "reward", reward, "rate", rate, "finish", now+duration)
	return env.Log(eventRewardAdded, nil, reward)
}

// pay sends amount of native coin from the contract to account.
func (s *Staking) pay(to thor.Address, amount *big.Int, op string) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.state.Transfer(s.addr, to, amount); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return revert(reverts.Underflow, op, "insufficient contract balance")
		}
		return err
	}
	return nil
}

// GetReward pays out the caller's accrued reward.
func (s *Staking) GetReward(env *xenv.Environment) error {
	caller := env.Caller()
	pos, err := s.updateReward(&caller, env.BlockContext().Time)
	if err != nil {
		return err
	}
	return s.claim(env, caller, pos, "getReward")
}

func (s *Staking) claim(env *xenv.Environment, account thor.Address, pos *Position, op string) error {
	reward := pos.Rewards
	pos.Rewards = new(big.Int)
	if err := s.positions.Set(account, pos); err != nil {
		return err
	}
	if reward.Sign() == 0 {
		return nil
	}
	if err := s.pay(account, reward, op); err != nil {
		return err
	}
	return env.Log(eventRewardPaid, []thor.Bytes32{xenv.AddressTopic(account)}, reward)
}
