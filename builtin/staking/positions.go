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

// Locks returns the locked tranches of account, oldest first.
func (s *Staking) Locks(account thor.Address) ([]Tranche, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	return pos.Locked, nil
}

// Deposit stakes amount of the caller's coin for beneficiary and mints the receipt.
func (s *Staking) Deposit(env *xenv.Environment, amount *big.Int, lockAnnual bool, beneficiary thor.Address) error {
	if amount.Sign() <= 0 {
		return revert(reverts.Validation, "deposit", "cannot stake 0")
	}
	if beneficiary.IsZero() {
		return revert(reverts.Validation, "deposit", "invalid beneficiary")
	}
	now := env.BlockContext().Time
	pos, err := s.updateReward(&beneficiary, now)
	if err != nil {
		return err
	}

	if err := s.state.Transfer(env.Caller(), s.addr, amount); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return revert(reverts.Underflow, "deposit", "amount exceeds balance")
		}
		return err
	}

	var unlockTime uint64
	if lockAnnual {
		unlockTime = now + thor.LockDuration
		pos.Locked = append(pos.Locked, Tranche{Amount: new(big.Int).Set(amount), UnlockTime: unlockTime})
	} else {
		pos.Unlocked = new(big.Int).Add(pos.Unlocked, amount)
	}
	rate, err := s.ExchangeRate()
	if err != nil {
		return err
	}
	receipt := rate.Receipt(amount)
	pos.Receipt = new(big.Int).Add(pos.Receipt, receipt)
	if err := s.positions.Set(beneficiary, pos); err != nil {
		return err
	}
	if err := s.totalSupply.Add(amount); err != nil {
		return err
	}

	if receipt.Sign() > 0 {
		token, err := s.receiptLedger()
		if err != nil {
			return err
		}
		if err := token.Mint(env.Enter(token.Address()), beneficiary, receipt); err != nil {
			return err
		}
	}
	logger.Debug("staked", "user", env.Caller(), "beneficiary", beneficiary, "amount", amount, "locked", lockAnnual)
	return env.Log(eventStaked,
		[]thor.Bytes32{xenv.AddressTopic(env.Caller()), xenv.AddressTopic(beneficiary)},
		amount, lockAnnual, new(big.Int).SetUint64(unlockTime))
}

// Unlock releases up to amount from the caller's matured tranches into the unlocked balance.
func (s *Staking) Unlock(env *xenv.Environment, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return revert(reverts.Validation, "unlock", "cannot unlock 0")
	}
	caller := env.Caller()
	now := env.BlockContext().Time
	pos, err := s.updateReward(&caller, now)
	if err != nil {
		return err
	}
	if pos.Unlockable(now).Cmp(amount) < 0 {
		if pos.LockedAmount().Cmp(amount) < 0 {
			return revert(reverts.Underflow, "unlock", "not enough tokens to unlock")
		}
		return revert(reverts.TemporalGate, "unlock", "not enough tokens to unlock")
	}
	pos.release(amount, now)
	if err := s.positions.Set(caller, pos); err != nil {
		return err
	}
	return env.Log(eventUnlocked, []thor.Bytes32{xenv.AddressTopic(caller)}, amount)
}

// Withdraw returns amount of unlocked principal to the caller, burns the matching
// share of the receipt and pays the accrued reward.
func (s *Staking) Withdraw(env *xenv.Environment, amount *big.Int) error {
	caller := env.Caller()
	pos, err := s.updateReward(&caller, env.BlockContext().Time)
	if err != nil {
		return err
	}
	return s.withdraw(env, caller, pos, amount)
}

func (s *Staking) withdraw(env *xenv.Environment, caller thor.Address, pos *Position, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return revert(reverts.Validation, "withdraw", "cannot withdraw 0")
	}
	if pos.Unlocked.Cmp(amount) < 0 {
		return revert(reverts.Underflow, "withdraw", "amount exceeds unlocked balance")
	}

	burn := new(big.Int).Mul(pos.Receipt, amount)
	burn.Quo(burn, pos.Principal())
	pos.Unlocked = new(big.Int).Sub(pos.Unlocked, amount)
	pos.Receipt = new(big.Int).Sub(pos.Receipt, burn)
	reward := pos.Rewards
	pos.Rewards = new(big.Int)
	if err := s.positions.Set(caller, pos); err != nil {
		return err
	}
	if err := s.totalSupply.Sub(amount); err != nil {
		return err
	}

	if burn.Sign() > 0 {
		token, err := s.receiptLedger()
		if err != nil {
			return err
		}
		if err := token.Burn(env.Enter(token.Address()), caller, burn); err != nil {
			return err
		}
	}
	if err := s.pay(caller, amount, "withdraw"); err != nil {
		return err
	}
	if err := env.Log(eventWithdrawn, []thor.Bytes32{xenv.AddressTopic(caller)}, amount); err != nil {
		return err
	}
	if reward.Sign() == 0 {
		return nil
	}
	if err := s.pay(caller, reward, "withdraw"); err != nil {
		return err
	}
	return env.Log(eventRewardPaid, []thor.Bytes32{xenv.AddressTopic(caller)}, reward)
}

// Exit withdraws the whole unlocked balance and claims the reward.
func (s *Staking) Exit(env *xenv.Environment) error {
	caller := env.Caller()
	pos, err := s.updateReward(&caller, env.BlockContext().Time)
	if err != nil {
		return err
	}
	if pos.Unlocked.Sign() == 0 {
		return s.claim(env, caller, pos, "exit")
	}
	return s.withdraw(env, caller, pos, new(big.Int).Set(pos.Unlocked))
}
