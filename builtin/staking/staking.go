// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements deposits with optional annual locks, rewarded continuously and
// represented by receipt tokens of a voting ledger.
package staking

import (
	"math/big"

	"github.com/govstake/govstake/builtin/gen"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/solidity"
	"github.com/govstake/govstake/builtin/votes"
	"github.com/govstake/govstake/log"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

var logger = log.WithContext("pkg", "staking")

var (
	slotOwner                = thor.BytesToBytes32([]byte("owner"))
	slotReceiptToken         = thor.BytesToBytes32([]byte("receipt-token"))
	slotExchangeRate         = thor.BytesToBytes32([]byte("exchange-rate"))
	slotRewardsDuration      = thor.BytesToBytes32([]byte("rewards-duration"))
	slotRewardRate           = thor.BytesToBytes32([]byte("reward-rate"))
	slotRewardPerTokenStored = thor.BytesToBytes32([]byte("reward-per-token"))
	slotLastUpdateTime       = thor.BytesToBytes32([]byte("last-update-time"))
	slotPeriodFinish         = thor.BytesToBytes32([]byte("period-finish"))
	slotTotalSupply          = thor.BytesToBytes32([]byte("total-supply"))
	slotPositions            = thor.BytesToBytes32([]byte("positions"))
)

var (
	contractABI                 = gen.MustLoadABI("Staking")
	eventStaked                 = gen.MustEvent(contractABI, "Staked")
	eventWithdrawn              = gen.MustEvent(contractABI, "Withdrawn")
	eventUnlocked               = gen.MustEvent(contractABI, "Unlocked")
	eventRewardPaid             = gen.MustEvent(contractABI, "RewardPaid")
	eventRewardAdded            = gen.MustEvent(contractABI, "RewardAdded")
	eventRewardsDurationUpdated = gen.MustEvent(contractABI, "RewardsDurationUpdated")
	eventOwnerChanged           = gen.MustEvent(contractABI, "OwnerChanged")
)

// Staking implements native methods of the `Staking` contract.
// Both the staked asset and the reward are the native coin.
type Staking struct {
	addr  thor.Address
	state *state.State

	owner                *solidity.Address
	receiptToken         *solidity.Address
	exchangeRate         *solidity.Raw[*ExchangeRate]
	rewardsDuration      *solidity.Raw[uint64]
	rewardRate           *solidity.Uint256
	rewardPerTokenStored *solidity.Uint256
	lastUpdateTime       *solidity.Raw[uint64]
	periodFinish         *solidity.Raw[uint64]
	totalSupply          *solidity.Uint256
	positions            *solidity.Mapping[thor.Address, *Position]
}

// New creates a staking contract bound to addr.
func New(addr thor.Address, state *state.State) *Staking {
	sctx := solidity.NewContext(addr, state)
	return &Staking{
		addr:                 addr,
		state:                state,
		owner:                solidity.NewAddress(sctx, slotOwner),
		receiptToken:         solidity.NewAddress(sctx, slotReceiptToken),
		exchangeRate:         solidity.NewRaw[*ExchangeRate](sctx, slotExchangeRate),
		rewardsDuration:      solidity.NewRaw[uint64](sctx, slotRewardsDuration),
		rewardRate:           solidity.NewUint256(sctx, slotRewardRate),
		rewardPerTokenStored: solidity.NewUint256(sctx, slotRewardPerTokenStored),
		lastUpdateTime:       solidity.NewRaw[uint64](sctx, slotLastUpdateTime),
		periodFinish:         solidity.NewRaw[uint64](sctx, slotPeriodFinish),
		totalSupply:          solidity.NewUint256(sctx, slotTotalSupply),
		positions:            solidity.NewMapping[thor.Address, *Position](sctx, slotPositions),
	}
}

func (s *Staking) Address() thor.Address { return s.addr }

func revert(kind reverts.Kind, op, reason string) error {
	return reverts.New(kind, "Staking::"+op, reason)
}

// Initialize sets the owner, the receipt token and the reward parameters.
func (s *Staking) Initialize(cfg *Config) error {
	duration, err := s.rewardsDuration.Get()
	if err != nil {
		return err
	}
	if duration != 0 {
		return revert(reverts.StateConflict, "initialize", "already initialized")
	}
	if cfg.RewardsDuration == 0 {
		return revert(reverts.Validation, "initialize", "zero rewards duration")
	}
	rate := cfg.ExchangeRate
	if rate.Num == nil || rate.Den == nil || rate.Num.Sign() <= 0 || rate.Den.Sign() <= 0 {
		return revert(reverts.Validation, "initialize", "invalid exchange rate")
	}
	s.owner.Set(cfg.Owner)
	s.receiptToken.Set(cfg.ReceiptToken)
	if err := s.exchangeRate.Set(&rate); err != nil {
		return err
	}
	logger.Debug("initialized", "address", s.addr, "receipt", cfg.ReceiptToken, "duration", cfg.RewardsDuration)
	return s.rewardsDuration.Set(cfg.RewardsDuration)
}

func (s *Staking) Owner() (thor.Address, error)        { return s.owner.Get() }
func (s *Staking) ReceiptToken() (thor.Address, error) { return s.receiptToken.Get() }
func (s *Staking) RewardsDuration() (uint64, error)    { return s.rewardsDuration.Get() }
func (s *Staking) RewardRate() (*big.Int, error)       { return s.rewardRate.Get() }
func (s *Staking) PeriodFinish() (uint64, error)       { return s.periodFinish.Get() }
func (s *Staking) TotalSupply() (*big.Int, error)      { return s.totalSupply.Get() }

// ExchangeRate returns the receipt tokens minted per staked unit, as a fraction.
func (s *Staking) ExchangeRate() (*ExchangeRate, error) {
	rate, err := s.exchangeRate.Get()
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return &ExchangeRate{Num: new(big.Int), Den: big.NewInt(1)}, nil
	}
	return rate, nil
}

// Position returns the stake of account.
func (s *Staking) Position(account thor.Address) (*Position, error) {
	pos, err := s.positions.Get(account)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return newPosition(), nil
	}
	for _, v := range []**big.Int{&pos.Unlocked, &pos.Receipt, &pos.RewardPerTokenPaid, &pos.Rewards} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
	return pos, nil
}

// BalanceOf returns the staked principal of account, locked or not.
func (s *Staking) BalanceOf(account thor.Address) (*big.Int, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	return pos.Principal(), nil
}

func (s *Staking) UnlockedOf(account thor.Address) (*big.Int, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	return pos.Unlocked, nil
}

func (s *Staking) LockedOf(account thor.Address) (*big.Int, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	return pos.LockedAmount(), nil
}

// UnlockableOf returns the locked amount of account matured at now.
func (s *Staking) UnlockableOf(account thor.Address, now uint64) (*big.Int, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	return pos.Unlockable(now), nil
}

// ReceiptOf returns the receipt tokens minted for the position of account.
func (s *Staking) ReceiptOf(account thor.Address) (*big.Int, error) {
	pos, err := s.Position(account)
	if err != nil {
		return nil, err
	}
	return pos.Receipt, nil
}

func (s *Staking) receiptLedger() (*votes.Ledger, error) {
	addr, err := s.receiptToken.Get()
	if err != nil {
		return nil, err
	}
	return votes.New(addr, s.state), nil
}

func (s *Staking) requireOwner(env *xenv.Environment, op string) error {
	owner, err := s.owner.Get()
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		return revert(reverts.Authorization, op, "caller is not the owner")
	}
	return nil
}

// SetOwner hands the funding admin role over.
func (s *Staking) SetOwner(env *xenv.Environment, newOwner thor.Address) error {
	if err := s.requireOwner(env, "setOwner"); err != nil {
		return err
	}
	s.owner.Set(newOwner)
	return env.Log(eventOwnerChanged, nil, env.Caller(), newOwner)
}

// SetRewardsDuration changes the length of the next reward period.
func (s *Staking) SetRewardsDuration(env *xenv.Environment, duration uint64) error {
	if err := s.requireOwner(env, "setRewardsDuration"); err != nil {
		return err
	}
	finish, err := s.periodFinish.Get()
	if err != nil {
		return err
	}
	if env.BlockContext().Time <= finish {
		return revert(reverts.TemporalGate, "setRewardsDuration",
			"previous rewards period must be complete before changing the duration for the new period")
	}
	if duration == 0 {
		return revert(reverts.Validation, "setRewardsDuration", "zero rewards duration")
	}
	if err := s.rewardsDuration.Set(duration); err != nil {
		return err
	}
	return env.Log(eventRewardsDurationUpdated, nil, new(big.Int).SetUint64(duration))
}
