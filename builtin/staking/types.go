// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/govstake/govstake/thor"
)

// Tranche is a locked deposit.
type Tranche struct {
	Amount     *big.Int
	UnlockTime uint64
}

// Position is the stake of one account.
type Position struct {
	Unlocked           *big.Int
	Locked             []Tranche
	Receipt            *big.Int
	RewardPerTokenPaid *big.Int
	Rewards            *big.Int
}

func newPosition() *Position {
	return &Position{
		Unlocked:           new(big.Int),
		Receipt:            new(big.Int),
		RewardPerTokenPaid: new(big.Int),
		Rewards:            new(big.Int),
	}
}

// LockedAmount sums the locked tranches.
func (p *Position) LockedAmount() *big.Int {
	sum := new(big.Int)
	for _, t := range p.Locked {
		sum.Add(sum, t.Amount)
	}
	return sum
}

// Principal is everything staked, locked or not.
func (p *Position) Principal() *big.Int {
	sum := p.LockedAmount()
	return sum.Add(sum, p.Unlocked)
}

// Unlockable sums the tranches matured at now.
func (p *Position) Unlockable(now uint64) *big.Int {
	sum := new(big.Int)
	for _, t := range p.Locked {
		if t.UnlockTime <= now {
			sum.Add(sum, t.Amount)
		}
	}
	return sum
}

// release moves amount out of the matured tranches, oldest first.
func (p *Position) release(amount *big.Int, now uint64) {
	remaining := new(big.Int).Set(amount)
	kept := p.Locked[:0]
	for _, t := range p.Locked {
		if remaining.Sign() > 0 && t.UnlockTime <= now {
			take := t.Amount
			if take.Cmp(remaining) > 0 {
				take = remaining
			}
			t.Amount = new(big.Int).Sub(t.Amount, take)
			remaining = new(big.Int).Sub(remaining, take)
		}
		if t.Amount.Sign() > 0 {
			kept = append(kept, t)
		}
	}
	p.Locked = kept
	p.Unlocked = new(big.Int).Add(p.Unlocked, amount)
}

// ExchangeRate converts staked amounts into receipt tokens, receipt = amount * Num / Den.
type ExchangeRate struct {
	Num *big.Int
	Den *big.Int
}

func (r *ExchangeRate) Receipt(amount *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, r.Num)
	return v.Quo(v, r.Den)
}

// Config initializes a staking contract.
type Config struct {
	Owner           thor.Address
	ReceiptToken    thor.Address
	RewardsDuration uint64
	ExchangeRate    ExchangeRate
}
