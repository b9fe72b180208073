// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package votes

import (
	"math/big"

	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/solidity"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

func (l *Ledger) NumCheckpoints(account thor.Address) (uint32, error) {
	return l.numCheckpoints.Get(account)
}

// Checkpoint returns the index-th checkpoint of account, zero valued if absent.
func (l *Ledger) Checkpoint(account thor.Address, index uint32) (*Checkpoint, error) {
	cp, err := l.checkpoints.Get(solidity.AddressIndexKey(account, uint64(index)))
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return &Checkpoint{Votes: new(big.Int)}, nil
	}
	cp.Votes = orZero(cp.Votes)
	return cp, nil
}

// GetCurrentVotes returns the votes of account as of the latest checkpoint.
func (l *Ledger) GetCurrentVotes(account thor.Address) (*big.Int, error) {
	n, err := l.numCheckpoints.Get(account)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return new(big.Int), nil
	}
	cp, err := l.Checkpoint(account, n-1)
	if err != nil {
		return nil, err
	}
	return cp.Votes, nil
}

// GetPriorVotes returns the votes of account as of blockNumber, which must be strictly
// before the current block.
func (l *Ledger) GetPriorVotes(account thor.Address, blockNumber uint64, current uint32) (*big.Int, error) {
	if blockNumber >= uint64(current) {
		return nil, revert(reverts.TemporalGate, "getPriorVotes", "not yet determined")
	}
	block := uint32(blockNumber)

	n, err := l.numCheckpoints.Get(account)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return new(big.Int), nil
	}

	latest, err := l.Checkpoint(account, n-1)
	if err != nil {
		return nil, err
	}
	if latest.FromBlock <= block {
		return latest.Votes, nil
	}
	first, err := l.Checkpoint(account, 0)
	if err != nil {
		return nil, err
	}
	if first.FromBlock > block {
		return new(big.Int), nil
	}

	lower, upper := uint32(0), n-1
	for upper > lower {
		center := upper - (upper-lower)/2
		cp, err := l.Checkpoint(account, center)
		if err != nil {
			return nil, err
		}
		switch {
		case cp.FromBlock == block:
			return cp.Votes, nil
		case cp.FromBlock < block:
			lower = center
		default:
			upper = center - 1
		}
	}
	cp, err := l.Checkpoint(account, lower)
	if err != nil {
		return nil, err
	}
	return cp.Votes, nil
}

func (l *Ledger) moveVotes(env *xenv.Environment, src, dst thor.Address, amount *big.Int) error {
	if src == dst || amount.Sign() == 0 {
		return nil
	}
	if !src.IsZero() {
		old, err := l.GetCurrentVotes(src)
		if err != nil {
			return err
		}
		if old.Cmp(amount) < 0 {
			return revert(reverts.Underflow, "_moveVotes", "vote amount underflows")
		}
		if err := l.writeCheckpoint(env, src, old, new(big.Int).Sub(old, amount)); err != nil {
			return err
		}
	}
	if !dst.IsZero() {
		old, err := l.GetCurrentVotes(dst)
		if err != nil {
			return err
		}
		if err := l.writeCheckpoint(env, dst, old, new(big.Int).Add(old, amount)); err != nil {
			return err
		}
	}
	return nil
}

// writeCheckpoint keeps at most one checkpoint per block, later writes in the same block
// overwrite the last one.
func (l *Ledger) writeCheckpoint(env *xenv.Environment, delegatee thor.Address, oldVotes, newVotes *big.Int) error {
	block := env.BlockContext().Number
	n, err := l.numCheckpoints.Get(delegatee)
	if err != nil {
		return err
	}

	if n > 0 {
		last, err := l.Checkpoint(delegatee, n-1)
		if err != nil {
			return err
		}
		if last.FromBlock == block {
			last.Votes = newVotes
			if err := l.checkpoints.Set(solidity.AddressIndexKey(delegatee, uint64(n-1)), last); err != nil {
				return err
			}
			return env.Log(eventDelegateVotesChanged, []thor.Bytes32{xenv.AddressTopic(delegatee)}, oldVotes, newVotes)
		}
	}

	cp := &Checkpoint{FromBlock: block, Votes: newVotes}
	if err := l.checkpoints.Set(solidity.AddressIndexKey(delegatee, uint64(n)), cp); err != nil {
		return err
	}
	if err := l.numCheckpoints.Set(delegatee, n+1); err != nil {
		return err
	}
	return env.Log(eventDelegateVotesChanged, []thor.Bytes32{xenv.AddressTopic(delegatee)}, oldVotes, newVotes)
}
