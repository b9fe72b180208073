// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govstake/govstake/builtin/governor"
	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/builtin/timelock"
	"github.com/govstake/govstake/builtin/votes"
	"github.com/govstake/govstake/cry"
	"github.com/govstake/govstake/thor"
)

type transactionArgs struct {
	Target    common.Address
	Value     *big.Int
	Signature string
	Data      []byte
	Eta       *big.Int
}

func (a *transactionArgs) transaction(scope string) (*timelock.Transaction, error) {
	if !a.Eta.IsUint64() {
		return nil, reverts.New(reverts.Validation, scope, "eta overflows")
	}
	return &timelock.Transaction{
		Target:    thor.Address(a.Target),
		Value:     a.Value,
		Signature: a.Signature,
		Data:      a.Data,
		Eta:       a.Eta.Uint64(),
	}, nil
}

func one[T any](v T, err error) ([]any, error) {
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func none(err error) ([]any, error) {
	return nil, err
}

func init() {
	nativeMethods := []*nativeMethod{
		Votes.impl("name", func(env *env) ([]any, error) {
			return one(Votes.WithState(env.State()).Name())
		}),
		Votes.impl("symbol", func(env *env) ([]any, error) {
			return one(Votes.WithState(env.State()).Symbol())
		}),
		Votes.impl("decimals", func(env *env) ([]any, error) {
			return []any{votes.Decimals}, nil
		}),
		Votes.impl("totalSupply", func(env *env) ([]any, error) {
			return one(Votes.WithState(env.State()).TotalSupply())
		}),
		Votes.impl("balanceOf", func(env *env) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			return one(Votes.WithState(env.State()).BalanceOf(thor.Address(account)))
		}),
		Votes.impl("transfer", func(env *env) ([]any, error) {
			var args struct {
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			if err := Votes.WithState(env.State()).Transfer(env.Environment, thor.Address(args.To), args.Amount); err != nil {
				return nil, err
			}
			return []any{true}, nil
		}),
		Votes.impl("mint", func(env *env) ([]any, error) {
			var args struct {
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			return none(Votes.WithState(env.State()).Mint(env.Environment, thor.Address(args.To), args.Amount))
		}),
		Votes.impl("burn", func(env *env) ([]any, error) {
			var args struct {
				From   common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			return none(Votes.WithState(env.State()).Burn(env.Environment, thor.Address(args.From), args.Amount))
		}),
		Votes.impl("minter", func(env *env) ([]any, error) {
			return one(Votes.WithState(env.State()).Minter())
		}),
		Votes.impl("setMinter", func(env *env) ([]any, error) {
			var newMinter common.Address
			env.ParseArgs(&newMinter)
			return none(Votes.WithState(env.State()).SetMinter(env.Environment, thor.Address(newMinter)))
		}),
		Votes.impl("delegates", func(env *env) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			return one(Votes.WithState(env.State()).Delegates(thor.Address(account)))
		}),
		Votes.impl("delegate", func(env *env) ([]any, error) {
			var delegatee common.Address
			env.ParseArgs(&delegatee)
			return none(Votes.WithState(env.State()).Delegate(env.Environment, thor.Address(delegatee)))
		}),
		Votes.impl("delegateBySig", func(env *env) ([]any, error) {
			var args struct {
				Delegatee common.Address
				Nonce     *big.Int
				Expiry    *big.Int
				V         uint8
				R         common.Hash
				S         common.Hash
			}
			env.ParseArgs(&args)
			d := &signed.Delegation{
				Delegatee: thor.Address(args.Delegatee),
				Nonce:     args.Nonce,
				Expiry:    args.Expiry,
			}
			sig := cry.JoinSignature(args.V, thor.Bytes32(args.R), thor.Bytes32(args.S))
			return none(Votes.WithState(env.State()).DelegateBySig(env.Environment, env.recoverer, d, sig))
		}),
		Votes.impl("getCurrentVotes", func(env *env) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			return one(Votes.WithState(env.State()).GetCurrentVotes(thor.Address(account)))
		}),
		Votes.impl("getPriorVotes", func(env *env) ([]any, error) {
			var args struct {
				Account     common.Address
				BlockNumber *big.Int
			}
			env.ParseArgs(&args)
			return one(Votes.WithState(env.State()).GetPriorVotes(
				thor.Address(args.Account), clamp(args.BlockNumber), env.BlockContext().Number))
		}),
		Votes.impl("numCheckpoints", func(env *env) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			return one(Votes.WithState(env.State()).NumCheckpoints(thor.Address(account)))
		}),
		Votes.impl("checkpoints", func(env *env) ([]any, error) {
			var args struct {
				Account common.Address
				Index   uint32
			}
			env.ParseArgs(&args)
			cp, err := Votes.WithState(env.State()).Checkpoint(thor.Address(args.Account), args.Index)
			if err != nil {
				return nil, err
			}
			return []any{cp.FromBlock, cp.Votes}, nil
		}),
		Votes.impl("nonces", func(env *env) ([]any, error) {
			var account common.Address
			env.ParseArgs(&account)
			return one(Votes.WithState(env.State()).Nonces(thor.Address(account)))
		}),
		Votes.impl("DOMAIN_SEPARATOR", func(env *env) ([]any, error) {
			return one(Votes.WithState(env.State()).DomainSeparator())
		}),

		Timelock.impl("admin", func(env *env) ([]any, error) {
			return one(Timelock.WithState(env.State()).Admin())
		}),
		Timelock.impl("pendingAdmin", func(env *env) ([]any, error) {
			return one(Timelock.WithState(env.State()).PendingAdmin())
		}),
		Timelock.impl("delay", func(env *env) ([]any, error) {
			delay, err := Timelock.WithState(env.State()).Delay()
			return one(u64(delay), err)
		}),
		Timelock.impl("GRACE_PERIOD", func(env *env) ([]any, error) {
			return []any{u64(thor.GracePeriod)}, nil
		}),
		Timelock.impl("MINIMUM_DELAY", func(env *env) ([]any, error) {
			return []any{u64(thor.MinimumDelay)}, nil
		}),
		Timelock.impl("MAXIMUM_DELAY", func(env *env) ([]any, error) {
			return []any{u64(thor.MaximumDelay)}, nil
		}),
		Timelock.impl("queuedTransactions", func(env *env) ([]any, error) {
			var hash common.Hash
			env.ParseArgs(&hash)
			return one(Timelock.WithState(env.State()).QueuedTransactions(thor.Bytes32(hash)))
		}),
		Timelock.impl("setDelay", func(env *env) ([]any, error) {
			var delay *big.Int
			env.ParseArgs(&delay)
			return none(Timelock.WithState(env.State()).SetDelay(env.Environment, clamp(delay)))
		}),
		Timelock.impl("setPendingAdmin", func(env *env) ([]any, error) {
			var pendingAdmin common.Address
			env.ParseArgs(&pendingAdmin)
			return none(Timelock.WithState(env.State()).SetPendingAdmin(env.Environment, thor.Address(pendingAdmin)))
		}),
		Timelock.impl("acceptAdmin", func(env *env) ([]any, error) {
			return none(Timelock.WithState(env.State()).AcceptAdmin(env.Environment))
		}),
		Timelock.impl("queueTransaction", func(env *env) ([]any, error) {
			var args transactionArgs
			env.ParseArgs(&args)
			tx, err := args.transaction("Timelock::queueTransaction")
			if err != nil {
				return nil, err
			}
			return one(Timelock.WithState(env.State()).QueueTransaction(env.Environment, tx))
		}),
		Timelock.impl("cancelTransaction", func(env *env) ([]any, error) {
			var args transactionArgs
			env.ParseArgs(&args)
			tx, err := args.transaction("Timelock::cancelTransaction")
			if err != nil {
				return nil, err
			}
			return none(Timelock.WithState(env.State()).CancelTransaction(env.Environment, tx))
		}),
		Timelock.impl("executeTransaction", func(env *env) ([]any, error) {
			var args transactionArgs
			env.ParseArgs(&args)
			tx, err := args.transaction("Timelock::executeTransaction")
			if err != nil {
				return nil, err
			}
			return one(Timelock.WithState(env.State()).ExecuteTransaction(env.Environment, tx))
		}),
	}
	nativeMethods = append(nativeMethods, governorMethods()...)
	nativeMethods = append(nativeMethods, stakingMethods()...)

	for _, nmethod := range nativeMethods {
		methodMap[methodKey{
			nmethod.contract.Address, nmethod.method.ID(),
		}] = nmethod
	}
}

func proposalOutput(p *governor.Proposal) []any {
	if p == nil {
		// zero values, never nil pointers, abi packing panics on them
		return []any{new(big.Int), thor.Address{}, new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int), false, false}
	}
	return []any{
		u64(p.ID),
		p.Proposer,
		u64(p.Eta),
		u64(uint64(p.StartBlock)),
		u64(uint64(p.EndBlock)),
		p.ForVotes,
		p.AgainstVotes,
		p.Canceled,
		p.Executed,
	}
}

func governorMethods() []*nativeMethod {
	return []*nativeMethod{
		Governor.impl("name", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).Name())
		}),
		Governor.impl("quorumVotes", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).QuorumVotes())
		}),
		Governor.impl("proposalThreshold", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).ProposalThreshold())
		}),
		Governor.impl("proposalMaxOperations", func(env *env) ([]any, error) {
			return []any{big.NewInt(thor.MaxOperations)}, nil
		}),
		Governor.impl("votingDelay", func(env *env) ([]any, error) {
			delay, err := Governor.WithState(env.State()).VotingDelay()
			return one(u64(uint64(delay)), err)
		}),
		Governor.impl("votingPeriod", func(env *env) ([]any, error) {
			period, err := Governor.WithState(env.State()).VotingPeriod()
			return one(u64(uint64(period)), err)
		}),
		Governor.impl("timelock", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).Timelock())
		}),
		Governor.impl("token", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).Token())
		}),
		Governor.impl("guardian", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).Guardian())
		}),
		Governor.impl("proposalCount", func(env *env) ([]any, error) {
			count, err := Governor.WithState(env.State()).ProposalCount()
			return one(u64(count), err)
		}),
		Governor.impl("latestProposalIds", func(env *env) ([]any, error) {
			var proposer common.Address
			env.ParseArgs(&proposer)
			id, err := Governor.WithState(env.State()).LatestProposalIDs(thor.Address(proposer))
			return one(u64(id), err)
		}),
		Governor.impl("proposals", func(env *env) ([]any, error) {
			var id *big.Int
			env.ParseArgs(&id)
			p, err := Governor.WithState(env.State()).Proposal(clamp(id))
			if err != nil {
				return nil, err
			}
			return proposalOutput(p), nil
		}),
		Governor.impl("propose", func(env *env) ([]any, error) {
			var args struct {
				Targets     []common.Address
				Values      []*big.Int
				Signatures  []string
				Calldatas   [][]byte
				Description string
			}
			env.ParseArgs(&args)
			targets := make([]thor.Address, len(args.Targets))
			for i, t := range args.Targets {
				targets[i] = thor.Address(t)
			}
			actions, err := governor.ZipActions(targets, args.Values, args.Signatures, args.Calldatas)
			if err != nil {
				return nil, err
			}
			id, err := Governor.WithState(env.State()).Propose(env.Environment, actions, args.Description)
			return one(u64(id), err)
		}),
		Governor.impl("queue", func(env *env) ([]any, error) {
			var id *big.Int
			env.ParseArgs(&id)
			return none(Governor.WithState(env.State()).Queue(env.Environment, clamp(id)))
		}),
		Governor.impl("execute", func(env *env) ([]any, error) {
			var id *big.Int
			env.ParseArgs(&id)
			return none(Governor.WithState(env.State()).Execute(env.Environment, clamp(id)))
		}),
		Governor.impl("cancel", func(env *env) ([]any, error) {
			var id *big.Int
			env.ParseArgs(&id)
			return none(Governor.WithState(env.State()).Cancel(env.Environment, clamp(id)))
		}),
		Governor.impl("getActions", func(env *env) ([]any, error) {
			var id *big.Int
			env.ParseArgs(&id)
			targets, values, signatures, calldatas, err := Governor.WithState(env.State()).GetActions(clamp(id))
			if err != nil {
				return nil, err
			}
			return []any{targets, values, signatures, calldatas}, nil
		}),
		Governor.impl("getReceipt", func(env *env) ([]any, error) {
			var args struct {
				ProposalId *big.Int //nolint:revive
				Voter      common.Address
			}
			env.ParseArgs(&args)
			r, err := Governor.WithState(env.State()).Receipt(clamp(args.ProposalId), thor.Address(args.Voter))
			if err != nil {
				return nil, err
			}
			return []any{r.HasVoted, r.Support, r.Votes}, nil
		}),
		Governor.impl("state", func(env *env) ([]any, error) {
			var id *big.Int
			env.ParseArgs(&id)
			state, err := Governor.WithState(env.State()).State(clamp(id), env.BlockContext())
			return one(uint8(state), err)
		}),
		Governor.impl("castVote", func(env *env) ([]any, error) {
			var args struct {
				ProposalId *big.Int //nolint:revive
				Support    bool
			}
			env.ParseArgs(&args)
			return none(Governor.WithState(env.State()).CastVote(env.Environment, clamp(args.ProposalId), args.Support))
		}),
		Governor.impl("castVoteBySig", func(env *env) ([]any, error) {
			var args struct {
				ProposalId *big.Int //nolint:revive
				Support    bool
				V          uint8
				R          common.Hash
				S          common.Hash
			}
			env.ParseArgs(&args)
			ballot := &signed.Ballot{ProposalID: args.ProposalId, Support: args.Support}
			sig := cry.JoinSignature(args.V, thor.Bytes32(args.R), thor.Bytes32(args.S))
			return none(Governor.WithState(env.State()).CastVoteBySig(env.Environment, env.recoverer, ballot, sig))
		}),
		Governor.impl("setProposalThreshold", func(env *env) ([]any, error) {
			var value *big.Int
			env.ParseArgs(&value)
			return none(Governor.WithState(env.State()).SetProposalThreshold(env.Environment, value))
		}),
		Governor.impl("setQuorumVotes", func(env *env) ([]any, error) {
			var value *big.Int
			env.ParseArgs(&value)
			return none(Governor.WithState(env.State()).SetQuorumVotes(env.Environment, value))
		}),
		Governor.impl("setVotingDelay", func(env *env) ([]any, error) {
			var value *big.Int
			env.ParseArgs(&value)
			return none(Governor.WithState(env.State()).SetVotingDelay(env.Environment, clamp(value)))
		}),
		Governor.impl("setVotingPeriod", func(env *env) ([]any, error) {
			var value *big.Int
			env.ParseArgs(&value)
			return none(Governor.WithState(env.State()).SetVotingPeriod(env.Environment, clamp(value)))
		}),
		Governor.impl("setGuardian", func(env *env) ([]any, error) {
			var guardian common.Address
			env.ParseArgs(&guardian)
			return none(Governor.WithState(env.State()).SetGuardian(env.Environment, thor.Address(guardian)))
		}),
		Governor.impl("__acceptAdmin", func(env *env) ([]any, error) {
			return none(Governor.WithState(env.State()).AcceptAdmin(env.Environment))
		}),
		Governor.impl("__abdicate", func(env *env) ([]any, error) {
			return none(Governor.WithState(env.State()).Abdicate(env.Environment))
		}),
		Governor.impl("__queueSetTimelockPendingAdmin", func(env *env) ([]any, error) {
			var args struct {
				NewPendingAdmin common.Address
				Eta             *big.Int
			}
			env.ParseArgs(&args)
			if !args.Eta.IsUint64() {
				return nil, reverts.New(reverts.Validation, "Governor::__queueSetTimelockPendingAdmin", "eta overflows")
			}
			return none(Governor.WithState(env.State()).QueueSetTimelockPendingAdmin(
				env.Environment, thor.Address(args.NewPendingAdmin), args.Eta.Uint64()))
		}),
		Governor.impl("__executeSetTimelockPendingAdmin", func(env *env) ([]any, error) {
			var args struct {
				NewPendingAdmin common.Address
				Eta             *big.Int
			}
			env.ParseArgs(&args)
			if !args.Eta.IsUint64() {
				return nil, reverts.New(reverts.Validation, "Governor::__executeSetTimelockPendingAdmin", "eta overflows")
			}
			return none(Governor.WithState(env.State()).ExecuteSetTimelockPendingAdmin(
				env.Environment, thor.Address(args.NewPendingAdmin), args.Eta.Uint64()))
		}),
		Governor.impl("DOMAIN_SEPARATOR", func(env *env) ([]any, error) {
			return one(Governor.WithState(env.State()).DomainSeparator())
		}),
	}
}

func stakingMethods() []*nativeMethod {
	account := func(env *env) thor.Address {
		var account common.Address
		env.ParseArgs(&account)
		return thor.Address(account)
	}
	return []*nativeMethod{
		Staking.impl("deposit", func(env *env) ([]any, error) {
			var args struct {
				Amount      *big.Int
				LockAnnual  bool
				Beneficiary common.Address
			}
			env.ParseArgs(&args)
			return none(Staking.WithState(env.State()).Deposit(env.Environment, args.Amount, args.LockAnnual, thor.Address(args.Beneficiary)))
		}),
		Staking.impl("withdraw", func(env *env) ([]any, error) {
			var amount *big.Int
			env.ParseArgs(&amount)
			return none(Staking.WithState(env.State()).Withdraw(env.Environment, amount))
		}),
		Staking.impl("unlock", func(env *env) ([]any, error) {
			var amount *big.Int
			env.ParseArgs(&amount)
			return none(Staking.WithState(env.State()).Unlock(env.Environment, amount))
		}),
		Staking.impl("getReward", func(env *env) ([]any, error) {
			return none(Staking.WithState(env.State()).GetReward(env.Environment))
		}),
		Staking.impl("exit", func(env *env) ([]any, error) {
			return none(Staking.WithState(env.State()).Exit(env.Environment))
		}),
		Staking.impl("earned", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).Earned(account(env), env.Now()))
		}),
		Staking.impl("balanceOf", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).BalanceOf(account(env)))
		}),
		Staking.impl("unlockedOf", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).UnlockedOf(account(env)))
		}),
		Staking.impl("lockedOf", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).LockedOf(account(env)))
		}),
		Staking.impl("unlockableOf", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).UnlockableOf(account(env), env.Now()))
		}),
		Staking.impl("receiptOf", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).ReceiptOf(account(env)))
		}),
		Staking.impl("locks", func(env *env) ([]any, error) {
			locks, err := Staking.WithState(env.State()).Locks(account(env))
			if err != nil {
				return nil, err
			}
			amounts := make([]*big.Int, 0, len(locks))
			unlockTimes := make([]*big.Int, 0, len(locks))
			for _, l := range locks {
				amounts = append(amounts, l.Amount)
				unlockTimes = append(unlockTimes, u64(l.UnlockTime))
			}
			return []any{amounts, unlockTimes}, nil
		}),
		Staking.impl("totalSupply", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).TotalSupply())
		}),
		Staking.impl("rewardRate", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).RewardRate())
		}),
		Staking.impl("rewardPerToken", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).RewardPerToken(env.Now()))
		}),
		Staking.impl("lastTimeRewardApplicable", func(env *env) ([]any, error) {
			last, err := Staking.WithState(env.State()).LastTimeRewardApplicable(env.Now())
			return one(u64(last), err)
		}),
		Staking.impl("periodFinish", func(env *env) ([]any, error) {
			finish, err := Staking.WithState(env.State()).PeriodFinish()
			return one(u64(finish), err)
		}),
		Staking.impl("rewardsDuration", func(env *env) ([]any, error) {
			duration, err := Staking.WithState(env.State()).RewardsDuration()
			return one(u64(duration), err)
		}),
		Staking.impl("getRewardForDuration", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).GetRewardForDuration())
		}),
		Staking.impl("exchangeRate", func(env *env) ([]any, error) {
			rate, err := Staking.WithState(env.State()).ExchangeRate()
			if err != nil {
				return nil, err
			}
			return []any{rate.Num, rate.Den}, nil
		}),
		Staking.impl("LOCK_DURATION", func(env *env) ([]any, error) {
			return []any{u64(thor.LockDuration)}, nil
		}),
		Staking.impl("owner", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).Owner())
		}),
		Staking.impl("receiptToken", func(env *env) ([]any, error) {
			return one(Staking.WithState(env.State()).ReceiptToken())
		}),
		Staking.impl("notifyRewardAmount", func(env *env) ([]any, error) {
			var reward *big.Int
			env.ParseArgs(&reward)
			return none(Staking.WithState(env.State()).NotifyRewardAmount(env.Environment, reward))
		}),
		Staking.impl("setRewardsDuration", func(env *env) ([]any, error) {
			var duration *big.Int
			env.ParseArgs(&duration)
			return none(Staking.WithState(env.State()).SetRewardsDuration(env.Environment, clamp(duration)))
		}),
		Staking.impl("setOwner", func(env *env) ([]any, error) {
			var newOwner common.Address
			env.ParseArgs(&newOwner)
			return none(Staking.WithState(env.State()).SetOwner(env.Environment, thor.Address(newOwner)))
		}),
	}
}
