// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package votes

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/builtin/reverts"
	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/cry"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/test/datagen"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/xenv"
)

func M(a ...any) []any {
	return a
}

var (
	minter = thor.BytesToAddress([]byte("minter"))
	alice  = thor.BytesToAddress([]byte("alice"))
	bob    = thor.BytesToAddress([]byte("bob"))
	carol  = thor.BytesToAddress([]byte("carol"))
)

type testLedger struct {
	*Ledger
	st *state.State
}

func newTestLedger(t *testing.T, caps Capabilities, allocs ...Allocation) *testLedger {
	st := state.NewStater(kv.NewMem()).NewState()
	l := &testLedger{New(thor.VotesAddress, st), st}
	require.NoError(t, l.Initialize(l.env(0, thor.Address{}), &Config{
		Name:         "Gov Token",
		Symbol:       "GOV",
		ChainID:      big.NewInt(1),
		Minter:       minter,
		Capabilities: caps,
		Allocations:  allocs,
	}))
	return l
}

func (l *testLedger) env(block uint32, caller thor.Address) *xenv.Environment {
	return xenv.New(&xenv.BlockContext{Number: block, Time: uint64(block) * 10}, l.st, nil, caller, l.addr, nil)
}

func amount(v int64) *big.Int {
	return big.NewInt(v)
}

func TestInitialize(t *testing.T) {
	l := newTestLedger(t, AllCapabilities,
		Allocation{Account: alice, Amount: amount(100), SelfDelegate: true},
		Allocation{Account: bob, Amount: amount(50)},
	)

	tests := []struct {
		name     string
		ret      []any
		expected []any
	}{
		{"name", M(l.Name()), M("Gov Token", nil)},
		{"symbol", M(l.Symbol()), M("GOV", nil)},
		{"totalSupply", M(l.TotalSupply()), M(amount(150), nil)},
		{"balance alice", M(l.BalanceOf(alice)), M(amount(100), nil)},
		{"balance bob", M(l.BalanceOf(bob)), M(amount(50), nil)},
		{"votes alice", M(l.GetCurrentVotes(alice)), M(amount(100), nil)},
		{"votes bob", M(l.GetCurrentVotes(bob)), M(new(big.Int), nil)},
		{"delegate alice", M(l.Delegates(alice)), M(alice, nil)},
		{"delegate bob", M(l.Delegates(bob)), M(thor.Address{}, nil)},
		{"minter", M(l.Minter()), M(minter, nil)},
		{"capabilities", M(l.Capabilities()), M(AllCapabilities, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ret)
		})
	}

	err := l.Initialize(l.env(0, thor.Address{}), &Config{Name: "again"})
	assert.ErrorIs(t, err, reverts.New(0, "Votes::initialize", "already initialized"))
}

func TestTransferMovesVotes(t *testing.T) {
	l := newTestLedger(t, AllCapabilities, Allocation{Account: alice, Amount: amount(100)})

	require.NoError(t, l.Delegate(l.env(1, alice), carol))
	require.NoError(t, l.Delegate(l.env(1, bob), bob))
	assert.Equal(t, M(amount(100), nil), M(l.GetCurrentVotes(carol)))

	require.NoError(t, l.Transfer(l.env(2, alice), bob, amount(30)))
	assert.Equal(t, M(amount(70), nil), M(l.GetCurrentVotes(carol)))
	assert.Equal(t, M(amount(30), nil), M(l.GetCurrentVotes(bob)))
	assert.Equal(t, M(amount(70), nil), M(l.BalanceOf(alice)))

	// undelegate
	require.NoError(t, l.Delegate(l.env(3, alice), thor.Address{}))
	assert.Equal(t, M(new(big.Int), nil), M(l.GetCurrentVotes(carol)))

	err := l.Transfer(l.env(4, alice), bob, amount(71))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::transfer", "amount exceeds balance"))
	kind, _ := reverts.KindOf(err)
	assert.Equal(t, reverts.Underflow, kind)

	err = l.Transfer(l.env(4, alice), thor.Address{}, amount(1))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::transfer", "cannot transfer to the zero address"))
}

func TestOneCheckpointPerBlock(t *testing.T) {
	l := newTestLedger(t, AllCapabilities, Allocation{Account: alice, Amount: amount(100), SelfDelegate: true})
	require.NoError(t, l.Delegate(l.env(1, bob), bob))

	env := l.env(5, alice)
	for range 3 {
		require.NoError(t, l.Transfer(env, bob, amount(10)))
	}

	assert.Equal(t, M(uint32(2), nil), M(l.NumCheckpoints(alice)))
	assert.Equal(t, M(uint32(1), nil), M(l.NumCheckpoints(bob)))
	assert.Equal(t, M(&Checkpoint{FromBlock: 5, Votes: amount(70)}, nil), M(l.Checkpoint(alice, 1)))
	assert.Equal(t, M(&Checkpoint{FromBlock: 5, Votes: amount(30)}, nil), M(l.Checkpoint(bob, 0)))
	assert.Equal(t, M(&Checkpoint{Votes: new(big.Int)}, nil), M(l.Checkpoint(bob, 7)))

	events := env.Events()
	assert.Len(t, events, 9)
	for _, ev := range events {
		assert.Equal(t, thor.VotesAddress, ev.Address)
	}
}

func TestGetPriorVotes(t *testing.T) {
	l := newTestLedger(t, AllCapabilities, Allocation{Account: alice, Amount: amount(1000)})
	require.NoError(t, l.Delegate(l.env(10, alice), alice))
	require.NoError(t, l.Transfer(l.env(20, alice), bob, amount(100)))
	require.NoError(t, l.Transfer(l.env(30, alice), bob, amount(100)))

	tests := []struct {
		block   uint64
		current uint32
		votes   int64
	}{
		{0, 40, 0},
		{9, 40, 0},
		{10, 40, 1000},
		{15, 40, 1000},
		{20, 40, 900},
		{29, 40, 900},
		{30, 40, 800},
		{39, 40, 800},
	}
	for _, tt := range tests {
		assert.Equal(t, M(amount(tt.votes), nil), M(l.GetPriorVotes(alice, tt.block, tt.current)), "block %d", tt.block)
	}

	for _, block := range []uint64{40, 41, 1 << 40} {
		_, err := l.GetPriorVotes(alice, block, 40)
		assert.ErrorIs(t, err, reverts.New(0, "Votes::getPriorVotes", "not yet determined"))
	}
	assert.Equal(t, M(new(big.Int), nil), M(l.GetPriorVotes(carol, 5, 40)))
}

// replays random transfers and delegations and checks every past point against a naive history
func TestPriorVotesHistory(t *testing.T) {
	accounts := []thor.Address{alice, bob, carol, minter}
	var allocs []Allocation
	for _, acc := range accounts {
		allocs = append(allocs, Allocation{Account: acc, Amount: amount(1000)})
	}
	l := newTestLedger(t, AllCapabilities, allocs...)

	// history[block][account] = votes at the end of block
	history := make([]map[thor.Address]*big.Int, 0)
	rng := rand.New(rand.NewPCG(1, 2))

	const blocks = 60
	for block := uint32(1); block <= blocks; block++ {
		for range rng.IntN(4) {
			from := accounts[rng.IntN(len(accounts))]
			to := accounts[rng.IntN(len(accounts))]
			env := l.env(block, from)
			if rng.IntN(3) == 0 {
				require.NoError(t, l.Delegate(env, to))
				continue
			}
			balance, err := l.BalanceOf(from)
			require.NoError(t, err)
			if balance.Sign() == 0 {
				continue
			}
			require.NoError(t, l.Transfer(env, to, big.NewInt(rng.Int64N(balance.Int64())+1)))
		}

		snapshot := make(map[thor.Address]*big.Int)
		for _, acc := range accounts {
			snapshot[acc] = new(big.Int)
		}
		for _, acc := range accounts {
			delegatee, err := l.Delegates(acc)
			require.NoError(t, err)
			if delegatee.IsZero() {
				continue
			}
			balance, err := l.BalanceOf(acc)
			require.NoError(t, err)
			snapshot[delegatee].Add(snapshot[delegatee], balance)
		}
		history = append(history, snapshot)
	}

	for i, snapshot := range history {
		block := uint64(i + 1)
		for _, acc := range accounts {
			votes, err := l.GetPriorVotes(acc, block, blocks+1)
			require.NoError(t, err)
			assert.Equal(t, snapshot[acc].String(), votes.String(), "account %v block %d", acc, block)
		}
	}
}

func TestMintBurn(t *testing.T) {
	l := newTestLedger(t, Mint|Burn)
	require.NoError(t, l.Delegate(l.env(1, alice), alice))

	err := l.Mint(l.env(2, alice), alice, amount(10))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::mint", "only the minter can mint"))

	require.NoError(t, l.Mint(l.env(2, minter), alice, amount(10)))
	assert.Equal(t, M(amount(10), nil), M(l.GetCurrentVotes(alice)))
	assert.Equal(t, M(amount(10), nil), M(l.TotalSupply()))

	err = l.Burn(l.env(3, minter), alice, amount(11))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::burn", "amount exceeds balance"))
	err = l.Burn(l.env(3, bob), alice, amount(1))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::burn", "only the minter can burn"))

	require.NoError(t, l.Burn(l.env(3, minter), alice, amount(4)))
	assert.Equal(t, M(amount(6), nil), M(l.GetCurrentVotes(alice)))
	assert.Equal(t, M(amount(6), nil), M(l.TotalSupply()))
	assert.Equal(t, M(amount(10), nil), M(l.GetPriorVotes(alice, 2, 4)))

	// transfer is not part of the capability set
	err = l.Transfer(l.env(4, alice), bob, amount(1))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::transfer", "capability disabled"))

	err = l.SetMinter(l.env(4, bob), bob)
	assert.ErrorIs(t, err, reverts.New(0, "Votes::setMinter", "only the minter can change the minter address"))
	require.NoError(t, l.SetMinter(l.env(4, minter), bob))
	assert.Equal(t, M(bob, nil), M(l.Minter()))
	require.NoError(t, l.Mint(l.env(5, bob), carol, amount(1)))
}

func TestDelegateBySig(t *testing.T) {
	key, signer := datagen.RandKey()
	l := newTestLedger(t, AllCapabilities, Allocation{Account: signer, Amount: amount(500)})
	domain, err := l.DomainSeparator()
	require.NoError(t, err)
	assert.Equal(t, signed.DomainSeparator("Gov Token", big.NewInt(1), thor.VotesAddress), domain)

	sign := func(d *signed.Delegation) []byte {
		sig, err := cry.Sign(signed.Digest(domain, signed.DelegationHash(d.Delegatee, d.Nonce, d.Expiry)), key)
		require.NoError(t, err)
		return sig
	}

	d := &signed.Delegation{Delegatee: bob, Nonce: amount(0), Expiry: amount(0)}
	sig := sign(d)
	// anyone may relay
	require.NoError(t, l.DelegateBySig(l.env(1, carol), cry.RecoverSigner, d, sig))
	assert.Equal(t, M(bob, nil), M(l.Delegates(signer)))
	assert.Equal(t, M(amount(500), nil), M(l.GetCurrentVotes(bob)))
	assert.Equal(t, M(amount(1), nil), M(l.Nonces(signer)))

	err = l.DelegateBySig(l.env(2, carol), cry.RecoverSigner, d, sig)
	assert.ErrorIs(t, err, reverts.New(0, "Votes::delegateBySig", "invalid nonce"))

	d = &signed.Delegation{Delegatee: carol, Nonce: amount(1), Expiry: amount(19)}
	err = l.DelegateBySig(l.env(2, carol), cry.RecoverSigner, d, sign(d))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::delegateBySig", "signature expired"))
	kind, _ := reverts.KindOf(err)
	assert.Equal(t, reverts.TemporalGate, kind)

	err = l.DelegateBySig(l.env(2, carol), cry.RecoverSigner, d, make([]byte, 65))
	assert.ErrorIs(t, err, reverts.New(0, "Votes::delegateBySig", "invalid signature"))
}
