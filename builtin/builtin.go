// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the governance and staking contracts to their addresses and
// dispatches ABI encoded calls to them.
package builtin

import (
	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/builtin/governor"
	"github.com/govstake/govstake/builtin/staking"
	"github.com/govstake/govstake/builtin/timelock"
	"github.com/govstake/govstake/builtin/votes"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
)

// Builtin contracts binding.
var (
	Votes    = &votesContract{mustLoadContract("Votes", thor.VotesAddress)}
	Timelock = &timelockContract{mustLoadContract("Timelock", thor.TimelockAddress)}
	Governor = &governorContract{mustLoadContract("Governor", thor.GovernorAddress)}
	Staking  = &stakingContract{mustLoadContract("Staking", thor.StakingAddress)}
)

type (
	votesContract    struct{ *contract }
	timelockContract struct{ *contract }
	governorContract struct{ *contract }
	stakingContract  struct{ *contract }
)

func (v *votesContract) WithState(state *state.State) *votes.Ledger {
	return votes.New(v.Address, state)
}

func (t *timelockContract) WithState(state *state.State) *timelock.Timelock {
	return timelock.New(t.Address, state)
}

func (g *governorContract) WithState(state *state.State) *governor.Governor {
	return governor.New(g.Address, state)
}

func (s *stakingContract) WithState(state *state.State) *staking.Staking {
	return staking.New(s.Address, state)
}

var contracts = map[thor.Address]*contract{
	Votes.Address:    Votes.contract,
	Timelock.Address: Timelock.contract,
	Governor.Address: Governor.contract,
	Staking.Address:  Staking.contract,
}

// IsBuiltin returns whether addr is a builtin contract.
func IsBuiltin(addr thor.Address) bool {
	_, ok := contracts[addr]
	return ok
}

// ABIOf returns the ABI of the builtin contract at addr.
func ABIOf(addr thor.Address) (*abi.ABI, bool) {
	c, ok := contracts[addr]
	if !ok {
		return nil, false
	}
	return c.ABI, true
}

// NameOf returns the name of the builtin contract at addr.
func NameOf(addr thor.Address) (string, bool) {
	c, ok := contracts[addr]
	if !ok {
		return "", false
	}
	return c.name, true
}

// EventName returns the name of the event with id emitted by the builtin contract at addr.
func EventName(addr thor.Address, id thor.Bytes32) (string, bool) {
	c, ok := contracts[addr]
	if !ok {
		return "", false
	}
	ev, ok := c.ABI.EventByID(id)
	if !ok {
		return "", false
	}
	return ev.Name(), true
}
