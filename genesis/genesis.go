// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds block zero and the initial state of the builtin contracts.
package genesis

import (
	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// Genesis to build genesis block.
type Genesis struct {
	builder *Builder
	id      thor.Bytes32
	name    string
}

// Build build the genesis block, and commits the genesis state.
func (g *Genesis) Build(stater *state.Stater) (blk *block.Block, events tx.Events, err error) {
	block, events, err := g.builder.Build(stater)
	if err != nil {
		return nil, nil, err
	}
	if block.Header().ID() != g.id {
		panic("built genesis ID incorrect")
	}
	return block, events, nil
}

// Init builds the genesis block, committing the genesis state only if the
// builtin contracts were not yet initialized in stater.
func (g *Genesis) Init(stater *state.Stater) (*block.Block, error) {
	name, err := builtin.Votes.WithState(stater.NewState()).Name()
	if err != nil {
		return nil, err
	}
	if name == "" {
		blk, _, err := g.Build(stater)
		return blk, err
	}
	return g.builder.block(), nil
}

// ID returns genesis block ID.
func (g *Genesis) ID() thor.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}
