// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/chain"
	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/logdb"
	"github.com/govstake/govstake/solo"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

// Chain is an in-memory devnet node for integration tests.
// Blocks are packed on request, one block interval apart.
type Chain struct {
	repo   *chain.Repository
	stater *state.Stater
	logDB  *logdb.LogDB
	pool   *solo.CallPool
	engine *solo.Engine

	clock atomic.Uint64
	nonce atomic.Uint64
}

// NewIntegrationTestChain creates a chain over the dev genesis.
func NewIntegrationTestChain() (*Chain, error) {
	db := kv.NewMem()
	stater := state.NewStater(db)
	geneBlk, err := genesis.NewDevnet().Init(stater)
	if err != nil {
		return nil, err
	}
	repo, err := chain.NewRepository(db, geneBlk)
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}

	c := &Chain{repo: repo, stater: stater, logDB: logDB}
	c.clock.Store(geneBlk.Header().Timestamp())
	c.pool = solo.NewCallPool(0, func(id thor.Bytes32) bool {
		_, err := repo.GetCallMeta(id)
		return err == nil
	})
	c.engine = solo.NewEngine(repo, stater, logDB, solo.Options{
		BlockInterval: thor.DefaultBlockInterval,
		Clock:         func() uint64 { return c.clock.Add(thor.DefaultBlockInterval) },
	})
	return c, nil
}

func (c *Chain) Repo() *chain.Repository { return c.repo }
func (c *Chain) Stater() *state.Stater   { return c.stater }
func (c *Chain) LogDB() *logdb.LogDB     { return c.logDB }
func (c *Chain) Pool() *solo.CallPool    { return c.pool }
func (c *Chain) Engine() *solo.Engine    { return c.engine }

// State returns the state at the best block.
func (c *Chain) State() *state.State {
	return c.stater.NewState()
}

// Close releases the event index.
func (c *Chain) Close() error {
	c.pool.Close()
	return c.logDB.Close()
}

// Call builds a call of a builtin method, each call gets a distinct nonce.
func (c *Chain) Call(origin, to thor.Address, contract *abi.ABI, name string, args ...any) (*tx.Call, error) {
	data, err := Encode(contract, name, args...)
	if err != nil {
		return nil, err
	}
	return &tx.Call{
		Origin: origin,
		To:     to,
		Value:  new(big.Int),
		Data:   data,
		Nonce:  c.nonce.Add(1),
	}, nil
}

// MintBlock packs calls into a new best block, failing if any call reverts.
func (c *Chain) MintBlock(calls ...*tx.Call) (*block.Block, error) {
	blk, receipts, err := c.engine.Pack(calls, false)
	if err != nil {
		return nil, err
	}
	for i, r := range receipts {
		if r.Reverted {
			return nil, fmt.Errorf("call %d reverted: %s", i, r.RevertReason)
		}
	}
	return blk, nil
}

// Encode packs the input of a method, converting thor addresses for the abi codec.
func Encode(contract *abi.ABI, name string, args ...any) ([]byte, error) {
	method, ok := contract.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("method %s not found", name)
	}
	conv := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case thor.Address:
			conv[i] = common.Address(v)
		case []thor.Address:
			addrs := make([]common.Address, len(v))
			for j, a := range v {
				addrs[j] = common.Address(a)
			}
			conv[i] = addrs
		default:
			conv[i] = arg
		}
	}
	return method.EncodeInput(conv...)
}
