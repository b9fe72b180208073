// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/block"
	"github.com/govstake/govstake/cache"
	"github.com/govstake/govstake/co"
	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/thor"
	"github.com/govstake/govstake/tx"
)

const (
	hdrStoreName  = "chain.hdr"   // for block headers
	bodyStoreName = "chain.body"  // for block calls and receipts
	propStoreName = "chain.props" // for property-named blocks such as best block
	numStoreName  = "chain.num"   // for the canonical number to id index
	callStoreName = "chain.call"  // for call metadata
)

var (
	errNotFound    = errors.New("not found")
	bestBlockIDKey = []byte("best-block-id")
)

// Repository stores block headers, calls and receipts of a single chain.
//
// It's thread-safe.
type Repository struct {
	hdrStore  kv.Store
	bodyStore kv.Store
	propStore kv.Store
	numStore  kv.Store
	callStore kv.Store

	genesis *block.Block

	writeLock sync.Mutex
	best      atomic.Value
	tick      co.Signal

	caches struct {
		headers  *cache.LRU[thor.Bytes32, *block.Header]
		receipts *cache.LRU[thor.Bytes32, tx.Receipts]
	}
}

// NewRepository create an instance of repository.
func NewRepository(db kv.Store, genesis *block.Block) (*Repository, error) {
	if genesis.Header().Number() != 0 {
		return nil, errors.New("genesis number != 0")
	}
	if len(genesis.Calls()) != 0 {
		return nil, errors.New("genesis block should not have calls")
	}

	repo := &Repository{
		hdrStore:  kv.Bucket(hdrStoreName).NewStore(db),
		bodyStore: kv.Bucket(bodyStoreName).NewStore(db),
		propStore: kv.Bucket(propStoreName).NewStore(db),
		numStore:  kv.Bucket(numStoreName).NewStore(db),
		callStore: kv.Bucket(callStoreName).NewStore(db),
		genesis:   genesis,
	}
	repo.caches.headers = cache.MustNewLRU[thor.Bytes32, *block.Header](512)
	repo.caches.receipts = cache.MustNewLRU[thor.Bytes32, tx.Receipts](512)

	genesisID := genesis.Header().ID()
	if val, err := repo.propStore.Get(bestBlockIDKey); err != nil {
		if !repo.propStore.IsNotFound(err) {
			return nil, err
		}
		if err := repo.saveBlock(genesis, nil); err != nil {
			return nil, err
		}
	} else {
		existingGenesisID, err := repo.GetBlockID(0)
		if err != nil {
			return nil, errors.Wrap(err, "get existing genesis id")
		}
		if existingGenesisID != genesisID {
			return nil, errors.New("genesis mismatch")
		}
		best, err := repo.GetBlockHeader(thor.BytesToBytes32(val))
		if err != nil {
			return nil, errors.Wrap(err, "get best block")
		}
		repo.best.Store(best)
	}
	return repo, nil
}

// GenesisBlock returns genesis block.
func (r *Repository) GenesisBlock() *block.Block {
	return r.genesis
}

// BestBlock returns the header of the newest block.
func (r *Repository) BestBlock() *block.Header {
	return r.best.Load().(*block.Header)
}

// NewTicker create a signal Waiter to receive the event that a new block is added.
func (r *Repository) NewTicker() co.Waiter {
	return r.tick.NewWaiter()
}

// AddBlock appends a block on top of the best block, with the receipts of its calls.
func (r *Repository) AddBlock(blk *block.Block, receipts tx.Receipts) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	header := blk.Header()
	if best := r.BestBlock(); header.ParentID() != best.ID() {
		return errors.Errorf("parent %v is not the best block %v", header.ParentID(), best.ID())
	}
	if len(receipts) != len(blk.Calls()) {
		return errors.New("receipts count mismatch")
	}
	if err := r.saveBlock(blk, receipts); err != nil {
		return err
	}
	r.tick.Broadcast()
	return nil
}

func (r *Repository) saveBlock(blk *block.Block, receipts tx.Receipts) error {
	var (
		header = blk.Header()
		id     = header.ID()
	)
	hdrBatch := r.hdrStore.NewBatch()
	bodyBatch := r.bodyStore.NewBatch()
	indexBatch := r.numStore.NewBatch()
	callBatch := r.callStore.NewBatch()

	if err := saveHeader(hdrBatch, header); err != nil {
		return err
	}
	if err := saveCalls(bodyBatch, id, blk.Calls()); err != nil {
		return err
	}
	if err := saveReceipts(bodyBatch, id, receipts); err != nil {
		return err
	}
	if err := indexBatch.Put(numberKey(header.Number()), id.Bytes()); err != nil {
		return err
	}
	for i, call := range blk.Calls() {
		if err := saveRLP(callBatch, call.ID().Bytes(), &CallMeta{id, uint64(i)}); err != nil {
			return err
		}
	}
	for _, b := range []kv.Batch{hdrBatch, bodyBatch, indexBatch, callBatch} {
		if err := b.Write(); err != nil {
			return err
		}
	}
	if err := r.propStore.Put(bestBlockIDKey, id.Bytes()); err != nil {
		return err
	}
	r.caches.headers.Add(id, header)
	r.caches.receipts.Add(id, receipts)
	r.best.Store(header)
	return nil
}

// GetBlockHeader get block header by block id.
func (r *Repository) GetBlockHeader(id thor.Bytes32) (*block.Header, error) {
	return r.caches.headers.GetOrLoad(id, func(id thor.Bytes32) (*block.Header, error) {
		return loadHeader(r.hdrStore, id)
	})
}

// GetBlock get block by id.
func (r *Repository) GetBlock(id thor.Bytes32) (*block.Block, error) {
	header, err := r.GetBlockHeader(id)
	if err != nil {
		return nil, err
	}
	calls, err := loadCalls(r.bodyStore, id)
	if err != nil {
		return nil, err
	}
	return block.New(header, calls), nil
}

// GetBlockReceipts get all call receipts of the block for given block id.
func (r *Repository) GetBlockReceipts(id thor.Bytes32) (tx.Receipts, error) {
	return r.caches.receipts.GetOrLoad(id, func(id thor.Bytes32) (tx.Receipts, error) {
		return loadReceipts(r.bodyStore, id)
	})
}

// GetBlockID returns the id of the block at num.
func (r *Repository) GetBlockID(num uint32) (thor.Bytes32, error) {
	data, err := r.numStore.Get(numberKey(num))
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(data), nil
}

// GetCallMeta returns the location of a packed call.
func (r *Repository) GetCallMeta(callID thor.Bytes32) (*CallMeta, error) {
	var meta CallMeta
	if err := loadRLP(r.callStore, callID.Bytes(), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetCall returns a packed call with its receipt.
func (r *Repository) GetCall(callID thor.Bytes32) (*tx.Call, *tx.Receipt, *CallMeta, error) {
	meta, err := r.GetCallMeta(callID)
	if err != nil {
		return nil, nil, nil, err
	}
	calls, err := loadCalls(r.bodyStore, meta.BlockID)
	if err != nil {
		return nil, nil, nil, err
	}
	receipts, err := r.GetBlockReceipts(meta.BlockID)
	if err != nil {
		return nil, nil, nil, err
	}
	if meta.Index >= uint64(len(calls)) || meta.Index >= uint64(len(receipts)) {
		return nil, nil, nil, errNotFound
	}
	return calls[meta.Index], receipts[meta.Index], meta, nil
}

// IsNotFound returns whether err is a not found error.
func (r *Repository) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound) || r.hdrStore.IsNotFound(errors.Cause(err))
}
