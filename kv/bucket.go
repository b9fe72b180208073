// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket is a key prefix, which splits one store into independent name spaces.
type Bucket string

func (b Bucket) key(key []byte) []byte {
	return append([]byte(b), key...)
}

// NewStore returns a view of src confined to the bucket.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

type bucketStore struct {
	b   Bucket
	src Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) { return s.src.Get(s.b.key(key)) }
func (s *bucketStore) Has(key []byte) (bool, error)   { return s.src.Has(s.b.key(key)) }
func (s *bucketStore) IsNotFound(err error) bool      { return s.src.IsNotFound(err) }
func (s *bucketStore) Put(key, val []byte) error      { return s.src.Put(s.b.key(key), val) }
func (s *bucketStore) Delete(key []byte) error        { return s.src.Delete(s.b.key(key)) }

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{s.b, s.src.NewBatch()}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	var limit []byte
	if len(r.Limit) > 0 {
		limit = s.b.key(r.Limit)
	} else {
		limit = util.BytesPrefix([]byte(s.b)).Limit
	}
	return &bucketIter{
		Iterator: s.src.Iterate(Range{Start: s.b.key(r.Start), Limit: limit}),
		prefix:   len(s.b),
	}
}

type bucketBatch struct {
	b Bucket
	Batch
}

func (bb *bucketBatch) Put(key, val []byte) error { return bb.Batch.Put(bb.b.key(key), val) }
func (bb *bucketBatch) Delete(key []byte) error   { return bb.Batch.Delete(bb.b.key(key)) }

type bucketIter struct {
	Iterator
	prefix int
}

func (i *bucketIter) Key() []byte {
	return i.Iterator.Key()[i.prefix:]
}
