// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		// the quick version
		return blake2b.Sum256(data[0])
	}
	w := blake2bPool.Get().(*hashState)
	for _, b := range data {
		w.Write(b)
	}
	h := w.sum()
	blake2bPool.Put(w)
	return h
}

// Keccak256 computes legacy keccak-256 checksum for given data, as used by abi selectors and
// typed message digests.
func Keccak256(data ...[]byte) Bytes32 {
	w := keccak256Pool.Get().(*hashState)
	for _, b := range data {
		w.Write(b)
	}
	h := w.sum()
	keccak256Pool.Put(w)
	return h
}

type hashState struct {
	hash.Hash
	b32 Bytes32
}

func (s *hashState) sum() (h Bytes32) {
	s.Sum(s.b32[:0])
	h = s.b32 // to avoid 1 alloc
	s.Reset()
	return
}

var (
	blake2bPool = sync.Pool{
		New: func() any {
			h, _ := blake2b.New256(nil)
			return &hashState{Hash: h}
		},
	}
	keccak256Pool = sync.Pool{
		New: func() any {
			return &hashState{Hash: sha3.NewLegacyKeccak256()}
		},
	}
)
