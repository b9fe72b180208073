// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sync"

	"github.com/govstake/govstake/cache"
	"github.com/govstake/govstake/kv"
)

const stateCacheSize = 16384

var stateBucket = kv.Bucket("s")

// Stater owns the committed state and creates State instances over it.
type Stater struct {
	store kv.Store
	cache *cache.LRU[entryKey, []byte]
	rw    sync.RWMutex
}

// NewStater create a new stater over the given store.
func NewStater(store kv.Store) *Stater {
	return &Stater{
		store: stateBucket.NewStore(store),
		cache: cache.MustNewLRU[entryKey, []byte](stateCacheSize),
	}
}

// NewState create a state on top of the latest committed values.
func (s *Stater) NewState() *State {
	return newState(s)
}

func (s *Stater) load(key entryKey) ([]byte, error) {
	s.rw.RLock()
	defer s.rw.RUnlock()

	if v, ok := s.cache.Get(key); ok {
		metricStateCache().AddWithLabel(1, map[string]string{"event": "hit"})
		return v, nil
	}
	metricStateCache().AddWithLabel(1, map[string]string{"event": "miss"})

	v, err := s.store.Get(key.encode())
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, err
		}
		v = nil
	}
	s.cache.Add(key, v)
	return v, nil
}

func (s *Stater) commit(changes map[entryKey][]byte) error {
	s.rw.Lock()
	defer s.rw.Unlock()

	batch := s.store.NewBatch()
	for k, v := range changes {
		if len(v) == 0 {
			if err := batch.Delete(k.encode()); err != nil {
				return err
			}
		} else if err := batch.Put(k.encode(), v); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	for k, v := range changes {
		s.cache.Add(k, v)
	}
	metricStateWrites().Add(int64(len(changes)))
	return nil
}
