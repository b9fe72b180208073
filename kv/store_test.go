// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	persistent, err := NewPersistent(filepath.Join(t.TempDir(), "db"), Options{})
	require.NoError(t, err)
	defer persistent.Close()

	for name, store := range map[string]StoreCloser{"mem": NewMem(), "persistent": persistent} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get([]byte("k"))
			assert.True(t, store.IsNotFound(err))

			require.NoError(t, store.Put([]byte("k"), []byte("v")))
			v, err := store.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), v)

			has, err := store.Has([]byte("k"))
			require.NoError(t, err)
			assert.True(t, has)

			require.NoError(t, store.Delete([]byte("k")))
			has, _ = store.Has([]byte("k"))
			assert.False(t, has)
		})
	}
}

func TestBatch(t *testing.T) {
	store := NewMem()
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, batch.Len())

	_, err := store.Get([]byte("a"))
	assert.True(t, store.IsNotFound(err), "not visible before write")

	require.NoError(t, batch.Write())
	v, err := store.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestBucket(t *testing.T) {
	src := NewMem()
	a := Bucket("a").NewStore(src)
	b := Bucket("b").NewStore(src)

	require.NoError(t, a.Put([]byte("k1"), []byte("a1")))
	require.NoError(t, a.Put([]byte("k2"), []byte("a2")))
	require.NoError(t, b.Put([]byte("k1"), []byte("b1")))

	v, err := b.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("b1"), v)

	batch := b.NewBatch()
	require.NoError(t, batch.Put([]byte("k3"), []byte("b3")))
	require.NoError(t, batch.Write())

	var keys []string
	it := a.Iterate(Range{})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"k1", "k2"}, keys)

	keys = nil
	it = b.Iterate(Range{Start: []byte("k2")})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	assert.Equal(t, []string{"k3"}, keys)
}
