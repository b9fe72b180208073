// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/state"
	"github.com/govstake/govstake/test/datagen"
	"github.com/govstake/govstake/thor"
)

type testStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr1  thor.Address
	Items  []testItem
}

type testItem struct {
	A *big.Int
	B uint64
}

func newTestContext() *Context {
	st := state.NewStater(kv.NewMem()).NewState()
	return NewContext(thor.Address{1}, st)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(40)))
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(60), v)

	assert.Error(t, u.Sub(big.NewInt(61)))
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(60), v, "unchanged on underflow")
}

func TestAddress(t *testing.T) {
	ctx := newTestContext()
	a := NewAddress(ctx, thor.BytesToBytes32([]byte("admin")))

	got, err := a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	addr := datagen.RandAddress()
	a.Set(addr)
	got, _ = a.Get()
	assert.Equal(t, addr, got)

	a.Set(thor.Address{})
	got, _ = a.Get()
	assert.True(t, got.IsZero())
}

func TestRaw(t *testing.T) {
	ctx := newTestContext()

	counter := NewRaw[uint64](ctx, thor.BytesToBytes32([]byte("count")))
	v, err := counter.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	require.NoError(t, counter.Set(9))
	v, _ = counter.Get()
	assert.Equal(t, uint64(9), v)

	flag := NewRaw[bool](ctx, thor.BytesToBytes32([]byte("flag")))
	require.NoError(t, flag.Set(true))
	b, _ := flag.Get()
	assert.True(t, b)
	require.NoError(t, flag.Set(false))
	raw, _ := ctx.State().GetRawStorage(ctx.Address(), thor.BytesToBytes32([]byte("flag")))
	assert.Empty(t, raw, "zero value frees the slot")
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[thor.Address, *testStruct](ctx, thor.BytesToBytes32([]byte("positions")))

	key := datagen.RandAddress()
	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	value := &testStruct{
		Field1: 1,
		Amount: big.NewInt(1000),
		Addr1:  datagen.RandAddress(),
		Items:  []testItem{{big.NewInt(1), 2}, {big.NewInt(3), 4}},
	}
	require.NoError(t, m.Set(key, value))

	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	other, _ := m.Get(datagen.RandAddress())
	assert.Nil(t, other)

	m.Delete(key)
	got, _ = m.Get(key)
	assert.Nil(t, got)
}

func TestMappingValueTypes(t *testing.T) {
	ctx := newTestContext()
	queued := NewMapping[thor.Bytes32, bool](ctx, thor.BytesToBytes32([]byte("queued")))
	hash := datagen.RandomHash()

	ok, err := queued.Get(hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, queued.Set(hash, true))
	ok, _ = queued.Get(hash)
	assert.True(t, ok)
}

func TestKeys(t *testing.T) {
	addr := datagen.RandAddress()
	assert.NotEqual(t, AddressIndexKey(addr, 1).Bytes(), AddressIndexKey(addr, 2).Bytes())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 5}, Uint64Key(5).Bytes())

	// nested keys do not collide when the split point moves
	k1 := PairKey{Outer: thor.Bytes32{1}, Inner: Uint64Key(0)}
	k2 := PairKey{Outer: Uint64Key(0), Inner: thor.Bytes32{1}}
	assert.NotEqual(t, k1.Bytes(), k2.Bytes())
}
