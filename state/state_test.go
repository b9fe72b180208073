// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/kv"
	"github.com/govstake/govstake/thor"
)

func M(a ...any) []any {
	return a
}

func TestStateReadWrite(t *testing.T) {
	st := NewStater(kv.NewMem()).NewState()

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	assert.Equal(t, M(new(big.Int), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(thor.Bytes32{}, nil), M(st.GetStorage(addr, storageKey)))

	require.NoError(t, st.SetBalance(addr, big.NewInt(1)))
	st.SetStorage(addr, storageKey, thor.BytesToBytes32([]byte("storageValue")))

	assert.Equal(t, M(big.NewInt(1), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(thor.BytesToBytes32([]byte("storageValue")), nil), M(st.GetStorage(addr, storageKey)))

	assert.Error(t, st.SetBalance(addr, big.NewInt(-1)))
}

func TestStateRevert(t *testing.T) {
	st := NewStater(kv.NewMem()).NewState()

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	values := []struct {
		balance *big.Int
		storage thor.Bytes32
	}{
		{big.NewInt(1), thor.BytesToBytes32([]byte("v1"))},
		{big.NewInt(2), thor.BytesToBytes32([]byte("v2"))},
		{big.NewInt(3), thor.BytesToBytes32([]byte("v3"))},
	}

	var chk int
	for _, v := range values {
		chk = st.NewCheckpoint()
		require.NoError(t, st.SetBalance(addr, v.balance))
		st.SetStorage(addr, storageKey, v.storage)
	}

	for i := range values {
		v := values[len(values)-i-1]
		assert.Equal(t, M(v.balance, nil), M(st.GetBalance(addr)))
		assert.Equal(t, M(v.storage, nil), M(st.GetStorage(addr, storageKey)))
		st.RevertTo(chk)
		chk--
	}
	assert.Equal(t, M(new(big.Int), nil), M(st.GetBalance(addr)))
}

func TestStateTransfer(t *testing.T) {
	st := NewStater(kv.NewMem()).NewState()
	a := thor.BytesToAddress([]byte("a"))
	b := thor.BytesToAddress([]byte("b"))

	require.NoError(t, st.SetBalance(a, big.NewInt(10)))
	require.NoError(t, st.Transfer(a, b, big.NewInt(4)))
	assert.Equal(t, M(big.NewInt(6), nil), M(st.GetBalance(a)))
	assert.Equal(t, M(big.NewInt(4), nil), M(st.GetBalance(b)))

	assert.ErrorIs(t, st.Transfer(a, b, big.NewInt(7)), ErrInsufficientBalance)
	assert.ErrorIs(t, st.Transfer(a, a, big.NewInt(7)), ErrInsufficientBalance)
	assert.NoError(t, st.Transfer(a, a, big.NewInt(6)))
}

func TestStateCommit(t *testing.T) {
	store := kv.NewMem()
	stater := NewStater(store)
	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("k"))

	st := stater.NewState()
	require.NoError(t, st.SetBalance(addr, big.NewInt(100)))
	st.SetStorage(addr, key, thor.BytesToBytes32([]byte("v")))
	require.NoError(t, st.Commit())

	// a fresh stater reads from the store, not the cache
	st = NewStater(store).NewState()
	assert.Equal(t, M(big.NewInt(100), nil), M(st.GetBalance(addr)))
	assert.Equal(t, M(thor.BytesToBytes32([]byte("v")), nil), M(st.GetStorage(addr, key)))

	// clear it
	st.SetStorage(addr, key, thor.Bytes32{})
	require.NoError(t, st.Commit())
	st = NewStater(store).NewState()
	assert.Equal(t, M(thor.Bytes32{}, nil), M(st.GetStorage(addr, key)))
}

func TestEncodeDecodeStorage(t *testing.T) {
	st := NewStater(kv.NewMem()).NewState()
	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("k"))

	type item struct {
		A uint64
		B []byte
	}
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&item{7, []byte("x")})
	}))

	var got item
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, item{7, []byte("x")}, got)

	// list values are reported by hash
	raw, _ := st.GetRawStorage(addr, key)
	assert.Equal(t, M(thor.Blake2b(raw), nil), M(st.GetStorage(addr, key)))
}
