// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)

	c := MustNewLRU[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "evicted")
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.Len())

	hit, miss := c.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	c.Remove("c")
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad(t *testing.T) {
	c := MustNewLRU[int, string](4)
	loads := 0
	load := func(k int) (string, error) {
		loads++
		if k < 0 {
			return "", errors.New("negative")
		}
		return "v", nil
	}

	v, err := c.GetOrLoad(1, load)
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	_, _ = c.GetOrLoad(1, load)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(-1, load)
	assert.Error(t, err)
	_, ok := c.Get(-1)
	assert.False(t, ok)
}

func TestStatsHitRate(t *testing.T) {
	var s Stats
	assert.Equal(t, float64(0), s.HitRate())
	s.Hit()
	s.Miss()
	assert.Equal(t, 0.5, s.HitRate())
}
