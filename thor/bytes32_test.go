// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes32(t *testing.T) {
	hex := strings.Repeat("ab", 32)
	tests := []struct {
		in      string
		wantErr bool
	}{
		{hex, false},
		{"0x" + hex, false},
		{"0X" + strings.ToUpper(hex), false},
		{"zz" + hex, true},
		{hex[2:], true},
		{"0x" + hex[2:] + "zz", true},
	}
	for _, tt := range tests {
		b, err := ParseBytes32(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, "0x"+hex, b.String())
	}
}

func TestBytes32JSON(t *testing.T) {
	b := BytesToBytes32([]byte{1, 2})
	assert.Equal(t, big.NewInt(0x0102), b.Big())

	type holder struct {
		Value Bytes32  `json:"value"`
		Ptr   *Bytes32 `json:"ptr"`
	}
	data, err := json.Marshal(holder{Value: b})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"`+b.String()+`","ptr":null}`, string(data))

	var decoded holder
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded.Value)
	assert.Nil(t, decoded.Ptr)

	assert.Error(t, json.Unmarshal([]byte(`{"value":"0x12"}`), &decoded))
}
