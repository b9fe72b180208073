// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/builtin"
	"github.com/govstake/govstake/genesis"
	"github.com/govstake/govstake/test/datagen"
	"github.com/govstake/govstake/test/testchain"
	"github.com/govstake/govstake/thor"
)

var (
	tc *testchain.Chain
	ts *httptest.Server
)

func initCallsServer(t *testing.T) {
	var err error
	tc, err = testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(func() { tc.Close() })

	router := mux.NewRouter()
	New(tc.Repo(), tc.Pool(), tc.Engine()).Mount(router, "/calls")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func depositRequest(t *testing.T, amount int64, nonce uint64) *CallRequest {
	alice := genesis.DevAccounts()[1].Address
	data, err := testchain.Encode(builtin.Staking.ABI, "deposit", big.NewInt(amount), false, alice)
	require.NoError(t, err)
	return &CallRequest{
		Origin: alice,
		To:     builtin.Staking.Address,
		Value:  (*math.HexOrDecimal256)(new(big.Int)),
		Data:   hexutil.Encode(data),
		Nonce:  nonce,
	}
}

func TestCalls(t *testing.T) {
	initCallsServer(t)

	t.Run("sendCall", sendCall)
	t.Run("inspectCall", inspectCall)
	t.Run("badRequests", badRequests)
}

func sendCall(t *testing.T) {
	body, status := httpPost(t, ts.URL+"/calls", depositRequest(t, 100, 1))
	require.Equal(t, http.StatusOK, status, string(body))
	var res map[string]string
	require.NoError(t, json.Unmarshal(body, &res))
	id := thor.MustParseBytes32(res["id"])

	// the same call again is rejected
	_, status = httpPost(t, ts.URL+"/calls", depositRequest(t, 100, 1))
	assert.Equal(t, http.StatusForbidden, status)

	// pending calls are only visible on request
	body, _ = httpGet(t, ts.URL+"/calls/"+id.String())
	assert.Equal(t, "null", strings.TrimSpace(string(body)))
	body, _ = httpGet(t, ts.URL+"/calls/"+id.String()+"?pending=true")
	var pending Call
	require.NoError(t, json.Unmarshal(body, &pending))
	assert.Equal(t, id, pending.ID)
	assert.Nil(t, pending.Meta)

	blk, err := tc.MintBlock(tc.Pool().Executables()...)
	require.NoError(t, err)
	tc.Pool().Remove(blk.Calls())

	body, status = httpGet(t, ts.URL+"/calls/"+id.String())
	require.Equal(t, http.StatusOK, status)
	var packed Call
	require.NoError(t, json.Unmarshal(body, &packed))
	require.NotNil(t, packed.Meta)
	assert.Equal(t, blk.Header().ID(), packed.Meta.BlockID)
	assert.Equal(t, builtin.Staking.Address, packed.To)

	body, _ = httpGet(t, ts.URL+"/calls/"+id.String()+"/receipt")
	var receipt Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.False(t, receipt.Reverted)
	assert.Equal(t, id, receipt.CallID)
	names := make([]string, 0, len(receipt.Events))
	for _, e := range receipt.Events {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "Staked")
	assert.Contains(t, names, "Transfer")

	body, _ = httpGet(t, ts.URL+"/calls/"+datagen.RandomHash().String()+"/receipt")
	assert.Equal(t, "null", strings.TrimSpace(string(body)))
}

func inspectCall(t *testing.T) {
	body, status := httpPost(t, ts.URL+"/calls/inspect", depositRequest(t, 0, 2))
	require.Equal(t, http.StatusOK, status)
	var receipt Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Staking::deposit: cannot stake 0", receipt.RevertReason)
	assert.Empty(t, receipt.Events)

	data, err := testchain.Encode(builtin.Votes.ABI, "symbol")
	require.NoError(t, err)
	body, _ = httpPost(t, ts.URL+"/calls/inspect", &CallRequest{To: builtin.Votes.Address, Data: hexutil.Encode(data)})
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.False(t, receipt.Reverted)

	var symbol string
	method, _ := builtin.Votes.ABI.MethodByName("symbol")
	require.NoError(t, method.DecodeOutput(hexutil.MustDecode(receipt.Output), &symbol))
	assert.Equal(t, "VOTE", symbol)
}

func badRequests(t *testing.T) {
	_, status := httpPost(t, ts.URL+"/calls", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts.URL+"/calls", &CallRequest{Data: "0xzz"})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpGet(t, ts.URL+"/calls/0x01")
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpGet(t, ts.URL+"/calls/"+datagen.RandomHash().String()+"?pending=maybe")
	assert.Equal(t, http.StatusBadRequest, status)
}
