// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package signed_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govstake/govstake/builtin/signed"
	"github.com/govstake/govstake/cry"
	"github.com/govstake/govstake/test/datagen"
	"github.com/govstake/govstake/thor"
)

var verifying = thor.BytesToAddress([]byte("Votes"))

// typed data hashing of go-ethereum is the reference encoder
func typedData(primary string, types []apitypes.Type, message apitypes.TypedDataMessage) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			primary: types,
		},
		PrimaryType: primary,
		Domain: apitypes.TypedDataDomain{
			Name:              "Gov Token",
			ChainId:           math.NewHexOrDecimal256(7),
			VerifyingContract: common.Address(verifying).Hex(),
		},
		Message: message,
	}
}

func TestDigestMatchesTypedData(t *testing.T) {
	domain := signed.DomainSeparator("Gov Token", big.NewInt(7), verifying)
	delegatee := datagen.RandAddress()

	td := typedData("Delegation", []apitypes.Type{
		{Name: "delegatee", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiry", Type: "uint256"},
	}, apitypes.TypedDataMessage{
		"delegatee": common.Address(delegatee).Hex(),
		"nonce":     "3",
		"expiry":    "0",
	})
	want, _, err := apitypes.TypedDataAndHash(td)
	require.NoError(t, err)

	got := signed.Digest(domain, signed.DelegationHash(delegatee, big.NewInt(3), big.NewInt(0)))
	assert.Equal(t, want, got[:])

	td = typedData("Ballot", []apitypes.Type{
		{Name: "proposalId", Type: "uint256"},
		{Name: "support", Type: "bool"},
	}, apitypes.TypedDataMessage{
		"proposalId": "12",
		"support":    true,
	})
	want, _, err = apitypes.TypedDataAndHash(td)
	require.NoError(t, err)

	got = signed.Digest(domain, signed.BallotHash(big.NewInt(12), true))
	assert.Equal(t, want, got[:])
}

func TestDelegationVerify(t *testing.T) {
	key, signer := datagen.RandKey()
	domain := signed.DomainSeparator("Gov Token", big.NewInt(1), verifying)
	nonces := map[thor.Address]*big.Int{signer: big.NewInt(2)}
	nonceOf := func(addr thor.Address) (*big.Int, error) {
		if n, ok := nonces[addr]; ok {
			return n, nil
		}
		return new(big.Int), nil
	}
	sign := func(d *signed.Delegation) []byte {
		sig, err := cry.Sign(signed.Digest(domain, signed.DelegationHash(d.Delegatee, d.Nonce, d.Expiry)), key)
		require.NoError(t, err)
		return sig
	}

	tests := []struct {
		name    string
		nonce   int64
		expiry  int64
		now     uint64
		wantErr error
	}{
		{"valid no expiry", 2, 0, 1e9, nil},
		{"valid before expiry", 2, 100, 100, nil},
		{"stale nonce", 1, 0, 10, signed.ErrInvalidNonce},
		{"future nonce", 3, 0, 10, signed.ErrInvalidNonce},
		{"expired", 2, 100, 101, signed.ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &signed.Delegation{Delegatee: datagen.RandAddress(), Nonce: big.NewInt(tt.nonce), Expiry: big.NewInt(tt.expiry)}
			got, err := d.Verify(cry.RecoverSigner, domain, sign(d), nonceOf, tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, signer, got)
		})
	}

	// signature over another domain recovers someone else, whose nonce is 0
	d := &signed.Delegation{Delegatee: datagen.RandAddress(), Nonce: big.NewInt(2), Expiry: new(big.Int)}
	otherDomain := signed.DomainSeparator("Gov Token", big.NewInt(2), verifying)
	sig, err := cry.Sign(signed.Digest(otherDomain, signed.DelegationHash(d.Delegatee, d.Nonce, d.Expiry)), key)
	require.NoError(t, err)
	_, err = d.Verify(cry.RecoverSigner, domain, sig, nonceOf, 0)
	assert.ErrorIs(t, err, signed.ErrInvalidNonce)
}

func TestRecoverInvalid(t *testing.T) {
	zero := func(thor.Bytes32, []byte) (thor.Address, error) { return thor.Address{}, nil }
	failing := func(thor.Bytes32, []byte) (thor.Address, error) { return thor.Address{1}, errors.New("bad") }

	b := &signed.Ballot{ProposalID: big.NewInt(1), Support: true}
	_, err := b.Verify(zero, thor.Bytes32{}, nil)
	assert.ErrorIs(t, err, signed.ErrInvalidSignature)
	_, err = b.Verify(failing, thor.Bytes32{}, nil)
	assert.ErrorIs(t, err, signed.ErrInvalidSignature)

	key, signer := datagen.RandKey()
	domain := signed.DomainSeparator("Governor", big.NewInt(1), verifying)
	sig, err := cry.Sign(signed.Digest(domain, signed.BallotHash(b.ProposalID, b.Support)), key)
	require.NoError(t, err)
	got, err := b.Verify(cry.RecoverSigner, domain, sig)
	require.NoError(t, err)
	assert.Equal(t, signer, got)
}
