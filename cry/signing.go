// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cry wraps the secp256k1 primitives used for signed delegations and ballots.
package cry

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/govstake/govstake/cache"
	"github.com/govstake/govstake/thor"
)

// SignatureLength is the length of a [R || S || V] signature, V in {0, 1}.
const SignatureLength = crypto.SignatureLength

type recoverKey struct {
	digest thor.Bytes32
	sig    [SignatureLength]byte
}

var signerCache = cache.MustNewLRU[recoverKey, thor.Address](1024)

// RecoverSigner recovers the address which signed digest.
// V of sig can either be in {0, 1} or in {27, 28}.
func RecoverSigner(digest thor.Bytes32, sig []byte) (thor.Address, error) {
	if len(sig) != SignatureLength {
		return thor.Address{}, errors.Errorf("invalid signature length %d", len(sig))
	}
	var key recoverKey
	key.digest = digest
	copy(key.sig[:], sig)
	if key.sig[64] >= 27 {
		key.sig[64] -= 27
	}

	return signerCache.GetOrLoad(key, func(k recoverKey) (thor.Address, error) {
		pub, err := crypto.SigToPub(k.digest[:], k.sig[:])
		if err != nil {
			return thor.Address{}, errors.Wrap(err, "recover signer")
		}
		return thor.Address(crypto.PubkeyToAddress(*pub)), nil
	})
}

// Sign signs digest with key, V of the result is in {27, 28}.
func Sign(digest thor.Bytes32, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// SplitSignature splits a signature into the (v, r, s) triple taken by the signed entry points.
func SplitSignature(sig []byte) (v uint8, r, s thor.Bytes32) {
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	return sig[64], r, s
}

// JoinSignature is the reverse of SplitSignature.
func JoinSignature(v uint8, r, s thor.Bytes32) []byte {
	sig := make([]byte, 0, SignatureLength)
	sig = append(sig, r[:]...)
	sig = append(sig, s[:]...)
	return append(sig, v)
}
