// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/govstake/govstake/thor"
)

func RandomHash() thor.Bytes32 {
	var b32 thor.Bytes32
	rand.Read(b32[:])
	return b32
}

func RandAddress() thor.Address {
	var addr thor.Address
	rand.Read(addr[:])
	return addr
}

// RandKey generates a secp256k1 key with its address.
func RandKey() (*ecdsa.PrivateKey, thor.Address) {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return key, thor.Address(crypto.PubkeyToAddress(key.PublicKey))
}
