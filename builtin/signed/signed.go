// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package signed builds and verifies the typed structured data digests of
// off-chain signed delegations and ballots.
package signed

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/govstake/govstake/abi"
	"github.com/govstake/govstake/thor"
)

var (
	DomainTypeHash     = thor.Keccak256([]byte("EIP712Domain(string name,uint256 chainId,address verifyingContract)"))
	DelegationTypeHash = thor.Keccak256([]byte("Delegation(address delegatee,uint256 nonce,uint256 expiry)"))
	BallotTypeHash     = thor.Keccak256([]byte("Ballot(uint256 proposalId,bool support)"))
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrExpired          = errors.New("signature expired")
)

var (
	domainArgs     = abi.Arguments("bytes32", "bytes32", "uint256", "address")
	delegationArgs = abi.Arguments("bytes32", "address", "uint256", "uint256")
	ballotArgs     = abi.Arguments("bytes32", "uint256", "bool")
)

// Recoverer recovers the signer of a digest.
type Recoverer func(digest thor.Bytes32, sig []byte) (thor.Address, error)

func hashEncoded(args []byte, err error) thor.Bytes32 {
	if err != nil {
		// fixed argument types, only a programming error gets here
		panic(err)
	}
	return thor.Keccak256(args)
}

// DomainSeparator returns the domain of a verifying contract.
func DomainSeparator(name string, chainID *big.Int, verifyingContract thor.Address) thor.Bytes32 {
	return hashEncoded(abi.Encode(domainArgs,
		DomainTypeHash,
		thor.Keccak256([]byte(name)),
		chainID,
		verifyingContract,
	))
}

// DelegationHash returns the struct hash of a delegation.
func DelegationHash(delegatee thor.Address, nonce, expiry *big.Int) thor.Bytes32 {
	return hashEncoded(abi.Encode(delegationArgs, DelegationTypeHash, delegatee, nonce, expiry))
}

// BallotHash returns the struct hash of a ballot.
func BallotHash(proposalID *big.Int, support bool) thor.Bytes32 {
	return hashEncoded(abi.Encode(ballotArgs, BallotTypeHash, proposalID, support))
}

// Digest is keccak256(0x19 0x01 || domainSeparator || structHash).
func Digest(domainSeparator, structHash thor.Bytes32) thor.Bytes32 {
	return thor.Keccak256([]byte{0x19, 0x01}, domainSeparator[:], structHash[:])
}

// Recover recovers the non-zero signer of digest.
func Recover(recoverer Recoverer, digest thor.Bytes32, sig []byte) (thor.Address, error) {
	signer, err := recoverer(digest, sig)
	if err != nil || signer.IsZero() {
		return thor.Address{}, ErrInvalidSignature
	}
	return signer, nil
}

// Delegation is a signed request to delegate the signer's votes.
type Delegation struct {
	Delegatee thor.Address
	Nonce     *big.Int
	Expiry    *big.Int
}

// Verify recovers the signer of the delegation and checks it against the signer's current
// nonce and the current time. The caller consumes the nonce.
func (d *Delegation) Verify(
	recoverer Recoverer,
	domainSeparator thor.Bytes32,
	sig []byte,
	nonceOf func(thor.Address) (*big.Int, error),
	now uint64,
) (thor.Address, error) {
	digest := Digest(domainSeparator, DelegationHash(d.Delegatee, d.Nonce, d.Expiry))
	signer, err := Recover(recoverer, digest, sig)
	if err != nil {
		return thor.Address{}, err
	}
	nonce, err := nonceOf(signer)
	if err != nil {
		return thor.Address{}, err
	}
	if d.Nonce.Cmp(nonce) != 0 {
		return thor.Address{}, ErrInvalidNonce
	}
	if d.Expiry.Sign() != 0 && new(big.Int).SetUint64(now).Cmp(d.Expiry) > 0 {
		return thor.Address{}, ErrExpired
	}
	return signer, nil
}

// Ballot is a signed vote, ballots carry neither nonce nor expiry.
type Ballot struct {
	ProposalID *big.Int
	Support    bool
}

// Verify recovers the signer of the ballot.
func (b *Ballot) Verify(recoverer Recoverer, domainSeparator thor.Bytes32, sig []byte) (thor.Address, error) {
	digest := Digest(domainSeparator, BallotHash(b.ProposalID, b.Support))
	return Recover(recoverer, digest, sig)
}
