// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	"crypto/ecdsa"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tangle-network/lst/cache"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

var signerCacheSize = 1024

// SigningHash returns the hash the sender signs, covering its index and the payload.
func (m *SignedRoundMessage) SigningHash() tangle.Bytes32 {
	var sender [2]byte
	binary.BigEndian.PutUint16(sender[:], m.Sender)
	return tangle.Keccak256(sender[:], m.Message)
}

// SignRoundMessage encodes msg and signs it on behalf of sender.
func SignRoundMessage(sender uint16, msg any, key *ecdsa.PrivateKey) (*SignedRoundMessage, error) {
	payload, err := rlp.EncodeToBytes(msg)
	if err != nil {
		return nil, err
	}
	m := &SignedRoundMessage{Sender: sender, Message: payload}
	hash := m.SigningHash()
	if m.Signature, err = crypto.Sign(hash[:], key); err != nil {
		return nil, err
	}
	return m, nil
}

// Signing recovers the signers of round messages.
type Signing struct {
	cache *cache.LRU[tangle.Bytes32, PublicKey]
}

func NewSigning() *Signing {
	c, _ := cache.NewLRU[tangle.Bytes32, PublicKey](signerCacheSize)
	return &Signing{cache: c}
}

// Signer recovers the compressed public key that signed m.
func (s *Signing) Signer(m *SignedRoundMessage) (PublicKey, error) {
	hash := m.SigningHash()
	key := tangle.Keccak256(hash[:], m.Signature)
	if pub, ok := s.cache.Get(key); ok {
		return pub, nil
	}

	pub, err := crypto.SigToPub(hash[:], m.Signature)
	if err != nil {
		return PublicKey{}, reverts.ErrInvalidSignature
	}
	var signer PublicKey
	copy(signer[:], crypto.CompressPubkey(pub))
	s.cache.Add(key, signer)
	return signer, nil
}

// ensureSignedBy checks m is signed by expected.
func (s *Signing) ensureSignedBy(m *SignedRoundMessage, expected PublicKey) error {
	signer, err := s.Signer(m)
	if err != nil {
		return err
	}
	if signer != expected {
		return reverts.ErrNotSignedByOffender
	}
	return nil
}

// PublicKeyOf returns the compressed public key of key.
func PublicKeyOf(key *ecdsa.PrivateKey) PublicKey {
	var pub PublicKey
	copy(pub[:], crypto.CompressPubkey(&key.PublicKey))
	return pub
}
