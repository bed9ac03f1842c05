// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	"encoding/binary"
	"hash"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/minio/sha256-simd"

	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/tangle"
)

// SecurityBytes is the length of the random identifiers and decommitments.
const SecurityBytes = 48

var (
	KeygenEID = []byte("dfns.cggmp21.keygen")
	AuxGenEID = []byte("dfns.cggmp21.aux_gen")
)

const (
	keygenTag          = "dfns.cggmp21.keygen.threshold.tag"
	keygenRound2Tag    = "dfns.cggmp21.keygen.threshold.round1"
	keygenChallengeTag = "dfns.cggmp21.keygen.threshold.challenge"
	auxGenTag          = "dfns.cggmp21.aux_gen.tag"
	auxGenRound2Tag    = "dfns.cggmp21.aux_gen.round2"
)

// ExecutionID binds a protocol run to a job.
func ExecutionID(jobID uint64, protocol []byte) []byte {
	mix := tangle.Keccak256(protocol)
	eid := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(mix)), jobID)
	return append(eid, mix[:]...)
}

// Round1 commits to the party's round 2 broadcast.
type Round1 struct {
	Commitment tangle.Bytes32
}

// KeygenRound2Broad is the round 2 keygen broadcast.
type KeygenRound2Broad struct {
	Rid       [SecurityBytes]byte
	F         []Point // Feldman commitments, lowest degree first
	SchCommit Point
	Decommit  [SecurityBytes]byte
}

// Commitment is the hash the sender must have committed to in round 1.
func (m *KeygenRound2Broad) Commitment(eid []byte, party uint16) tangle.Bytes32 {
	d := newDigest(keygenTag).uint16(party).bytes(eid).bytes([]byte(keygenRound2Tag)).bytes(m.Rid[:])
	d.uint64(uint64(len(m.F)))
	for _, c := range m.F {
		d.bytes(c[:])
	}
	return d.bytes(m.SchCommit[:]).bytes(m.Decommit[:]).sum()
}

// KeygenRound2Uni is the secret share sent by the sender to Recipient.
type KeygenRound2Uni struct {
	Recipient uint16
	Sigma     Scalar
}

// KeygenRound3 proves knowledge of the sender's share.
type KeygenRound3 struct {
	SchProof Scalar
}

// AuxRound2 is the round 2 key refresh broadcast.
type AuxRound2 struct {
	N           *big.Int
	S           *big.Int
	T           *big.Int
	ParamsProof [][]byte
	Rho         [SecurityBytes]byte
	Decommit    [SecurityBytes]byte
}

// Commitment is the hash the sender must have committed to in round 1.
func (m *AuxRound2) Commitment(eid []byte, party uint16) tangle.Bytes32 {
	d := newDigest(auxGenTag).uint16(party).bytes(eid).bytes([]byte(auxGenRound2Tag))
	d.bytes(m.N.Bytes()).bytes(m.S.Bytes()).bytes(m.T.Bytes())
	d.uint64(uint64(len(m.ParamsProof)))
	for _, p := range m.ParamsProof {
		d.bytes(p)
	}
	return d.bytes(m.Rho[:]).bytes(m.Decommit[:]).sum()
}

func decode(b []byte, val any) error {
	if err := rlp.DecodeBytes(b, val); err != nil {
		return reverts.ErrMalformedRoundMessage
	}
	return nil
}

// digest is a tagged sha256 where every field is length prefixed, so field
// boundaries can not be shifted.
type digest struct {
	h hash.Hash
}

func newDigest(tag string) *digest {
	d := &digest{h: sha256.New()}
	return d.bytes([]byte(tag))
}

func (d *digest) bytes(b []byte) *digest {
	d.uint64(uint64(len(b)))
	d.h.Write(b)
	return d
}

func (d *digest) uint64(v uint64) *digest {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	d.h.Write(b[:])
	return d
}

func (d *digest) uint16(v uint16) *digest {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	d.h.Write(b[:])
	return d
}

func (d *digest) sum() (out tangle.Bytes32) {
	d.h.Sum(out[:0])
	return
}
