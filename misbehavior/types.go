// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RoleType is the role the offender was serving when it misbehaved.
type RoleType uint8

const (
	RoleTSS RoleType = iota + 1
	RoleZkSaaS
)

func (r RoleType) String() string {
	switch r {
	case RoleTSS:
		return "tss"
	case RoleZkSaaS:
		return "zksaas"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r RoleType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RoleType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tss":
		*r = RoleTSS
	case "zksaas":
		*r = RoleZkSaaS
	default:
		return fmt.Errorf("unknown role type %q", text)
	}
	return nil
}

// PublicKey is a compressed secp256k1 public key.
type PublicKey [33]byte

func (k PublicKey) String() string {
	return hexutil.Encode(k[:])
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(k) {
		return fmt.Errorf("invalid public key length %d", len(b))
	}
	copy(k[:], b)
	return nil
}

// SignedRoundMessage is a protocol message as broadcast by one party, signed
// over its sender index and payload.
type SignedRoundMessage struct {
	Sender    uint16        `json:"sender"`
	Message   hexutil.Bytes `json:"message"`
	Signature hexutil.Bytes `json:"signature"`
}

// Protocol names the aborted protocol run.
type Protocol string

const (
	ProtocolKeygen     Protocol = "keygen"
	ProtocolKeyRefresh Protocol = "keyRefresh"
	ProtocolSigning    Protocol = "signing"
)

// Reason names why a protocol run was aborted.
type Reason string

const (
	// keygen and key refresh
	ReasonInvalidDecommitment Reason = "invalidDecommitment"
	// keygen
	ReasonInvalidDataSize           Reason = "invalidDataSize"
	ReasonFeldmanVerificationFailed Reason = "feldmanVerificationFailed"
	ReasonInvalidSchnorrProof       Reason = "invalidSchnorrProof"
	// key refresh
	ReasonInvalidRingPedersenParameters Reason = "invalidRingPedersenParameters"
	ReasonInvalidModProof               Reason = "invalidModProof"
	// signing
	ReasonEncProofOfK          Reason = "encProofOfK"
	ReasonInvalidPsi           Reason = "invalidPsi"
	ReasonInvalidPsiPrimePrime Reason = "invalidPsiPrimePrime"
	ReasonMismatchedDelta      Reason = "mismatchedDelta"
)

// Justification carries the transcript that proves the accusation. Which
// rounds are required depends on the reason:
//
//	invalidDecommitment        Round1, Round2[0]
//	invalidDataSize            Round2[0]
//	feldmanVerificationFailed  Round2[0], Round2Uni
//	invalidSchnorrProof        Round2 of every participant, Round3
type Justification struct {
	Protocol     Protocol             `json:"protocol"`
	Participants []PublicKey          `json:"participants"`
	Threshold    uint16               `json:"threshold"`
	Reason       Reason               `json:"reason"`
	Round1       *SignedRoundMessage  `json:"round1,omitempty"`
	Round2       []SignedRoundMessage `json:"round2,omitempty"`
	Round2Uni    *SignedRoundMessage  `json:"round2Uni,omitempty"`
	Round3       *SignedRoundMessage  `json:"round3,omitempty"`
}

// Submission accuses Offender of misbehaving during job JobID.
type Submission struct {
	RoleType      RoleType      `json:"roleType"`
	Offender      PublicKey     `json:"offender"`
	JobID         uint64        `json:"jobId"`
	Justification Justification `json:"justification"`
}
