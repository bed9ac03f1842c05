// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/tangle-network/lst/lst/reverts"
)

func (v *Verifier) verifyKeygen(sub *Submission) error {
	j := &sub.Justification
	switch j.Reason {
	case ReasonInvalidDecommitment:
		if j.Round1 == nil || len(j.Round2) != 1 {
			return reverts.ErrInvalidJustification
		}
		return v.keygenInvalidDecommitment(sub, j.Round1, &j.Round2[0])
	case ReasonInvalidDataSize:
		if len(j.Round2) != 1 {
			return reverts.ErrInvalidJustification
		}
		return v.keygenInvalidDataSize(sub, j.Threshold, &j.Round2[0])
	case ReasonFeldmanVerificationFailed:
		if len(j.Round2) != 1 || j.Round2Uni == nil {
			return reverts.ErrInvalidJustification
		}
		return v.keygenFeldman(sub, &j.Round2[0], j.Round2Uni)
	case ReasonInvalidSchnorrProof:
		if j.Round3 == nil {
			return reverts.ErrInvalidJustification
		}
		return v.keygenSchnorrProof(sub, j.Participants, j.Round2, j.Round3)
	default:
		return reverts.ErrInvalidJustification
	}
}

// keygenInvalidDecommitment proves the round 2 broadcast does not open the
// round 1 commitment.
func (v *Verifier) keygenInvalidDecommitment(sub *Submission, round1, round2 *SignedRoundMessage) error {
	if err := v.signing.ensureSignedBy(round1, sub.Offender); err != nil {
		return err
	}
	if err := v.signing.ensureSignedBy(round2, sub.Offender); err != nil {
		return err
	}
	if round1.Sender != round2.Sender {
		return reverts.ErrInvalidJustification
	}

	var (
		r1 Round1
		r2 KeygenRound2Broad
	)
	if err := decode(round1.Message, &r1); err != nil {
		return err
	}
	if err := decode(round2.Message, &r2); err != nil {
		return err
	}
	if r1.Commitment == r2.Commitment(ExecutionID(sub.JobID, KeygenEID), round1.Sender) {
		return reverts.ErrValidDecommitment
	}
	return nil
}

// keygenInvalidDataSize proves the Feldman commitment does not have t coefficients.
func (v *Verifier) keygenInvalidDataSize(sub *Submission, t uint16, round2 *SignedRoundMessage) error {
	if err := v.signing.ensureSignedBy(round2, sub.Offender); err != nil {
		return err
	}
	var r2 KeygenRound2Broad
	if err := decode(round2.Message, &r2); err != nil {
		return err
	}
	if len(r2.F) == int(t) {
		return reverts.ErrValidDataSize
	}
	return nil
}

// keygenFeldman proves the share sent to the recipient is not on the
// committed polynomial, F(recipient+1) != G * sigma.
func (v *Verifier) keygenFeldman(sub *Submission, round2, round2Uni *SignedRoundMessage) error {
	if err := v.signing.ensureSignedBy(round2, sub.Offender); err != nil {
		return err
	}
	if err := v.signing.ensureSignedBy(round2Uni, sub.Offender); err != nil {
		return err
	}
	if round2.Sender != round2Uni.Sender {
		return reverts.ErrInvalidJustification
	}

	var (
		broad KeygenRound2Broad
		uni   KeygenRound2Uni
	)
	if err := decode(round2.Message, &broad); err != nil {
		return err
	}
	if err := decode(round2Uni.Message, &uni); err != nil {
		return err
	}
	f, err := parsePolynomial(broad.F)
	if err != nil {
		return err
	}
	sigma, err := uni.Sigma.modN()
	if err != nil {
		return err
	}

	if pointsEqual(f.eval(uint32(uni.Recipient)+1), baseMult(sigma)) {
		return reverts.ErrValidFeldmanVerification
	}
	return nil
}

// keygenSchnorrProof proves the round 3 proof of knowledge of the offender's
// share does not verify. round2 holds the broadcasts of every participant in
// participant order.
func (v *Verifier) keygenSchnorrProof(sub *Submission, participants []PublicKey, round2 []SignedRoundMessage, round3 *SignedRoundMessage) error {
	i := int(round3.Sender)
	if err := v.signing.ensureSignedBy(round3, sub.Offender); err != nil {
		return err
	}
	if len(round2) != len(participants) || i >= len(participants) {
		return reverts.ErrInvalidJustification
	}
	for k := range round2 {
		if err := v.signing.ensureSignedBy(&round2[k], participants[k]); err != nil {
			return err
		}
	}
	if err := v.signing.ensureSignedBy(&round2[i], sub.Offender); err != nil {
		return err
	}

	var r3 KeygenRound3
	if err := decode(round3.Message, &r3); err != nil {
		return err
	}
	broads := make([]KeygenRound2Broad, len(round2))
	for k := range round2 {
		if err := decode(round2[k].Message, &broads[k]); err != nil {
			return err
		}
	}

	var (
		rid [SecurityBytes]byte
		sum polynomial
	)
	for k := range broads {
		for b := range rid {
			rid[b] ^= broads[k].Rid[b]
		}
		f, err := parsePolynomial(broads[k].F)
		if err != nil {
			return err
		}
		sum = sum.add(f)
	}

	y := sum.eval(uint32(i) + 1)
	h, err := broads[i].SchCommit.jacobian()
	if err != nil {
		return err
	}
	z, err := r3.SchProof.modN()
	if err != nil {
		return err
	}
	c := schnorrChallenge(ExecutionID(sub.JobID, KeygenEID), uint16(i), rid[:], NewPoint(y), broads[i].SchCommit)

	if verifySchnorr(h, y, c, z) {
		return reverts.ErrValidSchnorrProof
	}
	return nil
}

// schnorrChallenge derives the non interactive challenge of the proof of
// knowledge of the share behind y.
func schnorrChallenge(eid []byte, party uint16, rid []byte, y, h Point) *secp.ModNScalar {
	digest := newDigest(keygenChallengeTag).bytes(eid).uint16(party).bytes(rid).bytes(y[:]).bytes(h[:]).sum()
	var c secp.ModNScalar
	c.SetByteSlice(digest[:])
	return &c
}

// verifySchnorr checks G * z == h + y * c.
func verifySchnorr(h, y *secp.JacobianPoint, c, z *secp.ModNScalar) bool {
	var yc, rhs secp.JacobianPoint
	secp.ScalarMultNonConst(c, y, &yc)
	secp.AddNonConst(h, &yc, &rhs)
	return pointsEqual(baseMult(z), &rhs)
}
