// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package misbehavior

import (
	"github.com/tangle-network/lst/lst/reverts"
)

func (v *Verifier) verifyKeyRefresh(sub *Submission) error {
	j := &sub.Justification
	switch j.Reason {
	case ReasonInvalidDecommitment:
		if j.Round1 == nil || len(j.Round2) != 1 {
			return reverts.ErrInvalidJustification
		}
		return v.refreshInvalidDecommitment(sub, j.Round1, &j.Round2[0])
	case ReasonInvalidRingPedersenParameters, ReasonInvalidModProof:
		return reverts.ErrMisbehaviorNotImplemented
	default:
		return reverts.ErrInvalidJustification
	}
}

// refreshInvalidDecommitment proves the round 2 auxiliary broadcast does not
// open the round 1 commitment.
func (v *Verifier) refreshInvalidDecommitment(sub *Submission, round1, round2 *SignedRoundMessage) error {
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
		r2 AuxRound2
	)
	if err := decode(round1.Message, &r1); err != nil {
		return err
	}
	if err := decode(round2.Message, &r2); err != nil {
		return err
	}
	if r1.Commitment == r2.Commitment(ExecutionID(sub.JobID, AuxGenEID), round1.Sender) {
		return reverts.ErrValidDecommitment
	}
	return nil
}
