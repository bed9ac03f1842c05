// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package misbehavior verifies accusations against threshold signature
// parties by replaying the signed protocol transcript of the offender.
package misbehavior

import (
	"github.com/tangle-network/lst/log"
	"github.com/tangle-network/lst/lst/reverts"
	"github.com/tangle-network/lst/metrics"
)

var (
	logger = log.WithContext("pkg", "misbehavior")

	metricReports = metrics.LazyLoadCounterVec("misbehavior_reports_count", []string{"protocol", "result"})
)

// Verifier checks misbehavior submissions. A nil error means the offense is proven.
type Verifier struct {
	signing *Signing
}

func New() *Verifier {
	return &Verifier{signing: NewSigning()}
}

// Verify checks the submission. It returns nil when the transcript proves
// the offense, and a revert describing why the accusation is rejected otherwise.
func (v *Verifier) Verify(sub *Submission) error {
	logger.Debug("verifying misbehavior", "offender", sub.Offender, "job", sub.JobID,
		"protocol", sub.Justification.Protocol, "reason", sub.Justification.Reason)

	err := v.verify(sub)

	result := "proven"
	if err != nil {
		result = err.Error()
		logger.Info("misbehavior rejected", "offender", sub.Offender, "job", sub.JobID, "err", err)
	} else {
		logger.Info("misbehavior proven", "offender", sub.Offender, "job", sub.JobID, "reason", sub.Justification.Reason)
	}
	metricReports().AddWithLabel(1, map[string]string{"protocol": string(sub.Justification.Protocol), "result": result})
	return err
}

func (v *Verifier) verify(sub *Submission) error {
	if sub.RoleType != RoleTSS {
		return reverts.ErrInvalidRoleType
	}
	switch sub.Justification.Protocol {
	case ProtocolKeygen:
		return v.verifyKeygen(sub)
	case ProtocolKeyRefresh:
		return v.verifyKeyRefresh(sub)
	case ProtocolSigning:
		return reverts.ErrMisbehaviorNotImplemented
	default:
		return reverts.ErrInvalidJustification
	}
}
