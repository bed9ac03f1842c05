// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// DebugAssertions makes defensive failures panic. It is set by tests and by
// the --debug-assertions flag.
var DebugAssertions = false

// ErrRevert is a domain failure. The operation that returned it leaves no trace in state.
type ErrRevert struct {
	message   string
	defensive bool
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Is matches reverts by message, so wrapped copies compare equal to the sentinels.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.message == e.message && t.defensive == e.defensive
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Defensive reports a state that should be unreachable. It panics when
// DebugAssertions is set and returns a revert otherwise.
func Defensive(kind string) error {
	err := &ErrRevert{message: "Defensive(" + kind + ")", defensive: true}
	if DebugAssertions {
		panic(err)
	}
	return err
}

// IsDefensive returns whether err originates from Defensive.
func IsDefensive(err error) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.defensive
}

// Pool, member and payout failures.
var (
	ErrPoolNotFound                            = New("PoolNotFound")
	ErrPoolMemberNotFound                      = New("PoolMemberNotFound")
	ErrSubPoolsNotFound                        = New("SubPoolsNotFound")
	ErrFullyUnbonding                          = New("FullyUnbonding")
	ErrMaxUnbondingLimit                       = New("MaxUnbondingLimit")
	ErrCannotWithdrawAny                       = New("CannotWithdrawAny")
	ErrMinimumBondNotMet                       = New("MinimumBondNotMet")
	ErrOverflowRisk                            = New("OverflowRisk")
	ErrNotDestroying                           = New("NotDestroying")
	ErrNotNominator                            = New("NotNominator")
	ErrNotKickerOrDestroying                   = New("NotKickerOrDestroying")
	ErrNotOpen                                 = New("NotOpen")
	ErrMaxPools                                = New("MaxPools")
	ErrCanNotChangeState                       = New("CanNotChangeState")
	ErrDoesNotHavePermission                   = New("DoesNotHavePermission")
	ErrMetadataExceedsMaxLen                   = New("MetadataExceedsMaxLen")
	ErrPartialUnbondNotAllowedPermissionlessly = New("PartialUnbondNotAllowedPermissionlessly")
	ErrMaxCommissionRestricted                 = New("MaxCommissionRestricted")
	ErrCommissionExceedsMaximum                = New("CommissionExceedsMaximum")
	ErrCommissionExceedsGlobalMaximum          = New("CommissionExceedsGlobalMaximum")
	ErrCommissionChangeThrottled               = New("CommissionChangeThrottled")
	ErrCommissionChangeRateNotAllowed          = New("CommissionChangeRateNotAllowed")
	ErrPoolIDInUse                             = New("PoolIdInUse")
	ErrInvalidPoolID                           = New("InvalidPoolId")
	ErrNoBalanceToUnbond                       = New("NoBalanceToUnbond")
	ErrTokenRequired                           = New("TokenRequired")
	ErrPoolTokenAlreadyInUse                   = New("PoolTokenAlreadyInUse")
	ErrDurationOutOfBounds                     = New("DurationOutOfBounds")
	ErrCapacityExceeded                        = New("CapacityExceeded")
	ErrAttributeCapacityExceedsGlobalCapacity  = New("AttributeCapacityExceedsGlobalCapacity")
	ErrAttributeValueDecodeFailed              = New("AttributeValueDecodeFailed")
	ErrNoopMutation                            = New("NoopMutation")
	ErrCapacityMutationRestricted              = New("CapacityMutationRestricted")
	ErrInvalidEraToReward                      = New("InvalidEraToReward")
	ErrWrongPoolCount                          = New("WrongPoolCount")
	ErrMissingPayouts                          = New("MissingPayouts")
	ErrPayoutsAlreadyProcessed                 = New("PayoutsAlreadyProcessed")
	ErrBoundExceeded                           = New("BoundExceeded")
)

// Misbehavior report failures. The Valid* errors reject an accusation whose
// transcript shows the offender behaved correctly.
var (
	ErrInvalidRoleType           = New("InvalidRoleType")
	ErrInvalidJustification      = New("InvalidJustification")
	ErrInvalidSignature          = New("InvalidSignature")
	ErrNotSignedByOffender       = New("NotSignedByOffender")
	ErrMalformedRoundMessage     = New("MalformedRoundMessage")
	ErrValidDecommitment         = New("ValidDecommitment")
	ErrValidDataSize             = New("ValidDataSize")
	ErrValidFeldmanVerification  = New("ValidFeldmanVerification")
	ErrValidSchnorrProof         = New("ValidSchnorrProof")
	ErrMisbehaviorNotImplemented = New("NotImplemented")
)

// Defensive kinds.
const (
	NotEnoughSpaceInUnbondPool   = "NotEnoughSpaceInUnbondPool"
	PoolNotFound                 = "PoolNotFound"
	RewardPoolNotFound           = "RewardPoolNotFound"
	SubPoolsNotFound             = "SubPoolsNotFound"
	BondedStashKilledPrematurely = "BondedStashKilledPrematurely"
)
