// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "github.com/pkg/errors"

// Error kinds. Every error returned for a rejected precondition matches
// exactly one of these with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Unauthorized
var (
	ErrNotAdmin        = newError(ErrUnauthorized, "caller is not the admin")
	ErrNotManager      = newError(ErrUnauthorized, "caller cannot manage this election")
	ErrNotElector      = newError(ErrUnauthorized, "caller is not an approved elector of this election")
	ErrNotCandidate    = newError(ErrUnauthorized, "caller is not an approved candidate of this election")
	ErrUserInactive    = newError(ErrUnauthorized, "user is deactivated")
	ErrGatewayNotBound = newError(ErrUnauthorized, "caller is not the bound reporting gateway")
)

// NotFound
var (
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrUnknownUser        = newError(ErrNotFound, "unknown user")
	ErrElectionNotFound   = newError(ErrNotFound, "election not found")
	ErrMembershipNotFound = newError(ErrNotFound, "membership not found")
)

// InvalidState
var (
	ErrElectionLocked                    = newError(ErrInvalidState, "election has already opened")
	ErrElectionNotOpen                   = newError(ErrInvalidState, "election is not open")
	ErrElectionNotClosed                 = newError(ErrInvalidState, "election is not closed")
	ErrElectionNotAcceptingRegistrations = newError(ErrInvalidState, "election is not accepting registrations")
	ErrInsufficientCandidates            = newError(ErrInvalidState, "election has no approved candidates")
	ErrInvalidTransition                 = newError(ErrInvalidState, "membership is not pending")
	ErrCandidateNotApproved              = newError(ErrInvalidState, "candidate is not approved")
	ErrScheduleNotReached                = newError(ErrInvalidState, "election start time not reached")
	ErrScheduleEnded                     = newError(ErrInvalidState, "election end time has passed")
	ErrNotBootstrapped                   = newError(ErrInvalidState, "system has no admin")
)

// Conflict
var (
	ErrAlreadyRegistered   = newError(ErrConflict, "user already registered")
	ErrDuplicateMembership = newError(ErrConflict, "membership already exists")
	ErrAlreadyVoted        = newError(ErrConflict, "elector has already voted")
)

// InvalidInput
var (
	ErrInvalidIdentity = newError(ErrInvalidInput, "identity is required")
	ErrInvalidName     = newError(ErrInvalidInput, "name must be 1-200 characters")
	ErrInvalidRole     = newError(ErrInvalidInput, "invalid role")
	ErrInvalidKind     = newError(ErrInvalidInput, "kind must be elector or candidate")
	ErrInvalidDecision = newError(ErrInvalidInput, "decision must be approved or rejected")
	ErrInvalidSchedule = newError(ErrInvalidInput, "ends_at must be after starts_at")
	ErrInvalidGateway  = newError(ErrInvalidInput, "invalid reporting gateway reference")
	ErrProtectedUser   = newError(ErrInvalidInput, "operation not allowed on the admin")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
