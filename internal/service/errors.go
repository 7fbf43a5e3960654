package service

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every specific failure below wraps exactly one kind, so a
// caller can branch with errors.Is either on the kind (for HTTP status
// mapping) or on the specific error (for tests and business logic).
var (
	ErrConflict        = errors.New("conflict")
	ErrEligibility     = errors.New("eligibility violation")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
)

var (
	ErrInvalidInterval        = fmt.Errorf("%w: end time must be after start time", ErrInvalidArgument)
	ErrSpotNotAvailable       = fmt.Errorf("%w: spot is not available", ErrConflict)
	ErrTimeOverlap            = fmt.Errorf("%w: an active reservation overlaps the requested window", ErrConflict)
	ErrReservationInUse       = fmt.Errorf("%w: reservation is already used by a parking session", ErrConflict)
	ErrReservationNotActive   = fmt.Errorf("%w: reservation is not active", ErrConflict)
	ErrCannotCancelExpired    = fmt.Errorf("%w: an expired reservation cannot be cancelled", ErrConflict)
	ErrReservationMismatch    = fmt.Errorf("%w: vehicle or spot does not match the reservation", ErrConflict)
	ErrOutsideWindow          = fmt.Errorf("%w: current time is outside the reservation window", ErrConflict)
	ErrSpotSessionConflict    = fmt.Errorf("%w: spot already has an active parking session", ErrConflict)
	ErrVehicleSessionConflict = fmt.Errorf("%w: vehicle already has an active parking session", ErrConflict)
	ErrReservationHoldsSpot   = fmt.Errorf("%w: spot is held by an active reservation right now", ErrConflict)
	ErrSessionFinished        = fmt.Errorf("%w: parking session is already finished", ErrConflict)
	ErrSessionStillActive     = fmt.Errorf("%w: an active parking session cannot be deleted", ErrConflict)

	ErrUserNotActive       = fmt.Errorf("%w: user is not active", ErrEligibility)
	ErrVehicleTypeMismatch = fmt.Errorf("%w: vehicle type does not match spot type", ErrEligibility)
	ErrPermitRequired      = fmt.Errorf("%w: spot requires a disabled permit", ErrEligibility)

	ErrUserInUse    = fmt.Errorf("%w: user still owns vehicles", ErrConflict)
	ErrVehicleInUse = fmt.Errorf("%w: vehicle has reservations or parking sessions", ErrConflict)
	ErrSpotInUse    = fmt.Errorf("%w: spot has reservations or parking sessions", ErrConflict)
	ErrTariffInUse  = fmt.Errorf("%w: tariff is attached to a parking lot", ErrConflict)

	ErrNotOwner           = fmt.Errorf("%w: caller does not own this resource", ErrForbidden)
	ErrInvalidCredentials = errors.New("invalid username or password")
)
