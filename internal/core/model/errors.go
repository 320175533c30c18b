package model

import "errors"

var (
	ErrInvalidInput     = errors.New("attendance: invalid input")
	ErrInvalidDate      = errors.New("attendance: invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth     = errors.New("attendance: invalid month, expected YYYY-MM")
	ErrInvalidStatus    = errors.New("attendance: invalid status")
	ErrInvalidDateRange = errors.New("attendance: invalid date range")

	ErrAlreadyCheckedIn      = errors.New("attendance: already checked in")
	ErrAlreadyCheckedOut     = errors.New("attendance: already checked out")
	ErrNotCheckedIn          = errors.New("attendance: not checked in yet")
	ErrCheckOutBeforeCheckIn = errors.New("attendance: check-out precedes check-in")
	ErrEmailAlreadyExists    = errors.New("user: email already exists")

	ErrUnauthenticated    = errors.New("auth: missing token")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	ErrForbidden = errors.New("auth: access denied")

	ErrUserNotFound   = errors.New("user: not found")
	ErrRecordNotFound = errors.New("attendance: record not found")
)

// ErrorKind groups errors by how they are surfaced to callers.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidMonth),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidDateRange):
		return KindValidation
	case errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrAlreadyCheckedOut),
		errors.Is(err, ErrNotCheckedIn),
		errors.Is(err, ErrCheckOutBeforeCheckIn),
		errors.Is(err, ErrEmailAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCredentials):
		return KindAuth
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrRecordNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
