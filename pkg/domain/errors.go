package domain

import "errors"

// Business-rule errors raised by the withdrawal domain.
var (
	// ErrAccountNotFound is returned when the target account does not exist.
	ErrAccountNotFound = errors.New("ACCOUNT_NOT_FOUND")
	// ErrInsufficientFunds is returned when a debit exceeds the account balance.
	ErrInsufficientFunds = errors.New("INSUFFICIENT_FUNDS")
	// ErrSchedulePast is returned when a schedule time is not in the future.
	ErrSchedulePast = errors.New("schedule cannot be in the past")
	// ErrScheduleTooFar is returned when a schedule time is beyond the allowed window.
	ErrScheduleTooFar = errors.New("schedule cannot be more than 7 days in the future")

	// ErrUnsupportedMethod is returned for any withdrawal method other than PIX.
	ErrUnsupportedMethod = errors.New("only PIX withdrawals are supported")
	// ErrInvalidScheduleFormat is returned for an unparseable schedule string.
	ErrInvalidScheduleFormat = errors.New("invalid schedule format, expected YYYY-MM-DD HH:MM")

	// ErrUnsupportedPixType is returned for a PIX key type outside email/phone/random.
	ErrUnsupportedPixType = errors.New("unsupported PIX key type")
	// ErrInvalidPixEmail is returned when an email PIX key fails syntax validation.
	ErrInvalidPixEmail = errors.New("invalid PIX e-mail")
	// ErrInvalidPixPhone is returned when a phone PIX key has fewer than 8 digits.
	ErrInvalidPixPhone = errors.New("invalid PIX phone")
	// ErrInvalidPixRandomKey is returned when a random PIX key is shorter than 16 characters.
	ErrInvalidPixRandomKey = errors.New("invalid PIX random key")
)

// Failure reasons recorded on a withdraw row when a debit cannot complete.
const (
	ReasonAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
)
