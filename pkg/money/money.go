// Package money provides the monetary value object used across withdrawals.
//
// It is a value object representing a BRL amount in integer cents.
// Invariants:
//   - The amount is always stored in cents; decimal conversion happens only
//     at the boundary (construction and display).
//   - The amount is never negative.
//   - Transaction amounts are strictly positive; balance amounts may be zero.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrAmountNotPositive is returned when a transaction amount is zero or negative.
	ErrAmountNotPositive = errors.New("transaction amount must be positive")

	// ErrNegativeAmount is returned when an operation would produce a negative amount.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrTooManyDecimals is returned when a decimal amount carries more than
	// two fractional digits. This is malformed input, not a business-rule
	// violation, so it is a distinct sentinel.
	ErrTooManyDecimals = errors.New("amount cannot have more than 2 decimal places")
)

// Money is a non-negative BRL amount in integer cents.
type Money struct {
	cents int64
}

// FromDecimal creates a transaction amount from a decimal value.
// Invariants enforced:
//   - Amount must be strictly positive.
//   - Amount must not carry more than two fractional digits.
func FromDecimal(amount float64) (Money, error) {
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() {
		return Money{}, ErrAmountNotPositive
	}
	if !d.Equal(d.Round(2)) {
		return Money{}, fmt.Errorf("%w: %s", ErrTooManyDecimals, d)
	}
	return Money{cents: d.Mul(decimal.NewFromInt(100)).IntPart()}, nil
}

// FromCents creates a transaction amount from integer cents.
// The amount must be strictly positive.
func FromCents(cents int64) (Money, error) {
	if cents <= 0 {
		return Money{}, ErrAmountNotPositive
	}
	return Money{cents: cents}, nil
}

// FromCentsForBalance creates a balance amount from integer cents.
// Zero is allowed; a negative amount is not.
func FromCentsForBalance(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

// MustFromCents is a test helper style constructor that panics on invalid cents.
func MustFromCents(cents int64) Money {
	m, err := FromCents(cents)
	if err != nil {
		panic(fmt.Sprintf("money.MustFromCents(%d): %v", cents, err))
	}
	return m
}

// Cents returns the amount in integer cents.
func (m Money) Cents() int64 {
	return m.cents
}

// Amount returns the amount in whole currency units, rounded to 2 decimals.
func (m Money) Amount() float64 {
	f, _ := decimal.NewFromInt(m.cents).Div(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// Minus subtracts other from m. The result keeps the non-negative invariant,
// so subtracting more than the current amount is an error.
func (m Money) Minus(other Money) (Money, error) {
	diff := m.cents - other.cents
	if diff < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: diff}, nil
}

// GTE reports whether m is greater than or equal to other.
func (m Money) GTE(other Money) bool {
	return m.cents >= other.cents
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// String returns a display representation, e.g. "R$ 25.50".
func (m Money) String() string {
	return fmt.Sprintf("R$ %.2f", m.Amount())
}
