package money_test

import (
	"testing"

	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		wantCents int64
		wantErr   error
	}{
		{"whole amount", 100, 10000, nil},
		{"two decimals", 25.50, 2550, nil},
		{"single cent", 0.01, 1, nil},
		{"three decimals rejected", 10.999, 0, money.ErrTooManyDecimals},
		{"zero rejected", 0, 0, money.ErrAmountNotPositive},
		{"negative rejected", -5.00, 0, money.ErrAmountNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := money.FromDecimal(tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCents, m.Cents())
		})
	}
}

func TestFromDecimal_RoundTrip(t *testing.T) {
	for _, amount := range []float64{0.01, 0.10, 1, 19.90, 25.50, 100, 9999.99} {
		m, err := money.FromDecimal(amount)
		require.NoError(t, err)
		assert.InDelta(t, amount, m.Amount(), 0, "amount %v should survive the round trip", amount)
	}
}

func TestFromCents(t *testing.T) {
	m, err := money.FromCents(2550)
	require.NoError(t, err)
	assert.Equal(t, int64(2550), m.Cents())
	assert.InDelta(t, 25.50, m.Amount(), 0)

	_, err = money.FromCents(0)
	assert.ErrorIs(t, err, money.ErrAmountNotPositive)

	_, err = money.FromCents(-1)
	assert.ErrorIs(t, err, money.ErrAmountNotPositive)
}

func TestFromCentsForBalance(t *testing.T) {
	zero, err := money.FromCentsForBalance(0)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = money.FromCentsForBalance(-100)
	assert.ErrorIs(t, err, money.ErrNegativeAmount)
}

func TestMinus(t *testing.T) {
	a := money.MustFromCents(10000)
	b := money.MustFromCents(2550)

	diff, err := a.Minus(b)
	require.NoError(t, err)
	assert.Equal(t, int64(7450), diff.Cents())

	// invariant: the result can never go negative
	_, err = b.Minus(a)
	assert.ErrorIs(t, err, money.ErrNegativeAmount)

	same, err := a.Minus(a)
	require.NoError(t, err)
	assert.True(t, same.IsZero())
}

func TestGTE(t *testing.T) {
	a := money.MustFromCents(10000)
	b := money.MustFromCents(2550)

	assert.True(t, a.GTE(b))
	assert.True(t, a.GTE(a))
	assert.False(t, b.GTE(a))
}

func TestString(t *testing.T) {
	assert.Equal(t, "R$ 25.50", money.MustFromCents(2550).String())
}
