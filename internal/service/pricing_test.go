package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"four full days", date(2026, 1, 1), date(2026, 1, 5), 4},
		{"single day", date(2026, 1, 1), date(2026, 1, 2), 1},
		{"partial day rounds up", date(2026, 1, 1), date(2026, 1, 2).Add(6 * time.Hour), 2},
		{"sub-day minimum is one", date(2026, 1, 1), date(2026, 1, 1).Add(3 * time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RentalDays(tt.start, tt.end))
		})
	}
}

func TestComputePrice(t *testing.T) {
	// 100.00/day for 3 days at 10% tax: 300.00 + 30.00 = 330.00.
	quote, err := ComputePrice(10000, date(2026, 3, 1), date(2026, 3, 4), 10, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.DurationDays)
	assert.Equal(t, models.Money(30000), quote.Subtotal)
	assert.Equal(t, models.Money(3000), quote.TaxAmount)
	assert.Equal(t, models.Money(33000), quote.Total)
}

func TestComputePrice_Deterministic(t *testing.T) {
	first, err := ComputePrice(45999, date(2026, 5, 10), date(2026, 5, 17), 10, 1500)
	require.NoError(t, err)
	second, err := ComputePrice(45999, date(2026, 5, 10), date(2026, 5, 17), 10, 1500)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Subtotal.Add(first.TaxAmount).Add(first.ExtraFees), first.Total)
}

func TestComputePrice_TaxTruncates(t *testing.T) {
	// 10% of 99 minor units truncates to 9, never rounds up.
	quote, err := ComputePrice(99, date(2026, 1, 1), date(2026, 1, 2), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, models.Money(9), quote.TaxAmount)
}

func TestComputePrice_InvalidRange(t *testing.T) {
	_, err := ComputePrice(10000, date(2026, 1, 5), date(2026, 1, 1), 10, 0)
	assert.Error(t, err)

	_, err = ComputePrice(10000, date(2026, 1, 1), date(2026, 1, 1), 10, 0)
	assert.Error(t, err)
}

func TestComputePrice_NegativeAmounts(t *testing.T) {
	_, err := ComputePrice(-1, date(2026, 1, 1), date(2026, 1, 2), 10, 0)
	assert.Error(t, err)

	_, err = ComputePrice(10000, date(2026, 1, 1), date(2026, 1, 2), 10, -5)
	assert.Error(t, err)
}
