package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/models"
)

func testFeePolicy() *FeePolicy {
	return NewFeePolicy(config.FeeConfig{
		TaxRatePercent:          10,
		CancellationFeePercent:  20,
		CancellationWindowHours: 48,
		LateSurchargePercent:    50,
	})
}

func TestCancellationFee_OutsideWindow(t *testing.T) {
	policy := testFeePolicy()
	now := date(2026, 6, 1)
	start := now.Add(72 * time.Hour)

	assert.Equal(t, models.Money(0), policy.CancellationFee(33000, start, now))
}

func TestCancellationFee_InsideWindow(t *testing.T) {
	policy := testFeePolicy()
	now := date(2026, 6, 1)
	start := now.Add(24 * time.Hour)

	// 20% of 330.00 is 66.00.
	assert.Equal(t, models.Money(6600), policy.CancellationFee(33000, start, now))
}

func TestCancellationFee_ExactWindowBoundary(t *testing.T) {
	policy := testFeePolicy()
	now := date(2026, 6, 1)
	start := now.Add(48 * time.Hour)

	// Exactly at the window edge still counts as outside.
	assert.Equal(t, models.Money(0), policy.CancellationFee(33000, start, now))
}

func TestLateSurcharge_OnTime(t *testing.T) {
	policy := testFeePolicy()
	end := date(2026, 6, 5)

	assert.Equal(t, models.Money(0), policy.LateSurcharge(10000, end, end))
	assert.Equal(t, models.Money(0), policy.LateSurcharge(10000, end, end.Add(-2*time.Hour)))
}

func TestLateSurcharge_Late(t *testing.T) {
	policy := testFeePolicy()
	end := date(2026, 6, 5)

	// One day late: 50% of the daily rate.
	assert.Equal(t, models.Money(5000), policy.LateSurcharge(10000, end, end.Add(24*time.Hour)))

	// 30 hours late rounds up to two late days.
	assert.Equal(t, models.Money(10000), policy.LateSurcharge(10000, end, end.Add(30*time.Hour)))
}
