package service

import (
	"time"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/models"
)

// FeePolicy is the single home of every percentage-based business fee.
// All rates come from config so a fleet operator can tune them without a
// rebuild.
type FeePolicy struct {
	cfg config.FeeConfig
}

func NewFeePolicy(cfg config.FeeConfig) *FeePolicy {
	return &FeePolicy{cfg: cfg}
}

func (p *FeePolicy) TaxRatePercent() int64 {
	return p.cfg.TaxRatePercent
}

// CancellationFee charges a percentage of the booking total when the
// cancellation lands inside the penalty window before the start date.
// Outside the window the fee is zero.
func (p *FeePolicy) CancellationFee(total models.Money, start, now time.Time) models.Money {
	window := time.Duration(p.cfg.CancellationWindowHours) * time.Hour
	if start.Sub(now) >= window {
		return 0
	}
	return total.Percent(p.cfg.CancellationFeePercent)
}

// LateSurcharge charges a fraction of the daily rate per day the car came
// back after the agreed end date. On-time or early returns cost nothing.
func (p *FeePolicy) LateSurcharge(dailyRate models.Money, end, returnedAt time.Time) models.Money {
	if !returnedAt.After(end) {
		return 0
	}
	lateDays := RentalDays(end, returnedAt)
	perDay := dailyRate.Percent(p.cfg.LateSurchargePercent)
	return perDay.MulDays(lateDays)
}
