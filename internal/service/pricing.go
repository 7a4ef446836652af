package service

import (
	"fmt"
	"time"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/models"
)

// PriceQuote is the full pricing breakdown for a rental period.
type PriceQuote struct {
	DurationDays int
	Subtotal     models.Money
	TaxAmount    models.Money
	ExtraFees    models.Money
	Total        models.Money
}

// RentalDays returns the billable duration for [start, end). Partial days
// round up and the minimum charge is one day.
func RentalDays(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	days := int(hours / 24)
	if float64(days)*24 < hours {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// ComputePrice builds a deterministic quote from integer minor units.
// Same inputs always produce the same quote; no floats touch the money.
func ComputePrice(dailyRate models.Money, start, end time.Time, taxRatePercent int64, extraFees models.Money) (PriceQuote, error) {
	if !start.Before(end) {
		return PriceQuote{}, fmt.Errorf("%w: start date must precede end date", database.ErrValidation)
	}
	if dailyRate < 0 || extraFees < 0 {
		return PriceQuote{}, fmt.Errorf("%w: negative amounts are not allowed", database.ErrValidation)
	}

	days := RentalDays(start, end)
	subtotal := dailyRate.MulDays(days)
	tax := subtotal.Percent(taxRatePercent)

	return PriceQuote{
		DurationDays: days,
		Subtotal:     subtotal,
		TaxAmount:    tax,
		ExtraFees:    extraFees,
		Total:        subtotal.Add(tax).Add(extraFees),
	}, nil
}
