package models

import "fmt"

// Money is an amount in minor currency units (pesewas for GHS). All money
// math is integer arithmetic so totals reproduce exactly across runs.
type Money int64

func (m Money) Add(other Money) Money { return m + other }

func (m Money) Sub(other Money) Money { return m - other }

// MulDays multiplies a per-day rate by a whole number of days.
func (m Money) MulDays(days int) Money {
	return m * Money(days)
}

// Percent returns p percent of the amount, truncated toward zero.
func (m Money) Percent(p int64) Money {
	if p <= 0 {
		return 0
	}
	return Money(int64(m) * p / 100)
}

// ClampZero returns the amount floored at zero.
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

// String renders the amount in major units, e.g. "GHS 1234.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%sGHS %d.%02d", sign, v/100, v%100)
}
