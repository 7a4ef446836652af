package database

import (
	"context"
	"fmt"
	"time"

	"github.com/osahene/YOS-rentals/internal/models"
)

// RevenueByPeriod aggregates settled payments and maintenance spend for
// [start, end). Revenue counts money actually received, not booked totals.
func (db *DB) RevenueByPeriod(ctx context.Context, start, end time.Time) (*models.FinancialSummary, error) {
	summary := &models.FinancialSummary{}

	query := `SELECT COALESCE(SUM(amount - overpaid_amount), 0)
		FROM payments
		WHERE status = 'completed' AND created_at >= ? AND created_at < ?`
	if err := db.QueryRowContext(ctx, query, start, end).Scan(&summary.Revenue); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	query = `SELECT COALESCE(SUM(cost), 0)
		FROM maintenance_records
		WHERE is_completed = 1 AND actual_date >= ? AND actual_date < ?`
	if err := db.QueryRowContext(ctx, query, start, end).Scan(&summary.Expenses); err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	query = `SELECT COUNT(*) FROM bookings
		WHERE created_at >= ? AND created_at < ? AND status != 'cancelled'`
	if err := db.QueryRowContext(ctx, query, start, end).Scan(&summary.BookingCount); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	summary.NetProfit = summary.Revenue.Sub(summary.Expenses)
	return summary, nil
}

// RevenueByVehicle returns per-car revenue and maintenance cost for the period.
func (db *DB) RevenueByVehicle(ctx context.Context, start, end time.Time) ([]*models.VehicleRevenue, error) {
	query := `SELECT c.id, c.license_plate, c.make || ' ' || c.model,
			COALESCE((SELECT SUM(p.amount - p.overpaid_amount)
				FROM payments p JOIN bookings b ON p.booking_id = b.id
				WHERE b.car_id = c.id AND p.status = 'completed'
				AND p.created_at >= ? AND p.created_at < ?), 0),
			COALESCE((SELECT SUM(m.cost) FROM maintenance_records m
				WHERE m.car_id = c.id AND m.is_completed = 1
				AND m.actual_date >= ? AND m.actual_date < ?), 0),
			(SELECT COUNT(*) FROM bookings b2
				WHERE b2.car_id = c.id AND b2.status != 'cancelled'
				AND b2.created_at >= ? AND b2.created_at < ?)
		FROM cars c ORDER BY c.make, c.model`

	rows, err := db.QueryContext(ctx, query, start, end, start, end, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate vehicle revenue: %w", err)
	}
	defer rows.Close()

	var results []*models.VehicleRevenue
	for rows.Next() {
		r := &models.VehicleRevenue{}
		err := rows.Scan(&r.CarID, &r.LicensePlate, &r.CarName, &r.Revenue, &r.Maintenance, &r.BookingCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle revenue: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
