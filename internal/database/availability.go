package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osahene/YOS-rentals/internal/models"
)

func (db *DB) CreateAvailabilityWindow(ctx context.Context, window *models.AvailabilityWindow) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	now := time.Now()
	window.CreatedAt = now
	window.UpdatedAt = now

	query := `INSERT INTO availability_windows
		(id, car_id, start_date, end_date, status, reason, booking_id, maintenance_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		window.ID, window.CarID, window.StartDate, window.EndDate, window.Status,
		window.Reason, window.BookingID, window.MaintenanceID, window.CreatedAt, window.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}
	return nil
}

func (db *DB) DeleteAvailabilityWindowsByBooking(ctx context.Context, bookingID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM availability_windows WHERE booking_id = ?`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete availability windows: %w", err)
	}
	return nil
}

func (db *DB) DeleteAvailabilityWindowsByMaintenance(ctx context.Context, maintenanceID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM availability_windows WHERE maintenance_id = ?`, maintenanceID)
	if err != nil {
		return fmt.Errorf("failed to delete availability windows: %w", err)
	}
	return nil
}

// GetAvailabilityWindows returns windows overlapping [start, end) for a car.
func (db *DB) GetAvailabilityWindows(ctx context.Context, carID string, start, end time.Time) ([]*models.AvailabilityWindow, error) {
	query := `SELECT id, car_id, start_date, end_date, status, reason, booking_id, maintenance_id, created_at, updated_at
		FROM availability_windows
		WHERE car_id = ? AND start_date < ? AND end_date > ?
		ORDER BY start_date ASC`
	rows, err := db.QueryContext(ctx, query, carID, end, start)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability windows: %w", err)
	}
	defer rows.Close()

	var windows []*models.AvailabilityWindow
	for rows.Next() {
		w := &models.AvailabilityWindow{}
		err := rows.Scan(&w.ID, &w.CarID, &w.StartDate, &w.EndDate, &w.Status,
			&w.Reason, &w.BookingID, &w.MaintenanceID, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
