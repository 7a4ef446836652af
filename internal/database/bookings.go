package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/osahene/YOS-rentals/internal/models"
)

const bookingColumns = `id, reference, car_id, car_name, customer_id, driver_id,
		start_date, end_date, pickup_location, dropoff_location, is_self_drive,
		daily_rate, duration_days, subtotal, tax_amount, late_fee, total_amount,
		amount_paid, balance_due, status, payment_status, notes,
		cancellation_reason, checked_out_by, checked_in_by,
		checked_out_at, checked_in_at, cancelled_at,
		created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.Reference, &b.CarID, &b.CarName, &b.CustomerID, &b.DriverID,
		&b.StartDate, &b.EndDate, &b.PickupLocation, &b.DropoffLocation, &b.IsSelfDrive,
		&b.DailyRate, &b.DurationDays, &b.Subtotal, &b.TaxAmount, &b.LateFee, &b.TotalAmount,
		&b.AmountPaid, &b.BalanceDue, &b.Status, &b.PaymentStatus, &b.Notes,
		&b.CancellationReason, &b.CheckedOutBy, &b.CheckedInBy,
		&b.CheckedOutAt, &b.CheckedInAt, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return b, nil
}

// conflictCountQuery counts bookings that occupy the car for any part of
// [start, end). Ranges are half-open, so back-to-back bookings where one
// ends exactly when the next starts do not conflict.
const conflictCountQuery = `SELECT COUNT(*) FROM bookings
		WHERE car_id = ? AND id != ?
		AND status IN ('confirmed', 'active')
		AND start_date < ? AND end_date > ?`

const windowConflictQuery = `SELECT COUNT(*) FROM availability_windows
		WHERE car_id = ? AND start_date < ? AND end_date > ?`

func (db *DB) CheckAvailability(ctx context.Context, carID string, start, end time.Time, excludeBookingID string) (bool, error) {
	var bookingConflicts int
	err := db.QueryRowContext(ctx, conflictCountQuery, carID, excludeBookingID, end, start).Scan(&bookingConflicts)
	if err != nil {
		return false, fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if bookingConflicts > 0 {
		return false, nil
	}

	var windowConflicts int
	err = db.QueryRowContext(ctx, windowConflictQuery, carID, end, start).Scan(&windowConflicts)
	if err != nil {
		return false, fmt.Errorf("failed to check availability windows: %w", err)
	}
	return windowConflicts == 0, nil
}

// CreateBookingWithLock verifies the car is free and inserts the booking in
// one transaction, so two concurrent requests for the same period cannot
// both succeed.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var conflicts int
	err = tx.QueryRowContext(ctx, conflictCountQuery,
		booking.CarID, booking.ID, booking.EndDate, booking.StartDate).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if conflicts == 0 {
		err = tx.QueryRowContext(ctx, windowConflictQuery,
			booking.CarID, booking.EndDate, booking.StartDate).Scan(&conflicts)
		if err != nil {
			return fmt.Errorf("failed to check windows in tx: %w", err)
		}
	}
	if conflicts > 0 {
		return ErrNotAvailable
	}

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	query := `INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		booking.ID, booking.Reference, booking.CarID, booking.CarName, booking.CustomerID, booking.DriverID,
		booking.StartDate, booking.EndDate, booking.PickupLocation, booking.DropoffLocation, booking.IsSelfDrive,
		booking.DailyRate, booking.DurationDays, booking.Subtotal, booking.TaxAmount, booking.LateFee, booking.TotalAmount,
		booking.AmountPaid, booking.BalanceDue, booking.Status, booking.PaymentStatus, booking.Notes,
		booking.CancellationReason, booking.CheckedOutBy, booking.CheckedInBy,
		booking.CheckedOutAt, booking.CheckedInAt, booking.CancelledAt,
		booking.CreatedAt, booking.UpdatedAt, booking.Version,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	historyQuery := `INSERT INTO booking_history (id, booking_id, status, notes, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, historyQuery,
		uuid.NewString(), booking.ID, booking.Status, "booking created", "", now)
	if err != nil {
		return fmt.Errorf("failed to insert booking history in tx: %w", err)
	}

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	return scanBooking(db.QueryRowContext(ctx, query, ref))
}

// UpdateBookingStatusWithVersion applies a status transition with optimistic
// concurrency. The update only lands if the stored version still matches;
// otherwise ErrConcurrentModification is returned. A history row is written
// in the same transaction.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, update *models.BookingUpdate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	sets := []string{"status = ?", "version = version + 1", "updated_at = ?"}
	args := []interface{}{update.Status, now}

	if update.PaymentStatus != "" {
		sets = append(sets, "payment_status = ?")
		args = append(args, update.PaymentStatus)
	}
	if update.CancellationReason != "" {
		sets = append(sets, "cancellation_reason = ?")
		args = append(args, update.CancellationReason)
	}
	if update.CheckedOutBy != "" {
		sets = append(sets, "checked_out_by = ?")
		args = append(args, update.CheckedOutBy)
	}
	if update.CheckedInBy != "" {
		sets = append(sets, "checked_in_by = ?")
		args = append(args, update.CheckedInBy)
	}
	if update.CheckedOutAt != nil {
		sets = append(sets, "checked_out_at = ?")
		args = append(args, update.CheckedOutAt)
	}
	if update.CheckedInAt != nil {
		sets = append(sets, "checked_in_at = ?")
		args = append(args, update.CheckedInAt)
	}
	if update.CancelledAt != nil {
		sets = append(sets, "cancelled_at = ?")
		args = append(args, update.CancelledAt)
	}
	if update.LateFee != nil {
		sets = append(sets, "late_fee = ?")
		args = append(args, *update.LateFee)
	}
	if update.TotalAmount != nil {
		sets = append(sets, "total_amount = ?")
		args = append(args, *update.TotalAmount)
	}
	if update.BalanceDue != nil {
		sets = append(sets, "balance_due = ?")
		args = append(args, *update.BalanceDue)
	}

	query := `UPDATE bookings SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND version = ?`
	args = append(args, id, version)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	historyQuery := `INSERT INTO booking_history (id, booking_id, status, notes, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, historyQuery,
		uuid.NewString(), id, update.Status, update.Notes, update.ChangedBy, now)
	if err != nil {
		return fmt.Errorf("failed to insert booking history: %w", err)
	}

	return tx.Commit()
}

func (db *DB) UpdateBookingPricing(ctx context.Context, booking *models.Booking) error {
	query := `UPDATE bookings SET daily_rate = ?, duration_days = ?, subtotal = ?, tax_amount = ?,
		late_fee = ?, total_amount = ?, amount_paid = ?, balance_due = ?, payment_status = ?, updated_at = ?
		WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		booking.DailyRate, booking.DurationDays, booking.Subtotal, booking.TaxAmount,
		booking.LateFee, booking.TotalAmount, booking.AmountPaid, booking.BalanceDue,
		booking.PaymentStatus, time.Now(), booking.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking pricing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.CarID != "" {
		query += ` AND car_id = ?`
		args = append(args, filter.CarID)
	}
	if filter.CustomerID != "" {
		query += ` AND customer_id = ?`
		args = append(args, filter.CustomerID)
	}
	if !filter.From.IsZero() {
		query += ` AND end_date > ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND start_date < ?`
		args = append(args, filter.To)
	}
	query += ` ORDER BY start_date DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE start_date < ? AND end_date > ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, end, start)
}

// GetOverdueBookings returns active bookings whose end date has passed.
func (db *DB) GetOverdueBookings(ctx context.Context, asOf time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'active' AND end_date < ? ORDER BY end_date ASC`
	return db.queryBookings(ctx, query, asOf)
}

// GetExpiredPending returns pending bookings whose start date is more than
// graceHours in the past. These are no-show candidates.
func (db *DB) GetExpiredPending(ctx context.Context, asOf time.Time, graceHours int) ([]*models.Booking, error) {
	cutoff := asOf.Add(-time.Duration(graceHours) * time.Hour)
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'pending' AND start_date < ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, cutoff)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) AddBookingHistory(ctx context.Context, entry *models.BookingHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `INSERT INTO booking_history (id, booking_id, status, notes, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		entry.ID, entry.BookingID, entry.Status, entry.Notes, entry.ChangedBy, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add booking history: %w", err)
	}
	return nil
}

func (db *DB) GetBookingHistory(ctx context.Context, bookingID string) ([]*models.BookingHistory, error) {
	query := `SELECT id, booking_id, status, notes, changed_by, created_at
		FROM booking_history WHERE booking_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking history: %w", err)
	}
	defer rows.Close()

	var entries []*models.BookingHistory
	for rows.Next() {
		e := &models.BookingHistory{}
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Status, &e.Notes, &e.ChangedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
