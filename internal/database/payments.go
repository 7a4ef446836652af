package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/osahene/YOS-rentals/internal/models"
)

const paymentColumns = `id, reference, booking_id, amount, method, status, currency,
		overpaid_amount, gateway_name, gateway_reference, authorization_url, created_at, updated_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.Reference, &p.BookingID, &p.Amount, &p.Method, &p.Status, &p.Currency,
		&p.OverpaidAmount, &p.GatewayName, &p.GatewayReference, &p.AuthorizationURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return p, nil
}

// ApplyPayment records a completed payment and reconciles the booking's
// paid amounts in one transaction. Payments beyond the outstanding balance
// are clamped; the surplus is kept on the payment row for refund handling.
// Returns the booking as it stands after reconciliation.
func (db *DB) ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, payment.BookingID))
	if err != nil {
		return nil, err
	}

	balance := booking.TotalAmount.Sub(booking.AmountPaid).ClampZero()
	applied := payment.Amount
	if applied > balance {
		payment.OverpaidAmount = applied - balance
		applied = balance
	}

	booking.AmountPaid = booking.AmountPaid.Add(applied)
	booking.BalanceDue = booking.TotalAmount.Sub(booking.AmountPaid).ClampZero()
	if booking.BalanceDue == 0 {
		booking.PaymentStatus = models.PaymentCompleted
	} else if booking.AmountPaid > 0 {
		booking.PaymentStatus = models.PaymentPartial
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	payment.Status = models.PaymentCompleted

	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		payment.ID, payment.Reference, payment.BookingID, payment.Amount, payment.Method,
		payment.Status, payment.Currency, payment.OverpaidAmount, payment.GatewayName,
		payment.GatewayReference, payment.AuthorizationURL, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, ErrDuplicateReference
		}
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET amount_paid = ?, balance_due = ?, payment_status = ?, updated_at = ? WHERE id = ?`,
		booking.AmountPaid, booking.BalanceDue, booking.PaymentStatus, now, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile booking payment: %w", err)
	}
	booking.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return booking, nil
}

func (db *DB) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	return scanPayment(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetPaymentByReference(ctx context.Context, ref string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = ?`
	return scanPayment(db.QueryRowContext(ctx, query, ref))
}

// UpdatePaymentGatewayState stores the provider's view of a pending
// transaction without touching booking balances.
func (db *DB) UpdatePaymentGatewayState(ctx context.Context, id string, status, gatewayRef, authURL string) error {
	query := `UPDATE payments SET status = ?, gateway_reference = ?, authorization_url = ?, updated_at = ?
		WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, gatewayRef, authURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update payment gateway state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListPaymentsByBooking(ctx context.Context, bookingID string) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = ? ORDER BY created_at ASC`
	return db.queryPayments(ctx, query, bookingID)
}

func (db *DB) ListPaymentsByPeriod(ctx context.Context, start, end time.Time) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE created_at >= ? AND created_at < ? ORDER BY created_at ASC`
	return db.queryPayments(ctx, query, start, end)
}

func (db *DB) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
