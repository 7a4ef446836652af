package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osahene/YOS-rentals/internal/models"
)

const customerColumns = `id, user_id, first_name, last_name, email, phone, address,
		id_card_no, city, region, country, status, total_bookings, total_spent,
		guarantor_name, guarantor_phone, created_at, updated_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address,
		&c.IDCardNo, &c.City, &c.Region, &c.Country, &c.Status, &c.TotalBookings, &c.TotalSpent,
		&c.GuarantorName, &c.GuarantorPhone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return c, nil
}

func (db *DB) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	return scanCustomer(db.QueryRowContext(ctx, query, id))
}

func (db *DB) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if customer.Status == "" {
		customer.Status = "active"
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		customer.ID, customer.UserID, customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, customer.Address, customer.IDCardNo, customer.City, customer.Region,
		customer.Country, customer.Status, customer.TotalBookings, customer.TotalSpent,
		customer.GuarantorName, customer.GuarantorPhone, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (db *DB) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now()
	query := `UPDATE customers SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?,
		id_card_no = ?, city = ?, region = ?, country = ?, status = ?,
		guarantor_name = ?, guarantor_phone = ?, updated_at = ?
		WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone, customer.Address,
		customer.IDCardNo, customer.City, customer.Region, customer.Country, customer.Status,
		customer.GuarantorName, customer.GuarantorPhone, customer.UpdatedAt, customer.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordCustomerBooking bumps the customer's lifetime aggregates after a
// completed rental.
func (db *DB) RecordCustomerBooking(ctx context.Context, customerID string, spent models.Money) error {
	query := `UPDATE customers SET total_bookings = total_bookings + 1,
		total_spent = total_spent + ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, spent, time.Now(), customerID)
	if err != nil {
		return fmt.Errorf("failed to record customer booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

const driverColumns = `id, name, phone, email, license_number, license_class,
		license_expiry_date, status, daily_rate, experience_years, created_at, updated_at`

func scanDriver(row rowScanner) (*models.Driver, error) {
	d := &models.Driver{}
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.LicenseNumber, &d.LicenseClass,
		&d.LicenseExpiryDate, &d.Status, &d.DailyRate, &d.ExperienceYears, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan driver: %w", err)
	}
	return d, nil
}

func (db *DB) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = ?`
	return scanDriver(db.QueryRowContext(ctx, query, id))
}

func (db *DB) ListDrivers(ctx context.Context, status string) ([]*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (db *DB) CreateDriver(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = uuid.NewString()
	}
	if driver.Status == "" {
		driver.Status = models.DriverAvailable
	}
	now := time.Now()
	driver.CreatedAt = now
	driver.UpdatedAt = now

	query := `INSERT INTO drivers (` + driverColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Phone, driver.Email, driver.LicenseNumber, driver.LicenseClass,
		driver.LicenseExpiryDate, driver.Status, driver.DailyRate, driver.ExperienceYears,
		driver.CreatedAt, driver.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (db *DB) UpdateDriverStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE drivers SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update driver status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
