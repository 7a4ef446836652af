package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// under concurrent transactions.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{DB: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            username TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            phone TEXT,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'staff',
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS customers (
            id TEXT PRIMARY KEY,
            user_id TEXT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            address TEXT,
            id_card_no TEXT,
            city TEXT,
            region TEXT,
            country TEXT,
            status TEXT NOT NULL DEFAULT 'active',
            total_bookings INTEGER NOT NULL DEFAULT 0,
            total_spent INTEGER NOT NULL DEFAULT 0,
            guarantor_name TEXT,
            guarantor_phone TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS cars (
            id TEXT PRIMARY KEY,
            make TEXT NOT NULL,
            model TEXT NOT NULL,
            year INTEGER NOT NULL,
            color TEXT,
            license_plate TEXT UNIQUE NOT NULL,
            vin TEXT,
            daily_rate INTEGER NOT NULL,
            weekly_rate INTEGER NOT NULL DEFAULT 0,
            monthly_rate INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'available',
            fuel_type TEXT,
            transmission TEXT,
            seats INTEGER NOT NULL DEFAULT 5,
            mileage INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS drivers (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT NOT NULL,
            email TEXT,
            license_number TEXT UNIQUE NOT NULL,
            license_class TEXT,
            license_expiry_date DATETIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'available',
            daily_rate INTEGER NOT NULL DEFAULT 0,
            experience_years INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            reference TEXT UNIQUE NOT NULL,
            car_id TEXT NOT NULL REFERENCES cars(id),
            car_name TEXT NOT NULL,
            customer_id TEXT NOT NULL REFERENCES customers(id),
            driver_id TEXT,
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            pickup_location TEXT,
            dropoff_location TEXT,
            is_self_drive BOOLEAN NOT NULL DEFAULT 1,
            daily_rate INTEGER NOT NULL,
            duration_days INTEGER NOT NULL,
            subtotal INTEGER NOT NULL,
            tax_amount INTEGER NOT NULL,
            late_fee INTEGER NOT NULL DEFAULT 0,
            total_amount INTEGER NOT NULL,
            amount_paid INTEGER NOT NULL DEFAULT 0,
            balance_due INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            payment_status TEXT NOT NULL DEFAULT 'pending',
            notes TEXT,
            cancellation_reason TEXT,
            checked_out_by TEXT,
            checked_in_by TEXT,
            checked_out_at DATETIME,
            checked_in_at DATETIME,
            cancelled_at DATETIME,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            version INTEGER NOT NULL DEFAULT 1
        )`,

		`CREATE TABLE IF NOT EXISTS booking_history (
            id TEXT PRIMARY KEY,
            booking_id TEXT NOT NULL REFERENCES bookings(id),
            status TEXT NOT NULL,
            notes TEXT,
            changed_by TEXT,
            created_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS availability_windows (
            id TEXT PRIMARY KEY,
            car_id TEXT NOT NULL REFERENCES cars(id),
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            status TEXT NOT NULL,
            reason TEXT,
            booking_id TEXT,
            maintenance_id TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS maintenance_records (
            id TEXT PRIMARY KEY,
            car_id TEXT NOT NULL REFERENCES cars(id),
            maintenance_type TEXT NOT NULL,
            scheduled_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            actual_date DATETIME,
            service_center TEXT,
            cost INTEGER NOT NULL DEFAULT 0,
            description TEXT,
            is_completed BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS payments (
            id TEXT PRIMARY KEY,
            reference TEXT UNIQUE NOT NULL,
            booking_id TEXT NOT NULL REFERENCES bookings(id),
            amount INTEGER NOT NULL,
            method TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            currency TEXT NOT NULL DEFAULT 'GHS',
            overpaid_amount INTEGER NOT NULL DEFAULT 0,
            gateway_name TEXT,
            gateway_reference TEXT,
            authorization_url TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS notify_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id TEXT,
            channel TEXT NOT NULL,
            recipient TEXT NOT NULL,
            subject TEXT,
            body TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE TABLE IF NOT EXISTS notification_logs (
            id TEXT PRIMARY KEY,
            channel TEXT NOT NULL,
            recipient TEXT NOT NULL,
            subject TEXT,
            body TEXT NOT NULL,
            status TEXT NOT NULL,
            error TEXT,
            sent_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_car_id ON bookings(car_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer_id ON bookings(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_dates ON bookings(start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_history_booking ON booking_history(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_car_dates ON availability_windows(car_id, start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_booking ON payments(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_created ON payments(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notify_queue_status ON notify_queue(status)`,
		`CREATE INDEX IF NOT EXISTS idx_maintenance_car ON maintenance_records(car_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
