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

const carColumns = `id, make, model, year, color, license_plate, vin,
		daily_rate, weekly_rate, monthly_rate, status, fuel_type, transmission,
		seats, mileage, created_at, updated_at`

func scanCar(row rowScanner) (*models.Car, error) {
	c := &models.Car{}
	err := row.Scan(
		&c.ID, &c.Make, &c.Model, &c.Year, &c.Color, &c.LicensePlate, &c.VIN,
		&c.DailyRate, &c.WeeklyRate, &c.MonthlyRate, &c.Status, &c.FuelType, &c.Transmission,
		&c.Seats, &c.Mileage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan car: %w", err)
	}
	return c, nil
}

func (db *DB) GetCar(ctx context.Context, id string) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = ?`
	return scanCar(db.QueryRowContext(ctx, query, id))
}

func (db *DB) ListCars(ctx context.Context, status string) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY make, model`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (db *DB) CreateCar(ctx context.Context, car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.NewString()
	}
	if car.Status == "" {
		car.Status = models.CarAvailable
	}
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now

	query := `INSERT INTO cars (` + carColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		car.ID, car.Make, car.Model, car.Year, car.Color, car.LicensePlate, car.VIN,
		car.DailyRate, car.WeeklyRate, car.MonthlyRate, car.Status, car.FuelType, car.Transmission,
		car.Seats, car.Mileage, car.CreatedAt, car.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

func (db *DB) UpdateCar(ctx context.Context, car *models.Car) error {
	car.UpdatedAt = time.Now()
	query := `UPDATE cars SET make = ?, model = ?, year = ?, color = ?, license_plate = ?, vin = ?,
		daily_rate = ?, weekly_rate = ?, monthly_rate = ?, fuel_type = ?, transmission = ?,
		seats = ?, mileage = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		car.Make, car.Model, car.Year, car.Color, car.LicensePlate, car.VIN,
		car.DailyRate, car.WeeklyRate, car.MonthlyRate, car.FuelType, car.Transmission,
		car.Seats, car.Mileage, car.UpdatedAt, car.ID)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateCarStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE cars SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update car status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) CreateMaintenanceRecord(ctx context.Context, rec *models.MaintenanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()

	query := `INSERT INTO maintenance_records
		(id, car_id, maintenance_type, scheduled_date, end_date, actual_date, service_center, cost, description, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		rec.ID, rec.CarID, rec.Type, rec.ScheduledDate, rec.EndDate, rec.ActualDate,
		rec.ServiceCenter, rec.Cost, rec.Description, rec.IsCompleted, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create maintenance record: %w", err)
	}
	return nil
}

func (db *DB) GetMaintenanceRecord(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	query := `SELECT id, car_id, maintenance_type, scheduled_date, end_date, actual_date,
		service_center, cost, description, is_completed, created_at
		FROM maintenance_records WHERE id = ?`
	rec := &models.MaintenanceRecord{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.CarID, &rec.Type, &rec.ScheduledDate, &rec.EndDate, &rec.ActualDate,
		&rec.ServiceCenter, &rec.Cost, &rec.Description, &rec.IsCompleted, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get maintenance record: %w", err)
	}
	return rec, nil
}

func (db *DB) CompleteMaintenanceRecord(ctx context.Context, id string, actual time.Time, cost models.Money) error {
	query := `UPDATE maintenance_records SET is_completed = 1, actual_date = ?, cost = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, actual, cost, id)
	if err != nil {
		return fmt.Errorf("failed to complete maintenance record: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListMaintenanceByCar(ctx context.Context, carID string) ([]*models.MaintenanceRecord, error) {
	query := `SELECT id, car_id, maintenance_type, scheduled_date, end_date, actual_date,
		service_center, cost, description, is_completed, created_at
		FROM maintenance_records WHERE car_id = ? ORDER BY scheduled_date DESC`
	rows, err := db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	defer rows.Close()

	var records []*models.MaintenanceRecord
	for rows.Next() {
		rec := &models.MaintenanceRecord{}
		err := rows.Scan(&rec.ID, &rec.CarID, &rec.Type, &rec.ScheduledDate, &rec.EndDate, &rec.ActualDate,
			&rec.ServiceCenter, &rec.Cost, &rec.Description, &rec.IsCompleted, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
