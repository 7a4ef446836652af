package models

import "time"

type Car struct {
	ID           string    `json:"id" yaml:"id"`
	Make         string    `json:"make" yaml:"make"`
	Model        string    `json:"model" yaml:"model"`
	Year         int       `json:"year" yaml:"year"`
	Color        string    `json:"color" yaml:"color"`
	LicensePlate string    `json:"license_plate" yaml:"license_plate"`
	VIN          string    `json:"vin,omitempty" yaml:"vin"`
	DailyRate    Money     `json:"daily_rate" yaml:"daily_rate"`
	WeeklyRate   Money     `json:"weekly_rate,omitempty" yaml:"weekly_rate"`
	MonthlyRate  Money     `json:"monthly_rate,omitempty" yaml:"monthly_rate"`
	Status       string    `json:"status" yaml:"status"`
	FuelType     string    `json:"fuel_type" yaml:"fuel_type"`
	Transmission string    `json:"transmission" yaml:"transmission"`
	Seats        int       `json:"seats" yaml:"seats"`
	Mileage      int64     `json:"mileage" yaml:"mileage"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

type MaintenanceRecord struct {
	ID            string     `json:"id"`
	CarID         string     `json:"car_id"`
	Type          string     `json:"maintenance_type"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	EndDate       time.Time  `json:"end_date"`
	ActualDate    *time.Time `json:"actual_date,omitempty"`
	ServiceCenter string     `json:"service_center,omitempty"`
	Cost          Money      `json:"cost"`
	Description   string     `json:"description,omitempty"`
	IsCompleted   bool       `json:"is_completed"`
	CreatedAt     time.Time  `json:"created_at"`
}
