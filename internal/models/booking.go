package models

import "time"

type Booking struct {
	ID         string `json:"id"`
	Reference  string `json:"reference"`
	CarID      string `json:"car_id"`
	CarName    string `json:"car_name"`
	CustomerID string `json:"customer_id"`
	DriverID   string `json:"driver_id,omitempty"`

	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	PickupLocation  string    `json:"pickup_location,omitempty"`
	DropoffLocation string    `json:"dropoff_location,omitempty"`
	IsSelfDrive     bool      `json:"is_self_drive"`

	DailyRate    Money `json:"daily_rate"`
	DurationDays int   `json:"duration_days"`
	Subtotal     Money `json:"subtotal"`
	TaxAmount    Money `json:"tax_amount"`
	LateFee      Money `json:"late_fee"`
	TotalAmount  Money `json:"total_amount"`
	AmountPaid   Money `json:"amount_paid"`
	BalanceDue   Money `json:"balance_due"`

	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Notes         string `json:"notes,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CheckedOutBy       string     `json:"checked_out_by,omitempty"`
	CheckedInBy        string     `json:"checked_in_by,omitempty"`
	CheckedOutAt       *time.Time `json:"checked_out_at,omitempty"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// BookingUpdate carries the mutable fields of a status transition.
// Nil pointer fields are left untouched by the update statement.
type BookingUpdate struct {
	Status             string
	PaymentStatus      string
	CancellationReason string
	CheckedOutBy       string
	CheckedInBy        string
	CheckedOutAt       *time.Time
	CheckedInAt        *time.Time
	CancelledAt        *time.Time
	LateFee            *Money
	TotalAmount        *Money
	BalanceDue         *Money
	ChangedBy          string
	Notes              string
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status     string
	CarID      string
	CustomerID string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// BookingHistory is an append-only audit row, one per status change.
type BookingHistory struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AvailabilityWindow binds a car to a status for a half-open date range
// [StartDate, EndDate). It references the booking or maintenance record
// that caused it and is the authoritative conflict-detection source for
// non-booking blocks.
type AvailabilityWindow struct {
	ID            string    `json:"id"`
	CarID         string    `json:"car_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	BookingID     string    `json:"booking_id,omitempty"`
	MaintenanceID string    `json:"maintenance_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Overlaps reports half-open interval overlap with [start, end).
func (w AvailabilityWindow) Overlaps(start, end time.Time) bool {
	return w.StartDate.Before(end) && w.EndDate.After(start)
}
