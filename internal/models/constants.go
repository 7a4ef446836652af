package models

const (
	// Booking lifecycle.
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingActive    = "active"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
	BookingNoShow    = "no_show"
)

const (
	// Car fleet statuses.
	CarAvailable   = "available"
	CarRented      = "rented"
	CarMaintenance = "maintenance"
	CarReserved    = "reserved"
	CarUnavailable = "unavailable"
)

const (
	PaymentPending   = "pending"
	PaymentPartial   = "partial"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

const (
	MethodCash        = "cash"
	MethodCard        = "card"
	MethodMobileMoney = "mobile_money"
	MethodBankXfer    = "bank_transfer"
)

const (
	DriverAvailable = "available"
	DriverAssigned  = "assigned"
	DriverOnLeave   = "on_leave"
	DriverInactive  = "inactive"
)

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

const (
	NotifyEmail    = "email"
	NotifySMS      = "sms"
	NotifyTelegram = "telegram"
)

const (
	// DefaultSessionTTL session lifetime in Redis, seconds.
	DefaultSessionTTL = 24 * 60 * 60

	// WorkerQueueSize notification worker in-memory queue size.
	WorkerQueueSize = 1000

	// LoginRateLimitAttempts login attempts allowed per window.
	LoginRateLimitAttempts = 10

	// LoginRateLimitWindow login rate-limit window, seconds.
	LoginRateLimitWindow = 60
)

// IsTerminalBookingStatus reports whether no further transitions are legal.
func IsTerminalBookingStatus(status string) bool {
	switch status {
	case BookingCompleted, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// BlocksAvailability reports whether a booking in this status occupies the
// car for its date range. Pending holds only a soft reserve and never blocks.
func BlocksAvailability(status string) bool {
	return status == BookingConfirmed || status == BookingActive
}
