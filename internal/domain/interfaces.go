package domain

import (
	"context"
	"time"

	"github.com/osahene/YOS-rentals/internal/models"
)

type Repository interface {
	// Bookings.
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, update *models.BookingUpdate) error
	UpdateBookingPricing(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetOverdueBookings(ctx context.Context, asOf time.Time) ([]*models.Booking, error)
	GetExpiredPending(ctx context.Context, asOf time.Time, graceHours int) ([]*models.Booking, error)
	AddBookingHistory(ctx context.Context, entry *models.BookingHistory) error
	GetBookingHistory(ctx context.Context, bookingID string) ([]*models.BookingHistory, error)

	// Availability.
	CheckAvailability(ctx context.Context, carID string, start, end time.Time, excludeBookingID string) (bool, error)
	CreateAvailabilityWindow(ctx context.Context, window *models.AvailabilityWindow) error
	DeleteAvailabilityWindowsByBooking(ctx context.Context, bookingID string) error
	DeleteAvailabilityWindowsByMaintenance(ctx context.Context, maintenanceID string) error
	GetAvailabilityWindows(ctx context.Context, carID string, start, end time.Time) ([]*models.AvailabilityWindow, error)

	// Fleet.
	GetCar(ctx context.Context, id string) (*models.Car, error)
	ListCars(ctx context.Context, status string) ([]*models.Car, error)
	CreateCar(ctx context.Context, car *models.Car) error
	UpdateCar(ctx context.Context, car *models.Car) error
	UpdateCarStatus(ctx context.Context, id string, status string) error
	CreateMaintenanceRecord(ctx context.Context, rec *models.MaintenanceRecord) error
	GetMaintenanceRecord(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	CompleteMaintenanceRecord(ctx context.Context, id string, actual time.Time, cost models.Money) error
	ListMaintenanceByCar(ctx context.Context, carID string) ([]*models.MaintenanceRecord, error)

	// Customers and drivers.
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	RecordCustomerBooking(ctx context.Context, customerID string, spent models.Money) error
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	ListDrivers(ctx context.Context, status string) ([]*models.Driver, error)
	CreateDriver(ctx context.Context, driver *models.Driver) error
	UpdateDriverStatus(ctx context.Context, id string, status string) error

	// Payments.
	ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Booking, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	GetPaymentByReference(ctx context.Context, ref string) (*models.Payment, error)
	UpdatePaymentGatewayState(ctx context.Context, id string, status, gatewayRef, authURL string) error
	ListPaymentsByBooking(ctx context.Context, bookingID string) ([]*models.Payment, error)
	ListPaymentsByPeriod(ctx context.Context, start, end time.Time) ([]*models.Payment, error)

	// Users.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Reporting.
	RevenueByPeriod(ctx context.Context, start, end time.Time) (*models.FinancialSummary, error)
	RevenueByVehicle(ctx context.Context, start, end time.Time) ([]*models.VehicleRevenue, error)
}

// SessionRepository stores authenticated sessions and rate-limit counters.
// Implementations: Redis-backed, in-memory, and a failover wrapper.
type SessionRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// PaymentGateway abstracts the external card-payment provider.
type PaymentGateway interface {
	Initialize(ctx context.Context, req *models.GatewayInitRequest) (*models.GatewayInitResponse, error)
	Verify(ctx context.Context, reference string) (*models.GatewayVerification, error)
}

// NotifyWorker enqueues outbound notifications for async delivery.
type NotifyWorker interface {
	Enqueue(ctx context.Context, task *models.NotifyTask) error
}

// Notifier delivers a single notification over one channel.
type Notifier interface {
	Channel() string
	Send(ctx context.Context, task *models.NotifyTask) error
}
