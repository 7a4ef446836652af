package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/models"
)

type testEnv struct {
	db       *database.DB
	bookings *BookingService
	payments *PaymentService
	car      *models.Car
	customer *models.Customer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	car := &models.Car{
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2021,
		LicensePlate: "GR-1234-21",
		DailyRate:    10000,
		Status:       models.CarAvailable,
		Seats:        5,
	}
	require.NoError(t, db.CreateCar(context.Background(), car))

	customer := &models.Customer{
		FirstName: "Ama",
		LastName:  "Mensah",
		Email:     "ama@example.com",
		Phone:     "+233200000001",
	}
	require.NoError(t, db.CreateCustomer(context.Background(), customer))

	logger := zerolog.Nop()
	policy := testFeePolicy()
	bookings := NewBookingService(db, nil, nil, policy, config.BookingConfig{
		MaxBookingDays:   90,
		NoShowGraceHours: 24,
	}, &logger)
	payments := NewPaymentService(db, bookings, nil, nil, nil, &logger)

	return &testEnv{
		db:       db,
		bookings: bookings,
		payments: payments,
		car:      car,
		customer: customer,
	}
}

// futureRange returns [now+startDays, now+endDays) at midnight-ish offsets.
func futureRange(startDays, endDays int) (time.Time, time.Time) {
	base := time.Now().Add(12 * time.Hour).Truncate(time.Hour)
	return base.AddDate(0, 0, startDays), base.AddDate(0, 0, endDays)
}

func (e *testEnv) createBooking(t *testing.T, start, end time.Time) *models.Booking {
	t.Helper()
	booking, err := e.bookings.CreateBooking(context.Background(), &CreateBookingRequest{
		CarID:      e.car.ID,
		CustomerID: e.customer.ID,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	return booking
}
