package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/models"
)

func TestRevenueByPeriod(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	car := seedCar(t, db)
	customer := seedCustomer(t, db)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	booking := testBooking(car, customer, models.BookingConfirmed, start, start.AddDate(0, 0, 4))
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	// 880.00 owed, 900.00 tendered: only the applied 880.00 is revenue.
	_, err := db.ApplyPayment(ctx, &models.Payment{
		Reference: "PAY-REPORT-1",
		BookingID: booking.ID,
		Amount:    90000,
		Method:    models.MethodCash,
		Currency:  "GHS",
	})
	require.NoError(t, err)

	rec := &models.MaintenanceRecord{
		CarID:         car.ID,
		Type:          "service",
		ScheduledDate: start,
		EndDate:       start.AddDate(0, 0, 1),
	}
	require.NoError(t, db.CreateMaintenanceRecord(ctx, rec))
	require.NoError(t, db.CompleteMaintenanceRecord(ctx, rec.ID, time.Now(), 12000))

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	summary, err := db.RevenueByPeriod(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, models.Money(88000), summary.Revenue)
	assert.Equal(t, models.Money(12000), summary.Expenses)
	assert.Equal(t, models.Money(76000), summary.NetProfit)
	assert.Equal(t, int64(1), summary.BookingCount)
}

func TestRevenueByPeriod_ExcludesCancelledBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	car := seedCar(t, db)
	customer := seedCustomer(t, db)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	booking := testBooking(car, customer, models.BookingCancelled, start, start.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))

	summary, err := db.RevenueByPeriod(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.BookingCount)
	assert.Equal(t, models.Money(0), summary.Revenue)
}

func TestRevenueByVehicle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	earner := seedCar(t, db)
	idle := seedCar(t, db)
	customer := seedCustomer(t, db)

	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	booking := testBooking(earner, customer, models.BookingConfirmed, start, start.AddDate(0, 0, 4))
	require.NoError(t, db.CreateBookingWithLock(ctx, booking))
	_, err := db.ApplyPayment(ctx, &models.Payment{
		Reference: "PAY-REPORT-2",
		BookingID: booking.ID,
		Amount:    88000,
		Method:    models.MethodCard,
		Currency:  "GHS",
	})
	require.NoError(t, err)

	rows, err := db.RevenueByVehicle(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byCar := map[string]*models.VehicleRevenue{}
	for _, r := range rows {
		byCar[r.CarID] = r
	}
	assert.Equal(t, models.Money(88000), byCar[earner.ID].Revenue)
	assert.Equal(t, int64(1), byCar[earner.ID].BookingCount)
	assert.Equal(t, models.Money(0), byCar[idle.ID].Revenue)
	assert.Equal(t, int64(0), byCar[idle.ID].BookingCount)
}
