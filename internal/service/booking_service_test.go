package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/models"
)

func TestCreateBooking_PricesPendingBooking(t *testing.T) {
	env := newTestEnv(t)
	start, end := futureRange(10, 13)

	booking := env.createBooking(t, start, end)

	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, 3, booking.DurationDays)
	assert.Equal(t, models.Money(30000), booking.Subtotal)
	assert.Equal(t, models.Money(3000), booking.TaxAmount)
	assert.Equal(t, models.Money(33000), booking.TotalAmount)
	assert.Equal(t, models.Money(33000), booking.BalanceDue)
	assert.True(t, strings.HasPrefix(booking.Reference, "BK"))
	assert.True(t, booking.IsSelfDrive)

	// The car keeps its fleet status while the booking is pending.
	car, err := env.db.GetCar(context.Background(), env.car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, car.Status)
}

func TestCreateBooking_RejectsPastAndInvalidDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.bookings.CreateBooking(ctx, &CreateBookingRequest{
		CarID:      env.car.ID,
		CustomerID: env.customer.ID,
		StartDate:  time.Now().AddDate(0, 0, -3),
		EndDate:    time.Now().AddDate(0, 0, 2),
	})
	assert.ErrorIs(t, err, database.ErrPastDate)

	start, end := futureRange(10, 13)
	_, err = env.bookings.CreateBooking(ctx, &CreateBookingRequest{
		CarID:      env.car.ID,
		CustomerID: env.customer.ID,
		StartDate:  end,
		EndDate:    start,
	})
	assert.ErrorIs(t, err, database.ErrValidation)
}

func TestConfirmBooking_BlocksOverlap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	first := env.createBooking(t, start, end)

	// Pending bookings hold no hard reserve, so a second request for the
	// same period is accepted.
	second := env.createBooking(t, start, end)

	_, err := env.bookings.ConfirmBooking(ctx, first.ID, "staff-1")
	require.NoError(t, err)

	// Once the first is confirmed the period is taken.
	_, err = env.bookings.ConfirmBooking(ctx, second.ID, "staff-1")
	assert.ErrorIs(t, err, database.ErrNotAvailable)

	car, err := env.db.GetCar(ctx, env.car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarRented, car.Status)
}

func TestCreateBooking_ConflictWithConfirmed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	first := env.createBooking(t, start, end)
	_, err := env.bookings.ConfirmBooking(ctx, first.ID, "staff-1")
	require.NoError(t, err)

	_, err = env.bookings.CreateBooking(ctx, &CreateBookingRequest{
		CarID:      env.car.ID,
		CustomerID: env.customer.ID,
		StartDate:  start.AddDate(0, 0, 2),
		EndDate:    end.AddDate(0, 0, 2),
	})
	assert.ErrorIs(t, err, database.ErrNotAvailable)
}

func TestBackToBackBookingsDoNotConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	first := env.createBooking(t, start, end)
	_, err := env.bookings.ConfirmBooking(ctx, first.ID, "staff-1")
	require.NoError(t, err)

	// Half-open ranges: the next rental starts the moment this one ends.
	adjacent := env.createBooking(t, end, end.AddDate(0, 0, 1))
	_, err = env.bookings.ConfirmBooking(ctx, adjacent.ID, "staff-1")
	assert.NoError(t, err)
}

func TestBookingLifecycle_CheckoutCheckin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(1, 4)

	booking := env.createBooking(t, start, end)
	_, err := env.bookings.ConfirmBooking(ctx, booking.ID, "staff-1")
	require.NoError(t, err)

	active, err := env.bookings.CheckoutBooking(ctx, booking.ID, "staff-2")
	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, active.Status)
	assert.Equal(t, "staff-2", active.CheckedOutBy)
	require.NotNil(t, active.CheckedOutAt)

	completed, err := env.bookings.CheckinBooking(ctx, booking.ID, "staff-2", end)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, completed.Status)
	assert.Equal(t, models.Money(0), completed.LateFee)

	car, err := env.db.GetCar(ctx, env.car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, car.Status)

	// Completion bumps the customer's lifetime aggregates by the booking
	// total, whether or not the balance is settled yet.
	customer, err := env.db.GetCustomer(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), customer.TotalBookings)
	assert.Equal(t, models.Money(33000), customer.TotalSpent)
}

func TestCheckinBooking_LateSurcharge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(1, 4)

	booking := env.createBooking(t, start, end)
	_, err := env.bookings.ConfirmBooking(ctx, booking.ID, "staff-1")
	require.NoError(t, err)
	_, err = env.bookings.CheckoutBooking(ctx, booking.ID, "staff-1")
	require.NoError(t, err)

	// Two days late at 50% of the 100.00 daily rate: 100.00 surcharge.
	completed, err := env.bookings.CheckinBooking(ctx, booking.ID, "staff-1", end.Add(48*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, models.Money(10000), completed.LateFee)
	assert.Equal(t, models.Money(43000), completed.TotalAmount)
	assert.Equal(t, models.Money(43000), completed.BalanceDue)
	assert.Equal(t, models.PaymentPartial, completed.PaymentStatus)

	// The surcharge is part of the recorded lifetime spend.
	customer, err := env.db.GetCustomer(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(43000), customer.TotalSpent)
}

func TestCancelBooking_InsideWindowChargesFeeOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(1, 4) // starts within the 48h penalty window

	booking := env.createBooking(t, start, end)

	cancelled, err := env.bookings.CancelBooking(ctx, booking.ID, "changed plans", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// The 20% fee (66.00 on 330.00) is added on top of the total.
	assert.Equal(t, models.Money(6600), cancelled.LateFee)
	assert.Equal(t, models.Money(39600), cancelled.TotalAmount)
	assert.Equal(t, models.Money(39600), cancelled.BalanceDue)

	// Cancelling again is rejected, so the fee cannot double up.
	_, err = env.bookings.CancelBooking(ctx, booking.ID, "again", "staff-1")
	assert.ErrorIs(t, err, database.ErrInvalidTransition)

	after, err := env.bookings.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(39600), after.TotalAmount)
	assert.Equal(t, models.Money(39600), after.BalanceDue)
}

func TestCancelBooking_OutsideWindowNoFee(t *testing.T) {
	env := newTestEnv(t)
	start, end := futureRange(30, 33)

	booking := env.createBooking(t, start, end)

	// Outside the window the amounts stay exactly as priced.
	cancelled, err := env.bookings.CancelBooking(context.Background(), booking.ID, "", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.Money(0), cancelled.LateFee)
	assert.Equal(t, models.Money(33000), cancelled.TotalAmount)
	assert.Equal(t, models.Money(33000), cancelled.BalanceDue)
}

func TestCancelBooking_FreesConfirmedPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	booking := env.createBooking(t, start, end)
	_, err := env.bookings.ConfirmBooking(ctx, booking.ID, "staff-1")
	require.NoError(t, err)

	_, err = env.bookings.CancelBooking(ctx, booking.ID, "", "staff-1")
	require.NoError(t, err)

	car, err := env.db.GetCar(ctx, env.car.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CarAvailable, car.Status)

	// The period is free again.
	replacement := env.createBooking(t, start, end)
	_, err = env.bookings.ConfirmBooking(ctx, replacement.ID, "staff-1")
	assert.NoError(t, err)
}

func TestMarkNoShow_RequiresStartedPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	booking := env.createBooking(t, start, end)
	_, err := env.bookings.MarkNoShow(ctx, booking.ID, "staff-1")
	assert.ErrorIs(t, err, database.ErrInvalidTransition)
}

func TestBookingHistory_RecordsTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	booking := env.createBooking(t, start, end)
	_, err := env.bookings.ConfirmBooking(ctx, booking.ID, "staff-1")
	require.NoError(t, err)

	history, err := env.bookings.GetBookingHistory(ctx, booking.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.BookingPending, history[0].Status)
	assert.Equal(t, models.BookingConfirmed, history[1].Status)
	assert.Equal(t, "staff-1", history[1].ChangedBy)
}

func TestConcurrentTransition_VersionConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start, end := futureRange(10, 14)

	booking := env.createBooking(t, start, end)

	// Simulate a stale writer: apply a transition directly, then try a
	// second transition against the old version.
	require.NoError(t, env.db.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version,
		&models.BookingUpdate{Status: models.BookingConfirmed}))

	err := env.db.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version,
		&models.BookingUpdate{Status: models.BookingCancelled})
	assert.ErrorIs(t, err, database.ErrConcurrentModification)
}
