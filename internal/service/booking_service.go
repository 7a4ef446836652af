package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/events"
	"github.com/osahene/YOS-rentals/internal/metrics"
	"github.com/osahene/YOS-rentals/internal/models"
)

// CreateBookingRequest carries everything needed to open a booking.
type CreateBookingRequest struct {
	CarID           string
	CustomerID      string
	DriverID        string
	StartDate       time.Time
	EndDate         time.Time
	PickupLocation  string
	DropoffLocation string
	Notes           string
}

type BookingService struct {
	repo   domain.Repository
	bus    domain.EventPublisher
	notify domain.NotifyWorker
	policy *FeePolicy
	cfg    config.BookingConfig
	logger *zerolog.Logger

	// One mutex per car serializes the availability check and the write
	// that follows it, so two requests for the same car cannot interleave.
	carLocks sync.Map
}

func NewBookingService(repo domain.Repository, bus domain.EventPublisher, notify domain.NotifyWorker, policy *FeePolicy, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	if cfg.MaxBookingDays <= 0 {
		cfg.MaxBookingDays = 365
	}
	return &BookingService{
		repo:   repo,
		bus:    bus,
		notify: notify,
		policy: policy,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *BookingService) lockCar(carID string) func() {
	val, _ := s.carLocks.LoadOrStore(carID, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// NewBookingReference generates a "BK" + 8 digit reference.
func NewBookingReference() string {
	return fmt.Sprintf("BK%08d", rand.Intn(100000000))
}

func (s *BookingService) ValidateDates(start, end time.Time, now time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start date must precede end date", database.ErrValidation)
	}
	if start.Before(now.Truncate(24 * time.Hour)) {
		return database.ErrPastDate
	}
	if start.After(now.AddDate(0, 0, s.cfg.MaxBookingDays)) {
		return database.ErrDateTooFar
	}
	if RentalDays(start, end) > s.cfg.MaxBookingDays {
		return fmt.Errorf("%w: rental exceeds %d days", database.ErrValidation, s.cfg.MaxBookingDays)
	}
	return nil
}

// IsCarAvailable reports whether the car is free for [start, end).
func (s *BookingService) IsCarAvailable(ctx context.Context, carID string, start, end time.Time, excludeBookingID string) (bool, error) {
	if !start.Before(end) {
		return false, fmt.Errorf("%w: start date must precede end date", database.ErrValidation)
	}
	return s.repo.CheckAvailability(ctx, carID, start, end, excludeBookingID)
}

// CreateBooking prices the rental and inserts a pending booking. The car
// stays in its current fleet status; pending bookings hold no hard reserve.
func (s *BookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error) {
	if err := s.ValidateDates(req.StartDate, req.EndDate, time.Now()); err != nil {
		return nil, err
	}

	car, err := s.repo.GetCar(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	if car.Status == models.CarUnavailable || car.Status == models.CarMaintenance {
		return nil, database.ErrNotAvailable
	}

	customer, err := s.repo.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if req.DriverID != "" {
		driver, err := s.repo.GetDriver(ctx, req.DriverID)
		if err != nil {
			return nil, err
		}
		if !driver.LicenseValid(req.EndDate) {
			return nil, fmt.Errorf("%w: driver license expires before the rental ends", database.ErrValidation)
		}
	}

	quote, err := ComputePrice(car.DailyRate, req.StartDate, req.EndDate, s.policy.TaxRatePercent(), 0)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:              uuid.NewString(),
		Reference:       NewBookingReference(),
		CarID:           car.ID,
		CarName:         car.Make + " " + car.Model,
		CustomerID:      customer.ID,
		DriverID:        req.DriverID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		IsSelfDrive:     req.DriverID == "",
		DailyRate:       car.DailyRate,
		DurationDays:    quote.DurationDays,
		Subtotal:        quote.Subtotal,
		TaxAmount:       quote.TaxAmount,
		TotalAmount:     quote.Total,
		BalanceDue:      quote.Total,
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		Notes:           req.Notes,
	}

	unlock := s.lockCar(car.ID)
	err = s.repo.CreateBookingWithLock(ctx, booking)
	unlock()
	if err != nil {
		metrics.IncTransition(models.BookingPending, "rejected")
		return nil, err
	}
	metrics.IncTransition(models.BookingPending, "ok")

	s.publishEvent(events.EventBookingCreated, booking, "")
	s.enqueueNotification(ctx, booking, customer,
		"Booking received",
		fmt.Sprintf("Booking %s for %s from %s to %s. Total %s.",
			booking.Reference, booking.CarName,
			booking.StartDate.Format("2006-01-02"), booking.EndDate.Format("2006-01-02"),
			booking.TotalAmount))

	return booking, nil
}

// ConfirmBooking moves pending → confirmed and puts the car on hard
// reserve. From here the booking itself blocks the period for other
// bookings and the fleet status flips to rented.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string, changedBy string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending {
		metrics.IncTransition(models.BookingConfirmed, "invalid")
		return nil, fmt.Errorf("%w: cannot confirm a %s booking", database.ErrInvalidTransition, booking.Status)
	}

	unlock := s.lockCar(booking.CarID)
	defer unlock()

	// The period may have been taken by another booking while this one
	// sat pending.
	available, err := s.repo.CheckAvailability(ctx, booking.CarID, booking.StartDate, booking.EndDate, booking.ID)
	if err != nil {
		return nil, err
	}
	if !available {
		metrics.IncTransition(models.BookingConfirmed, "conflict")
		return nil, database.ErrNotAvailable
	}

	update := &models.BookingUpdate{
		Status:    models.BookingConfirmed,
		ChangedBy: changedBy,
		Notes:     "booking confirmed",
	}
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, update); err != nil {
		metrics.IncTransition(models.BookingConfirmed, "conflict")
		return nil, err
	}

	if err := s.repo.UpdateCarStatus(ctx, booking.CarID, models.CarRented); err != nil {
		s.logger.Error().Err(err).Str("car_id", booking.CarID).Msg("car status update failed after confirm")
	}
	metrics.IncTransition(models.BookingConfirmed, "ok")

	confirmed, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingConfirmed, confirmed, changedBy)
	s.notifyCustomer(ctx, confirmed, "Booking confirmed",
		fmt.Sprintf("Booking %s is confirmed. Pickup on %s.",
			confirmed.Reference, confirmed.StartDate.Format("2006-01-02")))

	return confirmed, nil
}

// CheckoutBooking hands the car over: confirmed → active.
func (s *BookingService) CheckoutBooking(ctx context.Context, bookingID string, staffID string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed {
		metrics.IncTransition(models.BookingActive, "invalid")
		return nil, fmt.Errorf("%w: cannot check out a %s booking", database.ErrInvalidTransition, booking.Status)
	}

	unlock := s.lockCar(booking.CarID)
	defer unlock()

	now := time.Now()
	update := &models.BookingUpdate{
		Status:       models.BookingActive,
		CheckedOutBy: staffID,
		CheckedOutAt: &now,
		ChangedBy:    staffID,
		Notes:        "vehicle checked out",
	}
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, update); err != nil {
		metrics.IncTransition(models.BookingActive, "conflict")
		return nil, err
	}
	metrics.IncTransition(models.BookingActive, "ok")

	active, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingCheckedOut, active, staffID)
	return active, nil
}

// CheckinBooking completes the rental: active → completed. A return past
// the agreed end date adds a late surcharge to the booking total before
// the car goes back to available.
func (s *BookingService) CheckinBooking(ctx context.Context, bookingID string, staffID string, returnedAt time.Time) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingActive {
		metrics.IncTransition(models.BookingCompleted, "invalid")
		return nil, fmt.Errorf("%w: cannot check in a %s booking", database.ErrInvalidTransition, booking.Status)
	}

	unlock := s.lockCar(booking.CarID)
	defer unlock()

	if returnedAt.IsZero() {
		returnedAt = time.Now()
	}

	lateFee := s.policy.LateSurcharge(booking.DailyRate, booking.EndDate, returnedAt)
	total := booking.TotalAmount.Add(lateFee)
	balance := total.Sub(booking.AmountPaid).ClampZero()

	update := &models.BookingUpdate{
		Status:      models.BookingCompleted,
		CheckedInBy: staffID,
		CheckedInAt: &returnedAt,
		ChangedBy:   staffID,
		Notes:       "vehicle returned",
	}
	if lateFee > 0 {
		newLateFee := booking.LateFee.Add(lateFee)
		update.LateFee = &newLateFee
		update.TotalAmount = &total
		update.BalanceDue = &balance
		update.Notes = fmt.Sprintf("vehicle returned late, surcharge %s", lateFee)
		if balance > 0 {
			update.PaymentStatus = models.PaymentPartial
		}
	}
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, update); err != nil {
		metrics.IncTransition(models.BookingCompleted, "conflict")
		return nil, err
	}

	s.releaseCar(ctx, booking)
	metrics.IncTransition(models.BookingCompleted, "ok")

	// Aggregates track the completed booking's total, including any late
	// surcharge, regardless of when the balance is actually settled.
	if err := s.repo.RecordCustomerBooking(ctx, booking.CustomerID, total); err != nil {
		s.logger.Error().Err(err).Str("customer_id", booking.CustomerID).Msg("customer aggregate update failed")
	}

	completed, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingCheckedIn, completed, staffID)
	s.notifyCustomer(ctx, completed, "Rental completed",
		fmt.Sprintf("Booking %s is complete. Outstanding balance: %s.",
			completed.Reference, completed.BalanceDue))
	return completed, nil
}

// CancelBooking cancels a pending or confirmed booking before its start
// date. Inside the penalty window a cancellation fee is added to the
// booking total and balance. Cancelling twice is an invalid transition,
// so the fee can only be charged once.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, reason string, changedBy string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		metrics.IncTransition(models.BookingCancelled, "invalid")
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", database.ErrInvalidTransition, booking.Status)
	}

	now := time.Now()
	if !now.Before(booking.StartDate) {
		metrics.IncTransition(models.BookingCancelled, "invalid")
		return nil, fmt.Errorf("%w: rental period already started, use no-show or check-in", database.ErrInvalidTransition)
	}

	unlock := s.lockCar(booking.CarID)
	defer unlock()

	fee := s.policy.CancellationFee(booking.TotalAmount, booking.StartDate, now)

	update := &models.BookingUpdate{
		Status:             models.BookingCancelled,
		CancellationReason: reason,
		CancelledAt:        &now,
		ChangedBy:          changedBy,
		Notes:              "booking cancelled",
	}
	if fee > 0 {
		newFee := booking.LateFee.Add(fee)
		total := booking.TotalAmount.Add(fee)
		balance := booking.BalanceDue.Add(fee)
		update.LateFee = &newFee
		update.TotalAmount = &total
		update.BalanceDue = &balance
		update.Notes = fmt.Sprintf("booking cancelled, fee %s", fee)
	}
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, update); err != nil {
		metrics.IncTransition(models.BookingCancelled, "conflict")
		return nil, err
	}

	if booking.Status == models.BookingConfirmed {
		s.releaseCar(ctx, booking)
	}
	metrics.IncTransition(models.BookingCancelled, "ok")

	cancelled, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingCancelled, cancelled, changedBy)
	s.notifyCustomer(ctx, cancelled, "Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled. Cancellation charge: %s.", cancelled.Reference, fee))
	return cancelled, nil
}

// MarkNoShow closes out a booking whose start date passed without a
// checkout. The full amount is retained and the car is freed.
func (s *BookingService) MarkNoShow(ctx context.Context, bookingID string, changedBy string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
		metrics.IncTransition(models.BookingNoShow, "invalid")
		return nil, fmt.Errorf("%w: cannot mark a %s booking as no-show", database.ErrInvalidTransition, booking.Status)
	}
	if time.Now().Before(booking.StartDate) {
		metrics.IncTransition(models.BookingNoShow, "invalid")
		return nil, fmt.Errorf("%w: rental period has not started yet", database.ErrInvalidTransition)
	}

	unlock := s.lockCar(booking.CarID)
	defer unlock()

	update := &models.BookingUpdate{
		Status:    models.BookingNoShow,
		ChangedBy: changedBy,
		Notes:     "customer did not show up",
	}
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, update); err != nil {
		metrics.IncTransition(models.BookingNoShow, "conflict")
		return nil, err
	}

	if booking.Status == models.BookingConfirmed {
		s.releaseCar(ctx, booking)
	}
	metrics.IncTransition(models.BookingNoShow, "ok")

	closed, err := s.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingNoShow, closed, changedBy)
	return closed, nil
}

// SweepNoShows marks expired pending bookings past the grace period.
// Run periodically from main.
func (s *BookingService) SweepNoShows(ctx context.Context) {
	expired, err := s.repo.GetExpiredPending(ctx, time.Now(), s.cfg.NoShowGraceHours)
	if err != nil {
		s.logger.Error().Err(err).Msg("no-show sweep query failed")
		return
	}
	for _, b := range expired {
		if _, err := s.MarkNoShow(ctx, b.ID, "system"); err != nil {
			s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("no-show sweep failed for booking")
		}
	}
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error) {
	return s.repo.GetBookingByReference(ctx, ref)
}

func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx, filter)
}

func (s *BookingService) GetBookingHistory(ctx context.Context, bookingID string) ([]*models.BookingHistory, error) {
	return s.repo.GetBookingHistory(ctx, bookingID)
}

// releaseCar frees the car after a terminal transition unless another
// confirmed or active booking still holds it.
func (s *BookingService) releaseCar(ctx context.Context, booking *models.Booking) {
	for _, status := range []string{models.BookingActive, models.BookingConfirmed} {
		others, err := s.repo.ListBookings(ctx, models.BookingFilter{CarID: booking.CarID, Status: status})
		if err != nil {
			s.logger.Error().Err(err).Str("car_id", booking.CarID).Msg("car release check failed")
			return
		}
		if len(others) > 0 {
			return
		}
	}
	if err := s.repo.UpdateCarStatus(ctx, booking.CarID, models.CarAvailable); err != nil {
		s.logger.Error().Err(err).Str("car_id", booking.CarID).Msg("car release failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.bus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		CarID:       booking.CarID,
		CarName:     booking.CarName,
		CustomerID:  booking.CustomerID,
		Status:      booking.Status,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalAmount: booking.TotalAmount,
		BalanceDue:  booking.BalanceDue,
		ChangedBy:   changedBy,
	}

	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) notifyCustomer(ctx context.Context, booking *models.Booking, subject, body string) {
	customer, err := s.repo.GetCustomer(ctx, booking.CustomerID)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("notification skipped, customer lookup failed")
		return
	}
	s.enqueueNotification(ctx, booking, customer, subject, body)
}

// enqueueNotification queues email and SMS delivery. Queue failures are
// logged and swallowed; notifications never fail the business operation.
func (s *BookingService) enqueueNotification(ctx context.Context, booking *models.Booking, customer *models.Customer, subject, body string) {
	if s.notify == nil {
		return
	}

	tasks := []*models.NotifyTask{
		{BookingID: booking.ID, Channel: models.NotifyEmail, Recipient: customer.Email, Subject: subject, Body: body, Status: "pending"},
		{BookingID: booking.ID, Channel: models.NotifySMS, Recipient: customer.Phone, Body: body, Status: "pending"},
	}
	for _, task := range tasks {
		if err := s.notify.Enqueue(ctx, task); err != nil {
			s.logger.Error().Err(err).Str("booking_id", booking.ID).Str("channel", task.Channel).Msg("notification enqueue error")
		}
	}
}
