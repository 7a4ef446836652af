package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/events"
	"github.com/osahene/YOS-rentals/internal/metrics"
	"github.com/osahene/YOS-rentals/internal/models"
)

type PaymentService struct {
	repo     domain.Repository
	bookings *BookingService
	gateway  domain.PaymentGateway
	bus      domain.EventPublisher
	notify   domain.NotifyWorker
	logger   *zerolog.Logger
}

func NewPaymentService(repo domain.Repository, bookings *BookingService, gateway domain.PaymentGateway, bus domain.EventPublisher, notify domain.NotifyWorker, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		bookings: bookings,
		gateway:  gateway,
		bus:      bus,
		notify:   notify,
		logger:   logger,
	}
}

// NewPaymentReference generates a "PAY" + 10 digit reference.
func NewPaymentReference() string {
	return fmt.Sprintf("PAY%010d", rand.Int63n(10000000000))
}

// ApplyPayment records a settled payment against the booking and
// reconciles balances. Full settlement auto-confirms a pending booking
// and queues a receipt.
func (s *PaymentService) ApplyPayment(ctx context.Context, bookingID string, amount models.Money, method string) (*models.Booking, *models.Payment, error) {
	if amount <= 0 {
		return nil, nil, fmt.Errorf("%w: payment amount must be positive", database.ErrValidation)
	}
	switch method {
	case models.MethodCash, models.MethodCard, models.MethodMobileMoney, models.MethodBankXfer:
	default:
		return nil, nil, fmt.Errorf("%w: unknown payment method %q", database.ErrValidation, method)
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if models.IsTerminalBookingStatus(booking.Status) && booking.Status != models.BookingCompleted {
		return nil, nil, fmt.Errorf("%w: cannot pay for a %s booking", database.ErrInvalidTransition, booking.Status)
	}

	payment := &models.Payment{
		Reference: NewPaymentReference(),
		BookingID: booking.ID,
		Amount:    amount,
		Method:    method,
		Currency:  "GHS",
	}

	booking, err = s.repo.ApplyPayment(ctx, payment)
	if err != nil {
		return nil, nil, err
	}
	metrics.IncPayment(method)

	if payment.OverpaidAmount > 0 {
		s.logger.Warn().
			Str("booking_id", booking.ID).
			Str("payment_ref", payment.Reference).
			Int64("overpaid", int64(payment.OverpaidAmount)).
			Msg("payment exceeded balance, surplus recorded for refund")
	}

	s.publishPayment(payment, booking)

	if booking.BalanceDue == 0 && booking.Status == models.BookingPending {
		confirmed, err := s.bookings.ConfirmBooking(ctx, booking.ID, "system")
		if err != nil {
			// The money is recorded either way; confirmation can be
			// retried by staff.
			s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("auto-confirm after settlement failed")
		} else {
			booking = confirmed
		}
	}

	if booking.BalanceDue == 0 {
		s.sendReceipt(ctx, booking, payment)
	}

	return booking, payment, nil
}

// InitializeGatewayPayment starts a hosted-checkout transaction for the
// outstanding balance and returns the redirect URL.
func (s *PaymentService) InitializeGatewayPayment(ctx context.Context, bookingID, email string) (*models.Payment, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BalanceDue <= 0 {
		return nil, fmt.Errorf("%w: booking has no outstanding balance", database.ErrValidation)
	}

	reference := NewPaymentReference()
	resp, err := s.gateway.Initialize(ctx, &models.GatewayInitRequest{
		Email:     email,
		Amount:    booking.BalanceDue,
		Currency:  "GHS",
		Reference: reference,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway initialize failed: %w", err)
	}

	return &models.Payment{
		Reference:        reference,
		BookingID:        booking.ID,
		Amount:           booking.BalanceDue,
		Method:           models.MethodCard,
		Status:           models.PaymentPending,
		Currency:         "GHS",
		GatewayName:      "paystack",
		GatewayReference: resp.Reference,
		AuthorizationURL: resp.AuthorizationURL,
	}, nil
}

// VerifyGatewayPayment checks the provider's settlement state for a
// reference and, when the charge went through, applies the verified
// amount to the booking.
func (s *PaymentService) VerifyGatewayPayment(ctx context.Context, bookingID, reference string) (*models.Booking, *models.Payment, error) {
	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, nil, fmt.Errorf("gateway verify failed: %w", err)
	}
	if !verification.Settled() {
		return nil, nil, fmt.Errorf("%w: gateway reports status %q for %s", database.ErrValidation, verification.Status, reference)
	}

	// Idempotent: a reference already applied is returned as-is.
	if existing, err := s.repo.GetPaymentByReference(ctx, reference); err == nil {
		booking, err := s.repo.GetBooking(ctx, existing.BookingID)
		if err != nil {
			return nil, nil, err
		}
		return booking, existing, nil
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	payment := &models.Payment{
		Reference:        reference,
		BookingID:        booking.ID,
		Amount:           verification.Amount,
		Method:           models.MethodCard,
		Currency:         verification.Currency,
		GatewayName:      "paystack",
		GatewayReference: reference,
	}
	booking, err = s.repo.ApplyPayment(ctx, payment)
	if err != nil {
		return nil, nil, err
	}
	metrics.IncPayment(models.MethodCard)
	s.publishPayment(payment, booking)

	if booking.BalanceDue == 0 && booking.Status == models.BookingPending {
		if confirmed, err := s.bookings.ConfirmBooking(ctx, booking.ID, "system"); err == nil {
			booking = confirmed
		} else {
			s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("auto-confirm after gateway settlement failed")
		}
	}
	if booking.BalanceDue == 0 {
		s.sendReceipt(ctx, booking, payment)
	}

	return booking, payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, bookingID string) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByBooking(ctx, bookingID)
}

func (s *PaymentService) publishPayment(payment *models.Payment, booking *models.Booking) {
	if s.bus == nil {
		return
	}
	payload := events.PaymentEventPayload{
		PaymentID:  payment.ID,
		Reference:  payment.Reference,
		BookingID:  booking.ID,
		BookingRef: booking.Reference,
		Amount:     payment.Amount,
		Method:     payment.Method,
		Status:     payment.Status,
		BalanceDue: booking.BalanceDue,
	}
	if err := s.bus.PublishJSON(events.EventPaymentApplied, payload); err != nil {
		s.logger.Error().Err(err).Str("payment_ref", payment.Reference).Msg("publish payment event error")
	}
}

func (s *PaymentService) sendReceipt(ctx context.Context, booking *models.Booking, payment *models.Payment) {
	if s.notify == nil {
		return
	}
	customer, err := s.repo.GetCustomer(ctx, booking.CustomerID)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("receipt skipped, customer lookup failed")
		return
	}

	body := fmt.Sprintf("Payment %s received for booking %s. Paid in full: %s. Thank you.",
		payment.Reference, booking.Reference, booking.AmountPaid)
	task := &models.NotifyTask{
		BookingID: booking.ID,
		Channel:   models.NotifyEmail,
		Recipient: customer.Email,
		Subject:   "Payment receipt " + payment.Reference,
		Body:      body,
		Status:    "pending",
	}
	if err := s.notify.Enqueue(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("receipt enqueue error")
	}
}
