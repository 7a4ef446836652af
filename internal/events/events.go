package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/osahene/YOS-rentals/internal/models"
)

const (
	EventBookingCreated    = "booking_created"
	EventBookingConfirmed  = "booking_confirmed"
	EventBookingCheckedOut = "booking_checked_out"
	EventBookingCheckedIn  = "booking_checked_in"
	EventBookingCancelled  = "booking_cancelled"
	EventBookingNoShow     = "booking_no_show"
	EventPaymentApplied    = "payment_applied"
	EventCarStatusChanged  = "car_status_changed"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID    string       `json:"booking_id"`
	Reference    string       `json:"reference"`
	CarID        string       `json:"car_id"`
	CarName      string       `json:"car_name"`
	CustomerID   string       `json:"customer_id"`
	CustomerName string       `json:"customer_name,omitempty"`
	Status       string       `json:"status"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	TotalAmount  models.Money `json:"total_amount"`
	BalanceDue   models.Money `json:"balance_due"`
	ChangedBy    string       `json:"changed_by,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// PaymentEventPayload is published when a payment is recorded against a booking.
type PaymentEventPayload struct {
	PaymentID  string       `json:"payment_id"`
	Reference  string       `json:"reference"`
	BookingID  string       `json:"booking_id"`
	BookingRef string       `json:"booking_ref"`
	Amount     models.Money `json:"amount"`
	Method     string       `json:"method"`
	Status     string       `json:"status"`
	BalanceDue models.Money `json:"balance_due"`
}

// CarStatusPayload is published on every fleet status change.
type CarStatusPayload struct {
	CarID     string `json:"car_id"`
	CarName   string `json:"car_name"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
