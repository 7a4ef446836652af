package models

import "time"

type Payment struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	BookingID string `json:"booking_id"`
	Amount    Money  `json:"amount"`
	Method    string `json:"method"`
	Status    string `json:"status"`
	Currency  string `json:"currency"`

	// Surplus over the booking balance at the time the payment landed.
	OverpaidAmount Money `json:"overpaid_amount,omitempty"`

	// Gateway details.
	GatewayName      string `json:"gateway_name,omitempty"`
	GatewayReference string `json:"gateway_reference,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GatewayInitRequest starts a hosted-checkout transaction with the provider.
type GatewayInitRequest struct {
	Email     string `json:"email"`
	Amount    Money  `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
	Callback  string `json:"callback_url,omitempty"`
}

// GatewayInitResponse carries the redirect URL for the customer.
type GatewayInitResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// GatewayVerification is the provider's settlement state for a reference.
type GatewayVerification struct {
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Amount    Money     `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
	Channel   string    `json:"channel,omitempty"`
}

// Settled reports whether the provider confirmed the charge.
func (v *GatewayVerification) Settled() bool {
	return v.Status == "success"
}

// NotificationLog records a delivery attempt outcome. Failures are logged
// here and never surfaced to the caller of the triggering operation.
type NotificationLog struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// NotifyTask is a queued notification unit persisted for retry.
type NotifyTask struct {
	ID          int64      `json:"id"`
	BookingID   string     `json:"booking_id"`
	Channel     string     `json:"channel"`
	Recipient   string     `json:"recipient"`
	Subject     string     `json:"subject,omitempty"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}

// FinancialSummary aggregates approved revenue and expense for a period.
type FinancialSummary struct {
	Period       string `json:"period"`
	Revenue      Money  `json:"revenue"`
	Expenses     Money  `json:"expenses"`
	NetProfit    Money  `json:"net_profit"`
	BookingCount int64  `json:"booking_count"`
}

// VehicleRevenue is a per-car profitability row.
type VehicleRevenue struct {
	CarID        string `json:"car_id"`
	LicensePlate string `json:"license_plate"`
	CarName      string `json:"car_name"`
	Revenue      Money  `json:"revenue"`
	Maintenance  Money  `json:"maintenance_cost"`
	BookingCount int64  `json:"booking_count"`
}
