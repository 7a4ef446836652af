package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/models"
)

// PaystackClient talks to the Paystack transaction API. Amounts cross the
// wire in minor units, which matches models.Money directly.
type PaystackClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *zerolog.Logger
}

func NewPaystackClient(cfg config.GatewayConfig, logger *zerolog.Logger) *PaystackClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackClient{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
	Channel   string `json:"channel"`
}

func (c *PaystackClient) Initialize(ctx context.Context, req *models.GatewayInitRequest) (*models.GatewayInitResponse, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    int64(req.Amount),
		"currency":  req.Currency,
		"reference": req.Reference,
	}
	if req.Callback != "" {
		body["callback_url"] = req.Callback
	}

	var data initializeData
	if err := c.post(ctx, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	return &models.GatewayInitResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*models.GatewayVerification, error) {
	var data verifyData
	if err := c.get(ctx, "/transaction/verify/"+url.PathEscape(reference), &data); err != nil {
		return nil, err
	}

	paidAt, _ := time.Parse(time.RFC3339, data.PaidAt)
	return &models.GatewayVerification{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    models.Money(data.Amount),
		Currency:  data.Currency,
		PaidAt:    paidAt,
		Channel:   data.Channel,
	}, nil
}

func (c *PaystackClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *PaystackClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *PaystackClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode gateway response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		c.logger.Warn().Int("status", resp.StatusCode).Str("message", envelope.Message).Msg("gateway rejected request")
		return fmt.Errorf("gateway error (%d): %s", resp.StatusCode, envelope.Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode gateway data: %w", err)
	}
	return nil
}
