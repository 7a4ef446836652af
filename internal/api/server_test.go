package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/models"
	"github.com/osahene/YOS-rentals/internal/reports"
	"github.com/osahene/YOS-rentals/internal/repository"
	"github.com/osahene/YOS-rentals/internal/service"
)

type apiEnv struct {
	db      *database.DB
	handler http.Handler
}

func newAPIEnv(t *testing.T, rateLimit config.RateLimitConfig) *apiEnv {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.Nop()
	sessions := repository.NewMemorySessionRepository()

	authCfg := config.AuthConfig{
		JWTSecret:     "test-secret",
		CookieName:    "yos_session",
		TokenTTLHours: 1,
	}
	auth := NewAuth(authCfg, db, sessions, &logger)

	policy := service.NewFeePolicy(config.FeeConfig{
		TaxRatePercent:          10,
		CancellationFeePercent:  20,
		CancellationWindowHours: 48,
		LateSurchargePercent:    50,
	})
	bookings := service.NewBookingService(db, nil, nil, policy,
		config.BookingConfig{MaxBookingDays: 90, NoShowGraceHours: 24}, &logger)

	srv := NewServer(config.APIConfig{Port: 8080, RateLimit: rateLimit}, auth, sessions, Services{
		Bookings:  bookings,
		Payments:  service.NewPaymentService(db, bookings, nil, nil, nil, &logger),
		Cars:      service.NewCarService(db, nil, &logger),
		Customers: service.NewCustomerService(db, &logger),
		Reports:   service.NewReportService(db, &logger),
		Exporter:  reports.NewExporter(t.TempDir()),
	}, &logger)

	return &apiEnv{db: db, handler: srv.Handler()}
}

func (e *apiEnv) seedUser(t *testing.T, role, email, password string) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, e.db.CreateUser(context.Background(), &models.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}))
}

func (e *apiEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "yos_session" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func (e *apiEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:40000"
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "correct-horse")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "staff@yos.test", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeUnauthorized, errorCode(t, rec))

	// Unknown emails get the same response as bad passwords.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "nobody@yos.test", "password": "whatever"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "correct-horse")

	cookie := env.login(t, "staff@yos.test", "correct-horse")
	assert.True(t, cookie.HttpOnly)

	rec := env.do(t, http.MethodGet, "/api/v1/bookings", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_RequiresSession(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeUnauthorized, errorCode(t, rec))
}

func TestAuth_RoleForbidden(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleCustomer, "ama@yos.test", "secret123")
	cookie := env.login(t, "ama@yos.test", "secret123")

	rec := env.do(t, http.MethodGet, "/api/v1/reports/financial", nil, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, codeForbidden, errorCode(t, rec))

	// Export is admin only, even for staff.
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "secret123")
	staffCookie := env.login(t, "staff@yos.test", "secret123")
	rec = env.do(t, http.MethodGet, "/api/v1/reports/export", nil, staffCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefresh_RotatesSession(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "secret123")
	cookie := env.login(t, "staff@yos.test", "secret123")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/refresh", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "yos_session" && c.Value != "" {
			fresh = c
		}
	}
	require.NotNil(t, fresh)
	assert.NotEqual(t, cookie.Value, fresh.Value)

	// The rotated cookie works; the old session is revoked.
	rec = env.do(t, http.MethodGet, "/api/v1/bookings", nil, fresh)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/bookings", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RequiresSession(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/auth/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeUnauthorized, errorCode(t, rec))
}

func TestLogout_RevokesSession(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "secret123")
	cookie := env.login(t, "staff@yos.test", "secret123")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// The JWT is still well formed but its server-side session is gone.
	rec = env.do(t, http.MethodGet, "/api/v1/bookings", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorEnvelope_NotFound(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "secret123")
	cookie := env.login(t, "staff@yos.test", "secret123")

	rec := env.do(t, http.MethodGet, "/api/v1/bookings/missing-id", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeNotFound, errorCode(t, rec))
}

func TestRateLimit_Returns429(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{RPS: 0.001, Burst: 2})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, codeRateLimited, errorCode(t, rec))
}

func TestBookingFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "secret123")
	cookie := env.login(t, "staff@yos.test", "secret123")

	rec := env.do(t, http.MethodPost, "/api/v1/cars", map[string]any{
		"make":          "Toyota",
		"model":         "Corolla",
		"year":          2023,
		"license_plate": "GR-4821-23",
		"daily_rate":    10000,
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var car models.Car
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &car))

	rec = env.do(t, http.MethodPost, "/api/v1/customers", map[string]any{
		"first_name": "Ama",
		"last_name":  "Mensah",
		"email":      "ama@example.com",
		"phone":      "+233200000001",
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var customer models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))

	start := time.Now().AddDate(0, 0, 30)
	end := start.AddDate(0, 0, 3)
	rec = env.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"car_id":      car.ID,
		"customer_id": customer.ID,
		"start_date":  start.Format("2006-01-02"),
		"end_date":    end.Format("2006-01-02"),
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, models.Money(33000), booking.TotalAmount)

	// Full settlement auto-confirms the pending booking.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/payments", booking.ID),
		map[string]any{"amount": 33000, "method": models.MethodCash}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var applied struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.Equal(t, models.BookingConfirmed, applied.Booking.Status)
	assert.Equal(t, models.PaymentCompleted, applied.Booking.PaymentStatus)

	// Confirming an already confirmed booking is an invalid transition,
	// reported as a bad request rather than a conflict.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/confirm", booking.ID), nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInvalidTransition, errorCode(t, rec))

	rec = env.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/cars/%s/availability?start=%s&end=%s",
			car.ID, start.Format("2006-01-02"), end.Format("2006-01-02")), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var availability struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &availability))
	assert.False(t, availability.Available)
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	env.seedUser(t, models.RoleStaff, "staff@yos.test", "secret123")
	cookie := env.login(t, "staff@yos.test", "secret123")

	rec := env.do(t, http.MethodPost, "/api/v1/bookings",
		map[string]any{"car_id": "", "customer_id": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"car_id":      "c1",
		"customer_id": "cu1",
		"start_date":  "not-a-date",
		"end_date":    "2026-12-01",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
