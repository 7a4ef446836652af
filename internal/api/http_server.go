package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/models"
	"github.com/osahene/YOS-rentals/internal/reports"
	"github.com/osahene/YOS-rentals/internal/service"
)

// Server is the HTTP front for the rental services. Everything mutating
// sits behind the session auth; staff endpoints additionally require the
// staff or admin role.
type Server struct {
	cfg       config.APIConfig
	auth      *Auth
	limiter   *rateLimiter
	sessions  domain.SessionRepository
	bookings  *service.BookingService
	payments  *service.PaymentService
	cars      *service.CarService
	customers *service.CustomerService
	reports   *service.ReportService
	exporter  *reports.Exporter
	logger    *zerolog.Logger
	server    *http.Server
}

type Services struct {
	Bookings  *service.BookingService
	Payments  *service.PaymentService
	Cars      *service.CarService
	Customers *service.CustomerService
	Reports   *service.ReportService
	Exporter  *reports.Exporter
}

func NewServer(cfg config.APIConfig, auth *Auth, sessions domain.SessionRepository, svc Services, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		auth:      auth,
		limiter:   newRateLimiter(cfg.RateLimit, auth.cfg.CookieName),
		sessions:  sessions,
		bookings:  svc.Bookings,
		payments:  svc.Payments,
		cars:      svc.Cars,
		customers: svc.Customers,
		reports:   svc.Reports,
		exporter:  svc.Exporter,
		logger:    logger,
	}

	handler := requestIDMiddleware(loggingMiddleware(logger, s.rateLimitMiddleware(s.routes())))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	v1.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	staff := []string{models.RoleStaff, models.RoleAdmin}

	// Fleet.
	v1.HandleFunc("/cars", s.auth.Require(s.handleListCars)).Methods(http.MethodGet)
	v1.HandleFunc("/cars", s.auth.Require(s.handleCreateCar, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/cars/available", s.auth.Require(s.handleAvailableCars)).Methods(http.MethodGet)
	v1.HandleFunc("/cars/{id}", s.auth.Require(s.handleGetCar)).Methods(http.MethodGet)
	v1.HandleFunc("/cars/{id}", s.auth.Require(s.handleUpdateCar, staff...)).Methods(http.MethodPut)
	v1.HandleFunc("/cars/{id}/status", s.auth.Require(s.handleSetCarStatus, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/cars/{id}/availability", s.auth.Require(s.handleCarAvailability)).Methods(http.MethodGet)
	v1.HandleFunc("/cars/{id}/maintenance", s.auth.Require(s.handleListMaintenance, staff...)).Methods(http.MethodGet)
	v1.HandleFunc("/maintenance", s.auth.Require(s.handleScheduleMaintenance, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/maintenance/{id}/complete", s.auth.Require(s.handleCompleteMaintenance, staff...)).Methods(http.MethodPost)

	// Customers and drivers.
	v1.HandleFunc("/customers", s.auth.Require(s.handleListCustomers, staff...)).Methods(http.MethodGet)
	v1.HandleFunc("/customers", s.auth.Require(s.handleCreateCustomer, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/customers/{id}", s.auth.Require(s.handleGetCustomer)).Methods(http.MethodGet)
	v1.HandleFunc("/customers/{id}", s.auth.Require(s.handleUpdateCustomer, staff...)).Methods(http.MethodPut)
	v1.HandleFunc("/drivers", s.auth.Require(s.handleListDrivers, staff...)).Methods(http.MethodGet)
	v1.HandleFunc("/drivers", s.auth.Require(s.handleCreateDriver, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/drivers/{id}/status", s.auth.Require(s.handleSetDriverStatus, staff...)).Methods(http.MethodPost)

	// Bookings.
	v1.HandleFunc("/bookings", s.auth.Require(s.handleListBookings)).Methods(http.MethodGet)
	v1.HandleFunc("/bookings", s.auth.Require(s.handleCreateBooking)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}", s.auth.Require(s.handleGetBooking)).Methods(http.MethodGet)
	v1.HandleFunc("/bookings/{id}/history", s.auth.Require(s.handleBookingHistory, staff...)).Methods(http.MethodGet)
	v1.HandleFunc("/bookings/{id}/confirm", s.auth.Require(s.handleConfirmBooking, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}/cancel", s.auth.Require(s.handleCancelBooking)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}/checkout", s.auth.Require(s.handleCheckoutBooking, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}/checkin", s.auth.Require(s.handleCheckinBooking, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}/no-show", s.auth.Require(s.handleNoShowBooking, staff...)).Methods(http.MethodPost)

	// Payments.
	v1.HandleFunc("/bookings/{id}/payments", s.auth.Require(s.handleListPayments)).Methods(http.MethodGet)
	v1.HandleFunc("/bookings/{id}/payments", s.auth.Require(s.handleApplyPayment, staff...)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}/payments/initialize", s.auth.Require(s.handleInitGatewayPayment)).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id}/payments/verify", s.auth.Require(s.handleVerifyGatewayPayment)).Methods(http.MethodPost)

	// Reports.
	admin := []string{models.RoleAdmin}
	v1.HandleFunc("/reports/financial", s.auth.Require(s.handleFinancialReport, staff...)).Methods(http.MethodGet)
	v1.HandleFunc("/reports/vehicles", s.auth.Require(s.handleVehicleReport, staff...)).Methods(http.MethodGet)
	v1.HandleFunc("/reports/export", s.auth.Require(s.handleExportReport, admin...)).Methods(http.MethodGet)

	return r
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the routing stack for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r) {
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		host = r.RemoteAddr
	}
	allowed, err := s.sessions.CheckRateLimit(r.Context(), "login:"+host,
		models.LoginRateLimitAttempts, models.LoginRateLimitWindow*time.Second)
	if err != nil {
		s.logger.Error().Err(err).Msg("login rate limit check failed")
	} else if !allowed {
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many login attempts")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "email and password are required")
		return
	}

	token, session, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
		return
	}

	s.auth.SetCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"role":       session.Role,
		"expires_at": session.ExpiresAt,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, session, err := s.auth.Refresh(r.Context(), r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	s.auth.SetCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"role":       session.Role,
		"expires_at": session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(r.Context(), r)
	s.auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func actorID(r *http.Request) string {
	if session := SessionFromContext(r.Context()); session != nil {
		return session.UserID
	}
	return ""
}
