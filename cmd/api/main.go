package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/osahene/YOS-rentals/internal/api"
	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/events"
	"github.com/osahene/YOS-rentals/internal/gateway"
	"github.com/osahene/YOS-rentals/internal/logging"
	"github.com/osahene/YOS-rentals/internal/metrics"
	"github.com/osahene/YOS-rentals/internal/models"
	"github.com/osahene/YOS-rentals/internal/notify"
	"github.com/osahene/YOS-rentals/internal/reports"
	"github.com/osahene/YOS-rentals/internal/repository"
	"github.com/osahene/YOS-rentals/internal/service"
	"github.com/osahene/YOS-rentals/internal/worker"
)

const noShowSweepInterval = 1 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := seedFleet(context.Background(), db, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	sessions := initSessions(redisClient, &logger)

	bus := events.NewEventBus()
	initTelegram(cfg, bus, &logger)

	notifyWorker := worker.NewNotifyWorker(db, redisClient, []domain.Notifier{
		notify.NewEmailSender(cfg.Notify, &logger),
		notify.NewSMSSender(cfg.Notify, &logger),
	}, worker.RetryPolicy{}, &logger)

	policy := service.NewFeePolicy(cfg.Fees)
	bookings := service.NewBookingService(db, bus, notifyWorker, policy, cfg.Booking, &logger)
	payments := service.NewPaymentService(db, bookings, gateway.NewPaystackClient(cfg.Gateway, &logger), bus, notifyWorker, &logger)

	svc := api.Services{
		Bookings:  bookings,
		Payments:  payments,
		Cars:      service.NewCarService(db, bus, &logger),
		Customers: service.NewCustomerService(db, &logger),
		Reports:   service.NewReportService(db, &logger),
		Exporter:  reports.NewExporter(cfg.Exports.Path),
	}

	auth := api.NewAuth(cfg.Auth, db, sessions, &logger)
	httpServer := api.NewServer(cfg.API, auth, sessions, svc, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go notifyWorker.Start(ctx)
	go sweepNoShows(ctx, bookings)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedFleet loads the fleet roster and inserts cars the database does not
// know yet, keyed by license plate. Existing cars are left untouched.
func seedFleet(ctx context.Context, db *database.DB, logger *zerolog.Logger) error {
	fleetPath := os.Getenv("FLEET_PATH")
	if fleetPath == "" {
		fleetPath = "configs/fleet.yaml"
	}
	data, err := os.ReadFile(fleetPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("fleet_path", fleetPath).Msg("no fleet file, skipping seed")
			return nil
		}
		logger.Error().Err(err).Str("fleet_path", fleetPath).Msg("read fleet")
		return err
	}

	var fleetConfig struct {
		Cars []models.Car `yaml:"cars"`
	}
	if err := yaml.Unmarshal(data, &fleetConfig); err != nil {
		logger.Error().Err(err).Str("fleet_path", fleetPath).Msg("parse fleet")
		return err
	}

	existing, err := db.ListCars(ctx, "")
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, car := range existing {
		known[car.LicensePlate] = true
	}

	seeded := 0
	for i := range fleetConfig.Cars {
		car := &fleetConfig.Cars[i]
		if known[car.LicensePlate] {
			continue
		}
		if car.Status == "" {
			car.Status = models.CarAvailable
		}
		if err := db.CreateCar(ctx, car); err != nil {
			logger.Error().Err(err).Str("license_plate", car.LicensePlate).Msg("seed car")
			return err
		}
		seeded++
	}

	logger.Info().Int("seeded", seeded).Int("total", len(fleetConfig.Cars)).Msg("fleet seed done")
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initSessions builds the session store: Redis when reachable, with an
// in-memory fallback behind the failover wrapper.
func initSessions(redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverSessionRepository(repository.NewRedisSessionRepository(redisClient), memory, logger)
}

func initTelegram(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notify.TelegramToken == "" {
		return
	}
	telegram, err := notify.NewTelegramNotifier(cfg.Notify, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without staff alerts")
		return
	}
	telegram.SubscribeStaffAlerts(bus)
	logger.Info().Msg("telegram staff alerts connected")
}

func sweepNoShows(ctx context.Context, bookings *service.BookingService) {
	ticker := time.NewTicker(noShowSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bookings.SweepNoShows(ctx)
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.Server, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
