package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/events"
	"github.com/osahene/YOS-rentals/internal/models"
)

type CarService struct {
	repo   domain.Repository
	bus    domain.EventPublisher
	logger *zerolog.Logger

	mu sync.Mutex
}

func NewCarService(repo domain.Repository, bus domain.EventPublisher, logger *zerolog.Logger) *CarService {
	return &CarService{repo: repo, bus: bus, logger: logger}
}

func (s *CarService) GetCar(ctx context.Context, id string) (*models.Car, error) {
	return s.repo.GetCar(ctx, id)
}

func (s *CarService) ListCars(ctx context.Context, status string) ([]*models.Car, error) {
	return s.repo.ListCars(ctx, status)
}

// ListAvailableCars returns cars free for the whole of [start, end),
// regardless of their momentary fleet status (a car rented today can be
// booked for next month).
func (s *CarService) ListAvailableCars(ctx context.Context, start, end time.Time) ([]*models.Car, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start date must precede end date", database.ErrValidation)
	}

	cars, err := s.repo.ListCars(ctx, "")
	if err != nil {
		return nil, err
	}

	var available []*models.Car
	for _, car := range cars {
		if car.Status == models.CarUnavailable {
			continue
		}
		free, err := s.repo.CheckAvailability(ctx, car.ID, start, end, "")
		if err != nil {
			return nil, err
		}
		if free {
			available = append(available, car)
		}
	}
	return available, nil
}

func (s *CarService) CreateCar(ctx context.Context, car *models.Car) error {
	if car.Make == "" || car.Model == "" || car.LicensePlate == "" {
		return fmt.Errorf("%w: make, model and license plate are required", database.ErrValidation)
	}
	if car.DailyRate <= 0 {
		return fmt.Errorf("%w: daily rate must be positive", database.ErrValidation)
	}
	return s.repo.CreateCar(ctx, car)
}

func (s *CarService) UpdateCar(ctx context.Context, car *models.Car) error {
	if car.DailyRate <= 0 {
		return fmt.Errorf("%w: daily rate must be positive", database.ErrValidation)
	}
	return s.repo.UpdateCar(ctx, car)
}

// SetCarStatus is the manual override for fleet status, with an event so
// the audit trail shows who flipped it and why.
func (s *CarService) SetCarStatus(ctx context.Context, carID, status, reason string) error {
	switch status {
	case models.CarAvailable, models.CarRented, models.CarMaintenance, models.CarReserved, models.CarUnavailable:
	default:
		return fmt.Errorf("%w: unknown car status %q", database.ErrValidation, status)
	}

	car, err := s.repo.GetCar(ctx, carID)
	if err != nil {
		return err
	}
	if car.Status == status {
		return nil
	}
	if err := s.repo.UpdateCarStatus(ctx, carID, status); err != nil {
		return err
	}

	s.publishStatus(car, status, reason)
	return nil
}

// ScheduleMaintenance books the car out for servicing. The maintenance
// window blocks new bookings for its range; if it starts now the car
// drops out of the fleet immediately.
func (s *CarService) ScheduleMaintenance(ctx context.Context, rec *models.MaintenanceRecord) error {
	if rec.CarID == "" || rec.Type == "" {
		return fmt.Errorf("%w: car and maintenance type are required", database.ErrValidation)
	}
	if !rec.ScheduledDate.Before(rec.EndDate) {
		return fmt.Errorf("%w: scheduled date must precede end date", database.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	car, err := s.repo.GetCar(ctx, rec.CarID)
	if err != nil {
		return err
	}

	// Do not pull the car out from under a confirmed rental.
	free, err := s.repo.CheckAvailability(ctx, rec.CarID, rec.ScheduledDate, rec.EndDate, "")
	if err != nil {
		return err
	}
	if !free {
		return database.ErrNotAvailable
	}

	if err := s.repo.CreateMaintenanceRecord(ctx, rec); err != nil {
		return err
	}

	window := &models.AvailabilityWindow{
		CarID:         rec.CarID,
		StartDate:     rec.ScheduledDate,
		EndDate:       rec.EndDate,
		Status:        models.CarMaintenance,
		Reason:        rec.Type,
		MaintenanceID: rec.ID,
	}
	if err := s.repo.CreateAvailabilityWindow(ctx, window); err != nil {
		return err
	}

	now := time.Now()
	if !rec.ScheduledDate.After(now) && rec.EndDate.After(now) {
		if err := s.repo.UpdateCarStatus(ctx, rec.CarID, models.CarMaintenance); err != nil {
			return err
		}
		s.publishStatus(car, models.CarMaintenance, rec.Type)
	}
	return nil
}

// CompleteMaintenance closes the record, removes its blocking window and
// returns the car to the fleet.
func (s *CarService) CompleteMaintenance(ctx context.Context, maintenanceID string, cost models.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetMaintenanceRecord(ctx, maintenanceID)
	if err != nil {
		return err
	}
	if rec.IsCompleted {
		return fmt.Errorf("%w: maintenance already completed", database.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.repo.CompleteMaintenanceRecord(ctx, maintenanceID, now, cost); err != nil {
		return err
	}
	if err := s.repo.DeleteAvailabilityWindowsByMaintenance(ctx, maintenanceID); err != nil {
		return err
	}

	car, err := s.repo.GetCar(ctx, rec.CarID)
	if err != nil {
		return err
	}
	if car.Status == models.CarMaintenance {
		if err := s.repo.UpdateCarStatus(ctx, rec.CarID, models.CarAvailable); err != nil {
			return err
		}
		s.publishStatus(car, models.CarAvailable, "maintenance completed")
	}
	return nil
}

func (s *CarService) ListMaintenance(ctx context.Context, carID string) ([]*models.MaintenanceRecord, error) {
	return s.repo.ListMaintenanceByCar(ctx, carID)
}

func (s *CarService) GetAvailabilityWindows(ctx context.Context, carID string, start, end time.Time) ([]*models.AvailabilityWindow, error) {
	return s.repo.GetAvailabilityWindows(ctx, carID, start, end)
}

func (s *CarService) publishStatus(car *models.Car, newStatus, reason string) {
	if s.bus == nil {
		return
	}
	payload := events.CarStatusPayload{
		CarID:     car.ID,
		CarName:   car.Make + " " + car.Model,
		OldStatus: car.Status,
		NewStatus: newStatus,
		Reason:    reason,
	}
	if err := s.bus.PublishJSON(events.EventCarStatusChanged, payload); err != nil {
		s.logger.Error().Err(err).Str("car_id", car.ID).Msg("publish car status event error")
	}
}
