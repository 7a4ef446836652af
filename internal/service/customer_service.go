package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/models"
)

type CustomerService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewCustomerService(repo domain.Repository, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger}
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}
	return s.repo.CreateCustomer(ctx, customer)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}
	return s.repo.UpdateCustomer(ctx, customer)
}

func validateCustomer(c *models.Customer) error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", database.ErrValidation)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: phone is required", database.ErrValidation)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: invalid email address", database.ErrValidation)
	}
	return nil
}

func (s *CustomerService) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	return s.repo.GetDriver(ctx, id)
}

func (s *CustomerService) ListDrivers(ctx context.Context, status string) ([]*models.Driver, error) {
	return s.repo.ListDrivers(ctx, status)
}

func (s *CustomerService) CreateDriver(ctx context.Context, driver *models.Driver) error {
	if strings.TrimSpace(driver.Name) == "" || strings.TrimSpace(driver.LicenseNumber) == "" {
		return fmt.Errorf("%w: name and license number are required", database.ErrValidation)
	}
	if !driver.LicenseValid(time.Now()) {
		return fmt.Errorf("%w: driver license already expired", database.ErrValidation)
	}
	return s.repo.CreateDriver(ctx, driver)
}

func (s *CustomerService) SetDriverStatus(ctx context.Context, id, status string) error {
	switch status {
	case models.DriverAvailable, models.DriverAssigned, models.DriverOnLeave, models.DriverInactive:
	default:
		return fmt.Errorf("%w: unknown driver status %q", database.ErrValidation, status)
	}
	return s.repo.UpdateDriverStatus(ctx, id, status)
}
