package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/database"
	"github.com/osahene/YOS-rentals/internal/domain"
	"github.com/osahene/YOS-rentals/internal/models"
)

type ReportService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewReportService(repo domain.Repository, logger *zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger}
}

// MonthlySummary aggregates a calendar month.
func (s *ReportService) MonthlySummary(ctx context.Context, year int, month time.Month) (*models.FinancialSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	summary, err := s.repo.RevenueByPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	summary.Period = start.Format("2006-01")
	return summary, nil
}

// QuarterlySummary aggregates a calendar quarter (1-4).
func (s *ReportService) QuarterlySummary(ctx context.Context, year, quarter int) (*models.FinancialSummary, error) {
	if quarter < 1 || quarter > 4 {
		return nil, fmt.Errorf("%w: quarter must be 1-4", database.ErrValidation)
	}
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)
	summary, err := s.repo.RevenueByPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	summary.Period = fmt.Sprintf("%d-Q%d", year, quarter)
	return summary, nil
}

// AnnualSummary aggregates a calendar year.
func (s *ReportService) AnnualSummary(ctx context.Context, year int) (*models.FinancialSummary, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	summary, err := s.repo.RevenueByPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	summary.Period = start.Format("2006")
	return summary, nil
}

// VehicleRevenue breaks revenue and maintenance spend down per car.
func (s *ReportService) VehicleRevenue(ctx context.Context, start, end time.Time) ([]*models.VehicleRevenue, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start date must precede end date", database.ErrValidation)
	}
	return s.repo.RevenueByVehicle(ctx, start, end)
}
