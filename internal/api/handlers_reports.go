package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/osahene/YOS-rentals/internal/models"
)

// financialSummary resolves the period query parameters into a summary.
// Supported periods: monthly (default), quarterly, annual.
func (s *Server) financialSummary(r *http.Request) (*models.FinancialSummary, error) {
	q := r.URL.Query()
	now := time.Now()

	year := now.Year()
	if raw := q.Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid year")
		}
		year = v
	}

	switch q.Get("period") {
	case "", "monthly":
		month := now.Month()
		if raw := q.Get("month"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 1 || v > 12 {
				return nil, fmt.Errorf("invalid month")
			}
			month = time.Month(v)
		}
		return s.reports.MonthlySummary(r.Context(), year, month)
	case "quarterly":
		quarter := (int(now.Month())-1)/3 + 1
		if raw := q.Get("quarter"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid quarter")
			}
			quarter = v
		}
		return s.reports.QuarterlySummary(r.Context(), year, quarter)
	case "annual":
		return s.reports.AnnualSummary(r.Context(), year)
	default:
		return nil, fmt.Errorf("unknown period; expected monthly, quarterly or annual")
	}
}

func (s *Server) handleFinancialReport(w http.ResponseWriter, r *http.Request) {
	summary, err := s.financialSummary(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleVehicleReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "start and end dates are required (YYYY-MM-DD)")
		return
	}
	rows, err := s.reports.VehicleRevenue(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": rows})
}

// handleExportReport streams the period summary plus the per-vehicle
// breakdown as an xlsx workbook.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	summary, err := s.financialSummary(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	start, end, ok := dateRange(r)
	if !ok {
		// Default the vehicle breakdown to the reported period's year.
		year := time.Now().Year()
		if raw := r.URL.Query().Get("year"); raw != "" {
			if v, convErr := strconv.Atoi(raw); convErr == nil {
				year = v
			}
		}
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0)
	}

	rows, err := s.reports.VehicleRevenue(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("financial_%s.xlsx", summary.Period)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := s.exporter.WriteWorkbook(w, summary, rows); err != nil {
		s.logger.Error().Err(err).Msg("report export failed")
	}
}
