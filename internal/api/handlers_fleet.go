package api

import (
	"net/http"
	"time"

	"github.com/osahene/YOS-rentals/internal/models"
)

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	cars, err := s.cars.ListCars(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

func (s *Server) handleGetCar(w http.ResponseWriter, r *http.Request) {
	car, err := s.cars.GetCar(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	var car models.Car
	if err := decodeBody(r, &car); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.cars.CreateCar(r.Context(), &car); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	var car models.Car
	if err := decodeBody(r, &car); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	car.ID = pathID(r)
	if err := s.cars.UpdateCar(r.Context(), &car); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) handleSetCarStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.cars.SetCarStatus(r.Context(), pathID(r), body.Status, body.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}

// dateRange reads start/end query parameters as a half-open interval.
func dateRange(r *http.Request) (time.Time, time.Time, bool) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (s *Server) handleAvailableCars(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "start and end dates are required (YYYY-MM-DD)")
		return
	}
	cars, err := s.cars.ListAvailableCars(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

func (s *Server) handleCarAvailability(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "start and end dates are required (YYYY-MM-DD)")
		return
	}
	carID := pathID(r)

	available, err := s.bookings.IsCarAvailable(r.Context(), carID, start, end, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	windows, err := s.cars.GetAvailabilityWindows(r.Context(), carID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available": available,
		"windows":   windows,
	})
}

func (s *Server) handleListMaintenance(w http.ResponseWriter, r *http.Request) {
	records, err := s.cars.ListMaintenance(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"maintenance": records})
}

func (s *Server) handleScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	var rec models.MaintenanceRecord
	if err := decodeBody(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.cars.ScheduleMaintenance(r.Context(), &rec); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleCompleteMaintenance(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cost models.Money `json:"cost"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.cars.CompleteMaintenance(r.Context(), pathID(r), body.Cost); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
