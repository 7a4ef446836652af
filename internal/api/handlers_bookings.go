package api

import (
	"net/http"
	"time"

	"github.com/osahene/YOS-rentals/internal/models"
	"github.com/osahene/YOS-rentals/internal/service"
)

type createBookingBody struct {
	CarID           string `json:"car_id"`
	CustomerID      string `json:"customer_id"`
	DriverID        string `json:"driver_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	Notes           string `json:"notes"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if body.CarID == "" || body.CustomerID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "car_id and customer_id are required")
		return
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid start_date")
		return
	}
	end, err := parseDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid end_date")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), &service.CreateBookingRequest{
		CarID:           body.CarID,
		CustomerID:      body.CustomerID,
		DriverID:        body.DriverID,
		StartDate:       start,
		EndDate:         end,
		PickupLocation:  body.PickupLocation,
		DropoffLocation: body.DropoffLocation,
		Notes:           body.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.GetBooking(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.BookingFilter{
		Status:     q.Get("status"),
		CarID:      q.Get("car_id"),
		CustomerID: q.Get("customer_id"),
	}
	if raw := q.Get("from"); raw != "" {
		if t, err := parseDate(raw); err == nil {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := parseDate(raw); err == nil {
			filter.To = t
		}
	}

	bookings, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *Server) handleBookingHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.bookings.GetBookingHistory(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.ConfirmBooking(r.Context(), pathID(r), actorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	// A reason is optional; an empty body is fine.
	_ = decodeBody(r, &body)

	booking, err := s.bookings.CancelBooking(r.Context(), pathID(r), body.Reason, actorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCheckoutBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.CheckoutBooking(r.Context(), pathID(r), actorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCheckinBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReturnedAt string `json:"returned_at"`
	}
	_ = decodeBody(r, &body)

	returnedAt := time.Now()
	if body.ReturnedAt != "" {
		t, err := parseDate(body.ReturnedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "invalid returned_at")
			return
		}
		returnedAt = t
	}

	booking, err := s.bookings.CheckinBooking(r.Context(), pathID(r), actorID(r), returnedAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleNoShowBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.MarkNoShow(r.Context(), pathID(r), actorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
