package api

import (
	"net/http"

	"github.com/osahene/YOS-rentals/internal/models"
)

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customers.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	// Customers may only read their own record.
	session := SessionFromContext(r.Context())
	if session != nil && session.Role == models.RoleCustomer {
		customer, err := s.customers.GetCustomer(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if customer.UserID != session.UserID {
			writeError(w, http.StatusForbidden, codeForbidden, "insufficient role")
			return
		}
		writeJSON(w, http.StatusOK, customer)
		return
	}

	customer, err := s.customers.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := decodeBody(r, &customer); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.customers.CreateCustomer(r.Context(), &customer); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := decodeBody(r, &customer); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	customer.ID = pathID(r)
	if err := s.customers.UpdateCustomer(r.Context(), &customer); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.customers.ListDrivers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers})
}

func (s *Server) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var driver models.Driver
	if err := decodeBody(r, &driver); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.customers.CreateDriver(r.Context(), &driver); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, driver)
}

func (s *Server) handleSetDriverStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if err := s.customers.SetDriverStatus(r.Context(), pathID(r), body.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}
