package api

import (
	"net/http"

	"github.com/osahene/YOS-rentals/internal/models"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.ListPayments(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (s *Server) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount models.Money `json:"amount"`
		Method string       `json:"method"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}

	booking, payment, err := s.payments.ApplyPayment(r.Context(), pathID(r), body.Amount, body.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment": payment,
		"booking": booking,
	})
}

func (s *Server) handleInitGatewayPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if body.Email == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "email is required")
		return
	}

	payment, err := s.payments.InitializeGatewayPayment(r.Context(), pathID(r), body.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleVerifyGatewayPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reference string `json:"reference"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid JSON body")
		return
	}
	if body.Reference == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "reference is required")
		return
	}

	booking, payment, err := s.payments.VerifyGatewayPayment(r.Context(), pathID(r), body.Reference)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment": payment,
		"booking": booking,
	})
}
