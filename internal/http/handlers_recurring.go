package http

import (
	"net/http"
	"strings"

	"dime/internal/core"
)

type paymentRequest struct {
	Title           string    `json:"title"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Frequency       string    `json:"frequency"`
	StartDate       core.Date `json:"start_date"`
	NextPaymentDate core.Date `json:"next_payment_date"`
	EndDate         core.Date `json:"end_date"`
	Status          string    `json:"status"`
	CategoryID      *int64    `json:"category_id"`
	Notes           string    `json:"notes"`
}

type paymentResponse struct {
	ID              int64              `json:"id"`
	Title           string             `json:"title"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	Frequency       core.Frequency     `json:"frequency"`
	StartDate       core.Date          `json:"start_date"`
	NextPaymentDate core.Date          `json:"next_payment_date"`
	EndDate         *core.Date         `json:"end_date"`
	Status          core.PaymentStatus `json:"status"`
	CategoryID      *int64             `json:"category_id"`
	Notes           string             `json:"notes,omitempty"`
}

func toPaymentResponse(p core.RecurringPayment) paymentResponse {
	resp := paymentResponse{
		ID:              p.ID,
		Title:           p.Title,
		Amount:          core.Round2(p.Amount.Float()),
		Currency:        p.Currency,
		Frequency:       p.Frequency,
		StartDate:       p.StartDate,
		NextPaymentDate: p.NextPaymentDate,
		Status:          p.Status,
		CategoryID:      p.CategoryID,
		Notes:           p.Notes,
	}
	if !p.EndDate.IsZero() {
		end := p.EndDate
		resp.EndDate = &end
	}
	return resp
}

// toPayment builds the domain entity. A zero next payment date starts the
// schedule at the start date; a zero status means active.
func (req paymentRequest) toPayment(userID int64) (core.RecurringPayment, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.RecurringPayment{}, err
	}

	next := req.NextPaymentDate
	if next.IsZero() {
		next = req.StartDate
	}
	status := core.PaymentStatus(req.Status)
	if req.Status == "" {
		status = core.PaymentActive
	}

	return core.RecurringPayment{
		UserID:          userID,
		CategoryID:      req.CategoryID,
		Title:           strings.TrimSpace(req.Title),
		Amount:          amount,
		Currency:        strings.ToUpper(strings.TrimSpace(req.Currency)),
		Frequency:       core.Frequency(req.Frequency),
		StartDate:       req.StartDate,
		NextPaymentDate: next,
		EndDate:         req.EndDate,
		Status:          status,
	}, nil
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := req.toPayment(userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	payment.Notes = req.Notes
	if err := payment.Validate(); err != nil {
		respondError(w, err)
		return
	}

	created, err := s.store.CreateRecurringPayment(r.Context(), payment)
	if err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(payment.UserID)
	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := s.store.GetRecurringPayment(r.Context(), userIDFrom(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := req.toPayment(userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	payment.ID = id
	payment.Notes = req.Notes
	if err := payment.Validate(); err != nil {
		respondError(w, err)
		return
	}

	updated, err := s.store.UpdateRecurringPayment(r.Context(), payment)
	if err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(payment.UserID)
	writeJSON(w, http.StatusOK, toPaymentResponse(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := userIDFrom(r)
	if err := s.store.DeleteRecurringPayment(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ListRecurringPayments(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
