package http

import (
	"net/http"
	"strconv"
	"strings"

	"dime/internal/core"
	"dime/internal/storage"
)

type transactionRequest struct {
	Title      string    `json:"title"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Kind       string    `json:"kind"`
	Date       core.Date `json:"date"`
	CategoryID *int64    `json:"category_id"`
	Priority   string    `json:"priority"`
	Notes      string    `json:"notes"`
}

type transactionResponse struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title"`
	Amount     float64       `json:"amount"`
	Currency   string        `json:"currency"`
	Kind       core.Kind     `json:"kind"`
	Date       core.Date     `json:"date"`
	CategoryID *int64        `json:"category_id"`
	Priority   core.Priority `json:"priority"`
	Notes      string        `json:"notes,omitempty"`
	Recurring  bool          `json:"is_recurring"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		Title:      t.Title,
		Amount:     core.Round2(t.Amount.Float()),
		Currency:   t.Currency,
		Kind:       t.Kind,
		Date:       t.Date,
		CategoryID: t.CategoryID,
		Priority:   t.Priority,
		Notes:      t.Notes,
		Recurring:  t.Recurring,
	}
}

// toTransaction builds the domain entity from a request. Zero-valued
// currency and priority fall back to the user's preferred currency and
// medium priority.
func (s *Server) toTransaction(r *http.Request, req transactionRequest, userID int64) (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		if user, err := s.store.GetUserByID(r.Context(), userID); err == nil {
			currency = user.PreferredCurrency
		}
	}

	priority := core.Priority(req.Priority)
	if req.Priority == "" {
		priority = core.PriorityMedium
	}

	return core.Transaction{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Amount:     amount,
		Currency:   currency,
		Kind:       core.Kind(req.Kind),
		Date:       req.Date,
		Priority:   priority,
		Notes:      req.Notes,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.toTransaction(r, req, userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.transactions.Get(r.Context(), userIDFrom(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.toTransaction(r, req, userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	tx.ID = id

	updated, err := s.transactions.Update(r.Context(), tx)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.transactions.Delete(r.Context(), userIDFrom(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.transactions.List(r.Context(), userIDFrom(r), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// parseTransactionFilter reads list constraints from query parameters:
// kind, priority, category_id, from, to, search, limit, offset.
func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	var filter storage.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("kind"); v != "" {
		kind := core.Kind(v)
		if err := kind.Validate(); err != nil {
			return filter, err
		}
		filter.Kind = kind
	}
	if v := q.Get("priority"); v != "" {
		priority := core.Priority(v)
		if err := priority.Validate(); err != nil {
			return filter, err
		}
		filter.Priority = priority
	}
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errInvalidQuery("category_id")
		}
		filter.CategoryID = &id
	}
	if v := q.Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return filter, errInvalidQuery("from")
		}
		filter.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return filter, errInvalidQuery("to")
		}
		filter.To = d
	}
	if v := strings.TrimSpace(q.Get("search")); v != "" {
		filter.Search = v
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errInvalidQuery("limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errInvalidQuery("offset")
		}
		filter.Offset = n
	}
	return filter, nil
}
