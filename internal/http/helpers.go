package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dime/internal/core"
	"dime/internal/storage"
)

type contextKey string

const userIDKey contextKey = "user_id"

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into dst, bounding body size so a rogue
// client cannot exhaust memory.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// userIDFrom returns the authenticated user ID placed by requireAuth.
// Zero means the request never passed authentication.
func userIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

var validationErrs = []error{
	core.ErrInvalidKind,
	core.ErrInvalidPriority,
	core.ErrInvalidFrequency,
	core.ErrInvalidStatus,
	core.ErrInvalidAmount,
	core.ErrInvalidCurrency,
	core.ErrEmptyTitle,
	core.ErrEmptyName,
	core.ErrInvalidColor,
	core.ErrInvalidDateRange,
	core.ErrInvalidEmail,
	core.ErrWeakPassword,
}

func isValidationError(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// respondError maps domain and storage errors onto HTTP statuses. Unexpected
// errors become opaque 500s so internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrEmailTaken):
		errorJSON(w, http.StatusConflict, "email already registered")
	case errors.Is(err, storage.ErrDuplicateCategory):
		errorJSON(w, http.StatusConflict, "category name already in use")
	case isValidationError(err):
		errorJSON(w, http.StatusBadRequest, err.Error())
	default:
		errorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}

func errInvalidQuery(param string) error {
	return errors.New("invalid query parameter: " + param)
}

// parseAmount converts a decimal amount string into Money.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
