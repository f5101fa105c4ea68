package http

import (
	"net/http"
	"strings"

	"dime/internal/core"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Kind        core.Kind `json:"kind"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        c.Kind,
		Color:       c.Color,
		Description: c.Description,
	}
}

func (req categoryRequest) toCategory(userID int64) core.Category {
	return core.Category{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Kind:        core.Kind(req.Kind),
		Color:       strings.TrimSpace(req.Color),
		Description: req.Description,
	}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := req.toCategory(userIDFrom(r))
	if err := cat.Validate(); err != nil {
		respondError(w, err)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), cat)
	if err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(cat.UserID)
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := s.store.GetCategory(r.Context(), userIDFrom(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := req.toCategory(userIDFrom(r))
	cat.ID = id
	if err := cat.Validate(); err != nil {
		respondError(w, err)
		return
	}

	updated, err := s.store.UpdateCategory(r.Context(), cat)
	if err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(cat.UserID)
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

// handleDeleteCategory removes a category. Transactions and payments that
// referenced it become uncategorized rather than disappearing.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := userIDFrom(r)
	if err := s.store.DeleteCategory(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}
