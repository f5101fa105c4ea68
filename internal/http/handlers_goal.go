package http

import (
	"net/http"
	"strings"

	"dime/internal/core"
)

type goalRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	TargetAmount  string    `json:"target_amount"`
	CurrentAmount string    `json:"current_amount"`
	TargetDate    core.Date `json:"target_date"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Notes         string    `json:"notes"`
}

type goalResponse struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	TargetAmount       float64         `json:"target_amount"`
	CurrentAmount      float64         `json:"current_amount"`
	TargetDate         core.Date       `json:"target_date"`
	Status             core.GoalStatus `json:"status"`
	Priority           core.Priority   `json:"priority"`
	ProgressPercentage float64         `json:"progress_percentage"`
	RemainingAmount    float64         `json:"remaining_amount"`
	Notes              string          `json:"notes,omitempty"`
}

func toGoalResponse(g core.FinancialGoal) goalResponse {
	return goalResponse{
		ID:                 g.ID,
		Title:              g.Title,
		Description:        g.Description,
		TargetAmount:       core.Round2(g.TargetAmount.Float()),
		CurrentAmount:      core.Round2(g.CurrentAmount.Float()),
		TargetDate:         g.TargetDate,
		Status:             g.Status,
		Priority:           g.Priority,
		ProgressPercentage: core.Round2(g.Progress()),
		RemainingAmount:    core.Round2(g.Remaining().Float()),
		Notes:              g.Notes,
	}
}

// toGoal builds the domain entity. Current amount defaults to zero, status
// to active, priority to medium.
func (req goalRequest) toGoal(userID int64) (core.FinancialGoal, error) {
	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		return core.FinancialGoal{}, err
	}

	current := core.Money{}
	if req.CurrentAmount != "" {
		current, err = parseAmount(req.CurrentAmount)
		if err != nil {
			return core.FinancialGoal{}, err
		}
	}

	status := core.GoalStatus(req.Status)
	if req.Status == "" {
		status = core.GoalActive
	}
	priority := core.Priority(req.Priority)
	if req.Priority == "" {
		priority = core.PriorityMedium
	}

	return core.FinancialGoal{
		UserID:        userID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		TargetAmount:  target,
		CurrentAmount: current,
		TargetDate:    req.TargetDate,
		Status:        status,
		Priority:      priority,
		Notes:         req.Notes,
	}, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := req.toGoal(userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if err := goal.Validate(); err != nil {
		respondError(w, err)
		return
	}

	created, err := s.store.CreateGoal(r.Context(), goal)
	if err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(goal.UserID)
	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := s.store.GetGoal(r.Context(), userIDFrom(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := req.toGoal(userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	goal.ID = id
	if err := goal.Validate(); err != nil {
		respondError(w, err)
		return
	}

	updated, err := s.store.UpdateGoal(r.Context(), goal)
	if err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(goal.UserID)
	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := userIDFrom(r)
	if err := s.store.DeleteGoal(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.store.ListGoals(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}
