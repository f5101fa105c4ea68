package http

import (
	"context"
	"net/http"
	"strings"

	"dime/internal/auth"
	"dime/internal/core"
	"dime/internal/log"
)

// requireAuth validates the Bearer token and stores the user ID in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			errorJSON(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			errorJSON(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := s.jwt.Validate(token)
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Password          string `json:"password"`
	PreferredCurrency string `json:"preferred_currency"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredCurrency string `json:"preferred_currency"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		PreferredCurrency: u.PreferredCurrency,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := core.ValidatePassword(req.Password); err != nil {
		respondError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to hash password", log.FieldError, err.Error())
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := core.User{
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Name:              strings.TrimSpace(req.Name),
		PasswordHash:      hash,
		PreferredCurrency: req.PreferredCurrency,
	}
	if user.PreferredCurrency == "" {
		user.PreferredCurrency = "USD"
	}
	if err := user.Validate(); err != nil {
		respondError(w, err)
		return
	}

	created, err := s.store.CreateUser(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := s.jwt.Generate(created.ID, created.Email)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to generate token", log.FieldError, err.Error())
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.InfoContext(r.Context(), "user registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, created.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(created)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same response for unknown email and wrong password.
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if auth.VerifyPassword(user.PasswordHash, req.Password) != nil {
		s.logger.WarnContext(r.Context(), "failed login attempt",
			log.FieldOperation, log.OpLogin,
			log.FieldUserID, user.ID)
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to generate token", log.FieldError, err.Error())
		errorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}
