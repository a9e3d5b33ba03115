package handler

import (
	"context"
	"errors"
	"net/http"

	"echomemo/internal/api"
	"echomemo/internal/auth"

	"github.com/rs/zerolog"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*auth.User, error)
	Authenticate(ctx context.Context, username, password string) (*auth.User, error)
	ResetPassword(ctx context.Context, username, email, newPassword string) error
}

type AuthHandler struct {
	Users UserService
	JWT   *auth.JWT
	Log   zerolog.Logger
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.Users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusConflict, api.StatusResponse{Success: false, Message: err.Error()})
			return
		}
		h.Log.Error().Err(err).Msg("register")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	h.Log.Info().Uint64("user_id", u.ID).Msg("user registered")
	writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "registered"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.Log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	token, err := h.JWT.Sign(u.ID, u.Username)
	if err != nil {
		h.Log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Users.ResetPassword(r.Context(), req.Username, req.Email, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "username and email do not match")
			return
		}
		h.Log.Error().Err(err).Msg("reset password")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "password updated"})
}
