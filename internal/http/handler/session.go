package handler

import (
	"net/http"
	"net/url"
	"time"

	"echomemo/internal/api"
	"echomemo/internal/auth"
)

// UsernameCookie mirrors the username for display; it is readable by scripts.
const UsernameCookie = "echo_mome_username"

// SessionHandler moves a token into cookies for browser clients.
type SessionHandler struct {
	JWT    *auth.JWT
	Secure bool
}

func (h *SessionHandler) SetCookie(w http.ResponseWriter, r *http.Request) {
	var req api.SetCookieRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.JWT.Verify(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	maxAge := int(auth.TokenTTL / time.Second)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    req.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UsernameCookie,
		Value:    url.PathEscape(id.Username),
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "cookie set"})
}

func (h *SessionHandler) ClearCookie(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{auth.TokenCookie, UsernameCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == auth.TokenCookie,
			Secure:   h.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	writeJSON(w, http.StatusOK, api.StatusResponse{Success: true, Message: "cookie cleared"})
}
