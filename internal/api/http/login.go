package http

import (
	"errors"
	"net/http"

	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/pkg/httpx"
	"github.com/simpledungeon/api/pkg/slogx"
)

const (
	// MsgInvalidCredentials is the single body for every credential failure.
	// Wrong password and unknown email answer identically.
	MsgInvalidCredentials = "Invalid email or password"

	// MsgNewPasswordRequired tells the client to retry the login carrying a
	// replacement password.
	MsgNewPasswordRequired = "New password required."
)

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	SessionService *service.SessionService
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword,omitempty"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, MsgMissingFields)
		return
	}

	tokens, err := h.SessionService.Login(ctx, req.Email, req.Password, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNewPasswordRequired):
			httpx.WriteMessage(w, http.StatusBadRequest, MsgNewPasswordRequired)
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteMessage(w, http.StatusUnauthorized, MsgInvalidCredentials)
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteMessage(w, http.StatusBadRequest, MsgWeakPassword)
		case errors.Is(err, service.ErrProviderUnavailable):
			httpx.WriteMessage(w, http.StatusServiceUnavailable, MsgProviderDown)
		default:
			log.Error("login failed", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokens)
}
