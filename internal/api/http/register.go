package http

import (
	"errors"
	"net/http"

	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/pkg/httpx"
	"github.com/simpledungeon/api/pkg/slogx"
)

const (
	MsgUserCreated       = "User created successfully"
	MsgAlreadyRegistered = "An account with this email already exists"
	MsgWeakPassword      = "Password does not meet requirements"
	MsgInvalidEmail      = "Invalid email address"
	MsgMissingFields     = "Email and password are required"
	MsgProviderDown      = "Authentication service unavailable"
)

// RegisterHandler serves POST /auth/register. The identity provider owns the
// account; nothing is persisted locally on sign-up.
type RegisterHandler struct {
	SessionService *service.SessionService
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, MsgMissingFields)
		return
	}

	if err := h.SessionService.Register(ctx, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyRegistered):
			httpx.WriteMessage(w, http.StatusBadRequest, MsgAlreadyRegistered)
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteMessage(w, http.StatusBadRequest, MsgWeakPassword)
		case errors.Is(err, service.ErrInvalidEmail):
			httpx.WriteMessage(w, http.StatusBadRequest, MsgInvalidEmail)
		case errors.Is(err, service.ErrProviderUnavailable):
			httpx.WriteMessage(w, http.StatusServiceUnavailable, MsgProviderDown)
		default:
			log.Error("register failed", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, MsgUserCreated)
}
