package http

import (
	"net/http"

	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/pkg/httpx"
	"github.com/simpledungeon/api/pkg/slogx"
)

const (
	MsgLoggedOut       = "Successfully logged out"
	MsgNoActiveSession = "No active session"
)

// LogoutHandler serves POST /auth/logout. Sits behind the auth gate, so a
// request that reaches it carries verified claims; the token is blacklisted
// until its natural expiry. Logging out twice with the same token yields a
// 401 from the gate, not a second revocation.
type LogoutHandler struct {
	SessionService *service.SessionService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	rawToken, tokenOK := httpx.TokenFromContext(ctx)
	if !ok || !tokenOK {
		httpx.WriteMessage(w, http.StatusBadRequest, MsgNoActiveSession)
		return
	}

	if err := h.SessionService.Logout(ctx, rawToken, claims); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, MsgLoggedOut)
}
