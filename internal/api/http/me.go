package http

import (
	"errors"
	"net/http"

	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/pkg/httpx"
	"github.com/simpledungeon/api/pkg/slogx"
)

// MeHandler serves GET /auth/me, returning the provider's view of the
// account behind the presented token.
type MeHandler struct {
	SessionService *service.SessionService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, MsgNoActiveSession)
		return
	}

	account, err := h.SessionService.Describe(ctx, claims.Identity())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteMessage(w, http.StatusNotFound, MsgUserNotFound)
		case errors.Is(err, service.ErrProviderUnavailable):
			httpx.WriteMessage(w, http.StatusBadGateway, MsgProviderDown)
		default:
			log.Error("account lookup failed", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Account lookup failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, account)
}
