package http

import (
	"errors"
	"net/http"

	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/pkg/httpx"
	"github.com/simpledungeon/api/pkg/slogx"
)

const (
	MsgUserRemoved  = "User removed"
	MsgUserNotFound = "User not found"
)

// ExpungeHandler serves POST /auth/expunge. Deletes the caller's provider
// account and revokes the token that authorized it, so the session dies with
// the account.
type ExpungeHandler struct {
	SessionService *service.SessionService
}

func (h *ExpungeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	rawToken, tokenOK := httpx.TokenFromContext(ctx)
	if !ok || !tokenOK {
		httpx.WriteMessage(w, http.StatusBadRequest, MsgNoActiveSession)
		return
	}

	if err := h.SessionService.Expunge(ctx, rawToken, claims); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteMessage(w, http.StatusNotFound, MsgUserNotFound)
		case errors.Is(err, service.ErrProviderUnavailable):
			httpx.WriteMessage(w, http.StatusBadGateway, MsgProviderDown)
		default:
			log.Error("expunge failed", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Account removal failed")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, MsgUserRemoved)
}
