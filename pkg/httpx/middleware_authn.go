package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/simpledungeon/api/pkg/cryptox"
	"github.com/simpledungeon/api/pkg/jwtx"
	"github.com/simpledungeon/api/pkg/slogx"
)

// Client-visible bodies for gate rejections. Revoked and missing tokens get
// the same "Unauthorized" so callers can't probe the revocation list;
// verification failures get "Invalid token" without saying which check failed.
const (
	MsgUnauthorized = "Unauthorized"
	MsgInvalidToken = "Invalid token"
)

// TokenRevocations is the slice of the revocation store the gate needs.
type TokenRevocations interface {
	IsRevoked(ctx context.Context, fingerprint string) (bool, error)
}

// AuthnMiddleware is the admission gate for protected routes.
//
// Per request, in order: no bearer token → 401; token revoked → 401 (the
// store lookup runs before cryptographic verification because it is cheaper
// and authoritative); verification fails → 401; otherwise claims and the raw
// token go into the request context and the request proceeds. Rejections are
// terminal; there are no retries here.
func AuthnMiddleware(v jwtx.Verifier, revoked TokenRevocations) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				WriteMessage(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
			if raw == "" {
				WriteMessage(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			isRevoked, err := revoked.IsRevoked(ctx, cryptox.FingerprintToken(raw))
			if err != nil {
				// Fail closed: if the store can't answer, the token is not trusted.
				log.Error("revocation lookup failed", "err", err)
				WriteMessage(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}
			if isRevoked {
				WriteMessage(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				WriteMessage(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims, rawToken string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyToken, rawToken)
	return ctx
}
