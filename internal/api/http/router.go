// Package http wires the session endpoints onto a ServeMux with the shared
// middleware chain (request logging, rate limits, the auth gate).
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/simpledungeon/api/internal/api/service"
	"github.com/simpledungeon/api/internal/api/store"
	"github.com/simpledungeon/api/pkg/httpx"
	"github.com/simpledungeon/api/pkg/jwtx"
	"github.com/simpledungeon/api/pkg/slogx"
)

// MsgInvalidBody is returned for request bodies that fail to parse as JSON.
const MsgInvalidBody = "Invalid request body"

// KeyReadiness reports whether verification keys have been loaded, for the
// readiness probe.
type KeyReadiness interface {
	IsReady() bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	keys         KeyReadiness
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SessionService *service.SessionService
}

func NewRouter(
	verifier jwtx.Verifier,
	keys KeyReadiness,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	revoked := r.store.RevokedTokens()

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (credential attempts)
	loginHandler := &LoginHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - authenticated, moderate rate limit by user
	logoutHandler := &LogoutHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logoutHandler,
			httpx.AuthnMiddleware(r.verifier, revoked),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /auth/expunge - authenticated, moderate rate limit by user
	expungeHandler := &ExpungeHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /auth/expunge",
		httpx.Chain(expungeHandler,
			httpx.AuthnMiddleware(r.verifier, revoked),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /auth/me - authenticated, lenient rate limit by user
	meHandler := &MeHandler{SessionService: r.SessionService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.verifier, revoked),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// decodeJSON parses the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	return true
}
