package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mayur-driod/FloodWatch/internal/auth/metrics"
	"github.com/mayur-driod/FloodWatch/internal/auth/oauth"
	"github.com/mayur-driod/FloodWatch/internal/auth/service"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	providers oauth.Registry
	metrics   *metrics.Collector
	gatherer  prometheus.Gatherer

	CredentialService *service.CredentialService
	IdentityService   *service.IdentityService
	ReconcileService  *service.ReconcileService
	SessionService    *service.SessionService
	AuthzService      *service.AuthzService
}

func NewRouter(
	issuer, buildVersion string,
	st store.Store,
	providers oauth.Registry,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		providers:    providers,
		metrics:      collector,
		gatherer:     gatherer,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOAuth()
	r.registerSession()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	signupHandler := &SignupHandler{
		ReconcileService: r.ReconcileService,
		SessionService:   r.SessionService,
		Metrics:          r.metrics,
	}
	// POST /auth/signup - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(signupHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	loginHandler := &LoginHandler{
		CredentialService: r.CredentialService,
		SessionService:    r.SessionService,
		Metrics:           r.metrics,
	}
	// POST /auth/login - strict rate limit by IP (credential guessing surface)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{
		Providers:        r.providers,
		IdentityService:  r.IdentityService,
		ReconcileService: r.ReconcileService,
		SessionService:   r.SessionService,
		Store:            r.store,
		Metrics:          r.metrics,
	}

	// GET /auth/{provider}/login - just a redirect, moderate limit
	r.Mux.Handle("GET /v1/auth/{provider}/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /auth/{provider}/callback - completes authentication, strict limit
	r.Mux.Handle("GET /v1/auth/{provider}/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		SessionService: r.SessionService,
		Metrics:        r.metrics,
	}

	authn := r.authn()

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authn,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/session/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	profileHandler := &ProfileHandler{
		SessionService: r.SessionService,
		Store:          r.store,
	}
	r.Mux.Handle("PATCH /v1/session/profile",
		httpx.Chain(profileHandler,
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserInfoHandler{Store: r.store}

	secured := httpx.Chain(h,
		r.authn(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /v1/userinfo", secured)

	// POST /users/{id}/roles - admin-only role grant
	grant := &RoleGrantHandler{Store: r.store}
	r.Mux.Handle("POST /v1/users/{id}/roles",
		httpx.Chain(grant,
			r.authn(),
			httpx.RequireAnyRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

// authn builds the bearer-token middleware, feeding validation outcomes into
// the metrics collector.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.SessionService.Tokens, r.metrics.RecordTokenValidated)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler(r.gatherer))
}
