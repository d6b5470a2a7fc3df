package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/metrics"
	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/httpx"
	"github.com/saazhq/saaz/pkg/jwtx"
	"github.com/saazhq/saaz/pkg/slogx"

	_ "github.com/saazhq/saaz/api/saaz" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits selects the rate limit profile for each class of endpoint.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultLimits uses the profiles from pkg/httpx, including any
// environment overrides.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Limits      Limits
	CORSOrigins []string

	IdentityService   *service.IdentityService
	FederationService *service.FederationService
	ResetService      *service.ResetService
	ProfileService    *service.ProfileService
	EventService      *service.EventService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultLimits(),
	}
}

// ApplyRoutes registers every endpoint and builds the global middleware
// chain. Set services, Limits and CORSOrigins first.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.HTTPMiddleware,
		httpx.CORS(r.CORSOrigins),
	}

	r.registerAuth()
	r.registerUsers()
	r.registerEvents()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SAAZ Identity API
//	@version		0.1.0
//	@description	Accounts, sessions and events for the SAAZ artist and venue marketplace.
//	@description
//	@description				Session credentials are HS256 JWTs valid for seven days.
//
//	@host						localhost:4000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Identity:   r.IdentityService,
		Federation: r.FederationService,
		Reset:      r.ResetService,
	}

	// Credential-bearing endpoints share one strict bucket per IP.
	strict := httpx.RateLimitByIP(r.Limits.Strict)

	r.Mux.Handle("POST /api/auth/check-username",
		httpx.Chain(http.HandlerFunc(h.CheckUsername),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("POST /api/auth/register", httpx.Chain(http.HandlerFunc(h.Register), strict))
	r.Mux.Handle("POST /api/auth/login", httpx.Chain(http.HandlerFunc(h.Login), strict))
	r.Mux.Handle("POST /api/auth/google", httpx.Chain(http.HandlerFunc(h.Google), strict))
	r.Mux.Handle("POST /api/auth/forgot-password", httpx.Chain(http.HandlerFunc(h.ForgotPassword), strict))
	r.Mux.Handle("POST /api/auth/reset-password", httpx.Chain(http.HandlerFunc(h.ResetPassword), strict))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Profiles: r.ProfileService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(r.Limits.Moderate),
		)
	}

	r.Mux.Handle("GET /api/users/profile", secured(h.GetProfile))
	r.Mux.Handle("PUT /api/users/profile", secured(h.UpdateProfile))
	r.Mux.Handle("DELETE /api/users/profile", secured(h.DeleteProfile))

	r.Mux.Handle("GET /api/users",
		httpx.Chain(http.HandlerFunc(h.List),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerEvents() {
	h := &EventsHandler{Events: r.EventService}

	public := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIP(r.Limits.Public))
	}
	secured := func(fn http.HandlerFunc, extra ...httpx.Middleware) http.Handler {
		mws := append([]httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}, extra...)
		mws = append(mws, httpx.RateLimitByUser(r.Limits.Moderate))
		return httpx.Chain(fn, mws...)
	}

	r.Mux.Handle("GET /api/events", public(h.List))
	r.Mux.Handle("GET /api/events/{id}", public(h.Get))
	r.Mux.Handle("POST /api/events", secured(h.Create,
		httpx.RequireAnyRole(domain.RoleArtist.String(), domain.RoleVenue.String()),
	))
	r.Mux.Handle("PUT /api/events/{id}", secured(h.Update))
	r.Mux.Handle("DELETE /api/events/{id}", secured(h.Delete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())
}
