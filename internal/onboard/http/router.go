package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/platolabs/onboard/internal/onboard/service"
	"github.com/platolabs/onboard/internal/onboard/store"
	"github.com/platolabs/onboard/pkg/httpx"
	"github.com/platolabs/onboard/pkg/jwtx"
	"github.com/platolabs/onboard/pkg/slogx"

	_ "github.com/platolabs/onboard/api/onboard" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.Keypair
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AccountService      *service.AccountService
	VerificationService *service.VerificationService
	OrganizationService *service.OrganizationService
}

func NewRouter(
	keys *jwtx.Keypair,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
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
	r.registerOrganizations()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Onboard API
//	@version		0.1.0
//	@description	Tenant onboarding service: account signup with email verification,
//	@description	credential login, and organization creation with unique slug resolution.
//
//	@contact.name				Plato Labs
//	@contact.url				https://github.com/platolabs/onboard
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /signup - strict rate limit by IP (account creation)
	signupHandler := &SignupHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(signupHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP (credential attempts)
	loginHandler := &LoginHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /verify - strict rate limit by IP (prevent brute force of codes)
	verifyHandler := &VerifyHandler{VerificationService: r.VerificationService}
	r.Mux.Handle("POST /v1/auth/verify",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /resend - strict rate limit by IP (outbound mail on every hit)
	resendHandler := &ResendHandler{VerificationService: r.VerificationService}
	r.Mux.Handle("POST /v1/auth/resend",
		httpx.Chain(resendHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerOrganizations() {
	h := &OrganizationsHandler{OrganizationService: r.OrganizationService}

	// POST /v1/organizations - authenticated create, moderate limit by user
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// GET /v1/organizations/{slug} - public lookup, lenient limit by IP
	lookup := httpx.Chain(http.HandlerFunc(h.HandleGetBySlug),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	// GET /v1/me/organization - authenticated read, lenient limit by user
	securedMine := httpx.Chain(http.HandlerFunc(h.HandleMine),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /v1/organizations", securedCreate)
	r.Mux.Handle("GET /v1/organizations/{slug}", lookup)
	r.Mux.Handle("GET /v1/me/organization", securedMine)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
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

// decodeJSON parses a JSON request body into dst. On failure it writes
// the uniform invalid_request error and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}
