package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
	"github.com/aussiebroadwan/treasuremind/pkg/slogx"

	_ "github.com/aussiebroadwan/treasuremind/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookie       httpx.CookieConfig

	store               store.Store
	RegistrationService *service.RegistrationService
	LoginService        *service.LoginService
	ProfileService      *service.ProfileService
	SessionService      *service.SessionService

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cookie httpx.CookieConfig,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cookie:       cookie,
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
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Treasuremind Authentication Service API
//	@version		0.1.0
//	@description	Email and password accounts with a stateless session cookie.
//	@description
//	@description				Sessions are HS256-signed tokens carried in the HttpOnly "Authorization" cookie and slide forward on every profile fetch.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/treasuremind
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						Authorization
//	@description				Session token set by POST /api/auth/login.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{RegistrationService: r.RegistrationService}
	loginHandler := &LoginHandler{LoginService: r.LoginService, Cookie: r.cookie}
	profileHandler := &ProfileHandler{
		ProfileService: r.ProfileService,
		SessionService: r.SessionService,
		Cookie:         r.cookie,
	}
	logoutHandler := &LogoutHandler{SessionService: r.SessionService, Cookie: r.cookie}

	r.Mux.Handle("POST /api/auth/create", registerHandler)
	r.Mux.Handle("POST /api/auth/login", loginHandler)

	// Profile fetch needs a valid session; logout decides for itself
	r.Mux.Handle("GET /api/auth",
		httpx.Chain(profileHandler, RequireSession(r.SessionService, r.cookie)),
	)
	r.Mux.Handle("DELETE /api/auth",
		httpx.Chain(logoutHandler, OptionalSession(r.SessionService, r.cookie)),
	)

	// Anything else under the prefix, including other methods on /api/auth
	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		authsdk.ErrNotFound.WriteError(w)
	})
	r.Mux.Handle("/api/auth", notFound)
	r.Mux.Handle("/api/auth/", notFound)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))

	if r.MetricsHandler != nil {
		r.Mux.Handle("GET /metrics", r.MetricsHandler)
	}
}
