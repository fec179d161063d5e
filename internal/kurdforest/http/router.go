package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/service"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/pkg/httpx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"

	_ "github.com/aussiebroadwan/kurdforest/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const serverErrorText = "Something went wrong on our end!"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	views        *Views
	cookie       SessionCookie

	// MetricsHandler serves /metrics. Defaults to the global Prometheus registry.
	MetricsHandler http.Handler

	RegistrationService *service.RegistrationService
	SessionService      *service.SessionService
	WatchlistService    *service.WatchlistService
}

func NewRouter(
	buildVersion, siteName string,
	st store.Store,
	sessions *service.SessionService,
	cookie SessionCookie,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		logger:         logger,
		store:          st,
		views:          NewViews(siteName),
		cookie:         cookie,
		MetricsHandler: promhttp.Handler(),
		SessionService: sessions,
	}

	// Outermost first: request logger, panic recovery, then the session
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		recoverer,
		LoadSession(sessions, cookie),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerAuth()
	r.registerWatchlist()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			KurdForest API
//	@version		0.1.0
//	@description	Movie and TV watchlists backed by a TMDB metadata cache.
//	@description
//	@description	Accounts are created through an emailed six character verification code.
//	@description	The JSON API authenticates with the session cookie set by /verify and /login.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/kurdforest
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPages() {
	r.Mux.Handle("GET /{$}",
		httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.views.Render(w, req, http.StatusOK, "home", viewData{Title: "Home"})
		}),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Anything unmatched
	r.Mux.HandleFunc("/", r.notFound)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Registration: r.RegistrationService,
		Sessions:     r.SessionService,
		Views:        r.views,
		Cookie:       r.cookie,
	}

	// Forms - lenient, logged-in users are sent home
	r.Mux.Handle("GET /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegisterForm),
			RedirectIfAuthenticated,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /login",
		httpx.Chain(http.HandlerFunc(h.HandleLoginForm),
			RedirectIfAuthenticated,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyForm),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /register - strict by IP, each call sends an email
	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			RedirectIfAuthenticated,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /verify - strict by IP + token to bound code guessing
	r.Mux.Handle("POST /verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "token"),
		),
	)

	// POST /login - strict by IP + email to bound password guessing
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			RedirectIfAuthenticated,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("GET /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerWatchlist() {
	h := &WatchlistHandler{WatchlistService: r.WatchlistService}

	// Reads - lenient by user
	r.Mux.Handle("GET /api/watchlist",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/watchlist/check/{externalId}",
		httpx.Chain(http.HandlerFunc(h.HandleCheck),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)

	// Mutations and provider pass-through - moderate by user
	r.Mux.Handle("POST /api/watchlist/add",
		httpx.Chain(http.HandlerFunc(h.HandleAdd),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/watchlist/remove",
		httpx.Chain(http.HandlerFunc(h.HandleRemove),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/episodes/{id}/{season}",
		httpx.Chain(http.HandlerFunc(h.HandleEpisodes),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
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
	r.Mux.Handle("GET /metrics", r.MetricsHandler)
}

func (r *Router) notFound(w http.ResponseWriter, req *http.Request) {
	if strings.HasPrefix(req.URL.Path, "/api/") {
		httpx.WriteError(w, http.StatusNotFound, "Not found.")
		return
	}
	r.views.Render(w, req, http.StatusNotFound, "404", viewData{Title: "Not found"})
}

// recoverer turns a handler panic into a plain 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slogx.FromContext(r.Context()).Error("panic serving request",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, serverErrorText, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
