package http

import (
	"log/slog"
	"net/http"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/http/handler"
	mw "userauth/internal/http/middleware"
	"userauth/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Users   handler.UserStore
	Auth    handler.Authenticator
	JWT     *auth.JWT
	Metrics *metrics.Collector
	Limiter *mw.RateLimiter
	Log     *slog.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// forwarding headers are client-controlled unless a trusted proxy sets them
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	if d.Log != nil {
		r.Use(mw.RequestLogger(d.Log))
	}
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(mw.Metrics(d.Metrics))
	}

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	uh := &handler.UserHandler{Users: d.Users, Auth: d.Auth, Log: d.Log}
	if d.Metrics != nil {
		uh.Metrics = d.Metrics
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/created", uh.Create)

		if d.Limiter != nil {
			r.With(d.Limiter.Middleware(handler.TooManyRequests)).Post("/", uh.Login)
		} else {
			r.Post("/", uh.Login)
		}

		r.With(auth.RequireAuth(d.JWT, handler.Unauthorized)).Get("/me", uh.Me)
	})

	return r
}
