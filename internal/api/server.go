// Package api exposes the translator and its rule table over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/auth"
	"github.com/TimurManjosov/gojungse/internal/engine"
	"github.com/TimurManjosov/gojungse/internal/store"
	"github.com/TimurManjosov/gojungse/internal/telemetry"
)

const (
	requestTimeout = 5 * time.Second
	// maxTableBytes caps a pushed rule table.
	maxTableBytes = 4 << 20
	// maxTranslateBytes caps a translate request body.
	maxTranslateBytes = 1 << 20
)

// Options configures a Server. Source and Store are optional.
type Options struct {
	AdminAPIKey string
	// AdminKeyHash is a bcrypt hash of the admin key. When set it replaces
	// AdminAPIKey.
	AdminKeyHash string
	// Source is read by POST /v1/rules/reload.
	Source engine.Fetcher
	// Store, when set, persists tables pushed with PUT /v1/rules under
	// TableName.
	Store     store.Store
	TableName string
	// RateLimitPerIP bounds translate requests per minute; zero disables it.
	RateLimitPerIP int
	// SSEKeepAlive is the interval between comment lines on idle event
	// streams. Zero uses 15s.
	SSEKeepAlive time.Duration
	Logger       zerolog.Logger
}

type Server struct {
	engine *engine.Engine
	opts   Options
	admin  auth.Verifier
	log    zerolog.Logger
}

func NewServer(eng *engine.Engine, opts Options) *Server {
	if opts.SSEKeepAlive <= 0 {
		opts.SSEKeepAlive = 15 * time.Second
	}
	return &Server{
		engine: eng,
		opts:   opts,
		admin:  auth.NewVerifier(opts.AdminAPIKey, opts.AdminKeyHash),
		log:    opts.Logger.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware, s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// event streams are long-lived and stay outside the timeout
	r.Get("/v1/rules/events", s.handleRuleEvents)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Group(func(r chi.Router) {
			if s.opts.RateLimitPerIP > 0 {
				r.Use(httprate.Limit(
					s.opts.RateLimitPerIP,
					time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						writeError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")
					}),
				))
			}
			r.Get("/v1/translate", s.handleTranslateQuery)
			r.Post("/v1/translate", s.handleTranslate)
		})

		r.Get("/v1/rules", s.handleGetRules)
		r.Put("/v1/rules", s.authAdmin(s.handlePutRules))
		r.Post("/v1/rules/reload", s.authAdmin(s.handleReload))
	})

	return r
}

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := auth.ExtractBearerToken(r.Header.Get("Authorization"))
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		if !s.admin.Verify(got) {
			ForbiddenError(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
