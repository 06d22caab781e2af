package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/api"
	"github.com/TimurManjosov/gojungse/internal/config"
	"github.com/TimurManjosov/gojungse/internal/engine"
	"github.com/TimurManjosov/gojungse/internal/logging"
	"github.com/TimurManjosov/gojungse/internal/source"
	"github.com/TimurManjosov/gojungse/internal/store"
	"github.com/TimurManjosov/gojungse/internal/telemetry"
	"github.com/TimurManjosov/gojungse/internal/watch"
	"github.com/TimurManjosov/gojungse/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", "json", os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.Init()

	var st store.Store
	if cfg.RulesSource == config.SourcePostgres {
		st, err = store.NewStore(ctx, "postgres", cfg.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store")
		}
		defer st.Close()
	}

	eng := engine.New(nil, log)

	if len(cfg.WebhookURLs) > 0 {
		endpoints := make([]webhook.Endpoint, 0, len(cfg.WebhookURLs))
		for _, u := range cfg.WebhookURLs {
			endpoints = append(endpoints, webhook.Endpoint{
				URL:        u,
				Secret:     cfg.WebhookSecret,
				MaxRetries: cfg.WebhookMaxRetries,
				Timeout:    cfg.WebhookTimeout,
			})
		}
		hooks := webhook.NewDispatcher(endpoints, log)
		hooks.Start()
		defer hooks.Close()
		// subscribed before the initial load so it is announced too
		hooks.Follow(ctx, eng.Tables())
	}

	src, err := source.New(cfg, st, log)
	switch {
	case errors.Is(err, source.ErrNoSource):
		log.Info().Msg("no rule source configured, starting with an empty table")
	case err != nil:
		log.Fatal().Err(err).Msg("rule source")
	default:
		// a failed initial load leaves the empty table in force
		_, _ = eng.Reload(ctx, src)
	}

	if cfg.RulesWatch && src != nil {
		w, err := watch.New(cfg.RulesPath, watch.DefaultDebounce, func(ctx context.Context) {
			_, _ = eng.Reload(ctx, src)
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("watch")
		}
		go func() { _ = w.Run(ctx) }()
	}

	opts := api.Options{
		AdminAPIKey:    cfg.AdminAPIKey,
		AdminKeyHash:   cfg.AdminKeyHash,
		Store:          st,
		TableName:      cfg.RulesTableName,
		RateLimitPerIP: cfg.RateLimitPerIP,
		Logger:         log,
	}
	if src != nil {
		opts.Source = src
	}
	srvAPI := api.NewServer(eng, opts)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // event streams stay open
		IdleTimeout:  60 * time.Second,
	}
	metrics := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           telemetry.Handler(),
		ReadHeaderTimeout: 3 * time.Second,
	}

	go serve(log, "api", srv)
	go serve(log, "metrics", metrics)

	<-ctx.Done()
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metrics.Shutdown(ctxShut)
	log.Info().Msg("stopped")
}

func serve(log zerolog.Logger, name string, srv *http.Server) {
	log.Info().Str("server", name).Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Str("server", name).Msg("server")
	}
}
