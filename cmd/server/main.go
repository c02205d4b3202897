package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Simplici0/cotizador3d/internal/apiclient"
	"github.com/Simplici0/cotizador3d/internal/config"
	"github.com/Simplici0/cotizador3d/internal/db"
	"github.com/Simplici0/cotizador3d/internal/migrations"
	"github.com/Simplici0/cotizador3d/internal/observability/metrics"
	"github.com/Simplici0/cotizador3d/internal/observability/tracing"
	"github.com/Simplici0/cotizador3d/internal/seed"
	"github.com/Simplici0/cotizador3d/internal/session"
	"github.com/Simplici0/cotizador3d/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log.Logger, cfg.OTLPEndpoint, "cotizador3d", cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed console settings")
	}
	log.Info().Int("inserts", stats.Inserts).Int("updates", stats.Updates).Msg("seed complete")

	sessions, closeStore, err := newSessionStore(ctx, cfg, database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init session store")
	}
	defer closeStore()

	srv := &server{
		api: apiclient.New(cfg.APIBaseURL,
			apiclient.WithTimeout(cfg.APITimeout),
			apiclient.WithLogger(log.With().Str("component", "apiclient").Logger()),
		),
		sessions:     session.NewManager(sessions, cfg.SessionSecret, cfg.SessionTTL, !cfg.IsDev()),
		settings:     store.NewSettings(database),
		exports:      store.NewExports(database),
		templatesDir: cfg.TemplatesDir,
		now:          time.Now,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(srv.routes(cfg.StaticDir), "cotizador3d"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("backend", cfg.APIBaseURL).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// newSessionStore picks the session backend. The SQLite store shares the
// console database; expired rows are purged hourly.
func newSessionStore(ctx context.Context, cfg config.Config, database *sql.DB) (session.Store, func(), error) {
	if cfg.SessionStore == config.StoreRedis {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("sessions stored in redis")
		return session.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	}

	st := session.NewSQLiteStore(database)
	go purgeSessions(ctx, st)
	return st, func() {}, nil
}

func purgeSessions(ctx context.Context, st *session.SQLiteStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("purge expired sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged expired sessions")
			}
		}
	}
}

func (s *server) routes(staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLoginSubmit)
		r.Get("/select-tenant", s.handleSelectTenant)
		r.Post("/tenants", s.handleTenantCreate)
		r.Post("/logout", s.handleLogout)

		r.Get("/admin/login", s.handleAdminLoginForm)
		r.Post("/admin/login", s.handleAdminLoginSubmit)
		r.Post("/admin/logout", s.handleAdminLogout)

		r.Route("/admin/tenants", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.handleAdminTenants)
			r.Get("/{id}/key", s.handleAdminTenantKey)
			r.Post("/{id}/mark", s.handleAdminTenantAction(actionMark))
			r.Post("/{id}/unmark", s.handleAdminTenantAction(actionUnmark))
			r.Post("/{id}/delete", s.handleAdminTenantAction(actionDelete))
			r.Post("/{id}/regenerate-key", s.handleAdminTenantAction(actionRegenerateKey))
			r.Post("/{id}/database", s.handleAdminTenantAction(actionCreateDatabase))
			r.Post("/{id}/database/delete", s.handleAdminTenantAction(actionDeleteDatabase))
		})

		// Quote defaults are shared by every tenant, so only admins edit them.
		r.Route("/admin/console-settings", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.handleConsoleSettings)
			r.Post("/", s.handleConsoleSettingsSubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireTenant)

			r.Get("/", s.handleHome)
			r.Get("/currency", s.handleCurrency)
			r.Post("/currency/refresh", s.handleCurrencyRefresh)

			for _, res := range s.catalog() {
				s.mountCatalog(r, res)
			}

			r.Get("/quote", s.handleQuoteForm)
			r.Post("/quote", s.handleQuoteSubmit)

			r.Get("/prints", s.handlePrintsList)
			r.Get("/prints/summary", s.handlePrintsSummary)
			r.Get("/prints/{id}", s.handlePrintDetail)
			r.Get("/prints/{id}/edit", s.handlePrintEdit)
			r.Post("/prints/{id}", s.handlePrintUpdate)
			r.Post("/prints/{id}/delete", s.handlePrintDelete)

			r.Get("/exports", s.handleExportsList)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context())
		pattern := r.URL.Path
		if route != nil && route.RoutePattern() != "" {
			pattern = route.RoutePattern()
		}
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", pattern).
			Int("status", ww.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	})
}
