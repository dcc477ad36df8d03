// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Haasivu is a wedding-site builder: couples assemble a block-based
// microsite, manage their guest list and RSVPs, and publish the result
// behind an optional access code.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/haasivu/haasivu/internal/aitext"
	"github.com/haasivu/haasivu/internal/analytics"
	"github.com/haasivu/haasivu/internal/cache"
	"github.com/haasivu/haasivu/internal/config"
	"github.com/haasivu/haasivu/internal/guest"
	"github.com/haasivu/haasivu/internal/handler/api"
	"github.com/haasivu/haasivu/internal/handler/public"
	"github.com/haasivu/haasivu/internal/imaging"
	"github.com/haasivu/haasivu/internal/logging"
	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/scheduler"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/session"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Haasivu - wedding site builder\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_DB_PATH         SQLite database path (default: ./data/haasivu.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_UPLOADS_DIR     Upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_REDIS_URL       Redis URL for the published-site cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_GEOIP_DB_PATH   GeoLite2-Country.mmdb path for visit stats (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  HAASIVU_OPENAI_API_KEY  API key for text suggestions (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("haasivu %s (commit: %s, built: %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	siteCache, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := siteCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("site cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("site cache initialized", "backend", "memory")
	}

	geo := analytics.NewGeoLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP database unavailable, visit stats will omit country", "error", err)
		} else {
			slog.Info("GeoIP lookup initialized", "path", cfg.GeoIPDBPath)
		}
	}

	queries := store.New(db)
	siteService := site.NewService(db, siteCache)
	guestService := guest.NewService(db)
	eventService := service.NewEventService(db)
	tracker := analytics.NewTracker(queries, geo)
	processor := imaging.NewProcessor(cfg.UploadsDir)
	suggester := aitext.NewSuggester(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if suggester.Enabled() {
		slog.Info("text suggestions enabled", "model", cfg.OpenAIModel)
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	sched := scheduler.New(db, logger, siteCache, geo, cfg.RetentionDays)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Config{
		DB:        db,
		Sites:     siteService,
		Guests:    guestService,
		Events:    eventService,
		Sessions:  sessionManager,
		Guard:     loginProtection,
		Processor: processor,
		Suggester: suggester,
		Tracker:   tracker,
	})
	publicHandler := public.NewHandler(public.Config{
		Sites:    siteService,
		Guests:   guestService,
		Events:   eventService,
		Sessions: sessionManager,
		Tracker:  tracker,
	})

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Compress(1024))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)

	// Guests reach unlock and RSVP straight from invitation links, with
	// no prior same-origin page load to satisfy the fetch-metadata check.
	r.Use(middleware.SkipCSRF("/s/", "/i/"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))

	globalLimiter := middleware.NewGlobalRateLimiter(20, 40)
	r.Group(func(r chi.Router) {
		r.Use(globalLimiter.Middleware())
		r.Mount("/api/v1", apiHandler.Routes())
		r.Mount("/", publicHandler.Routes())
	})

	// Uploaded images (originals and renditions)
	uploadsDir, err := filepath.Abs(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("resolving uploads directory: %w", err)
	}
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		rel := strings.TrimPrefix(req.URL.Path, "/uploads/")
		abs, err := filepath.Abs(filepath.Join(uploadsDir, filepath.FromSlash(rel)))
		if err != nil || !strings.HasPrefix(abs, uploadsDir+string(os.PathSeparator)) {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, abs)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
