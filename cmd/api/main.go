package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"versecache/internal/bibleapi"
	"versecache/internal/bundle"
	"versecache/internal/config"
	"versecache/internal/http"
	"versecache/internal/markup"
	"versecache/internal/metrics"
	"versecache/internal/service"
	"versecache/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	cacheRepo := storage.NewCacheRepo(db)
	bookmarkRepo := storage.NewBookmarkRepo(db)

	// Remote tier: single-attempt client behind a circuit breaker
	client := bibleapi.NewClient(cfg.BibleAPIBaseURL,
		bibleapi.WithHTTPClient(&nethttp.Client{Timeout: cfg.FetchTimeout}),
	)
	fetcher := bibleapi.NewBreakerFetcher(client, bibleapi.BreakerConfig{
		Name:        "bible-api",
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	})
	slog.Info("Remote content API configured", "base_url", cfg.BibleAPIBaseURL, "timeout", cfg.FetchTimeout)

	// Offline tier: loaded once, on first use
	var source bundle.Source = bundle.FileSource{Path: cfg.BundlePath}
	if cfg.BundleURL != "" {
		source = bundle.HTTPSource{URL: cfg.BundleURL, Client: &nethttp.Client{Timeout: cfg.FetchTimeout}}
	}
	bundleStore := bundle.NewStore(source)

	collector := metrics.NewCollector("versecache")

	resolver := service.NewResolver(cacheRepo, fetcher, bundleStore, service.WithRecorder(collector))
	bookmarkService := service.NewBookmarkService(resolver, bookmarkRepo)

	router := http.NewRouter(&http.Deps{
		Resolver:           resolver,
		Bookmarks:          bookmarkService,
		Books:              bundleStore,
		DB:                 db,
		Bundle:             bundleStore,
		Breaker:            fetcher,
		Renderer:           markup.NewRenderer(),
		DefaultTranslation: cfg.DefaultTranslation,
		Metrics:            collector.Handler(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Warm the offline dataset in the background so health reports it early
	g.Go(func() error {
		books, err := bundleStore.Books(gctx)
		if err != nil {
			slog.Warn("Bundled dataset unavailable, offline fallback disabled", "error", err)
			return nil
		}
		slog.Info("Bundled dataset loaded", "books", len(books))
		return nil
	})

	g.Go(func() error {
		slog.Info("Starting API server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down API server", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("API server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("API server stopped")
}
