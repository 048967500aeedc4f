// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/calendar"
	"github.com/starford/ansuz/internal/capture"
	"github.com/starford/ansuz/internal/classifier"
	"github.com/starford/ansuz/internal/daily"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/routing"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout is the
	// transport, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("rules_path", cfg.Rules.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize the SQLite entity index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// Load the routing rules. A missing or broken rules file is not fatal;
	// the engine falls back to the global default until a valid file shows up.
	var rules []routing.Rule
	if cfg.Rules.Path != "" {
		rules, err = routing.LoadRules(cfg.Rules.Path, logger)
		if err != nil {
			logger.Warn("rules file not loaded, routing by defaults only",
				slog.String("path", cfg.Rules.Path),
				slog.String("error", err.Error()))
		}
	}
	snap := routing.NewSnapshot(rules)

	notes := daily.NewNotes(store, daily.Config{
		Dir:             cfg.Capture.DailyDir,
		Layout:          cfg.Capture.DailyLayout,
		ThoughtsHeading: cfg.Capture.ThoughtsHeading,
	})

	// Optional AI caller. The fast path never touches it; only the fallback
	// classifier and research enrichment do, and both re-check credentials.
	var caller classifier.Caller
	if cfg.AI.Model != "" {
		caller = classifier.NewOpenAICaller(classifier.OpenAIConfig{
			APIKey:  os.Getenv(classifier.CredentialEnv(cfg.AI.Model)),
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
		})
	}

	// Optional calendar lookup for meeting-context enrichment.
	var cal calendar.Lookup
	if cfg.Calendar.Provider == CalendarGoogle {
		token := os.Getenv(cfg.Calendar.TokenEnv)
		if token == "" {
			logger.Warn("calendar token env is empty, meeting enrichment disabled",
				slog.String("env", cfg.Calendar.TokenEnv))
		} else {
			cal = calendar.NewGoogle(calendar.GoogleConfig{
				AccessToken: token,
				Calendars:   cfg.Calendar.Calendars,
			})
		}
	}

	// SSE broker for capture lifecycle events.
	broker := sse.NewBroker()
	defer broker.Close()

	svc := capture.NewService(capture.Deps{
		Notes:    notes,
		Rules:    snap,
		Triggers: cfg.Triggers,
		Routing: routing.Options{
			CheckboxPrefix: cfg.Triggers.CheckboxPrefix,
			Action:         cfg.Action,
			Logger:         logger,
		},
		Entities: db,
		Caller:   caller,
		AI: capture.AIConfig{
			FallbackEnabled: cfg.AI.FallbackEnabled,
			ResearchEnabled: cfg.AI.ResearchEnabled,
			Model:           cfg.AI.Model,
		},
		Calendar: cal,
		Notifier: broker,
		Defaults: capture.Defaults{
			Destination:   cfg.Capture.DefaultDestination,
			Format:        cfg.Capture.DefaultFormat,
			AddDueDate:    cfg.Capture.DefaultAddDueDate,
			DueDateOffset: cfg.Capture.DueDateOffsetDays,
		},
		Format: capture.Formatting{
			TaskPrefix:        cfg.Capture.TaskPrefix,
			DueDateMarker:     cfg.Capture.DueDateMarker,
			TimeFormat:        cfg.Capture.TimeFormat,
			ThoughtsHeading:   cfg.Capture.ThoughtsHeading,
			ResearchHeading:   cfg.Capture.ResearchHeading,
			ReferencesHeading: cfg.Capture.ReferencesHeading,
		},
		Logger: logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start vault watcher to keep the entity index current.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, cfg.Vault.Path, logger, nil); err != nil {
			logger.Warn("vault watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Watch the rules file for hot reload.
	if cfg.Rules.Path != "" {
		g.Go(func() error {
			if err := routing.WatchRules(gCtx, cfg.Rules.Path, snap, logger); err != nil {
				logger.Warn("rules watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if app.mcpMode {
		// MCP stdio transport. The HTTP server is not started; the watcher
		// goroutines above still keep the index and rules fresh.
		g.Go(func() error {
			// Stops the watcher goroutines once the stdio transport closes.
			defer cancel()
			logger.Info("Starting MCP server on stdio")
			return mcpserver.New(svc, snap, notes).ServeStdio()
		})
		err := g.Wait()
		svc.Wait()
		return err
	}

	apiRouter := api.NewRouter(svc, snap, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	// Let detached enrichment finish before the process exits.
	svc.Wait()

	logger.Info("Server stopped successfully")
	return nil
}
