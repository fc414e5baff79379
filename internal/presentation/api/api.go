package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/configs"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	filesHandler "github.com/stardeck/logbook/internal/presentation/handler/files"
	foldersHandler "github.com/stardeck/logbook/internal/presentation/handler/folders"
	healthHandler "github.com/stardeck/logbook/internal/presentation/handler/health"
	logEntriesHandler "github.com/stardeck/logbook/internal/presentation/handler/logentries"
	notificationsHandler "github.com/stardeck/logbook/internal/presentation/handler/notifications"
	profileHandler "github.com/stardeck/logbook/internal/presentation/handler/profile"
)

type Application struct {
	config               *configs.Config
	verifier             *auth.Verifier
	logEntriesHandler    *logEntriesHandler.Handler
	foldersHandler       *foldersHandler.Handler
	filesHandler         *filesHandler.Handler
	profileHandler       *profileHandler.Handler
	notificationsHandler *notificationsHandler.Handler
	healthHandler        *healthHandler.Handler
	registry             *prometheus.Registry
	logger               logging.Logger
}

func NewApplication(
	config *configs.Config,
	verifier *auth.Verifier,
	logEntries *logEntriesHandler.Handler,
	folders *foldersHandler.Handler,
	files *filesHandler.Handler,
	profile *profileHandler.Handler,
	notifications *notificationsHandler.Handler,
	health *healthHandler.Handler,
	registry *prometheus.Registry,
	logger logging.Logger,
) *Application {
	return &Application{
		config:               config,
		verifier:             verifier,
		logEntriesHandler:    logEntries,
		foldersHandler:       folders,
		filesHandler:         files,
		profileHandler:       profile,
		notificationsHandler: notifications,
		healthHandler:        health,
		registry:             registry,
		logger:               logger,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.enableCors)
	r.Use(app.loggerMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.verifier.Middleware)

		r.Route("/logentries", func(r chi.Router) {
			r.Get("/", app.logEntriesHandler.ListLogEntriesHandler)
			r.Put("/{entryId}", app.logEntriesHandler.UpsertLogEntryHandler)
			r.Get("/{entryId}", app.logEntriesHandler.GetLogEntryHandler)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", app.foldersHandler.ListFoldersHandler)
			r.Put("/{folderId}", app.foldersHandler.UpsertFolderHandler)
			r.Get("/{folderId}", app.foldersHandler.GetFolderHandler)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/", app.filesHandler.UploadFileHandler)
			r.Get("/{fileId}", app.filesHandler.GetFileHandler)
			r.Get("/{fileId}/content", app.filesHandler.GetFileContentHandler)
			r.Delete("/{fileId}", app.filesHandler.DeleteFileHandler)
		})

		r.Get("/profile", app.profileHandler.GetProfileHandler)
	})

	// no request timeout here, the socket stays open for the session
	r.Group(func(r chi.Router) {
		r.Use(app.verifier.Middleware)
		r.Get("/ws/entity-changed-messages", app.notificationsHandler.SubscribeHandler)
	})

	r.Get("/health", app.healthHandler.GetHealth)
	r.Get("/healthz", app.healthHandler.GetHealth)
	r.Get("/ready", app.healthHandler.GetHealth)
	r.Get("/live", app.healthHandler.GetHealth)

	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return otelhttp.NewHandler(r, "logbook-http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
