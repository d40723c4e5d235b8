package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/config"
	"github.com/rpupo63/project-showcase/database"
	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg config.Config, database database.Database, opts ...ServerOption) (Server, error) {
	address := fmt.Sprintf("0.0.0.0:%d", cfg.Port)

	// Capture startup time
	startupTime := time.Now()

	opts = append([]ServerOption{withConfig(cfg), withStartupTime(startupTime)}, opts...)
	router, err := newRouter(database, opts...)
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return Server{server, startupTime}, nil
}

// ServerOption customizes the router built by NewServer.
type ServerOption func(*router)

type router struct {
	config      config.Config
	startupTime time.Time
	notifier    services.Notifier
	uploads     *services.UploadStore
}

func withConfig(c config.Config) ServerOption {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) ServerOption {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// WithNotifier sends new comments to n.
func WithNotifier(n services.Notifier) ServerOption {
	return func(r *router) {
		r.notifier = n
	}
}

func newRouter(database database.Database, opts ...ServerOption) (*chi.Mux, error) {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}
	uploads, err := services.NewUploadStore(router.config.UploadDir, router.config.UploadMaxBytes)
	if err != nil {
		return nil, err
	}
	router.uploads = uploads

	acceptedOrigins := router.config.AcceptedOrigins
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"*"}
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(RequestID)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(log.With().Str("component", "http").Logger()))
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	handlers := initializeHandlers(database, router)

	setupRoutes(chiRouter, handlers)
	chiRouter.Route("/api", func(r chi.Router) {
		setupRoutes(r, handlers)
	})
	setupLegacyRoutes(chiRouter, handlers)
	mountUploads(chiRouter, router.uploads.Dir())

	notFound := NewResponder(log.Logger, false)
	chiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		notFound.WriteError(w, errs.NewNotFound(fmt.Sprintf("route %s %s", r.Method, r.URL.Path)))
	})

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
