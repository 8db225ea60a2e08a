package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg config.Config, db database.Database, auth authService, notifier notifier) Server {
	address := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(
		databaseDependencies(db, auth, notifier),
		withServerConfig(cfg.Server),
		withExposeDetails(!cfg.IsProduction()),
		withStartupTime(startupTime),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return Server{server, startupTime}
}

type router struct {
	server        config.ServerConfig
	exposeDetails bool
	startupTime   time.Time
}

func withServerConfig(c config.ServerConfig) func(*router) {
	return func(r *router) {
		r.server = c
	}
}

func withExposeDetails(expose bool) func(*router) {
	return func(r *router) {
		r.exposeDetails = expose
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps dependencies, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}
	if router.server.MaxBodyBytes <= 0 {
		router.server.MaxBodyBytes = 1 << 20
	}

	responder := NewResponder(log.With().Str("handlerName", "router").Logger(), router.exposeDetails)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(HTTPLoggingMiddleware)
	chiRouter.Use(LogInternalServerErrors(responder))

	// Apply CORS middleware
	chiRouter.Use(CORSCheckMiddleware(router.server.AcceptedOrigins, responder))
	chiRouter.Use(corsMiddleware(router.server.AcceptedOrigins))
	chiRouter.Use(limitBody(router.server.MaxBodyBytes))

	chiRouter.NotFound(notFound(responder))
	chiRouter.MethodNotAllowed(methodNotAllowed(responder))

	// Initialize all handlers
	handlers := initializeHandlers(deps, router.exposeDetails, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.auth, router.exposeDetails)

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
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
