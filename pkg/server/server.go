// Package server exposes the shared integer stack over HTTP: binary
// push/pop/resize endpoints, stats, snapshots, a websocket watch stream and
// an optional GraphQL surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dshibkova/intstack/pkg/auth"
	"github.com/dshibkova/intstack/pkg/device"
	"github.com/dshibkova/intstack/pkg/events"
	gql "github.com/dshibkova/intstack/pkg/graphql"
	"github.com/dshibkova/intstack/pkg/server/handlers"
	"github.com/dshibkova/intstack/pkg/stack"
)

// Server represents the HTTP server for the stack device
type Server struct {
	config      *Config
	dev         *device.StackDevice
	broadcaster *events.Broadcaster
	router      *chi.Mux
	httpSrv     *http.Server
	logger      *zap.Logger
	startTime   time.Time
}

// New creates a new HTTP server instance owning a fresh stack. The stack
// starts with capacity zero; a set-size call has to arrive before pushes
// succeed. A nil logger disables logging.
func New(config *Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Validate TLS configuration
	if config.EnableTLS {
		if config.TLSCertFile == "" || config.TLSKeyFile == "" {
			return nil, fmt.Errorf("TLS enabled but certificate or key file not specified")
		}
		if _, err := os.Stat(config.TLSCertFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS certificate file not found: %s", config.TLSCertFile)
		}
		if _, err := os.Stat(config.TLSKeyFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS key file not found: %s", config.TLSKeyFile)
		}
	}

	srv := &Server{
		config:      config,
		dev:         device.Open(stack.NewWithLimit(config.MaxCapacity)),
		broadcaster: events.NewBroadcaster(),
		router:      chi.NewRouter(),
		logger:      logger,
		startTime:   time.Now(),
	}

	srv.setupMiddleware()
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return srv, nil
}

// Handler returns the HTTP handler tree, mainly for tests that mount the
// server inside httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures HTTP middleware stack
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	if s.config.EnableLogging {
		s.router.Use(middleware.Logger)
	}

	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	s.router.Use(s.requestSizeLimitMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() error {
	h := handlers.New(s.dev, s.broadcaster)

	s.router.Get("/health", h.Health(s.startTime))

	s.router.Route("/stack", func(r chi.Router) {
		if len(s.config.APIKeys) > 0 {
			keys := auth.NewKeyManager()
			for name, secret := range s.config.APIKeys {
				if err := keys.AddKey(name, secret); err != nil {
					s.logger.Warn("skipping duplicate api key", zap.String("name", name))
				}
			}
			r.Use(keys.Middleware())
		}

		r.Post("/", h.Push)
		r.Delete("/", h.Pop)
		r.Get("/", h.Stats)
		r.Put("/size", h.SetSize)
		r.Get("/snapshot", h.Snapshot)
		r.Get("/watch", h.Watch)
	})

	if s.config.EnableGraphQL {
		if err := s.setupGraphQLRoutes(); err != nil {
			return fmt.Errorf("failed to setup GraphQL routes: %w", err)
		}
	}

	return nil
}

// setupGraphQLRoutes configures GraphQL routes
func (s *Server) setupGraphQLRoutes() error {
	graphqlHandler, err := gql.NewHandler(s.dev, s.broadcaster)
	if err != nil {
		return fmt.Errorf("failed to create GraphQL handler: %w", err)
	}

	s.router.Post("/graphql", graphqlHandler.ServeHTTP)
	s.router.Get("/graphiql", gql.GraphiQLHandler())

	s.logger.Info("graphql api enabled",
		zap.String("endpoint", "/graphql"),
		zap.String("playground", "/graphiql"))
	return nil
}

// corsMiddleware handles CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.config.AllowedOrigins) > 0 {
			origin = s.config.AllowedOrigins[0]
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestSizeLimitMiddleware limits request body size
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until an error or a shutdown signal.
func (s *Server) Start() error {
	protocol := "http"
	if s.config.EnableTLS {
		protocol = "https"
	}
	s.logger.Info("stack server starting",
		zap.String("addr", fmt.Sprintf("%s://%s:%d", protocol, s.config.Host, s.config.Port)),
		zap.Int("max_capacity", s.config.MaxCapacity),
		zap.Bool("tls", s.config.EnableTLS),
		zap.Bool("auth", len(s.config.APIKeys) > 0))

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.EnableTLS {
			err = s.httpSrv.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		s.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return s.Shutdown()
	}
}

// Shutdown stops accepting requests, closes the watch streams and destroys
// the stack. It runs exactly once per server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpSrv.Shutdown(ctx)

	s.broadcaster.Close()
	if closeErr := s.dev.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	s.logger.Info("stack server stopped")
	return err
}
