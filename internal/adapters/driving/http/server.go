// Package http exposes the OAuth orchestration flows over HTTP.
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentic-hub/hub-core/internal/adapters/driven/auth"
	"github.com/agentic-hub/hub-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     chi.Router
	version    string

	// ClientURL is the fallback error-redirect target when no flow state
	// is available to say otherwise.
	clientURL string

	// Services
	oauthService      driving.OAuthService
	credentialService driving.CredentialService

	// Optional bearer-token verification on the API endpoints.
	// Nil means the API is open (default for local development).
	verifier *auth.Verifier

	// Infrastructure
	db    Pinger // PostgreSQL health check (optional)
	redis Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// ClientURL is the frontend base URL, used for error redirects when a
	// callback carries no usable flow state.
	ClientURL string

	// AllowedOrigins is the CORS allow-list. Empty means same-origin only.
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    3001,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	oauthService driving.OAuthService,
	credentialService driving.CredentialService,
	verifier *auth.Verifier, // can be nil
	db Pinger, // can be nil
	redis Pinger, // can be nil
) *Server {
	s := &Server{
		router:            chi.NewRouter(),
		version:           cfg.Version,
		clientURL:         cfg.ClientURL,
		oauthService:      oauthService,
		credentialService: credentialService,
		verifier:          verifier,
		db:                db,
		redis:             redis,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()
	cors := NewCORSMiddleware(cfg.AllowedOrigins)
	metrics := NewMetricsMiddleware()

	s.router.Use(recovery.Handler)
	s.router.Use(logging.Handler)
	s.router.Use(metrics.Handler)
	s.router.Use(cors.Handler)

	// Health endpoints (no auth)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/version", s.handleVersion)
	s.router.Method(http.MethodGet, "/metrics", MetricsHandler())

	authn := NewAuthMiddleware(s.verifier)

	// Flow initiation. GET serves plain browser navigation (302 to the
	// provider), POST serves API callers (JSON with the URL).
	s.router.With(authn.Authenticate).Get("/oauth/init/{provider}", s.handleInitRedirect)
	s.router.With(authn.Authenticate).Post("/oauth/init/{provider}", s.handleInitJSON)

	// Callback is public - it receives redirects from OAuth providers.
	s.router.Get("/oauth/{provider}/callback", s.handleCallback)

	// One-time credential retrieval.
	s.router.With(authn.Authenticate).Get("/oauth/credentials/{credentialId}", s.handleGetCredential)

	// Catalog endpoints.
	s.router.Get("/oauth/providers", s.handleListProviders)
	s.router.Get("/oauth/providers/{provider}/scopes", s.handleProviderScopes)
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
