// Package web exposes the cleaning pipeline over HTTP: batch cleaning,
// single-address parsing, G-NAF lookups, and health and configuration
// endpoints.
package web

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/aus-address-cleaner/internal/cleaner"
	"github.com/aus-address-cleaner/internal/config"
	"github.com/aus-address-cleaner/internal/web/handlers"
	"github.com/aus-address-cleaner/internal/web/middleware"
)

// Options configures the HTTP server.
type Options struct {
	// Addr overrides the configured listen address when non-empty.
	Addr string
	// APIKey protects the API routes when non-empty.
	APIKey  string
	Version string
}

// Server serves the cleaning API.
type Server struct {
	config     *config.Config
	cleaner    *cleaner.Cleaner
	options    Options
	httpServer *http.Server
	router     *mux.Router
}

// NewServer wires the pipeline into an HTTP server.
func NewServer(cfg *config.Config, c *cleaner.Cleaner, opts Options) *Server {
	s := &Server{
		config:  cfg,
		cleaner: c,
		options: opts,
	}

	s.setupRoutes()

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Server.Listen
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	cleanHandler := &handlers.CleanHandler{Cleaner: s.cleaner, MaxBatchSize: s.config.Processing.MaxBatchSize}
	parseHandler := &handlers.ParseHandler{Parser: s.cleaner.Parser(), Scorer: s.cleaner.Scorer()}
	matchHandler := &handlers.MatchHandler{Matcher: s.cleaner.Matcher()}
	healthHandler := &handlers.HealthHandler{
		Matcher: s.cleaner.Matcher(),
		Model:   s.cleaner.Model(),
		Version: s.options.Version,
	}
	configHandler := &handlers.ConfigHandler{Config: s.config}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/clean", cleanHandler.CleanAddresses).Methods("POST")
	api.HandleFunc("/parse", parseHandler.ParseAddress).Methods("GET")
	api.HandleFunc("/match", matchHandler.MatchAddress).Methods("GET")
	api.HandleFunc("/health", healthHandler.Health).Methods("GET")
	api.HandleFunc("/config", configHandler.GetConfig).Methods("GET")

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())

	if s.options.APIKey != "" {
		api.Use(middleware.APIKey(s.options.APIKey))
	}
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("starting server on http://%s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if err := s.cleaner.Close(); err != nil {
		log.Printf("pipeline close error: %v", err)
	}

	log.Println("server stopped")
	return nil
}
