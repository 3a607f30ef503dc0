package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// Server represents the HTTP API server
type Server struct {
	router *chi.Mux
	store  *db.DB
	config *types.APIConfig
	http   *http.Server
}

// NewServer creates a new API server
func NewServer(store *db.DB, config *types.APIConfig) *Server {
	router := NewRouter(store, config.Token)
	mux := router.SetupRoutes()

	return &Server{
		router: mux,
		store:  store,
		config: config,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until Stop is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	addr := s.http.Addr

	log.Infof("Starting Folio history service on %s", addr)
	log.Infof("API endpoints available at http://%s/api/", addr)
	log.Infof("Health check available at http://%s/health", addr)

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// GetRouter returns the configured router
func (s *Server) GetRouter() *chi.Mux {
	return s.router
}

// Stop drains in-flight requests and closes the store
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return s.store.Close()
}
