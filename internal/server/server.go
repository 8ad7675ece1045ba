package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealdiary/backend/config"
)

// Server wraps the HTTP server around the configured gin engine.
type Server struct {
	http *http.Server
}

// New creates a server for the given router.
func New(cfg *config.Config, router *gin.Engine) *Server {
	return &Server{
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, letting in-flight streams
// finish within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
