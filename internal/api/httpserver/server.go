// Package httpserver wraps http.Server with the configuration and graceful
// shutdown behaviour shared by all entry points.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/microblog/service_layer/internal/config"
	"github.com/microblog/service_layer/pkg/logger"
)

// Server owns the listening HTTP server.
type Server struct {
	cfg config.ServerConfig
	log *logger.Logger
	srv *http.Server
}

// New builds a server around the provided handler.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	if log == nil {
		log = logger.NewDefault("httpserver")
	}
	return &Server{
		cfg: cfg,
		log: log,
		srv: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
