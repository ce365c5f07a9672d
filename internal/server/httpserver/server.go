// Package httpserver exposes the sync service over HTTP with gin.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/secrimpo/internal/logging"
)

type Server struct {
	address         string
	shutdownTimeout time.Duration
	engine          *gin.Engine
	logger          logging.Logger
}

// NewRouter builds the gin engine with recovery, request logging and the
// sync routes. Escaped path segments are matched raw so user names may
// contain '/'.
func NewRouter(svc SyncService, logger logging.Logger) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.UseRawPath = true
	r.Use(gin.Recovery(), requestLogger(logger))
	Register(r, svc, logger)
	return r
}

func NewServer(address string, shutdownTimeout time.Duration, svc SyncService, l logging.Logger) *Server {
	logger := l.With("module", "http_server")
	return &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		engine:          NewRouter(svc, logger),
		logger:          logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
