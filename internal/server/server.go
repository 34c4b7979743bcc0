// Package server exposes on-demand session generation over HTTP, for
// integration testing of downstream consumers without a physical device.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tactyl/magsynth/internal/session"
)

// Controller is the HTTP session service.
type Controller struct {
	baseParams session.Params
	server     http.Server
	logger     *zap.SugaredLogger
}

// NewController builds the service around a base parameter set; requests may
// override the pose plan, sample counts, seed and output format.
func NewController(addr string, baseParams session.Params, logger *zap.SugaredLogger) *Controller {
	c := &Controller{
		baseParams: baseParams,
		logger:     logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", c.handleHealth).Methods("GET")
	router.HandleFunc("/session", c.handleSession).Methods("GET")
	router.Use(c.requestLogger)

	c.server = http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return c
}

// Handler exposes the router for tests.
func (c *Controller) Handler() http.Handler {
	return c.server.Handler
}

// Start runs the HTTP server until the context is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.server.Shutdown(shutdownCtx)
	}()

	c.logger.Infof("session server listening on %s", c.server.Addr)
	if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("session server: %w", err)
	}
	return nil
}

func (c *Controller) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		c.logger.Debugw("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}
