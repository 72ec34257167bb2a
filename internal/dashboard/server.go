// Package dashboard serves a local read-only view of the scene cache and
// the live workflow run: JSON endpoints for scenes and workflow state,
// plus an SSE stream of bus events for live progress.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vrtravel/reconcli/internal/events"
	"github.com/vrtravel/reconcli/internal/store"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Store *store.Store
	Bus   *events.Bus
	Port  int
	Out   io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("dashboard: store is required")
	}
	if opts.Bus == nil {
		return fmt.Errorf("dashboard: event bus is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts.Store, opts.Bus)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// NewRouter builds the gin router with all routes registered. Exported
// for testing against httptest.
func NewRouter(s *store.Store, bus *events.Bus) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, s, bus)
	return router
}
