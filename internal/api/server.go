// Package api exposes the tracker over HTTP. Handlers parse requests,
// resolve the principal, consult the access gate and delegate to the domain
// packages; all policy lives below this layer.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snagtrack/snagtrack/internal/attachment"
	"github.com/snagtrack/snagtrack/internal/notify"
	"github.com/snagtrack/snagtrack/internal/obs"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB        *gorm.DB
	Port      int
	JWTSecret string
	Store     attachment.Store
	Notifier  notify.Notifier
	Out       io.Writer
}

// deps is the handler dependency bundle threaded through route setup.
type deps struct {
	db       *gorm.DB
	store    attachment.Store
	notifier notify.Notifier
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.JWTSecret == "" {
		return fmt.Errorf("api: jwt secret is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Snagtrack API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with all middleware and routes. Split out
// from Start so handler tests can drive it with httptest.
func NewRouter(opts StartOpts) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obs.RequestLogger())
	router.Use(obs.Instrument())

	d := &deps{db: opts.DB, store: opts.Store, notifier: opts.Notifier}
	registerRoutes(router, d, opts.JWTSecret)
	return router
}
