package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexanderramin/releaseplan/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP surface.
type Options struct {
	// Project is the remote project every aggregation runs against.
	Project string
	// APIToken, when set, is required as a bearer token on /api routes.
	APIToken string
	// Metrics serves /metrics; nil leaves the route unregistered.
	Metrics      http.Handler
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       zerolog.Logger
}

// Server is the release plan HTTP server.
type Server struct {
	plans  service.ReleasePlanService
	conn   service.ConnectionService
	opts   Options
	log    zerolog.Logger
	router *gin.Engine
}

// NewServer wires routes and middleware.
func NewServer(plans service.ReleasePlanService, conn service.ConnectionService, opts Options) *Server {
	router := gin.New()
	log := opts.Logger.With().Str("component", "web").Logger()

	s := &Server{
		plans:  plans,
		conn:   conn,
		opts:   opts,
		log:    log,
		router: router,
	}

	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := router.Group("/api")
	if opts.APIToken != "" {
		api.Use(bearerAuth(opts.APIToken))
	}
	{
		api.GET("/release_plan", s.handleReleasePlan)
		api.GET("/release_plan/cached", s.handleCachedPlan)
		api.GET("/test_connection", s.handleTestConnection)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
