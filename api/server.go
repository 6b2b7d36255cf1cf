package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/banachtech/zebra-digital/config"
	"github.com/banachtech/zebra-digital/keystore"
	"github.com/banachtech/zebra-digital/logs"
	"github.com/banachtech/zebra-digital/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Server serves HTTP requests for the digital option pricer.
type Server struct {
	cfg    config.ServerConfig
	engine config.EngineConfig
	store  keystore.Store
	router *gin.Engine

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer creates a new HTTP server and sets up routing.
func NewServer(cfg *config.Config, store keystore.Store) *Server {
	server := &Server{
		cfg:      *cfg.Server,
		engine:   *cfg.Engine,
		store:    store,
		limiters: make(map[string]*rate.Limiter),
	}

	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := gin.New()
	router.Use(gin.Recovery(), requestID, requestLogger)

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authRoutes := router.Group("/v1").Use(server.authentication, server.rateLimit)
	authRoutes.POST("/digital/analytic", server.analytic)
	authRoutes.POST("/digital/mc", server.monteCarlo)
	authRoutes.POST("/digital/implied", server.implied)
	server.router = router
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func (server *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              server.cfg.Address,
		Handler:           server.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Infof("pricing service listening on %s", server.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (server *Server) limiter(prefix string) *rate.Limiter {
	server.mu.Lock()
	defer server.mu.Unlock()
	l, ok := server.limiters[prefix]
	if !ok {
		l = rate.NewLimiter(rate.Limit(server.cfg.RatePerSecond), server.cfg.Burst)
		server.limiters[prefix] = l
	}
	return l
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
