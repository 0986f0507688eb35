package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bgpstack/roa-history/internal/conf"
	"github.com/bgpstack/roa-history/internal/pkg/logger"
	"github.com/bgpstack/roa-history/internal/roa/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	roaService *service.ROAService,
	redisClient *redis.Client,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))
	router.Use(CORS())

	if config.RateLimit.Enabled && redisClient != nil {
		router.Use(RateLimiter(redisClient, RateLimiterConfig{
			MaxRequests:   config.RateLimit.MaxRequests,
			WindowSeconds: config.RateLimit.WindowSeconds,
		}, log))
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// The lookup API lives at the root, matching its public URL scheme.
	roaService.RegisterRoutes(&router.RouterGroup)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
