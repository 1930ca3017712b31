package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/course-service/handlers"
	"github.com/gogotex/gogotex/backend/course-service/internal/bootstrap"
	"github.com/gogotex/gogotex/backend/course-service/internal/config"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/handler"
	"github.com/gogotex/gogotex/backend/course-service/internal/course/service"
	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
	"github.com/gogotex/gogotex/backend/course-service/pkg/metrics"
	"github.com/gogotex/gogotex/backend/course-service/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s locks=%s mongo=%v redis=%v minio=%v",
		cfg.Store.Backend, cfg.Store.LockBackend, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open record store: %v", err)
	}
	defer deps.Close(context.Background())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Lightweight CORS middleware: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, X-Request-Id")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(middleware.RequestIDMiddleware(), middleware.RequestLogger(), gin.Recovery())

	// Global rate limiter, per client IP
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && deps.Redis != nil {
			r.Use(middleware.RedisRateLimitMiddleware(deps.Redis, cfg.RateLimit.Max, cfg.RateLimit.Window))
			logger.Infof("rate limiter: redis, %d requests per %s", cfg.RateLimit.Max, cfg.RateLimit.Window)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS(), cfg.RateLimit.Max))
			logger.Infof("rate limiter: memory, %d requests per %s", cfg.RateLimit.Max, cfg.RateLimit.Window)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: 200 only when the record store and its clients answer
	r.GET("/ready", func(c *gin.Context) {
		ready, status := deps.Ready(c.Request.Context())
		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": status, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": status, "uptime": uptime})
	})

	handlers.RegisterSwagger(r)
	handler.RegisterCourseRoutes(r, service.NewService(deps.Store))

	exporter, err := deps.Exporter(ctx)
	switch {
	case err != nil:
		logger.Warnf("snapshot export disabled: %v", err)
	case exporter != nil:
		handler.RegisterSnapshotRoutes(r, exporter)
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting course service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
