package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/handlers"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/artifacts"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/config"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/database"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/state"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/pkg/logger"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/pkg/metrics"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: credential_path=%v redis=%v", cfg.Store.CredentialPath != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// State gateway: credential resolution and collection bootstrap happen
	// inside; an uninitialized gateway keeps serving (failing) requests per
	// the swallow-and-log contract.
	ctx := context.Background()
	gw := state.New(ctx, cfg.Store.CredentialPath, cfg.Store.Timeout)
	defer func() { _ = database.CloseShared(ctx) }()

	// Optional model artifact storage
	var artStore *artifacts.Store
	if mcfg := artifacts.LoadMinIOConfig(); mcfg.Endpoint != "" {
		artStore, err = artifacts.NewStore(mcfg)
		if err != nil {
			logger.Warnf("artifact storage unavailable: %v", err)
		} else {
			logger.Infof("artifact storage ready (bucket %s)", mcfg.Bucket)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the document store connection is usable
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"store":     gw.Initialized(),
			"redis":     !cfg.RateLimit.UseRedis || redisClient != nil,
			"artifacts": artStore != nil,
		}
		if !gw.Initialized() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Auth guards the mutating routes only; reads and probes stay open.
	var auth gin.HandlerFunc
	if cfg.JWT.Secret != "" {
		auth = middleware.AuthMiddleware(cfg.JWT.Secret)
	} else {
		logger.Warn("JWT_SECRET not set; mutating endpoints are unauthenticated")
	}
	h := handlers.NewStateHandler(gw, artStore)
	h.Register(r.Group("/api/v1"), auth)

	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting state gateway on %s (store=%v artifacts=%v)", addr, gw.Initialized(), artStore != nil)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
