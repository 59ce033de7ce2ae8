package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/draftkeeper/backend/handlers"
	"github.com/draftkeeper/backend/internal/config"
	"github.com/draftkeeper/backend/internal/database"
	"github.com/draftkeeper/backend/internal/drafts"
	"github.com/draftkeeper/backend/internal/drive"
	"github.com/draftkeeper/backend/internal/oidc"
	"github.com/draftkeeper/backend/internal/sessions"
	syncsvc "github.com/draftkeeper/backend/internal/sync"
	"github.com/draftkeeper/backend/internal/users"
	"github.com/draftkeeper/backend/pkg/logger"
	"github.com/draftkeeper/backend/pkg/metrics"
	"github.com/draftkeeper/backend/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: firebase=%v drive=%v redis=%v",
		cfg.Firebase.ProjectID != "", len(cfg.Drive.ServiceAccountJSON) > 0, cfg.Redis.Host != "")

	ctx := context.Background()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS for the SPA frontend. Credentials are allowed so the browser can
	// send the Authorization header from a different origin.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORS.AllowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis is optional: it backs the token blacklist and, when enabled, the
	// distributed rate limiter. Everything else works without it.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			sessions.SetBlacklistClient(rdb)
			logger.Infof("Connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Postgres is required: drafts and users live there.
	db, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatalf("failed to connect to Postgres: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	userRepo := users.NewPostgresRepository(db)
	userSvc := users.NewService(userRepo)
	draftRepo := drafts.NewPostgresRepository(db)

	// Drive integration is optional at startup: without a service account the
	// draft CRUD API still works and only the sync routes fail.
	var driveClient drive.Client
	if len(cfg.Drive.ServiceAccountJSON) > 0 {
		dc, err := drive.NewGoogleClient(ctx, cfg.Drive.ServiceAccountJSON)
		if err != nil {
			logger.Warnf("failed to initialize Google Drive client: %v", err)
		} else {
			driveClient = dc
			logger.Infof("Google Drive client initialized (root folder %q)", cfg.Drive.RootFolder)
		}
	} else {
		logger.Warnf("DRIVE_SERVICE_ACCOUNT not set; Drive sync routes will return errors")
	}
	provisioner := drive.NewProvisioner(driveClient, cfg.Drive.RootFolder)
	syncService := syncsvc.NewService(draftRepo, userSvc, provisioner, driveClient)

	// Firebase ID tokens are standard OIDC tokens issued by
	// securetoken.google.com, so the generic verifier handles them.
	var verifier middleware.Verifier
	if cfg.Firebase.ProjectID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Firebase.Issuer(), cfg.Firebase.ProjectID)
		if err != nil {
			logger.Warnf("failed to initialize token verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		val := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")))
		if val == "true" {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		} else {
			logger.Fatalf("no token verifier available: set FIREBASE_PROJECT_ID or ALLOW_INSECURE_TOKEN=true")
		}
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "API is running"})
	})
	// liveness probe used by the frontend; stays outside the auth middleware
	handlers.RegisterStatus(r.Group("/api"))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the critical dependencies respond
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["postgres"] = db.Pool != nil
		if !deps["postgres"] {
			ready = false
		}

		deps["verifier"] = verifier != nil
		if !deps["verifier"] {
			ready = false
		}

		deps["drive"] = driveClient != nil
		deps["redis"] = rdb != nil
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis && rdb == nil {
			ready = false
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(verifier, userSvc))
	handlers.NewAuthHandler(userSvc).Register(api)
	handlers.NewDraftsHandler(draftRepo, syncService).Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting draft service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
