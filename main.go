package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/idextract/idextract/handlers"
	"github.com/idextract/idextract/internal/auth"
	"github.com/idextract/idextract/internal/config"
	"github.com/idextract/idextract/internal/database"
	"github.com/idextract/idextract/internal/fetch"
	"github.com/idextract/idextract/internal/kyc/handler"
	"github.com/idextract/idextract/internal/kyc/repository"
	"github.com/idextract/idextract/internal/kyc/service"
	"github.com/idextract/idextract/internal/ocr"
	"github.com/idextract/idextract/internal/ocr/tesseract"
	"github.com/idextract/idextract/internal/storage"
	"github.com/idextract/idextract/pkg/logger"
	"github.com/idextract/idextract/pkg/metrics"
	"github.com/idextract/idextract/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	logger.Infof("config loaded: snapshot=%s mongo=%v redis=%v minio=%v keycloak=%v",
		cfg.Storage.SnapshotBackend, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "", cfg.Keycloak.URL != "")

	ctx := context.Background()

	// Redis is optional: without it the cache capability is unavailable and
	// the rate limiter stays in-process.
	var redisClient *redis.Client
	cache := repository.Unavailable()
	if cfg.Redis.Host != "" {
		c := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warnf("redis %s:%s unreachable, cache disabled: %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = c.Close()
		} else {
			redisClient = c
			cache = repository.Available(repository.NewRedisCache(c, cfg.Storage.CacheKeyPrefix))
			logger.Infof("connected to redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	var mongoClient *mongo.Client
	var snapshot repository.Snapshot
	switch cfg.Storage.SnapshotBackend {
	case "mongo":
		mongoClient, err = database.ConnectWithRetry(ctx, cfg.MongoDB, 5, time.Second)
		if err != nil {
			logger.Fatalf("snapshot backend: %v", err)
		}
		snapshot, err = repository.NewMongoSnapshot(ctx, database.Collection(mongoClient, cfg.MongoDB))
		if err != nil {
			logger.Fatalf("snapshot backend: %v", err)
		}
	default:
		snapshot = repository.NewFileSnapshot(cfg.Storage.SnapshotPath)
	}

	store, err := service.OpenStore(ctx, snapshot, repository.NewCSVExport(cfg.Storage.ExportPath), cache)
	if err != nil {
		logger.Fatalf("cannot open record store: %v", err)
	}

	var archive service.Archiver
	if cfg.MinIO.Endpoint != "" {
		a, err := storage.NewImageArchive(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("image archive disabled: %v", err)
		} else {
			archive = a
			logger.Infof("archiving uploads to minio bucket %s", cfg.MinIO.Bucket)
		}
	}

	policy, err := ocr.ParseZeroMatchPolicy(cfg.OCR.ZeroMatch)
	if err != nil {
		logger.Fatalf("ocr: %v", err)
	}
	engine := tesseract.NewEngine(cfg.OCR)
	logger.Infof("tesseract %s, languages %v, workers %d", engine.Version(), cfg.OCR.Languages, cfg.OCR.Workers)

	pipeline := service.NewPipeline(
		fetch.NewDownloader(cfg.Download.Timeout, cfg.Download.MaxBytes),
		ocr.NewSelector(engine, policy),
		store,
		service.PipelineConfig{Languages: cfg.OCR.Languages, Workers: cfg.OCR.Workers, Archive: archive},
	)

	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		issuer := cfg.Keycloak.URL
		if cfg.Keycloak.Realm != "" {
			issuer = auth.IssuerURL(cfg.Keycloak.URL, cfg.Keycloak.Realm)
		}
		v, err := auth.NewOIDCVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = v
		}
	}
	if verifier == nil && cfg.JWT.Secret != "" {
		v, err := auth.NewHMACVerifier(cfg.JWT.Secret)
		if err != nil {
			logger.Warnf("jwt verifier: %v", err)
		} else {
			verifier = v
			logger.Infof("upload endpoint protected by HS256 tokens")
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	var upload []gin.HandlerFunc
	if verifier != nil {
		upload = append(upload, middleware.AuthMiddleware(verifier))
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			upload = append(upload, middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			upload = append(upload, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handler.RegisterRoutes(r, pipeline, store, upload...)
	handlers.RegisterSwagger(r)
	handlers.RegisterHealth(r, startTime,
		handlers.Check{Name: "store", Required: true, Probe: func(ctx context.Context) bool { return store.Ready(ctx) == nil }},
		handlers.Check{Name: "mongo", Required: mongoClient != nil, Probe: func(ctx context.Context) bool {
			return mongoClient != nil && mongoClient.Ping(ctx, nil) == nil
		}},
		handlers.Check{Name: "redis", Required: cfg.RateLimit.UseRedis && cfg.Redis.Host != "", Probe: func(ctx context.Context) bool {
			return redisClient != nil && redisClient.Ping(ctx).Err() == nil
		}},
	)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting extractor on %s (%d records)", srv.Addr, store.Count())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
