package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/imdipper19-stack/vidlecta/internal/adapters/inbound/httpapi"
	outbound_messaging "github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/messaging"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/repository"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/storage"
	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/services"
)

func main() {
	log.Println("🚀 Intake API starting...")

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := repository.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("❌ Error initializing database: ", err)
	}
	defer dbPool.Close()

	blobs, err := storage.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioSecure)
	if err != nil {
		log.Fatal("❌ Error initializing blob storage: ", err)
	}
	if err := storage.EnsureBucket(ctx, blobs); err != nil {
		log.Fatal("❌ Error preparing bucket: ", err)
	}

	publisher, err := outbound_messaging.NewNatsPublisher(cfg.NATSURL, cfg.JobSubject)
	if err != nil {
		log.Fatal("❌ Error connecting to NATS: ", err)
	}
	defer publisher.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable, rate limiting degraded: %v", err)
	}

	intake := services.NewIntakeService(
		repository.NewPostgresVideoRepository(dbPool),
		repository.NewPostgresTranscriptionRepository(dbPool),
		repository.NewPostgresUserRepository(dbPool),
		blobs,
		publisher,
		services.NewQuotaService(cfg),
		cfg,
	)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	api.Use(httpapi.IdentityMiddleware())
	api.Use(httpapi.NewRateLimiter(httpapi.RateLimiterConfig{
		RedisClient: redisClient,
		Limit:       cfg.RateLimitPerSecond,
		Window:      time.Second,
	}))
	httpapi.NewHandler(intake).Register(api)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("✅ API listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ API server failed: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("👋 Shutting down API gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Forced shutdown: %v", err)
	}
	log.Println("🛑 API stopped.")
}
