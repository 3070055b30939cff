package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/repository"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/storage"
	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/services"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	interval := flag.Duration("interval", 24*time.Hour, "time between sweeps")
	flag.Parse()

	log.Println("🚀 Retention cleaner starting...")

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

	cleaner := services.NewCleanupService(repository.NewPostgresVideoRepository(dbPool), blobs, cfg)

	sweep := func() {
		report, err := cleaner.Sweep(ctx, time.Now())
		if err != nil {
			log.Printf("⚠️ Sweep failed: %v", err)
			return
		}
		log.Printf("✅ Sweep done: %d archived", report.ArchivedCount)
	}

	sweep()
	if *once {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Cleaner stopped.")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
