package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	inbound_messaging "github.com/imdipper19-stack/vidlecta/internal/adapters/inbound/messaging"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/inbound/polling"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/downloader"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/email"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/processor"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/recognizer"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/repository"
	"github.com/imdipper19-stack/vidlecta/internal/adapters/outbound/storage"
	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
	"github.com/imdipper19-stack/vidlecta/internal/core/services"
)

func main() {
	log.Println("🚀 Transcription worker starting...")

	cfg := config.Load()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("📊 Metrics server started on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
			log.Printf("⚠️ Metrics server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		log.Fatalf("❌ Error: %s not found in system", cfg.FFmpegBin)
	}
	if _, err := exec.LookPath(cfg.WhisperBin); err != nil {
		log.Fatalf("❌ Error: %s not found in system", cfg.WhisperBin)
	}

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

	videoRepo := repository.NewPostgresVideoRepository(dbPool)
	transcriptionRepo := repository.NewPostgresTranscriptionRepository(dbPool)
	userRepo := repository.NewPostgresUserRepository(dbPool)

	var emailer ports.EmailSender
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		emailer = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		emailer = email.NewLogSender()
	}

	worker := services.NewWorkerService(
		videoRepo,
		transcriptionRepo,
		userRepo,
		blobs,
		processor.NewFFmpegExtractor(cfg.FFmpegBin),
		recognizer.NewWhisperRecognizer(cfg.WhisperBin, cfg.ModelDir, cfg.WhisperModel),
		downloader.NewHTTPDownloader(cfg.MaxUploadBytes),
		emailer,
		cfg,
	)

	consumer, err := inbound_messaging.NewNatsConsumerAdapter(cfg.NATSURL, cfg.JobSubject, cfg.JobTimeout, worker.ProcessVideoByID)
	if err != nil {
		log.Printf("⚠️ Error connecting to NATS: %v. Fallback to polling only.", err)
	} else {
		go func() {
			if err := consumer.Listen(ctx); err != nil {
				log.Printf("⚠️ NATS listener stopped: %v", err)
			}
		}()
	}

	// A live worker can hold a claim for at most the full retry budget;
	// anything older belongs to a dead worker and gets requeued.
	staleAfter := time.Duration(cfg.JobMaxRetries) * (cfg.JobTimeout + cfg.JobRetryBackoff)
	poller := polling.NewPollerAdapter(videoRepo, cfg.PollInterval, staleAfter, worker.ProcessVideoByID)
	go poller.Start(ctx)

	log.Println("✅ Worker is up and running. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("👋 Shutting down worker gracefully...")

	// Give in-flight stages a moment to notice cancellation.
	time.Sleep(2 * time.Second)
	log.Println("🛑 Worker stopped.")
}
