package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

var (
	jobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_job_processing_duration_seconds",
		Help:    "Duration of transcription job processing in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"status"})

	jobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_jobs_processed_total",
		Help: "Total number of transcription jobs processed",
	}, []string{"status"})

	jobRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_job_retries_total",
		Help: "Total number of per-job retry attempts",
	})
)

// WorkerService drives one job through download, audio normalization,
// recognition, persistence and summarization. Concurrency is throttled to a
// small fixed worker pool because recognition is memory and CPU heavy.
type WorkerService struct {
	videos      ports.VideoRepository
	transcripts ports.TranscriptionRepository
	users       ports.UserRepository
	storage     ports.BlobStorage
	extractor   ports.AudioExtractor
	recognizer  ports.SpeechRecognizer
	downloader  ports.MediaDownloader
	emailer     ports.EmailSender
	summarizer  Summarizer
	cfg         config.Config

	slots chan struct{}
	newID func() string
	sleep func(ctx context.Context, d time.Duration) error
}

func NewWorkerService(
	videos ports.VideoRepository,
	transcripts ports.TranscriptionRepository,
	users ports.UserRepository,
	storage ports.BlobStorage,
	extractor ports.AudioExtractor,
	recognizer ports.SpeechRecognizer,
	downloader ports.MediaDownloader,
	emailer ports.EmailSender,
	cfg config.Config,
) *WorkerService {
	concurrency := cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerService{
		videos:      videos,
		transcripts: transcripts,
		users:       users,
		storage:     storage,
		extractor:   extractor,
		recognizer:  recognizer,
		downloader:  downloader,
		emailer:     emailer,
		cfg:         cfg,
		slots:       make(chan struct{}, concurrency),
		newID:       uuid.NewString,
		sleep:       sleepContext,
	}
}

// ProcessVideoByID claims the video and runs it to a terminal state. The
// claim write happens before any stage work, so a concurrent delivery of the
// same job observes it already claimed and backs off. Each job occupies one
// worker slot for its full duration.
func (s *WorkerService) ProcessVideoByID(ctx context.Context, videoID string) error {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.slots }()

	log.Printf("📥 Processing request for video %s", videoID)

	video, err := s.videos.Claim(ctx, videoID)
	if errors.Is(err, domain.ErrAlreadyClaimed) {
		log.Printf("ℹ️ Video %s already claimed, skipping", videoID)
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("video %s: %w", videoID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("claiming video %s: %w", videoID, err)
	}

	return s.runWithRetries(ctx, video)
}

// runWithRetries retries the whole per-job unit of work with a fixed backoff.
// Stages are idempotent enough to redo; each retry re-enters at processing.
func (s *WorkerService) runWithRetries(ctx context.Context, video *domain.Video) error {
	start := time.Now()
	var lastErr error

	attempts := s.cfg.JobMaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
		lastErr = s.runJob(attemptCtx, video)
		cancel()

		if lastErr == nil {
			jobProcessingDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
			jobsProcessedTotal.WithLabelValues("success").Inc()
			log.Printf("✅ Video %s processed successfully", video.ID)
			return nil
		}

		if attempt < attempts {
			jobRetriesTotal.Inc()
			log.Printf("🔁 Video %s attempt %d/%d failed: %v, retrying in %s",
				video.ID, attempt, attempts, lastErr, s.cfg.JobRetryBackoff)
			if err := s.sleep(ctx, s.cfg.JobRetryBackoff); err != nil {
				break
			}
		}
	}

	if ctx.Err() != nil {
		// Shutdown mid-job: leave the record in processing. The poller's
		// stale-claim pass requeues it once the claim ages out. Do not
		// mark error.
		return lastErr
	}

	log.Printf("❌ Video %s failed after %d attempts: %v", video.ID, attempts, lastErr)
	if err := s.videos.MarkFailed(ctx, video.ID, lastErr.Error()); err != nil {
		log.Printf("❌ Error marking video %s failed: %v", video.ID, err)
	}
	jobProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
	jobsProcessedTotal.WithLabelValues("error").Inc()
	s.notifyFailure(video, lastErr)
	return lastErr
}

// runJob executes one attempt of the full stage sequence. Temporary files
// are removed on every exit path.
func (s *WorkerService) runJob(ctx context.Context, video *domain.Video) error {
	start := time.Now()

	workDir, err := os.MkdirTemp(s.cfg.TempDir, "vidlecta-*")
	if err != nil {
		return fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath, err := s.acquireMedia(ctx, video, workDir)
	if err != nil {
		return err
	}

	audioPath, err := s.normalizeAudio(ctx, video, inputPath, workDir)
	if err != nil {
		return err
	}

	result, err := s.recognizer.Transcribe(ctx, audioPath, video.Language)
	if err != nil {
		return fmt.Errorf("speech recognition: %w", err)
	}

	language := result.Language
	if language == "" {
		language = video.Language
	}

	transcription := &domain.Transcription{
		ID:                s.newID(),
		VideoID:           video.ID,
		UserID:            video.UserID,
		Language:          language,
		Text:              result.Text,
		Segments:          result.Segments,
		WordCount:         WordCount(result.Text),
		ProcessingSeconds: time.Since(start).Seconds(),
	}
	video.DurationSeconds = result.Duration()

	if err := s.videos.Complete(ctx, video, transcription); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted while processing: discard the result.
			log.Printf("ℹ️ Video %s gone before final persist, discarding result", video.ID)
			return nil
		}
		return fmt.Errorf("persisting transcription: %w", err)
	}

	s.chargeMinutes(ctx, video)
	s.summarize(ctx, transcription)
	s.notifyCompleted(video, transcription)
	return nil
}

// acquireMedia resolves the job's bytes: URL jobs are downloaded and their
// durable copy uploaded to the blob store, upload jobs are fetched by
// storage key.
func (s *WorkerService) acquireMedia(ctx context.Context, video *domain.Video, workDir string) (string, error) {
	inputPath := filepath.Join(workDir, "input"+filepath.Ext(video.OriginalFilename))

	if video.NeedsDownload() {
		log.Printf("🌐 Downloading media for video %s from %s", video.ID, video.SourceURL)
		filename, size, err := s.downloader.Fetch(ctx, video.SourceURL, inputPath)
		if err != nil {
			return "", fmt.Errorf("downloading source: %w", err)
		}
		key := StorageKey(video.UserID, video.ID, filename)

		f, err := os.Open(inputPath)
		if err != nil {
			return "", fmt.Errorf("opening downloaded media: %w", err)
		}
		defer f.Close()
		if err := s.storage.Upload(ctx, key, f, size, "application/octet-stream"); err != nil {
			return "", fmt.Errorf("storing downloaded media: %w", err)
		}

		// Only adopt the resolved media once the durable copy exists, so
		// a failed upload leaves the video re-downloadable on retry.
		video.OriginalFilename = filename
		video.FileSize = size
		video.StorageKey = key
		return inputPath, nil
	}

	if err := s.storage.Download(ctx, video.StorageKey, inputPath); err != nil {
		return "", fmt.Errorf("fetching media %s: %w", video.StorageKey, err)
	}
	return inputPath, nil
}

// normalizeAudio converts the input into mono 16 kHz PCM WAV. Files already
// in WAV pass through untouched.
func (s *WorkerService) normalizeAudio(ctx context.Context, video *domain.Video, inputPath, workDir string) (string, error) {
	if strings.EqualFold(filepath.Ext(video.OriginalFilename), ".wav") {
		return inputPath, nil
	}
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := s.extractor.ExtractAudio(ctx, inputPath, audioPath); err != nil {
		return "", fmt.Errorf("audio extraction: %w", err)
	}
	return audioPath, nil
}

// summarize retries independently with a smaller bound. A missing summary
// never reverts a completed job.
func (s *WorkerService) summarize(ctx context.Context, t *domain.Transcription) {
	summary, keyPoints := s.summarizer.Summarize(t.Text)

	retries := s.cfg.SummaryMaxRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; attempt <= retries; attempt++ {
		err := s.transcripts.SetSummary(ctx, t.ID, summary, keyPoints)
		if err == nil {
			t.Summary = summary
			t.KeyPoints = keyPoints
			return
		}
		log.Printf("⚠️ Summary attempt %d/%d for transcription %s failed: %v", attempt, retries, t.ID, err)
		if attempt < retries {
			if err := s.sleep(ctx, s.cfg.JobRetryBackoff); err != nil {
				return
			}
		}
	}
	log.Printf("⚠️ Giving up on summary for transcription %s, job stays completed", t.ID)
}

func (s *WorkerService) chargeMinutes(ctx context.Context, video *domain.Video) {
	minutes := MinutesCharged(video.DurationSeconds)
	if minutes == 0 {
		return
	}
	if err := s.users.AddMinutesUsed(ctx, video.UserID, minutes); err != nil {
		log.Printf("⚠️ Error charging %d minutes to user %s: %v", minutes, video.UserID, err)
	}
}

func (s *WorkerService) notifyCompleted(video *domain.Video, t *domain.Transcription) {
	user, err := s.users.GetByID(context.Background(), video.UserID)
	if err != nil || user == nil {
		log.Printf("⚠️ Error fetching user %s for notification: %v", video.UserID, err)
		return
	}
	if user.Email == "" || !user.EmailNotifications {
		return
	}

	subject := fmt.Sprintf("Your transcription is ready: %s", video.OriginalFilename)
	body := fmt.Sprintf("Hello %s,\n\nYour video %q has been transcribed successfully.\n\nView your transcription:\n%s/transcriptions/%s\n\nVidLecta Team",
		user.Name, video.OriginalFilename, s.cfg.FrontendURL, t.ID)

	if err := s.emailer.SendEmail(user.Email, subject, body); err != nil {
		log.Printf("❌ Failed to send completion email to %s: %v", user.Email, err)
	}
}

func (s *WorkerService) notifyFailure(video *domain.Video, cause error) {
	user, err := s.users.GetByID(context.Background(), video.UserID)
	if err != nil || user == nil {
		log.Printf("⚠️ Error fetching user %s for notification: %v", video.UserID, err)
		return
	}
	if user.Email == "" || !user.EmailNotifications {
		return
	}

	subject := fmt.Sprintf("Transcription failed: %s", video.OriginalFilename)
	body := fmt.Sprintf("Hello %s,\n\nUnfortunately we could not transcribe your video %q.\n\nDetails: %v\n\nVidLecta Team",
		user.Name, video.OriginalFilename, cause)

	if err := s.emailer.SendEmail(user.Email, subject, body); err != nil {
		log.Printf("❌ Failed to send failure email to %s: %v", user.Email, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
