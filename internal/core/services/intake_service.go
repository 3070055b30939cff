package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

var (
	videosSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_videos_submitted_total",
		Help: "Total number of submitted transcription jobs",
	}, []string{"source"})

	quotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_quota_rejections_total",
		Help: "Total number of submissions rejected by the quota check",
	})
)

var allowedContentTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/x-matroska": true,
	"video/webm":       true,
	"audio/mpeg":       true,
	"audio/mp3":        true,
	"audio/wav":        true,
	"audio/x-wav":      true,
	"audio/x-m4a":      true,
}

// IntakeService admits new jobs and serves read-only projections of job and
// transcript state. It never runs pipeline stages inline; admitted jobs are
// handed off through the event publisher and picked up by the worker.
type IntakeService struct {
	videos      ports.VideoRepository
	transcripts ports.TranscriptionRepository
	users       ports.UserRepository
	storage     ports.BlobStorage
	publisher   ports.EventPublisher
	quota       *QuotaService
	cfg         config.Config

	now   func() time.Time
	newID func() string
}

func NewIntakeService(
	videos ports.VideoRepository,
	transcripts ports.TranscriptionRepository,
	users ports.UserRepository,
	storage ports.BlobStorage,
	publisher ports.EventPublisher,
	quota *QuotaService,
	cfg config.Config,
) *IntakeService {
	return &IntakeService{
		videos:      videos,
		transcripts: transcripts,
		users:       users,
		storage:     storage,
		publisher:   publisher,
		quota:       quota,
		cfg:         cfg,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SubmitUpload admits an uploaded file: quota check, blob upload, pending
// record, then async handoff to the worker.
func (s *IntakeService) SubmitUpload(ctx context.Context, userID, filename, contentType string, size int64, data io.Reader, language string) (*domain.Video, error) {
	if !s.cfg.LanguageSupported(language) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, language)
	}
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: content type %s", domain.ErrInvalidSource, contentType)
	}
	if size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, size)
	}

	if err := s.admit(ctx, userID); err != nil {
		return nil, err
	}

	id := s.newID()
	key := StorageKey(userID, id, filename)

	if err := s.storage.Upload(ctx, key, data, size, contentType); err != nil {
		return nil, fmt.Errorf("uploading media: %w", err)
	}

	video := &domain.Video{
		ID:               id,
		UserID:           userID,
		OriginalFilename: filename,
		StorageKey:       key,
		FileSize:         size,
		Status:           domain.StatusPending,
		Language:         language,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("creating video record: %w", err)
	}

	s.publish(ctx, video.ID)
	videosSubmittedTotal.WithLabelValues("upload").Inc()
	return video, nil
}

// SubmitURL admits a URL submission. The record starts queued; the worker
// downloads the media as its first stage.
func (s *IntakeService) SubmitURL(ctx context.Context, userID, rawURL, language string) (*domain.Video, error) {
	if !s.cfg.LanguageSupported(language) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, language)
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSource, rawURL)
	}

	if err := s.admit(ctx, userID); err != nil {
		return nil, err
	}

	id := s.newID()
	video := &domain.Video{
		ID:               id,
		UserID:           userID,
		OriginalFilename: "from_url_" + id,
		StorageKey:       fmt.Sprintf("videos/%s/%s/", userID, id),
		Status:           domain.StatusQueued,
		SourceURL:        rawURL,
		Language:         language,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("creating video record: %w", err)
	}

	s.publish(ctx, video.ID)
	videosSubmittedTotal.WithLabelValues("url").Inc()
	return video, nil
}

// GetStatus returns the current state of one of the caller's videos.
func (s *IntakeService) GetStatus(ctx context.Context, userID, videoID string) (*domain.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return video, nil
}

// GetResult returns the transcription of a video in the given language.
func (s *IntakeService) GetResult(ctx context.Context, userID, videoID, language string) (*domain.Transcription, error) {
	if _, err := s.GetStatus(ctx, userID, videoID); err != nil {
		return nil, err
	}
	return s.transcripts.GetByVideoAndLanguage(ctx, videoID, language)
}

// ListVideos pages through the caller's videos, optionally filtered by
// status.
func (s *IntakeService) ListVideos(ctx context.Context, userID, statusFilter string, page, perPage int) ([]domain.Video, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.videos.GetByUserID(ctx, userID, statusFilter, perPage, (page-1)*perPage)
}

// DeleteVideo removes a video and its transcriptions. The blob delete is
// best-effort; the row delete is what tombstones an in-flight job.
func (s *IntakeService) DeleteVideo(ctx context.Context, userID, videoID string) error {
	video, err := s.GetStatus(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if video.StorageKey != "" {
		if err := s.storage.Delete(ctx, video.StorageKey); err != nil {
			log.Printf("⚠️ Failed to delete blob %s: %v", video.StorageKey, err)
		}
	}
	return s.videos.Delete(ctx, videoID, userID)
}

func (s *IntakeService) admit(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetching user %s: %w", userID, err)
	}
	if err := s.quota.Admit(user); err != nil {
		quotaRejectionsTotal.Inc()
		return err
	}
	return nil
}

// publish is best-effort: if the broker is down the poller fallback picks
// the job up from the database.
func (s *IntakeService) publish(ctx context.Context, videoID string) {
	if err := s.publisher.PublishJob(ctx, videoID); err != nil {
		log.Printf("⚠️ Failed to publish job event for video %s: %v", videoID, err)
	}
}

// StorageKey builds the canonical blob key for a video's media.
func StorageKey(userID, videoID, filename string) string {
	return fmt.Sprintf("videos/%s/%s/%s", userID, videoID, filename)
}
