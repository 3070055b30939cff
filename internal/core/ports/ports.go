package ports

import (
	"context"
	"io"
	"time"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
)

// VideoRepository is the Outbound Port for video persistence. The database
// is the single source of truth for status; every transition goes through it.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	GetByUserID(ctx context.Context, userID, statusFilter string, limit, offset int) ([]domain.Video, int, error)

	// Claim atomically moves a pending or queued video to processing.
	// Returns ErrAlreadyClaimed if another worker got there first and
	// ErrNotFound if the video does not exist.
	Claim(ctx context.Context, id string) (*domain.Video, error)

	// Complete flips a processing video to completed and inserts its
	// transcription in the same transaction. Returns ErrNotFound if the
	// video was deleted or the claim was lost mid-flight (the transcript
	// is discarded), ErrTranscriptionExists on a (video, language) clash.
	Complete(ctx context.Context, video *domain.Video, t *domain.Transcription) error

	MarkFailed(ctx context.Context, id, message string) error
	Archive(ctx context.Context, id string) error
	FindExpired(ctx context.Context, cutoff time.Time) ([]domain.Video, error)
	FindStartable(ctx context.Context) ([]domain.Video, error)

	// ReclaimStale requeues processing videos claimed before olderThan,
	// recovering jobs orphaned by a worker that died mid-claim. Returns
	// how many rows were requeued.
	ReclaimStale(ctx context.Context, olderThan time.Time) (int, error)
	Delete(ctx context.Context, id, userID string) error
}

// TranscriptionRepository is the Outbound Port for transcription reads and
// the summarization stage's write.
type TranscriptionRepository interface {
	GetByVideoAndLanguage(ctx context.Context, videoID, language string) (*domain.Transcription, error)
	ListByVideo(ctx context.Context, videoID string) ([]domain.Transcription, error)
	SetSummary(ctx context.Context, id, summary string, keyPoints []string) error
}

// UserRepository is the Outbound Port for the identity collaborator. The
// pipeline only reads the quota tuple and charges minutes, it never
// authenticates.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	AddMinutesUsed(ctx context.Context, id string, minutes int) error
}

// BlobStorage is the Outbound Port for the object store.
type BlobStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key, destPath string) error
	Delete(ctx context.Context, key string) error
}

// AudioExtractor normalizes arbitrary media into mono 16 kHz 16-bit PCM WAV.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

// SpeechRecognizer runs the offline speech-to-text model. An empty or "auto"
// language asks the engine to detect it.
type SpeechRecognizer interface {
	Transcribe(ctx context.Context, audioPath, language string) (*domain.RecognitionResult, error)
}

// MediaDownloader fetches remote media for URL submissions.
type MediaDownloader interface {
	Fetch(ctx context.Context, rawURL, destPath string) (filename string, size int64, err error)
}

// EmailSender is fire-and-forget; failures never affect job state.
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// EventPublisher hands admitted jobs to the worker.
type EventPublisher interface {
	PublishJob(ctx context.Context, videoID string) error
}

// EventConsumer is the Inbound Port feeding the worker with job events.
type EventConsumer interface {
	Listen(ctx context.Context) error
}
