package services

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
)

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *MockVideoRepository) GetByUserID(ctx context.Context, userID, statusFilter string, limit, offset int) ([]domain.Video, int, error) {
	args := m.Called(ctx, userID, statusFilter, limit, offset)
	return args.Get(0).([]domain.Video), args.Int(1), args.Error(2)
}

func (m *MockVideoRepository) Claim(ctx context.Context, id string) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Video), args.Error(1)
}

func (m *MockVideoRepository) Complete(ctx context.Context, video *domain.Video, t *domain.Transcription) error {
	args := m.Called(ctx, video, t)
	return args.Error(0)
}

func (m *MockVideoRepository) MarkFailed(ctx context.Context, id, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockVideoRepository) Archive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVideoRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]domain.Video, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Video), args.Error(1)
}

func (m *MockVideoRepository) FindStartable(ctx context.Context) ([]domain.Video, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Video), args.Error(1)
}

func (m *MockVideoRepository) ReclaimStale(ctx context.Context, olderThan time.Time) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockTranscriptionRepository struct {
	mock.Mock
}

func (m *MockTranscriptionRepository) GetByVideoAndLanguage(ctx context.Context, videoID, language string) (*domain.Transcription, error) {
	args := m.Called(ctx, videoID, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transcription), args.Error(1)
}

func (m *MockTranscriptionRepository) ListByVideo(ctx context.Context, videoID string) ([]domain.Transcription, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).([]domain.Transcription), args.Error(1)
}

func (m *MockTranscriptionRepository) SetSummary(ctx context.Context, id, summary string, keyPoints []string) error {
	args := m.Called(ctx, id, summary, keyPoints)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) AddMinutesUsed(ctx context.Context, id string, minutes int) error {
	args := m.Called(ctx, id, minutes)
	return args.Error(0)
}

type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, data, size, contentType)
	return args.Error(0)
}

func (m *MockBlobStorage) Download(ctx context.Context, key, destPath string) error {
	args := m.Called(ctx, key, destPath)
	return args.Error(0)
}

func (m *MockBlobStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockAudioExtractor struct {
	mock.Mock
}

func (m *MockAudioExtractor) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	args := m.Called(ctx, inputPath, outputPath)
	return args.Error(0)
}

type MockSpeechRecognizer struct {
	mock.Mock
}

func (m *MockSpeechRecognizer) Transcribe(ctx context.Context, audioPath, language string) (*domain.RecognitionResult, error) {
	args := m.Called(ctx, audioPath, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecognitionResult), args.Error(1)
}

type MockMediaDownloader struct {
	mock.Mock
}

func (m *MockMediaDownloader) Fetch(ctx context.Context, rawURL, destPath string) (string, int64, error) {
	args := m.Called(ctx, rawURL, destPath)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJob(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
