package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
)

type intakeFixture struct {
	videos      *MockVideoRepository
	transcripts *MockTranscriptionRepository
	users       *MockUserRepository
	storage     *MockBlobStorage
	publisher   *MockEventPublisher
	service     *IntakeService
}

func newIntakeFixture(t *testing.T, cfg config.Config) *intakeFixture {
	f := &intakeFixture{
		videos:      new(MockVideoRepository),
		transcripts: new(MockTranscriptionRepository),
		users:       new(MockUserRepository),
		storage:     new(MockBlobStorage),
		publisher:   new(MockEventPublisher),
	}
	f.service = NewIntakeService(
		f.videos, f.transcripts, f.users, f.storage, f.publisher,
		NewQuotaService(cfg), cfg,
	)
	f.service.newID = func() string { return "v-1" }
	return f
}

func TestIntakeService_SubmitUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending record and publishes", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))
		f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{
			ID: "u1", SubscriptionTier: domain.TierFree, MonthlyMinutesUsed: 59,
		}, nil)
		f.storage.On("Upload", mock.Anything, "videos/u1/v-1/lecture.mp4", mock.Anything, int64(4), "video/mp4").Return(nil)
		f.videos.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Video) bool {
			return v.Status == domain.StatusPending && v.StorageKey == "videos/u1/v-1/lecture.mp4" && v.Language == "en"
		})).Return(nil)
		f.publisher.On("PublishJob", mock.Anything, "v-1").Return(nil)

		video, err := f.service.SubmitUpload(ctx, "u1", "lecture.mp4", "video/mp4", 4, strings.NewReader("data"), "en")

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusPending, video.Status)
		f.videos.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("quota exceeded rejects before any record", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))
		f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{
			ID: "u1", SubscriptionTier: domain.TierFree, MonthlyMinutesUsed: 60,
		}, nil)

		_, err := f.service.SubmitUpload(ctx, "u1", "lecture.mp4", "video/mp4", 4, strings.NewReader("data"), "en")

		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
		f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.videos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unsupported language", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))

		_, err := f.service.SubmitUpload(ctx, "u1", "a.mp4", "video/mp4", 4, strings.NewReader("x"), "de")

		assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("invalid content type", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))

		_, err := f.service.SubmitUpload(ctx, "u1", "a.exe", "application/x-msdownload", 4, strings.NewReader("x"), "en")

		assert.ErrorIs(t, err, domain.ErrInvalidSource)
	})

	t.Run("file too large", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.MaxUploadBytes = 10
		f := newIntakeFixture(t, cfg)

		_, err := f.service.SubmitUpload(ctx, "u1", "a.mp4", "video/mp4", 11, strings.NewReader("x"), "en")

		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})
}

func TestIntakeService_SubmitURL(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a queued record", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))
		f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{
			ID: "u1", SubscriptionTier: domain.TierPro,
		}, nil)
		f.videos.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Video) bool {
			return v.Status == domain.StatusQueued && v.SourceURL == "https://example.com/talk.mp4"
		})).Return(nil)
		f.publisher.On("PublishJob", mock.Anything, "v-1").Return(nil)

		video, err := f.service.SubmitURL(ctx, "u1", "https://example.com/talk.mp4", "auto")

		assert.NoError(t, err)
		assert.Equal(t, domain.StatusQueued, video.Status)
		assert.Equal(t, "from_url_v-1", video.OriginalFilename)
	})

	t.Run("rejects malformed urls", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))

		for _, raw := range []string{"not-a-url", "ftp://example.com/a", "http://"} {
			_, err := f.service.SubmitURL(ctx, "u1", raw, "en")
			assert.ErrorIs(t, err, domain.ErrInvalidSource, raw)
		}
	})
}

func TestIntakeService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("status hides other users' videos", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))
		f.videos.On("GetByID", mock.Anything, "v1").Return(&domain.Video{ID: "v1", UserID: "someone-else"}, nil)

		_, err := f.service.GetStatus(ctx, "u1", "v1")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("result is fetched by video and language", func(t *testing.T) {
		f := newIntakeFixture(t, testConfig(t))
		f.videos.On("GetByID", mock.Anything, "v1").Return(&domain.Video{ID: "v1", UserID: "u1", Status: domain.StatusCompleted}, nil)
		f.transcripts.On("GetByVideoAndLanguage", mock.Anything, "v1", "en").Return(&domain.Transcription{
			ID: "tr-1", VideoID: "v1", Language: "en", Text: "hello",
		}, nil)

		tr, err := f.service.GetResult(ctx, "u1", "v1", "en")

		assert.NoError(t, err)
		assert.Equal(t, "hello", tr.Text)
	})
}

func TestIntakeService_DeleteVideo(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t, testConfig(t))
	f.videos.On("GetByID", mock.Anything, "v1").Return(&domain.Video{
		ID: "v1", UserID: "u1", StorageKey: "videos/u1/v1/a.mp4",
	}, nil)
	f.storage.On("Delete", mock.Anything, "videos/u1/v1/a.mp4").Return(nil)
	f.videos.On("Delete", mock.Anything, "v1", "u1").Return(nil)

	assert.NoError(t, f.service.DeleteVideo(ctx, "u1", "v1"))
	f.videos.AssertExpectations(t)
}
