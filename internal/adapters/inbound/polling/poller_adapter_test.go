package polling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
)

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVideoRepository) GetByUserID(ctx context.Context, userID, statusFilter string, limit, offset int) ([]domain.Video, int, error) {
	args := m.Called(ctx, userID, statusFilter, limit, offset)
	return args.Get(0).([]domain.Video), args.Int(1), args.Error(2)
}

func (m *MockVideoRepository) Claim(ctx context.Context, id string) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVideoRepository) Complete(ctx context.Context, video *domain.Video, t *domain.Transcription) error {
	return m.Called(ctx, video, t).Error(0)
}

func (m *MockVideoRepository) MarkFailed(ctx context.Context, id, message string) error {
	return m.Called(ctx, id, message).Error(0)
}

func (m *MockVideoRepository) Archive(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVideoRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]domain.Video, error) {
	args := m.Called(ctx, cutoff)
	if v := args.Get(0); v != nil {
		return v.([]domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVideoRepository) FindStartable(ctx context.Context) ([]domain.Video, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVideoRepository) ReclaimStale(ctx context.Context, olderThan time.Time) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func TestPollerAdapter_Start(t *testing.T) {
	t.Run("requeues stale claims before scanning for startable videos", func(t *testing.T) {
		repo := new(MockVideoRepository)
		handled := make(chan string, 1)

		start := time.Now()
		repo.On("ReclaimStale", mock.Anything, mock.MatchedBy(func(olderThan time.Time) bool {
			// Cutoff is now minus the stale window.
			return olderThan.Before(start.Add(-time.Minute + time.Second))
		})).Return(1, nil)
		repo.On("FindStartable", mock.Anything).Return([]domain.Video{
			{ID: "v1", OriginalFilename: "lecture.mp4"},
		}, nil)

		poller := NewPollerAdapter(repo, 5*time.Millisecond, time.Minute, func(ctx context.Context, videoID string) error {
			select {
			case handled <- videoID:
			default:
			}
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			poller.Start(ctx)
			close(done)
		}()

		select {
		case id := <-handled:
			assert.Equal(t, "v1", id)
		case <-time.After(time.Second):
			t.Fatal("poller never dispatched the startable video")
		}
		cancel()
		<-done

		repo.AssertCalled(t, "ReclaimStale", mock.Anything, mock.Anything)
		repo.AssertCalled(t, "FindStartable", mock.Anything)
	})

	t.Run("zero stale window disables reclaiming", func(t *testing.T) {
		repo := new(MockVideoRepository)
		scanned := make(chan struct{}, 1)

		repo.On("FindStartable", mock.Anything).Run(func(mock.Arguments) {
			select {
			case scanned <- struct{}{}:
			default:
			}
		}).Return(nil, nil)

		poller := NewPollerAdapter(repo, 5*time.Millisecond, 0, func(ctx context.Context, videoID string) error {
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			poller.Start(ctx)
			close(done)
		}()

		select {
		case <-scanned:
		case <-time.After(time.Second):
			t.Fatal("poller never scanned")
		}
		cancel()
		<-done

		repo.AssertNotCalled(t, "ReclaimStale", mock.Anything, mock.Anything)
	})
}
