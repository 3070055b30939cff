package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

var (
	cleanupArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanup_videos_archived_total",
		Help: "Total number of videos archived by the retention sweep",
	})

	cleanupBytesReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanup_bytes_reclaimed_total",
		Help: "Total bytes reclaimed from the blob store by the retention sweep",
	})
)

// SweepReport aggregates the outcome of one retention sweep.
type SweepReport struct {
	ArchivedCount  int   `json:"archived_count"`
	BytesReclaimed int64 `json:"bytes_reclaimed"`
}

// CleanupService archives videos past the retention horizon and reclaims
// their backing storage. It shares no memory with the workers, only the
// durable store and the blob store. Transcriptions are never touched.
type CleanupService struct {
	videos        ports.VideoRepository
	storage       ports.BlobStorage
	retentionDays int
	enabled       bool
}

func NewCleanupService(videos ports.VideoRepository, storage ports.BlobStorage, cfg config.Config) *CleanupService {
	return &CleanupService{
		videos:        videos,
		storage:       storage,
		retentionDays: cfg.RetentionDays,
		enabled:       cfg.EnableCleanupJob,
	}
}

// Sweep archives every eligible video: created before now minus the
// retention horizon and not yet archived. The blob delete is attempted
// first; a missing blob is logged and never blocks the archive transition.
// Running the sweep twice in succession is a no-op the second time.
func (s *CleanupService) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport

	if !s.enabled {
		log.Println("ℹ️ Cleanup job is disabled in settings")
		return report, nil
	}

	cutoff := now.AddDate(0, 0, -s.retentionDays)
	log.Printf("🧹 Starting storage cleanup for videos older than %d days (before %s)", s.retentionDays, cutoff.Format(time.RFC3339))

	videos, err := s.videos.FindExpired(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("finding expired videos: %w", err)
	}
	if len(videos) == 0 {
		log.Println("ℹ️ No expired videos found")
		return report, nil
	}

	for _, video := range videos {
		if video.StorageKey != "" {
			if err := s.storage.Delete(ctx, video.StorageKey); err != nil {
				// The blob may have been removed out-of-band.
				log.Printf("⚠️ Failed to delete blob %s: %v", video.StorageKey, err)
			}
		}

		if err := s.videos.Archive(ctx, video.ID); err != nil {
			log.Printf("❌ Error archiving video %s: %v", video.ID, err)
			continue
		}

		report.ArchivedCount++
		report.BytesReclaimed += video.FileSize
	}

	cleanupArchivedTotal.Add(float64(report.ArchivedCount))
	cleanupBytesReclaimed.Add(float64(report.BytesReclaimed))
	log.Printf("✅ Cleanup completed. Archived %d videos, reclaimed %.2f MB",
		report.ArchivedCount, float64(report.BytesReclaimed)/(1024*1024))
	return report, nil
}
