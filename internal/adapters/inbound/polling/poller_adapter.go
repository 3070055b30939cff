package polling

import (
	"context"
	"log"
	"time"

	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

// PollerAdapter is the fallback intake: it periodically scans the database
// for startable jobs whose broker event was lost, and requeues processing
// rows orphaned by a dead worker once their claim outlives staleAfter. The
// claim transition makes it safe to run next to the NATS consumer.
type PollerAdapter struct {
	repo       ports.VideoRepository
	handler    func(ctx context.Context, videoID string) error
	interval   time.Duration
	staleAfter time.Duration
}

func NewPollerAdapter(repo ports.VideoRepository, interval, staleAfter time.Duration, handler func(ctx context.Context, videoID string) error) *PollerAdapter {
	return &PollerAdapter{
		repo:       repo,
		handler:    handler,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

func (a *PollerAdapter) Start(ctx context.Context) {
	log.Println("🚀 Poller started, monitoring for startable videos (fallback)...")
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("👋 Stopping poller...")
			return
		case <-ticker.C:
			if a.staleAfter > 0 {
				n, err := a.repo.ReclaimStale(ctx, time.Now().Add(-a.staleAfter))
				if err != nil {
					log.Printf("❌ Error reclaiming stale videos: %v", err)
				} else if n > 0 {
					log.Printf("♻️ Requeued %d stale video(s) from dead workers", n)
				}
			}

			videos, err := a.repo.FindStartable(ctx)
			if err != nil {
				log.Printf("❌ Error polling videos: %v", err)
				continue
			}

			for _, v := range videos {
				log.Printf("🎬 Poller found video %s (%s)", v.ID, v.OriginalFilename)
				go func(id string) {
					if err := a.handler(ctx, id); err != nil {
						log.Printf("❌ Error handling video %s from poller: %v", id, err)
					}
				}(v.ID)
			}
		}
	}
}
