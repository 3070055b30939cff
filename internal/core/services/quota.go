package services

import (
	"fmt"

	"github.com/imdipper19-stack/vidlecta/internal/config"
	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
)

// QuotaService maps a subscription tier to its monthly minutes ceiling and
// decides job admission. The check runs at submission time only; a job
// already admitted runs to completion even if usage changes concurrently.
type QuotaService struct {
	limits map[string]int
	free   int
}

func NewQuotaService(cfg config.Config) *QuotaService {
	return &QuotaService{
		limits: map[string]int{
			domain.TierFree:    cfg.FreeMinutesLimit,
			domain.TierStudent: cfg.StudentMinutesLimit,
			domain.TierPro:     cfg.ProMinutesLimit,
		},
		free: cfg.FreeMinutesLimit,
	}
}

// Limit returns the monthly minutes ceiling for a tier. Unknown tiers fall
// back to the free ceiling.
func (q *QuotaService) Limit(tier string) int {
	if limit, ok := q.limits[tier]; ok {
		return limit
	}
	return q.free
}

// Admit fails closed: admission is rejected once used minutes reach the
// ceiling.
func (q *QuotaService) Admit(user *domain.User) error {
	limit := q.Limit(user.SubscriptionTier)
	if user.MonthlyMinutesUsed >= limit {
		return fmt.Errorf("%w (%d minutes)", domain.ErrQuotaExceeded, limit)
	}
	return nil
}

// MinutesCharged converts a processed duration to billed minutes, rounding
// any partial minute up.
func MinutesCharged(durationSeconds int) int {
	if durationSeconds <= 0 {
		return 0
	}
	return (durationSeconds + 59) / 60
}
