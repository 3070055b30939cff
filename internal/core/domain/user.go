package domain

import "time"

const (
	TierFree    = "free"
	TierStudent = "student"
	TierPro     = "pro"
)

type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	Name                  string    `json:"name"`
	SubscriptionTier      string    `json:"subscription_tier"`
	MonthlyMinutesUsed    int       `json:"monthly_minutes_used"`
	MonthlyMinutesResetAt time.Time `json:"monthly_minutes_reset_at"`
	EmailNotifications    bool      `json:"email_notifications"`
	CreatedAt             time.Time `json:"created_at"`
}
