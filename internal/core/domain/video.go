package domain

import "time"

const (
	StatusPending    = "pending"
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusArchived   = "archived"
)

type Video struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	OriginalFilename string     `json:"original_filename"`
	StorageKey       string     `json:"storage_key"`
	FileSize         int64      `json:"file_size"`
	DurationSeconds  int        `json:"duration_seconds"`
	Status           string     `json:"status"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	SourceURL        string     `json:"source_url,omitempty"`
	Language         string     `json:"language"`
	CreatedAt        time.Time  `json:"created_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}

// Terminal reports whether the pipeline is done with this video.
func (v *Video) Terminal() bool {
	return v.Status == StatusCompleted || v.Status == StatusError
}

// NeedsDownload reports whether the media still has to be fetched from the
// submitted URL before processing can start.
func (v *Video) NeedsDownload() bool {
	return v.SourceURL != "" && v.FileSize == 0
}
