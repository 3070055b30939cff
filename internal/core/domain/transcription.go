package domain

import "time"

// Segment is one time-aligned slice of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is one language-specific recognition result for a video.
// At most one exists per (video, language) pair.
type Transcription struct {
	ID                string    `json:"id"`
	VideoID           string    `json:"video_id"`
	UserID            string    `json:"user_id"`
	Language          string    `json:"language"`
	Text              string    `json:"text"`
	Segments          []Segment `json:"segments"`
	Summary           string    `json:"summary,omitempty"`
	KeyPoints         []string  `json:"key_points,omitempty"`
	WordCount         int       `json:"word_count"`
	ConfidenceScore   *float64  `json:"confidence_score,omitempty"`
	ProcessingSeconds float64   `json:"processing_time_seconds"`
	CreatedAt         time.Time `json:"created_at"`
}

// RecognitionResult is the raw output of the speech recognition engine.
type RecognitionResult struct {
	Text     string
	Segments []Segment
	Language string
}

// Duration derives the media duration in whole seconds from the end of the
// last recognized segment. Silent or empty audio yields 0.
func (r *RecognitionResult) Duration() int {
	if len(r.Segments) == 0 {
		return 0
	}
	return int(r.Segments[len(r.Segments)-1].End)
}
