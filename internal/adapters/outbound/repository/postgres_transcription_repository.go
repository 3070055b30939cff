package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

const transcriptionColumns = `id, video_id, user_id, language, text, segments,
	COALESCE(summary, ''), key_points, word_count, confidence_score,
	processing_time_seconds, created_at`

type postgresTranscriptionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTranscriptionRepository(db *pgxpool.Pool) ports.TranscriptionRepository {
	return &postgresTranscriptionRepository{db: db}
}

func (r *postgresTranscriptionRepository) GetByVideoAndLanguage(ctx context.Context, videoID, language string) (*domain.Transcription, error) {
	query := `SELECT ` + transcriptionColumns + ` FROM transcriptions WHERE video_id = $1 AND language = $2`
	t, err := scanTranscription(r.db.QueryRow(ctx, query, videoID, language))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *postgresTranscriptionRepository) ListByVideo(ctx context.Context, videoID string) ([]domain.Transcription, error) {
	query := `SELECT ` + transcriptionColumns + ` FROM transcriptions WHERE video_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transcription
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *postgresTranscriptionRepository) SetSummary(ctx context.Context, id, summary string, keyPoints []string) error {
	points, err := json.Marshal(keyPoints)
	if err != nil {
		return fmt.Errorf("encoding key points: %w", err)
	}
	query := `UPDATE transcriptions SET summary = $2, key_points = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, summary, points)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTranscription(row pgx.Row) (*domain.Transcription, error) {
	t := &domain.Transcription{}
	var segments, keyPoints []byte
	err := row.Scan(
		&t.ID, &t.VideoID, &t.UserID, &t.Language, &t.Text, &segments,
		&t.Summary, &keyPoints, &t.WordCount, &t.ConfidenceScore,
		&t.ProcessingSeconds, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(segments) > 0 {
		if err := json.Unmarshal(segments, &t.Segments); err != nil {
			return nil, fmt.Errorf("decoding segments: %w", err)
		}
	}
	if len(keyPoints) > 0 {
		if err := json.Unmarshal(keyPoints, &t.KeyPoints); err != nil {
			return nil, fmt.Errorf("decoding key points: %w", err)
		}
	}
	return t, nil
}
