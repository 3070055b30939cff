package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

const videoColumns = `id, user_id, original_filename, storage_key, file_size, duration_seconds,
	status, COALESCE(error_message, ''), COALESCE(source_url, ''), language, created_at, processed_at`

type postgresVideoRepository struct {
	db *pgxpool.Pool
}

func NewPostgresVideoRepository(db *pgxpool.Pool) ports.VideoRepository {
	return &postgresVideoRepository{db: db}
}

func (r *postgresVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	query := `
		INSERT INTO videos (id, user_id, original_filename, storage_key, file_size, status, source_url, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		video.ID, video.UserID, video.OriginalFilename, video.StorageKey,
		video.FileSize, video.Status, video.SourceURL, video.Language, video.CreatedAt)
	return err
}

func (r *postgresVideoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return video, err
}

func (r *postgresVideoRepository) GetByUserID(ctx context.Context, userID, statusFilter string, limit, offset int) ([]domain.Video, int, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, userID, statusFilter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, *video)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM videos WHERE user_id = $1 AND ($2 = '' OR status = $2)`
	if err := r.db.QueryRow(ctx, countQuery, userID, statusFilter).Scan(&total); err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// Claim is the atomic pending/queued -> processing transition. The
// conditional update is what guarantees at-most-once-active-processing: a
// concurrent claim on the same row matches zero rows.
func (r *postgresVideoRepository) Claim(ctx context.Context, id string) (*domain.Video, error) {
	query := `
		UPDATE videos
		SET status = '` + domain.StatusProcessing + `', claimed_at = NOW()
		WHERE id = $1 AND status IN ('` + domain.StatusPending + `', '` + domain.StatusQueued + `')
		RETURNING ` + videoColumns
	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrAlreadyClaimed
	}
	return video, err
}

// Complete flips processing -> completed and inserts the transcription in
// one transaction, so no reader observes a completed video without its
// transcript. A vanished or unclaimed row rolls everything back.
func (r *postgresVideoRepository) Complete(ctx context.Context, video *domain.Video, t *domain.Transcription) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	update := `
		UPDATE videos
		SET status = '` + domain.StatusCompleted + `',
			original_filename = $2, storage_key = $3, file_size = $4,
			duration_seconds = $5, error_message = NULL, processed_at = NOW()
		WHERE id = $1 AND status = '` + domain.StatusProcessing + `'
		RETURNING processed_at`
	var processedAt time.Time
	err = tx.QueryRow(ctx, update, video.ID,
		video.OriginalFilename, video.StorageKey, video.FileSize, video.DurationSeconds).
		Scan(&processedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	segments, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("encoding segments: %w", err)
	}
	insert := `
		INSERT INTO transcriptions (id, video_id, user_id, language, text, segments, word_count, processing_time_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at`
	err = tx.QueryRow(ctx, insert,
		t.ID, t.VideoID, t.UserID, t.Language, t.Text, segments, t.WordCount, t.ProcessingSeconds).
		Scan(&t.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrTranscriptionExists
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	video.Status = domain.StatusCompleted
	video.ErrorMessage = ""
	video.ProcessedAt = &processedAt
	return nil
}

func (r *postgresVideoRepository) MarkFailed(ctx context.Context, id, message string) error {
	query := `
		UPDATE videos
		SET status = '` + domain.StatusError + `', error_message = $2, processed_at = NOW()
		WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, message)
	return err
}

func (r *postgresVideoRepository) Archive(ctx context.Context, id string) error {
	query := `UPDATE videos SET status = '` + domain.StatusArchived + `' WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// FindExpired returns sweep candidates: anything old enough that is not
// already archived and not actively being processed.
func (r *postgresVideoRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE created_at < $1
		AND status NOT IN ('` + domain.StatusArchived + `', '` + domain.StatusProcessing + `')
		ORDER BY created_at ASC`
	return r.queryVideos(ctx, query, cutoff)
}

func (r *postgresVideoRepository) FindStartable(ctx context.Context) ([]domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE status IN ('` + domain.StatusPending + `', '` + domain.StatusQueued + `')
		ORDER BY created_at ASC`
	return r.queryVideos(ctx, query)
}

// ReclaimStale requeues processing rows whose claim is older than the
// worst-case job lifetime. Such rows belong to a worker that died mid-job;
// requeueing makes them visible to FindStartable and claimable again.
func (r *postgresVideoRepository) ReclaimStale(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		UPDATE videos
		SET status = '` + domain.StatusQueued + `', claimed_at = NULL
		WHERE status = '` + domain.StatusProcessing + `' AND claimed_at < $1`
	tag, err := r.db.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *postgresVideoRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresVideoRepository) queryVideos(ctx context.Context, query string, args ...any) ([]domain.Video, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}
	return videos, rows.Err()
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	video := &domain.Video{}
	err := row.Scan(
		&video.ID, &video.UserID, &video.OriginalFilename, &video.StorageKey,
		&video.FileSize, &video.DurationSeconds, &video.Status,
		&video.ErrorMessage, &video.SourceURL, &video.Language,
		&video.CreatedAt, &video.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return video, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
