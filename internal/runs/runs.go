// Package runs keeps a local journal of pipeline runs: one row per
// generation or concatenation attempt, with its outcome. The remote service
// keeps its own history; this journal is what the client can answer for
// without a network call.
package runs

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	TypeGenerate    = "generate"
	TypeConcatenate = "concatenate"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Run struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	VideoRef  string    `json:"video_ref,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Begin records a new running entry and returns its ID.
func (r *Repository) Begin(ctx context.Context, runType, videoRef string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, type, status, video_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, runType, StatusRunning, nullString(videoRef), now, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Complete marks a run successful, recording the produced reference and a
// short human-readable detail line.
func (r *Repository) Complete(ctx context.Context, id, videoRef, detail string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, video_ref = ?, detail = ?, updated_at = ? WHERE id = ?
	`, StatusCompleted, nullString(videoRef), nullString(detail), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// Fail marks a run failed with the surfaced error message.
func (r *Repository) Fail(ctx context.Context, id, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, StatusFailed, nullString(errMsg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, status, video_ref, detail, error, created_at, updated_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

func (r *Repository) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, status, video_ref, detail, error, created_at, updated_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Run
	for rows.Next() {
		var run Run
		var videoRef, detail, errMsg sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&run.ID, &run.Type, &run.Status, &videoRef, &detail, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		run.VideoRef = videoRef.String
		run.Detail = detail.String
		run.Error = errMsg.String
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		run.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		result = append(result, &run)
	}
	return result, rows.Err()
}

func scanRun(row *sql.Row) (*Run, error) {
	var run Run
	var videoRef, detail, errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&run.ID, &run.Type, &run.Status, &videoRef, &detail, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.VideoRef = videoRef.String
	run.Detail = detail.String
	run.Error = errMsg.String
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	run.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &run, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
