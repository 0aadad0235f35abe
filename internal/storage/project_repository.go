package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"lyrsync/internal/models"
)

// ProjectRepository はプロジェクトのデータアクセス層
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository は新しいProjectRepositoryを作成
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, status, source_type, source_url,
	audio_path, image_path, duration, lyrics_text, created_at, updated_at`

// Create は新しいプロジェクトを作成
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = "proj_" + uuid.New().String()[:8]
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.ProjectStatusDraft
	}
	if p.SourceType == "" {
		p.SourceType = models.SourceTypeUpload
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Status, p.SourceType, p.SourceURL,
		p.AudioPath, p.ImagePath, p.Duration, p.LyricsText,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetByID はIDでプロジェクトを取得
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Status, &p.SourceType, &p.SourceURL,
		&p.AudioPath, &p.ImagePath, &p.Duration, &p.LyricsText,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update はプロジェクトを更新
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, status = ?, source_type = ?, source_url = ?,
			audio_path = ?, image_path = ?, duration = ?, lyrics_text = ?,
			updated_at = ?
		WHERE id = ?`,
		p.Title, p.Status, p.SourceType, p.SourceURL,
		p.AudioPath, p.ImagePath, p.Duration, p.LyricsText,
		p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// UpdateStatus はプロジェクトのステータスのみを更新
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	return err
}

// Delete はプロジェクトを削除（ジョブとアーティファクトもCASCADEで消える）
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// List はプロジェクト一覧を新しい順に取得
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]models.Project, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		err := rows.Scan(
			&p.ID, &p.Title, &p.Status, &p.SourceType, &p.SourceURL,
			&p.AudioPath, &p.ImagePath, &p.Duration, &p.LyricsText,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListOlderThan は指定時刻より前に更新されたプロジェクトを取得
func (r *ProjectRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE updated_at < ?`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		err := rows.Scan(
			&p.ID, &p.Title, &p.Status, &p.SourceType, &p.SourceURL,
			&p.AudioPath, &p.ImagePath, &p.Duration, &p.LyricsText,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Count はプロジェクト数を取得
func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n)
	return n, err
}
