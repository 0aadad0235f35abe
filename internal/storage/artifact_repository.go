package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lyrsync/internal/models"
)

// ArtifactRepository はプロジェクト生成データのデータアクセス層
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository は新しいArtifactRepositoryを作成
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Put はアーティファクトを保存（同じ種別があれば上書き）
func (r *ArtifactRepository) Put(ctx context.Context, projectID, kind, content string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (project_id, kind, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, kind)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		projectID, kind, content, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store artifact %s/%s: %w", projectID, kind, err)
	}
	return nil
}

// Get はアーティファクトを取得
func (r *ArtifactRepository) Get(ctx context.Context, projectID, kind string) (*models.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT project_id, kind, content, updated_at
		FROM artifacts
		WHERE project_id = ? AND kind = ?`, projectID, kind)
	var a models.Artifact
	err := row.Scan(&a.ProjectID, &a.Kind, &a.Content, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete はアーティファクトを削除
func (r *ArtifactRepository) Delete(ctx context.Context, projectID, kind string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM artifacts WHERE project_id = ? AND kind = ?`, projectID, kind)
	return err
}
