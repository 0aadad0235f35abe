package handlers

import (
	"net/http"
	"strconv"

	"lyrsync/internal/models"
	"lyrsync/internal/storage"

	"github.com/labstack/echo/v4"
)

// JobHandler はジョブAPIのハンドラー
type JobHandler struct {
	repo *storage.JobRepository
}

// NewJobHandler は新しいJobHandlerを作成
func NewJobHandler(repo *storage.JobRepository) *JobHandler {
	return &JobHandler{repo: repo}
}

// List はジョブ一覧を取得。statusを指定すると絞り込み
// GET /api/jobs?status=&limit=
func (h *JobHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var (
		jobs []models.Job
		err  error
	)
	if status := c.QueryParam("status"); status != "" {
		jobs, err = h.repo.ListByStatus(ctx, status, limit)
	} else {
		jobs, err = h.repo.ListRecent(ctx, limit)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, jobs)
}

// ListByProject はプロジェクトのジョブ一覧を取得
// GET /api/projects/:id/jobs
func (h *JobHandler) ListByProject(c echo.Context) error {
	ctx := c.Request().Context()
	projectID := c.Param("id")

	jobs, err := h.repo.GetByProjectID(ctx, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, jobs)
}

// Get はジョブを取得
// GET /api/jobs/:id
func (h *JobHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return c.JSON(http.StatusOK, job)
}

// Stats はステータスごとのジョブ数を返す。キューの滞留監視用
// GET /api/jobs/stats
func (h *JobHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.repo.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	stats := make(map[string]int64)
	for _, row := range counts {
		stats[row.Status] = row.Count
	}

	return c.JSON(http.StatusOK, stats)
}

// Delete はジョブを削除。実行中のジョブはワーカーが行を更新し続けて
// いるため削除を拒否する
// DELETE /api/jobs/:id
func (h *JobHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	if job.Status == models.JobStatusRunning {
		return c.JSON(http.StatusConflict, map[string]string{"error": "job is running"})
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}
