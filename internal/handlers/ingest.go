package handlers

import (
	"net/http"

	"lyrsync/internal/models"
	"lyrsync/internal/storage"
	"lyrsync/internal/worker"

	"github.com/labstack/echo/v4"
)

// IngestHandler は外部ソースからのプロジェクト取り込みハンドラー
type IngestHandler struct {
	projectRepo *storage.ProjectRepository
	worker      *worker.Worker
}

// NewIngestHandler は新しいIngestHandlerを作成
func NewIngestHandler(projectRepo *storage.ProjectRepository, w *worker.Worker) *IngestHandler {
	return &IngestHandler{projectRepo: projectRepo, worker: w}
}

// YouTubeRequest はYouTube取り込みリクエスト
type YouTubeRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// YouTube はYouTube動画からプロジェクトを作成し、
// 音声ダウンロード→文字起こしのジョブ連鎖を開始する
// POST /api/ingest/youtube
func (h *IngestHandler) YouTube(c echo.Context) error {
	ctx := c.Request().Context()

	var req YouTubeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	// タイトルが空ならダウンロード時に動画タイトルで補完される
	project := &models.Project{
		Title:      req.Title,
		SourceType: models.SourceTypeYouTube,
		SourceURL:  req.URL,
	}
	if err := h.projectRepo.Create(ctx, project); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	job, err := h.worker.SubmitJob(ctx, models.JobTypeDownload, project.ID, models.JobPriorityNormal)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"project_id": project.ID,
		"job_id":     job.ID,
		"message":    "YouTube ingestion started",
	})
}
