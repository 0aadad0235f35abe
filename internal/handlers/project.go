package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"lyrsync/internal/align"
	"lyrsync/internal/media"
	"lyrsync/internal/models"
	"lyrsync/internal/pipeline"
	"lyrsync/internal/storage"
	"lyrsync/internal/timing"
	"lyrsync/internal/worker"

	"github.com/labstack/echo/v4"
)

// ProjectHandler はプロジェクトAPIのハンドラー
type ProjectHandler struct {
	projectRepo  *storage.ProjectRepository
	jobRepo      *storage.JobRepository
	artifactRepo *storage.ArtifactRepository
	media        *media.Store
	worker       *worker.Worker
}

// NewProjectHandler は新しいProjectHandlerを作成
func NewProjectHandler(
	projectRepo *storage.ProjectRepository,
	jobRepo *storage.JobRepository,
	artifactRepo *storage.ArtifactRepository,
	mediaStore *media.Store,
	w *worker.Worker,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo:  projectRepo,
		jobRepo:      jobRepo,
		artifactRepo: artifactRepo,
		media:        mediaStore,
		worker:       w,
	}
}

// Create は音源アップロードからプロジェクトを作成
// POST /api/projects (multipart: audio, image?, title?, lyrics?, duration?)
func (h *ProjectHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	audioFile, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "audio file is required"})
	}
	if !media.IsAudioFile(audioFile.Filename) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unsupported audio format: " + filepath.Ext(audioFile.Filename)})
	}

	imageFile, _ := c.FormFile("image")
	if imageFile != nil && !media.IsImageFile(imageFile.Filename) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unsupported image format: " + filepath.Ext(imageFile.Filename)})
	}

	// タイトル未指定時はファイル名から補完
	title := c.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(audioFile.Filename, filepath.Ext(audioFile.Filename))
	}

	project := &models.Project{
		Title:      title,
		SourceType: models.SourceTypeUpload,
		LyricsText: c.FormValue("lyrics"),
	}
	if d := c.FormValue("duration"); d != "" {
		if v, err := strconv.ParseFloat(d, 64); err == nil && v > 0 {
			project.Duration = v
		}
	}

	if err := h.projectRepo.Create(ctx, project); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	src, err := audioFile.Open()
	if err != nil {
		h.discard(ctx, project.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open audio: " + err.Error()})
	}
	audioPath, err := h.media.SaveAudio(project.ID, audioFile.Filename, src)
	src.Close()
	if err != nil {
		h.discard(ctx, project.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save audio: " + err.Error()})
	}
	project.AudioPath = audioPath

	if imageFile != nil {
		src, err := imageFile.Open()
		if err != nil {
			h.discard(ctx, project.ID)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open image: " + err.Error()})
		}
		imagePath, err := h.media.SaveImage(project.ID, imageFile.Filename, src)
		src.Close()
		if err != nil {
			h.discard(ctx, project.ID)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save image: " + err.Error()})
		}
		project.ImagePath = imagePath
	}

	if err := h.projectRepo.Update(ctx, project); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, project)
}

// discard は作成途中で失敗したプロジェクトを片付ける
func (h *ProjectHandler) discard(ctx context.Context, projectID string) {
	_ = h.projectRepo.Delete(ctx, projectID)
	_ = h.media.Remove(projectID)
}

// List はプロジェクト一覧を取得
// GET /api/projects?limit=&offset=
func (h *ProjectHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 50
	offset := 0
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	projects, err := h.projectRepo.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, projects)
}

// Get はプロジェクトを取得
// GET /api/projects/:id
func (h *ProjectHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}

	return c.JSON(http.StatusOK, project)
}

// UpdateRequest はプロジェクト更新リクエスト
type UpdateRequest struct {
	Title      *string `json:"title,omitempty"`
	LyricsText *string `json:"lyrics_text,omitempty"`
}

// Update はタイトルと歌詞を部分更新
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}

	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	// 部分更新
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.LyricsText != nil {
		project.LyricsText = *req.LyricsText
	}

	if err := h.projectRepo.Update(ctx, project); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, project)
}

// Delete はプロジェクトとメディアファイルを削除
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}

	// ジョブとアーティファクトは外部キーのCASCADEで消える
	if err := h.projectRepo.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if err := h.media.Remove(id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

// ImportRequest はタイミング文書からのプロジェクト作成リクエスト
type ImportRequest struct {
	Title  string          `json:"title,omitempty"`
	Timing json.RawMessage `json:"timing"`
}

// Import は既存のタイミング文書からプロジェクトを作成
// POST /api/projects/import
func (h *ProjectHandler) Import(c echo.Context) error {
	ctx := c.Request().Context()

	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Timing) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "timing document is required"})
	}

	doc, err := timing.Decode(req.Timing)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid timing document: " + err.Error()})
	}
	if err := doc.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid timing document: " + err.Error()})
	}

	title := req.Title
	if title == "" {
		title = doc.Title
	}

	// 歌詞テキストは文書の行から復元する
	lines := make([]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, line.Text)
	}

	project := &models.Project{
		Title:      title,
		Status:     models.ProjectStatusAligned,
		SourceType: models.SourceTypeImport,
		Duration:   doc.Duration,
		LyricsText: strings.Join(lines, "\n"),
	}
	if err := h.projectRepo.Create(ctx, project); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	encoded, err := doc.Encode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if err := h.artifactRepo.Put(ctx, project.ID, models.ArtifactTiming, string(encoded)); err != nil {
		h.discard(ctx, project.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, project)
}

// Align はアライメントジョブを投入する。文字起こしがまだ無ければ
// 先に文字起こしジョブを積み、完了後に自動で連鎖させる
// POST /api/projects/:id/align
func (h *ProjectHandler) Align(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}
	if project.LyricsText == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "project has no lyrics"})
	}

	// リクエストボディは任意。エンジンのチューニング値を上書きできる
	var req pipeline.AlignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	switch align.SpreadStrategy(req.Spread) {
	case "", align.SpreadProportional, align.SpreadUniform:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid spread: must be 'proportional' or 'uniform'"})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	transcript, err := h.artifactRepo.Get(ctx, id, models.ArtifactTranscript)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	jobType := models.JobTypeAlign
	if transcript == nil {
		if project.AudioPath == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "project has no audio to transcribe"})
		}
		jobType = models.JobTypeTranscribe
	}

	job, err := h.worker.SubmitJobWithPayload(ctx, jobType, id, models.JobPriorityImmediate, string(payload))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"project_id": id,
		"job_id":     job.ID,
		"type":       job.Type,
		"message":    "Alignment started",
	})
}
