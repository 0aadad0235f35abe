package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"lyrsync/internal/align"
	"lyrsync/internal/asr"
	"lyrsync/internal/models"
	"lyrsync/internal/storage"
	"lyrsync/internal/timing"

	"github.com/labstack/echo/v4"
)

// TimingHandler serves the per-project artifacts: the timing document,
// the raw transcript and the alignment statistics.
type TimingHandler struct {
	projectRepo  *storage.ProjectRepository
	artifactRepo *storage.ArtifactRepository
}

// NewTimingHandler creates a new TimingHandler
func NewTimingHandler(projectRepo *storage.ProjectRepository, artifactRepo *storage.ArtifactRepository) *TimingHandler {
	return &TimingHandler{projectRepo: projectRepo, artifactRepo: artifactRepo}
}

// Get returns the timing document for a project
// GET /api/projects/:id/timing
func (h *TimingHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	artifact, err := h.artifactRepo.Get(ctx, id, models.ArtifactTiming)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if artifact == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "timing not found"})
	}

	doc, err := timing.Decode([]byte(artifact.Content))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse timing: " + err.Error()})
	}

	return c.JSON(http.StatusOK, doc)
}

// Put replaces the timing document, typically after manual edits in the
// timeline editor. The document is validated before it is stored.
// PUT /api/projects/:id/timing
func (h *TimingHandler) Put(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	doc, err := timing.Decode(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid timing document: " + err.Error()})
	}
	if err := doc.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid timing document: " + err.Error()})
	}

	encoded, err := doc.Encode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if err := h.artifactRepo.Put(ctx, id, models.ArtifactTiming, string(encoded)); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, doc)
}

// Transcript returns the stored transcription for a project
// GET /api/projects/:id/transcript
func (h *TimingHandler) Transcript(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	artifact, err := h.artifactRepo.Get(ctx, id, models.ArtifactTranscript)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if artifact == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "transcript not found"})
	}

	transcript, err := asr.ParseTranscript([]byte(artifact.Content))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse transcript: " + err.Error()})
	}

	return c.JSON(http.StatusOK, transcript)
}

// Stats returns the statistics of the last alignment run
// GET /api/projects/:id/stats
func (h *TimingHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	artifact, err := h.artifactRepo.Get(ctx, id, models.ArtifactAlignStats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if artifact == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "alignment stats not found"})
	}

	var stats align.Stats
	if err := json.Unmarshal([]byte(artifact.Content), &stats); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse stats: " + err.Error()})
	}

	return c.JSON(http.StatusOK, stats)
}

// Export downloads the timing document in the requested format
// GET /api/projects/:id/export?format=json|srt|lrc
func (h *TimingHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}

	artifact, err := h.artifactRepo.Get(ctx, id, models.ArtifactTiming)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if artifact == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "timing not found"})
	}

	doc, err := timing.Decode([]byte(artifact.Content))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to parse timing: " + err.Error()})
	}

	var content []byte
	var contentType string
	switch format {
	case "json":
		content, err = doc.Encode()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		contentType = echo.MIMEApplicationJSON
	case "srt":
		content = []byte(doc.FormatSRT())
		contentType = echo.MIMETextPlainCharsetUTF8
	case "lrc":
		content = []byte(doc.FormatLRC())
		contentType = echo.MIMETextPlainCharsetUTF8
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid format: must be 'json', 'srt' or 'lrc'"})
	}

	filename := fmt.Sprintf("%s.%s", id, format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, content)
}
