package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"lyrsync/internal/asr"
	"lyrsync/internal/models"
	"lyrsync/internal/storage"

	"github.com/labstack/echo/v4"
)

// AudioHandler serves project audio and waveform data
type AudioHandler struct {
	projectRepo  *storage.ProjectRepository
	artifactRepo *storage.ArtifactRepository
}

// NewAudioHandler creates a new AudioHandler
func NewAudioHandler(projectRepo *storage.ProjectRepository, artifactRepo *storage.ArtifactRepository) *AudioHandler {
	return &AudioHandler{projectRepo: projectRepo, artifactRepo: artifactRepo}
}

// Stream serves the project audio file with Range request support
// GET /api/projects/:id/audio
func (h *AudioHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}
	if project.AudioPath == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project has no audio"})
	}
	if _, err := os.Stat(project.AudioPath); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "audio file missing"})
	}

	// Echo handles Range requests automatically
	return c.File(project.AudioPath)
}

// Waveform returns waveform peak data for the timeline editor. The peaks
// are computed once and cached as an artifact; a request with a different
// resolution recomputes and replaces the cache.
// GET /api/projects/:id/waveform?per_sec=10
func (h *AudioHandler) Waveform(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	samplesPerSec := 10.0
	if sps := c.QueryParam("per_sec"); sps != "" {
		if v, err := strconv.ParseFloat(sps, 64); err == nil && v > 0 && v <= 100 {
			samplesPerSec = v
		}
	}

	project, err := h.projectRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}
	if project.AudioPath == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project has no audio"})
	}

	if artifact, err := h.artifactRepo.Get(ctx, id, models.ArtifactWaveform); err == nil && artifact != nil {
		var cached asr.Waveform
		if err := json.Unmarshal([]byte(artifact.Content), &cached); err == nil && cached.SamplesPerSec == samplesPerSec {
			return c.JSON(http.StatusOK, &cached)
		}
	}

	// Peak extraction needs PCM; convert on demand unless already WAV
	wavPath := project.AudioPath
	if filepath.Ext(wavPath) != ".wav" {
		tmpPath, err := asr.ConvertToWavTemp(ctx, project.AudioPath)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to convert audio: " + err.Error()})
		}
		defer os.Remove(tmpPath)
		wavPath = tmpPath
	}

	waveform, err := asr.ComputePeaks(wavPath, samplesPerSec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute waveform: " + err.Error()})
	}

	// Best effort cache; the response is good even if the write fails
	if content, err := json.Marshal(waveform); err == nil {
		_ = h.artifactRepo.Put(ctx, id, models.ArtifactWaveform, string(content))
	}

	return c.JSON(http.StatusOK, waveform)
}
