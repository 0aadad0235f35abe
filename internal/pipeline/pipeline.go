// Package pipeline contains the processors the background worker runs to
// take a project from raw audio to an aligned timing document.
package pipeline

import (
	"context"

	"lyrsync/internal/asr"
	"lyrsync/internal/media"
	"lyrsync/internal/models"
	"lyrsync/internal/storage"
	"lyrsync/internal/youtube"
)

// ProgressCallback is called to report progress during processing
type ProgressCallback func(progress int, step string)

// Pipeline bundles the dependencies shared by the job processors
type Pipeline struct {
	projectRepo  *storage.ProjectRepository
	jobRepo      *storage.JobRepository
	artifactRepo *storage.ArtifactRepository
	media        *media.Store
	youtube      *youtube.Client
	asrConfig    *asr.Config

	// Transcriber overrides recognizer construction, mainly for tests.
	// When nil a recognizer is built from the ASR config for each job.
	Transcriber asr.Transcriber
}

// New creates a Pipeline
func New(
	projectRepo *storage.ProjectRepository,
	jobRepo *storage.JobRepository,
	artifactRepo *storage.ArtifactRepository,
	mediaStore *media.Store,
	youtubeClient *youtube.Client,
	asrConfig *asr.Config,
) *Pipeline {
	return &Pipeline{
		projectRepo:  projectRepo,
		jobRepo:      jobRepo,
		artifactRepo: artifactRepo,
		media:        mediaStore,
		youtube:      youtubeClient,
		asrConfig:    asrConfig,
	}
}

// markFailed flips the project to the failed status and passes the error
// through. A retry of the job moves the status forward again.
func (p *Pipeline) markFailed(ctx context.Context, projectID string, err error) error {
	if projectID != "" {
		_ = p.projectRepo.UpdateStatus(ctx, projectID, models.ProjectStatusFailed)
	}
	return err
}

// reportProgress wraps a callback so processors can call it without a nil
// check at every milestone
func reportProgress(onProgress ProgressCallback) ProgressCallback {
	return func(progress int, step string) {
		if onProgress != nil {
			onProgress(progress, step)
		}
	}
}
