package pipeline

import (
	"context"
	"fmt"

	"lyrsync/internal/asr"
	"lyrsync/internal/models"
	"lyrsync/internal/youtube"
)

// ProcessDownload fetches the audio for a YouTube project and fills in the
// project metadata. On success a transcription job is queued at the same
// priority.
func (p *Pipeline) ProcessDownload(ctx context.Context, job *models.Job, onProgress ProgressCallback) error {
	progress := reportProgress(onProgress)
	progress(5, "preparing")

	project, err := p.projectRepo.GetByID(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return fmt.Errorf("project not found: %s", job.ProjectID)
	}
	if project.SourceURL == "" {
		return p.markFailed(ctx, project.ID, fmt.Errorf("project %s has no source URL", project.ID))
	}

	if err := p.projectRepo.UpdateStatus(ctx, project.ID, models.ProjectStatusDownloading); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	video, err := p.youtube.GetVideo(project.SourceURL)
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to get video info: %w", err))
	}

	progress(10, "downloading")

	// Downloading covers the 10-80 range; only report whole-percent steps
	lastPercent := -1
	audioPath, err := p.youtube.DownloadAudioWithProgress(ctx, project.SourceURL, &youtube.DownloadAudioOptions{
		OutputDir: p.media.ProjectDir(project.ID),
		BaseName:  "source",
	}, func(current, total int64) {
		if total <= 0 {
			return
		}
		percent := 10 + int(70*current/total)
		if percent != lastPercent {
			lastPercent = percent
			progress(percent, "downloading")
		}
	})
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to download audio: %w", err))
	}

	progress(80, "probing")

	// Prefer the probed duration of the downloaded file over the metadata
	duration, err := asr.ProbeDuration(audioPath)
	if err != nil || duration <= 0 {
		duration = video.Duration.Seconds()
	}

	if project.Title == "" {
		project.Title = video.Title
	}

	// Seed the lyrics from captions when the project has none yet
	if project.LyricsText == "" && video.HasCaptions() {
		if captions, err := p.youtube.FetchCaption(video, "en"); err == nil {
			project.LyricsText = captions.FormatAsText()
		}
	}

	project.AudioPath = audioPath
	project.Duration = duration
	project.Status = models.ProjectStatusDraft
	if err := p.projectRepo.Update(ctx, project); err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to update project: %w", err))
	}

	// Chain into transcription
	transcribeJob := &models.Job{
		ProjectID: project.ID,
		Type:      models.JobTypeTranscribe,
		Priority:  job.Priority,
		Payload:   job.Payload,
	}
	if err := p.jobRepo.Create(ctx, transcribeJob); err != nil {
		return fmt.Errorf("failed to queue transcription: %w", err)
	}

	progress(100, "")
	return nil
}
