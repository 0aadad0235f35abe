package pipeline

import (
	"context"
	"fmt"
	"os"

	"lyrsync/internal/asr"
	"lyrsync/internal/models"
)

// ProcessTranscription converts the project audio to 16kHz mono WAV, runs
// speech recognition and stores the word-level transcript artifact. When
// the project already has lyrics an alignment job is queued next.
func (p *Pipeline) ProcessTranscription(ctx context.Context, job *models.Job, onProgress ProgressCallback) error {
	progress := reportProgress(onProgress)
	progress(5, "preparing")

	project, err := p.projectRepo.GetByID(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return fmt.Errorf("project not found: %s", job.ProjectID)
	}
	if project.AudioPath == "" {
		return p.markFailed(ctx, project.ID, fmt.Errorf("project %s has no audio", project.ID))
	}

	if err := p.projectRepo.UpdateStatus(ctx, project.ID, models.ProjectStatusTranscribing); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	progress(10, "initializing")

	transcriber := p.Transcriber
	if transcriber == nil {
		recognizer, err := asr.NewRecognizer(p.asrConfig)
		if err != nil {
			return p.markFailed(ctx, project.ID, fmt.Errorf("failed to create recognizer: %w", err))
		}
		defer recognizer.Close()
		transcriber = recognizer
	}

	// Convert to 16kHz mono WAV when needed
	wavPath := project.AudioPath
	needsConvert, _ := asr.NeedsConversion(project.AudioPath)
	if needsConvert {
		progress(20, "converting")
		converted, err := asr.ConvertToWavTemp(ctx, project.AudioPath)
		if err != nil {
			return p.markFailed(ctx, project.ID, fmt.Errorf("failed to convert audio: %w", err))
		}
		defer os.Remove(converted)
		wavPath = converted
	}

	progress(30, "transcribing")

	transcript, err := transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to transcribe: %w", err))
	}

	progress(90, "saving")

	content, err := transcript.Encode()
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to encode transcript: %w", err))
	}
	if err := p.artifactRepo.Put(ctx, project.ID, models.ArtifactTranscript, string(content)); err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to save transcript: %w", err))
	}

	// Fill in the duration when the upload path could not probe it
	if project.Duration <= 0 {
		duration := transcript.Duration
		if end := transcript.EndTime(); end > duration {
			duration = end
		}
		project.Duration = duration
	}
	project.Status = models.ProjectStatusDraft
	if err := p.projectRepo.Update(ctx, project); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	// Chain into alignment when lyrics are already present. The payload
	// carries alignment options end to end, so a caller that queued the
	// transcription can tune the aligner too.
	if project.LyricsText != "" {
		alignJob := &models.Job{
			ProjectID: project.ID,
			Type:      models.JobTypeAlign,
			Priority:  job.Priority,
			Payload:   job.Payload,
		}
		if err := p.jobRepo.Create(ctx, alignJob); err != nil {
			return fmt.Errorf("failed to queue alignment: %w", err)
		}
	}

	progress(100, "")
	return nil
}
