package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"lyrsync/internal/align"
	"lyrsync/internal/asr"
	"lyrsync/internal/models"
)

// AlignRequest carries alignment options through the job payload. Pointer
// fields distinguish an absent override from an explicit zero.
type AlignRequest struct {
	SkipPenalty     *float64 `json:"skip_penalty,omitempty"`
	DeletePenalty   *float64 `json:"delete_penalty,omitempty"`
	MinSimilarity   *float64 `json:"min_similarity,omitempty"`
	Spread          string   `json:"spread,omitempty"`
	PauseWeight     *float64 `json:"pause_weight,omitempty"`
	MaxWordDuration *float64 `json:"max_word_duration,omitempty"`
}

// Options expands the request into engine options on top of the defaults
func (req *AlignRequest) Options() *align.Options {
	opts := align.DefaultOptions()
	if req == nil {
		return opts
	}
	if req.SkipPenalty != nil {
		opts.SkipPenalty = *req.SkipPenalty
	}
	if req.DeletePenalty != nil {
		opts.DeletePenalty = *req.DeletePenalty
	}
	if req.MinSimilarity != nil {
		opts.MinSimilarity = *req.MinSimilarity
	}
	if req.Spread != "" {
		opts.Spread = align.SpreadStrategy(req.Spread)
	}
	if req.PauseWeight != nil {
		opts.PauseWeight = *req.PauseWeight
	}
	if req.MaxWordDuration != nil {
		opts.MaxWordDuration = *req.MaxWordDuration
	}
	return opts
}

// ProcessAlignment matches the stored transcript against the project
// lyrics and stores the timing document and its statistics as artifacts
func (p *Pipeline) ProcessAlignment(ctx context.Context, job *models.Job, onProgress ProgressCallback) error {
	progress := reportProgress(onProgress)
	progress(5, "preparing")

	project, err := p.projectRepo.GetByID(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return fmt.Errorf("project not found: %s", job.ProjectID)
	}
	if project.LyricsText == "" {
		return p.markFailed(ctx, project.ID, fmt.Errorf("project %s has no lyrics", project.ID))
	}

	artifact, err := p.artifactRepo.Get(ctx, project.ID, models.ArtifactTranscript)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if artifact == nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("project %s has no transcript, transcribe first", project.ID))
	}

	if err := p.projectRepo.UpdateStatus(ctx, project.ID, models.ProjectStatusAligning); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	progress(20, "loading transcript")

	transcript, err := asr.ParseTranscript([]byte(artifact.Content))
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to parse transcript: %w", err))
	}

	// Parse options from the job payload
	var req *AlignRequest
	if job.Payload != "" {
		req = &AlignRequest{}
		if err := json.Unmarshal([]byte(job.Payload), req); err != nil {
			return p.markFailed(ctx, project.ID, fmt.Errorf("invalid alignment options: %w", err))
		}
	}

	duration := project.Duration
	if duration <= 0 {
		duration = transcript.Duration
		if end := transcript.EndTime(); end > duration {
			duration = end
		}
	}

	progress(40, "aligning")

	result, err := align.Align(transcript.Words, project.LyricsText, project.Title, duration, req.Options())
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("alignment failed: %w", err))
	}

	progress(80, "saving")

	doc, err := result.Document.Encode()
	if err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to encode timing document: %w", err))
	}
	if err := p.artifactRepo.Put(ctx, project.ID, models.ArtifactTiming, string(doc)); err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to save timing document: %w", err))
	}

	stats, _ := json.Marshal(result.Stats)
	if err := p.artifactRepo.Put(ctx, project.ID, models.ArtifactAlignStats, string(stats)); err != nil {
		return p.markFailed(ctx, project.ID, fmt.Errorf("failed to save alignment stats: %w", err))
	}

	if err := p.projectRepo.UpdateStatus(ctx, project.ID, models.ProjectStatusAligned); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	progress(100, "")
	return nil
}
