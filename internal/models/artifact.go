package models

import "time"

// Artifact はプロジェクトに紐づく生成データ（JSON文書）
type Artifact struct {
	ProjectID string    `json:"project_id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// アーティファクト種別
const (
	ArtifactTranscript = "transcript"
	ArtifactTiming     = "timing"
	ArtifactWaveform   = "waveform"
	ArtifactAlignStats = "align_stats"
)
