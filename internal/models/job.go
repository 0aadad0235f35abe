package models

import "time"

// Job はワーカーが順に処理するキュー上のタスク。
// Payloadにはジョブ種別ごとの追加パラメータがJSONで入る
type Job struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	Progress    int        `json:"progress"`
	Step        string     `json:"step,omitempty"`
	Payload     string     `json:"payload,omitempty"`
	RetryCount  int        `json:"retry_count"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ジョブタイプ
const (
	JobTypeDownload   = "download"
	JobTypeTranscribe = "transcribe"
	JobTypeAlign      = "align"
)

// ジョブステータス
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ジョブ優先度
const (
	JobPriorityImmediate = 0 // 即時処理
	JobPriorityNormal    = 5 // 通常処理
	JobPriorityBatch     = 9 // バッチ処理
)
