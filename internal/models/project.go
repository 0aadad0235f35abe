package models

import "time"

// Project は1曲分の作業単位。音源・歌詞・タイミングデータを束ねる
type Project struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`

	// 音源情報
	SourceType string  `json:"source_type"`
	SourceURL  string  `json:"source_url,omitempty"`
	AudioPath  string  `json:"audio_path,omitempty"`
	ImagePath  string  `json:"image_path,omitempty"`
	Duration   float64 `json:"duration,omitempty"`

	// 歌詞テキスト（原文のまま保持する）
	LyricsText string `json:"lyrics_text,omitempty"`

	// システム情報
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// プロジェクトステータス
const (
	ProjectStatusDraft        = "draft"
	ProjectStatusDownloading  = "downloading"
	ProjectStatusTranscribing = "transcribing"
	ProjectStatusAligning     = "aligning"
	ProjectStatusAligned      = "aligned"
	ProjectStatusFailed       = "failed"
)

// ソースタイプ
const (
	SourceTypeUpload  = "upload"
	SourceTypeYouTube = "youtube"
	SourceTypeImport  = "import"
)
