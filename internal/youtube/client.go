package youtube

import (
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// Client はYouTube API操作を抽象化するクライアント
type Client struct {
	client youtube.Client
}

// NewClient は新しいYouTubeクライアントを作成
func NewClient() *Client {
	return &Client{
		client: youtube.Client{},
	}
}

// VideoInfo は動画のメタ情報
// Descriptionには歌詞が貼られていることがあるので保持しておく
type VideoInfo struct {
	ID          string
	Title       string
	Author      string
	Duration    time.Duration
	Description string
	Captions    []CaptionTrack
}

// CaptionTrack は字幕トラックの情報
type CaptionTrack struct {
	LanguageCode  string
	Name          string
	BaseURL       string
	AutoGenerated bool // 自動生成字幕（歌詞には精度が低いことが多い）
}

// GetVideo は動画情報を取得
func (c *Client) GetVideo(url string) (*VideoInfo, error) {
	video, err := c.client.GetVideo(url)
	if err != nil {
		return nil, err
	}

	captions := make([]CaptionTrack, len(video.CaptionTracks))
	for i, track := range video.CaptionTracks {
		captions[i] = CaptionTrack{
			LanguageCode:  track.LanguageCode,
			Name:          track.Name.SimpleText,
			BaseURL:       track.BaseURL,
			AutoGenerated: track.Kind == "asr",
		}
	}

	return &VideoInfo{
		ID:          video.ID,
		Title:       video.Title,
		Author:      video.Author,
		Duration:    video.Duration,
		Description: video.Description,
		Captions:    captions,
	}, nil
}

// FindCaption は指定言語の字幕トラックを検索
// 完全一致と地域付きコード（enに対するen-USなど）を同じ言語として扱い、
// 同言語では手動字幕を自動生成字幕より優先する
// 指定言語が見つからなければ最初のトラックを返す
func (v *VideoInfo) FindCaption(lang string) *CaptionTrack {
	if len(v.Captions) == 0 {
		return nil
	}

	var auto *CaptionTrack
	for i := range v.Captions {
		track := &v.Captions[i]
		if track.LanguageCode != lang && !strings.HasPrefix(track.LanguageCode, lang+"-") {
			continue
		}
		if !track.AutoGenerated {
			return track
		}
		if auto == nil {
			auto = track
		}
	}
	if auto != nil {
		return auto
	}

	return &v.Captions[0]
}

// HasCaptions は字幕が利用可能かどうかを返す
func (v *VideoInfo) HasCaptions() bool {
	return len(v.Captions) > 0
}
