package youtube

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CaptionEntry は字幕の1エントリ
type CaptionEntry struct {
	StartTime time.Duration `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Text      string        `json:"text"`
}

// CaptionResult は字幕取得結果
type CaptionResult struct {
	LanguageCode string         `json:"language_code"`
	Entries      []CaptionEntry `json:"entries"`
}

// FormatAsText は字幕をプレーンテキストとして出力
// 歌詞テキストの初期値として利用できる
func (r *CaptionResult) FormatAsText() string {
	var sb strings.Builder
	for _, entry := range r.Entries {
		sb.WriteString(entry.Text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// FormatAsJSON は字幕をJSONとして出力
func (r *CaptionResult) FormatAsJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// captionClient は字幕取得用HTTPクライアント。
// パイプラインのジョブ内から呼ばれるため無期限には待たない
var captionClient = &http.Client{Timeout: 20 * time.Second}

// srv3形式（timedtext format=3）のXML構造
type timedText struct {
	XMLName    xml.Name        `xml:"timedtext"`
	Paragraphs []timedTextPara `xml:"body>p"`
}

type timedTextPara struct {
	Start    int64          `xml:"t,attr"` // ミリ秒
	Duration int64          `xml:"d,attr"` // ミリ秒
	Segments []timedTextSeg `xml:"s"`
}

type timedTextSeg struct {
	Text string `xml:",chardata"`
}

// FetchCaption は指定言語の字幕トラックを取得してパースする
func (c *Client) FetchCaption(video *VideoInfo, lang string) (*CaptionResult, error) {
	track := video.FindCaption(lang)
	if track == nil {
		return nil, fmt.Errorf("no captions available")
	}

	body, err := fetchTimedText(track.BaseURL)
	if err != nil {
		return nil, err
	}

	result, err := parseTranscriptXML(body)
	if err != nil {
		return nil, err
	}
	result.LanguageCode = track.LanguageCode
	return result, nil
}

// fetchTimedText は字幕XMLを取得する。
// パーサが前提とするsrv3形式を明示的に要求する
func fetchTimedText(url string) ([]byte, error) {
	if !strings.Contains(url, "fmt=") {
		url += "&fmt=srv3"
	}

	resp, err := captionClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption request returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// parseTranscriptXML はsrv3の字幕XMLをCaptionResultに変換する。
// セグメントを連結した結果が空白のみの段落は捨てる
func parseTranscriptXML(data []byte) (*CaptionResult, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("caption XML parse failed: %w", err)
	}

	entries := make([]CaptionEntry, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		var sb strings.Builder
		for _, seg := range p.Segments {
			sb.WriteString(seg.Text)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}

		entries = append(entries, CaptionEntry{
			StartTime: time.Duration(p.Start) * time.Millisecond,
			Duration:  time.Duration(p.Duration) * time.Millisecond,
			Text:      text,
		})
	}

	return &CaptionResult{Entries: entries}, nil
}
