package lyricfetch

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Result は歌詞取得の結果
// LyricsはFetchLyricsでは抽出後のプレーンテキスト、
// FetchMarkdownではページ全体のMarkdown
type Result struct {
	URL      string        `json:"url"`
	Lyrics   string        `json:"lyrics"`
	Duration time.Duration `json:"duration"`
}

// LineCount は空行を除いた歌詞の行数を返す
// 抽出が失敗してほぼ空のテキストになっていないかの確認に使う
func (r *Result) LineCount() int {
	count := 0
	for _, line := range strings.Split(r.Lyrics, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// FormatAsText は歌詞テキストをそのまま返す
func (r *Result) FormatAsText() string {
	return r.Lyrics
}

// FormatAsJSON は結果をJSON形式で出力
func (r *Result) FormatAsJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
