package lyricfetch

import (
	"regexp"
	"strings"
)

var (
	imagePattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkPattern  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// extractLyrics はMarkdownから歌詞らしいプレーンテキストを取り出す
// リンク・画像・見出し記号・罫線を除去し、空行の連続は1行に
// まとめてスタンザ区切りとして残す
func extractLyrics(markdown string) string {
	text := strings.ReplaceAll(markdown, "\r\n", "\n")
	text = imagePattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "$1")

	var lines []string
	blank := true // 先頭の空行は捨てる
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#>")
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "*_")

		if isRuleLine(line) {
			line = ""
		}

		if line == "" {
			// 空行の連続を1行にまとめる
			if !blank {
				lines = append(lines, "")
				blank = true
			}
			continue
		}

		lines = append(lines, line)
		blank = false
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// isRuleLine は罫線だけの行かどうかを判定
func isRuleLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		switch r {
		case '-', '*', '=', '_':
		default:
			return false
		}
	}
	return true
}
