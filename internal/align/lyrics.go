package align

import (
	"strings"
	"unicode"
)

// RefWord is one word of the reference lyrics.
type RefWord struct {
	Display    string // as typed, used for rendering
	Normalized string // lowercased, letters and digits only, used for matching
}

// Line is one parsed lyric line: either a pause marker or a run of words.
// Pause markers carry no words; they record that the writer left a blank
// line between two lyric lines, which maps to a silent gap in the song.
type Line struct {
	Text  string
	Words []RefWord
	Pause bool
}

// ParseLyrics splits raw lyric text into display lines and matchable words.
// Lines wrapped in brackets such as "[Chorus]" are section annotations and
// are dropped entirely. Blank lines become pause markers between the
// surrounding lines; runs of blanks collapse to one marker, and markers at
// either edge of the text are discarded. Returns ErrEmptyLyrics when no
// word lines remain.
func ParseLyrics(text string) ([]Line, error) {
	var lines []Line
	blankSeen := false
	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			blankSeen = true
		case isAnnotation(trimmed):
			// contributes neither words nor a pause
		default:
			if blankSeen && len(lines) > 0 {
				lines = append(lines, Line{Pause: true})
			}
			blankSeen = false
			lines = append(lines, Line{Text: trimmed, Words: splitWords(trimmed)})
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyLyrics
	}
	return lines, nil
}

// isAnnotation reports whether a trimmed line is a bracketed section header.
func isAnnotation(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

// splitWords tokenizes a display line into reference words.
func splitWords(line string) []RefWord {
	fields := strings.Fields(line)
	words := make([]RefWord, 0, len(fields))
	for _, f := range fields {
		words = append(words, RefWord{Display: f, Normalized: normalizeWord(f)})
	}
	return words
}

// normalizeWord lowercases a word and strips everything but letters and
// digits. A token made purely of punctuation normalizes to "" and will
// never match a transcribed word, but it is still kept for display.
func normalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
