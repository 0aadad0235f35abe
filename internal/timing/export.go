package timing

import (
	"fmt"
	"strings"
	"time"
)

// FormatSRT renders the document as an SRT subtitle file, one cue per line.
func (d *Document) FormatSRT() string {
	var srt string
	for i, line := range d.Lines {
		srt += formatSRTCue(i+1, line.Start, line.End, line.Text)
		if i < len(d.Lines)-1 {
			srt += "\n"
		}
	}
	return srt
}

// formatSRTCue formats a single SRT subtitle entry.
func formatSRTCue(index int, startSec, endSec float64, text string) string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n",
		index,
		formatSRTTime(startSec),
		formatSRTTime(endSec),
		text,
	)
}

// formatSRTTime converts seconds to SRT time format (HH:MM:SS,mmm)
func formatSRTTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatLRC renders the document as an enhanced LRC file: each line carries
// a [mm:ss.xx] tag and every word an inline <mm:ss.xx> tag for karaoke
// players that support word-level highlighting.
func (d *Document) FormatLRC() string {
	var b strings.Builder
	if d.Title != "" {
		fmt.Fprintf(&b, "[ti:%s]\n", d.Title)
	}
	fmt.Fprintf(&b, "[length:%s]\n", formatLRCTime(d.Duration))
	for _, line := range d.Lines {
		fmt.Fprintf(&b, "[%s]", formatLRCTime(line.Start))
		for i, w := range line.Words {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "<%s>%s", formatLRCTime(w.Start), w.Word)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// formatLRCTime converts seconds to LRC time format (mm:ss.xx, centiseconds).
func formatLRCTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds * float64(time.Second))
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	cs := int(d.Milliseconds()) % 1000 / 10
	return fmt.Sprintf("%02d:%02d.%02d", m, s, cs)
}
