package align

import (
	"errors"

	"lyrsync/internal/asr"
	"lyrsync/internal/timing"
)

// SpreadStrategy selects how an unmatched run of words shares a silence
// gap during interpolation.
type SpreadStrategy string

const (
	// SpreadProportional sizes each word by its character length.
	SpreadProportional SpreadStrategy = "proportional"
	// SpreadUniform gives every word of a run the same share.
	SpreadUniform SpreadStrategy = "uniform"
)

// Options tunes the aligner and the timestamp synthesizer. Start from
// DefaultOptions and adjust. SkipPenalty versus substitution cost is the
// main quality knob: a larger SkipPenalty makes the aligner accept an
// imperfect phonetic match rather than leave a reference word unmatched.
type Options struct {
	SkipPenalty     float64        // cost of leaving a reference word unmatched
	DeletePenalty   float64        // cost of consuming a transcribed word as noise
	MinSimilarity   float64        // diagonal pairs below this are demoted to unmatched
	Spread          SpreadStrategy // gap distribution for interpolated runs
	PauseWeight     float64        // pause share relative to an average word
	MaxWordDuration float64        // cap on interpolated word length in seconds, 0 = none
}

// DefaultOptions returns the tuning that works well for sung lyrics.
func DefaultOptions() *Options {
	return &Options{
		SkipPenalty:     0.5,
		DeletePenalty:   0.3,
		MinSimilarity:   0.4,
		Spread:          SpreadProportional,
		PauseWeight:     1.0,
		MaxWordDuration: 1.5,
	}
}

// Stats summarizes one alignment run for the caller.
type Stats struct {
	TotalWords     int     `json:"total_words"`
	MatchedWords   int     `json:"matched_words"`
	MeanConfidence float64 `json:"mean_confidence"`
	Fallback       bool    `json:"fallback"`
}

// Result is a finished alignment: the timing document plus the statistics
// a caller needs to flag low-confidence output.
type Result struct {
	Document *timing.Document `json:"document"`
	Stats    Stats            `json:"stats"`
}

// Align reconciles a transcribed word stream against reference lyrics and
// synthesizes a word-level timing document spanning the given audio
// duration. Title and duration are stamped into the document verbatim.
// A nil opts uses DefaultOptions.
//
// Align holds no state between calls and is safe to call concurrently.
// ErrEmptyLyrics and ErrEmptyTranscript are terminal; a transcript that
// matches nothing yields a uniformly spread document with Stats.Fallback
// set instead of an error.
func Align(words []asr.Word, lyricsText, title string, duration float64, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Spread == "" {
		o.Spread = SpreadProportional
	}

	lines, err := ParseLyrics(lyricsText)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyTranscript
	}

	slots, wordSlots := buildSlots(lines)

	refNorm := make([]string, len(wordSlots))
	for k, si := range wordSlots {
		refNorm[k] = slots[si].word.Normalized
	}
	asrNorm := make([]string, len(words))
	for i, w := range words {
		asrNorm[i] = normalizeWord(w.Text)
	}

	p := alignWords(asrNorm, refNorm, NewMatcher(), o)
	for k, si := range wordSlots {
		if ai := p.asr[k]; ai >= 0 {
			slots[si].matched = true
			slots[si].start = words[ai].Start
			slots[si].end = words[ai].End
			slots[si].confidence = p.sim[k]
		}
	}

	fallback := false
	if err := synthesize(slots, duration, o); err != nil {
		if !errors.Is(err, ErrAlignmentFailed) {
			return nil, err
		}
		spreadUniform(slots, duration, o)
		fallback = true
	}

	doc := assemble(lines, slots, title, duration)
	return &Result{Document: doc, Stats: buildStats(slots, fallback)}, nil
}

// buildSlots flattens parsed lines into the synthesizer's working sequence
// and returns the slot index of every reference word in order.
func buildSlots(lines []Line) ([]slot, []int) {
	var slots []slot
	var wordSlots []int
	for li, line := range lines {
		if line.Pause {
			slots = append(slots, slot{pause: true})
			continue
		}
		for _, w := range line.Words {
			wordSlots = append(wordSlots, len(slots))
			slots = append(slots, slot{word: w, line: li})
		}
	}
	return slots, wordSlots
}

// assemble regroups timed word slots into the original line structure.
// Pause markers shaped the timing but are not emitted as lines.
func assemble(lines []Line, slots []slot, title string, duration float64) *timing.Document {
	byLine := make([][]timing.Word, len(lines))
	for _, s := range slots {
		if s.pause {
			continue
		}
		byLine[s.line] = append(byLine[s.line], timing.Word{
			Word:       s.word.Display,
			Start:      s.start,
			End:        s.end,
			Confidence: s.confidence,
		})
	}

	doc := &timing.Document{Title: title, Duration: duration}
	for li, line := range lines {
		if line.Pause {
			continue
		}
		words := byLine[li]
		tl := timing.Line{Text: line.Text, Words: words}
		if len(words) > 0 {
			tl.Start = words[0].Start
			tl.End = words[0].End
			for _, w := range words {
				tl.Start = min(tl.Start, w.Start)
				tl.End = max(tl.End, w.End)
			}
		}
		doc.Lines = append(doc.Lines, tl)
	}
	return doc
}

// buildStats computes the run summary from the finished slots.
func buildStats(slots []slot, fallback bool) Stats {
	s := Stats{Fallback: fallback}
	var confSum float64
	for i := range slots {
		if slots[i].pause {
			continue
		}
		s.TotalWords++
		confSum += slots[i].confidence
		if slots[i].matched {
			s.MatchedWords++
		}
	}
	if s.TotalWords > 0 {
		s.MeanConfidence = confSum / float64(s.TotalWords)
	}
	return s
}
