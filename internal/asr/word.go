package asr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Word is a single transcribed word with timestamps in seconds, as
// delivered by a speech recognizer or forced aligner.
type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Transcript is an ordered transcribed word sequence. Duration is the
// source audio length in seconds when the producer knew it, 0 otherwise.
type Transcript struct {
	Words    []Word  `json:"words"`
	Duration float64 `json:"duration,omitempty"`
}

// whisperXWord mirrors one word of a WhisperX JSON export. Words the
// forced aligner could not place (typically numerals) carry no timestamps.
type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score float64  `json:"score"`
}

type whisperXSegment struct {
	Words []whisperXWord `json:"words"`
}

// ParseTranscript decodes transcript JSON in any of the accepted shapes:
// a bare word array, this package's {"words": [...]} document, or a
// WhisperX-style {"segments": [{"words": [...]}]} export. Words are
// returned ordered by start time.
func ParseTranscript(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("transcript is empty")
	}

	t := &Transcript{}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &t.Words); err != nil {
			return nil, fmt.Errorf("failed to parse transcript: %w", err)
		}
	} else {
		var probe struct {
			Words    []Word            `json:"words"`
			Segments []whisperXSegment `json:"segments"`
			Duration float64           `json:"duration"`
		}
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("failed to parse transcript: %w", err)
		}
		if probe.Words == nil && probe.Segments == nil {
			return nil, fmt.Errorf("transcript JSON has neither \"words\" nor \"segments\"")
		}
		t.Words = probe.Words
		t.Duration = probe.Duration
		for _, seg := range probe.Segments {
			for _, w := range seg.Words {
				if w.Start == nil || w.End == nil {
					continue
				}
				t.Words = append(t.Words, Word{
					Text:       strings.TrimSpace(w.Word),
					Start:      *w.Start,
					End:        *w.End,
					Confidence: w.Score,
				})
			}
		}
	}

	sort.SliceStable(t.Words, func(i, j int) bool {
		return t.Words[i].Start < t.Words[j].Start
	})
	return t, nil
}

// Encode renders the transcript as two-space indented JSON in the flat
// {"words": [...]} shape.
func (t *Transcript) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// EndTime returns the end of the last word, the only duration hint
// available when the producer did not record one.
func (t *Transcript) EndTime() float64 {
	var end float64
	for _, w := range t.Words {
		if w.End > end {
			end = w.End
		}
	}
	return end
}

// Text joins the transcribed words with spaces.
func (t *Transcript) Text() string {
	parts := make([]string, len(t.Words))
	for i, w := range t.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
