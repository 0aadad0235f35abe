package timing

import (
	"encoding/json"
	"fmt"
)

// Word is a single display word with its time span in seconds.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Line groups the timed words of one lyric line. Start and End are derived
// from the first and last word of the line.
type Line struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Document is the word-level timing data for a whole song. It is both the
// engine output and the on-disk export format consumed by the renderer and
// the timeline editor, so decoding a previously encoded document and
// encoding it again yields the same JSON values.
type Document struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Lines    []Line  `json:"lines"`
}

// UnmarshalJSON keeps the historical default of 1.0 for words stored
// without a confidence key.
func (w *Word) UnmarshalJSON(data []byte) error {
	type alias Word
	aux := struct {
		*alias
		Confidence *float64 `json:"confidence"`
	}{alias: (*alias)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Confidence == nil {
		w.Confidence = 1.0
	} else {
		w.Confidence = *aux.Confidence
	}
	return nil
}

// Encode renders the document as two-space indented JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timing data: %w", err)
	}
	return data, nil
}

// Decode parses a timing document from JSON.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse timing data: %w", err)
	}
	return &d, nil
}

// Validate checks the invariants an imported or edited document must hold
// before it is stored: a positive duration, at least one line with words,
// and time-ordered, non-overlapping words within each line. Lines are not
// checked against each other; the timeline editor moves them independently.
func (d *Document) Validate() error {
	if d.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", d.Duration)
	}
	if len(d.Lines) == 0 {
		return fmt.Errorf("document has no lines")
	}
	for i, line := range d.Lines {
		if len(line.Words) == 0 {
			return fmt.Errorf("line %d (%q) has no words", i, line.Text)
		}
		for j, w := range line.Words {
			if w.Start < 0 {
				return fmt.Errorf("line %d word %d (%q): negative start %.3f", i, j, w.Word, w.Start)
			}
			if w.End < w.Start {
				return fmt.Errorf("line %d word %d (%q): end %.3f before start %.3f", i, j, w.Word, w.End, w.Start)
			}
			if j > 0 && w.Start < line.Words[j-1].End {
				return fmt.Errorf("line %d word %d (%q): overlaps previous word", i, j, w.Word)
			}
		}
	}
	return nil
}

// WordCount returns the number of words across all lines.
func (d *Document) WordCount() int {
	n := 0
	for _, line := range d.Lines {
		n += len(line.Words)
	}
	return n
}
