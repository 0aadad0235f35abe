package asr

import (
	"strings"
	"testing"
)

func TestParseTranscriptBareArray(t *testing.T) {
	data := []byte(`[
  {"text": "hello", "start": 1.0, "end": 1.4, "confidence": 0.9},
  {"text": "world", "start": 1.5, "end": 1.9, "confidence": 0.9}
]`)
	tr, err := ParseTranscript(data)
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	if len(tr.Words) != 2 {
		t.Fatalf("got %d words, want 2", len(tr.Words))
	}
	want := Word{Text: "hello", Start: 1.0, End: 1.4, Confidence: 0.9}
	if tr.Words[0] != want {
		t.Errorf("word 0 = %+v, want %+v", tr.Words[0], want)
	}
	if tr.Duration != 0 {
		t.Errorf("duration = %v, want 0 for a bare array", tr.Duration)
	}
}

func TestParseTranscriptWordsDocument(t *testing.T) {
	data := []byte(`{
  "words": [{"text": "go", "start": 0.5, "end": 0.75, "confidence": 1}],
  "duration": 185.5
}`)
	tr, err := ParseTranscript(data)
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	if len(tr.Words) != 1 || tr.Words[0].Text != "go" {
		t.Errorf("words = %+v, want the single word go", tr.Words)
	}
	if tr.Duration != 185.5 {
		t.Errorf("duration = %v, want 185.5", tr.Duration)
	}
}

func TestParseTranscriptWhisperX(t *testing.T) {
	// the forced aligner leaves numerals without timestamps, and pads
	// words with spaces; segments are not necessarily time-ordered
	data := []byte(`{
  "segments": [
    {"words": [
      {"word": " Hello", "start": 1.0, "end": 1.4, "score": 0.95},
      {"word": "1984", "score": 0.0},
      {"word": "world ", "start": 1.5, "end": 1.9, "score": 0.8}
    ]},
    {"words": [
      {"word": "again", "start": 0.5, "end": 0.9, "score": 0.7}
    ]}
  ]
}`)
	tr, err := ParseTranscript(data)
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	wantTexts := []string{"again", "Hello", "world"}
	if len(tr.Words) != len(wantTexts) {
		t.Fatalf("got %d words, want %d", len(tr.Words), len(wantTexts))
	}
	for i, want := range wantTexts {
		if tr.Words[i].Text != want {
			t.Errorf("word %d = %q, want %q", i, tr.Words[i].Text, want)
		}
	}
	if tr.Words[1].Confidence != 0.95 {
		t.Errorf("score not carried over, confidence = %v, want 0.95", tr.Words[1].Confidence)
	}
}

func TestParseTranscriptSortsWords(t *testing.T) {
	data := []byte(`[
  {"text": "b", "start": 2, "end": 3},
  {"text": "a", "start": 0, "end": 1},
  {"text": "c", "start": 4, "end": 5}
]`)
	tr, err := ParseTranscript(data)
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	if got := tr.Text(); got != "a b c" {
		t.Errorf("Text() = %q, want sorted %q", got, "a b c")
	}
}

func TestParseTranscriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty input", "", "empty"},
		{"whitespace only", "  \n ", "empty"},
		{"no recognized keys", `{"tokens": []}`, "neither"},
		{"malformed object", `{"words": [`, "failed to parse"},
		{"malformed array", `[{"text": }]`, "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTranscript([]byte(tt.data))
			if err == nil {
				t.Fatalf("ParseTranscript(%q) = nil error", tt.data)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestTranscriptEncodeRoundTrip(t *testing.T) {
	tr := &Transcript{
		Words: []Word{
			{Text: "one", Start: 0.25, End: 0.5, Confidence: 1},
			{Text: "two", Start: 0.75, End: 1.0, Confidence: 0.5},
		},
		Duration: 2.5,
	}
	data, err := tr.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := ParseTranscript(data)
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	if len(back.Words) != 2 || back.Words[1] != tr.Words[1] || back.Duration != 2.5 {
		t.Errorf("round trip = %+v, want %+v", back, tr)
	}
}

func TestTranscriptEndTime(t *testing.T) {
	tr := &Transcript{Words: []Word{
		{Text: "a", Start: 0, End: 1.5},
		{Text: "b", Start: 2, End: 2.5},
	}}
	if got := tr.EndTime(); got != 2.5 {
		t.Errorf("EndTime() = %v, want 2.5", got)
	}
	empty := &Transcript{}
	if got := empty.EndTime(); got != 0 {
		t.Errorf("EndTime() on empty transcript = %v, want 0", got)
	}
}
