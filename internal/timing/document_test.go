package timing

import (
	"bytes"
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		Title:    "Test Song",
		Duration: 185.5,
		Lines: []Line{
			{
				Text:  "Hello world",
				Start: 2.5,
				End:   3.75,
				Words: []Word{
					{Word: "Hello", Start: 2.5, End: 3.0, Confidence: 1.0},
					{Word: "world", Start: 3.25, End: 3.75, Confidence: 0.85},
				},
			},
			{
				Text:  "Goodbye now",
				Start: 90.75,
				End:   92.0,
				Words: []Word{
					{Word: "Goodbye", Start: 90.75, End: 91.5, Confidence: 0.3},
					{Word: "now", Start: 91.5, End: 92.0, Confidence: 0.3},
				},
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := sampleDocument()
	first, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(first)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	second, err := decoded.Encode()
	if err != nil {
		t.Fatalf("Encode() after decode error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip changed the document:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestDecodeValues(t *testing.T) {
	doc := sampleDocument()
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Title != doc.Title || got.Duration != doc.Duration {
		t.Errorf("header = %q/%v, want %q/%v", got.Title, got.Duration, doc.Title, doc.Duration)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(got.Lines))
	}
	w := got.Lines[0].Words[1]
	if w.Word != "world" || w.Start != 3.25 || w.End != 3.75 || w.Confidence != 0.85 {
		t.Errorf("word = %+v, want world [3.25, 3.75] @0.85", w)
	}
}

func TestDecodeDefaultConfidence(t *testing.T) {
	data := []byte(`{
  "title": "Legacy",
  "duration": 10,
  "lines": [
    {
      "text": "hi there",
      "start": 1,
      "end": 2,
      "words": [
        {"word": "hi", "start": 1, "end": 1.5},
        {"word": "there", "start": 1.5, "end": 2, "confidence": 0}
      ]
    }
  ]
}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	words := doc.Lines[0].Words
	if words[0].Confidence != 1.0 {
		t.Errorf("missing confidence defaulted to %v, want 1.0", words[0].Confidence)
	}
	if words[1].Confidence != 0 {
		t.Errorf("explicit zero confidence = %v, want 0", words[1].Confidence)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte(`{"title": `)); err == nil {
		t.Error("Decode() on truncated JSON returned nil error")
	}
}

func TestValidate(t *testing.T) {
	line := func(text string, words ...Word) Line {
		return Line{Text: text, Words: words}
	}
	tests := []struct {
		name    string
		doc     Document
		wantErr string
	}{
		{
			name: "valid",
			doc: Document{Duration: 10, Lines: []Line{
				line("a b", Word{Word: "a", Start: 0, End: 1}, Word{Word: "b", Start: 1, End: 2}),
			}},
		},
		{
			name: "lines may overlap each other",
			doc: Document{Duration: 10, Lines: []Line{
				line("later", Word{Word: "later", Start: 5, End: 6}),
				line("earlier", Word{Word: "earlier", Start: 1, End: 2}),
			}},
		},
		{
			name:    "zero duration",
			doc:     Document{Lines: []Line{line("a", Word{Word: "a", End: 1})}},
			wantErr: "duration",
		},
		{
			name:    "no lines",
			doc:     Document{Duration: 10},
			wantErr: "no lines",
		},
		{
			name:    "empty line",
			doc:     Document{Duration: 10, Lines: []Line{line("x")}},
			wantErr: "no words",
		},
		{
			name: "negative start",
			doc: Document{Duration: 10, Lines: []Line{
				line("a", Word{Word: "a", Start: -0.5, End: 1}),
			}},
			wantErr: "negative start",
		},
		{
			name: "end before start",
			doc: Document{Duration: 10, Lines: []Line{
				line("a", Word{Word: "a", Start: 2, End: 1}),
			}},
			wantErr: "before start",
		},
		{
			name: "overlapping words",
			doc: Document{Duration: 10, Lines: []Line{
				line("a b", Word{Word: "a", Start: 0, End: 2}, Word{Word: "b", Start: 1, End: 3}),
			}},
			wantErr: "overlaps",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := sampleDocument().WordCount(); got != 4 {
		t.Errorf("WordCount() = %d, want 4", got)
	}
	empty := &Document{}
	if got := empty.WordCount(); got != 0 {
		t.Errorf("WordCount() on empty document = %d, want 0", got)
	}
}
