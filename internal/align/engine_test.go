package align

import (
	"errors"
	"math"
	"testing"

	"lyrsync/internal/asr"
	"lyrsync/internal/timing"
)

func almostEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// checkDocument asserts the structural invariants every alignment result
// must satisfy: words inside [0, duration], non-negative spans, and no
// overlap between consecutive words of a line.
func checkDocument(t *testing.T, doc *timing.Document, duration float64) {
	t.Helper()
	const eps = 1e-9
	for li, line := range doc.Lines {
		for wi, w := range line.Words {
			if w.Start < -eps || w.End > duration+eps {
				t.Errorf("line %d word %d [%v, %v] outside [0, %v]", li, wi, w.Start, w.End, duration)
			}
			if w.End < w.Start-eps {
				t.Errorf("line %d word %d ends at %v before start %v", li, wi, w.End, w.Start)
			}
			if wi > 0 && w.Start < line.Words[wi-1].End-eps {
				t.Errorf("line %d word %d starts at %v inside previous word ending %v",
					li, wi, w.Start, line.Words[wi-1].End)
			}
		}
	}
}

func TestAlignExactTranscript(t *testing.T) {
	words := []asr.Word{
		{Text: "hello", Start: 1.0, End: 1.4, Confidence: 0.9},
		{Text: "world", Start: 1.5, End: 1.9, Confidence: 0.9},
	}
	res, err := Align(words, "Hello world", "Test", 10.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	checkDocument(t, doc, 10.0)

	if doc.Title != "Test" || !almostEq(doc.Duration, 10.0) {
		t.Errorf("document header = %q/%v, want Test/10", doc.Title, doc.Duration)
	}
	if len(doc.Lines) != 1 || len(doc.Lines[0].Words) != 2 {
		t.Fatalf("got %d lines, want 1 line with 2 words", len(doc.Lines))
	}
	line := doc.Lines[0]
	if !almostEq(line.Start, 1.0) || !almostEq(line.End, 1.9) {
		t.Errorf("line span = [%v, %v], want [1.0, 1.9]", line.Start, line.End)
	}
	for i, want := range []timing.Word{
		{Word: "Hello", Start: 1.0, End: 1.4, Confidence: 1.0},
		{Word: "world", Start: 1.5, End: 1.9, Confidence: 1.0},
	} {
		got := line.Words[i]
		if got.Word != want.Word || !almostEq(got.Start, want.Start) ||
			!almostEq(got.End, want.End) || !almostEq(got.Confidence, want.Confidence) {
			t.Errorf("word %d = %+v, want %+v", i, got, want)
		}
	}
	if res.Stats.TotalWords != 2 || res.Stats.MatchedWords != 2 {
		t.Errorf("stats = %+v, want 2 of 2 matched", res.Stats)
	}
	if !almostEq(res.Stats.MeanConfidence, 1.0) || res.Stats.Fallback {
		t.Errorf("stats = %+v, want mean confidence 1.0 and no fallback", res.Stats)
	}
}

func TestAlignHomophones(t *testing.T) {
	words := []asr.Word{
		{Text: "go", Start: 0.5, End: 0.7},
		{Text: "there", Start: 0.8, End: 1.1},
		{Text: "now", Start: 1.2, End: 1.5},
	}
	res, err := Align(words, "Go their now", "", 2.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	line := res.Document.Lines[0]
	if len(line.Words) != 3 {
		t.Fatalf("got %d words, want 3", len(line.Words))
	}
	their := line.Words[1]
	if !almostEq(their.Start, 0.8) || !almostEq(their.End, 1.1) {
		t.Errorf("homophone span = [%v, %v], want transcript times [0.8, 1.1]", their.Start, their.End)
	}
	if !almostEq(their.Confidence, 0.85) {
		t.Errorf("homophone confidence = %v, want 0.85", their.Confidence)
	}
	if res.Stats.MatchedWords != 3 {
		t.Errorf("matched = %d, want all 3", res.Stats.MatchedWords)
	}
}

func TestAlignRepeatedWords(t *testing.T) {
	words := []asr.Word{
		{Text: "hey", Start: 1.0, End: 1.2},
		{Text: "hey", Start: 2.0, End: 2.2},
		{Text: "hey", Start: 3.0, End: 3.2},
		{Text: "hey", Start: 4.0, End: 4.2},
	}
	res, err := Align(words, "Hey hey\nHey hey", "", 5.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	// repeated occurrences must consume the transcript in order, so the
	// second line lands strictly after the first
	wantStarts := []float64{1.0, 2.0, 3.0, 4.0}
	i := 0
	for _, line := range doc.Lines {
		for _, w := range line.Words {
			if !almostEq(w.Start, wantStarts[i]) {
				t.Errorf("word %d starts at %v, want %v", i, w.Start, wantStarts[i])
			}
			i++
		}
	}
	if doc.Lines[1].Start <= doc.Lines[0].End {
		t.Errorf("second line [%v] does not follow first line end [%v]",
			doc.Lines[1].Start, doc.Lines[0].End)
	}
}

func TestAlignInterpolatesMissingLine(t *testing.T) {
	// the transcript covers only the first line; the second line is
	// placed into the remaining audio after the blank-line pause.
	words := []asr.Word{
		{Text: "hello", Start: 1.0, End: 1.4, Confidence: 0.9},
		{Text: "world", Start: 1.5, End: 1.9, Confidence: 0.9},
	}
	res, err := Align(words, "Hello world\n\nGoodbye now", "", 10.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	checkDocument(t, doc, 10.0)
	if len(doc.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(doc.Lines))
	}
	first, second := doc.Lines[0], doc.Lines[1]
	if !(first.Start < first.End) || !(second.Start < second.End) {
		t.Errorf("line spans [%v, %v] and [%v, %v], want start < end for both",
			first.Start, first.End, second.Start, second.End)
	}
	if second.Start <= first.End {
		t.Errorf("interpolated line starts at %v, want after %v", second.Start, first.End)
	}
	// average matched duration is 0.4s, and the pause claims one average
	// word of silence before the line begins
	goodbye, now := second.Words[0], second.Words[1]
	if !almostEq(goodbye.Start, 2.3) || !almostEq(goodbye.End, 2.7) {
		t.Errorf("goodbye = [%v, %v], want [2.3, 2.7]", goodbye.Start, goodbye.End)
	}
	if !almostEq(now.Start, 2.7) || !almostEq(now.End, 3.1) {
		t.Errorf("now = [%v, %v], want [2.7, 3.1]", now.Start, now.End)
	}
	for i, w := range second.Words {
		if !almostEq(w.Confidence, UnmatchedConfidence) {
			t.Errorf("interpolated word %d confidence = %v, want %v", i, w.Confidence, UnmatchedConfidence)
		}
	}
	if res.Stats.MatchedWords != 2 || res.Stats.TotalWords != 4 {
		t.Errorf("stats = %+v, want 2 of 4 matched", res.Stats)
	}
	if !almostEq(res.Stats.MeanConfidence, (1.0+1.0+0.3+0.3)/4) {
		t.Errorf("mean confidence = %v, want 0.65", res.Stats.MeanConfidence)
	}
}

func TestAlignEmptyTranscript(t *testing.T) {
	_, err := Align(nil, "Hello world", "", 10.0, nil)
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("Align() error = %v, want ErrEmptyTranscript", err)
	}
}

func TestAlignEmptyLyrics(t *testing.T) {
	words := []asr.Word{{Text: "hello", Start: 0, End: 0.5}}
	for _, lyrics := range []string{"", "\n\n", "[Chorus]\n[Verse 1]"} {
		if _, err := Align(words, lyrics, "", 10.0, nil); !errors.Is(err, ErrEmptyLyrics) {
			t.Errorf("Align(%q) error = %v, want ErrEmptyLyrics", lyrics, err)
		}
	}
}

func TestAlignFallbackSpread(t *testing.T) {
	// nothing in the transcript resembles the lyrics, so the words are
	// spread uniformly over the full duration instead of failing.
	words := []asr.Word{
		{Text: "zzz", Start: 0.5, End: 1.0},
		{Text: "qqq", Start: 1.5, End: 2.0},
	}
	res, err := Align(words, "Alpha beta\n\nGamma delta", "", 10.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if !res.Stats.Fallback {
		t.Fatal("Stats.Fallback = false, want true")
	}
	if res.Stats.MatchedWords != 0 {
		t.Errorf("matched = %d, want 0", res.Stats.MatchedWords)
	}
	doc := res.Document
	checkDocument(t, doc, 10.0)
	wants := [][2]float64{{0, 2}, {2, 4}, {6, 8}, {8, 10}}
	i := 0
	for _, line := range doc.Lines {
		for _, w := range line.Words {
			if !almostEq(w.Start, wants[i][0]) || !almostEq(w.End, wants[i][1]) {
				t.Errorf("word %d = [%v, %v], want [%v, %v]", i, w.Start, w.End, wants[i][0], wants[i][1])
			}
			if !almostEq(w.Confidence, UnmatchedConfidence) {
				t.Errorf("word %d confidence = %v, want %v", i, w.Confidence, UnmatchedConfidence)
			}
			i++
		}
	}
}

func TestAlignKeepsEveryWord(t *testing.T) {
	// a token that normalizes to nothing still occupies a timed slot
	words := []asr.Word{
		{Text: "stop", Start: 0, End: 0.4},
		{Text: "go", Start: 1.0, End: 1.4},
	}
	res, err := Align(words, "Stop ! go", "", 5.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	checkDocument(t, doc, 5.0)
	if got := doc.WordCount(); got != 3 {
		t.Fatalf("WordCount() = %d, want 3", got)
	}
	line := doc.Lines[0]
	if line.Words[1].Word != "!" {
		t.Errorf("middle word = %q, want the verbatim token", line.Words[1].Word)
	}
	bang := line.Words[1]
	if !almostEq(bang.Start, 0.4) || !almostEq(bang.End, 1.0) {
		t.Errorf("interpolated token = [%v, %v], want [0.4, 1.0]", bang.Start, bang.End)
	}
	if res.Stats.MatchedWords != 2 {
		t.Errorf("matched = %d, want 2", res.Stats.MatchedWords)
	}
}

func TestAlignRespectsPauseGap(t *testing.T) {
	// only the words around the pause are matched; the interpolated
	// words must not spill into the pause's share of the silence.
	words := []asr.Word{
		{Text: "aaa", Start: 1.0, End: 1.5},
		{Text: "ddd", Start: 8.0, End: 8.5},
	}
	res, err := Align(words, "Aaa bbb\n\nCcc ddd", "", 10.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	checkDocument(t, doc, 10.0)
	bbb := doc.Lines[0].Words[1]
	ccc := doc.Lines[1].Words[0]
	if !almostEq(bbb.Start, 1.5) || !almostEq(bbb.End, 3.0) {
		t.Errorf("bbb = [%v, %v], want [1.5, 3.0]", bbb.Start, bbb.End)
	}
	// gap is 6.5s over weights 3+3+3, words capped at 1.5s
	share := 3 * (6.5 / 9)
	if wantStart := 1.5 + 2*share; !almostEq(ccc.Start, wantStart) {
		t.Errorf("ccc starts at %v, want %v", ccc.Start, wantStart)
	}
	if !almostEq(ccc.End-ccc.Start, 1.5) {
		t.Errorf("ccc duration = %v, want capped 1.5", ccc.End-ccc.Start)
	}
	if gap := ccc.Start - bbb.End; gap < 2.0 {
		t.Errorf("pause silence = %v, want at least 2.0", gap)
	}
}

func TestAlignSpreadStrategies(t *testing.T) {
	words := []asr.Word{
		{Text: "one", Start: 0, End: 0.5},
		{Text: "two", Start: 5.0, End: 5.5},
	}
	lyrics := "One hi elephant two"

	prop, err := Align(words, lyrics, "", 10.0, nil)
	if err != nil {
		t.Fatalf("Align(proportional) error = %v", err)
	}
	uniOpts := DefaultOptions()
	uniOpts.Spread = SpreadUniform
	uni, err := Align(words, lyrics, "", 10.0, uniOpts)
	if err != nil {
		t.Fatalf("Align(uniform) error = %v", err)
	}

	propHi := prop.Document.Lines[0].Words[1]
	uniHi := uni.Document.Lines[0].Words[1]
	// proportional: "hi" takes 2 of 10 weight units of the 4.5s gap
	if !almostEq(propHi.End-propHi.Start, 0.9) {
		t.Errorf("proportional hi duration = %v, want 0.9", propHi.End-propHi.Start)
	}
	// uniform: both words take equal 2.25s shares, capped at 1.5s
	if !almostEq(uniHi.End-uniHi.Start, 1.5) {
		t.Errorf("uniform hi duration = %v, want 1.5", uniHi.End-uniHi.Start)
	}
	propEl := prop.Document.Lines[0].Words[2]
	uniEl := uni.Document.Lines[0].Words[2]
	if !almostEq(propEl.Start, 1.4) {
		t.Errorf("proportional elephant starts at %v, want 1.4", propEl.Start)
	}
	if !almostEq(uniEl.Start, 2.75) {
		t.Errorf("uniform elephant starts at %v, want 2.75", uniEl.Start)
	}
}

func TestAlignExtrapolatesLeadingWords(t *testing.T) {
	words := []asr.Word{{Text: "three", Start: 5.0, End: 5.5}}
	res, err := Align(words, "One two three", "", 10.0, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	checkDocument(t, doc, 10.0)
	ws := doc.Lines[0].Words
	if !almostEq(ws[0].Start, 4.0) || !almostEq(ws[0].End, 4.5) {
		t.Errorf("one = [%v, %v], want [4.0, 4.5]", ws[0].Start, ws[0].End)
	}
	if !almostEq(ws[1].Start, 4.5) || !almostEq(ws[1].End, 5.0) {
		t.Errorf("two = [%v, %v], want [4.5, 5.0]", ws[1].Start, ws[1].End)
	}
	if !almostEq(ws[2].Start, 5.0) || !almostEq(ws[2].Confidence, 1.0) {
		t.Errorf("three = %+v, want matched at 5.0", ws[2])
	}
}

func TestAlignCompressesTrailingWords(t *testing.T) {
	words := []asr.Word{{Text: "go", Start: 8.0, End: 8.5}}
	res, err := Align(words, "Go la la la la la la la", "", 10.25, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	doc := res.Document
	checkDocument(t, doc, 10.25)
	ws := doc.Lines[0].Words
	if len(ws) != 8 {
		t.Fatalf("got %d words, want 8", len(ws))
	}
	for i := 1; i < len(ws); i++ {
		if !almostEq(ws[i].End-ws[i].Start, 0.25) {
			t.Errorf("word %d duration = %v, want compressed 0.25", i, ws[i].End-ws[i].Start)
		}
	}
	if last := ws[len(ws)-1]; !almostEq(last.End, 10.25) {
		t.Errorf("last word ends at %v, want 10.25", last.End)
	}
}
