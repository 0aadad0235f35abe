package align

import (
	"errors"
	"testing"
)

func matchedSlot(word string, start, end float64) slot {
	return slot{
		word:       RefWord{Display: word, Normalized: word},
		start:      start,
		end:        end,
		confidence: 1.0,
		matched:    true,
	}
}

func wordSlot(word string) slot {
	return slot{word: RefWord{Display: word, Normalized: word}}
}

func TestSynthesizeNoMatches(t *testing.T) {
	slots := []slot{wordSlot("one"), wordSlot("two")}
	err := synthesize(slots, 10, *DefaultOptions())
	if !errors.Is(err, ErrAlignmentFailed) {
		t.Errorf("synthesize() error = %v, want ErrAlignmentFailed", err)
	}
}

func TestSynthesizeMiddleGap(t *testing.T) {
	slots := []slot{
		matchedSlot("one", 1.0, 1.5),
		wordSlot("middle"),
		matchedSlot("two", 4.5, 5.0),
	}
	if err := synthesize(slots, 10, *DefaultOptions()); err != nil {
		t.Fatalf("synthesize() error = %v", err)
	}
	mid := slots[1]
	if !almostEq(mid.start, 1.5) {
		t.Errorf("interpolated start = %v, want 1.5", mid.start)
	}
	// the 3s gap exceeds the word cap, so the word keeps MaxWordDuration
	if !almostEq(mid.end, 3.0) {
		t.Errorf("interpolated end = %v, want 3.0", mid.end)
	}
	if !almostEq(mid.confidence, UnmatchedConfidence) {
		t.Errorf("interpolated confidence = %v, want %v", mid.confidence, UnmatchedConfidence)
	}
}

func TestSynthesizeZeroGap(t *testing.T) {
	// adjacent matched words leave no room; the middle word degenerates
	// to a zero-width span instead of overlapping its neighbors.
	slots := []slot{
		matchedSlot("one", 1.0, 1.5),
		wordSlot("middle"),
		matchedSlot("two", 1.5, 2.0),
	}
	if err := synthesize(slots, 10, *DefaultOptions()); err != nil {
		t.Fatalf("synthesize() error = %v", err)
	}
	mid := slots[1]
	if !almostEq(mid.start, 1.5) || !almostEq(mid.end, 1.5) {
		t.Errorf("degenerate span = [%v, %v], want [1.5, 1.5]", mid.start, mid.end)
	}
}

func TestSynthesizePauseClaimsGap(t *testing.T) {
	// the pause weighs as much as an average word here, so the two
	// unmatched words may not tile the whole gap between the anchors.
	slots := []slot{
		matchedSlot("one", 0.0, 1.0),
		wordSlot("aa"),
		{pause: true},
		wordSlot("bb"),
		matchedSlot("two", 7.0, 8.0),
	}
	if err := synthesize(slots, 10, *DefaultOptions()); err != nil {
		t.Fatalf("synthesize() error = %v", err)
	}
	// gap 6.0, weights 2 + 2 (pause) + 2: each slot gets 2.0 of gap,
	// words capped at MaxWordDuration 1.5
	first, second := slots[1], slots[3]
	if !almostEq(first.start, 1.0) || !almostEq(first.end, 2.5) {
		t.Errorf("first word = [%v, %v], want [1.0, 2.5]", first.start, first.end)
	}
	if !almostEq(second.start, 5.0) || !almostEq(second.end, 6.5) {
		t.Errorf("second word = [%v, %v], want [5.0, 6.5]", second.start, second.end)
	}
	if second.start-first.end < 2.0 {
		t.Errorf("pause silence squeezed to %v, want at least 2.0", second.start-first.end)
	}
}

func TestSynthesizePauseBetweenMatches(t *testing.T) {
	// a pause flanked by matched words needs no placement at all
	slots := []slot{
		matchedSlot("one", 0.0, 1.0),
		{pause: true},
		matchedSlot("two", 5.0, 6.0),
	}
	if err := synthesize(slots, 10, *DefaultOptions()); err != nil {
		t.Errorf("synthesize() error = %v", err)
	}
}

func TestSynthesizeTailCompression(t *testing.T) {
	// seven trailing words want 0.5s each but only 1.75s of audio
	// remains; they compress evenly and still end by the duration.
	slots := []slot{matchedSlot("go", 8.0, 8.5)}
	for i := 0; i < 7; i++ {
		slots = append(slots, wordSlot("la"))
	}
	if err := synthesize(slots, 10.25, *DefaultOptions()); err != nil {
		t.Fatalf("synthesize() error = %v", err)
	}
	prevEnd := 8.5
	for i := 1; i < len(slots); i++ {
		s := slots[i]
		if s.start < prevEnd-1e-9 {
			t.Errorf("slot %d starts at %v before previous end %v", i, s.start, prevEnd)
		}
		if !almostEq(s.end-s.start, 0.25) {
			t.Errorf("slot %d duration = %v, want 0.25", i, s.end-s.start)
		}
		prevEnd = s.end
	}
	if !almostEq(slots[len(slots)-1].end, 10.25) {
		t.Errorf("last word ends at %v, want 10.25", slots[len(slots)-1].end)
	}
}

func TestSynthesizeHeadExtrapolation(t *testing.T) {
	slots := []slot{
		wordSlot("one"),
		wordSlot("two"),
		matchedSlot("three", 5.0, 5.5),
	}
	if err := synthesize(slots, 10, *DefaultOptions()); err != nil {
		t.Fatalf("synthesize() error = %v", err)
	}
	if !almostEq(slots[0].start, 4.0) || !almostEq(slots[0].end, 4.5) {
		t.Errorf("first word = [%v, %v], want [4.0, 4.5]", slots[0].start, slots[0].end)
	}
	if !almostEq(slots[1].start, 4.5) || !almostEq(slots[1].end, 5.0) {
		t.Errorf("second word = [%v, %v], want [4.5, 5.0]", slots[1].start, slots[1].end)
	}
}

func TestSpreadUniform(t *testing.T) {
	slots := []slot{
		wordSlot("alpha"),
		wordSlot("beta"),
		{pause: true},
		wordSlot("gamma"),
		wordSlot("delta"),
	}
	spreadUniform(slots, 10, *DefaultOptions())
	// five equal shares of 2.0 with the pause holding [4, 6)
	wants := [][2]float64{{0, 2}, {2, 4}, {6, 8}, {8, 10}}
	idx := 0
	for i := range slots {
		if slots[i].pause {
			continue
		}
		if !almostEq(slots[i].start, wants[idx][0]) || !almostEq(slots[i].end, wants[idx][1]) {
			t.Errorf("word %d = [%v, %v], want [%v, %v]",
				idx, slots[i].start, slots[i].end, wants[idx][0], wants[idx][1])
		}
		if !almostEq(slots[i].confidence, UnmatchedConfidence) {
			t.Errorf("word %d confidence = %v, want %v", idx, slots[i].confidence, UnmatchedConfidence)
		}
		idx++
	}
}
