package align

import "unicode/utf8"

// UnmatchedConfidence is the reserved confidence floor assigned to words
// the aligner could not anchor to the transcript, letting the editor flag
// them for manual correction. Matched words always score above it under
// the default MinSimilarity.
const UnmatchedConfidence = 0.3

// slot is one position of the reference sequence as the synthesizer sees
// it: a word awaiting timestamps, or a pause marker claiming its share of
// silence.
type slot struct {
	pause bool
	word  RefWord
	line  int // index into the parsed lines, word slots only

	start      float64
	end        float64
	confidence float64
	matched    bool
}

// synthesize assigns start/end/confidence to every unmatched word slot.
// Matched slots already carry their transcribed timestamps; each maximal
// run of unmatched slots is interpolated into the silence between its
// matched neighbors, or extrapolated at the sequence edges using the
// average matched word duration. Returns ErrAlignmentFailed when no slot
// is matched at all.
func synthesize(slots []slot, duration float64, opts Options) error {
	var matchedDur float64
	matched := 0
	for i := range slots {
		if !slots[i].pause && slots[i].matched {
			matchedDur += slots[i].end - slots[i].start
			matched++
		}
	}
	if matched == 0 {
		return ErrAlignmentFailed
	}
	avgDur := matchedDur / float64(matched)

	for start := 0; start < len(slots); {
		if !slots[start].pause && slots[start].matched {
			start++
			continue
		}
		end := start
		for end < len(slots) && (slots[end].pause || !slots[end].matched) {
			end++
		}
		interpolateRun(slots, start, end, avgDur, duration, opts)
		start = end
	}
	return nil
}

// interpolateRun places slots[start:end), a maximal run of unmatched words
// and pause markers, relative to the matched slots on either side.
func interpolateRun(slots []slot, start, end int, avgDur, duration float64, opts Options) {
	run := slots[start:end]
	words := 0
	for i := range run {
		if !run[i].pause {
			words++
		}
	}
	if words == 0 {
		// a pause between two matched words; the silence is already there
		return
	}

	hasPrev := start > 0
	hasNext := end < len(slots)
	switch {
	case hasPrev && hasNext:
		tileGap(run, slots[start-1].end, slots[end].start, opts)
	case hasPrev:
		tileForward(run, slots[start-1].end, avgDur, duration, opts)
	case hasNext:
		tileBackward(run, slots[end].start, avgDur, opts)
	}
}

// runWeights computes the relative widths of a run's slots. A word weighs
// its rune length under SpreadProportional and 1 under SpreadUniform; a
// pause weighs PauseWeight times the run's mean word weight, so it claims
// its share of the gap and no interpolated word lands inside it.
func runWeights(run []slot, opts Options) []float64 {
	weights := make([]float64, len(run))
	var wordTotal float64
	words := 0
	for i := range run {
		if run[i].pause {
			continue
		}
		w := 1.0
		if opts.Spread != SpreadUniform {
			if n := utf8.RuneCountInString(run[i].word.Normalized); n > 1 {
				w = float64(n)
			}
		}
		weights[i] = w
		wordTotal += w
		words++
	}
	if words == 0 {
		return weights
	}
	pauseWeight := opts.PauseWeight * wordTotal / float64(words)
	for i := range run {
		if run[i].pause {
			weights[i] = pauseWeight
		}
	}
	return weights
}

// tileGap distributes a run across the silence between two matched
// neighbors. Each slot occupies its weighted share of the gap in order;
// a word starts at the front of its share, capped at MaxWordDuration,
// while a pause just consumes its share.
func tileGap(run []slot, gapStart, gapEnd float64, opts Options) {
	if gapEnd < gapStart {
		gapEnd = gapStart
	}
	weights := runWeights(run, opts)
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		total = 1
	}
	scale := (gapEnd - gapStart) / total
	pos := gapStart
	for i := range run {
		share := weights[i] * scale
		if !run[i].pause {
			dur := share
			if opts.MaxWordDuration > 0 && dur > opts.MaxWordDuration {
				dur = opts.MaxWordDuration
			}
			run[i].start = pos
			run[i].end = pos + dur
			run[i].confidence = UnmatchedConfidence
		}
		pos += share
	}
}

// tileForward extrapolates a run past the last matched word: every word
// gets the average matched duration and every pause its weighted share of
// silence, compressed evenly when the audio runs out.
func tileForward(run []slot, from, avgDur, duration float64, opts Options) {
	durs := desiredDurations(run, avgDur, opts)
	var total float64
	for _, d := range durs {
		total += d
	}
	span := duration - from
	if span < 0 {
		span = 0
	}
	if total > span && total > 0 {
		scale := span / total
		for i := range durs {
			durs[i] *= scale
		}
	}
	pos := from
	for i := range run {
		if !run[i].pause {
			run[i].start = pos
			run[i].end = pos + durs[i]
			run[i].confidence = UnmatchedConfidence
		}
		pos += durs[i]
	}
}

// tileBackward extrapolates a run before the first matched word, ending
// flush against it and compressed evenly if it would start before zero.
func tileBackward(run []slot, until, avgDur float64, opts Options) {
	durs := desiredDurations(run, avgDur, opts)
	var total float64
	for _, d := range durs {
		total += d
	}
	if total > until && total > 0 {
		scale := until / total
		for i := range durs {
			durs[i] *= scale
		}
		total = until
	}
	pos := until - total
	if pos < 0 {
		pos = 0
	}
	for i := range run {
		if !run[i].pause {
			run[i].start = pos
			run[i].end = pos + durs[i]
			run[i].confidence = UnmatchedConfidence
		}
		pos += durs[i]
	}
}

// desiredDurations is the natural span of each slot at a sequence
// boundary: the average matched duration per word, PauseWeight times that
// per pause.
func desiredDurations(run []slot, avgDur float64, opts Options) []float64 {
	durs := make([]float64, len(run))
	for i := range run {
		if run[i].pause {
			durs[i] = opts.PauseWeight * avgDur
		} else {
			durs[i] = avgDur
		}
	}
	return durs
}

// spreadUniform is the last-resort layout when nothing matched: words and
// pauses split the full audio duration with uniform word weights, every
// word at the unmatched confidence floor.
func spreadUniform(slots []slot, duration float64, opts Options) {
	if len(slots) == 0 {
		return
	}
	weights := make([]float64, len(slots))
	var total float64
	for i := range slots {
		if slots[i].pause {
			weights[i] = opts.PauseWeight
		} else {
			weights[i] = 1
		}
		total += weights[i]
	}
	if total <= 0 {
		total = 1
	}
	scale := duration / total
	pos := 0.0
	for i := range slots {
		share := weights[i] * scale
		if !slots[i].pause {
			slots[i].start = pos
			slots[i].end = pos + share
			slots[i].confidence = UnmatchedConfidence
			slots[i].matched = false
		}
		pos += share
	}
}
