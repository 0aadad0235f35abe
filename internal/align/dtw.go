package align

// Backtrack moves recorded while filling the cost table.
const (
	moveMatch  = byte(1) // diagonal: pair asr[i-1] with ref[j-1]
	moveSkip   = byte(2) // left: ref[j-1] has no transcribed counterpart
	moveDelete = byte(3) // up: asr[i-1] is noise, consumed without advancing
)

// pairing is the aligner output: for every reference word index, the index
// of the transcribed word it was paired with (or -1) and the similarity of
// that pair.
type pairing struct {
	asr []int
	sim []float64
}

// matched counts the reference words that were paired.
func (p pairing) matched() int {
	n := 0
	for _, a := range p.asr {
		if a >= 0 {
			n++
		}
	}
	return n
}

// alignWords computes a minimum-cost monotonic correspondence between the
// transcribed word sequence (length m) and the reference word sequence
// (length n) over an (m+1)x(n+1) dynamic-programming table. Substituting a
// pair costs Matcher.Cost, consuming a transcribed word without advancing
// the reference costs DeletePenalty, and leaving a reference word
// unmatched costs SkipPenalty. On equal cost the diagonal move wins, then
// the skip, then the delete, so the path uses every piece of transcribed
// evidence it can. Diagonal pairs whose similarity falls below
// MinSimilarity are demoted to unmatched; the path still consumes the
// transcribed word.
//
// The table is a flat arena indexed by i*(n+1)+j, and backtracking is an
// index walk over a parallel move table.
func alignWords(asrNorm, refNorm []string, m *Matcher, opts Options) pairing {
	mLen, nLen := len(asrNorm), len(refNorm)
	p := pairing{asr: make([]int, nLen), sim: make([]float64, nLen)}
	for j := range p.asr {
		p.asr[j] = -1
	}
	if mLen == 0 || nLen == 0 {
		return p
	}

	cols := nLen + 1
	table := make([]float64, (mLen+1)*cols)
	moves := make([]byte, (mLen+1)*cols)
	for i := 1; i <= mLen; i++ {
		table[i*cols] = float64(i) * opts.DeletePenalty
		moves[i*cols] = moveDelete
	}
	for j := 1; j <= nLen; j++ {
		table[j] = float64(j) * opts.SkipPenalty
		moves[j] = moveSkip
	}

	for i := 1; i <= mLen; i++ {
		for j := 1; j <= nLen; j++ {
			best := table[(i-1)*cols+j-1] + m.Cost(asrNorm[i-1], refNorm[j-1])
			move := moveMatch
			if skip := table[i*cols+j-1] + opts.SkipPenalty; skip < best {
				best = skip
				move = moveSkip
			}
			if del := table[(i-1)*cols+j] + opts.DeletePenalty; del < best {
				best = del
				move = moveDelete
			}
			table[i*cols+j] = best
			moves[i*cols+j] = move
		}
	}

	for i, j := mLen, nLen; i > 0 || j > 0; {
		switch moves[i*cols+j] {
		case moveMatch:
			if sim := m.Similarity(asrNorm[i-1], refNorm[j-1]); sim >= opts.MinSimilarity {
				p.asr[j-1] = i - 1
				p.sim[j-1] = sim
			}
			i--
			j--
		case moveSkip:
			j--
		default:
			i--
		}
	}
	return p
}
