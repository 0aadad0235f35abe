package align

import "strings"

// soundexClass maps A-Z (index 0-25) to Soundex digit classes. Vowels and
// H/W/Y map to '0' and act as separators between consonant runs.
var soundexClass = [26]byte{
	'0', '1', '2', '3', '0', '1', '2', '0', '0', '2', '2', '4', '5',
	'5', '0', '1', '2', '6', '2', '3', '0', '1', '0', '2', '0', '2',
}

// letterClass returns the Soundex class of a rune, '0' for anything
// outside A-Z.
func letterClass(r rune) byte {
	if r >= 'A' && r <= 'Z' {
		return soundexClass[r-'A']
	}
	return '0'
}

// Soundex returns the four-character Soundex code of a word: the first
// letter followed by the digit classes of the remaining consonants, with
// consecutive duplicates collapsed, padded or truncated to length four.
// Homophones like "there" and "their" share a code. Empty input yields "".
func Soundex(word string) string {
	runes := []rune(strings.ToUpper(word))
	if len(runes) == 0 {
		return ""
	}
	code := make([]rune, 1, 4)
	code[0] = runes[0]
	prev := letterClass(runes[0])
	for _, r := range runes[1:] {
		c := letterClass(r)
		if c != '0' && c != prev {
			code = append(code, rune(c))
		}
		prev = c
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code[:4])
}

// editDistance returns the Levenshtein distance between two strings,
// counted in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			sub := prev[j]
			if ca != cb {
				sub++
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Matcher scores how likely two normalized words are the same spoken word.
// It memoizes Soundex codes, so one Matcher should serve one alignment
// call; the cache is the only state and is never shared.
type Matcher struct {
	codes map[string]string
}

// NewMatcher returns a Matcher with an empty code cache.
func NewMatcher() *Matcher {
	return &Matcher{codes: make(map[string]string)}
}

// Code returns the memoized Soundex code for a word.
func (m *Matcher) Code(word string) string {
	if c, ok := m.codes[word]; ok {
		return c
	}
	c := Soundex(word)
	m.codes[word] = c
	return c
}

// Similarity scores two normalized words in [0,1]. Tiers: 1.0 exact match,
// 0.9 one word contains the other (contractions), 0.85 equal Soundex codes
// (homophones and near-homophones), otherwise Levenshtein similarity with
// a floor of 0.7 when the first three runes agree. Identical words always
// score higher than homophones, which always score higher than unrelated
// words at the same edit distance.
func (m *Matcher) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) >= 2 && len(rb) >= 2 && m.Code(a) == m.Code(b) {
		return 0.85
	}
	maxLen := max(len(ra), len(rb))
	lev := 1 - float64(editDistance(a, b))/float64(maxLen)
	if len(ra) >= 3 && len(rb) >= 3 && string(ra[:3]) == string(rb[:3]) && lev < 0.7 {
		return 0.7
	}
	return lev
}

// Cost is 1 - Similarity: 0 means certainly the same spoken word, 1 means
// certainly different.
func (m *Matcher) Cost(a, b string) float64 {
	return 1 - m.Similarity(a, b)
}
