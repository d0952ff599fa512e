// Package match scores how close two game titles are after stripping the
// storefront decorations that make the same game look different across
// catalogs ("STAR WARS™: Squadrons" vs "Star Wars: Squadrons").
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result is a successful match against a candidate set.
type Result struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

var symbolReplacer = strings.NewReplacer(
	"™", " ", "®", " ", "©", " ",
	"&", " and ", "+", " and ",
)

// NFKD decomposition followed by combining-mark removal folds accented
// letters to their ASCII base ("Pokémon" -> "Pokemon").
var markStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize maps a raw title to its canonical comparison form. The rules are
// fixed because they decide match outcomes:
//  1. trademark symbols become separators, "&" and "+" become "and"
//  2. diacritics are stripped via NFKD decomposition
//  3. everything is lower-cased
//  4. any non-alphanumeric run collapses to a single space
//  5. leftover standalone "tm" tokens (from spelled-out "(tm)") are dropped
func Normalize(title string) string {
	s := symbolReplacer.Replace(title)
	if folded, _, err := transform.String(markStripper, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if w == "tm" {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Similarity returns an edit-distance score in [0,1] for two raw titles;
// 1 means the normalized forms are identical.
func Similarity(a, b string) float64 {
	return similarity(Normalize(a), Normalize(b))
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// Match returns the best-scoring candidate for query, or ok=false when the
// best score is strictly below threshold. Score ties are broken by the
// shorter candidate, then by lexicographic order, so the result is
// reproducible for any candidate ordering. Match is pure: it never touches
// the network or mutates its inputs.
func Match(query string, candidates []string, threshold float64) (Result, bool) {
	nq := Normalize(query)
	best := Result{Score: -1}
	for _, cand := range candidates {
		nc := Normalize(cand)
		if nc == "" {
			continue
		}
		r := Result{Candidate: cand, Score: similarity(nq, nc)}
		if better(r, best) {
			best = r
		}
	}
	if best.Score < threshold || best.Score < 0 {
		return Result{}, false
	}
	return best, true
}

func better(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.Candidate) != len(b.Candidate) {
		return len(a.Candidate) < len(b.Candidate)
	}
	return a.Candidate < b.Candidate
}

// levenshtein is the classic two-row edit distance over runes.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := curr[j-1] + 1 // insertion
			if del := prev[j] + 1; del < m {
				m = del
			}
			if sub := prev[j-1] + cost; sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
