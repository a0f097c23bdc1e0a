// Package match compares categorical values (season, occasion, color) against
// user-supplied filter values.
package match

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the minimum partial-ratio score for a fuzzy match.
const DefaultFuzzyThreshold = 70

// Matcher scores how well a catalog value matches a filter value.
type Matcher interface {
	// Similarity returns a score in [0,100].
	Similarity(value, filter string) int
	// Matches reports whether value clears the matcher's threshold.
	Matches(value, filter string) bool
}

// Exact matches case-insensitively equal values only.
type Exact struct{}

// Similarity returns 100 for equal values (ignoring case and surrounding space), 0 otherwise.
func (Exact) Similarity(value, filter string) int {
	v, f := normalize(value), normalize(filter)
	if v == "" || f == "" || v != f {
		return 0
	}
	return 100
}

// Matches reports exact equality.
func (e Exact) Matches(value, filter string) bool {
	return e.Similarity(value, filter) == 100
}

// Fuzzy matches by partial-ratio similarity: the shorter string is slid across
// the longer one and the best normalized Levenshtein ratio wins, so "red"
// fully matches "Dark Red".
type Fuzzy struct {
	threshold int
}

// NewFuzzy creates a fuzzy matcher. A threshold outside (0,100] falls back to the default.
func NewFuzzy(threshold int) Fuzzy {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultFuzzyThreshold
	}
	return Fuzzy{threshold: threshold}
}

// Threshold returns the minimum matching score.
func (f Fuzzy) Threshold() int { return f.threshold }

// Similarity returns the partial ratio of value and filter.
func (Fuzzy) Similarity(value, filter string) int {
	return PartialRatio(value, filter)
}

// Matches reports whether the partial ratio reaches the threshold.
func (f Fuzzy) Matches(value, filter string) bool {
	return PartialRatio(value, filter) >= f.threshold
}

// Ratio is the normalized Levenshtein similarity of a and b in [0,100].
func Ratio(a, b string) int {
	ra, rb := []rune(normalize(a)), []rune(normalize(b))
	return ratio(ra, rb)
}

// PartialRatio is the best Ratio between the shorter string and every
// equally long window of the longer one. Empty input scores 0.
func PartialRatio(a, b string) int {
	ra, rb := []rune(normalize(a)), []rune(normalize(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(short, long[i:i+len(short)]); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a, b []rune) int {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(string(a), string(b))
	return int(math.Round(100 * float64(longest-d) / float64(longest)))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
