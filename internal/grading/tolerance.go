package grading

import "strings"

// Tolerance decides whether two normalized answers are close enough.
// A pair matches when the edit distance is at most MaxDistance, or the
// distance ratio is strictly below MaxRatio, or one contains the other.
type Tolerance struct {
	MaxDistance int
	MaxRatio    float64
}

var (
	// FillInBlankTolerance applies to fill_in_blank questions.
	FillInBlankTolerance = Tolerance{MaxDistance: 2, MaxRatio: 0.20}

	// OpenEndedFallbackTolerance applies to open-ended answers when the
	// semantic judge is unavailable. Open answers are longer and noisier.
	OpenEndedFallbackTolerance = Tolerance{MaxDistance: 3, MaxRatio: 0.25}
)

// Match compares two already normalized strings. An empty side never
// matches.
func (t Tolerance) Match(given, expected string) bool {
	if given == "" || expected == "" {
		return false
	}
	if strings.Contains(given, expected) || strings.Contains(expected, given) {
		return true
	}
	d := Distance(given, expected)
	if d <= t.MaxDistance {
		return true
	}
	return Ratio(given, expected) < t.MaxRatio
}
