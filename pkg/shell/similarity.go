// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// maxHammingDistance is the largest Hamming distance accepted as a suggestion.
	maxHammingDistance = 2
	// maxEditDistance is the largest Levenshtein distance accepted as a suggestion.
	maxEditDistance = 2
)

// Suggest returns the candidate closest to target, or false when none is
// close enough.
//
// Candidates are visited in order. An equal-length candidate whose Hamming
// distance is within maxHammingDistance and strictly better than the best so
// far wins outright; otherwise its edit distance is accepted when within
// maxEditDistance and strictly better. The edit distance also applies to an
// equal-length candidate whose Hamming distance was rejected, so a rotation
// such as "bcda" for "abcd" is still suggested. Ties keep the earlier
// candidate.
func Suggest(target string, candidates []string) (string, bool) {
	best := ""
	bestDistance := math.MaxInt

	for _, candidate := range candidates {
		if d, ok := hammingDistance(target, candidate); ok && d <= maxHammingDistance && d < bestDistance {
			best, bestDistance = candidate, d
			continue
		}
		if d := levenshtein.ComputeDistance(target, candidate); d <= maxEditDistance && d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	return best, best != ""
}

// hammingDistance counts differing runes; ok is false when the rune lengths differ.
func hammingDistance(a, b string) (distance int, ok bool) {
	if utf8.RuneCountInString(a) != utf8.RuneCountInString(b) {
		return 0, false
	}
	rb := []rune(b)
	i := 0
	for _, r := range a {
		if r != rb[i] {
			distance++
		}
		i++
	}
	return distance, true
}
