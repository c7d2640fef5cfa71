package state

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// CloseMatch returns a "Did you mean ...?" hint for an unknown name, or an
// empty string when no candidate is close enough. Matching is
// case-insensitive.
func CloseMatch(name string, candidates []string) string {
	best := ""
	bestDist := -1
	lower := strings.ToLower(name)
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(cand))
		if dist > closeMatchLimit(len(cand)) {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("Did you mean %q?", best)
}

// closeMatchLimit scales the tolerated edit distance with candidate length
// so short names don't produce absurd suggestions.
func closeMatchLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
