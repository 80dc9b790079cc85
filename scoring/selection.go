package scoring

import (
	"sort"

	"clipbot/types"
)

// Select filters scored candidates by threshold, orders them by descending
// score and truncates to maxResults. The sort is stable so ties keep their
// discovery order and repeated runs over identical input produce identical
// output. An empty result is a normal outcome, not an error.
func Select(scored []types.ScoredCandidate, threshold float64, maxResults int) []types.ScoredCandidate {
	selected := make([]types.ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		if sc.Score >= threshold {
			selected = append(selected, sc)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})

	if maxResults >= 0 && len(selected) > maxResults {
		selected = selected[:maxResults]
	}

	return selected
}
