package services

import "math"

// FallbackScore is reported when a profile carries no weight at all.
const FallbackScore = 50

type Scorer interface {
	Score(result MatchResult) int
}

type scorer struct {
	fallback int
}

func NewScorer() Scorer {
	return &scorer{fallback: FallbackScore}
}

// Score implements Scorer. Matched keywords earn their full weight, partial
// ones half. The percentage is rounded half up and clamped to 0..100.
func (s *scorer) Score(result MatchResult) int {
	earned, total := 0.0, 0.0
	for _, match := range result.Matches {
		if match.Keyword.Weight <= 0 {
			continue
		}
		total += match.Keyword.Weight
		earned += match.Keyword.Weight * match.Outcome.Credit()
	}

	if total == 0 {
		return s.fallback
	}

	// The epsilon keeps values like 62.4999999 from rounding down.
	percentage := int(math.Floor(earned/total*100 + 0.5 + 1e-9))
	return min(max(percentage, 0), 100)
}
