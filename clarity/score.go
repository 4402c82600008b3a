package clarity

import (
	"fmt"
	"math"
	"sort"
)

// Scoring policy constants.
const (
	// PenaltyScale maps jargon density (weighted penalty per word) onto the
	// 0–100 penalty scale.
	PenaltyScale = 500.0
	// MaxPenalty caps the penalty so the index never drops below IndexFloor.
	MaxPenalty = 80.0
	IndexFloor = 20
	IndexMax   = 100
	// DefaultTopN is the number of terms kept for top-jargon reporting.
	DefaultTopN = 5
)

// Index computes the clarity index for r over a transcript of totalWords
// words. An empty transcript is maximally clear. The penalty is rounded half
// to even, so a penalty of 62.5 yields 38.
func Index(r *Report, totalWords int) int {
	if totalWords == 0 {
		return IndexMax
	}
	var total float64
	for _, j := range r.IdentifiedJargon {
		total += j.WeightedPenalty()
	}
	normalized := (total / float64(totalWords)) * PenaltyScale
	final := math.Min(MaxPenalty, normalized)
	idx := IndexMax - int(math.RoundToEven(final))
	if idx < IndexFloor {
		return IndexFloor
	}
	return idx
}

// SpeakerScores sums the weighted penalty per speaker. Only speakers with at
// least one occurrence appear in the result.
func SpeakerScores(r *Report) map[string]float64 {
	scores := make(map[string]float64)
	for _, j := range r.IdentifiedJargon {
		scores[j.Speaker] += j.WeightedPenalty()
	}
	return scores
}

// TopTerms returns the n occurrences with the highest weighted penalty.
// Equal penalties keep report order.
func TopTerms(r *Report, n int) []TermImpact {
	if n <= 0 || len(r.IdentifiedJargon) == 0 {
		return []TermImpact{}
	}
	ranked := make([]JargonOccurrence, len(r.IdentifiedJargon))
	copy(ranked, r.IdentifiedJargon)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].WeightedPenalty() > ranked[b].WeightedPenalty()
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]TermImpact, 0, len(ranked))
	for _, j := range ranked {
		out = append(out, TermImpact{
			Term:          j.Term,
			Speaker:       j.Speaker,
			Frequency:     j.Frequency,
			PenaltyWeight: j.PenaltyWeight,
		})
	}
	return out
}

// Scorer bundles the three computations behind one call.
type Scorer struct {
	TopN int
}

// NewScorer returns a Scorer keeping topN terms; topN <= 0 means DefaultTopN.
func NewScorer(topN int) *Scorer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Scorer{TopN: topN}
}

// Score validates the word count and scores r. r must come from a Validator.
func (s *Scorer) Score(r *Report, totalWords int) (*Result, error) {
	if totalWords < 0 {
		return nil, fmt.Errorf("%w: %d is negative", ErrInvalidWordCount, totalWords)
	}
	return &Result{
		ClarityIndex:   Index(r, totalWords),
		SpeakerScores:  SpeakerScores(r),
		TopJargonTerms: TopTerms(r, s.TopN),
	}, nil
}
