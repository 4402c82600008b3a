// Package meeting holds the analysis record shared by the pipeline, the
// store and the HTTP surface.
package meeting

import (
	"sort"
	"time"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/transcript"
)

type SpeakerScore struct {
	Speaker string  `json:"speaker"`
	Score   float64 `json:"score"`
}

// Analysis is everything produced for one recording.
type Analysis struct {
	ID               string                     `json:"meeting_id"`
	Owner            string                     `json:"owner"`
	Label            string                     `json:"meeting_label"`
	CreatedAt        time.Time                  `json:"created_at"`
	DurationSec      float64                    `json:"duration_sec"`
	TotalWords       int                        `json:"total_words"`
	TotalJargonCount int                        `json:"total_jargon_count"`
	OverallSummary   string                     `json:"overall_summary"`
	ClarityIndex     int                        `json:"clarity_index"`
	SpeakerScores    []SpeakerScore             `json:"speaker_scores"`
	TopJargonTerms   []clarity.TermImpact       `json:"top_jargon_terms"`
	IdentifiedJargon []clarity.JargonOccurrence `json:"identified_jargon"`
	Transcript       []transcript.Utterance     `json:"transcript"`
}

// Summary is one history entry.
type Summary struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Label            string    `json:"meeting_label"`
	ClarityIndex     int       `json:"clarity_index"`
	TotalJargonCount int       `json:"total_jargon_count"`
	DurationSec      float64   `json:"duration_sec"`
}

// Summary returns the history view of a.
func (a *Analysis) Summary() Summary {
	return Summary{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt,
		Label:            a.Label,
		ClarityIndex:     a.ClarityIndex,
		TotalJargonCount: a.TotalJargonCount,
		DurationSec:      a.DurationSec,
	}
}

// Fill copies the report and its score into a.
func (a *Analysis) Fill(r *clarity.Report, res *clarity.Result) {
	a.TotalJargonCount = r.TotalJargonCount
	a.OverallSummary = r.OverallClaritySummary
	a.IdentifiedJargon = r.IdentifiedJargon
	if a.IdentifiedJargon == nil {
		a.IdentifiedJargon = []clarity.JargonOccurrence{}
	}
	a.ClarityIndex = res.ClarityIndex
	a.SpeakerScores = SortedScores(res.SpeakerScores)
	a.TopJargonTerms = res.TopJargonTerms
}

// SortedScores flattens per-speaker penalties, highest first, ties by
// speaker label.
func SortedScores(scores map[string]float64) []SpeakerScore {
	out := make([]SpeakerScore, 0, len(scores))
	for spk, s := range scores {
		out = append(out, SpeakerScore{Speaker: spk, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Speaker < out[j].Speaker
	})
	return out
}
