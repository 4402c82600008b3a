// Package clarity turns a jargon report and a transcript word count into a
// bounded clarity index, per-speaker penalties and the most impactful terms.
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Reports are validated by [Validator] before they reach [Scorer].
package clarity

// JargonOccurrence is one master-vocabulary term used by one speaker.
type JargonOccurrence struct {
	Term            string  `json:"term" jsonschema:"description=Exact spelling of the term as listed in the master jargon list"`
	Speaker         string  `json:"speaker" jsonschema:"description=Speaker label that used the term (e.g. A or B)"`
	Frequency       int     `json:"frequency" jsonschema:"description=How many times this speaker used the term"`
	ClarityCritique string  `json:"clarity_critique" jsonschema:"description=Short suggestion for a clearer phrasing"`
	PenaltyWeight   float64 `json:"penalty_weight" jsonschema:"description=1.0 for buzzwords and 0.5 for technical terms and 0.2 for necessary terms"`
}

// WeightedPenalty is frequency × penalty_weight.
func (j JargonOccurrence) WeightedPenalty() float64 {
	return float64(j.Frequency) * j.PenaltyWeight
}

// Report is the jargon detection result for one transcript.
// TotalJargonCount is carried for presentation only; scoring recomputes
// everything from IdentifiedJargon.
type Report struct {
	TotalJargonCount      int                `json:"total_jargon_count" jsonschema:"description=Total number of jargon terms found"`
	IdentifiedJargon      []JargonOccurrence `json:"identified_jargon"`
	OverallClaritySummary string             `json:"overall_clarity_summary" jsonschema:"description=Brief summary of the communication clarity in at most 50 words"`
}

// TermImpact is a top-N entry.
type TermImpact struct {
	Term          string  `json:"term"`
	Speaker       string  `json:"speaker"`
	Frequency     int     `json:"frequency"`
	PenaltyWeight float64 `json:"penalty_weight"`
}

// Result is the scorer output for one report.
type Result struct {
	ClarityIndex   int                `json:"clarity_index"`
	SpeakerScores  map[string]float64 `json:"speaker_scores"`
	TopJargonTerms []TermImpact       `json:"top_jargon_terms"`
}
