package server

import (
	"encoding/json"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
)

// ScoreRequest carries a jargon report either as a JSON object or as a JSON
// string holding one.
type ScoreRequest struct {
	Report     json.RawMessage `json:"report"`
	TotalWords any             `json:"total_words"`
}

type ScoreResponse struct {
	ClarityIndex     int                    `json:"clarity_index"`
	SpeakerScores    []meeting.SpeakerScore `json:"speaker_scores"`
	TopJargonTerms   []clarity.TermImpact   `json:"top_jargon_terms"`
	TotalJargonCount int                    `json:"total_jargon_count"`
	OverallSummary   string                 `json:"overall_summary"`
}

func toScoreResponse(r *clarity.Report, res *clarity.Result) ScoreResponse {
	return ScoreResponse{
		ClarityIndex:     res.ClarityIndex,
		SpeakerScores:    meeting.SortedScores(res.SpeakerScores),
		TopJargonTerms:   res.TopJargonTerms,
		TotalJargonCount: r.TotalJargonCount,
		OverallSummary:   r.OverallClaritySummary,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// rawReport unwraps a report sent as a JSON string.
func rawReport(msg json.RawMessage) []byte {
	var s string
	if len(msg) > 0 && msg[0] == '"' && json.Unmarshal(msg, &s) == nil {
		return []byte(s)
	}
	return msg
}
