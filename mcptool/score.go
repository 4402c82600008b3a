// Package mcptool exposes clarity scoring to MCP clients.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
	"github.com/maastricht-university/meeting-clarity/observe"
)

const ScoreToolName = "score_clarity_report"

// MaxTopN bounds the top_n argument.
const MaxTopN = 1000

// ScoreTool handles the score_clarity_report tool.
type ScoreTool struct {
	validator *clarity.Validator
	topN      int
	metrics   *observe.Metrics
}

func NewScoreTool(v *clarity.Validator, topN int, m *observe.Metrics) *ScoreTool {
	if v == nil {
		v = clarity.NewValidator(clarity.WeightClamp)
	}
	return &ScoreTool{validator: v, topN: topN, metrics: m}
}

// Definition returns the MCP tool definition for registration.
func (t *ScoreTool) Definition() mcp.Tool {
	return mcp.NewTool(ScoreToolName,
		mcp.WithDescription(
			"Score a meeting jargon report. Returns the clarity index (20 to 100, higher is clearer), "+
				"the weighted jargon penalty per speaker and the most impactful terms.",
		),
		mcp.WithString("report",
			mcp.Required(),
			mcp.Description("Jargon report as JSON: {total_jargon_count, identified_jargon:[{term, speaker, frequency, penalty_weight, clarity_critique}], overall_clarity_summary}"),
		),
		mcp.WithNumber("total_words",
			mcp.Required(),
			mcp.Description("Number of whitespace-separated words in the transcript"),
		),
		mcp.WithNumber("top_n",
			mcp.Description(fmt.Sprintf("How many top jargon terms to return, 1 to %d (default: %d)", MaxTopN, clarity.DefaultTopN)),
		),
	)
}

type scoreResult struct {
	ClarityIndex     int                    `json:"clarity_index"`
	SpeakerScores    []meeting.SpeakerScore `json:"speaker_scores"`
	TopJargonTerms   []clarity.TermImpact   `json:"top_jargon_terms"`
	TotalJargonCount int                    `json:"total_jargon_count"`
	OverallSummary   string                 `json:"overall_summary"`
}

// Handle processes the score_clarity_report tool call.
func (t *ScoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("report", "")
	if raw == "" {
		return mcp.NewToolResultError("'report' is required"), nil
	}
	args := req.GetArguments()
	wordsArg, ok := args["total_words"]
	if !ok {
		return mcp.NewToolResultError("'total_words' is required"), nil
	}
	words, err := clarity.ParseWordCount(wordsArg)
	if err != nil {
		t.metrics.RecordValidationFailure(ctx, "word_count")
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := t.validator.Parse([]byte(raw))
	if err != nil {
		t.metrics.RecordValidationFailure(ctx, "malformed_report")
		var mre *clarity.MalformedReportError
		if errors.As(err, &mre) {
			log.WithField("field", mre.Field).Debug("mcp: rejected report")
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	topN := t.topN
	if v, ok := args["top_n"]; ok && v != nil {
		n, err := parseTopN(v)
		if err != nil {
			t.metrics.RecordValidationFailure(ctx, "top_n")
			return mcp.NewToolResultError(err.Error()), nil
		}
		topN = n
	}
	res, err := clarity.NewScorer(topN).Score(r, words)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := json.MarshalIndent(scoreResult{
		ClarityIndex:     res.ClarityIndex,
		SpeakerScores:    meeting.SortedScores(res.SpeakerScores),
		TopJargonTerms:   res.TopJargonTerms,
		TotalJargonCount: r.TotalJargonCount,
		OverallSummary:   r.OverallClaritySummary,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func parseTopN(v any) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("'top_n' must be a number, got %T", v)
	}
	if f != math.Trunc(f) || f < 1 || f > MaxTopN {
		return 0, fmt.Errorf("'top_n' must be a whole number between 1 and %d, got %v", MaxTopN, f)
	}
	return int(f), nil
}
