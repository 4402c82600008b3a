package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/meeting-clarity/clarity"
	"github.com/maastricht-university/meeting-clarity/meeting"
)

var scoreWords int

var scoreCmd = &cobra.Command{
	Use:   "score <report.json>",
	Short: "Validate a jargon report and print its clarity score",
	Long:  "Validate a jargon report and print its clarity score. Use - to read the report from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := scoreJSON(raw, scoreWords)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	scoreCmd.Flags().IntVar(&scoreWords, "words", -1, "total words in the transcript")
	_ = scoreCmd.MarkFlagRequired("words")
}

type scoreOutput struct {
	ClarityIndex     int                    `json:"clarity_index"`
	SpeakerScores    []meeting.SpeakerScore `json:"speaker_scores"`
	TopJargonTerms   []clarity.TermImpact   `json:"top_jargon_terms"`
	TotalJargonCount int                    `json:"total_jargon_count"`
	OverallSummary   string                 `json:"overall_summary"`
}

func scoreJSON(raw []byte, words int) (*scoreOutput, error) {
	v := conf.Scoring.Validator()
	r, err := v.Parse(raw)
	if err != nil {
		return nil, err
	}
	res, err := clarity.NewScorer(conf.Scoring.TopN).Score(r, words)
	if err != nil {
		return nil, err
	}
	return &scoreOutput{
		ClarityIndex:     res.ClarityIndex,
		SpeakerScores:    meeting.SortedScores(res.SpeakerScores),
		TopJargonTerms:   res.TopJargonTerms,
		TotalJargonCount: r.TotalJargonCount,
		OverallSummary:   r.OverallClaritySummary,
	}, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return b, nil
}
