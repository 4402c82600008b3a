package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/meeting-clarity/orchestrator"
)

var (
	analyzeOwner       string
	analyzeLabel       string
	analyzeConcurrency int
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <media>...",
	Short: "Transcribe, extract jargon and score one or more recordings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeLabel != "" && len(args) > 1 {
			return fmt.Errorf("--label applies to a single recording")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, m, shutdown := telemetry(ctx)
		defer shutdown()

		p, st, err := orchestrator.Build(conf, m)
		if err != nil {
			return err
		}
		defer st.Close()

		reqs := make([]orchestrator.Request, 0, len(args))
		for _, a := range args {
			reqs = append(reqs, orchestrator.Request{MediaPath: a, Owner: analyzeOwner, Label: analyzeLabel})
		}
		results, err := orchestrator.RunAll(ctx, p, reqs, analyzeConcurrency)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for _, a := range results {
			fmt.Fprintf(out, "%s\t%s\tclarity %d\tjargon %d\t%d words\n",
				a.ID, a.Label, a.ClarityIndex, a.TotalJargonCount, a.TotalWords)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOwner, "owner", "cli", "owner the analyses are stored under")
	analyzeCmd.Flags().StringVar(&analyzeLabel, "label", "", "meeting label (defaults to the file name)")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 2, "recordings analyzed at once")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full analyses as JSON")
}
