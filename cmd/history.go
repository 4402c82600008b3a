package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/meeting-clarity/store"
)

var historyCmd = &cobra.Command{
	Use:   "history <owner>",
	Short: "List the analyzed meetings of an owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(conf.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tLABEL\tCLARITY\tJARGON\tDURATION")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0fs\n",
				s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Label, s.ClarityIndex, s.TotalJargonCount, s.DurationSec)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		total, err := st.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d stored meetings\n", len(list), total)
		return nil
	},
}
