package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/meeting-clarity/mcptool"
	"github.com/maastricht-university/meeting-clarity/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the scoring tools over MCP stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := conf.Scoring.Validator()
		score := mcptool.NewScoreTool(v, conf.Scoring.TopN, nil)

		var history *mcptool.HistoryTool
		st, err := store.Open(conf.Store.Path)
		if err != nil {
			log.WithError(err).Warn("meeting history unavailable")
		} else {
			defer st.Close()
			history = mcptool.NewHistoryTool(st)
		}

		mcptool.Version = conf.Pipeline.Version
		return mcptool.ServeStdio(mcptool.New(score, history))
	},
}
