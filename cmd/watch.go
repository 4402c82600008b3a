package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/meeting-clarity/orchestrator"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Analyze recordings as they appear in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := conf.Watch
		if len(args) == 1 {
			w.Dir = args[0]
		}
		if w.Dir == "" {
			return errors.New("no directory to watch: pass one or set watch.dir")
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

		return orchestrator.NewWatcher(p, w).Run(ctx)
	},
}
