// Package cmd holds the clarity command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/meeting-clarity/config"
	"github.com/maastricht-university/meeting-clarity/observe"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	conf *cfg.Root
)

var rootCmd = &cobra.Command{
	Use:           "clarity",
	Short:         "Score how clearly meetings are communicated",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := cfg.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			c.Pipeline.LogLvl = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			c.Pipeline.LogFormat = logFormat
		}
		if err := setupLogging(c.Pipeline.LogLvl, c.Pipeline.LogFormat); err != nil {
			return err
		}
		conf = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config/$CONFIG_ENV/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")

	rootCmd.AddCommand(analyzeCmd, scoreCmd, serveCmd, historyCmd, watchCmd, mcpCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "clarity:", err)
		os.Exit(1)
	}
}

// setupLogging configures the global logrus logger. Logs go to stderr so
// stdout stays free for command output and the MCP stdio transport.
func setupLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// telemetry installs the metrics provider when enabled. The returned
// shutdown func is never nil.
func telemetry(ctx context.Context) (*observe.Provider, *observe.Metrics, func()) {
	if !conf.Telemetry.Enabled {
		return nil, nil, func() {}
	}
	p, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    conf.Pipeline.Name,
		ServiceVersion: conf.Pipeline.Version,
	})
	if err != nil {
		log.WithError(err).Warn("metrics disabled")
		return nil, nil, func() {}
	}
	m, err := observe.NewMetrics(p.MeterProvider())
	if err != nil {
		log.WithError(err).Warn("metrics disabled")
		_ = p.Shutdown(ctx)
		return nil, nil, func() {}
	}
	return p, m, func() {
		if err := p.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("metrics shutdown")
		}
	}
}
