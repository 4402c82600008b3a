package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/meeting-clarity/orchestrator"
	"github.com/maastricht-university/meeting-clarity/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		prov, m, shutdown := telemetry(ctx)
		defer shutdown()

		p, st, err := orchestrator.Build(conf, m)
		if err != nil {
			return err
		}
		defer st.Close()

		if !log.IsLevelEnabled(log.DebugLevel) {
			gin.SetMode(gin.ReleaseMode)
		}
		rc := server.RouterConfig{MaxUploadBytes: conf.Server.MaxUploadMB << 20}
		if prov != nil && conf.Server.EnableMetrics {
			rc.Metrics = prov.Handler()
		}
		h := server.NewHandler(p, p, st, filepath.Join(conf.Paths.Data, "uploads"))
		srv := &http.Server{
			Addr:              conf.Server.Addr,
			Handler:           server.NewRouter(h, m, rc),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithField("addr", conf.Server.Addr).Info("http server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("http server shutdown")
		}
		return nil
	},
}
