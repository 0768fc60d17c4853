package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/elys-network/hedgevault/internal/config"
	"github.com/elys-network/hedgevault/internal/metrics"
	"github.com/elys-network/hedgevault/internal/state"
	"github.com/elys-network/hedgevault/internal/web"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// serveCmd serves the run archive over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve archived runs over HTTP",
	Long: `Serve the run archive as a JSON API on WEB_PORT, with Prometheus metrics on /metrics.

Endpoints:
  /health, /api/runs, /api/runs/latest, /api/runs/{id}, /api/runs/{id}/steps,
  /api/strategy-parameters, /api/archive/summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openArchive(); err != nil {
			return err
		}
		defer state.CloseDB()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := web.NewWebServer(config.WebPort, metrics.NewMetrics(""))
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting run archive API")
		return server.Start(ctx)
	},
}
