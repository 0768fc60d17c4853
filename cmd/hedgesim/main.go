package main

import (
	"fmt"
	"os"

	"github.com/elys-network/hedgevault/internal/config"
	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/state"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logFile  string
)

// rootCmd is the base command for the hedgesim CLI
var rootCmd = &cobra.Command{
	Use:   "hedgesim",
	Short: "Leveraged LP hedging simulator",
	Long: `hedgesim replays price paths against a leveraged liquidity position that is kept
near a target collateral ratio and a target exposure, and archives the recorded runs.

Configuration is read from the environment (and a .env file when present); scenario
files override it per run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
		}

		if err := config.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if logLevel == "" {
			logLevel = os.Getenv("LOG_LEVEL")
		}
		return logger.Initialize(logLevel, logFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (defaults to LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append logs to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(paramsCmd)
}

// openArchive connects to the run archive configured in the environment and ensures its schema.
func openArchive() error {
	if !config.DatabaseConfigured() {
		return fmt.Errorf("database is not configured: set DB_USER and DB_NAME")
	}

	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: config.DBPort,
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := state.EnsureSchema(); err != nil {
		state.CloseDB()
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
