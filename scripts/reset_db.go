package main

import (
	"os"

	"github.com/elys-network/hedgevault/internal/config"
	"github.com/elys-network/hedgevault/internal/logger"
	"github.com/elys-network/hedgevault/internal/state"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Warn().Msg("Warning: .env file not found or error loading .env file. Relying on OS environment variables.")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	if err := logger.Initialize(logLevel, ""); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	log.Info().Msg("Starting database reset script...")

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if !config.DatabaseConfigured() {
		log.Fatal().Msg("DB_USER and DB_NAME environment variables must be set.")
	}

	dbCfg := state.DBConfig{
		Host:     config.DBHost,
		Port:     config.DBPort,
		User:     config.DBUser,
		Password: config.DBPassword,
		DBName:   config.DBName,
		SSLMode:  config.DBSSLMode,
	}

	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("user", dbCfg.User).
		Str("dbname", dbCfg.DBName).
		Msg("Connecting to database")

	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database connection")
	}
	defer state.CloseDB()

	log.Info().Msg("Connected to database. Attempting to drop all tables...")
	if err := state.DropSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop tables")
	}

	// Recreate the schema
	log.Info().Msg("Recreating database schema...")
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate database schema")
	}

	// Seed the default strategy parameters as the first active version
	if _, err := state.SaveStrategyParameters(config.StrategyParams, state.DefaultConfigName, 1, true); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default strategy parameters")
	}

	log.Info().Msg("Database reset complete!")
}
