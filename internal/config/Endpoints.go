package config

import (
	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// WebPort is the port of the run archive API.
	WebPort string

	// DBHost, DBPort, DBUser, DBPassword, DBName and DBSSLMode locate the run archive.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// PriceAPIKey and PriceAPIBaseURL configure the historical price source.
	PriceAPIKey     string
	PriceAPIBaseURL string
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	WebPort = getEnvOr("WEB_PORT", "8080")

	DBHost = getEnvOr("DB_HOST", "localhost")
	DBPort, err = getEnvAsIntOr("DB_PORT", 5432)
	if err != nil {
		return err
	}
	DBUser = getEnvOr("DB_USER", "")
	DBPassword = getEnvOr("DB_PASSWORD", "")
	DBName = getEnvOr("DB_NAME", "")
	DBSSLMode = getEnvOr("DB_SSLMODE", "disable")

	PriceAPIKey = getEnvOr("CRYPTOCOMPARE_API", "")
	PriceAPIBaseURL = getEnvOr("CRYPTOCOMPARE_URL", "")

	log.Debug().
		Str("WebPort", WebPort).
		Str("DBHost", DBHost).
		Int("DBPort", DBPort).
		Str("DBName", DBName).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}

// DatabaseConfigured reports whether enough settings are present to open the run archive.
func DatabaseConfigured() bool {
	return DBUser != "" && DBName != ""
}
