package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// JWTSecret verifies tokens issued by the external identity provider.
	JWTSecret string

	// MutationRateLimit is a ulule/limiter formatted rate, e.g. "30-M",
	// applied to the signing mutation routes.
	MutationRateLimit string

	// CORSAllowedOrigins lists the origins the back-office UI is served from.
	CORSAllowedOrigins []string

	// SignedArtifactBasePath is the storage prefix under which the external
	// document service materializes signed PDFs.
	SignedArtifactBasePath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("MUTATION_RATE_LIMIT", "30-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("SIGNED_ARTIFACT_BASE_PATH", "/storage/signed")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.MutationRateLimit = viper.GetString("MUTATION_RATE_LIMIT")
	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")
	cfg.SignedArtifactBasePath = viper.GetString("SIGNED_ARTIFACT_BASE_PATH")

	return cfg, nil
}
