// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LLM provider selectors.
const (
	ProviderVertex = "vertex"
	ProviderGroq   = "groq"
)

// Config holds application configuration.
type Config struct {
	// Gmail OAuth files.
	GmailCredentialsPath string
	GmailTokenPath       string

	// LLM backend selection and credentials.
	LLMProvider         string
	LLMModel            string
	GroqAPIKey          string
	GoogleCloudProject  string
	GoogleCloudLocation string

	// Optional Postgres DSN; empty disables the database sink.
	DatabaseURL string

	// OutputDir is where per-job resume archives and report files land.
	OutputDir string

	Port string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		GmailCredentialsPath: envOr("GMAIL_CREDENTIALS_PATH", "credentials.json"),
		GmailTokenPath:       envOr("GMAIL_TOKEN_PATH", "token.json"),
		LLMProvider:          envOr("LLM_PROVIDER", ProviderVertex),
		LLMModel:             os.Getenv("LLM_MODEL"),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		GoogleCloudProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleCloudLocation:  envOr("GOOGLE_CLOUD_LOCATION", "us-central1"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		OutputDir:            envOr("OUTPUT_DIR", "Resumes"),
		Port:                 envOr("PORT", "8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderVertex:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the vertex provider")
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("GOOGLE_CLOUD_LOCATION is required for the vertex provider")
		}
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for the groq provider")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderVertex, ProviderGroq, c.LLMProvider)
	}

	if c.GmailCredentialsPath == "" {
		return fmt.Errorf("GMAIL_CREDENTIALS_PATH is required")
	}
	if _, err := os.Stat(c.GmailCredentialsPath); err != nil {
		return fmt.Errorf("gmail credentials file not found: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
