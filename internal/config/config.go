// Package config loads settings from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	DBPath    string
	RulesFile string
	HTTPAddr  string
	UserID    string
	Gemini    GeminiConfig
	Debug     bool
}

// GeminiConfig holds settings for network extraction.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Enabled reports whether network extraction can be used.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// Load reads configuration from the environment. An explicit envPath must
// exist; otherwise a .env in the working directory is loaded if present.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	return &Config{
		DBPath:    getEnvOrDefault("TXN_DB_PATH", "./data/history.db"),
		RulesFile: os.Getenv("TXN_RULES_FILE"),
		HTTPAddr:  getEnvOrDefault("TXN_HTTP_ADDR", ":8080"),
		UserID:    getEnvOrDefault("TXN_USER_ID", "local"),
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Debug: strings.EqualFold(os.Getenv("DEBUG"), "true"),
	}, nil
}

// Validate checks that every named key is set. Keys use the environment
// variable names.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, key := range required {
		var value string
		switch key {
		case "TXN_DB_PATH":
			value = c.DBPath
		case "TXN_RULES_FILE":
			value = c.RulesFile
		case "TXN_HTTP_ADDR":
			value = c.HTTPAddr
		case "TXN_USER_ID":
			value = c.UserID
		case "GEMINI_API_KEY":
			value = c.Gemini.APIKey
		case "GEMINI_MODEL":
			value = c.Gemini.Model
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
