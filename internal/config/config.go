package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath    string
	ModelPath       string
	BenchmarksPath  string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	TextModel       string
	VisionModel     string
	DefaultCurrency string
	LogLevel        string
	Port            int
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/credit.db"),
		ModelPath:       getEnv("ML_MODEL_PATH", "./data/credit_model.json"),
		BenchmarksPath:  getEnv("BENCHMARKS_PATH", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		TextModel:       getEnv("TEXT_MODEL", "gpt-4o-mini"),
		VisionModel:     getEnv("VISION_MODEL", "gpt-4o-mini"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "Rp"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	// API key is optional: without it the engine runs entirely on the
	// deterministic fallback analyzers.
	return nil
}

// AnalyzersEnabled reports whether LLM-backed analyzers can be constructed
func (c *Config) AnalyzersEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
