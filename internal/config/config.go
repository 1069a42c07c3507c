// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers understood by the llm package.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Response formats requested from the LLM.
const (
	ResponseFormatJSON = "json"
	ResponseFormatText = "text"
)

// Config holds all configuration values for the application.
type Config struct {
	// LLM
	LLMProvider       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	LLMModel          string
	LLMTimeout        time.Duration
	LLMMaxRetries     int
	LLMTemperature    float64
	LLMTopP           float64
	LLMMaxTokens      int
	LLMResponseFormat string

	// Fortune
	SentencesPerSection string
	FortuneSeed         int64
	CatalogPath         string

	// Storage
	DataDir     string
	CSVExtended bool

	// AWS
	AWSRegion      string
	S3Bucket       string
	SESSenderEmail string

	// Database
	DatabaseURLOverride string
	DBHost              string
	DBPort              int
	DBName              string
	DBUser              string
	DBPassword          string

	// Application
	Port     string
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", ""),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 20*time.Second),
		LLMMaxRetries:     getEnvInt("LLM_MAX_RETRIES", 0),
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.8),
		LLMTopP:           getEnvFloat("LLM_TOP_P", 0.9),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 1500),
		LLMResponseFormat: strings.ToLower(getEnv("LLM_RESPONSE_FORMAT", ResponseFormatJSON)),

		// Fortune
		SentencesPerSection: getEnv("FORTUNE_SENTENCES", "3-4"),
		FortuneSeed:         int64(getEnvInt("FORTUNE_SEED", 0)),
		CatalogPath:         getEnv("FORTUNE_CATALOG", ""),

		// Storage
		DataDir:     getEnv("DATA_DIR", "data"),
		CSVExtended: getEnvBool("CSV_EXTENDED", false),

		// AWS
		AWSRegion:      getEnv("AWS_REGION", "ap-northeast-2"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),

		// Database
		DatabaseURLOverride: getEnv("DATABASE_URL", ""),
		DBHost:              getEnv("DB_HOST", ""),
		DBPort:              getEnvInt("DB_PORT", 5432),
		DBName:              getEnv("DB_NAME", "golf_fortune"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", ""),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel(cfg.LLMProvider)
	}

	return cfg, nil
}

// DefaultModel returns the model used when LLM_MODEL is not set.
func DefaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "gpt-4o"
}

// LLMAPIKey returns the credential for the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// HasLLMCredential reports whether the remote fortune path is enabled.
func (c *Config) HasLLMCredential() bool {
	return c.LLMAPIKey() != ""
}

// DatabaseEnabled reports whether a database has been configured.
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURLOverride != "" || c.DBHost != ""
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	if c.DatabaseURLOverride != "" {
		return c.DatabaseURLOverride
	}

	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// IsLambda reports whether the process runs inside AWS Lambda.
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
