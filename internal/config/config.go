package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL       string
	ServerPort        string
	OpenAIKey         string
	AIModel           string
	AIBaseURL         string
	AITimeout         time.Duration
	DBQueryTimeout    time.Duration
	RequestTimeout    time.Duration
	MinQualityScore   int
	ScheduleInterval  time.Duration
	SuggestionTTL     time.Duration
	BatchDelay        time.Duration
	BatchLimit        int
	RedisURL          string
	RateLimit         string
	RabbitMQURL       string
	RabbitMQPrefetch  int
	SweepInterval     time.Duration
	SupabaseJWTSecret string
	EnableHSTS        bool
	WorkerDebugMode   bool
	ServerDebugMode   bool
	OTELEnabled       bool
	OTELEndpoint      string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		AIModel:           getEnv("AI_MODEL", "gpt-4o-mini"),
		AIBaseURL:         getEnv("AI_BASE_URL", ""),
		AITimeout:         getEnvDuration("AI_TIMEOUT", 60*time.Second),
		DBQueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 10*time.Second),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 5*time.Minute),
		MinQualityScore:   getEnvInt("GIFT_MIN_QUALITY_SCORE", 5),
		ScheduleInterval:  time.Duration(getEnvInt("GIFT_SCHEDULE_INTERVAL_HOURS", 5)) * time.Hour,
		SuggestionTTL:     time.Duration(getEnvInt("GIFT_SUGGESTION_TTL_HOURS", 24)) * time.Hour,
		BatchDelay:        getEnvDuration("BATCH_DELAY", time.Second),
		BatchLimit:        getEnvInt("BATCH_LIMIT", 100),
		RedisURL:          getEnv("REDIS_URL", ""),
		RateLimit:         getEnv("RATE_LIMIT", "10-M"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:  getEnvInt("RABBITMQ_PREFETCH", 1),
		SweepInterval:     getEnvDuration("SWEEP_INTERVAL", time.Hour),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		WorkerDebugMode:   getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for gift generation")
	}

	if cfg.MinQualityScore < 0 || cfg.MinQualityScore > 100 {
		return nil, fmt.Errorf("GIFT_MIN_QUALITY_SCORE must be between 0 and 100, got %d", cfg.MinQualityScore)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "5m") or plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
