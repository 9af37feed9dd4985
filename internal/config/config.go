package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	// Optional. When empty the ingestion registry stays in memory.
	PostgresDSN string

	NATSURL     string
	NATSSubject string

	MemoryBaseURL     string
	MemoryIndex       string
	MemoryCallTimeout time.Duration
	MemoryCountryTag  string

	OllamaURL      string
	OllamaGenModel string

	CatalogDefaultLimit int
	SearchTopK          int
	SearchMinRelevance  float64

	ReadyPollInterval time.Duration
	ReadyWaitTimeout  time.Duration

	DeleteConfirmWait     time.Duration
	DeleteConfirmInterval time.Duration

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxConcurrent  int
	APIQueueTimeout   time.Duration

	WatcherMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "documents.uploaded"),

		MemoryBaseURL:     mustEnv("MEMORY_BASE_URL", "http://localhost:9001"),
		MemoryIndex:       mustEnv("MEMORY_INDEX", ""),
		MemoryCallTimeout: mustEnvDuration("MEMORY_CALL_TIMEOUT", 10*time.Second),
		MemoryCountryTag:  mustEnv("MEMORY_COUNTRY_TAG", "country"),

		OllamaURL:      mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel: mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),

		CatalogDefaultLimit: mustEnvInt("CATALOG_DEFAULT_LIMIT", 100),
		SearchTopK:          mustEnvInt("SEARCH_TOP_K", 5),
		SearchMinRelevance:  mustEnvFloat("SEARCH_MIN_RELEVANCE", 0),

		ReadyPollInterval: mustEnvDuration("READY_POLL_INTERVAL", 2*time.Second),
		ReadyWaitTimeout:  mustEnvDuration("READY_WAIT_TIMEOUT", 60*time.Second),

		DeleteConfirmWait:     mustEnvDuration("DELETE_CONFIRM_WAIT", 5*time.Second),
		DeleteConfirmInterval: mustEnvDuration("DELETE_CONFIRM_INTERVAL", 500*time.Millisecond),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 50),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 100),
		APIMaxConcurrent:  mustEnvInt("API_MAX_CONCURRENT", 64),
		APIQueueTimeout:   mustEnvDuration("API_QUEUE_TIMEOUT", 2*time.Second),

		WatcherMetricsPort: mustEnv("WATCHER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
