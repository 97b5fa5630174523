package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// DefaultOgimetBaseURL is the bulletin export endpoint.
const DefaultOgimetBaseURL = "https://www.ogimet.com/display_synopsc2.php"

const maxOgimetRetries = 10

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Bulletin source.
	OgimetBaseURL    string
	OgimetCountry    string
	OgimetTimeout    time.Duration
	OgimetMaxRetries int
	PollInterval     time.Duration
	FetchCacheSize   int
	FetchCacheTTL    time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory seeds variables that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	ogimetTimeout, err := parsePositiveDuration("OGIMET_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	maxRetries, err := parsePositiveInt("OGIMET_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	if maxRetries > maxOgimetRetries {
		return nil, fmt.Errorf("invalid OGIMET_MAX_RETRIES %d: must be at most %d", maxRetries, maxOgimetRetries)
	}

	cacheSize, err := parsePositiveInt("FETCH_CACHE_SIZE", 32)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("FETCH_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "synop-observations"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		OgimetBaseURL:    sharedcfg.EnvOrDefault("OGIMET_BASE_URL", DefaultOgimetBaseURL),
		OgimetCountry:    strings.TrimSpace(sharedcfg.EnvOrDefault("OGIMET_COUNTRY", "India")),
		OgimetTimeout:    ogimetTimeout,
		OgimetMaxRetries: maxRetries,
		PollInterval:     pollInterval,
		FetchCacheSize:   cacheSize,
		FetchCacheTTL:    cacheTTL,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.OgimetCountry == "" {
		return nil, errors.New("OGIMET_COUNTRY is required")
	}
	if u, err := url.Parse(cfg.OgimetBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid OGIMET_BASE_URL %q", cfg.OgimetBaseURL)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}
