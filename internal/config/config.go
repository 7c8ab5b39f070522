package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Proxy modes for upstream NOTAM requests.
const (
	ProxyNone   = "none"
	ProxyDirect = "direct"
	ProxyJSON   = "json"
)

// Supported summarizer providers. An empty provider disables summarization.
var llmProviders = []string{"groq", "openai", "claude", "gemini"}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NOTAM sources.
	FAABaseURL       string
	FAAClientID      string
	FAAClientSecret  string
	FAAPageSize      int
	NavCanadaBaseURL string
	UpstreamTimeout  time.Duration
	ProxyMode        string
	ProxyURL         string
	// FallbackPrefixes limits secondary-source fallback to ICAO codes with
	// one of these prefixes. Empty means every code may fall back.
	FallbackPrefixes []string

	// Summarizer.
	LLMProvider       string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeout        time.Duration
	LLMContextTokens  int
	SummaryCacheSize  int
	SummaryCacheTTL   time.Duration
	PriorityRulesPath string

	// Kafka briefing pipeline.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	llmTimeout, err := parseDuration("LLM_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("SUMMARY_CACHE_TTL", "15m")
	if err != nil {
		return nil, err
	}

	pageSize, err := parsePositiveInt("FAA_PAGE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	contextTokens, err := parseNonNegativeInt("LLM_CONTEXT_TOKENS", 0)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseNonNegativeInt("SUMMARY_CACHE_SIZE", 100)
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

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FAABaseURL:       sharedcfg.EnvOrDefault("FAA_BASE_URL", "https://external-api.faa.gov/notamapi/v1/notams"),
		FAAClientID:      os.Getenv("FAA_CLIENT_ID"),
		FAAClientSecret:  os.Getenv("FAA_CLIENT_SECRET"),
		FAAPageSize:      pageSize,
		NavCanadaBaseURL: sharedcfg.EnvOrDefault("NAVCANADA_BASE_URL", "https://plan.navcanada.ca/weather/api/alpha/"),
		UpstreamTimeout:  upstreamTimeout,
		ProxyMode:        strings.ToLower(sharedcfg.EnvOrDefault("PROXY_MODE", ProxyNone)),
		ProxyURL:         os.Getenv("PROXY_URL"),
		FallbackPrefixes: parsePrefixes(os.Getenv("FALLBACK_ICAO_PREFIXES")),

		LLMProvider:       strings.ToLower(os.Getenv("LLM_PROVIDER")),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		LLMTimeout:        llmTimeout,
		LLMContextTokens:  contextTokens,
		SummaryCacheSize:  cacheSize,
		SummaryCacheTTL:   cacheTTL,
		PriorityRulesPath: os.Getenv("PRIORITY_RULES_PATH"),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "notam-briefing-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "notam-briefings"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "notam-briefing"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SummarizerEnabled reports whether an LLM provider is configured.
func (c *Config) SummarizerEnabled() bool {
	return c.LLMProvider != ""
}

func (c *Config) validate() error {
	switch c.ProxyMode {
	case ProxyNone:
	case ProxyDirect, ProxyJSON:
		if c.ProxyURL == "" {
			return fmt.Errorf("PROXY_MODE is %q but PROXY_URL is not set", c.ProxyMode)
		}
	default:
		return fmt.Errorf("invalid PROXY_MODE %q (valid: none, direct, json)", c.ProxyMode)
	}

	if c.LLMProvider != "" {
		if !isKnownProvider(c.LLMProvider) {
			return fmt.Errorf("invalid LLM_PROVIDER %q (valid: %s)", c.LLMProvider, strings.Join(llmProviders, ", "))
		}
		if c.LLMAPIKey == "" {
			return errors.New("LLM_PROVIDER is set but LLM_API_KEY is not set")
		}
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	return nil
}

func isKnownProvider(p string) bool {
	for _, known := range llmProviders {
		if p == known {
			return true
		}
	}
	return false
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", key)
	}
	return n, nil
}

// parsePrefixes splits a comma-separated prefix list, uppercasing each entry.
func parsePrefixes(value string) []string {
	var out []string
	for _, p := range sharedcfg.ParseBrokers(value) {
		out = append(out, strings.ToUpper(p))
	}
	return out
}
