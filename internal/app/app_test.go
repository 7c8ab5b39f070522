package app

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/config"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		FAABaseURL:       "http://faa.test/notams",
		FAAPageSize:      1000,
		NavCanadaBaseURL: "http://navcanada.test/alpha/",
		UpstreamTimeout:  time.Second,
		ProxyMode:        config.ProxyNone,
		SummaryCacheSize: 10,
		SummaryCacheTTL:  time.Minute,
	}
}

func TestNew_WithoutSummarizer(t *testing.T) {
	cfg := baseConfig(t)
	cfg.PriorityRulesPath = ""

	a, err := New(cfg, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	assert.NotNil(t, a.Fetcher)
	assert.NotNil(t, a.Briefer)
	assert.Nil(t, a.Summarizer)
}

func TestNew_WithCachedSummarizer(t *testing.T) {
	cfg := baseConfig(t)
	cfg.LLMProvider = "groq"
	cfg.LLMAPIKey = "gsk_test"

	a, err := New(cfg, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NotNil(t, a.Summarizer)
	assert.IsType(t, &llm.CachedSummarizer{}, a.Summarizer)
	assert.Equal(t, "groq", a.Summarizer.Name())
}

func TestNew_CacheDisabled(t *testing.T) {
	cfg := baseConfig(t)
	cfg.LLMProvider = "openai"
	cfg.LLMAPIKey = "sk-test"
	cfg.SummaryCacheSize = 0

	a, err := New(cfg, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	_, cached := a.Summarizer.(*llm.CachedSummarizer)
	assert.False(t, cached)
}

func TestNew_MissingRulesFile(t *testing.T) {
	cfg := baseConfig(t)
	cfg.PriorityRulesPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg, slog.Default(), observability.NewMetricsForTesting())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading priority rules")
}
