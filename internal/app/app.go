// Package app assembles the NOTAM fetcher and briefer from configuration.
// The service, CLI, and MCP binaries share it.
package app

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/faa"
	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/adapter/navcanada"
	"github.com/couchcryptid/notam-briefing-service/internal/adapter/upstream"
	"github.com/couchcryptid/notam-briefing-service/internal/config"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

// App holds the wired NOTAM services.
type App struct {
	Fetcher *pipeline.Fetcher
	Briefer *pipeline.Briefer
	// Summarizer is nil when no LLM provider is configured.
	Summarizer llm.Summarizer
}

// New wires the upstream sources, priority rules, and optional summarizer.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*App, error) {
	getter := upstream.NewClient(cfg.UpstreamTimeout, cfg.ProxyMode, cfg.ProxyURL)
	primary := faa.NewClient(getter, cfg.FAABaseURL, cfg.FAAClientID, cfg.FAAClientSecret, cfg.FAAPageSize)
	secondary := navcanada.NewClient(getter, cfg.NavCanadaBaseURL, logger)
	fetcher := pipeline.NewFetcher(primary, secondary, cfg.FallbackPrefixes, logger, metrics)

	rules, err := config.LoadPriorityRules(cfg.PriorityRulesPath)
	if err != nil {
		return nil, err
	}

	summarizer, err := newSummarizer(cfg, metrics)
	if err != nil {
		return nil, err
	}
	if summarizer != nil {
		metrics.SummarizerEnabled.Set(1)
		logger.Info("summarizer enabled",
			"provider", summarizer.Name(),
			"context_tokens", summarizer.Limits().ContextTokens,
			"cache_size", cfg.SummaryCacheSize,
		)
	} else {
		logger.Info("summarizer disabled")
	}

	return &App{
		Fetcher:    fetcher,
		Briefer:    pipeline.NewBriefer(fetcher, summarizer, domain.NewBudgeter(rules), logger, metrics),
		Summarizer: summarizer,
	}, nil
}

func newSummarizer(cfg *config.Config, metrics *observability.Metrics) (llm.Summarizer, error) {
	if !cfg.SummarizerEnabled() {
		return nil, nil
	}
	s, err := llm.New(llm.Options{
		Provider:      cfg.LLMProvider,
		APIKey:        cfg.LLMAPIKey,
		Model:         cfg.LLMModel,
		Timeout:       cfg.LLMTimeout,
		ContextTokens: cfg.LLMContextTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}
	if cfg.SummaryCacheSize == 0 {
		return s, nil
	}
	return llm.NewCachedSummarizer(s, cfg.SummaryCacheSize, cfg.SummaryCacheTTL, nil, metrics), nil
}
