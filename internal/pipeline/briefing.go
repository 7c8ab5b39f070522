package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
)

// Briefing defaults and limits.
const (
	// DefaultTimeValue is the look-ahead used when a request omits one.
	DefaultTimeValue = 24

	// compactTextRunes caps each record's text in the summarizer payload.
	compactTextRunes = 300
	// minRecordBudget keeps small-context models from getting a zero or
	// negative record budget.
	minRecordBudget = 500
)

// NotamFetcher retrieves NOTAMs for a query; *Fetcher implements it.
type NotamFetcher interface {
	FetchNotams(ctx context.Context, req FetchRequest) (FetchResult, error)
}

// BriefingRequest asks for an operational briefing for one airport.
type BriefingRequest struct {
	ICAO      string          `json:"icao"`
	TimeValue int             `json:"time_value"`
	TimeUnit  domain.TimeUnit `json:"time_unit,omitempty"`
	Focus     llm.Focus       `json:"focus,omitempty"`
}

// Briefing is the summarized view of the NOTAMs active in a window.
type Briefing struct {
	ICAO        string               `json:"icao"`
	Window      domain.TimeWindow    `json:"window"`
	Source      domain.Source        `json:"source"`
	Total       int                  `json:"total"`
	Cancelled   int                  `json:"cancelled"`
	Analyzed    int                  `json:"analyzed"`
	Truncated   bool                 `json:"truncated"`
	Provider    string               `json:"provider,omitempty"`
	Summary     string               `json:"summary,omitempty"`
	Records     []domain.NotamRecord `json:"records"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Briefer turns fetched NOTAMs into a briefing: it parses each record,
// reduces the set to the summarizer's token budget and asks the summarizer
// for the briefing text.
type Briefer struct {
	fetcher    NotamFetcher
	summarizer llm.Summarizer
	budgeter   *domain.Budgeter
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewBriefer creates a Briefer. A nil summarizer yields briefings that carry
// the parsed records without summary text.
func NewBriefer(fetcher NotamFetcher, summarizer llm.Summarizer, budgeter *domain.Budgeter, logger *slog.Logger, metrics *observability.Metrics) *Briefer {
	return &Briefer{
		fetcher:    fetcher,
		summarizer: summarizer,
		budgeter:   budgeter,
		logger:     logger,
		metrics:    metrics,
	}
}

// Brief produces a briefing for req. TimeValue is used as given; front doors
// apply DefaultTimeValue when the caller leaves it out. Fetch errors are
// returned unchanged so callers can classify them; budget overruns are
// absorbed by truncation.
func (b *Briefer) Brief(ctx context.Context, req BriefingRequest) (Briefing, error) {
	unit, err := domain.ParseTimeUnit(string(req.TimeUnit))
	if err != nil {
		return Briefing{}, err
	}
	focus, err := llm.ParseFocus(string(req.Focus))
	if err != nil {
		return Briefing{}, err
	}

	res, err := b.fetcher.FetchNotams(ctx, FetchRequest{
		ICAO:            req.ICAO,
		TimeValue:       req.TimeValue,
		TimeUnit:        unit,
		EnableFiltering: true,
	})
	if err != nil {
		return Briefing{}, err
	}

	records := make([]domain.NotamRecord, len(res.Records))
	cancelled := 0
	for i, rec := range res.Records {
		records[i] = rec.Enrich()
		if records[i].Cancellation {
			cancelled++
		}
	}

	brief := Briefing{
		ICAO:        res.ICAO,
		Source:      res.Source,
		Total:       len(records),
		Cancelled:   cancelled,
		Records:     records,
		GeneratedAt: domain.Now(),
	}
	if res.Window != nil {
		brief.Window = *res.Window
	}
	logger := b.logger.With("icao", brief.ICAO)

	if b.summarizer == nil {
		return brief, nil
	}
	brief.Provider = b.summarizer.Name()

	limits := b.summarizer.Limits()
	budget := limits.ContextTokens - llm.PromptOverheadTokens - limits.ResponseTokens
	if budget < minRecordBudget {
		budget = minRecordBudget
	}

	red := b.budgeter.ReduceToFit(records, budget)
	b.metrics.BudgetDropped.Add(float64(red.Dropped))
	if len(red.Records) == 0 {
		brief.Summary = fmt.Sprintf("No active NOTAMs found for %s in the next %s.", brief.ICAO, brief.Window.Describe())
		return brief, nil
	}

	payload, err := compactPayload(red.Records)
	if err != nil {
		return Briefing{}, err
	}
	if domain.EstimateTokens(payload) > budget {
		logger.Warn("record floor still over budget, truncating summarizer input",
			"error", red.Err(), "budget", budget)
		payload = domain.TruncateToTokens(payload, budget)
		brief.Truncated = true
		b.metrics.Truncations.Inc()
	}

	summary, err := b.summarize(ctx, llm.Request{
		ICAO:     brief.ICAO,
		Period:   brief.Window.Describe(),
		Focus:    focus,
		Analyzed: len(red.Records),
		Total:    len(records) - cancelled,
		Data:     payload,
	})
	if err != nil {
		return Briefing{}, err
	}

	brief.Summary = summary
	brief.Analyzed = len(red.Records)
	logger.Info("briefing generated",
		"provider", brief.Provider,
		"total", brief.Total,
		"analyzed", brief.Analyzed,
		"dropped", red.Dropped,
		"truncated", brief.Truncated,
	)
	return brief, nil
}

func (b *Briefer) summarize(ctx context.Context, req llm.Request) (string, error) {
	provider := b.summarizer.Name()
	start := time.Now()
	summary, err := b.summarizer.Summarize(ctx, req)
	b.metrics.SummarizerDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		b.metrics.SummarizerRequests.WithLabelValues(provider, "error").Inc()
		return "", fmt.Errorf("generate summary with %s: %w", provider, err)
	}
	b.metrics.SummarizerRequests.WithLabelValues(provider, "success").Inc()
	return summary, nil
}

// compactRecord is the per-record shape sent to the summarizer.
type compactRecord struct {
	ID        int           `json:"id"`
	Number    string        `json:"number"`
	Text      string        `json:"text"`
	ValidFrom string        `json:"validFrom,omitempty"`
	ValidTo   string        `json:"validTo,omitempty"`
	Source    domain.Source `json:"source"`
}

func compactPayload(records []domain.NotamRecord) (string, error) {
	items := make([]compactRecord, len(records))
	for i, rec := range records {
		text := []rune(rec.Text)
		if len(text) > compactTextRunes {
			text = text[:compactTextRunes]
		}
		items[i] = compactRecord{
			ID:        i + 1,
			Number:    rec.Number,
			Text:      string(text),
			ValidFrom: rec.EffectiveStart,
			ValidTo:   rec.EffectiveEnd,
			Source:    rec.Source,
		}
	}
	data, err := json.MarshalIndent(items, "", " ")
	if err != nil {
		return "", fmt.Errorf("encode summarizer payload: %w", err)
	}
	return string(data), nil
}
