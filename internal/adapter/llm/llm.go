// Package llm provides the Summarizer used to turn a reduced NOTAM set into an
// operational briefing, with HTTP providers for Groq, OpenAI, Anthropic and
// Google, and a caching decorator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// Limits describes a provider's token capacity.
type Limits struct {
	ContextTokens  int
	ResponseTokens int
}

// Request is the input to a summarization call.
type Request struct {
	ICAO     string
	Period   string // e.g. "24 hours"
	Focus    Focus
	Analyzed int    // records present in Data
	Total    int    // records before budget reduction
	Data     string // compact JSON of the records
}

// Summarizer produces a briefing from NOTAM data.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
	Limits() Limits
	Name() string
}

// Options selects and configures a provider.
type Options struct {
	Provider      string // groq, openai, claude or gemini
	APIKey        string
	Model         string
	Timeout       time.Duration
	ContextTokens int    // overrides the provider default when > 0
	BaseURL       string // overrides the provider endpoint, for tests and gateways
}

// New creates a Summarizer from opts.
func New(opts Options) (Summarizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("summarizer %q: API key is required", opts.Provider)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var s Summarizer
	switch opts.Provider {
	case "groq":
		model := orDefault(opts.Model, "llama-3.3-70b-versatile")
		limits := Limits{ContextTokens: 12000, ResponseTokens: 800}
		if strings.Contains(model, "8b") {
			limits.ContextTokens = 5000
		}
		s = &chatProvider{
			name: "groq", apiKey: opts.APIKey, model: model, client: client,
			endpoint: orDefault(opts.BaseURL, "https://api.groq.com/openai/v1") + "/chat/completions",
			limits:   withContext(limits, opts.ContextTokens),
		}
	case "openai":
		s = &chatProvider{
			name: "openai", apiKey: opts.APIKey, model: orDefault(opts.Model, "gpt-4o-mini"), client: client,
			endpoint: orDefault(opts.BaseURL, "https://api.openai.com/v1") + "/chat/completions",
			limits:   withContext(Limits{ContextTokens: 128000, ResponseTokens: 4096}, opts.ContextTokens),
		}
	case "claude":
		s = &claudeProvider{
			apiKey: opts.APIKey, model: orDefault(opts.Model, "claude-haiku-4-5-20251001"), client: client,
			endpoint: orDefault(opts.BaseURL, "https://api.anthropic.com") + "/v1/messages",
			limits:   withContext(Limits{ContextTokens: 200000, ResponseTokens: 8192}, opts.ContextTokens),
		}
	case "gemini":
		s = &geminiProvider{
			apiKey: opts.APIKey, model: orDefault(opts.Model, "gemini-1.5-pro"), client: client,
			baseURL: orDefault(opts.BaseURL, "https://generativelanguage.googleapis.com"),
			limits:  withContext(Limits{ContextTokens: 1000000, ResponseTokens: 8192}, opts.ContextTokens),
		}
	default:
		return nil, fmt.Errorf("unknown summarizer provider: %q (valid: groq, openai, claude, gemini)", opts.Provider)
	}
	return s, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func withContext(l Limits, contextTokens int) Limits {
	if contextTokens > 0 {
		l.ContextTokens = contextTokens
	}
	return l
}

// postJSON sends body to url and decodes a 200 response into out. Other
// statuses return *domain.UpstreamHTTPError.
func postJSON(ctx context.Context, client *http.Client, source, url string, header http.Header, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s API request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.UpstreamHTTPError{Source: source, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", source, err)
	}
	return nil
}
