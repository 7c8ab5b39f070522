package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const temperature = 0.05

// --- OpenAI-compatible chat completions (OpenAI, Groq) ---

type chatProvider struct {
	name     string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limits   Limits
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *chatProvider) Name() string   { return p.name }
func (p *chatProvider) Limits() Limits { return p.limits }

func (p *chatProvider) Summarize(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req)},
		},
		MaxTokens:   p.limits.ResponseTokens,
		Temperature: temperature,
	}
	header := http.Header{"Authorization": {"Bearer " + p.apiKey}}

	var resp chatResponse
	if err := postJSON(ctx, p.client, p.name, p.endpoint, header, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty %s response", p.name)
	}
	return CleanResponse(resp.Choices[0].Message.Content), nil
}

// --- Anthropic Messages API ---

type claudeProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limits   Limits
}

type claudeRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *claudeProvider) Name() string   { return "claude" }
func (c *claudeProvider) Limits() Limits { return c.limits }

func (c *claudeProvider) Summarize(ctx context.Context, req Request) (string, error) {
	body := claudeRequest{
		Model:       c.model,
		MaxTokens:   c.limits.ResponseTokens,
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(req)}},
		Temperature: temperature,
	}
	header := http.Header{
		"x-api-key":         {c.apiKey},
		"anthropic-version": {"2023-06-01"},
	}

	var resp claudeResponse
	if err := postJSON(ctx, c.client, "claude", c.endpoint, header, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("empty claude response")
	}
	return CleanResponse(resp.Content[0].Text), nil
}

// --- Google Gemini generateContent ---

type geminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	limits  Limits
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *geminiProvider) Name() string   { return "gemini" }
func (g *geminiProvider) Limits() Limits { return g.limits }

func (g *geminiProvider) Summarize(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		// Gemini has no system role; the instructions lead the user text.
		Contents: []geminiContent{{Parts: []geminiPart{{Text: systemPrompt + "\n\n" + BuildPrompt(req)}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: g.limits.ResponseTokens,
			Temperature:     temperature,
			TopP:            0.8,
			TopK:            40,
		},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	header := http.Header{"x-goog-api-key": {g.apiKey}}

	var resp geminiResponse
	if err := postJSON(ctx, g.client, "gemini", endpoint, header, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("invalid gemini response structure")
	}
	return CleanResponse(resp.Candidates[0].Content.Parts[0].Text), nil
}
