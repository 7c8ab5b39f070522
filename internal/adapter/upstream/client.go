package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// Proxy modes.
const (
	ModeNone   = "none"
	ModeDirect = "direct"
	ModeJSON   = "json"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 1024

// Client fetches JSON documents from NOTAM providers, optionally through a
// CORS-style proxy. In "direct" mode the proxy relays the upstream response
// as is; in "json" mode it wraps the body in {"contents": "..."}.
type Client struct {
	httpClient *http.Client
	mode       string
	proxyURL   string
}

// NewClient creates a client. The timeout bounds every request, including
// time spent in the proxy.
func NewClient(timeout time.Duration, mode, proxyURL string) *Client {
	if mode == "" {
		mode = ModeNone
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		mode:       mode,
		proxyURL:   proxyURL,
	}
}

// GetJSON issues a GET for target and returns the upstream body. source names
// the provider in errors. A non-2xx status yields *domain.UpstreamHTTPError.
func (c *Client) GetJSON(ctx context.Context, source, target string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(target), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.UpstreamHTTPError{Source: source, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", source, err)
	}

	if c.mode == ModeJSON {
		return unwrapContents(source, body)
	}
	return body, nil
}

func (c *Client) requestURL(target string) string {
	if c.mode == ModeNone || c.proxyURL == "" {
		return target
	}
	return c.proxyURL + url.QueryEscape(target)
}

// jsonProxyResponse is the allorigins-style envelope.
type jsonProxyResponse struct {
	Contents *string `json:"contents"`
	Status   struct {
		HTTPCode int `json:"http_code"`
	} `json:"status"`
}

func unwrapContents(source string, body []byte) ([]byte, error) {
	var env jsonProxyResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s proxy envelope: %w", source, err)
	}
	if code := env.Status.HTTPCode; code != 0 && (code < 200 || code > 299) {
		contents := ""
		if env.Contents != nil {
			contents = *env.Contents
		}
		if len(contents) > maxErrorBody {
			contents = contents[:maxErrorBody]
		}
		return nil, &domain.UpstreamHTTPError{Source: source, StatusCode: code, Body: strings.TrimSpace(contents)}
	}
	if env.Contents == nil {
		return nil, fmt.Errorf("%s proxy envelope has no contents", source)
	}
	return []byte(*env.Contents), nil
}
